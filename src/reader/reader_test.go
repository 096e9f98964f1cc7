package reader

import (
	"os"
	"path/filepath"
	"testing"

	"docrag/src/fsutil"
)

func TestPlainTextReaderExtract(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	content := "first line\nsecond line\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	r := NewPlainTextReader(fsutil.NewLocalFileStore())
	extractions, err := r.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}

	if len(extractions) != 1 {
		t.Fatalf("Extract() returned %d extractions, want 1", len(extractions))
	}
	if extractions[0].Text != content {
		t.Errorf("Extract() text = %q, want %q", extractions[0].Text, content)
	}
	if extractions[0].Location != "notes.txt" {
		t.Errorf("Extract() location = %q, want %q", extractions[0].Location, "notes.txt")
	}
}

func TestPlainTextReaderEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	r := NewPlainTextReader(fsutil.NewLocalFileStore())
	extractions, err := r.Extract(path)
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(extractions) != 0 {
		t.Errorf("Extract() returned %d extractions for an empty file, want 0", len(extractions))
	}
}

func TestPlainTextReaderMissingFile(t *testing.T) {
	r := NewPlainTextReader(fsutil.NewLocalFileStore())
	if _, err := r.Extract(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Extract() expected error for missing file, got nil")
	}
}

func TestForPath(t *testing.T) {
	fs := fsutil.NewLocalFileStore()

	tests := []struct {
		path    string
		wantPDF bool
	}{
		{"docs/manual.pdf", true},
		{"docs/MANUAL.PDF", true},
		{"docs/readme.txt", false},
		{"docs/readme.md", false},
		{"docs/noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			r := ForPath(tt.path, fs)
			_, isPDF := r.(*PDFReader)
			if isPDF != tt.wantPDF {
				t.Errorf("ForPath(%q) pdf = %v, want %v", tt.path, isPDF, tt.wantPDF)
			}
		})
	}
}
