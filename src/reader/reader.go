package reader

import (
	"fmt"
	"path/filepath"
	"strings"

	"docrag/src/core/chunk"
	"docrag/src/fsutil"
)

// Reader extracts the text of a document as ordered extraction units.
type Reader interface {
	Extract(path string) ([]chunk.Extraction, error)
}

// ForPath selects a reader by file extension. PDF files get per-page
// extraction, everything else is treated as plain text.
func ForPath(path string, fs fsutil.FileStore) Reader {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewPDFReader()
	}
	return NewPlainTextReader(fs)
}

// PlainTextReader reads the whole file as a single extraction located at the
// file's base name.
type PlainTextReader struct {
	fs fsutil.FileStore
}

func NewPlainTextReader(fs fsutil.FileStore) *PlainTextReader {
	return &PlainTextReader{fs: fs}
}

func (r *PlainTextReader) Extract(path string) ([]chunk.Extraction, error) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return []chunk.Extraction{{
		Text:     string(data),
		Location: filepath.Base(path),
	}}, nil
}
