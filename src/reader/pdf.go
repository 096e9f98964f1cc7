package reader

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docrag/src/core/chunk"
)

// PDFReader extracts one unit per page so retrieved chunks can cite the page
// they came from.
type PDFReader struct {
}

func NewPDFReader() *PDFReader {
	return &PDFReader{}
}

func (r *PDFReader) Extract(path string) ([]chunk.Extraction, error) {
	f, doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf %s: %w", path, err)
	}
	defer f.Close()

	var extractions []chunk.Extraction
	for pageNum := 1; pageNum <= doc.NumPage(); pageNum++ {
		page := doc.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d of %s: %w", pageNum, path, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}

		extractions = append(extractions, chunk.Extraction{
			Text:     text,
			Location: fmt.Sprintf("Page %d", pageNum),
		})
	}

	return extractions, nil
}
