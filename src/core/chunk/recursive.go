package chunk

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
)

// RecursiveChunker is an alternative Chunker backed by langchaingo's
// recursive-character splitter. Unlike SymbolChunker it may split inside a
// line, so it copes better with text that has no usable break symbol.
type RecursiveChunker struct {
	splitter textsplitter.RecursiveCharacter
}

func NewRecursiveChunker(chunkSize, chunkOverlap int) (*RecursiveChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk overlap must be in [0, %d), got %d", ErrInvalidConfig, chunkSize, chunkOverlap)
	}

	return &RecursiveChunker{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(chunkSize),
			textsplitter.WithChunkOverlap(chunkOverlap),
		),
	}, nil
}

func (c *RecursiveChunker) GetChunks(extractions []Extraction) ([]Chunk, error) {
	var chunks []Chunk

	for _, ext := range extractions {
		if ext.Text == "" {
			continue
		}

		parts, err := c.splitter.SplitText(ext.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split text at %s: %w", ext.Location, err)
		}

		for _, part := range parts {
			chunks = append(chunks, Chunk{Text: part, Location: ext.Location})
		}
	}

	return chunks, nil
}
