package chunk

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrInvalidConfig is returned when chunker parameters are rejected at
// construction time.
var ErrInvalidConfig = errors.New("invalid chunker configuration")

const DefaultBreakSymbol = "\n"

// SymbolChunker splits text at a break symbol and greedily packs the resulting
// lines into windows of at most CharsLimit bytes. When a window is sealed, the
// trailing Overlap bytes of the sealed chunk are carried into the next window
// so neighbouring chunks share context.
type SymbolChunker struct {
	charsLimit int
	overlap    int
	symbol     string
}

// NewSymbolChunker validates the configuration and returns a chunker.
// Requires charsLimit > 0, 0 <= overlap < charsLimit and a non-empty symbol.
func NewSymbolChunker(charsLimit, overlap int, symbol string) (*SymbolChunker, error) {
	if charsLimit <= 0 {
		return nil, fmt.Errorf("%w: chars limit must be positive, got %d", ErrInvalidConfig, charsLimit)
	}
	if overlap < 0 || overlap >= charsLimit {
		return nil, fmt.Errorf("%w: overlap must be in [0, %d), got %d", ErrInvalidConfig, charsLimit, overlap)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: break symbol must not be empty", ErrInvalidConfig)
	}

	return &SymbolChunker{
		charsLimit: charsLimit,
		overlap:    overlap,
		symbol:     symbol,
	}, nil
}

// GetChunks splits every extraction independently. Each produced chunk is at
// most charsLimit+overlap bytes long, except for the degenerate case of a
// single line longer than charsLimit, which becomes one oversized chunk
// rather than being split mid-line. Chunk order follows extraction order,
// then creation order within an extraction.
func (c *SymbolChunker) GetChunks(extractions []Extraction) ([]Chunk, error) {
	var chunks []Chunk

	for _, ext := range extractions {
		if ext.Text == "" {
			continue
		}

		lines := strings.Split(ext.Text, c.symbol)
		current := ""

		for _, line := range lines {
			if current == "" {
				current = line
				continue
			}

			if len(current)+len(c.symbol)+len(line)+c.overlap <= c.charsLimit {
				current += c.symbol + line
				continue
			}

			sealed := c.seal(current)
			if sealed != "" {
				chunks = append(chunks, Chunk{Text: sealed, Location: ext.Location})
			}

			// Carry the tail of the sealed chunk into the next window so the
			// rejected line keeps its preceding context.
			current = c.tail(sealed) + line
		}

		if sealed := c.seal(current); sealed != "" {
			chunks = append(chunks, Chunk{Text: sealed, Location: ext.Location})
		}
	}

	return chunks, nil
}

// seal trims trailing break symbols left by empty input lines.
func (c *SymbolChunker) seal(buf string) string {
	for strings.HasSuffix(buf, c.symbol) {
		buf = strings.TrimSuffix(buf, c.symbol)
	}
	return buf
}

// tail returns the trailing overlap bytes of the sealed chunk, backed up to a
// rune boundary so chunk text stays valid UTF-8.
func (c *SymbolChunker) tail(sealed string) string {
	if c.overlap == 0 || sealed == "" {
		return ""
	}
	if len(sealed) <= c.overlap {
		return sealed
	}

	t := sealed[len(sealed)-c.overlap:]
	for len(t) > 0 && !utf8.RuneStart(t[0]) {
		t = t[1:]
	}
	return t
}
