package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Embedding is a fixed-length vector representation of a piece of text. It is
// opaque beyond equality and distance semantics.
type Embedding []float32

// Item is the atomic unit stored and retrieved: an embedded chunk of text with
// its provenance. Once inserted the store owns it; search returns read-only
// copies.
type Item struct {
	ID           string    `json:"id"`
	Embedding    Embedding `json:"embedding,omitempty"`
	DocumentPath string    `json:"documentPath"`
	Location     string    `json:"location"`
	Text         string    `json:"text"`
}

// NewItem builds an Item with a generated id. Identity is a V4 uuid; the store
// additionally rejects duplicates at insert time, so a collision is surfaced
// instead of silently overwriting.
func NewItem(text, documentPath, location string, embedding Embedding) Item {
	return Item{
		ID:           uuid.NewString(),
		Embedding:    embedding,
		DocumentPath: documentPath,
		Location:     location,
		Text:         text,
	}
}

// ErrDuplicateIdentity is returned by Insert when the item's id already exists
// in the collection. Callers should treat it as fatal: it indicates an
// id-generation defect, not a retryable condition.
var ErrDuplicateIdentity = errors.New("duplicate item identity")

// DimensionMismatchError is returned by Insert when an embedding's length
// disagrees with the collection's established dimensionality. The store never
// truncates or pads a mismatched vector.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: collection has %d, item has %d", e.Want, e.Got)
}

// Store is the vector-store contract. The collection's dimensionality is fixed
// by the first insert and immutable afterwards. Search returns the nearest
// items first under the store's documented metric, breaking distance ties by
// insertion order; it returns min(topK, Count) items, never padding and never
// erroring on a short collection. Item visibility is atomic: a concurrent
// Search never observes a partially written item.
type Store interface {
	Insert(ctx context.Context, item Item) error
	Search(ctx context.Context, query Embedding, topK int) ([]Item, error)
	RemoveAll(ctx context.Context) error
	Count(ctx context.Context) (int, error)
}
