package rag

import (
	"context"
	"fmt"

	"docrag/src/core/chunk"
	"docrag/src/core/collection"
	"docrag/src/infrastructure/log"
)

// Reader extracts a document's text as ordered extraction units.
type Reader interface {
	Extract(path string) ([]chunk.Extraction, error)
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (collection.Embedding, error)
}

// Recorder persists document metadata after a successful import.
type Recorder interface {
	Record(ctx context.Context, documentPath, objectURL string, chunkCount int) error
}

// Service turns local files into searchable collection items.
type Service struct {
	chunker  chunk.Chunker
	embedder Embedder
	store    collection.Store
	recorder Recorder
}

// NewService wires the ingestion pipeline. recorder may be nil when no
// document registry is available.
func NewService(chunker chunk.Chunker, embedder Embedder, store collection.Store, recorder Recorder) (*Service, error) {
	if chunker == nil || embedder == nil || store == nil {
		return nil, fmt.Errorf("chunker, embedder and store are required")
	}

	return &Service{
		chunker:  chunker,
		embedder: embedder,
		store:    store,
		recorder: recorder,
	}, nil
}

// ImportFile extracts, chunks, embeds and inserts the file at path. The
// documentPath is the logical name stored on every item, usually the original
// filename rather than the temp path the file sits at. It returns the number
// of chunks inserted.
//
// Chunks are embedded and inserted one by one in order. The first failure
// aborts the import and leaves the already inserted chunks in place, so a
// retried import of the same file may duplicate content unless the collection
// is cleared first.
func (s *Service) ImportFile(ctx context.Context, r Reader, path, documentPath, objectURL string) (int, error) {
	extractions, err := r.Extract(path)
	if err != nil {
		return 0, fmt.Errorf("failed to extract %s: %w", documentPath, err)
	}

	chunks, err := s.chunker.GetChunks(extractions)
	if err != nil {
		return 0, fmt.Errorf("failed to chunk %s: %w", documentPath, err)
	}
	if len(chunks) == 0 {
		log.Info("document produced no chunks", "document", documentPath)
		return 0, nil
	}

	for i, c := range chunks {
		embedding, err := s.embedder.Embed(ctx, c.Text)
		if err != nil {
			return i, fmt.Errorf("failed to embed chunk %d of %s: %w", i, documentPath, err)
		}

		item := collection.NewItem(c.Text, documentPath, c.Location, embedding)
		if err := s.store.Insert(ctx, item); err != nil {
			return i, fmt.Errorf("failed to insert chunk %d of %s: %w", i, documentPath, err)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.Record(ctx, documentPath, objectURL, len(chunks)); err != nil {
			return len(chunks), fmt.Errorf("failed to record document %s: %w", documentPath, err)
		}
	}

	log.Info("document imported", "document", documentPath, "chunks", len(chunks))
	return len(chunks), nil
}
