package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"docrag/src/core/collection"
)

// Store is an in-process collection.Store using brute-force cosine distance.
// It backs tests and single-node deployments that do not run Weaviate.
//
// Metric: cosine distance (1 - cosine similarity), nearest first. Distance
// ties are broken by insertion order, earliest first.
type Store struct {
	mu        sync.RWMutex
	dimension int
	items     []collection.Item
	ids       map[string]bool
}

func NewStore() *Store {
	return &Store{
		ids: make(map[string]bool),
	}
}

// Insert adds one item. The collection's dimensionality is fixed by the first
// inserted item; later items must match it exactly. The item becomes visible
// to Search atomically.
func (s *Store) Insert(ctx context.Context, item collection.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[item.ID] {
		return fmt.Errorf("%w: %s", collection.ErrDuplicateIdentity, item.ID)
	}

	if s.dimension == 0 {
		s.dimension = len(item.Embedding)
	} else if len(item.Embedding) != s.dimension {
		return &collection.DimensionMismatchError{Want: s.dimension, Got: len(item.Embedding)}
	}

	s.items = append(s.items, cloneItem(item))
	s.ids[item.ID] = true
	return nil
}

// Search returns up to topK items ordered by ascending cosine distance.
func (s *Store) Search(ctx context.Context, query collection.Embedding, topK int) ([]collection.Item, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top k must be positive, got %d", topK)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		index    int
		distance float64
	}

	scores := make([]scored, len(s.items))
	for i := range s.items {
		scores[i] = scored{index: i, distance: cosineDistance(s.items[i].Embedding, query)}
	}

	// Stable sort keeps insertion order for equal distances.
	sort.SliceStable(scores, func(a, b int) bool {
		return scores[a].distance < scores[b].distance
	})

	if topK > len(scores) {
		topK = len(scores)
	}

	results := make([]collection.Item, 0, topK)
	for i := 0; i < topK; i++ {
		results = append(results, cloneItem(s.items[scores[i].index]))
	}
	return results, nil
}

// RemoveAll drops every item. Idempotent.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.dimension = 0
	s.items = nil
	s.ids = make(map[string]bool)
	return nil
}

// Count returns the exact number of stored items.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func cloneItem(item collection.Item) collection.Item {
	clone := item
	clone.Embedding = append(collection.Embedding(nil), item.Embedding...)
	return clone
}

func cosineDistance(a, b collection.Embedding) float64 {
	var dot, normA, normB float64
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		normA += float64(v) * float64(v)
	}
	for _, v := range b {
		normB += float64(v) * float64(v)
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
