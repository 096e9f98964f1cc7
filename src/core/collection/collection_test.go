package collection_test

import (
	"sync"
	"testing"

	"docrag/src/core/collection"
)

func TestNewItemFields(t *testing.T) {
	emb := collection.Embedding{0.1, 0.2, 0.3}
	item := collection.NewItem("some text", "doc.pdf", "Page 2", emb)

	if item.ID == "" {
		t.Error("NewItem() generated an empty id")
	}
	if item.Text != "some text" {
		t.Errorf("item.Text = %q, want %q", item.Text, "some text")
	}
	if item.DocumentPath != "doc.pdf" {
		t.Errorf("item.DocumentPath = %q, want %q", item.DocumentPath, "doc.pdf")
	}
	if item.Location != "Page 2" {
		t.Errorf("item.Location = %q, want %q", item.Location, "Page 2")
	}
	if len(item.Embedding) != 3 {
		t.Errorf("len(item.Embedding) = %d, want 3", len(item.Embedding))
	}
}

func TestNewItemUniqueIDs(t *testing.T) {
	const n = 1000

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		item := collection.NewItem("t", "d", "l", nil)
		if seen[item.ID] {
			t.Fatalf("NewItem() produced duplicate id %s", item.ID)
		}
		seen[item.ID] = true
	}
}

func TestNewItemUniqueIDsConcurrent(t *testing.T) {
	const workers = 8
	const perWorker = 200

	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				item := collection.NewItem("t", "d", "l", nil)
				mu.Lock()
				if seen[item.ID] {
					t.Errorf("duplicate id %s generated concurrently", item.ID)
				}
				seen[item.ID] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
}
