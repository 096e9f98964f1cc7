package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"docrag/src/core/collection"
)

type fakeEmbedder struct {
	embedding collection.Embedding
	err       error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) (collection.Embedding, error) {
	return f.embedding, f.err
}

type fakeStore struct {
	collection.Store

	items []collection.Item
	err   error
	topK  int
}

func (f *fakeStore) Search(_ context.Context, _ collection.Embedding, topK int) ([]collection.Item, error) {
	f.topK = topK
	return f.items, f.err
}

type fakeGenerator struct {
	response string
	err      error
	messages []Message
}

func (f *fakeGenerator) Generate(_ context.Context, messages []Message) (string, error) {
	f.messages = messages
	return f.response, f.err
}

func TestNewOrchestratorValidation(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	generator := &fakeGenerator{}

	if _, err := NewOrchestrator(nil, store, generator, 5); err == nil {
		t.Error("NewOrchestrator(nil embedder) expected error, got nil")
	}
	if _, err := NewOrchestrator(embedder, store, generator, 0); err == nil {
		t.Error("NewOrchestrator(topK=0) expected error, got nil")
	}
	if _, err := NewOrchestrator(embedder, store, generator, 5); err != nil {
		t.Errorf("NewOrchestrator() unexpected error: %v", err)
	}
}

func TestAnswerAppendsContext(t *testing.T) {
	items := []collection.Item{
		{ID: "1", DocumentPath: "guide.pdf", Location: "Page 3", Text: "chunk one"},
		{ID: "2", DocumentPath: "notes.txt", Location: "notes.txt", Text: "chunk two"},
	}
	embedder := &fakeEmbedder{embedding: collection.Embedding{0.1, 0.2}}
	store := &fakeStore{items: items}
	generator := &fakeGenerator{response: "answer"}

	o, err := NewOrchestrator(embedder, store, generator, 5)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	history := []Message{
		{Role: RoleUser, Content: "earlier question"},
		{Role: RoleAssistant, Content: "earlier answer"},
	}

	got, err := o.Answer(context.Background(), history, "what is chunking?")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if got != "answer" {
		t.Errorf("Answer() = %q, want %q", got, "answer")
	}
	if store.topK != 5 {
		t.Errorf("search topK = %d, want 5", store.topK)
	}

	if len(generator.messages) != 3 {
		t.Fatalf("generator received %d messages, want 3", len(generator.messages))
	}
	for i, want := range history {
		if generator.messages[i] != want {
			t.Errorf("message[%d] = %+v, want %+v", i, generator.messages[i], want)
		}
	}

	last := generator.messages[2]
	if last.Role != RoleUser {
		t.Errorf("last message role = %q, want %q", last.Role, RoleUser)
	}
	if !strings.HasPrefix(last.Content, "what is chunking?") {
		t.Errorf("query must lead the augmented message, got %q", last.Content)
	}
	for _, fragment := range []string{
		"Next is the context information:",
		"From guide.pdf (Page 3):\nchunk one",
		"From notes.txt (notes.txt):\nchunk two",
	} {
		if !strings.Contains(last.Content, fragment) {
			t.Errorf("augmented message missing %q:\n%s", fragment, last.Content)
		}
	}
	if strings.Index(last.Content, "chunk one") > strings.Index(last.Content, "chunk two") {
		t.Error("context chunks must keep retrieval order")
	}
}

func TestAnswerEmptyCollection(t *testing.T) {
	embedder := &fakeEmbedder{embedding: collection.Embedding{0.1}}
	store := &fakeStore{}
	generator := &fakeGenerator{response: "plain answer"}

	o, err := NewOrchestrator(embedder, store, generator, 5)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	got, err := o.Answer(context.Background(), nil, "hello")
	if err != nil {
		t.Fatalf("Answer() error: %v", err)
	}
	if got != "plain answer" {
		t.Errorf("Answer() = %q, want %q", got, "plain answer")
	}

	last := generator.messages[len(generator.messages)-1]
	if last.Content != "hello" {
		t.Errorf("message content = %q, want bare query with no context block", last.Content)
	}
}

func TestAnswerRetrievalError(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		store    *fakeStore
	}{
		{
			name:     "embedding fails",
			embedder: &fakeEmbedder{err: fmt.Errorf("connection refused")},
			store:    &fakeStore{},
		},
		{
			name:     "search fails",
			embedder: &fakeEmbedder{embedding: collection.Embedding{0.1}},
			store:    &fakeStore{err: fmt.Errorf("store unavailable")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := NewOrchestrator(tt.embedder, tt.store, &fakeGenerator{}, 3)
			if err != nil {
				t.Fatalf("NewOrchestrator() error: %v", err)
			}

			_, err = o.Answer(context.Background(), nil, "query")
			var retrievalErr *RetrievalError
			if !errors.As(err, &retrievalErr) {
				t.Fatalf("Answer() error = %v, want *RetrievalError", err)
			}
			var generationErr *GenerationError
			if errors.As(err, &generationErr) {
				t.Error("retrieval failure must not surface as *GenerationError")
			}
		})
	}
}

func TestAnswerGenerationError(t *testing.T) {
	embedder := &fakeEmbedder{embedding: collection.Embedding{0.1}}
	store := &fakeStore{items: []collection.Item{{ID: "1", Text: "t"}}}
	generator := &fakeGenerator{err: fmt.Errorf("model overloaded")}

	o, err := NewOrchestrator(embedder, store, generator, 3)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	_, err = o.Answer(context.Background(), nil, "query")
	var generationErr *GenerationError
	if !errors.As(err, &generationErr) {
		t.Fatalf("Answer() error = %v, want *GenerationError", err)
	}
	if !strings.Contains(generationErr.Error(), "model overloaded") {
		t.Errorf("GenerationError must wrap the cause, got %q", generationErr.Error())
	}
}

func TestRetrieveOverridesTopK(t *testing.T) {
	embedder := &fakeEmbedder{embedding: collection.Embedding{0.1}}
	store := &fakeStore{items: []collection.Item{{ID: "1"}}}

	o, err := NewOrchestrator(embedder, store, &fakeGenerator{}, 5)
	if err != nil {
		t.Fatalf("NewOrchestrator() error: %v", err)
	}

	items, err := o.Retrieve(context.Background(), "query", 2)
	if err != nil {
		t.Fatalf("Retrieve() error: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("Retrieve() returned %d items, want 1", len(items))
	}
	if store.topK != 2 {
		t.Errorf("search topK = %d, want 2", store.topK)
	}
}
