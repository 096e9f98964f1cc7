package retrieval

import (
	"context"
	"fmt"
	"strings"

	"docrag/src/core/collection"
)

// Roles of conversation messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Embedder converts text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (collection.Embedding, error)
}

// Generator produces the assistant's answer for a full conversation.
type Generator interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// RetrievalError reports a failure in the embedding or search stage of a
// turn. The caller may retry retrieval alone.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// GenerationError reports a failure in the answer-generation stage. The turn
// as a whole must be retried.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Orchestrator answers a user turn by conditioning the generator on the
// nearest stored chunks.
type Orchestrator struct {
	embedder  Embedder
	store     collection.Store
	generator Generator
	topK      int
}

func NewOrchestrator(embedder Embedder, store collection.Store, generator Generator, topK int) (*Orchestrator, error) {
	if embedder == nil || store == nil || generator == nil {
		return nil, fmt.Errorf("embedder, store and generator are required")
	}
	if topK <= 0 {
		return nil, fmt.Errorf("top k must be positive, got %d", topK)
	}

	return &Orchestrator{
		embedder:  embedder,
		store:     store,
		generator: generator,
		topK:      topK,
	}, nil
}

// Retrieve embeds the query and returns the topK nearest items. Failures of
// either stage surface as *RetrievalError.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, topK int) ([]collection.Item, error) {
	embedding, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("failed to embed query: %w", err)}
	}

	items, err := o.store.Search(ctx, embedding, topK)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("failed to search collection: %w", err)}
	}
	return items, nil
}

// Answer retrieves context for the new query, appends it to the user's latest
// message and passes the full conversation to the generator. The generator's
// response is returned unmodified.
//
// The context block is appended after the original query text, never
// prepended, so the model can distinguish instruction from context. When
// nothing is retrieved the message carries the query alone, with no context
// header.
func (o *Orchestrator) Answer(ctx context.Context, history []Message, query string) (string, error) {
	items, err := o.Retrieve(ctx, query, o.topK)
	if err != nil {
		return "", err
	}

	content := query
	if len(items) > 0 {
		content = query + "\n\n" + contextBlock(items)
	}

	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, Message{Role: RoleUser, Content: content})

	response, err := o.generator.Generate(ctx, messages)
	if err != nil {
		return "", &GenerationError{Err: err}
	}
	return response, nil
}

func contextBlock(items []collection.Item) string {
	var b strings.Builder
	b.WriteString("Next is the context information:")

	for _, item := range items {
		b.WriteString(fmt.Sprintf("\n\nFrom %s (%s):\n%s", item.DocumentPath, item.Location, item.Text))
	}
	return b.String()
}
