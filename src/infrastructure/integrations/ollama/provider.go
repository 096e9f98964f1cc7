package ollama

import (
	"context"

	"docrag/src/core/collection"
	"docrag/src/core/retrieval"
)

// Provider binds a Client to the embedding and chat models configured for the
// deployment. It satisfies the embedder and generator contracts of the core
// packages.
type Provider struct {
	client     *Client
	embedModel string
	chatModel  string
	options    map[string]interface{}
}

func NewProvider(client *Client, embedModel, chatModel string) *Provider {
	return &Provider{
		client:     client,
		embedModel: embedModel,
		chatModel:  chatModel,
		options: map[string]interface{}{
			"temperature": 0.7,
			"top_p":       0.9,
		},
	}
}

func (p *Provider) Embed(ctx context.Context, text string) (collection.Embedding, error) {
	embedding, err := p.client.Embed(ctx, p.embedModel, text)
	if err != nil {
		return nil, err
	}
	return collection.Embedding(embedding), nil
}

func (p *Provider) Generate(ctx context.Context, messages []retrieval.Message) (string, error) {
	converted := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, ChatMessage{Role: m.Role, Content: m.Content})
	}
	return p.client.Chat(ctx, p.chatModel, converted, p.options)
}
