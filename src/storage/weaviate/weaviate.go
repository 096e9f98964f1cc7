package weaviate

import (
	"context"
	"fmt"
	"sync"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"docrag/src/core/collection"
)

// Store persists collection items in a Weaviate class and implements
// collection.Store. One Store instance owns one class.
//
// Metric: cosine distance (Weaviate's default for nearVector), nearest first
// in Weaviate's result order.
type Store struct {
	client    *weaviate.Client
	className string

	mu        sync.Mutex
	dimension int // fixed by the first insert, 0 until then
}

func NewStore(client *weaviate.Client, className string) *Store {
	return &Store{
		client:    client,
		className: className,
	}
}

// EnsureSchema creates the backing class if it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	exists, err := s.classExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}
	if exists {
		return nil
	}
	return s.createClass(ctx)
}

func (s *Store) classExists(ctx context.Context) (bool, error) {
	schema, err := s.client.Schema().Getter().Do(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to get schema: %w", err)
	}

	for _, class := range schema.Classes {
		if class.Class == s.className {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) createClass(ctx context.Context) error {
	class := &models.Class{
		Class: s.className,
		Properties: []*models.Property{
			{
				Name:        "text",
				DataType:    []string{"text"},
				Description: "The chunk text",
			},
			{
				Name:        "documentPath",
				DataType:    []string{"text"},
				Description: "Path of the source document",
			},
			{
				Name:        "location",
				DataType:    []string{"text"},
				Description: "Location inside the source document (e.g. a page)",
			},
		},
		Vectorizer: "none",
	}

	if err := s.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create class %s: %w", s.className, err)
	}
	return nil
}

// Insert stores one item under its id. Fails with
// collection.ErrDuplicateIdentity when the id is already present and with a
// DimensionMismatchError when the embedding disagrees with the dimensionality
// established by the first insert.
func (s *Store) Insert(ctx context.Context, item collection.Item) error {
	s.mu.Lock()
	if s.dimension == 0 {
		s.dimension = len(item.Embedding)
	} else if len(item.Embedding) != s.dimension {
		want := s.dimension
		s.mu.Unlock()
		return &collection.DimensionMismatchError{Want: want, Got: len(item.Embedding)}
	}
	s.mu.Unlock()

	exists, err := s.client.Data().Checker().
		WithClassName(s.className).
		WithID(item.ID).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to check item existence: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", collection.ErrDuplicateIdentity, item.ID)
	}

	_, err = s.client.Data().Creator().
		WithClassName(s.className).
		WithID(item.ID).
		WithProperties(map[string]interface{}{
			"text":         item.Text,
			"documentPath": item.DocumentPath,
			"location":     item.Location,
		}).
		WithVector(item.Embedding).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
	}
	return nil
}

// Search performs nearVector similarity search and returns up to topK items,
// nearest first.
func (s *Store) Search(ctx context.Context, query collection.Embedding, topK int) ([]collection.Item, error) {
	if topK <= 0 {
		return nil, fmt.Errorf("top k must be positive, got %d", topK)
	}

	fields := []graphql.Field{
		{Name: "text"},
		{Name: "documentPath"},
		{Name: "location"},
		{Name: "_additional { id distance vector }"},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().
		WithVector([]float32(query))

	result, err := s.client.GraphQL().Get().
		WithClassName(s.className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(topK).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %w", err)
	}
	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("vector query returned an error: %s", result.Errors[0].Message)
	}

	return s.parseResults(result.Data)
}

func (s *Store) parseResults(data map[string]models.JSONObject) ([]collection.Item, error) {
	get, ok := data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	objects, ok := get[s.className].([]interface{})
	if !ok {
		return nil, nil
	}

	items := make([]collection.Item, 0, len(objects))
	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		item := collection.Item{}
		if v, ok := objMap["text"].(string); ok {
			item.Text = v
		}
		if v, ok := objMap["documentPath"].(string); ok {
			item.DocumentPath = v
		}
		if v, ok := objMap["location"].(string); ok {
			item.Location = v
		}

		if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
			if id, ok := additional["id"].(string); ok {
				item.ID = id
			}
			if vector, ok := additional["vector"].([]interface{}); ok {
				item.Embedding = make(collection.Embedding, 0, len(vector))
				for _, v := range vector {
					if f, ok := v.(float64); ok {
						item.Embedding = append(item.Embedding, float32(f))
					}
				}
			}
		}

		items = append(items, item)
	}
	return items, nil
}

// RemoveAll drops the class and recreates it empty under the same name.
// Idempotent: a missing class is created.
func (s *Store) RemoveAll(ctx context.Context) error {
	exists, err := s.classExists(ctx)
	if err != nil {
		return fmt.Errorf("failed to check if class exists: %w", err)
	}

	if exists {
		if err := s.client.Schema().ClassDeleter().WithClassName(s.className).Do(ctx); err != nil {
			return fmt.Errorf("failed to delete class %s: %w", s.className, err)
		}
	}

	if err := s.createClass(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	s.dimension = 0
	s.mu.Unlock()
	return nil
}

// Count returns the exact number of items via an aggregate meta query.
func (s *Store) Count(ctx context.Context) (int, error) {
	meta := graphql.Field{
		Name:   "meta",
		Fields: []graphql.Field{{Name: "count"}},
	}

	result, err := s.client.GraphQL().Aggregate().
		WithClassName(s.className).
		WithFields(meta).
		Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate count: %w", err)
	}
	if len(result.Errors) > 0 {
		return 0, fmt.Errorf("aggregate query returned an error: %s", result.Errors[0].Message)
	}

	aggregate, ok := result.Data["Aggregate"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	objects, ok := aggregate[s.className].([]interface{})
	if !ok || len(objects) == 0 {
		return 0, nil
	}
	first, ok := objects[0].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	metaMap, ok := first["meta"].(map[string]interface{})
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	count, ok := metaMap["count"].(float64)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregate response shape")
	}
	return int(count), nil
}
