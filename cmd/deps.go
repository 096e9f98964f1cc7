package cmd

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/viper"
	weaviateClient "github.com/weaviate/weaviate-go-client/v4/weaviate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"docrag/src/core/chunk"
	"docrag/src/infrastructure/integrations/ollama"
	"docrag/src/storage/weaviate"
)

func openPostgres() (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		viper.GetString("postgres.host"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.port"))

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}
	return db, nil
}

func newOllamaClient() *ollama.Client {
	return ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 120 * time.Second,
	})
}

func newOllamaProvider(client *ollama.Client) *ollama.Provider {
	return ollama.NewProvider(
		client,
		viper.GetString("ollama.embedding_model"),
		viper.GetString("ollama.chat_model"),
	)
}

func newWeaviateStore() *weaviate.Store {
	wc := weaviateClient.New(weaviateClient.Config{
		Host:   viper.GetString("weaviate.url"),
		Scheme: "http",
	})
	return weaviate.NewStore(wc, viper.GetString("rag.collection"))
}

func newChunkerFromConfig() (chunk.Chunker, error) {
	charsLimit := viper.GetInt("chunker.chars_limit")
	overlap := viper.GetInt("chunker.overlap")

	switch strategy := viper.GetString("chunker.strategy"); strategy {
	case "symbol":
		return chunk.NewSymbolChunker(charsLimit, overlap, chunk.DefaultBreakSymbol)
	case "recursive":
		return chunk.NewRecursiveChunker(charsLimit, overlap)
	default:
		return nil, fmt.Errorf("unknown chunker strategy: %s", strategy)
	}
}
