package cli

import (
	"fmt"

	"kbrag/config"
	"kbrag/internal/adapter/chunker"
	"kbrag/internal/adapter/embedding"
	"kbrag/internal/adapter/index"
	"kbrag/internal/adapter/loader"
	"kbrag/internal/adapter/store"
	"kbrag/internal/port"
	"kbrag/internal/usecase"
)

func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "openai":
		return embedding.NewOpenAIEmbedder(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllamaEmbedder(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMockEmbedder(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newEngine wires an engine from the loaded config. The embedder is passed
// in so commands can wrap it (progress reporting during a build).
func newEngine(cfg *config.Config, embedder port.Embedder) *usecase.Engine {
	return usecase.New(
		loader.New(cfg.KnowledgeBase.Includes, cfg.KnowledgeBase.Excludes),
		chunker.NewRecursiveSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap),
		index.NewFlat(embedder),
		store.New(cfg.KnowledgeBase.IndexPath),
		usecase.Params{
			KnowledgeDir:        cfg.KnowledgeBase.Dir,
			TopK:                cfg.Retrieval.TopK,
			SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
			MaxContextLength:    cfg.Retrieval.MaxContextLength,
		},
	)
}
