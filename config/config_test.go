package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunking.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Chunking.ChunkOverlap != 50 {
		t.Errorf("expected ChunkOverlap=50, got %d", cfg.Chunking.ChunkOverlap)
	}
	if cfg.Retrieval.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.7 {
		t.Errorf("expected SimilarityThreshold=0.7, got %f", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.Retrieval.MaxContextLength != 2000 {
		t.Errorf("expected MaxContextLength=2000, got %d", cfg.Retrieval.MaxContextLength)
	}
	if cfg.Embedding.Dimension != 384 {
		t.Errorf("expected Dimension=384, got %d", cfg.Embedding.Dimension)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "kbrag.yaml")

	content := `
chunking:
  chunk_size: 256
retrieval:
  top_k: 10
  similarity_threshold: 0.5
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunking.ChunkSize != 256 {
		t.Errorf("expected ChunkSize=256, got %d", cfg.Chunking.ChunkSize)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Errorf("expected TopK=10, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.5 {
		t.Errorf("expected SimilarityThreshold=0.5, got %f", cfg.Retrieval.SimilarityThreshold)
	}
	// Untouched sections keep their defaults.
	if cfg.Retrieval.MaxContextLength != 2000 {
		t.Errorf("expected MaxContextLength=2000, got %d", cfg.Retrieval.MaxContextLength)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "kbrag.yaml")

	content := `
knowledge_base:
  dir: my_kb
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.KnowledgeBase.Dir != "my_kb" {
		t.Errorf("expected Dir=my_kb, got %s", cfg.KnowledgeBase.Dir)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KBRAG_TOP_K", "7")
	t.Setenv("KBRAG_SIMILARITY_THRESHOLD", "0.25")
	t.Setenv("KBRAG_KNOWLEDGE_DIR", "/srv/kb")

	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Retrieval.TopK != 7 {
		t.Errorf("expected TopK=7 from env, got %d", cfg.Retrieval.TopK)
	}
	if cfg.Retrieval.SimilarityThreshold != 0.25 {
		t.Errorf("expected SimilarityThreshold=0.25 from env, got %f", cfg.Retrieval.SimilarityThreshold)
	}
	if cfg.KnowledgeBase.Dir != "/srv/kb" {
		t.Errorf("expected Dir=/srv/kb from env, got %s", cfg.KnowledgeBase.Dir)
	}
}
