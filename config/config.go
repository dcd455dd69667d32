package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the retrieval engine.
type Config struct {
	KnowledgeBase KnowledgeBaseConfig `yaml:"knowledge_base"`
	Chunking      ChunkingConfig      `yaml:"chunking"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// KnowledgeBaseConfig locates the source directory and the persisted index.
type KnowledgeBaseConfig struct {
	Dir       string   `yaml:"dir"`
	IndexPath string   `yaml:"index_path"`
	Includes  []string `yaml:"includes"`
	Excludes  []string `yaml:"excludes"`
}

// ChunkingConfig holds text splitting configuration.
type ChunkingConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "openai", "ollama", "mock"
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension"`
}

// RetrievalConfig holds query-time configuration.
type RetrievalConfig struct {
	TopK                int     `yaml:"top_k"`
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MaxContextLength    int     `yaml:"max_context_length"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		KnowledgeBase: KnowledgeBaseConfig{
			Dir:       "knowledge_base",
			IndexPath: filepath.Join("data", "vector_index"),
			Includes:  []string{"*.md", "*.txt", "*.json", "*.pdf"},
		},
		Chunking: ChunkingConfig{
			ChunkSize:    500,
			ChunkOverlap: 50,
		},
		Embedding: EmbeddingConfig{
			Provider:  "ollama",
			Model:     "all-minilm",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
		},
		Retrieval: RetrievalConfig{
			TopK:                3,
			SimilarityThreshold: 0.7,
			MaxContextLength:    2000,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment variables override file values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for kbrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "kbrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".kbrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	setStr(&c.KnowledgeBase.Dir, "KBRAG_KNOWLEDGE_DIR")
	setStr(&c.KnowledgeBase.IndexPath, "KBRAG_INDEX_PATH")
	setStr(&c.Embedding.Provider, "KBRAG_EMBEDDING_PROVIDER")
	setStr(&c.Embedding.Model, "KBRAG_EMBEDDING_MODEL")
	setStr(&c.Embedding.BaseURL, "KBRAG_EMBEDDING_BASE_URL")
	setStr(&c.Embedding.APIKeyEnv, "KBRAG_EMBEDDING_API_KEY_ENV")
	setInt(&c.Embedding.Dimension, "KBRAG_EMBEDDING_DIMENSION")
	setInt(&c.Chunking.ChunkSize, "KBRAG_CHUNK_SIZE")
	setInt(&c.Chunking.ChunkOverlap, "KBRAG_CHUNK_OVERLAP")
	setInt(&c.Retrieval.TopK, "KBRAG_TOP_K")
	setFloat(&c.Retrieval.SimilarityThreshold, "KBRAG_SIMILARITY_THRESHOLD")
	setInt(&c.Retrieval.MaxContextLength, "KBRAG_MAX_CONTEXT_LENGTH")
	setStr(&c.Logging.Level, "KBRAG_LOG_LEVEL")
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}
