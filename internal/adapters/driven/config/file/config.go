// Package file provides the TOML configuration for the daemon and
// CLI, stored at ~/.corpusd/config.toml by default.
package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/silica-labs/corpusd/internal/chunker"
	"github.com/silica-labs/corpusd/internal/core/domain"
)

// Config is the full configuration tree.
type Config struct {
	Storage   StorageConfig   `toml:"storage"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Qdrant    QdrantConfig    `toml:"qdrant"`
	Minio     MinioConfig     `toml:"minio"`
	Chunking  ChunkingConfig  `toml:"chunking"`
	Scrape    ScrapeConfig    `toml:"scrape"`
}

// StorageConfig selects the metadata and blob backends.
type StorageConfig struct {
	// Backend is "sqlite" or "memory".
	Backend string `toml:"backend"`

	// DataDir holds the SQLite database (default: ~/.corpusd/data).
	DataDir string `toml:"data_dir"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "openai" or "ollama".
	Provider string `toml:"provider"`

	// Model is the default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the provider endpoint.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself never lives in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	// RequestsPerMinute caps the provider request rate.
	RequestsPerMinute int `toml:"requests_per_minute"`
}

// QdrantConfig configures the vector store connection.
type QdrantConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	APIKey string `toml:"api_key"`
	UseTLS bool   `toml:"use_tls"`
}

// MinioConfig configures the blob store connection. An empty endpoint
// selects the in-memory blob store.
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Bucket    string `toml:"bucket"`
	UseSSL    bool   `toml:"use_ssl"`
}

// ChunkingConfig sets the token budget for document splitting and the
// bound-job limit for indexes.
type ChunkingConfig struct {
	MaxTokens       int `toml:"max_tokens"`
	OverlapTokens   int `toml:"overlap_tokens"`
	MaxJobsPerIndex int `toml:"max_jobs_per_index"`
}

// ScrapeConfig configures web page fetching.
type ScrapeConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Storage: StorageConfig{
			Backend: "sqlite",
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Minio: MinioConfig{
			Bucket: "corpusd-content",
		},
		Chunking: ChunkingConfig{
			MaxTokens:       chunker.DefaultMaxTokens,
			OverlapTokens:   chunker.DefaultOverlapTokens,
			MaxJobsPerIndex: domain.MaxJobsPerIndex,
		},
		Scrape: ScrapeConfig{
			TimeoutSeconds: 30,
		},
	}
}

// DefaultPath returns ~/.corpusd/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".corpusd", "config.toml"), nil
}

// Load reads the config file, layering it over the defaults. A
// missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the config file, creating the directory if needed.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// APIKey resolves the embedding API key from the environment.
func (c EmbeddingConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}
