// Command corpusd is the document corpus indexing and search CLI.
package main

import (
	"context"
	"fmt"
	"time"

	minioblob "github.com/silica-labs/corpusd/internal/adapters/driven/blob/minio"
	"github.com/silica-labs/corpusd/internal/adapters/driven/config/file"
	"github.com/silica-labs/corpusd/internal/adapters/driven/embedding/ollama"
	"github.com/silica-labs/corpusd/internal/adapters/driven/embedding/openai"
	pdfparser "github.com/silica-labs/corpusd/internal/adapters/driven/parser/pdf"
	"github.com/silica-labs/corpusd/internal/adapters/driven/parser/plaintext"
	"github.com/silica-labs/corpusd/internal/adapters/driven/scrape"
	"github.com/silica-labs/corpusd/internal/adapters/driven/storage/memory"
	"github.com/silica-labs/corpusd/internal/adapters/driven/storage/sqlite"
	qdrantvec "github.com/silica-labs/corpusd/internal/adapters/driven/vector/qdrant"
	"github.com/silica-labs/corpusd/internal/adapters/driving/cli"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/core/services"
)

func main() {
	cli.SetServicesFactory(buildServices)
	cli.Execute()
}

// buildServices wires the service layer from the loaded configuration.
func buildServices(cfg file.Config) error {
	jobs, indexes, projects, err := buildMetadataStores(cfg)
	if err != nil {
		return err
	}

	blobs, err := buildBlobStore(cfg)
	if err != nil {
		return err
	}

	vectors, err := qdrantvec.New(qdrantvec.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	})
	if err != nil {
		return fmt.Errorf("connect qdrant: %w", err)
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		return err
	}

	parsers := []driven.DocumentParser{
		pdfparser.New(),
		plaintext.New(),
	}
	fetcher := scrape.New(scrape.Config{
		Timeout:   time.Duration(cfg.Scrape.TimeoutSeconds) * time.Second,
		UserAgent: cfg.Scrape.UserAgent,
	})

	orchestrator := services.NewSyncOrchestrator(
		jobs, indexes, blobs, embedder, vectors,
		services.WithChunkBudget(cfg.Chunking.MaxTokens, cfg.Chunking.OverlapTokens),
		services.WithDefaultModel(cfg.Embedding.Model),
	)

	cli.SetServices(
		services.NewProjectManager(projects, jobs, indexes, blobs, vectors),
		services.NewIngestor(projects, jobs, indexes, blobs, parsers, fetcher),
		services.NewIndexService(projects, jobs, indexes, vectors, orchestrator,
			services.WithMaxJobsPerIndex(cfg.Chunking.MaxJobsPerIndex)),
		services.NewQuerier(indexes, embedder, vectors),
	)
	return nil
}

// buildMetadataStores selects the metadata backend.
func buildMetadataStores(cfg file.Config) (driven.JobStore, driven.IndexStore, driven.ProjectStore, error) {
	switch cfg.Storage.Backend {
	case "", "sqlite":
		store, err := sqlite.NewStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open metadata store: %w", err)
		}
		return store.JobStore(), store.IndexStore(), store.ProjectStore(), nil
	case "memory":
		return memory.NewJobStore(), memory.NewIndexStore(), memory.NewProjectStore(), nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// buildBlobStore selects the blob backend. An empty MinIO endpoint
// keeps extracted text in memory, which only makes sense alongside
// the memory metadata backend.
func buildBlobStore(cfg file.Config) (driven.BlobStore, error) {
	if cfg.Minio.Endpoint == "" {
		return memory.NewBlobStore(), nil
	}
	store, err := minioblob.New(context.Background(), minioblob.Config{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	return store, nil
}

// buildEmbedder selects the embedding provider.
func buildEmbedder(cfg file.Config) (driven.EmbeddingProvider, error) {
	switch cfg.Embedding.Provider {
	case "", "openai":
		key := cfg.Embedding.APIKey()
		if key == "" {
			// Metadata commands must keep working without a key; only
			// sync and query will hit this error.
			return unconfiguredProvider{env: cfg.Embedding.APIKeyEnv}, nil
		}
		return openai.NewProvider(openai.Config{
			APIKey:            key,
			BaseURL:           cfg.Embedding.BaseURL,
			Model:             cfg.Embedding.Model,
			RequestsPerMinute: cfg.Embedding.RequestsPerMinute,
		})
	case "ollama":
		return ollama.NewProvider(ollama.Config{
			BaseURL: cfg.Embedding.BaseURL,
			Model:   cfg.Embedding.Model,
		}), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Embedding.Provider)
	}
}

// unconfiguredProvider surfaces a missing API key at embed time.
type unconfiguredProvider struct {
	env string
}

func (p unconfiguredProvider) Embed(context.Context, []string, string) ([][]float32, error) {
	return nil, fmt.Errorf("embedding API key not set; export %s", p.env)
}
