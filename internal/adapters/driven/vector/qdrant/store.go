// Package qdrant provides a vector store adapter backed by a Qdrant
// instance over its gRPC API.
package qdrant

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Default configuration values.
const (
	DefaultHost = "localhost"
	DefaultPort = 6334

	// UpsertBatchSize caps points per upsert request.
	UpsertBatchSize = 100
)

// Payload keys stored with every point.
const (
	payloadText           = "text"
	payloadChunkIndex     = "chunk_index"
	payloadDocumentSource = "document_source"
)

// Config holds configuration for the Qdrant store.
type Config struct {
	// Host is the Qdrant gRPC host (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey is an optional API key for Qdrant Cloud.
	APIKey string

	// UseTLS enables TLS on the connection.
	UseTLS bool
}

// Store talks to Qdrant. One collection per index, cosine distance.
type Store struct {
	client *qdrant.Client
}

// New creates a new Qdrant store.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Store{client: client}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// EnsureCollection creates the collection if it does not exist.
func (s *Store) EnsureCollection(ctx context.Context, name string, dimension int) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dimension),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	logger.Info("Created collection %s (dimension %d)", name, dimension)
	return nil
}

// Upsert writes points in batches of UpsertBatchSize.
func (s *Store) Upsert(ctx context.Context, name string, points []driven.VectorPoint) error {
	for start := 0; start < len(points); start += UpsertBatchSize {
		end := start + UpsertBatchSize
		if end > len(points) {
			end = len(points)
		}
		batch := make([]*qdrant.PointStruct, 0, end-start)
		for _, p := range points[start:end] {
			batch = append(batch, &qdrant.PointStruct{
				Id:      qdrant.NewIDUUID(p.ID),
				Vectors: qdrant.NewVectors(p.Vector...),
				Payload: qdrant.NewValueMap(map[string]any{
					payloadText:           p.Payload.Text,
					payloadChunkIndex:     int64(p.Payload.ChunkIndex),
					payloadDocumentSource: p.Payload.DocumentSource,
				}),
			})
		}
		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: name,
			Points:         batch,
		})
		if err != nil {
			return fmt.Errorf("upsert batch at %d: %w", start, err)
		}
		logger.Debug("Upserted %d points into %s", len(batch), name)
	}
	return nil
}

// Search returns the topK nearest points with payloads resolved.
func (s *Store) Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.QueryResult, error) {
	limit := uint64(topK)
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: name,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		WithPayload: &qdrant.WithPayloadSelector{
			SelectorOptions: &qdrant.WithPayloadSelector_Enable{
				Enable: true,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	results := make([]domain.QueryResult, 0, len(points))
	for _, point := range points {
		res := domain.QueryResult{Score: point.Score}
		if val, ok := point.Payload[payloadText]; ok {
			res.Text = val.GetStringValue()
		}
		if val, ok := point.Payload[payloadDocumentSource]; ok {
			res.DocumentSource = val.GetStringValue()
		}
		results = append(results, res)
	}
	return results, nil
}

// DeleteCollection drops the collection. A missing collection is not
// an error.
func (s *Store) DeleteCollection(ctx context.Context, name string) error {
	exists, err := s.client.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DeleteCollection(ctx, name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	logger.Info("Deleted collection %s", name)
	return nil
}
