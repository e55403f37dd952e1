package driven

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// VectorPoint is one chunk ready for upsert into a collection.
type VectorPoint struct {
	// ID is the chunk id.
	ID string

	// Vector is the chunk embedding.
	Vector []float32

	// Payload is stored alongside the vector and returned on search.
	Payload VectorPayload
}

// VectorPayload is the per-point payload shape.
type VectorPayload struct {
	// Text is the chunk text.
	Text string

	// ChunkIndex is the chunk's ordinal within its source document.
	ChunkIndex int

	// DocumentSource is the job id the chunk came from.
	DocumentSource string
}

// VectorStore provides vector collection storage and similarity search.
// Backed by Qdrant. One collection backs one index; the collection name
// is the index id.
type VectorStore interface {
	// EnsureCollection creates the named collection with the given
	// vector dimension if it does not already exist.
	EnsureCollection(ctx context.Context, name string, dimension int) error

	// Upsert writes points into the collection. Implementations batch
	// internally; callers hand over the full point set.
	Upsert(ctx context.Context, name string, points []VectorPoint) error

	// Search returns the topK nearest points to the query vector, in
	// the store's native ranking order.
	Search(ctx context.Context, name string, vector []float32, topK int) ([]domain.QueryResult, error)

	// DeleteCollection removes the collection and all its points.
	DeleteCollection(ctx context.Context, name string) error
}
