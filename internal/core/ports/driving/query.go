package driving

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// QueryService answers similarity queries against synced indexes.
type QueryService interface {
	// Query embeds the query text with the index's recorded embedding
	// model and returns the topK nearest chunks in store order.
	// Querying an index that is not synced fails with
	// domain.ErrIndexNotReady.
	Query(ctx context.Context, indexID, query string, topK int) (*QueryAnswer, error)
}

// QueryAnswer is a ranked result set plus index context.
type QueryAnswer struct {
	// Query is the original query text.
	Query string

	// Results are the ranked hits in the store's native order.
	Results []domain.QueryResult

	// IndexID identifies the queried index.
	IndexID string

	// IndexName is the index's human-readable name.
	IndexName string

	// DocumentsCount is the number of jobs bound to the index.
	DocumentsCount int

	// ChunksCount is the index's chunk count at last sync.
	ChunksCount int
}
