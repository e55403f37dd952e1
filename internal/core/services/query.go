package services

import (
	"context"
	"fmt"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/core/ports/driving"
)

// DefaultTopK is the number of results returned when the caller does
// not ask for a specific count.
const DefaultTopK = 5

// Ensure Querier implements the interface.
var _ driving.QueryService = (*Querier)(nil)

// Querier answers semantic searches against synced indexes. The query
// is embedded with the same model the index was built with, so the
// vectors live in the same space.
type Querier struct {
	indexes      driven.IndexStore
	embedder     driven.EmbeddingProvider
	vectors      driven.VectorStore
	defaultModel string
}

// NewQuerier creates a query service.
func NewQuerier(indexes driven.IndexStore, embedder driven.EmbeddingProvider, vectors driven.VectorStore) *Querier {
	return &Querier{
		indexes:      indexes,
		embedder:     embedder,
		vectors:      vectors,
		defaultModel: DefaultEmbeddingModel,
	}
}

// Query embeds the question and searches the index's collection.
// Only synced indexes can be queried.
func (s *Querier) Query(ctx context.Context, indexID, query string, topK int) (*driving.QueryAnswer, error) {
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	idx, err := s.indexes.Get(ctx, indexID)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	if !idx.Synced || idx.Status != domain.IndexSynced {
		return nil, fmt.Errorf("%w: index is %s", domain.ErrIndexNotReady, idx.Status)
	}

	model := idx.EmbeddingModel
	if model == "" {
		model = s.defaultModel
	}
	vecs, err := s.embedder.Embed(ctx, []string{query}, model)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("%w: expected 1 query vector, got %d", domain.ErrProviderFailure, len(vecs))
	}

	results, err := s.vectors.Search(ctx, idx.CollectionName(), vecs[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	return &driving.QueryAnswer{
		Query:          query,
		Results:        results,
		IndexID:        idx.ID,
		IndexName:      idx.Name,
		DocumentsCount: len(idx.JobIDs),
		ChunksCount:    idx.ChunksCount,
	}, nil
}
