package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// TestQuery tests a search against a synced index.
func TestQuery(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	jobID := env.addCompletedJob("alpha beta gamma delta epsilon")
	idx := env.createIndex(jobID)

	_, err := env.orchestrator.RequestSync(ctx, idx.ID, "")
	require.NoError(t, err)
	env.orchestrator.Wait()

	env.vectors.searchResults = []domain.QueryResult{
		{Text: "alpha beta gamma delta epsilon", Score: 0.92, DocumentSource: jobID},
	}

	svc := NewQuerier(env.indexes, env.embedder, env.vectors)
	answer, err := svc.Query(ctx, idx.ID, "what is alpha", 5)
	require.NoError(t, err)

	assert.Equal(t, "what is alpha", answer.Query)
	assert.Equal(t, idx.ID, answer.IndexID)
	assert.Equal(t, "test-index", answer.IndexName)
	assert.Equal(t, 1, answer.DocumentsCount)
	assert.Equal(t, 1, answer.ChunksCount)
	require.Len(t, answer.Results, 1)
	assert.Equal(t, jobID, answer.Results[0].DocumentSource)
	assert.InDelta(t, 0.92, float64(answer.Results[0].Score), 0.001)

	// The query is embedded with the model recorded at sync time.
	models := env.embedder.models
	assert.Equal(t, DefaultEmbeddingModel, models[len(models)-1])
}

// TestQuery_IndexNotReady tests that a never-synced index cannot be
// queried.
func TestQuery_IndexNotReady(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	jobID := env.addCompletedJob("alpha beta gamma delta epsilon")
	idx := env.createIndex(jobID)

	svc := NewQuerier(env.indexes, env.embedder, env.vectors)
	_, err := svc.Query(ctx, idx.ID, "anything", 5)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
	assert.Equal(t, 0, env.embedder.callCount())
}

// TestQuery_FailedIndexNotReady tests that a sync_failed index is
// rejected the same way.
func TestQuery_FailedIndexNotReady(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	jobID := env.addCompletedJob("alpha beta gamma delta epsilon")
	idx := env.createIndex(jobID)

	env.embedder.err = errors.New("down")
	_, err := env.orchestrator.RequestSync(ctx, idx.ID, "")
	require.NoError(t, err)
	env.orchestrator.Wait()
	env.embedder.err = nil

	svc := NewQuerier(env.indexes, env.embedder, env.vectors)
	_, err = svc.Query(ctx, idx.ID, "anything", 5)
	assert.ErrorIs(t, err, domain.ErrIndexNotReady)
}

// TestQuery_Validation tests input and lookup errors.
func TestQuery_Validation(t *testing.T) {
	env := newTestEnv()
	svc := NewQuerier(env.indexes, env.embedder, env.vectors)

	_, err := svc.Query(context.Background(), "some-index", "", 5)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = svc.Query(context.Background(), "missing", "anything", 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestQuery_DefaultTopK tests that a non-positive topK falls back to
// the default.
func TestQuery_DefaultTopK(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	jobID := env.addCompletedJob("alpha beta gamma delta epsilon")
	idx := env.createIndex(jobID)

	_, err := env.orchestrator.RequestSync(ctx, idx.ID, "")
	require.NoError(t, err)
	env.orchestrator.Wait()

	for i := 0; i < DefaultTopK+3; i++ {
		env.vectors.searchResults = append(env.vectors.searchResults, domain.QueryResult{
			Text:           "chunk",
			Score:          1 - float32(i)/10,
			DocumentSource: jobID,
		})
	}

	svc := NewQuerier(env.indexes, env.embedder, env.vectors)
	answer, err := svc.Query(ctx, idx.ID, "anything", 0)
	require.NoError(t, err)
	assert.Len(t, answer.Results, DefaultTopK)
}
