package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex() Index {
	return Index{
		ID:        "idx-1",
		ProjectID: "proj-1",
		Name:      "docs",
		JobIDs:    []string{"job-1", "job-2"},
		Status:    IndexCreated,
	}
}

// TestIndex_BeginSync tests the created -> syncing transition
func TestIndex_BeginSync(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()

	require.NoError(t, idx.BeginSync("text-embedding-3-small", now))

	assert.Equal(t, IndexSyncing, idx.Status)
	assert.Equal(t, "text-embedding-3-small", idx.EmbeddingModel)
	assert.False(t, idx.Synced)
	require.NotNil(t, idx.SyncStartedAt)
	assert.Equal(t, now, *idx.SyncStartedAt)
}

// TestIndex_BeginSyncWhileSyncing tests the in-flight guard
func TestIndex_BeginSyncWhileSyncing(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))

	assert.ErrorIs(t, idx.BeginSync("m", now), ErrSyncInProgress)
}

// TestIndex_CompleteSync tests the syncing -> synced transition
func TestIndex_CompleteSync(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))

	require.NoError(t, idx.CompleteSync(42, 1536, now.Add(time.Minute)))

	assert.Equal(t, IndexSynced, idx.Status)
	assert.True(t, idx.Synced)
	assert.Equal(t, 42, idx.ChunksCount)
	assert.Equal(t, 1536, idx.EmbeddingDimension)
	require.NotNil(t, idx.SyncCompletedAt)
}

// TestIndex_FailSync tests the syncing -> sync_failed transition
func TestIndex_FailSync(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))

	require.NoError(t, idx.FailSync("no content downloaded from any job", now))

	assert.Equal(t, IndexSyncFailed, idx.Status)
	assert.False(t, idx.Synced)
	assert.Equal(t, "no content downloaded from any job", idx.SyncError)
	require.NotNil(t, idx.SyncFailedAt)
}

// TestIndex_RetryAfterFailure tests sync_failed -> syncing retry
func TestIndex_RetryAfterFailure(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))
	require.NoError(t, idx.FailSync("boom", now))

	require.NoError(t, idx.BeginSync("m", now))
	assert.Equal(t, IndexSyncing, idx.Status)
	assert.Empty(t, idx.SyncError)
}

// TestIndex_ResyncClearsSuccessFields tests that re-syncing a synced
// index clears the success fields before the transition completes, so
// a concurrent poller never sees a stale success.
func TestIndex_ResyncClearsSuccessFields(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))
	require.NoError(t, idx.CompleteSync(10, 384, now))

	require.NoError(t, idx.BeginSync("m", now.Add(time.Hour)))

	assert.False(t, idx.Synced)
	assert.Zero(t, idx.ChunksCount)
	assert.Zero(t, idx.EmbeddingDimension)
	assert.Nil(t, idx.SyncCompletedAt)
}

// TestIndex_CompleteSyncRequiresSyncing tests completion from wrong states
func TestIndex_CompleteSyncRequiresSyncing(t *testing.T) {
	idx := newTestIndex()
	assert.ErrorIs(t, idx.CompleteSync(1, 1, time.Now()), ErrInvalidTransition)
	assert.ErrorIs(t, idx.FailSync("x", time.Now()), ErrInvalidTransition)
}

// TestIndex_ReplaceJobs tests membership change forcing a resync
func TestIndex_ReplaceJobs(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))
	require.NoError(t, idx.CompleteSync(10, 384, now))

	require.NoError(t, idx.ReplaceJobs([]string{"job-3"}, now))

	assert.Equal(t, IndexCreated, idx.Status)
	assert.False(t, idx.Synced)
	assert.Equal(t, []string{"job-3"}, idx.JobIDs)
	assert.Zero(t, idx.ChunksCount)
}

// TestIndex_ReplaceJobsWhileSyncing tests the in-flight guard on updates
func TestIndex_ReplaceJobsWhileSyncing(t *testing.T) {
	now := time.Now()
	idx := newTestIndex()
	require.NoError(t, idx.BeginSync("m", now))

	assert.ErrorIs(t, idx.ReplaceJobs([]string{"job-3"}, now), ErrSyncInProgress)
}

// TestIndex_SameJobs tests membership comparison ignoring order
func TestIndex_SameJobs(t *testing.T) {
	idx := newTestIndex()

	assert.True(t, idx.SameJobs([]string{"job-2", "job-1"}))
	assert.False(t, idx.SameJobs([]string{"job-1"}))
	assert.False(t, idx.SameJobs([]string{"job-1", "job-3"}))
}

// TestIndex_MarkDeleted tests tombstoning
func TestIndex_MarkDeleted(t *testing.T) {
	idx := newTestIndex()
	idx.MarkDeleted(time.Now())

	assert.Equal(t, IndexDeleted, idx.Status)
	assert.False(t, idx.CanSync())
}
