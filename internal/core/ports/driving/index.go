package driving

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// IndexManager creates, updates, syncs and deletes indexes.
type IndexManager interface {
	// CreateIndex validates the job set (1..MaxJobsPerIndex completed
	// jobs of the same project) and persists a new index in created state.
	CreateIndex(ctx context.Context, projectID, name, description string, jobIDs []string) (*domain.Index, error)

	// UpdateIndex replaces the bound job set after the same validation.
	// A membership change resets the index and forces a fresh sync.
	UpdateIndex(ctx context.Context, indexID string, jobIDs []string) (*domain.Index, error)

	// RequestSync starts a background sync and returns immediately.
	// Requesting sync on a syncing index is a no-op returning the
	// in-progress status; on a synced index with unchanged membership
	// it returns success without doing work.
	RequestSync(ctx context.Context, indexID, embeddingModel string) (*SyncAck, error)

	// IndexStatus returns an index's current persisted state together
	// with its bound jobs.
	IndexStatus(ctx context.Context, indexID string) (*IndexDetail, error)

	// ListIndexes returns all non-deleted indexes for a project.
	ListIndexes(ctx context.Context, projectID string) ([]domain.Index, error)

	// DeleteIndex tombstones the index and deletes its vector
	// collection best-effort.
	DeleteIndex(ctx context.Context, indexID string) error

	// Wait blocks until all background syncs started by this manager
	// have finished. Intended for CLI shutdown and tests.
	Wait()
}

// SyncAck is the immediate response to a sync request. The caller polls
// IndexStatus thereafter; there is no completion callback.
type SyncAck struct {
	// IndexID identifies the index.
	IndexID string

	// Status is the index status at acknowledgement time.
	Status domain.IndexStatus

	// AlreadySynced reports the no-work fast path: the index was
	// synced with unchanged membership.
	AlreadySynced bool

	// ChunksCount is populated on the AlreadySynced fast path.
	ChunksCount int

	// Message describes what the request did.
	Message string
}

// IndexDetail is an index record with its bound jobs resolved.
type IndexDetail struct {
	// Index is the index record.
	Index domain.Index

	// Jobs are the bound job records, in JobIDs order where present.
	Jobs []domain.Job
}
