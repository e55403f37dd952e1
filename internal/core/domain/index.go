package domain

import (
	"fmt"
	"time"
)

// MaxJobsPerIndex is the upper bound on jobs bound to a single index.
const MaxJobsPerIndex = 5

// IndexStatus is the sync lifecycle of an index.
type IndexStatus string

// Index statuses.
const (
	IndexCreated    IndexStatus = "created"
	IndexSyncing    IndexStatus = "syncing"
	IndexSynced     IndexStatus = "synced"
	IndexSyncFailed IndexStatus = "sync_failed"
	IndexDeleted    IndexStatus = "deleted"
)

// Index is a named grouping of 1..MaxJobsPerIndex completed jobs
// backing one vector-store collection. The collection name is the
// index id.
type Index struct {
	// ID is the unique identifier for the index.
	ID string

	// ProjectID links to the owning project.
	ProjectID string

	// Name is the human-readable name.
	Name string

	// Description is an optional free-text description.
	Description string

	// JobIDs are the bound jobs, in creation order.
	JobIDs []string

	// Status is the sync lifecycle status.
	Status IndexStatus

	// Synced is true only after a successful sync. Synced implies
	// Status == IndexSynced and ChunksCount > 0.
	Synced bool

	// EmbeddingModel is the model recorded at sync time. Queries must
	// embed with this exact model.
	EmbeddingModel string

	// ChunksCount is the number of chunks upserted by the last
	// successful sync.
	ChunksCount int

	// EmbeddingDimension is the vector dimension of the collection.
	EmbeddingDimension int

	// SyncStartedAt is when the last sync began.
	SyncStartedAt *time.Time

	// SyncCompletedAt is when the last successful sync finished.
	SyncCompletedAt *time.Time

	// SyncFailedAt is when the last failed sync gave up.
	SyncFailedAt *time.Time

	// SyncError holds the failure message when Status is sync_failed.
	SyncError string

	// CreatedAt is when the index was created.
	CreatedAt time.Time

	// UpdatedAt is when the index was last updated.
	UpdatedAt time.Time
}

// CollectionName returns the vector-store collection backing this index.
func (i *Index) CollectionName() string {
	return i.ID
}

// CanSync reports whether a sync may start from the current status.
func (i *Index) CanSync() bool {
	switch i.Status {
	case IndexCreated, IndexSynced, IndexSyncFailed:
		return true
	default:
		return false
	}
}

// BeginSync moves the index into syncing and records the requested
// embedding model. Re-syncing a synced index first clears the success
// fields so stale reads are impossible while the sync runs.
func (i *Index) BeginSync(model string, now time.Time) error {
	if i.Status == IndexSyncing {
		return ErrSyncInProgress
	}
	if !i.CanSync() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, IndexSyncing)
	}
	i.Synced = false
	i.ChunksCount = 0
	i.EmbeddingDimension = 0
	i.SyncCompletedAt = nil
	i.SyncError = ""
	i.Status = IndexSyncing
	i.EmbeddingModel = model
	i.SyncStartedAt = &now
	i.UpdatedAt = now
	return nil
}

// CompleteSync records a successful sync.
func (i *Index) CompleteSync(chunksCount, dimension int, now time.Time) error {
	if i.Status != IndexSyncing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, IndexSynced)
	}
	i.Status = IndexSynced
	i.Synced = true
	i.ChunksCount = chunksCount
	i.EmbeddingDimension = dimension
	i.SyncCompletedAt = &now
	i.SyncError = ""
	i.UpdatedAt = now
	return nil
}

// FailSync records a failed sync. The index must never remain stuck
// at syncing, so this is the only other exit from that state.
func (i *Index) FailSync(msg string, now time.Time) error {
	if i.Status != IndexSyncing {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, i.Status, IndexSyncFailed)
	}
	i.Status = IndexSyncFailed
	i.Synced = false
	i.SyncError = msg
	i.SyncFailedAt = &now
	i.UpdatedAt = now
	return nil
}

// ReplaceJobs swaps the bound job set and resets the index to created,
// forcing a fresh sync. Success fields are cleared so a poller never
// observes a synced index with stale membership.
func (i *Index) ReplaceJobs(jobIDs []string, now time.Time) error {
	if i.Status == IndexSyncing {
		return ErrSyncInProgress
	}
	i.JobIDs = append([]string(nil), jobIDs...)
	i.Status = IndexCreated
	i.Synced = false
	i.ChunksCount = 0
	i.EmbeddingDimension = 0
	i.SyncCompletedAt = nil
	i.SyncError = ""
	i.UpdatedAt = now
	return nil
}

// MarkDeleted tombstones the index record.
func (i *Index) MarkDeleted(now time.Time) {
	i.Status = IndexDeleted
	i.Synced = false
	i.UpdatedAt = now
}

// SameJobs reports whether the given job set matches the bound set,
// ignoring order. A membership change forces a fresh sync.
func (i *Index) SameJobs(jobIDs []string) bool {
	if len(jobIDs) != len(i.JobIDs) {
		return false
	}
	current := make(map[string]struct{}, len(i.JobIDs))
	for _, id := range i.JobIDs {
		current[id] = struct{}{}
	}
	for _, id := range jobIDs {
		if _, ok := current[id]; !ok {
			return false
		}
	}
	return true
}
