package driven

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// JobStore persists job records.
//
// The store serialises each read-modify-write per job id: Update loads
// the current record, applies fn under the store's own synchronisation,
// and persists the result. Both the ingest path and background sync
// workers mutate jobs, so this is the only safe mutation entry point.
type JobStore interface {
	// Create persists a new job record.
	Create(ctx context.Context, job *domain.Job) error

	// Get retrieves a job by id.
	Get(ctx context.Context, id string) (*domain.Job, error)

	// GetMany retrieves jobs by id. Missing ids are simply absent from
	// the result; callers compare lengths to detect them.
	GetMany(ctx context.Context, ids []string) ([]domain.Job, error)

	// ListByProject returns all jobs for a project.
	ListByProject(ctx context.Context, projectID string) ([]domain.Job, error)

	// Update applies fn to the current record atomically and persists
	// the result. fn returning an error aborts the update.
	Update(ctx context.Context, id string, fn func(*domain.Job) error) error

	// Delete removes a job record.
	Delete(ctx context.Context, id string) error
}

// IndexStore persists index records. Tombstoned (deleted) indexes are
// excluded from reads.
//
// Update provides the read-check-then-write critical section the sync
// status guard requires: concurrent sync requests for the same index
// must not race the status field.
type IndexStore interface {
	// Create persists a new index record.
	Create(ctx context.Context, idx *domain.Index) error

	// Get retrieves a non-deleted index by id.
	Get(ctx context.Context, id string) (*domain.Index, error)

	// ListByProject returns all non-deleted indexes for a project.
	ListByProject(ctx context.Context, projectID string) ([]domain.Index, error)

	// ListReferencingJob returns all non-deleted indexes whose JobIDs
	// contain the given job id.
	ListReferencingJob(ctx context.Context, jobID string) ([]domain.Index, error)

	// Update applies fn to the current record atomically and persists
	// the result. fn returning an error aborts the update.
	Update(ctx context.Context, id string, fn func(*domain.Index) error) error

	// Delete removes an index record entirely.
	Delete(ctx context.Context, id string) error
}

// ProjectStore persists project records.
type ProjectStore interface {
	// Create persists a new project record.
	Create(ctx context.Context, p *domain.Project) error

	// Get retrieves a project by id.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// List returns all projects.
	List(ctx context.Context) ([]domain.Project, error)

	// Delete removes a project record.
	Delete(ctx context.Context, id string) error
}
