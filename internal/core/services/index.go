package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/core/ports/driving"
	"github.com/silica-labs/corpusd/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexManager = (*IndexService)(nil)

// IndexService manages index records and delegates syncing to the
// orchestrator.
type IndexService struct {
	projects     driven.ProjectStore
	jobs         driven.JobStore
	indexes      driven.IndexStore
	vectors      driven.VectorStore
	orchestrator *SyncOrchestrator

	maxJobs int
	now     func() time.Time
}

// IndexOption configures the index service.
type IndexOption func(*IndexService)

// WithMaxJobsPerIndex overrides the bound-job limit.
func WithMaxJobsPerIndex(n int) IndexOption {
	return func(s *IndexService) {
		if n > 0 {
			s.maxJobs = n
		}
	}
}

// WithIndexClock overrides time for tests.
func WithIndexClock(fn func() time.Time) IndexOption {
	return func(s *IndexService) {
		s.now = fn
	}
}

// NewIndexService creates an index service.
func NewIndexService(
	projects driven.ProjectStore,
	jobs driven.JobStore,
	indexes driven.IndexStore,
	vectors driven.VectorStore,
	orchestrator *SyncOrchestrator,
	opts ...IndexOption,
) *IndexService {
	s := &IndexService{
		projects:     projects,
		jobs:         jobs,
		indexes:      indexes,
		vectors:      vectors,
		orchestrator: orchestrator,
		maxJobs:      domain.MaxJobsPerIndex,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateIndex validates the job set and persists a new index.
func (s *IndexService) CreateIndex(
	ctx context.Context, projectID, name, description string, jobIDs []string,
) (*domain.Index, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: index name is required", domain.ErrInvalidInput)
	}
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if err := s.validateJobSet(ctx, projectID, jobIDs); err != nil {
		return nil, err
	}

	now := s.now()
	idx := &domain.Index{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		Name:        name,
		Description: description,
		JobIDs:      append([]string(nil), jobIDs...),
		Status:      domain.IndexCreated,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.indexes.Create(ctx, idx); err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	logger.Info("Created index %s (%s) with %d jobs", idx.ID, name, len(jobIDs))
	return idx, nil
}

// UpdateIndex replaces the bound job set. A membership change resets
// the index to created, forcing a fresh sync; an identical set is a
// no-op.
func (s *IndexService) UpdateIndex(ctx context.Context, indexID string, jobIDs []string) (*domain.Index, error) {
	idx, err := s.indexes.Get(ctx, indexID)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	if err := s.validateJobSet(ctx, idx.ProjectID, jobIDs); err != nil {
		return nil, err
	}
	if idx.SameJobs(jobIDs) {
		return idx, nil
	}

	now := s.now()
	err = s.indexes.Update(ctx, indexID, func(i *domain.Index) error {
		return i.ReplaceJobs(jobIDs, now)
	})
	if err != nil {
		return nil, fmt.Errorf("update index: %w", err)
	}
	return s.indexes.Get(ctx, indexID)
}

// RequestSync starts a background sync through the orchestrator.
func (s *IndexService) RequestSync(ctx context.Context, indexID, embeddingModel string) (*driving.SyncAck, error) {
	return s.orchestrator.RequestSync(ctx, indexID, embeddingModel)
}

// IndexStatus returns the index with its bound jobs resolved.
func (s *IndexService) IndexStatus(ctx context.Context, indexID string) (*driving.IndexDetail, error) {
	idx, err := s.indexes.Get(ctx, indexID)
	if err != nil {
		return nil, fmt.Errorf("get index: %w", err)
	}
	jobs, err := s.jobs.GetMany(ctx, idx.JobIDs)
	if err != nil {
		return nil, fmt.Errorf("get jobs: %w", err)
	}
	return &driving.IndexDetail{Index: *idx, Jobs: jobs}, nil
}

// ListIndexes returns all non-deleted indexes for a project.
func (s *IndexService) ListIndexes(ctx context.Context, projectID string) ([]domain.Index, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.indexes.ListByProject(ctx, projectID)
}

// DeleteIndex tombstones the index after a best-effort removal of its
// vector collection. The collection failure is logged, never blocking.
func (s *IndexService) DeleteIndex(ctx context.Context, indexID string) error {
	idx, err := s.indexes.Get(ctx, indexID)
	if err != nil {
		return fmt.Errorf("get index: %w", err)
	}

	if err := s.vectors.DeleteCollection(ctx, idx.CollectionName()); err != nil {
		logger.Warn("Failed to delete collection for index %s: %v", indexID, err)
	}

	now := s.now()
	err = s.indexes.Update(ctx, indexID, func(i *domain.Index) error {
		i.MarkDeleted(now)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete index: %w", err)
	}
	logger.Info("Deleted index %s", indexID)
	return nil
}

// Wait blocks until all background syncs have finished.
func (s *IndexService) Wait() {
	s.orchestrator.Wait()
}

// validateJobSet enforces the bound-job rules: 1..maxJobs ids, all
// jobs exist, all completed, all in the given project.
func (s *IndexService) validateJobSet(ctx context.Context, projectID string, jobIDs []string) error {
	if len(jobIDs) == 0 {
		return fmt.Errorf("%w: at least one job is required", domain.ErrInvalidInput)
	}
	if len(jobIDs) > s.maxJobs {
		return fmt.Errorf("%w: maximum %d jobs allowed per index", domain.ErrInvalidInput, s.maxJobs)
	}
	seen := make(map[string]struct{}, len(jobIDs))
	for _, id := range jobIDs {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate job id %s", domain.ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}

	jobs, err := s.jobs.GetMany(ctx, jobIDs)
	if err != nil {
		return fmt.Errorf("get jobs: %w", err)
	}
	if len(jobs) != len(jobIDs) {
		return fmt.Errorf("%w: one or more jobs not found", domain.ErrNotFound)
	}
	for _, job := range jobs {
		if job.Status != domain.JobCompleted {
			return fmt.Errorf("%w: job %s is %s", domain.ErrJobNotCompleted, job.ID, job.Status)
		}
		if job.ProjectID != projectID {
			return fmt.Errorf("%w: job %s belongs to a different project", domain.ErrInvalidInput, job.ID)
		}
	}
	return nil
}
