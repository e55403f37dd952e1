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

// Ensure ProjectManager implements the interface.
var _ driving.ProjectService = (*ProjectManager)(nil)

// ProjectManager handles the project lifecycle. Deleting a project
// cascades over its indexes and jobs best-effort: every resource that
// can be removed is, and failures are logged rather than aborting the
// cascade.
type ProjectManager struct {
	projects driven.ProjectStore
	jobs     driven.JobStore
	indexes  driven.IndexStore
	blobs    driven.BlobStore
	vectors  driven.VectorStore

	now func() time.Time
}

// ProjectOption configures the project manager.
type ProjectOption func(*ProjectManager)

// WithProjectClock overrides time for tests.
func WithProjectClock(fn func() time.Time) ProjectOption {
	return func(s *ProjectManager) {
		s.now = fn
	}
}

// NewProjectManager creates a project service.
func NewProjectManager(
	projects driven.ProjectStore,
	jobs driven.JobStore,
	indexes driven.IndexStore,
	blobs driven.BlobStore,
	vectors driven.VectorStore,
	opts ...ProjectOption,
) *ProjectManager {
	s := &ProjectManager{
		projects: projects,
		jobs:     jobs,
		indexes:  indexes,
		blobs:    blobs,
		vectors:  vectors,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProject persists a new active project.
func (s *ProjectManager) CreateProject(ctx context.Context, name, description string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	now := s.now()
	project := &domain.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Status:      domain.ProjectActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	logger.Info("Created project %s (%s)", project.Name, project.ID)
	return project, nil
}

// Project returns a project by id.
func (s *ProjectManager) Project(ctx context.Context, projectID string) (*domain.Project, error) {
	return s.projects.Get(ctx, projectID)
}

// ListProjects returns all projects.
func (s *ProjectManager) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// DeleteProject removes a project and everything under it. Indexes go
// first (vector collections then records), jobs second (blobs then
// records), the project record last.
func (s *ProjectManager) DeleteProject(ctx context.Context, projectID string) error {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return fmt.Errorf("get project: %w", err)
	}

	indexes, err := s.indexes.ListByProject(ctx, projectID)
	if err != nil {
		logger.Warn("Failed to list indexes for project %s: %v", projectID, err)
	}
	for _, idx := range indexes {
		if err := s.vectors.DeleteCollection(ctx, idx.CollectionName()); err != nil {
			logger.Warn("Failed to delete collection for index %s: %v", idx.ID, err)
		}
		if err := s.indexes.Delete(ctx, idx.ID); err != nil {
			logger.Warn("Failed to delete index %s: %v", idx.ID, err)
		}
	}

	jobs, err := s.jobs.ListByProject(ctx, projectID)
	if err != nil {
		logger.Warn("Failed to list jobs for project %s: %v", projectID, err)
	}
	for _, job := range jobs {
		if _, err := s.blobs.Delete(ctx, job.ID); err != nil {
			logger.Warn("Failed to delete blob for job %s: %v", job.ID, err)
		}
		if err := s.jobs.Delete(ctx, job.ID); err != nil {
			logger.Warn("Failed to delete job %s: %v", job.ID, err)
		}
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	logger.Info("Deleted project %s with %d indexes and %d jobs", projectID, len(indexes), len(jobs))
	return nil
}
