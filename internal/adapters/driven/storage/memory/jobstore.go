// Package memory provides in-memory implementations of the metadata
// and blob store ports. Used by tests and as a no-infrastructure mode.
package memory

import (
	"context"
	"sync"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// Ensure JobStore implements the interface.
var _ driven.JobStore = (*JobStore)(nil)

// JobStore is an in-memory implementation of driven.JobStore.
// The mutex serialises every read-modify-write per job id.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]domain.Job
}

// NewJobStore creates a new in-memory job store.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]domain.Job)}
}

// Create persists a new job record.
func (s *JobStore) Create(_ context.Context, job *domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.jobs[job.ID] = *job
	return nil
}

// Get retrieves a job by id.
func (s *JobStore) Get(_ context.Context, id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &job, nil
}

// GetMany retrieves jobs by id; missing ids are absent from the result.
func (s *JobStore) GetMany(_ context.Context, ids []string) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Job, 0, len(ids))
	for _, id := range ids {
		if job, ok := s.jobs[id]; ok {
			result = append(result, job)
		}
	}
	return result, nil
}

// ListByProject returns all jobs for a project.
func (s *JobStore) ListByProject(_ context.Context, projectID string) ([]domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Job
	for _, job := range s.jobs {
		if job.ProjectID == projectID {
			result = append(result, job)
		}
	}
	return result, nil
}

// Update applies fn to the current record atomically.
func (s *JobStore) Update(_ context.Context, id string, fn func(*domain.Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	if err := fn(&job); err != nil {
		return err
	}
	s.jobs[id] = job
	return nil
}

// Delete removes a job record.
func (s *JobStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.jobs, id)
	return nil
}
