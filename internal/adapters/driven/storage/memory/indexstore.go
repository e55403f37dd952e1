package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// Ensure IndexStore implements the interface.
var _ driven.IndexStore = (*IndexStore)(nil)

// IndexStore is an in-memory implementation of driven.IndexStore.
// Update runs under the write lock, giving callers the
// read-check-then-write critical section the sync guard needs.
type IndexStore struct {
	mu      sync.RWMutex
	indexes map[string]domain.Index
}

// NewIndexStore creates a new in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{indexes: make(map[string]domain.Index)}
}

// Create persists a new index record.
func (s *IndexStore) Create(_ context.Context, idx *domain.Index) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[idx.ID]; ok {
		return domain.ErrAlreadyExists
	}
	stored := *idx
	stored.JobIDs = slices.Clone(idx.JobIDs)
	s.indexes[idx.ID] = stored
	return nil
}

// Get retrieves a non-deleted index by id.
func (s *IndexStore) Get(_ context.Context, id string) (*domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.indexes[id]
	if !ok || idx.Status == domain.IndexDeleted {
		return nil, domain.ErrNotFound
	}
	idx.JobIDs = slices.Clone(idx.JobIDs)
	return &idx, nil
}

// ListByProject returns all non-deleted indexes for a project.
func (s *IndexStore) ListByProject(_ context.Context, projectID string) ([]domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Index
	for _, idx := range s.indexes {
		if idx.ProjectID == projectID && idx.Status != domain.IndexDeleted {
			idx.JobIDs = slices.Clone(idx.JobIDs)
			result = append(result, idx)
		}
	}
	return result, nil
}

// ListReferencingJob returns non-deleted indexes bound to the job.
func (s *IndexStore) ListReferencingJob(_ context.Context, jobID string) ([]domain.Index, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Index
	for _, idx := range s.indexes {
		if idx.Status == domain.IndexDeleted {
			continue
		}
		if slices.Contains(idx.JobIDs, jobID) {
			idx.JobIDs = slices.Clone(idx.JobIDs)
			result = append(result, idx)
		}
	}
	return result, nil
}

// Update applies fn to the current record atomically.
func (s *IndexStore) Update(_ context.Context, id string, fn func(*domain.Index) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indexes[id]
	if !ok {
		return domain.ErrNotFound
	}
	idx.JobIDs = slices.Clone(idx.JobIDs)
	if err := fn(&idx); err != nil {
		return err
	}
	s.indexes[id] = idx
	return nil
}

// Delete removes an index record entirely.
func (s *IndexStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.indexes, id)
	return nil
}
