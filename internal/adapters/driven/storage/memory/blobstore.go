package memory

import (
	"context"
	"sync"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// Ensure BlobStore implements the interface.
var _ driven.BlobStore = (*BlobStore)(nil)

// BlobStore is an in-memory implementation of driven.BlobStore.
type BlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewBlobStore creates a new in-memory blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Put stores the content for a job, replacing any previous content.
func (s *BlobStore) Put(_ context.Context, jobID string, content []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(content))
	copy(stored, content)
	s.blobs[jobID] = stored
	return "mem://" + jobID, nil
}

// Get retrieves the content for a job.
func (s *BlobStore) Get(_ context.Context, jobID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	content, ok := s.blobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]byte, len(content))
	copy(out, content)
	return out, nil
}

// Delete removes the content for a job.
func (s *BlobStore) Delete(_ context.Context, jobID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[jobID]; !ok {
		return false, nil
	}
	delete(s.blobs, jobID)
	return true, nil
}
