package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// TestJobStore_CRUD tests the basic job lifecycle through the store
func TestJobStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()

	job := &domain.Job{ID: "job-1", ProjectID: "proj-1", Status: domain.JobPending}
	require.NoError(t, s.Create(ctx, job))
	assert.ErrorIs(t, s.Create(ctx, job), domain.ErrAlreadyExists)

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, got.Status)

	require.NoError(t, s.Update(ctx, "job-1", func(j *domain.Job) error {
		return j.StartParsing(time.Now())
	}))
	got, err = s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobParsing, got.Status)

	require.NoError(t, s.Delete(ctx, "job-1"))
	_, err = s.Get(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestJobStore_UpdateAborts tests that a failing fn leaves the record untouched
func TestJobStore_UpdateAborts(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	require.NoError(t, s.Create(ctx, &domain.Job{ID: "job-1", Status: domain.JobCompleted}))

	err := s.Update(ctx, "job-1", func(j *domain.Job) error {
		return j.Fail("late", time.Now())
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	got, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)
	assert.Empty(t, got.Error)
}

// TestJobStore_GetMany tests partial results for missing ids
func TestJobStore_GetMany(t *testing.T) {
	ctx := context.Background()
	s := NewJobStore()
	require.NoError(t, s.Create(ctx, &domain.Job{ID: "a"}))
	require.NoError(t, s.Create(ctx, &domain.Job{ID: "b"}))

	jobs, err := s.GetMany(ctx, []string{"a", "missing", "b"})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

// TestIndexStore_DeletedExcluded tests tombstoned indexes are invisible
func TestIndexStore_DeletedExcluded(t *testing.T) {
	ctx := context.Background()
	s := NewIndexStore()
	require.NoError(t, s.Create(ctx, &domain.Index{
		ID: "idx-1", ProjectID: "p", JobIDs: []string{"job-1"}, Status: domain.IndexCreated,
	}))

	require.NoError(t, s.Update(ctx, "idx-1", func(i *domain.Index) error {
		i.MarkDeleted(time.Now())
		return nil
	}))

	_, err := s.Get(ctx, "idx-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	refs, err := s.ListReferencingJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Empty(t, refs)
}

// TestIndexStore_ListReferencingJob tests reference lookup
func TestIndexStore_ListReferencingJob(t *testing.T) {
	ctx := context.Background()
	s := NewIndexStore()
	require.NoError(t, s.Create(ctx, &domain.Index{ID: "idx-1", JobIDs: []string{"a", "b"}, Status: domain.IndexCreated}))
	require.NoError(t, s.Create(ctx, &domain.Index{ID: "idx-2", JobIDs: []string{"b"}, Status: domain.IndexSynced}))

	refs, err := s.ListReferencingJob(ctx, "b")
	require.NoError(t, err)
	assert.Len(t, refs, 2)

	refs, err = s.ListReferencingJob(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, refs, 1)
}

// TestIndexStore_IsolatedJobIDs tests that returned slices are copies
func TestIndexStore_IsolatedJobIDs(t *testing.T) {
	ctx := context.Background()
	s := NewIndexStore()
	require.NoError(t, s.Create(ctx, &domain.Index{ID: "idx-1", JobIDs: []string{"a"}, Status: domain.IndexCreated}))

	got, err := s.Get(ctx, "idx-1")
	require.NoError(t, err)
	got.JobIDs[0] = "mutated"

	again, err := s.Get(ctx, "idx-1")
	require.NoError(t, err)
	assert.Equal(t, "a", again.JobIDs[0])
}

// TestBlobStore_PutGetDelete tests blob round-trips
func TestBlobStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewBlobStore()

	ref, err := s.Put(ctx, "job-1", []byte("extracted text"))
	require.NoError(t, err)
	assert.Equal(t, "mem://job-1", ref)

	content, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "extracted text", string(content))

	removed, err := s.Delete(ctx, "job-1")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, "job-1")
	require.NoError(t, err)
	assert.False(t, removed)

	_, err = s.Get(ctx, "job-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// TestProjectStore_CRUD tests project record lifecycle
func TestProjectStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewProjectStore()

	require.NoError(t, s.Create(ctx, &domain.Project{ID: "p-1", Name: "demo"}))

	got, err := s.Get(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, "demo", got.Name)

	all, err := s.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Delete(ctx, "p-1"))
	_, err = s.Get(ctx, "p-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
