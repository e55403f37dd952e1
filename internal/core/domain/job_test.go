package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestJob_Lifecycle tests the pending -> parsing -> completed path
func TestJob_Lifecycle(t *testing.T) {
	now := time.Now()
	job := Job{
		ID:             "job-1",
		ProjectID:      "proj-1",
		Filename:       "report.pdf",
		Type:           JobTypeUpload,
		Status:         JobPending,
		IndexingStatus: IndexingIdle,
		CreatedAt:      now,
	}

	require.NoError(t, job.StartParsing(now))
	assert.Equal(t, JobParsing, job.Status)

	require.NoError(t, job.Complete(2048, 512, now.Add(time.Second)))
	assert.Equal(t, JobCompleted, job.Status)
	assert.Equal(t, int64(2048), job.FileSize)
	assert.Equal(t, int64(512), job.TextSize)
	assert.Empty(t, job.Error)
	assert.True(t, job.Terminal())
}

// TestJob_FailurePath tests the parsing -> failed path
func TestJob_FailurePath(t *testing.T) {
	now := time.Now()
	job := Job{ID: "job-1", Status: JobPending}

	require.NoError(t, job.StartParsing(now))
	require.NoError(t, job.Fail("no content extracted from document", now))

	assert.Equal(t, JobFailed, job.Status)
	assert.Equal(t, "no content extracted from document", job.Error)
	assert.True(t, job.Terminal())
}

// TestJob_TerminalIsImmutable tests that terminal jobs reject parse transitions
func TestJob_TerminalIsImmutable(t *testing.T) {
	now := time.Now()

	job := Job{ID: "job-1", Status: JobCompleted}
	assert.ErrorIs(t, job.Fail("late failure", now), ErrInvalidTransition)
	assert.ErrorIs(t, job.StartParsing(now), ErrInvalidTransition)
	assert.Equal(t, JobCompleted, job.Status)

	failed := Job{ID: "job-2", Status: JobFailed}
	assert.ErrorIs(t, failed.Complete(1, 1, now), ErrInvalidTransition)
	assert.Equal(t, JobFailed, failed.Status)
}

// TestJob_IndexingStatusIndependent tests that indexing status moves on terminal jobs
func TestJob_IndexingStatusIndependent(t *testing.T) {
	now := time.Now()
	job := Job{ID: "job-1", Status: JobCompleted, IndexingStatus: IndexingIdle}

	job.SetIndexing(IndexingProcessing, now)
	assert.Equal(t, IndexingProcessing, job.IndexingStatus)
	assert.Equal(t, JobCompleted, job.Status)

	job.SetIndexing(IndexingCompleted, now)
	assert.Equal(t, IndexingCompleted, job.IndexingStatus)
}

// TestJob_StartParsingRequiresPending tests the pending guard
func TestJob_StartParsingRequiresPending(t *testing.T) {
	job := Job{ID: "job-1", Status: JobParsing}
	assert.ErrorIs(t, job.StartParsing(time.Now()), ErrInvalidTransition)
}
