package domain

import (
	"fmt"
	"time"
)

// JobType identifies how a job's source content arrives.
type JobType string

// Job types.
const (
	JobTypeUpload JobType = "upload"
	JobTypeScrape JobType = "scrape"
	JobTypeManual JobType = "manual"
)

// JobStatus is the parse-pipeline lifecycle of a job.
type JobStatus string

// Job statuses. Completed and Failed are terminal.
const (
	JobPending   JobStatus = "pending"
	JobParsing   JobStatus = "parsing"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// IndexingStatus tracks a job's participation in an index sync.
// It moves independently of JobStatus and is driven only by the
// sync orchestrator.
type IndexingStatus string

// Indexing statuses.
const (
	IndexingIdle       IndexingStatus = "idle"
	IndexingProcessing IndexingStatus = "processing"
	IndexingCompleted  IndexingStatus = "completed"
	IndexingFailed     IndexingStatus = "failed"
)

// Job tracks one source document's processing lifecycle.
// A job is owned by the ingest pipeline; indexes reference jobs by
// id but never own them.
type Job struct {
	// ID is the unique identifier for the job.
	ID string

	// ProjectID links to the owning project.
	ProjectID string

	// Filename is the uploaded filename or source URL.
	Filename string

	// Type identifies how the content arrived.
	Type JobType

	// Status is the parse-pipeline status.
	Status JobStatus

	// IndexingStatus is the orchestrator-driven indexing status.
	IndexingStatus IndexingStatus

	// FileSize is the size of the raw source in bytes.
	FileSize int64

	// TextSize is the size of the extracted text in bytes.
	TextSize int64

	// Error holds the failure message when Status is failed.
	Error string

	// CreatedAt is when the job was created.
	CreatedAt time.Time

	// UpdatedAt is when the job was last updated.
	UpdatedAt time.Time
}

// Terminal reports whether the job's parse status can no longer change.
// IndexingStatus may still change on a terminal job.
func (j *Job) Terminal() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// StartParsing moves a pending job into parsing.
func (j *Job) StartParsing(now time.Time) error {
	if j.Status != JobPending {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobParsing)
	}
	j.Status = JobParsing
	j.UpdatedAt = now
	return nil
}

// Complete marks parsing as successful and records the content sizes.
func (j *Job) Complete(fileSize, textSize int64, now time.Time) error {
	if j.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobCompleted)
	}
	j.Status = JobCompleted
	j.FileSize = fileSize
	j.TextSize = textSize
	j.Error = ""
	j.UpdatedAt = now
	return nil
}

// Fail marks parsing as failed with the given message.
func (j *Job) Fail(msg string, now time.Time) error {
	if j.Terminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, j.Status, JobFailed)
	}
	j.Status = JobFailed
	j.Error = msg
	j.UpdatedAt = now
	return nil
}

// SetIndexing updates the orchestrator-driven indexing status.
// Unlike the parse status this is permitted on terminal jobs; the
// orchestrator re-marks jobs on every sync.
func (j *Job) SetIndexing(status IndexingStatus, now time.Time) {
	j.IndexingStatus = status
	j.UpdatedAt = now
}
