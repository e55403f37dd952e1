package driving

import (
	"context"

	"github.com/silica-labs/corpusd/internal/core/domain"
)

// IngestService creates jobs and drives their parse lifecycle.
type IngestService interface {
	// Upload creates an upload job for the given file bytes and starts
	// parsing in the background. Returns the job in pending/parsing state.
	Upload(ctx context.Context, projectID, filename string, data []byte) (*domain.Job, error)

	// Scrape creates a scrape job for the given URL and starts the
	// fetch-and-extract in the background.
	Scrape(ctx context.Context, projectID, url string) (*domain.Job, error)

	// Manual creates a job whose extracted text is supplied directly.
	// The job completes synchronously.
	Manual(ctx context.Context, projectID, name, text string) (*domain.Job, error)

	// Job returns a job's current persisted state.
	Job(ctx context.Context, jobID string) (*domain.Job, error)

	// ListJobs returns all jobs for a project.
	ListJobs(ctx context.Context, projectID string) ([]domain.Job, error)

	// Content returns the extracted text of a completed job together
	// with content statistics.
	Content(ctx context.Context, jobID string) (*JobContent, error)

	// Preview returns the first n lines of a completed job's text.
	Preview(ctx context.Context, jobID string, lines int) (*JobPreview, error)

	// DeleteJob removes a job, its blob content, then its record.
	// Deleting a job referenced by a live index fails with a
	// domain.ConflictError naming the referencing indexes.
	DeleteJob(ctx context.Context, jobID string) error

	// Wait blocks until all background parse work started by this
	// service has finished. Intended for CLI shutdown and tests.
	Wait()
}

// ContentStats summarises a job's extracted text.
type ContentStats struct {
	// CharacterCount is the rune count of the text.
	CharacterCount int

	// WordCount is the whitespace-separated word count.
	WordCount int

	// LineCount is the newline-separated line count.
	LineCount int

	// SizeKB is the UTF-8 byte size in kilobytes.
	SizeKB float64
}

// JobContent is a completed job's full extracted text.
type JobContent struct {
	// Job is the job record.
	Job domain.Job

	// Text is the extracted text.
	Text string

	// Stats summarises the text.
	Stats ContentStats
}

// JobPreview is the head of a completed job's extracted text.
type JobPreview struct {
	// Job is the job record.
	Job domain.Job

	// Text is the first Lines lines of the extracted text.
	Text string

	// Lines is the number of lines requested.
	Lines int

	// Truncated reports whether the full text has more lines.
	Truncated bool
}
