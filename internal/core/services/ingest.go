package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/core/ports/driving"
	"github.com/silica-labs/corpusd/internal/logger"
)

// Ensure Ingestor implements the interface.
var _ driving.IngestService = (*Ingestor)(nil)

// Ingestor creates jobs and drives text extraction. Upload and scrape
// jobs parse in a background goroutine; manual jobs complete
// synchronously.
type Ingestor struct {
	projects driven.ProjectStore
	jobs     driven.JobStore
	indexes  driven.IndexStore
	blobs    driven.BlobStore
	parsers  []driven.DocumentParser
	fetcher  driven.PageFetcher

	now func() time.Time
	wg  sync.WaitGroup
}

// IngestOption configures the ingestor.
type IngestOption func(*Ingestor)

// WithIngestClock overrides time for tests.
func WithIngestClock(fn func() time.Time) IngestOption {
	return func(s *Ingestor) {
		s.now = fn
	}
}

// NewIngestor creates an ingest service. Parsers are tried in order;
// the first whose Supports matches the filename wins.
func NewIngestor(
	projects driven.ProjectStore,
	jobs driven.JobStore,
	indexes driven.IndexStore,
	blobs driven.BlobStore,
	parsers []driven.DocumentParser,
	fetcher driven.PageFetcher,
	opts ...IngestOption,
) *Ingestor {
	s := &Ingestor{
		projects: projects,
		jobs:     jobs,
		indexes:  indexes,
		blobs:    blobs,
		parsers:  parsers,
		fetcher:  fetcher,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Upload creates an upload job and starts parsing in the background.
func (s *Ingestor) Upload(ctx context.Context, projectID, filename string, data []byte) (*domain.Job, error) {
	if filename == "" {
		return nil, fmt.Errorf("%w: filename is required", domain.ErrInvalidInput)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", domain.ErrInvalidInput)
	}
	parser := s.parserFor(filename)
	if parser == nil {
		return nil, fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, filename)
	}

	job, err := s.createJob(ctx, projectID, filename, domain.JobTypeUpload)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.parseInBackground(job.ID, int64(len(data)), func(ctx context.Context) (string, error) {
			return parser.Parse(ctx, data)
		})
	}()
	return job, nil
}

// Scrape creates a scrape job and fetches the URL in the background.
func (s *Ingestor) Scrape(ctx context.Context, projectID, url string) (*domain.Job, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidInput)
	}
	if s.fetcher == nil {
		return nil, fmt.Errorf("%w: page fetcher not configured", domain.ErrInvalidInput)
	}

	job, err := s.createJob(ctx, projectID, url, domain.JobTypeScrape)
	if err != nil {
		return nil, err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.parseInBackground(job.ID, 0, func(ctx context.Context) (string, error) {
			return s.fetcher.Fetch(ctx, url)
		})
	}()
	return job, nil
}

// Manual creates a job from directly supplied text. There is nothing
// to parse, so the job completes before returning.
func (s *Ingestor) Manual(ctx context.Context, projectID, name, text string) (*domain.Job, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: text is required", domain.ErrInvalidInput)
	}
	if name == "" {
		name = "manual"
	}

	job, err := s.createJob(ctx, projectID, name, domain.JobTypeManual)
	if err != nil {
		return nil, err
	}

	if _, err := s.blobs.Put(ctx, job.ID, []byte(text)); err != nil {
		s.markFailed(ctx, job.ID, fmt.Sprintf("store content: %v", err))
		return nil, fmt.Errorf("store content: %w", err)
	}
	now := s.now()
	err = s.jobs.Update(ctx, job.ID, func(j *domain.Job) error {
		if err := j.StartParsing(now); err != nil {
			return err
		}
		return j.Complete(int64(len(text)), int64(len(text)), now)
	})
	if err != nil {
		return nil, fmt.Errorf("complete job: %w", err)
	}
	return s.jobs.Get(ctx, job.ID)
}

// Job returns a job's current persisted state.
func (s *Ingestor) Job(ctx context.Context, jobID string) (*domain.Job, error) {
	return s.jobs.Get(ctx, jobID)
}

// ListJobs returns all jobs for a project.
func (s *Ingestor) ListJobs(ctx context.Context, projectID string) ([]domain.Job, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return s.jobs.ListByProject(ctx, projectID)
}

// Content returns a completed job's extracted text with statistics.
func (s *Ingestor) Content(ctx context.Context, jobID string) (*driving.JobContent, error) {
	job, text, err := s.completedText(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return &driving.JobContent{
		Job:   *job,
		Text:  text,
		Stats: contentStats(text),
	}, nil
}

// Preview returns the first lines of a completed job's text.
func (s *Ingestor) Preview(ctx context.Context, jobID string, lines int) (*driving.JobPreview, error) {
	if lines <= 0 {
		lines = 50
	}
	job, text, err := s.completedText(ctx, jobID)
	if err != nil {
		return nil, err
	}
	all := strings.Split(text, "\n")
	truncated := len(all) > lines
	if truncated {
		all = all[:lines]
	}
	return &driving.JobPreview{
		Job:       *job,
		Text:      strings.Join(all, "\n"),
		Lines:     lines,
		Truncated: truncated,
	}, nil
}

// DeleteJob removes a job. Deletion is refused with a ConflictError
// while any live index references the job; the blob is removed
// best-effort before the record goes.
func (s *Ingestor) DeleteJob(ctx context.Context, jobID string) error {
	if _, err := s.jobs.Get(ctx, jobID); err != nil {
		return fmt.Errorf("get job: %w", err)
	}

	refs, err := s.indexes.ListReferencingJob(ctx, jobID)
	if err != nil {
		return fmt.Errorf("check references: %w", err)
	}
	if len(refs) > 0 {
		names := make([]string, len(refs))
		for i, idx := range refs {
			names[i] = idx.Name
		}
		return &domain.ConflictError{JobID: jobID, IndexNames: names}
	}

	if _, err := s.blobs.Delete(ctx, jobID); err != nil {
		logger.Warn("Failed to delete blob for job %s: %v", jobID, err)
	}
	if err := s.jobs.Delete(ctx, jobID); err != nil {
		return fmt.Errorf("delete job: %w", err)
	}
	logger.Info("Deleted job %s", jobID)
	return nil
}

// Wait blocks until all background parse work has finished.
func (s *Ingestor) Wait() {
	s.wg.Wait()
}

// parserFor returns the first parser supporting the filename, or nil.
func (s *Ingestor) parserFor(filename string) driven.DocumentParser {
	for _, p := range s.parsers {
		if p.Supports(filename) {
			return p
		}
	}
	return nil
}

// createJob validates the project and persists a pending job.
func (s *Ingestor) createJob(ctx context.Context, projectID, filename string, typ domain.JobType) (*domain.Job, error) {
	if _, err := s.projects.Get(ctx, projectID); err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	now := s.now()
	job := &domain.Job{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		Filename:       filename,
		Type:           typ,
		Status:         domain.JobPending,
		IndexingStatus: domain.IndexingIdle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}
	return job, nil
}

// parseInBackground runs one extraction and lands the job on completed
// or failed. fileSize 0 means the source size is unknown (scrapes).
func (s *Ingestor) parseInBackground(jobID string, fileSize int64, extract func(context.Context) (string, error)) {
	ctx := context.Background()

	err := s.jobs.Update(ctx, jobID, func(j *domain.Job) error {
		return j.StartParsing(s.now())
	})
	if err != nil {
		logger.Warn("Job %s could not start parsing: %v", jobID, err)
		return
	}

	text, err := extract(ctx)
	if err != nil {
		s.markFailed(ctx, jobID, err.Error())
		return
	}
	if strings.TrimSpace(text) == "" {
		s.markFailed(ctx, jobID, "no content extracted from document")
		return
	}

	if _, err := s.blobs.Put(ctx, jobID, []byte(text)); err != nil {
		s.markFailed(ctx, jobID, fmt.Sprintf("store content: %v", err))
		return
	}

	if fileSize == 0 {
		fileSize = int64(len(text))
	}
	textSize := int64(len(text))
	err = s.jobs.Update(ctx, jobID, func(j *domain.Job) error {
		return j.Complete(fileSize, textSize, s.now())
	})
	if err != nil {
		logger.Warn("Job %s could not complete: %v", jobID, err)
		return
	}
	logger.Info("Job %s completed: %d bytes of text", jobID, textSize)
}

// markFailed lands the job on failed with the given message.
func (s *Ingestor) markFailed(ctx context.Context, jobID, msg string) {
	logger.Warn("Job %s failed: %s", jobID, msg)
	err := s.jobs.Update(ctx, jobID, func(j *domain.Job) error {
		return j.Fail(msg, s.now())
	})
	if err != nil {
		logger.Warn("Job %s could not record failure: %v", jobID, err)
	}
}

// completedText loads a job, requires completed status, and fetches
// its extracted text.
func (s *Ingestor) completedText(ctx context.Context, jobID string) (*domain.Job, string, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, "", fmt.Errorf("get job: %w", err)
	}
	if job.Status != domain.JobCompleted {
		return nil, "", fmt.Errorf("%w: job is %s", domain.ErrJobNotCompleted, job.Status)
	}
	content, err := s.blobs.Get(ctx, jobID)
	if err != nil {
		return nil, "", fmt.Errorf("get content: %w", err)
	}
	return job, string(content), nil
}

// contentStats summarises extracted text.
func contentStats(text string) driving.ContentStats {
	return driving.ContentStats{
		CharacterCount: len([]rune(text)),
		WordCount:      len(strings.Fields(text)),
		LineCount:      len(strings.Split(text, "\n")),
		SizeKB:         float64(len(text)) / 1024,
	}
}
