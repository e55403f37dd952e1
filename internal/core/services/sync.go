package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/silica-labs/corpusd/internal/chunker"
	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/core/ports/driving"
	"github.com/silica-labs/corpusd/internal/logger"
	"github.com/silica-labs/corpusd/internal/tokenizer"
)

// DefaultEmbeddingModel is used when a sync request names no model.
const DefaultEmbeddingModel = "text-embedding-3-small"

// DefaultStaleSyncAfter bounds how long a persisted index may sit at
// syncing before a new request treats the sync as abandoned. A process
// that dies mid-sync leaves the status behind; without this bound the
// index would refuse every future request.
const DefaultStaleSyncAfter = 15 * time.Minute

// errSkipSync aborts the guarded status update on the idempotent
// fast paths without treating them as failures.
var errSkipSync = errors.New("skip sync")

// SyncOrchestrator drives an index through chunk -> embed -> upsert.
//
// A sync runs as a fire-and-forget background goroutine; the request
// handler flips the index to syncing and returns immediately, and the
// caller polls status thereafter. Only one sync per index is ever in
// flight: the status guard runs inside the index store's Update
// critical section, so concurrent requests cannot race the field.
type SyncOrchestrator struct {
	jobs     driven.JobStore
	indexes  driven.IndexStore
	blobs    driven.BlobStore
	embedder driven.EmbeddingProvider
	vectors  driven.VectorStore

	maxTokens      int
	overlapTokens  int
	defaultModel   string
	staleSyncAfter time.Duration

	newCodec func() chunker.Codec
	now      func() time.Time
	wg       sync.WaitGroup
}

// SyncOption configures the orchestrator.
type SyncOption func(*SyncOrchestrator)

// WithChunkBudget sets the chunker token budget and overlap carry.
func WithChunkBudget(maxTokens, overlapTokens int) SyncOption {
	return func(o *SyncOrchestrator) {
		if maxTokens > 0 {
			o.maxTokens = maxTokens
		}
		if overlapTokens >= 0 {
			o.overlapTokens = overlapTokens
		}
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) SyncOption {
	return func(o *SyncOrchestrator) {
		if model != "" {
			o.defaultModel = model
		}
	}
}

// WithStaleSyncTimeout sets how long a syncing index is trusted to
// still have a live sync behind it.
func WithStaleSyncTimeout(d time.Duration) SyncOption {
	return func(o *SyncOrchestrator) {
		if d > 0 {
			o.staleSyncAfter = d
		}
	}
}

// WithCodecFactory overrides how the token codec is built. One codec is
// created per sync and shared across that sync's chunking runs, so
// exact and approximate counting never mix.
func WithCodecFactory(fn func() chunker.Codec) SyncOption {
	return func(o *SyncOrchestrator) {
		o.newCodec = fn
	}
}

// WithClock overrides time for tests.
func WithClock(fn func() time.Time) SyncOption {
	return func(o *SyncOrchestrator) {
		o.now = fn
	}
}

// NewSyncOrchestrator creates a sync orchestrator.
func NewSyncOrchestrator(
	jobs driven.JobStore,
	indexes driven.IndexStore,
	blobs driven.BlobStore,
	embedder driven.EmbeddingProvider,
	vectors driven.VectorStore,
	opts ...SyncOption,
) *SyncOrchestrator {
	o := &SyncOrchestrator{
		jobs:           jobs,
		indexes:        indexes,
		blobs:          blobs,
		embedder:       embedder,
		vectors:        vectors,
		maxTokens:      chunker.DefaultMaxTokens,
		overlapTokens:  chunker.DefaultOverlapTokens,
		defaultModel:   DefaultEmbeddingModel,
		staleSyncAfter: DefaultStaleSyncAfter,
		newCodec:       func() chunker.Codec { return tokenizer.NewCodec() },
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// RequestSync applies the idempotency guards and, when a sync is due,
// flips the index to syncing and starts the background work.
func (o *SyncOrchestrator) RequestSync(ctx context.Context, indexID, model string) (*driving.SyncAck, error) {
	if model == "" {
		model = o.defaultModel
	}

	var ack *driving.SyncAck
	err := o.indexes.Update(ctx, indexID, func(idx *domain.Index) error {
		// Re-entrancy guard: a second request while syncing is a no-op
		// reporting the in-progress status. A sync older than the
		// staleness bound was abandoned by a dead process; fail it so
		// this request can proceed.
		if idx.Status == domain.IndexSyncing {
			if !o.syncIsStale(idx) {
				ack = &driving.SyncAck{
					IndexID: indexID,
					Status:  domain.IndexSyncing,
					Message: "sync already in progress",
				}
				return errSkipSync
			}
			logger.Warn("Recovering index %s from an abandoned sync", indexID)
			msg := fmt.Sprintf("sync abandoned: no completion within %s", o.staleSyncAfter)
			if err := idx.FailSync(msg, o.now()); err != nil {
				return err
			}
		}
		// Idempotency guard: synced with this membership means there is
		// nothing to do. A membership change resets the index through
		// UpdateIndex, so status alone decides here.
		if idx.Synced && idx.Status == domain.IndexSynced {
			ack = &driving.SyncAck{
				IndexID:       indexID,
				Status:        domain.IndexSynced,
				AlreadySynced: true,
				ChunksCount:   idx.ChunksCount,
				Message:       "index already synced",
			}
			return errSkipSync
		}
		if err := idx.BeginSync(model, o.now()); err != nil {
			return err
		}
		ack = &driving.SyncAck{
			IndexID: indexID,
			Status:  domain.IndexSyncing,
			Message: fmt.Sprintf("sync started with model %s", model),
		}
		return nil
	})
	if errors.Is(err, errSkipSync) {
		return ack, nil
	}
	if err != nil {
		return nil, fmt.Errorf("request sync: %w", err)
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.runSync(indexID, model)
	}()

	return ack, nil
}

// syncIsStale reports whether a syncing index has outlived the
// staleness bound. A missing start timestamp counts as stale.
func (o *SyncOrchestrator) syncIsStale(idx *domain.Index) bool {
	if idx.SyncStartedAt == nil {
		return true
	}
	return o.now().Sub(*idx.SyncStartedAt) > o.staleSyncAfter
}

// Wait blocks until all background syncs have finished.
func (o *SyncOrchestrator) Wait() {
	o.wg.Wait()
}

// document is one job's fetched content awaiting chunking.
type document struct {
	job  domain.Job
	text string
}

// runSync executes the sync pipeline for an index already flipped to
// syncing. Every exit path lands the index on synced or sync_failed;
// it must never remain stuck at syncing.
func (o *SyncOrchestrator) runSync(indexID, model string) {
	ctx := context.Background()

	logger.Section("Index Sync")
	logger.Info("Starting sync for index %s", indexID)

	idx, err := o.indexes.Get(ctx, indexID)
	if err != nil {
		// Deleted between request and start. Nothing to update.
		logger.Warn("Index %s vanished before sync started: %v", indexID, err)
		return
	}

	docs := o.fetchDocuments(ctx, idx)
	if len(docs) == 0 {
		o.failSync(ctx, idx, domain.ErrNoContent.Error())
		return
	}

	chunks, chunkJobs := o.chunkDocuments(docs)
	if len(chunks) == 0 {
		o.failSync(ctx, idx, "no chunks created")
		return
	}
	logger.Info("Created %d chunks from %d documents", len(chunks), len(docs))

	// One batched round trip for the whole corpus: the call is network
	// bound, so per-chunk requests would dominate the sync.
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := o.embedder.Embed(ctx, texts, model)
	if err != nil {
		o.failSync(ctx, idx, fmt.Sprintf("embed chunks: %v", err))
		return
	}
	if len(vectors) != len(chunks) {
		o.failSync(ctx, idx, fmt.Sprintf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks)))
		return
	}
	dimension := len(vectors[0])
	logger.Info("Embedded %d chunks, dimension %d", len(vectors), dimension)

	collection := idx.CollectionName()
	if err := o.vectors.EnsureCollection(ctx, collection, dimension); err != nil {
		o.failSync(ctx, idx, fmt.Sprintf("ensure collection: %v", err))
		return
	}

	points := make([]driven.VectorPoint, len(chunks))
	for i, c := range chunks {
		points[i] = driven.VectorPoint{
			ID:     c.ID,
			Vector: vectors[i],
			Payload: driven.VectorPayload{
				Text:           c.Text,
				ChunkIndex:     c.Metadata.ChunkIndex,
				DocumentSource: chunkJobs[i],
			},
		}
	}
	if err := o.vectors.Upsert(ctx, collection, points); err != nil {
		o.failSync(ctx, idx, fmt.Sprintf("upsert points: %v", err))
		return
	}

	now := o.now()
	err = o.indexes.Update(ctx, indexID, func(i *domain.Index) error {
		return i.CompleteSync(len(chunks), dimension, now)
	})
	if err != nil {
		logger.Warn("Failed to record sync completion for %s: %v", indexID, err)
		return
	}
	// Only the jobs that contributed content count as indexed; a job
	// whose fetch failed keeps its failed indexing status.
	contributed := make([]string, len(docs))
	for i, doc := range docs {
		contributed[i] = doc.job.ID
	}
	o.setJobsIndexing(ctx, contributed, domain.IndexingCompleted)

	logger.Info("Sync complete for index %s: %d chunks", indexID, len(chunks))
}

// fetchDocuments downloads each bound job's extracted text. A per-job
// fetch failure is logged and the job skipped; the sync continues with
// the partial corpus.
func (o *SyncOrchestrator) fetchDocuments(ctx context.Context, idx *domain.Index) []document {
	var docs []document
	for _, jobID := range idx.JobIDs {
		job, err := o.jobs.Get(ctx, jobID)
		if err != nil {
			logger.Warn("Skipping job %s: %v", jobID, err)
			continue
		}
		o.setJobsIndexing(ctx, []string{jobID}, domain.IndexingProcessing)

		content, err := o.blobs.Get(ctx, jobID)
		if err != nil {
			logger.Warn("Failed to download content for job %s: %v", jobID, err)
			o.setJobsIndexing(ctx, []string{jobID}, domain.IndexingFailed)
			continue
		}
		docs = append(docs, document{job: *job, text: string(content)})
		logger.Debug("Downloaded %d bytes for job %s", len(content), jobID)
	}
	return docs
}

// chunkDocuments runs the chunker independently per document so chunk
// boundaries never cross document boundaries. The returned job-id slice
// is index-aligned with the chunks.
func (o *SyncOrchestrator) chunkDocuments(docs []document) ([]domain.Chunk, []string) {
	ch := chunker.New(o.newCodec(),
		chunker.WithMaxTokens(o.maxTokens),
		chunker.WithOverlapTokens(o.overlapTokens),
	)

	var chunks []domain.Chunk
	var chunkJobs []string
	for _, doc := range docs {
		meta := domain.ChunkMetadata{
			DocumentSource: doc.job.ID,
			DocumentName:   doc.job.Filename,
		}
		docChunks := ch.Split([]string{doc.text}, meta)
		chunks = append(chunks, docChunks...)
		for range docChunks {
			chunkJobs = append(chunkJobs, doc.job.ID)
		}
		logger.Debug("Chunked job %s into %d chunks", doc.job.ID, len(docChunks))
	}
	return chunks, chunkJobs
}

// failSync records a failed sync and marks the involved jobs.
func (o *SyncOrchestrator) failSync(ctx context.Context, idx *domain.Index, msg string) {
	logger.Warn("Sync failed for index %s: %s", idx.ID, msg)
	now := o.now()
	err := o.indexes.Update(ctx, idx.ID, func(i *domain.Index) error {
		return i.FailSync(msg, now)
	})
	if err != nil {
		logger.Warn("Failed to record sync failure for %s: %v", idx.ID, err)
	}
	o.setJobsIndexing(ctx, idx.JobIDs, domain.IndexingFailed)
}

// setJobsIndexing updates the orchestrator-driven indexing status on
// each job. Failures are logged; indexing status is advisory.
func (o *SyncOrchestrator) setJobsIndexing(ctx context.Context, jobIDs []string, status domain.IndexingStatus) {
	now := o.now()
	for _, id := range jobIDs {
		err := o.jobs.Update(ctx, id, func(j *domain.Job) error {
			j.SetIndexing(status, now)
			return nil
		})
		if err != nil {
			logger.Debug("Failed to set indexing status on job %s: %v", id, err)
		}
	}
}
