package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/silica-labs/corpusd/internal/adapters/driven/storage/memory"
	"github.com/silica-labs/corpusd/internal/chunker"
	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
	"github.com/silica-labs/corpusd/internal/tokenizer"
)

// --- Mock implementations of the driven ports for service testing ---

// mockEmbedder implements driven.EmbeddingProvider. It returns a
// fixed-dimension vector per input text and records every call.
type mockEmbedder struct {
	mu        sync.Mutex
	dimension int
	err       error
	calls     [][]string
	models    []string
}

var _ driven.EmbeddingProvider = (*mockEmbedder)(nil)

func newMockEmbedder() *mockEmbedder {
	return &mockEmbedder{dimension: 3}
}

func (m *mockEmbedder) Embed(_ context.Context, texts []string, model string) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, append([]string(nil), texts...))
	m.models = append(m.models, model)
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vec := make([]float32, m.dimension)
		for j := range vec {
			vec[j] = float32(i + j)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockVectorStore implements driven.VectorStore. It keeps upserted
// points per collection and serves canned search results.
type mockVectorStore struct {
	mu            sync.Mutex
	collections   map[string]int // name -> dimension
	points        map[string][]driven.VectorPoint
	searchResults []domain.QueryResult
	ensureErr     error
	upsertErr     error
	searchErr     error
	deleteErr     error
	deleted       []string
}

var _ driven.VectorStore = (*mockVectorStore)(nil)

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{
		collections: make(map[string]int),
		points:      make(map[string][]driven.VectorPoint),
	}
}

func (m *mockVectorStore) EnsureCollection(_ context.Context, name string, dimension int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.collections[name] = dimension
	return nil
}

func (m *mockVectorStore) Upsert(_ context.Context, name string, points []driven.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.points[name] = append(m.points[name], points...)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, name string, vector []float32, topK int) ([]domain.QueryResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	results := m.searchResults
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *mockVectorStore) DeleteCollection(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, name)
	delete(m.collections, name)
	delete(m.points, name)
	return nil
}

func (m *mockVectorStore) pointCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.points[name])
}

// mockParser implements driven.DocumentParser. An empty ext supports
// every filename; Parse echoes the raw bytes unless text is set.
type mockParser struct {
	ext  string
	text string
	err  error
}

var _ driven.DocumentParser = (*mockParser)(nil)

func (m *mockParser) Parse(_ context.Context, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.text != "" {
		return m.text, nil
	}
	return string(data), nil
}

func (m *mockParser) Supports(filename string) bool {
	return m.ext == "" || strings.HasSuffix(filename, m.ext)
}

// mockFetcher implements driven.PageFetcher.
type mockFetcher struct {
	text string
	err  error
}

var _ driven.PageFetcher = (*mockFetcher)(nil)

func (m *mockFetcher) Fetch(_ context.Context, url string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.text, nil
}

// --- Shared test environment ---

// testEnv wires the services over in-memory stores and mocks.
type testEnv struct {
	projects *memory.ProjectStore
	jobs     *memory.JobStore
	indexes  *memory.IndexStore
	blobs    *memory.BlobStore
	embedder *mockEmbedder
	vectors  *mockVectorStore

	orchestrator *SyncOrchestrator
	indexSvc     *IndexService
	projectID    string
}

func newTestEnv(opts ...SyncOption) *testEnv {
	env := &testEnv{
		projects: memory.NewProjectStore(),
		jobs:     memory.NewJobStore(),
		indexes:  memory.NewIndexStore(),
		blobs:    memory.NewBlobStore(),
		embedder: newMockEmbedder(),
		vectors:  newMockVectorStore(),
	}
	// The word codec keeps chunking deterministic and offline.
	base := []SyncOption{
		WithCodecFactory(func() chunker.Codec { return tokenizer.WordCodec{} }),
	}
	env.orchestrator = NewSyncOrchestrator(
		env.jobs, env.indexes, env.blobs, env.embedder, env.vectors,
		append(base, opts...)...,
	)
	env.indexSvc = NewIndexService(
		env.projects, env.jobs, env.indexes, env.vectors, env.orchestrator,
	)

	project := &domain.Project{
		ID:        uuid.New().String(),
		Name:      "test-project",
		Status:    domain.ProjectActive,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := env.projects.Create(context.Background(), project); err != nil {
		panic(err)
	}
	env.projectID = project.ID
	return env
}

// addCompletedJob seeds a completed job with extracted text in the
// blob store and returns its id.
func (env *testEnv) addCompletedJob(text string) string {
	ctx := context.Background()
	now := time.Now()
	job := &domain.Job{
		ID:             uuid.New().String(),
		ProjectID:      env.projectID,
		Filename:       "doc.txt",
		Type:           domain.JobTypeUpload,
		Status:         domain.JobCompleted,
		IndexingStatus: domain.IndexingIdle,
		FileSize:       int64(len(text)),
		TextSize:       int64(len(text)),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := env.jobs.Create(ctx, job); err != nil {
		panic(err)
	}
	if _, err := env.blobs.Put(ctx, job.ID, []byte(text)); err != nil {
		panic(err)
	}
	return job.ID
}

// addPendingJob seeds a job that never completed.
func (env *testEnv) addPendingJob() string {
	ctx := context.Background()
	now := time.Now()
	job := &domain.Job{
		ID:             uuid.New().String(),
		ProjectID:      env.projectID,
		Filename:       "doc.txt",
		Type:           domain.JobTypeUpload,
		Status:         domain.JobPending,
		IndexingStatus: domain.IndexingIdle,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := env.jobs.Create(ctx, job); err != nil {
		panic(err)
	}
	return job.ID
}

// createIndex creates an index over the given jobs via the service.
func (env *testEnv) createIndex(jobIDs ...string) *domain.Index {
	idx, err := env.indexSvc.CreateIndex(context.Background(), env.projectID, "test-index", "", jobIDs)
	if err != nil {
		panic(err)
	}
	return idx
}
