package driven

import "context"

// BlobStore persists extracted document text keyed by job id.
// Backed by MinIO object storage in production, in-memory for tests.
type BlobStore interface {
	// Put stores the extracted text for a job, replacing any previous
	// content. Returns an opaque reference to the stored object.
	Put(ctx context.Context, jobID string, content []byte) (string, error)

	// Get retrieves the extracted text for a job.
	Get(ctx context.Context, jobID string) ([]byte, error)

	// Delete removes the stored text for a job. Reports whether an
	// object was actually removed.
	Delete(ctx context.Context, jobID string) (bool, error)
}
