package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTransition indicates a status change that the state
	// machine does not permit (e.g. completing a failed job).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSyncInProgress indicates a sync is already running for the index.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrJobNotCompleted indicates a job has not finished parsing and
	// cannot be bound into an index yet.
	ErrJobNotCompleted = errors.New("job not completed")

	// ErrIndexNotReady indicates the index has not been synced and
	// cannot serve queries.
	ErrIndexNotReady = errors.New("index not ready for querying")

	// ErrNoContent indicates no job yielded any content during a sync.
	ErrNoContent = errors.New("no content downloaded from any job")

	// ErrParseFailure indicates text extraction from a document failed.
	ErrParseFailure = errors.New("parse failure")

	// ErrProviderFailure indicates the embedding provider returned an
	// error (timeout, quota, malformed response).
	ErrProviderFailure = errors.New("embedding provider failure")

	// ErrStoreFailure indicates a vector store or blob store operation failed.
	ErrStoreFailure = errors.New("store failure")
)

// ConflictError indicates a job cannot be deleted because live indexes
// still reference it. Callers surface the referencing index names so the
// user knows what to delete first.
type ConflictError struct {
	// JobID is the job whose deletion was refused.
	JobID string

	// IndexNames are the non-deleted indexes referencing the job.
	IndexNames []string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("cannot delete job %s: referenced by indexes: %s",
		e.JobID, strings.Join(e.IndexNames, ", "))
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}
