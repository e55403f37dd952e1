package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// indexStore implements driven.IndexStore. Deleted indexes stay as
// tombstone rows; listings exclude them.
type indexStore struct {
	store *Store
}

var _ driven.IndexStore = (*indexStore)(nil)

const indexColumns = `id, project_id, name, description, job_ids, status, synced,
	embedding_model, chunks_count, embedding_dimension,
	sync_started_at, sync_completed_at, sync_failed_at, sync_error,
	created_at, updated_at`

// Create persists a new index record.
func (s *indexStore) Create(ctx context.Context, idx *domain.Index) error {
	jobIDs, err := json.Marshal(idx.JobIDs)
	if err != nil {
		return fmt.Errorf("marshalling job ids: %w", err)
	}
	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO indexes (`+indexColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, idx.ID, idx.ProjectID, idx.Name, idx.Description, string(jobIDs), idx.Status,
		idx.Synced, idx.EmbeddingModel, idx.ChunksCount, idx.EmbeddingDimension,
		nullTime(idx.SyncStartedAt), nullTime(idx.SyncCompletedAt), nullTime(idx.SyncFailedAt),
		idx.SyncError, idx.CreatedAt.UTC(), idx.UpdatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("inserting index: %w", err)
	}
	return nil
}

// Get retrieves a non-deleted index by id.
func (s *indexStore) Get(ctx context.Context, id string) (*domain.Index, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+indexColumns+` FROM indexes WHERE id = ? AND status != ?`,
		id, domain.IndexDeleted)
	return scanIndex(row)
}

// ListByProject returns all non-deleted indexes for a project.
func (s *indexStore) ListByProject(ctx context.Context, projectID string) ([]domain.Index, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+indexColumns+` FROM indexes
		WHERE project_id = ? AND status != ?
		ORDER BY created_at DESC
	`, projectID, domain.IndexDeleted)
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()
	return collectIndexes(rows)
}

// ListReferencingJob returns all non-deleted indexes bound to the job.
func (s *indexStore) ListReferencingJob(ctx context.Context, jobID string) ([]domain.Index, error) {
	// The LIKE filter narrows candidates; the decoded membership check
	// decides, so an id that is a substring of another cannot match.
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+indexColumns+` FROM indexes
		WHERE status != ? AND job_ids LIKE ?
		ORDER BY created_at DESC
	`, domain.IndexDeleted, "%"+jobID+"%")
	if err != nil {
		return nil, fmt.Errorf("querying indexes: %w", err)
	}
	defer rows.Close()

	candidates, err := collectIndexes(rows)
	if err != nil {
		return nil, err
	}
	var result []domain.Index
	for _, idx := range candidates {
		if slices.Contains(idx.JobIDs, jobID) {
			result = append(result, idx)
		}
	}
	return result, nil
}

// Update applies fn to the index inside a write transaction.
func (s *indexStore) Update(ctx context.Context, id string, fn func(*domain.Index) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+indexColumns+` FROM indexes WHERE id = ?`, id)
	idx, err := scanIndex(row)
	if err != nil {
		return err
	}

	if err := fn(idx); err != nil {
		return err
	}

	jobIDs, err := json.Marshal(idx.JobIDs)
	if err != nil {
		return fmt.Errorf("marshalling job ids: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE indexes SET project_id = ?, name = ?, description = ?, job_ids = ?,
			status = ?, synced = ?, embedding_model = ?, chunks_count = ?,
			embedding_dimension = ?, sync_started_at = ?, sync_completed_at = ?,
			sync_failed_at = ?, sync_error = ?, created_at = ?, updated_at = ?
		WHERE id = ?
	`, idx.ProjectID, idx.Name, idx.Description, string(jobIDs),
		idx.Status, idx.Synced, idx.EmbeddingModel, idx.ChunksCount,
		idx.EmbeddingDimension, nullTime(idx.SyncStartedAt), nullTime(idx.SyncCompletedAt),
		nullTime(idx.SyncFailedAt), idx.SyncError, idx.CreatedAt.UTC(), idx.UpdatedAt.UTC(), idx.ID)
	if err != nil {
		return fmt.Errorf("updating index: %w", err)
	}
	return tx.Commit()
}

// Delete removes an index record entirely.
func (s *indexStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM indexes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting index: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// collectIndexes drains the rows.
func collectIndexes(rows *sql.Rows) ([]domain.Index, error) {
	var result []domain.Index
	for rows.Next() {
		idx, err := scanIndex(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *idx)
	}
	return result, rows.Err()
}

// scanIndex reads one index row.
func scanIndex(row rowScanner) (*domain.Index, error) {
	var idx domain.Index
	var jobIDs string
	var startedAt, completedAt, failedAt, createdAt, updatedAt sql.NullTime
	err := row.Scan(&idx.ID, &idx.ProjectID, &idx.Name, &idx.Description, &jobIDs,
		&idx.Status, &idx.Synced, &idx.EmbeddingModel, &idx.ChunksCount,
		&idx.EmbeddingDimension, &startedAt, &completedAt, &failedAt, &idx.SyncError,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning index: %w", err)
	}
	if err := json.Unmarshal([]byte(jobIDs), &idx.JobIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling job ids: %w", err)
	}
	idx.SyncStartedAt = timePtr(startedAt)
	idx.SyncCompletedAt = timePtr(completedAt)
	idx.SyncFailedAt = timePtr(failedAt)
	if createdAt.Valid {
		idx.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		idx.UpdatedAt = updatedAt.Time
	}
	return &idx, nil
}
