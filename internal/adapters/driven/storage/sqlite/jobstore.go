package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/silica-labs/corpusd/internal/core/domain"
	"github.com/silica-labs/corpusd/internal/core/ports/driven"
)

// jobStore implements driven.JobStore.
type jobStore struct {
	store *Store
}

var _ driven.JobStore = (*jobStore)(nil)

const jobColumns = `id, project_id, filename, type, status, indexing_status,
	file_size, text_size, error, created_at, updated_at`

// Create persists a new job record.
func (s *jobStore) Create(ctx context.Context, job *domain.Job) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, job.ID, job.ProjectID, job.Filename, job.Type, job.Status, job.IndexingStatus,
		job.FileSize, job.TextSize, job.Error, job.CreatedAt.UTC(), job.UpdatedAt.UTC())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("inserting job: %w", err)
	}
	return nil
}

// Get retrieves a job by id.
func (s *jobStore) Get(ctx context.Context, id string) (*domain.Job, error) {
	row := s.store.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// GetMany retrieves jobs by id; missing ids are absent from the result.
func (s *jobStore) GetMany(ctx context.Context, ids []string) ([]domain.Job, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := strings.Repeat("?,", len(ids)-1) + "?"
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]domain.Job)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		byID[job.ID] = *job
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	// Preserve the requested order.
	result := make([]domain.Job, 0, len(byID))
	for _, id := range ids {
		if job, ok := byID[id]; ok {
			result = append(result, job)
		}
	}
	return result, nil
}

// ListByProject returns all jobs for a project, newest first.
func (s *jobStore) ListByProject(ctx context.Context, projectID string) ([]domain.Job, error) {
	rows, err := s.store.db.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE project_id = ? ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var result []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}

// Update applies fn to the job inside a write transaction, making the
// read-modify-write a critical section.
func (s *jobStore) Update(ctx context.Context, id string, fn func(*domain.Job) error) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if err != nil {
		return err
	}

	if err := fn(job); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE jobs SET project_id = ?, filename = ?, type = ?, status = ?,
			indexing_status = ?, file_size = ?, text_size = ?, error = ?,
			created_at = ?, updated_at = ?
		WHERE id = ?
	`, job.ProjectID, job.Filename, job.Type, job.Status, job.IndexingStatus,
		job.FileSize, job.TextSize, job.Error, job.CreatedAt.UTC(), job.UpdatedAt.UTC(), job.ID)
	if err != nil {
		return fmt.Errorf("updating job: %w", err)
	}
	return tx.Commit()
}

// Delete removes a job record.
func (s *jobStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting job: %w", err)
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

// rowScanner covers sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob reads one job row.
func scanJob(row rowScanner) (*domain.Job, error) {
	var job domain.Job
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&job.ID, &job.ProjectID, &job.Filename, &job.Type, &job.Status,
		&job.IndexingStatus, &job.FileSize, &job.TextSize, &job.Error,
		&createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	if createdAt.Valid {
		job.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		job.UpdatedAt = updatedAt.Time
	}
	return &job, nil
}
