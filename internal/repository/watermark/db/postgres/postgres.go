package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"watermark-generator/internal/domain"
	"watermark-generator/internal/repository/watermark"

	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS watermark_jobs (
		id                   UUID PRIMARY KEY,
		status               TEXT NOT NULL,
		city                 TEXT NOT NULL,
		location             TEXT NOT NULL,
		camera               TEXT NOT NULL,
		lens                 TEXT NOT NULL,
		font_size            INTEGER,
		signature_logo_width INTEGER,
		object_path          TEXT NOT NULL DEFAULT '',
		error                TEXT NOT NULL DEFAULT '',
		created_at           TIMESTAMPTZ NOT NULL,
		updated_at           TIMESTAMPTZ NOT NULL
	)
`

type JobsRepository struct {
	db      *dbpg.DB
	retries retry.Strategy
}

func NewJobsRepository(db *dbpg.DB, retries retry.Strategy) *JobsRepository {
	return &JobsRepository{
		db:      db,
		retries: retries,
	}
}

func (r *JobsRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecWithRetry(ctx, r.retries, schema); err != nil {
		return fmt.Errorf("failed to create jobs table: %w", err)
	}
	return nil
}

func (r *JobsRepository) Save(ctx context.Context, job *domain.Job) error {
	query := `
		INSERT INTO watermark_jobs (
			id, status, city, location, camera, lens,
			font_size, signature_logo_width, object_path, error,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	err := insertWithRetry(ctx, r.retries, func() error {
		_, err := r.db.Master.ExecContext(ctx, query,
			job.ID,
			job.Status,
			job.Request.City,
			job.Request.Location,
			job.Request.Camera,
			job.Request.Lens,
			toNullInt(job.Request.FontSize),
			toNullInt(job.Request.SignatureLogoWidth),
			job.ObjectPath,
			job.Error,
			job.CreatedAt,
			job.UpdatedAt,
		)
		return err
	})

	if isUniqueViolation(err) {
		return fmt.Errorf("%w: job %s", watermark.ErrDuplicateKey, job.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}

	return nil
}

func (r *JobsRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	query := `
		SELECT id, status, city, location, camera, lens,
		       font_size, signature_logo_width, object_path, error,
		       created_at, updated_at
		FROM watermark_jobs
		WHERE id = $1
	`

	row, err := r.db.QueryRowWithRetry(ctx, r.retries, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}

	var (
		job            domain.Job
		fontSize       sql.NullInt64
		signatureWidth sql.NullInt64
	)
	err = row.Scan(
		&job.ID,
		&job.Status,
		&job.Request.City,
		&job.Request.Location,
		&job.Request.Camera,
		&job.Request.Lens,
		&fontSize,
		&signatureWidth,
		&job.ObjectPath,
		&job.Error,
		&job.CreatedAt,
		&job.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, watermark.ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan job: %w", err)
	}

	job.Request.FontSize = fromNullInt(fontSize)
	job.Request.SignatureLogoWidth = fromNullInt(signatureWidth)

	return &job, nil
}

// UpdateStatus moves a job to status. objectPath and errMsg replace the stored
// values.
func (r *JobsRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus, objectPath, errMsg string) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", watermark.ErrInvalidStatus, status)
	}

	query := `
		UPDATE watermark_jobs
		SET status = $1, object_path = $2, error = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := r.db.ExecWithRetry(ctx, r.retries, query, status, objectPath, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}

	if affected == 0 {
		return watermark.ErrJobNotFound
	}

	return nil
}

// insertWithRetry retries exec with strategy, except after a unique
// violation, which no retry can fix.
func insertWithRetry(ctx context.Context, strategy retry.Strategy, exec func() error) error {
	var duplicate error
	err := retry.DoContext(ctx, strategy, func() error {
		err := exec()
		if isUniqueViolation(err) {
			duplicate = err
			return nil
		}
		return err
	})
	if duplicate != nil {
		return duplicate
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func fromNullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
