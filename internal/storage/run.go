package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Run is one batch execution of the pipeline
type Run struct {
	ID        uuid.UUID
	InputFile string
	Records   int
	Groups    int
	Dimension int
	Method    string
	CreatedAt time.Time
}

// RunRepository defines the interface for run storage operations
type RunRepository interface {
	Create(ctx context.Context, run *Run) error
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	Latest(ctx context.Context) (*Run, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// PostgresRunRepository implements RunRepository using PostgreSQL
type PostgresRunRepository struct {
	db *sql.DB
}

// NewPostgresRunRepository creates a new PostgresRunRepository
func NewPostgresRunRepository(db *sql.DB) *PostgresRunRepository {
	return &PostgresRunRepository{db: db}
}

// Create inserts a new run
func (r *PostgresRunRepository) Create(ctx context.Context, run *Run) error {
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO runs (id, input_file, records, groups, dimension, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.InputFile,
		run.Records,
		run.Groups,
		run.Dimension,
		run.Method,
		run.CreatedAt,
	)

	return err
}

// GetByID retrieves a run by its ID, or nil if it does not exist
func (r *PostgresRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	query := `
		SELECT id, input_file, records, groups, dimension, method, created_at
		FROM runs
		WHERE id = $1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Latest retrieves the most recent run, or nil if there is none
func (r *PostgresRunRepository) Latest(ctx context.Context) (*Run, error) {
	query := `
		SELECT id, input_file, records, groups, dimension, method, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT 1
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query))
}

// Delete removes a run; its points are removed by the foreign key cascade
func (r *PostgresRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM runs WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *PostgresRunRepository) scanOne(row *sql.Row) (*Run, error) {
	run := &Run{}
	err := row.Scan(
		&run.ID,
		&run.InputFile,
		&run.Records,
		&run.Groups,
		&run.Dimension,
		&run.Method,
		&run.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return run, nil
}
