package storage

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Point is a grant stored with its document vector and chart coordinates
type Point struct {
	RunID          uuid.UUID
	Position       int
	GrantID        string
	AwardDate      string
	Title          string
	Description    string
	Currency       string
	Amount         sql.NullFloat64
	RecipientOrgID string
	RecipientOrg   string
	FundingOrgID   string
	FundingOrg     string
	Vector         pgvector.Vector
	X              float64
	Y              float64
}

// FunderCount is the number of grants of one funder within a run
type FunderCount struct {
	ID     string
	Name   string
	Grants int
}

// PointRepository defines the interface for point storage operations
type PointRepository interface {
	CreateBatch(ctx context.Context, points []*Point) error
	GetByRunID(ctx context.Context, runID uuid.UUID) ([]*Point, error)
	Funders(ctx context.Context, runID uuid.UUID) ([]FunderCount, error)
	FindSimilar(ctx context.Context, runID uuid.UUID, grantID string, limit int) ([]*PointWithSimilarity, error)
}

// PointWithSimilarity is a point with its cosine similarity to a reference grant
type PointWithSimilarity struct {
	Point      *Point
	Similarity float64
}

// PostgresPointRepository implements PointRepository using PostgreSQL with pgvector
type PostgresPointRepository struct {
	db *sql.DB
}

// NewPostgresPointRepository creates a new PostgresPointRepository
func NewPostgresPointRepository(db *sql.DB) *PostgresPointRepository {
	return &PostgresPointRepository{db: db}
}

// CreateBatch inserts points in a single transaction
func (r *PostgresPointRepository) CreateBatch(ctx context.Context, points []*Point) error {
	if len(points) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO grant_points (run_id, position, grant_id, award_date, title, description,
			currency, amount, recipient_org_id, recipient_org, funding_org_id, funding_org,
			vector, x, y)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		_, err := stmt.ExecContext(ctx,
			p.RunID,
			p.Position,
			p.GrantID,
			p.AwardDate,
			p.Title,
			p.Description,
			p.Currency,
			p.Amount,
			p.RecipientOrgID,
			p.RecipientOrg,
			p.FundingOrgID,
			p.FundingOrg,
			p.Vector,
			p.X,
			p.Y,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByRunID retrieves the points of a run in input order
func (r *PostgresPointRepository) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*Point, error) {
	query := `
		SELECT run_id, position, grant_id, award_date, title, description, currency, amount,
			recipient_org_id, recipient_org, funding_org_id, funding_org, vector, x, y
		FROM grant_points
		WHERE run_id = $1
		ORDER BY position ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []*Point
	for rows.Next() {
		p := &Point{}
		err := rows.Scan(
			&p.RunID,
			&p.Position,
			&p.GrantID,
			&p.AwardDate,
			&p.Title,
			&p.Description,
			&p.Currency,
			&p.Amount,
			&p.RecipientOrgID,
			&p.RecipientOrg,
			&p.FundingOrgID,
			&p.FundingOrg,
			&p.Vector,
			&p.X,
			&p.Y,
		)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return points, nil
}

// Funders counts grants per funder within a run, largest first
func (r *PostgresPointRepository) Funders(ctx context.Context, runID uuid.UUID) ([]FunderCount, error) {
	query := `
		SELECT funding_org_id, MIN(funding_org), COUNT(*)
		FROM grant_points
		WHERE run_id = $1
		GROUP BY funding_org_id
		ORDER BY COUNT(*) DESC, funding_org_id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var funders []FunderCount
	for rows.Next() {
		var f FunderCount
		if err := rows.Scan(&f.ID, &f.Name, &f.Grants); err != nil {
			return nil, err
		}
		funders = append(funders, f)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return funders, nil
}

// FindSimilar returns the grants of a run whose document vectors are closest
// to grantID's by pgvector cosine distance. A repeated grant ID is resolved
// to its first occurrence. Grants with a zero vector have no defined
// similarity and are skipped.
func (r *PostgresPointRepository) FindSimilar(ctx context.Context, runID uuid.UUID, grantID string, limit int) ([]*PointWithSimilarity, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT p.run_id, p.position, p.grant_id, p.award_date, p.title, p.description,
			p.currency, p.amount, p.recipient_org_id, p.recipient_org, p.funding_org_id,
			p.funding_org, p.vector, p.x, p.y,
			1 - (p.vector <=> t.vector) AS similarity
		FROM grant_points p
		JOIN (
			SELECT vector
			FROM grant_points
			WHERE run_id = $1 AND grant_id = $2
			ORDER BY position ASC
			LIMIT 1
		) t ON vector_norm(t.vector) > 0
		WHERE p.run_id = $1
			AND p.grant_id <> $2
			AND vector_norm(p.vector) > 0
		ORDER BY p.vector <=> t.vector
		LIMIT $3
	`

	rows, err := r.db.QueryContext(ctx, query, runID, grantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*PointWithSimilarity
	for rows.Next() {
		p := &Point{}
		var similarity float64
		err := rows.Scan(
			&p.RunID,
			&p.Position,
			&p.GrantID,
			&p.AwardDate,
			&p.Title,
			&p.Description,
			&p.Currency,
			&p.Amount,
			&p.RecipientOrgID,
			&p.RecipientOrg,
			&p.FundingOrgID,
			&p.FundingOrg,
			&p.Vector,
			&p.X,
			&p.Y,
			&similarity,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, &PointWithSimilarity{Point: p, Similarity: similarity})
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
