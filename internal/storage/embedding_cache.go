package storage

import (
	"context"
	"database/sql"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// EmbeddingCache stores word vectors in the word_embeddings table. It
// satisfies embeddings.Cache.
type EmbeddingCache struct {
	db *sql.DB
}

// NewEmbeddingCache creates a new Postgres-backed embedding cache
func NewEmbeddingCache(db *sql.DB) *EmbeddingCache {
	return &EmbeddingCache{db: db}
}

// GetMulti returns the cached vectors of the given words for a model
func (c *EmbeddingCache) GetMulti(ctx context.Context, model string, words []string) (map[string][]float32, error) {
	out := make(map[string][]float32)
	if len(words) == 0 {
		return out, nil
	}

	query := `
		SELECT word, embedding
		FROM word_embeddings
		WHERE model = $1 AND word = ANY($2)
	`

	rows, err := c.db.QueryContext(ctx, query, model, pq.Array(words))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var word string
		var vec pgvector.Vector
		if err := rows.Scan(&word, &vec); err != nil {
			return nil, err
		}
		out[word] = vec.Slice()
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// SetMulti stores vectors for a model; existing entries are kept
func (c *EmbeddingCache) SetMulti(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO word_embeddings (model, word, embedding)
		VALUES ($1, $2, $3)
		ON CONFLICT (model, word) DO NOTHING
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for word, vec := range vectors {
		if _, err := stmt.ExecContext(ctx, model, word, pgvector.NewVector(vec)); err != nil {
			return err
		}
	}

	return tx.Commit()
}
