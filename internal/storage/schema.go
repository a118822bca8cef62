package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema creates the tables used by the repositories. The vector column is
// left without a fixed dimension so tables work for any embedding source.
const Schema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS runs (
	id         UUID PRIMARY KEY,
	input_file TEXT NOT NULL,
	records    INTEGER NOT NULL,
	groups     INTEGER NOT NULL,
	dimension  INTEGER NOT NULL,
	method     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS grant_points (
	run_id           UUID NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position         INTEGER NOT NULL,
	grant_id         TEXT NOT NULL,
	award_date       TEXT NOT NULL,
	title            TEXT NOT NULL,
	description      TEXT NOT NULL,
	currency         TEXT NOT NULL,
	amount           DOUBLE PRECISION,
	recipient_org_id TEXT NOT NULL,
	recipient_org    TEXT NOT NULL,
	funding_org_id   TEXT NOT NULL,
	funding_org      TEXT NOT NULL,
	vector           vector NOT NULL,
	x                DOUBLE PRECISION NOT NULL,
	y                DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (run_id, position)
);

CREATE TABLE IF NOT EXISTS word_embeddings (
	model     TEXT NOT NULL,
	word      TEXT NOT NULL,
	embedding vector NOT NULL,
	PRIMARY KEY (model, word)
);
`

// Migrate applies Schema
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
