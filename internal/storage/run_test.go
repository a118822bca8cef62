package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestPostgresRunRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRunRepository(db)

	run := &Run{
		InputFile: "grantnav-all.csv",
		Records:   3,
		Groups:    2,
		Dimension: 300,
		Method:    "tsne",
	}

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(sqlmock.AnyArg(), run.InputFile, run.Records, run.Groups, run.Dimension, run.Method, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), run); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if run.ID == uuid.Nil {
		t.Error("expected run ID to be generated")
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRunRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRunRepository(db)

	id := uuid.MustParse("123e4567-e89b-12d3-a456-426614174000")
	createdAt := time.Now()

	rows := sqlmock.NewRows([]string{"id", "input_file", "records", "groups", "dimension", "method", "created_at"}).
		AddRow(id.String(), "grants.csv", 10, 4, 300, "pca", createdAt)

	mock.ExpectQuery("SELECT (.+) FROM runs WHERE id").
		WithArgs(id).
		WillReturnRows(rows)

	run, err := repo.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if run == nil {
		t.Fatal("expected run to be returned")
	}

	if run.ID != id {
		t.Errorf("expected ID %s, got %s", id, run.ID)
	}
	if run.Records != 10 || run.Groups != 4 || run.Dimension != 300 {
		t.Errorf("unexpected counts: %+v", run)
	}
	if run.Method != "pca" {
		t.Errorf("expected method pca, got %s", run.Method)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestPostgresRunRepository_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRunRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM runs WHERE id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "input_file", "records", "groups", "dimension", "method", "created_at"}))

	run, err := repo.GetByID(context.Background(), uuid.New())
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run, got %+v", run)
	}
}

func TestPostgresRunRepository_Latest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRunRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "input_file", "records", "groups", "dimension", "method", "created_at"}).
		AddRow(id.String(), "grants.csv", 1, 1, 300, "tsne", time.Now())

	mock.ExpectQuery("SELECT (.+) FROM runs ORDER BY created_at DESC LIMIT 1").
		WillReturnRows(rows)

	run, err := repo.Latest(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if run == nil || run.ID != id {
		t.Errorf("expected run %s, got %+v", id, run)
	}
}

func TestPostgresRunRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	repo := NewPostgresRunRepository(db)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM runs WHERE id").
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), id); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("CREATE EXTENSION IF NOT EXISTS vector").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := Migrate(context.Background(), db); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	mock.ExpectExec("CREATE EXTENSION").
		WillReturnError(errors.New("permission denied"))

	if err := Migrate(context.Background(), db); err == nil {
		t.Error("expected error when the extension cannot be created")
	}
}
