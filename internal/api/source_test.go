package api

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/grantmap/internal/storage"
)

type fakeRuns struct {
	runs map[uuid.UUID]*storage.Run
	last *storage.Run
}

func (f *fakeRuns) Create(ctx context.Context, run *storage.Run) error { return nil }

func (f *fakeRuns) GetByID(ctx context.Context, id uuid.UUID) (*storage.Run, error) {
	return f.runs[id], nil
}

func (f *fakeRuns) Latest(ctx context.Context) (*storage.Run, error) { return f.last, nil }

func (f *fakeRuns) Delete(ctx context.Context, id uuid.UUID) error { return nil }

type fakePoints struct {
	points  []*storage.Point
	funders []storage.FunderCount
	similar []*storage.PointWithSimilarity
	err     error
}

func (f *fakePoints) CreateBatch(ctx context.Context, points []*storage.Point) error { return nil }

func (f *fakePoints) GetByRunID(ctx context.Context, runID uuid.UUID) ([]*storage.Point, error) {
	return f.points, f.err
}

func (f *fakePoints) Funders(ctx context.Context, runID uuid.UUID) ([]storage.FunderCount, error) {
	return f.funders, f.err
}

func (f *fakePoints) FindSimilar(ctx context.Context, runID uuid.UUID, grantID string, limit int) ([]*storage.PointWithSimilarity, error) {
	return f.similar, f.err
}

func newStoreSource(points *fakePoints) (*StoreSource, uuid.UUID) {
	run := &storage.Run{ID: uuid.New(), Method: "tsne"}
	runs := &fakeRuns{runs: map[uuid.UUID]*storage.Run{run.ID: run}, last: run}
	return NewStoreSource(runs, points), run.ID
}

func TestStoreSource_Points(t *testing.T) {
	src, runID := newStoreSource(&fakePoints{
		points: []*storage.Point{
			{GrantID: "360G-1", Amount: sql.NullFloat64{Float64: 10, Valid: true}, X: 1, Y: 2},
			{GrantID: "360G-2"},
		},
	})
	ctx := context.Background()

	latest, err := src.LatestRunID(ctx)
	require.NoError(t, err)
	assert.Equal(t, runID.String(), latest)

	points, err := src.Points(ctx, latest)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, 10.0, *points[0].Amount)
	assert.Equal(t, 2.0, points[0].Y)
	assert.Nil(t, points[1].Amount)
}

func TestStoreSource_UnknownRun(t *testing.T) {
	src, _ := newStoreSource(&fakePoints{})
	ctx := context.Background()

	_, err := src.Points(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = src.Funders(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrRunNotFound)

	empty := NewStoreSource(&fakeRuns{}, &fakePoints{})
	_, err = empty.LatestRunID(ctx)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreSource_FundersAndSimilar(t *testing.T) {
	src, runID := newStoreSource(&fakePoints{
		funders: []storage.FunderCount{{ID: "GB-F1", Name: "Fund One", Grants: 3}},
		similar: []*storage.PointWithSimilarity{
			{Point: &storage.Point{GrantID: "360G-9"}, Similarity: 0.5},
		},
	})
	ctx := context.Background()

	funders, err := src.Funders(ctx, runID.String())
	require.NoError(t, err)
	assert.Equal(t, 3, funders[0].Grants)

	similar, err := src.Similar(ctx, runID.String(), "360G-1", 5)
	require.NoError(t, err)
	require.Len(t, similar, 1)
	assert.Equal(t, "360G-9", similar[0].ID)
	assert.Equal(t, 0.5, similar[0].Similarity)
}

func TestStoreSource_RepositoryError(t *testing.T) {
	boom := errors.New("boom")
	src, runID := newStoreSource(&fakePoints{err: boom})

	_, err := src.Points(context.Background(), runID.String())
	assert.ErrorIs(t, err, boom)
}
