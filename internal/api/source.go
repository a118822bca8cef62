package api

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/google/uuid"

	"github.com/todmy/grantmap/internal/grants"
	"github.com/todmy/grantmap/internal/storage"
	"github.com/todmy/grantmap/pkg/models"
)

var (
	ErrRunNotFound = errors.New("run not found")
	ErrUnsupported = errors.New("not supported by this source")
)

// PointSource provides the points of completed runs
type PointSource interface {
	LatestRunID(ctx context.Context) (string, error)
	Points(ctx context.Context, runID string) ([]models.GrantPoint, error)
	Funders(ctx context.Context, runID string) ([]models.Funder, error)
	Similar(ctx context.Context, runID, grantID string, limit int) ([]models.SimilarGrant, error)
}

// FileRunID identifies the single run served by a FileSource
const FileRunID = "file"

// FileSource serves a result CSV loaded once at startup
type FileSource struct {
	points []models.GrantPoint
}

// NewFileSource reads a result file written by the batch run
func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	points, err := grants.ReadPoints(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &FileSource{points: points}, nil
}

func (s *FileSource) LatestRunID(ctx context.Context) (string, error) {
	return FileRunID, nil
}

func (s *FileSource) Points(ctx context.Context, runID string) ([]models.GrantPoint, error) {
	if runID != FileRunID {
		return nil, ErrRunNotFound
	}
	return s.points, nil
}

func (s *FileSource) Funders(ctx context.Context, runID string) ([]models.Funder, error) {
	if runID != FileRunID {
		return nil, ErrRunNotFound
	}

	byID := make(map[string]*models.Funder)
	for _, p := range s.points {
		f, ok := byID[p.FundingOrgID]
		if !ok {
			f = &models.Funder{ID: p.FundingOrgID, Name: p.FundingOrg}
			byID[p.FundingOrgID] = f
		}
		f.Grants++
	}

	funders := make([]models.Funder, 0, len(byID))
	for _, f := range byID {
		funders = append(funders, *f)
	}
	sort.Slice(funders, func(i, j int) bool {
		if funders[i].Grants != funders[j].Grants {
			return funders[i].Grants > funders[j].Grants
		}
		return funders[i].ID < funders[j].ID
	})
	return funders, nil
}

// Similar needs document vectors, which the result file does not carry
func (s *FileSource) Similar(ctx context.Context, runID, grantID string, limit int) ([]models.SimilarGrant, error) {
	if runID != FileRunID {
		return nil, ErrRunNotFound
	}
	return nil, ErrUnsupported
}

// StoreSource serves runs saved in Postgres
type StoreSource struct {
	runs   storage.RunRepository
	points storage.PointRepository
}

// NewStoreSource creates a source backed by the repositories
func NewStoreSource(runs storage.RunRepository, points storage.PointRepository) *StoreSource {
	return &StoreSource{runs: runs, points: points}
}

func (s *StoreSource) LatestRunID(ctx context.Context) (string, error) {
	run, err := s.runs.Latest(ctx)
	if err != nil {
		return "", err
	}
	if run == nil {
		return "", ErrRunNotFound
	}
	return run.ID.String(), nil
}

func (s *StoreSource) Points(ctx context.Context, runID string) ([]models.GrantPoint, error) {
	id, err := s.lookupRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.points.GetByRunID(ctx, id)
	if err != nil {
		return nil, err
	}

	points := make([]models.GrantPoint, len(rows))
	for i, row := range rows {
		points[i] = toGrantPoint(row)
	}
	return points, nil
}

func (s *StoreSource) Similar(ctx context.Context, runID, grantID string, limit int) ([]models.SimilarGrant, error) {
	id, err := s.lookupRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	rows, err := s.points.FindSimilar(ctx, id, grantID, limit)
	if err != nil {
		return nil, err
	}

	similar := make([]models.SimilarGrant, len(rows))
	for i, row := range rows {
		similar[i] = models.SimilarGrant{
			GrantPoint: toGrantPoint(row.Point),
			Similarity: row.Similarity,
		}
	}
	return similar, nil
}

func (s *StoreSource) Funders(ctx context.Context, runID string) ([]models.Funder, error) {
	id, err := s.lookupRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	counts, err := s.points.Funders(ctx, id)
	if err != nil {
		return nil, err
	}

	funders := make([]models.Funder, len(counts))
	for i, c := range counts {
		funders[i] = models.Funder{ID: c.ID, Name: c.Name, Grants: c.Grants}
	}
	return funders, nil
}

func (s *StoreSource) lookupRun(ctx context.Context, runID string) (uuid.UUID, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return uuid.Nil, ErrRunNotFound
	}

	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		return uuid.Nil, err
	}
	if run == nil {
		return uuid.Nil, ErrRunNotFound
	}
	return id, nil
}

func toGrantPoint(row *storage.Point) models.GrantPoint {
	p := models.GrantPoint{
		ID:             row.GrantID,
		AwardDate:      row.AwardDate,
		Title:          row.Title,
		Description:    row.Description,
		Currency:       row.Currency,
		RecipientOrgID: row.RecipientOrgID,
		RecipientOrg:   row.RecipientOrg,
		FundingOrgID:   row.FundingOrgID,
		FundingOrg:     row.FundingOrg,
		X:              row.X,
		Y:              row.Y,
	}
	if row.Amount.Valid && !math.IsNaN(row.Amount.Float64) {
		amount := row.Amount.Float64
		p.Amount = &amount
	}
	return p
}
