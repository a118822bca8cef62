// Package pipeline runs one batch: read grants, weight and vectorize their
// text, project the vectors to 2-d and write the result.
package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"

	"github.com/todmy/grantmap/internal/embeddings"
	"github.com/todmy/grantmap/internal/grants"
	"github.com/todmy/grantmap/internal/idf"
	"github.com/todmy/grantmap/internal/storage"
	"github.com/todmy/grantmap/internal/vectorize"
	"github.com/todmy/grantmap/internal/visualization"
	"github.com/todmy/grantmap/pkg/models"
)

// TableLoader provides the embedding table. vocabulary holds every term of
// the corpus plus the semantic axis words; pretrained loaders ignore it.
type TableLoader func(ctx context.Context, vocabulary map[string]struct{}) (*embeddings.Table, error)

// Config holds pipeline configuration
type Config struct {
	Input         string
	Output        string
	MissingText   string
	Visualization visualization.Config
}

// Output is the in-memory result of processing a record set
type Output struct {
	Points    []models.GrantPoint
	Vectors   [][]float64
	Groups    int
	Dimension int
	Method    string
}

// Pipeline runs the batch
type Pipeline struct {
	config    Config
	loadTable TableLoader
	runs      storage.RunRepository
	points    storage.PointRepository
}

// Option configures the Pipeline
type Option func(*Pipeline)

// WithStore persists every run and its points
func WithStore(runs storage.RunRepository, points storage.PointRepository) Option {
	return func(p *Pipeline) {
		p.runs = runs
		p.points = points
	}
}

// New creates a new pipeline
func New(config Config, loadTable TableLoader, opts ...Option) *Pipeline {
	p := &Pipeline{
		config:    config,
		loadTable: loadTable,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run reads the input file, processes it, writes the output file and, when
// a store is configured, saves the run. It returns the saved run.
func (p *Pipeline) Run(ctx context.Context) (*models.Run, error) {
	start := time.Now()

	f, err := os.Open(p.config.Input)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	records, err := grants.ReadCSV(f, grants.ReadOptions{MissingText: p.config.MissingText})
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p.config.Input, err)
	}
	logrus.WithFields(logrus.Fields{
		"input":   p.config.Input,
		"records": len(records),
	}).Info("read grants")

	out, err := p.Process(ctx, records)
	if err != nil {
		return nil, err
	}

	if err := writeOutput(p.config.Output, out.Points); err != nil {
		return nil, err
	}
	logrus.WithField("output", p.config.Output).Info("wrote result")

	run := &models.Run{
		ID:        uuid.New().String(),
		InputFile: p.config.Input,
		Records:   len(records),
		Groups:    out.Groups,
		Dimension: out.Dimension,
		Method:    out.Method,
		CreatedAt: time.Now(),
	}
	if p.runs != nil {
		if err := p.save(ctx, run, out); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
		logrus.WithField("run", run.ID).Info("saved run")
	}

	logrus.WithField("elapsed", time.Since(start).Round(time.Millisecond)).Info("done")
	return run, nil
}

// Process weights, vectorizes and projects records. Output rows follow the
// order of records.
func (p *Pipeline) Process(ctx context.Context, records []grants.Record) (*Output, error) {
	groups := idf.BuildGroupTable(records, grants.Record.GroupKey, grants.Record.Text)
	logrus.WithFields(logrus.Fields{
		"records": groups.Records(),
		"groups":  len(groups),
	}).Info("counted document frequencies")

	// Axis words need vectors even when no grant uses them
	vocabulary := groups.Vocabulary()
	for _, word := range p.config.Visualization.SemanticWords() {
		vocabulary[word] = struct{}{}
	}

	start := time.Now()
	table, err := p.loadTable(ctx, vocabulary)
	if err != nil {
		return nil, fmt.Errorf("load embeddings: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"words":   table.Len(),
		"dim":     table.Dim(),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Info("loaded embeddings")

	vectors, err := vectorize.VectorizeAll(vectorize.New(table), records, groups)
	if err != nil {
		return nil, fmt.Errorf("vectorize: %w", err)
	}
	logrus.WithField("records", len(vectors)).Info("vectorized grants")

	result, err := visualization.NewService(p.config.Visualization, table).Project(vectors)
	if err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}

	points := make([]models.GrantPoint, len(records))
	for i, r := range records {
		points[i] = grants.NewPoint(r, result.Points[i].X, result.Points[i].Y)
	}

	return &Output{
		Points:    points,
		Vectors:   vectors,
		Groups:    len(groups),
		Dimension: table.Dim(),
		Method:    result.Method,
	}, nil
}

func (p *Pipeline) save(ctx context.Context, run *models.Run, out *Output) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return err
	}

	if err := p.runs.Create(ctx, &storage.Run{
		ID:        id,
		InputFile: run.InputFile,
		Records:   run.Records,
		Groups:    run.Groups,
		Dimension: run.Dimension,
		Method:    run.Method,
		CreatedAt: run.CreatedAt,
	}); err != nil {
		return err
	}

	rows := make([]*storage.Point, len(out.Points))
	for i, gp := range out.Points {
		rows[i] = toStoragePoint(id, i, gp, out.Vectors[i])
	}
	return p.points.CreateBatch(ctx, rows)
}

func toStoragePoint(runID uuid.UUID, position int, gp models.GrantPoint, vec []float64) *storage.Point {
	v := make([]float32, len(vec))
	for i, x := range vec {
		v[i] = float32(x)
	}

	var amount sql.NullFloat64
	if gp.Amount != nil && !math.IsNaN(*gp.Amount) {
		amount = sql.NullFloat64{Float64: *gp.Amount, Valid: true}
	}

	return &storage.Point{
		RunID:          runID,
		Position:       position,
		GrantID:        gp.ID,
		AwardDate:      gp.AwardDate,
		Title:          gp.Title,
		Description:    gp.Description,
		Currency:       gp.Currency,
		Amount:         amount,
		RecipientOrgID: gp.RecipientOrgID,
		RecipientOrg:   gp.RecipientOrg,
		FundingOrgID:   gp.FundingOrgID,
		FundingOrg:     gp.FundingOrg,
		Vector:         pgvector.NewVector(v),
		X:              gp.X,
		Y:              gp.Y,
	}
}

func writeOutput(path string, points []models.GrantPoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := grants.WriteCSV(f, points); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
