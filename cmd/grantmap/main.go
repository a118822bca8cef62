package main

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/todmy/grantmap/internal/config"
	"github.com/todmy/grantmap/internal/pipeline"
	"github.com/todmy/grantmap/internal/storage"
	"github.com/todmy/grantmap/internal/visualization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.ConfigureLogging(cfg.Log.Level)

	ctx := context.Background()

	var db *sql.DB
	if cfg.Database.URL != "" {
		db, err = sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			logrus.Fatalf("Failed to ping database: %v", err)
		}
		if err := storage.Migrate(ctx, db); err != nil {
			logrus.Fatalf("Failed to migrate database: %v", err)
		}
	}

	loadTable, err := pipeline.NewTableLoader(cfg, db)
	if err != nil {
		logrus.Fatalf("Failed to configure embeddings: %v", err)
	}

	var opts []pipeline.Option
	if db != nil {
		opts = append(opts, pipeline.WithStore(
			storage.NewPostgresRunRepository(db),
			storage.NewPostgresPointRepository(db),
		))
	}

	p := pipeline.New(pipeline.Config{
		Input:       cfg.Input,
		Output:      cfg.Output,
		MissingText: cfg.Text.MissingPlaceholder,
		Visualization: visualization.Config{
			Method:       cfg.Reduction.Method,
			Components:   cfg.Reduction.Components,
			Perplexity:   cfg.Reduction.Perplexity,
			LearningRate: cfg.Reduction.LearningRate,
			Iterations:   cfg.Reduction.Iterations,
			Seed:         cfg.Reduction.Seed,
			AxisWords:    cfg.Reduction.AxisWords,
		},
	}, loadTable, opts...)

	run, err := p.Run(ctx)
	if err != nil {
		logrus.Fatalf("Run failed: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"run":     run.ID,
		"records": run.Records,
		"groups":  run.Groups,
		"method":  run.Method,
	}).Info("grant map ready")
}
