package pipeline

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/todmy/grantmap/internal/config"
	"github.com/todmy/grantmap/internal/embeddings"
	"github.com/todmy/grantmap/internal/storage"
)

// NewTableLoader returns the loader for the configured embedding source.
// db may be nil; when set, remote embeddings are cached in Postgres.
func NewTableLoader(cfg *config.AppConfig, db *sql.DB) (TableLoader, error) {
	src := cfg.Embeddings
	switch src.Source {
	case embeddings.SourceWord2VecBinary, embeddings.SourceText:
		if src.Path == "" {
			return nil, fmt.Errorf("embeddings.path is required for source %s", src.Source)
		}
		return func(ctx context.Context, _ map[string]struct{}) (*embeddings.Table, error) {
			return embeddings.LoadFile(src.Path, src.Source)
		}, nil

	case embeddings.SourceRemote:
		r := src.Remote
		client := embeddings.NewClient(cfg.RemoteAPIKey(),
			embeddings.WithBaseURL(r.BaseURL),
			embeddings.WithModel(r.Model),
			embeddings.WithBatchSize(r.BatchSize),
			embeddings.WithMaxConcurrent(r.MaxConcurrent),
			embeddings.WithTimeout(time.Duration(r.TimeoutSecs)*time.Second),
		)

		var cache embeddings.Cache = embeddings.NewMemoryCache()
		if db != nil {
			cache = storage.NewEmbeddingCache(db)
		}
		embedder := embeddings.NewCachedClient(client, cache)

		return func(ctx context.Context, vocabulary map[string]struct{}) (*embeddings.Table, error) {
			return embeddings.BuildTable(ctx, embedder, vocabulary)
		}, nil

	default:
		return nil, fmt.Errorf("unknown embedding source: %s", src.Source)
	}
}
