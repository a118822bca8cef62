package main

import (
	"database/sql"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/todmy/grantmap/internal/api"
	"github.com/todmy/grantmap/internal/auth"
	"github.com/todmy/grantmap/internal/config"
	"github.com/todmy/grantmap/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	config.ConfigureLogging(cfg.Log.Level)

	var source api.PointSource
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			logrus.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			logrus.Fatalf("Failed to ping database: %v", err)
		}
		source = api.NewStoreSource(
			storage.NewPostgresRunRepository(db),
			storage.NewPostgresPointRepository(db),
		)
	} else {
		source, err = api.NewFileSource(cfg.Output)
		if err != nil {
			logrus.Fatalf("Failed to load results: %v", err)
		}
	}

	serverCfg := api.ServerConfig{
		Source:    source,
		StaticDir: config.GetStringEnv("GRANTMAP_STATIC_DIR", ""),
	}
	if cfg.Server.JWTSecret != "" {
		tokens, err := auth.NewTokenService(auth.Config{SecretKey: cfg.Server.JWTSecret})
		if err != nil {
			logrus.Fatalf("Failed to configure auth: %v", err)
		}
		serverCfg.Auth = tokens
	}

	server := api.NewServer(serverCfg)

	logrus.Infof("Starting grantmap server on port %s", cfg.Server.Port)
	if err := server.Run(":" + cfg.Server.Port); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
