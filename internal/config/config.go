// Package config loads grantmap settings from a YAML file, a .env file and
// the environment, in increasing order of precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when GRANTMAP_CONFIG is unset
const DefaultPath = "grantmap.yaml"

// TextConfig controls how record text is assembled
type TextConfig struct {
	MissingPlaceholder string `yaml:"missing_placeholder"`
}

// RemoteEmbeddingsConfig configures the OpenAI-compatible embedding endpoint
type RemoteEmbeddingsConfig struct {
	BaseURL       string `yaml:"base_url"`
	APIKeyEnv     string `yaml:"api_key_env"`
	Model         string `yaml:"model"`
	TimeoutSecs   int    `yaml:"timeout_secs"`
	BatchSize     int    `yaml:"batch_size"`
	MaxConcurrent int    `yaml:"max_concurrent"`
}

// EmbeddingsConfig selects where word vectors come from
type EmbeddingsConfig struct {
	Source string                  `yaml:"source"`
	Path   string                  `yaml:"path"`
	Remote *RemoteEmbeddingsConfig `yaml:"remote,omitempty"`
}

// ReductionConfig configures the two projection stages
type ReductionConfig struct {
	Method       string   `yaml:"method"`
	Components   int      `yaml:"components"`
	Perplexity   float64  `yaml:"perplexity"`
	LearningRate float64  `yaml:"learning_rate"`
	Iterations   int      `yaml:"iterations"`
	Seed         int64    `yaml:"seed"`
	AxisWords    []string `yaml:"axis_words,omitempty"`
}

// DatabaseConfig enables Postgres persistence when URL is set
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig configures the results API
type ServerConfig struct {
	Port      string `yaml:"port"`
	JWTSecret string `yaml:"jwt_secret"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level"`
}

// AppConfig is the root configuration
type AppConfig struct {
	Input      string           `yaml:"input"`
	Output     string           `yaml:"output"`
	Text       TextConfig       `yaml:"text"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Reduction  ReductionConfig  `yaml:"reduction"`
	Database   DatabaseConfig   `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads the config file named by GRANTMAP_CONFIG (or DefaultPath),
// falling back to defaults when it does not exist, and applies environment
// overrides. A .env file in the working directory is loaded first if present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, err := LoadFile(GetStringEnv("GRANTMAP_CONFIG", DefaultPath))
	if err != nil {
		return nil, err
	}
	applyEnv(cfg)
	return cfg, nil
}

// LoadFile reads a config from path. A missing file yields the defaults.
func LoadFile(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// Save writes the config to path, creating directories as needed
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Default returns the default configuration
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Input == "" {
		cfg.Input = "grantnav-all.csv"
	}
	if cfg.Output == "" {
		cfg.Output = "result.csv"
	}
	if cfg.Embeddings.Source == "" {
		cfg.Embeddings.Source = "word2vec"
	}
	if cfg.Embeddings.Path == "" && cfg.Embeddings.Source == "word2vec" {
		cfg.Embeddings.Path = "./GoogleNews-vectors-negative300.bin"
	}
	if cfg.Embeddings.Source == "remote" {
		if cfg.Embeddings.Remote == nil {
			cfg.Embeddings.Remote = &RemoteEmbeddingsConfig{}
		}
		r := cfg.Embeddings.Remote
		if r.BaseURL == "" {
			r.BaseURL = "https://openrouter.ai/api/v1"
		}
		if r.APIKeyEnv == "" {
			r.APIKeyEnv = "OPENROUTER_API_KEY"
		}
		if r.Model == "" {
			r.Model = "openai/text-embedding-3-small"
		}
		if r.TimeoutSecs == 0 {
			r.TimeoutSecs = 30
		}
		if r.BatchSize == 0 {
			r.BatchSize = 100
		}
		if r.MaxConcurrent == 0 {
			r.MaxConcurrent = 5
		}
	}
	if cfg.Reduction.Method == "" {
		cfg.Reduction.Method = "tsne"
	}
	if cfg.Reduction.Components == 0 {
		cfg.Reduction.Components = 50
	}
	if cfg.Reduction.Perplexity == 0 {
		cfg.Reduction.Perplexity = 30
	}
	if cfg.Reduction.LearningRate == 0 {
		cfg.Reduction.LearningRate = 200
	}
	if cfg.Reduction.Iterations == 0 {
		cfg.Reduction.Iterations = 1000
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

func applyEnv(cfg *AppConfig) {
	cfg.Input = GetStringEnv("GRANTMAP_INPUT", cfg.Input)
	cfg.Output = GetStringEnv("GRANTMAP_OUTPUT", cfg.Output)
	cfg.Embeddings.Path = GetStringEnv("GRANTMAP_EMBEDDINGS", cfg.Embeddings.Path)
	cfg.Reduction.Seed = int64(GetIntEnv("GRANTMAP_SEED", int(cfg.Reduction.Seed)))
	cfg.Database.URL = GetStringEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Server.Port = GetStringEnv("PORT", cfg.Server.Port)
	cfg.Server.JWTSecret = GetStringEnv("JWT_SECRET", cfg.Server.JWTSecret)
	cfg.Log.Level = strings.ToLower(GetStringEnv("LOG_LEVEL", cfg.Log.Level))
}

// RemoteAPIKey returns the API key for remote embeddings, read from the
// configured environment variable
func (c *AppConfig) RemoteAPIKey() string {
	if c.Embeddings.Remote == nil {
		return ""
	}
	return os.Getenv(c.Embeddings.Remote.APIKeyEnv)
}

func GetStringEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
