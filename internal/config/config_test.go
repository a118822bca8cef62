package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_MissingGivesDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "grantnav-all.csv", cfg.Input)
	assert.Equal(t, "result.csv", cfg.Output)
	assert.Equal(t, "word2vec", cfg.Embeddings.Source)
	assert.Equal(t, "./GoogleNews-vectors-negative300.bin", cfg.Embeddings.Path)
	assert.Equal(t, "tsne", cfg.Reduction.Method)
	assert.Equal(t, 50, cfg.Reduction.Components)
	assert.Equal(t, 30.0, cfg.Reduction.Perplexity)
	assert.Equal(t, 200.0, cfg.Reduction.LearningRate)
	assert.Equal(t, 1000, cfg.Reduction.Iterations)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Nil(t, cfg.Embeddings.Remote)
}

func TestLoadFile_PartialYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
input: data/grants.csv
text:
  missing_placeholder: nan
embeddings:
  source: remote
  remote:
    model: text-embedding-3-small
reduction:
  method: pca
  components: 20
  axis_words: [arts, health]
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "data/grants.csv", cfg.Input)
	assert.Equal(t, "result.csv", cfg.Output)
	assert.Equal(t, "nan", cfg.Text.MissingPlaceholder)
	assert.Equal(t, "pca", cfg.Reduction.Method)
	assert.Equal(t, 20, cfg.Reduction.Components)
	assert.Equal(t, []string{"arts", "health"}, cfg.Reduction.AxisWords)

	assert.Empty(t, cfg.Embeddings.Path)
	require.NotNil(t, cfg.Embeddings.Remote)
	assert.Equal(t, "text-embedding-3-small", cfg.Embeddings.Remote.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.Embeddings.Remote.BaseURL)
	assert.Equal(t, 100, cfg.Embeddings.Remote.BatchSize)
}

func TestLoadFile_TextSourceKeepsPathEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grantmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("embeddings:\n  source: text\n"), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "text", cfg.Embeddings.Source)
	assert.Empty(t, cfg.Embeddings.Path)
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reduction: [unclosed"), 0o644))

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "grantmap.yaml")
	cfg := Default()
	cfg.Reduction.Seed = 7

	require.NoError(t, Save(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "grantmap.yaml")
	require.NoError(t, os.WriteFile(path, []byte("output: from-file.csv\n"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("GRANTMAP_CONFIG", path)
	t.Setenv("GRANTMAP_INPUT", "env.csv")
	t.Setenv("GRANTMAP_SEED", "42")
	t.Setenv("DATABASE_URL", "postgres://localhost/grantmap")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "env.csv", cfg.Input)
	assert.Equal(t, "from-file.csv", cfg.Output)
	assert.Equal(t, int64(42), cfg.Reduction.Seed)
	assert.Equal(t, "postgres://localhost/grantmap", cfg.Database.URL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestRemoteAPIKey(t *testing.T) {
	cfg := Default()
	assert.Empty(t, cfg.RemoteAPIKey())

	cfg.Embeddings.Remote = &RemoteEmbeddingsConfig{APIKeyEnv: "GRANTMAP_TEST_KEY"}
	t.Setenv("GRANTMAP_TEST_KEY", "sk-test")
	assert.Equal(t, "sk-test", cfg.RemoteAPIKey())
}

func TestGetIntEnv(t *testing.T) {
	t.Setenv("GRANTMAP_TEST_INT", "12")
	assert.Equal(t, 12, GetIntEnv("GRANTMAP_TEST_INT", 3))

	t.Setenv("GRANTMAP_TEST_INT", "twelve")
	assert.Equal(t, 3, GetIntEnv("GRANTMAP_TEST_INT", 3))
	assert.Equal(t, 5, GetIntEnv("GRANTMAP_TEST_UNSET", 5))
}
