package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Embedding.Provider)
	assert.Equal(t, 50, cfg.Ingestion.MinChunkSize)
	assert.Equal(t, 1200, cfg.Ingestion.MaxChunkSize)
	assert.Equal(t, "memory", cfg.Cache.Driver)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 5, cfg.Retrieval.MaxResults)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
data_dir: /var/lib/semindex
ingestion:
  max_chunk_size: 800
retrieval:
  max_results: 3
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/semindex", cfg.DataDir)
	assert.Equal(t, 800, cfg.Ingestion.MaxChunkSize)
	assert.Equal(t, 3, cfg.Retrieval.MaxResults)
	// Values absent from the file keep their defaults.
	assert.Equal(t, 50, cfg.Ingestion.MinChunkSize)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SEMINDEX_DATA_DIR", "/tmp/env-indexes")
	t.Setenv("EMBEDDING_API_KEY", "sk-test")
	t.Setenv("EMBEDDING_DIMENSION", "512")
	t.Setenv("REDIS_URL", "redis://cache.internal:6380")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/env-indexes", cfg.DataDir)
	assert.Equal(t, "api", cfg.Embedding.Provider, "API key implies the api provider")
	assert.Equal(t, "sk-test", cfg.Embedding.APIKey)
	assert.Equal(t, 512, cfg.Embedding.Dimension)
	assert.Equal(t, "redis", cfg.Cache.Driver)
	assert.Equal(t, "cache.internal:6380", cfg.Cache.Redis.Addr)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "data_dir"},
		{"min above max", func(c *Config) { c.Ingestion.MinChunkSize = 2000 }, "min_chunk_size"},
		{"bad provider", func(c *Config) { c.Embedding.Provider = "other" }, "embedding provider"},
		{"api without key", func(c *Config) { c.Embedding.Provider = "api" }, "api_key"},
		{"bad cache driver", func(c *Config) { c.Cache.Driver = "disk" }, "cache driver"},
		{"zero max results", func(c *Config) { c.Retrieval.MaxResults = 0 }, "max_results"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestIndexPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DataDir = "/data"
	assert.Equal(t, filepath.Join("/data", "loan_en.db"), cfg.IndexPath("loan", "en"))
	assert.Equal(t, filepath.Join("/data", "investment_hi.db"), cfg.IndexPath("investment", "hi"))
}
