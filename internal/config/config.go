// Package config provides unified configuration loading for the indexing engine.
// Supports YAML files, environment variables, and programmatic overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the indexing and retrieval engine.
type Config struct {
	DataDir       string              `yaml:"data_dir"`
	Ingestion     IngestionConfig     `yaml:"ingestion"`
	Embedding     EmbeddingConfig     `yaml:"embedding"`
	Cache         CacheConfig         `yaml:"cache"`
	Retrieval     RetrievalConfig     `yaml:"retrieval"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// IngestionConfig holds chunking pipeline settings.
type IngestionConfig struct {
	MinChunkSize      int `yaml:"min_chunk_size"`
	MaxChunkSize      int `yaml:"max_chunk_size"`
	PreserveHeadLines int `yaml:"preserve_head_lines"`
	EmbedBatchSize    int `yaml:"embed_batch_size"`
	MaxConcurrentEmbeds int `yaml:"max_concurrent_embeds"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Provider  string        `yaml:"provider"` // local or api
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	APIKey    string        `yaml:"api_key"`
	Dimension int           `yaml:"dimension"`
	Timeout   time.Duration `yaml:"timeout"`
}

// CacheConfig holds query context cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// RetrievalConfig holds retrieval settings.
type RetrievalConfig struct {
	MaxResults    int           `yaml:"max_results"`
	SearchTimeout time.Duration `yaml:"search_timeout"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "./data/indexes",
		Ingestion: IngestionConfig{
			MinChunkSize:        50,
			MaxChunkSize:        1200,
			PreserveHeadLines:   5,
			EmbedBatchSize:      64,
			MaxConcurrentEmbeds: 4,
		},
		Embedding: EmbeddingConfig{
			Provider:  "local",
			Model:     "text-embedding-3-small",
			BaseURL:   "https://api.openai.com/v1",
			Dimension: 256,
			Timeout:   30 * time.Second,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 1000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Retrieval: RetrievalConfig{
			MaxResults:    5,
			SearchTimeout: 10 * time.Second,
		},
		Observability: ObservabilityConfig{
			LogLevel:  "info",
			LogFormat: "console",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}

	if c.Ingestion.MinChunkSize < 0 || c.Ingestion.MaxChunkSize <= 0 {
		return fmt.Errorf("invalid chunk size bounds: min=%d max=%d",
			c.Ingestion.MinChunkSize, c.Ingestion.MaxChunkSize)
	}

	if c.Ingestion.MinChunkSize >= c.Ingestion.MaxChunkSize {
		return fmt.Errorf("min_chunk_size must be below max_chunk_size")
	}

	if c.Embedding.Provider != "local" && c.Embedding.Provider != "api" {
		return fmt.Errorf("invalid embedding provider: %s", c.Embedding.Provider)
	}

	if c.Embedding.Provider == "api" && c.Embedding.APIKey == "" {
		return fmt.Errorf("embedding api_key is required for api provider")
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Retrieval.MaxResults < 1 {
		return fmt.Errorf("max_results must be at least 1")
	}

	return nil
}

// IndexPath returns the storage location for a (domain, language) collection.
func (c *Config) IndexPath(domain, language string) string {
	return filepath.Join(c.DataDir, fmt.Sprintf("%s_%s.db", domain, language))
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SEMINDEX_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if v := os.Getenv("EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}

	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}

	if v := os.Getenv("EMBEDDING_BASE_URL"); v != "" {
		cfg.Embedding.BaseURL = v
	}

	if v := os.Getenv("EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
		cfg.Embedding.Provider = "api"
	}

	if v := os.Getenv("EMBEDDING_DIMENSION"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			cfg.Embedding.Dimension = d
		}
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = trimScheme(v, "redis://")
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = v
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}

func trimScheme(s, scheme string) string {
	if len(s) >= len(scheme) && s[:len(scheme)] == scheme {
		return s[len(scheme):]
	}
	return s
}
