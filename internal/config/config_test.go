package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Database.User = "proethica"
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultDBHost, cfg.Database.Host)
	assert.Equal(t, DefaultNeo4jURI, cfg.Neo4j.URI)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, []string{DefaultKafkaBroker}, cfg.Kafka.Brokers)
	assert.Equal(t, DefaultLLMModel, cfg.LLM.Model)
	assert.Equal(t, DefaultEmbeddingDimension, cfg.Embedding.Dimension)
	assert.Equal(t, 0.60, cfg.Relevance.VectorWeight)
	assert.Equal(t, 0.25, cfg.Relevance.TermWeight)
	assert.Equal(t, 0.15, cfg.Relevance.StructuralWeight)
	assert.Equal(t, 0.35, cfg.Relevance.FinalVectorWeight)
	assert.Equal(t, 0.35, cfg.Relevance.FinalJudgeWeight)
	assert.Equal(t, DefaultEscalationThreshold, cfg.Relevance.EscalationThreshold)
	assert.Equal(t, DefaultCitationBatchSize, cfg.Citation.BatchSize)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestApplyDefaults_ExplicitValuesWin(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	cfg.Server.Port = 9090
	cfg.Relevance.EscalationThreshold = 0.5
	cfg.Relevance.VectorWeight = 0.5
	ApplyDefaults(cfg)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.5, cfg.Relevance.EscalationThreshold)
	assert.Equal(t, 0.5, cfg.Relevance.VectorWeight)
	// Explicit preliminary weights suppress the defaults for the whole group.
	assert.Equal(t, 0.0, cfg.Relevance.TermWeight)
}

func TestApplyDefaults_NilIsSafe(t *testing.T) {
	t.Parallel()
	ApplyDefaults(nil)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad server port", func(c *Config) { c.Server.Port = 0 }},
		{"bad server mode", func(c *Config) { c.Server.Mode = "production" }},
		{"missing db host", func(c *Config) { c.Database.Host = "" }},
		{"missing db user", func(c *Config) { c.Database.User = "" }},
		{"missing neo4j uri", func(c *Config) { c.Neo4j.URI = "" }},
		{"missing redis addr", func(c *Config) { c.Redis.Addr = "" }},
		{"no kafka brokers", func(c *Config) { c.Kafka.Brokers = nil }},
		{"threshold above one", func(c *Config) { c.Relevance.EscalationThreshold = 1.2 }},
		{"zero max concurrent", func(c *Config) { c.Relevance.MaxConcurrent = 0 }},
		{"zero citation batch", func(c *Config) { c.Citation.BatchSize = 0 }},
		{"bad confidence threshold", func(c *Config) { c.Citation.ConfidenceThreshold = 2 }},
		{"zero embedding dim", func(c *Config) { c.Embedding.Dimension = 0 }},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }},
		{"bad log format", func(c *Config) { c.Log.Format = "text" }},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9191
  mode: release
database:
  host: db.internal
  user: proethica
  password: secret
relevance:
  escalation_threshold: 0.4
llm:
  model: gemini-1.5-pro
  call_timeout: 45s
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 0.4, cfg.Relevance.EscalationThreshold)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.CallTimeout)
	// Unset fields pick up defaults.
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  mode: production\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PROETHICA_DATABASE_HOST", "env-db")
	t.Setenv("PROETHICA_DATABASE_USER", "env-user")
	t.Setenv("PROETHICA_LLM_API_KEY", "test-key")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "env-db", cfg.Database.Host)
	assert.Equal(t, "env-user", cfg.Database.User)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
}
