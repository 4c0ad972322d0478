package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/portfolio"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, analysis.DefaultParams(), cfg.Params())
}

func TestLoad_YAMLOverDefaults(t *testing.T) {
	path := writeFile(t, "validator.yaml", `
evaluation:
  initial_capital: 1000
  seed: 7
walkforward:
  rolling_windows: 5
portfolio:
  base_url: http://metrics.local
  timeout: 3s
cache:
  backend: redis
  redis_addr: localhost:6379
  ttl: 1h
log:
  level: debug
  format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, cfg.Evaluation.InitialCapital)
	assert.Equal(t, uint64(7), cfg.Evaluation.Seed)
	assert.Equal(t, 1.0, cfg.Evaluation.LotPct, "untouched keys keep defaults")
	assert.Equal(t, 5, cfg.WalkForward.RollingWindows)
	assert.Equal(t, 3*time.Second, cfg.Portfolio.Timeout)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "json", cfg.Log.Format)

	_, isHTTP := cfg.Provider(zerolog.Nop()).(*portfolio.HTTPProvider)
	assert.True(t, isHTTP)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")

	_, err = Load(writeFile(t, "bad.yaml", "evaluation: [1, 2"))
	assert.ErrorContains(t, err, "failed to parse config")

	_, err = Load(writeFile(t, "invalid.yaml", "walkforward:\n  train_ratio: 1.5\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"VALIDATOR_INITIAL_CAPITAL": "250",
		"VALIDATOR_SEED":            "99",
		"VALIDATOR_CACHE_BACKEND":   "none",
		"VALIDATOR_CACHE_TTL":       "5m",
		"VALIDATOR_LOG_LEVEL":       "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, 250.0, cfg.Evaluation.InitialCapital)
	assert.Equal(t, uint64(99), cfg.Evaluation.Seed)
	assert.Equal(t, "none", cfg.Cache.Backend)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Log.Level, "empty values are ignored")

	env["VALIDATOR_WORKERS"] = "many"
	assert.ErrorContains(t, Default().ApplyEnv(lookup), "VALIDATOR_WORKERS")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero capital", func(c *Config) { c.Evaluation.InitialCapital = 0 }},
		{"no workers", func(c *Config) { c.Evaluation.Workers = 0 }},
		{"rolling windows", func(c *Config) { c.WalkForward.RollingWindows = 6 }},
		{"redis without addr", func(c *Config) { c.Cache.Backend = "redis" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "disk" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }},
		{"remote without rps", func(c *Config) { c.Portfolio.BaseURL = "http://x"; c.Portfolio.RPS = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestLoadEnvFiles(t *testing.T) {
	path := writeFile(t, ".env", "VALIDATOR_TEST_ONLY_KEY=from-file\n")
	t.Setenv("VALIDATOR_TEST_ONLY_KEY", "")
	os.Unsetenv("VALIDATOR_TEST_ONLY_KEY")

	require.NoError(t, LoadEnvFiles(path, filepath.Join(t.TempDir(), "absent.env")))
	assert.Equal(t, "from-file", os.Getenv("VALIDATOR_TEST_ONLY_KEY"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = LogConfig{Level: "nope"}.NewLogger(&buf)
	assert.Error(t, err)
}
