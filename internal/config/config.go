// Package config loads validator settings from YAML, .env files and
// VALIDATOR_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/cache"
	"strategy-validator/internal/portfolio"
	"strategy-validator/internal/walkforward"
)

// ErrInvalidConfig is returned when Validate fails.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete validator configuration.
type Config struct {
	Evaluation  EvaluationConfig  `yaml:"evaluation"`
	WalkForward WalkForwardConfig `yaml:"walkforward"`
	Portfolio   PortfolioConfig   `yaml:"portfolio"`
	Cache       CacheConfig       `yaml:"cache"`
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// EvaluationConfig maps onto analysis.Params plus evaluator concurrency.
type EvaluationConfig struct {
	InitialCapital      float64 `yaml:"initial_capital"`
	LotPct              float64 `yaml:"lot_pct"`
	ConfidenceLevel     float64 `yaml:"confidence_level"`
	RiskFreeRate        float64 `yaml:"risk_free_rate"`
	BootstrapIterations int     `yaml:"bootstrap_iterations"`
	MaxBootstrap        int     `yaml:"max_bootstrap_iterations"`
	Seed                uint64  `yaml:"seed"`
	ACFLags             int     `yaml:"acf_lags"`
	ExtremePercentile   float64 `yaml:"extreme_percentile"`
	GrowthMonths        int     `yaml:"growth_months"`
	LotWindow           int     `yaml:"lot_window"`
	BaseLotPct          float64 `yaml:"base_lot_pct"`
	Workers             int     `yaml:"workers"`
}

// WalkForwardConfig configures the split and rolling judges.
type WalkForwardConfig struct {
	TrainRatio     float64 `yaml:"train_ratio"`
	RollingWindows int     `yaml:"rolling_windows"`
}

// PortfolioConfig configures the portfolio metrics provider. An empty
// BaseURL selects the local provider.
type PortfolioConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RPS        float64       `yaml:"rps"`
	Burst      int           `yaml:"burst"`
	MaxRetries int           `yaml:"max_retries"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig configures the provider circuit breaker.
type BreakerConfig struct {
	Interval            time.Duration `yaml:"interval"`
	Timeout             time.Duration `yaml:"timeout"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"`
	MinRequests         uint32        `yaml:"min_requests"`
	FailureRatio        float64       `yaml:"failure_ratio"`
}

// CacheConfig selects the report cache backend.
type CacheConfig struct {
	Backend   string        `yaml:"backend"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	TTL       time.Duration `yaml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// LogConfig configures zerolog.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console or json
}

// MetricsConfig configures Prometheus.
type MetricsConfig struct {
	Namespace string `yaml:"namespace"`
}

// Default returns the built-in configuration.
func Default() *Config {
	p := analysis.DefaultParams()
	b := portfolio.DefaultBreakerSettings()
	return &Config{
		Evaluation: EvaluationConfig{
			InitialCapital:      p.InitialCapital,
			LotPct:              p.LotPct,
			ConfidenceLevel:     p.ConfidenceLevel,
			RiskFreeRate:        p.RiskFreeRate,
			BootstrapIterations: p.BootstrapIterations,
			MaxBootstrap:        p.MaxBootstrap,
			Seed:                p.Seed,
			ACFLags:             p.ACFLags,
			ExtremePercentile:   p.ExtremePercentile,
			GrowthMonths:        p.GrowthMonths,
			LotWindow:           p.LotWindow,
			BaseLotPct:          p.BaseLotPct,
			Workers:             6,
		},
		WalkForward: WalkForwardConfig{
			TrainRatio:     walkforward.DefaultTrainRatio,
			RollingWindows: 3,
		},
		Portfolio: PortfolioConfig{
			Timeout:    portfolio.DefaultTimeout,
			RPS:        portfolio.DefaultRPS,
			Burst:      portfolio.DefaultBurst,
			MaxRetries: portfolio.DefaultMaxRetries,
			Breaker: BreakerConfig{
				Interval:            b.Interval,
				Timeout:             b.Timeout,
				ConsecutiveFailures: b.ConsecutiveFailures,
				MinRequests:         b.MinRequests,
				FailureRatio:        b.FailureRatio,
			},
		},
		Cache: CacheConfig{
			Backend: cache.BackendMemory,
			TTL:     24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			MaxBodyBytes: 32 << 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Namespace: "strategy_validator",
		},
	}
}

// Load reads path over the defaults, applies VALIDATOR_* overrides and
// validates. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env files into the process environment. Missing
// files are skipped and existing variables are never overridden.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Params converts the evaluation section to analysis.Params.
func (c *Config) Params() analysis.Params {
	e := c.Evaluation
	return analysis.Params{
		InitialCapital:      e.InitialCapital,
		LotPct:              e.LotPct,
		ConfidenceLevel:     e.ConfidenceLevel,
		RiskFreeRate:        e.RiskFreeRate,
		BootstrapIterations: e.BootstrapIterations,
		MaxBootstrap:        e.MaxBootstrap,
		Seed:                e.Seed,
		ACFLags:             e.ACFLags,
		ExtremePercentile:   e.ExtremePercentile,
		GrowthMonths:        e.GrowthMonths,
		LotWindow:           e.LotWindow,
		BaseLotPct:          e.BaseLotPct,
	}
}

// CacheOptions converts the cache section to cache.Options.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend:   c.Cache.Backend,
		RedisAddr: c.Cache.RedisAddr,
		RedisDB:   c.Cache.RedisDB,
		TTL:       c.Cache.TTL,
	}
}

// Provider builds the configured portfolio provider.
func (c *Config) Provider(logger zerolog.Logger) portfolio.Provider {
	p := c.Portfolio
	if p.BaseURL == "" {
		return portfolio.NewLocalProvider()
	}
	return portfolio.NewHTTPProvider(p.BaseURL,
		portfolio.WithLogger(logger),
		portfolio.WithTimeout(p.Timeout),
		portfolio.WithMaxRetries(p.MaxRetries),
		portfolio.WithRateLimit(p.RPS, p.Burst),
		portfolio.WithBreaker(portfolio.BreakerSettings{
			Interval:            p.Breaker.Interval,
			Timeout:             p.Breaker.Timeout,
			ConsecutiveFailures: p.Breaker.ConsecutiveFailures,
			MinRequests:         p.Breaker.MinRequests,
			FailureRatio:        p.Breaker.FailureRatio,
		}),
	)
}
