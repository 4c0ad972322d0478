package config

import (
	"fmt"

	"github.com/rs/zerolog"

	"strategy-validator/internal/cache"
	"strategy-validator/internal/walkforward"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: evaluation: %v", ErrInvalidConfig, err)
	}
	if c.Evaluation.Workers < 1 {
		return fmt.Errorf("%w: evaluation workers must be positive, got %d", ErrInvalidConfig, c.Evaluation.Workers)
	}

	if c.WalkForward.TrainRatio <= 0 || c.WalkForward.TrainRatio >= 1 {
		return fmt.Errorf("%w: walkforward train_ratio must be in (0, 1), got %g", ErrInvalidConfig, c.WalkForward.TrainRatio)
	}
	if _, ok := walkforward.Schedules[c.WalkForward.RollingWindows]; !ok {
		return fmt.Errorf("%w: walkforward rolling_windows must be 3, 4 or 5, got %d", ErrInvalidConfig, c.WalkForward.RollingWindows)
	}

	if c.Portfolio.BaseURL != "" {
		if c.Portfolio.RPS <= 0 {
			return fmt.Errorf("%w: portfolio rps must be positive, got %g", ErrInvalidConfig, c.Portfolio.RPS)
		}
		if c.Portfolio.Burst < 1 {
			return fmt.Errorf("%w: portfolio burst must be >= 1, got %d", ErrInvalidConfig, c.Portfolio.Burst)
		}
		if c.Portfolio.Breaker.ConsecutiveFailures == 0 {
			return fmt.Errorf("%w: portfolio breaker consecutive_failures must be positive", ErrInvalidConfig)
		}
	}

	switch c.Cache.Backend {
	case cache.BackendMemory, cache.BackendNone:
	case cache.BackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("%w: cache redis_addr cannot be empty for the redis backend", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown cache backend %q", ErrInvalidConfig, c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("%w: cache ttl cannot be negative", ErrInvalidConfig)
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log level: %v", ErrInvalidConfig, err)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("%w: log format must be console or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}
