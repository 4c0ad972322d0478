package config

import (
	"fmt"
	"strconv"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "VALIDATOR_"

type envOverride struct {
	name  string
	apply func(c *Config, v string) error
}

var envOverrides = []envOverride{
	{"INITIAL_CAPITAL", func(c *Config, v string) error { return parseFloat(v, &c.Evaluation.InitialCapital) }},
	{"LOT_PCT", func(c *Config, v string) error { return parseFloat(v, &c.Evaluation.LotPct) }},
	{"RISK_FREE_RATE", func(c *Config, v string) error { return parseFloat(v, &c.Evaluation.RiskFreeRate) }},
	{"BOOTSTRAP_ITERATIONS", func(c *Config, v string) error { return parseInt(v, &c.Evaluation.BootstrapIterations) }},
	{"SEED", func(c *Config, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return err
		}
		c.Evaluation.Seed = n
		return nil
	}},
	{"WORKERS", func(c *Config, v string) error { return parseInt(v, &c.Evaluation.Workers) }},
	{"TRAIN_RATIO", func(c *Config, v string) error { return parseFloat(v, &c.WalkForward.TrainRatio) }},
	{"ROLLING_WINDOWS", func(c *Config, v string) error { return parseInt(v, &c.WalkForward.RollingWindows) }},
	{"PORTFOLIO_URL", func(c *Config, v string) error { c.Portfolio.BaseURL = v; return nil }},
	{"PORTFOLIO_TIMEOUT", func(c *Config, v string) error { return parseDuration(v, &c.Portfolio.Timeout) }},
	{"CACHE_BACKEND", func(c *Config, v string) error { c.Cache.Backend = v; return nil }},
	{"REDIS_ADDR", func(c *Config, v string) error { c.Cache.RedisAddr = v; return nil }},
	{"CACHE_TTL", func(c *Config, v string) error { return parseDuration(v, &c.Cache.TTL) }},
	{"SERVER_ADDR", func(c *Config, v string) error { c.Server.Addr = v; return nil }},
	{"LOG_LEVEL", func(c *Config, v string) error { c.Log.Level = v; return nil }},
	{"LOG_FORMAT", func(c *Config, v string) error { c.Log.Format = v; return nil }},
	{"METRICS_NAMESPACE", func(c *Config, v string) error { c.Metrics.Namespace = v; return nil }},
}

// ApplyEnv applies VALIDATOR_* overrides using lookup (os.LookupEnv in
// production). Empty values are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	for _, o := range envOverrides {
		v, ok := lookup(EnvPrefix + o.name)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(c, v); err != nil {
			return fmt.Errorf("failed to parse %s%s: %w", EnvPrefix, o.name, err)
		}
	}
	return nil
}

func parseFloat(v string, dst *float64) error {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return err
	}
	*dst = f
	return nil
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseDuration(v string, dst *time.Duration) error {
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}
