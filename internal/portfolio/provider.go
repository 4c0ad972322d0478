// Package portfolio computes portfolio-level metrics from daily returns,
// either locally or through an external metrics service.
package portfolio

import (
	"context"
	"errors"
	"time"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/observability"
)

var (
	// ErrNoReturns is returned when there are no daily returns to measure.
	ErrNoReturns = errors.New("no daily returns")

	// ErrUnavailable is returned when the provider cannot serve a request.
	ErrUnavailable = errors.New("portfolio metrics unavailable")
)

// Metrics are portfolio statistics over daily decimal returns.
// A nil field could not be computed. Error is set when the whole request
// failed; callers treat such a value as unavailable.
type Metrics struct {
	CAGR           *float64 `json:"cagr"`
	Sharpe         *float64 `json:"sharpe"`
	Sortino        *float64 `json:"sortino"`
	Calmar         *float64 `json:"calmar"`
	MaxDrawdown    *float64 `json:"max_drawdown"`
	Volatility     *float64 `json:"volatility"`
	VaR            *float64 `json:"var"`
	CVaR           *float64 `json:"cvar"`
	RiskOfRuin     *float64 `json:"risk_of_ruin"`
	UlcerIndex     *float64 `json:"ulcer_index"`
	GainPainRatio  *float64 `json:"gain_pain_ratio"`
	RecoveryFactor *float64 `json:"recovery_factor"`

	Error string `json:"error,omitempty"`
}

// Available reports whether the metrics can be used.
func (m *Metrics) Available() bool {
	return m != nil && m.Error == ""
}

// SharpeOrNil returns the Sharpe ratio, or nil when unavailable.
func (m *Metrics) SharpeOrNil() *float64 {
	if !m.Available() {
		return nil
	}
	return m.Sharpe
}

// Provider computes portfolio metrics from daily returns.
type Provider interface {
	Name() string
	Metrics(ctx context.Context, daily []DailyReturn) (*Metrics, error)
}

// Fetch aggregates the table into daily returns and asks p for metrics.
// Failures are folded into Metrics.Error so the caller can continue.
func Fetch(ctx context.Context, p Provider, tt *domain.TradeTable) *Metrics {
	daily := DailyReturns(tt)
	if len(daily) == 0 {
		return &Metrics{Error: ErrNoReturns.Error()}
	}

	start := time.Now()
	m, err := p.Metrics(ctx, daily)
	observability.RecordProviderRequest(p.Name(), time.Since(start), err)
	if err != nil {
		return &Metrics{Error: err.Error()}
	}
	return m
}
