package portfolio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// Default configuration values.
const (
	DefaultTimeout     = 10 * time.Second
	DefaultMaxRetries  = 2
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultMaxDelay    = 5 * time.Second
	DefaultBackoffMult = 2.0
	DefaultRPS         = 5.0
	DefaultBurst       = 1

	metricsPath = "/v1/metrics"
)

// BreakerSettings configures the circuit breaker around the remote service.
type BreakerSettings struct {
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
	MinRequests         uint32
	FailureRatio        float64
}

// DefaultBreakerSettings trips after 3 consecutive failures, or a failure
// ratio above 5% once 20 requests were seen in the interval.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Interval:            60 * time.Second,
		Timeout:             60 * time.Second,
		ConsecutiveFailures: 3,
		MinRequests:         20,
		FailureRatio:        0.05,
	}
}

// HTTPProvider posts daily returns to an external metrics service.
type HTTPProvider struct {
	baseURL     string
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	maxDelay    time.Duration
	backoffMult float64
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker
	logger      zerolog.Logger
}

// HTTPOption configures HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		p.client.Timeout = d
	}
}

// WithMaxRetries sets maximum retry attempts.
func WithMaxRetries(n int) HTTPOption {
	return func(p *HTTPProvider) {
		p.maxRetries = n
	}
}

// WithRetryDelay sets the initial retry delay.
func WithRetryDelay(d time.Duration) HTTPOption {
	return func(p *HTTPProvider) {
		p.retryDelay = d
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.client = client
	}
}

// WithRateLimit sets the outbound request rate.
func WithRateLimit(rps float64, burst int) HTTPOption {
	return func(p *HTTPProvider) {
		p.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker replaces the circuit breaker settings.
func WithBreaker(s BreakerSettings) HTTPOption {
	return func(p *HTTPProvider) {
		p.breaker = newBreaker(s, &p.logger)
	}
}

// WithLogger sets the logger used for breaker state changes.
func WithLogger(l zerolog.Logger) HTTPOption {
	return func(p *HTTPProvider) {
		p.logger = l
	}
}

// NewHTTPProvider creates a provider for the service at baseURL.
func NewHTTPProvider(baseURL string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: DefaultTimeout},
		maxRetries:  DefaultMaxRetries,
		retryDelay:  DefaultRetryDelay,
		maxDelay:    DefaultMaxDelay,
		backoffMult: DefaultBackoffMult,
		limiter:     rate.NewLimiter(rate.Limit(DefaultRPS), DefaultBurst),
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.breaker == nil {
		p.breaker = newBreaker(DefaultBreakerSettings(), &p.logger)
	}
	return p
}

func newBreaker(s BreakerSettings, logger *zerolog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "portfolio",
		Interval: s.Interval,
		Timeout:  s.Timeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			if c.ConsecutiveFailures >= s.ConsecutiveFailures {
				return true
			}
			if c.Requests < s.MinRequests {
				return false
			}
			return float64(c.TotalFailures)/float64(c.Requests) > s.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		},
	})
}

// Name implements Provider.
func (p *HTTPProvider) Name() string { return "http" }

type dailyPayload struct {
	Date   string  `json:"date"`
	Return float64 `json:"return"`
}

type metricsRequest struct {
	Returns []dailyPayload `json:"returns"`
}

// Metrics implements Provider.
func (p *HTTPProvider) Metrics(ctx context.Context, daily []DailyReturn) (*Metrics, error) {
	if len(daily) == 0 {
		return nil, ErrNoReturns
	}

	req := metricsRequest{Returns: make([]dailyPayload, len(daily))}
	for i, d := range daily {
		req.Returns[i] = dailyPayload{Date: d.Date.Format(dateLayout), Return: d.Return}
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	out, err := p.breaker.Execute(func() (interface{}, error) {
		return p.call(ctx, body)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	m := out.(*Metrics)
	if m.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnavailable, m.Error)
	}
	return m, nil
}

// call performs the POST with retries and exponential backoff.
func (p *HTTPProvider) call(ctx context.Context, body []byte) (*Metrics, error) {
	delay := p.retryDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay = time.Duration(float64(delay) * p.backoffMult)
			if delay > p.maxDelay {
				delay = p.maxDelay
			}
		}

		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+metricsPath, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("http request: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			lastErr = fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			// Client errors are not retried.
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
		}

		var m Metrics
		if err := json.Unmarshal(respBody, &m); err != nil {
			return nil, fmt.Errorf("unmarshal response: %w", err)
		}
		return &m, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
