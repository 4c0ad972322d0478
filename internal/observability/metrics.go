// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Evaluation metrics
	EvaluationsTotal   *prometheus.CounterVec
	EvaluationDuration prometheus.Histogram
	AnalyzerDuration   *prometheus.HistogramVec
	AnalyzerFailures   *prometheus.CounterVec
	TradesEvaluated    prometheus.Counter
	FinalScore         prometheus.Histogram

	// Walk-forward metrics
	WalkForwardRuns  *prometheus.CounterVec
	WalkForwardScore prometheus.Histogram

	// Cache metrics
	CacheRequests *prometheus.CounterVec

	// Portfolio provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	ReportsGenerated  *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Health metrics
	LastSuccessfulEvaluation prometheus.Gauge
	UptimeSeconds            prometheus.Counter
}

var scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// NewMetrics creates a new Metrics instance with all metrics registered
// on the given registerer (the default registry when nil).
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "strategy_validator"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		// Evaluation metrics
		EvaluationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "runs_total",
			Help:      "Total number of evaluations by decision",
		}, []string{"decision"}),
		EvaluationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "duration_seconds",
			Help:      "Evaluation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		AnalyzerDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "analyzer_duration_seconds",
			Help:      "Analyzer group duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"category"}),
		AnalyzerFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "analyzer_failures_total",
			Help:      "Total number of analyzer group failures by category",
		}, []string{"category"}),
		TradesEvaluated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "trades_total",
			Help:      "Total number of trades evaluated",
		}),
		FinalScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "evaluation",
			Name:      "final_score",
			Help:      "Distribution of composite final scores",
			Buckets:   scoreBuckets,
		}),

		// Walk-forward metrics
		WalkForwardRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "walkforward",
			Name:      "runs_total",
			Help:      "Total number of walk-forward judgments by mode and judgment",
		}, []string{"mode", "judgment"}),
		WalkForwardScore: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "walkforward",
			Name:      "score",
			Help:      "Distribution of walk-forward scores",
			Buckets:   scoreBuckets,
		}),

		// Cache metrics
		CacheRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Total number of report cache lookups by backend and result",
		}, []string{"backend", "result"}),

		// Portfolio provider metrics
		ProviderRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "requests_total",
			Help:      "Total number of portfolio metric requests by provider and status",
		}, []string{"provider", "status"}),
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "portfolio",
			Name:      "request_latency_seconds",
			Help:      "Portfolio metric request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"provider"}),

		// Pipeline metrics
		PipelineRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"status"}),
		PipelineDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		ReportsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of report files generated by format",
		}, []string{"format"}),

		// HTTP metrics
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by route and status code",
		}, []string{"route", "code"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),

		// Health metrics
		LastSuccessfulEvaluation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_evaluation_timestamp",
			Help:      "Unix timestamp of last successful evaluation",
		}),
		UptimeSeconds: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "uptime_seconds_total",
			Help:      "Total uptime in seconds",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

var gatherer prometheus.Gatherer = prometheus.DefaultGatherer

// Init replaces DefaultMetrics with metrics under namespace on a fresh
// registry that also carries the Go and process collectors. Call it once at
// startup, before serving requests.
func Init(namespace string) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	DefaultMetrics = NewMetrics(namespace, reg)
	gatherer = reg
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", nil)

// RecordEvaluation records a completed evaluation.
func RecordEvaluation(decision string, trades int, finalScore float64, d time.Duration) {
	DefaultMetrics.EvaluationsTotal.WithLabelValues(decision).Inc()
	DefaultMetrics.EvaluationDuration.Observe(d.Seconds())
	DefaultMetrics.TradesEvaluated.Add(float64(trades))
	DefaultMetrics.FinalScore.Observe(finalScore)
	DefaultMetrics.LastSuccessfulEvaluation.SetToCurrentTime()
}

// RecordAnalyzer records an analyzer group run.
func RecordAnalyzer(category string, d time.Duration, err error) {
	DefaultMetrics.AnalyzerDuration.WithLabelValues(category).Observe(d.Seconds())
	if err != nil {
		DefaultMetrics.AnalyzerFailures.WithLabelValues(category).Inc()
	}
}

// RecordWalkForward records a walk-forward judgment.
func RecordWalkForward(mode, judgment string, score float64) {
	DefaultMetrics.WalkForwardRuns.WithLabelValues(mode, judgment).Inc()
	DefaultMetrics.WalkForwardScore.Observe(score)
}

// RecordCache records a cache lookup. result is hit, miss or error.
func RecordCache(backend, result string) {
	DefaultMetrics.CacheRequests.WithLabelValues(backend, result).Inc()
}

// RecordProviderRequest records a portfolio metrics request.
func RecordProviderRequest(provider string, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	DefaultMetrics.ProviderRequests.WithLabelValues(provider, status).Inc()
	DefaultMetrics.ProviderLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(status string, d time.Duration) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(status).Inc()
	DefaultMetrics.PipelineDuration.Observe(d.Seconds())
}

// RecordReport records a generated report file.
func RecordReport(format string) {
	DefaultMetrics.ReportsGenerated.WithLabelValues(format).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route string, code int, d time.Duration) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, http.StatusText(code)).Inc()
	DefaultMetrics.HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}
