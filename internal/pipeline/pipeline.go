// Package pipeline runs a full validation: evaluation, walk-forward
// judgment, portfolio metrics, recommendation and report output.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/cache"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/evaluation"
	"strategy-validator/internal/idhash"
	"strategy-validator/internal/ingest"
	"strategy-validator/internal/observability"
	"strategy-validator/internal/portfolio"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/reporting"
	"strategy-validator/internal/walkforward"
)

// Options configures a Pipeline.
type Options struct {
	Params  analysis.Params
	Workers int

	// TrainRatio enables the single walk-forward split when in (0, 1).
	TrainRatio float64
	// RollingWindows enables rolling walk-forward when it has a schedule.
	RollingWindows int
	// WalkForwardScore overrides the judged score fed to the evaluator.
	WalkForwardScore *float64
}

// Pipeline orchestrates evaluation and report generation.
type Pipeline struct {
	opts      Options
	cache     cache.Cache
	provider  portfolio.Provider
	reportGen *reporting.Generator
	logger    zerolog.Logger
	clock     func() time.Time
	outputDir string
}

// New creates a pipeline with no cache, no portfolio provider and no
// output directory.
func New(opts Options) *Pipeline {
	return &Pipeline{
		opts:      opts,
		cache:     cache.Noop{},
		reportGen: reporting.NewGenerator(),
		logger:    zerolog.Nop(),
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithCache sets the report cache.
func (p *Pipeline) WithCache(c cache.Cache) *Pipeline {
	if c != nil {
		p.cache = c
	}
	return p
}

// WithProvider sets the portfolio metrics provider.
func (p *Pipeline) WithProvider(provider portfolio.Provider) *Pipeline {
	p.provider = provider
	return p
}

// WithLogger sets the logger.
func (p *Pipeline) WithLogger(logger zerolog.Logger) *Pipeline {
	p.logger = logger
	return p
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithOutputDir makes Run write every report format into dir.
func (p *Pipeline) WithOutputDir(dir string) *Pipeline {
	p.outputDir = dir
	return p
}

// RunFile reads a trade table from path and runs the pipeline on it.
func (p *Pipeline) RunFile(ctx context.Context, path, format string) (*reporting.Report, error) {
	tt, err := ingest.ReadFile(path, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load trades: %w", err)
	}
	return p.run(ctx, tt, path)
}

// Run validates tt and returns the assembled report.
func (p *Pipeline) Run(ctx context.Context, tt *domain.TradeTable) (*reporting.Report, error) {
	return p.run(ctx, tt, "")
}

func (p *Pipeline) run(ctx context.Context, tt *domain.TradeTable, inputPath string) (report *reporting.Report, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		observability.RecordPipelineRun(status, time.Since(start))
	}()

	// 1. Walk-forward first: its score feeds the evaluator.
	var wf *walkforward.Result
	wfScore := p.opts.WalkForwardScore
	if p.opts.TrainRatio > 0 {
		wf, err = JudgeWalkForward(tt, p.opts.TrainRatio)
		if err != nil {
			return nil, err
		}
		if wfScore == nil {
			s := float64(wf.Score)
			wfScore = &s
		}
	}

	// 2. Rolling walk-forward.
	var rolling *walkforward.RollingResult
	if p.opts.RollingWindows > 0 {
		rolling, err = RollingWalkForward(tt, p.opts.RollingWindows)
		if err != nil {
			return nil, err
		}
	}

	// 3. Evaluation, served from cache when possible.
	ev, err := p.evaluate(ctx, tt, wfScore)
	if err != nil {
		return nil, err
	}

	// 4. Portfolio metrics.
	var pm *portfolio.Metrics
	if p.provider != nil {
		pm = portfolio.Fetch(ctx, p.provider, tt)
		if !pm.Available() {
			p.logger.Warn().Str("provider", p.provider.Name()).Str("error", pm.Error).Msg("portfolio metrics unavailable")
		}
	}

	// 5. Recommendation.
	winRate, totalReturn := recommend.BaseStats(tt)
	rec := recommend.Decide(recommend.Input{
		WinRate:          winRate,
		TotalReturn:      totalReturn,
		Decision:         ev.Disqualification.Decision,
		WalkForwardScore: wfScore,
		Sharpe:           pm.SharpeOrNil(),
	})

	// 6. Report.
	suff := CheckSufficiency(tt, p.opts.TrainRatio, p.opts.RollingWindows)
	report, err = p.reportGen.Generate(reporting.Inputs{
		Evaluation:     ev,
		WalkForward:    wf,
		Rolling:        rolling,
		Portfolio:      pm,
		Recommendation: rec,
		DataQuality:    convertToDataQuality(suff, ev.Metadata.FailedCategories),
		WinRate:        winRate,
		TotalReturn:    totalReturn,
		Seed:           p.opts.Params.Seed,
		InputPath:      inputPath,
	})
	if err != nil {
		return nil, err
	}

	if p.outputDir != "" {
		paths, err := reporting.Write(p.outputDir, report)
		if err != nil {
			return nil, err
		}
		p.logger.Info().Strs("files", paths).Msg("reports written")
	}

	p.logger.Info().
		Str("run_id", report.Reproducibility.RunID).
		Str("decision", report.ExecutiveSummary.Decision).
		Str("recommendation", report.ExecutiveSummary.Recommendation).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline complete")
	return report, nil
}

// Evaluate runs the comprehensive evaluator, reading and filling the cache.
// Cache failures are logged and never fail the evaluation.
func (p *Pipeline) Evaluate(ctx context.Context, tt *domain.TradeTable, wfScore *float64) (*evaluation.Report, error) {
	return p.evaluate(ctx, tt, wfScore)
}

func (p *Pipeline) evaluate(ctx context.Context, tt *domain.TradeTable, wfScore *float64) (*evaluation.Report, error) {
	hash := tt.ContentHash()
	key := cache.Key{
		TableHash:   hash,
		Fingerprint: idhash.ComputeCacheKey(hash, p.opts.Params, wfScore),
	}

	if data, found, err := p.cache.Get(ctx, key); err != nil {
		p.logger.Warn().Err(err).Str("backend", p.cache.Backend()).Msg("cache read failed")
	} else if found {
		var cached evaluation.Report
		if err := json.Unmarshal(data, &cached); err == nil {
			p.logger.Debug().Str("cache_key", key.Fingerprint).Msg("evaluation served from cache")
			return &cached, nil
		}
		p.logger.Warn().Str("cache_key", key.Fingerprint).Msg("discarding undecodable cache entry")
	}

	logger := p.logger
	e := evaluation.New(tt, evaluation.Options{
		Params:           p.opts.Params,
		Workers:          p.opts.Workers,
		WalkForwardScore: wfScore,
		Logger:           &logger,
	}).WithClock(p.clock)

	ev, err := e.Report(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ev)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to encode report for cache")
		return ev, nil
	}
	if err := p.cache.Set(ctx, key, data); err != nil {
		p.logger.Warn().Err(err).Str("backend", p.cache.Backend()).Msg("cache write failed")
	}
	return ev, nil
}

// InvalidateTable drops every cached report computed from tableHash.
func (p *Pipeline) InvalidateTable(ctx context.Context, tableHash string) (int, error) {
	return p.cache.Invalidate(ctx, tableHash)
}

// JudgeWalkForward runs a single walk-forward judgment and records it.
func JudgeWalkForward(tt *domain.TradeTable, trainRatio float64) (*walkforward.Result, error) {
	res, err := walkforward.Judge(tt, trainRatio)
	if err != nil {
		return nil, fmt.Errorf("walk-forward: %w", err)
	}
	observability.RecordWalkForward("single", res.Judgment, float64(res.Score))
	return res, nil
}

// RollingWalkForward runs a rolling walk-forward and records it.
func RollingWalkForward(tt *domain.TradeTable, windows int) (*walkforward.RollingResult, error) {
	res, err := walkforward.Rolling(tt, windows)
	if err != nil {
		return nil, fmt.Errorf("rolling walk-forward: %w", err)
	}
	observability.RecordWalkForward("rolling", res.Judgment, res.AvgScore)
	return res, nil
}
