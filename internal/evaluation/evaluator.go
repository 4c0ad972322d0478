// Package evaluation runs the analyzer battery over a trade table, applies
// the disqualification gate and composite score, and assembles the report.
package evaluation

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/analysis/advanced"
	"strategy-validator/internal/analysis/extreme"
	"strategy-validator/internal/analysis/sizing"
	"strategy-validator/internal/analysis/statistics"
	"strategy-validator/internal/analysis/timeseries"
	"strategy-validator/internal/analysis/trades"
	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/idhash"
	"strategy-validator/internal/observability"
)

// Options for creating an Evaluator.
type Options struct {
	Params analysis.Params

	// Workers bounds concurrent analyzer groups. Zero or less means one per category.
	Workers int

	// WalkForwardScore is the externally supplied walk-forward category
	// score. Nil scores the category neutral.
	WalkForwardScore *float64

	// Logger receives analyzer failures and step transitions. Nil disables logging.
	Logger *zerolog.Logger
}

// Evaluator runs one evaluation over an immutable trade table.
// Its steps are idempotent and safe for concurrent use.
type Evaluator struct {
	table   *domain.TradeTable
	params  analysis.Params
	workers int
	wf      *float64
	logger  zerolog.Logger
	clock   func() time.Time
	groups  []group

	mu       sync.Mutex
	state    State
	results  decision.Results
	failures []*AnalysisError
	verdict  *decision.Verdict
	score    *decision.FinalScore
}

// New creates an Evaluator.
func New(tt *domain.TradeTable, opts Options) *Evaluator {
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = len(analysis.Categories)
	}
	return &Evaluator{
		table:   tt,
		params:  opts.Params,
		workers: workers,
		wf:      opts.WalkForwardScore,
		logger:  logger,
		clock:   time.Now,
		groups:  analyzerGroups(opts.Params),
	}
}

// WithClock sets a custom clock function for deterministic report timestamps.
func (e *Evaluator) WithClock(clock func() time.Time) *Evaluator {
	e.clock = clock
	return e
}

// State returns the furthest completed step.
func (e *Evaluator) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// TotalDays is the calendar span used by the gate: Params.TotalDays when
// set, otherwise the table span.
func (e *Evaluator) TotalDays() int {
	if e.params.TotalDays > 0 {
		return e.params.TotalDays
	}
	return e.table.TotalDays()
}

type group struct {
	category string
	run      func(*domain.TradeTable, *decision.Results) error
}

func analyzerGroups(p analysis.Params) []group {
	return []group{
		{analysis.CategoryTimeSeries, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.Timeseries, err = timeseries.New(p).Analyze(tt)
			return err
		}},
		{analysis.CategoryStatistics, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.Statistics, err = statistics.New(p).Analyze(tt)
			return err
		}},
		{analysis.CategoryTradeAnalysis, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.TradeAnalysis, err = trades.New(p).Analyze(tt)
			return err
		}},
		{analysis.CategoryExtremeScenario, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.ExtremeScenario, err = extreme.New(p).Analyze(tt)
			return err
		}},
		{analysis.CategoryPositionSizing, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.PositionSizing, err = sizing.New(p).Analyze(tt)
			return err
		}},
		{analysis.CategoryAdvancedStats, func(tt *domain.TradeTable, r *decision.Results) (err error) {
			r.AdvancedStats, err = advanced.New(p).Analyze(tt)
			return err
		}},
	}
}

// RunValidators runs the six analyzer groups concurrently. A group that
// errors or panics is recorded as an AnalysisError and left empty; only
// context cancellation is returned as an error.
func (e *Evaluator) RunValidators(ctx context.Context) (decision.Results, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.runValidators(ctx); err != nil {
		return decision.Results{}, err
	}
	return e.results, nil
}

func (e *Evaluator) runValidators(ctx context.Context) error {
	groups := e.groups
	partial := make([]decision.Results, len(groups))
	failures := make([]*AnalysisError, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, grp := range groups {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			err := safeRun(grp, e.table, &partial[i])
			observability.RecordAnalyzer(grp.category, time.Since(start), err)
			if err != nil {
				failures[i] = &AnalysisError{Category: grp.category, Err: err}
				e.logger.Warn().Err(err).Str("category", grp.category).Msg("analyzer failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("run validators: %w", err)
	}

	var merged decision.Results
	for i := range partial {
		mergeResults(&merged, partial[i])
	}
	sanitizeFloats(&merged)

	e.results = merged
	e.failures = e.failures[:0]
	for _, f := range failures {
		if f != nil {
			e.failures = append(e.failures, f)
		}
	}
	e.verdict, e.score = nil, nil
	e.state = StateValidatorsRun
	e.logger.Debug().Int("trades", e.table.Len()).Int("failed", len(e.failures)).Msg("validators run")
	return nil
}

func safeRun(grp group, tt *domain.TradeTable, out *decision.Results) (err error) {
	defer func() {
		if r := recover(); r != nil {
			*out = decision.Results{}
			err = fmt.Errorf("%w: %v\n%s", ErrAnalyzerPanic, r, debug.Stack())
		}
	}()
	if err := grp.run(tt, out); err != nil {
		*out = decision.Results{}
		return err
	}
	return nil
}

func mergeResults(dst *decision.Results, src decision.Results) {
	if src.Timeseries != nil {
		dst.Timeseries = src.Timeseries
	}
	if src.Statistics != nil {
		dst.Statistics = src.Statistics
	}
	if src.TradeAnalysis != nil {
		dst.TradeAnalysis = src.TradeAnalysis
	}
	if src.ExtremeScenario != nil {
		dst.ExtremeScenario = src.ExtremeScenario
	}
	if src.PositionSizing != nil {
		dst.PositionSizing = src.PositionSizing
	}
	if src.AdvancedStats != nil {
		dst.AdvancedStats = src.AdvancedStats
	}
}

// Failures returns the analyzer failures of the last validator run.
func (e *Evaluator) Failures() []*AnalysisError {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]*AnalysisError(nil), e.failures...)
}

// CheckDisqualification applies the three-tier gate, running the
// validators first when they have not run.
func (e *Evaluator) CheckDisqualification(ctx context.Context) (*decision.Verdict, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkDisqualification(ctx); err != nil {
		return nil, err
	}
	return e.verdict, nil
}

func (e *Evaluator) checkDisqualification(ctx context.Context) error {
	if e.state < StateValidatorsRun {
		if err := e.runValidators(ctx); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	input, err := decision.NewBuilder(e.params.InitialCapital).BuildGate(e.table, e.TotalDays(), e.results)
	if err != nil {
		return fmt.Errorf("build gate input: %w", err)
	}
	verdict, err := decision.NewGate().Evaluate(*input)
	if err != nil {
		return fmt.Errorf("evaluate gate: %w", err)
	}
	sanitizeFloats(verdict)

	e.verdict = verdict
	e.state = max(e.state, StateDisqualificationChecked)
	e.logger.Debug().Str("decision", string(verdict.Decision)).Str("tier", string(verdict.Tier)).Msg("disqualification checked")
	return nil
}

// Score computes the eight-category composite score, running earlier steps
// when needed.
func (e *Evaluator) Score(ctx context.Context) (*decision.FinalScore, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.computeScore(ctx); err != nil {
		return nil, err
	}
	return e.score, nil
}

func (e *Evaluator) computeScore(ctx context.Context) error {
	if e.state < StateDisqualificationChecked || e.verdict == nil {
		if err := e.checkDisqualification(ctx); err != nil {
			return err
		}
	}
	input := decision.NewBuilder(e.params.InitialCapital).BuildScore(e.table, e.results, e.wf)
	score := decision.NewScorer().Score(input)
	sanitizeFloats(score)

	e.score = score
	e.state = max(e.state, StateScored)
	return nil
}

// Report assembles the full report, running any step that has not run.
func (e *Evaluator) Report(ctx context.Context) (*Report, error) {
	start := time.Now()
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state < StateScored || e.score == nil {
		if err := e.computeScore(ctx); err != nil {
			return nil, err
		}
	}

	report := e.buildReport()
	e.state = StateReported
	observability.RecordEvaluation(string(e.verdict.Decision), e.table.Len(), e.score.FinalScore, time.Since(start))
	e.logger.Info().
		Str("run_id", report.Metadata.RunID).
		Str("decision", string(e.verdict.Decision)).
		Float64("final_score", e.score.FinalScore).
		Strs("failed_categories", report.Metadata.FailedCategories).
		Msg("evaluation reported")
	return report, nil
}

func (e *Evaluator) buildReport() *Report {
	key := idhash.ComputeCacheKey(e.table.ContentHash(), e.params, e.wf)
	start, end := e.table.Span()

	failed := make([]string, 0, len(e.failures))
	for _, f := range e.failures {
		failed = append(failed, f.Category)
	}

	return &Report{
		Metadata: Metadata{
			RunID:            idhash.ComputeRunID(key),
			CacheKey:         key,
			TableHash:        e.table.ContentHash(),
			StartDate:        start.UTC(),
			EndDate:          end.UTC(),
			TotalTrades:      e.table.Len(),
			TradingDays:      e.table.TradingDays(),
			TotalDays:        e.TotalDays(),
			InitialCapital:   e.params.InitialCapital,
			GeneratedAt:      e.clock().UTC(),
			FailedCategories: failed,
		},
		Disqualification: e.verdict,
		FinalScore:       e.score,
		Validators:       e.results,
	}
}
