package evaluation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/domain/domaintest"
)

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func healthyTable(t *testing.T) *domain.TradeTable {
	t.Helper()
	returns := domaintest.Repeat(20, 3, -1, 2)
	return domaintest.FromTrades(t, domaintest.TradesEvery(4*24*time.Hour, 6*time.Hour, returns...))
}

func newEvaluator(tt *domain.TradeTable) *Evaluator {
	return New(tt, Options{Params: analysis.DefaultParams()}).WithClock(func() time.Time { return fixedTime })
}

func TestEvaluator_StateTransitions(t *testing.T) {
	ctx := context.Background()
	e := newEvaluator(healthyTable(t))
	assert.Equal(t, StateNotRun, e.State())

	_, err := e.RunValidators(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateValidatorsRun, e.State())

	_, err = e.CheckDisqualification(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateDisqualificationChecked, e.State())

	_, err = e.Score(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateScored, e.State())

	_, err = e.Report(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateReported, e.State())
	assert.Equal(t, "REPORTED", e.State().String())
}

func TestEvaluator_ReportAutoRunsSteps(t *testing.T) {
	report, err := newEvaluator(healthyTable(t)).Report(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 60, report.Metadata.TotalTrades)
	assert.Equal(t, fixedTime, report.Metadata.GeneratedAt)
	assert.Empty(t, report.Metadata.FailedCategories)
	assert.NotEmpty(t, report.Metadata.RunID)
	require.NotNil(t, report.Disqualification)
	require.NotNil(t, report.FinalScore)

	v := report.Validators
	assert.NotNil(t, v.Timeseries)
	assert.NotNil(t, v.Statistics)
	assert.NotNil(t, v.TradeAnalysis)
	assert.NotNil(t, v.ExtremeScenario)
	assert.NotNil(t, v.PositionSizing)
	assert.NotNil(t, v.AdvancedStats)

	// Walk-forward was not supplied, so it scores neutral.
	assert.Equal(t, decision.NeutralScore, report.FinalScore.Scores[decision.CategoryWalkForward])
}

func TestEvaluator_Idempotent(t *testing.T) {
	ctx := context.Background()
	tt := healthyTable(t)

	encode := func(r *Report) []byte {
		b, err := json.Marshal(r)
		require.NoError(t, err)
		return b
	}

	e := newEvaluator(tt)
	first, err := e.Report(ctx)
	require.NoError(t, err)
	firstJSON := encode(first)

	second, err := e.Report(ctx)
	require.NoError(t, err)
	_, err = e.RunValidators(ctx)
	require.NoError(t, err)
	third, err := e.Report(ctx)
	require.NoError(t, err)
	other, err := newEvaluator(tt).Report(ctx)
	require.NoError(t, err)

	assert.True(t, bytes.Equal(firstJSON, encode(second)))
	assert.True(t, bytes.Equal(firstJSON, encode(third)))
	assert.True(t, bytes.Equal(firstJSON, encode(other)))
}

func TestEvaluator_AnalyzerPanicIsIsolated(t *testing.T) {
	e := newEvaluator(healthyTable(t))
	for i := range e.groups {
		if e.groups[i].category == analysis.CategoryAdvancedStats {
			e.groups[i].run = func(*domain.TradeTable, *decision.Results) error { panic("boom") }
		}
		if e.groups[i].category == analysis.CategoryStatistics {
			e.groups[i].run = func(*domain.TradeTable, *decision.Results) error { return errors.New("bad input") }
		}
	}

	report, err := e.Report(context.Background())
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{analysis.CategoryStatistics, analysis.CategoryAdvancedStats}, report.Metadata.FailedCategories)
	assert.Nil(t, report.Validators.AdvancedStats)
	assert.Nil(t, report.Validators.Statistics)
	assert.NotNil(t, report.Validators.Timeseries)
	assert.Contains(t, report.FinalScore.Neutral, decision.CategoryAdvanced)
	assert.Contains(t, report.FinalScore.Neutral, decision.CategoryConfidence)

	failures := e.Failures()
	require.Len(t, failures, 2)
	var panicked bool
	for _, f := range failures {
		if errors.Is(f, ErrAnalyzerPanic) {
			panicked = true
		}
	}
	assert.True(t, panicked)

	assert.Equal(t, decision.NeutralScore, report.FinalScore.Scores[decision.CategoryConfidence])

	b, err := json.Marshal(report)
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"advanced_stats"`)
	assert.Contains(t, string(b), `"timeseries"`)
}

func TestEvaluator_EmptyTable(t *testing.T) {
	empty, err := domain.NewTradeTable(nil)
	require.NoError(t, err)

	report, err := newEvaluator(empty).Report(context.Background())
	require.NoError(t, err)

	assert.Len(t, report.Metadata.FailedCategories, len(analysis.Categories))
	assert.Equal(t, decision.DecisionNOGO, report.Disqualification.Decision)
	assert.Equal(t, decision.Tier1, report.Disqualification.Tier)
}

func TestEvaluator_Tier1ShortHistory(t *testing.T) {
	tt := domaintest.Table(t, domaintest.Repeat(10, 3, -1, 2)...)
	verdict, err := newEvaluator(tt).CheckDisqualification(context.Background())
	require.NoError(t, err)

	assert.Equal(t, decision.Tier1, verdict.Tier)
	assert.Equal(t, decision.DecisionNOGO, verdict.Decision)
}

func TestEvaluator_WalkForwardScoreSupplied(t *testing.T) {
	wf := 85.0
	logger := zerolog.Nop()
	e := New(healthyTable(t), Options{
		Params:           analysis.DefaultParams(),
		Workers:          2,
		WalkForwardScore: &wf,
		Logger:           &logger,
	})

	score, err := e.Score(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85.0, score.Scores[decision.CategoryWalkForward])
}

func TestEvaluator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newEvaluator(healthyTable(t)).Report(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
