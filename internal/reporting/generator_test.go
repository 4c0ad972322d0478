package reporting

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain/domaintest"
	"strategy-validator/internal/evaluation"
	"strategy-validator/internal/portfolio"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/walkforward"
)

var fixedTime = time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

func f(v float64) *float64 { return &v }

func testInputs(t *testing.T) Inputs {
	t.Helper()
	tt := domaintest.Table(t, domaintest.Repeat(20, 3, -1, 2)...)

	wf, err := walkforward.Judge(tt, walkforward.DefaultTrainRatio)
	require.NoError(t, err)
	rolling, err := walkforward.Rolling(tt, 3)
	require.NoError(t, err)

	scores := make(map[string]float64, len(decision.ScoreCategories))
	for i, c := range decision.ScoreCategories {
		scores[c] = float64(50 + i*5)
	}
	ev := &evaluation.Report{
		Metadata: evaluation.Metadata{
			RunID:       "run-1",
			CacheKey:    "key-1",
			TableHash:   "hash-1",
			StartDate:   domaintest.Epoch,
			EndDate:     domaintest.Epoch.Add(30 * 24 * time.Hour),
			TotalTrades: tt.Len(),
		},
		Disqualification: &decision.Verdict{
			Decision:    decision.DecisionGO,
			Tier:        decision.AllClear,
			TotalTrades: tt.Len(),
			Reasons:     []string{},
		},
		FinalScore: &decision.FinalScore{
			Scores:     scores,
			FinalScore: 67.5,
			Rating:     decision.RatingGood,
			Neutral:    []string{decision.CategoryWalkForward},
		},
	}

	winRate, total := recommend.BaseStats(tt)
	wfScore := float64(wf.Score)
	return Inputs{
		Evaluation:  ev,
		WalkForward: wf,
		Rolling:     rolling,
		Portfolio:   &portfolio.Metrics{Sharpe: f(1.3), CAGR: f(0.4)},
		Recommendation: recommend.Decide(recommend.Input{
			WinRate:          winRate,
			TotalReturn:      total,
			Decision:         decision.DecisionGO,
			WalkForwardScore: &wfScore,
			Sharpe:           f(1.3),
		}),
		WinRate:     winRate,
		TotalReturn: total,
		Seed:        42,
		InputPath:   "trades.csv",
	}
}

func TestGenerate_WithClock(t *testing.T) {
	r, err := NewGenerator().WithClock(func() time.Time { return fixedTime }).Generate(testInputs(t))
	require.NoError(t, err)
	assert.True(t, r.GeneratedAt.Equal(fixedTime))
}

func TestGenerate_Summary(t *testing.T) {
	in := testInputs(t)
	r, err := NewGenerator().Generate(in)
	require.NoError(t, err)

	s := r.ExecutiveSummary
	assert.Equal(t, 60, s.TotalTrades)
	assert.Equal(t, "GO", s.Decision)
	assert.Equal(t, string(decision.AllClear), s.Tier)
	assert.InDelta(t, 67.5, s.FinalScore, 1e-9)
	require.NotNil(t, s.WalkForwardScore)
	assert.InDelta(t, float64(in.WalkForward.Score), *s.WalkForwardScore, 1e-9)
	assert.Equal(t, string(in.Recommendation.Outcome), s.Recommendation)
	assert.NotNil(t, s.FailedCategories)

	assert.Equal(t, "run-1", r.Reproducibility.RunID)
	assert.Equal(t, uint64(42), r.Reproducibility.Seed)
	assert.Equal(t, "validator evaluate --input trades.csv --train-ratio 0.7 --rolling-windows 3", r.Reproducibility.ReplayCommand)
}

func TestGenerate_NilEvaluation(t *testing.T) {
	_, err := NewGenerator().Generate(Inputs{})
	assert.ErrorIs(t, err, decision.ErrNilInput)
}

func TestGenerate_OptionalStagesAbsent(t *testing.T) {
	in := testInputs(t)
	in.WalkForward, in.Rolling, in.Portfolio, in.Recommendation = nil, nil, nil, nil

	r, err := NewGenerator().Generate(in)
	require.NoError(t, err)
	assert.Nil(t, r.ExecutiveSummary.WalkForwardScore)
	assert.Empty(t, r.ExecutiveSummary.Recommendation)

	md := RenderMarkdown(r)
	assert.NotContains(t, md, "## Walk-Forward")
	assert.NotContains(t, md, "## Recommendation")
	assert.Contains(t, md, "| Walk-Forward Score | n/a |")
}

func TestRenderMarkdown_ContainsRequiredSections(t *testing.T) {
	r, err := NewGenerator().WithClock(func() time.Time { return fixedTime }).Generate(testInputs(t))
	require.NoError(t, err)

	md := RenderMarkdown(r)
	for _, section := range []string{
		"# Strategy Validation Report",
		"## Executive Summary",
		"## Data Quality",
		"## Category Scores",
		"## Walk-Forward",
		"## Rolling Walk-Forward",
		"## Portfolio Metrics",
		"## Recommendation",
		"## Reproducibility",
	} {
		assert.Contains(t, md, section)
	}
	assert.Contains(t, md, "2024-06-15T10:30:00Z")
	assert.Contains(t, md, "| walk_forward | 55.0 | neutral |")
}

func TestRenderMarkdown_PortfolioUnavailable(t *testing.T) {
	in := testInputs(t)
	in.Portfolio = &portfolio.Metrics{Error: "portfolio metrics unavailable"}
	r, err := NewGenerator().Generate(in)
	require.NoError(t, err)
	assert.Contains(t, RenderMarkdown(r), "Unavailable: portfolio metrics unavailable")
}

func TestRenderCSV(t *testing.T) {
	r, err := NewGenerator().Generate(testInputs(t))
	require.NoError(t, err)

	scores := strings.Split(strings.TrimSpace(RenderScoresCSV(r)), "\n")
	require.Len(t, scores, 1+len(decision.ScoreCategories)+1)
	assert.Equal(t, "category,score,neutral", scores[0])
	assert.Equal(t, "backtest_performance,50.0000,false", scores[1])
	assert.Equal(t, "final,67.5000,false", scores[len(scores)-1])

	windows := strings.Split(strings.TrimSpace(RenderWindowsCSV(r)), "\n")
	require.Len(t, windows, 1+1+3)
	assert.True(t, strings.HasPrefix(windows[1], "0,1-42,43-60,42,18,"))
}

func TestWrite(t *testing.T) {
	r, err := NewGenerator().WithClock(func() time.Time { return fixedTime }).Generate(testInputs(t))
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	paths, err := Write(dir, r)
	require.NoError(t, err)
	assert.Len(t, paths, 5)

	for _, name := range []string{FileJSON, FileMarkdown, FileDecisionGate, FileScoresCSV, FileWindowsCSV} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, FileJSON))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "executive_summary")
	assert.Contains(t, decoded, "walk_forward")

	gate, err := os.ReadFile(filepath.Join(dir, FileDecisionGate))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(gate), "# Decision Gate Report"))
}
