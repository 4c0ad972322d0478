package verification

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain/domaintest"
	"strategy-validator/internal/evaluation"
	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/reporting"
)

var evaluationStub = evaluation.Report{
	FinalScore: &decision.FinalScore{
		Scores: map[string]float64{decision.CategoryBacktest: 40},
	},
}

func baseReport() *reporting.Report {
	wf := 70.0
	return &reporting.Report{
		ExecutiveSummary: reporting.ExecutiveSummary{
			TotalTrades:      60,
			WinRate:          66.67,
			TotalReturn:      80,
			Decision:         "GO",
			Tier:             "All Clear",
			FinalScore:       71.2,
			WalkForwardScore: &wf,
			Recommendation:   "PARTIAL",
		},
		Reproducibility: reporting.Reproducibility{RunID: "run", TableHash: "hash"},
	}
}

func TestCompareReports_Match(t *testing.T) {
	a, b := baseReport(), baseReport()
	b.GeneratedAt = time.Now()
	b.ExecutiveSummary.FinalScore += FloatTolerance / 2

	assert.Empty(t, CompareReports(a, b))
}

func TestCompareReports_Divergences(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *reporting.Report)
		field  string
	}{
		{"decision", func(r *reporting.Report) { r.ExecutiveSummary.Decision = "NO-GO" }, "Decision"},
		{"final score", func(r *reporting.Report) { r.ExecutiveSummary.FinalScore = 70 }, "FinalScore"},
		{"walk-forward missing", func(r *reporting.Report) { r.ExecutiveSummary.WalkForwardScore = nil }, "WalkForwardScore"},
		{"run id", func(r *reporting.Report) { r.Reproducibility.RunID = "other" }, "RunID"},
		{"category score", func(r *reporting.Report) {
			r.Evaluation = &evaluationStub
		}, "Score." + decision.CategoryBacktest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored, replayed := baseReport(), baseReport()
			tt.mutate(replayed)

			divs := CompareReports(stored, replayed)
			require.NotEmpty(t, divs)
			assert.Equal(t, tt.field, divs[0].Field)
		})
	}
}

func TestFloatPtrEquals(t *testing.T) {
	one, other := 1.0, 1.0+FloatTolerance*10
	assert.True(t, floatPtrEquals(nil, nil))
	assert.False(t, floatPtrEquals(&one, nil))
	assert.True(t, floatPtrEquals(&one, &one))
	assert.False(t, floatPtrEquals(&one, &other))
}

func TestReplayVerifier_VerifyFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "trades.csv")

	var sb strings.Builder
	sb.WriteString("id,entry_time,exit_time,return_pct\n")
	for i, r := range domaintest.Repeat(20, 3, -1, 2) {
		entry := domaintest.Epoch.Add(time.Duration(i) * 24 * time.Hour)
		sb.WriteString(fmt.Sprintf("%d,%s,%s,%g\n", i+1,
			entry.Format(time.RFC3339), entry.Add(6*time.Hour).Format(time.RFC3339), r))
	}
	require.NoError(t, os.WriteFile(input, []byte(sb.String()), 0644))

	params := analysis.DefaultParams()
	params.BootstrapIterations = 200
	opts := pipeline.Options{Params: params, TrainRatio: 0.7, RollingWindows: 3}

	out := filepath.Join(dir, "out")
	_, err := pipeline.New(opts).WithOutputDir(out).RunFile(context.Background(), input, "")
	require.NoError(t, err)
	reportPath := filepath.Join(out, reporting.FileJSON)

	res, err := NewReplayVerifier(pipeline.New(opts)).VerifyFile(context.Background(), input, "", reportPath)
	require.NoError(t, err)
	assert.True(t, res.Match, "divergences: %v", res.Divergences)

	opts.Params.Seed = 7
	res, err = NewReplayVerifier(pipeline.New(opts)).VerifyFile(context.Background(), input, "", reportPath)
	require.NoError(t, err)
	assert.False(t, res.Match)

	_, err = NewReplayVerifier(pipeline.New(opts)).VerifyFile(context.Background(), input, "", filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, ErrReportNotFound)
}
