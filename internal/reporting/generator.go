package reporting

import (
	"fmt"
	"slices"
	"time"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/evaluation"
	"strategy-validator/internal/portfolio"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/walkforward"
)

// GeneratorVersion is stamped into every report.
const GeneratorVersion = "1.0.0"

// Inputs are the stage results assembled into a Report. Only Evaluation is
// required.
type Inputs struct {
	Evaluation     *evaluation.Report
	WalkForward    *walkforward.Result
	Rolling        *walkforward.RollingResult
	Portfolio      *portfolio.Metrics
	Recommendation *recommend.Result
	DataQuality    DataQualitySection

	WinRate     float64 // percent
	TotalReturn float64 // percent
	Seed        uint64
	InputPath   string
}

// Generator assembles reports.
type Generator struct {
	now func() time.Time
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the report. It returns an error when in.Evaluation is nil.
func (g *Generator) Generate(in Inputs) (*Report, error) {
	if in.Evaluation == nil {
		return nil, fmt.Errorf("generate report: %w", decision.ErrNilInput)
	}

	r := &Report{
		GeneratedAt:    g.now(),
		Evaluation:     in.Evaluation,
		WalkForward:    in.WalkForward,
		Rolling:        in.Rolling,
		Portfolio:      in.Portfolio,
		Recommendation: in.Recommendation,
		DataQuality:    in.DataQuality,
	}
	if r.DataQuality.SufficiencyChecks == nil {
		r.DataQuality.SufficiencyChecks = []SufficiencyCheckRow{}
	}
	if r.DataQuality.IntegrityErrors == nil {
		r.DataQuality.IntegrityErrors = []string{}
	}
	r.ExecutiveSummary = summarize(in)
	r.Reproducibility = Reproducibility{
		GeneratorVersion: GeneratorVersion,
		RunID:            in.Evaluation.Metadata.RunID,
		CacheKey:         in.Evaluation.Metadata.CacheKey,
		TableHash:        in.Evaluation.Metadata.TableHash,
		Seed:             in.Seed,
		ReplayCommand:    replayCommand(in),
	}
	return r, nil
}

func summarize(in Inputs) ExecutiveSummary {
	ev := in.Evaluation
	s := ExecutiveSummary{
		TotalTrades:      ev.Metadata.TotalTrades,
		WinRate:          in.WinRate,
		TotalReturn:      in.TotalReturn,
		FailedCategories: slices.Clone(ev.Metadata.FailedCategories),
	}
	if s.FailedCategories == nil {
		s.FailedCategories = []string{}
	}
	if ev.Disqualification != nil {
		s.Decision = string(ev.Disqualification.Decision)
		s.Tier = string(ev.Disqualification.Tier)
	}
	if ev.FinalScore != nil {
		s.FinalScore = ev.FinalScore.FinalScore
		s.Rating = ev.FinalScore.Rating
	}
	if in.WalkForward != nil {
		score := float64(in.WalkForward.Score)
		s.WalkForwardScore = &score
	}
	if in.Recommendation != nil {
		s.Recommendation = string(in.Recommendation.Outcome)
	}
	return s
}

func replayCommand(in Inputs) string {
	path := in.InputPath
	if path == "" {
		path = "<trades.csv>"
	}
	cmd := fmt.Sprintf("validator evaluate --input %s", path)
	if in.WalkForward != nil {
		cmd += fmt.Sprintf(" --train-ratio %g", in.WalkForward.TrainRatio)
	}
	if in.Rolling != nil {
		cmd += fmt.Sprintf(" --rolling-windows %d", in.Rolling.Windows)
	}
	return cmd
}

// ScoreRows lists the final score per category in report order.
func ScoreRows(r *Report) []ScoreRow {
	if r == nil || r.Evaluation == nil || r.Evaluation.FinalScore == nil {
		return nil
	}
	fs := r.Evaluation.FinalScore
	rows := make([]ScoreRow, 0, len(decision.ScoreCategories))
	for _, c := range decision.ScoreCategories {
		rows = append(rows, ScoreRow{
			Category: c,
			Score:    fs.Scores[c],
			Neutral:  slices.Contains(fs.Neutral, c),
		})
	}
	return rows
}
