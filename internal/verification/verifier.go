// Package verification checks that a stored validation report is
// reproduced exactly when the pipeline is re-run on the same trade table.
package verification

import (
	"math"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/reporting"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string `json:"field"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
}

// VerificationResult is the outcome of comparing two reports.
type VerificationResult struct {
	RunID       string            `json:"run_id"`
	Match       bool              `json:"match"`
	Divergences []FieldDivergence `json:"divergences"`
}

// CompareReports compares the deterministic parts of two reports and
// returns divergences. Generation timestamps are ignored.
func CompareReports(stored, replayed *reporting.Report) []FieldDivergence {
	var divergences []FieldDivergence
	add := func(field string, expected, actual any) {
		divergences = append(divergences, FieldDivergence{Field: field, Expected: expected, Actual: actual})
	}

	// Identity
	if stored.Reproducibility.TableHash != replayed.Reproducibility.TableHash {
		add("TableHash", stored.Reproducibility.TableHash, replayed.Reproducibility.TableHash)
	}
	if stored.Reproducibility.RunID != replayed.Reproducibility.RunID {
		add("RunID", stored.Reproducibility.RunID, replayed.Reproducibility.RunID)
	}

	// Headline
	s, r := stored.ExecutiveSummary, replayed.ExecutiveSummary
	if s.TotalTrades != r.TotalTrades {
		add("TotalTrades", s.TotalTrades, r.TotalTrades)
	}
	if !floatEquals(s.WinRate, r.WinRate) {
		add("WinRate", s.WinRate, r.WinRate)
	}
	if !floatEquals(s.TotalReturn, r.TotalReturn) {
		add("TotalReturn", s.TotalReturn, r.TotalReturn)
	}
	if s.Decision != r.Decision {
		add("Decision", s.Decision, r.Decision)
	}
	if s.Tier != r.Tier {
		add("Tier", s.Tier, r.Tier)
	}
	if !floatEquals(s.FinalScore, r.FinalScore) {
		add("FinalScore", s.FinalScore, r.FinalScore)
	}
	if !floatPtrEquals(s.WalkForwardScore, r.WalkForwardScore) {
		add("WalkForwardScore", s.WalkForwardScore, r.WalkForwardScore)
	}
	if s.Recommendation != r.Recommendation {
		add("Recommendation", s.Recommendation, r.Recommendation)
	}

	// Category scores
	for _, c := range decision.ScoreCategories {
		sv, rv := categoryScore(stored, c), categoryScore(replayed, c)
		if !floatPtrEquals(sv, rv) {
			add("Score."+c, sv, rv)
		}
	}

	// Rolling summary
	if (stored.Rolling == nil) != (replayed.Rolling == nil) {
		add("Rolling", stored.Rolling != nil, replayed.Rolling != nil)
	} else if stored.Rolling != nil && !floatEquals(stored.Rolling.AvgScore, replayed.Rolling.AvgScore) {
		add("Rolling.AvgScore", stored.Rolling.AvgScore, replayed.Rolling.AvgScore)
	}

	return divergences
}

func categoryScore(r *reporting.Report, category string) *float64 {
	if r.Evaluation == nil || r.Evaluation.FinalScore == nil {
		return nil
	}
	v, ok := r.Evaluation.FinalScore.Scores[category]
	if !ok {
		return nil
	}
	return &v
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}

// floatPtrEquals compares two *float64 values within FloatTolerance.
// Returns true if both are nil, or both are non-nil and equal.
func floatPtrEquals(a, b *float64) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return floatEquals(*a, *b)
}
