package decision

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	input := passingInput()
	input.Sharpe = nil
	input.NegativeMonths = ptr(6)

	v, err := NewGate().Evaluate(input)
	require.NoError(t, err)
	fs := NewScorer().Score(ScoreInput{WinRate: 0.6, TotalReturn: 40, InitialCapital: 50})

	md := RenderMarkdown(v, fs)

	for _, want := range []string{
		"## Decision: CONDITIONAL-GO (Tier 3)",
		"| 2 | Sharpe ratio | < 1.0 | n/a | SKIPPED |",
		"| 4 | Negative months | >= 5 | 6 | TRIGGERED |",
		"Tier 3: 1/5 triggered",
		"| backtest_performance | 80.0 |",
		"- Negative months >= 5 (6)",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderMarkdown_NoScore(t *testing.T) {
	v, err := NewGate().Evaluate(passingInput())
	require.NoError(t, err)

	md := RenderMarkdown(v, nil)
	if strings.Contains(md, "Final Score") {
		t.Error("score section should be omitted without a score")
	}
	if !strings.Contains(md, "No disqualification check fired.") {
		t.Error("expected all-clear summary")
	}
}
