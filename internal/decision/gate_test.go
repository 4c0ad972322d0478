package decision

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passingInput() GateInput {
	return GateInput{
		TotalTrades:          100,
		WinRate:              0.6,
		MaxDrawdown:          -0.1,
		TotalDays:            365,
		WinRatePValue:        ptr(0.01),
		Sharpe:               ptr(1.5),
		MaxConsecutiveLosses: ptr(3),
		AvgLosingReturn:      ptr(-1.0),
		RiskRewardRatio:      ptr(2.0),
		NegativeMonths:       ptr(1),
		MonthlyConsistency:   ptr(0.5),
	}
}

func TestEvaluate_GO(t *testing.T) {
	v, err := NewGate().Evaluate(passingInput())
	require.NoError(t, err)

	if v.Decision != DecisionGO {
		t.Errorf("Expected GO, got %s", v.Decision)
	}
	assert.Equal(t, AllClear, v.Tier)
	assert.Empty(t, v.Reasons)
	assert.Len(t, v.Checklist, 13)
	for i, c := range v.Checklist {
		if !c.Pass || !c.Evaluated {
			t.Errorf("check %d (%s) should pass and be evaluated", i+1, c.Name)
		}
	}
	assert.InDelta(t, 60, v.WinRatePct, 1e-9)
}

func TestEvaluate_Tier1Precedence(t *testing.T) {
	input := passingInput()
	input.TotalTrades = 10
	input.Sharpe = ptr(0.2)
	input.RiskRewardRatio = ptr(1.2)

	v, err := NewGate().Evaluate(input)
	require.NoError(t, err)

	assert.Equal(t, DecisionNOGO, v.Decision)
	assert.Equal(t, Tier1, v.Tier)
	require.Len(t, v.Reasons, 1)
	assert.True(t, strings.HasPrefix(v.Reasons[0], "Total trades"))
}

func TestEvaluate_Tier1Checks(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GateInput)
	}{
		{"low win rate", func(in *GateInput) { in.WinRate = 0.49 }},
		{"deep drawdown", func(in *GateInput) { in.MaxDrawdown = -0.51 }},
		{"short period", func(in *GateInput) { in.TotalDays = 179 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := passingInput()
			tt.mutate(&input)
			v, err := NewGate().Evaluate(input)
			require.NoError(t, err)
			assert.Equal(t, Tier1, v.Tier)
			assert.Equal(t, DecisionNOGO, v.Decision)
		})
	}
}

func TestEvaluate_Tier2(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GateInput)
	}{
		{"insignificant win rate", func(in *GateInput) { in.WinRatePValue = ptr(0.05) }},
		{"low sharpe", func(in *GateInput) { in.Sharpe = ptr(0.99) }},
		{"losing streak", func(in *GateInput) { in.MaxConsecutiveLosses = ptr(7) }},
		{"large average loss", func(in *GateInput) { in.AvgLosingReturn = ptr(-3.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := passingInput()
			tt.mutate(&input)
			v, err := NewGate().Evaluate(input)
			require.NoError(t, err)
			assert.Equal(t, Tier2, v.Tier)
			assert.Equal(t, DecisionNOGO, v.Decision)
			assert.Len(t, v.Reasons, 1)
		})
	}
}

func TestEvaluate_Tier3Conditional(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GateInput)
	}{
		{"overtrading", func(in *GateInput) { in.TotalTrades = 400 }},
		{"undertrading", func(in *GateInput) { in.TotalTrades = 30; in.TotalDays = 1000 }},
		{"low risk reward", func(in *GateInput) { in.RiskRewardRatio = ptr(1.2) }},
		{"negative months", func(in *GateInput) { in.NegativeMonths = ptr(5) }},
		{"inconsistent months", func(in *GateInput) { in.MonthlyConsistency = ptr(2.5) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := passingInput()
			tt.mutate(&input)
			v, err := NewGate().Evaluate(input)
			require.NoError(t, err)
			assert.Equal(t, Tier3, v.Tier)
			assert.Equal(t, DecisionConditionalGO, v.Decision)
		})
	}
}

func TestEvaluate_ZeroRiskRewardDoesNotFire(t *testing.T) {
	input := passingInput()
	input.RiskRewardRatio = ptr(0.0)
	v, err := NewGate().Evaluate(input)
	require.NoError(t, err)
	assert.Equal(t, DecisionGO, v.Decision)
}

func TestEvaluate_MissingAnalysesSkipped(t *testing.T) {
	input := passingInput()
	input.WinRatePValue = nil
	input.Sharpe = nil
	input.MonthlyConsistency = nil

	v, err := NewGate().Evaluate(input)
	require.NoError(t, err)
	assert.Equal(t, DecisionGO, v.Decision)

	skipped := 0
	for _, c := range v.Checklist {
		if !c.Evaluated {
			skipped++
			assert.Equal(t, "n/a", c.Actual)
		}
	}
	assert.Equal(t, 3, skipped)
}

func TestEvaluate_InvalidInput(t *testing.T) {
	input := passingInput()
	input.WinRate = 1.5
	if _, err := NewGate().Evaluate(input); !errors.Is(err, ErrWinRateRange) {
		t.Errorf("expected ErrWinRateRange, got %v", err)
	}

	input = passingInput()
	input.MaxDrawdown = 0.2
	if _, err := NewGate().Evaluate(input); !errors.Is(err, ErrPositiveDrawdown) {
		t.Errorf("expected ErrPositiveDrawdown, got %v", err)
	}

	var nilInput *GateInput
	if err := nilInput.Validate(); !errors.Is(err, ErrNilInput) {
		t.Errorf("expected ErrNilInput, got %v", err)
	}
}
