package decision

import "fmt"

// Gate evaluates the three-tier disqualification rule set.
type Gate struct{}

// NewGate creates a new disqualification gate.
func NewGate() *Gate {
	return &Gate{}
}

// Evaluate produces a Verdict from GateInput.
// Tiers are evaluated in order and the first tier with a fired check
// decides: Tier 1 or Tier 2 gives NO-GO, Tier 3 gives CONDITIONAL-GO,
// and no fired check gives GO.
func (g *Gate) Evaluate(input GateInput) (*Verdict, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	var checklist []CriterionResult
	checklist = append(checklist, g.evaluateTier1(input)...)
	checklist = append(checklist, g.evaluateTier2(input)...)
	checklist = append(checklist, g.evaluateTier3(input)...)

	v := &Verdict{
		Decision:          DecisionGO,
		Tier:              AllClear,
		Reasons:           []string{},
		TotalTrades:       input.TotalTrades,
		WinRatePct:        input.WinRate * 100,
		MaxDrawdown:       input.MaxDrawdown,
		TradingPeriodDays: input.TotalDays,
		Checklist:         checklist,
	}

	for _, tier := range []Tier{Tier1, Tier2, Tier3} {
		reasons := firedReasons(checklist, tier)
		if len(reasons) == 0 {
			continue
		}
		v.Tier = tier
		v.Reasons = reasons
		v.Decision = DecisionNOGO
		if tier == Tier3 {
			v.Decision = DecisionConditionalGO
		}
		break
	}
	return v, nil
}

func firedReasons(checklist []CriterionResult, tier Tier) []string {
	var reasons []string
	for _, c := range checklist {
		if c.Tier == tier && c.Evaluated && !c.Pass {
			reasons = append(reasons, fmt.Sprintf("%s %s (%s)", c.Name, c.Threshold, c.Actual))
		}
	}
	return reasons
}

// evaluateTier1 evaluates the hard-stop checks.
func (g *Gate) evaluateTier1(input GateInput) []CriterionResult {
	checks := make([]CriterionResult, 4)

	// 1. Too few trades
	checks[0] = CriterionResult{
		Tier:      Tier1,
		Name:      "Total trades",
		Threshold: "< 30",
		Actual:    fmt.Sprintf("%d", input.TotalTrades),
		Pass:      input.TotalTrades >= 30,
		Evaluated: true,
	}

	// 2. Win rate below half
	checks[1] = CriterionResult{
		Tier:      Tier1,
		Name:      "Win rate",
		Threshold: "< 50%",
		Actual:    fmt.Sprintf("%.1f%%", input.WinRate*100),
		Pass:      input.WinRate >= 0.5,
		Evaluated: true,
	}

	// 3. Capital drawdown deeper than half
	checks[2] = CriterionResult{
		Tier:      Tier1,
		Name:      "Max drawdown",
		Threshold: "< -50%",
		Actual:    fmt.Sprintf("%.1f%%", input.MaxDrawdown*100),
		Pass:      input.MaxDrawdown >= -0.5,
		Evaluated: true,
	}

	// 4. Trading period shorter than six months
	checks[3] = CriterionResult{
		Tier:      Tier1,
		Name:      "Trading period",
		Threshold: "< 180 days",
		Actual:    fmt.Sprintf("%d days", input.TotalDays),
		Pass:      input.TotalDays >= 180,
		Evaluated: true,
	}

	return checks
}

// evaluateTier2 evaluates the high-risk checks. Each reads one analysis.
func (g *Gate) evaluateTier2(input GateInput) []CriterionResult {
	checks := []CriterionResult{
		{Tier: Tier2, Name: "Win-rate p-value", Threshold: ">= 0.05"},
		{Tier: Tier2, Name: "Sharpe ratio", Threshold: "< 1.0"},
		{Tier: Tier2, Name: "Max consecutive losses", Threshold: ">= 7"},
		{Tier: Tier2, Name: "Average loss per losing trade", Threshold: "> 3%"},
	}

	if p := input.WinRatePValue; p != nil {
		checks[0].Actual = fmt.Sprintf("%.4f", *p)
		checks[0].Pass = *p < 0.05
		checks[0].Evaluated = true
	}
	if s := input.Sharpe; s != nil {
		checks[1].Actual = fmt.Sprintf("%.2f", *s)
		checks[1].Pass = *s >= 1.0
		checks[1].Evaluated = true
	}
	if l := input.MaxConsecutiveLosses; l != nil {
		checks[2].Actual = fmt.Sprintf("%d", *l)
		checks[2].Pass = *l < 7
		checks[2].Evaluated = true
	}
	if a := input.AvgLosingReturn; a != nil {
		checks[3].Actual = fmt.Sprintf("%.2f%%", abs(*a))
		checks[3].Pass = abs(*a) <= 3
		checks[3].Evaluated = true
	}

	return markSkipped(checks)
}

// evaluateTier3 evaluates the warnings that downgrade GO to CONDITIONAL-GO.
func (g *Gate) evaluateTier3(input GateInput) []CriterionResult {
	var dailyAvg, monthlyAvg float64
	if input.TotalDays > 0 {
		dailyAvg = float64(input.TotalTrades) / float64(input.TotalDays)
		monthlyAvg = float64(input.TotalTrades) / (float64(input.TotalDays) / 30)
	}

	checks := []CriterionResult{
		{
			Tier:      Tier3,
			Name:      "Daily trade average",
			Threshold: "> 1.0",
			Actual:    fmt.Sprintf("%.2f", dailyAvg),
			Pass:      dailyAvg <= 1.0,
			Evaluated: true,
		},
		{
			Tier:      Tier3,
			Name:      "Monthly trade average",
			Threshold: "< 2",
			Actual:    fmt.Sprintf("%.1f", monthlyAvg),
			Pass:      monthlyAvg >= 2,
			Evaluated: true,
		},
		{Tier: Tier3, Name: "Risk-reward ratio", Threshold: "< 1.5"},
		{Tier: Tier3, Name: "Negative months", Threshold: ">= 5"},
		{Tier: Tier3, Name: "Monthly consistency", Threshold: "> 2.0"},
	}

	// A zero ratio means there were no losers to compare against.
	if rr := input.RiskRewardRatio; rr != nil {
		checks[2].Actual = fmt.Sprintf("%.2f", *rr)
		checks[2].Pass = !(*rr > 0 && *rr < 1.5)
		checks[2].Evaluated = true
	}
	if m := input.NegativeMonths; m != nil {
		checks[3].Actual = fmt.Sprintf("%d", *m)
		checks[3].Pass = *m < 5
		checks[3].Evaluated = true
	}
	if c := input.MonthlyConsistency; c != nil {
		checks[4].Actual = fmt.Sprintf("%.2f", *c)
		checks[4].Pass = *c <= 2.0
		checks[4].Evaluated = true
	}

	return markSkipped(checks)
}

func markSkipped(checks []CriterionResult) []CriterionResult {
	for i := range checks {
		if !checks[i].Evaluated {
			checks[i].Actual = "n/a"
			checks[i].Pass = true
		}
	}
	return checks
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
