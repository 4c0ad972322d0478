package reporting

import (
	"fmt"
	"strings"
	"time"

	"strategy-validator/internal/portfolio"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Strategy Validation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if md := r.Evaluation; md != nil {
		sb.WriteString(fmt.Sprintf("Period: %s to %s | Trades: %d | Trading days: %d\n\n",
			md.Metadata.StartDate.Format(dateLayout), md.Metadata.EndDate.Format(dateLayout),
			md.Metadata.TotalTrades, md.Metadata.TradingDays))
	}

	writeSummary(&sb, r.ExecutiveSummary)
	writeDataQuality(&sb, r.DataQuality)
	writeScores(&sb, r)
	writeWalkForward(&sb, r)
	writeRolling(&sb, r)
	writePortfolio(&sb, r.Portfolio)
	writeRecommendation(&sb, r)

	// Reproducibility
	sb.WriteString("## Reproducibility\n\n")
	sb.WriteString("| Field | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Generator Version | %s |\n", r.Reproducibility.GeneratorVersion))
	sb.WriteString(fmt.Sprintf("| Run ID | `%s` |\n", r.Reproducibility.RunID))
	sb.WriteString(fmt.Sprintf("| Table Hash | `%s` |\n", r.Reproducibility.TableHash))
	sb.WriteString(fmt.Sprintf("| Seed | %d |\n", r.Reproducibility.Seed))
	sb.WriteString("\n")
	sb.WriteString("```bash\n")
	sb.WriteString(r.Reproducibility.ReplayCommand)
	sb.WriteString("\n```\n")

	return sb.String()
}

const dateLayout = "2006-01-02"

func writeSummary(sb *strings.Builder, s ExecutiveSummary) {
	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", s.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% |\n", s.WinRate))
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f%% |\n", s.TotalReturn))
	sb.WriteString(fmt.Sprintf("| Decision | **%s** (%s) |\n", s.Decision, s.Tier))
	sb.WriteString(fmt.Sprintf("| Final Score | %.1f (%s) |\n", s.FinalScore, s.Rating))
	sb.WriteString(fmt.Sprintf("| Walk-Forward Score | %s |\n", formatOptional(s.WalkForwardScore, "%.0f")))
	if s.Recommendation != "" {
		sb.WriteString(fmt.Sprintf("| Recommendation | **%s** |\n", s.Recommendation))
	}
	sb.WriteString("\n")

	if len(s.FailedCategories) > 0 {
		sb.WriteString("Failed analyses: ")
		sb.WriteString(strings.Join(s.FailedCategories, ", "))
		sb.WriteString("\n\n")
	}
}

func writeDataQuality(sb *strings.Builder, dq DataQualitySection) {
	sb.WriteString("## Data Quality\n\n")
	if len(dq.SufficiencyChecks) > 0 {
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range dq.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if dq.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Treat the scores below with caution.\n\n")
		}
	} else if len(dq.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	if len(dq.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range dq.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}
}

func writeScores(sb *strings.Builder, r *Report) {
	rows := ScoreRows(r)
	if len(rows) == 0 {
		return
	}
	sb.WriteString("## Category Scores\n\n")
	sb.WriteString("| Category | Score | Note |\n")
	sb.WriteString("|----------|-------|------|\n")
	for _, row := range rows {
		note := ""
		if row.Neutral {
			note = "neutral"
		}
		sb.WriteString(fmt.Sprintf("| %s | %.1f | %s |\n", row.Category, row.Score, note))
	}
	sb.WriteString("\n")
}

func writeWalkForward(sb *strings.Builder, r *Report) {
	wf := r.WalkForward
	if wf == nil {
		return
	}
	sb.WriteString("## Walk-Forward\n\n")
	sb.WriteString(fmt.Sprintf("Train ratio %.2f, split at trade %d. Score **%d/100** (%s).\n\n",
		wf.TrainRatio, wf.SplitIndex, wf.Score, wf.Judgment))
	sb.WriteString("| Metric | Train | Test |\n")
	sb.WriteString("|--------|-------|------|\n")
	sb.WriteString(fmt.Sprintf("| Trades | %d | %d |\n", wf.Train.TotalTrades, wf.Test.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Win Rate | %.2f%% | %.2f%% |\n", wf.Train.WinRate, wf.Test.WinRate))
	sb.WriteString(fmt.Sprintf("| Total Return | %.2f%% | %.2f%% |\n", wf.Train.TotalReturn, wf.Test.TotalReturn))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f%% | %.2f%% |\n", wf.Train.MaxDrawdown, wf.Test.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.2f | %.2f |\n", wf.Train.ProfitFactor, wf.Test.ProfitFactor))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Checks: win rate %s (%d), return %s (%d), drawdown %s (%d)\n\n",
		wf.Checks.WinRate.Rating, wf.Checks.WinRate.Points,
		wf.Checks.Return.Rating, wf.Checks.Return.Points,
		wf.Checks.Drawdown.Rating, wf.Checks.Drawdown.Points))
}

func writeRolling(sb *strings.Builder, r *Report) {
	rr := r.Rolling
	if rr == nil {
		return
	}
	sb.WriteString("## Rolling Walk-Forward\n\n")
	sb.WriteString("| Window | Train | Test | Score | Judgment |\n")
	sb.WriteString("|--------|-------|------|-------|----------|\n")
	for _, w := range rr.Results {
		score, judgment := 0, ""
		if w.Result != nil {
			score, judgment = w.Result.Score, w.Result.Judgment
		}
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %d | %s |\n",
			w.Number, w.TrainRange, w.TestRange, score, judgment))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Average %.1f (std %.1f, min %.0f, max %.0f). Consistency: %s. Judgment: **%s**\n\n",
		rr.AvgScore, rr.ScoreStd, rr.MinScore, rr.MaxScore, rr.Consistency, rr.Judgment))
}

func writePortfolio(sb *strings.Builder, m *portfolio.Metrics) {
	if m == nil {
		return
	}
	sb.WriteString("## Portfolio Metrics\n\n")
	if !m.Available() {
		sb.WriteString(fmt.Sprintf("Unavailable: %s\n\n", m.Error))
		return
	}
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	rows := []struct {
		name string
		v    *float64
	}{
		{"CAGR", m.CAGR},
		{"Sharpe", m.Sharpe},
		{"Sortino", m.Sortino},
		{"Calmar", m.Calmar},
		{"Max Drawdown", m.MaxDrawdown},
		{"Volatility", m.Volatility},
		{"VaR (95%)", m.VaR},
		{"CVaR (95%)", m.CVaR},
		{"Risk of Ruin", m.RiskOfRuin},
		{"Ulcer Index", m.UlcerIndex},
		{"Gain/Pain", m.GainPainRatio},
		{"Recovery Factor", m.RecoveryFactor},
	}
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %s |\n", row.name, formatOptional(row.v, "%.4f")))
	}
	sb.WriteString("\n")
}

func writeRecommendation(sb *strings.Builder, r *Report) {
	rec := r.Recommendation
	if rec == nil {
		return
	}
	sb.WriteString("## Recommendation\n\n")
	sb.WriteString(fmt.Sprintf("**%s**: %s\n\n", rec.Outcome, rec.Summary))
	sb.WriteString("| Check | Target | Actual | Status |\n")
	sb.WriteString("|-------|--------|--------|--------|\n")
	for _, c := range rec.Checks {
		status := "FAIL"
		if c.Pass {
			status = "PASS"
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", c.Name, c.Target, c.Actual, status))
	}
	sb.WriteString("\n")
	for _, reason := range rec.Reasons {
		sb.WriteString(fmt.Sprintf("- %s\n", reason))
	}
	if len(rec.Reasons) > 0 {
		sb.WriteString("\n")
	}
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf(format, *v)
}
