package decision

import (
	"fmt"
	"strings"
)

// RenderMarkdown renders a Verdict and its FinalScore as a Markdown string.
// score may be nil.
func RenderMarkdown(v *Verdict, score *FinalScore) string {
	var sb strings.Builder

	sb.WriteString("# Decision Gate Report\n\n")
	sb.WriteString(fmt.Sprintf("## Decision: %s (%s)\n\n", v.Decision, v.Tier))
	sb.WriteString(fmt.Sprintf("- Total trades: %d\n", v.TotalTrades))
	sb.WriteString(fmt.Sprintf("- Win rate: %.1f%%\n", v.WinRatePct))
	sb.WriteString(fmt.Sprintf("- Max drawdown: %.1f%%\n", v.MaxDrawdown*100))
	sb.WriteString(fmt.Sprintf("- Trading period: %d days\n\n", v.TradingPeriodDays))

	for _, tier := range []Tier{Tier1, Tier2, Tier3} {
		sb.WriteString(fmt.Sprintf("## %s Checks\n\n", tier))
		sb.WriteString("| # | Check | Condition | Actual | Status |\n")
		sb.WriteString("|---|-------|-----------|--------|--------|\n")
		i, fired := 0, 0
		for _, c := range v.Checklist {
			if c.Tier != tier {
				continue
			}
			i++
			status := "NOT TRIGGERED"
			switch {
			case !c.Evaluated:
				status = "SKIPPED"
			case !c.Pass:
				status = "TRIGGERED"
				fired++
			}
			sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
				i, c.Name, c.Threshold, c.Actual, status))
		}
		sb.WriteString(fmt.Sprintf("\n%s: %d/%d triggered\n\n", tier, fired, i))
	}

	if score != nil {
		sb.WriteString("## Final Score\n\n")
		sb.WriteString("| Category | Score |\n")
		sb.WriteString("|----------|-------|\n")
		for _, c := range ScoreCategories {
			sb.WriteString(fmt.Sprintf("| %s | %.1f |\n", c, score.Scores[c]))
		}
		sb.WriteString(fmt.Sprintf("\n**Final score: %.1f (%s)**\n\n", score.FinalScore, score.Rating))
	}

	sb.WriteString("## Summary\n\n")
	if len(v.Reasons) == 0 {
		sb.WriteString("No disqualification check fired.\n")
	} else {
		sb.WriteString(fmt.Sprintf("Decision is %s due to:\n", v.Decision))
		for _, r := range v.Reasons {
			sb.WriteString(fmt.Sprintf("- %s\n", r))
		}
	}

	return sb.String()
}
