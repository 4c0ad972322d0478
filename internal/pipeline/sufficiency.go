package pipeline

import (
	"fmt"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/reporting"
	"strategy-validator/internal/walkforward"
)

// Sufficiency thresholds. They are advisory and never change the decision.
const (
	MinTrades          = 30
	MinTradingDays     = 20
	MinPartitionTrades = 10
)

// SufficiencyCheck represents one data sufficiency criterion.
type SufficiencyCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// SufficiencyResult contains all checks.
type SufficiencyResult struct {
	Checks  []SufficiencyCheck
	AllPass bool
}

// CheckSufficiency reports whether tt is large enough for the statistical
// tests and the configured walk-forward splits to be meaningful.
func CheckSufficiency(tt *domain.TradeTable, trainRatio float64, rollingWindows int) *SufficiencyResult {
	result := &SufficiencyResult{
		Checks:  make([]SufficiencyCheck, 0, 4),
		AllPass: true,
	}
	add := func(c SufficiencyCheck) {
		result.Checks = append(result.Checks, c)
		if !c.Pass {
			result.AllPass = false
		}
	}

	n := tt.Len()
	add(SufficiencyCheck{
		Name:      "Total trades",
		Threshold: fmt.Sprintf(">= %d", MinTrades),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= MinTrades,
	})

	days := tt.TradingDays()
	add(SufficiencyCheck{
		Name:      "Trading days",
		Threshold: fmt.Sprintf(">= %d", MinTradingDays),
		Actual:    fmt.Sprintf("%d", days),
		Pass:      days >= MinTradingDays,
	})

	if trainRatio > 0 && trainRatio < 1 {
		split := int(float64(n) * trainRatio)
		smallest := min(split, n-split)
		add(SufficiencyCheck{
			Name:      "Walk-forward partition size",
			Threshold: fmt.Sprintf(">= %d trades each", MinPartitionTrades),
			Actual:    fmt.Sprintf("train %d, test %d", split, n-split),
			Pass:      smallest >= MinPartitionTrades,
		})
	}

	if ratios, ok := walkforward.Schedules[rollingWindows]; ok {
		smallest := n
		for i, r := range ratios {
			end := n
			if i+1 < len(ratios) {
				end = int(float64(n) * ratios[i+1])
			}
			smallest = min(smallest, end-int(float64(n)*r))
		}
		add(SufficiencyCheck{
			Name:      "Rolling test window size",
			Threshold: fmt.Sprintf(">= %d trades per window", MinPartitionTrades),
			Actual:    fmt.Sprintf("smallest %d", smallest),
			Pass:      smallest >= MinPartitionTrades,
		})
	}

	return result
}

func convertToDataQuality(result *SufficiencyResult, failedCategories []string) reporting.DataQualitySection {
	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	errs := make([]string, 0, len(failedCategories))
	for _, c := range failedCategories {
		errs = append(errs, fmt.Sprintf("analysis %s failed and was omitted", c))
	}
	return reporting.DataQualitySection{
		SufficiencyChecks: checks,
		IntegrityErrors:   errs,
		AllChecksPassed:   result.AllPass && len(errs) == 0,
	}
}
