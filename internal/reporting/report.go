package reporting

import (
	"time"

	"strategy-validator/internal/evaluation"
	"strategy-validator/internal/portfolio"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/walkforward"
)

// Report is the complete validation bundle for one trade table.
type Report struct {
	GeneratedAt      time.Time          `json:"generated_at"`
	ExecutiveSummary ExecutiveSummary   `json:"executive_summary"`
	Reproducibility  Reproducibility    `json:"reproducibility"`
	DataQuality      DataQualitySection `json:"data_quality"`

	Evaluation     *evaluation.Report         `json:"evaluation"`
	WalkForward    *walkforward.Result        `json:"walk_forward,omitempty"`
	Rolling        *walkforward.RollingResult `json:"rolling_walk_forward,omitempty"`
	Portfolio      *portfolio.Metrics         `json:"portfolio,omitempty"`
	Recommendation *recommend.Result          `json:"recommendation,omitempty"`
}

// ExecutiveSummary holds the headline numbers.
type ExecutiveSummary struct {
	TotalTrades      int      `json:"total_trades"`
	WinRate          float64  `json:"win_rate"`           // percent
	TotalReturn      float64  `json:"total_return"`       // percent
	Decision         string   `json:"decision"`
	Tier             string   `json:"tier"`
	FinalScore       float64  `json:"final_score"`
	Rating           string   `json:"rating"`
	WalkForwardScore *float64 `json:"walk_forward_score"`
	Recommendation   string   `json:"recommendation"`
	FailedCategories []string `json:"failed_categories"`
}

// Reproducibility holds what is needed to regenerate the report.
type Reproducibility struct {
	GeneratorVersion string `json:"generator_version"`
	RunID            string `json:"run_id"`
	CacheKey         string `json:"cache_key"`
	TableHash        string `json:"table_hash"`
	Seed             uint64 `json:"seed"`
	ReplayCommand    string `json:"replay_command"`
}

// DataQualitySection lists advisory sufficiency checks and integrity
// errors. Failed checks do not change the decision.
type DataQualitySection struct {
	SufficiencyChecks []SufficiencyCheckRow `json:"sufficiency_checks"`
	IntegrityErrors   []string              `json:"integrity_errors"`
	AllChecksPassed   bool                  `json:"all_checks_passed"`
}

// SufficiencyCheckRow is one data sufficiency check.
type SufficiencyCheckRow struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Actual    string `json:"actual"`
	Pass      bool   `json:"pass"`
}

// ScoreRow is one line of the per-category score CSV.
type ScoreRow struct {
	Category string
	Score    float64
	Neutral  bool
}
