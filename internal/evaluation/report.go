package evaluation

import (
	"time"

	"strategy-validator/internal/decision"
)

// Metadata describes the evaluated table and the run.
type Metadata struct {
	RunID            string    `json:"run_id"`
	CacheKey         string    `json:"cache_key"`
	TableHash        string    `json:"table_hash"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	TotalTrades      int       `json:"total_trades"`
	TradingDays      int       `json:"trading_days"`
	TotalDays        int       `json:"total_days"`
	InitialCapital   float64   `json:"initial_capital"`
	GeneratedAt      time.Time `json:"generated_at"`
	FailedCategories []string  `json:"failed_categories"`
}

// Report is the complete evaluation output. Failed analyzer categories are
// omitted from Validators and listed in Metadata.FailedCategories.
type Report struct {
	Metadata         Metadata             `json:"metadata"`
	Disqualification *decision.Verdict    `json:"disqualification"`
	FinalScore       *decision.FinalScore `json:"final_score"`
	Validators       decision.Results     `json:"validators"`
}
