package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"strategy-validator/internal/analysis"
)

// ComputeCacheKey computes a deterministic report cache key using SHA256.
// Formula: SHA256(table_hash|initial_capital|lot_pct|confidence|risk_free|
// bootstrap_iterations|seed|acf_lags|extreme_percentile|growth_months|
// lot_window|base_lot_pct|total_days|walk_forward)
// Returns hex-encoded hash (64 characters).
func ComputeCacheKey(tableHash string, p analysis.Params, walkForward *float64) string {
	wf := "none"
	if walkForward != nil {
		wf = fmt.Sprintf("%g", *walkForward)
	}

	data := fmt.Sprintf("%s|%g|%g|%g|%g|%d|%d|%d|%g|%d|%d|%g|%d|%s",
		tableHash,
		p.InitialCapital,
		p.LotPct,
		p.ConfidenceLevel,
		p.RiskFreeRate,
		p.BootstrapIterations,
		p.Seed,
		p.ACFLags,
		p.ExtremePercentile,
		p.GrowthMonths,
		p.LotWindow,
		p.BaseLotPct,
		p.TotalDays,
		wf,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
