package trades

import (
	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// Return-magnitude bands, in percent.
const (
	BandTinyProfit   = "tiny_profit_0_1"
	BandSmallProfit  = "small_profit_1_3"
	BandMediumProfit = "medium_profit_3_10"
	BandLargeProfit  = "large_profit_10_plus"
	BandFlat         = "flat_0"
	BandTinyLoss     = "tiny_loss_0_1"
	BandSmallLoss    = "small_loss_1_3"
	BandLargeLoss    = "large_loss_3_plus"
)

// Holding-duration bands.
const (
	HoldScalp  = "scalp_lt1h"
	HoldShort  = "short_1h_24h"
	HoldMedium = "medium_1d_7d"
	HoldLong   = "long_7d_plus"
)

// ReturnBands lists return bands from best to worst.
var ReturnBands = []string{
	BandLargeProfit, BandMediumProfit, BandSmallProfit, BandTinyProfit,
	BandFlat,
	BandTinyLoss, BandSmallLoss, BandLargeLoss,
}

// HoldingBands lists holding bands from shortest to longest.
var HoldingBands = []string{HoldScalp, HoldShort, HoldMedium, HoldLong}

// Bucket describes the trades that fall in one band.
type Bucket struct {
	Count     int     `json:"count"`
	Ratio     float64 `json:"ratio"`
	AvgReturn float64 `json:"avg_return"`
}

// Classification assigns every trade to exactly one return band and one
// holding band.
type Classification struct {
	BySize    map[string]Bucket `json:"size_classification"`
	ByHolding map[string]Bucket `json:"holding_classification"`
}

// ReturnBand returns the band for a percent return.
func ReturnBand(r float64) string {
	switch {
	case r > 10:
		return BandLargeProfit
	case r > 3:
		return BandMediumProfit
	case r > 1:
		return BandSmallProfit
	case r > 0:
		return BandTinyProfit
	case r == 0:
		return BandFlat
	case r >= -1:
		return BandTinyLoss
	case r >= -3:
		return BandSmallLoss
	default:
		return BandLargeLoss
	}
}

// HoldingBand returns the band for a holding period in hours.
func HoldingBand(hours float64) string {
	switch {
	case hours < 1:
		return HoldScalp
	case hours < 24:
		return HoldShort
	case hours < 168:
		return HoldMedium
	default:
		return HoldLong
	}
}

// Classify buckets trades by return band and holding band. Every band is
// present in the output, empty bands with zero count.
func Classify(trades []domain.Trade) Classification {
	sizeReturns := make(map[string][]float64, len(ReturnBands))
	holdReturns := make(map[string][]float64, len(HoldingBands))
	for _, t := range trades {
		sb := ReturnBand(t.ReturnPct)
		sizeReturns[sb] = append(sizeReturns[sb], t.ReturnPct)
		hb := HoldingBand(t.HoldingHours())
		holdReturns[hb] = append(holdReturns[hb], t.ReturnPct)
	}

	return Classification{
		BySize:    buckets(ReturnBands, sizeReturns, len(trades)),
		ByHolding: buckets(HoldingBands, holdReturns, len(trades)),
	}
}

func buckets(bands []string, returns map[string][]float64, total int) map[string]Bucket {
	out := make(map[string]Bucket, len(bands))
	for _, band := range bands {
		rs := returns[band]
		b := Bucket{Count: len(rs), AvgReturn: metrics.Mean(rs)}
		if total > 0 {
			b.Ratio = float64(len(rs)) / float64(total)
		}
		out[band] = b
	}
	return out
}
