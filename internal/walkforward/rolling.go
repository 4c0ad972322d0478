package walkforward

import (
	"errors"
	"fmt"

	"strategy-validator/internal/domain"
	"strategy-validator/internal/metrics"
)

// ErrUnsupportedWindows is returned for a window count without a schedule.
var ErrUnsupportedWindows = errors.New("unsupported rolling window count")

// Schedules maps a window count to its train-ratio boundaries.
var Schedules = map[int][]float64{
	3: {0.70, 0.80, 0.90},
	4: {0.65, 0.75, 0.85, 0.92},
	5: {0.60, 0.70, 0.80, 0.90, 0.95},
}

// Consistency of window scores.
const (
	ConsistencyVeryHigh = "very_high"
	ConsistencyHigh     = "high"
	ConsistencyFair     = "fair"
	ConsistencyLow      = "low"
)

// Rolling judgments.
const (
	RollingStrongDeploy = "strong_deploy"
	RollingConditional  = "conditional_deploy"
	RollingCaution      = "caution"
	RollingReexamine    = "re-examine"
)

// Window is one rolling Train/Test judgment. Ranges are 1-based and inclusive.
type Window struct {
	Number     int     `json:"window_num"`
	TrainRange string  `json:"train_range"`
	TestRange  string  `json:"test_range"`
	TrainEnd   int     `json:"train_end"`
	TestEnd    int     `json:"test_end"`
	Result     *Result `json:"result"`
}

// RollingResult aggregates the window judgments.
type RollingResult struct {
	Windows     int      `json:"num_windows"`
	Results     []Window `json:"window_results"`
	AvgScore    float64  `json:"avg_score"`
	ScoreStd    float64  `json:"score_std"`
	MinScore    float64  `json:"min_score"`
	MaxScore    float64  `json:"max_score"`
	Consistency string   `json:"consistency"`
	Judgment    string   `json:"final_judgment"`
}

// Rolling runs one judgment per schedule boundary: window i trains on
// [0, floor(n*r_i)) and tests up to the next boundary, or to n for the last
// window.
func Rolling(tt *domain.TradeTable, windows int) (*RollingResult, error) {
	ratios, ok := Schedules[windows]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWindows, windows)
	}

	n := tt.Len()
	out := &RollingResult{Windows: windows}
	scores := make([]float64, 0, windows)
	for i, r := range ratios {
		trainEnd := int(float64(n) * r)
		testEnd := n
		if i < len(ratios)-1 {
			testEnd = int(float64(n) * ratios[i+1])
		}

		res := judgeSplit(tt.Slice(0, trainEnd), tt.Slice(trainEnd, testEnd))
		res.TrainRatio = r
		res.SplitIndex = trainEnd
		out.Results = append(out.Results, Window{
			Number:     i + 1,
			TrainRange: fmt.Sprintf("1~%d", trainEnd),
			TestRange:  fmt.Sprintf("%d~%d", trainEnd+1, testEnd),
			TrainEnd:   trainEnd,
			TestEnd:    testEnd,
			Result:     res,
		})
		scores = append(scores, float64(res.Score))
	}

	out.AvgScore = metrics.Mean(scores)
	out.ScoreStd = metrics.StdDev(scores, 0)
	out.MinScore = metrics.Min(scores)
	out.MaxScore = metrics.Max(scores)
	out.Consistency = consistency(out.ScoreStd)
	out.Judgment = rollingJudgment(out.AvgScore, out.MinScore)
	return out, nil
}

func consistency(std float64) string {
	switch {
	case std < 5:
		return ConsistencyVeryHigh
	case std < 10:
		return ConsistencyHigh
	case std < 15:
		return ConsistencyFair
	default:
		return ConsistencyLow
	}
}

func rollingJudgment(avg, minScore float64) string {
	switch {
	case avg >= 80 && minScore >= 70:
		return RollingStrongDeploy
	case avg >= 70 && minScore >= 60:
		return RollingConditional
	case avg >= 60:
		return RollingCaution
	default:
		return RollingReexamine
	}
}
