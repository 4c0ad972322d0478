package reporting

import (
	"fmt"
	"strings"
)

// RenderScoresCSV renders the per-category scores as CSV string.
func RenderScoresCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("category,score,neutral\n")
	for _, row := range ScoreRows(r) {
		sb.WriteString(fmt.Sprintf("%s,%.4f,%t\n", row.Category, row.Score, row.Neutral))
	}
	if r != nil && r.Evaluation != nil && r.Evaluation.FinalScore != nil {
		sb.WriteString(fmt.Sprintf("final,%.4f,false\n", r.Evaluation.FinalScore.FinalScore))
	}

	return sb.String()
}

// RenderWindowsCSV renders walk-forward windows as CSV string. The single
// split is window 0; rolling windows follow.
func RenderWindowsCSV(r *Report) string {
	var sb strings.Builder

	sb.WriteString("window,train_range,test_range,train_trades,test_trades,")
	sb.WriteString("train_win_rate,test_win_rate,train_return,test_return,")
	sb.WriteString("train_max_drawdown,test_max_drawdown,score,judgment\n")

	if r == nil {
		return sb.String()
	}
	if wf := r.WalkForward; wf != nil {
		train := fmt.Sprintf("1-%d", wf.SplitIndex)
		test := fmt.Sprintf("%d-%d", wf.SplitIndex+1, wf.SplitIndex+wf.Test.TotalTrades)
		writeWindowRow(&sb, 0, train, test, wf.Train.TotalTrades, wf.Test.TotalTrades,
			wf.Train.WinRate, wf.Test.WinRate, wf.Train.TotalReturn, wf.Test.TotalReturn,
			wf.Train.MaxDrawdown, wf.Test.MaxDrawdown, wf.Score, wf.Judgment)
	}
	if rr := r.Rolling; rr != nil {
		for _, w := range rr.Results {
			if w.Result == nil {
				continue
			}
			res := w.Result
			writeWindowRow(&sb, w.Number, w.TrainRange, w.TestRange, res.Train.TotalTrades, res.Test.TotalTrades,
				res.Train.WinRate, res.Test.WinRate, res.Train.TotalReturn, res.Test.TotalReturn,
				res.Train.MaxDrawdown, res.Test.MaxDrawdown, res.Score, res.Judgment)
		}
	}

	return sb.String()
}

func writeWindowRow(sb *strings.Builder, n int, train, test string, trainTrades, testTrades int,
	trainWR, testWR, trainRet, testRet, trainDD, testDD float64, score int, judgment string) {
	sb.WriteString(fmt.Sprintf("%d,%s,%s,%d,%d,%.6f,%.6f,%.6f,%.6f,%.6f,%.6f,%d,%s\n",
		n, train, test, trainTrades, testTrades,
		trainWR, testWR, trainRet, testRet, trainDD, testDD, score, judgment))
}
