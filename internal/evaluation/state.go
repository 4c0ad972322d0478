package evaluation

import (
	"errors"
	"fmt"
)

// State is the position of an Evaluator in its run sequence.
type State int

const (
	StateNotRun State = iota
	StateValidatorsRun
	StateDisqualificationChecked
	StateScored
	StateReported
)

func (s State) String() string {
	switch s {
	case StateNotRun:
		return "NOT_RUN"
	case StateValidatorsRun:
		return "VALIDATORS_RUN"
	case StateDisqualificationChecked:
		return "DISQUALIFICATION_CHECKED"
	case StateScored:
		return "SCORED"
	case StateReported:
		return "REPORTED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrAnalyzerPanic wraps a recovered analyzer panic.
var ErrAnalyzerPanic = errors.New("analyzer panicked")

// AnalysisError records the failure of one analyzer category. It never
// escapes the Evaluator; the category is left empty instead.
type AnalysisError struct {
	Category string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}
