package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/reporting"
)

// ErrReportNotFound is returned when the stored report file does not exist.
var ErrReportNotFound = errors.New("stored report not found")

// ReplayVerifier re-runs the pipeline and compares against a stored report.
type ReplayVerifier struct {
	pipeline *pipeline.Pipeline
}

// NewReplayVerifier creates a verifier. p should be configured exactly as
// the run that produced the stored report and must not write output files.
func NewReplayVerifier(p *pipeline.Pipeline) *ReplayVerifier {
	return &ReplayVerifier{pipeline: p}
}

// LoadReport reads a report written by reporting.Write.
func LoadReport(path string) (*reporting.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, path)
		}
		return nil, err
	}
	var r reporting.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	return &r, nil
}

// VerifyFile replays the trade file and compares it with the report stored
// at reportPath.
func (v *ReplayVerifier) VerifyFile(ctx context.Context, tradesPath, format, reportPath string) (*VerificationResult, error) {
	// 1. Load stored report
	stored, err := LoadReport(reportPath)
	if err != nil {
		return nil, err
	}

	// 2. Replay
	replayed, err := v.pipeline.RunFile(ctx, tradesPath, format)
	if err != nil {
		return nil, err
	}

	// 3. Compare results
	divergences := CompareReports(stored, replayed)
	return &VerificationResult{
		RunID:       replayed.Reproducibility.RunID,
		Match:       len(divergences) == 0,
		Divergences: divergences,
	}, nil
}
