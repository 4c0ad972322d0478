package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"strategy-validator/internal/decision"
	"strategy-validator/internal/observability"
)

// Output file names written by Write.
const (
	FileJSON         = "report.json"
	FileMarkdown     = "REPORT.md"
	FileDecisionGate = "DECISION_GATE_REPORT.md"
	FileScoresCSV    = "scores.csv"
	FileWindowsCSV   = "walkforward_windows.csv"
)

// RenderJSON renders report as indented JSON.
func RenderJSON(r *Report) ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return append(data, '\n'), nil
}

// Write renders every report format into dir and returns the written paths.
func Write(dir string, r *Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	data, err := RenderJSON(r)
	if err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		format  string
		content []byte
	}{
		{FileJSON, "json", data},
		{FileMarkdown, "markdown", []byte(RenderMarkdown(r))},
		{FileScoresCSV, "csv", []byte(RenderScoresCSV(r))},
		{FileWindowsCSV, "csv", []byte(RenderWindowsCSV(r))},
	}
	if r.Evaluation != nil && r.Evaluation.Disqualification != nil {
		gate := decision.RenderMarkdown(r.Evaluation.Disqualification, r.Evaluation.FinalScore)
		files = append(files, struct {
			name    string
			format  string
			content []byte
		}{FileDecisionGate, "markdown", []byte(gate)})
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.content, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		observability.RecordReport(f.format)
		paths = append(paths, path)
	}
	return paths, nil
}
