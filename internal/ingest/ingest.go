// Package ingest reads canonical trade tables from CSV or JSON.
//
// Canonical columns: id, direction, entry_time, exit_time, entry_price,
// exit_price, return_pct, cumulative_pct, runup_pct, drawdown_pct. Only id,
// entry_time, exit_time and return_pct are required; an empty optional cell
// means unknown.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"strategy-validator/internal/domain"
)

// Formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// Column names.
const (
	ColID            = "id"
	ColDirection     = "direction"
	ColEntryTime     = "entry_time"
	ColExitTime      = "exit_time"
	ColEntryPrice    = "entry_price"
	ColExitPrice     = "exit_price"
	ColReturnPct     = "return_pct"
	ColCumulativePct = "cumulative_pct"
	ColRunupPct      = "runup_pct"
	ColDrawdownPct   = "drawdown_pct"
)

// RequiredColumns must be present in every input.
var RequiredColumns = []string{ColID, ColEntryTime, ColExitTime, ColReturnPct}

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidRow is returned when a row cannot be parsed.
	ErrInvalidRow = errors.New("invalid row")

	// ErrUnknownFormat is returned for an unsupported input format.
	ErrUnknownFormat = errors.New("unknown input format")
)

// timeLayouts are tried in order.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Read parses r in the given format and builds a trade table.
func Read(r io.Reader, format string) (*domain.TradeTable, error) {
	var (
		trades []domain.Trade
		err    error
	)
	switch strings.ToLower(format) {
	case FormatCSV:
		trades, err = ReadCSV(r)
	case FormatJSON:
		trades, err = ReadJSON(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, err
	}
	tt, err := domain.NewTradeTable(trades)
	if err != nil {
		return nil, fmt.Errorf("build trade table: %w", err)
	}
	return tt, nil
}

// ReadFile reads a table from path. An empty format is taken from the file
// extension.
func ReadFile(path, format string) (*domain.TradeTable, error) {
	if format == "" {
		format = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, format)
}
