package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"strategy-validator/internal/domain"
)

type jsonEnvelope struct {
	Trades []map[string]json.RawMessage `json:"trades"`
}

// ReadJSON parses either an array of trade objects or {"trades": [...]}.
// Values may be JSON strings or numbers; null means unknown.
func ReadJSON(r io.Reader) ([]domain.Trade, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	data = bytes.TrimSpace(data)

	var rows []map[string]json.RawMessage
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRow, err)
		}
	} else {
		var env jsonEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRow, err)
		}
		rows = env.Trades
	}

	trades := make([]domain.Trade, 0, len(rows))
	for i, obj := range rows {
		row := i + 1
		if err := missing(func(c string) bool { _, ok := obj[c]; return ok }); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		var convErr error
		get := func(col string) string {
			raw, ok := obj[col]
			if !ok {
				return ""
			}
			s, err := scalar(raw)
			if err != nil && convErr == nil {
				convErr = rowErr(row, col, err)
			}
			return s
		}
		t, err := parseRecord(row, get)
		if convErr != nil {
			return nil, convErr
		}
		if err != nil {
			return nil, err
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// scalar renders a JSON string, number or null as text.
func scalar(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		return "", nil
	case raw[0] == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported value %s", raw)
	}
}
