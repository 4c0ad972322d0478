package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"strategy-validator/internal/domain"
)

// parseRecord builds a trade from one row. get returns the trimmed cell for
// a column, or "" when the column is absent or blank.
func parseRecord(row int, get func(col string) string) (domain.Trade, error) {
	var t domain.Trade

	id, err := strconv.ParseInt(get(ColID), 10, 64)
	if err != nil {
		return t, rowErr(row, ColID, err)
	}
	t.ID = id

	switch dir := strings.ToUpper(get(ColDirection)); dir {
	case "", string(domain.DirectionLong):
		t.Direction = domain.DirectionLong
	case string(domain.DirectionShort):
		t.Direction = domain.DirectionShort
	default:
		return t, rowErr(row, ColDirection, fmt.Errorf("unknown direction %q", dir))
	}

	if t.EntryTime, err = parseTime(get(ColEntryTime)); err != nil {
		return t, rowErr(row, ColEntryTime, err)
	}
	if t.ExitTime, err = parseTime(get(ColExitTime)); err != nil {
		return t, rowErr(row, ColExitTime, err)
	}

	if t.EntryPrice, err = optionalDecimal(get(ColEntryPrice)); err != nil {
		return t, rowErr(row, ColEntryPrice, err)
	}
	if t.ExitPrice, err = optionalDecimal(get(ColExitPrice)); err != nil {
		return t, rowErr(row, ColExitPrice, err)
	}

	ret, err := decimal.NewFromString(get(ColReturnPct))
	if err != nil {
		return t, rowErr(row, ColReturnPct, err)
	}
	t.ReturnPct = ret.InexactFloat64()

	if t.CumulativePct, err = optionalPct(get(ColCumulativePct)); err != nil {
		return t, rowErr(row, ColCumulativePct, err)
	}
	if t.RunupPct, err = optionalPct(get(ColRunupPct)); err != nil {
		return t, rowErr(row, ColRunupPct, err)
	}
	if t.DrawdownPct, err = optionalPct(get(ColDrawdownPct)); err != nil {
		return t, rowErr(row, ColDrawdownPct, err)
	}
	return t, nil
}

func optionalDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}

func optionalPct(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	v := d.InexactFloat64()
	return &v, nil
}

func rowErr(row int, col string, err error) error {
	return fmt.Errorf("%w: row %d column %s: %v", ErrInvalidRow, row, col, err)
}

func missing(present func(col string) bool) error {
	var absent []string
	for _, c := range RequiredColumns {
		if !present(c) {
			absent = append(absent, c)
		}
	}
	if len(absent) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(absent, ", "))
	}
	return nil
}
