package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/domain"
)

const sampleCSV = "\ufeffid,direction,entry_time,exit_time,entry_price,exit_price,return_pct,cumulative_pct,runup_pct,drawdown_pct,signal\n" +
	"2,SHORT,2024-01-02 09:00,2024-01-02 15:30,100,98,2.0,3.5,2.5,-0.4,tp\n" +
	"1,long,2024-01-01T09:00:00Z,2024-01-01T12:00:00Z,,,1.5,1.5,,,\n" +
	",,,,,,,,,,\n"

func TestReadCSV(t *testing.T) {
	trades, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	short := trades[0]
	assert.Equal(t, int64(2), short.ID)
	assert.Equal(t, domain.DirectionShort, short.Direction)
	assert.Equal(t, time.Date(2024, 1, 2, 15, 30, 0, 0, time.UTC), short.ExitTime)
	assert.True(t, short.EntryPrice.Equal(decimal.NewFromInt(100)))
	assert.InDelta(t, 2.0, short.ReturnPct, 1e-12)
	require.NotNil(t, short.DrawdownPct)
	assert.InDelta(t, -0.4, *short.DrawdownPct, 1e-12)

	pr, ok := short.PriceReturnPct()
	require.True(t, ok)
	assert.InDelta(t, 2.0, pr, 1e-12)

	long := trades[1]
	assert.Equal(t, domain.DirectionLong, long.Direction)
	assert.True(t, long.EntryPrice.IsZero())
	assert.Nil(t, long.RunupPct)
	require.NotNil(t, long.CumulativePct)
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrMissingColumn},
		{"missing return", "id,entry_time,exit_time\n1,2024-01-01,2024-01-02\n", ErrMissingColumn},
		{"bad id", "id,entry_time,exit_time,return_pct\nx,2024-01-01,2024-01-02,1\n", ErrInvalidRow},
		{"bad time", "id,entry_time,exit_time,return_pct\n1,01/02/2024,2024-01-02,1\n", ErrInvalidRow},
		{"bad return", "id,entry_time,exit_time,return_pct\n1,2024-01-01,2024-01-02,abc\n", ErrInvalidRow},
		{"bad direction", "id,direction,entry_time,exit_time,return_pct\n1,flat,2024-01-01,2024-01-02,1\n", ErrInvalidRow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadJSON(t *testing.T) {
	input := `[
		{"id": 1, "entry_time": "2024-01-01", "exit_time": "2024-01-01 06:00", "return_pct": -1.25, "runup_pct": null},
		{"id": "2", "direction": "SHORT", "entry_time": "2024-01-02", "exit_time": "2024-01-03", "return_pct": "0.5", "entry_price": "1.2345"}
	]`
	trades, err := ReadJSON(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.InDelta(t, -1.25, trades[0].ReturnPct, 1e-12)
	assert.Nil(t, trades[0].RunupPct)
	assert.Equal(t, domain.DirectionShort, trades[1].Direction)
	assert.Equal(t, "1.2345", trades[1].EntryPrice.String())

	env := `{"trades": [{"id": 7, "entry_time": "2024-01-01", "exit_time": "2024-01-02", "return_pct": 3}]}`
	trades, err = ReadJSON(strings.NewReader(env))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, int64(7), trades[0].ID)
}

func TestReadJSON_Errors(t *testing.T) {
	_, err := ReadJSON(strings.NewReader(`[{"id": 1, "entry_time": "2024-01-01", "exit_time": "2024-01-02"}]`))
	assert.ErrorIs(t, err, ErrMissingColumn)

	_, err = ReadJSON(strings.NewReader(`[{"id": 1, "entry_time": "2024-01-01", "exit_time": "2024-01-02", "return_pct": true}]`))
	assert.ErrorIs(t, err, ErrInvalidRow)

	_, err = ReadJSON(strings.NewReader(`not json`))
	assert.ErrorIs(t, err, ErrInvalidRow)
}

func TestRead_BuildsSortedTable(t *testing.T) {
	tt, err := Read(strings.NewReader(sampleCSV), "CSV")
	require.NoError(t, err)
	require.Equal(t, 2, tt.Len())
	assert.Equal(t, int64(1), tt.Trades()[0].ID, "sorted by exit time")

	_, err = Read(strings.NewReader(sampleCSV), "xlsx")
	assert.ErrorIs(t, err, ErrUnknownFormat)

	dup := "id,entry_time,exit_time,return_pct\n1,2024-01-01,2024-01-02,1\n1,2024-01-03,2024-01-04,1\n"
	_, err = Read(strings.NewReader(dup), FormatCSV)
	assert.ErrorIs(t, err, domain.ErrDuplicateID)
}

func TestReadFile_FormatFromExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	tt, err := ReadFile(path, "")
	require.NoError(t, err)
	assert.Equal(t, 2, tt.Len())

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.Error(t, err)
}
