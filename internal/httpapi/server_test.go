package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy-validator/internal/analysis"
	"strategy-validator/internal/cache"
	"strategy-validator/internal/domain/domaintest"
	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/reporting"
	"strategy-validator/internal/walkforward"
)

var fixedTime = time.Date(2025, 1, 4, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mem cache.Cache) *Server {
	t.Helper()
	params := analysis.DefaultParams()
	params.BootstrapIterations = 200
	return NewServer(Config{
		Options: pipeline.Options{
			Params:         params,
			TrainRatio:     walkforward.DefaultTrainRatio,
			RollingWindows: 3,
		},
		Cache:  mem,
		Logger: zerolog.Nop(),
		Clock:  func() time.Time { return fixedTime },
	})
}

// tradesJSON renders canonical trade rows, one per day.
func tradesJSON(returns ...float64) json.RawMessage {
	rows := make([]map[string]any, 0, len(returns))
	for i, r := range returns {
		entry := domaintest.Epoch.Add(time.Duration(i) * 24 * time.Hour)
		rows = append(rows, map[string]any{
			"id":         i + 1,
			"entry_time": entry.Format(time.RFC3339),
			"exit_time":  entry.Add(6 * time.Hour).Format(time.RFC3339),
			"return_pct": r,
		})
	}
	data, _ := json.Marshal(rows)
	return data
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/v1/evaluate", EvaluateRequest{
		Trades: tradesJSON(domaintest.Repeat(20, 3, -1, 2)...),
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report reporting.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 60, report.ExecutiveSummary.TotalTrades)
	assert.NotNil(t, report.WalkForward)
	assert.NotNil(t, report.Rolling)
	assert.NotEmpty(t, report.ExecutiveSummary.Recommendation)
}

func TestEvaluate_BadInput(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "malformed json", body: `{"trades":`, code: http.StatusBadRequest},
		{name: "missing trades", body: `{}`, code: http.StatusBadRequest},
		{name: "missing column", body: `{"trades":[{"id":1,"entry_time":"2024-01-01"}]}`, code: http.StatusBadRequest},
		{name: "unsupported windows", body: fmt.Sprintf(`{"trades":%s,"rolling_windows":9}`, tradesJSON(1, 2, -1)), code: http.StatusBadRequest},
		{name: "invalid ratio", body: fmt.Sprintf(`{"trades":%s,"train_ratio":1.5}`, tradesJSON(1, 2, -1)), code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/evaluate", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code, rec.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Code)
			assert.NotEmpty(t, resp.RequestID)
		})
	}
}

func TestEvaluate_BodyTooLarge(t *testing.T) {
	s := newTestServer(t, nil)
	s.cfg.MaxBodyBytes = 64

	rec := do(t, s, http.MethodPost, "/v1/evaluate", EvaluateRequest{
		Trades: tradesJSON(domaintest.Repeat(10, 1, -1)...),
	})
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestWalkForward(t *testing.T) {
	ratio := 0.5
	rec := do(t, newTestServer(t, nil), http.MethodPost, "/v1/walkforward", WalkForwardRequest{
		Trades:     tradesJSON(1, 2, -1, 3, 1, -2, 2, 1, -1, 2),
		TrainRatio: &ratio,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res walkforward.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 5, res.SplitIndex)
	assert.Equal(t, 5, res.Train.TotalTrades)
	assert.Equal(t, 5, res.Test.TotalTrades)
}

func TestRolling(t *testing.T) {
	s := newTestServer(t, nil)
	rec := do(t, s, http.MethodPost, "/v1/walkforward/rolling", RollingRequest{
		Trades:  tradesJSON(domaintest.Repeat(20, 3, -1, 2)...),
		Windows: 4,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res walkforward.RollingResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 4, res.Windows)
	assert.Len(t, res.Results, 4)
}

func TestRecommend(t *testing.T) {
	s := newTestServer(t, nil)
	wf, sharpe := 75.0, 1.2
	rec := do(t, s, http.MethodPost, "/v1/recommend", RecommendRequest{
		WinRate:          82,
		TotalReturn:      45,
		Decision:         "GO",
		WalkForwardScore: &wf,
		Sharpe:           &sharpe,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res recommend.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, recommend.AllPass, res.Outcome)

	rec = do(t, s, http.MethodPost, "/v1/recommend", RecommendRequest{Decision: "MAYBE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvalidateCache(t *testing.T) {
	mem := cache.NewMemory(time.Hour)
	s := newTestServer(t, mem)
	trades := tradesJSON(domaintest.Repeat(20, 3, -1, 2)...)

	rec := do(t, s, http.MethodPost, "/v1/evaluate", EvaluateRequest{Trades: trades})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, 1, mem.Len())

	var report reporting.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	rec = do(t, s, http.MethodDelete, "/v1/cache/"+report.Reproducibility.TableHash, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp InvalidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Removed)
	assert.Zero(t, mem.Len())
}

func TestNotFound(t *testing.T) {
	rec := do(t, newTestServer(t, nil), http.MethodGet, "/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "endpoint_not_found")
}
