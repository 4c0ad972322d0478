package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"strategy-validator/internal/cache"
	"strategy-validator/internal/decision"
	"strategy-validator/internal/domain"
	"strategy-validator/internal/ingest"
	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/recommend"
	"strategy-validator/internal/walkforward"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// EvaluateRequest runs the full pipeline. Zero-valued optional fields fall
// back to the server configuration.
type EvaluateRequest struct {
	Trades           json.RawMessage `json:"trades"`
	WalkForwardScore *float64        `json:"walk_forward_score,omitempty"`
	TrainRatio       *float64        `json:"train_ratio,omitempty"`
	RollingWindows   *int            `json:"rolling_windows,omitempty"`
}

// WalkForwardRequest runs a single walk-forward judgment.
type WalkForwardRequest struct {
	Trades     json.RawMessage `json:"trades"`
	TrainRatio *float64        `json:"train_ratio,omitempty"`
}

// RollingRequest runs a rolling walk-forward.
type RollingRequest struct {
	Trades  json.RawMessage `json:"trades"`
	Windows int             `json:"windows"`
}

// RecommendRequest carries precomputed inputs for the recommendation rule.
// Win rate and total return are percent.
type RecommendRequest struct {
	WinRate          float64  `json:"win_rate"`
	TotalReturn      float64  `json:"total_return"`
	Decision         string   `json:"decision"`
	WalkForwardScore *float64 `json:"walk_forward_score"`
	Sharpe           *float64 `json:"sharpe"`
}

// InvalidateResponse reports how many cached reports were dropped.
type InvalidateResponse struct {
	TableHash string `json:"table_hash"`
	Removed   int    `json:"removed"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"cache":  s.cfg.Cache.Backend(),
	})
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if !s.decode(w, r, &req) {
		return
	}
	tt, ok := s.table(w, r, req.Trades)
	if !ok {
		return
	}

	opts := s.cfg.Options
	if req.WalkForwardScore != nil {
		opts.WalkForwardScore = req.WalkForwardScore
	}
	if req.TrainRatio != nil {
		opts.TrainRatio = *req.TrainRatio
	}
	if req.RollingWindows != nil {
		opts.RollingWindows = *req.RollingWindows
	}

	report, err := s.newPipeline(opts).Run(r.Context(), tt)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

func (s *Server) walkForward(w http.ResponseWriter, r *http.Request) {
	var req WalkForwardRequest
	if !s.decode(w, r, &req) {
		return
	}
	tt, ok := s.table(w, r, req.Trades)
	if !ok {
		return
	}

	ratio := s.cfg.Options.TrainRatio
	if req.TrainRatio != nil {
		ratio = *req.TrainRatio
	}
	if ratio == 0 {
		ratio = walkforward.DefaultTrainRatio
	}
	res, err := pipeline.JudgeWalkForward(tt, ratio)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) rolling(w http.ResponseWriter, r *http.Request) {
	var req RollingRequest
	if !s.decode(w, r, &req) {
		return
	}
	tt, ok := s.table(w, r, req.Trades)
	if !ok {
		return
	}

	windows := req.Windows
	if windows == 0 {
		windows = s.cfg.Options.RollingWindows
	}
	res, err := pipeline.RollingWalkForward(tt, windows)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) recommend(w http.ResponseWriter, r *http.Request) {
	var req RecommendRequest
	if !s.decode(w, r, &req) {
		return
	}
	d := decision.Decision(req.Decision)
	switch d {
	case decision.DecisionGO, decision.DecisionConditionalGO, decision.DecisionNOGO:
	default:
		s.writeError(w, r, http.StatusBadRequest, "invalid_decision",
			fmt.Sprintf("decision must be one of %s, %s, %s", decision.DecisionGO, decision.DecisionConditionalGO, decision.DecisionNOGO))
		return
	}

	res := recommend.Decide(recommend.Input{
		WinRate:          req.WinRate,
		TotalReturn:      req.TotalReturn,
		Decision:         d,
		WalkForwardScore: req.WalkForwardScore,
		Sharpe:           req.Sharpe,
	})
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) invalidateCache(w http.ResponseWriter, r *http.Request) {
	hash := mux.Vars(r)["hash"]
	removed, err := s.newPipeline(s.cfg.Options).InvalidateTable(r.Context(), hash)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, InvalidateResponse{TableHash: hash, Removed: removed})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	s.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}

// decode reads the JSON body into v and writes an error response on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, http.StatusRequestEntityTooLarge, "body_too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.writeError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// table parses the canonical trade rows carried in a request.
func (s *Server) table(w http.ResponseWriter, r *http.Request, raw json.RawMessage) (*domain.TradeTable, bool) {
	if len(raw) == 0 {
		s.writeError(w, r, http.StatusBadRequest, "missing_trades", "trades is required")
		return nil, false
	}
	tt, err := ingest.Read(bytes.NewReader(raw), ingest.FormatJSON)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_trades", err.Error())
		return nil, false
	}
	return tt, true
}

// writeFailure maps a pipeline error to a status code.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, walkforward.ErrInvalidRatio),
		errors.Is(err, walkforward.ErrUnsupportedWindows),
		errors.Is(err, cache.ErrInvalidKey),
		errors.Is(err, domain.ErrEmptyTable):
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		s.cfg.Logger.Error().Err(err).Str("request_id", requestID(r)).Msg("request failed")
		s.writeError(w, r, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.cfg.Logger.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError writes standardized error response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:     http.StatusText(status),
		Message:   message,
		Code:      code,
		RequestID: requestID(r),
		Timestamp: time.Now().UTC(),
	})
}
