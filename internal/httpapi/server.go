// Package httpapi exposes the validation pipeline over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"strategy-validator/internal/cache"
	"strategy-validator/internal/observability"
	"strategy-validator/internal/pipeline"
	"strategy-validator/internal/portfolio"
)

// DefaultMaxBodyBytes caps request bodies when Config.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 32 << 20

type ctxKey int

const requestIDKey ctxKey = iota

// Config holds what the handlers need to build a pipeline per request.
type Config struct {
	Options      pipeline.Options
	Cache        cache.Cache
	Provider     portfolio.Provider
	Logger       zerolog.Logger
	MaxBodyBytes int64
	Clock        func() time.Time
}

// Server routes the validation API.
type Server struct {
	router *mux.Router
	cfg    Config
}

// NewServer creates a Server with all routes registered.
func NewServer(cfg Config) *Server {
	if cfg.Cache == nil {
		cfg.Cache = cache.Noop{}
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	s := &Server{
		router: mux.NewRouter(),
		cfg:    cfg,
	}
	s.setupRoutes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)

	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.Handle("/metrics", observability.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/v1").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)
	api.Use(s.bodyLimitMiddleware)

	api.HandleFunc("/evaluate", s.evaluate).Methods(http.MethodPost)
	api.HandleFunc("/walkforward", s.walkForward).Methods(http.MethodPost)
	api.HandleFunc("/walkforward/rolling", s.rolling).Methods(http.MethodPost)
	api.HandleFunc("/recommend", s.recommend).Methods(http.MethodPost)
	api.HandleFunc("/cache/{hash}", s.invalidateCache).Methods(http.MethodDelete)

	s.router.NotFoundHandler = http.HandlerFunc(s.notFound)
}

func (s *Server) newPipeline(opts pipeline.Options) *pipeline.Pipeline {
	p := pipeline.New(opts).
		WithCache(s.cfg.Cache).
		WithProvider(s.cfg.Provider).
		WithLogger(s.cfg.Logger)
	if s.cfg.Clock != nil {
		p = p.WithClock(s.cfg.Clock)
	}
	return p
}

// requestIDMiddleware adds a unique request ID to each request.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLoggingMiddleware logs each request and records its metrics under
// the route template.
func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		d := time.Since(start)
		observability.RecordHTTPRequest(route, wrapper.statusCode, d)
		s.cfg.Logger.Info().
			Str("request_id", requestID(r)).
			Str("method", r.Method).
			Str("route", route).
			Int("status", wrapper.statusCode).
			Dur("duration", d).
			Msg("request")
	})
}

// jsonContentTypeMiddleware sets JSON content type for API responses.
func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) bodyLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// responseWrapper captures HTTP status codes for logging.
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
