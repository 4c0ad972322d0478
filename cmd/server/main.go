// Package main runs the validation HTTP API:
// - POST /v1/evaluate, /v1/walkforward, /v1/walkforward/rolling, /v1/recommend
// - DELETE /v1/cache/{hash}
// - GET /health, /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"strategy-validator/internal/cache"
	"strategy-validator/internal/config"
	"strategy-validator/internal/httpapi"
	"strategy-validator/internal/observability"
	"strategy-validator/internal/pipeline"
)

const shutdownTimeout = 30 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("VALIDATOR_CONFIG"), "Path to YAML configuration file")
	envFile := flag.String("env-file", ".env", "Env file loaded before configuration")
	addr := flag.String("addr", "", "Listen address (overrides server.addr)")
	flag.Parse()

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Str("component", "server").Logger()

	if err := config.LoadEnvFiles(*envFile); err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load env file")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	logger, err := cfg.Log.NewLogger(os.Stderr)
	if err != nil {
		bootLogger.Fatal().Err(err).Msg("failed to build logger")
	}
	logger = logger.With().Str("component", "server").Logger()
	observability.Init(cfg.Metrics.Namespace)

	reportCache, err := cache.New(cfg.CacheOptions())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cache")
	}
	if closer, ok := reportCache.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	api := httpapi.NewServer(httpapi.Config{
		Options: pipeline.Options{
			Params:         cfg.Params(),
			Workers:        cfg.Evaluation.Workers,
			TrainRatio:     cfg.WalkForward.TrainRatio,
			RollingWindows: cfg.WalkForward.RollingWindows,
		},
		Cache:        reportCache,
		Provider:     cfg.Provider(logger),
		Logger:       logger,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}

	// Closed once in-flight requests have drained
	shutdownDone := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")

		// Wait for second signal for immediate shutdown
		go func() {
			select {
			case sig := <-sigCh:
				logger.Warn().Str("signal", sig.String()).Msg("second signal, forcing immediate shutdown")
				os.Exit(1)
			case <-shutdownDone:
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Dur("timeout", shutdownTimeout).Msg("graceful shutdown incomplete")
		}
		close(shutdownDone)
	}()

	logger.Info().
		Str("addr", cfg.Server.Addr).
		Str("cache", reportCache.Backend()).
		Msg("starting HTTP server")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("HTTP server error")
	}
	<-shutdownDone

	logger.Info().Msg("shutdown complete")
}
