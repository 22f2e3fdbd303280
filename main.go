package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"commons/analytics"
	"commons/cache"
	"commons/config"
	"commons/handlers"
	"commons/logbuf"
	"commons/signals"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	level, err := logbuf.ParseLevel(cfg.LogLevel)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logs, err := logbuf.New(cfg.LogBuffer)
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := slog.New(logbuf.Fanout(
		logbuf.NewHandler(os.Stdout, level, true),
		logbuf.NewHandler(logs, level, false),
	))
	slog.SetDefault(logger)

	ctx, stop, err := signals.NotifyContext(context.Background())
	if err != nil {
		logger.Error("failed to install signal handlers", "error", err)
		os.Exit(1)
	}
	defer stop()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	redisClient, err := cache.NewRedisClient(pingCtx, cfg.RedisAddr, cfg.ResultTTL)
	cancel()
	if err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	logger.Info("connected to redis", "addr", cfg.RedisAddr)

	engine, err := analytics.NewEngine(analytics.EngineConfig{
		Workers:          cfg.Workers,
		QueueSize:        cfg.QueueSize,
		WindowSize:       cfg.WindowSize,
		AnomalyThreshold: cfg.AnomalyThreshold,
	}, redisClient, handlers.CountAnomaly, logger)
	if err != nil {
		logger.Error("failed to start analytics engine", "error", err)
		os.Exit(1)
	}

	r := mux.NewRouter()
	handlers.NewSampleHandler(redisClient, engine, logs, logger).Register(r)

	srv := &http.Server{
		Addr:           cfg.HTTPAddr,
		Handler:        r,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}
	engine.Close()

	logger.Info("server exited")
}
