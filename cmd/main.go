/*
Package main is the entry point for the pairup server.

It loads configuration, initializes the global logger, starts the matchmaking hub and the
optional match history writer, serves HTTP and WebSocket traffic, and shuts everything down
in order on SIGINT or SIGTERM.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pairup/internal/app/history"
	"pairup/internal/app/match"
	"pairup/internal/app/session"
	"pairup/internal/configs"
	"pairup/internal/handler"
	"pairup/internal/pkg/logx"
	"pairup/internal/pkg/pow"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logx.InitGlobalLogger(cfg.IsDevelopment())
	for _, warning := range cfg.Warnings {
		logx.Warn(warning)
	}
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Dur("max_wait", cfg.MaxWait).
		Dur("sweep_interval", cfg.SweepInterval).
		Int("pow_difficulty", cfg.PowDifficulty).
		Bool("history_enabled", cfg.DatabaseDSN != "").
		Msg("Configuration loaded successfully")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hubOpts := []match.Option{}

	var recorder *history.Recorder
	if cfg.DatabaseDSN != "" {
		pool, err := history.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			logx.Fatal(err, "Failed to initialize match history database")
		}
		recorder = history.NewRecorder(history.NewPostgresStore(pool), history.DefaultBufferSize)
		hubOpts = append(hubOpts, match.WithHistory(recorder))
	}

	hub := match.NewHub(match.HubConfig{
		MaxWait:       cfg.MaxWait,
		SweepInterval: cfg.SweepInterval,
	}, hubOpts...)

	powManager := pow.NewManager(cfg.PowDifficulty)
	clients := session.NewPool()

	deps := &handler.AppDeps{
		Hub:     hub,
		Clients: clients,
		Pow:     powManager,
		Config:  cfg,
	}

	router, stopRouter := handler.Router(deps)

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("pairup server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "Server forced to shutdown")
	}

	// Hijacked WebSocket connections are not covered by server.Shutdown.
	closed := clients.CloseAll()
	logx.Info("Closed WebSocket connections", "count", closed)

	hub.Stop()
	stopRouter()
	powManager.Stop()
	if recorder != nil {
		recorder.Close()
	}

	logx.Info("Server gracefully stopped.")
}
