// Package main implements the entry point for the PostureCoach backend.
// PostureCoach analyzes live exercise video over WebSocket and streams
// posture feedback back to the client.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/SuyashBhavalkar3/posturecoach/auth"
	"github.com/SuyashBhavalkar3/posturecoach/config"
	"github.com/SuyashBhavalkar3/posturecoach/metric"
	"github.com/SuyashBhavalkar3/posturecoach/pose"
	"github.com/SuyashBhavalkar3/posturecoach/server"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "posturecoach"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	metricsRegistry := metric.NewMetricsRegistry()
	metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)

	estimator, err := pose.NewRemoteEstimator(cfg.Estimator.URL, cfg.Estimator.Timeout.Std())
	if err != nil {
		return fmt.Errorf("create pose estimator: %w", err)
	}

	authSvc, authCleanup, err := setupAuth(cfg.Auth, logger)
	if err != nil {
		return err
	}
	if authCleanup != nil {
		defer authCleanup()
	}

	srv, err := server.New(server.Options{
		Config:      cfg.Server,
		Pipeline:    cfg.Pipeline,
		Estimator:   estimator,
		AuthService: authSvc,
		Metrics:     metricsRegistry.Metrics,
		Registry:    metricsRegistry,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	return runWithSignalHandling(srv, metricsServer, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting PostureCoach (exercise posture feedback)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// setupAuth builds the optional identity subsystem. The returned cleanup
// closes the user store; it is nil when auth is disabled.
func setupAuth(cfg config.AuthConfig, logger *slog.Logger) (*auth.Service, func(), error) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	secret := os.Getenv(cfg.SecretEnv)
	if secret == "" {
		return nil, nil, fmt.Errorf("auth enabled but %s is not set", cfg.SecretEnv)
	}

	store, err := auth.OpenStore(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open user store: %w", err)
	}

	tokens, err := auth.NewTokenIssuer([]byte(secret), cfg.TokenTTL.Std())
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("create token issuer: %w", err)
	}

	slog.Info("Auth subsystem enabled", "db_path", cfg.DBPath, "token_ttl", cfg.TokenTTL.Std())
	return auth.NewService(store, tokens, logger), func() { _ = store.Close() }, nil
}

// runWithSignalHandling starts the servers and blocks until a shutdown
// signal arrives, then stops everything within shutdownTimeout.
func runWithSignalHandling(srv *server.Server, metricsServer *metric.Server, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := srv.Start(signalCtx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	go func() {
		if err := metricsServer.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()

	slog.Info("PostureCoach started successfully",
		"metrics_addr", metricsServer.Address())

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := metricsServer.Stop(); err != nil {
		slog.Error("Error stopping metrics server", "error", err)
	}
	if err := srv.Stop(shutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("PostureCoach shutdown complete")
	return nil
}
