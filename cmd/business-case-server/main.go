package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/business-case/internal/logging"
	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/montecarlo"
	"github.com/iwvelando/business-case/internal/server"
	"github.com/iwvelando/business-case/internal/session"
	"github.com/iwvelando/business-case/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	address := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *address != "" {
		cfg.Address = *address
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	runner, err := montecarlo.NewRunner(logger, cfg.Simulation.RunnerOptions()...)
	if err != nil {
		logger.Fatal("failed to create runner",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	handler, err := server.NewHandler(logger, server.Options{
		Runner:      runner,
		Session:     session.New(),
		Metrics:     metrics.NewRecorder(),
		MaxBodySize: cfg.BodySizeBytes(),
		Version:     version,
	})
	if err != nil {
		logger.Fatal("failed to create handler",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "main"),
			zap.String("address", cfg.Address),
			zap.Int("trials", runner.Trials()),
			zap.Int("workers", runner.Workers()),
			zap.String("version", version),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("op", "main"))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}
}
