// Package main provides the HTTP server for the Lectio pipeline.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/server"
	"github.com/lectio/lectio/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger, closeLogger := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer closeLogger()
	slog.SetDefault(logger)

	slog.Info("starting lectio-server", "port", cfg.ServerPort)

	initCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	svc, err := service.New(initCtx, cfg, logger)
	cancel()
	if err != nil {
		slog.Error("failed to initialize service", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := svc.Close(); err != nil {
			slog.Error("failed to close service", "error", err)
		}
	}()

	httpServer := server.New(svc, logger).HTTPServer(cfg.ServerPort)

	go func() {
		slog.Info("API available", "url", fmt.Sprintf("http://localhost:%s/api/", cfg.ServerPort))
		slog.Info("progress feed available", "url", fmt.Sprintf("ws://localhost:%s/ws/ingest/{id}", cfg.ServerPort))

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
