package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lectio/lectio/internal/server"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve exposes the pipeline over HTTP: upload, ingest, analyze, and a
websocket progress feed for running ingests.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (default from LECTIO_SERVER_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	port := servePort
	if port == "" {
		port = cfg.ServerPort
	}

	httpServer := server.New(svc, logger).HTTPServer(port)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-cmd.Context().Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
