// Package cli provides the command-line interface for Lectio.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/lectio/lectio/internal/config"
	"github.com/lectio/lectio/internal/service"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Initialized by PersistentPreRunE for all commands that need them.
	cfg         config.Config
	logger      *slog.Logger
	svc         *service.Service
	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lectio",
	Short: "Turn lecture videos into a searchable knowledge base",
	Long: `Lectio ingests a recorded lecture video and produces a searchable,
timestamp-grounded knowledge base. It extracts the audio and per-second
frames, builds a transcript, detects whiteboard/blackboard changes, runs OCR
on the board, and indexes everything so questions can be answered with
citations back to the exact moment in the video.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.LogLevel)

		svc, err = service.New(cmd.Context(), cfg, logger)
		if err != nil {
			return fmt.Errorf("initialize service: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if svc != nil {
			if err := svc.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close service: %v\n", err)
			}
		}
		if closeLogger != nil {
			_ = closeLogger()
		}
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
