package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <video-file>",
	Short: "Upload a video file for later ingestion",
	Args:  cobra.ExactArgs(1),
	RunE:  runUpload,
}

func runUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open video: %w", err)
	}
	defer f.Close()

	result, err := svc.Upload(cmd.Context(), f)
	if err != nil {
		return err
	}

	fmt.Printf("Uploaded %s (%d bytes)\n", args[0], result.Size)
	fmt.Printf("File ID: %s\n", result.FileID)
	fmt.Printf("\nProcess it with: lectio ingest --file-id %s\n", result.FileID)
	return nil
}
