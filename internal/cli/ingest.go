package cli

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/lectio/lectio/internal/models"
	"github.com/lectio/lectio/internal/service"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	ingestURL    string
	ingestFileID string
	ingestTitle  string
	ingestPlain  bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Process a lecture video into a searchable knowledge base",
	Long: `Ingest runs the full pipeline on one video: media extraction,
transcription, board change detection, OCR, and indexing.

Examples:
  lectio ingest --url https://example.com/lecture.mp4 --title "Graph Theory"
  lectio ingest --file-id upload-1712345678-ab12cd34e`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestURL, "url", "", "video URL to download and process")
	ingestCmd.Flags().StringVar(&ingestFileID, "file-id", "", "previously uploaded file id")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "lecture title")
	ingestCmd.Flags().BoolVar(&ingestPlain, "plain", false, "plain line output instead of the progress UI")
}

func runIngest(cmd *cobra.Command, args []string) error {
	req := service.IngestRequest{
		VideoURL: ingestURL,
		FileID:   ingestFileID,
		Title:    ingestTitle,
	}

	if ingestPlain || !term.IsTerminal(int(os.Stdout.Fd())) {
		return ingestPlainOutput(cmd, req)
	}
	return ingestWithProgressUI(cmd, req)
}

func ingestPlainOutput(cmd *cobra.Command, req service.IngestRequest) error {
	result, err := svc.Ingest(cmd.Context(), req, func(p service.Progress) {
		fmt.Printf("[%d/%d] %s: %s\n", p.Step, p.Total, p.Stage, p.Message)
	})
	if err != nil {
		return err
	}
	printIngestResult(result)
	return nil
}

func ingestWithProgressUI(cmd *cobra.Command, req service.IngestRequest) error {
	program := tea.NewProgram(newProgressModel())

	var result *service.IngestResult
	go func() {
		var err error
		result, err = svc.Ingest(cmd.Context(), req, func(p service.Progress) {
			program.Send(p)
		})
		program.Send(pipelineDoneMsg{err: err})
	}()

	finalModel, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok {
		if m.quitting {
			return fmt.Errorf("ingest aborted")
		}
		if m.err != nil {
			return m.err
		}
	}

	if result != nil {
		printIngestResult(result)
	}
	return nil
}

func printIngestResult(result *service.IngestResult) {
	lecture := result.Lecture
	fmt.Printf("\nLecture: %s\n", lecture.Title)
	fmt.Printf("  ID:           %s\n", lecture.ID)
	fmt.Printf("  Duration:     %s\n", models.ToTimecode(lecture.Duration))
	fmt.Printf("  Video:        %dx%d\n", lecture.Width, lecture.Height)
	fmt.Printf("  Segments:     %d\n", result.Segments)
	fmt.Printf("  Board events: %d\n", result.BoardEvents)
	fmt.Printf("  Board texts:  %d\n", result.OCRTexts)
	fmt.Printf("\nAsk questions with: lectio analyze %s \"your question\"\n", lecture.ID)
}
