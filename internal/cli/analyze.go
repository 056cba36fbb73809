package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <lecture-id> <query>",
	Short: "Ask a question about an ingested lecture",
	Long: `Analyze answers a free-text question against an ingested lecture and
cites the moments in the video where the answer was said or written.

Examples:
  lectio analyze 4f7c2a "What is memoization?"
  lectio analyze 4f7c2a "Explain the main equation on the board"`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	analysis, err := svc.Analyze(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	theme := defaultTheme

	fmt.Println(analysis.Answer)

	if len(analysis.Links) > 0 {
		fmt.Println("\n" + theme.statusStyle().Render("Jump to:"))
		for _, link := range analysis.Links {
			fmt.Printf("  [%s] (%s) %s\n", link.Timecode, link.Type, link.Text)
		}
	}

	if len(analysis.Flashcards) > 0 {
		fmt.Println("\n" + theme.statusStyle().Render("Flashcards:"))
		for _, card := range analysis.Flashcards {
			fmt.Printf("  Q: %s\n  A: %s\n", card.Question, card.Answer)
		}
	}

	if analysis.Summary != "" {
		fmt.Println("\n" + theme.hintStyle().Render(analysis.Summary))
	}
	return nil
}
