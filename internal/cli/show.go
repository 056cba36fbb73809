package cli

import (
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <lecture-id>",
	Short: "Show an ingested lecture record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lecture, err := svc.GetLecture(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printLecture(lecture)
		return nil
	},
}
