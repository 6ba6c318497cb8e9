package cli

import (
	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/snapshot"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export <collection-title>",
	Short: "Export a collection to an xlsx workbook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		cat, err := app.catalog()
		if err != nil {
			return err
		}
		id, err := cat.IDFor(args[0])
		if err != nil {
			return err
		}

		title, records, err := app.snapshotter().FetchParsed(cmd.Context(), id)
		if err != nil {
			return err
		}
		out := exportOut
		if out == "" {
			out = title + ".xlsx"
		}
		return snapshot.ExportWorkbook(records, title, out)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file path (default <title>.xlsx)")
	rootCmd.AddCommand(exportCmd)
}
