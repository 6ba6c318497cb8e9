package cli

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var updateQuizCmd = &cobra.Command{
	Use:   "update-quiz <review-log-id>",
	Short: "Reschedule a quiz from one review log record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		up, err := app.updater()
		if err != nil {
			return err
		}
		return up.UpdateQuizSchedule(cmd.Context(), args[0])
	},
}

var processReviewsCmd = &cobra.Command{
	Use:   "process-reviews",
	Short: "Grade and reschedule all pending review logs",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		up, err := app.updater()
		if err != nil {
			return err
		}
		processed, err := up.ProcessReviews(cmd.Context())
		if err != nil {
			return err
		}
		slog.Info("review processing finished", "processed", processed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(updateQuizCmd)
	rootCmd.AddCommand(processReviewsCmd)
}
