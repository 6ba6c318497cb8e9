package cli

import (
	"github.com/spf13/cobra"
)

var planPeriodDays int

var planDailyCmd = &cobra.Command{
	Use:   "plan-daily",
	Short: "Create today's study plan from due quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		pl, err := app.planner()
		if err != nil {
			return err
		}
		return pl.PlanDaily(cmd.Context())
	},
}

var planPeriodCmd = &cobra.Command{
	Use:   "plan-period",
	Short: "Create study plans for the next N days",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		pl, err := app.planner()
		if err != nil {
			return err
		}
		return pl.PlanPeriod(cmd.Context(), planPeriodDays)
	},
}

func init() {
	planPeriodCmd.Flags().IntVar(&planPeriodDays, "days", 7, "number of days to plan")
	rootCmd.AddCommand(planDailyCmd)
	rootCmd.AddCommand(planPeriodCmd)
}
