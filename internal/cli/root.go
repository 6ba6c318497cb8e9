// Package cli defines the studyloop command tree.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/platform/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "studyloop",
	Short:         "Spaced-repetition study planning over a workspace",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree against the given configuration.
func Execute(ctx context.Context, c *config.Config) error {
	cfg = c
	return rootCmd.ExecuteContext(ctx)
}
