package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/studyloop/studyloop/internal/snapshot"
)

var syncDump bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Refresh the collection catalog from the workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cfg)
		if err != nil {
			return err
		}
		snap := app.snapshotter()

		cat, err := snap.SyncCatalog(cmd.Context(), cfg.CatalogPath())
		if err != nil {
			return err
		}
		slog.Info("catalog synced", "path", cfg.CatalogPath(), "collections", len(cat))

		if !syncDump {
			return nil
		}
		paths := snap.DumpAll(cmd.Context(), cat)
		slog.Info("collections dumped", "count", len(paths))

		models, err := snapshot.ExtractModels(cfg.Data.Dir, cfg.Data.ModelDir)
		if err != nil {
			return err
		}
		slog.Info("property models extracted", "count", models)
		return nil
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncDump, "dump", false, "also dump every collection and extract property models")
	rootCmd.AddCommand(syncCmd)
}
