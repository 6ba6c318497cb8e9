package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/studyloop/studyloop/internal/cli"
	"github.com/studyloop/studyloop/internal/platform/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(config.NewLogger(cfg.Log))

	// Commands abort cleanly on SIGTERM/SIGINT.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	if err := cli.Execute(ctx, cfg); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
