package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quant_dashboard/internal/platform/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(config.LoadServer()).ExecuteContext(ctx); err != nil {
		slog.Error("ingest failed", "error", err)
		os.Exit(1)
	}
}
