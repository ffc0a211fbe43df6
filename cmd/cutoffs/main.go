package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"schoolcutoffs/cmd/cutoffs/commands"
	"schoolcutoffs/internal/components/telemetry"
	"schoolcutoffs/pkg/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext(context.Background())
	defer stop()

	otel, err := telemetry.SetupFromEnv(ctx, "cutoffs")
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		slog.Warn("failed to setup otel telemetry", "err", err)
	default:
		telemetry.InstrumentPerfStats(ctx)
	}

	err = commands.ExecuteContext(ctx)
	otel.Shutdown(context.Background())
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
