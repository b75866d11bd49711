package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/pacebot/internal/application/monitor"
)

func runBackfill(ctx context.Context, m *monitor.Engine, days int) {
	slog.Info("=== BACKFILL MODE: settle finished games from the poll log ===", "days", days)

	to := time.Now().UTC()
	rep, err := m.Backfill(ctx, to.AddDate(0, 0, -days), to)
	if err != nil {
		slog.Error("backfill failed", "err", err)
		os.Exit(1)
	}

	fmt.Printf("\n── BACKFILL ──\n")
	fmt.Printf("  Candidates: %d\n", rep.Candidates)
	fmt.Printf("  Settled:    %d\n", rep.Settled)
	fmt.Printf("  Skipped:    %d (final not confirmed or summary unavailable)\n\n", rep.Skipped)

	slog.Info("backfill complete", "settled", rep.Settled, "skipped", rep.Skipped)
}
