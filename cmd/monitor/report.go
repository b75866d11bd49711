package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/alejandrodnm/pacebot/config"
	"github.com/alejandrodnm/pacebot/internal/adapters/notify"
	"github.com/alejandrodnm/pacebot/internal/application/analyzer"
	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/alejandrodnm/pacebot/internal/ports"
)

func runReport(ctx context.Context, store ports.Storage, console *notify.Console, cfg *config.Config, kind string, days int, dateStr string) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)

	switch kind {
	case "threshold":
		runThresholdReport(ctx, store, console, cfg, from, to)
	case "daily":
		runDailyReport(ctx, store, console, dateStr)
	case "performance":
		runPerformanceReport(ctx, store, console, from, to)
	case "verify":
		runVerifyReport(ctx, store, from, to)
	default:
		slog.Error("unknown report", "kind", kind, "want", "threshold|daily|performance|verify")
		os.Exit(1)
	}
}

func runThresholdReport(ctx context.Context, store ports.Storage, console *notify.Console, cfg *config.Config, from, to time.Time) {
	polls, err := store.GetPolls(ctx, from, to)
	if err != nil {
		slog.Error("failed to load polls", "err", err)
		os.Exit(1)
	}
	results, err := store.GetResults(ctx, from, to)
	if err != nil {
		slog.Error("failed to load results", "err", err)
		os.Exit(1)
	}

	sweepCfg := analyzer.Config{
		Min:       cfg.Analyzer.SweepMin,
		Max:       cfg.Analyzer.SweepMax,
		Step:      cfg.Analyzer.SweepStep,
		MinSample: cfg.Analyzer.MinSample,
	}

	slog.Info("running threshold sweep",
		"polls", len(polls),
		"results", len(results),
		"range", fmt.Sprintf("%.1f-%.1f step %.1f", sweepCfg.Min, sweepCfg.Max, sweepCfg.Step),
	)

	buckets, rec, err := analyzer.Sweep(ctx, sweepCfg, polls, results)
	if err != nil {
		slog.Error("threshold sweep failed", "err", err)
		os.Exit(1)
	}
	console.PrintSweep(buckets, rec, sweepCfg.MinSample)
}

func runDailyReport(ctx context.Context, store ports.Storage, console *notify.Console, dateStr string) {
	date := time.Now().UTC()
	if dateStr != "" {
		parsed, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			slog.Error("invalid -date, want YYYY-MM-DD", "date", dateStr, "err", err)
			os.Exit(1)
		}
		date = parsed
	}

	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	polls, err := store.GetPolls(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		slog.Error("failed to load polls", "err", err)
		os.Exit(1)
	}
	console.PrintDailySummary(analyzer.Summarize(date, polls))
}

func runPerformanceReport(ctx context.Context, store ports.Storage, console *notify.Console, from, to time.Time) {
	results, err := store.GetResults(ctx, from, to)
	if err != nil {
		slog.Error("failed to load results", "err", err)
		os.Exit(1)
	}
	console.PrintPerformance(analyzer.Performance(results))
}

// runVerifyReport recomputa la liquidación de cada resultado guardado a
// partir de los marcadores persistidos y marca las discrepancias.
func runVerifyReport(ctx context.Context, store ports.Storage, from, to time.Time) {
	results, err := store.GetResults(ctx, from, to)
	if err != nil {
		slog.Error("failed to load results", "err", err)
		os.Exit(1)
	}

	if len(results) == 0 {
		fmt.Println("\n  No stored results in range.")
		return
	}

	fmt.Printf("\n── RESULT VERIFICATION (%d games) ──\n", len(results))
	fmt.Printf("  %-10s %-30s %5s %6s %-5s %-5s %s\n", "DATE", "GAME", "FINAL", "LINE", "O/U", "BET", "CHECK")

	mismatches := 0
	for _, r := range results {
		check := "ok"
		switch {
		case r.Line <= 0:
			check = "no line"
		default:
			trig := domain.TriggerState{
				Triggered: r.Triggered,
				Side:      r.TriggerSide,
				MaxUnits:  r.MaxUnits,
			}
			s, err := domain.ResolveOutcome(r.FinalHomeScore, r.FinalAwayScore, r.Line, trig)
			switch {
			case err != nil:
				check = "error: " + err.Error()
				mismatches++
			case s.OUResult != r.OUResult || s.Outcome != r.Outcome:
				check = fmt.Sprintf("MISMATCH stored %s/%s, recomputed %s/%s",
					r.OUResult, r.Outcome, s.OUResult, s.Outcome)
				mismatches++
			}
		}

		bet := "-"
		if r.Triggered {
			bet = string(r.TriggerSide)
		}
		fmt.Printf("  %-10s %-30s %5d %6.1f %-5s %-5s %s\n",
			r.Date, truncateMatchup(r.AwayTeam+" @ "+r.HomeTeam, 30),
			r.FinalTotal, r.Line, string(r.OUResult), bet, check)
	}

	if mismatches == 0 {
		fmt.Printf("\n  All settlements verified clean.\n\n")
	} else {
		fmt.Printf("\n  %d game(s) need attention.\n\n", mismatches)
	}
}

func truncateMatchup(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
