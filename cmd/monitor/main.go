package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/pacebot/config"
	"github.com/alejandrodnm/pacebot/internal/adapters/espn"
	"github.com/alejandrodnm/pacebot/internal/adapters/notify"
	"github.com/alejandrodnm/pacebot/internal/adapters/oddsapi"
	"github.com/alejandrodnm/pacebot/internal/adapters/publish"
	"github.com/alejandrodnm/pacebot/internal/adapters/stats"
	"github.com/alejandrodnm/pacebot/internal/adapters/storage"
	"github.com/alejandrodnm/pacebot/internal/application/monitor"
	"github.com/alejandrodnm/pacebot/internal/domain"
	"github.com/alejandrodnm/pacebot/internal/ports"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one poll cycle and exit")
	backfill := flag.Bool("backfill", false, "settle finished games from the poll log and exit")
	report := flag.String("report", "", "print a report and exit: threshold|daily|performance|verify")
	days := flag.Int("days", 30, "lookback window in days for -report and -backfill")
	date := flag.String("date", "", "date for -report daily (YYYY-MM-DD, default today)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full per-cycle table (default: compact 1-line)")
	validate := flag.Bool("validate", false, "print step-by-step confidence breakdown for top 3 games")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	slog.Info("pacebot starting",
		"config", *configPath,
		"sport", cfg.Monitor.Sport,
		"interval", cfg.PollInterval(),
		"once", *once,
		"backfill", *backfill,
		"report", *report,
	)

	store, err := newStorage(cfg)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "driver", cfg.Storage.Driver)
		os.Exit(1)
	}
	defer store.Close()

	console := notify.NewConsole(*table, *validate)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *report != "" {
		runReport(ctx, store, console, cfg, *report, *days, *date)
		return
	}

	if err := store.PruneOlderThan(ctx, time.Now().Add(-cfg.Retention())); err != nil {
		slog.Warn("poll log pruning failed", "err", err)
	}

	games := espn.NewClient(cfg.ESPN.BaseURL, cfg.Sport(), cfg.ESPN.RequestsPerSec,
		time.Duration(cfg.ESPN.TimeoutSeconds)*time.Second)

	var odds ports.OddsProvider
	if cfg.Odds.APIKey != "" {
		odds = oddsapi.NewClient(cfg.Odds.BaseURL, cfg.Odds.APIKey, cfg.Odds.Regions,
			cfg.Sport(), cfg.Odds.RequestsPerSec, time.Duration(cfg.Odds.TimeoutSeconds)*time.Second)
	} else {
		slog.Warn("no odds API key configured — using feed lines only")
	}

	scraper := stats.NewScraper(cfg.Stats.RatingsURL, time.Duration(cfg.Stats.TimeoutSeconds)*time.Second)
	teamStats := stats.NewCachedProvider(scraper, store, cfg.StatsTTL())

	var publisher ports.Publisher
	if cfg.Redis.Enabled {
		pub, err := publish.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.Stream, time.Duration(cfg.Redis.LatestTTLSeconds)*time.Second)
		if err != nil {
			slog.Error("failed to connect to redis", "err", err, "addr", cfg.Redis.Addr)
			os.Exit(1)
		}
		defer pub.Close()
		publisher = pub
	}

	profile, _ := domain.SeverityProfileByName(cfg.Confidence.SeverityProfile)
	scorer := domain.NewScorer(cfg.Confidence.Weights, profile, cfg.Confidence.UnitBands)

	monCfg := monitor.Config{
		Sport:           cfg.Sport(),
		Interval:        cfg.PollInterval(),
		IdleShutdown:    cfg.IdleShutdown(),
		AlertConfidence: cfg.Monitor.AlertConfidence,
		RealtimePublish: cfg.Monitor.RealtimeConfidence,
		Thresholds:      cfg.Thresholds,
		Once:            *once,
	}

	m := monitor.New(monCfg, games, odds, teamStats, store, publisher, console, scorer, stats.NewMatcher())

	if *backfill {
		runBackfill(ctx, m, *days)
		return
	}

	if err := m.Run(ctx); err != nil {
		slog.Error("monitor exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("pacebot stopped cleanly")
}

func newStorage(cfg *config.Config) (ports.Storage, error) {
	if cfg.Storage.Driver == "postgres" {
		return storage.NewPostgresStorage(cfg.Storage.DSN)
	}
	return storage.NewSQLiteStorage(cfg.Storage.DSN)
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
