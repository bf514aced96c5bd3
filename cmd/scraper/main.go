package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Vodeneev/betscraper/internal/betting"
	pkgconfig "github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/health"
	"github.com/Vodeneev/betscraper/internal/pkg/logging"
	"github.com/Vodeneev/betscraper/internal/pkg/metrics"
	"github.com/Vodeneev/betscraper/internal/pkg/notify"
	"github.com/Vodeneev/betscraper/internal/pkg/performance"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
	"github.com/Vodeneev/betscraper/internal/pkg/storage"
	"github.com/Vodeneev/betscraper/internal/scraper/providers"
	"github.com/Vodeneev/betscraper/internal/scraper/scheduler"

	// Register all supported providers via init().
	_ "github.com/Vodeneev/betscraper/internal/scraper/providers/all"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

type config struct {
	configPath string
	runFor     time.Duration
	provider   string // Override betting_providers.enabled (e.g. "bet365")
}

func main() {
	if err := run(); err != nil {
		slog.Error("Scraper failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	slog.Info("Starting scraper...")

	cfg := parseFlags()
	slog.Info("Loading config", "path", cfg.configPath)

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.provider != "" {
		appConfig.BettingProviders.Enabled = []string{cfg.provider}
	}

	logger, logCloser, err := logging.SetupLogger(appConfig.Logging, "scraper")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
		logger = slog.Default()
	} else {
		defer logCloser.Close()
	}

	ctx, cancel := createContext(cfg.runFor)
	defer cancel()
	setupSignalHandler(ctx, cancel)

	memory := storage.NewMemorySink(32)
	sinks, betLogs, err := storage.Open(ctx, appConfig, memory, logger)
	if err != nil {
		return fmt.Errorf("failed to open sinks: %w", err)
	}
	defer func() {
		if err := sinks.Close(); err != nil {
			logger.Error("Failed to close sinks", "error", err)
		}
	}()

	notifier, stopNotifier := buildNotifier(appConfig, logger)
	defer stopNotifier()

	registry := providers.New(appConfig, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Error("Failed to close providers", "error", err)
		}
	}()
	logger.Info("Using providers", "enabled", registry.EnabledNames())

	m := metrics.New()
	tracker := performance.NewTracker()
	trigger := providerutil.NewTrigger()

	bets := betting.NewService(registry, betting.Options{
		BetLog:      betLogs,
		Metrics:     m,
		Logger:      logger,
		StepTimeout: appConfig.Scheduler.StepTimeout,
	})

	healthAddr, err := health.AddrFor(appConfig.Health.Port)
	if err != nil {
		return fmt.Errorf("health.port: %w", err)
	}
	serverDone, err := health.Run(ctx, healthAddr, health.Options{
		Service:           "scraper",
		ReadHeaderTimeout: appConfig.Health.ReadHeaderTimeout,
		Metrics:           m,
		Tracker:           tracker,
		Trigger:           trigger,
		Bets:              bets,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	sched := scheduler.New(registry, scheduler.Options{
		Policy:   scheduler.PolicyFromConfig(appConfig.Scheduler),
		Sink:     sinks,
		Notifier: notifier,
		Metrics:  m,
		Tracker:  tracker,
		Trigger:  trigger,
		Logger:   logger,
	})

	err = sched.Run(ctx)
	switch {
	case errors.Is(err, scheduler.ErrNoProviders), errors.Is(err, scheduler.ErrNoActiveProviders):
		// Bet endpoints stay up; they log in on demand.
		logger.Error("Scheduler stopped, serving ops endpoints until shutdown", "error", err)
		<-ctx.Done()
	case err != nil:
		return err
	}

	<-serverDone
	logger.Info("Scraper stopped gracefully")
	return nil
}

func parseFlags() config {
	var cfg config

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.DurationVar(&cfg.runFor, "run-for", 0, "Auto-stop after duration (e.g. 10s, 1m). 0 = run until SIGINT/SIGTERM")
	flag.StringVar(&cfg.provider, "provider", "", "Override betting_providers.enabled with a single provider id (e.g. 'bet365'). Empty = use config")
	flag.Parse()
	return cfg
}

func buildNotifier(cfg *pkgconfig.Config, logger *slog.Logger) (notify.Notifier, func()) {
	tg := cfg.Telegram
	if tg.BotToken == "" || tg.ChatID == 0 {
		return notify.LogNotifier{Logger: logger}, func() {}
	}
	n, err := notify.NewTelegramNotifier(tg.BotToken, tg.ChatID, logger)
	if err != nil {
		logger.Warn("Telegram notifier unavailable, alerts go to the log", "error", err)
		return notify.LogNotifier{Logger: logger}, func() {}
	}
	return n, n.Stop
}

func createContext(runFor time.Duration) (context.Context, context.CancelFunc) {
	if runFor > 0 {
		return context.WithTimeout(context.Background(), runFor)
	}
	return context.WithCancel(context.Background())
}

func setupSignalHandler(ctx context.Context, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("Received shutdown signal, stopping scraper...", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()
}
