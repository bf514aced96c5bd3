package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/betting"
	pkgconfig "github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/logging"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/storage"
	"github.com/Vodeneev/betscraper/internal/scraper/providers"

	_ "github.com/Vodeneev/betscraper/internal/scraper/providers/all"
)

const (
	defaultConfigPath = "configs/production.yaml"
)

type config struct {
	configPath string
	provider   string // Required: provider id (e.g. "bet365")
	action     string
	timeout    time.Duration

	matchID  string
	oddsID   string
	market   string
	stake    string
	price    string
	from, to string
}

func main() {
	if err := run(); err != nil {
		slog.Error("place-bet failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()
	if cfg.provider == "" {
		cfg.provider = os.Getenv("BETTING_PROVIDER")
	}
	if cfg.provider == "" {
		return fmt.Errorf("provider is required: use -provider=<id> or BETTING_PROVIDER env (e.g. bet365)")
	}
	id, err := enums.ParseProvider(cfg.provider)
	if err != nil {
		return err
	}

	appConfig, err := pkgconfig.Load(cfg.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logCloser, err := logging.SetupLogger(appConfig.Logging, "place-bet")
	if err != nil {
		slog.Warn("Failed to setup logging, continuing with default logger", "error", err)
		logger = slog.Default()
	} else {
		defer logCloser.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	registry := providers.New(appConfig, logger)
	defer func() {
		if err := registry.Close(); err != nil {
			logger.Error("Failed to close providers", "error", err)
		}
	}()

	var betLog storage.BetLog = storage.NewMemorySink(1)
	if appConfig.Postgres.DSN != "" {
		pg, err := storage.NewPostgresSink(ctx, appConfig.Postgres, logger)
		if err != nil {
			return fmt.Errorf("failed to open bet log: %w", err)
		}
		defer pg.Close()
		betLog = pg
	}

	svc := betting.NewService(registry, betting.Options{
		BetLog:      betLog,
		Logger:      logger,
		StepTimeout: cfg.timeout,
	})
	defer func() {
		if p, err := registry.Resolve(id); err == nil {
			p.Logout(context.WithoutCancel(ctx))
		}
	}()

	switch cfg.action {
	case "bet":
		req, err := cfg.betRequest()
		if err != nil {
			return err
		}
		res, err := svc.PlaceBet(ctx, id, req)
		if err != nil {
			return err
		}
		return printJSON(res)
	case "balance":
		bal, err := svc.Balance(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"provider": id, "balance": bal})
	case "history":
		rng, err := cfg.historyRange()
		if err != nil {
			return err
		}
		bets, err := svc.History(ctx, id, rng)
		if err != nil {
			return err
		}
		return printJSON(bets)
	default:
		return fmt.Errorf("unknown action %q (bet, balance, history)", cfg.action)
	}
}

func parseFlags() config {
	var cfg config
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}
	flag.StringVar(&cfg.configPath, "config", defaultConfig, "Path to config file")
	flag.StringVar(&cfg.provider, "provider", "", "Provider id (e.g. bet365). Can also set BETTING_PROVIDER")
	flag.StringVar(&cfg.action, "action", "balance", "What to do: bet, balance or history")
	flag.DurationVar(&cfg.timeout, "timeout", 3*time.Minute, "Overall deadline")
	flag.StringVar(&cfg.matchID, "match", "", "bet: provider match id")
	flag.StringVar(&cfg.oddsID, "odds", "", "bet: provider odds id")
	flag.StringVar(&cfg.market, "market", "", "bet: market type (e.g. home_win)")
	flag.StringVar(&cfg.stake, "stake", "", "bet: stake amount")
	flag.StringVar(&cfg.price, "price", "0", "bet: expected decimal price")
	flag.StringVar(&cfg.from, "from", "", "history: RFC3339 lower bound")
	flag.StringVar(&cfg.to, "to", "", "history: RFC3339 upper bound")
	flag.Parse()
	return cfg
}

func (c config) betRequest() (models.BetPlacementRequest, error) {
	stake, err := decimal.NewFromString(strings.TrimSpace(c.stake))
	if err != nil {
		return models.BetPlacementRequest{}, fmt.Errorf("invalid -stake: %w", err)
	}
	price, err := decimal.NewFromString(strings.TrimSpace(c.price))
	if err != nil {
		return models.BetPlacementRequest{}, fmt.Errorf("invalid -price: %w", err)
	}
	req := models.BetPlacementRequest{
		ProviderMatchID: c.matchID,
		ProviderOddsID:  c.oddsID,
		Stake:           stake,
		ExpectedPrice:   price,
	}
	if c.market != "" {
		if req.Market, err = enums.ParseMarketType(c.market); err != nil {
			return models.BetPlacementRequest{}, err
		}
	}
	return req, nil
}

func (c config) historyRange() (models.HistoryRange, error) {
	var r models.HistoryRange
	var err error
	if c.from != "" {
		if r.From, err = time.Parse(time.RFC3339, c.from); err != nil {
			return r, fmt.Errorf("invalid -from: %w", err)
		}
	}
	if c.to != "" {
		if r.To, err = time.Parse(time.RFC3339, c.to); err != nil {
			return r, fmt.Errorf("invalid -to: %w", err)
		}
	}
	return r, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
