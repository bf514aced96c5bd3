package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

var _ Sink = (*RedisSink)(nil)

// RedisSink keeps the latest price per (provider, provider match, market).
type RedisSink struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// CachedOdds is the value stored under each odds key.
type CachedOdds struct {
	MatchKey string      `json:"match_key"`
	Odds     models.Odds `json:"odds"`
}

func NewRedisSink(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (*RedisSink, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisSink{client: client, ttl: ttl, logger: logger.With("sink", "redis")}, nil
}

func (r *RedisSink) Name() string { return "redis" }

func oddsKey(provider enums.BettingProvider, providerMatchID string, market enums.MarketType) string {
	return fmt.Sprintf("odds:%s:%s:%s", provider, providerMatchID, market)
}

func (r *RedisSink) StoreHarvest(ctx context.Context, h models.Harvest) error {
	if h.OddsCount() == 0 {
		return nil
	}

	pipe := r.client.Pipeline()
	queued := 0
	for _, mo := range h.Odds {
		for _, o := range mo.Odds {
			data, err := json.Marshal(CachedOdds{MatchKey: mo.MatchKey, Odds: o})
			if err != nil {
				r.logger.Error("failed to marshal odds", "error", err)
				continue
			}
			pipe.Set(ctx, oddsKey(o.Provider, mo.Mapping.ProviderMatchID, o.Market), data, r.ttl)
			queued++
		}
	}
	if queued == 0 {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to execute pipeline: %w", err)
	}
	r.logger.Debug("cached latest odds", "count", queued, "harvest_id", h.ID)
	return nil
}

// LatestOdds returns every cached price for one provider match.
func (r *RedisSink) LatestOdds(ctx context.Context, provider enums.BettingProvider, providerMatchID string) ([]CachedOdds, error) {
	pattern := fmt.Sprintf("odds:%s:%s:*", provider, providerMatchID)

	var keys []string
	var cursor uint64
	for {
		page, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to scan keys: %w", err)
		}
		keys = append(keys, page...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if len(keys) == 0 {
		return nil, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get odds: %w", err)
	}

	out := make([]CachedOdds, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var c CachedOdds
		if err := json.Unmarshal([]byte(s), &c); err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *RedisSink) Close() error {
	return r.client.Close()
}
