package storage

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
)

// Open builds the sinks configured in cfg on top of memory, which is always
// present. Postgres is also used as the bet log when configured. On error
// the sinks opened so far are closed.
func Open(ctx context.Context, cfg *config.Config, memory *MemorySink, logger *slog.Logger) (*MultiSink, MultiBetLog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sinks := NewMultiSink(logger, memory)
	betLogs := MultiBetLog{memory}

	fail := func(err error) (*MultiSink, MultiBetLog, error) {
		return nil, nil, errors.Join(err, sinks.Close())
	}

	if cfg.Postgres.DSN != "" {
		pg, err := NewPostgresSink(ctx, cfg.Postgres, logger)
		if err != nil {
			return fail(err)
		}
		sinks.Add(pg)
		betLogs = append(betLogs, pg)
	}
	if cfg.Redis.Addr != "" {
		r, err := NewRedisSink(ctx, cfg.Redis, logger)
		if err != nil {
			return fail(err)
		}
		sinks.Add(r)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := NewKafkaSink(cfg.Kafka, logger)
		if err != nil {
			return fail(err)
		}
		sinks.Add(k)
	}
	return sinks, betLogs, nil
}
