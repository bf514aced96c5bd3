package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

var (
	_ Sink   = (*MultiSink)(nil)
	_ BetLog = MultiBetLog(nil)
)

// MultiSink writes each harvest to every sink. A failing sink does not keep
// the others from receiving the harvest.
type MultiSink struct {
	sinks  []Sink
	logger *slog.Logger
}

func NewMultiSink(logger *slog.Logger, sinks ...Sink) *MultiSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiSink{sinks: sinks, logger: logger}
}

func (m *MultiSink) Name() string { return "multi" }

// Add appends a sink. Not safe to call while harvests are being stored.
func (m *MultiSink) Add(s Sink) {
	m.sinks = append(m.sinks, s)
}

func (m *MultiSink) StoreHarvest(ctx context.Context, h models.Harvest) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.StoreHarvest(ctx, h); err != nil {
			m.logger.Error("sink failed to store harvest", "sink", s.Name(), "harvest_id", h.ID, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// MultiBetLog records to every log.
type MultiBetLog []BetLog

func (m MultiBetLog) RecordBet(ctx context.Context, rec BetRecord) error {
	var errs []error
	for _, l := range m {
		if err := l.RecordBet(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
