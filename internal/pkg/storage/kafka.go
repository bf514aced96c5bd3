package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

var _ Sink = (*KafkaSink)(nil)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// MatchEvent is the message published per match. Its key is the canonical
// match key so one match always lands on the same partition.
type MatchEvent struct {
	HarvestID   string             `json:"harvest_id"`
	CycleID     int64              `json:"cycle_id"`
	CollectedAt time.Time          `json:"collected_at"`
	Match       models.Match       `json:"match"`
	Odds        []models.MatchOdds `json:"odds,omitempty"`
}

// KafkaSink publishes harvests downstream.
type KafkaSink struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

func NewKafkaSink(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers are required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newKafkaSink(w, cfg.Topic, logger), nil
}

func newKafkaSink(w messageWriter, topic string, logger *slog.Logger) *KafkaSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &KafkaSink{writer: w, topic: topic, logger: logger.With("sink", "kafka", "topic", topic)}
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) StoreHarvest(ctx context.Context, h models.Harvest) error {
	if len(h.Matches) == 0 {
		return nil
	}

	byMatch := make(map[string][]models.MatchOdds, len(h.Odds))
	for _, mo := range h.Odds {
		byMatch[mo.MatchKey] = append(byMatch[mo.MatchKey], mo)
	}

	msgs := make([]kafka.Message, 0, len(h.Matches))
	for _, m := range h.Matches {
		key := m.Key()
		value, err := json.Marshal(MatchEvent{
			HarvestID:   h.ID,
			CycleID:     h.CycleID,
			CollectedAt: h.CollectedAt,
			Match:       m,
			Odds:        byMatch[key],
		})
		if err != nil {
			k.logger.Error("failed to marshal match event", "match", m.Name(), "error", err)
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(key), Value: value, Time: h.CollectedAt})
	}

	if err := k.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to publish %d messages: %w", len(msgs), err)
	}
	k.logger.Debug("published harvest", "harvest_id", h.ID, "messages", len(msgs))
	return nil
}

func (k *KafkaSink) Close() error {
	return k.writer.Close()
}
