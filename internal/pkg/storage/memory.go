package storage

import (
	"context"
	"sync"

	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

const defaultMemoryCapacity = 16

var (
	_ Sink   = (*MemorySink)(nil)
	_ BetLog = (*MemorySink)(nil)
)

// MemorySink keeps the most recent harvests and bet records in process.
type MemorySink struct {
	mu       sync.RWMutex
	capacity int
	harvests []models.Harvest
	bets     []BetRecord
}

func NewMemorySink(capacity int) *MemorySink {
	if capacity <= 0 {
		capacity = defaultMemoryCapacity
	}
	return &MemorySink{capacity: capacity}
}

func (m *MemorySink) Name() string { return "memory" }

func (m *MemorySink) StoreHarvest(_ context.Context, h models.Harvest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.harvests = appendBounded(m.harvests, h, m.capacity)
	return nil
}

func (m *MemorySink) RecordBet(_ context.Context, rec BetRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bets = appendBounded(m.bets, rec, m.capacity*8)
	return nil
}

// Latest returns the newest harvest.
func (m *MemorySink) Latest() (models.Harvest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.harvests) == 0 {
		return models.Harvest{}, false
	}
	return m.harvests[len(m.harvests)-1], true
}

// Harvests returns the retained harvests, oldest first.
func (m *MemorySink) Harvests() []models.Harvest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]models.Harvest(nil), m.harvests...)
}

// Bets returns the retained bet records, oldest first.
func (m *MemorySink) Bets() []BetRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]BetRecord(nil), m.bets...)
}

func (m *MemorySink) Close() error { return nil }

func appendBounded[T any](s []T, v T, limit int) []T {
	s = append(s, v)
	if over := len(s) - limit; over > 0 {
		s = append(s[:0:0], s[over:]...)
	}
	return s
}
