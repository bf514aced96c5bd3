package storage

import (
	"context"
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// Sink receives every harvest the scheduler completes.
type Sink interface {
	Name() string
	// StoreHarvest persists one cycle's matches and odds. Odds rows are
	// appended, never updated.
	StoreHarvest(ctx context.Context, h models.Harvest) error
	Close() error
}

// BetRecord is one bet placement attempt, successful or not.
type BetRecord struct {
	Provider    enums.BettingProvider      `json:"provider"`
	Request     models.BetPlacementRequest `json:"request"`
	Result      models.BetPlacementResult  `json:"result"`
	AttemptedAt time.Time                  `json:"attempted_at"`
}

// BetLog records bet placement attempts.
type BetLog interface {
	RecordBet(ctx context.Context, rec BetRecord) error
}
