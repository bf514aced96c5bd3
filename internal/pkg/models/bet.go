package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

// ErrInvalidRequest marks a bet request rejected before reaching the provider.
var ErrInvalidRequest = errors.New("invalid bet placement request")

// BetPlacementRequest asks a provider to place one single bet.
// ExpectedPrice is informational: slippage tolerance is the caller's policy.
type BetPlacementRequest struct {
	ProviderMatchID string           `json:"provider_match_id"`
	ProviderOddsID  string           `json:"provider_odds_id"`
	Stake           decimal.Decimal  `json:"stake"`
	Market          enums.MarketType `json:"market"`
	ExpectedPrice   decimal.Decimal  `json:"expected_price"`
}

// Validate checks the request shape.
func (r BetPlacementRequest) Validate() error {
	switch {
	case r.ProviderMatchID == "":
		return fmt.Errorf("%w: provider match id is required", ErrInvalidRequest)
	case r.ProviderOddsID == "":
		return fmt.Errorf("%w: provider odds id is required", ErrInvalidRequest)
	case !r.Stake.IsPositive():
		return fmt.Errorf("%w: stake must be positive, got %s", ErrInvalidRequest, r.Stake.String())
	case r.Market != "" && !r.Market.Valid():
		return fmt.Errorf("%w: unknown market %q", ErrInvalidRequest, r.Market)
	case r.ExpectedPrice.IsNegative():
		return fmt.Errorf("%w: expected price must not be negative", ErrInvalidRequest)
	}
	return nil
}

// BetPlacementResult is the outcome of a placement attempt.
// A failed placement is reported here, never as an error.
type BetPlacementResult struct {
	Success       bool                `json:"success"`
	ProviderBetID string              `json:"provider_bet_id,omitempty"`
	AcceptedStake decimal.NullDecimal `json:"accepted_stake"`
	AcceptedPrice decimal.NullDecimal `json:"accepted_price"`
	PlacedAt      time.Time           `json:"placed_at,omitzero"`
	ErrorMessage  string              `json:"error_message,omitempty"`
}

// FailedPlacement builds an unsuccessful result.
func FailedPlacement(format string, args ...any) BetPlacementResult {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		msg = "bet placement failed"
	}
	return BetPlacementResult{ErrorMessage: msg}
}

// ProviderBetHistory is a wager as reported back by the provider.
type ProviderBetHistory struct {
	ProviderBetID    string              `json:"provider_bet_id"`
	MatchDescription string              `json:"match_description"`
	Market           enums.MarketType    `json:"market,omitempty"`
	Stake            decimal.Decimal     `json:"stake"`
	Price            decimal.Decimal     `json:"price"`
	Return           decimal.NullDecimal `json:"return"`
	Status           string              `json:"status"`
	PlacedAt         time.Time           `json:"placed_at"`
	SettledAt        *time.Time          `json:"settled_at,omitempty"`
}

// HistoryRange bounds a history query. A zero bound means unbounded on that side.
type HistoryRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range (inclusive).
func (r HistoryRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
