package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

// ErrInvalidPrice is returned for non-positive decimal prices.
var ErrInvalidPrice = errors.New("odds price must be a positive decimal")

// Odds is one captured price observation. It is a value: a new observation
// is a new record, never an update of an old one.
type Odds struct {
	Provider       enums.BettingProvider `json:"provider"`
	Market         enums.MarketType      `json:"market"`
	Price          decimal.Decimal       `json:"price"`
	ProviderOddsID string                `json:"provider_odds_id"`
	Description    string                `json:"description,omitempty"`
	ScrapedAt      time.Time             `json:"scraped_at"`
}

// NewOdds validates the market and price and builds an Odds record.
func NewOdds(p enums.BettingProvider, market enums.MarketType, price decimal.Decimal, providerOddsID, description string, scrapedAt time.Time) (Odds, error) {
	if !market.Valid() {
		return Odds{}, fmt.Errorf("odds %s: unknown market %q", providerOddsID, market)
	}
	if !price.IsPositive() {
		return Odds{}, fmt.Errorf("odds %s (%s): %w", providerOddsID, price.String(), ErrInvalidPrice)
	}
	if providerOddsID == "" {
		return Odds{}, fmt.Errorf("odds for %s: empty provider odds id", market)
	}
	return Odds{
		Provider:       p,
		Market:         market,
		Price:          price,
		ProviderOddsID: providerOddsID,
		Description:    description,
		ScrapedAt:      scrapedAt,
	}, nil
}

// MatchOdds groups the odds scraped for one provider mapping of a match.
type MatchOdds struct {
	MatchKey string               `json:"match_key"`
	Mapping  ProviderMatchMapping `json:"mapping"`
	Odds     []Odds               `json:"odds"`
}
