package validation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// Validator rejects scraped records the rest of the pipeline cannot use.
type Validator struct {
	maxPrice decimal.Decimal
}

// NewValidator returns a validator that rejects prices above maxPrice.
// A zero maxPrice disables the cap.
func NewValidator(maxPrice decimal.Decimal) *Validator {
	return &Validator{maxPrice: maxPrice}
}

// ValidateMatch validates match data
func (v *Validator) ValidateMatch(match models.Match) error {
	if match.HomeTeam == "" {
		return fmt.Errorf("home team cannot be empty")
	}
	if match.AwayTeam == "" {
		return fmt.Errorf("away team cannot be empty")
	}
	if strings.EqualFold(match.HomeTeam, match.AwayTeam) {
		return fmt.Errorf("home and away team are the same: %s", match.HomeTeam)
	}
	if match.KickoffAt.IsZero() {
		return fmt.Errorf("kickoff time is missing for %s", match.Name())
	}
	if len(match.Mappings) == 0 {
		return fmt.Errorf("match %s has no provider mapping", match.Name())
	}

	for i, mp := range match.Mappings {
		if !mp.Provider.Valid() {
			return fmt.Errorf("mapping %d: invalid provider: %q", i, mp.Provider)
		}
		if mp.ProviderMatchID == "" {
			return fmt.Errorf("mapping %d: provider match id cannot be empty", i)
		}
	}
	return nil
}

// ValidateOdds validates odds data
func (v *Validator) ValidateOdds(odds models.Odds) error {
	if !odds.Provider.Valid() {
		return fmt.Errorf("invalid provider: %q", odds.Provider)
	}
	if !odds.Market.Valid() {
		return fmt.Errorf("invalid market: %q", odds.Market)
	}
	if odds.ProviderOddsID == "" {
		return fmt.Errorf("provider odds id cannot be empty")
	}
	if !odds.Price.IsPositive() {
		return fmt.Errorf("odds must be positive: %s", odds.Price)
	}
	if v.maxPrice.IsPositive() && odds.Price.GreaterThan(v.maxPrice) {
		return fmt.Errorf("odds %s above configured max price %s", odds.Price, v.maxPrice)
	}
	return nil
}
