package enums

import (
	"fmt"
	"strings"
)

// BettingProvider identifies an external betting platform.
// The value is used as a map key and config key, so it never changes.
type BettingProvider string

const (
	Bet365      BettingProvider = "bet365"
	WilliamHill BettingProvider = "williamhill"
	Betfair     BettingProvider = "betfair"
	Ladbrokes   BettingProvider = "ladbrokes"
	PaddyPower  BettingProvider = "paddypower"
	SkyBet      BettingProvider = "skybet"
	Betway      BettingProvider = "betway"
	Coral       BettingProvider = "coral"
)

// allProviders keeps catalogue order; registry fallback relies on it.
var allProviders = []BettingProvider{
	Bet365,
	WilliamHill,
	Betfair,
	Ladbrokes,
	PaddyPower,
	SkyBet,
	Betway,
	Coral,
}

var providerNames = map[BettingProvider]string{
	Bet365:      "Bet365",
	WilliamHill: "William Hill",
	Betfair:     "Betfair",
	Ladbrokes:   "Ladbrokes",
	PaddyPower:  "Paddy Power",
	SkyBet:      "Sky Bet",
	Betway:      "Betway",
	Coral:       "Coral",
}

// Providers returns every known provider in catalogue order.
func Providers() []BettingProvider {
	out := make([]BettingProvider, len(allProviders))
	copy(out, allProviders)
	return out
}

// ParseProvider accepts the id in any case, with or without spaces
// ("Bet365", "William Hill", "williamhill").
func ParseProvider(s string) (BettingProvider, error) {
	n := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, p := range allProviders {
		if string(p) == n {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown betting provider %q", s)
}

// Valid reports whether p is part of the catalogue.
func (p BettingProvider) Valid() bool {
	_, ok := providerNames[p]
	return ok
}

// DisplayName returns the human-readable provider name.
func (p BettingProvider) DisplayName() string {
	if n, ok := providerNames[p]; ok {
		return n
	}
	return string(p)
}

// String returns string representation
func (p BettingProvider) String() string {
	return string(p)
}
