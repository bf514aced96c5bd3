package models

import (
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

// Match is one real-world fixture as listed by a provider.
// A Match scraped from a provider carries only that provider's mapping.
// Listings of the same fixture are joined by Key in persistence.
type Match struct {
	HomeTeam    string                 `json:"home_team"`
	AwayTeam    string                 `json:"away_team"`
	KickoffAt   time.Time              `json:"kickoff_at"`
	League      string                 `json:"league,omitempty"`
	Competition string                 `json:"competition,omitempty"`
	ScrapedAt   time.Time              `json:"scraped_at"`
	Mappings    []ProviderMatchMapping `json:"mappings"`
}

// ProviderMatchMapping associates a Match with a provider's own identifier.
// A (Provider, ProviderMatchID) pair maps to at most one Match.
type ProviderMatchMapping struct {
	Provider          enums.BettingProvider `json:"provider"`
	ProviderMatchID   string                `json:"provider_match_id"`
	ProviderURL       string                `json:"provider_url,omitempty"`
	ProviderEventName string                `json:"provider_event_name,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	LastUpdatedAt     time.Time             `json:"last_updated_at"`
}

// Key returns the canonical cross-provider key of the match.
func (m Match) Key() string {
	return CanonicalMatchID(m.HomeTeam, m.AwayTeam, m.KickoffAt)
}

// Name returns "Home vs Away".
func (m Match) Name() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// MappingFor returns the mapping for provider p, if the match carries one.
func (m Match) MappingFor(p enums.BettingProvider) (ProviderMatchMapping, bool) {
	for _, mp := range m.Mappings {
		if mp.Provider == p {
			return mp, true
		}
	}
	return ProviderMatchMapping{}, false
}
