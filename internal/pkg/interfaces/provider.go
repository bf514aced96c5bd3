package interfaces

//go:generate mockgen -source=provider.go -destination=mocks/provider_mock.go -package=mocks

import (
	"context"
	"iter"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// Provider is the capability set every betting platform integration implements.
//
// Expected platform variability (rejected credentials, missing selectors,
// page timeouts) never surfaces as an error: operations report it as false,
// an empty sequence, an invalid NullDecimal or a failed BetPlacementResult.
// Calls against one instance are serialized by the implementation.
type Provider interface {
	// ID returns the provider identifier.
	ID() enums.BettingProvider

	// Name returns the human-readable provider name.
	Name() string

	// Login establishes a session. Calling it on an active session re-affirms
	// the session and returns true.
	Login(ctx context.Context, username, password string) bool

	// IsLoggedIn probes the live session. It may touch the page but never
	// changes what the page shows.
	IsLoggedIn(ctx context.Context) bool

	// Logout is best-effort and always leaves the session logged out.
	Logout(ctx context.Context)

	// ScrapeUpcomingMatches lists matches kicking off within hoursAhead.
	// The sequence is lazy and re-queries the platform on every iteration.
	// Each match carries one mapping for this provider.
	ScrapeUpcomingMatches(ctx context.Context, hoursAhead int) iter.Seq[models.Match]

	// ScrapeMatchOdds lists the priced selections of one provider match.
	// Missing markets are simply absent.
	ScrapeMatchOdds(ctx context.Context, providerMatchID string) iter.Seq[models.Odds]

	// PlaceBet places one bet. Failures are reported only through the result.
	PlaceBet(ctx context.Context, req models.BetPlacementRequest) models.BetPlacementResult

	// AccountBalance returns an invalid NullDecimal when the balance cannot be read.
	AccountBalance(ctx context.Context) decimal.NullDecimal

	// BetHistory lists wagers placed within r (zero bounds are open).
	BetHistory(ctx context.Context, r models.HistoryRange) iter.Seq[models.ProviderBetHistory]

	// Close releases the automation resources owned by the integration.
	Close() error
}

// Credentials are the account details configured for a provider.
type Credentials struct {
	Username string
	Password string
}

// Complete reports whether both username and password are set.
func (c Credentials) Complete() bool {
	return c.Username != "" && c.Password != ""
}
