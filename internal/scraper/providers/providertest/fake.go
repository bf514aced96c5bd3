// Package providertest has a scriptable in-memory provider for tests.
package providertest

import (
	"context"
	"iter"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// Counts is a snapshot of how often each operation ran.
type Counts struct {
	Logins       int
	Logouts      int
	HealthChecks int
	MatchScrapes int
	OddsScrapes  []string
	Bets         int
	Closes       int
}

// Fake is an interfaces.Provider driven by optional hooks. With no hooks it
// logs in successfully, stays logged in and returns nothing.
type Fake struct {
	ProviderID enums.BettingProvider

	// LoginFunc gets the 1-based attempt number.
	LoginFunc func(attempt int) bool
	// HealthFunc gets the 1-based check number; nil reports the session state.
	HealthFunc  func(check int) bool
	MatchesFunc func() []models.Match
	OddsFunc    func(providerMatchID string) []models.Odds
	BetFunc     func(req models.BetPlacementRequest) models.BetPlacementResult
	Balance     decimal.NullDecimal
	History     []models.ProviderBetHistory

	mu       sync.Mutex
	loggedIn bool
	counts   Counts
}

var _ interfaces.Provider = (*Fake)(nil)

func New(id enums.BettingProvider) *Fake {
	return &Fake{ProviderID: id}
}

func (f *Fake) ID() enums.BettingProvider { return f.ProviderID }

func (f *Fake) Name() string { return f.ProviderID.DisplayName() }

func (f *Fake) Login(_ context.Context, _, _ string) bool {
	f.mu.Lock()
	f.counts.Logins++
	attempt := f.counts.Logins
	fn := f.LoginFunc
	f.mu.Unlock()

	ok := true
	if fn != nil {
		ok = fn(attempt)
	}

	f.mu.Lock()
	f.loggedIn = ok
	f.mu.Unlock()
	return ok
}

func (f *Fake) IsLoggedIn(context.Context) bool {
	f.mu.Lock()
	f.counts.HealthChecks++
	check := f.counts.HealthChecks
	fn := f.HealthFunc
	loggedIn := f.loggedIn
	f.mu.Unlock()

	if fn == nil {
		return loggedIn
	}
	ok := fn(check)
	if !ok {
		f.mu.Lock()
		f.loggedIn = false
		f.mu.Unlock()
	}
	return ok
}

func (f *Fake) Logout(context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts.Logouts++
	f.loggedIn = false
}

func (f *Fake) ScrapeUpcomingMatches(context.Context, int) iter.Seq[models.Match] {
	return func(yield func(models.Match) bool) {
		f.mu.Lock()
		f.counts.MatchScrapes++
		fn := f.MatchesFunc
		f.mu.Unlock()
		if fn == nil {
			return
		}
		for _, m := range fn() {
			if !yield(m) {
				return
			}
		}
	}
}

func (f *Fake) ScrapeMatchOdds(_ context.Context, providerMatchID string) iter.Seq[models.Odds] {
	return func(yield func(models.Odds) bool) {
		f.mu.Lock()
		f.counts.OddsScrapes = append(f.counts.OddsScrapes, providerMatchID)
		fn := f.OddsFunc
		f.mu.Unlock()
		if fn == nil {
			return
		}
		for _, o := range fn(providerMatchID) {
			if !yield(o) {
				return
			}
		}
	}
}

func (f *Fake) PlaceBet(_ context.Context, req models.BetPlacementRequest) models.BetPlacementResult {
	f.mu.Lock()
	f.counts.Bets++
	fn := f.BetFunc
	f.mu.Unlock()
	if fn == nil {
		return models.FailedPlacement("bet placement not scripted")
	}
	return fn(req)
}

func (f *Fake) AccountBalance(context.Context) decimal.NullDecimal {
	return f.Balance
}

func (f *Fake) BetHistory(_ context.Context, r models.HistoryRange) iter.Seq[models.ProviderBetHistory] {
	return func(yield func(models.ProviderBetHistory) bool) {
		for _, h := range f.History {
			if !r.Contains(h.PlacedAt) {
				continue
			}
			if !yield(h) {
				return
			}
		}
	}
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts.Closes++
	f.loggedIn = false
	return nil
}

// Counts returns a copy of the call counters.
func (f *Fake) Counts() Counts {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.counts
	c.OddsScrapes = append([]string(nil), f.counts.OddsScrapes...)
	return c
}

// LoggedIn reports the fake's session flag.
func (f *Fake) LoggedIn() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loggedIn
}
