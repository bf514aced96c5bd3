package scheduler

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/notify"
	"github.com/Vodeneev/betscraper/internal/pkg/performance"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
)

// Cycle outcomes, also used as the metrics label.
const (
	OutcomeOK          = "ok"
	OutcomeNoActive    = "no_active"
	OutcomeCancelled   = "cancelled"
	OutcomeStoreFailed = "store_failed"
)

// CycleReport describes one cycle.
type CycleReport struct {
	ID       int64
	Outcome  string
	Active   []enums.BettingProvider
	Excluded []enums.BettingProvider
	Harvest  models.Harvest
	Duration time.Duration
}

// RunCycle runs one health pass and harvest over the startup members.
// A cancellation seen mid-harvest ends the cycle early; whatever was
// collected up to that point is still stored.
func (s *Scheduler) RunCycle(ctx context.Context) CycleReport {
	s.cycleID++
	start := s.now()
	report := CycleReport{ID: s.cycleID}
	log := s.logger.With("cycle_id", report.ID)
	log.Info("Starting scrape cycle")

	defer func() {
		report.Duration = s.now().Sub(start)
		s.metrics.RecordCycle(report.Outcome, report.Duration)
		s.tracker.RecordCycle(performance.CycleStatus{
			ID:         report.ID,
			StartedAt:  start,
			FinishedAt: start.Add(report.Duration),
			Outcome:    report.Outcome,
			Active:     len(report.Active),
			Matches:    len(report.Harvest.Matches),
			Odds:       report.Harvest.OddsCount(),
		})
	}()

	active := s.healthPass(ctx)
	for _, p := range s.members {
		if slices.Contains(active, p) {
			report.Active = append(report.Active, p.ID())
		} else {
			report.Excluded = append(report.Excluded, p.ID())
		}
	}
	s.metrics.SetActiveProviders(len(active))

	if ctx.Err() != nil {
		report.Outcome = OutcomeCancelled
		return report
	}
	if len(active) == 0 {
		report.Outcome = OutcomeNoActive
		s.alert(ctx, notify.Alert{Kind: notify.AlertNoActiveProviders, Message: "every provider failed its health check"})
		return report
	}

	report.Harvest = models.Harvest{
		ID:          uuid.NewString(),
		CycleID:     report.ID,
		CollectedAt: start,
	}
	report.Harvest.Matches = s.harvestMatches(ctx, active)
	log.Info("Total scraped matches", "matches", len(report.Harvest.Matches))

	var cancelled bool
	report.Harvest.Odds, cancelled = s.harvestOdds(ctx, active, report.Harvest.Matches)

	report.Outcome = OutcomeOK
	if err := s.store(ctx, report.Harvest); err != nil {
		log.Error("Failed to store harvest", "harvest_id", report.Harvest.ID, "error", err)
		report.Outcome = OutcomeStoreFailed
	}
	if cancelled || ctx.Err() != nil {
		report.Outcome = OutcomeCancelled
	}
	log.Info("Scrape cycle finished",
		"outcome", report.Outcome,
		"matches", len(report.Harvest.Matches),
		"odds", report.Harvest.OddsCount(),
	)
	return report
}

// healthPass probes every member and re-logs in once where the session was
// lost. Members that stay logged out sit this cycle out and are probed again
// next cycle.
func (s *Scheduler) healthPass(ctx context.Context) []interfaces.Provider {
	var mu sync.Mutex
	ok := make(map[enums.BettingProvider]bool, len(s.members))

	providerutil.RunProviders(ctx, s.members, func(ctx context.Context, p interfaces.Provider) error {
		alive := s.checkHealth(ctx, p)
		mu.Lock()
		ok[p.ID()] = alive
		mu.Unlock()
		return nil
	}, providerutil.RunOptions{Parallel: s.policy.ParallelProviders, Logger: s.logger})

	var active []interfaces.Provider
	for _, p := range s.members {
		id := p.ID()
		alive, checked := ok[id]
		if !checked {
			continue
		}
		if alive && !s.active[id] {
			s.logger.Info("Provider recovered", "provider", string(id))
			s.alert(ctx, notify.Alert{Kind: notify.AlertProviderRecovered, Provider: id, Message: "session restored"})
		}
		s.active[id] = alive
		s.tracker.RecordActive(id, alive)
		if alive {
			active = append(active, p)
		}
	}
	return active
}

func (s *Scheduler) checkHealth(ctx context.Context, p interfaces.Provider) bool {
	id := p.ID()
	stepCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
	var loggedIn bool
	err := providerutil.Guard(func() error {
		loggedIn = p.IsLoggedIn(stepCtx)
		return nil
	})
	cancel()
	if err != nil {
		s.logger.Error("Error checking login status", "provider", string(id), "error", err)
		s.stepFailed(id, "health", err)
	}
	if loggedIn {
		return true
	}

	s.logger.Warn("Session expired, attempting re-login", "provider", string(id))
	if s.login(ctx, p, "relogin") {
		return true
	}
	s.logger.Error("Re-login failed, provider skipped this cycle", "provider", string(id))
	s.alert(ctx, notify.Alert{
		Kind:     notify.AlertReloginFailed,
		Provider: id,
		Message:  "re-login failed, provider skipped this cycle",
	})
	return false
}

// harvestMatches collects upcoming matches from every active provider.
func (s *Scheduler) harvestMatches(ctx context.Context, active []interfaces.Provider) []models.Match {
	perProvider := make([][]models.Match, len(active))
	index := make(map[interfaces.Provider]int, len(active))
	for i, p := range active {
		index[p] = i
	}

	providerutil.RunProviders(ctx, active, func(ctx context.Context, p interfaces.Provider) error {
		matches, err := s.scrapeMatches(ctx, p)
		id := p.ID()
		if err != nil {
			s.logger.Error("Error scraping matches", "provider", string(id), "error", err)
			s.stepFailed(id, "matches", err)
			return nil
		}
		s.tracker.RecordStep(id, "matches", nil)
		s.tracker.RecordHarvest(id, len(matches), 0)
		s.metrics.RecordHarvest(id, len(matches), 0)
		s.logger.Info("Scraped matches", "provider", string(id), "matches", len(matches))
		perProvider[index[p]] = matches
		return nil
	}, providerutil.RunOptions{Parallel: s.policy.ParallelProviders, Logger: s.logger})

	return collectMatches(perProvider)
}

func (s *Scheduler) scrapeMatches(ctx context.Context, p interfaces.Provider) ([]models.Match, error) {
	stepCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
	defer cancel()

	var matches []models.Match
	err := providerutil.Guard(func() error {
		for m := range p.ScrapeUpcomingMatches(stepCtx, s.policy.HoursAhead) {
			s.sanitizer.SanitizeMatch(&m)
			if err := s.validator.ValidateMatch(m); err != nil {
				s.logger.Warn("Invalid match skipped", "provider", string(p.ID()), "error", err)
				continue
			}
			if _, ok := m.MappingFor(p.ID()); !ok {
				s.logger.Warn("Match without provider mapping skipped", "provider", string(p.ID()), "match", m.Name())
				continue
			}
			matches = append(matches, m)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// collectMatches concatenates the per-provider lists in provider order and
// orders them by kickoff. Listings of the same fixture stay separate.
func collectMatches(lists [][]models.Match) []models.Match {
	var out []models.Match
	for _, list := range lists {
		out = append(out, list...)
	}
	slices.SortStableFunc(out, func(a, b models.Match) int {
		return a.KickoffAt.Compare(b.KickoffAt)
	})
	return out
}

// selectMatches picks at most MaxMatchesPerCycle matches, continuing from
// where the previous cycle stopped so every match is eventually visited.
func (s *Scheduler) selectMatches(matches []models.Match) []models.Match {
	limit := s.policy.MaxMatchesPerCycle
	if limit <= 0 || limit >= len(matches) {
		s.cursor = 0
		return matches
	}
	start := s.cursor % len(matches)
	out := make([]models.Match, 0, limit)
	for i := range limit {
		out = append(out, matches[(start+i)%len(matches)])
	}
	s.cursor = start + limit
	return out
}

// harvestOdds scrapes the odds of the selected matches one provider call at a
// time. Successive provider calls are spaced by ProviderDelay and moving on
// to the next match adds MatchDelay. It reports whether ctx
// was cancelled before the walk finished.
func (s *Scheduler) harvestOdds(ctx context.Context, active []interfaces.Provider, matches []models.Match) ([]models.MatchOdds, bool) {
	byID := make(map[enums.BettingProvider]interfaces.Provider, len(active))
	for _, p := range active {
		byID[p.ID()] = p
	}

	var out []models.MatchOdds
	calls := 0
	for i, m := range s.selectMatches(matches) {
		if i > 0 && !s.sleep(ctx, s.policy.MatchDelay, nil) {
			return out, true
		}
		for _, mp := range m.Mappings {
			p, ok := byID[mp.Provider]
			if !ok {
				continue
			}
			if calls > 0 && !s.sleep(ctx, s.policy.ProviderDelay, nil) {
				return out, true
			}
			if ctx.Err() != nil {
				return out, true
			}
			calls++

			odds, err := s.scrapeOdds(ctx, p, mp.ProviderMatchID)
			if err != nil {
				s.logger.Error("Error scraping odds",
					"provider", string(p.ID()), "match", m.Name(), "provider_match_id", mp.ProviderMatchID, "error", err)
				s.stepFailed(p.ID(), "odds", err)
				continue
			}
			s.tracker.RecordHarvest(p.ID(), 0, len(odds))
			s.metrics.RecordHarvest(p.ID(), 0, len(odds))
			s.logger.Info("Scraped odds", "provider", string(p.ID()), "match", m.Name(), "odds", len(odds))
			if len(odds) == 0 {
				continue
			}
			out = append(out, models.MatchOdds{MatchKey: m.Key(), Mapping: mp, Odds: odds})
		}
	}
	return out, false
}

func (s *Scheduler) scrapeOdds(ctx context.Context, p interfaces.Provider, providerMatchID string) ([]models.Odds, error) {
	stepCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
	defer cancel()

	var odds []models.Odds
	err := providerutil.Guard(func() error {
		for o := range p.ScrapeMatchOdds(stepCtx, providerMatchID) {
			s.sanitizer.SanitizeOdds(&o)
			if err := s.validator.ValidateOdds(o); err != nil {
				s.logger.Warn("Invalid odds skipped", "provider", string(p.ID()), "provider_match_id", providerMatchID, "error", err)
				continue
			}
			odds = append(odds, o)
		}
		return nil
	})
	return odds, err
}

func (s *Scheduler) store(ctx context.Context, h models.Harvest) error {
	if len(h.Matches) == 0 && len(h.Odds) == 0 {
		return nil
	}
	storeCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
	defer cancel()
	if err := s.sink.StoreHarvest(storeCtx, h); err != nil {
		return fmt.Errorf("sink %s: %w", s.sink.Name(), err)
	}
	return nil
}

func (s *Scheduler) stepFailed(id enums.BettingProvider, step string, err error) {
	s.tracker.RecordStep(id, step, err)
	s.metrics.RecordStepFailure(id, step)
}
