package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/logging"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/notify"
	"github.com/Vodeneev/betscraper/internal/pkg/performance"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
	"github.com/Vodeneev/betscraper/internal/pkg/storage"
	"github.com/Vodeneev/betscraper/internal/scraper/providers/providertest"
)

var kickoff = time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)

type stubSource struct {
	providers []interfaces.Provider
	noCreds   map[enums.BettingProvider]bool
}

func (s stubSource) ListEnabled() []interfaces.Provider { return s.providers }

func (s stubSource) Credentials(id enums.BettingProvider) (interfaces.Credentials, bool) {
	if s.noCreds[id] {
		return interfaces.Credentials{}, false
	}
	return interfaces.Credentials{Username: "user-" + string(id), Password: "pw"}, true
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []notify.Alert
}

func (n *recordingNotifier) Notify(_ context.Context, a notify.Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, a)
	return nil
}

func (n *recordingNotifier) kinds() []notify.AlertKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.AlertKind, 0, len(n.alerts))
	for _, a := range n.alerts {
		out = append(out, a.Kind)
	}
	return out
}

type failingSink struct{}

func (failingSink) Name() string { return "broken" }

func (failingSink) StoreHarvest(context.Context, models.Harvest) error {
	return errors.New("disk full")
}

func (failingSink) Close() error { return nil }

func fixture(p enums.BettingProvider, id, home, away string, at time.Time) models.Match {
	return models.Match{
		HomeTeam:  home,
		AwayTeam:  away,
		KickoffAt: at,
		Mappings:  []models.ProviderMatchMapping{{Provider: p, ProviderMatchID: id}},
	}
}

func threeWay(p enums.BettingProvider, matchID string) []models.Odds {
	var out []models.Odds
	for i, mt := range []enums.MarketType{enums.HomeWin, enums.Draw, enums.AwayWin} {
		out = append(out, models.Odds{
			Provider:       p,
			Market:         mt,
			Price:          decimal.NewFromFloat(1.5 + float64(i)),
			ProviderOddsID: matchID + "-" + string(mt),
		})
	}
	return out
}

func testPolicy() Policy {
	return Policy{
		HoursAhead:         48,
		MaxMatchesPerCycle: 5,
		ProviderDelay:      time.Second,
		MatchDelay:         2 * time.Second,
		CycleInterval:      30 * time.Minute,
		RecoveryInterval:   5 * time.Minute,
		StepTimeout:        time.Minute,
	}
}

// sleepRecorder never waits. It records every requested duration and cancels
// the run at the first inter-cycle or recovery wait after `cycles` of them.
type sleepRecorder struct {
	mu     sync.Mutex
	waits  []time.Duration
	cycles int
	cancel context.CancelFunc
	policy Policy
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration, _ *providerutil.Trigger) bool {
	r.mu.Lock()
	r.waits = append(r.waits, d)
	if d == r.policy.CycleInterval || d == r.policy.RecoveryInterval {
		r.cycles--
		if r.cycles <= 0 {
			r.cancel()
		}
	}
	r.mu.Unlock()
	return ctx.Err() == nil
}

func (r *sleepRecorder) recorded() []time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]time.Duration(nil), r.waits...)
}

type harness struct {
	sched    *Scheduler
	sink     *storage.MemorySink
	tracker  *performance.Tracker
	notifier *recordingNotifier
	sleeps   *sleepRecorder
	ctx      context.Context
	cancel   context.CancelFunc
}

func newHarness(t *testing.T, source ProviderSource, policy Policy, cycles int) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	h := &harness{
		sink:     storage.NewMemorySink(16),
		tracker:  performance.NewTracker(),
		notifier: &recordingNotifier{},
		sleeps:   &sleepRecorder{cycles: cycles, cancel: cancel, policy: policy},
		ctx:      ctx,
		cancel:   cancel,
	}
	h.sched = New(source, Options{
		Policy:   policy,
		Sink:     h.sink,
		Notifier: h.notifier,
		Tracker:  h.tracker,
		Logger:   logging.Discard(),
		Sleep:    h.sleeps.sleep,
	})
	return h
}

func statusOf(t *testing.T, tr *performance.Tracker, id enums.BettingProvider) performance.ProviderStatus {
	t.Helper()
	for _, st := range tr.Snapshot().Providers {
		if st.Provider == id {
			return st
		}
	}
	t.Fatalf("no status for %s", id)
	return performance.ProviderStatus{}
}

func TestStartup_LoginFailureIsolated(t *testing.T) {
	a := providertest.New(enums.Bet365)
	a.LoginFunc = func(int) bool { return false }
	b := providertest.New(enums.WilliamHill)
	c := providertest.New(enums.Betfair)

	h := newHarness(t, stubSource{providers: []interfaces.Provider{a, b, c}}, testPolicy(), 1)
	require.NoError(t, h.sched.Startup(h.ctx, h.sched.source.ListEnabled()))

	assert.Equal(t, []interfaces.Provider{b, c}, h.sched.members)
	assert.Equal(t, []notify.AlertKind{notify.AlertLoginFailed}, h.notifier.kinds())

	report := h.sched.RunCycle(h.ctx)
	assert.Equal(t, []enums.BettingProvider{enums.WilliamHill, enums.Betfair}, report.Active)
	assert.Empty(t, report.Excluded)
	assert.Equal(t, 1, a.Counts().Logins, "dropped providers are not retried")
	assert.Zero(t, a.Counts().MatchScrapes)
}

func TestRun_NothingToDo(t *testing.T) {
	t.Run("no providers", func(t *testing.T) {
		h := newHarness(t, stubSource{}, testPolicy(), 1)
		assert.ErrorIs(t, h.sched.Run(h.ctx), ErrNoProviders)
	})

	t.Run("every login fails", func(t *testing.T) {
		a := providertest.New(enums.Bet365)
		a.LoginFunc = func(int) bool { return false }
		b := providertest.New(enums.Betway)
		source := stubSource{
			providers: []interfaces.Provider{a, b},
			noCreds:   map[enums.BettingProvider]bool{enums.Betway: true},
		}
		h := newHarness(t, source, testPolicy(), 1)

		assert.ErrorIs(t, h.sched.Run(h.ctx), ErrNoActiveProviders)
		assert.Zero(t, b.Counts().Logins, "no login without credentials")
		assert.Zero(t, a.Counts().Logouts)
		assert.Contains(t, h.notifier.kinds(), notify.AlertNoActiveProviders)
	})
}

func TestRunCycle_HarvestFailureIsolated(t *testing.T) {
	a := providertest.New(enums.Bet365)
	a.MatchesFunc = func() []models.Match { panic("selector engine crashed") }
	b := providertest.New(enums.WilliamHill)
	b.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.WilliamHill, "w1", "Arsenal", "Chelsea", kickoff),
			fixture(enums.WilliamHill, "w2", "Leeds", "Everton", kickoff.Add(time.Hour)),
			fixture(enums.WilliamHill, "w3", "Fulham", "Brentford", kickoff.Add(2*time.Hour)),
		}
	}

	for _, parallel := range []bool{false, true} {
		policy := testPolicy()
		policy.ParallelProviders = parallel
		h := newHarness(t, stubSource{providers: []interfaces.Provider{a, b}}, policy, 1)
		require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{a, b}))

		report := h.sched.RunCycle(h.ctx)
		assert.Equal(t, OutcomeOK, report.Outcome)
		assert.Len(t, report.Harvest.Matches, 3, "parallel=%v", parallel)

		st := statusOf(t, h.tracker, enums.Bet365)
		assert.Equal(t, "matches", st.LastStep)
		assert.Contains(t, st.LastError, "selector engine crashed")
	}
}

func TestRunCycle_ReloginOnce(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.HealthFunc = func(check int) bool { return check != 1 }

	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

	report := h.sched.RunCycle(h.ctx)
	assert.Equal(t, []enums.BettingProvider{enums.Bet365}, report.Active)
	assert.Equal(t, 2, p.Counts().Logins, "startup login plus exactly one re-login")
	assert.Equal(t, 1, p.Counts().MatchScrapes)
}

func TestRunCycle_ReloginFailureRetriedNextCycle(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.HealthFunc = func(check int) bool { return check > 2 }
	p.LoginFunc = func(attempt int) bool { return attempt != 2 }

	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

	first := h.sched.RunCycle(h.ctx)
	assert.Equal(t, OutcomeNoActive, first.Outcome)
	assert.Equal(t, []enums.BettingProvider{enums.Bet365}, first.Excluded)
	assert.Zero(t, p.Counts().MatchScrapes)

	second := h.sched.RunCycle(h.ctx)
	assert.Equal(t, OutcomeOK, second.Outcome)
	assert.Equal(t, []enums.BettingProvider{enums.Bet365}, second.Active)
	assert.Equal(t, 3, p.Counts().Logins)
	assert.Equal(t, 1, p.Counts().MatchScrapes)

	assert.Equal(t,
		[]notify.AlertKind{notify.AlertReloginFailed, notify.AlertNoActiveProviders, notify.AlertProviderRecovered},
		h.notifier.kinds())
}

func TestRun_EndToEnd(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff),
			fixture(enums.Bet365, "102", "Leeds", "Everton", kickoff.Add(3*time.Hour)),
		}
	}
	p.OddsFunc = func(id string) []models.Odds { return threeWay(enums.Bet365, id) }

	policy := testPolicy()
	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, policy, 1)
	require.NoError(t, h.sched.Run(h.ctx))

	harvest, ok := h.sink.Latest()
	require.True(t, ok)
	assert.Len(t, harvest.Matches, 2)
	assert.Equal(t, 6, harvest.OddsCount())
	assert.NotEmpty(t, harvest.ID)
	for _, mo := range harvest.Odds {
		for _, o := range mo.Odds {
			assert.True(t, o.Price.IsPositive())
		}
	}

	c := p.Counts()
	assert.Equal(t, 1, c.Logins)
	assert.Equal(t, 1, c.Logouts)
	assert.Equal(t, []string{"101", "102"}, c.OddsScrapes)
	assert.Equal(t, []time.Duration{policy.MatchDelay, policy.ProviderDelay, policy.CycleInterval}, h.sleeps.recorded())
}

func TestRun_EmptyActiveWaitsRecoveryInterval(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.HealthFunc = func(int) bool { return false }
	p.LoginFunc = func(attempt int) bool { return attempt == 1 }

	policy := testPolicy()
	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, policy, 2)
	require.NoError(t, h.sched.Run(h.ctx))

	assert.Equal(t, []time.Duration{policy.RecoveryInterval, policy.RecoveryInterval}, h.sleeps.recorded())
	assert.Zero(t, p.Counts().MatchScrapes)
	assert.Equal(t, 3, p.Counts().Logins, "one re-login per cycle")
	assert.Zero(t, p.Counts().Logouts, "an expired session is not logged out")
	_, stored := h.sink.Latest()
	assert.False(t, stored)
}

func TestRun_CancelledMidHarvest(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff),
			fixture(enums.Bet365, "102", "Leeds", "Everton", kickoff.Add(time.Hour)),
			fixture(enums.Bet365, "103", "Fulham", "Brentford", kickoff.Add(2*time.Hour)),
		}
	}

	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 10)
	p.OddsFunc = func(id string) []models.Odds {
		h.cancel()
		return threeWay(enums.Bet365, id)
	}

	require.NoError(t, h.sched.Run(h.ctx))

	c := p.Counts()
	assert.Equal(t, []string{"101"}, c.OddsScrapes, "the in-flight call completes, nothing new starts")
	assert.Equal(t, 1, c.Logouts)

	harvest, ok := h.sink.Latest()
	require.True(t, ok, "partial harvest is still stored")
	assert.Len(t, harvest.Matches, 3)
	assert.Equal(t, 3, harvest.OddsCount())
}

func TestRunCycle_BoundedOddsHarvestRotates(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.Bet365, "104", "Derby", "Stoke", kickoff.Add(3*time.Hour)),
			fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff),
			fixture(enums.Bet365, "103", "Cardiff", "Wigan", kickoff.Add(2*time.Hour)),
			fixture(enums.Bet365, "102", "Burnley", "Hull", kickoff.Add(time.Hour)),
		}
	}

	policy := testPolicy()
	policy.MaxMatchesPerCycle = 3
	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, policy, 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

	h.sched.RunCycle(h.ctx)
	h.sched.RunCycle(h.ctx)
	assert.Equal(t, []string{"101", "102", "103", "104", "101", "102"}, p.Counts().OddsScrapes)
}

func TestRunCycle_ProvidersKeptSeparateAndPaced(t *testing.T) {
	a := providertest.New(enums.Bet365)
	a.MatchesFunc = func() []models.Match {
		return []models.Match{fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff)}
	}
	a.OddsFunc = func(id string) []models.Odds { return threeWay(enums.Bet365, id) }
	b := providertest.New(enums.WilliamHill)
	b.MatchesFunc = func() []models.Match {
		return []models.Match{fixture(enums.WilliamHill, "w9", "arsenal", "CHELSEA", kickoff)}
	}
	b.OddsFunc = func(id string) []models.Odds { return threeWay(enums.WilliamHill, id) }

	policy := testPolicy()
	h := newHarness(t, stubSource{providers: []interfaces.Provider{a, b}}, policy, 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{a, b}))

	report := h.sched.RunCycle(h.ctx)
	require.Len(t, report.Harvest.Matches, 2)
	for _, m := range report.Harvest.Matches {
		assert.Len(t, m.Mappings, 1)
	}
	assert.Equal(t, enums.Bet365, report.Harvest.Matches[0].Mappings[0].Provider)
	assert.Equal(t, enums.WilliamHill, report.Harvest.Matches[1].Mappings[0].Provider)
	assert.Equal(t, 6, report.Harvest.OddsCount())
	assert.Equal(t, []time.Duration{policy.MatchDelay, policy.ProviderDelay}, h.sleeps.recorded())
}

func TestRunCycle_SameFixtureListingsNotCollapsed(t *testing.T) {
	p := providertest.New(enums.WilliamHill)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.WilliamHill, "w1", "Arsenal", "Chelsea", kickoff),
			fixture(enums.WilliamHill, "w2", "Arsenal", "Chelsea", kickoff),
			fixture(enums.WilliamHill, "w3", "Fulham", "Brentford", kickoff.Add(time.Hour)),
		}
	}

	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

	report := h.sched.RunCycle(h.ctx)
	require.Len(t, report.Harvest.Matches, 3)
	var ids []string
	for _, m := range report.Harvest.Matches {
		require.Len(t, m.Mappings, 1)
		ids = append(ids, m.Mappings[0].ProviderMatchID)
	}
	assert.Equal(t, []string{"w1", "w2", "w3"}, ids)
}

func TestRunCycle_StoreFailureKeepsLooping(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff)}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cycles := 0
	sched := New(stubSource{providers: []interfaces.Provider{p}}, Options{
		Policy: testPolicy(),
		Sink:   failingSink{},
		Logger: logging.Discard(),
		Sleep: func(ctx context.Context, d time.Duration, _ *providerutil.Trigger) bool {
			cycles++
			if cycles == 2 {
				cancel()
			}
			return ctx.Err() == nil
		},
	})

	require.NoError(t, sched.Run(ctx))
	assert.Equal(t, 2, p.Counts().MatchScrapes)
	assert.Equal(t, 1, p.Counts().Logouts)
}

func TestRun_LogoutPanicIsLogged(t *testing.T) {
	p := &panickyLogout{Fake: providertest.New(enums.Bet365)}
	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 1)
	assert.NoError(t, h.sched.Run(h.ctx))
}

type panickyLogout struct {
	*providertest.Fake
}

func (p *panickyLogout) Logout(context.Context) { panic("browser already gone") }

func TestRunCycle_InvalidRecordsSkipped(t *testing.T) {
	p := providertest.New(enums.Bet365)
	p.MatchesFunc = func() []models.Match {
		return []models.Match{
			fixture(enums.Bet365, "101", " Arsenal ", "Chelsea", kickoff),
			fixture(enums.Bet365, "102", "Leeds", "", kickoff),
			fixture(enums.WilliamHill, "w1", "Fulham", "Brentford", kickoff),
		}
	}
	p.OddsFunc = func(id string) []models.Odds {
		odds := threeWay(enums.Bet365, id)
		odds[1].Price = decimal.Zero
		return odds
	}

	h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, testPolicy(), 1)
	require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

	report := h.sched.RunCycle(h.ctx)
	require.Len(t, report.Harvest.Matches, 1)
	assert.Equal(t, "Arsenal", report.Harvest.Matches[0].HomeTeam)
	assert.Equal(t, 2, report.Harvest.OddsCount())
}

func TestRunCycle_LongShotPrices(t *testing.T) {
	for _, tt := range []struct {
		name     string
		maxPrice decimal.Decimal
		want     int
	}{
		{name: "no cap", maxPrice: decimal.Zero, want: 3},
		{name: "capped", maxPrice: decimal.NewFromInt(1000), want: 2},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p := providertest.New(enums.Bet365)
			p.MatchesFunc = func() []models.Match {
				return []models.Match{fixture(enums.Bet365, "101", "Arsenal", "Chelsea", kickoff)}
			}
			p.OddsFunc = func(id string) []models.Odds {
				odds := threeWay(enums.Bet365, id)
				odds[2].Price = decimal.NewFromInt(1500)
				return odds
			}

			policy := testPolicy()
			policy.MaxPrice = tt.maxPrice
			h := newHarness(t, stubSource{providers: []interfaces.Provider{p}}, policy, 1)
			require.NoError(t, h.sched.Startup(h.ctx, []interfaces.Provider{p}))

			report := h.sched.RunCycle(h.ctx)
			assert.Equal(t, tt.want, report.Harvest.OddsCount())
		})
	}
}

func TestCollectMatches(t *testing.T) {
	lists := [][]models.Match{
		{
			fixture(enums.Bet365, "2", "Leeds", "Everton", kickoff.Add(time.Hour)),
			fixture(enums.Bet365, "1", "Arsenal", "Chelsea", kickoff),
		},
		{
			fixture(enums.WilliamHill, "x", "Arsenal", "Chelsea", kickoff),
			fixture(enums.WilliamHill, "x", "Arsenal", "Chelsea", kickoff),
		},
	}
	all := collectMatches(lists)
	require.Len(t, all, 4)
	assert.Equal(t, "1", all[0].Mappings[0].ProviderMatchID)
	assert.Equal(t, enums.WilliamHill, all[1].Mappings[0].Provider)
	assert.Equal(t, enums.WilliamHill, all[2].Mappings[0].Provider)
	assert.Equal(t, "2", all[3].Mappings[0].ProviderMatchID)
}
