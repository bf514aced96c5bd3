package performance

import (
	"slices"
	"sync"
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

// ProviderStatus is what the scraper last observed for one provider.
type ProviderStatus struct {
	Provider      enums.BettingProvider `json:"provider"`
	Active        bool                  `json:"active"`
	LastStep      string                `json:"last_step,omitempty"`
	LastError     string                `json:"last_error,omitempty"`
	LastErrorAt   time.Time             `json:"last_error_at,omitzero"`
	LastSuccessAt time.Time             `json:"last_success_at,omitzero"`
	Logins        int                   `json:"logins"`
	LoginFailures int                   `json:"login_failures"`
	Matches       int                   `json:"matches"`
	Odds          int                   `json:"odds"`
}

// CycleStatus summarizes one scrape cycle.
type CycleStatus struct {
	ID         int64     `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Outcome    string    `json:"outcome"`
	Active     int       `json:"active_providers"`
	Matches    int       `json:"matches"`
	Odds       int       `json:"odds"`
}

// Status is a point-in-time copy of the tracker.
type Status struct {
	Providers   []ProviderStatus `json:"providers"`
	LastCycle   *CycleStatus     `json:"last_cycle,omitempty"`
	TotalCycles int              `json:"total_cycles"`
}

// Tracker records scraper progress for the status endpoint. A nil *Tracker
// ignores every call.
type Tracker struct {
	mu          sync.RWMutex
	providers   map[enums.BettingProvider]*ProviderStatus
	lastCycle   *CycleStatus
	totalCycles int
	now         func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{
		providers: make(map[enums.BettingProvider]*ProviderStatus),
		now:       time.Now,
	}
}

func (t *Tracker) entry(p enums.BettingProvider) *ProviderStatus {
	s, ok := t.providers[p]
	if !ok {
		s = &ProviderStatus{Provider: p}
		t.providers[p] = s
	}
	return s
}

func (t *Tracker) RecordLogin(p enums.BettingProvider, ok bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.entry(p)
	s.LastStep = "login"
	s.Active = ok
	if ok {
		s.Logins++
		s.LastSuccessAt = t.now()
	} else {
		s.LoginFailures++
		s.LastError = "login failed"
		s.LastErrorAt = t.now()
	}
}

// RecordStep notes the outcome of a named step. err == nil marks success.
func (t *Tracker) RecordStep(p enums.BettingProvider, step string, err error) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.entry(p)
	s.LastStep = step
	if err != nil {
		s.LastError = err.Error()
		s.LastErrorAt = t.now()
		return
	}
	s.LastSuccessAt = t.now()
}

func (t *Tracker) RecordActive(p enums.BettingProvider, active bool) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entry(p).Active = active
}

func (t *Tracker) RecordHarvest(p enums.BettingProvider, matches, odds int) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	s := t.entry(p)
	s.Matches += matches
	s.Odds += odds
}

func (t *Tracker) RecordCycle(c CycleStatus) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	t.totalCycles++
	t.lastCycle = &c
}

// Snapshot returns a copy safe to serialize, providers sorted by id.
func (t *Tracker) Snapshot() Status {
	if t == nil {
		return Status{}
	}
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := Status{TotalCycles: t.totalCycles, Providers: make([]ProviderStatus, 0, len(t.providers))}
	for _, s := range t.providers {
		out.Providers = append(out.Providers, *s)
	}
	slices.SortFunc(out.Providers, func(a, b ProviderStatus) int {
		switch {
		case a.Provider < b.Provider:
			return -1
		case a.Provider > b.Provider:
			return 1
		}
		return 0
	})
	if t.lastCycle != nil {
		c := *t.lastCycle
		out.LastCycle = &c
	}
	return out
}
