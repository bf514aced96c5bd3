// Package scheduler runs the scrape loop: log in to the enabled providers,
// then repeat health check, match harvest and odds harvest until cancelled.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/metrics"
	"github.com/Vodeneev/betscraper/internal/pkg/notify"
	"github.com/Vodeneev/betscraper/internal/pkg/performance"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
	"github.com/Vodeneev/betscraper/internal/pkg/storage"
	"github.com/Vodeneev/betscraper/internal/pkg/validation"
)

var (
	// ErrNoProviders means nothing was enabled and available at startup.
	ErrNoProviders = errors.New("no betting providers enabled")
	// ErrNoActiveProviders means every enabled provider failed its startup login.
	ErrNoActiveProviders = errors.New("no betting provider logged in")
)

// ProviderSource is the part of the registry the scheduler needs.
type ProviderSource interface {
	ListEnabled() []interfaces.Provider
	Credentials(id enums.BettingProvider) (interfaces.Credentials, bool)
}

// SleepFunc waits for d unless ctx is cancelled or the trigger fires. It
// reports false on cancellation.
type SleepFunc func(ctx context.Context, d time.Duration, trigger *providerutil.Trigger) bool

type Options struct {
	Policy   Policy
	Sink     storage.Sink
	Notifier notify.Notifier
	Metrics  *metrics.Metrics
	Tracker  *performance.Tracker
	Trigger  *providerutil.Trigger
	Logger   *slog.Logger
	Sleep    SleepFunc
	Now      func() time.Time
}

// Scheduler is not safe for concurrent Run calls. The member list and the
// active flags are only touched by the loop goroutine.
type Scheduler struct {
	source   ProviderSource
	policy   Policy
	sink     storage.Sink
	notifier notify.Notifier
	metrics  *metrics.Metrics
	tracker  *performance.Tracker
	trigger  *providerutil.Trigger
	logger   *slog.Logger
	sleep    SleepFunc
	now      func() time.Time

	sanitizer *validation.Sanitizer
	validator *validation.Validator

	// members logged in at startup; only they take part in later cycles.
	members []interfaces.Provider
	// active is the last known session state of each member.
	active  map[enums.BettingProvider]bool
	cycleID int64
	cursor  int
}

func New(source ProviderSource, opts Options) *Scheduler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Sleep == nil {
		opts.Sleep = providerutil.Sleep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Sink == nil {
		opts.Sink = storage.NewMemorySink(1)
	}
	return &Scheduler{
		source:   source,
		policy:   opts.Policy,
		sink:     opts.Sink,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		tracker:  opts.Tracker,
		trigger:  opts.Trigger,
		logger:   opts.Logger.With("component", "scheduler"),
		sleep:    opts.Sleep,
		now:      opts.Now,
		active:   make(map[enums.BettingProvider]bool),

		sanitizer: validation.NewSanitizer(),
		validator: validation.NewValidator(opts.Policy.MaxPrice),
	}
}

// Run logs in and cycles until ctx is cancelled. It returns ErrNoProviders or
// ErrNoActiveProviders when there is nothing to scrape, nil after a clean
// shutdown. Provider failures never end the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	enabled := s.source.ListEnabled()
	if len(enabled) == 0 {
		s.logger.Error("No betting providers configured, scheduler will not run")
		return ErrNoProviders
	}
	s.logger.Info("Starting scheduler", "providers", providerNames(enabled))

	if err := s.Startup(ctx, enabled); err != nil {
		return err
	}
	defer s.Shutdown(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		report := s.RunCycle(ctx)

		wait := s.policy.CycleInterval
		switch report.Outcome {
		case OutcomeCancelled:
			return nil
		case OutcomeNoActive:
			wait = s.policy.RecoveryInterval
			s.logger.Warn("No active providers, waiting before retry", "cycle_id", report.ID, "wait", wait)
		default:
			s.logger.Info("Scrape cycle completed", "cycle_id", report.ID, "next_in", wait)
		}

		if !s.sleep(ctx, wait, s.trigger) {
			return nil
		}
	}
}

// Startup logs in to every provider. Providers that fail are dropped for the
// rest of the run. It fails only when none logged in.
func (s *Scheduler) Startup(ctx context.Context, providers []interfaces.Provider) error {
	s.members = s.members[:0]
	for _, p := range providers {
		if ctx.Err() != nil {
			break
		}
		if s.login(ctx, p, "login") {
			s.members = append(s.members, p)
			s.active[p.ID()] = true
			continue
		}
		s.alert(ctx, notify.Alert{
			Kind:     notify.AlertLoginFailed,
			Provider: p.ID(),
			Message:  "startup login failed, provider dropped",
		})
	}

	s.metrics.SetActiveProviders(len(s.members))
	if len(s.members) == 0 {
		s.logger.Error("Failed to log in to any provider, stopping scheduler")
		s.alert(ctx, notify.Alert{Kind: notify.AlertNoActiveProviders, Message: "no provider logged in at startup"})
		return ErrNoActiveProviders
	}
	s.logger.Info("Providers logged in", "providers", providerNames(s.members))
	return nil
}

// Shutdown logs out of every member still believed active. Logout is never
// fatal; a panicking integration is logged and skipped.
func (s *Scheduler) Shutdown(ctx context.Context) {
	for _, p := range s.members {
		id := p.ID()
		if !s.active[id] {
			continue
		}
		stepCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
		err := providerutil.Guard(func() error {
			p.Logout(stepCtx)
			return nil
		})
		cancel()
		s.active[id] = false
		s.tracker.RecordActive(id, false)
		if err != nil {
			s.logger.Error("Error during logout", "provider", string(id), "error", err)
			continue
		}
		s.logger.Info("Logged out", "provider", string(id))
	}
	s.metrics.SetActiveProviders(0)
	s.logger.Info("Scheduler stopped")
}

// login runs one login attempt with the configured credentials.
func (s *Scheduler) login(ctx context.Context, p interfaces.Provider, step string) bool {
	id := p.ID()
	log := s.logger.With("provider", string(id), "step", step)

	creds, ok := s.source.Credentials(id)
	if !ok || !creds.Complete() {
		log.Warn("Credentials not configured")
		s.tracker.RecordStep(id, step, errors.New("credentials not configured"))
		return false
	}

	stepCtx, cancel := providerutil.StepContext(ctx, s.policy.StepTimeout)
	defer cancel()

	var loggedIn bool
	if err := providerutil.Guard(func() error {
		loggedIn = p.Login(stepCtx, creds.Username, creds.Password)
		return nil
	}); err != nil {
		log.Error("Error during login", "error", err)
		loggedIn = false
	}

	s.metrics.RecordLogin(id, loggedIn)
	s.tracker.RecordLogin(id, loggedIn)
	if loggedIn {
		log.Info("Successfully logged in")
	} else {
		log.Warn("Login failed")
	}
	return loggedIn
}

func (s *Scheduler) alert(ctx context.Context, a notify.Alert) {
	if s.notifier == nil {
		return
	}
	if a.At.IsZero() {
		a.At = s.now()
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), a); err != nil {
		s.logger.Warn("Failed to send alert", "kind", a.Kind.String(), "error", err)
	}
}

func providerNames(ps []interfaces.Provider) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Name())
	}
	return out
}
