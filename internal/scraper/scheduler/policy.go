package scheduler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
)

// Policy holds the pacing and retry values of the scrape loop.
type Policy struct {
	HoursAhead         int
	MaxMatchesPerCycle int
	ProviderDelay      time.Duration
	MatchDelay         time.Duration
	CycleInterval      time.Duration
	RecoveryInterval   time.Duration
	StepTimeout        time.Duration
	ParallelProviders  bool
	// MaxPrice drops odds priced above it; zero keeps every positive price.
	MaxPrice decimal.Decimal
}

// PolicyFromConfig copies the scheduler section. Defaults are applied by
// config.Load, so a zero value here is taken literally.
func PolicyFromConfig(c config.SchedulerConfig) Policy {
	return Policy{
		HoursAhead:         c.HoursAhead,
		MaxMatchesPerCycle: c.MaxMatchesPerCycle,
		ProviderDelay:      c.ProviderDelay,
		MatchDelay:         c.MatchDelay,
		CycleInterval:      c.CycleInterval,
		RecoveryInterval:   c.RecoveryInterval,
		StepTimeout:        c.StepTimeout,
		ParallelProviders:  c.ParallelProviders,
		MaxPrice:           decimal.NewFromFloat(c.MaxPrice),
	}
}
