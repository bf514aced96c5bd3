// Package metrics exposes scraper and bet placement metrics for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

// Metrics owns its registry so tests can create as many as they like.
// Record methods are no-ops on a nil *Metrics.
type Metrics struct {
	registry *prometheus.Registry

	Cycles          *prometheus.CounterVec
	CycleDuration   prometheus.Histogram
	Logins          *prometheus.CounterVec
	StepFailures    *prometheus.CounterVec
	Matches         *prometheus.CounterVec
	Odds            *prometheus.CounterVec
	Bets            *prometheus.CounterVec
	ActiveProviders prometheus.Gauge
	AccountBalance  *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_cycles_total",
				Help: "Scrape cycles by outcome",
			},
			[]string{"outcome"},
		),
		CycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "betscraper_cycle_duration_seconds",
				Help:    "Duration of completed scrape cycles",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34m
			},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_logins_total",
				Help: "Provider login attempts",
			},
			[]string{"provider", "result"},
		),
		StepFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_step_failures_total",
				Help: "Failed provider steps",
			},
			[]string{"provider", "step"},
		),
		Matches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_matches_total",
				Help: "Matches harvested",
			},
			[]string{"provider"},
		),
		Odds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_odds_total",
				Help: "Odds harvested",
			},
			[]string{"provider"},
		),
		Bets: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "betscraper_bets_total",
				Help: "Bet placement attempts",
			},
			[]string{"provider", "result"},
		),
		ActiveProviders: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "betscraper_active_providers",
				Help: "Providers with an active session after the last health pass",
			},
		),
		AccountBalance: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "betscraper_account_balance",
				Help: "Last balance read per provider account",
			},
			[]string{"provider"},
		),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.CycleDuration,
		m.Logins,
		m.StepFailures,
		m.Matches,
		m.Odds,
		m.Bets,
		m.ActiveProviders,
		m.AccountBalance,
	)
	return m
}

// Registry returns the Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordCycle(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
	m.CycleDuration.Observe(d.Seconds())
}

func (m *Metrics) RecordLogin(p enums.BettingProvider, ok bool) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(string(p), result(ok)).Inc()
}

func (m *Metrics) RecordStepFailure(p enums.BettingProvider, step string) {
	if m == nil {
		return
	}
	m.StepFailures.WithLabelValues(string(p), step).Inc()
}

func (m *Metrics) RecordHarvest(p enums.BettingProvider, matches, odds int) {
	if m == nil {
		return
	}
	m.Matches.WithLabelValues(string(p)).Add(float64(matches))
	m.Odds.WithLabelValues(string(p)).Add(float64(odds))
}

func (m *Metrics) RecordBet(p enums.BettingProvider, ok bool) {
	if m == nil {
		return
	}
	m.Bets.WithLabelValues(string(p), result(ok)).Inc()
}

func (m *Metrics) SetActiveProviders(n int) {
	if m == nil {
		return
	}
	m.ActiveProviders.Set(float64(n))
}

func (m *Metrics) SetBalance(p enums.BettingProvider, balance decimal.Decimal) {
	if m == nil {
		return
	}
	m.AccountBalance.WithLabelValues(string(p)).Set(balance.InexactFloat64())
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
