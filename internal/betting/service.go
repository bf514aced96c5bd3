// Package betting places bets and reads account data through the provider
// registry on behalf of an external caller.
package betting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/metrics"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
	"github.com/Vodeneev/betscraper/internal/pkg/storage"
)

// ErrUnavailable means the provider exists but no session could be obtained.
var ErrUnavailable = errors.New("provider unavailable")

// Resolver is the part of the provider registry the service needs.
type Resolver interface {
	Resolve(id enums.BettingProvider) (interfaces.Provider, error)
	Credentials(id enums.BettingProvider) (interfaces.Credentials, bool)
}

type Options struct {
	BetLog      storage.BetLog
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	StepTimeout time.Duration
	Now         func() time.Time
}

type Service struct {
	providers   Resolver
	betLog      storage.BetLog
	metrics     *metrics.Metrics
	logger      *slog.Logger
	stepTimeout time.Duration
	now         func() time.Time
}

func NewService(providers Resolver, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.StepTimeout <= 0 {
		opts.StepTimeout = 2 * time.Minute
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		providers:   providers,
		betLog:      opts.BetLog,
		metrics:     opts.Metrics,
		logger:      opts.Logger.With("component", "betting"),
		stepTimeout: opts.StepTimeout,
		now:         opts.Now,
	}
}

// PlaceBet returns an error only when the request cannot reach a provider:
// unsupported provider, invalid request or missing credentials. Everything
// the provider reports comes back as a result value.
func (s *Service) PlaceBet(ctx context.Context, id enums.BettingProvider, req models.BetPlacementRequest) (models.BetPlacementResult, error) {
	p, err := s.providers.Resolve(id)
	if err != nil {
		return models.BetPlacementResult{}, err
	}
	if err := req.Validate(); err != nil {
		return models.BetPlacementResult{}, err
	}

	stepCtx, cancel := providerutil.StepContext(ctx, s.stepTimeout)
	defer cancel()

	attempted := s.now().UTC()
	var res models.BetPlacementResult
	if err := s.ensureSession(stepCtx, id, p); err != nil {
		if !errors.Is(err, errLoginFailed) {
			return models.BetPlacementResult{}, err
		}
		res = models.FailedPlacement("%v", err)
	} else {
		res = s.callPlaceBet(stepCtx, p, req)
	}

	s.metrics.RecordBet(id, res.Success)
	s.record(ctx, storage.BetRecord{Provider: id, Request: req, Result: res, AttemptedAt: attempted})

	log := s.logger.With("provider", string(id), "match_id", req.ProviderMatchID, "odds_id", req.ProviderOddsID)
	if res.Success {
		log.Info("bet placed", "bet_id", res.ProviderBetID)
	} else {
		log.Warn("bet placement failed", "reason", res.ErrorMessage)
	}
	return res, nil
}

func (s *Service) callPlaceBet(ctx context.Context, p interfaces.Provider, req models.BetPlacementRequest) (res models.BetPlacementResult) {
	err := providerutil.Guard(func() error {
		res = p.PlaceBet(ctx, req)
		return nil
	})
	if err != nil {
		s.logger.Error("provider panicked placing bet", "provider", string(p.ID()), "error", err)
		return models.FailedPlacement("internal error placing bet: %v", err)
	}
	if !res.Success && res.ErrorMessage == "" {
		res.ErrorMessage = "bet placement failed"
	}
	return res
}

// Balance returns the account balance; an invalid NullDecimal means the
// provider could not read it.
func (s *Service) Balance(ctx context.Context, id enums.BettingProvider) (decimal.NullDecimal, error) {
	p, err := s.providers.Resolve(id)
	if err != nil {
		return decimal.NullDecimal{}, err
	}

	stepCtx, cancel := providerutil.StepContext(ctx, s.stepTimeout)
	defer cancel()

	if err := s.ensureSession(stepCtx, id, p); err != nil {
		return decimal.NullDecimal{}, err
	}

	var bal decimal.NullDecimal
	if err := providerutil.Guard(func() error {
		bal = p.AccountBalance(stepCtx)
		return nil
	}); err != nil {
		s.logger.Error("provider panicked reading balance", "provider", string(id), "error", err)
		return decimal.NullDecimal{}, nil
	}
	if bal.Valid {
		s.metrics.SetBalance(id, bal.Decimal)
	}
	return bal, nil
}

// History returns bets placed within r.
func (s *Service) History(ctx context.Context, id enums.BettingProvider, r models.HistoryRange) ([]models.ProviderBetHistory, error) {
	p, err := s.providers.Resolve(id)
	if err != nil {
		return nil, err
	}

	stepCtx, cancel := providerutil.StepContext(ctx, s.stepTimeout)
	defer cancel()

	if err := s.ensureSession(stepCtx, id, p); err != nil {
		return nil, err
	}

	var out []models.ProviderBetHistory
	if err := providerutil.Guard(func() error {
		out = slices.Collect(p.BetHistory(stepCtx, r))
		return nil
	}); err != nil {
		s.logger.Error("provider panicked reading history", "provider", string(id), "error", err)
		return nil, nil
	}
	return out, nil
}

var errLoginFailed = fmt.Errorf("%w: login failed", ErrUnavailable)

// ensureSession logs in with the configured credentials unless the provider
// already has a live session. One attempt only.
func (s *Service) ensureSession(ctx context.Context, id enums.BettingProvider, p interfaces.Provider) error {
	var err error
	guardErr := providerutil.Guard(func() error {
		if p.IsLoggedIn(ctx) {
			return nil
		}
		creds, ok := s.providers.Credentials(id)
		if !ok || !creds.Complete() {
			err = fmt.Errorf("%w: no credentials configured for %s", ErrUnavailable, id)
			return nil
		}
		if !p.Login(ctx, creds.Username, creds.Password) {
			s.metrics.RecordLogin(id, false)
			err = fmt.Errorf("%s: %w", id, errLoginFailed)
			return nil
		}
		s.metrics.RecordLogin(id, true)
		return nil
	})
	if guardErr != nil {
		s.logger.Error("provider panicked during login", "provider", string(id), "error", guardErr)
		return fmt.Errorf("%s: %w: %v", id, errLoginFailed, guardErr)
	}
	return err
}

func (s *Service) record(ctx context.Context, rec storage.BetRecord) {
	if s.betLog == nil {
		return
	}
	if err := s.betLog.RecordBet(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error("failed to record bet attempt", "provider", string(rec.Provider), "error", err)
	}
}
