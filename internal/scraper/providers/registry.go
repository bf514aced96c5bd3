// Package providers maps betting provider ids to integrations and decides
// which of them a process should run.
package providers

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/Vodeneev/betscraper/internal/pkg/config"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
)

// ErrNotSupported matches every *NotSupportedError.
var ErrNotSupported = errors.New("betting provider not supported")

// NotSupportedError is returned by Resolve for a provider without an integration.
type NotSupportedError struct {
	Provider enums.BettingProvider
}

func (e *NotSupportedError) Error() string {
	return fmt.Sprintf("betting provider %s is not supported", e.Provider)
}

func (e *NotSupportedError) Is(target error) bool {
	return target == ErrNotSupported
}

// Deps is what a factory gets to build its integration.
type Deps struct {
	Config  *config.Config
	Account config.ProviderAccount
	Logger  *slog.Logger
}

type Factory func(deps Deps) (interfaces.Provider, error)

var (
	registryMu sync.RWMutex
	registry   = map[enums.BettingProvider]Factory{}
)

// Register makes an integration available. Integrations call it from init.
func Register(id enums.BettingProvider, f Factory) {
	if !id.Valid() {
		panic("providers: unknown provider id in Register: " + string(id))
	}
	if f == nil {
		panic("providers: nil factory in Register for " + string(id))
	}

	registryMu.Lock()
	defer registryMu.Unlock()
	if _, exists := registry[id]; exists {
		panic("providers: duplicate registration for " + string(id))
	}
	registry[id] = f
}

// Registered returns a snapshot of the registered factories.
func Registered() map[enums.BettingProvider]Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make(map[enums.BettingProvider]Factory, len(registry))
	for k, v := range registry {
		out[k] = v
	}
	return out
}

// Registry constructs integrations on demand and caches one instance per id.
type Registry struct {
	cfg       *config.Config
	logger    *slog.Logger
	factories map[enums.BettingProvider]Factory

	mu        sync.Mutex
	instances map[enums.BettingProvider]interfaces.Provider
}

// New builds a registry over everything registered so far.
func New(cfg *config.Config, logger *slog.Logger) *Registry {
	return NewWithFactories(cfg, logger, Registered())
}

func NewWithFactories(cfg *config.Config, logger *slog.Logger, factories map[enums.BettingProvider]Factory) *Registry {
	if cfg == nil {
		cfg = &config.Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		cfg:       cfg,
		logger:    logger.With("component", "provider_registry"),
		factories: factories,
		instances: map[enums.BettingProvider]interfaces.Provider{},
	}
}

// Implemented reports whether an integration exists for id.
func (r *Registry) Implemented(id enums.BettingProvider) bool {
	_, ok := r.factories[id]
	return ok
}

// Credentials returns the configured account credentials for id.
func (r *Registry) Credentials(id enums.BettingProvider) (interfaces.Credentials, bool) {
	acc, ok := r.cfg.BettingProviders.Account(string(id))
	if !ok {
		return interfaces.Credentials{}, false
	}
	return interfaces.Credentials{Username: acc.Username, Password: acc.Password}, true
}

// IsAvailable is a config check only: an account section with a username and
// a password. It never constructs an integration.
func (r *Registry) IsAvailable(id enums.BettingProvider) bool {
	creds, ok := r.Credentials(id)
	return ok && creds.Complete()
}

// Resolve returns the integration for id. Repeated calls return the same
// instance.
func (r *Registry) Resolve(id enums.BettingProvider) (interfaces.Provider, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, &NotSupportedError{Provider: id}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.instances[id]; ok {
		return p, nil
	}

	p, err := r.construct(id, factory)
	if err != nil {
		return nil, err
	}
	r.instances[id] = p
	return p, nil
}

func (r *Registry) construct(id enums.BettingProvider, factory Factory) (p interfaces.Provider, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			p, err = nil, fmt.Errorf("construct %s: panic: %v", id, rec)
		}
	}()

	acc, _ := r.cfg.BettingProviders.Account(string(id))
	p, err = factory(Deps{
		Config:  r.cfg,
		Account: acc,
		Logger:  r.logger.With("provider", string(id)),
	})
	if err != nil {
		return nil, fmt.Errorf("construct %s: %w", id, err)
	}
	if p == nil {
		return nil, fmt.Errorf("construct %s: factory returned nil", id)
	}
	return p, nil
}

// ListAll returns every implemented integration in catalogue order.
// Integrations that fail to construct are logged and left out.
func (r *Registry) ListAll() []interfaces.Provider {
	var out []interfaces.Provider
	for _, id := range enums.Providers() {
		if !r.Implemented(id) {
			continue
		}
		p, err := r.Resolve(id)
		if err != nil {
			r.logger.Error("failed to construct provider", "provider", string(id), "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

// ListEnabled returns the configured providers that are implemented and
// have credentials. With no enable-list it falls back to the first
// implemented, available provider.
func (r *Registry) ListEnabled() []interfaces.Provider {
	enabled := r.cfg.BettingProviders.Enabled
	if len(enabled) == 0 {
		return r.fallback()
	}

	var out []interfaces.Provider
	seen := map[enums.BettingProvider]bool{}
	for _, name := range enabled {
		id, err := enums.ParseProvider(name)
		if err != nil {
			r.logger.Warn("skipping unknown provider in enabled list", "name", name, "error", err)
			continue
		}
		if seen[id] {
			continue
		}
		seen[id] = true

		if !r.Implemented(id) {
			r.logger.Warn("skipping enabled provider without an integration", "provider", string(id))
			continue
		}
		if !r.IsAvailable(id) {
			r.logger.Warn("skipping enabled provider without credentials", "provider", string(id))
			continue
		}
		p, err := r.Resolve(id)
		if err != nil {
			r.logger.Error("failed to construct provider", "provider", string(id), "error", err)
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Registry) fallback() []interfaces.Provider {
	for _, id := range enums.Providers() {
		if !r.Implemented(id) || !r.IsAvailable(id) {
			continue
		}
		p, err := r.Resolve(id)
		if err != nil {
			r.logger.Error("failed to construct fallback provider", "provider", string(id), "error", err)
			continue
		}
		r.logger.Info("no providers enabled, using fallback", "provider", string(id))
		return []interfaces.Provider{p}
	}
	r.logger.Warn("no providers enabled and no fallback available")
	return nil
}

// Close releases every constructed integration.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, p := range r.instances {
		if err := p.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
	}
	clear(r.instances)
	return errors.Join(errs...)
}

// EnabledNames is the enable-list as configured, for logging.
func (r *Registry) EnabledNames() string {
	if len(r.cfg.BettingProviders.Enabled) == 0 {
		return "(fallback)"
	}
	return strings.Join(r.cfg.BettingProviders.Enabled, ",")
}
