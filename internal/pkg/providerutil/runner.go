package providerutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
)

// ProviderFunc runs one step against a provider.
type ProviderFunc func(ctx context.Context, p interfaces.Provider) error

// RunOptions configures RunProviders.
type RunOptions struct {
	// Parallel runs each provider in its own goroutine. Calls on the same
	// provider are never concurrent either way.
	Parallel bool
	// OnError is called when fn returns an error or panics. If nil, errors are logged.
	OnError func(p interfaces.Provider, err error)
	Logger  *slog.Logger
}

// RunProviders calls fn for every provider and returns when all calls are done.
// A panic in fn is reported through OnError as an error.
func RunProviders(ctx context.Context, providers []interfaces.Provider, fn ProviderFunc, opts RunOptions) {
	if len(providers) == 0 {
		return
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	onError := opts.OnError
	if onError == nil {
		onError = func(p interfaces.Provider, err error) {
			logger.Error("provider step failed", "provider", string(p.ID()), "error", err)
		}
	}

	run := func(p interfaces.Provider) {
		if err := Guard(func() error { return fn(ctx, p) }); err != nil {
			onError(p, err)
		}
	}

	if !opts.Parallel {
		for _, p := range providers {
			if ctx.Err() != nil {
				return
			}
			run(p)
		}
		return
	}

	var wg sync.WaitGroup
	for _, p := range providers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			run(p)
		}()
	}
	wg.Wait()
}

// PanicError is a recovered panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Guard runs fn and turns a panic into a *PanicError.
func Guard(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec}
		}
	}()
	return fn()
}

// StepContext detaches from ctx's cancellation so shutdown does not abort a
// page interaction midway, and bounds the step by timeout instead.
func StepContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if timeout > 0 {
		return context.WithTimeout(detached, timeout)
	}
	return detached, func() {}
}

// Trigger wakes a waiting loop early. Triggers while one is pending collapse.
type Trigger struct {
	ch chan struct{}
}

func NewTrigger() *Trigger {
	return &Trigger{ch: make(chan struct{}, 1)}
}

// Fire requests a new cycle; it reports false when one was already pending.
func (t *Trigger) Fire() bool {
	select {
	case t.ch <- struct{}{}:
		return true
	default:
		return false
	}
}

// C is nil-safe so a loop without a trigger just never wakes.
func (t *Trigger) C() <-chan struct{} {
	if t == nil {
		return nil
	}
	return t.ch
}

// Sleep waits for d, ctx cancellation or the trigger. It reports whether the
// wait ended without cancellation.
func Sleep(ctx context.Context, d time.Duration, trigger *Trigger) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-trigger.C():
		return true
	}
}
