package health

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Vodeneev/betscraper/internal/pkg/health/handlers"
	"github.com/Vodeneev/betscraper/internal/pkg/metrics"
	"github.com/Vodeneev/betscraper/internal/pkg/performance"
	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
)

// Options selects what the ops server exposes. Nil fields disable the
// matching routes (bets) or make them report 503 (status, trigger).
type Options struct {
	Service           string
	ReadHeaderTimeout time.Duration
	Metrics           *metrics.Metrics
	Tracker           *performance.Tracker
	Trigger           *providerutil.Trigger
	Bets              handlers.BetService
	Logger            *slog.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Health endpoints
	r.Get("/ping", handlers.HandlePing)
	r.Get("/health", handlers.HandleHealth)

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/status", handlers.HandleStatus(opts.Tracker))
	r.Post("/scheduler/trigger", handlers.HandleTrigger(opts.Trigger))

	if opts.Bets != nil {
		handlers.NewBetHandler(opts.Bets, opts.Logger).Routes(r)
	}
	return r
}

// Run starts the server in the background and shuts it down when ctx ends.
// The returned channel is closed once the listener has stopped.
func Run(ctx context.Context, addr string, opts Options) (<-chan struct{}, error) {
	if opts.ReadHeaderTimeout <= 0 {
		return nil, errors.New("read_header_timeout must be specified in config")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(opts),
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		logger.Info("Health server listening", "service", opts.Service, "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Health server error", "service", opts.Service, "error", err)
		}
	}()
	return done, nil
}

func AddrFor(port int) (string, error) {
	if port <= 0 {
		return "", errors.New("port must be greater than 0")
	}
	return fmt.Sprintf(":%d", port), nil
}
