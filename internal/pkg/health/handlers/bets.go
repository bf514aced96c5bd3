package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/betting"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/scraper/providers"
)

// BetService is implemented by betting.Service.
type BetService interface {
	PlaceBet(ctx context.Context, id enums.BettingProvider, req models.BetPlacementRequest) (models.BetPlacementResult, error)
	Balance(ctx context.Context, id enums.BettingProvider) (decimal.NullDecimal, error)
	History(ctx context.Context, id enums.BettingProvider, r models.HistoryRange) ([]models.ProviderBetHistory, error)
}

const maxBetBody = 1 << 16

type BetHandler struct {
	bets   BetService
	logger *slog.Logger
}

func NewBetHandler(bets BetService, logger *slog.Logger) *BetHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &BetHandler{bets: bets, logger: logger}
}

// Routes mounts the bet endpoints under /providers/{provider}.
func (h *BetHandler) Routes(r chi.Router) {
	r.Post("/providers/{provider}/bets", h.PlaceBet)
	r.Get("/providers/{provider}/balance", h.Balance)
	r.Get("/providers/{provider}/history", h.History)
}

// PlaceBet handles POST /providers/{provider}/bets. A rejected bet is still a
// 200 with success=false; only requests that never reached the provider fail.
func (h *BetHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(w, r)
	if !ok {
		return
	}

	var req models.BetPlacementRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBetBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := h.bets.PlaceBet(r.Context(), id, req)
	if err != nil {
		h.fail(w, id, "place bet", err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type balanceResponse struct {
	Provider enums.BettingProvider `json:"provider"`
	Balance  decimal.NullDecimal   `json:"balance"`
}

// Balance handles GET /providers/{provider}/balance.
func (h *BetHandler) Balance(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(w, r)
	if !ok {
		return
	}

	bal, err := h.bets.Balance(r.Context(), id)
	if err != nil {
		h.fail(w, id, "balance", err)
		return
	}
	respondJSON(w, http.StatusOK, balanceResponse{Provider: id, Balance: bal})
}

type historyResponse struct {
	Provider enums.BettingProvider       `json:"provider"`
	Bets     []models.ProviderBetHistory `json:"bets"`
	Count    int                         `json:"count"`
}

// History handles GET /providers/{provider}/history?from=&to= with RFC3339 bounds.
func (h *BetHandler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := providerParam(w, r)
	if !ok {
		return
	}

	var rng models.HistoryRange
	for _, b := range []struct {
		name string
		dst  *time.Time
	}{{"from", &rng.From}, {"to", &rng.To}} {
		v := r.URL.Query().Get(b.name)
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid "+b.name+": expected RFC3339 timestamp")
			return
		}
		*b.dst = t
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		respondError(w, http.StatusBadRequest, "to must not be before from")
		return
	}

	bets, err := h.bets.History(r.Context(), id, rng)
	if err != nil {
		h.fail(w, id, "history", err)
		return
	}
	if bets == nil {
		bets = []models.ProviderBetHistory{}
	}
	respondJSON(w, http.StatusOK, historyResponse{Provider: id, Bets: bets, Count: len(bets)})
}

func providerParam(w http.ResponseWriter, r *http.Request) (enums.BettingProvider, bool) {
	id, err := enums.ParseProvider(chi.URLParam(r, "provider"))
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return "", false
	}
	return id, true
}

func (h *BetHandler) fail(w http.ResponseWriter, id enums.BettingProvider, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, providers.ErrNotSupported):
		status = http.StatusNotImplemented
	case errors.Is(err, models.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, betting.ErrUnavailable):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("bet endpoint failed", "provider", string(id), "op", op, "error", err)
	}
	respondError(w, status, err.Error())
}
