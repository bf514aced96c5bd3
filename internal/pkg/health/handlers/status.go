package handlers

import (
	"net/http"

	"github.com/Vodeneev/betscraper/internal/pkg/performance"
)

// HandleStatus serves the tracker snapshot on /status.
func HandleStatus(tracker *performance.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if tracker == nil {
			respondError(w, http.StatusServiceUnavailable, "status tracking is disabled")
			return
		}
		respondJSON(w, http.StatusOK, tracker.Snapshot())
	}
}
