package handlers

import (
	"net/http"

	"github.com/Vodeneev/betscraper/internal/pkg/providerutil"
)

// HandleTrigger wakes the scheduler so the next cycle starts without waiting
// out the interval. POST /scheduler/trigger
//
// 202 when the wake-up was queued, 200 when one is already pending.
func HandleTrigger(trigger *providerutil.Trigger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if trigger == nil {
			respondError(w, http.StatusServiceUnavailable, "scheduler is not running")
			return
		}
		if trigger.Fire() {
			respondJSON(w, http.StatusAccepted, map[string]string{"status": "triggered"})
			return
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "already pending"})
	}
}
