package models

import "time"

// Harvest is everything one scheduler cycle produced.
type Harvest struct {
	ID          string      `json:"id"`
	CycleID     int64       `json:"cycle_id"`
	CollectedAt time.Time   `json:"collected_at"`
	Matches     []Match     `json:"matches"`
	Odds        []MatchOdds `json:"odds"`
}

// OddsCount returns the total number of odds records in the harvest.
func (h Harvest) OddsCount() int {
	n := 0
	for _, mo := range h.Odds {
		n += len(mo.Odds)
	}
	return n
}
