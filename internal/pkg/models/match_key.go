package models

import (
	"strings"
	"time"
)

// CanonicalMatchID builds a stable cross-provider match identifier.
//
// It assumes team names are in the same language across providers.
// Format: home|away|kickoff (UTC, RFC3339).
func CanonicalMatchID(homeTeam, awayTeam string, kickoff time.Time) string {
	home := normalizeKeyPart(homeTeam)
	away := normalizeKeyPart(awayTeam)

	ts := "unknown-time"
	if !kickoff.IsZero() {
		ts = kickoff.UTC().Format(time.RFC3339)
	}

	return home + "|" + away + "|" + ts
}

func normalizeKeyPart(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "/", " ")
	s = strings.ReplaceAll(s, "\\", " ")
	s = strings.ReplaceAll(s, "|", " ")
	return strings.Join(strings.Fields(s), " ")
}
