package validation

import (
	"regexp"
	"strings"

	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	spaces       = regexp.MustCompile(`\s+`)
	unsafeIDChar = regexp.MustCompile(`[^a-zA-Z0-9_.:-]`)
)

const (
	maxIDLen   = 100
	maxNameLen = 100
	maxTextLen = 200
)

// Sanitizer normalizes scraped text before it is validated and stored.
type Sanitizer struct{}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{}
}

// SanitizeMatch cleans names and ids in place.
func (s *Sanitizer) SanitizeMatch(match *models.Match) {
	if match == nil {
		return
	}

	match.HomeTeam = s.sanitizeName(match.HomeTeam)
	match.AwayTeam = s.sanitizeName(match.AwayTeam)
	match.League = s.sanitizeString(match.League)
	match.Competition = s.sanitizeString(match.Competition)
	match.KickoffAt = match.KickoffAt.UTC()

	for i := range match.Mappings {
		mp := &match.Mappings[i]
		mp.ProviderMatchID = s.sanitizeID(mp.ProviderMatchID)
		mp.ProviderEventName = s.sanitizeString(mp.ProviderEventName)
		mp.ProviderURL = strings.TrimSpace(mp.ProviderURL)
	}
}

// SanitizeOdds cleans the id and description in place.
func (s *Sanitizer) SanitizeOdds(odds *models.Odds) {
	if odds == nil {
		return
	}
	odds.ProviderOddsID = s.sanitizeID(odds.ProviderOddsID)
	odds.Description = s.sanitizeString(odds.Description)
}

// sanitizeID keeps characters that are safe in cache keys and URLs. An id
// that sanitizes to nothing stays empty so validation rejects it.
func (s *Sanitizer) sanitizeID(id string) string {
	sanitized := unsafeIDChar.ReplaceAllString(strings.TrimSpace(id), "")
	return truncate(sanitized, maxIDLen)
}

func (s *Sanitizer) sanitizeString(str string) string {
	sanitized := controlChars.ReplaceAllString(strings.TrimSpace(str), "")
	return truncate(sanitized, maxTextLen)
}

func (s *Sanitizer) sanitizeName(name string) string {
	sanitized := controlChars.ReplaceAllString(name, " ")
	sanitized = strings.TrimSpace(spaces.ReplaceAllString(sanitized, " "))
	return truncate(sanitized, maxNameLen)
}

// truncate cuts at a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
