package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

func validMatch() models.Match {
	return models.Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC),
		Mappings:  []models.ProviderMatchMapping{{Provider: enums.Bet365, ProviderMatchID: "101"}},
	}
}

func TestSanitizeMatch(t *testing.T) {
	m := validMatch()
	m.HomeTeam = "  Manchester\tUnited \n"
	m.Competition = "Premier\x00 League "
	m.KickoffAt = time.Date(2026, 10, 17, 17, 0, 0, 0, time.FixedZone("CEST", 2*3600))
	m.Mappings[0].ProviderMatchID = " 101/<script> "

	NewSanitizer().SanitizeMatch(&m)

	assert.Equal(t, "Manchester United", m.HomeTeam)
	assert.Equal(t, "Premier League", m.Competition)
	assert.Equal(t, time.UTC, m.KickoffAt.Location())
	assert.Equal(t, 15, m.KickoffAt.Hour())
	assert.Equal(t, "101script", m.Mappings[0].ProviderMatchID)
}

func TestSanitize_Truncates(t *testing.T) {
	m := validMatch()
	m.HomeTeam = strings.Repeat("é", 80)
	NewSanitizer().SanitizeMatch(&m)
	assert.LessOrEqual(t, len(m.HomeTeam), maxNameLen)
	assert.Equal(t, strings.Repeat("é", 50), m.HomeTeam)
}

func TestValidateMatch(t *testing.T) {
	v := NewValidator(decimal.Zero)
	assert.NoError(t, v.ValidateMatch(validMatch()))

	tests := map[string]func(*models.Match){
		"no home team":      func(m *models.Match) { m.HomeTeam = "" },
		"no away team":      func(m *models.Match) { m.AwayTeam = "" },
		"same teams":        func(m *models.Match) { m.AwayTeam = "arsenal" },
		"no kickoff":        func(m *models.Match) { m.KickoffAt = time.Time{} },
		"no mapping":        func(m *models.Match) { m.Mappings = nil },
		"unknown provider":  func(m *models.Match) { m.Mappings[0].Provider = "acme" },
		"empty provider id": func(m *models.Match) { m.Mappings[0].ProviderMatchID = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			m := validMatch()
			mutate(&m)
			assert.Error(t, v.ValidateMatch(m))
		})
	}
}

func TestValidateOdds(t *testing.T) {
	v := NewValidator(decimal.Zero)
	ok := models.Odds{
		Provider:       enums.Bet365,
		Market:         enums.Draw,
		Price:          decimal.RequireFromString("3.40"),
		ProviderOddsID: "O2",
	}
	assert.NoError(t, v.ValidateOdds(ok))

	longShot := ok
	longShot.Price = decimal.NewFromInt(1001)
	assert.NoError(t, v.ValidateOdds(longShot), "no cap by default")
	assert.Error(t, NewValidator(decimal.NewFromInt(1000)).ValidateOdds(longShot))

	bad := ok
	bad.Price = decimal.Zero
	assert.Error(t, v.ValidateOdds(bad))

	bad = ok
	bad.Market = "first_goalscorer"
	assert.Error(t, v.ValidateOdds(bad))

	bad = ok
	bad.ProviderOddsID = ""
	assert.Error(t, v.ValidateOdds(bad))
}
