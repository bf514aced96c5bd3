package storage

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

func sampleHarvest(id string) models.Harvest {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	mapping := models.ProviderMatchMapping{
		Provider:        enums.Bet365,
		ProviderMatchID: "101",
		ProviderURL:     "https://www.bet365.com/#/AC/B1/C1/D8/E101/F19/",
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}
	match := models.Match{
		HomeTeam:  "Arsenal",
		AwayTeam:  "Chelsea",
		KickoffAt: now.Add(27 * time.Hour),
		League:    "England Premier League",
		ScrapedAt: now,
		Mappings:  []models.ProviderMatchMapping{mapping},
	}
	odds := []models.Odds{
		{Provider: enums.Bet365, Market: enums.HomeWin, Price: decimal.RequireFromString("2.10"), ProviderOddsID: "O1", ScrapedAt: now},
		{Provider: enums.Bet365, Market: enums.Draw, Price: decimal.RequireFromString("3.40"), ProviderOddsID: "O2", ScrapedAt: now},
	}
	return models.Harvest{
		ID:          id,
		CycleID:     1,
		CollectedAt: now,
		Matches:     []models.Match{match},
		Odds:        []models.MatchOdds{{MatchKey: match.Key(), Mapping: mapping, Odds: odds}},
	}
}
