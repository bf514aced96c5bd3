package bet365

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// BetHistory yields bets from the account history placed within r.
func (p *Provider) BetHistory(ctx context.Context, r models.HistoryRange) iter.Seq[models.ProviderBetHistory] {
	return func(yield func(models.ProviderBetHistory) bool) {
		doc, ok := p.snapshot(ctx, "history", p.historyURL(), selHistoryContainer)
		if !ok {
			return
		}

		doc.Find(selHistoryItem).EachWithBreak(func(_ int, item *goquery.Selection) bool {
			h, err := parseHistoryItem(item)
			if err != nil {
				p.logger.Debug("skipping history row", "error", err)
				return true
			}
			if !r.Contains(h.PlacedAt) {
				return true
			}
			return yield(h)
		})
	}
}

func parseHistoryItem(item *goquery.Selection) (models.ProviderBetHistory, error) {
	id, _ := item.Attr("data-bet-id")
	id = strings.TrimSpace(id)
	if id == "" {
		return models.ProviderBetHistory{}, fmt.Errorf("missing bet id")
	}

	placedRaw, _ := item.Attr("data-placed-at")
	placed, err := time.Parse(time.RFC3339, strings.TrimSpace(placedRaw))
	if err != nil {
		return models.ProviderBetHistory{}, fmt.Errorf("bet %s placed at %q: %w", id, placedRaw, err)
	}

	stake, err := parseMoney(item.Find(selHistoryStake).First().Text())
	if err != nil {
		return models.ProviderBetHistory{}, fmt.Errorf("bet %s stake: %w", id, err)
	}
	price, err := parsePrice(item.Find(selHistoryOdds).First().Text())
	if err != nil {
		return models.ProviderBetHistory{}, fmt.Errorf("bet %s odds: %w", id, err)
	}

	h := models.ProviderBetHistory{
		ProviderBetID:    id,
		MatchDescription: cleanText(item.Find(selHistoryDesc).First().Text()),
		Stake:            stake,
		Price:            price,
		Status:           strings.ToLower(cleanText(item.Find(selHistoryStatus).First().Text())),
		PlacedAt:         placed.UTC(),
	}

	if v, ok := item.Attr("data-market"); ok {
		if mt, err := enums.ParseMarketType(v); err == nil {
			h.Market = mt
		}
	}
	if ret, err := parseMoney(item.Find(selHistoryReturn).First().Text()); err == nil {
		h.Return = decimal.NewNullDecimal(ret)
	}
	if v, ok := item.Attr("data-settled-at"); ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err == nil {
			settled := t.UTC()
			h.SettledAt = &settled
		}
	}
	return h, nil
}
