package bet365

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// Unlabelled selections on the full-time result market, in page order.
var positionalMarkets = []enums.MarketType{enums.HomeWin, enums.Draw, enums.AwayWin}

// ScrapeMatchOdds yields the priced selections on a match page.
func (p *Provider) ScrapeMatchOdds(ctx context.Context, providerMatchID string) iter.Seq[models.Odds] {
	return func(yield func(models.Odds) bool) {
		if strings.TrimSpace(providerMatchID) == "" {
			return
		}
		doc, ok := p.snapshot(ctx, "odds", p.matchURL(providerMatchID), selMarketHeader)
		if !ok {
			return
		}

		now := p.now().UTC()
		position := 0
		doc.Find(selSelection).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			market, ok := selectionMarket(s, &position)
			if !ok {
				return true
			}
			o, err := p.parseSelection(s, providerMatchID, market)
			if err != nil {
				p.logger.Debug("skipping selection", "match_id", providerMatchID, "market", market.String(), "error", err)
				return true
			}
			o.ScrapedAt = now
			return yield(o)
		})
	}
}

func selectionMarket(s *goquery.Selection, position *int) (enums.MarketType, bool) {
	if v, ok := s.Attr("data-market"); ok {
		mt, err := enums.ParseMarketType(v)
		return mt, err == nil
	}
	if *position >= len(positionalMarkets) {
		return "", false
	}
	mt := positionalMarkets[*position]
	*position++
	return mt, true
}

func (p *Provider) parseSelection(s *goquery.Selection, providerMatchID string, market enums.MarketType) (models.Odds, error) {
	priceText := s.Find(selSelectionPrice).First().Text()
	if strings.TrimSpace(priceText) == "" {
		priceText = s.Text()
	}
	price, err := parsePrice(priceText)
	if err != nil {
		return models.Odds{}, err
	}

	id, _ := s.Attr("data-odds-id")
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewSHA1(fallbackIDSpace, []byte(providerMatchID+"|"+market.String())).String()
	}

	desc := cleanText(s.Find(selSelectionName).First().Text())
	if v, ok := s.Attr("data-description"); ok && cleanText(v) != "" {
		desc = cleanText(v)
	}
	if desc == "" {
		desc = market.String()
	}

	return models.NewOdds(enums.Bet365, market, price, id, desc, p.now().UTC())
}

// parsePrice reads decimal ("2.50"), fractional ("5/2") or "EVS" prices.
func parsePrice(text string) (decimal.Decimal, error) {
	t := strings.ToUpper(cleanText(text))
	if t == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	if t == "EVS" || t == "EVENS" {
		return decimal.NewFromInt(2), nil
	}

	if num, den, ok := strings.Cut(t, "/"); ok {
		n, err := decimal.NewFromString(strings.TrimSpace(num))
		if err != nil {
			return decimal.Zero, fmt.Errorf("price %q: %w", text, err)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(den))
		if err != nil || !d.IsPositive() {
			return decimal.Zero, fmt.Errorf("price %q: bad denominator", text)
		}
		return decimal.NewFromInt(1).Add(n.DivRound(d, 4)), nil
	}

	v, err := decimal.NewFromString(t)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price %q: %w", text, err)
	}
	return v, nil
}
