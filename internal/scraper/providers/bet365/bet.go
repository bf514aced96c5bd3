package bet365

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/shopspring/decimal"

	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/session"
)

// PlaceBet puts a single stake on one selection and waits for the receipt.
func (p *Provider) PlaceBet(ctx context.Context, req models.BetPlacementRequest) models.BetPlacementResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.State() != session.Active || !p.probeLocked(ctx) {
		return models.FailedPlacement("not logged in to %s", p.Name())
	}
	if err := req.Validate(); err != nil {
		return models.FailedPlacement("%v", err)
	}

	log := p.logger.With("step", "place_bet", "match_id", req.ProviderMatchID, "odds_id", req.ProviderOddsID)

	html, err := p.fetchLocked(ctx, p.matchURL(req.ProviderMatchID), selMarketHeader)
	if err != nil {
		log.Warn("match page did not load", "error", err)
		return models.FailedPlacement("match page %s did not load: %v", req.ProviderMatchID, err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.FailedPlacement("match page %s could not be parsed: %v", req.ProviderMatchID, err)
	}

	selection := doc.Find("[data-odds-id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		v, _ := s.Attr("data-odds-id")
		return v == req.ProviderOddsID
	})
	if selection.Length() == 0 {
		return models.FailedPlacement("selection %s not found on match %s", req.ProviderOddsID, req.ProviderMatchID)
	}

	current := decimal.NullDecimal{}
	if price, err := parsePrice(selectionPriceText(selection.First())); err == nil {
		current = decimal.NewNullDecimal(price)
		if !req.ExpectedPrice.IsZero() && !price.Equal(req.ExpectedPrice) {
			log.Info("price moved since request", "expected", req.ExpectedPrice.String(), "current", price.String())
		}
	}

	if err := p.page.Click(ctx, attrSelector("data-odds-id", req.ProviderOddsID)); err != nil {
		return models.FailedPlacement("select odds %s: %v", req.ProviderOddsID, err)
	}
	if err := p.page.WaitVisible(ctx, selStakeInput, p.waitTimeout); err != nil {
		return models.FailedPlacement("bet slip did not open: %v", err)
	}
	if err := p.page.Fill(ctx, selStakeInput, req.Stake.StringFixed(2)); err != nil {
		return models.FailedPlacement("enter stake: %v", err)
	}
	if err := p.page.Click(ctx, selPlaceBetButton); err != nil {
		return models.FailedPlacement("submit bet: %v", err)
	}

	if err := p.page.WaitVisible(ctx, selReceipt, receiptTimeout); err != nil {
		msg := p.placementErrorLocked(ctx)
		log.Warn("bet not confirmed", "error", err, "page_message", msg)
		if msg != "" {
			return models.FailedPlacement("bet rejected: %s", msg)
		}
		return models.FailedPlacement("bet confirmation not received: %v", err)
	}

	receiptHTML, err := p.page.HTML(ctx)
	if err != nil {
		return models.FailedPlacement("read receipt: %v", err)
	}
	res, err := parseReceipt(receiptHTML)
	if err != nil {
		log.Error("receipt unreadable after submit", "error", err)
		return models.FailedPlacement("receipt unreadable: %v", err)
	}

	if !res.AcceptedStake.Valid {
		res.AcceptedStake = decimal.NewNullDecimal(req.Stake)
	}
	if !res.AcceptedPrice.Valid {
		if current.Valid {
			res.AcceptedPrice = current
		} else if !req.ExpectedPrice.IsZero() {
			res.AcceptedPrice = decimal.NewNullDecimal(req.ExpectedPrice)
		}
	}
	res.PlacedAt = p.now().UTC()

	log.Info("bet placed", "bet_id", res.ProviderBetID, "stake", res.AcceptedStake.Decimal.String())
	return res
}

func (p *Provider) placementErrorLocked(ctx context.Context) string {
	html, err := p.page.HTML(ctx)
	if err != nil {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return cleanText(doc.Find(selPlacementError).First().Text())
}

func selectionPriceText(s *goquery.Selection) string {
	if t := s.Find(selSelectionPrice).First().Text(); strings.TrimSpace(t) != "" {
		return t
	}
	return s.Text()
}

func parseReceipt(html string) (models.BetPlacementResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.BetPlacementResult{}, err
	}
	receipt := doc.Find(selReceipt).First()

	id, _ := receipt.Find(selReceiptBetID).First().Attr("data-receipt-bet-id")
	if id == "" {
		id, _ = receipt.Attr("data-receipt-bet-id")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return models.BetPlacementResult{}, fmt.Errorf("no bet id on receipt")
	}

	res := models.BetPlacementResult{Success: true, ProviderBetID: id}
	if v, err := parseMoney(receipt.Find(selReceiptStake).First().Text()); err == nil {
		res.AcceptedStake = decimal.NewNullDecimal(v)
	}
	if v, err := parsePrice(receipt.Find(selReceiptOdds).First().Text()); err == nil && v.IsPositive() {
		res.AcceptedPrice = decimal.NewNullDecimal(v)
	}
	return res, nil
}

// AccountBalance reads the balance shown in the account header.
func (p *Provider) AccountBalance(ctx context.Context) decimal.NullDecimal {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.State() != session.Active || p.page == nil {
		return decimal.NullDecimal{}
	}
	html, err := p.page.HTML(ctx)
	if err != nil {
		p.logger.Warn("balance read failed", "error", err)
		return decimal.NullDecimal{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return decimal.NullDecimal{}
	}
	node := doc.Find(selBalance).First()
	if node.Length() == 0 {
		return decimal.NullDecimal{}
	}
	v, err := parseMoney(node.Text())
	if err != nil {
		p.logger.Warn("balance unreadable", "text", node.Text(), "error", err)
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(v)
}

// parseMoney strips currency symbols and thousands separators: "£1,234.50".
func parseMoney(text string) (decimal.Decimal, error) {
	t := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		}
		return -1
	}, text)
	if t == "" {
		return decimal.Zero, fmt.Errorf("no amount in %q", text)
	}
	return decimal.NewFromString(t)
}
