package bet365

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
)

// fallbackIDSpace namespaces ids derived from page content when the page
// carries none.
var fallbackIDSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://www.bet365.com/betscraper"))

var kickoffLayouts = []string{
	"2006-01-02 15:04",
	"02/01/2006 15:04",
	"02 Jan 2006 15:04",
	"Mon 02 Jan 15:04",
	"02 Jan 15:04",
}

// ScrapeUpcomingMatches yields football matches starting within hoursAhead
// hours. hoursAhead <= 0 means no upper bound.
func (p *Provider) ScrapeUpcomingMatches(ctx context.Context, hoursAhead int) iter.Seq[models.Match] {
	return func(yield func(models.Match) bool) {
		doc, ok := p.snapshot(ctx, "matches", p.couponURL(), selMatchRow)
		if !ok {
			return
		}

		now := p.now().UTC()
		var until time.Time
		if hoursAhead > 0 {
			until = now.Add(time.Duration(hoursAhead) * time.Hour)
		}

		skipped := 0
		doc.Find(selMatchRow).EachWithBreak(func(_ int, row *goquery.Selection) bool {
			m, err := p.parseMatchRow(row, now)
			if err != nil {
				skipped++
				p.logger.Debug("skipping coupon row", "error", err)
				return true
			}
			if m.KickoffAt.Before(now) || (!until.IsZero() && m.KickoffAt.After(until)) {
				return true
			}
			return yield(m)
		})
		if skipped > 0 {
			p.logger.Info("coupon rows skipped", "count", skipped)
		}
	}
}

func (p *Provider) parseMatchRow(row *goquery.Selection, now time.Time) (models.Match, error) {
	names := row.Find(selTeamName)
	if names.Length() < 2 {
		return models.Match{}, fmt.Errorf("expected two team names, found %d", names.Length())
	}
	home := cleanText(names.First().Text())
	away := cleanText(names.Last().Text())
	if home == "" || away == "" {
		return models.Match{}, fmt.Errorf("empty team name")
	}

	kickoff, err := rowKickoff(row, now)
	if err != nil {
		return models.Match{}, fmt.Errorf("%s v %s: %w", home, away, err)
	}

	id, _ := row.Attr("data-event-id")
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewSHA1(fallbackIDSpace, []byte(models.CanonicalMatchID(home, away, kickoff))).String()
	}

	competition := ""
	if block := row.Closest(selCompetitionBlock); block.Length() > 0 {
		if v, ok := block.Attr("data-competition"); ok {
			competition = cleanText(v)
		} else {
			competition = cleanText(block.Find(selCompetitionName).First().Text())
		}
	}

	eventName := home + " v " + away
	if v, ok := row.Attr("title"); ok && cleanText(v) != "" {
		eventName = cleanText(v)
	}

	return models.Match{
		HomeTeam:    home,
		AwayTeam:    away,
		KickoffAt:   kickoff,
		League:      competition,
		Competition: competition,
		ScrapedAt:   now,
		Mappings: []models.ProviderMatchMapping{{
			Provider:          enums.Bet365,
			ProviderMatchID:   id,
			ProviderURL:       p.matchURL(id),
			ProviderEventName: eventName,
			CreatedAt:         now,
			LastUpdatedAt:     now,
		}},
	}, nil
}

func rowKickoff(row *goquery.Selection, now time.Time) (time.Time, error) {
	if v, ok := row.Attr("data-kickoff"); ok {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(v))
		if err != nil {
			return time.Time{}, fmt.Errorf("kickoff %q: %w", v, err)
		}
		return t.UTC(), nil
	}
	return parseKickoff(cleanText(row.Find(selBookCloses).First().Text()), now)
}

// parseKickoff reads the displayed start time in UTC. Layouts without a year
// take the year of now, rolling into the next year for dates already well
// in the past.
func parseKickoff(text string, now time.Time) (time.Time, error) {
	if text == "" {
		return time.Time{}, fmt.Errorf("missing kickoff time")
	}
	for _, layout := range kickoffLayouts {
		t, err := time.ParseInLocation(layout, text, time.UTC)
		if err != nil {
			continue
		}
		if t.Year() == 0 {
			t = t.AddDate(now.Year(), 0, 0)
			if t.Before(now.AddDate(0, -6, 0)) {
				t = t.AddDate(1, 0, 0)
			}
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognised kickoff %q", text)
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
