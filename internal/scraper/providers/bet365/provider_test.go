package bet365

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/betscraper/internal/pkg/browser/browsertest"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/models"
	"github.com/Vodeneev/betscraper/internal/pkg/session"
)

func TestLogin(t *testing.T) {
	p, fp := newTestProvider(t)
	ctx := context.Background()

	assert.Zero(t, fp.Launches(), "browser starts on first login")
	require.True(t, p.Login(ctx, "punter", "s3cret"))

	assert.Equal(t, session.Active, p.State())
	assert.Equal(t, 1, fp.Launches())
	assert.Equal(t, "punter", fp.Value(selUsername))
	assert.Equal(t, "s3cret", fp.Value(selPassword))
	assert.Equal(t, []string{testBase}, fp.Navigations())

	// Logging in again re-affirms the session without another form submit.
	require.True(t, p.Login(ctx, "punter", "s3cret"))
	assert.Len(t, fp.Navigations(), 1)
	assert.Equal(t, session.Active, p.State())
}

func TestLogin_NotConfirmed(t *testing.T) {
	p, fp := newTestProvider(t)
	fp.OnClick[selLoginSubmit] = func(f *browsertest.FakePage) { f.SetHTML(loginForm) }

	assert.False(t, p.Login(context.Background(), "punter", "wrong"))
	assert.Equal(t, session.LoggedOut, p.State())
}

func TestLogin_NavigationFailure(t *testing.T) {
	p, fp := newTestProvider(t)
	fp.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")

	assert.False(t, p.Login(context.Background(), "punter", "s3cret"))
	assert.Equal(t, session.LoggedOut, p.State())
}

func TestLogin_IncompleteCredentials(t *testing.T) {
	p, fp := newTestProvider(t)

	assert.False(t, p.Login(context.Background(), "punter", ""))
	assert.Zero(t, fp.Launches())
	assert.Equal(t, session.LoggedOut, p.State())
}

func TestIsLoggedIn(t *testing.T) {
	ctx := context.Background()

	p, _ := newTestProvider(t)
	assert.False(t, p.IsLoggedIn(ctx), "never logged in")

	p, fp := loggedInProvider(t)
	assert.True(t, p.IsLoggedIn(ctx))

	fp.SetHTML(loggedOutHome)
	assert.False(t, p.IsLoggedIn(ctx))
	assert.Equal(t, session.Expired, p.State())

	require.True(t, p.Login(ctx, "punter", "s3cret"), "expired session can log in again")
	assert.Equal(t, session.Active, p.State())
}

func TestLogout(t *testing.T) {
	p, fp := loggedInProvider(t)
	ctx := context.Background()

	p.Logout(ctx)
	assert.Equal(t, session.LoggedOut, p.State())
	assert.Contains(t, fp.Clicks(), selLogoutButton)
	assert.Equal(t, 1, fp.Closes())

	p.Logout(ctx)
	assert.Equal(t, 1, fp.Closes(), "second logout is a no-op")
}

func TestScrapeUpcomingMatches(t *testing.T) {
	p, fp := loggedInProvider(t)
	fp.Route(p.couponURL(), withHeader(couponBody))

	matches := slices.Collect(p.ScrapeUpcomingMatches(context.Background(), 48))
	require.Len(t, matches, 3)

	arsenal := matches[0]
	assert.Equal(t, "Arsenal", arsenal.HomeTeam)
	assert.Equal(t, "Chelsea", arsenal.AwayTeam)
	assert.Equal(t, "England Premier League", arsenal.Competition)
	require.Len(t, arsenal.Mappings, 1)
	assert.Equal(t, enums.Bet365, arsenal.Mappings[0].Provider)
	assert.Equal(t, "101", arsenal.Mappings[0].ProviderMatchID)
	assert.Equal(t, testBase+"/#/AC/B1/C1/D8/E101/F19/", arsenal.Mappings[0].ProviderURL)
	assert.Equal(t, "Arsenal v Chelsea", arsenal.Mappings[0].ProviderEventName)

	leeds := matches[1]
	assert.Equal(t, "2026-10-17T19:45:00Z", leeds.KickoffAt.Format("2006-01-02T15:04:05Z07:00"))

	madrid := matches[2]
	assert.Equal(t, "Spain La Liga", madrid.Competition)
	assert.NotEmpty(t, madrid.Mappings[0].ProviderMatchID, "fallback id")

	again := slices.Collect(p.ScrapeUpcomingMatches(context.Background(), 48))
	assert.Equal(t, madrid.Mappings[0].ProviderMatchID, again[2].Mappings[0].ProviderMatchID, "fallback ids are stable")

	all := slices.Collect(p.ScrapeUpcomingMatches(context.Background(), 0))
	assert.Len(t, all, 4, "no upper bound")
}

func TestScrapeUpcomingMatches_Lazy(t *testing.T) {
	p, fp := loggedInProvider(t)
	fp.Route(p.couponURL(), withHeader(couponBody))
	before := len(fp.Navigations())

	seq := p.ScrapeUpcomingMatches(context.Background(), 48)
	assert.Len(t, fp.Navigations(), before, "nothing happens until iteration")

	for range seq {
		break
	}
	for range seq {
	}
	assert.Len(t, fp.Navigations(), before+2, "each iteration re-queries the page")
}

func TestScrapeUpcomingMatches_NotLoggedIn(t *testing.T) {
	p, fp := newTestProvider(t)
	fp.Route(p.couponURL(), withHeader(couponBody))

	assert.Empty(t, slices.Collect(p.ScrapeUpcomingMatches(context.Background(), 48)))
}

func TestScrapeMatchOdds(t *testing.T) {
	p, fp := loggedInProvider(t)
	fp.Route(p.matchURL("101"), withHeader(matchBody))

	odds := slices.Collect(p.ScrapeMatchOdds(context.Background(), "101"))
	require.Len(t, odds, 5)

	want := []struct {
		market enums.MarketType
		price  string
		id     string
	}{
		{enums.HomeWin, "2.1", "O1"},
		{enums.Draw, "3.5", "O2"},
		{enums.AwayWin, "2", "O3"},
		{enums.Over25Goals, "1.85", "O4"},
		{enums.Under25Goals, "1.95", ""},
	}
	for i, w := range want {
		assert.Equal(t, w.market, odds[i].Market)
		assert.True(t, odds[i].Price.Equal(decimal.RequireFromString(w.price)), "price %s, got %s", w.price, odds[i].Price)
		assert.Equal(t, enums.Bet365, odds[i].Provider)
		if w.id != "" {
			assert.Equal(t, w.id, odds[i].ProviderOddsID)
		} else {
			assert.NotEmpty(t, odds[i].ProviderOddsID)
		}
	}
	assert.Equal(t, "Arsenal", odds[0].Description)

	assert.Empty(t, slices.Collect(p.ScrapeMatchOdds(context.Background(), "999")), "page without markets")
	assert.Empty(t, slices.Collect(p.ScrapeMatchOdds(context.Background(), "")))
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2.50", want: "2.5"},
		{in: " 1.01 ", want: "1.01"},
		{in: "5/2", want: "3.5"},
		{in: "1/4", want: "1.25"},
		{in: "evs", want: "2"},
		{in: "", wantErr: true},
		{in: "SUSP", wantErr: true},
		{in: "3/0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parsePrice(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}
}

func betRequest() models.BetPlacementRequest {
	return models.BetPlacementRequest{
		ProviderMatchID: "101",
		ProviderOddsID:  "O1",
		Stake:           decimal.NewFromInt(10),
		Market:          enums.HomeWin,
		ExpectedPrice:   decimal.RequireFromString("2.10"),
	}
}

func TestPlaceBet(t *testing.T) {
	p, fp := loggedInProvider(t)
	fp.Route(p.matchURL("101"), withHeader(matchBody))
	fp.OnClick[attrSelector("data-odds-id", "O1")] = func(f *browsertest.FakePage) { f.SetHTML(withHeader(matchBody + betSlipBody)) }
	fp.OnClick[selPlaceBetButton] = func(f *browsertest.FakePage) { f.SetHTML(withHeader(receiptBody)) }

	res := p.PlaceBet(context.Background(), betRequest())
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "B-777", res.ProviderBetID)
	assert.True(t, res.AcceptedStake.Decimal.Equal(decimal.NewFromInt(10)))
	assert.True(t, res.AcceptedPrice.Decimal.Equal(decimal.RequireFromString("2.2")))
	assert.Equal(t, testNow, res.PlacedAt)
	assert.Equal(t, "10.00", fp.Value(selStakeInput))
}

func TestPlaceBet_Failures(t *testing.T) {
	t.Run("not logged in", func(t *testing.T) {
		p, fp := newTestProvider(t)
		res := p.PlaceBet(context.Background(), betRequest())
		assert.False(t, res.Success)
		assert.Contains(t, res.ErrorMessage, "not logged in")
		assert.Empty(t, fp.Navigations())
	})

	t.Run("invalid request", func(t *testing.T) {
		p, _ := loggedInProvider(t)
		req := betRequest()
		req.Stake = decimal.Zero
		res := p.PlaceBet(context.Background(), req)
		assert.False(t, res.Success)
		assert.Empty(t, res.ProviderBetID)
		assert.Contains(t, res.ErrorMessage, "stake")
	})

	t.Run("selection missing", func(t *testing.T) {
		p, fp := loggedInProvider(t)
		fp.Route(p.matchURL("101"), withHeader(matchBody))
		req := betRequest()
		req.ProviderOddsID = "O404"
		res := p.PlaceBet(context.Background(), req)
		assert.False(t, res.Success)
		assert.Empty(t, res.ProviderBetID)
		assert.Contains(t, res.ErrorMessage, "O404")
	})

	t.Run("rejected", func(t *testing.T) {
		p, fp := loggedInProvider(t)
		fp.Route(p.matchURL("101"), withHeader(matchBody))
		fp.OnClick[attrSelector("data-odds-id", "O1")] = func(f *browsertest.FakePage) { f.SetHTML(withHeader(matchBody + betSlipBody)) }
		fp.OnClick[selPlaceBetButton] = func(f *browsertest.FakePage) {
			f.SetHTML(withHeader(`<div class="bss-PlaceBetError">Odds have changed</div>`))
		}
		res := p.PlaceBet(context.Background(), betRequest())
		assert.False(t, res.Success)
		assert.Equal(t, "bet rejected: Odds have changed", res.ErrorMessage)
	})
}

func TestAccountBalance(t *testing.T) {
	p, _ := newTestProvider(t)
	assert.False(t, p.AccountBalance(context.Background()).Valid)

	p, _ = loggedInProvider(t)
	bal := p.AccountBalance(context.Background())
	require.True(t, bal.Valid)
	assert.True(t, bal.Decimal.Equal(decimal.RequireFromString("1234.50")))
}

func TestBetHistory(t *testing.T) {
	p, fp := loggedInProvider(t)
	fp.Route(p.historyURL(), withHeader(historyBody))
	ctx := context.Background()

	all := slices.Collect(p.BetHistory(ctx, models.HistoryRange{}))
	require.Len(t, all, 2)

	won := all[0]
	assert.Equal(t, "B1", won.ProviderBetID)
	assert.Equal(t, enums.HomeWin, won.Market)
	assert.Equal(t, "won", won.Status)
	require.True(t, won.Return.Valid)
	assert.True(t, won.Return.Decimal.Equal(decimal.NewFromInt(21)))
	require.NotNil(t, won.SettledAt)

	open := all[1]
	assert.False(t, open.Return.Valid)
	assert.Nil(t, open.SettledAt)
	assert.True(t, open.Price.Equal(decimal.RequireFromString("3.5")))

	recent := slices.Collect(p.BetHistory(ctx, models.HistoryRange{From: testNow.AddDate(0, 0, -10)}))
	require.Len(t, recent, 1)
	assert.Equal(t, "B2", recent[0].ProviderBetID)
}

func TestAttrSelector(t *testing.T) {
	assert.Equal(t, `[data-odds-id="O1"]`, attrSelector("data-odds-id", "O1"))
	assert.Equal(t, `[data-odds-id="a\"b\\c"]`, attrSelector("data-odds-id", `a"b\c`))
}
