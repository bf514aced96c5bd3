package bet365

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Vodeneev/betscraper/internal/pkg/browser/browsertest"
	"github.com/Vodeneev/betscraper/internal/pkg/logging"
)

const testBase = "https://bet365.test"

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

const loggedOutHome = `<html><body><button data-ui="LoginButton">Log In</button></body></html>`

const loginForm = `<html><body><form>
<input data-ui="UsernameInput"><input data-ui="PasswordInput" type="password">
<button data-ui="LoginSubmitButton">Log In</button>
</form></body></html>`

// withHeader wraps body in a logged-in page.
func withHeader(body string) string {
	return `<html><body><div class="hm-Header">
<span data-ui="AccountBalance">£1,234.50</span>
<button data-ui="LogoutButton">Log Out</button>
</div>` + body + `</body></html>`
}

const couponBody = `
<div class="sl-CompetitionBlock" data-competition="England Premier League">
  <div class="sl-CouponParticipantWithBookCloses" data-event-id="101" data-kickoff="2026-10-17T15:00:00Z">
    <div class="sl-CouponParticipantWithBookCloses_Name">Arsenal</div>
    <div class="sl-CouponParticipantWithBookCloses_Name">Chelsea</div>
  </div>
  <div class="sl-CouponParticipantWithBookCloses" data-event-id="102">
    <div class="sl-CouponParticipantWithBookCloses_Name">Leeds United</div>
    <div class="sl-CouponParticipantWithBookCloses_Name">Everton</div>
    <div class="sl-CouponParticipantWithBookCloses_BookCloses">17 Oct 19:45</div>
  </div>
  <div class="sl-CouponParticipantWithBookCloses" data-event-id="103" data-kickoff="2026-10-25T15:00:00Z">
    <div class="sl-CouponParticipantWithBookCloses_Name">Fulham</div>
    <div class="sl-CouponParticipantWithBookCloses_Name">Brentford</div>
  </div>
  <div class="sl-CouponParticipantWithBookCloses" data-event-id="104" data-kickoff="2026-10-17T12:00:00Z">
    <div class="sl-CouponParticipantWithBookCloses_Name">Wolves</div>
  </div>
</div>
<div class="sl-CompetitionBlock">
  <div class="sl-CompetitionBlock_Name">Spain   La Liga</div>
  <div class="sl-CouponParticipantWithBookCloses" data-kickoff="2026-10-16T20:00:00Z">
    <div class="sl-CouponParticipantWithBookCloses_Name">Real Madrid</div>
    <div class="sl-CouponParticipantWithBookCloses_Name">Barcelona</div>
  </div>
  <div class="sl-CouponParticipantWithBookCloses" data-event-id="106" data-kickoff="2026-10-16T10:00:00Z">
    <div class="sl-CouponParticipantWithBookCloses_Name">Sevilla</div>
    <div class="sl-CouponParticipantWithBookCloses_Name">Valencia</div>
  </div>
</div>`

const matchBody = `
<div class="gl-MarketColumnHeader">Full Time Result</div>
<div class="gl-Participant_General" data-odds-id="O1"><span class="gl-Participant_Name">Arsenal</span><span class="gl-Participant_Odds">2.10</span></div>
<div class="gl-Participant_General" data-odds-id="O2"><span class="gl-Participant_Name">Draw</span><span class="gl-Participant_Odds">5/2</span></div>
<div class="gl-Participant_General" data-odds-id="O3"><span class="gl-Participant_Name">Chelsea</span><span class="gl-Participant_Odds">EVS</span></div>
<div class="gl-MarketColumnHeader">Goals Over/Under</div>
<div class="gl-Participant_General" data-odds-id="O4" data-market="over_2_5_goals"><span class="gl-Participant_Odds">1.85</span></div>
<div class="gl-Participant_General" data-market="under-2.5-goals"><span class="gl-Participant_Odds">1.95</span></div>
<div class="gl-Participant_General" data-odds-id="O6" data-market="correct_score"><span class="gl-Participant_Odds">9.00</span></div>
<div class="gl-Participant_General" data-odds-id="O7" data-market="over_9_5_corners"><span class="gl-Participant_Odds">SUSP</span></div>
<div class="gl-Participant_General" data-odds-id="O8"><span class="gl-Participant_Odds">3.00</span></div>`

const betSlipBody = `
<div class="bss-StakeBox"><input class="bss-StakeBox_StakeValueInput"></div>
<button class="bss-PlaceBetButton">Place Bet</button>`

const receiptBody = `
<div class="bss-ReceiptContent">
  <span data-receipt-bet-id="B-777">Ref B-777</span>
  <span class="bss-ReceiptContent_Stake">£10.00</span>
  <span class="bss-ReceiptContent_Odds">2.20</span>
</div>`

const historyBody = `
<div class="mbs-BetHistoryContainer">
  <div class="mbs-BetItem" data-bet-id="B1" data-market="home_win"
       data-placed-at="2026-10-01T10:00:00Z" data-settled-at="2026-10-01T17:00:00Z">
    <span class="mbs-BetItem_Description">Arsenal v Chelsea</span>
    <span class="mbs-BetItem_Stake">£10.00</span>
    <span class="mbs-BetItem_Odds">2.10</span>
    <span class="mbs-BetItem_Return">£21.00</span>
    <span class="mbs-BetItem_Status">Won</span>
  </div>
  <div class="mbs-BetItem" data-bet-id="B2" data-placed-at="2026-10-10T09:30:00Z">
    <span class="mbs-BetItem_Description">Leeds United v Everton</span>
    <span class="mbs-BetItem_Stake">£5.00</span>
    <span class="mbs-BetItem_Odds">5/2</span>
    <span class="mbs-BetItem_Status">Open</span>
  </div>
  <div class="mbs-BetItem" data-bet-id="B3">
    <span class="mbs-BetItem_Stake">£1.00</span>
    <span class="mbs-BetItem_Odds">2.00</span>
  </div>
</div>`

func newTestProvider(t *testing.T) (*Provider, *browsertest.FakePage) {
	t.Helper()

	fp := browsertest.New()
	fp.Route(testBase, loggedOutHome)
	fp.OnClick[selLoginButton] = func(f *browsertest.FakePage) { f.SetHTML(loginForm) }
	fp.OnClick[selLoginSubmit] = func(f *browsertest.FakePage) { f.SetHTML(withHeader("")) }
	fp.OnClick[selLogoutButton] = func(f *browsertest.FakePage) { f.SetHTML(loggedOutHome) }

	p := New(Options{
		BaseURL:       testBase + "/",
		Launcher:      fp.Launcher(),
		NavigationRPS: 1000,
		WaitTimeout:   time.Second,
		Logger:        logging.Discard(),
		Now:           func() time.Time { return testNow },
	})
	t.Cleanup(func() { _ = p.Close() })
	return p, fp
}

func loggedInProvider(t *testing.T) (*Provider, *browsertest.FakePage) {
	t.Helper()
	p, fp := newTestProvider(t)
	require.True(t, p.Login(context.Background(), "punter", "s3cret"))
	return p, fp
}
