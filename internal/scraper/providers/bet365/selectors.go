package bet365

import (
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://www.bet365.com"

	loginConfirmTimeout = 5 * time.Second
	receiptTimeout      = 10 * time.Second
)

// Account
const (
	selLoginButton  = "[data-ui='LoginButton']"
	selUsername     = "[data-ui='UsernameInput']"
	selPassword     = "[data-ui='PasswordInput']"
	selLoginSubmit  = "[data-ui='LoginSubmitButton']"
	selBalance      = "[data-ui='AccountBalance']"
	selLogoutButton = "[data-ui='LogoutButton']"
)

// Coupon (upcoming matches)
const (
	selCompetitionBlock = ".sl-CompetitionBlock"
	selCompetitionName  = ".sl-CompetitionBlock_Name"
	selMatchRow         = ".sl-CouponParticipantWithBookCloses"
	selTeamName         = ".sl-CouponParticipantWithBookCloses_Name"
	selBookCloses       = ".sl-CouponParticipantWithBookCloses_BookCloses"
)

// Match page
const (
	selMarketHeader   = ".gl-MarketColumnHeader"
	selSelection      = ".gl-Participant_General"
	selSelectionName  = ".gl-Participant_Name"
	selSelectionPrice = ".gl-Participant_Odds"
)

// Bet slip
const (
	selStakeInput     = ".bss-StakeBox_StakeValueInput"
	selPlaceBetButton = ".bss-PlaceBetButton"
	selReceipt        = ".bss-ReceiptContent"
	selReceiptBetID   = "[data-receipt-bet-id]"
	selReceiptStake   = ".bss-ReceiptContent_Stake"
	selReceiptOdds    = ".bss-ReceiptContent_Odds"
	selPlacementError = ".bss-PlaceBetError"
)

// Bet history
const (
	selHistoryContainer = ".mbs-BetHistoryContainer"
	selHistoryItem      = ".mbs-BetItem"
	selHistoryDesc      = ".mbs-BetItem_Description"
	selHistoryStake     = ".mbs-BetItem_Stake"
	selHistoryOdds      = ".mbs-BetItem_Odds"
	selHistoryReturn    = ".mbs-BetItem_Return"
	selHistoryStatus    = ".mbs-BetItem_Status"
)

func (p *Provider) couponURL() string {
	return p.baseURL + "/#/AC/B1/C1/D13/E0/F2/"
}

func (p *Provider) matchURL(providerMatchID string) string {
	return p.baseURL + "/#/AC/B1/C1/D8/E" + providerMatchID + "/F19/"
}

func (p *Provider) historyURL() string {
	return p.baseURL + "/#/MB/"
}

// attrSelector builds [name="value"] with the value escaped for a CSS string.
func attrSelector(name, value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return "[" + name + `="` + escaped + `"]`
}
