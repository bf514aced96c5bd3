package enums

import (
	"fmt"
	"strings"
)

// MarketType is a priced selection from the fixed market catalogue.
type MarketType string

const (
	HomeWin MarketType = "home_win"
	AwayWin MarketType = "away_win"
	Draw    MarketType = "draw"

	// Goals
	Over05Goals  MarketType = "over_0_5_goals"
	Over15Goals  MarketType = "over_1_5_goals"
	Over25Goals  MarketType = "over_2_5_goals"
	Over35Goals  MarketType = "over_3_5_goals"
	Under05Goals MarketType = "under_0_5_goals"
	Under15Goals MarketType = "under_1_5_goals"
	Under25Goals MarketType = "under_2_5_goals"
	Under35Goals MarketType = "under_3_5_goals"

	// Corners
	Over65Corners  MarketType = "over_6_5_corners"
	Over75Corners  MarketType = "over_7_5_corners"
	Over85Corners  MarketType = "over_8_5_corners"
	Over95Corners  MarketType = "over_9_5_corners"
	Under65Corners MarketType = "under_6_5_corners"
	Under75Corners MarketType = "under_7_5_corners"
	Under85Corners MarketType = "under_8_5_corners"
	Under95Corners MarketType = "under_9_5_corners"

	// Cards
	Over15Cards  MarketType = "over_1_5_cards"
	Over25Cards  MarketType = "over_2_5_cards"
	Over35Cards  MarketType = "over_3_5_cards"
	Over45Cards  MarketType = "over_4_5_cards"
	Under15Cards MarketType = "under_1_5_cards"
	Under25Cards MarketType = "under_2_5_cards"
	Under35Cards MarketType = "under_3_5_cards"
	Under45Cards MarketType = "under_4_5_cards"

	// Shots
	Over85Shots   MarketType = "over_8_5_shots"
	Over95Shots   MarketType = "over_9_5_shots"
	Over105Shots  MarketType = "over_10_5_shots"
	Over115Shots  MarketType = "over_11_5_shots"
	Under85Shots  MarketType = "under_8_5_shots"
	Under95Shots  MarketType = "under_9_5_shots"
	Under105Shots MarketType = "under_10_5_shots"
	Under115Shots MarketType = "under_11_5_shots"
)

var catalogue = []MarketType{
	HomeWin, AwayWin, Draw,
	Over05Goals, Over15Goals, Over25Goals, Over35Goals,
	Under05Goals, Under15Goals, Under25Goals, Under35Goals,
	Over65Corners, Over75Corners, Over85Corners, Over95Corners,
	Under65Corners, Under75Corners, Under85Corners, Under95Corners,
	Over15Cards, Over25Cards, Over35Cards, Over45Cards,
	Under15Cards, Under25Cards, Under35Cards, Under45Cards,
	Over85Shots, Over95Shots, Over105Shots, Over115Shots,
	Under85Shots, Under95Shots, Under105Shots, Under115Shots,
}

var catalogueSet = func() map[MarketType]struct{} {
	m := make(map[MarketType]struct{}, len(catalogue))
	for _, mt := range catalogue {
		m[mt] = struct{}{}
	}
	return m
}()

// Catalogue returns every supported market in a stable order.
func Catalogue() []MarketType {
	out := make([]MarketType, len(catalogue))
	copy(out, catalogue)
	return out
}

// ParseMarketType accepts catalogue values; dots and dashes are treated as
// underscores so "over-2.5-goals" resolves to Over25Goals.
func ParseMarketType(s string) (MarketType, error) {
	n := strings.ToLower(strings.TrimSpace(s))
	n = strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(n)
	mt := MarketType(n)
	if !mt.Valid() {
		return "", fmt.Errorf("unknown market type %q", s)
	}
	return mt, nil
}

// Valid reports whether mt is part of the catalogue.
func (mt MarketType) Valid() bool {
	_, ok := catalogueSet[mt]
	return ok
}

// String returns string representation
func (mt MarketType) String() string {
	return string(mt)
}
