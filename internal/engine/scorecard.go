package engine

import (
	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/game"
	"github.com/roach88/hindsight/internal/money"
)

// BuyAndHold is the scorecard baseline: a hypothetical all-in purchase at the
// first checkpoint's price held through the last checkpoint's price.
type BuyAndHold struct {
	FinalValue  money.Cents `json:"finalValue"`
	GainPercent float64     `json:"gainPercent"`
}

// Scorecard is the end-of-game summary comparing the player to the
// buy-and-hold baseline. Computed once at completion and returned to the
// caller; never persisted.
type Scorecard struct {
	StoryTitle    string      `json:"storyTitle"`
	Ticker        string      `json:"ticker"`
	StartingCash  money.Cents `json:"startingCash"`
	FinalNetValue money.Cents `json:"finalNetValue"`
	TotalGain     money.Cents `json:"totalGain"`
	GainPercent   float64     `json:"gainPercent"`
	BuyAndHold    BuyAndHold  `json:"buyAndHold"`
	TradeCount    int         `json:"tradeCount"`
}

// buildScorecard computes the scorecard over a fully liquidated final state
// (shares are already zero, so cash is the whole net value).
//
// The baseline always spans first-to-last checkpoint price, independent of
// which checkpoints the player actually traded at.
func buildScorecard(story catalog.Story, g *game.State) Scorecard {
	finalNetValue := g.Cash
	totalGain := finalNetValue - story.StartingCash

	firstPrice := story.Checkpoints[0].Price
	lastPrice := story.Checkpoints[len(story.Checkpoints)-1].Price
	byhShares := int64(story.StartingCash / firstPrice)
	byhFinal := story.StartingCash - firstPrice.Times(byhShares) + lastPrice.Times(byhShares)

	return Scorecard{
		StoryTitle:    story.Title,
		Ticker:        story.Ticker,
		StartingCash:  story.StartingCash,
		FinalNetValue: finalNetValue,
		TotalGain:     totalGain,
		GainPercent:   percentOf(totalGain, story.StartingCash),
		BuyAndHold: BuyAndHold{
			FinalValue:  byhFinal,
			GainPercent: percentOf(byhFinal-story.StartingCash, story.StartingCash),
		},
		TradeCount: g.TradeCount(),
	}
}

// percentOf returns gain/base as a percentage. Float only at this edge;
// all the underlying amounts stay integer cents.
func percentOf(gain, base money.Cents) float64 {
	return float64(gain) / float64(base) * 100
}
