package cli

import (
	"fmt"
	"strings"

	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/engine"
	"github.com/roach88/hindsight/internal/game"
)

// Text renderers for the human-readable output mode. JSON mode bypasses
// these and emits the structured payloads directly.

func renderSummaries(stories []catalog.Summary) string {
	var b strings.Builder
	b.WriteString("Available stories:\n")
	for _, s := range stories {
		fmt.Fprintf(&b, "  %-24s %s (%s)\n", s.ID, s.Title, s.Ticker)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderCheckpoint(cp catalog.Checkpoint) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s — %s\n", cp.Date, cp.Label, cp.Price)
	b.WriteString(indent(cp.Narrative))
	return b.String()
}

func renderStart(res engine.StartResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Started %q (%s) with %s.\n\n", res.Title, res.Ticker, res.StartingCash)
	b.WriteString(renderCheckpoint(res.Checkpoint))
	return b.String()
}

func renderActionResult(res engine.ActionResult) string {
	var b strings.Builder

	switch {
	case res.Action == game.ActionSkip:
		b.WriteString("Skipped.\n")
	case res.Quantity != nil && res.Price != nil:
		verb := "Bought"
		if res.Action == game.ActionSell {
			verb = "Sold"
		}
		fmt.Fprintf(&b, "%s %d @ %s.\n", verb, *res.Quantity, *res.Price)
	}
	fmt.Fprintf(&b, "Cash %s, shares %d.\n\n", res.Cash, res.Shares)
	fmt.Fprintf(&b, "%s\n", res.RevealAfterAction)

	if res.NextCheckpoint != nil {
		b.WriteString("\n")
		b.WriteString(renderCheckpoint(*res.NextCheckpoint))
	}
	if res.Scorecard != nil {
		b.WriteString("\n")
		b.WriteString(renderScorecard(*res.Scorecard))
	}
	return b.String()
}

func renderScorecard(sc engine.Scorecard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "=== Scorecard: %s (%s) ===\n", sc.StoryTitle, sc.Ticker)
	fmt.Fprintf(&b, "  Starting cash:   %s\n", sc.StartingCash)
	fmt.Fprintf(&b, "  Final net value: %s\n", sc.FinalNetValue)
	fmt.Fprintf(&b, "  Total gain:      %s (%+.2f%%)\n", sc.TotalGain, sc.GainPercent)
	fmt.Fprintf(&b, "  Buy and hold:    %s (%+.2f%%)\n", sc.BuyAndHold.FinalValue, sc.BuyAndHold.GainPercent)
	fmt.Fprintf(&b, "  Trades:          %d", sc.TradeCount)
	return b.String()
}

func renderStatus(st engine.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) — checkpoint %d of %d\n", st.StoryTitle, st.Ticker, st.CheckpointIndex+1, st.TotalCheckpoints)
	fmt.Fprintf(&b, "  Cash:           %s\n", st.Cash)
	fmt.Fprintf(&b, "  Shares:         %d\n", st.Shares)
	fmt.Fprintf(&b, "  Market value:   %s\n", st.MarketValue)
	fmt.Fprintf(&b, "  Unrealized P&L: %s\n\n", st.UnrealizedPnl)
	b.WriteString(renderCheckpoint(st.Checkpoint))

	if len(st.Transactions) > 0 {
		b.WriteString("\n\nTransactions:\n")
		for _, tx := range st.Transactions {
			if tx.Action == game.ActionSkip {
				fmt.Fprintf(&b, "  %s  %-12s skip\n", tx.Date, tx.CheckpointID)
				continue
			}
			fmt.Fprintf(&b, "  %s  %-12s %-4s %d @ %s\n", tx.Date, tx.CheckpointID, tx.Action, *tx.Quantity, *tx.Price)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = "  " + line
		}
	}
	return strings.Join(lines, "\n")
}
