package engine

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/game"
	"github.com/roach88/hindsight/internal/money"
	"github.com/roach88/hindsight/internal/store"
	"github.com/roach88/hindsight/internal/testutil"
)

const googlStory = "googl-2025-q3-earnings"

var testStart = time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC)

func qty(n int64) *int64 {
	return &n
}

// testEngine builds an engine over the built-in catalog, a temp-dir store,
// a frozen clock, and fixed run tokens.
func testEngine(t *testing.T) (*Engine, *store.Store) {
	t.Helper()

	cat, err := catalog.BuiltIn()
	require.NoError(t, err)

	st := store.New(filepath.Join(t.TempDir(), "storymode.json"))
	eng, err := New(cat, st,
		WithNow(testutil.NewClock(testStart).Now),
		WithTokenGenerator(NewFixedGenerator("run-1", "run-2", "run-3")),
	)
	require.NoError(t, err)
	return eng, st
}

func TestListStories(t *testing.T) {
	eng, _ := testEngine(t)

	stories := eng.ListStories()
	require.Len(t, stories, 2)
	assert.Equal(t, googlStory, stories[0].ID)
	assert.Equal(t, "GOOGL", stories[0].Ticker)
	assert.Equal(t, stories, eng.ListStories(), "order stable across calls")
}

func TestStartStory_NotFound(t *testing.T) {
	eng, st := testEngine(t)

	_, err := eng.StartStory("no-such-story")
	require.Error(t, err)
	assert.Equal(t, CodeStoryNotFound, CodeOf(err))
	assert.Contains(t, err.Error(), googlStory, "message lists available ids")

	f, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, f.Game, "nothing persisted on failure")
	assert.False(t, eng.HasActiveGame())
}

func TestStartStory_InitialState(t *testing.T) {
	eng, st := testEngine(t)

	res, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	assert.Equal(t, googlStory, res.StoryID)
	assert.Equal(t, "GOOGL", res.Ticker)
	assert.Equal(t, money.Cents(10_000_000), res.StartingCash)
	assert.Equal(t, "t-7", res.Checkpoint.ID)
	assert.Equal(t, money.Cents(17000), res.Checkpoint.Price)

	require.True(t, eng.HasActiveGame())

	f, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, f.Game, "start persists immediately")
	assert.Equal(t, googlStory, f.Game.StoryID)
	assert.Equal(t, "run-1", f.Game.RunToken)
	assert.Equal(t, 0, f.Game.CurrentCheckpointIndex)
	assert.Equal(t, money.Cents(10_000_000), f.Game.Cash)
	assert.Zero(t, f.Game.Shares)
	assert.Empty(t, f.Game.Transactions)
	assert.Equal(t, testStart, f.Game.StartedAt)
}

func TestStartStory_OverwritesInProgressGame(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, nil)
	require.NoError(t, err)

	// Restarting abandons the run with no warning.
	res, err := eng.StartStory("nvda-2024-q2-earnings")
	require.NoError(t, err)
	assert.Equal(t, "nvda-2024-q2-earnings", res.StoryID)

	status, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, "nvda-2024-q2-earnings", status.StoryID)
	assert.Equal(t, 0, status.CheckpointIndex)
	assert.Zero(t, status.Shares)
	assert.Empty(t, status.Transactions)
}

func TestExecuteAction_NoActiveGame(t *testing.T) {
	eng, _ := testEngine(t)

	_, err := eng.ExecuteAction(game.ActionBuy, nil)
	assert.Equal(t, CodeNoActiveGame, CodeOf(err))
}

func TestExecuteAction_UnknownAction(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.Action("hold"), nil)
	require.Error(t, err)
	assert.False(t, IsGameError(err), "unknown action is caller misuse, not a domain error")
}

func TestExecuteAction_BuyAllIn(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	res, err := eng.ExecuteAction(game.ActionBuy, nil)
	require.NoError(t, err)

	// floor($100,000 / $170) = 588 shares, $99,960 spent.
	assert.Equal(t, int64(588), res.Shares)
	require.NotNil(t, res.Quantity)
	assert.Equal(t, int64(588), *res.Quantity)
	require.NotNil(t, res.Price)
	assert.Equal(t, money.Cents(17000), *res.Price)
	assert.Equal(t, money.Cents(4000), res.Cash)

	require.NotNil(t, res.NextCheckpoint)
	assert.Equal(t, "t-1", res.NextCheckpoint.ID)
	assert.Nil(t, res.Scorecard)
	assert.NotEmpty(t, res.RevealAfterAction)
}

func TestExecuteAction_BuyExplicitQuantity(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	res, err := eng.ExecuteAction(game.ActionBuy, qty(100))
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.Shares)
	assert.Equal(t, money.Cents(10_000_000-100*17000), res.Cash)
}

func TestExecuteAction_BuyExactBoundary(t *testing.T) {
	// Cost exactly equal to cash must succeed: strict > on integer cents.
	cp1 := catalog.Checkpoint{ID: "d1", Date: "2024-01-02", Label: "one", Price: 2500, Narrative: "n", RevealAfterAction: "r"}
	cp2 := catalog.Checkpoint{ID: "d2", Date: "2024-01-03", Label: "two", Price: 2600, Narrative: "n", RevealAfterAction: "r"}
	cat, err := catalog.New(catalog.Story{
		ID: "exact", Title: "Exact", Ticker: "EXCT", StartingCash: 50_000,
		Checkpoints: []catalog.Checkpoint{cp1, cp2},
	})
	require.NoError(t, err)

	st := store.New(filepath.Join(t.TempDir(), "storymode.json"))
	eng, err := New(cat, st,
		WithNow(testutil.NewClock(testStart).Now),
		WithTokenGenerator(NewFixedGenerator("run-1")),
	)
	require.NoError(t, err)

	_, err = eng.StartStory("exact")
	require.NoError(t, err)

	res, err := eng.ExecuteAction(game.ActionBuy, qty(20)) // 20 x $25.00 == $500.00
	require.NoError(t, err)
	assert.Equal(t, money.Cents(0), res.Cash)
	assert.Equal(t, int64(20), res.Shares)
}

func TestExecuteAction_InsufficientCash(t *testing.T) {
	eng, st := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, nil)
	require.NoError(t, err)

	// $40.00 left, next price is $175.50.
	_, err = eng.ExecuteAction(game.ActionBuy, qty(1))
	require.Error(t, err)
	assert.Equal(t, CodeInsufficientCash, CodeOf(err))
	assert.Contains(t, err.Error(), "$175.50")
	assert.Contains(t, err.Error(), "$40.00")

	// State unchanged, in memory and on disk.
	status, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, money.Cents(4000), status.Cash)
	assert.Equal(t, int64(588), status.Shares)
	assert.Equal(t, 1, status.CheckpointIndex)
	assert.Len(t, status.Transactions, 1, "no ledger entry for a failed action")

	f, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, f.Game)
	assert.Equal(t, money.Cents(4000), f.Game.Cash)
	assert.Len(t, f.Game.Transactions, 1)
}

func TestExecuteAction_BuyInvalidQuantity(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	for _, q := range []int64{0, -5} {
		_, err = eng.ExecuteAction(game.ActionBuy, qty(q))
		assert.Equal(t, CodeInvalidQuantity, CodeOf(err), "quantity %d", q)
	}
}

func TestExecuteAction_BuyAllInWithNoAffordableShare(t *testing.T) {
	// All-in resolves to floor(cash/price); zero affordable shares is an
	// invalid quantity, not an insufficient-cash error.
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, nil)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionBuy, nil)
	assert.Equal(t, CodeInvalidQuantity, CodeOf(err))
}

func TestExecuteAction_SellWithNoShares(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionSell, nil)
	assert.Equal(t, CodeInvalidQuantity, CodeOf(err), "sell-all of zero shares resolves to zero")
}

func TestExecuteAction_InsufficientShares(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, qty(10))
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionSell, qty(11))
	require.Error(t, err)
	assert.Equal(t, CodeInsufficientShares, CodeOf(err))
	assert.Contains(t, err.Error(), "Want to sell 11, have 10")
}

func TestExecuteAction_SellPartialAndAll(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionBuy, qty(100)) // t-7 @ $170.00
	require.NoError(t, err)

	res, err := eng.ExecuteAction(game.ActionSell, qty(40)) // t-1 @ $175.50
	require.NoError(t, err)
	assert.Equal(t, int64(60), res.Shares)
	assert.Equal(t, money.Cents(10_000_000-100*17000+40*17550), res.Cash)

	res, err = eng.ExecuteAction(game.ActionSell, nil) // sell-all t0 @ $178.00
	require.NoError(t, err)
	assert.Zero(t, res.Shares)
	require.NotNil(t, res.Quantity)
	assert.Equal(t, int64(60), *res.Quantity)
}

func TestExecuteAction_SkipLogsBareTransaction(t *testing.T) {
	eng, st := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	res, err := eng.ExecuteAction(game.ActionSkip, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Quantity)
	assert.Nil(t, res.Price)
	assert.Equal(t, money.Cents(10_000_000), res.Cash)
	assert.Zero(t, res.Shares)

	f, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, f.Game)
	require.Len(t, f.Game.Transactions, 1)
	tx := f.Game.Transactions[0]
	assert.Equal(t, game.ActionSkip, tx.Action)
	assert.Nil(t, tx.Quantity)
	assert.Nil(t, tx.Price)
	assert.Equal(t, "t-7", tx.CheckpointID)
	assert.Equal(t, "2025-10-22", tx.Date)
}

func TestExecuteAction_IndexAdvancesByExactlyOne(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		status, err := eng.Status()
		require.NoError(t, err)
		assert.Equal(t, i, status.CheckpointIndex)
		assert.Len(t, status.Transactions, i)

		_, err = eng.ExecuteAction(game.ActionSkip, nil)
		require.NoError(t, err)
	}
}

func TestExecuteAction_TerminalLiquidatesAndClearsSlot(t *testing.T) {
	eng, st := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionBuy, nil) // 588 @ $170.00, $40.00 left
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = eng.ExecuteAction(game.ActionSkip, nil)
		require.NoError(t, err)
	}

	res, err := eng.ExecuteAction(game.ActionSkip, nil) // final checkpoint @ $192.00
	require.NoError(t, err)

	// Auto-liquidation: $40.00 + 588 x $192.00 = $112,936.00.
	assert.Zero(t, res.Shares)
	assert.Equal(t, money.Cents(11_293_600), res.Cash)
	assert.Nil(t, res.NextCheckpoint)

	require.NotNil(t, res.Scorecard)
	sc := res.Scorecard
	assert.Equal(t, money.Cents(11_293_600), sc.FinalNetValue)
	assert.Equal(t, money.Cents(1_293_600), sc.TotalGain)
	assert.InDelta(t, 12.936, sc.GainPercent, 0.001)
	assert.Equal(t, 1, sc.TradeCount)
	// Player went all-in at the first price, so they match the baseline.
	assert.Equal(t, sc.FinalNetValue, sc.BuyAndHold.FinalValue)
	assert.InDelta(t, sc.GainPercent, sc.BuyAndHold.GainPercent, 0.0001)

	assert.False(t, eng.HasActiveGame())
	f, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, f.Game, "slot cleared on completion")

	_, err = eng.Status()
	assert.Equal(t, CodeNoActiveGame, CodeOf(err))
}

func TestExecuteAction_SkipThroughEntireStory(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	var last ActionResult
	for i := 0; i < 5; i++ {
		last, err = eng.ExecuteAction(game.ActionSkip, nil)
		require.NoError(t, err)
	}

	require.NotNil(t, last.Scorecard)
	sc := last.Scorecard
	assert.Equal(t, 0, sc.TradeCount)
	assert.Equal(t, money.Cents(10_000_000), sc.FinalNetValue, "cash untouched with no trades")
	assert.Zero(t, sc.TotalGain)
	assert.Zero(t, sc.GainPercent)
	// Baseline is independent of the player's path: ($192-$170)/$170.
	assert.InDelta(t, 12.94, sc.BuyAndHold.GainPercent, 0.01)
	assert.Equal(t, money.Cents(11_293_600), sc.BuyAndHold.FinalValue)
}

func TestExecuteAction_InvariantsHoldThroughMixedRun(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)

	steps := []struct {
		action game.Action
		qty    *int64
	}{
		{game.ActionBuy, qty(200)},
		{game.ActionSell, qty(50)},
		{game.ActionBuy, nil},
		{game.ActionSkip, nil},
		{game.ActionSell, nil},
	}

	for i, step := range steps {
		res, err := eng.ExecuteAction(step.action, step.qty)
		require.NoError(t, err, "step %d", i)
		assert.GreaterOrEqual(t, res.Cash, money.Cents(0), "step %d cash", i)
		assert.GreaterOrEqual(t, res.Shares, int64(0), "step %d shares", i)
	}
	assert.False(t, eng.HasActiveGame())
}

func TestStatus_Snapshot(t *testing.T) {
	eng, _ := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, nil)
	require.NoError(t, err)

	status, err := eng.Status()
	require.NoError(t, err)

	assert.Equal(t, googlStory, status.StoryID)
	assert.Equal(t, "Google 2025 Q3 Earnings Storm", status.StoryTitle)
	assert.Equal(t, 1, status.CheckpointIndex)
	assert.Equal(t, 5, status.TotalCheckpoints)
	assert.Equal(t, "t-1", status.Checkpoint.ID)
	assert.Equal(t, money.Cents(4000), status.Cash)
	assert.Equal(t, int64(588), status.Shares)
	// Marked at the current checkpoint's $175.50.
	assert.Equal(t, money.Cents(588*17550), status.MarketValue)
	assert.Equal(t, money.Cents(4000+588*17550-10_000_000), status.UnrealizedPnl)
	require.Len(t, status.Transactions, 1)
}

func TestStatus_ReadOnlyAndIdempotent(t *testing.T) {
	eng, st := testEngine(t)
	_, err := eng.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng.ExecuteAction(game.ActionBuy, qty(10))
	require.NoError(t, err)

	before, err := st.Load()
	require.NoError(t, err)

	first, err := eng.Status()
	require.NoError(t, err)
	second, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Mutating the returned transaction log must not leak into the engine.
	first.Transactions[0].Action = game.ActionSkip
	third, err := eng.Status()
	require.NoError(t, err)
	assert.Equal(t, game.ActionBuy, third.Transactions[0].Action)

	after, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, before, after, "status never persists")
}

func TestNew_ResumesPersistedGame(t *testing.T) {
	cat, err := catalog.BuiltIn()
	require.NoError(t, err)
	st := store.New(filepath.Join(t.TempDir(), "storymode.json"))

	eng1, err := New(cat, st,
		WithNow(testutil.NewClock(testStart).Now),
		WithTokenGenerator(NewFixedGenerator("run-1")),
	)
	require.NoError(t, err)
	_, err = eng1.StartStory(googlStory)
	require.NoError(t, err)
	_, err = eng1.ExecuteAction(game.ActionBuy, qty(50))
	require.NoError(t, err)

	// A fresh engine over the same store picks the run back up.
	eng2, err := New(cat, st)
	require.NoError(t, err)
	require.True(t, eng2.HasActiveGame())

	status, err := eng2.Status()
	require.NoError(t, err)
	assert.Equal(t, int64(50), status.Shares)
	assert.Equal(t, 1, status.CheckpointIndex)
	assert.Equal(t, "run-1", statusRunToken(t, st))
}

func statusRunToken(t *testing.T, st *store.Store) string {
	t.Helper()
	f, err := st.Load()
	require.NoError(t, err)
	require.NotNil(t, f.Game)
	return f.Game.RunToken
}

func TestStatusAndAction_StoryDataMissing(t *testing.T) {
	// Start against a full catalog, resume against one missing the story.
	cat, err := catalog.BuiltIn()
	require.NoError(t, err)
	st := store.New(filepath.Join(t.TempDir(), "storymode.json"))

	eng1, err := New(cat, st,
		WithNow(testutil.NewClock(testStart).Now),
		WithTokenGenerator(NewFixedGenerator("run-1")),
	)
	require.NoError(t, err)
	_, err = eng1.StartStory(googlStory)
	require.NoError(t, err)

	other, err := catalog.New(catalog.Story{
		ID: "unrelated", Title: "Unrelated", Ticker: "UNRL", StartingCash: 1000,
		Checkpoints: []catalog.Checkpoint{{
			ID: "d1", Date: "2024-01-02", Label: "one", Price: 100, Narrative: "n", RevealAfterAction: "r",
		}},
	})
	require.NoError(t, err)

	eng2, err := New(other, st)
	require.NoError(t, err)

	_, err = eng2.Status()
	assert.Equal(t, CodeStoryDataMissing, CodeOf(err))
	_, err = eng2.ExecuteAction(game.ActionSkip, nil)
	assert.Equal(t, CodeStoryDataMissing, CodeOf(err))
}

func TestExecuteAction_AlreadyCompletedGuard(t *testing.T) {
	// An out-of-range index should not occur in normal use, but the engine
	// guards it explicitly. Forge a store file pointing past the end.
	cat, err := catalog.BuiltIn()
	require.NoError(t, err)
	st := store.New(filepath.Join(t.TempDir(), "storymode.json"))
	require.NoError(t, st.Save(game.File{Version: game.FileVersion, Game: &game.State{
		StoryID:                googlStory,
		RunToken:               "forged",
		CurrentCheckpointIndex: 99,
		Cash:                   10_000_000,
		Transactions:           []game.Transaction{},
		StartedAt:              testStart,
	}}))

	eng, err := New(cat, st)
	require.NoError(t, err)

	_, err = eng.ExecuteAction(game.ActionSkip, nil)
	assert.Equal(t, CodeAlreadyCompleted, CodeOf(err))
	_, err = eng.Status()
	assert.Equal(t, CodeAlreadyCompleted, CodeOf(err))
}
