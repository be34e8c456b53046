package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/hindsight/internal/catalog"
	"github.com/roach88/hindsight/internal/game"
	"github.com/roach88/hindsight/internal/money"
	"github.com/roach88/hindsight/internal/store"
)

// Engine is the story state machine. It owns the single game slot for the
// duration of its lifetime: every operation reads the in-memory file, mutates
// a copy, persists, and only then swaps the copy in. A failed persist
// therefore leaves both the in-memory and on-disk state untouched.
//
// The engine is strictly request-response: one operation runs to completion
// (including its persistence write) before the next is accepted. It is not
// safe for concurrent use, and two engine instances over the same store path
// are out of scope.
type Engine struct {
	catalog *catalog.Catalog
	store   *store.Store
	file    game.File
	now     func() time.Time
	tokens  RunTokenGenerator
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the wall clock used to stamp StartedAt.
// Tests pair this with testutil.Clock for deterministic store files.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithTokenGenerator overrides the run token source.
// Production uses UUIDv7Generator; tests use NewFixedGenerator.
func WithTokenGenerator(g RunTokenGenerator) Option {
	return func(e *Engine) {
		e.tokens = g
	}
}

// New creates an engine over the given catalog and store, loading any
// persisted in-progress game. A missing or corrupt store file is not an
// error; it simply means no game is active.
func New(cat *catalog.Catalog, st *store.Store, opts ...Option) (*Engine, error) {
	file, err := st.Load()
	if err != nil {
		return nil, fmt.Errorf("load game store: %w", err)
	}

	e := &Engine{
		catalog: cat,
		store:   st,
		file:    file,
		now:     time.Now,
		tokens:  UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ListStories returns all known stories. Always succeeds; order is stable.
func (e *Engine) ListStories() []catalog.Summary {
	return e.catalog.List()
}

// HasActiveGame reports whether a game is in progress.
func (e *Engine) HasActiveGame() bool {
	return e.file.Game != nil
}

// StartResult is returned by StartStory: the story's identity and its first
// checkpoint, ready to present to the player.
type StartResult struct {
	StoryID      string             `json:"storyId"`
	Title        string             `json:"title"`
	Ticker       string             `json:"ticker"`
	StartingCash money.Cents        `json:"startingCash"`
	Checkpoint   catalog.Checkpoint `json:"checkpoint"`
}

// StartStory begins a fresh run of the given story.
//
// Any in-progress game is overwritten without warning - the slot holds one
// active game at a time. Fails with STORY_NOT_FOUND if the id is unknown;
// nothing is persisted in that case.
func (e *Engine) StartStory(storyID string) (StartResult, error) {
	story, ok := e.catalog.Find(storyID)
	if !ok {
		return StartResult{}, errStoryNotFound(storyID, e.catalog.IDs())
	}

	g := &game.State{
		StoryID:                story.ID,
		RunToken:               e.tokens.Generate(),
		CurrentCheckpointIndex: 0,
		Cash:                   story.StartingCash,
		Shares:                 0,
		Transactions:           []game.Transaction{},
		StartedAt:              e.now().UTC(),
	}

	next := game.File{Version: game.FileVersion, Game: g}
	if err := e.store.Save(next); err != nil {
		return StartResult{}, fmt.Errorf("persist new game: %w", err)
	}
	e.file = next

	slog.Info("story started",
		"story", story.ID,
		"run", g.RunToken,
		"starting_cash", g.Cash,
		"checkpoints", len(story.Checkpoints),
	)

	return StartResult{
		StoryID:      story.ID,
		Title:        story.Title,
		Ticker:       story.Ticker,
		StartingCash: story.StartingCash,
		Checkpoint:   story.Checkpoints[0],
	}, nil
}

// ActionResult is returned by ExecuteAction. Quantity and Price are nil for
// skips. Exactly one of NextCheckpoint and Scorecard is set: the scorecard
// appears when the action closed out the story's last checkpoint.
type ActionResult struct {
	Action            game.Action         `json:"action"`
	Quantity          *int64              `json:"quantity,omitempty"`
	Price             *money.Cents        `json:"price,omitempty"`
	Cash              money.Cents         `json:"cash"`
	Shares            int64               `json:"shares"`
	RevealAfterAction string              `json:"revealAfterAction"`
	NextCheckpoint    *catalog.Checkpoint `json:"nextCheckpoint,omitempty"`
	Scorecard         *Scorecard          `json:"scorecard,omitempty"`
}

// ExecuteAction executes one player decision against the current checkpoint.
//
// quantity is optional: nil means all-in for buys (floor(cash/price)) and
// sell-everything for sells. Skips take no quantity.
//
// All validation happens before any mutation. On the story's last checkpoint
// the action closes the game: remaining shares are liquidated at that
// checkpoint's price, the scorecard is computed, and the game slot clears.
func (e *Engine) ExecuteAction(action game.Action, quantity *int64) (ActionResult, error) {
	if !action.Valid() {
		return ActionResult{}, fmt.Errorf("unknown action %q", action)
	}
	if e.file.Game == nil {
		return ActionResult{}, errNoActiveGame()
	}
	g := e.file.Game

	story, ok := e.catalog.Find(g.StoryID)
	if !ok {
		return ActionResult{}, errStoryDataMissing(g.StoryID)
	}
	if g.CurrentCheckpointIndex >= len(story.Checkpoints) {
		return ActionResult{}, errAlreadyCompleted()
	}
	cp := story.Checkpoints[g.CurrentCheckpointIndex]
	price := cp.Price

	// Resolve and validate the trade before touching state.
	var (
		resolvedQty int64
		isTrade     = action.IsTrade()
	)
	switch action {
	case game.ActionBuy:
		if quantity != nil {
			resolvedQty = *quantity
		} else {
			resolvedQty = int64(g.Cash / price) // all-in
		}
		if resolvedQty <= 0 {
			return ActionResult{}, errInvalidQuantity(resolvedQty)
		}
		if cost := price.Times(resolvedQty); cost > g.Cash {
			return ActionResult{}, errInsufficientCash(cost, g.Cash)
		}
	case game.ActionSell:
		if quantity != nil {
			resolvedQty = *quantity
		} else {
			resolvedQty = g.Shares // sell-all
		}
		if resolvedQty <= 0 {
			return ActionResult{}, errInvalidQuantity(resolvedQty)
		}
		if resolvedQty > g.Shares {
			return ActionResult{}, errInsufficientShares(resolvedQty, g.Shares)
		}
	case game.ActionSkip:
		// No cash or share effect.
	}

	// Apply to a clone; the clone replaces the live state only after a
	// successful persist.
	next := g.Clone()
	switch action {
	case game.ActionBuy:
		next.Cash -= price.Times(resolvedQty)
		next.Shares += resolvedQty
	case game.ActionSell:
		next.Cash += price.Times(resolvedQty)
		next.Shares -= resolvedQty
	}

	// Every action logs a transaction, skips included.
	tx := game.Transaction{
		CheckpointID: cp.ID,
		Action:       action,
		Date:         cp.Date,
	}
	if isTrade {
		q, p := resolvedQty, price
		tx.Quantity = &q
		tx.Price = &p
	}
	next.Transactions = append(next.Transactions, tx)

	result := ActionResult{
		Action:            action,
		RevealAfterAction: cp.RevealAfterAction,
	}
	if isTrade {
		q, p := resolvedQty, price
		result.Quantity = &q
		result.Price = &p
	}

	lastCheckpoint := g.CurrentCheckpointIndex >= len(story.Checkpoints)-1

	var nextFile game.File
	if lastCheckpoint {
		// Auto-liquidate remaining shares at the final price.
		if next.Shares > 0 {
			next.Cash += price.Times(next.Shares)
			next.Shares = 0
		}
		sc := buildScorecard(story, next)
		result.Scorecard = &sc
		nextFile = game.EmptyFile()
	} else {
		next.CurrentCheckpointIndex++
		result.NextCheckpoint = &story.Checkpoints[next.CurrentCheckpointIndex]
		nextFile = game.File{Version: game.FileVersion, Game: next}
	}

	result.Cash = next.Cash
	result.Shares = next.Shares

	if err := e.store.Save(nextFile); err != nil {
		return ActionResult{}, fmt.Errorf("persist game state: %w", err)
	}
	e.file = nextFile

	slog.Debug("action executed",
		"story", story.ID,
		"run", next.RunToken,
		"checkpoint", cp.ID,
		"action", action,
		"cash", next.Cash,
		"shares", next.Shares,
		"completed", lastCheckpoint,
	)

	return result, nil
}

// Status is the read-only snapshot returned by Engine.Status.
type Status struct {
	StoryID          string             `json:"storyId"`
	StoryTitle       string             `json:"storyTitle"`
	Ticker           string             `json:"ticker"`
	Checkpoint       catalog.Checkpoint `json:"checkpoint"`
	CheckpointIndex  int                `json:"checkpointIndex"`
	TotalCheckpoints int                `json:"totalCheckpoints"`
	Cash             money.Cents        `json:"cash"`
	Shares           int64              `json:"shares"`
	MarketValue      money.Cents        `json:"marketValue"`
	UnrealizedPnl    money.Cents        `json:"unrealizedPnl"`
	StartedAt        time.Time          `json:"startedAt"`
	Transactions     []game.Transaction `json:"transactions"`
}

// Status reports the current game: position, mark-to-market value at the
// current checkpoint's price, and the full transaction log. Read-only:
// never mutates or persists, so consecutive calls return identical values.
func (e *Engine) Status() (Status, error) {
	if e.file.Game == nil {
		return Status{}, errNoActiveGame()
	}
	g := e.file.Game

	story, ok := e.catalog.Find(g.StoryID)
	if !ok {
		return Status{}, errStoryDataMissing(g.StoryID)
	}
	if g.CurrentCheckpointIndex >= len(story.Checkpoints) {
		return Status{}, errAlreadyCompleted()
	}
	cp := story.Checkpoints[g.CurrentCheckpointIndex]

	marketValue := cp.Price.Times(g.Shares)
	txs := make([]game.Transaction, len(g.Transactions))
	copy(txs, g.Transactions)

	return Status{
		StoryID:          g.StoryID,
		StoryTitle:       story.Title,
		Ticker:           story.Ticker,
		Checkpoint:       cp,
		CheckpointIndex:  g.CurrentCheckpointIndex,
		TotalCheckpoints: len(story.Checkpoints),
		Cash:             g.Cash,
		Shares:           g.Shares,
		MarketValue:      marketValue,
		UnrealizedPnl:    g.Cash + marketValue - story.StartingCash,
		StartedAt:        g.StartedAt,
		Transactions:     txs,
	}, nil
}
