package game

import (
	"time"

	"github.com/roach88/hindsight/internal/money"
)

// Action is a player decision at a checkpoint.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionSkip Action = "skip"
)

// Valid reports whether a is one of the three known actions.
func (a Action) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionSkip:
		return true
	}
	return false
}

// IsTrade reports whether a moves cash or shares (not a skip).
func (a Action) IsTrade() bool {
	return a == ActionBuy || a == ActionSell
}

// Transaction is one executed player action. Transactions are append-only:
// created once per action (skips included) and never mutated or removed.
//
// Quantity and Price are nil exactly when Action is "skip".
type Transaction struct {
	CheckpointID string       `json:"checkpointId"`
	Action       Action       `json:"action"`
	Quantity     *int64       `json:"quantity,omitempty"`
	Price        *money.Cents `json:"price,omitempty"`
	Date         string       `json:"date"`
}

// State is the mutable state of one in-progress game.
//
// Invariants maintained by the engine:
//   - Cash >= 0 and Shares >= 0 after every action
//   - CurrentCheckpointIndex only increases, by exactly 1 per
//     non-terminal action
//   - len(Transactions) equals the number of actions executed so far
type State struct {
	StoryID                string        `json:"storyId"`
	RunToken               string        `json:"runToken"`
	CurrentCheckpointIndex int           `json:"currentCheckpointIndex"`
	Cash                   money.Cents   `json:"cash"`
	Shares                 int64         `json:"shares"`
	Transactions           []Transaction `json:"transactions"`
	StartedAt              time.Time     `json:"startedAt"`
}

// TradeCount returns the number of logged transactions that moved cash or
// shares. Skips do not count.
func (s *State) TradeCount() int {
	n := 0
	for _, tx := range s.Transactions {
		if tx.Action.IsTrade() {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the state. The engine mutates a clone and
// swaps it in only after a successful persist, so a failed save leaves the
// in-memory state untouched as well.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Transactions = make([]Transaction, len(s.Transactions))
	copy(dup.Transactions, s.Transactions)
	return &dup
}

// FileVersion is the store file format version.
const FileVersion = 1

// File is the persisted single-slot store layout:
// {"version": 1, "game": State|null}.
type File struct {
	Version int    `json:"version"`
	Game    *State `json:"game"`
}

// EmptyFile returns the store content for "no game in progress".
func EmptyFile() File {
	return File{Version: FileVersion, Game: nil}
}
