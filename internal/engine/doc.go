// Package engine implements the story state machine.
//
// A game moves through two states: NoGame (the store's game slot is null)
// and Active (slot set, checkpoint index in range). Starting a story enters
// Active, overwriting whatever was there; the action executed on the last
// checkpoint liquidates any remaining shares, produces the scorecard, and
// returns to NoGame. There is no pause state and never more than one active
// game.
//
// Every operation follows the same discipline:
//
//  1. Validate everything against the current state - all domain errors
//     (GameError) fire here, before any mutation.
//  2. Apply the change to a clone of the game state.
//  3. Persist the clone through the store.
//  4. Swap the clone in only after the persist succeeds.
//
// So a failed call - domain error or persistence failure alike - leaves the
// observable game state exactly as it was.
//
// All money is integer cents (money.Cents); affordability checks are exact
// integer comparisons with no floating-point tolerance games.
package engine
