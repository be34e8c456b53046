package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/hindsight/internal/money"
)

// ErrorCode categorizes game errors for callers that dispatch on failure kind
// (the CLI maps codes to output; an agent host maps them to tool failures).
type ErrorCode string

const (
	// CodeStoryNotFound indicates an unknown story id on start.
	CodeStoryNotFound ErrorCode = "STORY_NOT_FOUND"

	// CodeNoActiveGame indicates an action or status request with no story started.
	CodeNoActiveGame ErrorCode = "NO_ACTIVE_GAME"

	// CodeStoryDataMissing indicates the stored game references a story id
	// that no longer resolves in the catalog.
	CodeStoryDataMissing ErrorCode = "STORY_DATA_MISSING"

	// CodeAlreadyCompleted indicates the stored index points past the last
	// checkpoint. Guarded defensively; does not occur under normal use.
	CodeAlreadyCompleted ErrorCode = "ALREADY_COMPLETED"

	// CodeInvalidQuantity indicates a resolved trade quantity <= 0.
	CodeInvalidQuantity ErrorCode = "INVALID_QUANTITY"

	// CodeInsufficientCash indicates a buy costing more than the cash balance.
	CodeInsufficientCash ErrorCode = "INSUFFICIENT_CASH"

	// CodeInsufficientShares indicates a sell of more shares than held.
	CodeInsufficientShares ErrorCode = "INSUFFICIENT_SHARES"
)

// GameError is a domain error surfaced to the caller. Game errors are always
// detected before any state mutation, so a failed call leaves both the
// in-memory and the persisted game exactly as they were.
type GameError struct {
	Code    ErrorCode
	Message string
}

// Error implements the error interface.
func (e *GameError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf extracts the ErrorCode from an error chain.
// Returns "" if err is not a GameError.
func CodeOf(err error) ErrorCode {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsGameError reports whether err is a GameError.
// Persistence failures and other infrastructure errors are not.
func IsGameError(err error) bool {
	var ge *GameError
	return errors.As(err, &ge)
}

func errStoryNotFound(id string, available []string) *GameError {
	return &GameError{
		Code:    CodeStoryNotFound,
		Message: fmt.Sprintf("story not found: %s. Available: %s", id, strings.Join(available, ", ")),
	}
}

func errNoActiveGame() *GameError {
	return &GameError{
		Code:    CodeNoActiveGame,
		Message: "no active story. Start a story first",
	}
}

func errStoryDataMissing(id string) *GameError {
	return &GameError{
		Code:    CodeStoryDataMissing,
		Message: fmt.Sprintf("story data missing: %s", id),
	}
}

func errAlreadyCompleted() *GameError {
	return &GameError{
		Code:    CodeAlreadyCompleted,
		Message: "story already completed",
	}
}

func errInvalidQuantity(qty int64) *GameError {
	return &GameError{
		Code:    CodeInvalidQuantity,
		Message: fmt.Sprintf("quantity must be > 0, got %d", qty),
	}
}

func errInsufficientCash(need, have money.Cents) *GameError {
	return &GameError{
		Code:    CodeInsufficientCash,
		Message: fmt.Sprintf("insufficient cash. Need %s, have %s", need, have),
	}
}

func errInsufficientShares(want, have int64) *GameError {
	return &GameError{
		Code:    CodeInsufficientShares,
		Message: fmt.Sprintf("insufficient shares. Want to sell %d, have %d", want, have),
	}
}
