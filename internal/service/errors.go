package service

import "errors"

var (
	// ErrMatchNotFound is returned when no match exists for the given ID.
	ErrMatchNotFound = errors.New("match not found")

	// ErrMatchInProgress is returned when creating a match for an ID that
	// already has one still running.
	ErrMatchInProgress = errors.New("a game is already in progress for this match")
)

// TimeoutPreemptedError reports that a move was refused because the acting
// player's clock had already expired; the timeout was handled instead.
type TimeoutPreemptedError struct {
	Ended         bool
	WinnerID      string
	CurrentTurnID string
}

func (e *TimeoutPreemptedError) Error() string {
	if e.Ended {
		return "move rejected: the game ended on a timeout"
	}
	return "move rejected: the turn was skipped on a timeout"
}
