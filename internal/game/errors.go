package game

import "fmt"

// ConfigurationError reports an invalid match configuration: a bad rule
// value, an unknown rule key, or a participant count outside the game's
// bounds. It is only returned at engine construction time.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return e.Reason
}

// IllegalMoveError reports why a move was rejected: wrong turn, terminal
// game, expired clock, or a game-specific rule violation.
type IllegalMoveError struct {
	Reason string
}

func (e *IllegalMoveError) Error() string {
	return e.Reason
}

func illegalMove(format string, args ...interface{}) *IllegalMoveError {
	return &IllegalMoveError{Reason: fmt.Sprintf(format, args...)}
}

func configError(format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}
