package session

import "errors"

var (
	// ErrInsufficientFunds reports a stake or double-down the balance cannot cover.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrSessionAlreadyActive reports a second live session for the same user and game.
	ErrSessionAlreadyActive = errors.New("session already active")
	// ErrSessionNotFound reports an unknown or already-evicted session id.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionTerminal reports an event losing the race against a terminal transition.
	ErrSessionTerminal = errors.New("session already terminal")
	// ErrUnknownGame reports an unregistered game kind.
	ErrUnknownGame = errors.New("unknown game")
	// ErrInvalidStake reports a non-positive stake.
	ErrInvalidStake = errors.New("stake must be positive")
	// ErrReplayExpired reports a replay token outside its window.
	ErrReplayExpired = errors.New("replay expired")
	// ErrForbidden reports a replay attempt by a different user.
	ErrForbidden = errors.New("forbidden")
)
