package engine

import "errors"

var (
	ErrHandEnded      = errors.New("hand already ended")
	ErrOutOfTurn      = errors.New("action out of turn")
	ErrHandInProgress = errors.New("hand already in progress")
	ErrNotEnoughChips = errors.New("not enough chips")
)

// InvalidStateError marks a programmer-invariant breach: state the engine
// should never be able to reach. Callers log it and return the table to
// idle rather than crash.
type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }
