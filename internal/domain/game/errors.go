package game

import "errors"

// Sentinel kinds for game errors.
var (
	ErrInvalidTransition = errors.New("invalid game transition")
	ErrInvalidConference = errors.New("invalid conference")
	ErrNotAwaitingChoice = errors.New("game is not awaiting a choice")
	ErrAwaitingChoice    = errors.New("game is awaiting a choice")
	ErrUnknownCandidate  = errors.New("unknown candidate")
)
