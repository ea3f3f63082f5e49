package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted  = errors.New("service not started")
	ErrStaleRound  = errors.New("answer round does not match the session")
	ErrUnknownGame = errors.New("unknown game")
)
