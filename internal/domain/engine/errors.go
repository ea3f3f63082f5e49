package engine

import "errors"

// Sentinel kinds for engine errors.
var (
	// ErrInvalidState is returned when an operation is called outside its
	// contract: selecting on fewer than two candidates, or applying an
	// answer without an active question.
	ErrInvalidState = errors.New("invalid state")
)
