package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("outcome queue full")
	ErrClosed = errors.New("outcome queue closed")
)
