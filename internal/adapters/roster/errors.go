package roster

import "errors"

// Sentinel errors for roster loading.
var (
	ErrUnsupportedSource = errors.New("unsupported roster source")
	ErrEmptyRoster       = errors.New("roster contains no players")
	ErrFetch             = errors.New("roster fetch failed")
	ErrDecode            = errors.New("roster decode failed")
)
