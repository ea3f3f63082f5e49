package simulate

import "errors"

// Error constants.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrStatus       = errors.New("unexpected status")
	ErrNoPopulation = errors.New("no players to simulate")
	ErrNotReplayed  = errors.New("replayed answer was applied twice")
	ErrDidNotFinish = errors.New("game did not finish")
)
