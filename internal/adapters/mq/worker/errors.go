package worker

import "errors"

// ErrStopped reports that workers did not finish draining in time.
var ErrStopped = errors.New("worker pool did not stop")
