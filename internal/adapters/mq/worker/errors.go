package worker

import "errors"

// ErrStopTimeout is returned when workers do not finish in time.
var ErrStopTimeout = errors.New("worker shutdown timed out")
