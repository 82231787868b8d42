package dedupe

import "errors"

// ErrBackend reports a failure of the shared dedupe store.
var ErrBackend = errors.New("dedupe backend failure")
