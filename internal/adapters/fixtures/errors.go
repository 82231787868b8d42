package fixtures

import "errors"

// Sentinel kinds for fixture errors.
var (
	ErrDecode = errors.New("fixture decode failed")
	ErrEmpty  = errors.New("fixture is empty")
)
