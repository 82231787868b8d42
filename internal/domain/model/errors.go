package model

import "errors"

// Sentinel kinds for event construction errors.
var (
	ErrUnknownKind        = errors.New("unknown event kind")
	ErrUnknownModifier    = errors.New("unknown event modifier")
	ErrModifierNotAllowed = errors.New("modifier is only allowed on goals")
	ErrNegativeMinute     = errors.New("minute must not be negative")
	ErrUnknownSide        = errors.New("unknown team side")
)
