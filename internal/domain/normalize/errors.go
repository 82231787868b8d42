package normalize

import "errors"

// Sentinel kinds for normalization errors.
var (
	ErrUnknownKind     = errors.New("unknown source event kind")
	ErrUnknownGoalType = errors.New("unknown source goal type")
)
