package ordering

import "errors"

// ErrInvalidComparison means events of different groups were compared. It is a
// programming error in the caller, never a data error.
var ErrInvalidComparison = errors.New("invalid comparison between event groups")
