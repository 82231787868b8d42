package sortbot

import "errors"

// Sentinel kinds for run errors.
var (
	ErrPagesFailed = errors.New("some pages could not be sorted")
)
