package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted   = errors.New("service not started")
	ErrRunNotFound  = errors.New("run not found")
	ErrBackpressure = errors.New("page queue is full")
)
