package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("page not found")
	ErrEditConflict = errors.New("edit conflict")
	ErrJournal      = errors.New("edit journal failure")
)
