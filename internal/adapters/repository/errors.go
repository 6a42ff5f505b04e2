package repository

import "errors"

// Sentinel kinds for caseload errors.
var (
	ErrNotFound     = errors.New("student not found")
	ErrInvalidLimit = errors.New("invalid watchlist limit")
)
