package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrOpenDatabase = errors.New("open database failed")
	ErrInvalidPage  = errors.New("invalid pagination parameters")
	ErrSeed         = errors.New("csv seed failed")
)
