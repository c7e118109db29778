package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound  = errors.New("calculation not found")
	ErrInvalidID = errors.New("invalid calculation id")
)
