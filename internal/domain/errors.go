package domain

import "errors"

// Common errors shared across storage and API layers.
var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)
