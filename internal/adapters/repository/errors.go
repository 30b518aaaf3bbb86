package repository

import "errors"

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrNotFound          = errors.New("record not found")
	ErrInvalidCollection = errors.New("invalid collection")
	ErrInvalidDocument   = errors.New("invalid document")
)
