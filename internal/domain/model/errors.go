package model

import "errors"

// Sentinel errors returned by record decoding.
var (
	ErrUnknownKind      = errors.New("unknown event kind")
	ErrMissingTimestamp = errors.New("missing event timestamp")
	ErrInvalidTimestamp = errors.New("invalid event timestamp")
	ErrInvalidMonth     = errors.New("invalid month")
)
