package config

import (
	"errors"
)

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
