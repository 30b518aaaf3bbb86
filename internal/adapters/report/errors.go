package report

import "errors"

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrUnknownSection = errors.New("unknown report section")
	ErrRender         = errors.New("render report failed")
)
