package service

import "errors"

// Sentinel errors, matched with errors.Is by callers.
var (
	ErrUnauthenticated     = errors.New("not signed in")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrOutOfStock          = errors.New("insufficient stock")
	ErrDuplicateEntry      = errors.New("entry already in progress")
	ErrManagerGateDisabled = errors.New("manager area is disabled")
	ErrNotStarted          = errors.New("service not started")
)
