package seed

import "errors"

// Sentinel errors.
var (
	ErrConfig   = errors.New("invalid seed config")
	ErrMismatch = errors.New("leaderboard does not match submitted entries")
)

const (
	// the leaderboard endpoint caps ?limit at 100 by default
	maxBarbers        = 100
	minPasswordLength = 6

	saleShare      = 5 // one entry in saleShare is a product sale
	maxSaleUnits   = 3
	maxExtras      = 2
	workerChanMult = 2

	percentageMultiplier = 100
)
