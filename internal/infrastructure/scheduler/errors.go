package scheduler

import "errors"

var (
	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")

	// ErrSweepFailed is returned when one or more payments in a sweep could not be released
	ErrSweepFailed = errors.New("release sweep failed")
)
