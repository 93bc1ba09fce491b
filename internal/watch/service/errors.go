package service

import "errors"

var (
	// ErrContactRequired means a user tried to go away without having
	// designated an emergency contact first.
	ErrContactRequired = errors.New("service: emergency contact required")

	// ErrSchedulerStopped means a timer could not be armed because the
	// scheduler is shutting down.
	ErrSchedulerStopped = errors.New("service: scheduler stopped")
)
