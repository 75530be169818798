package health

import "errors"

var (
	// ErrCheckTimeout indicates a health check did not finish in time.
	ErrCheckTimeout = errors.New("health: check timeout")

	// ErrCheckerNotFound indicates a named checker is not registered.
	ErrCheckerNotFound = errors.New("health: checker not found")
)
