package vault

import "errors"

// Sentinel errors for key vault operations.
var (
	// ErrKeyCorrupt is returned when the persisted key file cannot be decoded
	// or has the wrong length.
	ErrKeyCorrupt = errors.New("vault: key file is corrupt")

	// ErrEmptyDir is returned when no directory is provided.
	ErrEmptyDir = errors.New("vault: directory is empty")
)
