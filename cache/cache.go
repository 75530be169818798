package cache

import (
	"context"
	"errors"
	"strings"
)

// MaxKeyLength is the maximum allowed length for a logical cache key.
const MaxKeyLength = 512

// Sentinel errors for cache operations.
var (
	ErrNilStore   = errors.New("cache: store is nil")
	ErrInvalidKey = errors.New("cache: key is invalid")
	ErrKeyTooLong = errors.New("cache: key exceeds max length")
	ErrIO         = errors.New("cache: i/o failure")
)

// Store is the interface for caching rendered artifacts.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: Get never errors; it returns (nil, false) on miss, expiry, or
//   any I/O fault. The cache is a soft layer and must not fail a pipeline.
// - Semantics: Set replaces any existing entry for the key wholesale; Get
//   never refreshes an entry's age.
type Store interface {
	// Get retrieves a cached artifact. Returns (nil, false) on miss.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores an artifact with optional caller-supplied metadata fields.
	Set(ctx context.Context, key string, value []byte, extra map[string]any) error

	// Invalidate removes an artifact. Idempotent - no error on miss.
	Invalidate(ctx context.Context, key string) error

	// Clear removes all artifacts and resets the store. Idempotent.
	Clear(ctx context.Context) error
}

// ValidateKey checks if a logical key is valid for caching.
func ValidateKey(key string) error {
	if key == "" || strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	if len(key) > MaxKeyLength {
		return ErrKeyTooLong
	}
	// Reject keys with newlines or carriage returns
	if strings.ContainsAny(key, "\n\r") {
		return ErrInvalidKey
	}
	return nil
}
