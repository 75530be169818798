package cache

import "github.com/opencontainers/go-digest"

// Keyer maps a logical cache key to a fixed-width storage identifier.
//
// Contract:
// - Determinism: the same key must produce the same identifier across calls
//   and across process restarts; the cache survives restarts only if the
//   keyer is pure.
// - Concurrency: implementations must be safe for concurrent use.
type Keyer interface {
	// StorageID derives the storage identifier for a logical key.
	StorageID(key string) string
}

// DigestKeyer derives storage identifiers from the SHA-256 digest of the
// logical key. The identifier is the 64-character hex encoding of the digest,
// collision-resistant and filename-safe.
type DigestKeyer struct{}

// NewDigestKeyer creates a new digest keyer.
func NewDigestKeyer() *DigestKeyer {
	return &DigestKeyer{}
}

// StorageID returns the hex SHA-256 digest of key.
func (k *DigestKeyer) StorageID(key string) string {
	return digest.SHA256.FromString(key).Encoded()
}

// Ensure DigestKeyer implements Keyer
var _ Keyer = (*DigestKeyer)(nil)
