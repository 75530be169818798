// Package cache provides a persistent, TTL-bounded artifact cache.
//
// It provides a Store interface with a disk implementation backed by a
// metadata ledger, SHA-256 content addressing of logical keys, size-bounded
// eviction, and a render middleware with single-flight de-duplication.
package cache
