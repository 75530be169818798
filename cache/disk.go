package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const dirPerm = 0o700

// DiskStore is a Store persisted to a single directory: one blob file per
// entry, named by storage ID, plus a metadata document.
//
// All public operations are serialized behind one coarse lock covering the
// full read-check-act sequence, keeping the blobs and the metadata document
// consistent. Cache operations are rare relative to rendering work, so the
// lost concurrency is acceptable.
//
// Multiple processes sharing one directory are not coordinated; external
// locking is required for multi-process safety.
type DiskStore struct {
	mu     sync.Mutex
	dir    string
	policy Policy
	keyer  Keyer
	ledger *Ledger
	codec  codec
	now    func() time.Time

	evictions uint64
}

// Option configures a DiskStore.
type Option func(*DiskStore)

// WithKeyer sets the keyer used to derive storage IDs. Defaults to
// DigestKeyer. Changing the keyer of an existing directory orphans prior
// entries.
func WithKeyer(k Keyer) Option {
	return func(s *DiskStore) {
		s.keyer = k
	}
}

// WithCompression enables transparent zstd compression of stored blobs.
func WithCompression() Option {
	return func(s *DiskStore) {
		s.codec = newZstdCodec()
	}
}

// WithClock sets the time source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(s *DiskStore) {
		s.now = now
	}
}

// NewDiskStore opens the cache directory, creating it if missing, loads the
// metadata ledger, and runs a cold sweep removing already-expired entries.
func NewDiskStore(dir string, policy Policy, opts ...Option) (*DiskStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: cache dir is empty", ErrInvalidKey)
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("%w: create cache dir: %v", ErrIO, err)
	}

	s := &DiskStore{
		dir:    dir,
		policy: policy.withDefaults(),
		keyer:  NewDigestKeyer(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.ledger = LoadLedger(filepath.Join(dir, MetadataFileName))

	if s.sweepExpiredLocked() > 0 {
		// Persist the cold sweep; failure here degrades to a stale
		// document, corrected on the next mutation.
		_ = s.ledger.Save()
	}
	return s, nil
}

// Get retrieves the artifact for a logical key. It returns (nil, false) on
// absent entry, missing blob, expiry, or any I/O fault. An expired entry is
// removed as a side effect. Get never refreshes an entry's age: retention is
// pure TTL plus insertion order, not LRU.
func (s *DiskStore) Get(_ context.Context, key string) ([]byte, bool) {
	if ValidateKey(key) != nil {
		return nil, false
	}
	id := s.keyer.StorageID(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.ledger.Get(id)
	if !ok {
		return nil, false
	}
	if s.policy.Expired(entry.Timestamp, s.now()) {
		s.removeLocked(id)
		_ = s.ledger.Save()
		return nil, false
	}

	data, err := os.ReadFile(s.blobPath(id))
	if err != nil {
		// Blob missing or unreadable: lazy miss, not a fatal
		// inconsistency.
		return nil, false
	}
	if s.codec != nil {
		data, err = s.codec.decode(data)
		if err != nil {
			return nil, false
		}
	}
	return data, true
}

// Set stores an artifact under a logical key, replacing any existing entry
// wholesale. When aggregate size exceeds the policy ceiling an eviction
// sweep runs first, removing oldest entries until usage is within headroom.
// The metadata document is persisted in full before returning.
func (s *DiskStore) Set(_ context.Context, key string, value []byte, extra map[string]any) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	id := s.keyer.StorageID(key)

	stored := value
	if s.codec != nil {
		var err error
		stored, err = s.codec.encode(value)
		if err != nil {
			return fmt.Errorf("%w: compress blob: %v", ErrIO, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ledger.TotalSize() > s.policy.MaxBytes {
		s.evictLocked()
	}

	if err := s.writeBlob(id, stored); err != nil {
		return err
	}
	s.ledger.Put(id, Entry{
		Timestamp: epochSeconds(s.now()),
		Size:      int64(len(stored)),
		Extra:     extra,
	})
	return s.ledger.Save()
}

// Invalidate removes the entry and blob for a logical key. Idempotent - no
// error when the key is absent.
func (s *DiskStore) Invalidate(_ context.Context, key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	id := s.keyer.StorageID(key)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ledger.Get(id); !ok {
		// Still remove a stray blob left by an earlier fault.
		_ = os.Remove(s.blobPath(id))
		return nil
	}
	s.removeLocked(id)
	return s.ledger.Save()
}

// Clear removes the entire cache directory tree and reconstructs an empty
// one. Idempotent.
func (s *DiskStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("%w: remove cache dir: %v", ErrIO, err)
	}
	if err := os.MkdirAll(s.dir, dirPerm); err != nil {
		return fmt.Errorf("%w: recreate cache dir: %v", ErrIO, err)
	}
	s.ledger.Reset()
	return s.ledger.Save()
}

// Stats contains store statistics.
type Stats struct {
	Entries    int
	TotalBytes int64
	Evictions  uint64
}

// Stats returns current store statistics.
func (s *DiskStore) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Entries:    s.ledger.Len(),
		TotalBytes: s.ledger.TotalSize(),
		Evictions:  s.evictions,
	}
}

// Dir returns the cache directory.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Policy returns the applied retention policy.
func (s *DiskStore) Policy() Policy {
	return s.policy
}

func (s *DiskStore) blobPath(id string) string {
	return filepath.Join(s.dir, id)
}

// writeBlob writes the blob atomically via temp file + rename so a crashed
// write never leaves a truncated blob behind an index entry.
func (s *DiskStore) writeBlob(id string, data []byte) error {
	tmp, err := os.CreateTemp(s.dir, "blob-*")
	if err != nil {
		return fmt.Errorf("%w: create blob temp: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write blob: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close blob temp: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, s.blobPath(id)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: place blob: %v", ErrIO, err)
	}
	return nil
}

// removeLocked deletes one entry and its blob. Caller holds the lock and
// persists the ledger.
func (s *DiskStore) removeLocked(id string) {
	_ = os.Remove(s.blobPath(id))
	s.ledger.Remove(id)
}

// sweepExpiredLocked removes every expired entry and returns how many were
// removed. Both this cold sweep and the per-key check in Get derive expiry
// from the same Policy.Expired comparison.
func (s *DiskStore) sweepExpiredLocked() int {
	now := s.now()
	removed := 0
	for _, id := range s.ledger.IDs() {
		entry, ok := s.ledger.Get(id)
		if !ok {
			continue
		}
		if s.policy.Expired(entry.Timestamp, now) {
			s.removeLocked(id)
			removed++
		}
	}
	return removed
}

// evictLocked removes oldest entries first until aggregate size is at or
// below the headroom target. Ties among equal timestamps break by insertion
// sequence.
func (s *DiskStore) evictLocked() {
	target := s.policy.EvictTarget()
	total := s.ledger.TotalSize()
	for _, id := range s.ledger.OldestFirst() {
		if total <= target {
			break
		}
		entry, ok := s.ledger.Get(id)
		if !ok {
			continue
		}
		s.removeLocked(id)
		s.evictions++
		total -= entry.Size
	}
}

// Ensure DiskStore implements Store
var _ Store = (*DiskStore)(nil)
