package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// MetadataFileName is the name of the index document inside the cache
// directory.
const MetadataFileName = "metadata.json"

// Entry describes one cached artifact in the metadata ledger.
type Entry struct {
	// Timestamp is the creation time in fractional epoch seconds. It is
	// assigned once by Set and never refreshed by reads.
	Timestamp float64

	// Size is the stored blob size in bytes.
	Size int64

	// Seq is the insertion sequence number, used as the deterministic
	// tie-break when timestamps are equal. The order is arbitrary but
	// stable across restarts.
	Seq uint64

	// Extra holds caller-supplied metadata fields, persisted alongside the
	// reserved fields in the same record.
	Extra map[string]any
}

// reserved field names in the persisted record.
const (
	fieldTimestamp = "timestamp"
	fieldSize      = "size"
	fieldSeq       = "seq"
)

// MarshalJSON flattens the entry into a single object: reserved fields plus
// caller-supplied extras.
func (e Entry) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(e.Extra)+3)
	for k, v := range e.Extra {
		obj[k] = v
	}
	obj[fieldTimestamp] = e.Timestamp
	obj[fieldSize] = e.Size
	obj[fieldSeq] = e.Seq
	return json.Marshal(obj)
}

// UnmarshalJSON splits a persisted record back into reserved fields and
// extras. Records written by callers that predate a field tolerate its
// absence by leaving the zero value.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if v, ok := obj[fieldTimestamp].(float64); ok {
		e.Timestamp = v
	}
	if v, ok := obj[fieldSize].(float64); ok {
		e.Size = int64(v)
	}
	if v, ok := obj[fieldSeq].(float64); ok {
		e.Seq = uint64(v)
	}
	delete(obj, fieldTimestamp)
	delete(obj, fieldSize)
	delete(obj, fieldSeq)
	if len(obj) > 0 {
		e.Extra = obj
	} else {
		e.Extra = nil
	}
	return nil
}

// Ledger is the in-memory index of cache entries, mirrored to a single
// persisted document that is rewritten in full on every mutation.
//
// Ledger is not safe for concurrent use on its own; the owning store
// serializes access behind its lock.
type Ledger struct {
	path    string
	entries map[string]Entry
	nextSeq uint64
}

// LoadLedger reads the metadata document at path. A missing or unreadable
// document yields an empty ledger: the index is reconstructable state, not
// a source of truth worth failing over.
func LoadLedger(path string) *Ledger {
	l := &Ledger{
		path:    path,
		entries: make(map[string]Entry),
		nextSeq: 1,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return l
	}
	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return l
	}
	l.entries = entries
	for _, e := range entries {
		if e.Seq >= l.nextSeq {
			l.nextSeq = e.Seq + 1
		}
	}
	return l
}

// Save rewrites the full metadata document atomically (temp file + rename).
func (l *Ledger) Save() error {
	data, err := json.Marshal(l.entries)
	if err != nil {
		return fmt.Errorf("%w: marshal metadata: %v", ErrIO, err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "metadata-*")
	if err != nil {
		return fmt.Errorf("%w: create metadata temp: %v", ErrIO, err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: write metadata: %v", ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: close metadata temp: %v", ErrIO, err)
	}
	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: replace metadata: %v", ErrIO, err)
	}
	return nil
}

// Get returns the entry for a storage ID.
func (l *Ledger) Get(id string) (Entry, bool) {
	e, ok := l.entries[id]
	return e, ok
}

// Put inserts or replaces the entry for a storage ID, assigning the next
// insertion sequence number.
func (l *Ledger) Put(id string, e Entry) {
	e.Seq = l.nextSeq
	l.nextSeq++
	l.entries[id] = e
}

// Remove deletes the entry for a storage ID. No-op if absent.
func (l *Ledger) Remove(id string) {
	delete(l.entries, id)
}

// Reset drops all entries.
func (l *Ledger) Reset() {
	l.entries = make(map[string]Entry)
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// TotalSize returns the sum of entry sizes. It approximates on-disk usage;
// blobs removed out-of-band are corrected lazily on read.
func (l *Ledger) TotalSize() int64 {
	var total int64
	for _, e := range l.entries {
		total += e.Size
	}
	return total
}

// IDs returns all storage IDs in unspecified order.
func (l *Ledger) IDs() []string {
	ids := make([]string, 0, len(l.entries))
	for id := range l.entries {
		ids = append(ids, id)
	}
	return ids
}

// OldestFirst returns storage IDs sorted by ascending creation time, with
// ties broken by insertion sequence. This is the eviction order.
func (l *Ledger) OldestFirst() []string {
	ids := l.IDs()
	sort.Slice(ids, func(i, j int) bool {
		a, b := l.entries[ids[i]], l.entries[ids[j]]
		if a.Timestamp != b.Timestamp {
			return a.Timestamp < b.Timestamp
		}
		return a.Seq < b.Seq
	})
	return ids
}
