package cache

import "time"

// Policy configures retention behavior for a store.
type Policy struct {
	// TTL is the maximum age of an entry. Entries strictly older than TTL
	// are expired. If zero, DefaultTTL is used.
	TTL time.Duration

	// MaxBytes is the aggregate size ceiling. An eviction sweep runs when
	// the sum of stored entry sizes exceeds it. If zero, DefaultMaxBytes
	// is used.
	MaxBytes int64

	// Headroom is the fraction of MaxBytes an eviction sweep reduces usage
	// to. The slack prevents thrashing on repeated near-ceiling writes.
	// If zero, DefaultHeadroom is used.
	Headroom float64
}

// Policy defaults.
const (
	DefaultTTL      = 1 * time.Hour
	DefaultMaxBytes = 1 << 30 // 1 GiB
	DefaultHeadroom = 0.8
)

// DefaultPolicy returns the default retention policy.
// TTL: 1 hour, MaxBytes: 1 GiB, Headroom: 0.8
func DefaultPolicy() Policy {
	return Policy{
		TTL:      DefaultTTL,
		MaxBytes: DefaultMaxBytes,
		Headroom: DefaultHeadroom,
	}
}

// withDefaults returns a copy of p with zero fields replaced by defaults.
func (p Policy) withDefaults() Policy {
	if p.TTL <= 0 {
		p.TTL = DefaultTTL
	}
	if p.MaxBytes <= 0 {
		p.MaxBytes = DefaultMaxBytes
	}
	if p.Headroom <= 0 || p.Headroom > 1 {
		p.Headroom = DefaultHeadroom
	}
	return p
}

// Expired reports whether an entry created at createdAt (epoch seconds) is
// expired at now. The comparison is strictly greater-than: an entry whose
// age equals the TTL exactly is still valid.
func (p Policy) Expired(createdAt float64, now time.Time) bool {
	age := epochSeconds(now) - createdAt
	return age > p.TTL.Seconds()
}

// EvictTarget returns the byte total an eviction sweep reduces usage to.
func (p Policy) EvictTarget() int64 {
	return int64(float64(p.MaxBytes) * p.Headroom)
}

// epochSeconds converts a time to fractional epoch seconds, the unit used
// for entry timestamps in the metadata document.
func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
