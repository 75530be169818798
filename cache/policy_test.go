package cache

import (
	"testing"
	"time"
)

func TestPolicy_Defaults(t *testing.T) {
	p := Policy{}.withDefaults()

	if p.TTL != DefaultTTL {
		t.Errorf("TTL = %v, want %v", p.TTL, DefaultTTL)
	}
	if p.MaxBytes != DefaultMaxBytes {
		t.Errorf("MaxBytes = %d, want %d", p.MaxBytes, DefaultMaxBytes)
	}
	if p.Headroom != DefaultHeadroom {
		t.Errorf("Headroom = %f, want %f", p.Headroom, DefaultHeadroom)
	}
}

func TestPolicy_ExpiredBoundary(t *testing.T) {
	p := Policy{TTL: time.Minute}.withDefaults()

	created := time.Unix(1_000_000, 0)
	createdAt := epochSeconds(created)

	// One second under the TTL: valid.
	if p.Expired(createdAt, created.Add(59*time.Second)) {
		t.Error("entry expired one second before TTL")
	}
	// Exactly at the TTL: still valid, the comparison is strict.
	if p.Expired(createdAt, created.Add(60*time.Second)) {
		t.Error("entry expired exactly at TTL; comparison must be strictly greater-than")
	}
	// One second over: expired.
	if !p.Expired(createdAt, created.Add(61*time.Second)) {
		t.Error("entry not expired one second past TTL")
	}
}

func TestPolicy_EvictTarget(t *testing.T) {
	p := Policy{MaxBytes: 1000, Headroom: 0.8, TTL: time.Hour}

	if got := p.EvictTarget(); got != 800 {
		t.Errorf("EvictTarget = %d, want 800", got)
	}
}

func TestPolicy_HeadroomClamped(t *testing.T) {
	for _, headroom := range []float64{-0.5, 0, 1.5} {
		p := Policy{Headroom: headroom}.withDefaults()
		if p.Headroom != DefaultHeadroom {
			t.Errorf("Headroom %f not replaced with default, got %f", headroom, p.Headroom)
		}
	}
}
