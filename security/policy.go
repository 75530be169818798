package security

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// BlockedDomainsFileName is the name of the blocked-domain document inside
// the security directory.
const BlockedDomainsFileName = "blocked_domains.json"

// Policy defaults.
const (
	DefaultMaxFileBytes     = 100 << 20 // 100 MiB
	DefaultMaxResponseBytes = 10 << 20  // 10 MiB
	DefaultProbeTimeout     = 5 * time.Second
)

// ValidationPolicy configures input validation. It is read-only to the Gate;
// construct it once and share it.
type ValidationPolicy struct {
	// AllowedTypes is the media-type allow-list. Empty means nothing is
	// allowed.
	AllowedTypes map[string]bool

	// MaxFileBytes is the local file size ceiling. A file exactly at the
	// ceiling is accepted.
	MaxFileBytes int64

	// MaxResponseBytes is the remote response size ceiling.
	MaxResponseBytes int64

	// BlockedDomains is the set of rejected hostnames.
	BlockedDomains map[string]bool

	// ProbeTimeout bounds the header-only URL probe. Callers block for up
	// to this long.
	ProbeTimeout time.Duration
}

// DefaultValidationPolicy returns a policy accepting the document types the
// pipeline can render, with 100 MiB file and 10 MiB response ceilings.
func DefaultValidationPolicy() ValidationPolicy {
	return ValidationPolicy{
		AllowedTypes: map[string]bool{
			"application/pdf":    true,
			"application/msword": true,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
			"text/html":  true,
			"text/plain": true,
		},
		MaxFileBytes:     DefaultMaxFileBytes,
		MaxResponseBytes: DefaultMaxResponseBytes,
		BlockedDomains:   map[string]bool{},
		ProbeTimeout:     DefaultProbeTimeout,
	}
}

// withDefaults returns a copy of p with zero fields replaced by defaults.
func (p ValidationPolicy) withDefaults() ValidationPolicy {
	if p.MaxFileBytes <= 0 {
		p.MaxFileBytes = DefaultMaxFileBytes
	}
	if p.MaxResponseBytes <= 0 {
		p.MaxResponseBytes = DefaultMaxResponseBytes
	}
	if p.ProbeTimeout <= 0 {
		p.ProbeTimeout = DefaultProbeTimeout
	}
	if p.BlockedDomains == nil {
		p.BlockedDomains = map[string]bool{}
	}
	return p
}

// LoadBlockedDomains reads a JSON list of domain strings from path. A
// missing file yields an empty set; a malformed file is an error.
func LoadBlockedDomains(path string) (map[string]bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("security: read blocked domains: %w", err)
	}
	var domains []string
	if err := json.Unmarshal(data, &domains); err != nil {
		return nil, fmt.Errorf("security: parse blocked domains: %w", err)
	}
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		set[d] = true
	}
	return set, nil
}
