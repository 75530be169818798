package health

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonwraymond/docmill/cache"
	"github.com/jonwraymond/docmill/vault"
)

// CacheChecker reports on the artifact cache: directory reachability and
// eviction pressure.
type CacheChecker struct {
	store *cache.DiskStore
}

// NewCacheChecker creates a checker over the given store.
func NewCacheChecker(store *cache.DiskStore) *CacheChecker {
	return &CacheChecker{store: store}
}

// Name returns "cache".
func (c *CacheChecker) Name() string { return "cache" }

// Check verifies the cache directory exists and reports occupancy. A cache
// at or above its size ceiling is degraded: every write will trigger an
// eviction sweep.
func (c *CacheChecker) Check(_ context.Context) Result {
	if c.store == nil {
		return Unhealthy("no store configured", cache.ErrNilStore)
	}

	if fi, err := os.Stat(c.store.Dir()); err != nil || !fi.IsDir() {
		return Unhealthy(fmt.Sprintf("cache directory %s unreachable", c.store.Dir()), err)
	}

	stats := c.store.Stats()
	details := map[string]any{
		"entries":     stats.Entries,
		"total_bytes": stats.TotalBytes,
		"evictions":   stats.Evictions,
	}

	if max := c.store.Policy().MaxBytes; max > 0 && stats.TotalBytes >= max {
		return Degraded(fmt.Sprintf("cache at size ceiling (%d/%d bytes)", stats.TotalBytes, max)).
			WithDetails(details)
	}
	return Healthy(fmt.Sprintf("%d entries", stats.Entries)).WithDetails(details)
}

// VaultChecker reports on the encryption key file without creating one.
type VaultChecker struct {
	dir string
}

// NewVaultChecker creates a checker over the security directory.
func NewVaultChecker(dir string) *VaultChecker {
	return &VaultChecker{dir: dir}
}

// Name returns "vault".
func (c *VaultChecker) Name() string { return "vault" }

// Check inspects the key file. A missing key is degraded, not unhealthy: the
// vault provisions one on first use. A key that exists but does not decode
// to the expected length is unhealthy, since decryption of prior outputs is
// impossible.
func (c *VaultChecker) Check(_ context.Context) Result {
	path := filepath.Join(c.dir, vault.KeyFileName)

	encoded, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Degraded("encryption key not yet provisioned")
	}
	if err != nil {
		return Unhealthy("encryption key unreadable", err)
	}

	key, err := base64.URLEncoding.DecodeString(string(encoded))
	if err != nil || len(key) != vault.KeySize {
		return Unhealthy("encryption key corrupt", vault.ErrKeyCorrupt)
	}
	return Healthy("encryption key present")
}

// OutputChecker reports whether the output directory accepts writes.
type OutputChecker struct {
	dir string
}

// NewOutputChecker creates a checker over the output directory.
func NewOutputChecker(dir string) *OutputChecker {
	return &OutputChecker{dir: dir}
}

// Name returns "output".
func (c *OutputChecker) Name() string { return "output" }

// Check writes and removes a probe file in the output directory.
func (c *OutputChecker) Check(_ context.Context) Result {
	probe, err := os.CreateTemp(c.dir, ".healthprobe-*")
	if err != nil {
		return Unhealthy(fmt.Sprintf("output directory %s not writable", c.dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	return Healthy("output directory writable")
}

var (
	_ Checker = (*CacheChecker)(nil)
	_ Checker = (*VaultChecker)(nil)
	_ Checker = (*OutputChecker)(nil)
)
