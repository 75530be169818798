package health

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/docmill/cache"
	"github.com/jonwraymond/docmill/vault"
)

// TestCacheChecker_Healthy verifies a reachable, roomy cache is healthy.
func TestCacheChecker_Healthy(t *testing.T) {
	store, err := cache.NewDiskStore(t.TempDir(), cache.Policy{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	res := NewCacheChecker(store).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("expected healthy, got %v (%s)", res.Status, res.Message)
	}
	if res.Details["entries"] != 0 {
		t.Errorf("expected 0 entries detail, got %v", res.Details["entries"])
	}
}

// TestCacheChecker_DegradedAtCeiling verifies eviction pressure is reported.
func TestCacheChecker_DegradedAtCeiling(t *testing.T) {
	store, err := cache.NewDiskStore(t.TempDir(), cache.Policy{MaxBytes: 10})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := store.Set(context.Background(), "artifact", []byte("0123456789"), nil); err != nil {
		t.Fatalf("failed to fill store: %v", err)
	}

	res := NewCacheChecker(store).Check(context.Background())
	if res.Status != StatusDegraded {
		t.Errorf("expected degraded at ceiling, got %v (%s)", res.Status, res.Message)
	}
}

// TestCacheChecker_MissingDir verifies a removed cache directory is unhealthy.
func TestCacheChecker_MissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	store, err := cache.NewDiskStore(dir, cache.Policy{})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		t.Fatalf("failed to remove dir: %v", err)
	}

	res := NewCacheChecker(store).Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy for missing dir, got %v", res.Status)
	}
}

// TestCacheChecker_NilStore verifies the nil guard.
func TestCacheChecker_NilStore(t *testing.T) {
	res := NewCacheChecker(nil).Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy for nil store, got %v", res.Status)
	}
}

// TestVaultChecker_NotProvisioned verifies a missing key is only degraded.
func TestVaultChecker_NotProvisioned(t *testing.T) {
	res := NewVaultChecker(t.TempDir()).Check(context.Background())
	if res.Status != StatusDegraded {
		t.Errorf("expected degraded before provisioning, got %v", res.Status)
	}
}

// TestVaultChecker_Provisioned verifies a created key reports healthy.
func TestVaultChecker_Provisioned(t *testing.T) {
	dir := t.TempDir()
	if _, err := vault.Open(dir); err != nil {
		t.Fatalf("failed to open vault: %v", err)
	}

	res := NewVaultChecker(dir).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("expected healthy after provisioning, got %v (%s)", res.Status, res.Message)
	}
}

// TestVaultChecker_Corrupt verifies an undecodable key is unhealthy.
func TestVaultChecker_Corrupt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, vault.KeyFileName)
	if err := os.WriteFile(path, []byte("not base64!!"), 0o600); err != nil {
		t.Fatalf("failed to write corrupt key: %v", err)
	}

	res := NewVaultChecker(dir).Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy for corrupt key, got %v", res.Status)
	}
}

// TestOutputChecker_Writable verifies a writable output dir reports healthy.
func TestOutputChecker_Writable(t *testing.T) {
	dir := t.TempDir()

	res := NewOutputChecker(dir).Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("expected healthy, got %v", res.Status)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected probe file cleaned up, found %d entries", len(entries))
	}
}

// TestOutputChecker_MissingDir verifies a nonexistent output dir is unhealthy.
func TestOutputChecker_MissingDir(t *testing.T) {
	res := NewOutputChecker(filepath.Join(t.TempDir(), "gone")).Check(context.Background())
	if res.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy, got %v", res.Status)
	}
}
