package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// setTestDirs points all directories at t.TempDir so Load never touches the
// real home directory.
func setTestDirs(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	t.Setenv("DOCMILL_CACHE_DIR", filepath.Join(root, "cache"))
	t.Setenv("DOCMILL_SECURITY_DIR", filepath.Join(root, "security"))
	t.Setenv("DOCMILL_OUTPUT_DIR", filepath.Join(root, "out"))
	return root
}

// TestLoad_Defaults verifies the zero-configuration defaults.
func TestLoad_Defaults(t *testing.T) {
	setTestDirs(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.CacheTTL != time.Hour {
		t.Errorf("expected cache TTL 1h, got %v", cfg.CacheTTL)
	}
	if cfg.CacheMaxBytes != 1<<30 {
		t.Errorf("expected cache ceiling 1GiB, got %d", cfg.CacheMaxBytes)
	}
	if cfg.MaxFileBytes != 100<<20 {
		t.Errorf("expected file ceiling 100MiB, got %d", cfg.MaxFileBytes)
	}
	if cfg.MaxResponseBytes != 10<<20 {
		t.Errorf("expected response ceiling 10MiB, got %d", cfg.MaxResponseBytes)
	}
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("expected probe timeout 5s, got %v", cfg.ProbeTimeout)
	}
	if cfg.Format != "png" || cfg.Quality != 95 || cfg.DPI != 300 {
		t.Errorf("unexpected conversion defaults: %+v", cfg)
	}
	if cfg.LogLevel != "info" || !cfg.LogEnabled {
		t.Errorf("unexpected logging defaults: %+v", cfg)
	}
}

// TestLoad_CreatesDirectories verifies directory bootstrap.
func TestLoad_CreatesDirectories(t *testing.T) {
	root := setTestDirs(t)

	if _, err := Load(); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	for _, dir := range []string{"cache", "security", "out"} {
		if fi, err := os.Stat(filepath.Join(root, dir)); err != nil || !fi.IsDir() {
			t.Errorf("expected directory %s to exist, err: %v", dir, err)
		}
	}
}

// TestLoad_EnvOverrides verifies environment variables win over defaults.
func TestLoad_EnvOverrides(t *testing.T) {
	setTestDirs(t)
	t.Setenv("DOCMILL_CACHE_TTL", "30m")
	t.Setenv("DOCMILL_WORKERS", "8")
	t.Setenv("DOCMILL_FORMAT", "jpeg")
	t.Setenv("DOCMILL_TRACING_EXPORTER", "stdout")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.CacheTTL != 30*time.Minute {
		t.Errorf("expected cache TTL 30m, got %v", cfg.CacheTTL)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.Workers)
	}
	if cfg.Format != "jpeg" {
		t.Errorf("expected format jpeg, got %q", cfg.Format)
	}
	if cfg.TracingExporter != "stdout" {
		t.Errorf("expected tracing exporter stdout, got %q", cfg.TracingExporter)
	}
}

// TestLoad_MalformedValue verifies unparsable settings fail loudly.
func TestLoad_MalformedValue(t *testing.T) {
	setTestDirs(t)
	t.Setenv("DOCMILL_CACHE_TTL", "not-a-duration")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

// TestConfig_CachePolicy verifies the cache policy mapping.
func TestConfig_CachePolicy(t *testing.T) {
	cfg := Config{CacheTTL: 2 * time.Hour, CacheMaxBytes: 4096}

	p := cfg.CachePolicy()
	if p.TTL != 2*time.Hour || p.MaxBytes != 4096 {
		t.Errorf("unexpected policy: %+v", p)
	}
}

// TestConfig_ValidationPolicy verifies ceilings and blocked domains flow in.
func TestConfig_ValidationPolicy(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "blocked_domains.json")
	if err := os.WriteFile(blocked, []byte(`["evil.example"]`), 0o644); err != nil {
		t.Fatalf("failed to write blocklist: %v", err)
	}

	cfg := Config{
		SecurityDir:      dir,
		MaxFileBytes:     1024,
		MaxResponseBytes: 512,
		ProbeTimeout:     time.Second,
	}

	p, err := cfg.ValidationPolicy()
	if err != nil {
		t.Fatalf("validation policy failed: %v", err)
	}
	if p.MaxFileBytes != 1024 || p.MaxResponseBytes != 512 {
		t.Errorf("unexpected ceilings: %+v", p)
	}
	if !p.BlockedDomains["evil.example"] {
		t.Error("expected evil.example in blocked domains")
	}
	if !p.AllowedTypes["application/pdf"] {
		t.Error("expected default allow-list to survive")
	}
}

// TestConfig_ObserveConfig verifies none/empty exporters disable subsystems.
func TestConfig_ObserveConfig(t *testing.T) {
	cfg := Config{
		ServiceName:     "docmill",
		LogEnabled:      true,
		LogLevel:        "debug",
		TracingExporter: "none",
		MetricsExporter: "stdout",
		TracingSample:   0.5,
	}

	oc := cfg.ObserveConfig("1.2.3")
	if oc.Tracing.Enabled {
		t.Error("tracing should be disabled for exporter 'none'")
	}
	if !oc.Metrics.Enabled {
		t.Error("metrics should be enabled for exporter 'stdout'")
	}
	if oc.Version != "1.2.3" || oc.Logging.Level != "debug" {
		t.Errorf("unexpected observe config: %+v", oc)
	}
}
