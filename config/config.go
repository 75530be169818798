package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jonwraymond/docmill/cache"
	"github.com/jonwraymond/docmill/convert"
	"github.com/jonwraymond/docmill/observe"
	"github.com/jonwraymond/docmill/security"
)

// Config is the full pipeline configuration.
type Config struct {
	// Directories. CacheDir and SecurityDir default to ~/.docmill/<name>.
	CacheDir    string `env:"DOCMILL_CACHE_DIR"`
	SecurityDir string `env:"DOCMILL_SECURITY_DIR"`
	OutputDir   string `env:"DOCMILL_OUTPUT_DIR" envDefault:"output"`

	// Cache policy.
	CacheTTL      time.Duration `env:"DOCMILL_CACHE_TTL"       envDefault:"1h"`
	CacheMaxBytes int64         `env:"DOCMILL_CACHE_MAX_BYTES" envDefault:"1073741824"`
	CacheCompress bool          `env:"DOCMILL_CACHE_COMPRESS"  envDefault:"false"`

	// Validation ceilings.
	MaxFileBytes     int64         `env:"DOCMILL_MAX_FILE_BYTES"     envDefault:"104857600"`
	MaxResponseBytes int64         `env:"DOCMILL_MAX_RESPONSE_BYTES" envDefault:"10485760"`
	ProbeTimeout     time.Duration `env:"DOCMILL_PROBE_TIMEOUT"      envDefault:"5s"`

	// Conversion defaults.
	Workers int    `env:"DOCMILL_WORKERS" envDefault:"0"`
	Format  string `env:"DOCMILL_FORMAT"  envDefault:"png"`
	Quality int    `env:"DOCMILL_QUALITY" envDefault:"95"`
	DPI     int    `env:"DOCMILL_DPI"     envDefault:"300"`

	// Telemetry.
	ServiceName     string  `env:"DOCMILL_SERVICE_NAME"     envDefault:"docmill"`
	LogLevel        string  `env:"DOCMILL_LOG_LEVEL"        envDefault:"info"`
	LogEnabled      bool    `env:"DOCMILL_LOG_ENABLED"      envDefault:"true"`
	TracingExporter string  `env:"DOCMILL_TRACING_EXPORTER" envDefault:"none"`
	TracingSample   float64 `env:"DOCMILL_TRACING_SAMPLE"   envDefault:"1.0"`
	MetricsExporter string  `env:"DOCMILL_METRICS_EXPORTER" envDefault:"none"`
}

// Load reads configuration from the environment and bootstraps the cache,
// security, and output directories.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}

	if cfg.CacheDir == "" || cfg.SecurityDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Config{}, fmt.Errorf("config: resolve home dir: %w", err)
		}
		if cfg.CacheDir == "" {
			cfg.CacheDir = filepath.Join(home, ".docmill", "cache")
		}
		if cfg.SecurityDir == "" {
			cfg.SecurityDir = filepath.Join(home, ".docmill", "security")
		}
	}

	for _, dir := range []string{cfg.CacheDir, cfg.SecurityDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Config{}, fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	return cfg, nil
}

// CachePolicy returns the cache policy derived from the configuration.
func (c Config) CachePolicy() cache.Policy {
	return cache.Policy{
		TTL:      c.CacheTTL,
		MaxBytes: c.CacheMaxBytes,
	}
}

// ValidationPolicy returns the security policy, including the blocked-domain
// set from the security directory.
func (c Config) ValidationPolicy() (security.ValidationPolicy, error) {
	p := security.DefaultValidationPolicy()
	p.MaxFileBytes = c.MaxFileBytes
	p.MaxResponseBytes = c.MaxResponseBytes
	p.ProbeTimeout = c.ProbeTimeout

	blocked, err := security.LoadBlockedDomains(filepath.Join(c.SecurityDir, security.BlockedDomainsFileName))
	if err != nil {
		return security.ValidationPolicy{}, err
	}
	p.BlockedDomains = blocked
	return p, nil
}

// ConverterConfig returns the converter configuration.
func (c Config) ConverterConfig() convert.Config {
	return convert.Config{
		OutputDir: c.OutputDir,
		Workers:   c.Workers,
	}
}

// ConvertOptions returns the default batch options from the configuration.
func (c Config) ConvertOptions() convert.Options {
	opts := convert.DefaultOptions()
	opts.Format = c.Format
	opts.Quality = c.Quality
	opts.DPI = c.DPI
	return opts
}

// ObserveConfig returns the telemetry configuration.
func (c Config) ObserveConfig(version string) observe.Config {
	return observe.Config{
		ServiceName: c.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   c.TracingExporter != "" && c.TracingExporter != "none",
			Exporter:  c.TracingExporter,
			SamplePct: c.TracingSample,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  c.MetricsExporter != "" && c.MetricsExporter != "none",
			Exporter: c.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: c.LogEnabled,
			Level:   c.LogLevel,
		},
	}
}
