package convert

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/docmill/cache"
	"github.com/jonwraymond/docmill/observe"
	"github.com/jonwraymond/docmill/resilience"
	"github.com/jonwraymond/docmill/security"
)

// Options controls how one batch is converted.
type Options struct {
	// Format is the output image format. Defaults to png.
	Format string

	// Quality is the encoder quality from 1 to 100. Defaults to 95.
	Quality int

	// DPI is the target raster resolution. Defaults to 300.
	DPI int

	// Optimize requests encoder-side size optimization.
	Optimize bool

	// Encrypt seals each output file with the installation key.
	Encrypt bool

	// Validate runs every source through the security gate before rendering.
	Validate bool
}

// DefaultOptions returns the standard conversion options: png output at
// quality 95 and 300 DPI, with optimization and validation enabled.
func DefaultOptions() Options {
	return Options{
		Format:   "png",
		Quality:  95,
		DPI:      300,
		Optimize: true,
		Validate: true,
	}
}

// withDefaults fills zero fields and folds the jpg shorthand into jpeg.
// Optimize, Encrypt, and Validate are taken as given; callers wanting the
// standard switches start from DefaultOptions.
func (o Options) withDefaults() Options {
	switch o.Format {
	case "":
		o.Format = "png"
	case "jpg":
		o.Format = "jpeg"
	}
	if o.Quality == 0 {
		o.Quality = 95
	}
	if o.DPI == 0 {
		o.DPI = 300
	}
	return o
}

// Config holds converter configuration.
type Config struct {
	// OutputDir receives the converted page images. Created if absent.
	OutputDir string

	// Workers bounds the number of sources converted concurrently.
	// Defaults to the number of CPUs.
	Workers int
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	return c
}

// FileResult reports the outcome for one source in a batch.
type FileResult struct {
	// Source is the input path or URL as submitted.
	Source string

	// Outputs lists the written page image paths, in page order.
	Outputs []string

	// CacheHit reports whether the rendered pages came from the cache.
	CacheHit bool

	// Err is the failure for this source, nil on success.
	Err error
}

// Converter drives batch document-to-image conversion.
//
// Contract:
// - Concurrency: safe for concurrent use; one batch runs on a bounded pool.
// - Context: Convert honors cancellation between sources; in-flight cache
//   operations run to completion.
// - Errors: per-source failures land in FileResult.Err and do not abort the
//   batch.
type Converter struct {
	cfg      Config
	gate     *security.Gate
	store    cache.Store
	mw       *cache.Middleware
	renderer Renderer
	retry    *resilience.Retry

	logger  observe.Logger
	metrics observe.Metrics
	tracer  observe.Tracer
}

// ConverterOption configures a Converter.
type ConverterOption func(*Converter)

// WithLogger installs a structured logger. Defaults to a no-op logger.
func WithLogger(l observe.Logger) ConverterOption {
	return func(c *Converter) { c.logger = l }
}

// WithMetrics installs pipeline metrics. Defaults to no-op metrics.
func WithMetrics(m observe.Metrics) ConverterOption {
	return func(c *Converter) { c.metrics = m }
}

// WithTracer installs a job tracer. Defaults to a no-op tracer.
func WithTracer(t observe.Tracer) ConverterOption {
	return func(c *Converter) { c.tracer = t }
}

// New creates a Converter over the given gate, artifact store, and renderer.
// The output directory is created if it does not exist.
func New(cfg Config, gate *security.Gate, store cache.Store, r Renderer, opts ...ConverterOption) (*Converter, error) {
	if gate == nil {
		return nil, ErrNilGate
	}
	if r == nil {
		return nil, ErrNilRenderer
	}
	if store == nil {
		return nil, cache.ErrNilStore
	}

	cfg = cfg.withDefaults()
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("convert: create output dir: %w", err)
	}

	c := &Converter{
		cfg:      cfg,
		gate:     gate,
		store:    store,
		mw:       cache.NewMiddleware(store, nil),
		renderer: r,
		retry: resilience.NewRetry(resilience.RetryConfig{
			MaxAttempts:  3,
			InitialDelay: 200 * time.Millisecond,
			Jitter:       true,
			RetryIf:      isTransientFetch,
		}),
		logger:   observe.NoopLogger(),
		metrics:  observe.NoopMetrics(),
		tracer:   observe.NewNoopTracer(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// OutputDir returns the directory converted images are written to.
func (c *Converter) OutputDir() string {
	return c.cfg.OutputDir
}

// Convert processes sources (file paths or http/https URLs) into page images.
// Results are returned in source order, one per input. The returned error is
// non-nil only when the batch is cut short by context cancellation.
func (c *Converter) Convert(ctx context.Context, sources []string, opts Options) ([]FileResult, error) {
	opts = opts.withDefaults()
	spec := RenderSpec{
		Format:   opts.Format,
		Quality:  opts.Quality,
		DPI:      opts.DPI,
		Optimize: opts.Optimize,
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	results := make([]FileResult, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Workers)

	for i, source := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = FileResult{Source: source, Err: err}
				return err
			}
			results[i] = c.convertOne(gctx, source, spec, opts)
			return nil
		})
	}

	err := g.Wait()

	if s, ok := c.store.(interface{ Stats() cache.Stats }); ok {
		st := s.Stats()
		c.metrics.RecordCacheUsage(ctx, st.Entries, st.TotalBytes)
	}
	return results, err
}

// convertOne runs the full pipeline for a single source: gate, cache-first
// render, output write.
func (c *Converter) convertOne(ctx context.Context, source string, spec RenderSpec, opts Options) (res FileResult) {
	res.Source = source

	meta := observe.JobMeta{
		Source:     source,
		SourceKind: sourceKind(source),
		Format:     spec.Format,
		DPI:        spec.DPI,
	}
	logger := c.logger.WithJob(meta)

	ctx, span := c.tracer.StartSpan(ctx, meta)
	start := time.Now()
	defer func() {
		c.tracer.EndSpan(span, res.Err)
		c.metrics.RecordConversion(ctx, meta, time.Since(start), res.Err)
	}()

	local, cleanup, err := c.stage(ctx, source, meta.SourceKind, opts)
	if err != nil {
		logger.Warn(ctx, "source rejected", observe.Field{Key: "reason", Value: err.Error()})
		res.Err = err
		return res
	}
	defer cleanup()

	key := fmt.Sprintf("%s:%s:%d:%d:%t", source, spec.Format, spec.Quality, spec.DPI, spec.Optimize)
	bundle, hit, err := c.mw.Do(ctx, key, func(ctx context.Context) ([]byte, error) {
		pages, err := c.renderer.Render(ctx, local, spec)
		if err != nil {
			return nil, err
		}
		if len(pages) == 0 {
			return nil, ErrNoPages
		}
		return encodeBundle(pages), nil
	})
	c.metrics.RecordCacheLookup(ctx, hit)
	if err != nil {
		logger.Error(ctx, "render failed", observe.Field{Key: "error", Value: err.Error()})
		res.Err = fmt.Errorf("convert: render %s: %w", source, err)
		return res
	}
	res.CacheHit = hit

	pages, err := decodeBundle(bundle)
	if err != nil {
		// A corrupt cached bundle is dropped so the next attempt re-renders.
		_ = c.store.Invalidate(ctx, key)
		res.Err = err
		return res
	}

	outputs, err := c.writePages(source, pages, spec.Format, opts.Encrypt)
	if err != nil {
		logger.Error(ctx, "write failed", observe.Field{Key: "error", Value: err.Error()})
		res.Err = err
		return res
	}
	res.Outputs = outputs

	logger.Info(ctx, "converted",
		observe.Field{Key: "pages", Value: len(outputs)},
		observe.Field{Key: "cache_hit", Value: hit},
	)
	return res
}

// stage makes the source available as a local file. URLs are gated and
// fetched into a temporary file that cleanup removes; local paths are gated
// in place.
func (c *Converter) stage(ctx context.Context, source, kind string, opts Options) (string, func(), error) {
	noop := func() {}

	if kind != "url" {
		if opts.Validate {
			if err := c.gate.ValidateFile(source); err != nil {
				return "", noop, err
			}
		}
		return source, noop, nil
	}

	if opts.Validate {
		if err := c.gate.ValidateURL(ctx, source); err != nil {
			return "", noop, err
		}
	}
	var data []byte
	err := c.retry.Execute(ctx, func(ctx context.Context) error {
		var ferr error
		data, ferr = c.gate.FetchURL(ctx, source)
		return ferr
	})
	if err != nil {
		return "", noop, err
	}

	f, err := os.CreateTemp("", "docmill-*"+sourceExt(source))
	if err != nil {
		return "", noop, fmt.Errorf("convert: stage %s: %w", source, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", noop, fmt.Errorf("convert: stage %s: %w", source, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", noop, fmt.Errorf("convert: stage %s: %w", source, err)
	}
	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// writePages writes one image file per page: <stem>_NNN.<format>, optionally
// sealed with the installation key.
func (c *Converter) writePages(source string, pages [][]byte, format string, encrypt bool) ([]string, error) {
	stem := sourceStem(source)
	outputs := make([]string, 0, len(pages))

	for i, page := range pages {
		data := page
		if encrypt {
			sealed, err := c.gate.Encrypt(page)
			if err != nil {
				return nil, fmt.Errorf("convert: encrypt page %d of %s: %w", i+1, source, err)
			}
			data = sealed
		}

		name := fmt.Sprintf("%s_%03d.%s", stem, i+1, format)
		out := filepath.Join(c.cfg.OutputDir, name)
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return nil, fmt.Errorf("convert: write %s: %w", out, err)
		}
		outputs = append(outputs, out)
	}
	return outputs, nil
}

// isTransientFetch reports whether a fetch failure is worth retrying.
// Policy rejections (size ceiling, blocked domain) are final.
func isTransientFetch(err error) bool {
	return errors.Is(err, security.ErrProbeFailed) || errors.Is(err, security.ErrUnreadable)
}

// sourceKind classifies a source as a local file or a remote URL. Anything
// carrying a scheme is routed through the gate's URL path so that disallowed
// schemes are rejected there.
func sourceKind(source string) string {
	if strings.Contains(source, "://") {
		return "url"
	}
	return "file"
}

// sourceStem derives the output filename stem from a path or URL.
func sourceStem(source string) string {
	base := filepath.Base(source)
	if sourceKind(source) == "url" {
		if u, err := url.Parse(source); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
			base = path.Base(u.Path)
		} else {
			base = "document"
		}
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = "document"
	}
	return stem
}

// sourceExt returns the extension of a source, best-effort for URLs.
func sourceExt(source string) string {
	if sourceKind(source) == "url" {
		if u, err := url.Parse(source); err == nil {
			return path.Ext(u.Path)
		}
		return ""
	}
	return filepath.Ext(source)
}
