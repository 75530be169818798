// Command docmill converts documents to page images.
//
// Sources are local files or http/https URLs; each is validated, rendered
// (or served from the artifact cache), and written to the output directory
// as one image per page. Configuration comes from DOCMILL_-prefixed
// environment variables, with flags overriding per invocation.
//
// Usage:
//
//	docmill [flags] <source ...>
//	docmill -health
//	docmill -clear-cache
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/jonwraymond/docmill/cache"
	"github.com/jonwraymond/docmill/config"
	"github.com/jonwraymond/docmill/convert"
	"github.com/jonwraymond/docmill/health"
	"github.com/jonwraymond/docmill/observe"
	"github.com/jonwraymond/docmill/render"
	"github.com/jonwraymond/docmill/security"
	"github.com/jonwraymond/docmill/vault"
)

const version = "1.0.0"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		format     = flag.String("format", "", "output image format (png, jpeg)")
		quality    = flag.Int("quality", 0, "encoder quality 1-100")
		dpi        = flag.Int("dpi", 0, "target resolution")
		noOptimize = flag.Bool("no-optimize", false, "disable encoder-side size optimization")
		encrypt    = flag.Bool("encrypt", false, "seal output files with the installation key")
		noValidate = flag.Bool("no-validate", false, "skip security validation of sources")
		outputDir  = flag.String("output-dir", "", "output directory (overrides DOCMILL_OUTPUT_DIR)")
		checkOnly  = flag.Bool("health", false, "run pipeline self-checks and exit")
		clearCache = flag.Bool("clear-cache", false, "drop all cached artifacts and exit")
		showVer    = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Println("docmill", version)
		return 0
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observe.NewObserver(ctx, cfg.ObserveConfig(version))
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}
	defer obs.Shutdown(context.Background())
	logger := obs.Logger()

	store, err := newStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}

	if *clearCache {
		if err := store.Clear(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "docmill:", err)
			return 1
		}
		fmt.Println("cache cleared")
		return 0
	}

	if *checkOnly {
		return runHealth(ctx, cfg, store)
	}

	sources := flag.Args()
	if len(sources) == 0 {
		fmt.Fprintln(os.Stderr, "docmill: no sources given")
		flag.Usage()
		return 2
	}

	v, err := vault.Open(cfg.SecurityDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}
	policy, err := cfg.ValidationPolicy()
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}
	gate, err := security.NewGate(v, policy)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}

	metrics, err := observe.NewMetrics(obs.Meter())
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}

	converter, err := convert.New(cfg.ConverterConfig(), gate, store, render.NewTextRenderer(),
		convert.WithLogger(logger),
		convert.WithMetrics(metrics),
		convert.WithTracer(observe.NewTracer(obs.Tracer())),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}

	opts := cfg.ConvertOptions()
	if *format != "" {
		opts.Format = *format
	}
	if *quality > 0 {
		opts.Quality = *quality
	}
	if *dpi > 0 {
		opts.DPI = *dpi
	}
	opts.Optimize = !*noOptimize
	opts.Validate = !*noValidate
	opts.Encrypt = *encrypt

	results, err := converter.Convert(ctx, sources, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "docmill:", err)
		return 1
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %s: %v\n", res.Source, res.Err)
			continue
		}
		mark := " "
		if res.CacheHit {
			mark = "*"
		}
		fmt.Printf("OK%s  %s -> %d pages\n", mark, res.Source, len(res.Outputs))
	}

	fmt.Printf("%d/%d converted\n", len(results)-failed, len(results))
	if failed == len(results) {
		return 1
	}
	return 0
}

func newStore(cfg config.Config) (*cache.DiskStore, error) {
	var opts []cache.Option
	if cfg.CacheCompress {
		opts = append(opts, cache.WithCompression())
	}
	return cache.NewDiskStore(cfg.CacheDir, cfg.CachePolicy(), opts...)
}

func runHealth(ctx context.Context, cfg config.Config, store *cache.DiskStore) int {
	agg := health.NewAggregator()
	agg.Register(health.NewCacheChecker(store))
	agg.Register(health.NewVaultChecker(cfg.SecurityDir))
	agg.Register(health.NewOutputChecker(cfg.OutputDir))

	results := agg.CheckAll(ctx)

	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := results[name]
		fmt.Printf("%-8s %-10s %s\n", name, res.Status, res.Message)
	}

	if agg.OverallStatus(results) == health.StatusUnhealthy {
		return 1
	}
	return 0
}
