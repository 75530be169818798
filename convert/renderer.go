package convert

import (
	"context"
	"fmt"
)

// RenderSpec describes how a document should be rasterized.
type RenderSpec struct {
	// Format is the output image format: png, jpeg, webp, or tiff.
	Format string

	// Quality is the encoder quality from 1 to 100.
	Quality int

	// DPI is the target raster resolution.
	DPI int

	// Optimize requests encoder-side size optimization.
	Optimize bool
}

// Supported output formats.
var supportedFormats = map[string]bool{
	"png":  true,
	"jpeg": true,
	"webp": true,
	"tiff": true,
}

// Validate checks the format against the supported set and the value ranges.
func (s RenderSpec) Validate() error {
	if !supportedFormats[s.Format] {
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, s.Format)
	}
	if s.Quality < 1 || s.Quality > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidQuality, s.Quality)
	}
	if s.DPI <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidDPI, s.DPI)
	}
	return nil
}

// Renderer rasterizes a document into per-page image bytes.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: Render must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: a document with no renderable pages must return an error, not an empty slice.
type Renderer interface {
	// Render converts the document at path into one encoded image per page,
	// in page order.
	Render(ctx context.Context, path string, spec RenderSpec) ([][]byte, error)
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(ctx context.Context, path string, spec RenderSpec) ([][]byte, error)

// Render implements Renderer.
func (f RendererFunc) Render(ctx context.Context, path string, spec RenderSpec) ([][]byte, error) {
	return f(ctx, path, spec)
}

var _ Renderer = (RendererFunc)(nil)
