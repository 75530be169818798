package convert

import "errors"

var (
	// ErrNilRenderer indicates a Converter was constructed without a renderer.
	ErrNilRenderer = errors.New("convert: renderer is nil")

	// ErrNilGate indicates a Converter was constructed without a security gate.
	ErrNilGate = errors.New("convert: security gate is nil")

	// ErrUnsupportedFormat indicates an output image format outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("convert: unsupported output format")

	// ErrInvalidQuality indicates a quality value outside 1-100.
	ErrInvalidQuality = errors.New("convert: quality must be between 1 and 100")

	// ErrInvalidDPI indicates a non-positive target resolution.
	ErrInvalidDPI = errors.New("convert: dpi must be positive")

	// ErrNoPages indicates the renderer produced no pages for a document.
	ErrNoPages = errors.New("convert: renderer produced no pages")

	// ErrCorruptBundle indicates a cached page bundle could not be decoded.
	ErrCorruptBundle = errors.New("convert: corrupt page bundle")
)
