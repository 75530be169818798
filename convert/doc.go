// Package convert drives the document-to-image conversion pipeline.
//
// A Converter composes a security gate, a disk-backed artifact cache, and a
// pluggable page renderer. Batches run on a bounded worker pool; each source
// is validated, rendered (or served from cache), and written to the output
// directory as one image file per page. Per-source failures are reported in
// the batch results and never abort the remaining sources.
package convert
