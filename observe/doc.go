// Package observe provides observability primitives for the conversion
// pipeline.
//
// It is a pure instrumentation library: no rendering, no caching, no I/O
// beyond exporter setup. Consumers wire the observer into the pipeline
// driver or their own batch loop.
package observe
