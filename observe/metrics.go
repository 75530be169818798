package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records pipeline metrics: conversion outcomes and cache behavior.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordConversion records one conversion job with duration and error status.
	RecordConversion(ctx context.Context, meta JobMeta, duration time.Duration, err error)

	// RecordCacheLookup records one artifact cache lookup.
	RecordCacheLookup(ctx context.Context, hit bool)

	// RecordCacheUsage records the cache's current entry count and byte total.
	RecordCacheUsage(ctx context.Context, entries int, totalBytes int64)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	cacheHits    metric.Int64Counter
	cacheMisses  metric.Int64Counter
	cacheEntries metric.Int64Gauge
	cacheBytes   metric.Int64Gauge
}

// NewMetrics creates a Metrics instance with the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"convert.jobs.total",
		metric.WithDescription("Total number of conversion jobs"),
		metric.WithUnit("{job}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"convert.jobs.errors",
		metric.WithDescription("Total number of failed conversion jobs"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"convert.jobs.duration_ms",
		metric.WithDescription("Conversion job duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	cacheHits, err := meter.Int64Counter(
		"cache.lookups.hits",
		metric.WithDescription("Artifact cache lookups served from disk"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheMisses, err := meter.Int64Counter(
		"cache.lookups.misses",
		metric.WithDescription("Artifact cache lookups that required a render"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}

	cacheEntries, err := meter.Int64Gauge(
		"cache.entries",
		metric.WithDescription("Current number of cached artifacts"),
		metric.WithUnit("{entry}"),
	)
	if err != nil {
		return nil, err
	}

	cacheBytes, err := meter.Int64Gauge(
		"cache.bytes",
		metric.WithDescription("Current aggregate size of cached artifacts"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		cacheHits:    cacheHits,
		cacheMisses:  cacheMisses,
		cacheEntries: cacheEntries,
		cacheBytes:   cacheBytes,
	}, nil
}

// RecordConversion records metrics for one conversion job.
func (m *metricsImpl) RecordConversion(ctx context.Context, meta JobMeta, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("job.format", meta.Format),
	}
	if meta.SourceKind != "" {
		attrs = append(attrs, attribute.String("job.source_kind", meta.SourceKind))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordCacheLookup increments the hit or miss counter.
func (m *metricsImpl) RecordCacheLookup(ctx context.Context, hit bool) {
	if hit {
		m.cacheHits.Add(ctx, 1)
	} else {
		m.cacheMisses.Add(ctx, 1)
	}
}

// RecordCacheUsage records the cache's current occupancy.
func (m *metricsImpl) RecordCacheUsage(ctx context.Context, entries int, totalBytes int64) {
	m.cacheEntries.Record(ctx, int64(entries))
	m.cacheBytes.Record(ctx, totalBytes)
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (noopMetrics) RecordConversion(ctx context.Context, meta JobMeta, duration time.Duration, err error) {
}
func (noopMetrics) RecordCacheLookup(ctx context.Context, hit bool)                        {}
func (noopMetrics) RecordCacheUsage(ctx context.Context, entries int, totalBytes int64)    {}

// NoopMetrics returns a Metrics that discards everything.
func NoopMetrics() Metrics {
	return noopMetrics{}
}
