// Package health provides self-checks for the conversion pipeline.
//
// A Checker reports the state of one pipeline component: the artifact cache,
// the key vault, or the output directory. An Aggregator runs registered
// checks and reduces them to an overall status, so an operator can verify an
// installation before submitting a batch:
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewCacheChecker(store))
//	agg.Register(health.NewVaultChecker(securityDir))
//	agg.Register(health.NewOutputChecker(outputDir))
//
//	results := agg.CheckAll(ctx)
//	if agg.OverallStatus(results) == health.StatusUnhealthy {
//	    // refuse the batch
//	}
//
// Degraded means the pipeline still works but with reduced behavior, for
// example a cache at its size ceiling that will evict on every write.
package health
