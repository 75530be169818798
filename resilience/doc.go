// Package resilience provides retry with backoff for remote document fetches.
//
// The URL path of the pipeline talks to servers the operator does not
// control; transient faults there should not fail a batch source outright.
// Retry wraps an operation with bounded attempts and configurable backoff:
//
//	retry := resilience.NewRetry(resilience.RetryConfig{
//	    MaxAttempts:  3,
//	    InitialDelay: 200 * time.Millisecond,
//	})
//
//	err := retry.Execute(ctx, func(ctx context.Context) error {
//	    return fetchDocument(ctx, url)
//	})
//
// RetryIf decides which errors are worth another attempt; policy rejections
// (blocked domain, oversized response) should never be retried.
package resilience
