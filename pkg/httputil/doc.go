// Package httputil provides the retry and rate-limit machinery shared by all
// forge adapters.
//
// # Policy
//
// [Policy.Do] is the one place where transient failures are retried. Callers
// classify their errors:
//
//   - wrap transient failures (connection reset, 5xx) with [Retryable]
//   - return an [errors.RateLimitedError] when the forge says the quota is
//     exhausted; [ParseRateLimit] extracts the reset time from response headers
//   - return anything else to fail immediately
//
// Backoff doubles from 1 second over 3 attempts by default. Rate-limit sleeps
// are counted separately (3 waits, at most 15 minutes each) so that a long
// reset window does not eat the retry budget.
//
// # HostGate
//
// A [HostGate] shared by all policies of a run records per-host reset times.
// Once any worker sees a limit, the others wait before calling the same host.
//
//	gate := httputil.NewHostGate()
//	policy := httputil.NewPolicy(gate)
//	err := policy.Do(ctx, "api.github.com", func() error {
//	    return fetchTags(ctx)
//	})
//
// [errors.RateLimitedError]: github.com/matzehuels/archlog/pkg/errors.RateLimitedError
package httputil
