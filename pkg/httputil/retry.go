package httputil

import (
	"context"
	"errors"
	"time"

	errs "github.com/matzehuels/archlog/pkg/errors"
	"github.com/matzehuels/archlog/pkg/observability"
)

// Defaults for [Policy].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultMaxWaits = 3
	DefaultMaxWait  = 15 * time.Minute

	// fallbackRateWait is used when a forge signals a limit without saying
	// when it resets.
	fallbackRateWait = time.Minute
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses) with this type
// so that [Policy.Do] attempts the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy is the single retry wrapper shared by every forge adapter.
//
// fn errors are classified as:
//   - [RetryableError]: retried with exponential backoff starting at Delay,
//     at most Attempts calls in total, then NETWORK_ERROR
//   - [errs.RateLimitedError]: sleep until the reset time. Waits do not
//     consume attempts but are bounded by MaxWaits and MaxWait, then RATE_LIMITED
//   - anything else: returned unchanged
//
// A Policy is safe for concurrent use; all mutable state lives in Gate.
type Policy struct {
	Attempts int
	Delay    time.Duration
	MaxWaits int
	MaxWait  time.Duration

	// Gate, when set, is consulted before every call and updated on every
	// rate-limit response.
	Gate *HostGate

	// Sleep and Now are replaced in tests.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// NewPolicy returns a Policy with default limits sharing gate.
func NewPolicy(gate *HostGate) *Policy {
	return &Policy{
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
		MaxWaits: DefaultMaxWaits,
		MaxWait:  DefaultMaxWait,
		Gate:     gate,
	}
}

// Do calls fn until it succeeds, fails permanently, or a limit is reached.
// host keys the rate-limit gate; it may be empty.
func (p *Policy) Do(ctx context.Context, host string, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}
	maxWaits := p.MaxWaits
	if maxWaits <= 0 {
		maxWaits = DefaultMaxWaits
	}

	tries, waits := 0, 0
	for {
		if err := p.waitGate(ctx, host); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		var rl *errs.RateLimitedError
		switch {
		case errors.As(err, &rl):
			wait := p.untilReset(rl.ResetAt)
			if waits >= maxWaits || wait > p.maxWait() {
				return errs.Wrap(errs.ErrCodeRateLimited, err, "%s still rate limited after %d waits", host, waits)
			}
			waits++
			if p.Gate != nil {
				p.Gate.Block(host, p.now().Add(wait))
			}
			observability.HTTP().OnRateLimited(ctx, host, wait)
			if err := p.sleep(ctx, wait); err != nil {
				return err
			}

		case IsRetryable(err):
			tries++
			if tries >= attempts {
				return errs.Wrap(errs.ErrCodeNetwork, err, "giving up after %d attempts", tries)
			}
			if err := p.sleep(ctx, delay); err != nil {
				return err
			}
			delay *= 2

		default:
			return err
		}
	}
}

// waitGate sleeps while host is blocked by an earlier rate-limit response.
func (p *Policy) waitGate(ctx context.Context, host string) error {
	if p.Gate == nil || host == "" {
		return nil
	}
	until, ok := p.Gate.BlockedUntil(host, p.now())
	if !ok {
		return nil
	}
	wait := until.Sub(p.now())
	if wait > p.maxWait() {
		return errs.New(errs.ErrCodeRateLimited, "%s rate limited until %s", host, until.Format(time.RFC3339))
	}
	return p.sleep(ctx, wait)
}

func (p *Policy) untilReset(reset time.Time) time.Duration {
	if reset.IsZero() {
		return fallbackRateWait
	}
	// One extra second absorbs clock skew between us and the forge.
	return max(reset.Sub(p.now())+time.Second, time.Second)
}

func (p *Policy) maxWait() time.Duration {
	if p.MaxWait <= 0 {
		return DefaultMaxWait
	}
	return p.MaxWait
}

func (p *Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry executes fn up to attempts times with exponential backoff and no
// rate-limit handling. It is a shorthand for a gate-less [Policy].
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	p := &Policy{Attempts: attempts, Delay: delay}
	return p.Do(ctx, "", fn)
}
