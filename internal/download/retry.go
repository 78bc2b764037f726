package download

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/handiism/shelfsync/internal/abs"
)

// DefaultRetryBase is the first backoff delay; each further retry doubles it.
const DefaultRetryBase = time.Second

// RetryPolicy decides how often and how long to wait before repeating a
// failed operation.
//
// An operation is tried once plus up to MaxRetries more times. After failed
// attempt n (counting from zero) the policy waits Backoff(n). Errors that
// retrying cannot fix, permanent HTTP statuses and context cancellation,
// end the loop immediately.
//
// Example:
//
//	policy := RetryPolicy{MaxRetries: 3, Backoff: ExponentialBackoff(time.Second)}
//	res := policy.Do(ctx, func(ctx context.Context) error {
//	    return client.DownloadItemArchive(ctx, id, path, nil)
//	})
//	// res.Attempts is between 1 and 4
type RetryPolicy struct {
	MaxRetries int
	Backoff    func(attempt int) time.Duration

	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// OnRetry, when set, runs before each backoff with the failed attempt's
	// number (counting from one) and error. It never runs after the last
	// attempt.
	OnRetry func(attempt int, err error)
}

// Result is the outcome of RetryPolicy.Do.
type Result struct {
	// Attempts is the number of times the operation ran.
	Attempts int

	// Err is the last error, nil on success.
	Err error
}

// OK reports whether the operation eventually succeeded.
func (r Result) OK() bool {
	return r.Err == nil
}

// ExponentialBackoff returns base * 2^attempt.
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(float64(base) * math.Pow(2, float64(attempt)))
	}
}

// Do runs op until it succeeds, fails permanently or the retries run out.
func (p RetryPolicy) Do(ctx context.Context, op func(context.Context) error) Result {
	backoff := p.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff(DefaultRetryBase)
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var res Result
	for attempt := 0; attempt <= max(p.MaxRetries, 0); attempt++ {
		if err := ctx.Err(); err != nil {
			if res.Err == nil {
				res.Err = err
			}
			return res
		}

		res.Attempts++
		res.Err = op(ctx)
		if res.Err == nil || !retryable(ctx, res.Err) {
			return res
		}

		if attempt < p.MaxRetries {
			if p.OnRetry != nil {
				p.OnRetry(res.Attempts, res.Err)
			}
			if err := sleep(ctx, backoff(attempt)); err != nil {
				return res
			}
		}
	}
	return res
}

func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !abs.IsPermanent(err)
}

// sleepContext waits for d unless ctx ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
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
