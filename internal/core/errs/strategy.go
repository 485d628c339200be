package errs

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
)

// RecoveryStrategy is a corrective action attempted automatically for an
// error kind before the error is surfaced or reported. A nil return means
// the recovery succeeded and the error is suppressed; an error means it
// failed and the pipeline falls through to visibility and reporting.
type RecoveryStrategy interface {
	Recover(ctx context.Context, err error) error
}

// StrategyFunc adapts a plain function to RecoveryStrategy.
type StrategyFunc func(ctx context.Context, err error) error

func (f StrategyFunc) Recover(ctx context.Context, err error) error {
	return f(ctx, err)
}

// BackoffStrategy retries a corrective operation with capped exponential
// backoff. Typical use is a network-kind strategy that re-dials or re-issues
// a probe before the error reaches the user.
type BackoffStrategy struct {
	// Base is the initial backoff. Defaults to 100ms.
	Base time.Duration

	// Cap bounds the per-attempt backoff. Defaults to 2s.
	Cap time.Duration

	// Retries is the maximum number of retries after the first attempt.
	// Defaults to 3.
	Retries uint64

	// Op is the corrective operation. It receives the original error.
	Op func(ctx context.Context, err error) error
}

func (s *BackoffStrategy) Recover(ctx context.Context, cause error) error {
	base := s.Base
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	ceiling := s.Cap
	if ceiling <= 0 {
		ceiling = 2 * time.Second
	}
	retries := s.Retries
	if retries == 0 {
		retries = 3
	}

	b := retry.NewExponential(base)
	b = retry.WithCappedDuration(ceiling, b)
	b = retry.WithMaxRetries(retries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := s.Op(ctx, cause); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}
