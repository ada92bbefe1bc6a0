package workflow

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"

	"github.com/ledgerload/ledgerload/internal/common/ledgererrors"
)

// PollPolicy bounds how long a workflow waits for a created resource to show up in list results.
// The delay doubles after every miss and is capped at MaxDelay.
type PollPolicy struct {
	MaxAttempts uint          `mapstructure:"maxAttempts" yaml:"maxAttempts" validate:"min=1"`
	Delay       time.Duration `mapstructure:"delay" yaml:"delay" validate:"gt=0"`
	MaxDelay    time.Duration `mapstructure:"maxDelay" yaml:"maxDelay" validate:"gtefield=Delay"`
}

func DefaultPollPolicy() PollPolicy {
	return PollPolicy{MaxAttempts: 10, Delay: 200 * time.Millisecond, MaxDelay: 5 * time.Second}
}

var errNotVisible = errors.New("not visible yet")

// poll calls fetch until it reports a match. Errors from fetch end polling at once; only misses
// are retried. Running out of attempts, or ctx ending while waiting, yields ErrPollTimeout.
func poll[T any](ctx context.Context, policy PollPolicy, resource, key string, fetch func(context.Context) (T, bool, error)) (T, error) {
	var (
		found    T
		attempts uint
	)
	err := retry.Do(
		func() error {
			attempts++
			item, ok, err := fetch(ctx)
			if err != nil {
				return err
			}
			if !ok {
				return errNotVisible
			}
			found = item
			return nil
		},
		retry.Attempts(policy.MaxAttempts),
		retry.Delay(policy.Delay),
		retry.MaxDelay(policy.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool { return errors.Is(err, errNotVisible) }),
	)
	if err == nil {
		return found, nil
	}
	var zero T
	switch {
	case errors.Is(err, errNotVisible):
		return zero, errors.WithStack(&ledgererrors.ErrPollTimeout{Resource: resource, Key: key, Attempts: attempts})
	case ctx.Err() != nil && errors.Is(err, ctx.Err()):
		return zero, errors.WithStack(&ledgererrors.ErrPollTimeout{Resource: resource, Key: key, Attempts: attempts, Cause: err})
	default:
		return zero, err
	}
}

// sleep waits for d or until ctx ends, whichever is first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
