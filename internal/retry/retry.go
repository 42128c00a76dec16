// Package retry repeats transient git and registry operations with backoff.
package retry

import (
	"context"
	"errors"
	"time"
)

// TransientError marks a failure worth another attempt, such as a dropped connection.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err as a TransientError. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err carries a TransientError.
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

// Policy bounds how often and how patiently an operation is retried.
type Policy struct {
	// Retries is the number of attempts after the first.
	Retries int
	// Delay is the wait before the first retry. It doubles after each retry.
	Delay time.Duration
}

// Do runs fn until it succeeds, fails with a non-transient error, or the
// retries are exhausted. Cancellation of ctx ends the wait between attempts.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	delay := p.Delay
	attempts := max(p.Retries, 0) + 1

	var lastErr error
	for i := range attempts {
		lastErr = fn(ctx)
		if lastErr == nil || !IsTransient(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
	return lastErr
}
