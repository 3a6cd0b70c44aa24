// Package retry runs unreliable operations under a fixed exponential backoff.
//
// Every error is retried the same way: after failed attempt i (1-based) the
// policy waits BaseDelay*2^(i-1) unless that attempt was the last one. There is
// no jitter and no delay cap; the attempt count bounds the total wait.
package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"promptreel/internal/logging"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 1000 * time.Millisecond
)

// ErrExhausted is matched by errors.Is on every *ExhaustedError.
var ErrExhausted = errors.New("retry attempts exhausted")

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// ExhaustedError reports an operation that failed on every attempt.
type ExhaustedError struct {
	Name        string
	MaxAttempts int
	Err         error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("operation %s failed after %d attempts: %v", e.Name, e.MaxAttempts, e.Err)
}

func (e *ExhaustedError) Unwrap() []error {
	return []error{ErrExhausted, e.Err}
}

// Policy configures retries. The zero value behaves like Default.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// AttemptTimeout bounds each individual attempt when positive.
	AttemptTimeout time.Duration
	Sleep          Sleeper
	Logger         *slog.Logger
}

// Default returns the stock policy: five attempts starting at one second.
func Default() Policy {
	return Policy{MaxAttempts: DefaultMaxAttempts, BaseDelay: DefaultBaseDelay}
}

// WithLogger returns a copy of p that logs through logger.
func (p Policy) WithLogger(logger *slog.Logger) Policy {
	p.Logger = logger
	return p
}

// Delay returns the wait that follows failed attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.baseDelay() << (attempt - 1)
}

// Run calls op until it succeeds, the attempts run out, or ctx is done.
func (p Policy) Run(ctx context.Context, name string, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// Do is Run for operations that produce a value.
func Do[T any](ctx context.Context, p Policy, name string, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	attempts := p.maxAttempts()
	logger := logging.WithContext(ctx, p.Logger)
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		value, err := runAttempt(ctx, p.AttemptTimeout, op)
		if err == nil {
			return value, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}

		attrs := []logging.Attr{
			logging.String("operation", name),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", attempts),
			logging.Error(err),
			logging.String(logging.FieldEventType, "retry_attempt_failed"),
		}
		if attempt == attempts {
			logger.Warn("operation attempt failed", logging.Args(attrs...)...)
			break
		}
		delay := p.Delay(attempt)
		attrs = append(attrs, logging.Duration("next_delay", delay))
		logger.Warn("operation attempt failed", logging.Args(attrs...)...)

		if err := sleep(ctx, delay); err != nil {
			return zero, err
		}
	}

	return zero, &ExhaustedError{Name: name, MaxAttempts: attempts, Err: lastErr}
}

func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return op(attemptCtx)
}

func (p Policy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return p.MaxAttempts
}

func (p Policy) baseDelay() time.Duration {
	if p.BaseDelay < 0 {
		return 0
	}
	if p.BaseDelay == 0 && p.MaxAttempts == 0 {
		return DefaultBaseDelay
	}
	return p.BaseDelay
}

// SleepContext waits for d unless ctx finishes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
