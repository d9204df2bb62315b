// Package retry runs an operation under a bounded exponential backoff policy
// shared by every outbound client.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/spigell/fedjobs/internal/utils"
)

var wait = utils.WaitFor

// Policy bounds how an operation is retried.
type Policy struct {
	// MaxAttempts includes the first call. Values below 1 mean a single attempt.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable decides whether an error is transient. Nil means IsRetryable.
	Retryable func(error) bool
	// Notify is called before waiting for the next attempt.
	Notify func(err error, attempt int, delay time.Duration)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		Retryable:   IsRetryable,
	}
}

// Do calls fn until it succeeds, returns a non-retryable error, the attempts
// are exhausted or ctx is done. The last error is returned.
func (p Policy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := max(p.MaxAttempts, 1)
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsRetryable
	}

	b := p.backoff()

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt >= attempts || !retryable(err) {
			return err
		}

		delay := b.NextBackOff()
		if p.Notify != nil {
			p.Notify(err, attempt, delay)
		}

		if werr := wait(ctx, delay); werr != nil {
			return fmt.Errorf("%w (retry interrupted: %w)", err, werr)
		}
	}
}

// Get is Do for operations that produce a value.
func Get[T any](ctx context.Context, p Policy, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// Delays returns the waits the policy would make between attempts.
func (p Policy) Delays() []time.Duration {
	b := p.backoff()
	n := max(p.MaxAttempts, 1) - 1
	delays := make([]time.Duration, 0, n)
	for range n {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

func (p Policy) backoff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval <= 0 {
		b.MaxInterval = backoff.DefaultMaxInterval
	}
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

var (
	ErrRateLimited = errors.New("rate limited")
	ErrServerError = errors.New("server error")
)

// StatusError is an unexpected HTTP status from an upstream service.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("bad status: %s", e.Status)
	}
	return fmt.Sprintf("bad status: %d", e.Code)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.Code == http.StatusTooManyRequests:
		return ErrRateLimited
	case IsRetryableStatus(e.Code):
		return ErrServerError
	default:
		return nil
	}
}

func IsRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// IsRetryable reports rate limiting, transient server statuses, timeouts and
// connection failures. Context cancellation is never retried.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return IsRetryableStatus(statusErr.Code)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}
