package govee

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type retryPolicy struct {
	attempts     int
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

func singleAttempt() retryPolicy {
	return retryPolicy{
		attempts:     1,
		initialDelay: 200 * time.Millisecond,
		maxDelay:     5 * time.Second,
		multiplier:   2,
	}
}

// do runs fn until it succeeds, returns a non-retryable error, or the
// attempts are exhausted.
func (p retryPolicy) do(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := p.initialDelay

	for attempt := 1; attempt <= p.attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil || !isRetryable(err) || attempt == p.attempts {
			break
		}

		log.Debug().
			Err(err).
			Int("attempt", attempt).
			Dur("delay", delay).
			Msg("Retrying Govee request")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * p.multiplier)
		if delay > p.maxDelay {
			delay = p.maxDelay
		}
	}

	return lastErr
}

// transportError marks failures that happened before a response was read.
type transportError struct {
	err error
}

func (e *transportError) Error() string {
	return e.err.Error()
}

func (e *transportError) Unwrap() error {
	return e.err
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		// embedded command failures come back with HTTP 200 and are final
		return apiErr.Retryable()
	}
	var tErr *transportError
	return errors.As(err, &tErr)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}
