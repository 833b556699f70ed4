package llmclient

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// attemptTimeout bounds a single vendor-API call: 30s per attempt, with
// one retry governed by transientBackoff.
const attemptTimeout = 30 * time.Second

// transientBackoff bounds the retry window for a single vendor-API call:
// base 500ms, capped at 2s, one retry. Transient failures beyond that are
// surfaced to the caller rather than retried indefinitely.
func transientBackoff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.Multiplier = 2
	b.RandomizationFactor = 0.1
	return backoff.WithContext(backoff.WithMaxRetries(b, 1), ctx)
}

// withTransientRetry runs op, retrying once on a transient error per
// transientBackoff's schedule. Non-transient errors short-circuit via
// backoff.Permanent.
func withTransientRetry(ctx context.Context, op func() (string, error)) (string, error) {
	var out string
	err := backoff.Retry(func() error {
		result, err := op()
		if err != nil {
			if !isTransient(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		out = result
		return nil
	}, transientBackoff(ctx))
	return out, err
}

// isTransient classifies vendor errors that are worth a single retry:
// rate limiting, server-side failures, and timeouts. Anything else (bad
// request, auth failure, malformed input) fails fast.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"rate limit", "429", "500", "502", "503", "504", "timeout", "deadline exceeded", "connection reset", "eof"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
