package ai

import (
	"context"
	"errors"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// retryPolicy is exponential backoff with jitter and a cap.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
}

// newRetryPolicy fills unset values with the given defaults.
func newRetryPolicy(attempts int, base, max time.Duration, defAttempts int, defBase, defMax time.Duration) retryPolicy {
	if attempts <= 0 {
		attempts = defAttempts
	}
	if base <= 0 {
		base = defBase
	}
	if max <= 0 {
		max = defMax
	}
	return retryPolicy{maxAttempts: attempts, baseDelay: base, maxDelay: max}
}

// delay returns the wait before the attempt following the given one.
func (p retryPolicy) delay(attempt int) time.Duration {
	d := p.baseDelay << (attempt - 1)
	if d <= 0 || d > p.maxDelay {
		d = p.maxDelay
	}
	return withJitter(d)
}

// run calls fn until it succeeds, fails permanently or runs out of attempts.
// A rate limit with Retry-After overrides the backoff.
func (p retryPolicy) run(ctx context.Context, fn func() error) error {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn()
		if err == nil {
			return nil
		}
		if attempt >= p.maxAttempts || !retryable(err) {
			return err
		}
		wait := p.delay(attempt)
		var rl *RateLimitError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			wait = rl.RetryAfter
		}
		if err := sleepCtx(ctx, wait); err != nil {
			return err
		}
	}
}

func retryable(err error) bool {
	var (
		rl *RateLimitError
		se *ServerError
		ne net.Error
	)
	switch {
	case errors.As(err, &rl), errors.As(err, &se):
		return true
	case errors.As(err, &ne):
		return ne.Timeout()
	}
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// withJitter applies +/- 20% jitter.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	out := time.Duration(float64(d) * (0.8 + rand.Float64()*0.4))
	if out <= 0 {
		return d
	}
	return out
}

// parseRetryAfter reads a Retry-After header as seconds or an HTTP date.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if s, err := strconv.Atoi(v); err == nil && s > 0 {
		return time.Duration(s) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
