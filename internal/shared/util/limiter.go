package util

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles how often an expensive operation, such as launching an
// external process, may start. A nil *Limiter never throttles.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter returns a token bucket refilled at perSecond tokens per second
// holding at most burst tokens. A non-positive rate means unlimited and
// yields nil.
func NewLimiter(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Allow reports whether n events may happen now.
func (l *Limiter) Allow(n int) bool {
	if l == nil {
		return true
	}
	return l.inner.AllowN(time.Now(), n)
}

// Wait blocks until n tokens are available or ctx is done.
func (l *Limiter) Wait(ctx context.Context, n int) error {
	if l == nil {
		return ctx.Err()
	}
	return l.inner.WaitN(ctx, n)
}
