package httputil

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the spacing between requests to one repository.
const DefaultInterval = 200 * time.Millisecond

// Throttle spaces out requests to a remote server. One Throttle is shared by
// every request a client makes, so the limit applies to the whole crawl
// rather than to a single coordinate.
//
// A nil *Throttle never blocks.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle allows one request per interval with a burst of one.
// A non-positive interval disables throttling.
func NewThrottle(interval time.Duration) *Throttle {
	if interval <= 0 {
		return &Throttle{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may be sent or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}

// Interval returns the configured spacing, or 0 when unthrottled.
func (t *Throttle) Interval() time.Duration {
	if t == nil || t.limiter.Limit() == rate.Inf {
		return 0
	}
	return time.Duration(float64(time.Second) / float64(t.limiter.Limit()))
}
