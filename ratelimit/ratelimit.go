// Package ratelimit paces outgoing requests to the remote API's token-window
// policy. The API allows a fixed number of requests per rolling window and
// answers 429 with a Retry-After once the window is spent; Limiter keeps
// well-behaved clients from ever seeing that.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Defaults matching the public API policy of 50 requests per 30 seconds.
const (
	DefaultRequests = 50
	DefaultWindow   = 30 * time.Second
)

// Limiter is safe for concurrent use; all requests of one client share it.
type Limiter struct {
	lim *rate.Limiter

	mu         sync.Mutex
	pauseUntil time.Time
}

// New builds a Limiter admitting requests per window, with bursts up to a
// full window's worth. Non-positive arguments fall back to the defaults.
func New(requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = DefaultRequests
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		lim: rate.NewLimiter(rate.Every(window/time.Duration(requests)), requests),
	}
}

// Wait blocks until a request slot is free or ctx is done. A pause installed
// by Backoff is honored before the token wait.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	pause := time.Until(l.pauseUntil)
	l.mu.Unlock()
	if pause > 0 {
		t := time.NewTimer(pause)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return l.lim.Wait(ctx)
}

// Backoff suspends all callers for d, typically the Retry-After of a 429.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		return
	}
	l.mu.Lock()
	if until := time.Now().Add(d); until.After(l.pauseUntil) {
		l.pauseUntil = until
	}
	l.mu.Unlock()
}
