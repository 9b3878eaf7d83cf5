// Package ratelimit implements the per-client throttle used by the contact endpoint.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(key string) Decision
}

// Decision is the outcome of a single Allow call.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds the remaining window up to whole seconds.
func (d Decision) RetryAfterSeconds() int {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int(math.Ceil(float64(d.RetryAfter) / float64(time.Second)))
}

type bucket struct {
	count   int
	resetAt time.Time
}

// FixedWindow counts requests per key in windows that start at the first
// request and end window later. State lives in process memory only.
type FixedWindow struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	window    time.Duration
	max       int
	now       func() time.Time
	lastSweep time.Time
}

// Option configures a FixedWindow
type Option func(*FixedWindow)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(f *FixedWindow) {
		f.now = now
	}
}

// NewFixedWindow creates a limiter allowing max requests per window per key.
func NewFixedWindow(window time.Duration, max int, opts ...Option) *FixedWindow {
	f := &FixedWindow{
		buckets: make(map[string]*bucket),
		window:  window,
		max:     max,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.lastSweep = f.now()
	return f
}

// Allow records a request for key and reports whether it is within the limit.
// A window is reset only once the current time is strictly after its reset time.
func (f *FixedWindow) Allow(key string) Decision {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := f.now()
	f.sweep(now)

	cur, ok := f.buckets[key]
	if !ok || now.After(cur.resetAt) {
		f.buckets[key] = &bucket{count: 1, resetAt: now.Add(f.window)}
		return Decision{Allowed: true}
	}

	if cur.count >= f.max {
		return Decision{Allowed: false, RetryAfter: cur.resetAt.Sub(now)}
	}

	cur.count++
	return Decision{Allowed: true}
}

// Len returns the number of tracked keys
func (f *FixedWindow) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buckets)
}

// sweep drops expired buckets at most once per window. Caller holds mu.
func (f *FixedWindow) sweep(now time.Time) {
	if now.Sub(f.lastSweep) < f.window {
		return
	}
	for key, b := range f.buckets {
		if now.After(b.resetAt) {
			delete(f.buckets, key)
		}
	}
	f.lastSweep = now
}
