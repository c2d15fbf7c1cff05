package throttle

import (
	"context"
	"time"
)

const (
	// DefaultMaxAttempts is the number of failed logins inside the window
	// that locks further attempts for that email.
	DefaultMaxAttempts = 5

	// DefaultWindow is the trailing interval over which failures count.
	DefaultWindow = 15 * time.Minute
)

// Store persists failed-attempt timestamps keyed by (scope, email). The
// scope is the caller's session context: the reference system tracked
// attempt history inside the browser session, so two browsers never share
// a counter. Passing a fixed scope turns the store into a per-account
// tracker, which is the stronger deployment (see DESIGN.md).
type Store interface {
	// RecordFailure appends a failure timestamp, keeping at most cap entries.
	RecordFailure(ctx context.Context, scope, email string, at time.Time, cap int) error

	// Failures returns the recorded timestamps for the key, oldest first.
	Failures(ctx context.Context, scope, email string) ([]time.Time, error)

	// Clear removes all recorded failures for the key.
	Clear(ctx context.Context, scope, email string) error
}

// Throttle decides whether login attempts for an email are currently
// locked out. There is no unlock timer: the window is evaluated on read,
// so an entry simply stops counting once it ages out.
type Throttle struct {
	store       Store
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// Option configures a Throttle.
type Option func(*Throttle)

// WithMaxAttempts sets the failure count that triggers a lockout.
func WithMaxAttempts(n int) Option {
	return func(t *Throttle) {
		if n > 0 {
			t.maxAttempts = n
		}
	}
}

// WithWindow sets the trailing window over which failures count.
func WithWindow(d time.Duration) Option {
	return func(t *Throttle) {
		if d > 0 {
			t.window = d
		}
	}
}

// WithClock overrides the time source. Used by tests to simulate the
// window sliding forward.
func WithClock(now func() time.Time) Option {
	return func(t *Throttle) {
		if now != nil {
			t.now = now
		}
	}
}

// New creates a throttle backed by the given store.
func New(store Store, opts ...Option) *Throttle {
	t := &Throttle{
		store:       store,
		maxAttempts: DefaultMaxAttempts,
		window:      DefaultWindow,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RecordFailure logs a failed login attempt for the key. The store keeps
// only the most recent maxAttempts entries to bound memory.
func (t *Throttle) RecordFailure(ctx context.Context, scope, email string) error {
	return t.store.RecordFailure(ctx, scope, email, t.now(), t.maxAttempts)
}

// IsLocked reports whether the key has accumulated maxAttempts failures
// inside the trailing window.
func (t *Throttle) IsLocked(ctx context.Context, scope, email string) (bool, error) {
	attempts, err := t.store.Failures(ctx, scope, email)
	if err != nil {
		return false, err
	}

	cutoff := t.now().Add(-t.window)
	recent := 0
	for _, at := range attempts {
		if at.After(cutoff) {
			recent++
		}
	}
	return recent >= t.maxAttempts, nil
}

// Clear wipes the failure history for the key. Called on successful login.
func (t *Throttle) Clear(ctx context.Context, scope, email string) error {
	return t.store.Clear(ctx, scope, email)
}
