package throttle

import (
	"context"
	"sync"
	"time"
)

type key struct {
	scope string
	email string
}

// InMemoryStore implements Store with a mutex-guarded map. Suitable for a
// single-process deployment; the Store interface exists so a shared store
// can replace it without touching the throttle logic.
type InMemoryStore struct {
	mu       sync.Mutex
	attempts map[key][]time.Time
}

// NewInMemoryStore creates an empty in-memory attempt store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		attempts: make(map[key][]time.Time),
	}
}

// RecordFailure appends a failure timestamp, keeping at most cap entries.
func (s *InMemoryStore) RecordFailure(ctx context.Context, scope, email string, at time.Time, cap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key{scope: scope, email: email}
	attempts := append(s.attempts[k], at)
	if cap > 0 && len(attempts) > cap {
		attempts = attempts[len(attempts)-cap:]
	}
	s.attempts[k] = attempts
	return nil
}

// Failures returns recorded timestamps for the key, oldest first.
func (s *InMemoryStore) Failures(ctx context.Context, scope, email string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.attempts[key{scope: scope, email: email}]
	out := make([]time.Time, len(attempts))
	copy(out, attempts)
	return out, nil
}

// Clear removes all recorded failures for the key.
func (s *InMemoryStore) Clear(ctx context.Context, scope, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.attempts, key{scope: scope, email: email})
	return nil
}
