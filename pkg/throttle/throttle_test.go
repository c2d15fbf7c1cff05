package throttle

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestThrottle(t *testing.T) (*Throttle, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	return New(NewInMemoryStore(), WithClock(clock.Now)), clock
}

func TestLocksAfterMaxFailuresInWindow(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}

	locked, err := th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestNotLockedBelowThreshold(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 4; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}

	locked, err := th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestOldFailuresAgeOutOfWindow(t *testing.T) {
	ctx := context.Background()
	th, clock := newTestThrottle(t)

	// One failure now, four more later: by the time the fifth lands, the
	// first is outside the trailing window and only four count.
	require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	clock.Advance(20 * time.Minute)
	for i := 0; i < 4; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}

	locked, err := th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestLockReleasesOnceWindowPasses(t *testing.T) {
	ctx := context.Background()
	th, clock := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}
	locked, err := th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	require.True(t, locked)

	clock.Advance(16 * time.Minute)

	locked, err = th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, locked, "lock should silently release after the window")
}

func TestClearResetsHistory(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}
	require.NoError(t, th.Clear(ctx, "sess-1", "a@example.com"))

	locked, err := th.IsLocked(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, locked)
}

func TestScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	th, _ := newTestThrottle(t)

	for i := 0; i < 5; i++ {
		require.NoError(t, th.RecordFailure(ctx, "sess-1", "a@example.com"))
	}

	locked, err := th.IsLocked(ctx, "sess-2", "a@example.com")
	require.NoError(t, err)
	assert.False(t, locked, "a different session scope starts with a clean counter")
}

func TestStoreCapsHistory(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		require.NoError(t, store.RecordFailure(ctx, "sess-1", "a@example.com", at.Add(time.Duration(i)*time.Second), 5))
	}

	attempts, err := store.Failures(ctx, "sess-1", "a@example.com")
	require.NoError(t, err)
	assert.Len(t, attempts, 5)
	assert.Equal(t, at.Add(11*time.Second), attempts[len(attempts)-1])
}
