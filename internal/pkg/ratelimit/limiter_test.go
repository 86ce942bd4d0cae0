package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestLimiter(start time.Time) (*AttemptLimiter, *time.Time) {
	now := start
	l := NewAttemptLimiter(Window)
	l.now = func() time.Time { return now }
	return l, &now
}

func TestAllowExactlyMaxWithinWindow(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("id", 5), "attempt %d should be allowed", i+1)
	}
	assert.False(t, l.Allow("id", 5), "attempt 6 should be limited")
}

func TestWindowSlides(t *testing.T) {
	l, now := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("id", 5))
	}
	assert.False(t, l.Allow("id", 5))

	*now = now.Add(Window + time.Second)
	assert.True(t, l.Allow("id", 5), "window elapsed, attempts should be allowed again")
}

func TestDeniedAttemptsAreNotRecorded(t *testing.T) {
	l, now := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		l.Allow("id", 5)
	}
	// Hammering while blocked must not extend the lockout.
	for i := 0; i < 20; i++ {
		*now = now.Add(10 * time.Second)
		assert.False(t, l.Allow("id", 5))
	}

	// All five recorded attempts age out exactly one window after the last
	// allowed one, despite the denied calls in between.
	*now = now.Add(Window - 200*time.Second + time.Second)
	assert.True(t, l.Allow("id", 5))
}

func TestIdentitiesAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow("a", 5))
	}
	assert.False(t, l.Allow("a", 5))
	assert.True(t, l.Allow("b", 5))
}

func TestActionHelpersUseDistinctKeys(t *testing.T) {
	l, _ := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	for i := 0; i < MaxResetRequests; i++ {
		assert.True(t, l.AllowPasswordReset("1.2.3.4", "a@b.c"))
	}
	assert.False(t, l.AllowPasswordReset("1.2.3.4", "a@b.c"))

	// Same client, other actions and other identities still pass.
	assert.True(t, l.AllowLogin("1.2.3.4", "a@b.c"))
	assert.True(t, l.AllowPasswordReset("1.2.3.4", "other@b.c"))
	assert.True(t, l.AllowEmailChange("1.2.3.4", 7))
}

func TestPruneDropsStaleIdentities(t *testing.T) {
	l, now := newTestLimiter(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	l.Allow("old", 5)
	*now = now.Add(Window + time.Minute)
	l.Allow("fresh", 5)

	l.Prune()

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.attempts, "old")
	assert.Contains(t, l.attempts, "fresh")
}
