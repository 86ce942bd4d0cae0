// internal/pkg/ratelimit/limiter.go
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Window and per-action thresholds for authentication attempts.
const (
	Window             = 900 * time.Second
	MaxLoginAttempts   = 5
	MaxResetRequests   = 3
	MaxEmailChangeReqs = 3
)

// AttemptLimiter throttles repeated authentication attempts per client
// identity with a sliding window of timestamps.
//
// State is local to the process. A multi-instance deployment would need a
// shared counter store instead; single-instance is what the storefront runs.
type AttemptLimiter struct {
	mu       sync.Mutex
	window   time.Duration
	attempts map[string][]time.Time
	now      func() time.Time
}

// NewAttemptLimiter creates a limiter with the given sliding window.
func NewAttemptLimiter(window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		window:   window,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// Allow checks and records one attempt for identity. Attempts older than the
// window are discarded first; if max attempts remain the call is rejected
// without being recorded, so a blocked client cannot extend its own lockout.
func (l *AttemptLimiter) Allow(identity string, max int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	recent := l.attempts[identity][:0]
	for _, t := range l.attempts[identity] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= max {
		l.attempts[identity] = recent
		return false
	}

	l.attempts[identity] = append(recent, now)
	return true
}

// AllowLogin gates a login attempt for a client IP and submitted email.
func (l *AttemptLimiter) AllowLogin(ip, email string) bool {
	return l.Allow(fmt.Sprintf("login:%s:%s", ip, email), MaxLoginAttempts)
}

// AllowPasswordReset gates a password-reset code request.
func (l *AttemptLimiter) AllowPasswordReset(ip, email string) bool {
	return l.Allow(fmt.Sprintf("password_reset:%s:%s", ip, email), MaxResetRequests)
}

// AllowEmailChange gates an email-change verification request.
func (l *AttemptLimiter) AllowEmailChange(ip string, userID int64) bool {
	return l.Allow(fmt.Sprintf("email_change:%s:%d", ip, userID), MaxEmailChangeReqs)
}

// Prune drops identities whose every attempt has aged out of the window.
// Called opportunistically; the per-identity lists are already pruned on
// each Allow.
func (l *AttemptLimiter) Prune() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for identity, ts := range l.attempts {
		stale := true
		for _, t := range ts {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.attempts, identity)
		}
	}
}
