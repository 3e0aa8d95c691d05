package ws

import (
	"sync"
	"time"
)

// RateLimiter enforces a sliding-window cap on socket messages per user.
// A message is allowed when fewer than limit messages were accepted within
// the trailing window; the 31st message in a 30/60s window is rejected and
// becomes allowed again only once the oldest accepted timestamp ages out.
//
// State is per process. Each gateway instance enforces the cap on its own
// connections, which is sufficient because a user's socket lands on one
// instance at a time.
type RateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	sent   map[uint64][]time.Time

	now func() time.Time // test hook
}

// NewRateLimiter creates a limiter allowing limit messages per window.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		limit:  limit,
		window: window,
		sent:   make(map[uint64][]time.Time),
		now:    time.Now,
	}
}

// Allow records and admits one message for userID, or rejects it without
// recording when the window is full. Rejected messages never consume quota.
func (l *RateLimiter) Allow(userID uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	stamps := l.sent[userID]
	kept := stamps[:0]
	for _, t := range stamps {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= l.limit {
		l.sent[userID] = kept
		return false
	}

	l.sent[userID] = append(kept, now)
	return true
}

// sweep drops users whose every timestamp has aged out of the window.
// Windows survive disconnects on purpose: a reconnect must not grant a
// fresh budget. The sweep only reclaims memory for users gone quiet.
func (l *RateLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-l.window)
	for userID, stamps := range l.sent {
		stale := true
		for _, t := range stamps {
			if t.After(cutoff) {
				stale = false
				break
			}
		}
		if stale {
			delete(l.sent, userID)
		}
	}
}

// StartSweeper reclaims stale windows on the given interval until stop
// closes. A nil stop runs for the life of the process.
func (l *RateLimiter) StartSweeper(interval time.Duration, stop <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				l.sweep()
			}
		}
	}()
}
