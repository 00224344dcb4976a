package widget

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// SessionLimiter hands out one token bucket per session for the mutating
// widget endpoints and drops buckets that have gone idle.
type SessionLimiter struct {
	mu      sync.Mutex
	limit   rate.Limit
	burst   int
	buckets map[string]*bucket
	maxIdle time.Duration
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewSessionLimiter(perSecond float64, burst int) *SessionLimiter {
	l := &SessionLimiter{
		limit:   rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*bucket),
		maxIdle: 10 * time.Minute,
	}

	go l.cleanup()

	return l
}

// Allow consumes one token for the session, creating its bucket on first use.
func (l *SessionLimiter) Allow(sessionID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[sessionID]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[sessionID] = b
	}
	b.lastSeen = time.Now()

	return b.limiter.Allow()
}

func (l *SessionLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for id, b := range l.buckets {
			if now.Sub(b.lastSeen) > l.maxIdle {
				delete(l.buckets, id)
			}
		}
		l.mu.Unlock()
	}
}
