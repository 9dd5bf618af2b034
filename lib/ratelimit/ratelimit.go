// Package ratelimit gates job admission per (tenant, institution) pair so
// a burst of sync jobs can never hammer a university's login endpoint.
package ratelimit

import (
	"sync"
	"time"
)

type windowKey struct {
	tenant      string
	institution string
}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed 60-second-window admission counter plus a concurrent
// session tracker. Deliberately coarse: the protected resource is a third
// party with forgiving limits, and a fixed window keeps the state a single
// counter that expires on its own.
type Limiter struct {
	mu       sync.Mutex
	windows  map[windowKey]*window
	sessions map[string]int

	span time.Duration
	now  func() time.Time
}

func New() *Limiter {
	return &Limiter{
		windows:  map[windowKey]*window{},
		sessions: map[string]int{},
		span:     time.Minute,
		now:      time.Now,
	}
}

// Admit reports whether another request for the pair fits inside the
// current window, incrementing the counter when it does. The counter
// never exceeds perMinute; a denied call leaves it untouched, so Admit is
// safe to call repeatedly for the same queued job.
func (l *Limiter) Admit(tenantID, institutionID string, perMinute int) bool {
	if perMinute <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	key := windowKey{tenant: tenantID, institution: institutionID}
	now := l.now()

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= l.span {
		l.windows[key] = &window{start: now, count: 1}
		return true
	}
	if w.count >= perMinute {
		return false
	}
	w.count++
	return true
}

// AcquireSession claims one of the institution's concurrent browser
// session slots. Callers must pair a successful acquire with
// ReleaseSession on every exit path.
func (l *Limiter) AcquireSession(institutionID string, maxSessions int) bool {
	if maxSessions <= 0 {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sessions[institutionID] >= maxSessions {
		return false
	}
	l.sessions[institutionID]++
	return true
}

func (l *Limiter) ReleaseSession(institutionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sessions[institutionID] > 0 {
		l.sessions[institutionID]--
	}
}
