package dashboard

import (
	"sync"
	"time"
)

// Throttle spaces out periodic refreshes per display
type Throttle struct {
	mu          sync.RWMutex
	lastRefresh map[string]time.Time
	now         func() time.Time
}

// NewThrottle creates a new throttle
func NewThrottle() *Throttle {
	return &Throttle{
		lastRefresh: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Allow reports whether minInterval has passed since the last refresh of display.
// An allowed refresh is recorded.
func (t *Throttle) Allow(display string, minInterval time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	last, exists := t.lastRefresh[display]
	if exists && now.Sub(last) < minInterval {
		return false
	}

	t.lastRefresh[display] = now
	return true
}

// Record marks a refresh that bypassed the throttle
func (t *Throttle) Record(display string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastRefresh[display] = t.now()
}

// Last returns the last recorded refresh of display
func (t *Throttle) Last(display string) (time.Time, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	last, exists := t.lastRefresh[display]
	return last, exists
}
