package events

import "sync"

// Throttle forwards progress events only when the whole percentage of their
// category changes. All other kinds pass through unchanged.
type Throttle struct {
	next Observer

	mu      sync.Mutex
	percent map[string]int64
}

// NewThrottle wraps next.
func NewThrottle(next Observer) *Throttle {
	return &Throttle{next: next, percent: make(map[string]int64)}
}

// Notify implements Observer.
func (t *Throttle) Notify(e Event) {
	if e.Kind != KindProgress {
		t.next.Notify(e)
		return
	}

	pct := int64(100)
	if e.Total > 0 {
		pct = e.Done * 100 / e.Total
	}

	t.mu.Lock()
	last, seen := t.percent[e.Category]
	if seen && last == pct {
		t.mu.Unlock()
		return
	}
	t.percent[e.Category] = pct
	t.mu.Unlock()

	t.next.Notify(e)
}
