package download

import (
	"sync"
)

type categoryProgress struct {
	total   int64
	done    int64
	pending int
}

// Aggregator tracks expected and processed bytes across categories. All
// counters only ever grow, and every method is safe for concurrent use.
type Aggregator struct {
	mu         sync.Mutex
	total      int64
	done       int64
	categories map[string]*categoryProgress
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{categories: make(map[string]*categoryProgress)}
}

// Register adds a category with its expected size and item count.
func (a *Aggregator) Register(category string, size int64, items int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.category(category)
	c.total += size
	c.pending += items
	a.total += size
}

// Grow raises the expected size of a category, used when a response turns
// out larger than declared. Non-positive deltas are ignored.
func (a *Aggregator) Grow(category string, delta int64) {
	if delta <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	a.category(category).total += delta
	a.total += delta
}

// ItemDone records a processed item of the given size and returns the
// category's progress and whether it has drained.
func (a *Aggregator) ItemDone(category string, size int64) (done, total int64, drained bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c := a.category(category)
	c.done += size
	if c.pending > 0 {
		c.pending--
	}
	a.done += size
	return c.done, c.total, c.pending == 0
}

// Category returns the progress of one category.
func (a *Aggregator) Category(category string) (done, total int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.categories[category]
	if !ok {
		return 0, 0
	}
	return c.done, c.total
}

// Totals returns the pipeline-wide processed and expected bytes.
func (a *Aggregator) Totals() (done, total int64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.done, a.total
}

// Drained reports whether every category is empty and the processed bytes
// have reached the expected total.
func (a *Aggregator) Drained() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range a.categories {
		if c.pending > 0 {
			return false
		}
	}
	return a.done >= a.total
}

// category must be called with the lock held.
func (a *Aggregator) category(name string) *categoryProgress {
	c, ok := a.categories[name]
	if !ok {
		c = &categoryProgress{}
		a.categories[name] = c
	}
	return c
}
