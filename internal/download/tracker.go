// Package download holds the per-category download queues and the engine
// that drains them with bounded concurrency.
package download

import (
	"context"

	"github.com/steviee/assetguard/internal/artifact"
)

// Download categories.
const (
	CategoryAssets    = "assets"
	CategoryLibraries = "libraries"
	CategoryFiles     = "files"
	CategoryForge     = "forge"
	CategoryRuntime   = "runtime"
)

// DefaultLimits are the per-category concurrency limits.
var DefaultLimits = map[string]int{
	CategoryAssets:    20,
	CategoryLibraries: 5,
	CategoryFiles:     5,
	CategoryForge:     5,
	CategoryRuntime:   1,
}

// Job is a single queued download with its completion hook.
type Job struct {
	Artifact artifact.Artifact
	// OnComplete runs after the file has been written.
	OnComplete func(ctx context.Context) error
}

// Queue is a category of downloads the engine can drain.
type Queue interface {
	Category() string
	Jobs() []Job
	Size() int64
	Len() int
}

// Tracker is the download queue of one category. Trackers are built fresh
// for every validation pass.
type Tracker[T artifact.Downloadable] struct {
	category   string
	items      []T
	totalSize  int64
	onComplete func(ctx context.Context, item T) error
}

// NewTracker creates a tracker over items. onComplete may be nil.
func NewTracker[T artifact.Downloadable](category string, items []T, onComplete func(ctx context.Context, item T) error) *Tracker[T] {
	var total int64
	for _, it := range items {
		total += it.Target().Size
	}
	return &Tracker[T]{
		category:   category,
		items:      items,
		totalSize:  total,
		onComplete: onComplete,
	}
}

// Category returns the tracker's category name.
func (t *Tracker[T]) Category() string { return t.category }

// Items returns the queued items.
func (t *Tracker[T]) Items() []T { return t.items }

// Size returns the sum of the declared sizes of the queued items.
func (t *Tracker[T]) Size() int64 { return t.totalSize }

// Len returns the number of queued items.
func (t *Tracker[T]) Len() int { return len(t.items) }

// Jobs converts the queued items into engine jobs.
func (t *Tracker[T]) Jobs() []Job {
	jobs := make([]Job, 0, len(t.items))
	for _, it := range t.items {
		job := Job{Artifact: it.Target()}
		if t.onComplete != nil {
			item := it
			job.OnComplete = func(ctx context.Context) error {
				return t.onComplete(ctx, item)
			}
		}
		jobs = append(jobs, job)
	}
	return jobs
}
