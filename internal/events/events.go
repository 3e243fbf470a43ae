// Package events defines the event stream emitted by the validation pipeline.
package events

import (
	"sync"
)

// Kind is the type of an event.
type Kind string

const (
	KindValidate Kind = "validate"
	KindProgress Kind = "progress"
	KindComplete Kind = "complete"
	KindError    Kind = "error"
)

// Status describes how a completed category or pipeline finished.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
)

// CategoryPipeline is the category of pipeline-wide complete events.
const CategoryPipeline = "download"

// Event is a single notification from the pipeline.
type Event struct {
	Kind Kind
	// Phase is set on validate events, e.g. "distribution" or "assets".
	Phase    string
	Category string
	Done     int64
	Total    int64
	Status   Status
	// Failed lists the IDs of items that could not be fetched.
	Failed []string
	Err    error
}

// Validate builds a validate event for phase.
func Validate(phase string) Event {
	return Event{Kind: KindValidate, Phase: phase}
}

// Progress builds a progress event.
func Progress(category string, done, total int64) Event {
	return Event{Kind: KindProgress, Category: category, Done: done, Total: total}
}

// Error builds an error event.
func Error(category string, err error) Event {
	return Event{Kind: KindError, Category: category, Err: err}
}

// Observer receives pipeline events. Notify may be called from multiple
// goroutines and must not block for long.
type Observer interface {
	Notify(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Notify calls f(e).
func (f ObserverFunc) Notify(e Event) { f(e) }

// Discard drops every event.
var Discard Observer = ObserverFunc(func(Event) {})

// Multi fans events out to several observers in order.
func Multi(observers ...Observer) Observer {
	return ObserverFunc(func(e Event) {
		for _, o := range observers {
			o.Notify(e)
		}
	})
}

// ChannelObserver forwards events to a channel.
type ChannelObserver struct {
	C chan Event
}

// NewChannelObserver creates a ChannelObserver with the given buffer size.
func NewChannelObserver(buffer int) *ChannelObserver {
	return &ChannelObserver{C: make(chan Event, buffer)}
}

// Notify sends e on the channel, blocking when the buffer is full.
func (o *ChannelObserver) Notify(e Event) {
	o.C <- e
}

// Recorder stores every event it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify records e.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}
