package download

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/steviee/assetguard/internal/events"
)

// ItemFailure records an item that could not be fetched or verified.
type ItemFailure struct {
	Category string
	ID       string
	URL      string
	Path     string
	Err      error
}

func (f ItemFailure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Category, f.ID, f.Err)
}

func (f ItemFailure) Unwrap() error { return f.Err }

// Summary is the outcome of draining the download queues.
type Summary struct {
	mu sync.Mutex

	Downloaded int
	Bytes      int64
	// Resized lists items whose response length differed from the declared size.
	Resized []string
	Failed  []ItemFailure
	// Extracted lists the archives handed to the unpacker.
	Extracted []string
}

func (s *Summary) recordSuccess(written int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Downloaded++
	s.Bytes += written
}

func (s *Summary) recordResized(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Resized = append(s.Resized, id)
}

func (s *Summary) recordFailure(f ItemFailure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Failed = append(s.Failed, f)
}

// Partial reports whether any item failed.
func (s *Summary) Partial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Failed) > 0
}

// Status returns the completion status for events.
func (s *Summary) Status() events.Status {
	if s.Partial() {
		return events.StatusPartial
	}
	return events.StatusOK
}

// FailedIDs returns the sorted IDs of failed items, optionally limited to one category.
func (s *Summary) FailedIDs(category string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for _, f := range s.Failed {
		if category == "" || f.Category == category {
			ids = append(ids, f.ID)
		}
	}
	sort.Strings(ids)
	return ids
}

// Err combines every item failure into one error, or returns nil.
func (s *Summary) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result *multierror.Error
	for _, f := range s.Failed {
		result = multierror.Append(result, f)
	}
	return result.ErrorOrNil()
}
