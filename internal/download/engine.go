package download

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/steviee/assetguard/internal/artifact"
	"github.com/steviee/assetguard/internal/errdefs"
	"github.com/steviee/assetguard/internal/events"
	"github.com/steviee/assetguard/internal/extract"
	"github.com/steviee/assetguard/internal/integrity"
	"github.com/steviee/assetguard/internal/state"
)

const (
	// DefaultItemTimeout bounds a single download including its body.
	DefaultItemTimeout = 10 * time.Minute

	// DefaultRetries is the number of extra attempts per failed item.
	DefaultRetries = 1

	// RetryDelay is the base delay between attempts.
	RetryDelay = 500 * time.Millisecond

	// UserAgent is the user agent string sent with downloads.
	UserAgent = "assetguard/dev (https://github.com/steviee/assetguard)"

	// CategoryExtract scopes error events raised by the unpacker.
	CategoryExtract = "extract"
)

// Config holds engine configuration.
type Config struct {
	HTTPClient  *http.Client
	UserAgent   string
	Limits      map[string]int
	ItemTimeout time.Duration
	// Retries is the number of extra attempts per failed item.
	Retries  int
	Observer events.Observer
	Unpacker extract.Unpacker
}

// Engine drains download queues with a bounded worker pool per category.
type Engine struct {
	httpClient  *http.Client
	userAgent   string
	limits      map[string]int
	itemTimeout time.Duration
	retries     int
	observer    events.Observer
	unpacker    extract.Unpacker
}

// NewEngine creates a download engine.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = &Config{}
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{}
	}

	if config.UserAgent == "" {
		config.UserAgent = UserAgent
	}

	if config.ItemTimeout == 0 {
		config.ItemTimeout = DefaultItemTimeout
	}

	if config.Observer == nil {
		config.Observer = events.Discard
	}

	limits := make(map[string]int, len(DefaultLimits))
	for k, v := range DefaultLimits {
		limits[k] = v
	}
	for k, v := range config.Limits {
		if v > 0 {
			limits[k] = v
		}
	}

	retries := config.Retries
	if retries < 0 {
		retries = 0
	}

	return &Engine{
		httpClient:  config.HTTPClient,
		userAgent:   config.UserAgent,
		limits:      limits,
		itemTimeout: config.ItemTimeout,
		retries:     retries,
		observer:    config.Observer,
		unpacker:    config.Unpacker,
	}
}

// Limit returns the concurrency limit for a category.
func (e *Engine) Limit(category string) int {
	if l, ok := e.limits[category]; ok {
		return l
	}
	return 1
}

// Plan is the input of a download run.
type Plan struct {
	Queues []Queue
	// Extract lists downloaded archives to hand to the unpacker after every
	// queue has drained.
	Extract []string
}

// ProcessQueues downloads every queued item. Item failures are recorded in
// the summary and do not stop other items. The returned error is non-nil
// only for cancellation or a failed extraction.
func (e *Engine) ProcessQueues(ctx context.Context, plan Plan) (*Summary, error) {
	summary := &Summary{}
	agg := NewAggregator()

	var active []Queue
	for _, q := range plan.Queues {
		if q == nil || q.Len() == 0 {
			continue
		}
		agg.Register(q.Category(), q.Size(), q.Len())
		active = append(active, q)
	}

	if len(active) == 0 {
		slog.Debug("nothing to download")
		e.complete(summary, agg)
		return summary, nil
	}

	var g errgroup.Group
	for _, q := range active {
		q := q
		g.Go(func() error {
			e.drain(ctx, q, agg, summary)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if !agg.Drained() {
		done, total := agg.Totals()
		slog.Warn("download queues finished below expected total", "done", done, "total", total)
	}

	extracted := e.extractable(plan.Extract, summary)
	if len(extracted) > 0 {
		if err := e.runUnpacker(ctx, extracted); err != nil {
			e.observer.Notify(events.Error(CategoryExtract, err))
			return summary, err
		}
		summary.Extracted = extracted
	}

	e.complete(summary, agg)
	return summary, nil
}

func (e *Engine) complete(summary *Summary, agg *Aggregator) {
	done, total := agg.Totals()
	e.observer.Notify(events.Event{
		Kind:     events.KindComplete,
		Category: events.CategoryPipeline,
		Done:     done,
		Total:    total,
		Status:   summary.Status(),
		Failed:   summary.FailedIDs(""),
	})
}

// extractable drops archives whose download failed.
func (e *Engine) extractable(archives []string, summary *Summary) []string {
	failed := make(map[string]bool)
	for _, f := range summary.Failed {
		failed[f.Path] = true
	}
	out := make([]string, 0, len(archives))
	for _, a := range archives {
		if !failed[a] {
			out = append(out, a)
		}
	}
	return out
}

func (e *Engine) runUnpacker(ctx context.Context, archives []string) error {
	if e.unpacker == nil {
		return &errdefs.SubprocessError{Command: "unpacker", Err: fmt.Errorf("no unpacker configured for %d archives", len(archives))}
	}
	slog.Info("extracting packed libraries", "count", len(archives))
	if err := e.unpacker.Unpack(ctx, archives); err != nil {
		slog.Error("pack.xz extraction failed", "error", err)
		return err
	}
	return nil
}

func (e *Engine) drain(ctx context.Context, q Queue, agg *Aggregator, summary *Summary) {
	category := q.Category()
	limit := e.Limit(category)

	slog.Debug("draining download queue",
		"category", category,
		"items", q.Len(),
		"size", q.Size(),
		"limit", limit)

	// emit serializes counting and notifying so observers see progress in
	// order and the category complete event last.
	var emit sync.Mutex

	var g errgroup.Group
	g.SetLimit(limit)
	for _, job := range q.Jobs() {
		if ctx.Err() != nil {
			break
		}
		job := job
		g.Go(func() error {
			counted := e.process(ctx, category, job, agg, summary)

			emit.Lock()
			defer emit.Unlock()
			done, total, drained := agg.ItemDone(category, counted)
			e.observer.Notify(events.Progress(category, done, total))
			if drained {
				e.observer.Notify(events.Event{
					Kind:     events.KindComplete,
					Category: category,
					Done:     done,
					Total:    total,
					Status:   statusFor(summary, category),
					Failed:   summary.FailedIDs(category),
				})
			}
			return nil
		})
	}
	_ = g.Wait()
}

func statusFor(summary *Summary, category string) events.Status {
	if len(summary.FailedIDs(category)) > 0 {
		return events.StatusPartial
	}
	return events.StatusOK
}

// process fetches one job with retries and returns the byte count to credit
// to progress.
func (e *Engine) process(ctx context.Context, category string, job Job, agg *Aggregator, summary *Summary) int64 {
	a := job.Artifact
	counted := a.Size
	grown := false

	var lastErr error
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * RetryDelay
			slog.Debug("retrying download", "id", a.ID, "attempt", attempt+1, "delay", delay)
			if err := sleep(ctx, delay); err != nil {
				lastErr = err
				break
			}
		}

		res, err := e.fetch(ctx, a)
		if res.contentLength > a.Size && !grown {
			agg.Grow(category, res.contentLength-a.Size)
			counted = res.contentLength
			grown = true
		}
		if res.resized && attempt == 0 {
			summary.recordResized(a.ID)
		}
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		lastErr = e.finish(ctx, job, res)
		if lastErr == nil {
			summary.recordSuccess(res.written)
		}
		break
	}

	if lastErr != nil {
		failure := ItemFailure{Category: category, ID: a.ID, URL: a.URL, Path: a.Path, Err: lastErr}
		summary.recordFailure(failure)
		if ctx.Err() == nil {
			slog.Error("download failed", "category", category, "id", a.ID, "url", a.URL, "error", lastErr)
			e.observer.Notify(events.Error(category, failure))
		}
	}
	return counted
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type fetchResult struct {
	contentLength int64
	resized       bool
	written       int64
}

func (e *Engine) fetch(ctx context.Context, a artifact.Artifact) (fetchResult, error) {
	var res fetchResult

	ctx, cancel := context.WithTimeout(ctx, e.itemTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.URL, nil)
	if err != nil {
		return res, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return res, &errdefs.NetworkError{Op: "download", URL: a.URL, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return res, &errdefs.NetworkError{Op: "download", URL: a.URL, StatusCode: resp.StatusCode}
	}

	if resp.ContentLength >= 0 && resp.ContentLength != a.Size {
		res.contentLength = resp.ContentLength
		res.resized = true
		slog.Debug("content length differs from declared size",
			"id", a.ID,
			"declared", a.Size,
			"content_length", resp.ContentLength)
	}

	n, err := state.AtomicWriteFrom(a.Path, resp.Body, 0644)
	if err != nil {
		if ctx.Err() != nil {
			return res, &errdefs.NetworkError{Op: "download", URL: a.URL, Err: ctx.Err()}
		}
		return res, errdefs.FS("write", a.Path, err)
	}
	res.written = n
	return res, nil
}

// finish runs the completion hook and, for resized items, re-validates the
// written file.
func (e *Engine) finish(ctx context.Context, job Job, res fetchResult) error {
	a := job.Artifact

	if job.OnComplete != nil {
		if err := job.OnComplete(ctx); err != nil {
			return fmt.Errorf("complete %s: %w", a.ID, err)
		}
	}

	if !res.resized || a.Hash == "" || a.IsPacked() {
		return nil
	}

	if integrity.ValidateArtifact(a) {
		slog.Warn("file size differs from declared size but hash is valid",
			"id", a.ID,
			"declared", a.Size,
			"written", res.written)
		return nil
	}

	actual, _ := integrity.HashFile(a.Path, a.Algo)
	err := &errdefs.IntegrityError{Path: a.Path, Algo: string(a.Algo), Expected: a.Hash, Actual: actual}
	slog.Error("downloaded file is corrupt", "id", a.ID, "error", err)
	return err
}

// Categories returns the names of the queues in plan, sorted.
func (p Plan) Categories() []string {
	names := make([]string, 0, len(p.Queues))
	for _, q := range p.Queues {
		if q != nil {
			names = append(names, q.Category())
		}
	}
	sort.Strings(names)
	return names
}
