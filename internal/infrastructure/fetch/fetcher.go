package fetch

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"NewsLens/internal/domain"
	"NewsLens/internal/ports"
)

// Options bounds the concurrent fetch stage.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Retries     int
	RetryBase   time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = 5
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.RetryBase <= 0 {
		o.RetryBase = 500 * time.Millisecond
	}
	return o
}

// SourceFetcher runs per-source fetches through a bounded worker pool
// and normalizes the results. Each source fails independently: one bad
// feed is reported in the result, never raised across sources.
type SourceFetcher struct {
	registry   *TransportRegistry
	normalizer *Normalizer
	opts       Options
	logger     *slog.Logger
}

var _ ports.DraftFetcher = (*SourceFetcher)(nil)

// NewSourceFetcher wires the transport registry and normalizer.
func NewSourceFetcher(registry *TransportRegistry, normalizer *Normalizer, opts Options, logger *slog.Logger) *SourceFetcher {
	return &SourceFetcher{
		registry:   registry,
		normalizer: normalizer,
		opts:       opts.withDefaults(),
		logger:     logger,
	}
}

type sourceOutcome struct {
	sourceID string
	drafts   []domain.Article
	dropped  int
	err      error
}

// FetchAll pulls every source concurrently and collects per-source
// outcomes. Drafts are returned sorted by (PublishedAt, ID) so the
// result is independent of goroutine completion order.
func (f *SourceFetcher) FetchAll(ctx context.Context, sources []domain.Source, now time.Time) ports.FetchResult {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, f.opts.Concurrency)
		outcomes = make([]sourceOutcome, 0, len(sources))
	)

	for _, src := range sources {
		wg.Add(1)
		sem <- struct{}{}
		go func(src domain.Source) {
			defer wg.Done()
			defer func() { <-sem }()

			outcome := f.fetchSource(ctx, src, now)

			mu.Lock()
			outcomes = append(outcomes, outcome)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	var result ports.FetchResult
	for _, o := range outcomes {
		if o.err != nil {
			result.Failures = append(result.Failures, domain.SourceFailure{
				SourceID: o.sourceID,
				Reason:   o.err.Error(),
			})
			continue
		}
		result.Drafts = append(result.Drafts, o.drafts...)
		result.Dropped += o.dropped
	}

	sort.Slice(result.Drafts, func(i, j int) bool {
		if !result.Drafts[i].PublishedAt.Equal(result.Drafts[j].PublishedAt) {
			return result.Drafts[i].PublishedAt.Before(result.Drafts[j].PublishedAt)
		}
		return result.Drafts[i].ID < result.Drafts[j].ID
	})
	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].SourceID < result.Failures[j].SourceID
	})

	return result
}

// fetchSource runs one source's fetch with timeout and bounded
// exponential-backoff retries. A cancelled or failed fetch admits no
// partial drafts.
func (f *SourceFetcher) fetchSource(ctx context.Context, src domain.Source, now time.Time) sourceOutcome {
	transport, err := f.registry.Resolve(src.Kind)
	if err != nil {
		return sourceOutcome{sourceID: src.ID, err: &domain.FetchError{SourceID: src.ID, Err: err}}
	}

	var items []domain.RawItem
	var lastErr error
	for attempt := 0; attempt < f.opts.Retries; attempt++ {
		if attempt > 0 {
			backoff := f.opts.RetryBase << (attempt - 1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return sourceOutcome{sourceID: src.ID, err: &domain.FetchError{SourceID: src.ID, Err: ctx.Err()}}
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
		items, lastErr = transport.Fetch(attemptCtx, src)
		cancel()
		if lastErr == nil {
			break
		}
		f.debug("fetch attempt failed", "source", src.ID, "attempt", attempt+1, "error", lastErr)
	}
	if lastErr != nil {
		return sourceOutcome{sourceID: src.ID, err: &domain.FetchError{SourceID: src.ID, Err: lastErr}}
	}

	outcome := sourceOutcome{sourceID: src.ID}
	for _, item := range items {
		draft, err := f.normalizer.Normalize(src, item, now)
		if err != nil {
			var parseErr *domain.ParseError
			if errors.As(err, &parseErr) {
				outcome.dropped++
				f.warn("dropping unparseable item", "source", src.ID, "guid", parseErr.GUID, "field", parseErr.Field)
				continue
			}
			outcome.dropped++
			f.warn("dropping item", "source", src.ID, "error", err)
			continue
		}
		outcome.drafts = append(outcome.drafts, draft)
	}

	f.debug("source fetched", "source", src.ID, "items", len(items), "drafts", len(outcome.drafts), "dropped", outcome.dropped)
	return outcome
}

func (f *SourceFetcher) debug(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}

func (f *SourceFetcher) warn(msg string, args ...interface{}) {
	if f.logger != nil {
		f.logger.Warn(msg, args...)
	}
}
