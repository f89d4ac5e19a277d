package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/metrics"
)

// DefaultChunkSize caps how many texts are fetched at once
const DefaultChunkSize = 5

// TextFetcher loads the plain text of one entry
type TextFetcher interface {
	FetchText(ctx context.Context, id string) (string, error)
}

// TextFetcherFunc adapts a function to TextFetcher
type TextFetcherFunc func(ctx context.Context, id string) (string, error)

func (f TextFetcherFunc) FetchText(ctx context.Context, id string) (string, error) {
	return f(ctx, id)
}

// ContentCache memoizes entry texts for the session.
//
// Texts are fetched in chunks: chunks run one after another, ids inside a chunk run
// concurrently. An id already being fetched is skipped rather than fetched twice.
// An empty text is a loaded value, distinct from an id that was never fetched.
type ContentCache struct {
	fetcher   TextFetcher
	chunkSize int

	mu       sync.RWMutex
	content  map[string]string
	inflight map[string]struct{}
}

// ContentOption configures a ContentCache
type ContentOption func(*ContentCache)

// WithChunkSize overrides DefaultChunkSize
func WithChunkSize(n int) ContentOption {
	return func(c *ContentCache) {
		if n > 0 {
			c.chunkSize = n
		}
	}
}

// NewContentCache creates an empty content cache
func NewContentCache(fetcher TextFetcher, opts ...ContentOption) *ContentCache {
	c := &ContentCache{
		fetcher:   fetcher,
		chunkSize: DefaultChunkSize,
		content:   make(map[string]string),
		inflight:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Text returns the cached text of id and whether it has been loaded
func (c *ContentCache) Text(id string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	text, ok := c.content[id]
	return text, ok
}

// Len returns the number of loaded texts
func (c *ContentCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.content)
}

// EnsureContentByIDs fetches the ids that have never been loaded
func (c *ContentCache) EnsureContentByIDs(ctx context.Context, ids []string) {
	c.mu.RLock()
	var need []string
	for _, id := range ids {
		if _, ok := c.content[id]; !ok {
			need = append(need, id)
		}
	}
	c.mu.RUnlock()

	if len(need) == 0 {
		return
	}
	c.FetchBatch(ctx, need)
}

type fetchResult struct {
	id   string
	text string
	ok   bool
}

// FetchBatch fetches the texts of ids chunk by chunk, merging each chunk's results
// as soon as it completes. Failed ids are left unloaded. A cancelled ctx stops
// further chunks and discards the results of the chunk in flight.
func (c *ContentCache) FetchBatch(ctx context.Context, ids []string) {
	for start := 0; start < len(ids); start += c.chunkSize {
		if ctx.Err() != nil {
			return
		}

		end := start + c.chunkSize
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		metrics.ContentChunkSize.Observe(float64(len(chunk)))

		results := make([]fetchResult, len(chunk))
		var g errgroup.Group
		g.SetLimit(c.chunkSize)

		for i, id := range chunk {
			g.Go(func() error {
				results[i] = c.fetchOne(ctx, id)
				return nil // a failed id never fails the chunk
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			metrics.ContentFetchesTotal.WithLabelValues("stale").Add(float64(len(chunk)))
			return
		}
		c.merge(results)
	}
}

func (c *ContentCache) fetchOne(ctx context.Context, id string) fetchResult {
	if !c.claim(id) {
		metrics.ContentFetchesTotal.WithLabelValues("inflight").Inc()
		return fetchResult{id: id}
	}
	defer c.release(id)

	text, err := c.fetcher.FetchText(ctx, id)
	if err != nil {
		metrics.ContentFetchesTotal.WithLabelValues("error").Inc()
		logger.Warn("Failed to fetch entry text", err, logger.Fields{"id": id})
		return fetchResult{id: id}
	}

	metrics.ContentFetchesTotal.WithLabelValues("ok").Inc()
	return fetchResult{id: id, text: text, ok: true}
}

// claim marks id as in flight, reporting false if it already was
func (c *ContentCache) claim(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[id]; busy {
		return false
	}
	c.inflight[id] = struct{}{}
	return true
}

func (c *ContentCache) release(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, id)
}

func (c *ContentCache) merge(results []fetchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, r := range results {
		if r.ok {
			c.content[r.id] = r.text
		}
	}
}
