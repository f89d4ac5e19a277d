// Package entries ties the metadata cache, the content cache and the loader
// to one entry source, the way a single screen of the app sees them.
package entries

import (
	"context"
	"sync"
	"time"

	"github.com/takak2166/teum/internal/cache"
	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/pager"
	"github.com/takak2166/teum/internal/storage"
)

// PagerKeyPrefix prefixes the storage key of each surface's cursor
const PagerKeyPrefix = "pager:"

// Source lists entries and fetches their text
type Source interface {
	ListEntryMeta(ctx context.Context) ([]models.EntryMeta, error)
	FetchText(ctx context.Context, id string) (string, error)
}

type options struct {
	metaOpts  []cache.MetaOption
	chunkSize int
}

// Option configures a Session
type Option func(*options)

// WithMetaTTL sets how long the persisted metadata list stays fresh
func WithMetaTTL(ttl time.Duration) Option {
	return func(o *options) {
		o.metaOpts = append(o.metaOpts, cache.WithTTL(ttl))
	}
}

// WithClock replaces time.Now for the metadata cache
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.metaOpts = append(o.metaOpts, cache.WithClock(now))
	}
}

// WithChunkSize sets how many texts are fetched concurrently
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// Session holds the entry list and everything loaded for it
type Session struct {
	source  Source
	store   storage.Store
	meta    *cache.MetaCache
	content *cache.ContentCache
	loader  *cache.Loader

	mu       sync.RWMutex
	list     []models.EntryMeta
	quotes   []models.EntryMeta
	journals []models.EntryMeta
	err      string
	loading  bool
}

// New creates a session reading from source and persisting to store
func New(source Source, store storage.Store, opts ...Option) *Session {
	o := options{chunkSize: cache.DefaultChunkSize}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		source:  source,
		store:   store,
		meta:    cache.NewMetaCache(store, o.metaOpts...),
		content: cache.NewContentCache(cache.TextFetcherFunc(source.FetchText), cache.WithChunkSize(o.chunkSize)),
		loading: true,
	}
	s.loader = cache.NewLoader(s.content, s.List)
	return s
}

// Open restores the cached list, if fresh, and loads the first window of each kind.
// It reports whether a cached list was found.
func (s *Session) Open(ctx context.Context) bool {
	cached := s.meta.Load()
	if cached == nil {
		return false
	}

	s.mu.Lock()
	s.setList(cached)
	s.loading = false
	s.mu.Unlock()

	logger.Debug("Restored cached entries", logger.Fields{"entries": len(cached)})

	s.loader.Prime(ctx)
	return true
}

// Refresh fetches the entry list and replaces the current one.
// On failure the error is recorded and the current list is kept.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	list, err := s.source.ListEntryMeta(ctx)
	if ctx.Err() != nil {
		s.setLoading(false)
		return ctx.Err()
	}
	if err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.loading = false
		s.mu.Unlock()

		logger.Error("Failed to refresh entries", err)
		return err
	}

	s.mu.Lock()
	s.setList(list)
	s.err = ""
	s.loading = false
	s.mu.Unlock()

	s.meta.Save(list)

	logger.Info("Refreshed entries", logger.Fields{
		"entries":  len(list),
		"quotes":   len(s.Quotes()),
		"journals": len(s.Journals()),
	})

	if len(list) > 0 {
		s.loader.Prime(ctx)
	}
	return nil
}

// Start runs Refresh in the background. The channel yields its result and is closed.
func (s *Session) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- s.Refresh(ctx)
	}()
	return done
}

// setList must be called with mu held
func (s *Session) setList(list []models.EntryMeta) {
	s.list = list
	s.quotes = models.FilterByType(list, models.EntryTypeQuote)
	s.journals = models.FilterByType(list, models.EntryTypeJournal)
	models.SortByDateDesc(s.journals)
}

func (s *Session) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// List returns the entries of kind in display order
func (s *Session) List(kind models.EntryType) []models.EntryMeta {
	if kind == models.EntryTypeJournal {
		return s.Journals()
	}
	return s.Quotes()
}

// All returns every entry in source order
func (s *Session) All() []models.EntryMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.list
}

// Quotes returns the quotes in source order
func (s *Session) Quotes() []models.EntryMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.quotes
}

// Journals returns the journals, newest first
func (s *Session) Journals() []models.EntryMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.journals
}

// Favorites returns the liked entries, quotes first
func (s *Session) Favorites(liked func(id string) bool) []models.EntryMeta {
	var out []models.EntryMeta
	for _, list := range [][]models.EntryMeta{s.Quotes(), s.Journals()} {
		for _, m := range list {
			if liked(m.ID) {
				out = append(out, m)
			}
		}
	}
	return out
}

// Find returns the entry with id
func (s *Session) Find(id string) (models.EntryMeta, bool) {
	for _, m := range s.All() {
		if m.ID == id {
			return m, true
		}
	}
	return models.EntryMeta{}, false
}

// Err returns the message of the last failed refresh, or ""
func (s *Session) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Loading reports whether no list is available yet or a refresh is running
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Text returns the loaded text of id. ok is false until it has been fetched.
func (s *Session) Text(id string) (string, bool) {
	return s.content.Text(id)
}

// EnsureContentByIDs fetches the texts of ids that are not loaded yet
func (s *Session) EnsureContentByIDs(ctx context.Context, ids []string) {
	s.content.EnsureContentByIDs(ctx, ids)
}

// EnsureLoaded loads entries of kind up to want
func (s *Session) EnsureLoaded(ctx context.Context, kind models.EntryType, want int) {
	s.loader.EnsureLoaded(ctx, kind, want)
}

// LoadedCount returns how many entries of kind are loaded
func (s *Session) LoadedCount(kind models.EntryType) int {
	return s.loader.LoadedCount(kind)
}

// Pager returns a cursor over the entries of kind, persisted per surface.
// Prefetches run synchronously within ctx.
func (s *Session) Pager(ctx context.Context, kind models.EntryType, surface string) *pager.Pager {
	p := pager.New(pager.Options{
		Total:  func() int { return len(s.List(kind)) },
		Loaded: func() int { return s.LoadedCount(kind) },
		EnsureLoaded: func(want int) {
			s.loader.EnsureLoaded(ctx, kind, want)
		},
		Store: s.store,
		Key:   PagerKeyPrefix + surface,
	})
	p.Sync()
	return p
}
