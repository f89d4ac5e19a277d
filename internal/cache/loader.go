package cache

import (
	"context"
	"sync"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/models"
)

// InitialWindow is how many entries of each kind are loaded as soon as metadata arrives
const InitialWindow = 5

// ListFunc returns the current metadata list of one kind, in display order
type ListFunc func(kind models.EntryType) []models.EntryMeta

// Loader grows the loaded prefix of each kind's list on demand.
// Loaded counts never decrease.
type Loader struct {
	content *ContentCache
	lists   ListFunc

	mu     sync.Mutex
	loaded map[models.EntryType]int
}

// NewLoader creates a loader fetching texts through content
func NewLoader(content *ContentCache, lists ListFunc) *Loader {
	return &Loader{
		content: content,
		lists:   lists,
		loaded:  make(map[models.EntryType]int),
	}
}

// LoadedCount returns how many entries of kind have been loaded
func (l *Loader) LoadedCount(kind models.EntryType) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded[kind]
}

// EnsureLoaded loads entries of kind up to want, bounded by the list length
func (l *Loader) EnsureLoaded(ctx context.Context, kind models.EntryType, want int) {
	already := l.LoadedCount(kind)
	if want <= already {
		return
	}

	list := l.lists(kind)
	next := want
	if next > len(list) {
		next = len(list)
	}
	if next <= already {
		return
	}

	target := models.IDs(list[already:next])
	logger.Debug("Loading entries", logger.Fields{
		"kind": string(kind),
		"from": already,
		"to":   next,
	})

	l.content.FetchBatch(ctx, target)
	if ctx.Err() != nil {
		return
	}

	l.mu.Lock()
	if next > l.loaded[kind] {
		l.loaded[kind] = next
	}
	l.mu.Unlock()
}

// Prime loads the initial window of every kind
func (l *Loader) Prime(ctx context.Context) {
	for _, kind := range models.EntryTypes {
		l.EnsureLoaded(ctx, kind, InitialWindow)
	}
}
