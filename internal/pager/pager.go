// Package pager implements a wrap-around cursor over a lazily loaded list.
//
// The cursor is stored raw and normalized on read, so repeated Prev calls past
// zero stay well defined. Whenever the cursor gets within one item of the end of
// the loaded window and more items exist, the pager asks for the next window.
package pager

import (
	"strconv"
	"sync"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/storage"
)

// PrefetchStep is how many more items a prefetch asks for
const PrefetchStep = 5

// Options wires a Pager to its list
type Options struct {
	// Total returns the number of items in the list
	Total func() int
	// Loaded returns how many items from the start of the list are loaded
	Loaded func() int
	// EnsureLoaded is asked to load up to want items. It should not block on the
	// pager; callers that need a blocking load wrap it themselves.
	EnsureLoaded func(want int)
	// Store and Key persist the cursor. Both are optional.
	Store storage.Store
	Key   string
}

// Pager is a cursor over [0, total) with wrap-around
type Pager struct {
	opts Options

	mu  sync.Mutex
	raw int
}

// New creates a pager, restoring a persisted cursor when Store and Key are set
func New(opts Options) *Pager {
	if opts.Total == nil {
		opts.Total = func() int { return 0 }
	}
	if opts.Loaded == nil {
		opts.Loaded = opts.Total
	}
	p := &Pager{opts: opts}
	p.raw = p.restore()
	return p
}

// Normalize maps any raw index into [0, total), or 0 for an empty list
func Normalize(idx, total int) int {
	if total <= 0 {
		return 0
	}
	return ((idx % total) + total) % total
}

// Index returns the normalized cursor
func (p *Pager) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Normalize(p.raw, p.opts.Total())
}

// CanShow reports whether the item under the cursor has been loaded
func (p *Pager) CanShow() bool {
	return p.Index() < p.opts.Loaded()
}

// Next moves the cursor forward
func (p *Pager) Next() {
	p.move(1)
}

// Prev moves the cursor back
func (p *Pager) Prev() {
	p.move(-1)
}

// Sync re-runs the prefetch check, for when the list or the loaded window changed
func (p *Pager) Sync() {
	idx := p.Index()
	p.persist(idx)
	p.prefetch(idx)
}

func (p *Pager) move(delta int) {
	p.mu.Lock()
	total := p.opts.Total()
	if total == 0 {
		p.mu.Unlock()
		return
	}
	p.raw += delta
	idx := Normalize(p.raw, total)
	p.mu.Unlock()

	p.persist(idx)
	p.prefetch(idx)
}

func (p *Pager) prefetch(idx int) {
	total := p.opts.Total()
	if total == 0 || p.opts.EnsureLoaded == nil {
		return
	}
	loaded := p.opts.Loaded()

	needMore := loaded-(idx+1) <= 1
	hasMore := loaded < total
	if !needMore || !hasMore {
		return
	}

	want := loaded + PrefetchStep
	if want > total {
		want = total
	}
	p.opts.EnsureLoaded(want)
}

func (p *Pager) restore() int {
	if p.opts.Store == nil || p.opts.Key == "" {
		return 0
	}
	raw, ok, err := p.opts.Store.Get(p.opts.Key)
	if err != nil || !ok {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return n
}

func (p *Pager) persist(idx int) {
	if p.opts.Store == nil || p.opts.Key == "" {
		return
	}
	if err := p.opts.Store.Set(p.opts.Key, strconv.Itoa(idx)); err != nil {
		logger.Debug("Pager cursor write failed", logger.Fields{
			"key":   p.opts.Key,
			"error": err.Error(),
		})
	}
}
