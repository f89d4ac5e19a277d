package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/takak2166/teum/internal/models"
)

func metaList(kind models.EntryType, n int) []models.EntryMeta {
	list := make([]models.EntryMeta, n)
	for i := range list {
		list[i] = models.EntryMeta{ID: fmt.Sprintf("%s-%d", kind, i), Type: kind}
	}
	return list
}

func newTestLoader(quotes, journals int) (*Loader, *countingFetcher) {
	lists := map[models.EntryType][]models.EntryMeta{
		models.EntryTypeQuote:   metaList(models.EntryTypeQuote, quotes),
		models.EntryTypeJournal: metaList(models.EntryTypeJournal, journals),
	}
	f := &countingFetcher{texts: map[string]string{}}
	for _, list := range lists {
		for _, m := range list {
			f.texts[m.ID] = "text of " + m.ID
		}
	}
	content := NewContentCache(f)
	return NewLoader(content, func(kind models.EntryType) []models.EntryMeta { return lists[kind] }), f
}

func TestEnsureLoadedIsMonotonic(t *testing.T) {
	l, f := newTestLoader(10, 0)
	ctx := context.Background()

	l.EnsureLoaded(ctx, models.EntryTypeQuote, 3)
	l.EnsureLoaded(ctx, models.EntryTypeQuote, 2)

	assert.Equal(t, 3, l.LoadedCount(models.EntryTypeQuote))
	assert.Len(t, f.calls, 3)
}

func TestEnsureLoadedFetchesOnlyTheNewSlice(t *testing.T) {
	l, f := newTestLoader(10, 0)
	ctx := context.Background()

	l.EnsureLoaded(ctx, models.EntryTypeQuote, 3)
	l.EnsureLoaded(ctx, models.EntryTypeQuote, 6)

	assert.Equal(t, 6, l.LoadedCount(models.EntryTypeQuote))
	for id, n := range f.calls {
		assert.Equal(t, 1, n, "id %s fetched more than once", id)
	}
	assert.Equal(t, 1, f.calls["quote-5"])
	assert.Zero(t, f.calls["quote-6"])
}

func TestEnsureLoadedCapsAtListLength(t *testing.T) {
	l, _ := newTestLoader(2, 0)
	ctx := context.Background()

	l.EnsureLoaded(ctx, models.EntryTypeQuote, 50)
	assert.Equal(t, 2, l.LoadedCount(models.EntryTypeQuote))

	l.EnsureLoaded(ctx, models.EntryTypeJournal, 5)
	assert.Equal(t, 0, l.LoadedCount(models.EntryTypeJournal), "empty list stays at zero")
}

func TestPrimeLoadsInitialWindowPerKind(t *testing.T) {
	l, _ := newTestLoader(12, 3)

	l.Prime(context.Background())

	assert.Equal(t, InitialWindow, l.LoadedCount(models.EntryTypeQuote))
	assert.Equal(t, 3, l.LoadedCount(models.EntryTypeJournal))
}

func TestEnsureLoadedStopsOnCancel(t *testing.T) {
	l, _ := newTestLoader(10, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l.EnsureLoaded(ctx, models.EntryTypeQuote, 5)
	assert.Equal(t, 0, l.LoadedCount(models.EntryTypeQuote))
}
