package cache

import (
	"encoding/json"
	"time"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/metrics"
	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/storage"
)

const (
	// MetaCacheKey is the storage key of the persisted metadata list
	MetaCacheKey = "meta_cache_v1"
	// DefaultMetaTTL is how long a persisted metadata list stays usable
	DefaultMetaTTL = 10 * time.Minute
)

type metaPayload struct {
	At   int64               `json:"at"`
	Meta *[]models.EntryMeta `json:"meta"`
}

// MetaCache persists the entry metadata list with a timestamp
type MetaCache struct {
	store storage.Store
	ttl   time.Duration
	now   func() time.Time
}

// MetaOption configures a MetaCache
type MetaOption func(*MetaCache)

// WithTTL overrides DefaultMetaTTL
func WithTTL(ttl time.Duration) MetaOption {
	return func(c *MetaCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) MetaOption {
	return func(c *MetaCache) {
		c.now = now
	}
}

// NewMetaCache creates a metadata cache over store
func NewMetaCache(store storage.Store, opts ...MetaOption) *MetaCache {
	c := &MetaCache{
		store: store,
		ttl:   DefaultMetaTTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load returns the persisted list, or nil when it is missing, malformed or expired
func (c *MetaCache) Load() []models.EntryMeta {
	raw, ok, err := c.store.Get(MetaCacheKey)
	if err != nil {
		logger.Debug("Metadata cache read failed", logger.Fields{"error": err.Error()})
		metrics.MetaCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}
	if !ok || raw == "" {
		metrics.MetaCacheLookupsTotal.WithLabelValues("miss").Inc()
		return nil
	}

	var p metaPayload
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.At == 0 || p.Meta == nil {
		metrics.MetaCacheLookupsTotal.WithLabelValues("corrupt").Inc()
		return nil
	}

	age := c.now().Sub(time.UnixMilli(p.At))
	if age > c.ttl {
		metrics.MetaCacheLookupsTotal.WithLabelValues("expired").Inc()
		return nil
	}

	metrics.MetaCacheLookupsTotal.WithLabelValues("hit").Inc()
	return *p.Meta
}

// Save persists list with the current time. Failures are logged and dropped.
func (c *MetaCache) Save(list []models.EntryMeta) {
	if list == nil {
		list = []models.EntryMeta{}
	}
	data, err := json.Marshal(metaPayload{At: c.now().UnixMilli(), Meta: &list})
	if err != nil {
		logger.Debug("Metadata cache encode failed", logger.Fields{"error": err.Error()})
		return
	}
	if err := c.store.Set(MetaCacheKey, string(data)); err != nil {
		logger.Debug("Metadata cache write failed", logger.Fields{"error": err.Error()})
	}
}

// Clear drops the persisted list
func (c *MetaCache) Clear() {
	if err := c.store.Remove(MetaCacheKey); err != nil {
		logger.Debug("Metadata cache remove failed", logger.Fields{"error": err.Error()})
	}
}
