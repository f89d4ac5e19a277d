// Package metrics holds the Prometheus collectors shared by the fetch and cache layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "teum"

var (
	// NotionRequestsTotal counts calls to the Notion provider by endpoint and outcome
	NotionRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notion_requests_total",
			Help:      "Requests sent to Notion, by endpoint and result.",
		},
		[]string{"endpoint", "result"},
	)

	// ContentFetchesTotal counts per-entry text fetches by outcome
	ContentFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "content_fetches_total",
			Help:      "Entry text fetches, by result (ok, error, inflight, stale).",
		},
		[]string{"result"},
	)

	// ContentChunkSize observes how many ids each batch chunk carried
	ContentChunkSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "content_chunk_size",
			Help:      "Number of ids fetched concurrently per chunk.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	// MetaCacheLookupsTotal counts metadata cache restores by outcome
	MetaCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "meta_cache_lookups_total",
			Help:      "Metadata cache lookups, by result (hit, miss, expired, corrupt).",
		},
		[]string{"result"},
	)
)
