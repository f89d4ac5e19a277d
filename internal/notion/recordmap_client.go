package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/takak2166/teum/internal/logger"
	"github.com/takak2166/teum/internal/metrics"
	"github.com/takak2166/teum/internal/models"
	"github.com/takak2166/teum/internal/parser"
)

const (
	// pages larger than this many chunks are truncated
	maxPageChunks  = 10
	pageChunkLimit = 100
	// rows returned per collection view query
	collectionQueryLimit = 999
)

// StatusError is a non-2xx response from Notion
type StatusError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("notion %s failed: status %d: %s", e.Endpoint, e.Status, e.Body)
}

// RecordMapClient fetches record maps from Notion's internal v3 API, the same
// endpoints the web app uses to render public pages.
type RecordMapClient struct {
	http          *resty.Client
	limiter       *rate.Limiter
	maxAttempts   int
	retryInterval time.Duration
}

// ClientOption configures a RecordMapClient
type ClientOption func(*RecordMapClient)

// WithTimeout bounds every HTTP request
func WithTimeout(d time.Duration) ClientOption {
	return func(c *RecordMapClient) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithRateLimit caps requests per second. Zero or less disables the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *RecordMapClient) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithMaxAttempts sets how many times a failing request is tried
func WithMaxAttempts(n int) ClientOption {
	return func(c *RecordMapClient) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithRetryInterval sets the first backoff interval between attempts
func WithRetryInterval(d time.Duration) ClientOption {
	return func(c *RecordMapClient) {
		if d > 0 {
			c.retryInterval = d
		}
	}
}

// WithAuthToken sends a token_v2 cookie so private pages can be read
func WithAuthToken(token string) ClientOption {
	return func(c *RecordMapClient) {
		if token != "" {
			c.http.SetCookie(&http.Cookie{Name: "token_v2", Value: token})
		}
	}
}

// NewRecordMapClient creates a client for the API rooted at baseURL
func NewRecordMapClient(baseURL string, opts ...ClientOption) *RecordMapClient {
	c := &RecordMapClient{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Content-Type", "application/json").
			SetTimeout(30 * time.Second),
		limiter:       rate.NewLimiter(rate.Inf, 1),
		maxAttempts:   3,
		retryInterval: time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chunkCursor struct {
	Stack []json.RawMessage `json:"stack"`
}

type loadPageChunkRequest struct {
	PageID          string      `json:"pageId"`
	Limit           int         `json:"limit"`
	Cursor          chunkCursor `json:"cursor"`
	ChunkNumber     int         `json:"chunkNumber"`
	VerticalColumns bool        `json:"verticalColumns"`
}

type loadPageChunkResponse struct {
	RecordMap *models.RecordMap `json:"recordMap"`
	Cursor    chunkCursor       `json:"cursor"`
}

type idRef struct {
	ID string `json:"id"`
}

type reducer struct {
	Type  string `json:"type"`
	Limit int    `json:"limit"`
}

type queryLoader struct {
	Type         string             `json:"type"`
	Reducers     map[string]reducer `json:"reducers"`
	SearchQuery  string             `json:"searchQuery"`
	UserTimeZone string             `json:"userTimeZone"`
}

type queryCollectionRequest struct {
	Collection     idRef       `json:"collection"`
	CollectionView idRef       `json:"collectionView"`
	Loader         queryLoader `json:"loader"`
}

type queryCollectionResponse struct {
	Result *struct {
		ReducerResults json.RawMessage `json:"reducerResults"`
	} `json:"result"`
	RecordMap *models.RecordMap `json:"recordMap"`
}

// GetRecordMap loads the page identified by id, following chunk cursors and
// running every collection view it embeds
func (c *RecordMapClient) GetRecordMap(ctx context.Context, id string) (*models.RecordMap, error) {
	pageID := parser.NormalizeID(id)
	logger.Debug("Loading record map", logger.Fields{"page_id": pageID})

	rm := &models.RecordMap{Block: map[string]json.RawMessage{}}
	cursor := chunkCursor{Stack: []json.RawMessage{}}

	for chunk := 0; chunk < maxPageChunks; chunk++ {
		req := loadPageChunkRequest{
			PageID:      pageID,
			Limit:       pageChunkLimit,
			Cursor:      cursor,
			ChunkNumber: chunk,
		}

		var resp loadPageChunkResponse
		if err := c.post(ctx, "loadPageChunk", req, &resp); err != nil {
			return nil, err
		}
		if resp.RecordMap == nil {
			return nil, fmt.Errorf("%w: loadPageChunk returned no recordMap", ErrMalformedResponse)
		}
		rm.Merge(resp.RecordMap)

		if len(resp.Cursor.Stack) == 0 {
			break
		}
		cursor = resp.Cursor
	}

	if err := c.loadCollections(ctx, rm); err != nil {
		return nil, err
	}
	return rm, nil
}

// loadCollections fills collection_query for every collection view block
func (c *RecordMapClient) loadCollections(ctx context.Context, rm *models.RecordMap) error {
	type viewRef struct{ collectionID, viewID string }

	var views []viewRef
	seen := make(map[viewRef]bool)
	for _, id := range sortedBlockIDs(rm) {
		block, ok := parser.ResolveBlock(rm, id)
		if !ok || !block.IsCollectionView() {
			continue
		}
		collectionID := block.CollectionID
		if collectionID == "" && block.Format != nil && block.Format.CollectionPointer != nil {
			collectionID = block.Format.CollectionPointer.ID
		}
		if collectionID == "" {
			continue
		}
		for _, viewID := range block.ViewIDs {
			ref := viewRef{collectionID, viewID}
			if !seen[ref] {
				seen[ref] = true
				views = append(views, ref)
			}
		}
	}

	for _, v := range views {
		req := queryCollectionRequest{
			Collection:     idRef{ID: v.collectionID},
			CollectionView: idRef{ID: v.viewID},
			Loader: queryLoader{
				Type: "reducer",
				Reducers: map[string]reducer{
					"collection_group_results": {Type: "results", Limit: collectionQueryLimit},
				},
				UserTimeZone: "UTC",
			},
		}

		var resp queryCollectionResponse
		if err := c.post(ctx, "queryCollection", req, &resp); err != nil {
			return err
		}
		if resp.Result == nil {
			return fmt.Errorf("%w: queryCollection returned no result", ErrMalformedResponse)
		}
		rm.SetQueryResult(v.collectionID, v.viewID, resp.Result.ReducerResults)
		rm.Merge(resp.RecordMap)
	}
	return nil
}

// post sends one request, retrying transport errors and 5xx/429 responses
func (c *RecordMapClient) post(ctx context.Context, endpoint string, body, out interface{}) error {
	op := func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			Post("/" + endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return fmt.Errorf("failed to call %s: %w", endpoint, err)
		}

		if resp.IsError() {
			statusErr := &StatusError{Endpoint: endpoint, Status: resp.StatusCode(), Body: truncate(resp.String(), 200)}
			if resp.StatusCode() < 500 && resp.StatusCode() != http.StatusTooManyRequests {
				return backoff.Permanent(statusErr)
			}
			return statusErr
		}

		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: %s: %v", ErrMalformedResponse, endpoint, err))
		}
		return nil
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = c.retryInterval
	exp.Multiplier = 2
	exp.Reset()

	attempts := 0
	err := backoff.RetryNotify(op,
		backoff.WithContext(backoff.WithMaxRetries(exp, uint64(c.maxAttempts-1)), ctx),
		func(err error, wait time.Duration) {
			attempts++
			logger.Warn("Retrying Notion request", err, logger.Fields{
				"endpoint": endpoint,
				"attempt":  attempts,
				"wait":     wait.String(),
			})
		})
	if err != nil {
		metrics.NotionRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return err
	}

	metrics.NotionRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

func sortedBlockIDs(rm *models.RecordMap) []string {
	ids := make([]string, 0, len(rm.Block))
	for id := range rm.Block {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
