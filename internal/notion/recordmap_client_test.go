package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testTableID   = "0123456789abcdef0123456789abcdef"
	testTableUUID = "01234567-89ab-cdef-0123-456789abcdef"
)

const firstChunk = `{
	"recordMap": {
		"block": {
			"01234567-89ab-cdef-0123-456789abcdef": {
				"value": {
					"id": "01234567-89ab-cdef-0123-456789abcdef",
					"type": "collection_view_page",
					"collection_id": "c1",
					"view_ids": ["v1"]
				}
			}
		}
	},
	"cursor": {"stack": [[{"table": "block", "id": "x", "index": 0}]]}
}`

const secondChunk = `{
	"recordMap": {
		"block": {
			"r1": {"value": {"id": "r1", "type": "page", "properties": {"title": [["First"]], "K1": [["Journal"]]}}}
		},
		"collection": {
			"c1": {"value": {"id": "c1", "schema": {
				"title": {"name": "Name", "type": "title"},
				"K1": {"name": "Type", "type": "select"}
			}}}
		}
	},
	"cursor": {"stack": []}
}`

const collectionResult = `{
	"result": {
		"type": "reducer",
		"reducerResults": {"collection_group_results": {"type": "results", "blockIds": ["r1", "r2"]}}
	},
	"recordMap": {
		"block": {
			"r2": {"value": {"id": "r2", "type": "page", "properties": {"title": [["Second"]]}}}
		}
	}
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *RecordMapClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]ClientOption{WithRetryInterval(time.Millisecond)}, opts...)
	return NewRecordMapClient(srv.URL+"/api/v3/", opts...)
}

func TestGetRecordMap(t *testing.T) {
	var chunks, queries int32

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/loadPageChunk":
			var req loadPageChunkRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, testTableUUID, req.PageID)
			atomic.AddInt32(&chunks, 1)

			if req.ChunkNumber == 0 {
				assert.Empty(t, req.Cursor.Stack)
				w.Write([]byte(firstChunk))
				return
			}
			assert.Equal(t, 1, req.ChunkNumber)
			assert.Len(t, req.Cursor.Stack, 1)
			w.Write([]byte(secondChunk))
		case "/api/v3/queryCollection":
			atomic.AddInt32(&queries, 1)
			var req queryCollectionRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "c1", req.Collection.ID)
			assert.Equal(t, "v1", req.CollectionView.ID)
			assert.Equal(t, "reducer", req.Loader.Type)
			w.Write([]byte(collectionResult))
		default:
			http.NotFound(w, r)
		}
	})

	rm, err := client.GetRecordMap(context.Background(), testTableID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, chunks)
	assert.EqualValues(t, 1, queries)
	assert.Len(t, rm.Block, 3)
	assert.Contains(t, rm.CollectionQuery["c1"], "v1")

	rows, err := NewRecordMapSource(client).Rows(context.Background(), testTableID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "r1", rows[0].ID)
	assert.Equal(t, "Journal", rows[0].Type)
	assert.Equal(t, "Second", rows[1].PageTitle)
	assert.Equal(t, "quote", rows[1].Type)
}

func TestGetRecordMapCollectionPointer(t *testing.T) {
	var queried string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v3/loadPageChunk":
			w.Write([]byte(`{"recordMap": {"block": {
				"page": {"value": {"id": "page", "type": "collection_view", "view_ids": ["v1", "v1"],
					"format": {"collection_pointer": {"id": "c9", "table": "collection"}}}}
			}}, "cursor": {"stack": []}}`))
		case "/api/v3/queryCollection":
			var req queryCollectionRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			queried += req.Collection.ID + "/" + req.CollectionView.ID + ";"
			w.Write([]byte(`{"result": {"reducerResults": {}}, "recordMap": {"block": {}}}`))
		}
	})

	_, err := client.GetRecordMap(context.Background(), "page")
	require.NoError(t, err)
	assert.Equal(t, "c9/v1;", queried)
}

func TestPostRetries(t *testing.T) {
	tests := []struct {
		name      string
		responses []int
		body      string
		wantCalls int32
		wantErr   error
		status    int
	}{
		{
			name:      "Recovers after server error",
			responses: []int{http.StatusInternalServerError, http.StatusOK},
			body:      `{"recordMap": {"block": {}}, "cursor": {"stack": []}}`,
			wantCalls: 2,
		},
		{
			name:      "Retries rate limiting",
			responses: []int{http.StatusTooManyRequests, http.StatusTooManyRequests, http.StatusOK},
			body:      `{"recordMap": {"block": {}}, "cursor": {"stack": []}}`,
			wantCalls: 3,
		},
		{
			name:      "Gives up after max attempts",
			responses: []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusOK},
			wantCalls: 3,
			status:    http.StatusBadGateway,
		},
		{
			name:      "Client error is permanent",
			responses: []int{http.StatusNotFound, http.StatusOK},
			wantCalls: 1,
			status:    http.StatusNotFound,
		},
		{
			name:      "Malformed body is permanent",
			responses: []int{http.StatusOK, http.StatusOK},
			body:      `<html>`,
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
		{
			name:      "Missing record map",
			responses: []int{http.StatusOK},
			body:      `{"cursor": {"stack": []}}`,
			wantCalls: 1,
			wantErr:   ErrMalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				code := tt.responses[int(n)-1]
				w.WriteHeader(code)
				if code == http.StatusOK {
					w.Write([]byte(tt.body))
				}
			}, WithMaxAttempts(3))

			_, err := client.GetRecordMap(context.Background(), "page")
			assert.Equal(t, tt.wantCalls, atomic.LoadInt32(&calls))

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.status != 0:
				var statusErr *StatusError
				require.True(t, errors.As(err, &statusErr), "got %v", err)
				assert.Equal(t, tt.status, statusErr.Status)
				assert.Equal(t, "loadPageChunk", statusErr.Endpoint)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestGetRecordMapCancelled(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetRecordMap(ctx, "page")
	assert.Error(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestWithAuthToken(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie("token_v2")
		if err != nil || cookie.Value != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"recordMap": {"block": {}}, "cursor": {"stack": []}}`))
	}, WithAuthToken("secret"))

	_, err := client.GetRecordMap(context.Background(), "page")
	assert.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 3))
	assert.Equal(t, "ab...", truncate("abc", 2))
}
