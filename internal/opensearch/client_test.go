package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ca-srg/osrequests/internal/search/envelope"
)

const searchResponse = `{"took":3,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},"hits":{"total":{"value":0,"relation":"eq"},"max_score":null,"hits":[]}}`

func newTestClient(t *testing.T, url string, maxRetries int) (*Client, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	client, err := NewClient(&Config{
		Endpoint:   url,
		Username:   "admin",
		Password:   "secret",
		MaxRetries: maxRetries,
		RetryDelay: time.Millisecond,
	}, zap.New(core))
	require.NoError(t, err)
	return client, logs
}

func TestClientSearch(t *testing.T) {
	var (
		gotPath string
		gotBody map[string]any
		gotUser string
		gotPass string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotUser, gotPass, _ = r.BasicAuth()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 0)
	body := envelope.Body{"query": map[string]any{"match_all": map[string]any{}}, "size": 0}

	raw, err := client.Search(context.Background(), "logs", body)
	require.NoError(t, err)

	assert.JSONEq(t, searchResponse, string(raw))
	assert.Equal(t, "/logs/_search", gotPath)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "secret", gotPass)
	assert.Equal(t, map[string]any{"query": map[string]any{"match_all": map[string]any{}}, "size": float64(0)}, gotBody)
}

func TestClientSearchRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(searchResponse))
	}))
	defer server.Close()

	client, logs := newTestClient(t, server.URL, 3)

	raw, err := client.Search(context.Background(), "logs", envelope.Body{})
	require.NoError(t, err)
	assert.JSONEq(t, searchResponse, string(raw))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 2, logs.FilterMessage("retrying operation").Len())
	assert.Equal(t, 1, logs.FilterMessage("operation succeeded after retries").Len())
}

func TestClientSearchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 2)

	_, err := client.Search(context.Background(), "logs", envelope.Body{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search operation failed after 3 attempts")
	assert.Equal(t, int32(3), calls.Load())

	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, ErrorTypeServer, searchErr.Type)
	assert.Equal(t, "logs", searchErr.Index)
}

func TestClientSearchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"},"status":404}`))
	}))
	defer server.Close()

	client, logs := newTestClient(t, server.URL, 3)

	_, err := client.Search(context.Background(), "missing", envelope.Body{})
	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, ErrorTypeNotFound, searchErr.Type)
	assert.Equal(t, http.StatusNotFound, searchErr.StatusCode)
	assert.Equal(t, "missing", searchErr.Index)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, logs.FilterMessage("operation failed with non-retryable error").Len())
}

func TestClientSearchBadRequestKeepsServerReason(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"type":"parsing_exception","reason":"unknown query [matchh]"}}`))
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 3)

	_, err := client.Search(context.Background(), "logs", envelope.Body{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown query [matchh]")
	assert.Contains(t, err.Error(), "HTTP 400")
}

func TestClientSearchRequiresIndex(t *testing.T) {
	client, _ := newTestClient(t, "http://localhost:9200", 0)

	_, err := client.Search(context.Background(), "", envelope.Body{})
	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, ErrorTypeBadRequest, searchErr.Type)
}

func TestClientSearchHonorsCanceledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := newTestClient(t, server.URL, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Search(ctx, "logs", envelope.Body{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewClientValidatesConfig(t *testing.T) {
	_, err := NewClient(nil, nil)
	require.EqualError(t, err, "config cannot be nil")

	_, err = NewClient(&Config{}, nil)
	require.EqualError(t, err, "endpoint is required")

	_, err = NewClient(&Config{Endpoint: "https://search.example.com"}, nil)
	require.EqualError(t, err, "region is required for SigV4 signing")
}

func TestConfigValidateAppliesDefaults(t *testing.T) {
	cfg := &Config{Endpoint: "http://localhost:9200", Username: "admin", RateLimit: 5000, MaxRetries: -1}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1000.0, cfg.RateLimit)
	assert.Equal(t, 20, cfg.RateBurst)
	assert.Equal(t, 30*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.RetryDelay)
	assert.Equal(t, 100, cfg.MaxConnections)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, 90*time.Second, cfg.IdleConnTimeout)
}
