package search

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ca-srg/osrequests/internal/search/aggregation"
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
	"github.com/ca-srg/osrequests/internal/search/result"
)

const okResponse = `{"took":4,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},
	"hits":{"total":{"value":1,"relation":"eq"},"max_score":1.0,"hits":[{"_index":"books","_id":"1","_score":1.0}]}}`

type recordingSearcher struct {
	calls atomic.Int32
	index string
	body  envelope.Body
	reply string
	err   error
}

func (s *recordingSearcher) Search(_ context.Context, index string, body envelope.Body) ([]byte, error) {
	s.calls.Add(1)
	s.index = index
	s.body = body
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.reply), nil
}

func newTerm(t *testing.T) *query.Term {
	t.Helper()
	q, err := query.NewTerm("status", "active", options.WithSize(1))
	require.NoError(t, err)
	return q
}

func TestExecute_CapabilityCheckedBeforeAnythingElse(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)

	var nilSearcher *recordingSearcher
	var nilFunc SearcherFunc

	for name, s := range map[string]Searcher{
		"untyped nil": nil,
		"typed nil":   nilSearcher,
		"nil func":    nilFunc,
	} {
		t.Run(name, func(t *testing.T) {
			res, err := Execute(context.Background(), s, "books", newTerm(t), WithLogger(logger))
			assert.Nil(t, res)
			require.ErrorIs(t, err, ErrCapability)
			var cerr *CapabilityError
			require.ErrorAs(t, err, &cerr)
		})
	}
	assert.Zero(t, logs.Len())
}

func TestExecutor_Query(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	s := &recordingSearcher{reply: okResponse}
	e, err := NewExecutor(s, WithLogger(zap.New(core)))
	require.NoError(t, err)

	res, err := e.Query(context.Background(), "books", newTerm(t))
	require.NoError(t, err)

	assert.Equal(t, "books", s.index)
	assert.Equal(t, envelope.Body{
		"query": map[string]any{"term": map[string]any{"status": "active"}},
		"size":  1,
	}, s.body)
	assert.Equal(t, int64(4), res.Took)
	assert.Equal(t, 1, res.Hits.Len())

	require.Equal(t, 2, logs.Len())
	debug := logs.FilterMessage("search request").All()
	require.Len(t, debug, 1)
	assert.Equal(t, `{"query":{"term":{"status":"active"}},"size":1}`, debug[0].ContextMap()["body"])
	assert.Equal(t, "books", debug[0].ContextMap()["index"])
	assert.Equal(t, 1, logs.FilterMessage("search completed").Len())
}

func TestExecutor_Aggregate(t *testing.T) {
	s := &recordingSearcher{reply: `{"took":1,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0},"aggregations":{"total_price":{"value":42.5}}}`}
	e, err := NewExecutor(s)
	require.NoError(t, err)

	sum, err := aggregation.NewSum("total_price", "price", options.WithSize(0))
	require.NoError(t, err)
	res, err := e.Aggregate(context.Background(), "orders", sum)
	require.NoError(t, err)

	assert.Equal(t, envelope.Body{
		"aggs": map[string]any{"total_price": map[string]any{"sum": map[string]any{"field": "price"}}},
		"size": 0,
	}, s.body)
	agg, ok := res.Aggregation("total_price")
	require.True(t, ok)
	assert.Equal(t, 42.5, agg.Value)
	assert.Nil(t, res.Hits)
}

func TestExecutor_Errors(t *testing.T) {
	boom := errors.New("connection refused")
	s := &recordingSearcher{err: boom}
	e, err := NewExecutor(s)
	require.NoError(t, err)

	_, err = e.Do(context.Background(), "books", newTerm(t))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), s.calls.Load())

	_, err = e.Do(context.Background(), "", newTerm(t))
	assert.ErrorIs(t, err, options.ErrValidation)
	_, err = e.Do(context.Background(), "books", nil)
	assert.ErrorIs(t, err, options.ErrValidation)

	base, err := query.NewBase("custom")
	require.NoError(t, err)
	_, err = e.Do(context.Background(), "books", base)
	assert.ErrorIs(t, err, envelope.ErrUnimplementedRender)
	assert.Equal(t, int32(1), s.calls.Load())

	s.err = nil
	s.reply = `{"took":1}`
	_, err = e.Do(context.Background(), "books", newTerm(t))
	assert.ErrorIs(t, err, result.ErrSchema)
}

func TestExecutor_DoAllKeepsOrder(t *testing.T) {
	s := SearcherFunc(func(_ context.Context, index string, _ envelope.Body) ([]byte, error) {
		if index == "broken" {
			return nil, errors.New("index_not_found_exception")
		}
		return []byte(`{"took":` + map[string]string{"a": "1", "b": "2", "c": "3"}[index] +
			`,"timed_out":false,"_shards":{"total":1,"successful":1,"skipped":0,"failed":0}}`), nil
	})
	e, err := NewExecutor(s, WithConcurrency(2))
	require.NoError(t, err)

	all, err := query.NewMatchAll()
	require.NoError(t, err)
	results, err := e.DoAll(context.Background(),
		Job{Index: "a", Request: all},
		Job{Index: "b", Request: all},
		Job{Index: "c", Request: all},
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, want := range []int64{1, 2, 3} {
		assert.Equal(t, want, results[i].Took)
	}

	_, err = e.DoAll(context.Background(), Job{Index: "a", Request: all}, Job{Index: "broken", Request: all})
	assert.ErrorContains(t, err, "job 1")
	assert.ErrorContains(t, err, "index_not_found_exception")
}

func TestExecutor_RecordsMetrics(t *testing.T) {
	reader := metric.NewManualReader()
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	s := &recordingSearcher{reply: okResponse}
	e, err := NewExecutor(s, WithMeter(provider.Meter("test")))
	require.NoError(t, err)

	_, err = e.Query(context.Background(), "books", newTerm(t))
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, m := range rm.ScopeMetrics[0].Metrics {
		names[m.Name] = true
		if m.Name == "osrequests.search.requests" {
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			require.Len(t, sum.DataPoints, 1)
			assert.Equal(t, int64(1), sum.DataPoints[0].Value)
			outcome, _ := sum.DataPoints[0].Attributes.Value("outcome")
			assert.Equal(t, "success", outcome.AsString())
			kind, _ := sum.DataPoints[0].Attributes.Value("kind")
			assert.Equal(t, "term", kind.AsString())
		}
	}
	assert.True(t, names["osrequests.search.requests"])
	assert.True(t, names["osrequests.search.duration"])
}

type memRecorder struct {
	kinds    []string
	outcomes []string
	err      error
}

func (r *memRecorder) RecordSearch(_ context.Context, kind, _ string, outcome string, _ time.Duration) error {
	r.kinds = append(r.kinds, kind)
	r.outcomes = append(r.outcomes, outcome)
	return r.err
}

func TestExecutor_RecordsHistory(t *testing.T) {
	rec := &memRecorder{}
	s := &recordingSearcher{reply: okResponse}
	e, err := NewExecutor(s, WithRecorder(rec))
	require.NoError(t, err)

	_, err = e.Query(context.Background(), "books", newTerm(t))
	require.NoError(t, err)

	s.err = errors.New("boom")
	_, err = e.Query(context.Background(), "books", newTerm(t))
	require.Error(t, err)

	assert.Equal(t, []string{"term", "term"}, rec.kinds)
	assert.Equal(t, []string{"success", "error"}, rec.outcomes)
}

func TestExecutor_RecorderFailureDoesNotFailSearch(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	rec := &memRecorder{err: errors.New("disk full")}
	e, err := NewExecutor(&recordingSearcher{reply: okResponse}, WithRecorder(rec), WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = e.Query(context.Background(), "books", newTerm(t))
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("failed to record search").Len())
}
