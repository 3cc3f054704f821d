// Package search executes built requests through a Searcher and parses the
// responses.
package search

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ca-srg/osrequests/internal/search/aggregation"
	"github.com/ca-srg/osrequests/internal/search/envelope"
	"github.com/ca-srg/osrequests/internal/search/options"
	"github.com/ca-srg/osrequests/internal/search/query"
	"github.com/ca-srg/osrequests/internal/search/result"
)

const instrumentationName = "osrequests/search"

// Searcher runs one search against an index and returns the raw response.
// Transport, retries and authentication are the implementation's concern.
type Searcher interface {
	Search(ctx context.Context, index string, body envelope.Body) ([]byte, error)
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, index string, body envelope.Body) ([]byte, error)

func (f SearcherFunc) Search(ctx context.Context, index string, body envelope.Body) ([]byte, error) {
	return f(ctx, index, body)
}

// Request is anything that renders a complete request body: every query and
// aggregation node.
type Request interface {
	Body() (envelope.Body, error)
}

// Job pairs a request with the index it runs against.
type Job struct {
	Index   string
	Request Request
}

// Recorder keeps a history of executed searches.
type Recorder interface {
	RecordSearch(ctx context.Context, kind, index, outcome string, elapsed time.Duration) error
}

// Executor sends requests through a Searcher.
type Executor struct {
	searcher    Searcher
	recorder    Recorder
	logger      *zap.Logger
	tracer      trace.Tracer
	requests    metric.Int64Counter
	duration    metric.Float64Histogram
	concurrency int
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger logs request bodies at debug level and outcomes at info level.
func WithLogger(l *zap.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Executor) {
		if t != nil {
			e.tracer = t
		}
	}
}

// WithMeter records a request counter and a latency histogram.
func WithMeter(m metric.Meter) Option {
	return func(e *Executor) {
		if m == nil {
			return
		}
		if c, err := m.Int64Counter(
			"osrequests.search.requests",
			metric.WithDescription("Searches executed, by kind and outcome"),
			metric.WithUnit("{requests}"),
		); err == nil {
			e.requests = c
		}
		if h, err := m.Float64Histogram(
			"osrequests.search.duration",
			metric.WithDescription("Round trip time of a search including response parsing"),
			metric.WithUnit("ms"),
		); err == nil {
			e.duration = h
		}
	}
}

// WithRecorder records every search outcome in r. Recording failures are
// logged and never fail the search.
func WithRecorder(r Recorder) Option {
	return func(e *Executor) { e.recorder = r }
}

// WithConcurrency caps how many searches DoAll runs at once. n <= 0 means no cap.
func WithConcurrency(n int) Option {
	return func(e *Executor) { e.concurrency = n }
}

// NewExecutor checks that s can run searches and returns an Executor using it.
func NewExecutor(s Searcher, opts ...Option) (*Executor, error) {
	if err := checkCapability(s); err != nil {
		return nil, err
	}
	e := &Executor{
		searcher: s,
		logger:   zap.NewNop(),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.requests == nil || e.duration == nil {
		WithMeter(otel.Meter(instrumentationName))(e)
	}
	return e, nil
}

// Execute runs req against index with a one-off Executor. The searcher is
// checked before the body is rendered.
func Execute(ctx context.Context, s Searcher, index string, req Request, opts ...Option) (*result.Result, error) {
	e, err := NewExecutor(s, opts...)
	if err != nil {
		return nil, err
	}
	return e.Do(ctx, index, req)
}

func checkCapability(s Searcher) error {
	if s == nil {
		return &CapabilityError{Searcher: "<nil>", Reason: "no searcher supplied"}
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Chan, reflect.Interface:
		if v.IsNil() {
			return &CapabilityError{Searcher: fmt.Sprintf("%T", s), Reason: "searcher is nil"}
		}
	}
	return nil
}

// Do renders req, runs it against index and parses the response.
func (e *Executor) Do(ctx context.Context, index string, req Request) (*result.Result, error) {
	if e == nil {
		return nil, &CapabilityError{Searcher: "<nil>", Reason: "executor is nil"}
	}
	if err := checkCapability(e.searcher); err != nil {
		return nil, err
	}
	if index == "" {
		return nil, options.Invalid("search", "index", "is required")
	}
	if req == nil {
		return nil, options.Invalid("search", "request", "is required")
	}

	requestID := uuid.NewString()
	kind := kindOf(req)
	ctx, span := e.tracer.Start(ctx, "search.execute", trace.WithAttributes(
		attribute.String("search.request_id", requestID),
		attribute.String("search.index", index),
		attribute.String("search.kind", kind),
	))
	defer span.End()

	start := time.Now()
	res, err := e.do(ctx, requestID, index, req)
	elapsed := time.Since(start)

	outcome := "success"
	if err != nil {
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, "search_failed")
		e.logger.Info("search failed",
			zap.String("request_id", requestID),
			zap.String("index", index),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	} else {
		span.SetAttributes(
			attribute.Int64("search.took_ms", res.Took),
			attribute.Int("search.hits", res.Hits.Len()),
		)
		e.logger.Info("search completed",
			zap.String("request_id", requestID),
			zap.String("index", index),
			zap.Int64("took_ms", res.Took),
			zap.Int("hits", res.Hits.Len()),
			zap.Int("aggregations", len(res.Aggregations)),
			zap.Duration("elapsed", elapsed),
		)
	}

	attrs := metric.WithAttributes(
		attribute.String("kind", kind),
		attribute.String("outcome", outcome),
	)
	e.requests.Add(ctx, 1, attrs)
	e.duration.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)

	if e.recorder != nil {
		if rerr := e.recorder.RecordSearch(context.WithoutCancel(ctx), kind, index, outcome, elapsed); rerr != nil {
			e.logger.Warn("failed to record search",
				zap.String("request_id", requestID),
				zap.Error(rerr),
			)
		}
	}

	return res, err
}

func (e *Executor) do(ctx context.Context, requestID, index string, req Request) (*result.Result, error) {
	body, err := req.Body()
	if err != nil {
		return nil, err
	}
	if ce := e.logger.Check(zap.DebugLevel, "search request"); ce != nil {
		js, err := body.JSON()
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		ce.Write(
			zap.String("request_id", requestID),
			zap.String("index", index),
			zap.ByteString("body", js),
		)
	}

	raw, err := e.searcher.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("search on index %s failed: %w", index, err)
	}
	return result.Parse(raw)
}

// Query runs a query node against index.
func (e *Executor) Query(ctx context.Context, index string, q query.Query) (*result.Result, error) {
	if q == nil {
		return nil, options.Invalid("search", "query", "is required")
	}
	return e.Do(ctx, index, q)
}

// Aggregate runs an aggregation node against index.
func (e *Executor) Aggregate(ctx context.Context, index string, a aggregation.Aggregation) (*result.Result, error) {
	if a == nil {
		return nil, options.Invalid("search", "aggregation", "is required")
	}
	return e.Do(ctx, index, a)
}

// DoAll runs jobs concurrently and returns their results in input order. The
// first failure cancels the searches still in flight.
func (e *Executor) DoAll(ctx context.Context, jobs ...Job) ([]*result.Result, error) {
	results := make([]*result.Result, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if e != nil && e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i, job := range jobs {
		g.Go(func() error {
			res, err := e.Do(ctx, job.Index, job.Request)
			if err != nil {
				return fmt.Errorf("job %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func kindOf(req Request) string {
	if k, ok := req.(interface{ Kind() string }); ok {
		return k.Kind()
	}
	return fmt.Sprintf("%T", req)
}
