// Package observability installs the global OpenTelemetry tracer and meter
// providers used by the search executor.
package observability

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/ca-srg/osrequests/internal/config"
)

const defaultShutdownTimeout = 5 * time.Second

// Telemetry owns the installed providers.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	logger         *zap.Logger
}

// Init builds providers from cfg and installs them globally. When
// OpenTelemetry is disabled the providers sample nothing and export nothing.
func Init(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	s, err := SettingsFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	t, err := newTelemetry(ctx, s)
	if err != nil {
		return nil, err
	}
	t.logger = logger.Named("observability")

	otel.SetTracerProvider(t.TracerProvider)
	otel.SetMeterProvider(t.MeterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	t.logger.Debug("telemetry initialized",
		zap.Bool("enabled", s.Enabled),
		zap.String("protocol", s.Protocol),
		zap.String("endpoint", s.Endpoint))
	return t, nil
}

func newTelemetry(ctx context.Context, s *Settings) (*Telemetry, error) {
	if !s.Enabled {
		return &Telemetry{
			TracerProvider: sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.NeverSample())),
			MeterProvider:  sdkmetric.NewMeterProvider(),
		}, nil
	}

	res, err := newResource(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to build resource: %w", err)
	}

	spans, err := newTraceExporter(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("observability: failed to create trace exporter: %w", err)
	}

	metrics, err := newMetricExporter(ctx, s)
	if err != nil {
		_ = spans.Shutdown(ctx)
		return nil, fmt.Errorf("observability: failed to create metric exporter: %w", err)
	}

	return &Telemetry{
		TracerProvider: sdktrace.NewTracerProvider(
			sdktrace.WithSampler(sampler(s)),
			sdktrace.WithResource(res),
			sdktrace.WithBatcher(spans),
		),
		MeterProvider: sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metrics,
				sdkmetric.WithInterval(s.MetricExportInterval))),
		),
	}, nil
}

// Shutdown flushes and stops both providers. Without a deadline on ctx it
// waits at most five seconds.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, defaultShutdownTimeout)
		defer cancel()
	}

	var errs []error
	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			t.logger.Warn("tracer provider shutdown failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("tracer provider: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			t.logger.Warn("meter provider shutdown failed", zap.Error(err))
			errs = append(errs, fmt.Errorf("meter provider: %w", err))
		}
	}
	return errors.Join(errs...)
}

func sampler(s *Settings) sdktrace.Sampler {
	switch s.Sampler {
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio":
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SamplerArg))
	case "parentbased_always_on":
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	default:
		return sdktrace.AlwaysSample()
	}
}

func newResource(ctx context.Context, s *Settings) (*resource.Resource, error) {
	attrs := []attribute.KeyValue{attribute.String(resourceServiceNameKey, s.ServiceName)}
	for key, value := range s.ResourceAttributes {
		if strings.EqualFold(key, resourceServiceNameKey) {
			continue
		}
		attrs = append(attrs, attribute.String(key, value))
	}

	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithHost(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(attrs...),
	)
}
