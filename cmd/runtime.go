package cmd

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/ca-srg/osrequests/internal/config"
	"github.com/ca-srg/osrequests/internal/logger"
	"github.com/ca-srg/osrequests/internal/metrics"
	"github.com/ca-srg/osrequests/internal/observability"
	"github.com/ca-srg/osrequests/internal/opensearch"
	"github.com/ca-srg/osrequests/internal/search"
)

// openSearchClient is what the commands need from a cluster connection.
type openSearchClient interface {
	search.Searcher
	HealthCheck(ctx context.Context) error
}

type (
	appConfigLoader         func(files ...string) (*config.Config, error)
	openSearchClientFactory func(cfg *config.Config, logger *zap.Logger) (openSearchClient, error)
	statsStoreOpener        func(path string) (*metrics.Store, error)
)

var (
	loadAppConfig       appConfigLoader         = config.Load
	newOpenSearchClient openSearchClientFactory = defaultOpenSearchClient
	openStatsStore      statsStoreOpener        = metrics.Open
)

func defaultOpenSearchClient(cfg *config.Config, logger *zap.Logger) (openSearchClient, error) {
	osConfig, err := opensearch.NewConfigFromEnv(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch config: %w", err)
	}
	return opensearch.NewClient(osConfig, logger)
}

// runtime carries what a command run shares: configuration, the logger,
// telemetry and the optional search history.
type runtime struct {
	cfg       *config.Config
	logger    *zap.Logger
	telemetry *observability.Telemetry
	stats     *metrics.Store
	statsReg  metric.Registration
}

func setupRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := loadAppConfig(envFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(cfg.LogEnv, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	telemetry, err := observability.Init(ctx, cfg, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return &runtime{cfg: cfg, logger: log, telemetry: telemetry}, nil
}

// openHistory opens the local search history. A history that cannot be
// opened is logged and skipped; searches still run.
func (r *runtime) openHistory() {
	store, err := openStatsStore(r.cfg.StatsPath)
	if err != nil {
		r.logger.Warn("search history disabled", zap.Error(err))
		return
	}
	reg, err := metrics.RegisterGauge(otel.Meter("osrequests/metrics"), store)
	if err != nil {
		r.logger.Warn("search history gauge disabled", zap.Error(err))
	}
	r.stats = store
	r.statsReg = reg
}

func (r *runtime) client() (openSearchClient, error) {
	if err := r.cfg.RequireOpenSearch(); err != nil {
		return nil, err
	}
	return newOpenSearchClient(r.cfg, r.logger)
}

func (r *runtime) executor() (*search.Executor, error) {
	client, err := r.client()
	if err != nil {
		return nil, err
	}

	opts := []search.Option{search.WithLogger(r.logger)}
	r.openHistory()
	if r.stats != nil {
		opts = append(opts, search.WithRecorder(r.stats))
	}
	return search.NewExecutor(client, opts...)
}

// index picks the flag value, falling back to OPENSEARCH_INDEX.
func (r *runtime) index(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if r.cfg.OpenSearchIndex != "" {
		return r.cfg.OpenSearchIndex, nil
	}
	return "", fmt.Errorf("no index given: use --index or set OPENSEARCH_INDEX")
}

func (r *runtime) close(ctx context.Context) {
	if r.statsReg != nil {
		_ = r.statsReg.Unregister()
	}
	if err := r.telemetry.Shutdown(ctx); err != nil {
		r.logger.Warn("telemetry shutdown failed", zap.Error(err))
	}
	if r.stats != nil {
		if err := r.stats.Close(); err != nil {
			r.logger.Warn("failed to close search history", zap.Error(err))
		}
	}
	_ = r.logger.Sync()
}
