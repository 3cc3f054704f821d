package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
)

// Config is the process configuration read from the environment.
type Config struct {
	// OpenSearch connection
	OpenSearchEndpoint          string        `env:"OPENSEARCH_ENDPOINT"`
	OpenSearchIndex             string        `env:"OPENSEARCH_INDEX"`
	OpenSearchRegion            string        `env:"OPENSEARCH_REGION"`
	OpenSearchUsername          string        `env:"OPENSEARCH_USERNAME"`
	OpenSearchPassword          string        `env:"OPENSEARCH_PASSWORD"`
	OpenSearchInsecureSkipTLS   bool          `env:"OPENSEARCH_INSECURE_SKIP_TLS,default=false"`
	OpenSearchRateLimit         float64       `env:"OPENSEARCH_RATE_LIMIT,default=10.0"`
	OpenSearchRateBurst         int           `env:"OPENSEARCH_RATE_BURST,default=20"`
	OpenSearchConnectionTimeout time.Duration `env:"OPENSEARCH_CONNECTION_TIMEOUT,default=30s"`
	OpenSearchRequestTimeout    time.Duration `env:"OPENSEARCH_REQUEST_TIMEOUT,default=60s"`
	OpenSearchMaxRetries        int           `env:"OPENSEARCH_MAX_RETRIES,default=3"`
	OpenSearchRetryDelay        time.Duration `env:"OPENSEARCH_RETRY_DELAY,default=1s"`
	OpenSearchMaxConnections    int           `env:"OPENSEARCH_MAX_CONNECTIONS,default=100"`
	OpenSearchMaxIdleConns      int           `env:"OPENSEARCH_MAX_IDLE_CONNS,default=10"`
	OpenSearchIdleConnTimeout   time.Duration `env:"OPENSEARCH_IDLE_CONN_TIMEOUT,default=90s"`

	// Logging
	LogEnv   string `env:"LOG_ENV,default=prod"`
	LogLevel string `env:"LOG_LEVEL"`

	// OpenTelemetry
	OTelEnabled              bool          `env:"OTEL_ENABLED,default=false"`
	OTelServiceName          string        `env:"OTEL_SERVICE_NAME,default=osrequests"`
	OTelExporterOTLPEndpoint string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelExporterOTLPProtocol string        `env:"OTEL_EXPORTER_OTLP_PROTOCOL,default=http/protobuf"`
	OTelResourceAttributes   string        `env:"OTEL_RESOURCE_ATTRIBUTES"`
	OTelTracesSampler        string        `env:"OTEL_TRACES_SAMPLER,default=always_on"`
	OTelTracesSamplerArg     float64       `env:"OTEL_TRACES_SAMPLER_ARG,default=1.0"`
	OTelMetricExportInterval time.Duration `env:"OTEL_METRIC_EXPORT_INTERVAL,default=60s"`

	// Local search history
	StatsPath string `env:"OSREQUESTS_STATS_PATH"`
}

// Load reads envFiles into the environment, then parses and validates it.
// Without envFiles, a .env file in the working directory is loaded if present.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("failed to load env files %s: %w", strings.Join(envFiles, ", "), err)
	}

	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig adjusts values to safe ranges and rejects unusable ones.
func validateConfig(config *Config) error {
	config.LogEnv = strings.ToLower(strings.TrimSpace(config.LogEnv))
	if config.LogEnv == "" {
		config.LogEnv = "prod"
	}

	if config.OpenSearchMaxRetries < 0 {
		config.OpenSearchMaxRetries = 0
	}
	if config.OpenSearchMaxRetries > 10 {
		config.OpenSearchMaxRetries = 10
	}

	if config.OpenSearchEndpoint != "" {
		if err := validateOpenSearchConfig(config); err != nil {
			return fmt.Errorf("OpenSearch configuration validation failed: %w", err)
		}
	}

	return nil
}

// RequireOpenSearch fails unless the configuration can reach a cluster.
func (c *Config) RequireOpenSearch() error {
	if c.OpenSearchEndpoint == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT is required to execute searches")
	}
	return validateOpenSearchConfig(c)
}

// UsesBasicAuth reports whether requests authenticate with a username and
// password instead of AWS SigV4 signing.
func (c *Config) UsesBasicAuth() bool {
	return c.OpenSearchUsername != ""
}

func validateOpenSearchConfig(config *Config) error {
	parsedURL, err := url.Parse(config.OpenSearchEndpoint)
	if err != nil {
		return fmt.Errorf("invalid OPENSEARCH_ENDPOINT URL format: %w", err)
	}

	if parsedURL.Scheme == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include scheme (http:// or https://)")
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT scheme must be http or https")
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("OPENSEARCH_ENDPOINT must include a valid host")
	}

	if config.UsesBasicAuth() {
		if config.OpenSearchPassword == "" {
			return fmt.Errorf("OPENSEARCH_PASSWORD is required when OPENSEARCH_USERNAME is set")
		}
	} else if config.OpenSearchRegion == "" {
		return fmt.Errorf("OPENSEARCH_REGION is required for SigV4 signing when no OPENSEARCH_USERNAME is set")
	}

	if config.OpenSearchRateLimit <= 0 {
		return fmt.Errorf("OPENSEARCH_RATE_LIMIT must be greater than 0")
	}
	if config.OpenSearchRateLimit > 1000 {
		return fmt.Errorf("OPENSEARCH_RATE_LIMIT cannot exceed 1000 requests/second")
	}

	if config.OpenSearchRateBurst <= 0 {
		return fmt.Errorf("OPENSEARCH_RATE_BURST must be greater than 0")
	}
	if config.OpenSearchRateBurst > int(config.OpenSearchRateLimit*10) {
		return fmt.Errorf("OPENSEARCH_RATE_BURST should not exceed 10x the rate limit")
	}

	if config.OpenSearchConnectionTimeout <= 0 {
		return fmt.Errorf("OPENSEARCH_CONNECTION_TIMEOUT must be greater than 0")
	}
	if config.OpenSearchRequestTimeout <= 0 {
		return fmt.Errorf("OPENSEARCH_REQUEST_TIMEOUT must be greater than 0")
	}

	if config.OpenSearchRetryDelay <= 0 {
		return fmt.Errorf("OPENSEARCH_RETRY_DELAY must be greater than 0")
	}

	if config.OpenSearchMaxConnections <= 0 {
		return fmt.Errorf("OPENSEARCH_MAX_CONNECTIONS must be greater than 0")
	}
	if config.OpenSearchMaxConnections > 100 {
		return fmt.Errorf("OPENSEARCH_MAX_CONNECTIONS cannot exceed 100")
	}

	if config.OpenSearchMaxIdleConns <= 0 {
		return fmt.Errorf("OPENSEARCH_MAX_IDLE_CONNS must be greater than 0")
	}
	if config.OpenSearchMaxIdleConns > config.OpenSearchMaxConnections {
		return fmt.Errorf("OPENSEARCH_MAX_IDLE_CONNS cannot exceed OPENSEARCH_MAX_CONNECTIONS")
	}

	if config.OpenSearchIdleConnTimeout <= 0 {
		return fmt.Errorf("OPENSEARCH_IDLE_CONN_TIMEOUT must be greater than 0")
	}

	return nil
}
