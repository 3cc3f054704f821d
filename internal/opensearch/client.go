package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	opensearch "github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	requestsigner "github.com/opensearch-project/opensearch-go/v4/signer/awsv2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ca-srg/osrequests/internal/search/envelope"
)

type Client struct {
	client      *opensearchapi.Client
	rateLimiter *rate.Limiter
	config      *Config
	logger      *zap.Logger
}

// NewClient connects to the cluster described by cfg. Basic auth is used
// when a username is set; otherwise requests are signed with SigV4 using
// the default AWS credential chain.
func NewClient(cfg *Config, logger *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureSkipTLS,
		},
		MaxConnsPerHost:       cfg.MaxConnections,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns / 2,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.RequestTimeout,
	}

	osConfig := opensearch.Config{
		Addresses:    []string{cfg.Endpoint},
		Transport:    transport,
		DisableRetry: true,
	}

	if cfg.Username != "" {
		osConfig.Username = cfg.Username
		osConfig.Password = cfg.Password
	} else {
		awsConfig, err := config.LoadDefaultConfig(context.Background(),
			config.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}

		signer, err := requestsigner.NewSignerWithService(awsConfig, "es")
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS signer: %w", err)
		}
		osConfig.Signer = signer
	}

	osClient, err := opensearchapi.NewClient(opensearchapi.Config{Client: osConfig})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenSearch client: %w", err)
	}

	return &Client{
		client:      osClient,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		config:      cfg,
		logger:      logger.Named("opensearch"),
	}, nil
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	resp, err := c.client.Cluster.Health(ctx, &opensearchapi.ClusterHealthReq{})
	if err != nil {
		c.logger.Warn("health check failed", zap.Error(err))
		return fmt.Errorf("health check failed: %w", err)
	}

	c.logger.Debug("health check succeeded", zap.String("status", resp.Status))
	return nil
}

func (c *Client) WaitForRateLimit(ctx context.Context) error {
	return c.rateLimiter.Wait(ctx)
}

// Search posts body to the _search endpoint of index and returns the raw
// response body. Retryable failures are retried with exponential backoff.
func (c *Client) Search(ctx context.Context, index string, body envelope.Body) ([]byte, error) {
	if index == "" {
		return nil, NewSearchError(ErrorTypeBadRequest, "index cannot be empty")
	}

	payload, err := body.JSON()
	if err != nil {
		return nil, NewSearchError(ErrorTypeBadRequest, fmt.Sprintf("failed to marshal search body: %v", err))
	}

	var raw []byte
	operation := func() error {
		if err := c.WaitForRateLimit(ctx); err != nil {
			return fmt.Errorf("rate limit error: %w", err)
		}

		out, err := c.perform(ctx, index, payload)
		if err != nil {
			var searchErr *SearchError
			if errors.As(err, &searchErr) {
				searchErr.Index = index
			}
			return err
		}
		raw = out
		return nil
	}

	if err := c.ExecuteWithRetry(ctx, operation, "search"); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) perform(ctx context.Context, index string, payload []byte) ([]byte, error) {
	req := &opensearchapi.SearchReq{
		Indices: []string{index},
		Body:    bytes.NewReader(payload),
	}

	httpReq, err := req.GetRequest()
	if err != nil {
		return nil, NewSearchError(ErrorTypeBadRequest, fmt.Sprintf("failed to build request: %v", err))
	}

	resp, err := c.client.Client.Perform(httpReq.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ClassifyConnectionError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ClassifyConnectionError(err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, ClassifyHTTPError(resp.StatusCode, string(data))
	}
	if len(data) == 0 {
		return nil, NewSearchError(ErrorTypeResponse, "received an empty response from OpenSearch")
	}
	return data, nil
}

// RetryableOperation defines a function that can be retried
type RetryableOperation func() error

// ExecuteWithRetry executes an operation with exponential backoff retry logic
func (c *Client) ExecuteWithRetry(ctx context.Context, operation RetryableOperation, operationName string) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt-1))) * c.config.RetryDelay
			c.logger.Info("retrying operation",
				zap.String("operation", operationName),
				zap.Duration("delay", delay),
				zap.Int("attempt", attempt),
				zap.Int("max_retries", c.config.MaxRetries))

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := operation()
		if err == nil {
			if attempt > 0 {
				c.logger.Info("operation succeeded after retries",
					zap.String("operation", operationName),
					zap.Int("retries", attempt))
			}
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var searchErr *SearchError
		if errors.As(err, &searchErr) && !searchErr.IsRetryable() {
			c.logger.Warn("operation failed with non-retryable error",
				zap.String("operation", operationName),
				zap.Error(err))
			return err
		}
		c.logger.Warn("operation failed",
			zap.String("operation", operationName),
			zap.Int("attempt", attempt+1),
			zap.Int("attempts", c.config.MaxRetries+1),
			zap.Error(err))
	}

	return fmt.Errorf("%s operation failed after %d attempts, last error: %w",
		operationName, c.config.MaxRetries+1, lastErr)
}
