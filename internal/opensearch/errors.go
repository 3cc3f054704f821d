package opensearch

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorType classifies a failed request to the cluster.
type ErrorType string

const (
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeBadRequest     ErrorType = "bad_request"
	ErrorTypeNetworkTimeout ErrorType = "network_timeout"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeServer         ErrorType = "server"
	ErrorTypeConnection     ErrorType = "connection"
	ErrorTypeResponse       ErrorType = "response"
	ErrorTypeUnknown        ErrorType = "unknown"
)

type SearchError struct {
	Type       ErrorType     `json:"type"`
	Message    string        `json:"message"`
	StatusCode int           `json:"status_code,omitempty"`
	Retryable  bool          `json:"retryable"`
	RetryAfter time.Duration `json:"retry_after,omitempty"`
	Index      string        `json:"index,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

func (e *SearchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("[%s] %s (HTTP %d)", e.Type, e.Message, e.StatusCode)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

func (e *SearchError) IsRetryable() bool {
	return e.Retryable
}

func NewSearchError(errType ErrorType, message string) *SearchError {
	return &SearchError{
		Type:      errType,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now(),
	}
}

// ClassifyHTTPError maps an error status returned by the cluster to a
// SearchError. body is the raw response body, used to refine the message.
func ClassifyHTTPError(statusCode int, body string) *SearchError {
	switch statusCode {
	case http.StatusBadRequest:
		return &SearchError{
			Type:       ErrorTypeBadRequest,
			Message:    fmt.Sprintf("the cluster rejected the request: %s", truncate(body, 512)),
			StatusCode: statusCode,
			Retryable:  false,
			Suggestion: "Check the request body against the query DSL of your OpenSearch version.",
			Timestamp:  time.Now(),
		}
	case http.StatusUnauthorized:
		return &SearchError{
			Type:       ErrorTypeAuth,
			Message:    "authentication failed",
			StatusCode: statusCode,
			Retryable:  false,
			Suggestion: "Check OPENSEARCH_USERNAME/OPENSEARCH_PASSWORD or your AWS credentials.",
			Timestamp:  time.Now(),
		}
	case http.StatusForbidden:
		return &SearchError{
			Type:       ErrorTypeAuth,
			Message:    "access denied",
			StatusCode: statusCode,
			Retryable:  false,
			Suggestion: "Make sure the role or user is allowed to search this index.",
			Timestamp:  time.Now(),
		}
	case http.StatusNotFound:
		return &SearchError{
			Type:       ErrorTypeNotFound,
			Message:    "index or endpoint not found",
			StatusCode: statusCode,
			Retryable:  false,
			Suggestion: "Check OPENSEARCH_ENDPOINT and the index name.",
			Timestamp:  time.Now(),
		}
	case http.StatusRequestTimeout:
		return &SearchError{
			Type:       ErrorTypeNetworkTimeout,
			Message:    "request timed out",
			StatusCode: statusCode,
			Retryable:  true,
			RetryAfter: 5 * time.Second,
			Suggestion: "Check the network and the load on the cluster.",
			Timestamp:  time.Now(),
		}
	case http.StatusTooManyRequests:
		retryAfter := 10 * time.Second
		if strings.Contains(body, "retry after") {
			retryAfter = 30 * time.Second
		}
		return &SearchError{
			Type:       ErrorTypeRateLimit,
			Message:    "rate limit reached, retry later",
			StatusCode: statusCode,
			Retryable:  true,
			RetryAfter: retryAfter,
			Suggestion: "Lower OPENSEARCH_RATE_LIMIT or the request frequency.",
			Timestamp:  time.Now(),
		}
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return &SearchError{
			Type:       ErrorTypeServer,
			Message:    "OpenSearch server error",
			StatusCode: statusCode,
			Retryable:  true,
			RetryAfter: 10 * time.Second,
			Suggestion: "Check the cluster health.",
			Timestamp:  time.Now(),
		}
	default:
		return &SearchError{
			Type:       ErrorTypeUnknown,
			Message:    fmt.Sprintf("unexpected HTTP error: %s", truncate(body, 512)),
			StatusCode: statusCode,
			Retryable:  statusCode >= 500,
			RetryAfter: 5 * time.Second,
			Timestamp:  time.Now(),
		}
	}
}

// ClassifyConnectionError maps a transport failure to a SearchError.
func ClassifyConnectionError(err error) *SearchError {
	errMsg := err.Error()

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "deadline exceeded") {
		return &SearchError{
			Type:       ErrorTypeNetworkTimeout,
			Message:    "connection to OpenSearch timed out",
			Retryable:  true,
			RetryAfter: 5 * time.Second,
			Suggestion: "Check the network and OPENSEARCH_ENDPOINT.",
			Timestamp:  time.Now(),
		}
	}

	if strings.Contains(errMsg, "connection refused") {
		return &SearchError{
			Type:       ErrorTypeConnection,
			Message:    "connection to OpenSearch refused",
			Retryable:  false,
			Suggestion: "Check the host and port in OPENSEARCH_ENDPOINT.",
			Timestamp:  time.Now(),
		}
	}

	if strings.Contains(errMsg, "no such host") {
		return &SearchError{
			Type:       ErrorTypeConnection,
			Message:    "OpenSearch host not found",
			Retryable:  false,
			Suggestion: "Check the host name in OPENSEARCH_ENDPOINT.",
			Timestamp:  time.Now(),
		}
	}

	return &SearchError{
		Type:       ErrorTypeUnknown,
		Message:    fmt.Sprintf("connection error: %v", err),
		Retryable:  true,
		RetryAfter: 10 * time.Second,
		Suggestion: "Check the network connection.",
		Timestamp:  time.Now(),
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
