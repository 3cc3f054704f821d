package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults without an endpoint", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("OPENSEARCH_ENDPOINT", "")

		cfg, err := Load()
		require.NoError(t, err)

		require.Equal(t, 10.0, cfg.OpenSearchRateLimit)
		require.Equal(t, 20, cfg.OpenSearchRateBurst)
		require.Equal(t, 30*time.Second, cfg.OpenSearchConnectionTimeout)
		require.Equal(t, 3, cfg.OpenSearchMaxRetries)
		require.Equal(t, "prod", cfg.LogEnv)
		require.Equal(t, "osrequests", cfg.OTelServiceName)
		require.Error(t, cfg.RequireOpenSearch())
	})

	t.Run("basic auth endpoint", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("OPENSEARCH_ENDPOINT", "https://localhost:9200")
		t.Setenv("OPENSEARCH_USERNAME", "admin")
		t.Setenv("OPENSEARCH_PASSWORD", "admin")
		t.Setenv("OPENSEARCH_MAX_RETRIES", "42")
		t.Setenv("LOG_ENV", " DEV ")

		cfg, err := Load()
		require.NoError(t, err)
		require.True(t, cfg.UsesBasicAuth())
		require.NoError(t, cfg.RequireOpenSearch())
		require.Equal(t, 10, cfg.OpenSearchMaxRetries, "retries should be clamped")
		require.Equal(t, "dev", cfg.LogEnv)
	})

	t.Run("sigv4 endpoint requires a region", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("OPENSEARCH_ENDPOINT", "https://search-domain.us-east-1.es.amazonaws.com")
		t.Setenv("OPENSEARCH_USERNAME", "")
		t.Setenv("OPENSEARCH_REGION", "")

		_, err := Load()
		require.ErrorContains(t, err, "OPENSEARCH_REGION")

		t.Setenv("OPENSEARCH_REGION", "us-east-1")
		cfg, err := Load()
		require.NoError(t, err)
		require.False(t, cfg.UsesBasicAuth())
	})

	t.Run("rejects malformed endpoint", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("OPENSEARCH_ENDPOINT", "localhost:9200")
		t.Setenv("OPENSEARCH_REGION", "us-east-1")

		_, err := Load()
		require.Error(t, err)
	})

	t.Run("rejects burst above ten times the rate", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("OPENSEARCH_ENDPOINT", "http://localhost:9200")
		t.Setenv("OPENSEARCH_REGION", "us-east-1")
		t.Setenv("OPENSEARCH_RATE_LIMIT", "1")
		t.Setenv("OPENSEARCH_RATE_BURST", "11")

		_, err := Load()
		require.ErrorContains(t, err, "OPENSEARCH_RATE_BURST")
	})
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "search.env")
	require.NoError(t, os.WriteFile(path, []byte("OSREQUESTS_TEST_INDEX=books\n"), 0o600))
	t.Setenv("OPENSEARCH_ENDPOINT", "")
	t.Setenv("OSREQUESTS_TEST_INDEX", "")
	require.NoError(t, os.Unsetenv("OSREQUESTS_TEST_INDEX"))

	_, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "books", os.Getenv("OSREQUESTS_TEST_INDEX"))

	_, err = Load(filepath.Join(dir, "missing.env"))
	require.Error(t, err)
}
