package metrics

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "nested", "stats.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreTotals(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.RecordSearch(ctx, "match", "books", "success", 10*time.Millisecond))
	require.NoError(t, store.RecordSearch(ctx, "match", "books", "success", 30*time.Millisecond))
	require.NoError(t, store.RecordSearch(ctx, "match", "books", "error", 5*time.Millisecond))
	require.NoError(t, store.RecordSearch(ctx, "terms", "logs", "success", 2*time.Millisecond))

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	assert.Equal(t, []Total{
		{Kind: "match", Outcome: "error", Count: 1, AvgMillis: 5},
		{Kind: "match", Outcome: "success", Count: 2, AvgMillis: 20},
		{Kind: "terms", Outcome: "success", Count: 1, AvgMillis: 2},
	}, totals)
}

func TestStoreEmpty(t *testing.T) {
	totals, err := openTestStore(t).Totals(context.Background())
	require.NoError(t, err)
	assert.Empty(t, totals)
}

func TestStoreSince(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	day := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		store.now = func() time.Time { return day.AddDate(0, 0, i) }
		require.NoError(t, store.RecordSearch(ctx, "bool", "books", "success", time.Millisecond))
	}

	days, err := store.Since(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, []Daily{
		{Date: "2026-03-02", Kind: "bool", Outcome: "success", Count: 1},
		{Date: "2026-03-03", Kind: "bool", Outcome: "success", Count: 1},
	}, days)
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "stats.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.RecordSearch(ctx, "sum", "sales", "success", time.Millisecond))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	totals, err := store.Totals(ctx)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, int64(1), totals[0].Count)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.osrequests/stats.db", path)
}
