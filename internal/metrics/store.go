// Package metrics keeps a local history of executed searches in SQLite and
// exposes the totals as OpenTelemetry gauges.
package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Store persists daily search counts per kind and outcome.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Total is the cumulative count for one kind and outcome.
type Total struct {
	Kind      string  `json:"kind" yaml:"kind"`
	Outcome   string  `json:"outcome" yaml:"outcome"`
	Count     int64   `json:"count" yaml:"count"`
	AvgMillis float64 `json:"avg_ms" yaml:"avg_ms"`
}

// Daily is the count of searches run on one date.
type Daily struct {
	Date    string `json:"date" yaml:"date"`
	Kind    string `json:"kind" yaml:"kind"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Count   int64  `json:"count" yaml:"count"`
}

// DefaultPath is ~/.osrequests/stats.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".osrequests", "stats.db"), nil
}

// Open opens or creates the database at path, creating parent directories.
// An empty path selects DefaultPath.
func Open(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)

	const schema = `
		CREATE TABLE IF NOT EXISTS search_counts (
			kind TEXT NOT NULL,
			outcome TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			total_ms REAL NOT NULL DEFAULT 0,
			PRIMARY KEY (kind, outcome, date)
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// RecordSearch adds one search to today's count.
func (s *Store) RecordSearch(ctx context.Context, kind, _ string, outcome string, elapsed time.Duration) error {
	const upsert = `
		INSERT INTO search_counts (kind, outcome, date, count, total_ms)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(kind, outcome, date) DO UPDATE SET
			count = count + 1,
			total_ms = total_ms + excluded.total_ms;
	`
	ms := float64(elapsed) / float64(time.Millisecond)
	if _, err := s.db.ExecContext(ctx, upsert, kind, outcome, s.now().Format(dateLayout), ms); err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Totals returns cumulative counts ordered by kind then outcome.
func (s *Store) Totals(ctx context.Context) ([]Total, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, outcome, SUM(count), SUM(total_ms) / SUM(count)
		FROM search_counts
		GROUP BY kind, outcome
		ORDER BY kind, outcome`)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var totals []Total
	for rows.Next() {
		var t Total
		if err := rows.Scan(&t.Kind, &t.Outcome, &t.Count, &t.AvgMillis); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		totals = append(totals, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return totals, nil
}

// Since returns per-day counts from the given date on, oldest first.
func (s *Store) Since(ctx context.Context, from time.Time) ([]Daily, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, kind, outcome, count
		FROM search_counts
		WHERE date >= ?
		ORDER BY date, kind, outcome`, from.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query daily counts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var days []Daily
	for rows.Next() {
		var d Daily
		if err := rows.Scan(&d.Date, &d.Kind, &d.Outcome, &d.Count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return days, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
