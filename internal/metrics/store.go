package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// FetchMetric records metadata for a single remote catalog call.
type FetchMetric struct {
	Operation string
	Target    string // category name or meal id, empty for the category list
	LatencyMS int64
	Failed    bool
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m FetchMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(),
		`INSERT INTO fetch_metrics (operation, target, latency_ms, failed, timestamp) VALUES (?, ?, ?, ?, ?)`,
		m.Operation, m.Target, m.LatencyMS, m.Failed, ts.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert fetch metric: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DailyUsage represents fetch totals for a single day.
type DailyUsage struct {
	Date         string
	TotalFetches int
	Failures     int
	AvgLatencyMS float64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days)
	rows, err := s.db.QueryContext(context.Background(), `
		SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*), SUM(failed), AVG(latency_ms)
		FROM fetch_metrics
		WHERE timestamp >= ?
		GROUP BY day
		ORDER BY day DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			day      sql.NullString
			count    int64
			failures sql.NullInt64
			avg      sql.NullFloat64
		)
		if err := rows.Scan(&day, &count, &failures, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}

		u := DailyUsage{
			Date:         "Unknown",
			TotalFetches: int(count),
			Failures:     int(failures.Int64),
			AvgLatencyMS: avg.Float64,
		}
		if day.Valid {
			u.Date = day.String
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays)
	res, err := s.db.ExecContext(context.Background(), `DELETE FROM fetch_metrics WHERE timestamp < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up fetch metrics: %w", err)
	}
	return res.RowsAffected()
}

// Since measures a call started at start.
func Since(operation, target string, start time.Time, err error) FetchMetric {
	return FetchMetric{
		Operation: operation,
		Target:    target,
		LatencyMS: time.Since(start).Milliseconds(),
		Failed:    err != nil,
		Timestamp: time.Now().UTC(),
	}
}
