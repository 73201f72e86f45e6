// api/store/analytics_store.go
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"funnelscope/api/models"
	"funnelscope/api/utils"
)

const createEventsTable = `
	CREATE TABLE IF NOT EXISTS onboarding_events (
		event_id       String,
		user_id        String,
		event_type     LowCardinality(String),
		timestamp      DateTime64(3, 'UTC'),
		session_id     String,
		platform       LowCardinality(String),
		country        LowCardinality(String),
		traffic_source LowCardinality(String)
	) ENGINE = MergeTree
	ORDER BY (user_id, timestamp)
`

const insertEvent = `
	INSERT INTO onboarding_events (
		event_id, user_id, event_type, timestamp, session_id, platform, country, traffic_source
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const selectEventsInWindow = `
	SELECT user_id, event_type, timestamp, session_id, platform, country, traffic_source
	FROM onboarding_events
	WHERE timestamp >= ? AND timestamp <= ?
`

// AnalyticsStore reads and writes onboarding events in ClickHouse.
type AnalyticsStore struct {
	db *sql.DB
}

func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// EnsureSchema creates the events table when it does not exist.
func (s *AnalyticsStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createEventsTable); err != nil {
		return fmt.Errorf("failed to create onboarding_events table: %w", err)
	}
	return nil
}

// InsertEvents writes events in one batch. ClickHouse sends the prepared
// statement's rows as a single block on commit.
func (s *AnalyticsStore) InsertEvents(ctx context.Context, events []models.TrackedEvent) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertEvent)
	if err != nil {
		return fmt.Errorf("failed to prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx,
			e.EventID,
			e.UserID,
			e.EventType,
			e.Timestamp.UTC(),
			e.SessionID,
			e.Platform,
			e.Country,
			e.TrafficSource,
		); err != nil {
			return fmt.Errorf("failed to append event %s to batch: %w", e.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to send batch: %w", err)
	}

	log.WithField("events", len(events)).Debug("Inserted onboarding events.")
	return nil
}

// LoadEvents returns every event with a timestamp in [start, end]. Rows are
// returned in storage order; normalization sorts them.
func (s *AnalyticsStore) LoadEvents(ctx context.Context, start, end time.Time) ([]models.Event, error) {
	rows, err := s.db.QueryContext(ctx, selectEventsInWindow, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.UserID, &e.EventType, &e.Timestamp, &e.SessionID, &e.Platform, &e.Country, &e.TrafficSource); err != nil {
			return nil, fmt.Errorf("failed to scan event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event load: %w", err)
	}

	return events, nil
}

// GetEventCountsOverTime buckets event counts by interval, optionally for a
// single event type.
func (s *AnalyticsStore) GetEventCountsOverTime(ctx context.Context, interval string, start, end time.Time, eventType string) ([]models.TimeBucketCount, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	args := []interface{}{start.UTC(), end.UTC()}
	selectCols := fmt.Sprintf("toStartOf%s(timestamp) AS time_bucket, count() AS total_events", interval)
	where := "WHERE timestamp >= ? AND timestamp <= ?"
	if eventType != "" {
		where += " AND event_type = ?"
		args = append(args, eventType)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM onboarding_events
		%s
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, selectCols, where)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query event counts over time: %w", err)
	}
	defer rows.Close()

	var results []models.TimeBucketCount
	for rows.Next() {
		var r models.TimeBucketCount
		if err := rows.Scan(&r.Time, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan event count row: %w", err)
		}
		if eventType != "" {
			et := eventType
			r.EventType = &et
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row error during event counts over time query: %w", err)
	}

	return results, nil
}

// GetUniqueUsersOverTime buckets distinct users by interval.
func (s *AnalyticsStore) GetUniqueUsersOverTime(ctx context.Context, interval string, start, end time.Time) ([]models.TimeBucketCount, error) {
	if !utils.IsValidInterval(interval) {
		return nil, fmt.Errorf("invalid interval: %s", interval)
	}

	query := fmt.Sprintf(`
		SELECT toStartOf%s(timestamp) AS time_bucket, uniqExact(user_id) AS unique_users
		FROM onboarding_events
		WHERE timestamp >= ? AND timestamp <= ?
		GROUP BY time_bucket
		ORDER BY time_bucket ASC
	`, interval)

	rows, err := s.db.QueryContext(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query unique users over time: %w", err)
	}
	defer rows.Close()

	var results []models.TimeBucketCount
	for rows.Next() {
		var r models.TimeBucketCount
		if err := rows.Scan(&r.Time, &r.Count); err != nil {
			return nil, fmt.Errorf("failed to scan unique users row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows for unique users: %w", err)
	}

	return results, nil
}
