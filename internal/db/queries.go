package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/agentcost/agentcost-tui/internal/models"
)

const sqlTimeFormat = "2006-01-02 15:04:05"

// InsertSnapshot records a point-in-time overview reading.
func (db *DB) InsertSnapshot(snap *models.SpendSnapshot) error {
	query := `
		INSERT INTO spend_snapshots (
			timestamp, time_range, total_cost, total_calls, total_tokens,
			avg_latency_ms, error_rate
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	timestamp := snap.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	result, err := db.ExecContext(context.Background(), query,
		timestamp.UTC().Format(sqlTimeFormat),
		snap.TimeRange.Query(),
		snap.TotalCost,
		snap.TotalCalls,
		snap.TotalTokens,
		snap.AvgLatencyMS,
		snap.ErrorRate,
	)
	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err == nil {
		snap.ID = id
	}

	return nil
}

// LatestSnapshot returns the most recent snapshot for a time range, or nil
// when none has been recorded yet.
func (db *DB) LatestSnapshot(tr models.TimeRange) (*models.SpendSnapshot, error) {
	query := `
		SELECT id, timestamp, total_cost, total_calls, total_tokens,
			   avg_latency_ms, error_rate
		FROM spend_snapshots
		WHERE time_range = ?
		ORDER BY timestamp DESC
		LIMIT 1
	`

	var snap models.SpendSnapshot
	var ts string
	err := db.QueryRowContext(context.Background(), query, tr.Query()).Scan(
		&snap.ID,
		&ts,
		&snap.TotalCost,
		&snap.TotalCalls,
		&snap.TotalTokens,
		&snap.AvgLatencyMS,
		&snap.ErrorRate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}

	snap.TimeRange = tr
	snap.Timestamp, _ = time.Parse(sqlTimeFormat, ts)
	return &snap, nil
}

// DailySpend returns one aggregated point per day within the time range,
// oldest first. Days with multiple snapshots average their cost readings.
func (db *DB) DailySpend(tr models.TimeRange) ([]models.DailySpendPoint, error) {
	query := `
		SELECT
			strftime('%Y-%m-%d', timestamp) as day,
			AVG(total_cost) as avg_cost,
			MAX(total_calls) as calls,
			COUNT(*) as samples
		FROM spend_snapshots
		WHERE time_range = ?
		  AND timestamp >= datetime('now', ?)
		GROUP BY day
		ORDER BY day ASC
	`

	window := fmt.Sprintf("-%d days", tr.Days())
	rows, err := db.QueryContext(context.Background(), query, tr.Query(), window)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily spend: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.DailySpendPoint
	for rows.Next() {
		var p models.DailySpendPoint
		var day string

		if err := rows.Scan(&day, &p.TotalCost, &p.Calls, &p.Snapshots); err != nil {
			return nil, fmt.Errorf("failed to scan daily spend: %w", err)
		}

		p.Date, _ = time.Parse("2006-01-02", day)
		points = append(points, p)
	}

	return points, rows.Err()
}

// CacheEvents upserts a page of the event log so the feed still renders
// when the backend is unreachable.
func (db *DB) CacheEvents(events []models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO event_cache (
			id, timestamp, agent_name, model, provider, input_tokens,
			output_tokens, cost, latency_ms, status, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare event insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, ev := range events {
		_, err := stmt.Exec(
			ev.ID,
			ev.Timestamp.UTC().Format(sqlTimeFormat),
			ev.AgentName,
			ev.Model,
			nullString(ev.Provider),
			ev.InputTokens,
			ev.OutputTokens,
			ev.Cost,
			ev.LatencyMS,
			ev.Status,
			nullString(ev.ErrorMessage),
		)
		if err != nil {
			return fmt.Errorf("failed to insert event %s: %w", ev.ID, err)
		}
	}

	return tx.Commit()
}

// CachedEvents returns the most recent cached events, newest first.
func (db *DB) CachedEvents(limit int) ([]models.Event, error) {
	query := `
		SELECT id, timestamp, agent_name, model, provider, input_tokens,
			   output_tokens, cost, latency_ms, status, error_message
		FROM event_cache
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []models.Event
	for rows.Next() {
		var ev models.Event
		var ts string
		var provider, errMsg sql.NullString

		err := rows.Scan(
			&ev.ID,
			&ts,
			&ev.AgentName,
			&ev.Model,
			&provider,
			&ev.InputTokens,
			&ev.OutputTokens,
			&ev.Cost,
			&ev.LatencyMS,
			&ev.Status,
			&errMsg,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cached event: %w", err)
		}

		ev.Timestamp, _ = time.Parse(sqlTimeFormat, ts)
		ev.Provider = provider.String
		ev.ErrorMessage = errMsg.String
		events = append(events, ev)
	}

	return events, rows.Err()
}

// Prune removes cached rows older than the retention window.
func (db *DB) Prune(retentionDays int) error {
	window := fmt.Sprintf("-%d days", retentionDays)

	queries := []string{
		"DELETE FROM spend_snapshots WHERE timestamp < datetime('now', ?)",
		"DELETE FROM event_cache WHERE timestamp < datetime('now', ?)",
	}
	for _, query := range queries {
		if _, err := db.ExecContext(context.Background(), query, window); err != nil {
			return fmt.Errorf("failed to prune cache: %w", err)
		}
	}
	return nil
}

// nullString converts empty strings to NULL for storage.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
