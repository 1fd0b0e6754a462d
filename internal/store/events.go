package store

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// MatchEvent is one matched word observed by one scan.
type MatchEvent struct {
	ID        int64     `json:"id"`
	RunID     string    `json:"run_id"`
	Location  string    `json:"location"`
	Word      string    `json:"word"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

// MatchFilter narrows QueryMatches.
type MatchFilter struct {
	// Location, when set, must be contained in the event location.
	Location string

	// Since, when non-zero, excludes older events.
	Since time.Time

	// Limit caps the number of events; zero means no limit.
	Limit int
}

// RecordMatches stores one event per word in words. Words are stored in
// sorted order so that events of one scan have a stable order.
func (s *Store) RecordMatches(ctx context.Context, runID, location string, words map[string]int) error {
	if len(words) == 0 {
		return nil
	}

	keys := make([]string, 0, len(words))
	for w := range words {
		keys = append(keys, w)
	}
	sort.Strings(keys)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() //nolint:errcheck // no-op after commit
	}()

	query := `
	INSERT INTO match_events (run_id, location, word, count)
	VALUES (?, ?, ?, ?)
	`
	for _, w := range keys {
		if _, err := tx.ExecContext(ctx, query, runID, location, w, words[w]); err != nil {
			return fmt.Errorf("failed to insert match event: %w", err)
		}
	}

	return tx.Commit()
}

// QueryMatches returns match events, newest first.
func (s *Store) QueryMatches(ctx context.Context, filter MatchFilter) ([]MatchEvent, error) {
	query := `
	SELECT id, run_id, location, word, count, timestamp
	FROM match_events
	WHERE 1=1
	`
	args := make([]interface{}, 0)

	if filter.Location != "" {
		query += " AND instr(location, ?) > 0"
		args = append(args, filter.Location)
	}
	if !filter.Since.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.Since.UTC().Format("2006-01-02 15:04:05"))
	}

	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query match events: %w", err)
	}
	defer rows.Close()

	var events []MatchEvent
	for rows.Next() {
		var e MatchEvent
		var timestamp string
		if err := rows.Scan(&e.ID, &e.RunID, &e.Location, &e.Word, &e.Count, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan match event: %w", err)
		}
		e.Timestamp = parseTimestamp(timestamp)
		events = append(events, e)
	}

	return events, rows.Err()
}

// ListLocations returns every location with recorded events.
func (s *Store) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT location FROM match_events ORDER BY location`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, loc)
	}

	return locations, rows.Err()
}
