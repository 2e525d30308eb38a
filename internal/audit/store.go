package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflowhq/lexflow/internal/db"
)

// Store provides append and query operations for the audit trail. The trail
// is append-only: entries are never updated, only expired by retention.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Record appends an audit entry. If entry.ID is empty a UUID is generated;
// if entry.Timestamp is zero the current time is used.
func (s *Store) Record(ctx context.Context, entry Entry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	var key sql.NullString
	if entry.IdempotencyKey != "" {
		key = sql.NullString{String: entry.IdempotencyKey, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, timestamp, team_id, matter_id, event_type,
			from_stage, to_stage, idempotency_key, summary, detail
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.TeamID,
		entry.MatterID,
		entry.EventType,
		entry.FromStage,
		entry.ToStage,
		key,
		entry.Summary,
		entry.Detail,
	)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}
	return nil
}

// GetByID retrieves a single audit entry.
func (s *Store) GetByID(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, timestamp, team_id, matter_id, event_type,
			   from_stage, to_stage, idempotency_key, summary, detail
		FROM audit_entries WHERE id = ?`, id)

	return scanEntry(row)
}

// QueryFilter controls which audit entries are returned by Query.
type QueryFilter struct {
	TeamID    string
	MatterID  string
	EventType string
	Stage     string
	Since     *time.Time
	Until     *time.Time
	Limit     int
	Offset    int
}

// Query returns audit entries matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter QueryFilter) ([]Entry, error) {
	var (
		clauses []string
		args    []any
	)

	if filter.TeamID != "" {
		clauses = append(clauses, "team_id = ?")
		args = append(args, filter.TeamID)
	}
	if filter.MatterID != "" {
		clauses = append(clauses, "matter_id = ?")
		args = append(args, filter.MatterID)
	}
	if filter.EventType != "" {
		clauses = append(clauses, "event_type = ?")
		args = append(args, filter.EventType)
	}
	if filter.Stage != "" {
		clauses = append(clauses, "(from_stage = ? OR to_stage = ?)")
		args = append(args, filter.Stage, filter.Stage)
	}
	if filter.Since != nil {
		clauses = append(clauses, "timestamp >= ?")
		args = append(args, filter.Since.UTC().Format(time.RFC3339))
	}
	if filter.Until != nil {
		clauses = append(clauses, "timestamp <= ?")
		args = append(args, filter.Until.UTC().Format(time.RFC3339))
	}

	query := `SELECT id, timestamp, team_id, matter_id, event_type,
		from_stage, to_stage, idempotency_key, summary, detail
		FROM audit_entries`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY timestamp DESC, id DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// DeleteBefore removes entries older than the cutoff and returns the number
// deleted. Used by retention sweeps.
func (s *Store) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM audit_entries WHERE timestamp < ?",
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("deleting audit entries: %w", err)
	}
	return res.RowsAffected()
}

// scanner is implemented by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*Entry, error) {
	var (
		e   Entry
		ts  string
		key sql.NullString
	)

	err := sc.Scan(&e.ID, &ts, &e.TeamID, &e.MatterID, &e.EventType,
		&e.FromStage, &e.ToStage, &key, &e.Summary, &e.Detail)
	if err != nil {
		return nil, err
	}

	if t, parseErr := time.Parse(time.RFC3339, ts); parseErr == nil {
		e.Timestamp = t
	} else if t, parseErr := time.Parse(time.DateTime, ts); parseErr == nil {
		e.Timestamp = t
	}
	if key.Valid {
		e.IdempotencyKey = key.String
	}

	return &e, nil
}
