package matter

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lexflowhq/lexflow/internal/db"
)

// PersistenceError wraps a failed state write. It is fatal to the advance
// that produced it: the caller must retry, since the transition did not
// durably happen.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("matter persistence failed (%s): %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Store persists matter state snapshots and idempotency records.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Load retrieves the state snapshot for a matter, or nil if none exists yet.
func (s *Store) Load(ctx context.Context, teamID, matterID string) (*State, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state FROM matter_states WHERE team_id = ? AND matter_id = ?`,
		teamID, matterID,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading matter state: %w", err)
	}

	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return nil, fmt.Errorf("decoding matter state: %w", err)
	}
	return &st, nil
}

// Save upserts the state snapshot for a matter.
func (s *Store) Save(ctx context.Context, teamID, matterID string, st *State) error {
	raw, err := json.Marshal(st)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO matter_states (team_id, matter_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(team_id, matter_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		teamID, matterID, string(raw),
		st.CreatedAt.UTC().Format(time.DateTime),
		st.UpdatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// SaveWithResponse writes the state snapshot and the idempotency record in
// one transaction, so a retried request can never observe the state change
// without its stored response.
func (s *Store) SaveWithResponse(ctx context.Context, teamID, matterID string, st *State, key string, resp *Response) error {
	if key == "" {
		return s.Save(ctx, teamID, matterID, st)
	}

	rawState, err := json.Marshal(st)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}
	rawResp, err := json.Marshal(resp)
	if err != nil {
		return &PersistenceError{Op: "encode", Err: err}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &PersistenceError{Op: "begin", Err: err}
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matter_states (team_id, matter_id, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(team_id, matter_id) DO UPDATE SET state = excluded.state, updated_at = excluded.updated_at`,
		teamID, matterID, string(rawState),
		st.CreatedAt.UTC().Format(time.DateTime),
		st.UpdatedAt.UTC().Format(time.DateTime),
	)
	if err != nil {
		return &PersistenceError{Op: "save", Err: err}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matter_idempotency (team_id, matter_id, idempotency_key, response)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(team_id, matter_id, idempotency_key) DO NOTHING`,
		teamID, matterID, key, string(rawResp),
	)
	if err != nil {
		return &PersistenceError{Op: "idempotency", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return &PersistenceError{Op: "commit", Err: err}
	}
	return nil
}

// GetResponse returns the stored response for an idempotency key, or nil if
// the key has not been seen for this matter.
func (s *Store) GetResponse(ctx context.Context, teamID, matterID, key string) (*Response, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT response FROM matter_idempotency
		 WHERE team_id = ? AND matter_id = ? AND idempotency_key = ?`,
		teamID, matterID, key,
	).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading idempotency record: %w", err)
	}

	var resp Response
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("decoding idempotency record: %w", err)
	}
	return &resp, nil
}
