package chat

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflowhq/lexflow/internal/db"
)

// Store persists chat sessions and their transcripts.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// CreateSession starts a new conversation for a team and user.
func (s *Store) CreateSession(ctx context.Context, teamID, userID string) (*Session, error) {
	if userID == "" {
		userID = "anonymous"
	}
	sess := &Session{
		ID:     uuid.New().String(),
		TeamID: teamID,
		UserID: userID,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_sessions (id, team_id, user_id) VALUES (?, ?, ?)",
		sess.ID, sess.TeamID, sess.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID, or nil if it does not exist.
func (s *Store) GetSession(ctx context.Context, id string) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, team_id, user_id, matter_id, matter_created, outcome, created_at, updated_at
		FROM chat_sessions WHERE id = ?`, id)

	var (
		sess          Session
		matterID      sql.NullString
		matterCreated int
		created, upd  string
	)
	err := row.Scan(&sess.ID, &sess.TeamID, &sess.UserID, &matterID,
		&matterCreated, &sess.Outcome, &created, &upd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading chat session: %w", err)
	}

	if matterID.Valid {
		sess.MatterID = matterID.String
	}
	sess.MatterCreated = matterCreated != 0
	sess.CreatedAt = parseTime(created)
	sess.UpdatedAt = parseTime(upd)
	return &sess, nil
}

// MarkMatterCreated pins the session to its matter. The pin is one-way.
func (s *Store) MarkMatterCreated(ctx context.Context, sessionID, matterID, outcome string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chat_sessions
		SET matter_id = ?, matter_created = 1, outcome = ?, updated_at = datetime('now')
		WHERE id = ?`,
		matterID, outcome, sessionID,
	)
	if err != nil {
		return fmt.Errorf("marking matter created: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %s not found", sessionID)
	}
	return nil
}

// AddMessage appends one utterance to a session transcript.
func (s *Store) AddMessage(ctx context.Context, sessionID, role, content string) (*Message, error) {
	msg := &Message{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO chat_messages (id, session_id, role, content) VALUES (?, ?, ?, ?)",
		msg.ID, msg.SessionID, msg.Role, msg.Content,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting chat message: %w", err)
	}
	return msg, nil
}

// GetMessages returns a session's transcript in order.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, created_at
		FROM chat_messages WHERE session_id = ?
		ORDER BY created_at, id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying chat messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var created string
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &created); err != nil {
			return nil, fmt.Errorf("scanning chat message: %w", err)
		}
		m.CreatedAt = parseTime(created)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Transcript flattens a session's messages into the text the context
// extractor consumes.
func (s *Store) Transcript(ctx context.Context, sessionID string) (string, error) {
	msgs, err := s.GetMessages(ctx, sessionID)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	return b.String(), nil
}

func parseTime(s string) time.Time {
	if t, err := time.Parse(time.DateTime, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
