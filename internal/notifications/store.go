package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lexflowhq/lexflow/internal/db"
)

// ListFilter controls which notifications are returned by List.
type ListFilter struct {
	TeamID    string
	MatterID  string
	Severity  Severity
	Delivered *bool
	Since     time.Time
	Limit     int
}

// Store persists handoff notifications and webhook subscriptions.
type Store struct {
	db *db.DB
}

// NewStore creates a Store backed by the given database.
func NewStore(database *db.DB) *Store {
	return &Store{db: database}
}

// Create inserts a notification. If n.ID is empty a UUID is generated.
func (s *Store) Create(ctx context.Context, n *Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.Severity == "" {
		n.Severity = SeverityInfo
	}

	delivered := 0
	if n.Delivered {
		delivered = 1
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO handoff_notifications (id, severity, reason, title, message, team_id, matter_id, delivered)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, string(n.Severity), n.Reason, n.Title, n.Message,
		n.TeamID, n.MatterID, delivered,
	)
	if err != nil {
		return fmt.Errorf("inserting notification: %w", err)
	}
	return nil
}

// List returns notifications matching the filter, newest first.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]Notification, error) {
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
	if filter.Severity != "" {
		clauses = append(clauses, "severity = ?")
		args = append(args, string(filter.Severity))
	}
	if filter.Delivered != nil {
		v := 0
		if *filter.Delivered {
			v = 1
		}
		clauses = append(clauses, "delivered = ?")
		args = append(args, v)
	}
	if !filter.Since.IsZero() {
		clauses = append(clauses, "created_at >= ?")
		args = append(args, filter.Since.UTC().Format(time.DateTime))
	}

	query := "SELECT id, severity, reason, title, message, team_id, matter_id, delivered, created_at FROM handoff_notifications"
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying notifications: %w", err)
	}
	defer rows.Close()

	var result []Notification
	for rows.Next() {
		var (
			n         Notification
			severity  string
			delivered int
			created   string
		)
		if err := rows.Scan(&n.ID, &severity, &n.Reason, &n.Title, &n.Message,
			&n.TeamID, &n.MatterID, &delivered, &created); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		n.Severity = Severity(severity)
		n.Delivered = delivered != 0
		if t, parseErr := time.Parse(time.DateTime, created); parseErr == nil {
			n.CreatedAt = t
		}
		result = append(result, n)
	}
	return result, rows.Err()
}

// GetPending returns all undelivered notifications.
func (s *Store) GetPending(ctx context.Context) ([]Notification, error) {
	delivered := false
	return s.List(ctx, ListFilter{Delivered: &delivered})
}

// MarkDelivered sets delivered=1 for the given notification.
func (s *Store) MarkDelivered(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE handoff_notifications SET delivered = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("marking notification delivered: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}

// Subscribe registers a webhook for a team's handoff alerts.
func (s *Store) Subscribe(ctx context.Context, sub *Subscription) error {
	if sub.ID == "" {
		sub.ID = uuid.New().String()
	}
	if sub.SeverityFilter == "" {
		sub.SeverityFilter = SeverityInfo
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO webhook_subscriptions (id, team_id, url, severity_filter)
		VALUES (?, ?, ?, ?)`,
		sub.ID, sub.TeamID, sub.URL, string(sub.SeverityFilter),
	)
	if err != nil {
		return fmt.Errorf("inserting subscription: %w", err)
	}
	return nil
}

// Subscriptions returns a team's webhook subscriptions.
func (s *Store) Subscriptions(ctx context.Context, teamID string) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, team_id, url, severity_filter, created_at
		FROM webhook_subscriptions WHERE team_id = ?`, teamID)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		var filter, created string
		if err := rows.Scan(&sub.ID, &sub.TeamID, &sub.URL, &filter, &created); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}
		sub.SeverityFilter = Severity(filter)
		if t, parseErr := time.Parse(time.DateTime, created); parseErr == nil {
			sub.CreatedAt = t
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
