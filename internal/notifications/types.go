package notifications

import "time"

// Severity indicates the urgency of a handoff alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Notification is a single handoff alert: the workflow engine recommended
// routing a matter to a human lawyer.
type Notification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Reason    string    `json:"reason"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	TeamID    string    `json:"team_id"`
	MatterID  string    `json:"matter_id"`
	Delivered bool      `json:"delivered"`
	CreatedAt time.Time `json:"created_at"`
}

// Subscription registers a webhook that receives a team's handoff alerts at
// or above its severity filter.
type Subscription struct {
	ID             string    `json:"id"`
	TeamID         string    `json:"team_id"`
	URL            string    `json:"url"`
	SeverityFilter Severity  `json:"severity_filter"`
	CreatedAt      time.Time `json:"created_at"`
}
