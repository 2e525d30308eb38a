package audit

import "time"

// Entry is a single workflow audit record: one event applied to one matter,
// with the stage transition it produced.
type Entry struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	TeamID         string    `json:"team_id"`
	MatterID       string    `json:"matter_id"`
	EventType      string    `json:"event_type"`
	FromStage      string    `json:"from_stage"`
	ToStage        string    `json:"to_stage"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	Summary        string    `json:"summary"`
	Detail         string    `json:"detail,omitempty"`
}

// Transitioned reports whether the entry records an actual stage change.
func (e Entry) Transitioned() bool {
	return e.FromStage != e.ToStage
}
