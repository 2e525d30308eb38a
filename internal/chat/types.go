package chat

import (
	"time"

	"github.com/lexflowhq/lexflow/internal/intake"
	"github.com/lexflowhq/lexflow/internal/matter"
)

// Session is one intake conversation. Once a matter has been created the
// session is pinned: MatterCreated never flips back and Outcome holds the
// confirmation message replayed on later create attempts.
type Session struct {
	ID            string    `json:"id"`
	TeamID        string    `json:"team_id"`
	UserID        string    `json:"user_id"`
	MatterID      string    `json:"matter_id,omitempty"`
	MatterCreated bool      `json:"matter_created"`
	Outcome       string    `json:"outcome,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Message is one utterance in a session transcript.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnResult is what one processed user turn produces.
type TurnResult struct {
	SessionID     string           `json:"session_id"`
	Reply         string           `json:"reply"`
	State         intake.State     `json:"state"`
	MatterID      string           `json:"matter_id,omitempty"`
	MatterCreated bool             `json:"matter_created"`
	Matter        *matter.Response `json:"matter,omitempty"`
}
