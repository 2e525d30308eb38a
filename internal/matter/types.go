package matter

import "time"

// Stage is one step of the fixed matter-formation pipeline.
type Stage string

const (
	StageCollectParties  Stage = "collect_parties"
	StageConflictsCheck  Stage = "conflicts_check"
	StageDocumentsNeeded Stage = "documents_needed"
	StageFeeScope        Stage = "fee_scope"
	StageEngagement      Stage = "engagement"
	StageFilingPrep      Stage = "filing_prep"
	StageCompleted       Stage = "completed"
)

// stageOrder fixes the pipeline. StageCompleted is terminal: it has no
// outgoing transition.
var stageOrder = []Stage{
	StageCollectParties,
	StageConflictsCheck,
	StageDocumentsNeeded,
	StageFeeScope,
	StageEngagement,
	StageFilingPrep,
	StageCompleted,
}

// Index returns the stage's position in the pipeline, or -1 for an unknown
// stage.
func (s Stage) Index() int {
	for i, st := range stageOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Next returns the following pipeline stage. StageCompleted is absorbing.
func (s Stage) Next() Stage {
	i := s.Index()
	if i < 0 || i >= len(stageOrder)-1 {
		return StageCompleted
	}
	return stageOrder[i+1]
}

// ItemStatus is the completion status of one checklist item.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in_progress"
	ItemCompleted  ItemStatus = "completed"
)

// ChecklistItem is a sub-task gating progress out of a stage.
type ChecklistItem struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	Status   ItemStatus `json:"status"`
	Required bool       `json:"required"`
}

// RiskLevel grades a matter for the handoff decision.
type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskMed  RiskLevel = "med"
	RiskHigh RiskLevel = "high"
)

// TimelineEntry records one event applied to the matter. The timeline is
// strictly append-only.
type TimelineEntry struct {
	Date  string `json:"date"`
	Event string `json:"event"`
}

// Parties names everyone involved in the matter.
type Parties struct {
	Client   string   `json:"client"`
	Opposing []string `json:"opposing"`
	Orgs     []string `json:"orgs"`
}

// Risk is the current risk grade with supporting notes.
type Risk struct {
	Level RiskLevel `json:"level"`
	Notes []string  `json:"notes"`
}

// CaseBrief is the accumulating structured summary of a matter. It is owned
// by one engine instance and updated incrementally, never reset after
// creation.
type CaseBrief struct {
	Summary      string          `json:"summary"`
	Timeline     []TimelineEntry `json:"timeline"`
	Parties      Parties         `json:"parties"`
	Issues       []string        `json:"issues"`
	Jurisdiction string          `json:"jurisdiction"`
	DocsNeeded   []string        `json:"docs_needed"`
	DocsReceived []string        `json:"docs_received"`
	Risk         Risk            `json:"risk"`
	NextSteps    []string        `json:"next_steps"`
}

// HandoffReason explains why a human lawyer should take over.
type HandoffReason string

const (
	ReasonHardTrigger  HandoffReason = "hard_trigger"
	ReasonHighRisk     HandoffReason = "high_risk"
	ReasonDocumentGaps HandoffReason = "document_gaps"
)

// HandoffDecision is recomputed on every advance; it is persisted only as
// part of the owning state snapshot.
type HandoffDecision struct {
	Recommended bool          `json:"recommended"`
	Reason      HandoffReason `json:"reason,omitempty"`
	Message     string        `json:"message,omitempty"`
}

// ClientInfo holds the client identity collected during intake.
type ClientInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// Metadata carries the matter's identifying details.
type Metadata struct {
	TeamID        string      `json:"team_id,omitempty"`
	MatterID      string      `json:"matter_id,omitempty"`
	ClientInfo    *ClientInfo `json:"client_info,omitempty"`
	OpposingParty string      `json:"opposing_party,omitempty"`
	MatterType    string      `json:"matter_type,omitempty"`
}

// State is the full persisted record of one matter's formation process.
type State struct {
	Stage     Stage            `json:"stage"`
	Checklist []ChecklistItem  `json:"checklist"`
	CaseBrief *CaseBrief       `json:"case_brief,omitempty"`
	Handoff   *HandoffDecision `json:"handoff,omitempty"`
	Metadata  Metadata         `json:"metadata"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// EventType enumerates the workflow events the engine accepts.
type EventType string

const (
	EventUserInput         EventType = "user_input"
	EventConflictCheckDone EventType = "conflict_check_complete"
	EventDocumentsReceived EventType = "documents_received"
	EventPaymentComplete   EventType = "payment_complete"
	EventLetterSigned      EventType = "letter_signed"
)

// knownEventTypes validates incoming events.
var knownEventTypes = map[EventType]bool{
	EventUserInput:         true,
	EventConflictCheckDone: true,
	EventDocumentsReceived: true,
	EventPaymentComplete:   true,
	EventLetterSigned:      true,
}

// Event is one input to the workflow engine. Data is event-specific;
// IdempotencyKey, when set, guarantees at-most-once application.
type Event struct {
	Type           EventType      `json:"type"`
	Data           map[string]any `json:"data,omitempty"`
	IdempotencyKey string         `json:"idempotencyKey,omitempty"`
}

// DirectiveHandoff is set on a response when the engine recommends routing
// the conversation to a human lawyer.
const DirectiveHandoff = "handoff_to_intake"

// Response is the public view of the matter returned by all three engine
// operations.
type Response struct {
	Stage          Stage           `json:"stage"`
	Checklist      []ChecklistItem `json:"checklist"`
	NextActions    []string        `json:"nextActions"`
	Missing        []string        `json:"missing"`
	Completed      bool            `json:"completed"`
	Metadata       Metadata        `json:"metadata"`
	CaseBrief      *CaseBrief      `json:"caseBrief,omitempty"`
	Directive      string          `json:"directive,omitempty"`
	HandoffReason  HandoffReason   `json:"handoffReason,omitempty"`
	HandoffMessage string          `json:"handoffMessage,omitempty"`
	Idempotent     bool            `json:"idempotent,omitempty"`
}

// ChecklistView is the reduced view returned by the checklist operation.
type ChecklistView struct {
	Checklist []ChecklistItem `json:"checklist"`
	Stage     Stage           `json:"stage"`
	Completed bool            `json:"completed"`
}
