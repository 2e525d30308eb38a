package matter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/lexflowhq/lexflow/internal/audit"
)

// ValidationError reports an event the engine cannot apply.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid event: %s %s", e.Field, e.Reason)
}

// Recorder is the append-only audit sink. Writes are best-effort: a failed
// append is logged and swallowed, never failing the advance.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) error
}

// HandoffNotice is delivered to the notifier when an advance recommends
// routing the matter to a human lawyer.
type HandoffNotice struct {
	TeamID   string
	MatterID string
	Reason   HandoffReason
	Message  string
	Summary  string
}

// Notifier receives handoff recommendations. Delivery is best-effort.
type Notifier interface {
	HandoffRecommended(ctx context.Context, notice HandoffNotice)
}

// Engine owns the authoritative formation lifecycle of one matter. All
// operations on one instance are serialized by its mutex, so the
// stage/checklist/case-brief triple can never race.
type Engine struct {
	teamID   string
	matterID string
	store    *Store
	audit    Recorder
	notifier Notifier

	mu    sync.Mutex
	state *State
}

// Advance applies one workflow event and returns the resulting public view.
//
// If the event carries an idempotency key that was already applied to this
// matter, the stored response is returned unchanged (marked idempotent) with
// no re-execution, no duplicate audit entry, and no checklist re-evaluation.
// A state persistence failure is fatal to the call; the caller must retry.
func (e *Engine) Advance(ctx context.Context, ev Event) (*Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !knownEventTypes[ev.Type] {
		return nil, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown event type %q", ev.Type)}
	}

	if ev.IdempotencyKey != "" {
		stored, err := e.store.GetResponse(ctx, e.teamID, e.matterID, ev.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			stored.Idempotent = true
			return stored, nil
		}
	}

	now := time.Now().UTC()

	st, err := e.loadLocked(ctx, now)
	if err != nil {
		return nil, err
	}

	// The transition is computed fully in memory on a working copy; nothing
	// is persisted until the new state and its audit record are final, so a
	// failure can never leave the checklist or brief half-updated.
	work := cloneState(st)
	fromStage := work.Stage

	mergeEventData(work, ev)
	applyChecklistData(work, ev)

	if next, ok := nextStage(work, ev); ok {
		completeRequired(work.Checklist)
		work.Stage = next
		work.Checklist = newChecklist(next)
	}

	appendTimeline(work, ev, now)
	work.CaseBrief.Summary = renderSummary(work)
	a := assessRisk(work.CaseBrief)
	work.Handoff = decideHandoff(work.CaseBrief, a)
	work.CaseBrief.NextSteps = pendingTitles(work.Checklist)
	work.UpdatedAt = now

	resp := buildResponse(work, false)

	if err := e.store.SaveWithResponse(ctx, e.teamID, e.matterID, work, ev.IdempotencyKey, resp); err != nil {
		return nil, err
	}
	e.state = work

	e.recordAudit(ctx, ev, fromStage, work.Stage)

	if e.notifier != nil && work.Handoff != nil && work.Handoff.Recommended {
		e.notifier.HandoffRecommended(ctx, HandoffNotice{
			TeamID:   e.teamID,
			MatterID: e.matterID,
			Reason:   work.Handoff.Reason,
			Message:  work.Handoff.Message,
			Summary:  work.CaseBrief.Summary,
		})
	}

	return resp, nil
}

// Status returns the current public view without mutating anything.
func (e *Engine) Status(ctx context.Context) (*Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadLocked(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return buildResponse(st, false), nil
}

// Checklist returns the current checklist and completion flag.
func (e *Engine) Checklist(ctx context.Context) (*ChecklistView, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.loadLocked(ctx, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return &ChecklistView{
		Checklist: st.Checklist,
		Stage:     st.Stage,
		Completed: st.Stage == StageCompleted,
	}, nil
}

// loadLocked returns the cached state, loading or initializing it on first
// access. A fresh state is not persisted until the first advance. Callers
// must hold e.mu.
func (e *Engine) loadLocked(ctx context.Context, now time.Time) (*State, error) {
	if e.state != nil {
		return e.state, nil
	}

	st, err := e.store.Load(ctx, e.teamID, e.matterID)
	if err != nil {
		return nil, err
	}
	if st == nil {
		st = newState(e.teamID, e.matterID, now)
	}
	e.state = st
	return st, nil
}

func (e *Engine) recordAudit(ctx context.Context, ev Event, from, to Stage) {
	if e.audit == nil {
		return
	}
	entry := audit.Entry{
		TeamID:         e.teamID,
		MatterID:       e.matterID,
		EventType:      string(ev.Type),
		FromStage:      string(from),
		ToStage:        string(to),
		IdempotencyKey: ev.IdempotencyKey,
		Summary:        fmt.Sprintf("%s: %s -> %s", ev.Type, from, to),
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		// Audit durability is secondary to forward progress of the matter.
		log.Printf("matter: audit append failed for %s/%s: %v", e.teamID, e.matterID, err)
	}
}

// newState initializes a matter at the head of the pipeline.
func newState(teamID, matterID string, now time.Time) *State {
	return &State{
		Stage:     StageCollectParties,
		Checklist: newChecklist(StageCollectParties),
		CaseBrief: newCaseBrief(),
		Metadata:  Metadata{TeamID: teamID, MatterID: matterID},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// nextStage evaluates the current stage's guard against the event and the
// working state. StageCompleted is absorbing.
func nextStage(st *State, ev Event) (Stage, bool) {
	switch st.Stage {
	case StageCollectParties:
		if clientIdentified(st) && (st.Metadata.OpposingParty != "" || st.Metadata.MatterType != "") {
			return StageConflictsCheck, true
		}
	case StageConflictsCheck:
		if ev.Type == EventConflictCheckDone {
			return StageDocumentsNeeded, true
		}
	case StageDocumentsNeeded:
		if ev.Type == EventDocumentsReceived || allComplete(st.Checklist) {
			return StageFeeScope, true
		}
	case StageFeeScope:
		if ev.Type == EventPaymentComplete || boolField(ev.Data, "fee_approved") {
			return StageEngagement, true
		}
	case StageEngagement:
		if ev.Type == EventLetterSigned || boolField(ev.Data, "letter_signed", "engagement_signed") {
			return StageFilingPrep, true
		}
	case StageFilingPrep:
		if requiredComplete(st.Checklist) {
			return StageCompleted, true
		}
	}
	return "", false
}

func clientIdentified(st *State) bool {
	return st.Metadata.ClientInfo != nil && st.Metadata.ClientInfo.Name != ""
}

// applyChecklistData marks checklist items the event's payload completes:
// an explicit completed_items list, plus fact-derived items while collecting
// parties.
func applyChecklistData(st *State, ev Event) {
	completeItems(st.Checklist, stringList(ev.Data, "completed_items")...)

	if st.Stage == StageCollectParties {
		if clientIdentified(st) {
			completeItems(st.Checklist, "client_identity")
		}
		if ci := st.Metadata.ClientInfo; ci != nil && (ci.Email != "" || ci.Phone != "") {
			completeItems(st.Checklist, "contact_channel")
		}
		if st.Metadata.OpposingParty != "" {
			completeItems(st.Checklist, "opposing_party")
		}
		if st.Metadata.MatterType != "" {
			completeItems(st.Checklist, "matter_type")
		}
	}
}

// buildResponse projects the state into its public view.
func buildResponse(st *State, idempotent bool) *Response {
	resp := &Response{
		Stage:       st.Stage,
		Checklist:   st.Checklist,
		NextActions: pendingTitles(st.Checklist),
		Missing:     pendingRequired(st.Checklist),
		Completed:   st.Stage == StageCompleted,
		Metadata:    st.Metadata,
		CaseBrief:   st.CaseBrief,
		Idempotent:  idempotent,
	}
	if resp.NextActions == nil {
		resp.NextActions = []string{}
	}
	if resp.Missing == nil {
		resp.Missing = []string{}
	}
	if st.Handoff != nil && st.Handoff.Recommended {
		resp.Directive = DirectiveHandoff
		resp.HandoffReason = st.Handoff.Reason
		resp.HandoffMessage = st.Handoff.Message
	}
	return resp
}

// cloneState deep-copies a state snapshot via its JSON form.
func cloneState(st *State) *State {
	raw, err := json.Marshal(st)
	if err != nil {
		// State is always JSON-serializable; treat failure as programmer error.
		panic(fmt.Sprintf("matter: state not serializable: %v", err))
	}
	var out State
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(fmt.Sprintf("matter: state not round-trippable: %v", err))
	}
	return &out
}
