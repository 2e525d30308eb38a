package matter

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/lexflowhq/lexflow/internal/audit"
	"github.com/lexflowhq/lexflow/internal/db"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
	fail    bool
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("audit sink unavailable")
	}
	r.entries = append(r.entries, entry)
	return nil
}

func (r *recordingAudit) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []HandoffNotice
}

func (n *recordingNotifier) HandoffRecommended(_ context.Context, notice HandoffNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func setupManager(t *testing.T) (*Manager, *recordingAudit, *recordingNotifier) {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	sink := &recordingAudit{}
	notifier := &recordingNotifier{}
	return NewManager(NewStore(database), sink, notifier), sink, notifier
}

func TestFreshMatterStatus(t *testing.T) {
	mgr, _, _ := setupManager(t)
	ctx := context.Background()

	resp, err := mgr.Engine("acme", "m-1").Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if resp.Stage != StageCollectParties {
		t.Errorf("fresh matter stage = %s, want %s", resp.Stage, StageCollectParties)
	}
	if resp.Completed {
		t.Error("fresh matter must not be completed")
	}
	found := false
	for _, id := range resp.Missing {
		if id == "client_identity" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing should list client_identity, got %v", resp.Missing)
	}
}

func TestAdvanceRejectsUnknownEvent(t *testing.T) {
	mgr, _, _ := setupManager(t)

	_, err := mgr.Engine("acme", "m-1").Advance(context.Background(), Event{Type: "made_up"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestAdvanceFullPipeline(t *testing.T) {
	mgr, sink, _ := setupManager(t)
	ctx := context.Background()
	eng := mgr.Engine("acme", "m-1")

	steps := []struct {
		ev   Event
		want Stage
	}{
		{Event{Type: EventUserInput, Data: map[string]any{
			"name":           "Jordan Lee",
			"email":          "jordan@example.com",
			"legal_issue":    "contract dispute over unpaid invoices",
			"opposing_party": "Acme Corp",
		}}, StageConflictsCheck},
		{Event{Type: EventConflictCheckDone}, StageDocumentsNeeded},
		{Event{Type: EventDocumentsReceived}, StageFeeScope},
		{Event{Type: EventPaymentComplete}, StageEngagement},
		{Event{Type: EventLetterSigned}, StageFilingPrep},
		{Event{Type: EventUserInput, Data: map[string]any{
			"completed_items": []any{"draft_filings", "final_review"},
		}}, StageCompleted},
	}

	for i, step := range steps {
		resp, err := eng.Advance(ctx, step.ev)
		if err != nil {
			t.Fatalf("step %d: Advance(%s) error: %v", i, step.ev.Type, err)
		}
		if resp.Stage != step.want {
			t.Fatalf("step %d: stage = %s, want %s", i, resp.Stage, step.want)
		}
	}

	final, err := eng.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if !final.Completed {
		t.Error("pipeline should report completed")
	}
	if len(final.CaseBrief.Timeline) != len(steps) {
		t.Errorf("timeline has %d entries, want %d", len(final.CaseBrief.Timeline), len(steps))
	}
	if sink.count() != len(steps) {
		t.Errorf("audit has %d entries, want %d", sink.count(), len(steps))
	}
	if got := final.CaseBrief.Parties.Opposing; len(got) != 1 || got[0] != "Acme Corp" {
		t.Errorf("opposing parties = %v", got)
	}
}

func TestAdvanceHoldsWithoutGuard(t *testing.T) {
	mgr, _, _ := setupManager(t)
	ctx := context.Background()
	eng := mgr.Engine("acme", "m-1")

	// A name alone does not satisfy the collect_parties guard.
	resp, err := eng.Advance(ctx, Event{Type: EventUserInput, Data: map[string]any{"name": "Jordan Lee"}})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if resp.Stage != StageCollectParties {
		t.Errorf("stage = %s, want %s", resp.Stage, StageCollectParties)
	}

	// Out-of-stage events never advance either.
	resp, err = eng.Advance(ctx, Event{Type: EventPaymentComplete})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if resp.Stage != StageCollectParties {
		t.Errorf("payment event moved stage to %s", resp.Stage)
	}
}

func TestFilingPrepRequiresChecklist(t *testing.T) {
	mgr, _, _ := setupManager(t)
	ctx := context.Background()
	eng := mgr.Engine("acme", "m-1")

	events := []Event{
		{Type: EventUserInput, Data: map[string]any{"name": "Jordan Lee", "matter_type": "contract"}},
		{Type: EventConflictCheckDone},
		{Type: EventDocumentsReceived},
		{Type: EventPaymentComplete},
		{Type: EventLetterSigned},
	}
	for _, ev := range events {
		if _, err := eng.Advance(ctx, ev); err != nil {
			t.Fatalf("Advance(%s) error: %v", ev.Type, err)
		}
	}

	// Required filing items pending: the stage must hold.
	resp, err := eng.Advance(ctx, Event{Type: EventUserInput})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if resp.Stage != StageFilingPrep {
		t.Fatalf("stage = %s, want %s", resp.Stage, StageFilingPrep)
	}
	if len(resp.Missing) == 0 {
		t.Error("missing should list pending required filing items")
	}
}

func TestAdvanceIdempotentReplay(t *testing.T) {
	mgr, sink, _ := setupManager(t)
	ctx := context.Background()
	eng := mgr.Engine("acme", "m-1")

	ev := Event{
		Type: EventUserInput,
		Data: map[string]any{
			"name": "Jordan Lee", "phone": "+1 555 0100",
			"legal_issue": "contract dispute", "matter_type": "contract",
		},
		IdempotencyKey: "evt-001",
	}

	first, err := eng.Advance(ctx, ev)
	if err != nil {
		t.Fatalf("first Advance() error: %v", err)
	}
	if first.Idempotent {
		t.Error("first application must not be marked idempotent")
	}

	replay, err := eng.Advance(ctx, ev)
	if err != nil {
		t.Fatalf("replay Advance() error: %v", err)
	}
	if !replay.Idempotent {
		t.Fatal("replay must be marked idempotent")
	}
	if replay.Stage != first.Stage {
		t.Errorf("replay stage = %s, want %s", replay.Stage, first.Stage)
	}
	if len(replay.CaseBrief.Timeline) != len(first.CaseBrief.Timeline) {
		t.Error("replay must not re-execute the timeline append")
	}
	if sink.count() != 1 {
		t.Errorf("audit has %d entries after replay, want 1", sink.count())
	}
}

func TestReplayAfterProgressDoesNotRegress(t *testing.T) {
	mgr, _, _ := setupManager(t)
	ctx := context.Background()
	eng := mgr.Engine("acme", "m-1")

	ev := Event{
		Type:           EventUserInput,
		Data:           map[string]any{"name": "Jordan Lee", "matter_type": "contract"},
		IdempotencyKey: "evt-001",
	}
	if _, err := eng.Advance(ctx, ev); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if _, err := eng.Advance(ctx, Event{Type: EventConflictCheckDone}); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	replay, err := eng.Advance(ctx, ev)
	if err != nil {
		t.Fatalf("replay error: %v", err)
	}
	if !replay.Idempotent || replay.Stage != StageConflictsCheck {
		t.Errorf("replay = (idempotent=%v, stage=%s), want stored first response", replay.Idempotent, replay.Stage)
	}

	status, err := eng.Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if status.Stage != StageDocumentsNeeded {
		t.Errorf("replay regressed live stage to %s", status.Stage)
	}
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	defer database.Close()
	store := NewStore(database)
	ctx := context.Background()

	first := NewManager(store, nil, nil)
	if _, err := first.Engine("acme", "m-1").Advance(ctx, Event{
		Type: EventUserInput,
		Data: map[string]any{"name": "Jordan Lee", "matter_type": "contract"},
	}); err != nil {
		t.Fatalf("Advance() error: %v", err)
	}

	// A fresh manager simulates a process restart against the same database.
	second := NewManager(store, nil, nil)
	resp, err := second.Engine("acme", "m-1").Status(ctx)
	if err != nil {
		t.Fatalf("Status() error: %v", err)
	}
	if resp.Stage != StageConflictsCheck {
		t.Errorf("reloaded stage = %s, want %s", resp.Stage, StageConflictsCheck)
	}
	if resp.Metadata.ClientInfo == nil || resp.Metadata.ClientInfo.Name != "Jordan Lee" {
		t.Error("client info was not persisted")
	}
}

func TestAuditFailureDoesNotFailAdvance(t *testing.T) {
	mgr, sink, _ := setupManager(t)
	sink.fail = true
	ctx := context.Background()

	resp, err := mgr.Engine("acme", "m-1").Advance(ctx, Event{
		Type: EventUserInput,
		Data: map[string]any{"name": "Jordan Lee", "matter_type": "contract"},
	})
	if err != nil {
		t.Fatalf("Advance() must survive audit failure, got: %v", err)
	}
	if resp.Stage != StageConflictsCheck {
		t.Errorf("stage = %s, want %s", resp.Stage, StageConflictsCheck)
	}
}

func TestPersistenceFailureIsFatal(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	mgr := NewManager(NewStore(database), nil, nil)
	database.Close()

	_, err = mgr.Engine("acme", "m-1").Advance(context.Background(), Event{
		Type: EventUserInput,
		Data: map[string]any{"name": "Jordan Lee", "matter_type": "contract"},
	})
	if err == nil {
		t.Fatal("expected persistence error")
	}
}

func TestHandoffOnHardTrigger(t *testing.T) {
	mgr, _, notifier := setupManager(t)
	ctx := context.Background()

	resp, err := mgr.Engine("acme", "m-1").Advance(ctx, Event{
		Type: EventUserInput,
		Data: map[string]any{
			"name":        "Jordan Lee",
			"legal_issue": "criminal charge after an arrest",
			"matter_type": "criminal defense",
		},
	})
	if err != nil {
		t.Fatalf("Advance() error: %v", err)
	}
	if resp.Directive != DirectiveHandoff {
		t.Fatalf("directive = %q, want %q", resp.Directive, DirectiveHandoff)
	}
	if resp.HandoffReason != ReasonHardTrigger {
		t.Errorf("reason = %s, want %s", resp.HandoffReason, ReasonHardTrigger)
	}
	if resp.HandoffMessage == "" {
		t.Error("handoff message must be set")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.notices) != 1 {
		t.Fatalf("notifier received %d notices, want 1", len(notifier.notices))
	}
	if notifier.notices[0].Reason != ReasonHardTrigger {
		t.Errorf("notice reason = %s", notifier.notices[0].Reason)
	}
}

func TestManagerReturnsSameEngine(t *testing.T) {
	mgr, _, _ := setupManager(t)

	a := mgr.Engine("acme", "m-1")
	b := mgr.Engine("acme", "m-1")
	c := mgr.Engine("acme", "m-2")

	if a != b {
		t.Error("same matter identity must map to one engine instance")
	}
	if a == c {
		t.Error("distinct matters must not share an engine")
	}
}
