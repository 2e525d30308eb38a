package matter

import (
	"testing"
	"time"
)

func testState() *State {
	return newState("acme", "m-1", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
}

func TestMergeOpposingPartiesUnion(t *testing.T) {
	st := testState()

	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{"opposing_party": "Acme Corp"}})
	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{"opposing_party": "acme corp"}})
	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{
		"opposing_parties": []any{"Beta LLC", "Acme Corp"},
	}})

	got := st.CaseBrief.Parties.Opposing
	if len(got) != 2 {
		t.Fatalf("opposing parties = %v, want set of 2", got)
	}
	if got[0] != "Acme Corp" || got[1] != "Beta LLC" {
		t.Errorf("opposing parties = %v", got)
	}
}

func TestMergeMatterTypeOverwrites(t *testing.T) {
	st := testState()

	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{"matter_type": "contract"}})
	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{"matter_type": "employment"}})

	if st.Metadata.MatterType != "employment" {
		t.Errorf("matter type = %q, want overwrite to employment", st.Metadata.MatterType)
	}
}

func TestTimelineAppendOnly(t *testing.T) {
	st := testState()
	now := time.Now().UTC()

	appendTimeline(st, Event{Type: EventUserInput}, now)
	appendTimeline(st, Event{Type: EventConflictCheckDone}, now.Add(time.Minute))

	if len(st.CaseBrief.Timeline) != 2 {
		t.Fatalf("timeline length = %d, want 2", len(st.CaseBrief.Timeline))
	}
	if st.CaseBrief.Timeline[0].Event != "user_input (stage: collect_parties)" {
		t.Errorf("first entry = %q", st.CaseBrief.Timeline[0].Event)
	}
}

func TestDocumentsReceivedClearsOutstanding(t *testing.T) {
	st := testState()

	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{
		"docs_needed": []any{"lease agreement", "pay stubs"},
	}})
	if n := len(stillNeededDocs(st.CaseBrief)); n != 2 {
		t.Fatalf("outstanding = %d, want 2", n)
	}

	// Itemized receipt clears only what it names.
	mergeEventData(st, Event{Type: EventDocumentsReceived, Data: map[string]any{
		"docs_received": []any{"Lease Agreement"},
	}})
	if n := len(stillNeededDocs(st.CaseBrief)); n != 1 {
		t.Fatalf("outstanding after partial receipt = %d, want 1", n)
	}

	// A bare receipt event clears the rest wholesale.
	mergeEventData(st, Event{Type: EventDocumentsReceived})
	if n := len(stillNeededDocs(st.CaseBrief)); n != 0 {
		t.Errorf("outstanding after bare receipt = %d, want 0", n)
	}
}

func TestConflictFlagBecomesRiskNote(t *testing.T) {
	st := testState()

	mergeEventData(st, Event{Type: EventConflictCheckDone, Data: map[string]any{"conflict_found": true}})

	if len(st.CaseBrief.Risk.Notes) == 0 {
		t.Fatal("conflict flag should produce a risk note")
	}
}

func TestSummaryRegeneration(t *testing.T) {
	st := testState()

	mergeEventData(st, Event{Type: EventUserInput, Data: map[string]any{
		"name":           "Jordan Lee",
		"matter_type":    "employment",
		"opposing_party": "Acme Corp",
		"jurisdiction":   "California",
	}})

	want := "Jordan Lee — employment matter vs Acme Corp in California."
	if st.CaseBrief.Summary != want {
		t.Errorf("summary = %q, want %q", st.CaseBrief.Summary, want)
	}
}

func TestNewChecklistIsFreshAndPending(t *testing.T) {
	a := newChecklist(StageConflictsCheck)
	completeItems(a, "run_conflicts_search")

	b := newChecklist(StageConflictsCheck)
	for _, item := range b {
		if item.Status != ItemPending {
			t.Errorf("new checklist item %s status = %s, want pending", item.ID, item.Status)
		}
	}
	if requiredComplete(b) {
		t.Error("fresh conflicts checklist must not be complete")
	}
}

func TestPendingRequired(t *testing.T) {
	items := newChecklist(StageFeeScope)
	completeItems(items, "fee_agreement_drafted")

	got := pendingRequired(items)
	if len(got) != 2 {
		t.Fatalf("pending required = %v, want 2 entries", got)
	}
	completeItems(items, "scope_confirmed", "payment_collected")
	if !requiredComplete(items) {
		t.Error("all required completed, requiredComplete should be true")
	}
}
