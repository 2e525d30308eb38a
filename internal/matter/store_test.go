package matter

import (
	"context"
	"testing"
	"time"

	"github.com/lexflowhq/lexflow/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return NewStore(database)
}

func TestSaveAndLoad(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := newState("acme", "m-1", time.Now().UTC())
	st.Stage = StageFeeScope
	st.Checklist = newChecklist(StageFeeScope)
	st.Metadata.ClientInfo = &ClientInfo{Name: "Jordan Lee", Email: "jordan@example.com"}

	if err := store.Save(ctx, "acme", "m-1", st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Load(ctx, "acme", "m-1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got == nil {
		t.Fatal("Load() returned nil for saved matter")
	}
	if got.Stage != StageFeeScope {
		t.Errorf("stage = %s, want %s", got.Stage, StageFeeScope)
	}
	if got.Metadata.ClientInfo == nil || got.Metadata.ClientInfo.Name != "Jordan Lee" {
		t.Error("client info lost in round trip")
	}
	if len(got.Checklist) != len(checklistTemplates[StageFeeScope]) {
		t.Errorf("checklist has %d items", len(got.Checklist))
	}
}

func TestLoadAbsentReturnsNil(t *testing.T) {
	store := setupStore(t)

	got, err := store.Load(context.Background(), "acme", "missing")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != nil {
		t.Error("Load() of absent matter should return nil")
	}
}

func TestSaveUpserts(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := newState("acme", "m-1", time.Now().UTC())
	if err := store.Save(ctx, "acme", "m-1", st); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	st.Stage = StageEngagement
	if err := store.Save(ctx, "acme", "m-1", st); err != nil {
		t.Fatalf("second Save() error: %v", err)
	}

	got, err := store.Load(ctx, "acme", "m-1")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Stage != StageEngagement {
		t.Errorf("stage = %s, want upserted %s", got.Stage, StageEngagement)
	}
}

func TestIdempotencyRecordIsImmutable(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := newState("acme", "m-1", time.Now().UTC())
	first := &Response{Stage: StageCollectParties}
	if err := store.SaveWithResponse(ctx, "acme", "m-1", st, "k-1", first); err != nil {
		t.Fatalf("SaveWithResponse() error: %v", err)
	}

	// A second write under the same key must not replace the record.
	later := &Response{Stage: StageCompleted}
	if err := store.SaveWithResponse(ctx, "acme", "m-1", st, "k-1", later); err != nil {
		t.Fatalf("second SaveWithResponse() error: %v", err)
	}

	got, err := store.GetResponse(ctx, "acme", "m-1", "k-1")
	if err != nil {
		t.Fatalf("GetResponse() error: %v", err)
	}
	if got == nil || got.Stage != StageCollectParties {
		t.Errorf("stored response = %+v, want the first write", got)
	}
}

func TestGetResponseAbsent(t *testing.T) {
	store := setupStore(t)

	got, err := store.GetResponse(context.Background(), "acme", "m-1", "never-seen")
	if err != nil {
		t.Fatalf("GetResponse() error: %v", err)
	}
	if got != nil {
		t.Error("unknown key should return nil response")
	}
}

func TestIdempotencyKeysScopedPerMatter(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	st := newState("acme", "m-1", time.Now().UTC())
	if err := store.SaveWithResponse(ctx, "acme", "m-1", st, "k-1", &Response{Stage: StageCollectParties}); err != nil {
		t.Fatalf("SaveWithResponse() error: %v", err)
	}

	got, err := store.GetResponse(ctx, "acme", "m-2", "k-1")
	if err != nil {
		t.Fatalf("GetResponse() error: %v", err)
	}
	if got != nil {
		t.Error("key from another matter must not be visible")
	}
}
