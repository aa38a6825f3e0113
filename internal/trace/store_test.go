package trace

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func makeTrace(agentID, goal string, completedAt time.Time) *Trace {
	wo := NewWorkOrder(agentID, goal)
	t := &Trace{
		ID:          "trace-" + completedAt.Format("150405.000"),
		WorkOrderID: wo.ID,
		AgentID:     agentID,
		Goal:        goal,
		Method:      MethodPlanning,
		StartedAt:   completedAt.Add(-time.Second),
		CompletedAt: completedAt,
		DurationMs:  1000,
	}
	t.AppendStep("planning", goal, "plan output")
	return t
}

func testStoreOrdering(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 15; i++ {
		tr := makeTrace("budtender", "Summarize Q1 sales", base.Add(time.Duration(i)*time.Minute))
		tr.ID = tr.ID + "-" + string(rune('a'+i))
		if err := store.SaveTrace(ctx, tr); err != nil {
			t.Fatalf("SaveTrace() error = %v", err)
		}
	}
	// A different agent's trace must not leak into the partition.
	other := makeTrace("copywriter", "Draft promo email", base.Add(time.Hour))
	if err := store.SaveTrace(ctx, other); err != nil {
		t.Fatalf("SaveTrace() error = %v", err)
	}

	order := NewWorkOrder("budtender", "Summarize Q1 sales")
	got, err := store.FindSimilarTraces(ctx, order, 0)
	if err != nil {
		t.Fatalf("FindSimilarTraces() error = %v", err)
	}
	if len(got) != DefaultRecallLimit {
		t.Fatalf("expected %d traces, got %d", DefaultRecallLimit, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].CompletedAt.After(got[i-1].CompletedAt) {
			t.Errorf("traces not newest-first at index %d", i)
		}
	}
	for _, tr := range got {
		if tr.AgentID != "budtender" {
			t.Errorf("trace from wrong partition: %s", tr.AgentID)
		}
	}
}

func testStoreFeedback(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	tr := makeTrace("budtender", "Summarize Q1 sales", time.Now().UTC())
	if err := store.SaveTrace(ctx, tr); err != nil {
		t.Fatalf("SaveTrace() error = %v", err)
	}
	if err := store.RecordFeedback(ctx, tr.ID, 0.9); err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}
	if err := store.RecordFeedback(ctx, "missing-id", 0.1); err == nil {
		t.Error("expected error for unknown trace id")
	}

	got, err := store.FindSimilarTraces(ctx, NewWorkOrder("budtender", "whatever"), 1)
	if err != nil {
		t.Fatalf("FindSimilarTraces() error = %v", err)
	}
	if len(got) != 1 || got[0].FeedbackScore == nil || *got[0].FeedbackScore != 0.9 {
		t.Errorf("expected feedback score 0.9 on recalled trace, got %+v", got)
	}
}

func TestMemoryStore_Ordering(t *testing.T) {
	testStoreOrdering(t, NewMemoryStore())
}

func TestMemoryStore_Feedback(t *testing.T) {
	testStoreFeedback(t, NewMemoryStore())
}

func TestMemoryStore_CopiesOnSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	tr := makeTrace("budtender", "Summarize Q1 sales", time.Now().UTC())
	if err := store.SaveTrace(ctx, tr); err != nil {
		t.Fatalf("SaveTrace() error = %v", err)
	}

	// Mutating the caller's trace after save must not affect the stored copy.
	tr.AppendStep("mutation", "after save", "should not appear")

	got, err := store.FindSimilarTraces(ctx, NewWorkOrder("budtender", "x"), 1)
	if err != nil {
		t.Fatalf("FindSimilarTraces() error = %v", err)
	}
	if len(got[0].Steps) != 1 {
		t.Errorf("stored trace mutated after save: %d steps", len(got[0].Steps))
	}
}

func TestSQLiteStore_Ordering(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	testStoreOrdering(t, store)
}

func TestSQLiteStore_Feedback(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()
	testStoreFeedback(t, store)
}

func TestSQLiteStore_RoundTripsSteps(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "traces.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	tr := makeTrace("budtender", "Summarize Q1 sales", time.Now().UTC())
	tr.AppendStep("tool_call", `{"name":"query_sales"}`, "42 units")
	if err := store.SaveTrace(ctx, tr); err != nil {
		t.Fatalf("SaveTrace() error = %v", err)
	}

	got, err := store.FindSimilarTraces(ctx, NewWorkOrder("budtender", "x"), 1)
	if err != nil {
		t.Fatalf("FindSimilarTraces() error = %v", err)
	}
	if len(got) != 1 || len(got[0].Steps) != 2 {
		t.Fatalf("expected 2 steps after round trip, got %+v", got)
	}
	if got[0].Steps[1].Action != "tool_call" {
		t.Errorf("step order not preserved: %+v", got[0].Steps)
	}
}
