package metrics

import (
	"path/filepath"
	"testing"
	"time"

	"diet-plan-assistant/internal/database"
	"diet-plan-assistant/internal/shared"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewDB(filepath.Join(t.TempDir(), "metrics-test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db.SQL)
}

func TestRecordAndDailyUsage(t *testing.T) {
	store := newTestStore(t)

	err := store.Record(ExecutionMetric{
		AgentName:        "DietPlanner",
		Model:            "models/gemini-2.5-flash",
		PromptTokens:     120,
		CompletionTokens: 450,
		LatencyMS:        900,
	})
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	usage, err := store.GetDailyUsage(7)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 1 {
		t.Fatalf("Expected 1 day of usage, got %d", len(usage))
	}
	if usage[0].TotalPrompt != 120 || usage[0].TotalCompletion != 450 {
		t.Errorf("Unexpected totals: %+v", usage[0])
	}
	if usage[0].TotalExecution != 1 {
		t.Errorf("Expected 1 execution, got %d", usage[0].TotalExecution)
	}
}

func TestRecordMetaSkipsEmptyUsage(t *testing.T) {
	store := newTestStore(t)

	if err := store.RecordMeta(shared.AgentMeta{AgentName: "DietPlanner"}); err != nil {
		t.Fatalf("RecordMeta failed: %v", err)
	}

	usage, err := store.GetDailyUsage(7)
	if err != nil {
		t.Fatalf("GetDailyUsage failed: %v", err)
	}
	if len(usage) != 0 {
		t.Errorf("Expected no recorded usage for empty meta, got %+v", usage)
	}
}

func TestCleanup(t *testing.T) {
	store := newTestStore(t)

	old := ExecutionMetric{
		AgentName: "DietPlanner", Model: "m",
		Timestamp: time.Now().AddDate(0, 0, -60).UTC(),
	}
	fresh := ExecutionMetric{AgentName: "DietPlanner", Model: "m"}
	if err := store.Record(old); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := store.Record(fresh); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	removed, err := store.Cleanup(30)
	if err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Expected 1 row removed, got %d", removed)
	}
}
