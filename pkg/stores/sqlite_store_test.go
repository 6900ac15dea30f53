package stores

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/trackforge/trackforge/pkg/engine"
	"github.com/trackforge/trackforge/pkg/facts"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(Config{Path: filepath.Join(t.TempDir(), "history.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return store
}

func samplePlan(id string) *engine.Plan {
	plan := &engine.Plan{
		ID:        id,
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Actions: []engine.Action{
			engine.EnsureBundle{Bundle: "Priorities", BundleKind: facts.BundleEnum},
			engine.CreateField{Field: "Priority", FieldType: "enum", Bundle: "Priorities"},
			engine.DeleteWorkflow{Workflow: "legacy"},
		},
	}
	plan.Summary = engine.Summary{
		TotalActions: 3,
		Missing:      2,
		Deletable:    1,
		Destructive:  1,
	}
	return plan
}

func TestSavePlanAndGetPlan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	original := samplePlan("plan-1")
	if err := store.SavePlan(ctx, original); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	loaded, err := store.GetPlan(ctx, "plan-1")
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if loaded.ID != original.ID || len(loaded.Actions) != len(original.Actions) {
		t.Fatalf("stored plan changed: %+v", loaded)
	}
	for i := range original.Actions {
		if loaded.Actions[i] != original.Actions[i] {
			t.Errorf("action %d changed: %s vs %s", i, loaded.Actions[i], original.Actions[i])
		}
	}
	if loaded.Summary.Destructive != 1 {
		t.Errorf("summary lost: %+v", loaded.Summary)
	}

	if _, err := store.GetPlan(ctx, "absent"); err == nil {
		t.Error("expected error for unknown plan")
	}
}

func TestSavePlanRejectsDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SavePlan(ctx, samplePlan("plan-1")); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if err := store.SavePlan(ctx, samplePlan("plan-1")); err == nil {
		t.Error("duplicate plan ID accepted")
	}
}

func TestListPlansNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := samplePlan("plan-old")
	newer := samplePlan("plan-new")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	for _, p := range []*engine.Plan{older, newer} {
		if err := store.SavePlan(ctx, p); err != nil {
			t.Fatalf("SavePlan(%s): %v", p.ID, err)
		}
	}

	records, err := store.ListPlans(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "plan-new" || records[1].ID != "plan-old" {
		t.Errorf("wrong order: %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].TotalActions != 3 || records[0].Destructive != 1 {
		t.Errorf("summary columns wrong: %+v", records[0])
	}
}

func TestSaveRunAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := samplePlan("plan-1")
	if err := store.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}

	run := &engine.RunResult{
		PlanID:      "plan-1",
		Status:      engine.RunPartial,
		StartedAt:   plan.CreatedAt,
		CompletedAt: plan.CreatedAt.Add(time.Minute),
		Results: []engine.ActionResult{
			{Position: 0, Action: plan.Actions[0], Status: engine.ApplySucceeded, Duration: 120 * time.Millisecond},
			{Position: 1, Action: plan.Actions[1], Status: engine.ApplyFailed, Err: errors.New("api timeout")},
			{Position: 2, Action: plan.Actions[2], Status: engine.ApplySkipped},
		},
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	record, err := store.GetRun(ctx, "plan-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if record.Status != engine.RunPartial {
		t.Errorf("expected %s, got %s", engine.RunPartial, record.Status)
	}
	if len(record.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(record.Results))
	}
	if record.Results[1].Error != "api timeout" {
		t.Errorf("failure message lost: %+v", record.Results[1])
	}
	if record.Results[0].Duration != 120*time.Millisecond {
		t.Errorf("duration lost: %v", record.Results[0].Duration)
	}
	if record.Results[2].ActionKind != engine.KindDeleteWorkflow {
		t.Errorf("action kind lost: %s", record.Results[2].ActionKind)
	}

	if _, err := store.GetRun(ctx, "absent"); err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestDeletePlanCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := samplePlan("plan-1")
	if err := store.SavePlan(ctx, plan); err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	run := &engine.RunResult{
		PlanID:      "plan-1",
		Status:      engine.RunSucceeded,
		StartedAt:   plan.CreatedAt,
		CompletedAt: plan.CreatedAt,
		Results: []engine.ActionResult{
			{Position: 0, Action: plan.Actions[0], Status: engine.ApplySucceeded},
		},
	}
	if err := store.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun: %v", err)
	}

	if err := store.DeletePlan(ctx, "plan-1"); err != nil {
		t.Fatalf("DeletePlan: %v", err)
	}
	if _, err := store.GetPlan(ctx, "plan-1"); err == nil {
		t.Error("plan still retrievable after delete")
	}
	if _, err := store.GetRun(ctx, "plan-1"); err == nil {
		t.Error("run still retrievable after plan delete")
	}

	if err := store.DeletePlan(ctx, "plan-1"); err == nil {
		t.Error("expected error deleting an absent plan")
	}
}

func TestStoreConfigValidation(t *testing.T) {
	if _, err := NewSQLiteStore(Config{}); err == nil {
		t.Error("expected error for empty database path")
	}
}

func TestHealthCheck(t *testing.T) {
	store := newTestStore(t)
	if err := store.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck: %v", err)
	}

	uninitialized, err := NewSQLiteStore(Config{Path: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	if err := uninitialized.HealthCheck(context.Background()); err == nil {
		t.Error("expected error for uninitialized store")
	}
}
