package engine

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trackforge/trackforge/pkg/facts"
)

// buildStore assembles a frozen fact store for tests.
func buildStore(t *testing.T, current, target []facts.Fact, markers []facts.DeletionMarker) *facts.Store {
	t.Helper()
	store := facts.NewStore()
	for _, f := range current {
		if err := store.AddCurrent(f); err != nil {
			t.Fatalf("AddCurrent(%v): %v", f, err)
		}
	}
	for _, f := range target {
		if err := store.AddTarget(f); err != nil {
			t.Fatalf("AddTarget(%v): %v", f, err)
		}
	}
	for _, m := range markers {
		if err := store.MarkDeletion(m); err != nil {
			t.Fatalf("MarkDeletion(%v): %v", m, err)
		}
	}
	store.Freeze()
	return store
}

func indexOf(t *testing.T, actions []Action, want Action) int {
	t.Helper()
	for i, a := range actions {
		if a == want {
			return i
		}
	}
	t.Fatalf("action %s not found in plan %v", want, actions)
	return -1
}

func assertBefore(t *testing.T, actions []Action, first, second Action) {
	t.Helper()
	if i, j := indexOf(t, actions, first), indexOf(t, actions, second); i >= j {
		t.Errorf("expected %s (index %d) before %s (index %d)", first, i, second, j)
	}
}

func TestPlanFieldCreationChain(t *testing.T) {
	store := buildStore(t,
		nil,
		[]facts.Fact{
			facts.Bundle{Name: "SeverityBundle", BundleKind: facts.BundleEnum},
			facts.Field{Name: "Severity", Type: "enum", Bundle: "SeverityBundle"},
			facts.FieldAttachment{Field: "Severity", Project: "PROJ"},
		},
		nil,
	)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d: %v", len(plan.Actions), plan.Actions)
	}
	ensure := EnsureBundle{Bundle: "SeverityBundle", BundleKind: facts.BundleEnum}
	create := CreateField{Field: "Severity", FieldType: "enum", Bundle: "SeverityBundle"}
	attach := AttachField{Field: "Severity", Project: "PROJ"}
	assertBefore(t, plan.Actions, ensure, create)
	assertBefore(t, plan.Actions, create, attach)
}

func TestPlanRuleDrift(t *testing.T) {
	store := buildStore(t,
		[]facts.Fact{
			facts.Workflow{Name: "triage", Title: "Triage"},
			facts.WorkflowRule{Workflow: "triage", Rule: "escalate", Type: "on-change", Script: "old body"},
		},
		[]facts.Fact{
			facts.Workflow{Name: "triage", Title: "Triage"},
			facts.WorkflowRule{Workflow: "triage", Rule: "escalate", Type: "on-change", Script: "new body"},
		},
		nil,
	)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	want := []Action{UpdateRule{Workflow: "triage", Rule: "escalate", Script: "new body"}}
	if len(plan.Actions) != 1 || plan.Actions[0] != want[0] {
		t.Fatalf("expected plan %v, got %v", want, plan.Actions)
	}
	if plan.Summary.Drifted != 1 {
		t.Errorf("expected 1 drifted entry, got %d", plan.Summary.Drifted)
	}
}

func TestPlanWorkflowDeletionOrdering(t *testing.T) {
	store := buildStore(t,
		[]facts.Fact{
			facts.Workflow{Name: "legacy", Title: "Legacy"},
			facts.WorkflowRule{Workflow: "legacy", Rule: "close-stale", Type: "scheduled", Script: "a"},
			facts.WorkflowRule{Workflow: "legacy", Rule: "notify", Type: "on-change", Script: "b"},
		},
		nil,
		[]facts.DeletionMarker{
			{ResourceKind: facts.KindWorkflow, ResourceKey: "legacy"},
		},
	)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	if len(plan.Actions) != 3 {
		t.Fatalf("expected 3 actions, got %d: %v", len(plan.Actions), plan.Actions)
	}
	deleteWorkflow := DeleteWorkflow{Workflow: "legacy"}
	assertBefore(t, plan.Actions, DeleteRule{Workflow: "legacy", Rule: "close-stale"}, deleteWorkflow)
	assertBefore(t, plan.Actions, DeleteRule{Workflow: "legacy", Rule: "notify"}, deleteWorkflow)
	if plan.Summary.Destructive != 3 {
		t.Errorf("expected 3 destructive actions, got %d", plan.Summary.Destructive)
	}
}

func TestPlanBundleValueInUndeclaredBundle(t *testing.T) {
	store := buildStore(t,
		nil,
		[]facts.Fact{
			facts.BundleValue{Bundle: "Priorities", Value: "Critical"},
		},
		nil,
	)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	ensure := EnsureBundle{Bundle: "Priorities", BundleKind: facts.BundleEnum}
	add := AddBundleValue{Bundle: "Priorities", Value: "Critical"}
	assertBefore(t, plan.Actions, ensure, add)
}

func TestPlanEmptyDiff(t *testing.T) {
	inSync := []facts.Fact{
		facts.Bundle{Name: "States", BundleKind: facts.BundleState},
		facts.BundleValue{Bundle: "States", Value: "Done", Resolved: true},
		facts.Field{Name: "State", Type: "state", Bundle: "States"},
		facts.Workflow{Name: "triage", Title: "Triage"},
		facts.WorkflowRule{Workflow: "triage", Rule: "escalate", Type: "on-change", Script: "body"},
	}
	store := buildStore(t, inSync, inSync, nil)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if !plan.Empty() {
		t.Fatalf("expected empty plan, got %v", plan.Actions)
	}
	if plan.Summary.TotalActions != 0 {
		t.Errorf("expected zero total actions in summary, got %d", plan.Summary.TotalActions)
	}
}

func TestPlanDeterminism(t *testing.T) {
	build := func() *facts.Store {
		return buildStore(t,
			[]facts.Fact{
				facts.Workflow{Name: "old", Title: "Old"},
				facts.WorkflowRule{Workflow: "old", Rule: "r1", Type: "on-change", Script: "x"},
			},
			[]facts.Fact{
				facts.Bundle{Name: "Priorities", BundleKind: facts.BundleEnum},
				facts.BundleValue{Bundle: "Priorities", Value: "High"},
				facts.BundleValue{Bundle: "Priorities", Value: "Low"},
				facts.Field{Name: "Priority", Type: "enum", Bundle: "Priorities"},
				facts.FieldAttachment{Field: "Priority", Project: "ALPHA"},
				facts.FieldAttachment{Field: "Priority", Project: "BETA"},
				facts.FieldDefault{Field: "Priority", Project: "ALPHA", Value: "High"},
				facts.Workflow{Name: "triage", Title: "Triage"},
				facts.WorkflowRule{Workflow: "triage", Rule: "escalate", Type: "on-change", Script: "body"},
				facts.WorkflowAttachment{Workflow: "triage", Project: "ALPHA"},
			},
			[]facts.DeletionMarker{
				{ResourceKind: facts.KindWorkflow, ResourceKey: "old"},
			},
		)
	}

	planner := NewPlanner(zerolog.Nop())
	first, err := planner.Plan(build())
	if err != nil {
		t.Fatalf("first Plan: %v", err)
	}
	second, err := planner.Plan(build())
	if err != nil {
		t.Fatalf("second Plan: %v", err)
	}

	if len(first.Actions) != len(second.Actions) {
		t.Fatalf("plan lengths differ: %d vs %d", len(first.Actions), len(second.Actions))
	}
	for i := range first.Actions {
		if first.Actions[i] != second.Actions[i] {
			t.Errorf("action %d differs: %s vs %s", i, first.Actions[i], second.Actions[i])
		}
	}
}

func TestPlanRespectsDependencies(t *testing.T) {
	store := buildStore(t,
		nil,
		[]facts.Fact{
			facts.Bundle{Name: "Priorities", BundleKind: facts.BundleEnum},
			facts.BundleValue{Bundle: "Priorities", Value: "High"},
			facts.Field{Name: "Priority", Type: "enum", Bundle: "Priorities"},
			facts.FieldAttachment{Field: "Priority", Project: "ALPHA"},
			facts.FieldDefault{Field: "Priority", Project: "ALPHA", Value: "High"},
			facts.Workflow{Name: "triage", Title: "Triage"},
			facts.WorkflowRule{Workflow: "triage", Rule: "escalate", Type: "on-change", Script: "body"},
			facts.WorkflowAttachment{Workflow: "triage", Project: "ALPHA"},
		},
		nil,
	)

	plan, err := NewPlanner(zerolog.Nop()).Plan(store)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	// Every prerequisite of the ordered set must precede its dependent.
	prerequisites := Resolve(plan.Actions)
	for i, prereqs := range prerequisites {
		for _, j := range prereqs {
			if j >= i {
				t.Errorf("action %s at %d scheduled before its prerequisite %s at %d",
					plan.Actions[i], i, plan.Actions[j], j)
			}
		}
	}
}

func TestPlanRejectsUnfrozenStore(t *testing.T) {
	planner := NewPlanner(zerolog.Nop())

	if _, err := planner.Plan(nil); err == nil {
		t.Error("expected error for nil store")
	}

	store := facts.NewStore()
	if _, err := planner.Plan(store); err == nil {
		t.Error("expected error for unfrozen store")
	}
	var engineErr *EngineError
	_, err := planner.Plan(store)
	if !errors.As(err, &engineErr) || engineErr.Code != ErrCodeValidation {
		t.Errorf("expected validation EngineError, got %v", err)
	}
}

func TestSequenceEmptyInput(t *testing.T) {
	ordered, err := NewPlanner(zerolog.Nop()).Sequence(nil)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	if len(ordered) != 0 {
		t.Errorf("expected empty order, got %v", ordered)
	}
}

func TestSequenceCycleDetection(t *testing.T) {
	actions := []Action{
		CreateWorkflow{Workflow: "a", Title: "A"},
		CreateRule{Workflow: "a", Rule: "r", RuleType: "on-change", Script: "x"},
		EnsureBundle{Bundle: "b", BundleKind: facts.BundleEnum},
	}
	// 0 -> 1 -> 0 is cyclic; 2 is independent and schedulable.
	cyclic := [][]int{{1}, {0}, nil}

	_, err := sequence(actions, cyclic)
	if err == nil {
		t.Fatal("expected cycle error")
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if len(cycle.Remaining) != 2 {
		t.Errorf("expected 2 remaining actions, got %d: %v", len(cycle.Remaining), cycle.Remaining)
	}
	for _, a := range cycle.Remaining {
		if a.Kind() == KindEnsureBundle {
			t.Errorf("schedulable action reported as remaining: %s", a)
		}
	}
}

func TestSequenceTieBreakIsGenerationOrder(t *testing.T) {
	actions := []Action{
		CreateWorkflow{Workflow: "z", Title: "Z"},
		CreateWorkflow{Workflow: "a", Title: "A"},
		EnsureBundle{Bundle: "m", BundleKind: facts.BundleEnum},
	}

	ordered, err := NewPlanner(zerolog.Nop()).Sequence(actions)
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	for i := range actions {
		if ordered[i] != actions[i] {
			t.Errorf("independent actions reordered at %d: %s vs %s", i, ordered[i], actions[i])
		}
	}
}
