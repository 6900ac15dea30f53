package engine

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/trackforge/trackforge/pkg/facts"
)

func TestPlanJSONRoundTrip(t *testing.T) {
	original := &Plan{
		ID:        "plan-1",
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		Actions: []Action{
			EnsureBundle{Bundle: "Priorities", BundleKind: facts.BundleEnum},
			CreateField{Field: "Priority", FieldType: "enum", Bundle: "Priorities"},
			DeleteWorkflow{Workflow: "legacy"},
		},
	}
	original.Summary = summarize(nil, original.Actions)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Plan
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded.ID != original.ID || !decoded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("plan metadata changed: %+v", decoded)
	}
	if len(decoded.Actions) != len(original.Actions) {
		t.Fatalf("expected %d actions, got %d", len(original.Actions), len(decoded.Actions))
	}
	for i := range original.Actions {
		if decoded.Actions[i] != original.Actions[i] {
			t.Errorf("action %d changed: %s vs %s", i, decoded.Actions[i], original.Actions[i])
		}
	}
	if decoded.Summary.Destructive != 1 {
		t.Errorf("expected 1 destructive action in summary, got %d", decoded.Summary.Destructive)
	}
}

func TestUnmarshalActionRejectsUnknownKind(t *testing.T) {
	_, err := UnmarshalAction([]byte(`{"kind":"paint_bikeshed","spec":{}}`))
	if err == nil {
		t.Fatal("expected error for unknown action kind")
	}
	if !IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}
}
