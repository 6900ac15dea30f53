package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/trackforge/trackforge/pkg/engine"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func testPlan(actions ...engine.Action) *engine.Plan {
	return &engine.Plan{ID: "policy-test-plan", Actions: actions}
}

func TestEvaluatePlanAllowsCleanPlan(t *testing.T) {
	e := newTestEngine(t)

	plan := testPlan(
		engine.CreateWorkflow{Workflow: "triage", Title: "Triage"},
		engine.CreateRule{Workflow: "triage", Rule: "escalate", RuleType: "on-change", Script: "issue.fields"},
	)

	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if !result.Allowed {
		t.Errorf("clean plan blocked: %+v", result.Violations)
	}
	if len(result.Violations) != 0 {
		t.Errorf("unexpected violations: %+v", result.Violations)
	}
	if len(result.EvaluatedPolicies) != len(GetBuiltinPolicies()) {
		t.Errorf("expected %d evaluated policies, got %v",
			len(GetBuiltinPolicies()), result.EvaluatedPolicies)
	}
}

func TestEvaluatePlanBlocksProtectedWorkflowDeletion(t *testing.T) {
	e := newTestEngine(t)

	plan := testPlan(engine.DeleteWorkflow{Workflow: "protected-release-gate"})

	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if result.Allowed {
		t.Fatal("deletion of a protected workflow was allowed")
	}

	found := false
	for _, v := range result.Violations {
		if v.Policy == "protected-workflow" && v.Severity == SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Errorf("expected critical protected-workflow violation, got %+v", result.Violations)
	}

	if err := Denied(plan, result); err == nil {
		t.Error("Denied returned nil for a blocked plan")
	} else if !engine.IsPermanent(err) {
		t.Errorf("expected permanent policy error, got %v", err)
	}
}

func TestEvaluatePlanBlocksBulkDeletion(t *testing.T) {
	e := newTestEngine(t)

	plan := testPlan(
		engine.DeleteRule{Workflow: "w", Rule: "r1"},
		engine.DeleteRule{Workflow: "w", Rule: "r2"},
		engine.DeleteRule{Workflow: "w", Rule: "r3"},
		engine.DetachField{Field: "f", Project: "A"},
		engine.DetachField{Field: "f", Project: "B"},
		engine.DeleteWorkflow{Workflow: "w"},
	)

	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if result.Allowed {
		t.Errorf("bulk deletion plan allowed: %+v", result)
	}
}

func TestEvaluatePlanWarnsOnEmptyRuleScript(t *testing.T) {
	e := newTestEngine(t)

	plan := testPlan(engine.UpdateRule{Workflow: "triage", Rule: "escalate", Script: "   "})

	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if !result.Allowed {
		t.Errorf("warning-only plan blocked: %+v", result.Violations)
	}
	if len(result.Violations) != 1 || result.Violations[0].Policy != "empty-rule-script" {
		t.Fatalf("expected one empty-rule-script violation, got %+v", result.Violations)
	}
	if result.Violations[0].Severity != SeverityWarning {
		t.Errorf("expected warning severity, got %s", result.Violations[0].Severity)
	}
	if err := Denied(plan, result); err != nil {
		t.Errorf("Denied returned error for an allowed plan: %v", err)
	}
}

func TestDisablePolicy(t *testing.T) {
	e := newTestEngine(t)

	if err := e.DisablePolicy("protected-workflow"); err != nil {
		t.Fatalf("DisablePolicy: %v", err)
	}

	plan := testPlan(engine.DeleteWorkflow{Workflow: "protected-release-gate"})
	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if !result.Allowed {
		t.Errorf("disabled policy still blocked the plan: %+v", result.Violations)
	}

	if err := e.DisablePolicy("no-such-policy"); err == nil {
		t.Error("expected error disabling an unknown policy")
	}
}

func TestLoadPoliciesFromRegoFile(t *testing.T) {
	dir := t.TempDir()
	source := `# Blocks every state bundle value addition
package trackforge.policies.no_state_values

import rego.v1

deny contains violation if {
	some action in input.plan.actions
	action.kind == "add_state_value"
	violation := {
		"message": "state bundle values are managed manually",
		"severity": "error",
	}
}
`
	path := filepath.Join(dir, "no-state-values.rego")
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	e := newTestEngine(t)
	if err := e.LoadPolicies(context.Background(), []string{dir}); err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}

	loaded, err := e.GetPolicy("no-state-values")
	if err != nil {
		t.Fatalf("GetPolicy: %v", err)
	}
	if loaded.Description == "" {
		t.Error("expected description extracted from leading comment")
	}

	plan := testPlan(engine.AddStateValue{Bundle: "States", Value: "Done", Resolved: true})
	result, err := e.EvaluatePlan(context.Background(), plan)
	if err != nil {
		t.Fatalf("EvaluatePlan: %v", err)
	}
	if result.Allowed {
		t.Errorf("plan allowed despite loaded blocking policy: %+v", result)
	}
}

func TestEngineRejectsInvalidRego(t *testing.T) {
	e := newTestEngine(t)
	bad := &Policy{Name: "broken", Rego: "this is not rego", Enabled: true}
	if err := e.compileAndStore(bad); err == nil {
		t.Error("expected parse error for invalid Rego")
	}
}
