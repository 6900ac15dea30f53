package policy

import (
	"time"
)

// GetBuiltinPolicies returns all built-in policies.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		bulkDeletionPolicy(),
		protectedWorkflowPolicy(),
		emptyRuleScriptPolicy(),
	}
}

// bulkDeletionPolicy blocks plans that remove a large amount of
// configuration at once, which usually indicates an accidental mass
// deletion marker.
func bulkDeletionPolicy() Policy {
	return Policy{
		Name:        "bulk-deletion",
		Description: "Blocks plans containing more than five destructive actions",
		Severity:    SeverityError,
		Enabled:     true,
		Tags:        []string{"safety", "deletion"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package trackforge.policies.bulk_deletion

import rego.v1

destructive_kinds := {"detach_field", "delete_rule", "delete_workflow"}

destructive contains action if {
	some action in input.plan.actions
	destructive_kinds[action.kind]
}

deny contains violation if {
	count(destructive) > 5
	violation := {
		"message": sprintf("Plan removes %d resources; bulk deletions must be split up and reviewed", [count(destructive)]),
		"severity": "error",
	}
}
`,
	}
}

// protectedWorkflowPolicy refuses deletion of workflows whose name marks
// them as protected.
func protectedWorkflowPolicy() Policy {
	return Policy{
		Name:        "protected-workflow",
		Description: "Refuses to delete workflows with the protected- name prefix",
		Severity:    SeverityCritical,
		Enabled:     true,
		Tags:        []string{"safety", "workflow"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package trackforge.policies.protected_workflow

import rego.v1

deny contains violation if {
	some action in input.plan.actions
	action.kind == "delete_workflow"
	startswith(action.spec.workflow, "protected-")
	violation := {
		"message": sprintf("Workflow %s is protected and must not be deleted", [action.spec.workflow]),
		"severity": "critical",
		"action": sprintf("delete_workflow(%s)", [action.spec.workflow]),
	}
}
`,
	}
}

// emptyRuleScriptPolicy flags rules created or updated with an empty
// script body.
func emptyRuleScriptPolicy() Policy {
	return Policy{
		Name:        "empty-rule-script",
		Description: "Warns when a workflow rule is created or updated with an empty script",
		Severity:    SeverityWarning,
		Enabled:     true,
		Tags:        []string{"hygiene", "workflow"},
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
		Rego: `package trackforge.policies.empty_rule_script

import rego.v1

script_kinds := {"create_rule", "update_rule"}

deny contains violation if {
	some action in input.plan.actions
	script_kinds[action.kind]
	trim_space(action.spec.script) == ""
	violation := {
		"message": sprintf("Rule %s/%s has an empty script", [action.spec.workflow, action.spec.rule]),
		"severity": "warning",
		"action": sprintf("%s(%s/%s)", [action.kind, action.spec.workflow, action.spec.rule]),
	}
}
`,
	}
}
