// Package policy gates computed plans with Rego policies before they reach
// the executor.
//
// Policies query the plan's kind-tagged JSON form under input.plan and
// raise violations through a deny set:
//
//	package trackforge.policies.example
//
//	import rego.v1
//
//	deny contains violation if {
//	    some action in input.plan.actions
//	    action.kind == "delete_workflow"
//	    violation := {
//	        "message": "no workflow deletions on Fridays",
//	        "severity": "error",
//	    }
//	}
//
// A plan is allowed unless an enabled policy raises a violation of error or
// critical severity; warnings and info violations are reported but do not
// block. Built-in policies guard against bulk deletions, protected-workflow
// removal and empty rule scripts; additional policies load from .rego or
// .json files via LoadPolicies.
package policy
