package engine

import (
	"fmt"

	"github.com/trackforge/trackforge/pkg/facts"
)

// Entry is one derived difference between the observed and the declared
// configuration.
type Entry struct {
	// Category classifies the difference.
	Category DiffCategory `json:"category"`

	// ResourceKind is the kind of the affected resource.
	ResourceKind facts.Kind `json:"kind"`

	// Key is the resource identity.
	Key string `json:"key"`

	// Current is the observed fact; nil for missing resources.
	Current facts.Fact `json:"-"`

	// Target is the declared fact; nil for deletable resources.
	Target facts.Fact `json:"-"`
}

// String renders the entry for logs.
func (e Entry) String() string {
	return fmt.Sprintf("%s(%s,%s)", e.Category, e.ResourceKind, e.Key)
}

// Diff derives the full difference set between the store's current and
// target sides. It is pure: identical stores yield identical entries, in a
// deterministic order (resource kind, then identity key; deletables last).
//
// Drift is tracked only on the watched attribute of each kind: field type,
// field default value, and workflow rule script. Attachments and bundle
// membership are existence-only and can be missing but never drifted.
// Projects carry no change operation and are diffed by neither side.
func Diff(store *facts.Store) []Entry {
	var entries []Entry

	for _, kind := range diffedKinds {
		for _, target := range store.TargetOfKind(kind) {
			current, exists := store.Current(kind, target.Key())
			if !exists {
				entries = append(entries, Entry{
					Category:     DiffMissing,
					ResourceKind: kind,
					Key:          target.Key(),
					Target:       target,
				})
				continue
			}
			if drifted(current, target) {
				entries = append(entries, Entry{
					Category:     DiffDrifted,
					ResourceKind: kind,
					Key:          target.Key(),
					Current:      current,
					Target:       target,
				})
			}
		}
	}

	entries = append(entries, deletable(store)...)
	return entries
}

// diffedKinds are the kinds with presence/drift semantics and a mapped
// action. Projects are identity-only and excluded.
var diffedKinds = []facts.Kind{
	facts.KindBundle,
	facts.KindBundleValue,
	facts.KindField,
	facts.KindFieldAttachment,
	facts.KindFieldDefault,
	facts.KindWorkflow,
	facts.KindWorkflowRule,
	facts.KindWorkflowAttachment,
}

// drifted compares the single watched attribute of two same-identity facts.
func drifted(current, target facts.Fact) bool {
	switch t := target.(type) {
	case facts.Field:
		c, ok := current.(facts.Field)
		return ok && c.Type != t.Type
	case facts.FieldDefault:
		c, ok := current.(facts.FieldDefault)
		return ok && c.Value != t.Value
	case facts.WorkflowRule:
		c, ok := current.(facts.WorkflowRule)
		return ok && c.Script != t.Script
	default:
		// Existence-only kinds never drift.
		return false
	}
}

// deletable derives entries for marked resources that currently exist.
//
// A marker on a workflow expands to one entry per rule the workflow still
// contains plus the workflow itself, so rule deletion can be ordered before
// the workflow deletion. A marker on a field expands to one entry per
// project the field is currently attached to, since removal is realized by
// detaching the field project by project.
func deletable(store *facts.Store) []Entry {
	var entries []Entry

	fieldMarked := func(field string) bool {
		if !store.Deleted(facts.KindField, field) {
			return false
		}
		_, exists := store.Current(facts.KindField, field)
		return exists
	}
	for _, f := range store.CurrentOfKind(facts.KindFieldAttachment) {
		attachment := f.(facts.FieldAttachment)
		if fieldMarked(attachment.Field) || store.Deleted(facts.KindFieldAttachment, attachment.Key()) {
			entries = append(entries, Entry{
				Category:     DiffDeletable,
				ResourceKind: facts.KindFieldAttachment,
				Key:          attachment.Key(),
				Current:      f,
			})
		}
	}

	workflowMarked := func(workflow string) bool {
		if !store.Deleted(facts.KindWorkflow, workflow) {
			return false
		}
		_, exists := store.Current(facts.KindWorkflow, workflow)
		return exists
	}
	for _, f := range store.CurrentOfKind(facts.KindWorkflowRule) {
		rule := f.(facts.WorkflowRule)
		if workflowMarked(rule.Workflow) || store.Deleted(facts.KindWorkflowRule, rule.Key()) {
			entries = append(entries, Entry{
				Category:     DiffDeletable,
				ResourceKind: facts.KindWorkflowRule,
				Key:          rule.Key(),
				Current:      f,
			})
		}
	}
	for _, m := range store.DeletionsOfKind(facts.KindWorkflow) {
		current, exists := store.Current(facts.KindWorkflow, m.ResourceKey)
		if !exists {
			continue
		}
		entries = append(entries, Entry{
			Category:     DiffDeletable,
			ResourceKind: facts.KindWorkflow,
			Key:          m.ResourceKey,
			Current:      current,
		})
	}

	return entries
}
