package engine

import (
	"github.com/trackforge/trackforge/pkg/facts"
)

// Generate maps diff entries to actions. Generation is set-based: each diff
// entry yields one action, structurally identical actions reached through
// different derivations collapse, and the returned slice preserves first-
// generation order (the planner's tie-break).
//
// Two derivations go beyond the entry-to-action mapping:
//
//   - EnsureBundle is emitted whenever a generated action needs a bundle
//     that does not currently exist, whether the bundle was declared as a
//     fact or only referenced by a field or bundle value.
//   - AttachField is emitted for every declared (field, project) binding,
//     present or not. Idempotence is the executor's responsibility.
func Generate(store *facts.Store, entries []Entry) []Action {
	g := &generator{
		store: store,
		seen:  make(map[Action]struct{}),
	}

	for _, entry := range entries {
		g.generate(entry)
	}

	// Declared field attachments are emitted unconditionally; bindings that
	// were missing have already been generated and collapse here.
	for _, f := range store.TargetOfKind(facts.KindFieldAttachment) {
		attachment := f.(facts.FieldAttachment)
		g.emit(AttachField{Field: attachment.Field, Project: attachment.Project})
	}

	return g.out
}

type generator struct {
	store *facts.Store
	seen  map[Action]struct{}
	out   []Action
}

func (g *generator) emit(a Action) {
	if _, dup := g.seen[a]; dup {
		return
	}
	g.seen[a] = struct{}{}
	g.out = append(g.out, a)
}

func (g *generator) generate(entry Entry) {
	switch entry.Category {
	case DiffMissing:
		g.generateMissing(entry)
	case DiffDrifted:
		g.generateDrifted(entry)
	case DiffDeletable:
		g.generateDeletable(entry)
	}
}

func (g *generator) generateMissing(entry Entry) {
	switch target := entry.Target.(type) {
	case facts.Bundle:
		g.emit(EnsureBundle{Bundle: target.Name, BundleKind: target.BundleKind})

	case facts.BundleValue:
		kind := g.ensureBundle(target.Bundle)
		if kind == facts.BundleState {
			g.emit(AddStateValue{Bundle: target.Bundle, Value: target.Value, Resolved: target.Resolved})
		} else {
			g.emit(AddBundleValue{Bundle: target.Bundle, Value: target.Value})
		}

	case facts.Field:
		if target.Bundle != "" {
			g.ensureBundle(target.Bundle)
		}
		g.emit(CreateField{Field: target.Name, FieldType: target.Type, Bundle: target.Bundle})

	case facts.FieldAttachment:
		g.emit(AttachField{Field: target.Field, Project: target.Project})

	case facts.FieldDefault:
		g.emit(SetFieldDefault{Field: target.Field, Project: target.Project, Value: target.Value})

	case facts.Workflow:
		g.emit(CreateWorkflow{Workflow: target.Name, Title: target.Title})

	case facts.WorkflowRule:
		g.emit(CreateRule{Workflow: target.Workflow, Rule: target.Rule, RuleType: target.Type, Script: target.Script})

	case facts.WorkflowAttachment:
		g.emit(AttachWorkflow{Workflow: target.Workflow, Project: target.Project})
	}
}

func (g *generator) generateDrifted(entry Entry) {
	switch target := entry.Target.(type) {
	case facts.Field:
		// Field type drift converges through the same ensure-style create
		// the executor uses for missing fields.
		if target.Bundle != "" {
			g.ensureBundle(target.Bundle)
		}
		g.emit(CreateField{Field: target.Name, FieldType: target.Type, Bundle: target.Bundle})

	case facts.FieldDefault:
		g.emit(SetFieldDefault{Field: target.Field, Project: target.Project, Value: target.Value})

	case facts.WorkflowRule:
		g.emit(UpdateRule{Workflow: target.Workflow, Rule: target.Rule, Script: target.Script})
	}
}

func (g *generator) generateDeletable(entry Entry) {
	switch current := entry.Current.(type) {
	case facts.FieldAttachment:
		g.emit(DetachField{Field: current.Field, Project: current.Project})

	case facts.WorkflowRule:
		g.emit(DeleteRule{Workflow: current.Workflow, Rule: current.Rule})

	case facts.Workflow:
		g.emit(DeleteWorkflow{Workflow: current.Name})
	}
}

// ensureBundle emits EnsureBundle when the named bundle does not currently
// exist, and returns the bundle kind used for value actions. The declared
// bundle fact wins; an undeclared, unobserved bundle defaults to enum.
func (g *generator) ensureBundle(name string) facts.BundleKind {
	kind := facts.BundleEnum
	if f, ok := g.store.Target(facts.KindBundle, name); ok {
		kind = f.(facts.Bundle).BundleKind
	} else if f, ok := g.store.Current(facts.KindBundle, name); ok {
		kind = f.(facts.Bundle).BundleKind
	}
	if _, exists := g.store.Current(facts.KindBundle, name); !exists {
		g.emit(EnsureBundle{Bundle: name, BundleKind: kind})
	}
	return kind
}
