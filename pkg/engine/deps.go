package engine

// dependencyRule is one kind-level ordering constraint. A concrete action A
// depends on action B iff their kinds match a rule and linked reports that
// they share the identity the rule requires.
type dependencyRule struct {
	dependent    ActionKind
	prerequisite ActionKind
	linked       func(dependent, prerequisite Action) bool
}

// dependencyTable is the closed ordering relation over action kinds. Kinds
// with no row as dependent are immediately schedulable.
var dependencyTable = []dependencyRule{
	{KindAddBundleValue, KindEnsureBundle, func(d, p Action) bool {
		return d.(AddBundleValue).Bundle == p.(EnsureBundle).Bundle
	}},
	{KindAddStateValue, KindEnsureBundle, func(d, p Action) bool {
		return d.(AddStateValue).Bundle == p.(EnsureBundle).Bundle
	}},
	{KindCreateField, KindEnsureBundle, func(d, p Action) bool {
		field := d.(CreateField)
		return field.Bundle != "" && field.Bundle == p.(EnsureBundle).Bundle
	}},
	{KindAttachField, KindCreateField, func(d, p Action) bool {
		return d.(AttachField).Field == p.(CreateField).Field
	}},
	{KindSetFieldDefault, KindAttachField, func(d, p Action) bool {
		def, att := d.(SetFieldDefault), p.(AttachField)
		return def.Field == att.Field && def.Project == att.Project
	}},
	{KindCreateRule, KindCreateWorkflow, func(d, p Action) bool {
		return d.(CreateRule).Workflow == p.(CreateWorkflow).Workflow
	}},
	{KindAttachWorkflow, KindCreateWorkflow, func(d, p Action) bool {
		return d.(AttachWorkflow).Workflow == p.(CreateWorkflow).Workflow
	}},
	// A workflow attaches only after all of its rules exist.
	{KindAttachWorkflow, KindCreateRule, func(d, p Action) bool {
		return d.(AttachWorkflow).Workflow == p.(CreateRule).Workflow
	}},
	// A workflow deletes only after every rule deleted under it.
	{KindDeleteWorkflow, KindDeleteRule, func(d, p Action) bool {
		return d.(DeleteWorkflow).Workflow == p.(DeleteRule).Workflow
	}},
}

// Resolve instantiates the kind-level dependency table over a concrete
// action set. The result maps each action index to the indices of its
// prerequisites.
func Resolve(actions []Action) [][]int {
	prerequisites := make([][]int, len(actions))
	for i, dependent := range actions {
		for _, rule := range dependencyTable {
			if dependent.Kind() != rule.dependent {
				continue
			}
			for j, prerequisite := range actions {
				if i == j || prerequisite.Kind() != rule.prerequisite {
					continue
				}
				if rule.linked(dependent, prerequisite) {
					prerequisites[i] = append(prerequisites[i], j)
				}
			}
		}
	}
	return prerequisites
}
