package facts

import "fmt"

// Origin indicates which side of the reconciliation a fact was ingested on.
type Origin string

const (
	// OriginCurrent marks a fact observed on the live system.
	OriginCurrent Origin = "current"

	// OriginTarget marks a fact declared in the desired-state configuration.
	OriginTarget Origin = "target"
)

// Validate checks if the origin is valid.
func (o Origin) Validate() error {
	switch o {
	case OriginCurrent, OriginTarget:
		return nil
	default:
		return fmt.Errorf("invalid fact origin: %s", o)
	}
}

// Kind identifies the resource kind a fact describes.
type Kind string

const (
	// KindBundle is a named value container (enum or state).
	KindBundle Kind = "bundle"

	// KindBundleValue is a member value of a bundle.
	KindBundleValue Kind = "bundle_value"

	// KindField is a global custom field definition.
	KindField Kind = "field"

	// KindFieldAttachment binds a field to a project.
	KindFieldAttachment Kind = "field_attachment"

	// KindFieldDefault is a project-scoped default value for a field.
	KindFieldDefault Kind = "field_default"

	// KindProject is a project identified by its short name.
	KindProject Kind = "project"

	// KindWorkflow is a workflow definition.
	KindWorkflow Kind = "workflow"

	// KindWorkflowRule is a scripted rule belonging to a workflow.
	KindWorkflowRule Kind = "workflow_rule"

	// KindWorkflowAttachment binds a workflow to a project.
	KindWorkflowAttachment Kind = "workflow_attachment"
)

// Kinds lists every resource kind in canonical order. Diffing and snapshot
// encoding iterate kinds in this order so output is deterministic.
var Kinds = []Kind{
	KindBundle,
	KindBundleValue,
	KindField,
	KindFieldAttachment,
	KindFieldDefault,
	KindProject,
	KindWorkflow,
	KindWorkflowRule,
	KindWorkflowAttachment,
}

// Validate checks if the kind is valid.
func (k Kind) Validate() error {
	for _, known := range Kinds {
		if k == known {
			return nil
		}
	}
	return fmt.Errorf("invalid resource kind: %s", k)
}

// BundleKind distinguishes the two bundle flavors.
type BundleKind string

const (
	// BundleEnum is a plain enumeration bundle.
	BundleEnum BundleKind = "enum"

	// BundleState is a state bundle whose values carry a resolved flag.
	BundleState BundleKind = "state"
)

// Validate checks if the bundle kind is valid.
func (b BundleKind) Validate() error {
	switch b {
	case BundleEnum, BundleState:
		return nil
	default:
		return fmt.Errorf("invalid bundle kind: %s", b)
	}
}

// Fact is one typed configuration tuple. The set of implementations is
// closed: exactly one comparable struct per resource kind, so facts can be
// deduplicated by value and switched over exhaustively.
type Fact interface {
	// Kind returns the resource kind of the fact.
	Kind() Kind

	// Key returns the kind-specific identity key. A current and a target
	// fact denote the same resource iff their kinds and keys match.
	Key() string
}

// Bundle is a named value container.
type Bundle struct {
	Name       string     `json:"name" validate:"required"`
	BundleKind BundleKind `json:"kind" validate:"required,oneof=enum state"`
}

// Kind implements Fact.
func (b Bundle) Kind() Kind { return KindBundle }

// Key implements Fact.
func (b Bundle) Key() string { return b.Name }

// BundleValue is a member of a bundle. Resolved is only meaningful for
// values of state bundles.
type BundleValue struct {
	Bundle   string `json:"bundle" validate:"required"`
	Value    string `json:"value" validate:"required"`
	Resolved bool   `json:"resolved,omitempty"`
}

// Kind implements Fact.
func (v BundleValue) Kind() Kind { return KindBundleValue }

// Key implements Fact.
func (v BundleValue) Key() string { return compositeKey(v.Bundle, v.Value) }

// Field is a global field definition. Bundle names the value bundle backing
// the field and is empty for field types without one.
type Field struct {
	Name   string `json:"name" validate:"required"`
	Type   string `json:"type" validate:"required"`
	Bundle string `json:"bundle,omitempty"`
}

// Kind implements Fact.
func (f Field) Kind() Kind { return KindField }

// Key implements Fact.
func (f Field) Key() string { return f.Name }

// FieldAttachment is an existence-only binding of a field to a project.
type FieldAttachment struct {
	Field   string `json:"field" validate:"required"`
	Project string `json:"project" validate:"required"`
}

// Kind implements Fact.
func (a FieldAttachment) Kind() Kind { return KindFieldAttachment }

// Key implements Fact.
func (a FieldAttachment) Key() string { return compositeKey(a.Field, a.Project) }

// FieldDefault is a project-scoped default value for a field.
type FieldDefault struct {
	Field   string `json:"field" validate:"required"`
	Project string `json:"project" validate:"required"`
	Value   string `json:"value" validate:"required"`
}

// Kind implements Fact.
func (d FieldDefault) Kind() Kind { return KindFieldDefault }

// Key implements Fact.
func (d FieldDefault) Key() string { return compositeKey(d.Field, d.Project) }

// Project is a project. Identity is the short name.
type Project struct {
	ShortName string `json:"short_name" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Leader    string `json:"leader,omitempty"`
}

// Kind implements Fact.
func (p Project) Kind() Kind { return KindProject }

// Key implements Fact.
func (p Project) Key() string { return p.ShortName }

// Workflow is a workflow definition.
type Workflow struct {
	Name  string `json:"name" validate:"required"`
	Title string `json:"title" validate:"required"`
}

// Kind implements Fact.
func (w Workflow) Kind() Kind { return KindWorkflow }

// Key implements Fact.
func (w Workflow) Key() string { return w.Name }

// WorkflowRule is a scripted rule inside a workflow. Identity is the
// (workflow, rule) pair; the script is the drift-watched attribute.
type WorkflowRule struct {
	Workflow string `json:"workflow" validate:"required"`
	Rule     string `json:"rule" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Script   string `json:"script"`
}

// Kind implements Fact.
func (r WorkflowRule) Kind() Kind { return KindWorkflowRule }

// Key implements Fact.
func (r WorkflowRule) Key() string { return compositeKey(r.Workflow, r.Rule) }

// WorkflowAttachment is an existence-only binding of a workflow to a project.
type WorkflowAttachment struct {
	Workflow string `json:"workflow" validate:"required"`
	Project  string `json:"project" validate:"required"`
}

// Kind implements Fact.
func (a WorkflowAttachment) Kind() Kind { return KindWorkflowAttachment }

// Key implements Fact.
func (a WorkflowAttachment) Key() string { return compositeKey(a.Workflow, a.Project) }

// DeletionMarker declares that the identified resource must be removed if it
// currently exists. Markers are not facts; they live beside the target set.
type DeletionMarker struct {
	ResourceKind Kind   `json:"kind" validate:"required"`
	ResourceKey  string `json:"key" validate:"required"`
}

// CompositeKey joins identity components into one key string. Exported so
// callers can build marker keys for composite-identity kinds.
func CompositeKey(parts ...string) string {
	return compositeKey(parts...)
}

func compositeKey(parts ...string) string {
	key := parts[0]
	for _, p := range parts[1:] {
		key += "/" + p
	}
	return key
}

// MalformedFactError reports a fact that violates the ingestion contract:
// unknown kind, empty identity components, or an identity collision. It is
// raised at ingestion, before planning starts.
type MalformedFactError struct {
	FactKind Kind
	FactKey  string
	Reason   string
	Err      error
}

// Error implements the error interface.
func (e *MalformedFactError) Error() string {
	if e.FactKey != "" {
		return fmt.Sprintf("malformed fact %s[%s]: %s", e.FactKind, e.FactKey, e.Reason)
	}
	return fmt.Sprintf("malformed fact %s: %s", e.FactKind, e.Reason)
}

// Unwrap returns the underlying error.
func (e *MalformedFactError) Unwrap() error {
	return e.Err
}
