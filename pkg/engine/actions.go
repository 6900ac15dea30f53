package engine

import (
	"encoding/json"
	"fmt"

	"github.com/trackforge/trackforge/pkg/facts"
)

// ActionKind identifies one change operation type.
type ActionKind string

const (
	KindEnsureBundle    ActionKind = "ensure_bundle"
	KindAddBundleValue  ActionKind = "add_bundle_value"
	KindAddStateValue   ActionKind = "add_state_value"
	KindCreateField     ActionKind = "create_field"
	KindAttachField     ActionKind = "attach_field"
	KindSetFieldDefault ActionKind = "set_field_default"
	KindCreateWorkflow  ActionKind = "create_workflow"
	KindCreateRule      ActionKind = "create_rule"
	KindUpdateRule      ActionKind = "update_rule"
	KindAttachWorkflow  ActionKind = "attach_workflow"
	KindDetachField     ActionKind = "detach_field"
	KindDeleteRule      ActionKind = "delete_rule"
	KindDeleteWorkflow  ActionKind = "delete_workflow"
)

// IsDestructive returns true if the action removes configuration.
func (k ActionKind) IsDestructive() bool {
	return k == KindDetachField || k == KindDeleteRule || k == KindDeleteWorkflow
}

// Validate checks if the action kind is valid.
func (k ActionKind) Validate() error {
	switch k {
	case KindEnsureBundle, KindAddBundleValue, KindAddStateValue,
		KindCreateField, KindAttachField, KindSetFieldDefault,
		KindCreateWorkflow, KindCreateRule, KindUpdateRule,
		KindAttachWorkflow, KindDetachField, KindDeleteRule,
		KindDeleteWorkflow:
		return nil
	default:
		return fmt.Errorf("invalid action kind: %s", k)
	}
}

// Action is one idempotent change operation for the external executor. The
// set of implementations is closed: one comparable struct per kind, so
// structurally identical actions deduplicate by value.
type Action interface {
	// Kind returns the action kind.
	Kind() ActionKind

	// String renders the action for logs and cycle diagnostics.
	String() string
}

// EnsureBundle creates the named value bundle if it does not exist.
type EnsureBundle struct {
	Bundle     string           `json:"bundle"`
	BundleKind facts.BundleKind `json:"bundle_kind"`
}

func (a EnsureBundle) Kind() ActionKind { return KindEnsureBundle }
func (a EnsureBundle) String() string {
	return fmt.Sprintf("EnsureBundle(%s,%s)", a.Bundle, a.BundleKind)
}

// AddBundleValue adds a value to an enum bundle.
type AddBundleValue struct {
	Bundle string `json:"bundle"`
	Value  string `json:"value"`
}

func (a AddBundleValue) Kind() ActionKind { return KindAddBundleValue }
func (a AddBundleValue) String() string {
	return fmt.Sprintf("AddBundleValue(%s,%s)", a.Bundle, a.Value)
}

// AddStateValue adds a value to a state bundle, with its resolved flag.
type AddStateValue struct {
	Bundle   string `json:"bundle"`
	Value    string `json:"value"`
	Resolved bool   `json:"resolved"`
}

func (a AddStateValue) Kind() ActionKind { return KindAddStateValue }
func (a AddStateValue) String() string {
	return fmt.Sprintf("AddStateValue(%s,%s,resolved=%t)", a.Bundle, a.Value, a.Resolved)
}

// CreateField ensures the global field definition exists with the declared
// type, backed by Bundle when non-empty.
type CreateField struct {
	Field     string `json:"field"`
	FieldType string `json:"field_type"`
	Bundle    string `json:"bundle,omitempty"`
}

func (a CreateField) Kind() ActionKind { return KindCreateField }
func (a CreateField) String() string {
	if a.Bundle != "" {
		return fmt.Sprintf("CreateField(%s,%s,%s)", a.Field, a.FieldType, a.Bundle)
	}
	return fmt.Sprintf("CreateField(%s,%s)", a.Field, a.FieldType)
}

// AttachField attaches a field to a project. Emitted for every declared
// binding; the executor must no-op when the field is already attached.
type AttachField struct {
	Field   string `json:"field"`
	Project string `json:"project"`
}

func (a AttachField) Kind() ActionKind { return KindAttachField }
func (a AttachField) String() string {
	return fmt.Sprintf("AttachField(%s,%s)", a.Field, a.Project)
}

// SetFieldDefault sets the project-scoped default value of a field.
type SetFieldDefault struct {
	Field   string `json:"field"`
	Project string `json:"project"`
	Value   string `json:"value"`
}

func (a SetFieldDefault) Kind() ActionKind { return KindSetFieldDefault }
func (a SetFieldDefault) String() string {
	return fmt.Sprintf("SetFieldDefault(%s,%s,%s)", a.Field, a.Project, a.Value)
}

// CreateWorkflow creates a workflow.
type CreateWorkflow struct {
	Workflow string `json:"workflow"`
	Title    string `json:"title"`
}

func (a CreateWorkflow) Kind() ActionKind { return KindCreateWorkflow }
func (a CreateWorkflow) String() string {
	return fmt.Sprintf("CreateWorkflow(%s)", a.Workflow)
}

// CreateRule creates a scripted rule inside a workflow.
type CreateRule struct {
	Workflow string `json:"workflow"`
	Rule     string `json:"rule"`
	RuleType string `json:"rule_type"`
	Script   string `json:"script"`
}

func (a CreateRule) Kind() ActionKind { return KindCreateRule }
func (a CreateRule) String() string {
	return fmt.Sprintf("CreateRule(%s,%s)", a.Workflow, a.Rule)
}

// UpdateRule replaces the script of an existing rule.
type UpdateRule struct {
	Workflow string `json:"workflow"`
	Rule     string `json:"rule"`
	Script   string `json:"script"`
}

func (a UpdateRule) Kind() ActionKind { return KindUpdateRule }
func (a UpdateRule) String() string {
	return fmt.Sprintf("UpdateRule(%s,%s)", a.Workflow, a.Rule)
}

// AttachWorkflow attaches a workflow to a project, after all of that
// workflow's rules exist.
type AttachWorkflow struct {
	Workflow string `json:"workflow"`
	Project  string `json:"project"`
}

func (a AttachWorkflow) Kind() ActionKind { return KindAttachWorkflow }
func (a AttachWorkflow) String() string {
	return fmt.Sprintf("AttachWorkflow(%s,%s)", a.Workflow, a.Project)
}

// DetachField removes a field's attachment to one project.
type DetachField struct {
	Field   string `json:"field"`
	Project string `json:"project"`
}

func (a DetachField) Kind() ActionKind { return KindDetachField }
func (a DetachField) String() string {
	return fmt.Sprintf("DetachField(%s,%s)", a.Field, a.Project)
}

// DeleteRule removes a rule from a workflow.
type DeleteRule struct {
	Workflow string `json:"workflow"`
	Rule     string `json:"rule"`
}

func (a DeleteRule) Kind() ActionKind { return KindDeleteRule }
func (a DeleteRule) String() string {
	return fmt.Sprintf("DeleteRule(%s,%s)", a.Workflow, a.Rule)
}

// DeleteWorkflow removes a workflow. Ordered after the deletion of every
// rule it still contains.
type DeleteWorkflow struct {
	Workflow string `json:"workflow"`
}

func (a DeleteWorkflow) Kind() ActionKind { return KindDeleteWorkflow }
func (a DeleteWorkflow) String() string {
	return fmt.Sprintf("DeleteWorkflow(%s)", a.Workflow)
}

// actionEnvelope tags a serialized action with its kind so plans can be
// encoded for policy evaluation and history storage.
type actionEnvelope struct {
	Kind ActionKind      `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

// MarshalAction encodes an action as a kind-tagged JSON envelope.
func MarshalAction(a Action) ([]byte, error) {
	spec, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s action: %w", a.Kind(), err)
	}
	return json.Marshal(actionEnvelope{Kind: a.Kind(), Spec: spec})
}

// UnmarshalAction decodes a kind-tagged action envelope.
func UnmarshalAction(data []byte) (Action, error) {
	var env actionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode action envelope: %w", err)
	}
	var (
		a   Action
		err error
	)
	switch env.Kind {
	case KindEnsureBundle:
		a, err = decodeAction[EnsureBundle](env.Spec)
	case KindAddBundleValue:
		a, err = decodeAction[AddBundleValue](env.Spec)
	case KindAddStateValue:
		a, err = decodeAction[AddStateValue](env.Spec)
	case KindCreateField:
		a, err = decodeAction[CreateField](env.Spec)
	case KindAttachField:
		a, err = decodeAction[AttachField](env.Spec)
	case KindSetFieldDefault:
		a, err = decodeAction[SetFieldDefault](env.Spec)
	case KindCreateWorkflow:
		a, err = decodeAction[CreateWorkflow](env.Spec)
	case KindCreateRule:
		a, err = decodeAction[CreateRule](env.Spec)
	case KindUpdateRule:
		a, err = decodeAction[UpdateRule](env.Spec)
	case KindAttachWorkflow:
		a, err = decodeAction[AttachWorkflow](env.Spec)
	case KindDetachField:
		a, err = decodeAction[DetachField](env.Spec)
	case KindDeleteRule:
		a, err = decodeAction[DeleteRule](env.Spec)
	case KindDeleteWorkflow:
		a, err = decodeAction[DeleteWorkflow](env.Spec)
	default:
		return nil, NewPermanentError(fmt.Sprintf("unknown action kind: %s", env.Kind), nil).
			WithCode(ErrCodeValidation)
	}
	if err != nil {
		return nil, NewPermanentError(fmt.Sprintf("undecodable %s action", env.Kind), err).
			WithCode(ErrCodeValidation)
	}
	return a, nil
}

func decodeAction[T Action](spec json.RawMessage) (Action, error) {
	var a T
	if err := json.Unmarshal(spec, &a); err != nil {
		return nil, err
	}
	return a, nil
}
