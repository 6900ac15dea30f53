package engine

import (
	"encoding/json"
	"fmt"
	"time"
)

// Plan is the dependency-ordered action sequence produced by one planning
// invocation. The external executor must apply the actions strictly in this
// order, never in parallel: later actions frequently reference identifiers
// produced by earlier actions in the same plan.
type Plan struct {
	// ID is the unique identifier of this plan.
	ID string `json:"id"`

	// CreatedAt is when the plan was computed.
	CreatedAt time.Time `json:"created_at"`

	// Actions are the ordered change operations.
	Actions []Action `json:"-"`

	// Summary provides aggregate statistics about the plan.
	Summary Summary `json:"summary"`
}

// Summary provides statistics about a plan and the diff that produced it.
type Summary struct {
	// TotalActions is the number of actions in the plan.
	TotalActions int `json:"total_actions"`

	// ByKind counts actions per kind.
	ByKind map[ActionKind]int `json:"by_kind,omitempty"`

	// Missing is the number of missing-resource diff entries.
	Missing int `json:"missing"`

	// Drifted is the number of drifted-resource diff entries.
	Drifted int `json:"drifted"`

	// Deletable is the number of deletable-resource diff entries.
	Deletable int `json:"deletable"`

	// Destructive is the number of actions that remove configuration.
	Destructive int `json:"destructive"`
}

// Empty reports whether the plan contains no actions.
func (p *Plan) Empty() bool {
	return len(p.Actions) == 0
}

// planJSON is the serialized form of a plan, with actions wrapped in
// kind-tagged envelopes.
type planJSON struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Summary   Summary           `json:"summary"`
	Actions   []json.RawMessage `json:"actions"`
}

// MarshalJSON encodes the plan with kind-tagged action envelopes, the shape
// consumed by policy evaluation and the plan history store.
func (p *Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		ID:        p.ID,
		CreatedAt: p.CreatedAt,
		Summary:   p.Summary,
		Actions:   make([]json.RawMessage, 0, len(p.Actions)),
	}
	for _, a := range p.Actions {
		data, err := MarshalAction(a)
		if err != nil {
			return nil, err
		}
		out.Actions = append(out.Actions, data)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a plan serialized by MarshalJSON.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var in planJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("failed to decode plan: %w", err)
	}
	p.ID = in.ID
	p.CreatedAt = in.CreatedAt
	p.Summary = in.Summary
	p.Actions = make([]Action, 0, len(in.Actions))
	for _, raw := range in.Actions {
		a, err := UnmarshalAction(raw)
		if err != nil {
			return err
		}
		p.Actions = append(p.Actions, a)
	}
	return nil
}

// summarize builds plan statistics from the diff and the ordered actions.
func summarize(entries []Entry, actions []Action) Summary {
	s := Summary{
		TotalActions: len(actions),
		ByKind:       make(map[ActionKind]int),
	}
	for _, entry := range entries {
		switch entry.Category {
		case DiffMissing:
			s.Missing++
		case DiffDrifted:
			s.Drifted++
		case DiffDeletable:
			s.Deletable++
		}
	}
	for _, a := range actions {
		s.ByKind[a.Kind()]++
		if a.Kind().IsDestructive() {
			s.Destructive++
		}
	}
	return s
}
