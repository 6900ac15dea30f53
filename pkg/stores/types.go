package stores

import (
	"context"
	"time"

	"github.com/trackforge/trackforge/pkg/engine"
)

// HistoryStore persists computed plans and their application outcomes, so
// operators can audit what the engine decided and what happened when the
// executor applied it.
type HistoryStore interface {
	// SavePlan persists a computed plan and its actions.
	SavePlan(ctx context.Context, plan *engine.Plan) error

	// GetPlan retrieves a persisted plan by ID.
	GetPlan(ctx context.Context, id string) (*engine.Plan, error)

	// ListPlans lists persisted plan summaries, newest first.
	ListPlans(ctx context.Context, limit, offset int) ([]*PlanRecord, error)

	// DeletePlan removes a plan and its dependent records.
	DeletePlan(ctx context.Context, id string) error

	// SaveRun persists the outcome of applying a plan.
	SaveRun(ctx context.Context, run *engine.RunResult) error

	// GetRun retrieves a persisted run by plan ID.
	GetRun(ctx context.Context, planID string) (*RunRecord, error)

	// HealthCheck verifies the store is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}

// PlanRecord is the stored summary row of a plan.
type PlanRecord struct {
	// ID is the plan identifier.
	ID string `json:"id"`

	// CreatedAt is when the plan was computed.
	CreatedAt time.Time `json:"created_at"`

	// TotalActions is the number of actions in the plan.
	TotalActions int `json:"total_actions"`

	// Destructive is the number of destructive actions.
	Destructive int `json:"destructive"`

	// Missing, Drifted and Deletable are the diff entry counts the plan
	// was derived from.
	Missing   int `json:"missing"`
	Drifted   int `json:"drifted"`
	Deletable int `json:"deletable"`
}

// RunRecord is the stored outcome of one plan application.
type RunRecord struct {
	// PlanID identifies the applied plan.
	PlanID string `json:"plan_id"`

	// Status is the overall run outcome.
	Status engine.RunStatus `json:"status"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at"`

	// Results holds the per-action outcomes, in plan order.
	Results []ActionResultRecord `json:"results"`
}

// ActionResultRecord is the stored outcome of one action application.
type ActionResultRecord struct {
	// Position is the action's index in the plan.
	Position int `json:"position"`

	// ActionKind is the applied action's kind.
	ActionKind engine.ActionKind `json:"action_kind"`

	// Status is the apply outcome.
	Status engine.ApplyStatus `json:"status"`

	// Error is the applier error message for failed actions.
	Error string `json:"error,omitempty"`

	// Duration is how long the application took.
	Duration time.Duration `json:"duration"`
}
