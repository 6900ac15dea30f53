package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Applier realizes one action against the live system. Implementations live
// outside this module; the reference runner only drives them.
type Applier interface {
	// Apply performs the change the action describes. Errors should be
	// classified (see ErrorClass) so the caller can decide about retries.
	Apply(ctx context.Context, action Action) error
}

// ApplierFunc adapts a function to the Applier interface.
type ApplierFunc func(ctx context.Context, action Action) error

// Apply implements Applier.
func (f ApplierFunc) Apply(ctx context.Context, action Action) error {
	return f(ctx, action)
}

// ActionResult is the outcome of one action application.
type ActionResult struct {
	// Position is the action's index in the plan.
	Position int `json:"position"`

	// Action is the applied action.
	Action Action `json:"-"`

	// Status is the apply outcome.
	Status ApplyStatus `json:"status"`

	// Err is the applier error for failed actions.
	Err error `json:"-"`

	// StartedAt is when the application began; zero for skipped actions.
	StartedAt time.Time `json:"started_at,omitzero"`

	// Duration is how long the application took.
	Duration time.Duration `json:"duration"`
}

// RunResult is the per-action outcome list for one plan application.
type RunResult struct {
	// PlanID identifies the applied plan.
	PlanID string `json:"plan_id"`

	// Status is the overall run outcome.
	Status RunStatus `json:"status"`

	// Results holds one entry per plan action, in plan order.
	Results []ActionResult `json:"results"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// CompletedAt is when the run finished.
	CompletedAt time.Time `json:"completed_at"`
}

// Runner applies a plan strictly sequentially, in plan order. When an action
// fails, every action that transitively depends on it is skipped, while
// independent actions continue; the run never retries and never reorders.
//
// The runner performs no I/O of its own; all side effects live in the
// injected Applier. Resuming a partially applied plan is not supported —
// re-observe, re-plan, re-apply.
type Runner struct {
	applier Applier
	logger  zerolog.Logger
}

// NewRunner creates a runner driving the given applier.
func NewRunner(applier Applier, logger zerolog.Logger) *Runner {
	return &Runner{
		applier: applier,
		logger:  logger.With().Str("component", "runner").Logger(),
	}
}

// Run applies the plan. The returned RunResult always covers every action;
// a non-nil error is returned only when the context is cancelled.
func (r *Runner) Run(ctx context.Context, plan *Plan) (*RunResult, error) {
	result := &RunResult{
		PlanID:    plan.ID,
		StartedAt: time.Now(),
		Results:   make([]ActionResult, len(plan.Actions)),
	}
	for i, a := range plan.Actions {
		result.Results[i] = ActionResult{Position: i, Action: a, Status: ApplyPending}
	}

	prerequisites := Resolve(plan.Actions)

	for i, a := range plan.Actions {
		if err := ctx.Err(); err != nil {
			r.skipRemaining(result, i)
			result.Status = runStatus(result)
			result.CompletedAt = time.Now()
			return result, err
		}

		if blocked(prerequisites[i], result.Results) {
			result.Results[i].Status = ApplySkipped
			r.logger.Warn().
				Str("plan_id", plan.ID).
				Str("action", a.String()).
				Msg("Action skipped: prerequisite did not succeed")
			continue
		}

		started := time.Now()
		err := r.applier.Apply(ctx, a)
		result.Results[i].StartedAt = started
		result.Results[i].Duration = time.Since(started)

		if err != nil {
			result.Results[i].Status = ApplyFailed
			result.Results[i].Err = err
			r.logger.Error().Err(err).
				Str("plan_id", plan.ID).
				Str("action", a.String()).
				Msg("Action failed")
			continue
		}

		result.Results[i].Status = ApplySucceeded
		r.logger.Debug().
			Str("plan_id", plan.ID).
			Str("action", a.String()).
			Dur("duration", result.Results[i].Duration).
			Msg("Action applied")
	}

	result.Status = runStatus(result)
	result.CompletedAt = time.Now()

	r.logger.Info().
		Str("plan_id", plan.ID).
		Str("status", string(result.Status)).
		Int("actions", len(result.Results)).
		Msg("Run completed")

	return result, nil
}

// blocked reports whether any prerequisite failed or was itself skipped.
// Skips propagate transitively because a skipped prerequisite blocks its
// dependents the same way a failed one does.
func blocked(prerequisites []int, results []ActionResult) bool {
	for _, p := range prerequisites {
		if results[p].Status == ApplyFailed || results[p].Status == ApplySkipped {
			return true
		}
	}
	return false
}

func (r *Runner) skipRemaining(result *RunResult, from int) {
	for i := from; i < len(result.Results); i++ {
		if result.Results[i].Status == ApplyPending {
			result.Results[i].Status = ApplySkipped
		}
	}
}

func runStatus(result *RunResult) RunStatus {
	succeeded, failed := 0, 0
	for _, res := range result.Results {
		switch res.Status {
		case ApplySucceeded:
			succeeded++
		case ApplyFailed, ApplySkipped:
			failed++
		}
	}
	switch {
	case failed == 0:
		return RunSucceeded
	case succeeded == 0 && failed > 0:
		return RunFailed
	default:
		return RunPartial
	}
}
