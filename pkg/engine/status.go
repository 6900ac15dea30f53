package engine

import "fmt"

// DiffCategory classifies one diff entry.
type DiffCategory string

const (
	// DiffMissing indicates a declared resource is absent from the live
	// system.
	DiffMissing DiffCategory = "missing"

	// DiffDrifted indicates the resource exists on both sides but its
	// watched attribute differs.
	DiffDrifted DiffCategory = "drifted"

	// DiffDeletable indicates the resource is marked for deletion and
	// currently exists.
	DiffDeletable DiffCategory = "deletable"
)

// Validate checks if the diff category is valid.
func (c DiffCategory) Validate() error {
	switch c {
	case DiffMissing, DiffDrifted, DiffDeletable:
		return nil
	default:
		return fmt.Errorf("invalid diff category: %s", c)
	}
}

// ActionState tracks one action through the topological sequencer.
type ActionState string

const (
	// ActionUnscheduled means the action still has unscheduled
	// prerequisites.
	ActionUnscheduled ActionState = "unscheduled"

	// ActionReady means every prerequisite has been scheduled.
	ActionReady ActionState = "ready"

	// ActionScheduled means the action has a position in the plan.
	ActionScheduled ActionState = "scheduled"
)

// ApplyStatus is the per-action outcome reported by the Runner.
type ApplyStatus string

const (
	// ApplyPending means the action has not been attempted yet.
	ApplyPending ApplyStatus = "pending"

	// ApplySucceeded means the applier completed the action.
	ApplySucceeded ApplyStatus = "succeeded"

	// ApplyFailed means the applier returned an error.
	ApplyFailed ApplyStatus = "failed"

	// ApplySkipped means a prerequisite failed, so the action was never
	// attempted.
	ApplySkipped ApplyStatus = "skipped"
)

// IsTerminal returns true if the status is a final outcome.
func (s ApplyStatus) IsTerminal() bool {
	return s == ApplySucceeded || s == ApplyFailed || s == ApplySkipped
}

// Validate checks if the apply status is valid.
func (s ApplyStatus) Validate() error {
	switch s {
	case ApplyPending, ApplySucceeded, ApplyFailed, ApplySkipped:
		return nil
	default:
		return fmt.Errorf("invalid apply status: %s", s)
	}
}

// RunStatus is the overall outcome of applying one plan.
type RunStatus string

const (
	// RunSucceeded means every action succeeded.
	RunSucceeded RunStatus = "succeeded"

	// RunFailed means every attempted action after the first failure was
	// blocked; nothing independent remained.
	RunFailed RunStatus = "failed"

	// RunPartial means some actions failed or were skipped while
	// independent branches completed.
	RunPartial RunStatus = "partial"
)

// Validate checks if the run status is valid.
func (s RunStatus) Validate() error {
	switch s {
	case RunSucceeded, RunFailed, RunPartial:
		return nil
	default:
		return fmt.Errorf("invalid run status: %s", s)
	}
}
