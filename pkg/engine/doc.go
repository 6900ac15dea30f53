// Package engine implements the reconciliation pipeline that turns a frozen
// fact store into an ordered change plan for a work-tracking platform.
//
// The pipeline has three pure stages:
//
//   - Diff derives the difference set between the observed (current) and
//     declared (target) sides of a fact store: resources that are missing,
//     resources whose watched attribute drifted, and marked resources that
//     still exist and are deletable.
//   - Generate maps diff entries to idempotent actions, deduplicating
//     structurally identical actions and deriving supporting actions such as
//     EnsureBundle for bundles that values or fields reference.
//   - Sequence orders the action set with Kahn's algorithm over the static
//     kind-level dependency table, instantiated per shared identity. Ties
//     among simultaneously ready actions break by generation order, so the
//     whole pipeline is deterministic: identical stores yield identical
//     plans. A cyclic dependency relation aborts planning with a *CycleError
//     naming every unschedulable action.
//
// Planner composes the stages:
//
//	planner := engine.NewPlanner(logger)
//	plan, err := planner.Plan(store)
//	if err != nil {
//	    var cycle *engine.CycleError
//	    if errors.As(err, &cycle) {
//	        // the dependency relation was not a DAG
//	    }
//	    return err
//	}
//	for _, action := range plan.Actions {
//	    // apply in order
//	}
//
// Runner applies a plan through an injected Applier, strictly sequentially
// and in plan order. A failed action causes its transitive dependents to be
// skipped while independent actions continue; the runner itself never
// retries and performs no I/O.
//
// Errors follow the EngineError model: every failure carries a class
// (transient, conflict, permanent) and a machine-readable code so callers
// can distinguish retryable conditions from configuration mistakes.
package engine
