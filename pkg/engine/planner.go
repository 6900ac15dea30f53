package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trackforge/trackforge/pkg/facts"
)

// Planner computes reconciliation plans: it diffs a frozen fact store,
// generates the deduplicated action set, and sequences it into one total
// order respecting the dependency relation.
type Planner struct {
	logger zerolog.Logger
}

// NewPlanner creates a planner.
func NewPlanner(logger zerolog.Logger) *Planner {
	return &Planner{
		logger: logger.With().Str("component", "planner").Logger(),
	}
}

// Plan runs the full pipeline against one frozen fact store. Identical
// stores produce identical plans. On a dependency cycle the returned error
// is a *CycleError naming every unschedulable action; no partial plan is
// produced.
func (p *Planner) Plan(store *facts.Store) (*Plan, error) {
	if store == nil {
		return nil, NewPermanentError("fact store is nil", nil).WithCode(ErrCodeValidation)
	}
	if !store.Frozen() {
		return nil, NewPermanentError("fact store must be frozen before planning", nil).
			WithCode(ErrCodeValidation)
	}

	started := time.Now()
	entries := Diff(store)
	actions := Generate(store, entries)

	ordered, err := p.Sequence(actions)
	if err != nil {
		p.logger.Error().Err(err).Int("actions", len(actions)).Msg("Planning failed")
		return nil, err
	}

	plan := &Plan{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
		Actions:   ordered,
		Summary:   summarize(entries, ordered),
	}

	p.logger.Info().
		Str("plan_id", plan.ID).
		Int("diff_entries", len(entries)).
		Int("actions", len(ordered)).
		Int("destructive", plan.Summary.Destructive).
		Dur("duration", time.Since(started)).
		Msg("Plan computed")

	return plan, nil
}

// Sequence orders actions with Kahn's algorithm: an in-degree counter per
// action and a ready set, processed in rounds. Ties among simultaneously
// ready actions break stably by generation order, so the output is fully
// deterministic for a given action set.
//
// If no action becomes ready while unscheduled actions remain, the
// dependency relation is cyclic and a *CycleError listing the entire
// remaining set is returned.
func (p *Planner) Sequence(actions []Action) ([]Action, error) {
	return sequence(actions, Resolve(actions))
}

func sequence(actions []Action, prerequisites [][]int) ([]Action, error) {
	if len(actions) == 0 {
		return []Action{}, nil
	}

	inDegree := make([]int, len(actions))
	dependents := make([][]int, len(actions))
	for i, prereqs := range prerequisites {
		inDegree[i] = len(prereqs)
		for _, j := range prereqs {
			dependents[j] = append(dependents[j], i)
		}
	}

	ready := make([]int, 0, len(actions))
	for i, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, i)
		}
	}

	ordered := make([]Action, 0, len(actions))
	scheduled := make([]bool, len(actions))
	for len(ready) > 0 {
		sort.Ints(ready)

		var next []int
		for _, i := range ready {
			ordered = append(ordered, actions[i])
			scheduled[i] = true
			for _, dependent := range dependents[i] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		ready = next
	}

	if len(ordered) != len(actions) {
		remaining := make([]Action, 0, len(actions)-len(ordered))
		for i, a := range actions {
			if !scheduled[i] {
				remaining = append(remaining, a)
			}
		}
		return nil, &CycleError{Remaining: remaining}
	}

	return ordered, nil
}
