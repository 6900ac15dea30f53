package facts

import (
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
)

// Store is the in-memory fact store for one planning invocation. It holds
// the observed (current) facts, the declared (target) facts and the deletion
// markers, indexed by kind and identity key.
//
// A store is built once per run and frozen before planning; the engine never
// mutates it. There is no persistence and no cross-run state.
type Store struct {
	current   map[Kind]map[string]Fact
	target    map[Kind]map[string]Fact
	deletions map[Kind]map[string]DeletionMarker
	frozen    bool
	validate  *validator.Validate
}

// NewStore creates an empty, unfrozen fact store.
func NewStore() *Store {
	return &Store{
		current:   make(map[Kind]map[string]Fact),
		target:    make(map[Kind]map[string]Fact),
		deletions: make(map[Kind]map[string]DeletionMarker),
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// AddCurrent ingests one observed fact. Duplicate identity keys on the
// current side are an observation error and rejected.
func (s *Store) AddCurrent(f Fact) error {
	return s.add(s.current, f)
}

// AddTarget ingests one declared fact. A target fact whose identity is also
// marked for deletion violates the ingestion contract and is rejected.
func (s *Store) AddTarget(f Fact) error {
	if err := s.add(s.target, f); err != nil {
		return err
	}
	if _, marked := s.deletions[f.Kind()][f.Key()]; marked {
		delete(s.target[f.Kind()], f.Key())
		return &MalformedFactError{
			FactKind: f.Kind(),
			FactKey:  f.Key(),
			Reason:   "target fact conflicts with a deletion marker for the same identity",
		}
	}
	return nil
}

// MarkDeletion records that the identified resource must be removed if it
// currently exists.
func (s *Store) MarkDeletion(m DeletionMarker) error {
	if s.frozen {
		return fmt.Errorf("fact store is frozen")
	}
	if err := m.ResourceKind.Validate(); err != nil {
		return &MalformedFactError{FactKind: m.ResourceKind, FactKey: m.ResourceKey, Reason: "unknown resource kind", Err: err}
	}
	if m.ResourceKey == "" {
		return &MalformedFactError{FactKind: m.ResourceKind, Reason: "deletion marker has empty identity key"}
	}
	if _, declared := s.target[m.ResourceKind][m.ResourceKey]; declared {
		return &MalformedFactError{
			FactKind: m.ResourceKind,
			FactKey:  m.ResourceKey,
			Reason:   "deletion marker conflicts with a target fact for the same identity",
		}
	}
	if s.deletions[m.ResourceKind] == nil {
		s.deletions[m.ResourceKind] = make(map[string]DeletionMarker)
	}
	s.deletions[m.ResourceKind][m.ResourceKey] = m
	return nil
}

func (s *Store) add(side map[Kind]map[string]Fact, f Fact) error {
	if s.frozen {
		return fmt.Errorf("fact store is frozen")
	}
	if err := f.Kind().Validate(); err != nil {
		return &MalformedFactError{FactKind: f.Kind(), FactKey: f.Key(), Reason: "unknown resource kind", Err: err}
	}
	if err := s.validate.Struct(f); err != nil {
		return &MalformedFactError{FactKind: f.Kind(), FactKey: f.Key(), Reason: "missing or invalid identity attribute", Err: err}
	}
	if side[f.Kind()] == nil {
		side[f.Kind()] = make(map[string]Fact)
	}
	if _, exists := side[f.Kind()][f.Key()]; exists {
		return &MalformedFactError{FactKind: f.Kind(), FactKey: f.Key(), Reason: "duplicate identity key"}
	}
	side[f.Kind()][f.Key()] = f
	return nil
}

// Freeze seals the store. Further ingestion fails; the snapshot handed to
// the engine is immutable for the lifetime of the run.
func (s *Store) Freeze() {
	s.frozen = true
}

// Frozen reports whether the store has been sealed.
func (s *Store) Frozen() bool {
	return s.frozen
}

// Current returns the observed fact with the given identity, if any.
func (s *Store) Current(k Kind, key string) (Fact, bool) {
	f, ok := s.current[k][key]
	return f, ok
}

// Target returns the declared fact with the given identity, if any.
func (s *Store) Target(k Kind, key string) (Fact, bool) {
	f, ok := s.target[k][key]
	return f, ok
}

// Deleted reports whether a deletion marker exists for the identity.
func (s *Store) Deleted(k Kind, key string) bool {
	_, ok := s.deletions[k][key]
	return ok
}

// CurrentOfKind returns all observed facts of one kind, sorted by key.
func (s *Store) CurrentOfKind(k Kind) []Fact {
	return sortedFacts(s.current[k])
}

// TargetOfKind returns all declared facts of one kind, sorted by key.
func (s *Store) TargetOfKind(k Kind) []Fact {
	return sortedFacts(s.target[k])
}

// DeletionsOfKind returns the deletion markers of one kind, sorted by key.
func (s *Store) DeletionsOfKind(k Kind) []DeletionMarker {
	keys := make([]string, 0, len(s.deletions[k]))
	for key := range s.deletions[k] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	markers := make([]DeletionMarker, 0, len(keys))
	for _, key := range keys {
		markers = append(markers, s.deletions[k][key])
	}
	return markers
}

// Len returns the total number of facts and markers in the store.
func (s *Store) Len() int {
	n := 0
	for _, m := range s.current {
		n += len(m)
	}
	for _, m := range s.target {
		n += len(m)
	}
	for _, m := range s.deletions {
		n += len(m)
	}
	return n
}

func sortedFacts(m map[string]Fact) []Fact {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]Fact, 0, len(keys))
	for _, key := range keys {
		out = append(out, m[key])
	}
	return out
}
