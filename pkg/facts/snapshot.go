package facts

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Snapshot is the serialized form of a fact store: the two fact streams and
// the deletion markers, each fact wrapped in a kind-tagged envelope. It is
// the engine's own input contract, independent of whatever format the
// surrounding tool reads its declarative configuration from.
type Snapshot struct {
	// CollectedAt is when the current-state facts were observed.
	CollectedAt time.Time `json:"collected_at"`

	// Current are the observed facts.
	Current []Envelope `json:"current"`

	// Target are the declared facts.
	Target []Envelope `json:"target"`

	// Deletions are the declared deletion markers.
	Deletions []DeletionMarker `json:"deletions,omitempty"`
}

// Envelope tags a serialized fact with its resource kind so it can be
// decoded back into the right concrete type.
type Envelope struct {
	Kind Kind            `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// WriteSnapshot serializes the store to w.
func WriteSnapshot(w io.Writer, store *Store, collectedAt time.Time) error {
	snap := Snapshot{CollectedAt: collectedAt}

	for _, kind := range Kinds {
		for _, f := range store.CurrentOfKind(kind) {
			env, err := wrap(f)
			if err != nil {
				return err
			}
			snap.Current = append(snap.Current, env)
		}
	}
	for _, kind := range Kinds {
		for _, f := range store.TargetOfKind(kind) {
			env, err := wrap(f)
			if err != nil {
				return err
			}
			snap.Target = append(snap.Target, env)
		}
		snap.Deletions = append(snap.Deletions, store.DeletionsOfKind(kind)...)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// ReadSnapshot decodes a snapshot from r and rebuilds a frozen store from
// it. Malformed envelopes surface as MalformedFactError.
func ReadSnapshot(r io.Reader) (*Store, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode fact snapshot: %w", err)
	}

	store := NewStore()
	for _, env := range snap.Current {
		f, err := unwrap(env)
		if err != nil {
			return nil, err
		}
		if err := store.AddCurrent(f); err != nil {
			return nil, err
		}
	}
	for _, env := range snap.Target {
		f, err := unwrap(env)
		if err != nil {
			return nil, err
		}
		if err := store.AddTarget(f); err != nil {
			return nil, err
		}
	}
	for _, m := range snap.Deletions {
		if err := store.MarkDeletion(m); err != nil {
			return nil, err
		}
	}
	store.Freeze()
	return store, nil
}

func wrap(f Fact) (Envelope, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal %s fact %s: %w", f.Kind(), f.Key(), err)
	}
	return Envelope{Kind: f.Kind(), Data: data}, nil
}

func unwrap(env Envelope) (Fact, error) {
	var (
		f   Fact
		err error
	)
	switch env.Kind {
	case KindBundle:
		f, err = decode[Bundle](env.Data)
	case KindBundleValue:
		f, err = decode[BundleValue](env.Data)
	case KindField:
		f, err = decode[Field](env.Data)
	case KindFieldAttachment:
		f, err = decode[FieldAttachment](env.Data)
	case KindFieldDefault:
		f, err = decode[FieldDefault](env.Data)
	case KindProject:
		f, err = decode[Project](env.Data)
	case KindWorkflow:
		f, err = decode[Workflow](env.Data)
	case KindWorkflowRule:
		f, err = decode[WorkflowRule](env.Data)
	case KindWorkflowAttachment:
		f, err = decode[WorkflowAttachment](env.Data)
	default:
		return nil, &MalformedFactError{FactKind: env.Kind, Reason: "unknown resource kind"}
	}
	if err != nil {
		return nil, &MalformedFactError{FactKind: env.Kind, Reason: "undecodable fact payload", Err: err}
	}
	return f, nil
}

func decode[T Fact](data json.RawMessage) (Fact, error) {
	var f T
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f, nil
}
