// Package facts holds the typed fact store the trackforge planning engine
// runs against.
//
// A fact is one immutable configuration tuple about the work-tracking
// platform: a bundle, a bundle value, a field, a field/project attachment, a
// project-scoped default, a project, a workflow, a workflow rule, or a
// workflow/project attachment. Facts are ingested on two sides:
//
//   - Current: observed on the live system by the surrounding tool's client.
//   - Target: declared in the desired-state configuration.
//
// Deletion markers declare identities that must be removed if they currently
// exist. A store is populated, frozen, and then handed to pkg/engine; it is
// rebuilt from scratch on every run and never mutated by the engine.
//
// Ingestion is the validation boundary: facts with unknown kinds, missing
// identity attributes, duplicate keys, or marker/target conflicts are
// rejected with MalformedFactError before planning ever starts. The engine
// assumes a well-formed store.
//
// The package also provides a JSON snapshot codec for replaying fact sets
// and an fsnotify-based watcher for re-planning when new snapshots arrive.
package facts
