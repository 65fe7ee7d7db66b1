// Package store persists the set of already-emitted entry keys across
// runs. Two backends exist: a JSON file (default) and Postgres.
package store

// SeenStore loads and persists the durable seen-key set. Load must
// tolerate a missing or corrupt backing store by returning an empty
// set; only infrastructure-level failures surface as errors, and even
// those are treated as an empty set by the pipeline.
type SeenStore interface {
	Load() (map[string]struct{}, error)
	Save(seen map[string]struct{}) error
}
