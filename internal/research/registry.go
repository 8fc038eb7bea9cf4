package research

import (
	"github.com/Dentikka/deep-research/internal/store"
)

// Registry answers queries about stored sessions for the CLI and any other
// external caller.
type Registry struct {
	Store *store.CheckpointStore
}

func NewRegistry(cp *store.CheckpointStore) *Registry {
	return &Registry{Store: cp}
}

// List returns session summaries, newest first, optionally filtered by
// status.
func (r *Registry) List(status store.Status) ([]store.Summary, error) {
	return r.Store.List(status)
}

// Get loads one full session.
func (r *Registry) Get(id string) (*store.Session, error) {
	return r.Store.Load(id)
}
