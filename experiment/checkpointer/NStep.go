package checkpointer

import (
	"context"
	"fmt"
)

// nStep implements checkpointing every N episodes
type nStep struct {
	interval int
	object   Serializable // Object to save
	store    Store
	key      string
}

// NewNStep returns a checkpointer that saves the Progress of object to
// store every n episodes. Checkpoints are saved under PartialKey(key) so
// that they are never mistaken for the snapshot of a finished run.
func NewNStep(n int, object Serializable, store Store,
	key string) (Checkpointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("newNStep: interval must be positive, have %v",
			n)
	}
	return &nStep{
		interval: n,
		object:   object,
		store:    store,
		key:      PartialKey(key),
	}, nil
}

// Checkpoint saves the tracked object if episodes is a multiple of the
// interval
func (n *nStep) Checkpoint(ctx context.Context, episodes int) error {
	if episodes%n.interval == 0 {
		progress := &Progress{Episodes: episodes, Object: n.object}
		return n.store.Save(ctx, n.key, progress)
	}
	return nil
}
