// Package checkpointer saves and restores agent snapshots. Snapshots
// are gob encoded and stored under a key naming the environment and
// the agent they were trained with.
package checkpointer

import (
	"context"
	"encoding/gob"
	"fmt"
	"regexp"
	"strings"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Store persists snapshots of Serializable objects by key
type Store interface {
	// Load decodes the snapshot stored under key into obj. It reports
	// false with a nil error if no snapshot is stored under key.
	Load(ctx context.Context, key string, obj Serializable) (bool, error)

	// Save stores a snapshot of obj under key, replacing any previous
	// snapshot
	Save(ctx context.Context, key string, obj Serializable) error

	// Delete removes the snapshot stored under key, if any
	Delete(ctx context.Context, key string) error
}

// Checkpointer checkpoints/saves serializable objects as training
// progresses
type Checkpointer interface {
	// Checkpoint is called with the number of episodes trained so far
	Checkpoint(ctx context.Context, episodes int) error
}

var unsafeKey = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// Key returns the snapshot key of an agent trained on an environment
func Key(env, agent string) string {
	clean := func(s string) string {
		return strings.Trim(unsafeKey.ReplaceAllString(s, "_"), "_.")
	}
	return fmt.Sprintf("%v/%v", clean(env), clean(agent))
}

// Open returns the Store described by uri. A uri of the form
// redis://host:port selects a RedisStore, anything else is taken as
// the directory of a FileStore.
func Open(uri string) (Store, error) {
	if strings.HasPrefix(uri, "redis://") {
		return NewRedisStore(uri)
	}
	if uri == "" {
		return nil, fmt.Errorf("open: empty store")
	}
	return NewFileStore(uri), nil
}
