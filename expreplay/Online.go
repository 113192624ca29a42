package expreplay

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rllab/timestep"
)

// onlineCache implements an experience replay buffer for sampling
// completely online.
//
// When creating a new experience replay buffer, the user could
// choose to use a buffer with a capacity of 1. In this case,
// experience replay reduces to online sampling of the most recent
// transition.
type onlineCache struct {
	last  timestep.Transition
	empty bool
}

// newOnline returns a new online replay buffer
func newOnline() ExperienceReplayer {
	return &onlineCache{empty: true}
}

// Add replaces the stored transition with t
func (o *onlineCache) Add(t timestep.Transition) error {
	if err := validate(t); err != nil {
		return err
	}
	o.last = t
	o.empty = false
	return nil
}

// Sample returns the most recent transition
func (o *onlineCache) Sample(rand.Source) ([]timestep.Transition, error) {
	if o.empty {
		err := &ExpReplayError{
			Op:  "sample",
			Err: errEmptyCache,
		}
		return nil, err
	}
	return []timestep.Transition{o.last}, nil
}

// Transitions returns the stored transition, if any
func (o *onlineCache) Transitions() []timestep.Transition {
	if o.empty {
		return []timestep.Transition{}
	}
	return []timestep.Transition{o.last}
}

// Len returns the current number of elements in the cache
func (o *onlineCache) Len() int {
	if o.empty {
		return 0
	}
	return 1
}

// Capacity returns the maximum number of elements that are allowed
// in the cache
func (o *onlineCache) Capacity() int {
	return 1
}

// MinCapacity returns the minimum number of elements required in the
// cache before sampling is allowed
func (o *onlineCache) MinCapacity() int {
	return 1
}

// BatchSize returns the number of samples sampled using Sample() -
// a.k.a the batch size
func (o *onlineCache) BatchSize() int {
	return 1
}
