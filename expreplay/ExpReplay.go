// Package expreplay implements bounded experience replay buffers of
// timestep.Transitions. Buffers evict their oldest transition when a
// transition is added at capacity.
package expreplay

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rllab/timestep"
)

// Config implements a specific configuration of an ExperienceReplayer
type Config struct {
	SampleMethod SelectorType
	BatchSize    int
	MinCapacity  int // defaults to BatchSize
	Capacity     int
}

// Create creates and returns the ExperienceReplayer with the specified
// Config.
func (c Config) Create() (ExperienceReplayer, error) {
	sampler, err := CreateSelector(c.SampleMethod, c.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("create: %w", err)
	}

	minCapacity := c.MinCapacity
	if minCapacity == 0 {
		minCapacity = c.BatchSize
	}
	return New(sampler, minCapacity, c.Capacity)
}

// ExperienceReplayer implements an experience replay buffer
type ExperienceReplayer interface {
	// Add adds a transition to the buffer, evicting the oldest
	// transition if the buffer is full
	Add(t timestep.Transition) error

	// Sample samples a batch of transitions from the buffer, drawing
	// any randomness from src
	Sample(src rand.Source) ([]timestep.Transition, error)

	// Transitions returns the contents of the buffer from oldest to
	// newest
	Transitions() []timestep.Transition

	// Len returns the current number of transitions in the buffer
	Len() int

	// Capacity returns the maximum allowable transitions in the buffer
	Capacity() int

	// MinCapacity returns the number of transitions required to be in
	// the buffer before the buffer can be sampled
	MinCapacity() int

	// BatchSize returns the number of transitions returned by Sample
	BatchSize() int
}

// cache implements a concrete ExperienceReplayer as a ring buffer
type cache struct {
	transitions []timestep.Transition

	// next is the index which will be written by the next Add. Once the
	// buffer is full it is also the index of the oldest transition.
	next   int
	isFull bool

	sampler     Selector
	minCapacity int
}

// New creates and returns a new ExperienceReplayer. The sampler
// determines how data is sampled from the buffer. The minCapacity
// parameter determines the number of transitions that must be in the
// buffer before it can be sampled and capacity the maximum number of
// transitions stored.
func New(sampler Selector, minCapacity, capacity int) (ExperienceReplayer,
	error) {
	if minCapacity <= 0 {
		return nil, fmt.Errorf("new: minCapacity must be > 0")
	}
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be >= 1")
	}
	if minCapacity > capacity {
		return nil, fmt.Errorf("new: cannot have min capacity (%v) > "+
			"capacity (%v)", minCapacity, capacity)
	}
	if sampler.BatchSize() < 1 {
		return nil, fmt.Errorf("new: batch size must be >= 1")
	}
	if capacity < sampler.BatchSize() {
		return nil, fmt.Errorf("new: cannot have batch size (%v) > "+
			"capacity (%v)", sampler.BatchSize(), capacity)
	}

	// If capacity == 1, then the replay buffer only stores the most
	// recent transition
	if capacity == 1 {
		if sampler.BatchSize() > 1 {
			log.Warn("new: using online buffer, ignoring batch size > 1")
		}
		return newOnline(), nil
	}

	return &cache{
		transitions: make([]timestep.Transition, 0, capacity),
		sampler:     sampler,
		minCapacity: minCapacity,
	}, nil
}

// Add adds a transition to the cache
func (c *cache) Add(t timestep.Transition) error {
	if err := validate(t); err != nil {
		return err
	}

	if !c.isFull {
		c.transitions = append(c.transitions, t)
	} else {
		c.transitions[c.next] = t
	}

	c.next = (c.next + 1) % cap(c.transitions)
	if c.next == 0 {
		c.isFull = true
	}
	return nil
}

// at returns the transition at position i in insertion order
func (c *cache) at(i int) timestep.Transition {
	if !c.isFull {
		return c.transitions[i]
	}
	return c.transitions[(c.next+i)%len(c.transitions)]
}

// Sample samples and returns a batch of transitions from the cache
func (c *cache) Sample(src rand.Source) ([]timestep.Transition, error) {
	if c.Len() == 0 {
		return nil, &ExpReplayError{Op: "sample", Err: errEmptyCache}
	}
	if c.Len() < c.MinCapacity() {
		return nil, &ExpReplayError{Op: "sample", Err: errInsufficientSamples}
	}

	positions := c.sampler.choose(c.Len(), src)
	batch := make([]timestep.Transition, len(positions))
	for i, p := range positions {
		batch[i] = c.at(p)
	}
	return batch, nil
}

// Transitions returns the contents of the cache from oldest to newest
func (c *cache) Transitions() []timestep.Transition {
	out := make([]timestep.Transition, c.Len())
	for i := range out {
		out[i] = c.at(i)
	}
	return out
}

// Len returns the current number of elements in the cache
func (c *cache) Len() int {
	return len(c.transitions)
}

// Capacity returns the maximum number of elements that are allowed
// in the cache
func (c *cache) Capacity() int {
	return cap(c.transitions)
}

// MinCapacity returns the minimum number of elements required in the
// cache before sampling is allowed
func (c *cache) MinCapacity() int {
	return c.minCapacity
}

// BatchSize returns the number of samples sampled using Sample()
func (c *cache) BatchSize() int {
	return c.sampler.BatchSize()
}

func (c *cache) String() string {
	return fmt.Sprintf("Cache | Len: %v | Capacity: %v | Transitions: %v",
		c.Len(), c.Capacity(), c.Transitions())
}

// validate returns an error if t cannot be stored
func validate(t timestep.Transition) error {
	if t.State < 0 || t.NextState < 0 || t.Action < 0 {
		return fmt.Errorf("add: invalid transition %v", t)
	}
	if t.Terminal && len(t.NextActions) > 0 {
		return fmt.Errorf("add: terminal transition has next actions %v",
			t.NextActions)
	}
	return nil
}
