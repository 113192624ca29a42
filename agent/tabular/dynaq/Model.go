package dynaq

import (
	"golang.org/x/exp/rand"
)

// Key is a state-action pair
type Key struct {
	State, Action int
}

// Outcome is the last observed result of taking an action in a state
type Outcome struct {
	Reward      float64
	NextState   int
	Terminal    bool
	NextActions []int
}

// Model is a deterministic transition cache learned from real
// experience. Pairs are kept in the order they were first seen so that
// sampling with a seeded source is reproducible.
type Model struct {
	keys     []Key
	outcomes map[Key]Outcome
}

// NewModel returns an empty Model
func NewModel() *Model {
	return &Model{outcomes: make(map[Key]Outcome)}
}

// Record stores the outcome of taking action in state, overwriting any
// previous outcome of the pair
func (m *Model) Record(state, action int, o Outcome) {
	k := Key{state, action}
	if _, ok := m.outcomes[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.outcomes[k] = o
}

// Len returns the number of distinct pairs seen
func (m *Model) Len() int {
	return len(m.keys)
}

// Lookup returns the outcome recorded for a pair
func (m *Model) Lookup(state, action int) (Outcome, bool) {
	o, ok := m.outcomes[Key{state, action}]
	return o, ok
}

// Sample returns a uniformly random previously seen pair and its
// outcome. Sample panics if the model is empty.
func (m *Model) Sample(rng *rand.Rand) (Key, Outcome) {
	k := m.keys[rng.Intn(len(m.keys))]
	return k, m.outcomes[k]
}

// entries returns the pairs and outcomes in insertion order
func (m *Model) entries() ([]Key, []Outcome) {
	outcomes := make([]Outcome, len(m.keys))
	for i, k := range m.keys {
		outcomes[i] = m.outcomes[k]
	}
	return m.keys, outcomes
}
