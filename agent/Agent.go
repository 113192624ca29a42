// Package agent defines an agent interface
package agent

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/environment"
)

// Agent determines the implementation details of an agent or algorithm
//
// An Agent learns by driving an environment through whole episodes in
// Train, which returns the total reward of each episode. Rewards are the
// change in the environment's score across each step. After training,
// BestAction returns the action the learned policy prefers in a state.
//
// BestAction panics if actions is empty: a terminal state has no best
// action and callers must check before asking for one.
type Agent interface {
	Train(env environment.Environment, episodes int) ([]float64, error)
	BestAction(state int, actions []int) int
}

// QTabler is an Agent which learns a table of action values with one row
// per state and one column per action
type QTabler interface {
	Agent
	QTable() *mat.Dense
}

// Policier is an Agent which materializes a deterministic policy mapping
// each state to an action
type Policier interface {
	Agent
	Policy() []int
}

// Valuer is an Agent which learns the value of each state
type Valuer interface {
	Agent
	Values() []float64
}

// Sizer is an Agent whose learned tables are sized for a fixed number of
// states and actions
type Sizer interface {
	Agent
	Dims() (states, actions int)
}

// Prober is an Agent with a stochastic policy whose action probabilities
// can be inspected
type Prober interface {
	Agent
	Probabilities(state int, actions []int) []float64
}
