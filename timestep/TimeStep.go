// Package timestep implements timesteps of the agent-environment interaction
package timestep

import (
	"fmt"
)

// StepType denotes the type of step that a Step can be, either the first
// environmental step, a middle step, or a last step
type StepType int

const (
	First StepType = iota
	Mid
	Last
)

func (s StepType) String() string {
	switch s {
	case First:
		return "First"
	case Last:
		return "Last"
	default:
		return "Mid"
	}
}

// Step packages together a single decision made in an environment: the
// state the decision was made in, the actions that were legal there, the
// action taken, and the reward (change in score) that followed.
type Step struct {
	StepType
	State   int
	Actions []int
	Action  int
	Reward  float64
	Number  int
}

// New returns a new Step
func New(t StepType, state int, actions []int, action int, reward float64,
	n int) Step {
	return Step{t, state, actions, action, reward, n}
}

// First returns whether a Step is the first in an episode
func (s Step) First() bool {
	return s.StepType == First
}

// Mid returns whether a Step is a middle step in an episode
func (s Step) Mid() bool {
	return s.StepType == Mid
}

// Last returns whether a Step is the last step in an episode
func (s Step) Last() bool {
	return s.StepType == Last
}

func (s Step) String() string {
	str := "Step | Type: %v  |  State: %v  |  Action: %v  |  Reward: %.2f" +
		"  |  Step Number:  %v"

	return fmt.Sprintf(str, s.StepType, s.State, s.Action, s.Reward, s.Number)
}

// Transition is a single (s, a, r, s') transition stored in a replay
// memory. NextActions holds the actions legal in NextState and is empty
// when Terminal is true.
type Transition struct {
	State       int
	Action      int
	Reward      float64
	NextState   int
	Terminal    bool
	NextActions []int
}

func (t Transition) String() string {
	return fmt.Sprintf("Transition | %v --(%v, %.2f)--> %v  |  Terminal: %v",
		t.State, t.Action, t.Reward, t.NextState, t.Terminal)
}
