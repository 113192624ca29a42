// Package environment outlines the interfaces and structs needed to
// implement concrete discrete environments
package environment

import (
	"fmt"
	"io"
)

// Starter implements a distribution of starting conditions and samples
// them for environments that begin each episode at random
type Starter interface {
	Start() int
}

// Ender determines whether an episode should be cut off before the
// environment itself reports that the game is over
type Ender interface {
	End(steps int) bool
}

// Environment implements a discrete environment with integer states and
// actions. Not every action is legal in every state: the legal actions
// of the current state are returned by AvailableActions, which is empty
// if and only if IsGameOver returns true.
//
// Score returns the cumulative score of the current episode. Learners
// compute per-step rewards as the change in Score across a call to Step.
type Environment interface {
	fmt.Stringer

	// Reset returns the environment to its initial state, which may be
	// fixed or sampled depending on the environment
	Reset() error
	StateID() int
	NumStates() int
	NumActions() int
	AvailableActions() []int
	IsGameOver() bool
	Score() float64

	// Step takes an action in the environment. Step returns an *Error
	// wrapping ErrInvalidAction if the action is not in AvailableActions
	// and ErrAlreadyTerminal if the episode has already ended.
	Step(action int) error

	// Display writes a human readable rendering of the environment
	Display(w io.Writer) error
}

// Modeler is an Environment whose full dynamics are known in advance.
//
// TransitionProbabilities returns p[s][a][s'], where the row p[s][a] sums
// to 1 if a is legal in the non-terminal state s and is all zeros
// otherwise. RewardFunction returns r[s][a], the expected change in score
// when taking a in s.
type Modeler interface {
	Environment
	TransitionProbabilities() [][][]float64
	RewardFunction() [][]float64
}

// PolicyRunner is an Environment that can execute a full deterministic
// policy itself, returning the accumulated reward of the episode.
type PolicyRunner interface {
	Environment
	RunPolicy(policy []int) (float64, error)
}

// Legal returns whether action appears in the slice of legal actions
func Legal(action int, actions []int) bool {
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// Act takes action in env and returns the resulting reward, computed as
// the change in the environment's score.
func Act(env Environment, action int) (float64, error) {
	before := env.Score()
	if err := env.Step(action); err != nil {
		return 0, err
	}
	return env.Score() - before, nil
}
