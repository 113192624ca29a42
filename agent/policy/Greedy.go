// Package policy implements action selection over rows of action values
// restricted to the actions legal in a state
package policy

import (
	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rllab/utils/floatutils"
)

// Greedy returns the action in actions with the highest value, breaking
// ties by the order in which actions are listed. Greedy panics if
// actions is empty.
func Greedy(values []float64, actions []int) int {
	if len(actions) == 0 {
		panic("greedy: no available actions")
	}

	best := actions[0]
	for _, a := range actions[1:] {
		if values[a] > values[best] {
			best = a
		}
	}
	return best
}

// RandomGreedy returns an action in actions with the highest value,
// breaking ties uniformly at random. RandomGreedy panics if actions is
// empty.
func RandomGreedy(values []float64, actions []int, rng *rand.Rand) int {
	if len(actions) == 0 {
		panic("randomGreedy: no available actions")
	}

	_, ties := floatutils.MaxSlice(Gather(values, actions))
	if len(ties) == 1 {
		return actions[ties[0]]
	}
	return actions[ties[rng.Intn(len(ties))]]
}

// MaxValue returns the highest value over actions, or 0 if actions is
// empty so that terminal states contribute nothing to a bootstrap target
func MaxValue(values []float64, actions []int) float64 {
	if len(actions) == 0 {
		return 0.0
	}
	return values[Greedy(values, actions)]
}

// Gather returns the values of the given actions
func Gather(values []float64, actions []int) []float64 {
	gathered := make([]float64, len(actions))
	for i, a := range actions {
		gathered[i] = values[a]
	}
	return gathered
}
