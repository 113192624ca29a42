package policy

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// EGreedy implements an ε-greedy policy over rows of action values
type EGreedy struct {
	epsilon float64
	source  rand.Source // Source for random number generation
}

// NewEGreedy constructs a new EGreedy policy, where e=epsilon is the
// probability with which a random available action is selected
func NewEGreedy(e float64, source rand.Source) *EGreedy {
	if e < 0 || e > 1 {
		panic(fmt.Sprintf("newEGreedy: epsilon must be in [0, 1], have %v", e))
	}
	return &EGreedy{e, source}
}

// Epsilon returns the exploration rate of the policy
func (p *EGreedy) Epsilon() float64 {
	return p.epsilon
}

// SetEpsilon sets the exploration rate of the policy
func (p *EGreedy) SetEpsilon(e float64) {
	p.epsilon = e
}

// Probabilities returns the probability of selecting each action in
// actions, in the same order
func (p *EGreedy) Probabilities(values []float64, actions []int) []float64 {
	greedy := Greedy(values, actions)
	return Probabilities(p.epsilon, greedy, actions)
}

// Probabilities returns the ε-greedy probabilities of each action in
// actions given the greedy action
func Probabilities(epsilon float64, greedy int, actions []int) []float64 {
	// Calculate the ε probability of choosing any action at random
	prob := epsilon / float64(len(actions))
	actionProbabilities := make([]float64, len(actions))
	for i, a := range actions {
		actionProbabilities[i] = prob

		// Adjust the probability of choosing the greedy action
		if a == greedy {
			actionProbabilities[i] += 1.0 - epsilon
		}
	}
	return actionProbabilities
}

// SelectAction selects an action from an ε-greedy policy
func (p *EGreedy) SelectAction(values []float64, actions []int) int {
	actionProbabilities := p.Probabilities(values, actions)

	// Construct a categorical distribution over actions using action
	// probabilities and sample an action
	dist := distuv.NewCategorical(actionProbabilities, p.source)
	return actions[int(dist.Rand())]
}
