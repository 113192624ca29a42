// Package planning implements dynamic programming agents which plan
// with a known model of the environment instead of learning from
// interaction
package planning

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/rllab/environment"
)

// model is the dynamics of an environment.Modeler together with the
// legal actions of each state. An action is legal in a state if its
// transition row has positive mass.
type model struct {
	p     [][][]float64
	r     [][]float64
	legal [][]int
}

func newModel(env environment.Environment) (*model, error) {
	m, ok := env.(environment.Modeler)
	if !ok {
		return nil, fmt.Errorf("environment %v does not implement "+
			"environment.Modeler", env)
	}

	p, r := m.TransitionProbabilities(), m.RewardFunction()
	if len(p) != env.NumStates() || len(r) != env.NumStates() {
		return nil, fmt.Errorf("model of %v covers %v states, want %v", env,
			len(p), env.NumStates())
	}

	states, actions := env.NumStates(), env.NumActions()
	for s := range p {
		if len(p[s]) != actions || len(r[s]) != actions {
			return nil, fmt.Errorf("model of %v has %v transition and %v "+
				"reward actions in state %v, want %v", env, len(p[s]),
				len(r[s]), s, actions)
		}
		for a := range p[s] {
			if len(p[s][a]) != states {
				return nil, fmt.Errorf("model of %v has %v next states for "+
					"(%v, %v), want %v", env, len(p[s][a]), s, a, states)
			}
		}
	}

	legal := make([][]int, len(p))
	for s := range p {
		for a := range p[s] {
			if floats.Sum(p[s][a]) > 0 {
				legal[s] = append(legal[s], a)
			}
		}
	}
	return &model{p: p, r: r, legal: legal}, nil
}

func (m *model) states() int { return len(m.p) }

// q returns the expected return of taking action in state and then
// following the values v
func (m *model) q(state, action int, v []float64, gamma float64) float64 {
	return m.r[state][action] + gamma*floats.Dot(m.p[state][action], v)
}

// greedy returns the legal action of state with the highest expected
// return under v, breaking ties by order, and that return. States with
// no legal actions return action 0 and value 0.
func (m *model) greedy(state int, v []float64, gamma float64) (int, float64) {
	if len(m.legal[state]) == 0 {
		return 0, 0
	}

	best := m.legal[state][0]
	bestQ := m.q(state, best, v, gamma)
	for _, a := range m.legal[state][1:] {
		if q := m.q(state, a, v, gamma); q > bestQ {
			best, bestQ = a, q
		}
	}
	return best, bestQ
}

// bestAction returns policy[state] if it is one of actions and the first
// of actions otherwise
func bestAction(policy []int, state int, actions []int) int {
	if len(actions) == 0 {
		panic("bestAction: no available actions")
	}
	if state < len(policy) && environment.Legal(policy[state], actions) {
		return policy[state]
	}
	return actions[0]
}

// evaluate runs greedy evaluation episodes of policy in env
func evaluate(env environment.Environment, policy []int, episodes,
	maxSteps int) ([]float64, error) {
	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		total, err := environment.Run(env, policy, maxSteps)
		if err != nil {
			return returns, fmt.Errorf("episode %v: %w", i, err)
		}
		returns = append(returns, total)
	}
	return returns, nil
}
