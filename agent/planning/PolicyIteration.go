package planning

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

// PolicyIteration alternates iterative policy evaluation with greedy
// policy improvement until the policy is stable
type PolicyIteration struct {
	config     PolicyIterationConfig
	actions    int
	policy     []int
	values     []float64
	converged  bool
	iterations int
}

// NewPolicyIteration creates a new PolicyIteration agent
func NewPolicyIteration(env environment.Environment,
	c PolicyIterationConfig) (*PolicyIteration, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newPolicyIteration: %w", err)
	}
	return &PolicyIteration{
		config:  c,
		actions: env.NumActions(),
		policy:  make([]int, env.NumStates()),
		values: make([]float64, env.NumStates()),
	}, nil
}

// Plan computes the policy and its values from the model of env
func (p *PolicyIteration) Plan(env environment.Environment) error {
	m, err := newModel(env)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	if agent.Rebind(agent.PolicyIteration, len(p.policy), p.actions, env) {
		p.actions = env.NumActions()
		p.policy = make([]int, m.states())
		p.values = make([]float64, m.states())
	}

	// Start from the first legal action of every state
	for s := range p.policy {
		p.policy[s] = 0
		if len(m.legal[s]) > 0 {
			p.policy[s] = m.legal[s][0]
		}
		p.values[s] = 0
	}

	p.converged = false
	for p.iterations = 1; p.iterations <= p.config.MaxIterations; p.iterations++ {
		p.evaluate(m)
		if p.improve(m) {
			p.converged = true
			break
		}
	}
	if !p.converged {
		p.iterations = p.config.MaxIterations
		log.WithFields(log.Fields{
			"agent":       agent.PolicyIteration,
			"environment": env.String(),
			"iterations":  p.iterations,
		}).Warn("policy iteration did not converge")
	}
	return nil
}

// evaluate sweeps the states in place until the largest value change is
// below Theta or the sweep cap is reached
func (p *PolicyIteration) evaluate(m *model) {
	for sweep := 0; sweep < p.config.MaxEvaluationSweeps; sweep++ {
		delta := 0.0
		for s := 0; s < m.states(); s++ {
			if len(m.legal[s]) == 0 {
				continue
			}
			v := m.q(s, p.policy[s], p.values, p.config.Gamma)
			delta = math.Max(delta, math.Abs(v-p.values[s]))
			p.values[s] = v
		}
		if delta < p.config.Theta {
			return
		}
	}
	log.WithField("sweeps", p.config.MaxEvaluationSweeps).Debug(
		"policy evaluation reached its sweep cap")
}

// improve makes the policy greedy with respect to the current values and
// returns whether it was already stable. An action only replaces the
// current one if it is better by more than Theta.
func (p *PolicyIteration) improve(m *model) bool {
	stable := true
	for s := 0; s < m.states(); s++ {
		if len(m.legal[s]) == 0 {
			continue
		}
		best, bestQ := m.greedy(s, p.values, p.config.Gamma)
		current := m.q(s, p.policy[s], p.values, p.config.Gamma)
		if best != p.policy[s] && bestQ > current+p.config.Theta {
			p.policy[s] = best
			stable = false
		}
	}
	return stable
}

// Train implements the agent.Agent interface. The policy is planned once
// from the model of env and then run greedily for the given number of
// episodes, whose returns are reported.
func (p *PolicyIteration) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	agent.Logger(agent.PolicyIteration, env, episodes).Debug("planning")
	if err := p.Plan(env); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	returns, err := evaluate(env, p.policy, episodes, p.config.MaxSteps)
	if err != nil {
		return returns, fmt.Errorf("train: %w", err)
	}
	return returns, nil
}

// BestAction implements the agent.Agent interface
func (p *PolicyIteration) BestAction(state int, actions []int) int {
	return bestAction(p.policy, state, actions)
}

// Policy implements the agent.Policier interface
func (p *PolicyIteration) Policy() []int {
	return append([]int(nil), p.policy...)
}

// Values implements the agent.Valuer interface
func (p *PolicyIteration) Values() []float64 {
	return append([]float64(nil), p.values...)
}

// Converged returns whether the last call to Plan found a stable policy
// within MaxIterations improvement steps
func (p *PolicyIteration) Converged() bool {
	return p.converged
}

// Dims returns the number of states and actions the policy is sized for
func (p *PolicyIteration) Dims() (states, actions int) {
	return len(p.policy), p.actions
}

// Iterations returns the number of improvement steps taken by the last
// call to Plan
func (p *PolicyIteration) Iterations() int {
	return p.iterations
}

type policyIterationSnapshot struct {
	Config     PolicyIterationConfig
	Actions    int
	Policy     []int
	Values     []float64
	Converged  bool
	Iterations int
}

// GobEncode implements the gob.GobEncoder interface
func (p *PolicyIteration) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(policyIterationSnapshot{
		p.config, p.actions, p.policy, p.values, p.converged, p.iterations,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (p *PolicyIteration) GobDecode(data []byte) error {
	var s policyIterationSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	p.config, p.actions = s.Config, s.Actions
	p.policy, p.values = s.Policy, s.Values
	p.converged, p.iterations = s.Converged, s.Iterations
	return nil
}
