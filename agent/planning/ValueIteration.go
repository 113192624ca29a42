package planning

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

// ValueIteration sweeps the Bellman optimality operator over all states
// until the values stop changing, then acts greedily with respect to the
// resulting action values
type ValueIteration struct {
	config     ValueIterationConfig
	values     []float64
	q          *mat.Dense
	policy     []int
	converged  bool
	iterations int
}

// NewValueIteration creates a new ValueIteration agent
func NewValueIteration(env environment.Environment,
	c ValueIterationConfig) (*ValueIteration, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newValueIteration: %w", err)
	}
	v := &ValueIteration{config: c}
	v.init(env.NumStates(), env.NumActions())
	return v, nil
}

func (v *ValueIteration) init(states, actions int) {
	v.values = make([]float64, states)
	v.q = mat.NewDense(states, actions, nil)
	v.policy = make([]int, states)
}

// Plan computes the optimal values, action values and greedy policy
// from the model of env
func (v *ValueIteration) Plan(env environment.Environment) error {
	m, err := newModel(env)
	if err != nil {
		return fmt.Errorf("plan: %w", err)
	}
	r, c := v.q.Dims()
	if agent.Rebind(agent.ValueIteration, r, c, env) {
		v.init(env.NumStates(), env.NumActions())
	}
	for s := range v.values {
		v.values[s] = 0
	}

	v.converged = false
	for v.iterations = 1; v.iterations <= v.config.MaxIterations; v.iterations++ {
		delta := 0.0
		for s := 0; s < m.states(); s++ {
			_, best := m.greedy(s, v.values, v.config.Gamma)
			delta = math.Max(delta, math.Abs(best-v.values[s]))
			v.values[s] = best
		}
		if delta < v.config.Theta {
			v.converged = true
			break
		}
	}
	if !v.converged {
		v.iterations = v.config.MaxIterations
		log.WithFields(log.Fields{
			"agent":       agent.ValueIteration,
			"environment": env.String(),
			"iterations":  v.iterations,
		}).Warn("value iteration did not converge")
	}

	v.q.Zero()
	for s := 0; s < m.states(); s++ {
		for _, a := range m.legal[s] {
			v.q.Set(s, a, m.q(s, a, v.values, v.config.Gamma))
		}
		v.policy[s], _ = m.greedy(s, v.values, v.config.Gamma)
	}
	return nil
}

// Train implements the agent.Agent interface. The values are planned
// once from the model of env and the greedy policy is then run for the
// given number of episodes, whose returns are reported.
func (v *ValueIteration) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	agent.Logger(agent.ValueIteration, env, episodes).Debug("planning")
	if err := v.Plan(env); err != nil {
		return nil, fmt.Errorf("train: %w", err)
	}

	returns, err := evaluate(env, v.policy, episodes, v.config.MaxSteps)
	if err != nil {
		return returns, fmt.Errorf("train: %w", err)
	}
	return returns, nil
}

// BestAction implements the agent.Agent interface
func (v *ValueIteration) BestAction(state int, actions []int) int {
	return bestAction(v.policy, state, actions)
}

// Policy implements the agent.Policier interface
func (v *ValueIteration) Policy() []int {
	return append([]int(nil), v.policy...)
}

// Values implements the agent.Valuer interface
func (v *ValueIteration) Values() []float64 {
	return append([]float64(nil), v.values...)
}

// QValues returns the action values of the planned values. Illegal
// actions have value 0.
func (v *ValueIteration) QValues() *mat.Dense {
	return mat.DenseCopyOf(v.q)
}

// Dims returns the number of states and actions the values are sized for
func (v *ValueIteration) Dims() (states, actions int) {
	return v.q.Dims()
}

// Converged returns whether the last call to Plan reached Theta within
// MaxIterations sweeps
func (v *ValueIteration) Converged() bool {
	return v.converged
}

// Iterations returns the number of sweeps made by the last call to Plan
func (v *ValueIteration) Iterations() int {
	return v.iterations
}

type valueIterationSnapshot struct {
	Config     ValueIterationConfig
	Values     []float64
	Q          *mat.Dense
	Policy     []int
	Converged  bool
	Iterations int
}

// GobEncode implements the gob.GobEncoder interface
func (v *ValueIteration) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(valueIterationSnapshot{
		v.config, v.values, v.q, v.policy, v.converged, v.iterations,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (v *ValueIteration) GobDecode(data []byte) error {
	var s valueIterationSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	v.config = s.Config
	v.values, v.q, v.policy = s.Values, s.Q, s.Policy
	v.converged, v.iterations = s.Converged, s.Iterations
	return nil
}
