// Package reinforce implements the REINFORCE Monte-Carlo policy gradient
// algorithm with a tabular softmax policy.
//
// Each state holds one logit per action and the policy is the softmax of
// the logits of the legal actions. After each episode, for every step t
// with return-to-go G_t, the logits of s_t are moved along the score
// function of the softmax:
//
//	logits[s_t][a] += α γ^t G_t (1[a = a_t] - π(a | s_t))
package reinforce

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/timestep"
)

// REINFORCE implements the REINFORCE algorithm
type REINFORCE struct {
	config Config
	seed   uint64
	logits *mat.Dense
}

// New creates a new REINFORCE agent with a uniform policy in every state
func New(env environment.Environment, c Config, seed uint64) (*REINFORCE,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &REINFORCE{
		config: c,
		seed:   seed,
		logits: mat.NewDense(env.NumStates(), env.NumActions(), nil),
	}, nil
}

// Train implements the agent.Agent interface
func (r *REINFORCE) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	states, actions := r.logits.Dims()
	if agent.Rebind(agent.REINFORCE, states, actions, env) {
		r.logits = mat.NewDense(env.NumStates(), env.NumActions(), nil)
	}
	agent.Logger(agent.REINFORCE, env, episodes).Debug("training")

	rng := rand.New(rand.NewSource(r.seed))
	limit := environment.NewStepLimit(r.config.MaxSteps)
	trace := timestep.NewTrace(64)

	choose := func(state int, actions []int) int {
		return actions[policy.Sample(r.Probabilities(state, actions), rng)]
	}

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		err := agent.Generate(env, trace, choose, limit, r.config.StepCapPenalty)
		if err != nil {
			return returns, fmt.Errorf("train: episode %v: %w", i, err)
		}
		r.Update(trace)
		returns = append(returns, trace.Total())
	}

	return returns, nil
}

// Update applies the policy gradient update of a full episode
func (r *REINFORCE) Update(trace *timestep.Trace) {
	returns := trace.Returns(r.config.Gamma)
	for t := 0; t < trace.Len(); t++ {
		step := trace.At(t)
		probs := r.Probabilities(step.State, step.Actions)
		scale := r.config.Alpha * math.Pow(r.config.Gamma, float64(t)) *
			returns[t]

		row := r.logits.RawRowView(step.State)
		for i, a := range step.Actions {
			indicator := 0.0
			if a == step.Action {
				indicator = 1.0
			}
			row[a] += scale * (indicator - probs[i])
		}
	}
}

// Probabilities implements the agent.Prober interface
func (r *REINFORCE) Probabilities(state int, actions []int) []float64 {
	return policy.Softmax(r.logits.RawRowView(state), actions)
}

// BestAction implements the agent.Agent interface. The softmax is
// monotone in the logits so the most probable action is the one with the
// largest logit.
func (r *REINFORCE) BestAction(state int, actions []int) int {
	return policy.Greedy(r.logits.RawRowView(state), actions)
}

// Dims returns the number of states and actions the logits are sized for
func (r *REINFORCE) Dims() (states, actions int) {
	return r.logits.Dims()
}

// Logits returns a copy of the policy logits
func (r *REINFORCE) Logits() *mat.Dense {
	return mat.DenseCopyOf(r.logits)
}

type snapshot struct {
	Config Config
	Seed   uint64
	Logits *mat.Dense
}

// GobEncode implements the gob.GobEncoder interface
func (r *REINFORCE) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{r.config, r.seed, r.logits})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (r *REINFORCE) GobDecode(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	r.config = snap.Config
	r.seed = snap.Seed
	r.logits = snap.Logits
	return nil
}
