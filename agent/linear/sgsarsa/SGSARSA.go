// Package sgsarsa implements semi-gradient SARSA with linear function
// approximation.
//
// Action values are approximated as Q(s, a) = w·x(s, a) where x(s, a)
// is a one-hot feature vector with its single active feature at index
// (s·|A| + a) mod |w|. After each step the weights are updated by
//
//	w += α (r + γ Q(s', a') - Q(s, a)) x(s, a)
//
// where a' is the action actually selected in s' and terminal states
// bootstrap 0. Only the prediction Q(s, a) is differentiated.
package sgsarsa

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/environment"
)

// SGSARSA implements the semi-gradient SARSA algorithm
type SGSARSA struct {
	config  Config
	seed    uint64
	weights []float64

	states, actions int

	// features is scratch space for the one-hot feature vector
	features []float64
}

// New creates a new SGSARSA agent with zero weights
func New(env environment.Environment, c Config, seed uint64) (*SGSARSA,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	s := &SGSARSA{config: c, seed: seed}
	s.init(env.NumStates(), env.NumActions())
	return s, nil
}

func (s *SGSARSA) init(states, actions int) {
	s.states, s.actions = states, actions
	s.weights = make([]float64, s.config.Features)
	s.features = make([]float64, s.config.Features)
}

// Index returns the index of the active feature of (state, action)
func (s *SGSARSA) Index(state, action int) int {
	return (state*s.actions + action) % len(s.weights)
}

// featurize returns the one-hot feature vector of (state, action). The
// returned slice is overwritten by the next call.
func (s *SGSARSA) featurize(state, action int) []float64 {
	for i := range s.features {
		s.features[i] = 0
	}
	s.features[s.Index(state, action)] = 1
	return s.features
}

// Value returns the approximate action value of (state, action)
func (s *SGSARSA) Value(state, action int) float64 {
	return floats.Dot(s.weights, s.featurize(state, action))
}

// values returns the approximate action values of state, indexed by
// action. Actions not listed are left at 0.
func (s *SGSARSA) values(state int, actions []int) []float64 {
	v := make([]float64, s.actions)
	for _, a := range actions {
		v[a] = s.Value(state, a)
	}
	return v
}

// Train implements the agent.Agent interface
func (s *SGSARSA) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	if agent.Rebind(agent.SemiGradientSARSA, s.states, s.actions, env) {
		s.init(env.NumStates(), env.NumActions())
	}
	agent.Logger(agent.SemiGradientSARSA, env, episodes).WithField(
		"features", s.config.Features).Debug("training")

	rng := rand.New(rand.NewSource(s.seed))
	behaviour := policy.NewEGreedy(s.config.Epsilon, rng)
	limit := environment.NewStepLimit(s.config.MaxSteps)
	choose := func(state int) int {
		actions := env.AvailableActions()
		return behaviour.SelectAction(s.values(state, actions), actions)
	}

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		if err := env.Reset(); err != nil {
			return returns, fmt.Errorf("train: %w", err)
		}
		if env.IsGameOver() {
			returns = append(returns, 0)
			continue
		}

		state := env.StateID()
		action := choose(state)

		episodeReturn := 0.0
		for steps := 1; ; steps++ {
			reward, err := environment.Act(env, action)
			if err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}

			cutoff := limit.End(steps) && !env.IsGameOver()
			if cutoff {
				reward -= s.config.StepCapPenalty
			}
			episodeReturn += reward

			target := reward
			var next, nextAction int
			if !env.IsGameOver() {
				next = env.StateID()
				nextAction = choose(next)
				target += s.config.Gamma * s.Value(next, nextAction)
			}
			s.update(state, action, target)

			if env.IsGameOver() || cutoff {
				break
			}
			state, action = next, nextAction
		}
		returns = append(returns, episodeReturn)
	}

	return returns, nil
}

// update moves the approximate value of (state, action) toward target
func (s *SGSARSA) update(state, action int, target float64) {
	δ := target - s.Value(state, action)
	floats.AddScaled(s.weights, s.config.Alpha*δ, s.featurize(state, action))
}

// Dims returns the number of states and actions the features index
func (s *SGSARSA) Dims() (states, actions int) {
	return s.states, s.actions
}

// BestAction implements the agent.Agent interface
func (s *SGSARSA) BestAction(state int, actions []int) int {
	return policy.Greedy(s.values(state, actions), actions)
}

// Weights returns a copy of the weight vector
func (s *SGSARSA) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

type snapshot struct {
	Config          Config
	Seed            uint64
	Weights         []float64
	States, Actions int
}

// GobEncode implements the gob.GobEncoder interface
func (s *SGSARSA) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		s.config, s.seed, s.weights, s.states, s.actions,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (s *SGSARSA) GobDecode(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	s.config = snap.Config
	s.seed = snap.Seed
	s.init(snap.States, snap.Actions)
	copy(s.weights, snap.Weights)
	return nil
}
