// Package sarsa implements the tabular SARSA algorithm, which bootstraps
// on the action its ε-greedy policy actually selects in the next state:
//
//	Q(s, a) += α (r + γ Q(s', a') - Q(s, a))
package sarsa

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/agent/tabular"
	"github.com/samuelfneumann/rllab/environment"
)

// SARSA implements the on-policy SARSA algorithm
type SARSA struct {
	config Config
	seed   uint64
	table  *tabular.Table
}

// New creates a new SARSA agent
func New(env environment.Environment, c Config, seed uint64) (*SARSA, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &SARSA{
		config: c,
		seed:   seed,
		table:  tabular.NewTable(env.NumStates(), env.NumActions()),
	}, nil
}

// Train implements the agent.Agent interface
func (s *SARSA) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	s.table.Bind(agent.SARSA, env)
	agent.Logger(agent.SARSA, env, episodes).Debug("training")

	rng := rand.New(rand.NewSource(s.seed))
	behaviour := policy.NewEGreedy(s.config.Epsilon, rng)
	limit := environment.NewStepLimit(s.config.MaxSteps)

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
		action := behaviour.SelectAction(s.table.Row(state),
			env.AvailableActions())

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

			if env.IsGameOver() {
				s.table.Update(state, action, reward, s.config.Alpha)
				break
			}

			next := env.StateID()
			nextAction := behaviour.SelectAction(s.table.Row(next),
				env.AvailableActions())
			target := reward + s.config.Gamma*s.table.At(next, nextAction)
			s.table.Update(state, action, target, s.config.Alpha)

			if cutoff {
				break
			}
			state, action = next, nextAction
		}
		returns = append(returns, episodeReturn)
	}

	return returns, nil
}

// BestAction implements the agent.Agent interface
func (s *SARSA) BestAction(state int, actions []int) int {
	return s.table.Best(state, actions)
}

// QTable implements the agent.QTabler interface
func (s *SARSA) QTable() *mat.Dense {
	return s.table.Clone()
}

type snapshot struct {
	Config Config
	Seed   uint64
	Q      *mat.Dense
}

// GobEncode implements the gob.GobEncoder interface
func (s *SARSA) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{s.config, s.seed, s.table.Dense})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (s *SARSA) GobDecode(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	s.config = snap.Config
	s.seed = snap.Seed
	s.table = &tabular.Table{Dense: snap.Q}
	return nil
}
