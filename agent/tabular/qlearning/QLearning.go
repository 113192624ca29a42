// Package qlearning implements the tabular Q-Learning algorithm.
//
// Q-Learning is off-policy: actions are selected ε-greedily while the
// update bootstraps on the greedy value of the next state,
//
//	Q(s, a) += α (r + γ max_a' Q(s', a') - Q(s, a))
//
// where the max ranges over the actions available in s' and terminal
// states contribute nothing.
package qlearning

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

// QLearning implements the Q-Learning algorithm
type QLearning struct {
	config Config
	seed   uint64
	table  *tabular.Table
}

// New creates a new QLearning agent with a zero action-value table sized
// for env. Training randomness is drawn from a source seeded with seed.
func New(env environment.Environment, c Config,
	seed uint64) (*QLearning, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &QLearning{
		config: c,
		seed:   seed,
		table:  tabular.NewTable(env.NumStates(), env.NumActions()),
	}, nil
}

// Train implements the agent.Agent interface
func (q *QLearning) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	q.table.Bind(agent.QLearning, env)
	agent.Logger(agent.QLearning, env, episodes).Debug("training")

	rng := rand.New(rand.NewSource(q.seed))
	behaviour := policy.NewEGreedy(q.config.Epsilon, rng)
	limit := environment.NewStepLimit(q.config.MaxSteps)

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		if err := env.Reset(); err != nil {
			return returns, fmt.Errorf("train: %w", err)
		}

		episodeReturn := 0.0
		for steps := 1; !env.IsGameOver(); steps++ {
			state := env.StateID()
			action := behaviour.SelectAction(q.table.Row(state),
				env.AvailableActions())

			reward, err := environment.Act(env, action)
			if err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}

			cutoff := limit.End(steps) && !env.IsGameOver()
			if cutoff {
				reward -= q.config.StepCapPenalty
			}
			episodeReturn += reward

			next := env.StateID()
			target := reward + q.config.Gamma*q.table.Max(next,
				env.AvailableActions())
			q.table.Update(state, action, target, q.config.Alpha)

			if cutoff {
				break
			}
		}
		returns = append(returns, episodeReturn)
	}

	return returns, nil
}

// BestAction implements the agent.Agent interface
func (q *QLearning) BestAction(state int, actions []int) int {
	return q.table.Best(state, actions)
}

// QTable implements the agent.QTabler interface
func (q *QLearning) QTable() *mat.Dense {
	return q.table.Clone()
}

// snapshot is the serialized state of a QLearning agent
type snapshot struct {
	Config Config
	Seed   uint64
	Q      *mat.Dense
}

// GobEncode implements the gob.GobEncoder interface
func (q *QLearning) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{q.config, q.seed, q.table.Dense})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (q *QLearning) GobDecode(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	q.config = s.Config
	q.seed = s.Seed
	q.table = &tabular.Table{Dense: s.Q}
	return nil
}
