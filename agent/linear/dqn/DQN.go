// Package dqn implements a linear, DQN-style action-value learner with
// experience replay.
//
// The approximator is a per state-action weight table, so this is not
// deep Q-learning: there is no network and no target network. Each real
// transition is pushed into a bounded replay memory and, once the memory
// holds at least BatchSize transitions, a batch is sampled uniformly
// without replacement and each sampled transition receives an
// independent Q-learning update.
package dqn

import (
	"bytes"
	"encoding/gob"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/agent/tabular"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/expreplay"
	"github.com/samuelfneumann/rllab/timestep"
)

// InitBound bounds the magnitude of the initial weights
const InitBound = 0.1

// DQN implements the linear DQN algorithm
type DQN struct {
	config  Config
	seed    uint64
	weights *tabular.Table
	replay  expreplay.ExperienceReplayer
}

// New creates a new DQN agent sized for env
func New(env environment.Environment, c Config, seed uint64) (*DQN, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	d := &DQN{config: c, seed: seed}
	if err := d.init(env.NumStates(), env.NumActions()); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}
	return d, nil
}

// init draws fresh weights and empties the replay memory
func (d *DQN) init(states, actions int) error {
	replay, err := expreplay.Config{
		SampleMethod: expreplay.Uniform,
		BatchSize:    d.config.BatchSize,
		Capacity:     d.config.Capacity,
	}.Create()
	if err != nil {
		return err
	}
	d.replay = replay

	dist := distuv.Uniform{
		Min: -InitBound,
		Max: InitBound,
		Src: rand.NewSource(d.seed),
	}
	d.weights = tabular.NewTable(states, actions)
	for s := 0; s < states; s++ {
		row := d.weights.Row(s)
		for a := range row {
			row[a] = dist.Rand()
		}
	}
	return nil
}

// Train implements the agent.Agent interface
func (d *DQN) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	r, c := d.weights.Dims()
	if agent.Rebind(agent.LinearDQN, r, c, env) {
		if err := d.init(env.NumStates(), env.NumActions()); err != nil {
			return nil, fmt.Errorf("train: %w", err)
		}
	}
	agent.Logger(agent.LinearDQN, env, episodes).WithFields(log.Fields{
		"capacity":  d.config.Capacity,
		"batchSize": d.config.BatchSize,
	}).Debug("training")

	rng := rand.New(rand.NewSource(d.seed))
	behaviour := policy.NewEGreedy(d.config.Epsilon, rng)
	limit := environment.NewStepLimit(d.config.MaxSteps)

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		if err := env.Reset(); err != nil {
			return returns, fmt.Errorf("train: %w", err)
		}

		episodeReturn := 0.0
		for steps := 1; !env.IsGameOver(); steps++ {
			state := env.StateID()
			action := behaviour.SelectAction(d.weights.Row(state),
				env.AvailableActions())

			reward, err := environment.Act(env, action)
			if err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}

			cutoff := limit.End(steps) && !env.IsGameOver()
			if cutoff {
				reward -= d.config.StepCapPenalty
			}
			episodeReturn += reward

			t := timestep.Transition{
				State:       state,
				Action:      action,
				Reward:      reward,
				NextState:   env.StateID(),
				Terminal:    env.IsGameOver(),
				NextActions: env.AvailableActions(),
			}
			if err := d.replay.Add(t); err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}
			if err := d.learn(rng); err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}

			if cutoff {
				break
			}
		}
		returns = append(returns, episodeReturn)
	}

	return returns, nil
}

// learn samples a batch from the replay memory and updates the weights
// on each sampled transition. Nothing happens until the memory holds a
// full batch.
func (d *DQN) learn(rng *rand.Rand) error {
	if d.replay.Len() < d.replay.BatchSize() {
		return nil
	}

	batch, err := d.replay.Sample(rng)
	if err != nil {
		return fmt.Errorf("learn: %w", err)
	}
	for _, t := range batch {
		d.update(t)
	}
	return nil
}

// update applies a single Q-learning update on t
func (d *DQN) update(t timestep.Transition) {
	target := t.Reward
	if !t.Terminal {
		target += d.config.Gamma * d.weights.Max(t.NextState, t.NextActions)
	}
	d.weights.Update(t.State, t.Action, target, d.config.Alpha)
}

// BestAction implements the agent.Agent interface
func (d *DQN) BestAction(state int, actions []int) int {
	return d.weights.Best(state, actions)
}

// QTable implements the agent.QTabler interface
func (d *DQN) QTable() *mat.Dense {
	return d.weights.Clone()
}

// Replay returns the transitions held in the replay memory, oldest first
func (d *DQN) Replay() []timestep.Transition {
	return d.replay.Transitions()
}

type snapshot struct {
	Config  Config
	Seed    uint64
	Weights *mat.Dense
	Replay  []timestep.Transition
}

// GobEncode implements the gob.GobEncoder interface
func (d *DQN) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		d.config, d.seed, d.weights.Dense, d.replay.Transitions(),
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (d *DQN) GobDecode(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	d.config = snap.Config
	d.seed = snap.Seed
	r, c := snap.Weights.Dims()
	if err := d.init(r, c); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	d.weights = &tabular.Table{Dense: snap.Weights}

	for _, t := range snap.Replay {
		if err := d.replay.Add(t); err != nil {
			return fmt.Errorf("gobDecode: %w", err)
		}
	}
	return nil
}
