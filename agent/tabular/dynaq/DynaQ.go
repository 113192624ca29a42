// Package dynaq implements the tabular Dyna-Q algorithm. Dyna-Q is
// Q-Learning which also learns a deterministic model of the environment
// from real experience and, after each real step, makes a number of
// simulated Q-Learning updates from pairs sampled out of the model.
package dynaq

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

// DynaQ implements the Dyna-Q algorithm
type DynaQ struct {
	config Config
	seed   uint64
	table  *tabular.Table
	model  *Model
}

// New creates a new DynaQ agent with an empty model
func New(env environment.Environment, c Config, seed uint64) (*DynaQ, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %w", err)
	}

	return &DynaQ{
		config: c,
		seed:   seed,
		table:  tabular.NewTable(env.NumStates(), env.NumActions()),
		model:  NewModel(),
	}, nil
}

// Train implements the agent.Agent interface
func (d *DynaQ) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	if d.table.Bind(agent.DynaQ, env) {
		d.model = NewModel()
	}
	agent.Logger(agent.DynaQ, env, episodes).WithField("planningSteps",
		d.config.PlanningSteps).Debug("training")

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
			action := behaviour.SelectAction(d.table.Row(state),
				env.AvailableActions())

			reward, err := environment.Act(env, action)
			if err != nil {
				return returns, fmt.Errorf("train: episode %v: %w", i, err)
			}
			outcome := Outcome{
				Reward:      reward,
				NextState:   env.StateID(),
				Terminal:    env.IsGameOver(),
				NextActions: env.AvailableActions(),
			}

			cutoff := limit.End(steps) && !env.IsGameOver()
			if cutoff {
				reward -= d.config.StepCapPenalty
			}
			episodeReturn += reward

			target := reward + d.config.Gamma*d.table.Max(outcome.NextState,
				outcome.NextActions)
			d.table.Update(state, action, target, d.config.Alpha)

			d.model.Record(state, action, outcome)
			d.plan(rng)

			if cutoff {
				break
			}
		}
		returns = append(returns, episodeReturn)
	}

	return returns, nil
}

// plan makes the configured number of simulated updates from the model
func (d *DynaQ) plan(rng *rand.Rand) {
	for n := 0; n < d.config.PlanningSteps; n++ {
		k, o := d.model.Sample(rng)
		target := o.Reward
		if !o.Terminal {
			target += d.config.Gamma * d.table.Max(o.NextState, o.NextActions)
		}
		d.table.Update(k.State, k.Action, target, d.config.Alpha)
	}
}

// BestAction implements the agent.Agent interface
func (d *DynaQ) BestAction(state int, actions []int) int {
	return d.table.Best(state, actions)
}

// QTable implements the agent.QTabler interface
func (d *DynaQ) QTable() *mat.Dense {
	return d.table.Clone()
}

// Model returns the learned model of the agent
func (d *DynaQ) Model() *Model {
	return d.model
}

type snapshot struct {
	Config   Config
	Seed     uint64
	Q        *mat.Dense
	Keys     []Key
	Outcomes []Outcome
}

// GobEncode implements the gob.GobEncoder interface
func (d *DynaQ) GobEncode() ([]byte, error) {
	keys, outcomes := d.model.entries()

	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(snapshot{
		Config:   d.config,
		Seed:     d.seed,
		Q:        d.table.Dense,
		Keys:     keys,
		Outcomes: outcomes,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (d *DynaQ) GobDecode(data []byte) error {
	var s snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}
	if len(s.Keys) != len(s.Outcomes) {
		return fmt.Errorf("gobDecode: model has %v pairs and %v outcomes",
			len(s.Keys), len(s.Outcomes))
	}

	d.config = s.Config
	d.seed = s.Seed
	d.table = &tabular.Table{Dense: s.Q}
	d.model = NewModel()
	for i, k := range s.Keys {
		d.model.Record(k.State, k.Action, s.Outcomes[i])
	}
	return nil
}
