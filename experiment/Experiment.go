// Package experiment implements functionality for running experiments:
// training an agent on an environment, evaluating the learned greedy
// policy, and repeating runs over a number of seeds
package experiment

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/environment/envconfig"
	"github.com/samuelfneumann/rllab/experiment/checkpointer"
	"github.com/samuelfneumann/rllab/experiment/tracker"
)

// Config represents a configuration of an experiment, for example:
//
//	{
//		"Env": {"Environment": "lineworld"},
//		"Agent": {"Type": "QLearning", "Config": {"Alpha": 0.5}},
//		"Episodes": 1000,
//		"Runs": 10,
//		"Seed": 42
//	}
type Config struct {
	Env      envconfig.Config
	Agent    agent.TypedConfig
	Episodes int
	Runs     int    `json:",omitempty"`
	Seed     uint64 `json:",omitempty"`

	// EvalSteps caps the number of steps of the greedy evaluation
	// rollout, environment.DefaultRunSteps if not positive
	EvalSteps int `json:",omitempty"`

	// Checkpoint, if positive, trains in chunks of Checkpoint episodes
	// and checkpoints the progress after each chunk
	Checkpoint int `json:",omitempty"`

	// Grid optionally lists agent configurations by the values of each
	// of their fields, for example
	//
	//	"Grid": {"Type": "QLearning", "ConfigList": {"Alpha": [0.1, 0.5]}}
	//
	// At selects a single configuration of the grid and SweepGrid
	// sweeps all of them.
	Grid *agent.TypedConfigList `json:",omitempty"`
}

// NewConfig returns a Config training the default configuration of
// agentName on the default configuration of envName
func NewConfig(envName, agentName string, episodes int) (Config, error) {
	agentType, err := agent.Lookup(agentName)
	if err != nil {
		return Config{}, fmt.Errorf("newConfig: %w", err)
	}
	defaults, err := agent.Default(agentType)
	if err != nil {
		return Config{}, fmt.Errorf("newConfig: %w", err)
	}

	return Config{
		Env:      envconfig.NewConfig(envconfig.EnvName(envName)),
		Agent:    agent.NewTypedConfig(defaults),
		Episodes: episodes,
		Runs:     1,
	}, nil
}

// LoadConfig reads a JSON encoded Config from filename
func LoadConfig(filename string) (Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("loadConfig: %w", err)
	}

	var c Config
	if err := json.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("loadConfig: %v: %w", filename, err)
	}
	return c, nil
}

// Validate ensures that the Config is valid. A Config with a Grid need
// not configure an agent itself.
func (c Config) Validate() error {
	if c.Agent.Config == nil && c.Grid == nil {
		return fmt.Errorf("validate: no agent configured")
	}
	if c.Agent.Config != nil {
		if err := c.Agent.Validate(); err != nil {
			return fmt.Errorf("validate: %v: %w", c.Agent.Type, err)
		}
	}
	if c.Grid != nil && (c.Grid.ConfigList == nil || c.Grid.Len() == 0) {
		return fmt.Errorf("validate: empty agent grid")
	}
	if c.Episodes < 0 {
		return fmt.Errorf("validate: episodes cannot be negative")
	}
	if c.Runs < 0 {
		return fmt.Errorf("validate: runs cannot be negative")
	}
	if c.Checkpoint < 0 {
		return fmt.Errorf("validate: checkpoint interval cannot be negative")
	}
	return nil
}

// At returns the Config training the agent configuration at index i of
// the Grid
func (c Config) At(i int) (Config, error) {
	if c.Grid == nil || c.Grid.ConfigList == nil {
		return c, fmt.Errorf("at: no agent grid configured")
	}
	if i < 0 || i >= c.Grid.Len() {
		return c, fmt.Errorf("at: index %v out of range [0, %v)", i,
			c.Grid.Len())
	}

	c.Agent = agent.NewTypedConfig(c.Grid.At(i))
	c.Grid = nil
	return c, nil
}

// RolloutSteps returns the step cap of greedy evaluation rollouts
func (c Config) RolloutSteps() int {
	if c.EvalSteps <= 0 {
		return environment.DefaultRunSteps
	}
	return c.EvalSteps
}

// CreateExp creates the Experiment described by the Config. Both the
// environment and the agent are seeded with seed. If store is not nil,
// the agent is loaded from and saved to store.
func (c Config) CreateExp(seed uint64, store checkpointer.Store,
	t ...tracker.Tracker) (*Experiment, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	if c.Agent.Config == nil {
		return nil, fmt.Errorf("createExp: no agent selected from the grid")
	}

	env, err := c.Env.Create(seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: %w", err)
	}
	a, err := c.Agent.CreateAgent(env, seed)
	if err != nil {
		return nil, fmt.Errorf("createExp: could not create agent: %w", err)
	}

	return &Experiment{
		env:        env,
		agent:      a,
		agentType:  c.Agent.Type,
		config:     c.Agent.Config,
		seed:       seed,
		episodes:   c.Episodes,
		evalSteps:  c.RolloutSteps(),
		checkpoint: c.Checkpoint,
		trackers:   t,
		store:      store,
	}, nil
}

// Key returns the snapshot key of agentType trained on env
func Key(env environment.Environment, agentType agent.Type) string {
	return checkpointer.Key(env.String(), string(agentType))
}
