package reinforce

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

func init() {
	agent.Register(agent.REINFORCE, NewConfigList(
		[]float64{0.1}, []float64{0.99}, []int{1000}, []float64{0},
	).ConfigList)
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values and constructs the list by
// every combination of field values.
type ConfigList struct {
	Alpha          []float64
	Gamma          []float64
	MaxSteps       []int
	StepCapPenalty []float64
}

// NewConfigList returns a new ConfigList as an agent.TypedConfigList
func NewConfigList(alpha, gamma []float64, maxSteps []int,
	penalty []float64) agent.TypedConfigList {
	return agent.NewTypedConfigList(ConfigList{
		Alpha:          alpha,
		Gamma:          gamma,
		MaxSteps:       maxSteps,
		StepCapPenalty: penalty,
	})
}

// Config returns an empty Config that is of the type stored by
// ConfigList
func (c ConfigList) Config() agent.Config {
	return Config{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the ConfigList
func (c ConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c ConfigList) Len() int {
	return agent.Len(c)
}

// Config represents a configuration for the REINFORCE agent
type Config struct {
	Alpha          float64
	Gamma          float64
	MaxSteps       int
	StepCapPenalty float64
}

// CreateAgent creates the agent from the Config
func (c Config) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return New(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c Config) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*REINFORCE)
	return ok
}

// Validate ensures that the Config is valid
func (c Config) Validate() error {
	if c.Alpha <= 0 {
		return fmt.Errorf("alpha must be positive, have %v", c.Alpha)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], have %v", c.Gamma)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("maxSteps cannot be negative")
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c Config) Type() agent.Type {
	return agent.REINFORCE
}
