// Package montecarlo implements Monte-Carlo control algorithms. Whole
// episodes are generated under a behaviour policy and then processed
// backward, accumulating the discounted return G = γG + r.
package montecarlo

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

func init() {
	agent.Register(agent.OnPolicyMC, NewOnPolicyConfigList(
		[]float64{0.1}, []float64{0.99}, []int{1000}, []float64{0},
	).ConfigList)

	agent.Register(agent.OffPolicyMC, NewOffPolicyConfigList(
		[]float64{0.1}, []float64{0.99}, []float64{0.995}, []float64{0.01},
		[]int{100}, []float64{1},
	).ConfigList)
}

// OnPolicyConfigList implements functionality for storing a number of
// OnPolicyConfig's in a simple manner. Instead of storing a slice of
// Configs, the list stores each field's values and constructs the list
// by every combination of field values.
type OnPolicyConfigList struct {
	Epsilon        []float64
	Gamma          []float64
	MaxSteps       []int
	StepCapPenalty []float64
}

// NewOnPolicyConfigList returns a new OnPolicyConfigList as an
// agent.TypedConfigList
func NewOnPolicyConfigList(ε, gamma []float64, maxSteps []int,
	penalty []float64) agent.TypedConfigList {
	return agent.NewTypedConfigList(OnPolicyConfigList{
		Epsilon:        ε,
		Gamma:          gamma,
		MaxSteps:       maxSteps,
		StepCapPenalty: penalty,
	})
}

// Config returns an empty Config that is of the type stored by the list
func (c OnPolicyConfigList) Config() agent.Config {
	return OnPolicyConfig{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c OnPolicyConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the list
func (c OnPolicyConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c OnPolicyConfigList) Len() int {
	return agent.Len(c)
}

// OnPolicyConfig represents a configuration for the OnPolicy agent
type OnPolicyConfig struct {
	Epsilon        float64
	Gamma          float64
	MaxSteps       int
	StepCapPenalty float64
}

// CreateAgent creates the agent from the Config
func (c OnPolicyConfig) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return NewOnPolicy(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c OnPolicyConfig) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*OnPolicy)
	return ok
}

// Validate ensures that the Config is valid
func (c OnPolicyConfig) Validate() error {
	return validate(c.Epsilon, c.Gamma, c.MaxSteps)
}

// Type returns the type of the agent constructed by the Config
func (c OnPolicyConfig) Type() agent.Type {
	return agent.OnPolicyMC
}

// OffPolicyConfigList implements functionality for storing a number of
// OffPolicyConfig's in a simple manner
type OffPolicyConfigList struct {
	Epsilon        []float64
	Gamma          []float64
	Decay          []float64
	MinEpsilon     []float64
	MaxSteps       []int
	StepCapPenalty []float64
}

// NewOffPolicyConfigList returns a new OffPolicyConfigList as an
// agent.TypedConfigList
func NewOffPolicyConfigList(ε, gamma, decay, minε []float64,
	maxSteps []int, penalty []float64) agent.TypedConfigList {
	return agent.NewTypedConfigList(OffPolicyConfigList{
		Epsilon:        ε,
		Gamma:          gamma,
		Decay:          decay,
		MinEpsilon:     minε,
		MaxSteps:       maxSteps,
		StepCapPenalty: penalty,
	})
}

// Config returns an empty Config that is of the type stored by the list
func (c OffPolicyConfigList) Config() agent.Config {
	return OffPolicyConfig{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c OffPolicyConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the list
func (c OffPolicyConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c OffPolicyConfigList) Len() int {
	return agent.Len(c)
}

// OffPolicyConfig represents a configuration for the OffPolicy agent
type OffPolicyConfig struct {
	Epsilon float64 // initial exploration rate of the behaviour policy
	Gamma   float64

	// After each episode ε = max(ε * Decay, MinEpsilon)
	Decay      float64
	MinEpsilon float64

	MaxSteps       int
	StepCapPenalty float64
}

// CreateAgent creates the agent from the Config
func (c OffPolicyConfig) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return NewOffPolicy(env, c, seed)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c OffPolicyConfig) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*OffPolicy)
	return ok
}

// Validate ensures that the Config is valid
func (c OffPolicyConfig) Validate() error {
	if err := validate(c.Epsilon, c.Gamma, c.MaxSteps); err != nil {
		return err
	}
	if c.Decay <= 0 || c.Decay > 1 {
		return fmt.Errorf("decay must be in (0, 1], have %v", c.Decay)
	}
	if c.MinEpsilon < 0 || c.MinEpsilon > c.Epsilon {
		return fmt.Errorf("minEpsilon must be in [0, %v], have %v", c.Epsilon,
			c.MinEpsilon)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c OffPolicyConfig) Type() agent.Type {
	return agent.OffPolicyMC
}

func validate(ε, gamma float64, maxSteps int) error {
	if ε < 0 || ε > 1 {
		return fmt.Errorf("epsilon must be in [0, 1], have %v", ε)
	}
	if gamma < 0 || gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], have %v", gamma)
	}
	if maxSteps < 0 {
		return fmt.Errorf("maxSteps cannot be negative")
	}
	return nil
}
