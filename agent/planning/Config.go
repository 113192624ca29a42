package planning

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
)

func init() {
	agent.Register(agent.PolicyIteration, NewPolicyIterationConfigList(
		[]float64{0.9}, []float64{1e-6}, []int{1000}, []int{1000}, []int{100},
	).ConfigList)

	agent.Register(agent.ValueIteration, NewValueIterationConfigList(
		[]float64{0.9}, []float64{1e-6}, []int{1000}, []int{100},
	).ConfigList)
}

// PolicyIterationConfigList implements functionality for storing a
// number of PolicyIterationConfig's in a simple manner
type PolicyIterationConfigList struct {
	Gamma               []float64
	Theta               []float64
	MaxIterations       []int
	MaxEvaluationSweeps []int
	MaxSteps            []int
}

// NewPolicyIterationConfigList returns a new PolicyIterationConfigList
// as an agent.TypedConfigList
func NewPolicyIterationConfigList(gamma, theta []float64, maxIterations,
	maxSweeps, maxSteps []int) agent.TypedConfigList {
	return agent.NewTypedConfigList(PolicyIterationConfigList{
		Gamma:               gamma,
		Theta:               theta,
		MaxIterations:       maxIterations,
		MaxEvaluationSweeps: maxSweeps,
		MaxSteps:            maxSteps,
	})
}

// Config returns an empty Config that is of the type stored by the list
func (c PolicyIterationConfigList) Config() agent.Config {
	return PolicyIterationConfig{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c PolicyIterationConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the list
func (c PolicyIterationConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c PolicyIterationConfigList) Len() int {
	return agent.Len(c)
}

// PolicyIterationConfig represents a configuration for the
// PolicyIteration agent
type PolicyIterationConfig struct {
	Gamma float64

	// Theta is the largest change in any state value for which policy
	// evaluation is considered converged
	Theta               float64
	MaxIterations       int // policy improvement steps
	MaxEvaluationSweeps int // sweeps per policy evaluation

	// MaxSteps bounds the evaluation episodes run by Train
	MaxSteps int
}

// CreateAgent creates the agent from the Config
func (c PolicyIterationConfig) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return NewPolicyIteration(env, c)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c PolicyIterationConfig) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*PolicyIteration)
	return ok
}

// Validate ensures that the Config is valid
func (c PolicyIterationConfig) Validate() error {
	if err := validate(c.Gamma, c.Theta, c.MaxIterations, c.MaxSteps); err != nil {
		return err
	}
	if c.MaxEvaluationSweeps <= 0 {
		return fmt.Errorf("maxEvaluationSweeps must be positive, have %v",
			c.MaxEvaluationSweeps)
	}
	return nil
}

// Type returns the type of the agent constructed by the Config
func (c PolicyIterationConfig) Type() agent.Type {
	return agent.PolicyIteration
}

// ValueIterationConfigList implements functionality for storing a
// number of ValueIterationConfig's in a simple manner
type ValueIterationConfigList struct {
	Gamma         []float64
	Theta         []float64
	MaxIterations []int
	MaxSteps      []int
}

// NewValueIterationConfigList returns a new ValueIterationConfigList as
// an agent.TypedConfigList
func NewValueIterationConfigList(gamma, theta []float64, maxIterations,
	maxSteps []int) agent.TypedConfigList {
	return agent.NewTypedConfigList(ValueIterationConfigList{
		Gamma:         gamma,
		Theta:         theta,
		MaxIterations: maxIterations,
		MaxSteps:      maxSteps,
	})
}

// Config returns an empty Config that is of the type stored by the list
func (c ValueIterationConfigList) Config() agent.Config {
	return ValueIterationConfig{}
}

// Type returns the type of agent that can be constructed by Config's
// stored by the list
func (c ValueIterationConfigList) Type() agent.Type {
	return c.Config().Type()
}

// NumFields returns the number of settable fields for the list
func (c ValueIterationConfigList) NumFields() int {
	return reflect.ValueOf(c).NumField()
}

// Len returns the number of Configs stored by the list
func (c ValueIterationConfigList) Len() int {
	return agent.Len(c)
}

// ValueIterationConfig represents a configuration for the
// ValueIteration agent
type ValueIterationConfig struct {
	Gamma         float64
	Theta         float64
	MaxIterations int // Bellman optimality sweeps
	MaxSteps      int
}

// CreateAgent creates the agent from the Config
func (c ValueIterationConfig) CreateAgent(env environment.Environment,
	seed uint64) (agent.Agent, error) {
	return NewValueIteration(env, c)
}

// ValidAgent returns whether the argument agent is a valid agent for
// construction with the Config
func (c ValueIterationConfig) ValidAgent(a agent.Agent) bool {
	_, ok := a.(*ValueIteration)
	return ok
}

// Validate ensures that the Config is valid
func (c ValueIterationConfig) Validate() error {
	return validate(c.Gamma, c.Theta, c.MaxIterations, c.MaxSteps)
}

// Type returns the type of the agent constructed by the Config
func (c ValueIterationConfig) Type() agent.Type {
	return agent.ValueIteration
}

func validate(gamma, theta float64, maxIterations, maxSteps int) error {
	if gamma < 0 || gamma > 1 {
		return fmt.Errorf("gamma must be in [0, 1], have %v", gamma)
	}
	if theta <= 0 {
		return fmt.Errorf("theta must be positive, have %v", theta)
	}
	if maxIterations <= 0 {
		return fmt.Errorf("maxIterations must be positive, have %v",
			maxIterations)
	}
	if maxSteps < 0 {
		return fmt.Errorf("maxSteps cannot be negative")
	}
	return nil
}
