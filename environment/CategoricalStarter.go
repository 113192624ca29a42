package environment

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// CategoricalStarter returns starting conditions sampled from a
// categorical distribution over (0, 1, 2, ... N-1).
type CategoricalStarter struct {
	seed uint64
	rand distuv.Categorical
}

// NewCategoricalStarter returns a new CategoricalStarter sampling i with
// probability proportional to weights[i]
func NewCategoricalStarter(weights []float64, seed uint64) *CategoricalStarter {
	source := rand.NewSource(seed)
	return &CategoricalStarter{seed, distuv.NewCategorical(weights, source)}
}

// NewUniformCategoricalStarter returns a new CategoricalStarter sampling
// uniformly from (0, 1, 2, ... bound-1)
func NewUniformCategoricalStarter(bound int, seed uint64) *CategoricalStarter {
	// Create the weights for the uniform categorical distribution
	weights := make([]float64, bound)
	for j := range weights {
		weights[j] = 1.0 / float64(len(weights))
	}

	return NewCategoricalStarter(weights, seed)
}

// Start returns a starting condition
func (c *CategoricalStarter) Start() int {
	return int(c.rand.Rand())
}

// FixedStarter always starts episodes from the same condition
type FixedStarter int

// Start returns a starting condition
func (f FixedStarter) Start() int {
	return int(f)
}
