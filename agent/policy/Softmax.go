package policy

import (
	"math"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/floats"
)

// Softmax returns the softmax distribution of the logits of actions, in
// the same order as actions. The maximum logit is subtracted before
// exponentiating.
func Softmax(logits []float64, actions []int) []float64 {
	probs := Gather(logits, actions)
	if len(probs) == 0 {
		return probs
	}

	max := floats.Max(probs)
	for i := range probs {
		probs[i] = math.Exp(probs[i] - max)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// Sample draws a single uniform number and walks the cumulative
// distribution of probs, returning the index it falls in. Rounding
// error in the last bucket is absorbed by returning the final index.
func Sample(probs []float64, rng *rand.Rand) int {
	cumulative := floats.CumSum(make([]float64, len(probs)), probs)

	u := rng.Float64()
	for i, c := range cumulative {
		if u < c {
			return i
		}
	}
	return len(probs) - 1
}
