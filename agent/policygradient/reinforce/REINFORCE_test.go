package reinforce

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/environment/gridworld"
	"github.com/samuelfneumann/rllab/environment/lineworld"
	"github.com/samuelfneumann/rllab/internal/testenv"
	"github.com/samuelfneumann/rllab/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func defaults(t *testing.T) Config {
	c, err := agent.Default(agent.REINFORCE)
	require.NoError(t, err)
	return c.(Config)
}

func TestREINFORCEInitialPolicyUniform(t *testing.T) {
	env := gridworld.Default()
	r, err := New(env, defaults(t), 0)
	require.NoError(t, err)

	rows, cols := r.Logits().Dims()
	assert.Equal(t, []int{16, 4}, []int{rows, cols})
	assert.Equal(t, []float64{0.5, 0.5}, r.Probabilities(3, []int{1, 2}))
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25},
		r.Probabilities(0, []int{0, 1, 2, 3}))
}

func TestREINFORCEUpdate(t *testing.T) {
	env := lineworld.Default()
	c := Config{Alpha: 0.1, Gamma: 0.5, MaxSteps: 10}
	r, err := New(env, c, 0)
	require.NoError(t, err)

	trace := timestep.NewTrace(2)
	trace.Add(timestep.Step{State: 2, Actions: []int{0, 1}, Action: 1})
	trace.Add(timestep.Step{State: 3, Actions: []int{0, 1}, Action: 1,
		Reward: 2})
	trace.Finish()
	r.Update(trace)

	// G_0 = 0.5 * 2 = 1 with weight γ^0, G_1 = 2 with weight γ^1
	logits := r.Logits()
	assert.InDeltaSlice(t, []float64{-0.05, 0.05}, logits.RawRowView(2), 1e-12)
	assert.InDeltaSlice(t, []float64{-0.05, 0.05}, logits.RawRowView(3), 1e-12)
	assert.Equal(t, []float64{0, 0}, logits.RawRowView(1))

	assert.Equal(t, lineworld.Right, r.BestAction(2, []int{0, 1}))
	probs := r.Probabilities(2, []int{0, 1})
	assert.InDelta(t, 1.0, floats.Sum(probs), 1e-12)
	assert.Greater(t, probs[1], probs[0])
}

func TestREINFORCEOnlyLegalLogitsMove(t *testing.T) {
	env := gridworld.Default()
	r, err := New(env, defaults(t), 0)
	require.NoError(t, err)

	trace := timestep.NewTrace(1)
	trace.Add(timestep.Step{State: 0, Actions: []int{1, 2}, Action: 2,
		Reward: 1})
	r.Update(trace)

	row := r.Logits().RawRowView(0)
	assert.Equal(t, 0.0, row[0])
	assert.Equal(t, 0.0, row[3])
	assert.InDelta(t, -0.05, row[1], 1e-12)
	assert.InDelta(t, 0.05, row[2], 1e-12)
}

func TestREINFORCELearnsLineWorld(t *testing.T) {
	for _, seed := range []uint64{1, 42} {
		env := lineworld.Default()
		r, err := New(env, defaults(t), seed)
		require.NoError(t, err)

		returns, err := r.Train(env, 1000)
		require.NoError(t, err)
		assert.Len(t, returns, 1000)

		policy := make([]int, env.NumStates())
		for s := 1; s < env.NumStates()-1; s++ {
			policy[s] = r.BestAction(s, []int{0, 1})
		}
		assert.Equal(t, lineworld.Right, policy[2], "seed %v", seed)
		assert.Equal(t, lineworld.Right, policy[3], "seed %v", seed)
		total, err := environment.Run(env, policy, 0)
		require.NoError(t, err)
		assert.Equal(t, lineworld.WinScore, total)
	}
}

func TestREINFORCEDeterministic(t *testing.T) {
	env := gridworld.Default()
	a, _ := New(env, defaults(t), 8)
	b, _ := New(env, defaults(t), 8)

	ra, err := a.Train(env, 20)
	require.NoError(t, err)
	rb, err := b.Train(env, 20)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
	assert.True(t, mat.Equal(a.Logits(), b.Logits()))
}

func TestREINFORCEStepCapAndErrors(t *testing.T) {
	env := &testenv.Loop{Reward: 1}
	c := defaults(t)
	c.MaxSteps = 3
	c.StepCapPenalty = 0.5
	r, err := New(env, c, 0)
	require.NoError(t, err)

	returns, err := r.Train(env, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2.5, 2.5}, returns)
	assert.Equal(t, 6, env.Steps)

	broken := &testenv.Broken{}
	_, err = r.Train(broken, 1)
	assert.True(t, environment.IsInvalidAction(err))
	assert.Panics(t, func() { r.BestAction(0, nil) })

	c.Alpha = 0
	_, err = New(env, c, 0)
	assert.Error(t, err)
}

func TestREINFORCEGob(t *testing.T) {
	env := gridworld.Default()
	r, err := New(env, defaults(t), 2)
	require.NoError(t, err)
	_, err = r.Train(env, 25)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(r))
	var restored REINFORCE
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	assert.True(t, mat.Equal(r.Logits(), restored.Logits()))
	actions := []int{0, 1, 2, 3}
	for s := 0; s < env.NumStates(); s++ {
		assert.Equal(t, r.BestAction(s, actions), restored.BestAction(s, actions))
	}
}
