package sgsarsa

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/tabular/sarsa"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/environment/gridworld"
	"github.com/samuelfneumann/rllab/environment/lineworld"
	"github.com/samuelfneumann/rllab/internal/testenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(t *testing.T) Config {
	c, err := agent.Default(agent.SemiGradientSARSA)
	require.NoError(t, err)
	return c.(Config)
}

func TestSGSARSADefaults(t *testing.T) {
	c := defaults(t)
	assert.Equal(t, 25, c.MaxSteps)
	assert.Equal(t, 64, c.Features)
	assert.NoError(t, c.Validate())
}

func TestSGSARSAFeatureIndex(t *testing.T) {
	env := gridworld.Default()
	c := defaults(t)
	c.Features = 10
	s, err := New(env, c, 0)
	require.NoError(t, err)

	assert.Equal(t, 0, s.Index(0, 0))
	assert.Equal(t, 7, s.Index(1, 3))
	assert.Equal(t, (5*4+2)%10, s.Index(5, 2))

	x := s.featurize(1, 3)
	assert.Equal(t, []float64{0, 0, 0, 0, 0, 0, 0, 1, 0, 0}, x)
}

// With one feature per state-action pair the approximation is a table
// and the agent must behave exactly as tabular SARSA
func TestSGSARSAMatchesTabular(t *testing.T) {
	for _, seed := range []uint64{1, 42} {
		env := lineworld.Default()
		s, err := New(env, defaults(t), seed)
		require.NoError(t, err)
		c := defaults(t)
		tab, err := sarsa.New(env, sarsa.Config{Alpha: c.Alpha,
			Epsilon: c.Epsilon, Gamma: c.Gamma, MaxSteps: c.MaxSteps}, seed)
		require.NoError(t, err)

		want, err := tab.Train(env, 300)
		require.NoError(t, err)
		got, err := s.Train(env, 300)
		require.NoError(t, err)
		assert.Equal(t, want, got, "seed %v", seed)

		q := tab.QTable()
		for state := 0; state < env.NumStates(); state++ {
			for a := 0; a < env.NumActions(); a++ {
				assert.Equal(t, q.At(state, a), s.Value(state, a))
			}
		}
	}
}

func TestSGSARSAConverges(t *testing.T) {
	env := lineworld.Default()
	s, err := New(env, defaults(t), 42)
	require.NoError(t, err)

	_, err = s.Train(env, 1000)
	require.NoError(t, err)

	policy := make([]int, env.NumStates())
	for state := 1; state < env.NumStates()-1; state++ {
		policy[state] = s.BestAction(state, []int{0, 1})
		assert.Equal(t, lineworld.Right, policy[state], "state %v", state)
	}
	total, err := environment.Run(env, policy, 0)
	require.NoError(t, err)
	assert.Equal(t, lineworld.WinScore, total)
}

func TestSGSARSASharedFeatures(t *testing.T) {
	env := gridworld.Default()
	c := defaults(t)
	c.Features = 4
	s, err := New(env, c, 3)
	require.NoError(t, err)

	_, err = s.Train(env, 20)
	require.NoError(t, err)
	assert.Len(t, s.Weights(), 4)

	// States 0 and 1 map onto the same features for every action
	for a := 0; a < env.NumActions(); a++ {
		assert.Equal(t, s.Value(0, a), s.Value(1, a))
	}
	assert.Panics(t, func() { s.BestAction(0, nil) })
}

func TestSGSARSAStepCap(t *testing.T) {
	env := &testenv.Loop{Reward: 1}
	c := defaults(t)
	c.MaxSteps = 5
	c.StepCapPenalty = 2
	s, err := New(env, c, 0)
	require.NoError(t, err)

	returns, err := s.Train(env, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3}, returns)
	assert.Equal(t, 10, env.Steps)
}

func TestSGSARSAErrors(t *testing.T) {
	s, err := New(&testenv.Broken{}, defaults(t), 0)
	require.NoError(t, err)
	_, err = s.Train(&testenv.Broken{}, 1)
	assert.ErrorContains(t, err, "train: episode 0")
	assert.True(t, environment.IsInvalidAction(err))

	c := defaults(t)
	c.Features = 0
	_, err = New(lineworld.Default(), c, 0)
	assert.Error(t, err)
}

func TestSGSARSAGob(t *testing.T) {
	env := gridworld.Default()
	s, err := New(env, defaults(t), 9)
	require.NoError(t, err)
	_, err = s.Train(env, 30)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(s))
	var restored SGSARSA
	require.NoError(t, gob.NewDecoder(&buf).Decode(&restored))

	assert.Equal(t, s.Weights(), restored.Weights())
	for state := 0; state < env.NumStates(); state++ {
		actions := []int{0, 1, 2, 3}
		assert.Equal(t, s.BestAction(state, actions),
			restored.BestAction(state, actions))
	}

	ra, err := s.Train(env, 5)
	require.NoError(t, err)
	rb, err := restored.Train(env, 5)
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}
