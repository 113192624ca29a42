package lineworld

import (
	"bytes"
	"testing"

	"github.com/samuelfneumann/rllab/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineWorldStart(t *testing.T) {
	env := Default()

	assert.Equal(t, 2, env.StateID())
	assert.Equal(t, []int{Left, Right}, env.AvailableActions())
	assert.False(t, env.IsGameOver())
	assert.Equal(t, 0.0, env.Score())
}

func TestLineWorldWinAndLose(t *testing.T) {
	env := Default()
	require.NoError(t, env.Step(Right))
	require.NoError(t, env.Step(Right))
	assert.True(t, env.IsGameOver())
	assert.Empty(t, env.AvailableActions())
	assert.Equal(t, WinScore, env.Score())

	require.NoError(t, env.Reset())
	reward, err := environment.Act(env, Left)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reward)
	reward, err = environment.Act(env, Left)
	require.NoError(t, err)
	assert.Equal(t, LoseScore, reward)
}

func TestLineWorldFailsFast(t *testing.T) {
	env := Default()

	err := env.Step(7)
	require.Error(t, err)
	assert.True(t, environment.IsInvalidAction(err))
	assert.Equal(t, 2, env.StateID())

	require.NoError(t, env.Step(Left))
	require.NoError(t, env.Step(Left))
	err = env.Step(Right)
	assert.True(t, environment.IsAlreadyTerminal(err))
}

func TestLineWorldModel(t *testing.T) {
	env := Default()
	p := env.TransitionProbabilities()
	r := env.RewardFunction()

	for s := 0; s < env.NumStates(); s++ {
		for a := 0; a < env.NumActions(); a++ {
			sum := 0.0
			for _, prob := range p[s][a] {
				sum += prob
			}
			if s == 0 || s == env.NumStates()-1 {
				assert.Equal(t, 0.0, sum, "terminal row (%v, %v)", s, a)
			} else {
				assert.InDelta(t, 1.0, sum, 1e-12, "row (%v, %v)", s, a)
			}
		}
	}
	assert.Equal(t, 1.0, p[1][Left][0])
	assert.Equal(t, LoseScore, r[1][Left])
	assert.Equal(t, WinScore, r[3][Right])
	assert.Equal(t, 0.0, r[2][Right])
}

func TestLineWorldRunPolicy(t *testing.T) {
	env := Default()
	total, err := environment.Run(env, []int{0, 1, 1, 1, 0}, 0)
	require.NoError(t, err)
	assert.Equal(t, WinScore, total)

	// A policy that oscillates forever is cut off by the step bound
	total, err = environment.Run(env, []int{0, 1, 0, 1, 0}, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, total)
}

func TestLineWorldDisplay(t *testing.T) {
	env := Default()
	var buf bytes.Buffer
	require.NoError(t, env.Display(&buf))
	assert.Contains(t, buf.String(), "T_X_T")
}

func TestLineWorldTooSmall(t *testing.T) {
	_, err := New(2)
	assert.Error(t, err)
}
