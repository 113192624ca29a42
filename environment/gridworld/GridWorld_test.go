package gridworld

import (
	"bytes"
	"testing"

	"github.com/samuelfneumann/rllab/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridWorldStart(t *testing.T) {
	env := Default()

	assert.Equal(t, 5, env.StateID())
	assert.ElementsMatch(t, []int{Up, Right, Down, Left}, env.AvailableActions())
	assert.False(t, env.IsGameOver())
	assert.Equal(t, "GridWorld4x4", env.String())
}

func TestGridWorldReachGoal(t *testing.T) {
	env := Default()

	require.NoError(t, env.Step(Up))
	assert.Equal(t, 1, env.StateID())
	x, y := env.Coordinates()
	assert.Equal(t, 1, x)
	assert.Equal(t, 0, y)

	require.NoError(t, env.Step(Left))
	assert.True(t, env.IsGameOver())
	assert.Equal(t, 1.0, env.Score())
	assert.Empty(t, env.AvailableActions())

	err := env.Step(Down)
	assert.True(t, environment.IsAlreadyTerminal(err))
}

func TestGridWorldEdgesRestrictActions(t *testing.T) {
	env := Default()
	require.NoError(t, env.Step(Right))
	require.NoError(t, env.Step(Right))
	// (3, 1) on the right edge
	assert.ElementsMatch(t, []int{Up, Down, Left}, env.AvailableActions())

	err := env.Step(Right)
	assert.True(t, environment.IsInvalidAction(err))
	assert.Equal(t, 7, env.StateID())

	reward, err := environment.Act(env, Down)
	require.NoError(t, err)
	assert.Equal(t, 0.0, reward)
	reward, err = environment.Act(env, Down)
	require.NoError(t, err)
	assert.Equal(t, -1.0, reward)
	assert.True(t, env.IsGameOver())
}

func TestGridWorldModel(t *testing.T) {
	env := Default()
	p := env.TransitionProbabilities()
	r := env.RewardFunction()

	for s := 0; s < env.NumStates(); s++ {
		legal := env.actions(s)
		for a := 0; a < env.NumActions(); a++ {
			sum := 0.0
			for _, prob := range p[s][a] {
				sum += prob
			}
			if environment.Legal(a, legal) {
				assert.InDelta(t, 1.0, sum, 1e-12)
			} else {
				assert.Equal(t, 0.0, sum)
			}
		}
	}
	assert.Equal(t, 1.0, r[1][Left])
	assert.Equal(t, 1.0, r[4][Up])
	assert.Equal(t, -1.0, r[11][Down])
	assert.Equal(t, 0.0, r[5][Up])
}

func TestGridWorldDisplay(t *testing.T) {
	env := Default()
	var buf bytes.Buffer
	require.NoError(t, env.Display(&buf))
	assert.Contains(t, buf.String(), "G...\n.X..\n....\n...T\n")
}

func TestGridWorldInvalidLayout(t *testing.T) {
	_, err := NewGoal([]int{0}, []int{0, 1}, []float64{1}, 2, 2)
	assert.Error(t, err)

	_, err = NewSingleStart(4, 0, 4, 4)
	assert.Error(t, err)

	task, err := NewGoal([]int{0}, []int{0}, []float64{1}, 2, 2)
	require.NoError(t, err)
	_, err = New(2, 2, task, environment.FixedStarter(0))
	assert.Error(t, err, "start on a terminal cell")
}
