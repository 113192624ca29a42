package rps

import (
	"bytes"
	"testing"

	"github.com/samuelfneumann/rllab/environment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRPSRounds(t *testing.T) {
	env, err := New(DefaultRounds, 42)
	require.NoError(t, err)

	assert.Equal(t, Initial, env.StateID())
	assert.Equal(t, 0, env.Round())
	assert.Equal(t, []int{Rock, Paper, Scissors}, env.AvailableActions())

	require.NoError(t, env.Step(Rock))
	assert.False(t, env.IsGameOver())
	assert.Equal(t, 1, env.Round())
	assert.Contains(t, []int{Rock, Paper, Scissors}, env.StateID())

	require.NoError(t, env.Step(Paper))
	assert.True(t, env.IsGameOver())
	assert.Empty(t, env.AvailableActions())
	assert.True(t, environment.IsAlreadyTerminal(env.Step(Rock)))

	require.NoError(t, env.Reset())
	assert.Equal(t, 0, env.Round())
	assert.Equal(t, 0.0, env.Score())
	assert.Equal(t, Initial, env.StateID())
}

func TestRPSOutcome(t *testing.T) {
	cases := []struct {
		player, opponent int
		want             float64
	}{
		{Rock, Rock, 0},
		{Rock, Scissors, 1},
		{Paper, Rock, 1},
		{Scissors, Paper, 1},
		{Rock, Paper, -1},
		{Paper, Scissors, -1},
		{Scissors, Rock, -1},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Outcome(c.player, c.opponent),
			"%v vs %v", c.player, c.opponent)
	}
}

func TestRPSScoreTracksOutcomes(t *testing.T) {
	env, err := New(50, 7)
	require.NoError(t, err)

	for !env.IsGameOver() {
		before := env.Score()
		require.NoError(t, env.Step(Paper))
		delta := env.Score() - before
		assert.Equal(t, Outcome(Paper, env.StateID()), delta)
	}
}

func TestRPSSeeded(t *testing.T) {
	a, _ := New(10, 3)
	b, _ := New(10, 3)
	for !a.IsGameOver() {
		require.NoError(t, a.Step(Rock))
		require.NoError(t, b.Step(Rock))
		assert.Equal(t, a.StateID(), b.StateID())
	}
	assert.Equal(t, a.Score(), b.Score())

	var buf bytes.Buffer
	require.NoError(t, a.Display(&buf))
	assert.Contains(t, buf.String(), "Round: 10/10")
}

func TestRPSInvalid(t *testing.T) {
	_, err := New(0, 1)
	assert.Error(t, err)

	env, _ := New(1, 1)
	assert.True(t, environment.IsInvalidAction(env.Step(3)))
}
