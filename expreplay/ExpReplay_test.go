package expreplay

import (
	"testing"

	"github.com/samuelfneumann/rllab/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func transition(i int) timestep.Transition {
	return timestep.Transition{State: i, Action: i % 2, Reward: float64(i),
		NextState: i + 1, NextActions: []int{0, 1}}
}

func states(ts []timestep.Transition) []int {
	out := make([]int, len(ts))
	for i, t := range ts {
		out[i] = t.State
	}
	return out
}

func TestFifoEviction(t *testing.T) {
	buffer, err := Config{BatchSize: 2, Capacity: 3}.Create()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, buffer.Add(transition(i)))
		assert.LessOrEqual(t, buffer.Len(), buffer.Capacity())

		// The buffer always holds the most recent transitions in order
		var want []int
		for j := max(0, i-2); j <= i; j++ {
			want = append(want, j)
		}
		assert.Equal(t, want, states(buffer.Transitions()))
	}
	assert.Equal(t, 3, buffer.Len())
}

func TestUniformSampleWithoutReplacement(t *testing.T) {
	buffer, err := Config{BatchSize: 5, Capacity: 8}.Create()
	require.NoError(t, err)
	for i := 0; i < 12; i++ {
		require.NoError(t, buffer.Add(transition(i)))
	}

	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 50; n++ {
		batch, err := buffer.Sample(rng)
		require.NoError(t, err)
		require.Len(t, batch, 5)

		seen := map[int]bool{}
		for _, s := range states(batch) {
			assert.False(t, seen[s], "sampled %v twice", s)
			assert.GreaterOrEqual(t, s, 4, "sampled evicted transition")
			seen[s] = true
		}
	}
}

func TestSampleDeterministic(t *testing.T) {
	buffer, _ := Config{BatchSize: 3, Capacity: 10}.Create()
	for i := 0; i < 10; i++ {
		require.NoError(t, buffer.Add(transition(i)))
	}

	a, err := buffer.Sample(rand.NewSource(7))
	require.NoError(t, err)
	b, err := buffer.Sample(rand.NewSource(7))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSampleErrors(t *testing.T) {
	buffer, err := Config{BatchSize: 2, Capacity: 4}.Create()
	require.NoError(t, err)

	_, err = buffer.Sample(rand.NewSource(1))
	assert.True(t, IsEmptyBuffer(err))
	assert.False(t, IsInsufficientSamples(err))

	require.NoError(t, buffer.Add(transition(0)))
	_, err = buffer.Sample(rand.NewSource(1))
	assert.True(t, IsInsufficientSamples(err))
	assert.EqualError(t, err, "sample: minimum capacity not yet reached")

	assert.Error(t, buffer.Add(timestep.Transition{State: -1}))
	assert.Error(t, buffer.Add(timestep.Transition{Terminal: true,
		NextActions: []int{1}}))
	assert.Equal(t, 1, buffer.Len())
}

func TestFifoSelector(t *testing.T) {
	buffer, err := Config{SampleMethod: Fifo, BatchSize: 2, Capacity: 3}.Create()
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, buffer.Add(transition(i)))
	}

	batch, err := buffer.Sample(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, states(batch))
}

func TestOnline(t *testing.T) {
	buffer, err := Config{BatchSize: 1, Capacity: 1}.Create()
	require.NoError(t, err)
	assert.IsType(t, &onlineCache{}, buffer)

	_, err = buffer.Sample(nil)
	assert.True(t, IsEmptyBuffer(err))
	assert.Empty(t, buffer.Transitions())

	require.NoError(t, buffer.Add(transition(1)))
	require.NoError(t, buffer.Add(transition(2)))
	batch, err := buffer.Sample(nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, states(batch))
	assert.Equal(t, 1, buffer.Len())
}

func TestNewValidates(t *testing.T) {
	_, err := New(NewUniformSelector(4), 1, 2)
	assert.Error(t, err)
	_, err = New(NewUniformSelector(1), 0, 2)
	assert.Error(t, err)
	_, err = New(NewUniformSelector(1), 3, 2)
	assert.Error(t, err)
	_, err = New(NewFifoSelector(0), 1, 2)
	assert.Error(t, err)
	_, err = Config{SampleMethod: "Prioritized", BatchSize: 1, Capacity: 2}.Create()
	assert.Error(t, err)
}
