package timestep

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceNumbersSteps(t *testing.T) {
	tr := NewTrace(4)
	tr.Add(Step{State: 2, Action: 1})
	tr.Add(Step{State: 3, Action: 1, StepType: First})
	tr.Add(Step{State: 4, Action: 0, StepType: Last})

	require.Equal(t, 3, tr.Len())
	assert.True(t, tr.At(0).First())
	assert.True(t, tr.At(1).Mid())
	assert.True(t, tr.At(2).Last())
	for i := 0; i < tr.Len(); i++ {
		assert.Equal(t, i, tr.At(i).Number)
	}
}

func TestTraceReturns(t *testing.T) {
	tr := NewTrace(0)
	for _, r := range []float64{0, 0, 1} {
		tr.Add(Step{Reward: r})
	}

	returns := tr.Returns(0.5)
	assert.InDeltaSlice(t, []float64{0.25, 0.5, 1}, returns, 1e-12)
	assert.Equal(t, 1.0, tr.Total())
}

func TestTraceReset(t *testing.T) {
	tr := NewTrace(2)
	tr.Add(Step{Reward: 3})
	tr.SetLastReward(-1)
	assert.Equal(t, -1.0, tr.Total())

	tr.Reset()
	assert.Equal(t, 0, tr.Len())
	assert.Empty(t, tr.Returns(0.9))

	// No-op on an empty trace
	tr.SetLastReward(5)
	assert.Equal(t, 0, tr.Len())
}

func TestTraceFinish(t *testing.T) {
	tr := NewTrace(2)
	tr.Finish()
	assert.Equal(t, 0, tr.Len())

	tr.Add(Step{State: 1})
	tr.Add(Step{State: 2})
	tr.Finish()
	assert.True(t, tr.At(0).First())
	assert.True(t, tr.At(1).Last())
}
