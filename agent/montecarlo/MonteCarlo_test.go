package montecarlo

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/environment/lineworld"
	"github.com/samuelfneumann/rllab/environment/montyhall"
	"github.com/samuelfneumann/rllab/internal/testenv"
	"github.com/samuelfneumann/rllab/timestep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
)

func trace(steps ...timestep.Step) *timestep.Trace {
	tr := timestep.NewTrace(len(steps))
	for _, s := range steps {
		if s.Actions == nil {
			s.Actions = []int{0, 1}
		}
		tr.Add(s)
	}
	tr.Finish()
	return tr
}

func TestOnPolicyFirstVisitMean(t *testing.T) {
	c := OnPolicyConfig{Epsilon: 0.1, Gamma: 0.5}
	o, err := NewOnPolicy(lineworld.Default(), c, 0)
	require.NoError(t, err)

	// Returns are 2, 4, 4; only the first visit of (1, 1) counts
	o.Update(trace(
		timestep.Step{State: 1, Action: 1, Reward: 0},
		timestep.Step{State: 2, Action: 0, Reward: 2},
		timestep.Step{State: 1, Action: 1, Reward: 4},
	))
	o.Update(trace(timestep.Step{State: 1, Action: 1, Reward: 1}))

	q := o.QTable()
	assert.InDelta(t, 1.5, q.At(1, 1), 1e-12)
	assert.InDelta(t, 4.0, q.At(2, 0), 1e-12)
	assert.Equal(t, 2.0, o.count.At(1, 1))
	assert.Equal(t, 0.0, q.At(1, 0))

	assert.InDeltaSlice(t, []float64{0.05, 0.95},
		o.Probabilities(1, []int{0, 1}), 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5},
		o.Probabilities(3, []int{0, 1}), 1e-12)
	assert.Equal(t, 1, o.BestAction(1, []int{0, 1}))
}

func TestOnPolicyLearnsLineWorld(t *testing.T) {
	env := lineworld.Default()
	c, err := agent.Default(agent.OnPolicyMC)
	require.NoError(t, err)
	o, err := NewOnPolicy(env, c.(OnPolicyConfig), 42)
	require.NoError(t, err)

	returns, err := o.Train(env, 1000)
	require.NoError(t, err)
	assert.Len(t, returns, 1000)

	assert.Equal(t, lineworld.Right, o.BestAction(1, []int{0, 1}))
	assert.Equal(t, lineworld.Right, o.BestAction(3, []int{0, 1}))
	assert.Equal(t, -1.0, o.QTable().At(1, lineworld.Left))
}

func TestOnPolicyStepCap(t *testing.T) {
	env := &testenv.Loop{Reward: 1}
	o, err := NewOnPolicy(env, OnPolicyConfig{Epsilon: 0.1, Gamma: 1,
		MaxSteps: 4, StepCapPenalty: 2}, 0)
	require.NoError(t, err)

	returns, err := o.Train(env, 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 2}, returns)

	// Only the first visit, with return 1+1+1+(1-2), is averaged
	assert.InDelta(t, 2.0, o.QTable().At(0, 0), 1e-12)
}

func TestOffPolicyUpdate(t *testing.T) {
	c := OffPolicyConfig{Epsilon: 0.1, Gamma: 1, Decay: 1, MinEpsilon: 0.1}
	o, err := NewOffPolicy(lineworld.Default(), c, 0)
	require.NoError(t, err)

	o.Update(trace(
		timestep.Step{State: 0, Action: 1, Reward: 0},
		timestep.Step{State: 1, Action: 0, Reward: 1},
	))

	q := o.QTable()
	assert.InDelta(t, 1.0, q.At(1, 0), 1e-12)
	assert.InDelta(t, 1.0, q.At(0, 1), 1e-12)
	assert.InDelta(t, 1/0.95, o.weight.At(0, 1), 1e-12)
	assert.Equal(t, []int{1, 0, 0, 0, 0}, o.Policy())

	// The update stops at the first non-greedy action
	o.Update(trace(
		timestep.Step{State: 3, Action: 1, Reward: 5},
		timestep.Step{State: 2, Action: 1, Reward: -1},
	))
	q = o.QTable()
	assert.InDelta(t, -1.0, q.At(2, 1), 1e-12)
	assert.Equal(t, 0.0, q.At(3, 1))
	assert.Equal(t, 0.0, o.weight.At(3, 1))
}

func TestOffPolicyBehaviourPrefersUntried(t *testing.T) {
	c := OffPolicyConfig{Epsilon: 1, Gamma: 1, Decay: 1}
	o, err := NewOffPolicy(lineworld.Default(), c, 0)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))

	o.q.Set(2, 0, 10)
	o.count.Set(2, 0, 1)
	o.total = 1
	assert.Equal(t, 1, o.behaviour(2, []int{0, 1}, rng))
	assert.True(t, o.visited[2])

	o.count.Set(2, 1, 5)
	o.total = 6
	assert.Equal(t, 0, o.behaviour(2, []int{0, 1}, rng))
	assert.InDelta(t, 10+math.Sqrt(2*math.Log(6)), o.ucb(2, 0, 0), 1e-12)
	assert.InDelta(t, 1.0, o.ucb(2, 0, 1)-o.ucb(2, 0, 0), 1e-12)
}

func TestOffPolicyTrainDecaysEpsilon(t *testing.T) {
	env, err := montyhall.New(montyhall.ClassicDoors, 3)
	require.NoError(t, err)
	c, err := agent.Default(agent.OffPolicyMC)
	require.NoError(t, err)
	o, err := NewOffPolicy(env, c.(OffPolicyConfig), 7)
	require.NoError(t, err)

	returns, err := o.Train(env, 500)
	require.NoError(t, err)
	require.Len(t, returns, 500)
	for _, r := range returns {
		assert.Contains(t, []float64{0, 1}, r)
	}

	assert.InDelta(t, math.Max(0.1*math.Pow(0.995, 500), 0.01), o.Epsilon(),
		1e-12)
	assert.Equal(t, 1000.0, o.total)

	best := o.BestAction(1+0*montyhall.ClassicDoors+1,
		[]int{montyhall.Keep, montyhall.Switch})
	assert.Contains(t, []int{montyhall.Keep, montyhall.Switch}, best)
}

func TestOffPolicyStepCapPenalty(t *testing.T) {
	env := &testenv.Loop{}
	c, _ := agent.Default(agent.OffPolicyMC)
	o, err := NewOffPolicy(env, c.(OffPolicyConfig), 0)
	require.NoError(t, err)

	returns, err := o.Train(env, 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{-1}, returns)
	assert.Equal(t, 100, env.Steps)
}

func TestMonteCarloErrors(t *testing.T) {
	env := &testenv.Broken{}
	on, _ := NewOnPolicy(env, OnPolicyConfig{Epsilon: 0.1, Gamma: 1}, 0)
	_, err := on.Train(env, 1)
	assert.True(t, environment.IsInvalidAction(err))

	c, _ := agent.Default(agent.OffPolicyMC)
	off, _ := NewOffPolicy(env, c.(OffPolicyConfig), 0)
	_, err = off.Train(env, 1)
	assert.True(t, environment.IsInvalidAction(err))
}

func TestMonteCarloGobRoundTrip(t *testing.T) {
	env := lineworld.Default()

	on, _ := NewOnPolicy(env, OnPolicyConfig{Epsilon: 0.2, Gamma: 0.9}, 1)
	_, err := on.Train(env, 50)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, gob.NewEncoder(&buf).Encode(on))
	onCopy := &OnPolicy{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(onCopy))
	assert.True(t, mat.Equal(on.QTable(), onCopy.QTable()))

	c, _ := agent.Default(agent.OffPolicyMC)
	off, _ := NewOffPolicy(env, c.(OffPolicyConfig), 1)
	_, err = off.Train(env, 50)
	require.NoError(t, err)
	buf.Reset()
	require.NoError(t, gob.NewEncoder(&buf).Encode(off))
	offCopy := &OffPolicy{}
	require.NoError(t, gob.NewDecoder(&buf).Decode(offCopy))
	assert.True(t, mat.Equal(off.QTable(), offCopy.QTable()))
	assert.Equal(t, off.Epsilon(), offCopy.Epsilon())
	assert.Equal(t, off.Policy(), offCopy.Policy())

	for s := 0; s < env.NumStates(); s++ {
		assert.Equal(t, on.BestAction(s, []int{0, 1}),
			onCopy.BestAction(s, []int{0, 1}))
		assert.Equal(t, off.BestAction(s, []int{0, 1}),
			offCopy.BestAction(s, []int{0, 1}))
		assert.Equal(t, on.Probabilities(s, []int{0, 1}),
			onCopy.Probabilities(s, []int{0, 1}))
	}
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, OnPolicyConfig{Epsilon: 2, Gamma: 1}.Validate())
	assert.Error(t, OffPolicyConfig{Epsilon: 0.1, Gamma: 1, Decay: 0}.Validate())
	assert.Error(t, OffPolicyConfig{Epsilon: 0.1, Gamma: 1, Decay: 0.9,
		MinEpsilon: 0.5}.Validate())

	c, err := agent.Default(agent.OffPolicyMC)
	require.NoError(t, err)
	assert.Equal(t, OffPolicyConfig{Epsilon: 0.1, Gamma: 0.99, Decay: 0.995,
		MinEpsilon: 0.01, MaxSteps: 100, StepCapPenalty: 1}, c)
}
