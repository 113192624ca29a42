package montecarlo

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/timestep"
	"github.com/samuelfneumann/rllab/utils/floatutils"
)

// OffPolicy implements off-policy Monte-Carlo control with weighted
// importance sampling. The target policy is greedy in Q. The behaviour
// policy is greedy with probability 1-ε and otherwise picks the action
// maximizing an upper confidence bound,
//
//	Q(s, a) + sqrt(2 ln N / N(s, a)) + novelty(s)
//
// where N counts all visits, untried actions have an infinite bound and
// novelty(s) is 1 if s has not yet been visited this episode. ε decays
// after every episode.
type OffPolicy struct {
	config  OffPolicyConfig
	seed    uint64
	epsilon float64

	q      *mat.Dense
	weight *mat.Dense // cumulative importance sampling weights C(s, a)
	count  *mat.Dense // visits N(s, a)
	total  float64
	target []int

	visited map[int]bool // states visited this episode
}

// NewOffPolicy creates a new OffPolicy agent
func NewOffPolicy(env environment.Environment, c OffPolicyConfig,
	seed uint64) (*OffPolicy, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOffPolicy: %w", err)
	}

	o := &OffPolicy{config: c, seed: seed, epsilon: c.Epsilon}
	o.init(env.NumStates(), env.NumActions())
	return o, nil
}

func (o *OffPolicy) init(states, actions int) {
	o.q = mat.NewDense(states, actions, nil)
	o.weight = mat.NewDense(states, actions, nil)
	o.count = mat.NewDense(states, actions, nil)
	o.total = 0
	o.target = make([]int, states)
	o.visited = make(map[int]bool)
}

// Train implements the agent.Agent interface
func (o *OffPolicy) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	r, c := o.q.Dims()
	if agent.Rebind(agent.OffPolicyMC, r, c, env) {
		o.init(env.NumStates(), env.NumActions())
	}
	agent.Logger(agent.OffPolicyMC, env, episodes).WithField("epsilon",
		o.epsilon).Debug("training")

	rng := rand.New(rand.NewSource(o.seed))
	limit := environment.NewStepLimit(o.config.MaxSteps)
	trace := timestep.NewTrace(o.config.MaxSteps)

	choose := func(state int, actions []int) int {
		action := o.behaviour(state, actions, rng)
		o.count.Set(state, action, o.count.At(state, action)+1)
		o.total++
		return action
	}

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		o.visited = make(map[int]bool)
		err := agent.Generate(env, trace, choose, limit, o.config.StepCapPenalty)
		if err != nil {
			return returns, fmt.Errorf("train: episode %v: %w", i, err)
		}
		o.Update(trace)
		o.epsilon = floatutils.Clip(o.epsilon*o.config.Decay, o.config.MinEpsilon,
			o.config.Epsilon)

		returns = append(returns, trace.Total())
	}

	return returns, nil
}

// behaviour selects an action and marks state as visited this episode
func (o *OffPolicy) behaviour(state int, actions []int,
	rng *rand.Rand) int {
	novelty := 1.0
	if o.visited[state] {
		novelty = 0.0
	}
	o.visited[state] = true

	if rng.Float64() >= o.epsilon {
		return policy.Greedy(o.q.RawRowView(state), actions)
	}

	_, c := o.q.Dims()
	bounds := make([]float64, c)
	for _, a := range actions {
		bounds[a] = o.ucb(state, a, novelty)
	}
	return policy.Greedy(bounds, actions)
}

// ucb returns the upper confidence bound of taking action in state
func (o *OffPolicy) ucb(state, action int, novelty float64) float64 {
	n := o.count.At(state, action)
	if n == 0 {
		return math.Inf(1)
	}
	return o.q.At(state, action) + math.Sqrt(2*math.Log(o.total)/n) + novelty
}

// Update processes a full episode backward with weighted importance
// sampling, stopping at the first step whose action the greedy target
// policy would not have taken. The importance sampling ratio uses the
// ε-greedy probability of the current ε.
func (o *OffPolicy) Update(trace *timestep.Trace) {
	g, w := 0.0, 1.0
	for t := trace.Len() - 1; t >= 0; t-- {
		step := trace.At(t)
		s, a := step.State, step.Action
		g = o.config.Gamma*g + step.Reward

		c := o.weight.At(s, a) + w
		o.weight.Set(s, a, c)
		q := o.q.At(s, a)
		o.q.Set(s, a, q+(w/c)*(g-q))

		greedy := policy.Greedy(o.q.RawRowView(s), step.Actions)
		o.target[s] = greedy
		if a != greedy {
			break
		}

		probs := policy.Probabilities(o.epsilon, greedy, step.Actions)
		w /= probs[floats.MaxIdx(probs)]
	}
}

// Epsilon returns the current exploration rate of the behaviour policy
func (o *OffPolicy) Epsilon() float64 {
	return o.epsilon
}

// BestAction implements the agent.Agent interface
func (o *OffPolicy) BestAction(state int, actions []int) int {
	return policy.Greedy(o.q.RawRowView(state), actions)
}

// Policy implements the agent.Policier interface. States never reached
// by the backward pass map to action 0.
func (o *OffPolicy) Policy() []int {
	return append([]int(nil), o.target...)
}

// QTable implements the agent.QTabler interface
func (o *OffPolicy) QTable() *mat.Dense {
	return mat.DenseCopyOf(o.q)
}

type offPolicySnapshot struct {
	Config           OffPolicyConfig
	Seed             uint64
	Epsilon          float64
	Q, Weight, Count *mat.Dense
	Total            float64
	Target           []int
}

// GobEncode implements the gob.GobEncoder interface
func (o *OffPolicy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(offPolicySnapshot{
		Config:  o.config,
		Seed:    o.seed,
		Epsilon: o.epsilon,
		Q:       o.q,
		Weight:  o.weight,
		Count:   o.count,
		Total:   o.total,
		Target:  o.target,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (o *OffPolicy) GobDecode(data []byte) error {
	var s offPolicySnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	o.config = s.Config
	o.seed = s.Seed
	o.epsilon = s.Epsilon
	o.q, o.weight, o.count = s.Q, s.Weight, s.Count
	o.total = s.Total
	o.target = s.Target
	o.visited = make(map[int]bool)
	return nil
}
