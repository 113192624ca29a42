package montecarlo

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/environment"
	"github.com/samuelfneumann/rllab/timestep"
)

// OnPolicy implements first-visit on-policy Monte-Carlo control with an
// ε-soft policy. Q(s, a) is the running mean of the first-visit returns
// observed for (s, a).
type OnPolicy struct {
	config OnPolicyConfig
	seed   uint64

	q     *mat.Dense
	count *mat.Dense // first visits of each (s, a)

	// pi holds the ε-soft action probabilities of each state over all
	// actions. A zero row means the state has never been updated and
	// the policy there is uniform over the legal actions.
	pi *mat.Dense

	// rng breaks ties of the greedy action when pi is recomputed
	rng *rand.Rand
}

// NewOnPolicy creates a new OnPolicy agent
func NewOnPolicy(env environment.Environment, c OnPolicyConfig,
	seed uint64) (*OnPolicy, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("newOnPolicy: %w", err)
	}

	o := &OnPolicy{config: c, seed: seed}
	o.init(env.NumStates(), env.NumActions())
	return o, nil
}

func (o *OnPolicy) init(states, actions int) {
	o.q = mat.NewDense(states, actions, nil)
	o.count = mat.NewDense(states, actions, nil)
	o.pi = mat.NewDense(states, actions, nil)
}

// Train implements the agent.Agent interface
func (o *OnPolicy) Train(env environment.Environment,
	episodes int) ([]float64, error) {
	r, c := o.q.Dims()
	if agent.Rebind(agent.OnPolicyMC, r, c, env) {
		o.init(env.NumStates(), env.NumActions())
	}
	agent.Logger(agent.OnPolicyMC, env, episodes).Debug("training")

	o.rng = rand.New(rand.NewSource(o.seed))
	limit := environment.NewStepLimit(o.config.MaxSteps)
	trace := timestep.NewTrace(64)

	choose := func(state int, actions []int) int {
		return actions[policy.Sample(o.Probabilities(state, actions), o.rng)]
	}

	returns := make([]float64, 0, episodes)
	for i := 0; i < episodes; i++ {
		err := agent.Generate(env, trace, choose, limit, o.config.StepCapPenalty)
		if err != nil {
			return returns, fmt.Errorf("train: episode %v: %w", i, err)
		}
		o.Update(trace)
		returns = append(returns, trace.Total())
	}

	return returns, nil
}

// Update processes a full episode backward, moving Q toward the mean of
// the first-visit return of each (s, a) in the episode and recomputing
// the ε-soft policy of each updated state.
func (o *OnPolicy) Update(trace *timestep.Trace) {
	if o.rng == nil {
		o.rng = rand.New(rand.NewSource(o.seed))
	}

	first := make(map[[2]int]int, trace.Len())
	for t := trace.Len() - 1; t >= 0; t-- {
		step := trace.At(t)
		first[[2]int{step.State, step.Action}] = t
	}

	returns := trace.Returns(o.config.Gamma)
	for t := trace.Len() - 1; t >= 0; t-- {
		step := trace.At(t)
		if first[[2]int{step.State, step.Action}] != t {
			continue
		}

		n := o.count.At(step.State, step.Action) + 1
		o.count.Set(step.State, step.Action, n)
		q := o.q.At(step.State, step.Action)
		o.q.Set(step.State, step.Action, q+(returns[t]-q)/n)

		o.improve(step.State, step.Actions)
	}
}

// improve recomputes the ε-soft policy of state over actions
func (o *OnPolicy) improve(state int, actions []int) {
	greedy := policy.RandomGreedy(o.q.RawRowView(state), actions, o.rng)
	probs := policy.Probabilities(o.config.Epsilon, greedy, actions)

	row := o.pi.RawRowView(state)
	for a := range row {
		row[a] = 0
	}
	for i, a := range actions {
		row[a] = probs[i]
	}
}

// Probabilities implements the agent.Prober interface
func (o *OnPolicy) Probabilities(state int, actions []int) []float64 {
	probs := policy.Gather(o.pi.RawRowView(state), actions)

	total := floats.Sum(probs)
	if total == 0 {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}
	floats.Scale(1/total, probs)
	return probs
}

// BestAction implements the agent.Agent interface
func (o *OnPolicy) BestAction(state int, actions []int) int {
	return policy.Greedy(o.q.RawRowView(state), actions)
}

// QTable implements the agent.QTabler interface
func (o *OnPolicy) QTable() *mat.Dense {
	return mat.DenseCopyOf(o.q)
}

type onPolicySnapshot struct {
	Config       OnPolicyConfig
	Seed         uint64
	Q, Count, Pi *mat.Dense
}

// GobEncode implements the gob.GobEncoder interface
func (o *OnPolicy) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(onPolicySnapshot{
		o.config, o.seed, o.q, o.count, o.pi,
	})
	return buf.Bytes(), err
}

// GobDecode implements the gob.GobDecoder interface
func (o *OnPolicy) GobDecode(data []byte) error {
	var s onPolicySnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&s); err != nil {
		return fmt.Errorf("gobDecode: %w", err)
	}

	o.config = s.Config
	o.seed = s.Seed
	o.q, o.count, o.pi = s.Q, s.Count, s.Pi
	o.rng = nil
	return nil
}
