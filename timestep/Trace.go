package timestep

// Trace records the steps of a single episode in the order they were
// taken. A Trace is reused between episodes and must be Reset at the start
// of each one.
type Trace struct {
	steps []Step
}

// NewTrace returns a new, empty Trace with room for capacity steps
func NewTrace(capacity int) *Trace {
	return &Trace{steps: make([]Step, 0, capacity)}
}

// Add appends a step to the trace, numbering it and marking it as the
// first step if the trace was empty.
func (t *Trace) Add(s Step) {
	s.Number = len(t.steps)
	if s.Number == 0 {
		s.StepType = First
	} else if s.StepType == First {
		s.StepType = Mid
	}
	t.steps = append(t.steps, s)
}

// Len returns the number of steps in the trace
func (t *Trace) Len() int {
	return len(t.steps)
}

// At returns the i-th step of the trace
func (t *Trace) At(i int) Step {
	return t.steps[i]
}

// Reset clears the trace while retaining its backing storage
func (t *Trace) Reset() {
	t.steps = t.steps[:0]
}

// Total returns the undiscounted sum of rewards in the trace
func (t *Trace) Total() float64 {
	total := 0.0
	for _, s := range t.steps {
		total += s.Reward
	}
	return total
}

// SetLastReward overwrites the reward of the most recent step. It is used
// to penalise episodes that are cut off by a step limit.
func (t *Trace) SetLastReward(r float64) {
	if len(t.steps) == 0 {
		return
	}
	t.steps[len(t.steps)-1].Reward = r
}

// Finish marks the most recent step as the last step of the episode
func (t *Trace) Finish() {
	if len(t.steps) == 0 {
		return
	}
	t.steps[len(t.steps)-1].StepType = Last
}

// Returns computes the discounted return-to-go of every step,
// G_t = r_t + γ G_{t+1}, working backward from the end of the trace.
func (t *Trace) Returns(discount float64) []float64 {
	returns := make([]float64, len(t.steps))
	g := 0.0
	for i := len(t.steps) - 1; i >= 0; i-- {
		g = discount*g + t.steps[i].Reward
		returns[i] = g
	}
	return returns
}
