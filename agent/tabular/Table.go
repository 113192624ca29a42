// Package tabular implements the action-value table shared by the
// tabular temporal difference agents
package tabular

import (
	"gonum.org/v1/gonum/mat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/agent/policy"
	"github.com/samuelfneumann/rllab/environment"
)

// Table is a dense action-value table with one row per state and one
// column per action, initialized to zero
type Table struct {
	*mat.Dense
}

// NewTable returns a new zero Table
func NewTable(states, actions int) *Table {
	return &Table{mat.NewDense(states, actions, nil)}
}

// Bind prepares the table to train on env, reinitializing it to zero if
// its dimensions do not match those of env. Bind returns whether the
// table was reinitialized.
func (t *Table) Bind(agentType agent.Type, env environment.Environment) bool {
	r, c := t.Dims()
	if !agent.Rebind(agentType, r, c, env) {
		return false
	}
	t.Dense = mat.NewDense(env.NumStates(), env.NumActions(), nil)
	return true
}

// Row returns the action values of state. The returned slice aliases the
// table.
func (t *Table) Row(state int) []float64 {
	return t.RawRowView(state)
}

// Best returns the greedy action in state among actions
func (t *Table) Best(state int, actions []int) int {
	return policy.Greedy(t.Row(state), actions)
}

// Max returns the greedy value of state among actions, 0 if actions is
// empty
func (t *Table) Max(state int, actions []int) float64 {
	return policy.MaxValue(t.Row(state), actions)
}

// Update moves Q(state, action) a fraction alpha toward target
func (t *Table) Update(state, action int, target, alpha float64) {
	q := t.At(state, action)
	t.Set(state, action, q+alpha*(target-q))
}

// Clone returns a deep copy of the table's values
func (t *Table) Clone() *mat.Dense {
	return mat.DenseCopyOf(t.Dense)
}
