package gridworld

import (
	"fmt"
	"strings"
)

// Goal represents the task of reaching terminal cells in a GridWorld.
// Each terminal cell carries the score the episode ends with when the
// agent enters it.
type Goal struct {
	// cell index -> terminal score
	cells map[int]float64
	order []int

	r, c int // total rows and columns in environment
}

// NewGoal creates and returns a new task whose terminal cells are at
// positions (x[i], y[i]) with score scores[i], given that the gridworld
// has r rows and c columns
func NewGoal(x, y []int, scores []float64, r, c int) (*Goal, error) {
	if len(x) != len(y) || len(x) != len(scores) {
		return nil, fmt.Errorf("newGoal: x length (%d), y length (%d) and "+
			"scores length (%d) differ", len(x), len(y), len(scores))
	}

	g := &Goal{cells: make(map[int]float64, len(x)), r: r, c: c}
	for i := range x {
		// Ensure that the goal is within the proper bounds
		if x[i] < 0 || x[i] >= c {
			return nil, fmt.Errorf("newGoal: x[%d] = %d outside cols = %d",
				i, x[i], c)
		} else if y[i] < 0 || y[i] >= r {
			return nil, fmt.Errorf("newGoal: y[%d] = %d outside rows = %d",
				i, y[i], r)
		}

		ind := cToInd(x[i], y[i], c)
		if _, ok := g.cells[ind]; ok {
			return nil, fmt.Errorf("newGoal: duplicate cell (%d, %d)", x[i],
				y[i])
		}
		g.cells[ind] = scores[i]
		g.order = append(g.order, ind)
	}

	return g, nil
}

// AtGoal returns whether the cell is terminal
func (g *Goal) AtGoal(cell int) bool {
	_, ok := g.cells[cell]
	return ok
}

// Score returns the score of being in cell
func (g *Goal) Score(cell int) float64 {
	return g.cells[cell]
}

func (g *Goal) String() string {
	parts := make([]string, len(g.order))
	for i, ind := range g.order {
		x, y := indToC(ind, g.c)
		parts[i] = fmt.Sprintf("(%d, %d): %+.0f", x, y, g.cells[ind])
	}
	return strings.Join(parts, ", ")
}
