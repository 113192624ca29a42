// Package gridworld implements 2D gridworld environments
package gridworld

import (
	"fmt"
	"io"
	"strings"

	"github.com/samuelfneumann/rllab/environment"
)

// Actions in a gridworld. Moves which would leave the grid are not
// available.
const (
	Up int = iota
	Right
	Down
	Left
)

// Default layout
const (
	DefaultRows int = 4
	DefaultCols int = 4
)

// GridWorld represents a gridworld environment
//
// A gridworld is represented as a flattened matrix, but in this
// implementation only the matrix dimensions and current agent position
// are tracked. Cell (x, y) has state id y*cols + x, so x indexes columns
// and y indexes rows with (0, 0) at the top left.
type GridWorld struct {
	task *Goal
	environment.Starter
	r, c     int
	position int
}

// New creates a new gridworld with r rows and c columns, task t, and
// starting position distribution s
func New(r, c int, t *Goal, s environment.Starter) (*GridWorld, error) {
	if r < 1 || c < 1 || r*c < 2 {
		return nil, fmt.Errorf("new: invalid dimensions (%d, %d)", r, c)
	}
	if t.r != r || t.c != c {
		return nil, fmt.Errorf("new: task dimensions (%d, %d) do not match "+
			"gridworld (%d, %d)", t.r, t.c, r, c)
	}

	g := &GridWorld{task: t, Starter: s, r: r, c: c}
	return g, g.Reset()
}

// NewDefault creates a gridworld with r rows and c columns, starting at
// (1, 1), with a goal worth +1 at (0, 0) and a trap worth -1 in the
// bottom right corner
func NewDefault(r, c int) (*GridWorld, error) {
	task, err := NewGoal([]int{0, c - 1}, []int{0, r - 1},
		[]float64{1.0, -1.0}, r, c)
	if err != nil {
		return nil, fmt.Errorf("newDefault: %w", err)
	}

	start, err := NewSingleStart(1, 1, r, c)
	if err != nil {
		return nil, fmt.Errorf("newDefault: %w", err)
	}

	return New(r, c, task, start)
}

// Default returns the classic 4x4 gridworld
func Default() *GridWorld {
	g, err := NewDefault(DefaultRows, DefaultCols)
	if err != nil {
		panic(err)
	}
	return g
}

// Dims gets the rows and columns of the GridWorld
func (g *GridWorld) Dims() (r, c int) {
	return g.r, g.c
}

// Reset implements the environment.Environment interface
func (g *GridWorld) Reset() error {
	start := g.Start()
	if start < 0 || start >= g.r*g.c {
		return fmt.Errorf("reset: start cell %d out of bounds", start)
	}
	if g.task.AtGoal(start) {
		return fmt.Errorf("reset: start cell %d is terminal", start)
	}
	g.position = start
	return nil
}

// StateID implements the environment.Environment interface
func (g *GridWorld) StateID() int {
	return g.position
}

// NumStates implements the environment.Environment interface
func (g *GridWorld) NumStates() int {
	return g.r * g.c
}

// NumActions implements the environment.Environment interface
func (g *GridWorld) NumActions() int {
	return 4
}

// AvailableActions implements the environment.Environment interface
func (g *GridWorld) AvailableActions() []int {
	return g.actions(g.position)
}

func (g *GridWorld) actions(cell int) []int {
	if g.task.AtGoal(cell) {
		return []int{}
	}

	x, y := indToC(cell, g.c)
	actions := make([]int, 0, 4)
	if y > 0 {
		actions = append(actions, Up)
	}
	if x < g.c-1 {
		actions = append(actions, Right)
	}
	if y < g.r-1 {
		actions = append(actions, Down)
	}
	if x > 0 {
		actions = append(actions, Left)
	}
	return actions
}

// IsGameOver implements the environment.Environment interface
func (g *GridWorld) IsGameOver() bool {
	return g.task.AtGoal(g.position)
}

// Score implements the environment.Environment interface
func (g *GridWorld) Score() float64 {
	return g.task.Score(g.position)
}

// Step implements the environment.Environment interface
func (g *GridWorld) Step(action int) error {
	if err := environment.ValidateStep(g, action); err != nil {
		return err
	}
	g.position = g.next(g.position, action)
	return nil
}

// next returns the cell reached by taking a legal action in cell
func (g *GridWorld) next(cell, action int) int {
	x, y := indToC(cell, g.c)

	switch action {
	case Up:
		y--
	case Right:
		x++
	case Down:
		y++
	case Left:
		x--
	}
	return cToInd(x, y, g.c)
}

// Coordinates returns the (x, y) coordinates of the agent
func (g *GridWorld) Coordinates() (int, int) {
	return indToC(g.position, g.c)
}

// TransitionProbabilities implements the environment.Modeler interface
func (g *GridWorld) TransitionProbabilities() [][][]float64 {
	n := g.NumStates()
	p := make([][][]float64, n)
	for s := range p {
		p[s] = make([][]float64, g.NumActions())
		for a := range p[s] {
			p[s][a] = make([]float64, n)
		}
		for _, a := range g.actions(s) {
			p[s][a][g.next(s, a)] = 1.0
		}
	}
	return p
}

// RewardFunction implements the environment.Modeler interface
func (g *GridWorld) RewardFunction() [][]float64 {
	r := make([][]float64, g.NumStates())
	for s := range r {
		r[s] = make([]float64, g.NumActions())
		for _, a := range g.actions(s) {
			r[s][a] = g.task.Score(g.next(s, a))
		}
	}
	return r
}

// Display implements the environment.Environment interface
func (g *GridWorld) Display(w io.Writer) error {
	var b strings.Builder
	for y := 0; y < g.r; y++ {
		for x := 0; x < g.c; x++ {
			ind := cToInd(x, y, g.c)
			switch {
			case ind == g.position:
				b.WriteByte('X')
			case g.task.AtGoal(ind) && g.task.Score(ind) > 0:
				b.WriteByte('G')
			case g.task.AtGoal(ind):
				b.WriteByte('T')
			default:
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	_, err := fmt.Fprintf(w, "%vScore: %.0f\n", b.String(), g.Score())
	return err
}

func (g *GridWorld) String() string {
	return fmt.Sprintf("GridWorld%dx%d", g.r, g.c)
}

func cToInd(x, y, c int) int {
	return y*c + x
}

func indToC(ind, c int) (int, int) {
	y := ind / c
	x := ind - (y * c)
	return x, y
}
