// Package lineworld implements a one-dimensional corridor with an
// absorbing cell at each end.
//
// The agent starts in the middle cell and can move left (action 0) or
// right (action 1). Entering the leftmost cell ends the episode with a
// score of -1, entering the rightmost cell ends it with a score of +1.
package lineworld

import (
	"fmt"
	"io"
	"strings"

	"github.com/samuelfneumann/rllab/environment"
)

const (
	Left int = iota
	Right
)

const (
	// DefaultCells is the number of cells in the classic line world
	DefaultCells int = 5

	LoseScore float64 = -1.0
	WinScore  float64 = 1.0
)

// LineWorld implements the line world environment
type LineWorld struct {
	cells    int
	start    int
	position int
}

// New returns a new line world with the given number of cells. The
// agent starts in the middle cell.
func New(cells int) (*LineWorld, error) {
	if cells < 3 {
		return nil, fmt.Errorf("new: line world needs at least 3 cells, "+
			"have %v", cells)
	}

	l := &LineWorld{cells: cells, start: cells / 2}
	return l, l.Reset()
}

// Default returns the classic 5-cell line world starting in cell 2
func Default() *LineWorld {
	l, err := New(DefaultCells)
	if err != nil {
		panic(err)
	}
	return l
}

// Reset implements the environment.Environment interface
func (l *LineWorld) Reset() error {
	l.position = l.start
	return nil
}

// StateID implements the environment.Environment interface
func (l *LineWorld) StateID() int {
	return l.position
}

// NumStates implements the environment.Environment interface
func (l *LineWorld) NumStates() int {
	return l.cells
}

// NumActions implements the environment.Environment interface
func (l *LineWorld) NumActions() int {
	return 2
}

// AvailableActions implements the environment.Environment interface
func (l *LineWorld) AvailableActions() []int {
	if l.IsGameOver() {
		return []int{}
	}
	return []int{Left, Right}
}

// IsGameOver implements the environment.Environment interface
func (l *LineWorld) IsGameOver() bool {
	return l.terminal(l.position)
}

func (l *LineWorld) terminal(cell int) bool {
	return cell == 0 || cell == l.cells-1
}

// Score implements the environment.Environment interface
func (l *LineWorld) Score() float64 {
	return l.scoreAt(l.position)
}

func (l *LineWorld) scoreAt(cell int) float64 {
	switch cell {
	case 0:
		return LoseScore
	case l.cells - 1:
		return WinScore
	}
	return 0.0
}

// Step implements the environment.Environment interface
func (l *LineWorld) Step(action int) error {
	if err := environment.ValidateStep(l, action); err != nil {
		return err
	}
	l.position = l.next(l.position, action)
	return nil
}

func (l *LineWorld) next(cell, action int) int {
	if action == Left {
		return cell - 1
	}
	return cell + 1
}

// TransitionProbabilities implements the environment.Modeler interface
func (l *LineWorld) TransitionProbabilities() [][][]float64 {
	p := make([][][]float64, l.cells)
	for s := range p {
		p[s] = make([][]float64, l.NumActions())
		for a := range p[s] {
			p[s][a] = make([]float64, l.cells)
			if !l.terminal(s) {
				p[s][a][l.next(s, a)] = 1.0
			}
		}
	}
	return p
}

// RewardFunction implements the environment.Modeler interface
func (l *LineWorld) RewardFunction() [][]float64 {
	r := make([][]float64, l.cells)
	for s := range r {
		r[s] = make([]float64, l.NumActions())
		if l.terminal(s) {
			continue
		}
		for a := range r[s] {
			r[s][a] = l.scoreAt(l.next(s, a))
		}
	}
	return r
}

// Display implements the environment.Environment interface
func (l *LineWorld) Display(w io.Writer) error {
	var b strings.Builder
	for i := 0; i < l.cells; i++ {
		switch {
		case i == l.position:
			b.WriteByte('X')
		case l.terminal(i):
			b.WriteByte('T')
		default:
			b.WriteByte('_')
		}
	}
	_, err := fmt.Fprintf(w, "%v  |  Score: %.0f\n", b.String(), l.Score())
	return err
}

func (l *LineWorld) String() string {
	return fmt.Sprintf("LineWorld%d", l.cells)
}
