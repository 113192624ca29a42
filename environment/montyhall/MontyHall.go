// Package montyhall implements the Monty Hall game show with any number
// of doors.
//
// An episode has two decisions. First the agent picks one of the doors,
// after which the host opens a different door that does not hide the
// prize. The agent then either keeps its door (action Keep) or switches
// to the lowest-numbered door that is still closed (action Switch). The
// score is 1 if the final door hides the prize and 0 otherwise.
//
// The prize position is never part of the state. States are numbered as
// follows, with N doors:
//
//	0                      before the first choice
//	1 + chosen*N + opened  after the host has opened a door
//	1 + N*N                game over, prize missed
//	2 + N*N                game over, prize won
package montyhall

import (
	"fmt"
	"io"

	"golang.org/x/exp/rand"

	"github.com/samuelfneumann/rllab/environment"
)

// Second decision actions
const (
	Keep int = iota
	Switch
)

const (
	// ClassicDoors is the number of doors in the classic paradox
	ClassicDoors int = 3

	// ExtendedDoors is the number of doors in the extended paradox
	ExtendedDoors int = 5
)

const none = -1

// MontyHall implements the Monty Hall environment
type MontyHall struct {
	doors   int
	prize   environment.Starter
	rng     *rand.Rand
	winning int
	chosen  int
	opened  int
	final   int
}

// New returns a new game with the given number of doors. The prize
// position and the host's choices are drawn from sources seeded with
// seed.
func New(doors int, seed uint64) (*MontyHall, error) {
	if doors < 3 {
		return nil, fmt.Errorf("new: need at least 3 doors, have %v", doors)
	}

	m := &MontyHall{
		doors: doors,
		prize: environment.NewUniformCategoricalStarter(doors, seed),
		rng:   rand.New(rand.NewSource(seed + 1)),
	}
	return m, m.Reset()
}

// Reset implements the environment.Environment interface
func (m *MontyHall) Reset() error {
	m.winning = m.prize.Start()
	m.chosen, m.opened, m.final = none, none, none
	return nil
}

// Doors returns the number of doors in the game
func (m *MontyHall) Doors() int {
	return m.doors
}

// StateID implements the environment.Environment interface
func (m *MontyHall) StateID() int {
	switch {
	case m.final != none && m.final == m.winning:
		return m.wonState()
	case m.final != none:
		return m.lostState()
	case m.chosen != none:
		return m.revealState(m.chosen, m.opened)
	}
	return 0
}

func (m *MontyHall) revealState(chosen, opened int) int {
	return 1 + chosen*m.doors + opened
}

func (m *MontyHall) lostState() int {
	return 1 + m.doors*m.doors
}

func (m *MontyHall) wonState() int {
	return 2 + m.doors*m.doors
}

// NumStates implements the environment.Environment interface
func (m *MontyHall) NumStates() int {
	return m.doors*m.doors + 3
}

// NumActions implements the environment.Environment interface
func (m *MontyHall) NumActions() int {
	return m.doors
}

// AvailableActions implements the environment.Environment interface
func (m *MontyHall) AvailableActions() []int {
	switch {
	case m.final != none:
		return []int{}
	case m.chosen != none:
		return []int{Keep, Switch}
	}

	actions := make([]int, m.doors)
	for i := range actions {
		actions[i] = i
	}
	return actions
}

// IsGameOver implements the environment.Environment interface
func (m *MontyHall) IsGameOver() bool {
	return m.final != none
}

// Score implements the environment.Environment interface
func (m *MontyHall) Score() float64 {
	if m.final != none && m.final == m.winning {
		return 1.0
	}
	return 0.0
}

// Step implements the environment.Environment interface
func (m *MontyHall) Step(action int) error {
	if err := environment.ValidateStep(m, action); err != nil {
		return err
	}

	if m.chosen == none {
		m.chosen = action

		// The host opens a door that is neither chosen nor the prize
		candidates := make([]int, 0, m.doors-1)
		for d := 0; d < m.doors; d++ {
			if d != m.chosen && d != m.winning {
				candidates = append(candidates, d)
			}
		}
		m.opened = candidates[m.rng.Intn(len(candidates))]
		return nil
	}

	if action == Switch {
		m.final = m.switchTo(m.chosen, m.opened)
	} else {
		m.final = m.chosen
	}
	return nil
}

// switchTo returns the lowest-numbered door that is neither chosen nor
// opened
func (m *MontyHall) switchTo(chosen, opened int) int {
	for d := 0; d < m.doors; d++ {
		if d != chosen && d != opened {
			return d
		}
	}
	panic("switchTo: no closed door to switch to")
}

// winProbabilities returns the probability of winning by keeping and by
// switching once the host has opened a door
func (m *MontyHall) winProbabilities() (keep, change float64) {
	n := float64(m.doors)
	return 1 / n, (n - 1) / (n * (n - 2))
}

// TransitionProbabilities implements the environment.Modeler interface.
//
// Whatever door is chosen first, the host opens each of the other doors
// with probability 1/(N-1).
func (m *MontyHall) TransitionProbabilities() [][][]float64 {
	n := m.NumStates()
	p := make([][][]float64, n)
	for s := range p {
		p[s] = make([][]float64, m.NumActions())
		for a := range p[s] {
			p[s][a] = make([]float64, n)
		}
	}

	reveal := 1 / float64(m.doors-1)
	for c := 0; c < m.doors; c++ {
		for o := 0; o < m.doors; o++ {
			if o != c {
				p[0][c][m.revealState(c, o)] = reveal
			}
		}
	}

	keep, change := m.winProbabilities()
	for c := 0; c < m.doors; c++ {
		for o := 0; o < m.doors; o++ {
			if o == c {
				continue
			}
			s := m.revealState(c, o)
			p[s][Keep][m.wonState()] = keep
			p[s][Keep][m.lostState()] = 1 - keep
			p[s][Switch][m.wonState()] = change
			p[s][Switch][m.lostState()] = 1 - change
		}
	}
	return p
}

// RewardFunction implements the environment.Modeler interface
func (m *MontyHall) RewardFunction() [][]float64 {
	r := make([][]float64, m.NumStates())
	for s := range r {
		r[s] = make([]float64, m.NumActions())
	}

	keep, change := m.winProbabilities()
	for c := 0; c < m.doors; c++ {
		for o := 0; o < m.doors; o++ {
			if o == c {
				continue
			}
			s := m.revealState(c, o)
			r[s][Keep] = keep
			r[s][Switch] = change
		}
	}
	return r
}

// RunPolicy implements the environment.PolicyRunner interface. A game
// always ends after two decisions so no step bound is needed.
func (m *MontyHall) RunPolicy(policy []int) (float64, error) {
	return environment.Rollout(m, policy, 2)
}

// Display implements the environment.Environment interface
func (m *MontyHall) Display(w io.Writer) error {
	doors := make([]byte, m.doors)
	for d := range doors {
		switch {
		case d == m.final:
			doors[d] = 'F'
		case d == m.opened:
			doors[d] = 'O'
		case d == m.chosen:
			doors[d] = 'C'
		default:
			doors[d] = '#'
		}
	}
	_, err := fmt.Fprintf(w, "Doors: %s  |  Score: %.0f\n", doors, m.Score())
	return err
}

func (m *MontyHall) String() string {
	return fmt.Sprintf("MontyHall%d", m.doors)
}
