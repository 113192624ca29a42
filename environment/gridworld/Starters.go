package gridworld

import (
	"fmt"

	"github.com/samuelfneumann/rllab/environment"
)

// NewSingleStart returns a Starter which always starts the agent at
// (x, y) in a gridworld with r rows and c columns
func NewSingleStart(x, y, r, c int) (environment.Starter, error) {
	if x < 0 || x >= c {
		return nil, fmt.Errorf("newSingleStart: x = %d outside cols = %d",
			x, c)
	} else if y < 0 || y >= r {
		return nil, fmt.Errorf("newSingleStart: y = %d outside rows = %d",
			y, r)
	}

	return environment.FixedStarter(cToInd(x, y, c)), nil
}
