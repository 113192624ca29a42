package experiment

import (
	"context"
	"fmt"
	"io"

	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"github.com/samuelfneumann/rllab/agent"
	"github.com/samuelfneumann/rllab/utils/progressbar"
)

// progressWidth is the width in characters of the sweep progress bar
const progressWidth = 40

// Sweep runs the experiment of c once for each of c.Runs seeds, c.Seed,
// c.Seed+1, ... Runs are independent: nothing is loaded from or saved
// to a store. If progress is not nil, a progress bar is drawn to it.
//
// Sweep checks ctx between runs and returns the results of the runs
// completed so far together with the context's error once it is done.
func Sweep(ctx context.Context, c Config, progress io.Writer) ([]Result,
	error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	runs := max(c.Runs, 1)

	var bar *progressbar.ManualProgressBar
	if progress != nil {
		bar = progressbar.NewManualProgressBar(progress, progressWidth, runs)
		bar.Display()
		defer bar.Close()
	}

	results := make([]Result, 0, runs)
	for i := 0; i < runs; i++ {
		if err := ctx.Err(); err != nil {
			log.WithField("completed", len(results)).Warn("sweep cancelled")
			return results, fmt.Errorf("sweep: %w", err)
		}

		exp, err := c.CreateExp(c.Seed+uint64(i), nil)
		if err != nil {
			return results, fmt.Errorf("sweep: %w", err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("sweep: run %v: %w", i, err)
		}
		results = append(results, result)

		if bar != nil {
			bar.Increment()
			bar.Display()
		}
	}
	return results, nil
}

// GridResult holds the runs of a single agent configuration of a grid
type GridResult struct {
	Index   int
	Agent   agent.Config
	Results []Result
}

// Summary returns the Summary of the runs
func (g GridResult) Summary() Summary {
	return Summarize(g.Results)
}

// SweepGrid runs Sweep for every agent configuration of c.Grid, in
// order. If progress is not nil, a progress bar over the configurations
// is drawn to it.
func SweepGrid(ctx context.Context, c Config, progress io.Writer) (
	[]GridResult, error) {
	if c.Grid == nil {
		return nil, fmt.Errorf("sweepGrid: no agent grid configured")
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("sweepGrid: %w", err)
	}
	n := c.Grid.Len()

	var bar *progressbar.ManualProgressBar
	if progress != nil {
		bar = progressbar.NewManualProgressBar(progress, progressWidth, n)
		bar.Display()
		defer bar.Close()
	}

	grid := make([]GridResult, 0, n)
	for i := 0; i < n; i++ {
		point, err := c.At(i)
		if err != nil {
			return grid, fmt.Errorf("sweepGrid: %w", err)
		}
		log.WithFields(log.Fields{
			"index":  i,
			"config": point.Agent.Config,
		}).Debug("sweeping agent configuration")

		results, err := Sweep(ctx, point, nil)
		if err != nil {
			return grid, fmt.Errorf("sweepGrid: configuration %v: %w", i, err)
		}
		grid = append(grid, GridResult{i, point.Agent.Config, results})

		if bar != nil {
			bar.Increment()
			bar.Display()
		}
	}
	return grid, nil
}

// Best returns the configuration of grid with the highest mean training
// return, the first such one on ties. It reports false if grid is empty.
func Best(grid []GridResult) (GridResult, bool) {
	if len(grid) == 0 {
		return GridResult{}, false
	}
	best := grid[0]
	for _, g := range grid[1:] {
		if g.Summary().MeanReturn > best.Summary().MeanReturn {
			best = g
		}
	}
	return best, true
}

// Summary summarizes the results of a number of runs
type Summary struct {
	Runs int

	// Mean and standard deviation over runs of the mean training return
	MeanReturn, StdReturn float64

	// Mean and standard deviation over runs of the greedy return
	MeanGreedy, StdGreedy float64
}

func (s Summary) String() string {
	return fmt.Sprintf("Runs: %v | Return: %.3f ± %.3f | Greedy: %.3f ± %.3f",
		s.Runs, s.MeanReturn, s.StdReturn, s.MeanGreedy, s.StdGreedy)
}

// Summarize returns the Summary of results. The standard deviations of
// a single run are 0.
func Summarize(results []Result) Summary {
	s := Summary{Runs: len(results)}
	if len(results) == 0 {
		return s
	}

	returns := make([]float64, len(results))
	greedy := make([]float64, len(results))
	for i, r := range results {
		returns[i] = r.MeanReturn()
		greedy[i] = r.Greedy
	}

	s.MeanReturn, s.StdReturn = meanStd(returns)
	s.MeanGreedy, s.StdGreedy = meanStd(greedy)
	return s
}

func meanStd(x []float64) (mean, std float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// MeanCurve returns the mean over results of the return of each
// training episode. Episodes missing from some runs are averaged over
// the runs which have them.
func MeanCurve(results []Result) []float64 {
	length := 0
	for _, r := range results {
		length = max(length, len(r.Returns))
	}

	curve := make([]float64, length)
	counts := make([]float64, length)
	for _, r := range results {
		for i, ret := range r.Returns {
			curve[i] += ret
			counts[i]++
		}
	}
	for i := range curve {
		curve[i] /= counts[i]
	}
	return curve
}
