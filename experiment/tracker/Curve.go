package tracker

import (
	"fmt"
	"image/color"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Curve tracks episodic returns and saves them as a PNG learning curve.
// The raw returns are drawn together with their moving average over a
// window of episodes.
type Curve struct {
	returns  []float64
	window   int
	title    string
	filename string
}

// NewCurve returns a new Curve which saves its plot to filename. A
// window less than 1 draws only the raw returns.
func NewCurve(filename, title string, window int) *Curve {
	return &Curve{window: window, title: title, filename: filename}
}

// Track implements the Tracker interface
func (c *Curve) Track(episode int, episodeReturn float64) {
	checkSequential(len(c.returns), episode)
	c.returns = append(c.returns, episodeReturn)
}

// MovingAverage returns the mean of each trailing window of data. The
// first window-1 points average over the data seen so far.
func MovingAverage(data []float64, window int) []float64 {
	avg := make([]float64, len(data))
	for i := range data {
		start := max(0, i-window+1)
		avg[i] = stat.Mean(data[start:i+1], nil)
	}
	return avg
}

// Save implements the Tracker interface
func (c *Curve) Save() error {
	p := plot.New()
	p.Title.Text = c.title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Return"

	raw, err := plotter.NewLine(points(c.returns))
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}
	raw.Color = color.Gray{Y: 180}
	p.Add(raw)
	p.Legend.Add("return", raw)

	if c.window > 1 && len(c.returns) > 0 {
		smooth, err := plotter.NewLine(points(MovingAverage(c.returns,
			c.window)))
		if err != nil {
			return fmt.Errorf("save: %w", err)
		}
		smooth.Color = color.RGBA{B: 200, A: 255}
		smooth.Width = vg.Points(2)
		p.Add(smooth)
		p.Legend.Add(fmt.Sprintf("mean of %v", c.window), smooth)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, c.filename); err != nil {
		return fmt.Errorf("save: %w", err)
	}
	return nil
}

func points(data []float64) plotter.XYs {
	xys := make(plotter.XYs, len(data))
	for i, y := range data {
		xys[i] = plotter.XY{X: float64(i), Y: y}
	}
	return xys
}
