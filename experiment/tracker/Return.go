package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Return tracks and saves the episodic returns of an experiment. The
// returns are gob encoded as a []float64 and can be read back with
// LoadData.
type Return struct {
	episodeReturns []float64
	filename       string
}

// NewReturn creates and returns a new *Return Tracker saving to filename
func NewReturn(filename string) *Return {
	return &Return{filename: filename}
}

// Track implements the Tracker interface
func (r *Return) Track(episode int, episodeReturn float64) {
	checkSequential(len(r.episodeReturns), episode)
	r.episodeReturns = append(r.episodeReturns, episodeReturn)
}

// Data returns the tracked returns
func (r *Return) Data() []float64 {
	return append([]float64(nil), r.episodeReturns...)
}

// Save saves the data tracked by the Return Tracker to disk
func (r *Return) Save() error {
	file, err := os.Create(r.filename)
	if err != nil {
		return fmt.Errorf("save: could not open save file: %w", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(r.episodeReturns); err != nil {
		return fmt.Errorf("save: could not encode return data: %w", err)
	}
	return nil
}
