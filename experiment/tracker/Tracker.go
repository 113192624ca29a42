// Package tracker implements Trackers, which track and save data of
// the episodes of an experiment
package tracker

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Tracker keeps track of experiment data and saves the data after the
// experiment has finished
type Tracker interface {
	// Track records the return of an episode. Episodes must be tracked
	// in order, starting from 0.
	Track(episode int, episodeReturn float64)

	// Save writes all tracked data
	Save() error
}

// checkSequential panics if episode does not follow the tracked episodes
func checkSequential(tracked, episode int) {
	if episode != tracked {
		panic(fmt.Sprintf("track: episodes tracked are not sequential: "+
			"episode %v --> episode %v", tracked-1, episode))
	}
}

// LoadData loads and returns the data saved by a Return Tracker
func LoadData(filename string) ([]float64, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("loadData: %w", err)
	}
	defer file.Close()

	var data []float64
	if err := gob.NewDecoder(file).Decode(&data); err != nil {
		return nil, fmt.Errorf("loadData: could not decode data: %w", err)
	}
	return data, nil
}
