package expreplay

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// SelectorType names a method of choosing data from a buffer
type SelectorType string

const (
	Uniform SelectorType = "Uniform"
	Fifo    SelectorType = "Fifo"
)

// Selector implements functionality for choosing which data should be
// sampled from an experience replay buffer
type Selector interface {
	// choose selects positions, counted in insertion order from the
	// oldest element, of the n elements in a buffer
	choose(n int, src rand.Source) []int

	// BatchSize returns the number of elements that will be selected
	BatchSize() int
}

// CreateSelector returns a new Selector of the given type
func CreateSelector(t SelectorType, batchSize int) (Selector, error) {
	switch t {
	case Uniform, "":
		return NewUniformSelector(batchSize), nil
	case Fifo:
		return NewFifoSelector(batchSize), nil
	}
	return nil, fmt.Errorf("createSelector: no such selector %q", t)
}

// uniformSelector is a Selector which selects data from an experience
// replay buffer uniformly randomly without replacement
type uniformSelector struct {
	samples int
}

// NewUniformSelector returns a new Selector which selects data uniformly
// randomly from an experience replay buffer
func NewUniformSelector(samples int) Selector {
	return &uniformSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (u *uniformSelector) BatchSize() int {
	return u.samples
}

// choose selects a number of distinct positions at which to draw data
// from the buffer
func (u *uniformSelector) choose(n int, src rand.Source) []int {
	selected := make([]int, min(u.BatchSize(), n))
	sampleuv.WithoutReplacement(selected, n, src)
	return selected
}

// fifoSelector is a Selector which selects the oldest data in an
// experience replay buffer
type fifoSelector struct {
	samples int
}

// NewFifoSelector returns a new Selector which draws data from an
// experience replay buffer first-in-first-out
func NewFifoSelector(samples int) Selector {
	return &fifoSelector{samples: samples}
}

// BatchSize gets the number of samples in a batch drawn from the buffer
func (f *fifoSelector) BatchSize() int {
	return f.samples
}

// choose selects the positions of the oldest elements in the buffer
func (f *fifoSelector) choose(n int, _ rand.Source) []int {
	selected := make([]int, min(f.BatchSize(), n))
	for i := range selected {
		selected[i] = i
	}
	return selected
}
