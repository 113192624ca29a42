package agent

import (
	"fmt"
	"reflect"

	"github.com/samuelfneumann/rllab/environment"
)

// Config represents a configuration for creating an agent
type Config interface {
	// CreateAgent creates the agent that the config describes
	CreateAgent(env environment.Environment, seed uint64) (Agent, error)

	// ValidAgent returns whether the argument agent is valid for the
	// Config
	ValidAgent(Agent) bool

	// Validate returns an error describing whether or not the
	// configuration is valid or not.
	Validate() error

	// Type returns the type of agent constructed by the Config
	Type() Type
}

// ConfigList implements functionality for storing a number of Config's
// in a simple manner. Instead of storing a slice of Configs, the
// ConfigList stores each field's values as a slice and constructs the
// list by every combination of field values.
//
// A concrete ConfigList must be a struct whose fields are all slices,
// each named after a field of the concrete Config it produces.
type ConfigList interface {
	// Config returns an empty Config of the type stored by the list
	Config() Config

	// Type returns the type of agent described by the list's Configs
	Type() Type

	// NumFields returns the number of settable fields
	NumFields() int

	// Len returns the number of Configs stored by the list
	Len() int
}

// ConfigAt returns the Config at index i in the ConfigList. The first
// field of the list varies slowest.
func ConfigAt(i int, c ConfigList) Config {
	if i < 0 || i >= c.Len() {
		panic(fmt.Sprintf("configAt: index %v out of range [0, %v)", i,
			c.Len()))
	}

	list := reflect.ValueOf(c)
	config := reflect.New(reflect.TypeOf(c.Config())).Elem()

	for f := list.NumField() - 1; f >= 0; f-- {
		values := list.Field(f)
		name := list.Type().Field(f).Name
		n := values.Len()

		field := config.FieldByName(name)
		if !field.IsValid() {
			panic(fmt.Sprintf("configAt: config %T has no field %v",
				c.Config(), name))
		}
		field.Set(values.Index(i % n))
		i /= n
	}

	return config.Interface().(Config)
}

// Len returns the number of combinations of the field values of a
// ConfigList struct. Concrete ConfigLists use it to implement Len.
func Len(c ConfigList) int {
	list := reflect.ValueOf(c)
	if list.NumField() == 0 {
		return 0
	}

	total := 1
	for f := 0; f < list.NumField(); f++ {
		total *= list.Field(f).Len()
	}
	return total
}
