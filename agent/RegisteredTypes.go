package agent

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Type represents a specific type of an agent Config.
// Config's with this type can create Agents of the corresponding type.
type Type string

const (
	// Tabular temporal difference methods
	QLearning Type = "QLearning"
	SARSA     Type = "SARSA"
	DynaQ     Type = "DynaQ"

	// Monte-Carlo control
	OnPolicyMC  Type = "OnPolicyMC"
	OffPolicyMC Type = "OffPolicyMC"

	// Dynamic programming
	PolicyIteration Type = "PolicyIteration"
	ValueIteration  Type = "ValueIteration"

	// Linear methods
	SemiGradientSARSA Type = "SemiGradientSARSA"
	LinearDQN         Type = "LinearDQN"

	// Policy gradient
	REINFORCE Type = "REINFORCE"
)

// Registered types with the package. Once a Type has been registered
// with this map, a Config or ConfigList with that type can be created.
//
// No Type's are registered with this package upon initialization.
// Each separate package is in charge of registering its Type with
// the package separately to avoid circular imports.
var registeredTypes map[Type]ConfigList

func init() {
	registeredTypes = make(map[Type]ConfigList)
}

// Register registers an agent's Type with a concrete ConfigList so that
// upon deserialization of a TypedConfigList or TypedConfig, values of
// type agentType are deserialized into the concrete type of configs.
//
// The registered list also provides the default hyperparameters of the
// Type: its first Config is returned by Default.
func Register(agentType Type, defaults ConfigList) {
	log.WithField("agent", agentType).Trace("registering agent type")
	registeredTypes[agentType] = defaults
}

// Lookup returns the canonical registered Type matching name, ignoring
// case
func Lookup(name string) (Type, error) {
	for t := range registeredTypes {
		if strings.EqualFold(string(t), name) {
			return t, nil
		}
	}
	return "", fmt.Errorf("lookup: no agent type %q registered", name)
}

// Default returns the default Config of a registered Type
func Default(agentType Type) (Config, error) {
	defaults, ok := registeredTypes[agentType]
	if !ok {
		return nil, fmt.Errorf("default: no agent type %q registered",
			agentType)
	}
	return ConfigAt(0, defaults), nil
}

// Registered returns the names of all registered Types in sorted order
func Registered() []string {
	names := make([]string, 0, len(registeredTypes))
	for t := range registeredTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// listType returns the concrete type of ConfigList registered with a
// Type
func listType(agentType Type) (reflect.Type, bool) {
	defaults, ok := registeredTypes[agentType]
	if !ok {
		return nil, false
	}
	return reflect.TypeOf(defaults), true
}
