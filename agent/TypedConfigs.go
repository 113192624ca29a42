package agent

import (
	"encoding/json"
	"fmt"
)

// TypedConfig wraps a single Config together with its Type so that it
// can be JSON marshaled and unmarshaled into its underlying concrete
// type, for example:
//
//	{"Type": "QLearning", "Config": {"Alpha": 0.1, "Epsilon": 0.1}}
//
// Fields omitted from the Config take their registered default values.
type TypedConfig struct {
	Type
	Config
}

// NewTypedConfig types the argument Config
func NewTypedConfig(c Config) TypedConfig {
	return TypedConfig{Type: c.Type(), Config: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface
func (t *TypedConfig) UnmarshalJSON(data []byte) error {
	value, typeName, err := unmarshalTyped(data, "Type", "Config")
	if err != nil {
		return err
	}

	config, ok := value.(Config)
	if !ok {
		return fmt.Errorf("unmarshalJSON: %T is not a Config", value)
	}

	t.Type = typeName
	t.Config = config
	return nil
}

// MarshalJSON implements the json.Marshaler interface
func (t TypedConfig) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type   Type
		Config Config
	}{t.Type, t.Config})
}
