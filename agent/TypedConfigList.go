package agent

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// TypedConfigList implements functionality for typing a ConfigList.
// In this way, a ConfigList can explicitly have its type stored so
// that when deserializing the ConfigList, we can deserialize it into
// its concrete type without knowing beforehand or declaring beforehand
// a variable of its concrete type.
type TypedConfigList struct {
	Type
	ConfigList
}

// NewTypedConfigList types the argument ConfigList and returns it
// as a TypedConfigList which explicitly holds its Type.
func NewTypedConfigList(c ConfigList) TypedConfigList {
	return TypedConfigList{Type: c.Type(), ConfigList: c}
}

// UnmarshalJSON implements the json.Unmarshaller interface. Fields
// omitted from the ConfigList take their registered default values.
func (j *TypedConfigList) UnmarshalJSON(data []byte) error {
	configs, typeName, err := unmarshalTyped(data, "Type", "ConfigList")
	if err != nil {
		return err
	}

	list, ok := configs.(ConfigList)
	if !ok {
		return fmt.Errorf("unmarshalJSON: %T is not a ConfigList", configs)
	}

	j.Type = typeName
	j.ConfigList = list

	return nil
}

// At returns the Config at index i in the TypedConfigList
func (t *TypedConfigList) At(i int) Config {
	return ConfigAt(i, t.ConfigList)
}

// unmarshalTyped uses reflection to unmarshal a value registered with
// some Type into its concrete type. Both the value and its Type are
// returned. If valueJsonField names a single Config, the value is the
// concrete Config of the registered ConfigList.
func unmarshalTyped(data []byte, typeJsonField,
	valueJsonField string) (interface{}, Type, error) {
	m := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, "", err
	}

	var name string
	if err := json.Unmarshal(m[typeJsonField], &name); err != nil {
		return nil, "", fmt.Errorf("unmarshal: reading %v: %w", typeJsonField,
			err)
	}
	typeName, err := Lookup(name)
	if err != nil {
		return nil, "", fmt.Errorf("unmarshal: %w", err)
	}

	ty, _ := listType(typeName)
	if valueJsonField == "Config" {
		ty = reflect.TypeOf(reflect.Zero(ty).Interface().(ConfigList).Config())
	}

	// Start from the registered defaults so that omitted fields keep
	// their default values
	value := reflect.New(ty)
	if defaults, err := Default(typeName); err == nil && valueJsonField == "Config" {
		value.Elem().Set(reflect.ValueOf(defaults))
	}

	if raw, ok := m[valueJsonField]; ok {
		if err := json.Unmarshal(raw, value.Interface()); err != nil {
			return nil, "", fmt.Errorf("unmarshal: %v: %w", typeName, err)
		}
	}
	if valueJsonField != "Config" {
		fillDefaults(value.Elem(), typeName)
	}

	return value.Elem().Interface(), typeName, nil
}

// fillDefaults sets every empty field of the ConfigList list to a copy of
// the values registered for agentType
func fillDefaults(list reflect.Value, agentType Type) {
	defaults := reflect.ValueOf(registeredTypes[agentType])
	for f := 0; f < list.NumField(); f++ {
		field := list.Field(f)
		if field.Len() > 0 {
			continue
		}
		values := defaults.Field(f)
		field.Set(reflect.AppendSlice(
			reflect.MakeSlice(values.Type(), 0, values.Len()), values))
	}
}
