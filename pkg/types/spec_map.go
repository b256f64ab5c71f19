package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
)

// SpecMap holds free-form item specifications persisted as JSONB.
type SpecMap map[string]string

// Value marshals the map into JSON for Postgres.
func (m SpecMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Scan decodes JSONB into the map.
func (m *SpecMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("spec map: %w", err)
	}

	result := make(SpecMap)
	if err := json.Unmarshal(raw, &result); err != nil {
		return err
	}
	*m = result
	return nil
}

// UnmarshalJSON accepts scalar values of any JSON type and coerces them to
// strings, since extracted specifications often mix numbers and text.
func (m *SpecMap) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	result := make(SpecMap, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			result[key] = v
		case nil:
			result[key] = ""
		case float64:
			result[key] = trimFloat(v)
		default:
			buf, err := json.Marshal(v)
			if err != nil {
				return err
			}
			result[key] = string(buf)
		}
	}
	*m = result
	return nil
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
