package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONRaw stores an opaque JSON document verbatim. The inbound matcher uses it
// to retain the AI collaborator's parsed proposal output without re-shaping it.
type JSONRaw json.RawMessage

// Value passes the raw document through to Postgres.
func (j JSONRaw) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	if !json.Valid(j) {
		return nil, fmt.Errorf("json raw: invalid document")
	}
	return []byte(j), nil
}

// Scan copies the stored document back out.
func (j *JSONRaw) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("json raw: %w", err)
	}
	buf := make([]byte, len(raw))
	copy(buf, raw)
	*j = buf
	return nil
}

// MarshalJSON renders the document as-is, or null when empty.
func (j JSONRaw) MarshalJSON() ([]byte, error) {
	if len(j) == 0 {
		return []byte("null"), nil
	}
	return j, nil
}

// UnmarshalJSON keeps the incoming document verbatim.
func (j *JSONRaw) UnmarshalJSON(data []byte) error {
	if data == nil {
		*j = nil
		return nil
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	*j = buf
	return nil
}
