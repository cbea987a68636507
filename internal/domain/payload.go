package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Payload is a JSON document stored in a text column
type Payload []byte

// Value implements driver.Valuer
func (p Payload) Value() (driver.Value, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return string(p), nil
}

// Scan implements sql.Scanner
func (p *Payload) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = nil
	case []byte:
		*p = append(Payload(nil), v...)
	case string:
		*p = Payload(v)
	default:
		return fmt.Errorf("payload: unsupported type %T", src)
	}
	return nil
}

// MarshalJSON emits the stored document as-is
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// UnmarshalJSON keeps a copy of the raw document
func (p *Payload) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = nil
		return nil
	}
	if !json.Valid(data) {
		return fmt.Errorf("payload: invalid JSON")
	}
	*p = append(Payload(nil), data...)
	return nil
}
