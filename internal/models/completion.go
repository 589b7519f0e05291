package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Completions tracks, per requirement name, whether a scout has satisfied it.
type Completions map[string]bool

// Value implements driver.Valuer, storing the map as JSONB.
func (c Completions) Value() (driver.Value, error) {
	if c == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]bool(c))
}

// Scan implements sql.Scanner.
func (c *Completions) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*c = Completions{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan completions: unsupported type %T", src)
	}
	out := Completions{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("scan completions: %w", err)
		}
	}
	*c = out
	return nil
}
