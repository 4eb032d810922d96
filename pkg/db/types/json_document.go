package dbtypes

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONDocument is a raw jsonb column. Drivers hand jsonb back as either
// string or []byte; both are accepted.
type JSONDocument json.RawMessage

func (d *JSONDocument) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = nil
		return nil
	case string:
		*d = JSONDocument(v)
		return nil
	case []byte:
		*d = append(JSONDocument(nil), v...)
		return nil
	default:
		return fmt.Errorf("JSONDocument: unsupported Scan type %T", src)
	}
}

func (d JSONDocument) Value() (driver.Value, error) {
	if d.IsNull() {
		return nil, nil
	}
	if !json.Valid(d) {
		return nil, fmt.Errorf("JSONDocument: invalid json")
	}
	return string(d), nil
}

// IsNull reports whether the column holds no document.
func (d JSONDocument) IsNull() bool {
	trimmed := bytes.TrimSpace(d)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Raw returns the document as json.RawMessage.
func (d JSONDocument) Raw() json.RawMessage {
	return json.RawMessage(d)
}

func (d JSONDocument) MarshalJSON() ([]byte, error) {
	if d.IsNull() {
		return []byte("null"), nil
	}
	return d, nil
}

func (d *JSONDocument) UnmarshalJSON(data []byte) error {
	*d = append((*d)[0:0], data...)
	return nil
}
