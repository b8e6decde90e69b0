package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString is a PATCH field that can be absent, null or a string.
// For an item's parentId: absent keeps the parent, null moves to root level,
// and a value moves under that item.
type OptionalString struct {
	Present bool
	Value   *string
}

// Some is a present, non-null value
func Some(s string) OptionalString {
	return OptionalString{Present: true, Value: &s}
}

// Null is a present JSON null
func Null() OptionalString {
	return OptionalString{Present: true}
}

// UnmarshalJSON is only invoked for keys present in the payload
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// MarshalJSON writes null for both absent and null; use omitzero to drop absent fields
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// IsZero reports an absent field
func (o OptionalString) IsZero() bool {
	return !o.Present
}
