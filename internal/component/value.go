package component

import (
	"encoding/json"
	"strconv"
)

// Value is an optional property value. The zero Value is absent.
//
// Values are comparable with ==, which is how the harness decides whether
// a mutation changed the effective value of a property.
type Value struct {
	s  string
	ok bool
}

// None is the absent value.
var None = Value{}

// Some returns a present value holding s. The empty string is a present value.
func Some(s string) Value {
	return Value{s: s, ok: true}
}

// Get returns the held string and whether it is present.
func (v Value) Get() (string, bool) {
	return v.s, v.ok
}

// IsSet reports whether the value is present.
func (v Value) IsSet() bool {
	return v.ok
}

// String returns the held string, or "" when absent.
func (v Value) String() string {
	return v.s
}

// Or returns the held string, or fallback when absent.
func (v Value) Or(fallback string) string {
	if v.ok {
		return v.s
	}
	return fallback
}

// GoString renders absent values as None so test failures are readable.
func (v Value) GoString() string {
	if !v.ok {
		return "None"
	}
	return "Some(" + strconv.Quote(v.s) + ")"
}

// MarshalJSON encodes an absent value as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.ok {
		return []byte("null"), nil
	}
	return json.Marshal(v.s)
}

// UnmarshalJSON decodes null as None and any string as Some.
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Some(s)
	return nil
}
