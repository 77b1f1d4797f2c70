package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// PrivateString is a string that is never exposed through JSON or fmt.
type PrivateString string

func (PrivateString) MarshalJSON() ([]byte, error) {
	return []byte(`""`), nil
}

func (PrivateString) String() string {
	return ""
}

// NormalizeBoolean reports whether v is the native boolean true or the exact string "true".
// Every other value, including "True", "1" and nil, is false.
func NormalizeBoolean(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	case *bool:
		return b != nil && *b
	case BoolOrString:
		return b.Bool()
	default:
		return false
	}
}

// BoolOrString holds a boolean as sent by the router. Depending on the firmware version the value
// arrives either as a JSON boolean or as the string "true"/"false". An unset value is unknown.
type BoolOrString struct {
	raw any // nil, bool or string
}

// NewBool returns a BoolOrString holding a native boolean.
func NewBool(b bool) BoolOrString {
	return BoolOrString{raw: b}
}

// NewBoolString returns a BoolOrString holding the given string representation.
func NewBoolString(s string) BoolOrString {
	return BoolOrString{raw: s}
}

// BoolOrStringFrom converts a decoded JSON value. Values that are neither bool nor string are
// stored as their string representation so that no information is dropped.
func BoolOrStringFrom(v any) BoolOrString {
	switch t := v.(type) {
	case nil:
		return BoolOrString{}
	case bool, string:
		return BoolOrString{raw: t}
	case BoolOrString:
		return t
	default:
		return BoolOrString{raw: fmt.Sprintf("%v", t)}
	}
}

// IsSet returns false if the value is unknown.
func (b BoolOrString) IsSet() bool {
	return b.raw != nil
}

// Bool returns the normalized boolean value.
func (b BoolOrString) Bool() bool {
	return NormalizeBoolean(b.raw)
}

// Raw returns the value in the representation it was received.
func (b BoolOrString) Raw() any {
	return b.raw
}

// WireString returns the string typed boolean used when writing to the router.
func (b BoolOrString) WireString() string {
	return strconv.FormatBool(b.Bool())
}

func (b BoolOrString) String() string {
	if b.raw == nil {
		return "unknown"
	}
	return fmt.Sprintf("%v", b.raw)
}

func (b BoolOrString) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.raw)
}

func (b *BoolOrString) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = BoolOrStringFrom(v)
	return nil
}
