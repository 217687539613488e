package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FlexNumber is a numeric field that accepts a JSON number or a numeric string.
// It remembers whether it was present and whether it parsed, so validators can
// tell an omitted field from a malformed one.
type FlexNumber struct {
	value   float64
	raw     string
	set     bool
	invalid bool
}

// NewFlexNumber returns a present, valid FlexNumber.
func NewFlexNumber(v float64) FlexNumber {
	return FlexNumber{value: v, set: true}
}

// UnmarshalJSON implements the json.Unmarshaler interface. It never fails; bad input is recorded.
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	*f = FlexNumber{set: true}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		f.set = false
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		f.value = n
		f.raw = string(data)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		f.raw = s
		s = strings.TrimSpace(s)
		if s == "" {
			f.set = false
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			f.invalid = true
			return nil
		}
		f.value = v
		return nil
	}

	f.raw = string(data)
	f.invalid = true
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	if !f.set || f.invalid {
		return []byte("null"), nil
	}
	return json.Marshal(f.value)
}

// Present reports whether the field was supplied.
func (f FlexNumber) Present() bool { return f.set }

// Valid reports whether a supplied field parsed as a finite number.
func (f FlexNumber) Valid() bool { return f.set && !f.invalid }

// Float returns the parsed value.
func (f FlexNumber) Float() float64 { return f.value }

// Int returns the value as an integer, failing if it has a fractional part or is malformed.
func (f FlexNumber) Int() (int64, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%q is not a number", f.raw)
	}
	if f.value != math.Trunc(f.value) {
		return 0, fmt.Errorf("%v is not a whole number", f.value)
	}
	return int64(f.value), nil
}
