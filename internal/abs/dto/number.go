package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Number is a JSON number that also accepts a numeric string or null.
//
// Servers differ in how they report durations and sizes: most send numbers,
// some older versions send strings, and missing values come through as null.
type Number float64

// UnmarshalJSON parses 1234, 1234.5, "1234" and null. Null and the empty
// string decode to zero.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*n = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("unable to parse number: %q", s)
		}
		*n = Number(v)
		return nil
	}

	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 {
	return float64(n)
}

// Int returns the value truncated to int64.
func (n Number) Int() int64 {
	return int64(n)
}
