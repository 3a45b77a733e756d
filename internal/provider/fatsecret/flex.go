package fatsecret

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// flexList decodes either a JSON array or a single object into a slice.
// The platform collapses one-element lists into a bare object.
type flexList[T any] []T

func (f *flexList[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '[' {
		var slice []T
		if err := json.Unmarshal(data, &slice); err != nil {
			return err
		}
		*f = flexList[T](slice)
		return nil
	}
	var item T
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*f = flexList[T]{item}
	return nil
}

// decimal is a nutrient amount sent as a decimal string. Missing, empty or
// unparsable values decode to "absent" instead of failing the response.
type decimal struct {
	value float64
	ok    bool
}

func (d *decimal) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	d.value, d.ok = v, true
	return nil
}

func (d decimal) ptr() *float64 {
	if !d.ok {
		return nil
	}
	v := d.value
	return &v
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		return nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}
