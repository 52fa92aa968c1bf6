// Package types contains lenient JSON scalars and ranked view entries shared
// across the application.
package types

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Text is a string that also accepts JSON numbers, booleans and null.
// The backend is not consistent about quoting identifiers.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0, bytes.Equal(b, []byte("null")):
		*t = ""
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
	default:
		*t = Text(b)
	}
	return nil
}

// String returns the text trimmed of surrounding whitespace.
func (t Text) String() string { return strings.TrimSpace(string(t)) }

// Number is a float64 that accepts JSON numbers, numeric strings and null.
// Anything unparsable decodes to zero.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = ParseNumber(s)
		return nil
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil //nolint:nilerr // booleans and objects coerce to zero
	}
	*n = Number(f)
	return nil
}

// Float returns the value as float64.
func (n Number) Float() float64 { return float64(n) }

// ParseNumber converts free text to a Number, returning zero when unparsable.
func ParseNumber(s string) Number {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Number(f)
}

// Entry is one ranked line of a leaderboard-style view.
type Entry struct {
	Rank      int     `json:"rank"`
	Qualifier string  `json:"qualifier"`
	Sales     float64 `json:"salesCount"`
	AP        float64 `json:"apSum"`
	Medal     string  `json:"medal,omitempty"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}
