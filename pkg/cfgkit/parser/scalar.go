package parser

import (
	"encoding/json"
	"strings"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// resolveLiteral types an unquoted scalar.
// It handles booleans, null, numbers, and falls back to the text itself.
// Typed results keep s as their source text.
func resolveLiteral(s string) value.Value {
	return typeLiteral(s).WithText(s)
}

func typeLiteral(s string) value.Value {
	switch strings.ToLower(s) {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	case "null", "nil":
		return value.Null()
	}

	// json.Number accepts exactly the JSON number grammar, so "007", "+1"
	// and "1_000" stay strings.
	if s != "" && (s[0] == '-' || (s[0] >= '0' && s[0] <= '9')) {
		var num json.Number
		if err := json.Unmarshal([]byte(s), &num); err == nil {
			if i, err := num.Int64(); err == nil {
				return value.Int(i)
			}
			if f, err := num.Float64(); err == nil {
				return value.Float(f)
			}
		}
	}

	return value.String(s)
}
