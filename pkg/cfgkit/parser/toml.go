package parser

import (
	"bytes"
	"errors"
	"regexp"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// parseTOML decodes a TOML document. TOML tables are unordered, so
// mapping keys come back sorted. Date and time values are kept as their
// RFC 3339 text.
func parseTOML(data []byte) (value.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyDocument(), nil
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return value.Value{}, tomlError(err)
	}
	if doc == nil {
		return emptyDocument(), nil
	}

	root, err := value.FromAny(normalizeTOML(doc))
	if err != nil {
		return value.Value{}, &SyntaxError{Format: "toml", Msg: err.Error(), Err: ErrMalformedLine}
	}
	return root, nil
}

func normalizeTOML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = normalizeTOML(child)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = normalizeTOML(child)
		}
		return val
	case time.Time:
		return val.Format(time.RFC3339Nano)
	}
	return v
}

// tomlRedefinition matches the errors go-toml reports when a document
// sets a key or table twice. They are plain errors without a position,
// unlike the *toml.DecodeError returned for syntax failures.
var tomlRedefinition = regexp.MustCompile(`^toml: (` +
	`key .+ is already defined` +
	`|table .+ already exists` +
	`|cannot redefine table .+ that has already been explicitly defined` +
	`|key .+ already exists as a .+, +but should be an array table` +
	`|key .+ should be a table, not a .+` +
	`|expected .+ to be a table, not a .+` +
	`)$`)

func tomlError(err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		line, col := derr.Position()
		return &SyntaxError{Format: "toml", Line: line, Column: col, Msg: derr.Error(), Err: ErrMalformedLine}
	}
	if tomlRedefinition.MatchString(err.Error()) {
		return &SyntaxError{Format: "toml", Msg: err.Error(), Err: ErrDuplicateKey}
	}
	return &SyntaxError{Format: "toml", Msg: err.Error(), Err: ErrMalformedLine}
}
