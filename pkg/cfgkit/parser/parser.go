package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// Sentinel errors for parsing.
var (
	// ErrMalformedLine indicates input that does not follow the format's
	// grammar: a cfg line without a colon or with an empty key, an
	// unterminated string, a YAML/JSON/TOML syntax error.
	ErrMalformedLine = errors.New("malformed line")

	// ErrDuplicateKey indicates a key appears twice in one mapping.
	// It is the same sentinel as value.ErrDuplicateKey.
	ErrDuplicateKey = value.ErrDuplicateKey

	// ErrUnknownFormat indicates no parser is registered for a name or
	// file extension.
	ErrUnknownFormat = errors.New("unknown format")

	// ErrNilReader indicates Parse was given a nil reader.
	ErrNilReader = errors.New("nil reader")
)

// SyntaxError locates a parse failure in the source text.
type SyntaxError struct {
	// Format is the parser name ("cfg", "yaml", ...).
	Format string
	// Line is the 1-based line number, 0 when unknown.
	Line int
	// Column is the 1-based column in runes, 0 when unknown.
	Column int
	// Msg describes the failure.
	Msg string
	// Err is ErrMalformedLine or ErrDuplicateKey.
	Err error
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d, column %d: %s", e.Format, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Format, e.Msg)
}

// Unwrap returns the underlying sentinel for errors.Is support.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parser converts configuration text into a value tree.
// Parse reads r to completion before parsing, so partial input never
// yields a partial tree.
type Parser interface {
	// Name identifies the format in errors, logs and metrics.
	Name() string

	// Parse returns the document root. Formats whose documents are always
	// tables return a Mapping; cfg and JSON may return a Sequence root,
	// which callers reject as an invalid configuration document.
	Parse(r io.Reader) (value.Value, error)
}

// New returns a Parser named name that hands the full contents of each
// source to fn.
func New(name string, fn func(data []byte) (value.Value, error)) Parser {
	return &format{name: name, parse: fn}
}

type format struct {
	name  string
	parse func(data []byte) (value.Value, error)
}

func (f *format) Name() string { return f.name }

func (f *format) Parse(r io.Reader) (value.Value, error) {
	if r == nil {
		return value.Value{}, ErrNilReader
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return value.Value{}, fmt.Errorf("read %s source: %w", f.name, err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return f.parse(data)
}

var (
	cfgParser  = New("cfg", parseCFG)
	yamlParser = New("yaml", parseYAML)
	jsonParser = New("json", parseJSON)
	tomlParser = New("toml", parseTOML)
)

// CFG returns the parser for the cfg format: line-oriented `key: value`
// entries, optionally wrapped in braces. See the package documentation.
func CFG() Parser { return cfgParser }

// YAML returns the YAML parser.
func YAML() Parser { return yamlParser }

// JSON returns the JSON parser.
func JSON() Parser { return jsonParser }

// TOML returns the TOML parser.
func TOML() Parser { return tomlParser }

var byName = map[string]Parser{
	"cfg":  cfgParser,
	"yaml": yamlParser,
	"yml":  yamlParser,
	"json": jsonParser,
	"toml": tomlParser,
}

var byExtension = map[string]Parser{
	".cfg":  cfgParser,
	".conf": cfgParser,
	".yaml": yamlParser,
	".yml":  yamlParser,
	".json": jsonParser,
	".toml": tomlParser,
}

// ByName returns the built-in parser for a format name (case-insensitive).
func ByName(name string) (Parser, error) {
	p, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
	return p, nil
}

// ForPath returns the built-in parser matching a file's extension.
// Supported extensions: .cfg, .conf, .yaml, .yml, .json, .toml
func ForPath(path string) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	p, ok := byExtension[ext]
	if !ok {
		return nil, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
	}
	return p, nil
}

// Names returns the canonical built-in format names, sorted.
func Names() []string {
	names := make([]string, 0, len(byName))
	for name, p := range byName {
		if p.Name() == name {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func emptyDocument() value.Value {
	return value.Map(value.NewMapping())
}

// position converts a byte offset into a 1-based line and rune column.
func position(data []byte, offset int64) (line, column int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	start := bytes.LastIndexByte(prefix, '\n') + 1
	column = len([]rune(string(prefix[start:]))) + 1
	return line, column
}
