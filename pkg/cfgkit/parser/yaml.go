package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// parseYAML walks the yaml.v3 node tree instead of decoding into maps so
// that key order survives and duplicate keys are reported.
func parseYAML(data []byte) (value.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyDocument(), nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	var doc yaml.Node
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return emptyDocument(), nil
		}
		return value.Value{}, &SyntaxError{Format: "yaml", Msg: err.Error(), Err: ErrMalformedLine}
	}

	var extra yaml.Node
	switch err := dec.Decode(&extra); {
	case errors.Is(err, io.EOF):
	case err != nil:
		return value.Value{}, &SyntaxError{Format: "yaml", Msg: err.Error(), Err: ErrMalformedLine}
	default:
		return value.Value{}, &SyntaxError{
			Format: "yaml",
			Line:   extra.Line,
			Column: extra.Column,
			Msg:    "multiple documents in one source",
			Err:    ErrMalformedLine,
		}
	}

	w := &yamlWalker{active: make(map[*yaml.Node]bool)}
	return w.value(&doc)
}

// yamlWalker converts a node tree. Anchored nodes on the current path are
// tracked so an alias back into them is reported instead of recursing
// forever, and alias expansion is bounded like yaml.v3's own decoder.
type yamlWalker struct {
	active  map[*yaml.Node]bool
	nodes   int
	aliased int
	depth   int // open alias expansions
}

func (w *yamlWalker) value(n *yaml.Node) (value.Value, error) {
	w.nodes++
	if w.depth > 0 {
		w.aliased++
	}
	if w.excessiveAliasing() {
		return value.Value{}, yamlError(n, ErrMalformedLine, "document contains excessive aliasing")
	}

	if n.Anchor != "" && (n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode) {
		if w.active[n] {
			return value.Value{}, yamlError(n, ErrMalformedLine, fmt.Sprintf("anchor %q refers to itself", n.Anchor))
		}
		w.active[n] = true
		defer delete(w.active, n)
	}

	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return emptyDocument(), nil
		}
		return w.value(n.Content[0])
	case yaml.AliasNode:
		return w.alias(n)
	case yaml.SequenceNode:
		items := make([]value.Value, 0, len(n.Content))
		for _, child := range n.Content {
			v, err := w.value(child)
			if err != nil {
				return value.Value{}, err
			}
			items = append(items, v)
		}
		return value.Sequence(items...), nil
	case yaml.MappingNode:
		return w.mapping(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	}
	return value.Value{}, yamlError(n, ErrMalformedLine, fmt.Sprintf("unsupported node kind %d", n.Kind))
}

func (w *yamlWalker) alias(n *yaml.Node) (value.Value, error) {
	if n.Alias == nil {
		return value.Value{}, yamlError(n, ErrMalformedLine, fmt.Sprintf("unknown anchor %q", n.Value))
	}
	if w.active[n.Alias] {
		return value.Value{}, yamlError(n, ErrMalformedLine, fmt.Sprintf("alias *%s refers to its own anchor", n.Value))
	}
	w.depth++
	defer func() { w.depth-- }()
	return w.value(n.Alias)
}

// excessiveAliasing applies the ratio yaml.v3 uses when decoding: small
// documents may be mostly aliases, large ones only up to 10%.
func (w *yamlWalker) excessiveAliasing() bool {
	if w.aliased <= 100 || w.nodes <= 1000 {
		return false
	}
	var allowed float64
	switch {
	case w.nodes <= 400000:
		allowed = 0.99
	case w.nodes >= 4000000:
		allowed = 0.10
	default:
		allowed = 0.99 - 0.89*float64(w.nodes-400000)/3600000
	}
	return float64(w.aliased)/float64(w.nodes) > allowed
}

// mapping converts a mapping node. Explicit keys come first; keys
// pulled in through `<<` merge keys never override them.
func (w *yamlWalker) mapping(n *yaml.Node) (value.Value, error) {
	m := value.NewMapping()
	var merges []*yaml.Node

	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if k.Kind == yaml.ScalarNode && k.ShortTag() == "!!merge" {
			merges = append(merges, v)
			continue
		}
		if k.Kind != yaml.ScalarNode {
			return value.Value{}, yamlError(k, ErrMalformedLine, "mapping keys must be scalars")
		}
		child, err := w.value(v)
		if err != nil {
			return value.Value{}, err
		}
		if err := m.Insert(k.Value, child); err != nil {
			return value.Value{}, yamlError(k, ErrDuplicateKey, err.Error())
		}
	}

	for _, src := range merges {
		if err := w.merge(m, src); err != nil {
			return value.Value{}, err
		}
	}
	return value.Map(m), nil
}

func (w *yamlWalker) merge(m *value.Mapping, src *yaml.Node) error {
	if src.Kind == yaml.SequenceNode {
		for _, item := range src.Content {
			if err := w.merge(m, item); err != nil {
				return err
			}
		}
		return nil
	}
	target := src
	if src.Kind == yaml.AliasNode && src.Alias != nil {
		target = src.Alias
	}
	if target.Kind != yaml.MappingNode {
		return yamlError(src, ErrMalformedLine, "merge key must reference a mapping")
	}

	merged, err := w.value(src)
	if err != nil {
		return err
	}
	from, err := merged.AsMapping()
	if err != nil {
		return err
	}
	from.Range(func(key string, v value.Value) bool {
		if !m.Has(key) {
			m.Set(key, v)
		}
		return true
	})
	return nil
}

// yamlScalar types a scalar by its resolved tag. Plain scalars keep their
// source text for string lookups.
func yamlScalar(n *yaml.Node) (value.Value, error) {
	v, err := yamlTyped(n)
	if err != nil || n.Style != 0 {
		return v, err
	}
	return v.WithText(n.Value), nil
}

func yamlTyped(n *yaml.Node) (value.Value, error) {
	switch n.ShortTag() {
	case "!!null":
		return value.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Value{}, yamlError(n, ErrMalformedLine, err.Error())
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return value.Value{}, yamlError(n, ErrMalformedLine, err.Error())
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Value{}, yamlError(n, ErrMalformedLine, err.Error())
		}
		return value.Float(f), nil
	default:
		// !!str, !!timestamp, !!binary and custom tags keep their text.
		return value.String(n.Value), nil
	}
}

func yamlError(n *yaml.Node, err error, msg string) *SyntaxError {
	return &SyntaxError{Format: "yaml", Line: n.Line, Column: n.Column, Msg: msg, Err: err}
}
