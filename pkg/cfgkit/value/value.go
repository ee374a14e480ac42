package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	// KindNull is the zero kind; the zero Value is Null.
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSequence
	KindMapping
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a parsed configuration value.
// Values are immutable once built; accessors that return composite
// contents hand out deep copies.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
	seq  []Value
	m    *Mapping

	// text is the source spelling of a non-string value, if known.
	text string
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int returns a 64-bit integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a 64-bit float value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence returns a sequence of items.
// The sequence adopts the slice; callers must not modify it afterwards.
func Sequence(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindSequence, seq: items}
}

// Map returns a mapping value backed by m. A nil m yields an empty mapping.
// The value adopts m; callers must not modify it afterwards.
func Map(m *Mapping) Value {
	if m == nil {
		m = NewMapping()
	}
	return Value{kind: KindMapping, m: m}
}

// WithText returns v carrying text as its source spelling. AsString
// returns that spelling instead of a rendering of the typed value, so
// `1.10` reads back as "1.10" and `null` as "null". Strings already are
// their text and are returned unchanged.
func (v Value) WithText(text string) Value {
	if v.kind != KindString {
		v.text = text
	}
	return v
}

// Text returns the source spelling of v and whether one is known.
func (v Value) Text() (string, bool) {
	if v.kind == KindString {
		return v.s, true
	}
	return v.text, v.text != ""
}

// Kind returns the variant held by v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar reports whether v is neither a sequence nor a mapping.
func (v Value) IsScalar() bool {
	return v.kind != KindSequence && v.kind != KindMapping
}

// Len returns the number of elements of a sequence or entries of a mapping.
// Scalars have length 0.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return v.m.Len()
	default:
		return 0
	}
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	switch v.kind {
	case KindSequence:
		seq := make([]Value, len(v.seq))
		for i, item := range v.seq {
			seq[i] = item.Clone()
		}
		return Value{kind: KindSequence, seq: seq, text: v.text}
	case KindMapping:
		return Value{kind: KindMapping, m: v.m.Clone(), text: v.text}
	default:
		return v
	}
}

// Equal reports whether v and other hold the same kind and contents.
// Mappings compare equal only if their keys appear in the same order.
// Source text is not compared.
// Int and Float never compare equal to each other.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindString:
		return v.s == other.s
	case KindSequence:
		if len(v.seq) != len(other.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(other.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		return v.m.Equal(other.m)
	}
	return false
}

// String renders v for debugging. Strings are quoted; mappings and
// sequences use the brace form of the cfg format.
func (v Value) String() string {
	var sb strings.Builder
	v.render(&sb)
	return sb.String()
}

func (v Value) render(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		sb.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		sb.WriteString(formatFloat(v.f))
	case KindString:
		sb.WriteString(strconv.Quote(v.s))
	case KindSequence:
		sb.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.render(sb)
		}
		sb.WriteByte(']')
	case KindMapping:
		sb.WriteByte('{')
		i := 0
		v.m.Range(func(key string, item Value) bool {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(key)
			sb.WriteString(": ")
			item.render(sb)
			i++
			return true
		})
		sb.WriteByte('}')
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Interface converts v to plain Go values: nil, bool, int64, float64,
// string, []any and map[string]any. Mapping order is lost.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, item := range v.seq {
			out[i] = item.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, v.m.Len())
		v.m.Range(func(key string, item Value) bool {
			out[key] = item.Interface()
			return true
		})
		return out
	default:
		return nil
	}
}

// FromAny converts decoded Go data into a Value.
//
// Accepts:
//   - nil, bool, string
//   - every signed and unsigned integer type (uint64 above MaxInt64 fails)
//   - float32, float64
//   - []any, []string, map[string]any (keys are sorted)
//   - fmt.Stringer, rendered as a string
func FromAny(data any) (Value, error) {
	switch val := data.(type) {
	case nil:
		return Null(), nil
	case Value:
		return val.Clone(), nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint:
		return fromUint(uint64(val))
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		return fromUint(val)
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case []string:
		seq := make([]Value, len(val))
		for i, s := range val {
			seq[i] = String(s)
		}
		return Value{kind: KindSequence, seq: seq}, nil
	case []any:
		seq := make([]Value, len(val))
		for i, item := range val {
			converted, err := FromAny(item)
			if err != nil {
				return Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			seq[i] = converted
		}
		return Value{kind: KindSequence, seq: seq}, nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, key := range keys {
			converted, err := FromAny(val[key])
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key, err)
			}
			m.set(key, converted)
		}
		return Map(m), nil
	case fmt.Stringer:
		return String(val.String()), nil
	}
	return Value{}, fmt.Errorf("unsupported type %T", data)
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

// MarshalJSON encodes v as JSON, keeping mapping keys in insertion order.
// Non-finite floats cannot be represented and fail.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.encodeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) encodeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		buf.WriteString(strconv.FormatBool(v.b))
	case KindInt:
		if isJSONNumber(v.text) {
			buf.WriteString(v.text)
			break
		}
		buf.WriteString(strconv.FormatInt(v.i, 10))
	case KindFloat:
		if math.IsInf(v.f, 0) || math.IsNaN(v.f) {
			return fmt.Errorf("cannot encode %v as JSON", v.f)
		}
		if isJSONNumber(v.text) {
			buf.WriteString(v.text)
			break
		}
		s := formatFloat(v.f)
		// Keep a float a float when read back.
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		buf.WriteString(s)
	case KindString:
		encoded, err := json.Marshal(v.s)
		if err != nil {
			return err
		}
		buf.Write(encoded)
	case KindSequence:
		buf.WriteByte('[')
		for i, item := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := item.encodeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		var err error
		i := 0
		v.m.Range(func(key string, item Value) bool {
			if i > 0 {
				buf.WriteByte(',')
			}
			encoded, kerr := json.Marshal(key)
			if kerr != nil {
				err = kerr
				return false
			}
			buf.Write(encoded)
			buf.WriteByte(':')
			if err = item.encodeJSON(buf); err != nil {
				return false
			}
			i++
			return true
		})
		if err != nil {
			return err
		}
		buf.WriteByte('}')
	}
	return nil
}

// isJSONNumber reports whether s is a JSON number literal.
func isJSONNumber(s string) bool {
	if s == "" || (s[0] != '-' && (s[0] < '0' || s[0] > '9')) {
		return false
	}
	return json.Valid([]byte(s))
}
