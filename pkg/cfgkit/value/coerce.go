package value

import (
	"math"
	"strconv"
	"time"
)

// AsString returns the string form of v.
//
// Accepts:
//   - string: returned verbatim
//   - any value with source text (see WithText): that text
//   - int, float, bool: formatted with strconv
//
// Null, sequences and mappings without source text fail with
// ErrTypeMismatch.
func (v Value) AsString() (string, error) {
	if v.text != "" {
		return v.text, nil
	}
	switch v.kind {
	case KindString:
		return v.s, nil
	case KindInt:
		return strconv.FormatInt(v.i, 10), nil
	case KindFloat:
		return formatFloat(v.f), nil
	case KindBool:
		return strconv.FormatBool(v.b), nil
	}
	return "", mismatch(v.kind, "string")
}

const maxDurationSeconds = math.MaxInt64 / int64(time.Second)

// AsInt returns the integer held by v.
// Floats convert only when integral and within int64 range.
// Strings are never parsed; use ParseInt for that.
func (v Value) AsInt() (int64, error) {
	switch v.kind {
	case KindInt:
		return v.i, nil
	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return int64(v.f), nil
		}
	}
	return 0, mismatch(v.kind, "int")
}

// AsFloat returns the float held by v, widening integers.
func (v Value) AsFloat() (float64, error) {
	switch v.kind {
	case KindFloat:
		return v.f, nil
	case KindInt:
		return float64(v.i), nil
	}
	return 0, mismatch(v.kind, "float")
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, error) {
	if v.kind == KindBool {
		return v.b, nil
	}
	return false, mismatch(v.kind, "bool")
}

// AsSequence returns a copy of the elements of a sequence.
func (v Value) AsSequence() ([]Value, error) {
	if v.kind != KindSequence {
		return nil, mismatch(v.kind, "sequence")
	}
	return v.Clone().seq, nil
}

// AsMapping returns a copy of a mapping.
func (v Value) AsMapping() (*Mapping, error) {
	if v.kind != KindMapping {
		return nil, mismatch(v.kind, "mapping")
	}
	return v.m.Clone(), nil
}

// AsStrings returns the string form of every element of a sequence.
// Fails if any element is not a scalar with a string form.
func (v Value) AsStrings() ([]string, error) {
	if v.kind != KindSequence {
		return nil, mismatch(v.kind, "[]string")
	}
	out := make([]string, 0, len(v.seq))
	for _, item := range v.seq {
		s, err := item.AsString()
		if err != nil {
			return nil, mismatch(item.kind, "[]string")
		}
		out = append(out, s)
	}
	return out, nil
}

// AsDuration returns v as a time.Duration.
//
// Accepts:
//   - string: parsed with time.ParseDuration
//   - int, float: interpreted as seconds
func (v Value) AsDuration() (time.Duration, error) {
	switch v.kind {
	case KindString:
		d, err := time.ParseDuration(v.s)
		if err != nil {
			return 0, &CoercionError{From: v.kind, To: "duration", Err: err}
		}
		return d, nil
	case KindInt:
		if v.i > maxDurationSeconds || v.i < -maxDurationSeconds {
			return 0, mismatch(v.kind, "duration")
		}
		return time.Duration(v.i) * time.Second, nil
	case KindFloat:
		ns := v.f * float64(time.Second)
		if math.IsNaN(ns) || ns >= math.MaxInt64 || ns < math.MinInt64 {
			return 0, mismatch(v.kind, "duration")
		}
		return time.Duration(ns), nil
	}
	return 0, mismatch(v.kind, "duration")
}

// ParseInt is the explicit string-reading form of AsInt: a string value
// is parsed as a base-10 integer, other kinds behave as AsInt.
func (v Value) ParseInt() (int64, error) {
	if v.kind != KindString {
		return v.AsInt()
	}
	i, err := strconv.ParseInt(v.s, 10, 64)
	if err != nil {
		return 0, &CoercionError{From: v.kind, To: "int", Err: err}
	}
	return i, nil
}

// ParseFloat is the explicit string-reading form of AsFloat.
func (v Value) ParseFloat() (float64, error) {
	if v.kind != KindString {
		return v.AsFloat()
	}
	f, err := strconv.ParseFloat(v.s, 64)
	if err != nil {
		return 0, &CoercionError{From: v.kind, To: "float", Err: err}
	}
	return f, nil
}

// ParseBool is the explicit string-reading form of AsBool.
// Accepts the spellings understood by strconv.ParseBool.
func (v Value) ParseBool() (bool, error) {
	if v.kind != KindString {
		return v.AsBool()
	}
	b, err := strconv.ParseBool(v.s)
	if err != nil {
		return false, &CoercionError{From: v.kind, To: "bool", Err: err}
	}
	return b, nil
}
