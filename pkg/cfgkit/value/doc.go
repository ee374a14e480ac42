/*
Package value provides the tagged union that every configuration format
parses into.

# Kinds

A Value is one of Null, Bool, Int (int64), Float (float64), String,
Sequence or Mapping. The zero Value is Null. Mappings keep insertion order
and reject duplicate keys on Insert.

# Coercion

The As* accessors convert without loss or fail with ErrTypeMismatch:

	v := value.Int(42)
	n, _ := v.AsInt()    // 42
	f, _ := v.AsFloat()  // 42.0 (widening)
	s, _ := v.AsString() // "42"

	_, err := value.String("42").AsInt()
	errors.Is(err, value.ErrTypeMismatch) // true

Strings are never read as numbers implicitly. Ask for it with the Parse*
accessors:

	n, _ := value.String("42").ParseInt() // 42

Sequences and mappings have no string form; AsString fails on them.
*/
package value
