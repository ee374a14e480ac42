package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

// parseJSON reads the token stream so that key order survives and
// duplicate keys are reported. Numbers without a fraction or exponent
// stay integers.
func parseJSON(data []byte) (value.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyDocument(), nil
	}

	d := &jsonDecoder{data: data, dec: json.NewDecoder(bytes.NewReader(data))}
	d.dec.UseNumber()

	root, err := d.value()
	if err != nil {
		return value.Value{}, err
	}
	if _, err := d.dec.Token(); !errors.Is(err, io.EOF) {
		return value.Value{}, d.errorf(ErrMalformedLine, "unexpected data after top-level value")
	}
	return root, nil
}

type jsonDecoder struct {
	data []byte
	dec  *json.Decoder
}

func (d *jsonDecoder) value() (value.Value, error) {
	tok, err := d.dec.Token()
	if err != nil {
		return value.Value{}, d.wrap(err)
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return d.object()
		case '[':
			return d.array()
		}
		return value.Value{}, d.errorf(ErrMalformedLine, "unexpected %q", rune(t))
	case string:
		return value.String(t), nil
	case bool:
		return value.Bool(t), nil
	case nil:
		return value.Null(), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return value.Int(i).WithText(t.String()), nil
		}
		f, err := t.Float64()
		if err != nil {
			return value.Value{}, d.errorf(ErrMalformedLine, "number %s out of range", t)
		}
		return value.Float(f).WithText(t.String()), nil
	}
	return value.Value{}, d.errorf(ErrMalformedLine, "unexpected token %v", tok)
}

func (d *jsonDecoder) object() (value.Value, error) {
	m := value.NewMapping()
	for d.dec.More() {
		offset := d.dec.InputOffset()
		tok, err := d.dec.Token()
		if err != nil {
			return value.Value{}, d.wrap(err)
		}
		key, ok := tok.(string)
		if !ok {
			return value.Value{}, d.errorf(ErrMalformedLine, "object key must be a string")
		}
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		if err := m.Insert(key, v); err != nil {
			return value.Value{}, d.errorAt(offset, ErrDuplicateKey, err.Error())
		}
	}
	if _, err := d.dec.Token(); err != nil {
		return value.Value{}, d.wrap(err)
	}
	return value.Map(m), nil
}

func (d *jsonDecoder) array() (value.Value, error) {
	items := []value.Value{}
	for d.dec.More() {
		v, err := d.value()
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
	}
	if _, err := d.dec.Token(); err != nil {
		return value.Value{}, d.wrap(err)
	}
	return value.Sequence(items...), nil
}

func (d *jsonDecoder) wrap(err error) error {
	var serr *json.SyntaxError
	if errors.As(err, &serr) {
		// Offsets from value scans are relative to the value's start.
		return d.errorAt(max(serr.Offset, d.dec.InputOffset()), ErrMalformedLine, serr.Error())
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return d.errorf(ErrMalformedLine, "unexpected end of input")
	}
	return d.errorf(ErrMalformedLine, "%v", err)
}

func (d *jsonDecoder) errorf(err error, msg string, args ...any) *SyntaxError {
	return d.errorAt(d.dec.InputOffset(), err, fmt.Sprintf(msg, args...))
}

func (d *jsonDecoder) errorAt(offset int64, err error, msg string) *SyntaxError {
	line, col := position(d.data, offset)
	return &SyntaxError{Format: "json", Line: line, Column: col, Msg: msg, Err: err}
}
