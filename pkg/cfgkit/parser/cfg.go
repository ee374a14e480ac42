package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/randalmurphal/cfgkit/pkg/cfgkit/value"
)

const eof = -1

// cfgScanner is a single forward pass over a cfg document.
// All delimiters are ASCII, so scanning bytes never splits a rune.
type cfgScanner struct {
	src       string
	pos       int
	line      int
	lineStart int
}

func parseCFG(data []byte) (value.Value, error) {
	s := &cfgScanner{src: string(data), line: 1}
	return s.document()
}

// document parses either a brace-wrapped root, a bracketed sequence root
// or a sequence of `key: value` lines.
func (s *cfgScanner) document() (value.Value, error) {
	s.skipBlank()

	var root value.Value
	switch s.peek() {
	case eof:
		return emptyDocument(), nil
	case '{':
		s.advance()
		m, err := s.members('}')
		if err != nil {
			return value.Value{}, err
		}
		root = value.Map(m)
	case '[':
		seq, err := s.bracketed()
		if err != nil {
			return value.Value{}, err
		}
		root = seq
	default:
		m, err := s.members(0)
		if err != nil {
			return value.Value{}, err
		}
		return value.Map(m), nil
	}

	s.skipBlank()
	if c := s.peek(); c != eof {
		return value.Value{}, s.errorf(ErrMalformedLine, "unexpected %q after document root", rune(c))
	}
	return root, nil
}

// members parses entries until closing. A zero closing selects line mode:
// entries end at newlines and unquoted values run to the end of the line.
func (s *cfgScanner) members(closing byte) (*value.Mapping, error) {
	lineMode := closing == 0
	m := value.NewMapping()
	implicit := make(map[string]*value.Mapping)

	for {
		s.skipBlank()
		c := s.peek()
		if c == eof {
			if lineMode {
				return m, nil
			}
			return nil, s.errorf(ErrMalformedLine, "missing closing %q", closing)
		}
		if !lineMode && c == int(closing) {
			s.advance()
			return m, nil
		}

		line, col := s.line, s.column()
		segments, err := s.key(lineMode)
		if err != nil {
			return nil, err
		}
		s.advance() // ':'
		s.skipSpace()

		v, err := s.value(lineMode)
		if err != nil {
			return nil, err
		}
		if err := insertPath(m, implicit, segments, v); err != nil {
			return nil, &SyntaxError{Format: "cfg", Line: line, Column: col, Msg: err.Error(), Err: ErrDuplicateKey}
		}
		if err := s.endEntry(closing); err != nil {
			return nil, err
		}
	}
}

// key reads a key up to its colon and splits dotted keys into segments.
// A quoted key is a single segment. `\:` escapes a colon.
func (s *cfgScanner) key(lineMode bool) ([]string, error) {
	line, col := s.line, s.column()

	if c := s.peek(); c == '\'' || c == '"' {
		k, err := s.quoted()
		if err != nil {
			return nil, err
		}
		s.skipSpace()
		if s.peek() != ':' {
			return nil, s.errAt(line, col, ErrMalformedLine, fmt.Sprintf("missing ':' after key %q", k))
		}
		if k == "" {
			return nil, s.errAt(line, col, ErrMalformedLine, "empty key")
		}
		return []string{k}, nil
	}

	var sb strings.Builder
	for {
		c := s.peek()
		switch {
		case c == ':':
			raw := strings.TrimSpace(sb.String())
			if raw == "" {
				return nil, s.errAt(line, col, ErrMalformedLine, "empty key")
			}
			segments := strings.Split(raw, ".")
			for i, seg := range segments {
				segments[i] = strings.TrimSpace(seg)
				if segments[i] == "" {
					return nil, s.errAt(line, col, ErrMalformedLine, fmt.Sprintf("empty segment in key %q", raw))
				}
			}
			return segments, nil
		case c == eof || c == '\n' || (!lineMode && (c == ',' || c == '}' || c == ']')):
			return nil, s.errAt(line, col, ErrMalformedLine,
				fmt.Sprintf("missing ':' after key %q", strings.TrimSpace(sb.String())))
		case c == '\\' && s.peekAt(1) == ':':
			sb.WriteByte(':')
			s.advance()
			s.advance()
		default:
			sb.WriteByte(byte(c))
			s.advance()
		}
	}
}

// value parses a member value starting at the current position.
func (s *cfgScanner) value(lineMode bool) (value.Value, error) {
	switch s.peek() {
	case '\'', '"':
		str, err := s.quoted()
		if err != nil {
			return value.Value{}, err
		}
		return value.String(str), nil
	case '{', '[':
		if lineMode {
			return s.inlineValue()
		}
		return s.bracketed()
	}

	if lineMode {
		return resolveLiteral(s.until("\n")), nil
	}
	return resolveLiteral(s.until(",}]#\n")), nil
}

func (s *cfgScanner) bracketed() (value.Value, error) {
	if s.peek() == '{' {
		s.advance()
		m, err := s.members('}')
		if err != nil {
			return value.Value{}, err
		}
		return value.Map(m), nil
	}
	s.advance()
	return s.sequence()
}

// inlineValue parses a line-form value that starts with a bracket. It is a
// mapping or sequence only if the brackets close on this line with nothing
// but a comment after them; otherwise the rest of the line is a literal.
// Either way the value keeps its text.
func (s *cfgScanner) inlineValue() (value.Value, error) {
	end := strings.IndexByte(s.src[s.pos:], '\n')
	if end < 0 {
		end = len(s.src)
	} else {
		end += s.pos
	}

	start := s.pos
	sub := *s
	sub.src = s.src[:end]
	v, err := sub.bracketed()
	if err == nil {
		sub.skipSpace()
		if c := sub.peek(); c == eof || c == '#' {
			s.pos = sub.pos
			return v.WithText(strings.TrimSpace(s.src[start:sub.pos])), nil
		}
	} else if !errors.Is(err, ErrMalformedLine) {
		return value.Value{}, err
	}
	return resolveLiteral(s.until("\n")), nil
}

// sequence parses elements after an opening bracket.
func (s *cfgScanner) sequence() (value.Value, error) {
	items := []value.Value{}
	for {
		s.skipBlank()
		switch s.peek() {
		case eof:
			return value.Value{}, s.errorf(ErrMalformedLine, "missing closing ']'")
		case ']':
			s.advance()
			return value.Sequence(items...), nil
		case ',':
			return value.Value{}, s.errorf(ErrMalformedLine, "missing sequence element")
		}

		v, err := s.value(false)
		if err != nil {
			return value.Value{}, err
		}
		items = append(items, v)
		if err := s.endEntry(']'); err != nil {
			return value.Value{}, err
		}
	}
}

// endEntry checks what follows a value: end of line, a comment, or inside
// brackets a comma or the closing bracket.
func (s *cfgScanner) endEntry(closing byte) error {
	s.skipSpace()
	c := s.peek()
	switch {
	case c == eof, c == '\n', c == '#':
		return nil
	case closing != 0 && c == ',':
		s.advance()
		return nil
	case closing != 0 && c == int(closing):
		return nil
	}
	return s.errorf(ErrMalformedLine, "unexpected %q after value", rune(c))
}

// quoted reads a single- or double-quoted string. Contents are taken
// verbatim up to the matching quote on the same line.
func (s *cfgScanner) quoted() (string, error) {
	line, col := s.line, s.column()
	q := s.src[s.pos]
	s.advance()
	start := s.pos
	for {
		c := s.peek()
		if c == eof || c == '\n' {
			return "", s.errAt(line, col, ErrMalformedLine, "unterminated string")
		}
		if byte(c) == q {
			str := s.src[start:s.pos]
			s.advance()
			return str, nil
		}
		s.advance()
	}
}

// until consumes text up to any byte in stop and returns it trimmed.
func (s *cfgScanner) until(stop string) string {
	start := s.pos
	for c := s.peek(); c != eof && !strings.ContainsRune(stop, rune(c)); c = s.peek() {
		s.advance()
	}
	return strings.TrimSpace(s.src[start:s.pos])
}

func (s *cfgScanner) peek() int {
	return s.peekAt(0)
}

func (s *cfgScanner) peekAt(n int) int {
	if s.pos+n >= len(s.src) {
		return eof
	}
	return int(s.src[s.pos+n])
}

func (s *cfgScanner) advance() {
	if s.pos >= len(s.src) {
		return
	}
	if s.src[s.pos] == '\n' {
		s.line++
		s.lineStart = s.pos + 1
	}
	s.pos++
}

// skipSpace skips blanks on the current line.
func (s *cfgScanner) skipSpace() {
	for {
		switch s.peek() {
		case ' ', '\t', '\r':
			s.advance()
		default:
			return
		}
	}
}

// skipBlank skips blanks, newlines and comment lines.
func (s *cfgScanner) skipBlank() {
	for {
		s.skipSpace()
		switch s.peek() {
		case '#':
			s.until("\n")
		case '\n':
			s.advance()
		default:
			return
		}
	}
}

func (s *cfgScanner) column() int {
	return utf8.RuneCountInString(s.src[s.lineStart:s.pos]) + 1
}

func (s *cfgScanner) errorf(err error, msg string, args ...any) *SyntaxError {
	return s.errAt(s.line, s.column(), err, fmt.Sprintf(msg, args...))
}

func (s *cfgScanner) errAt(line, col int, err error, msg string) *SyntaxError {
	return &SyntaxError{Format: "cfg", Line: line, Column: col, Msg: msg, Err: err}
}

// insertPath stores v under a dotted key, creating intermediate mappings.
// implicit tracks intermediates created by earlier dotted keys so that
// `a.b` and `a.c` share one table while `a: {...}` followed by `a.c` is a
// duplicate.
func insertPath(m *value.Mapping, implicit map[string]*value.Mapping, segments []string, v value.Value) error {
	cur := m
	for i := 0; i < len(segments)-1; i++ {
		prefix := strings.Join(segments[:i+1], "\x00")
		if child, ok := implicit[prefix]; ok {
			cur = child
			continue
		}
		if cur.Has(segments[i]) {
			return fmt.Errorf("%w: %q is already set", value.ErrDuplicateKey, strings.Join(segments[:i+1], "."))
		}
		child := value.NewMapping()
		cur.Set(segments[i], value.Map(child))
		implicit[prefix] = child
		cur = child
	}

	last := segments[len(segments)-1]
	if cur.Has(last) {
		return fmt.Errorf("%w: %q", value.ErrDuplicateKey, strings.Join(segments, "."))
	}
	cur.Set(last, v)
	return nil
}
