/*
Package parser converts configuration text into value trees.

# Overview

A Parser reads a whole source and returns its document root as a
value.Value. Four formats are built in: cfg, YAML, JSON and TOML. Select
one directly (CFG, YAML, JSON, TOML), by name (ByName) or by file extension
(ForPath). Custom formats are built with New.

	p, err := parser.ForPath("service.yaml")
	if err != nil {
	    return err
	}
	root, err := p.Parse(f)

# The cfg Format

A cfg document is a list of entries, one per line:

	# comments start with '#'
	name: 'my service'
	port: 8080
	debug: false
	server.host: 'localhost'   # dotted keys build nested mappings
	tags: [a, b, 'c d']
	limits: {cpu: 2, mem: '512Mi'}

The whole document may also be wrapped in braces, in which case entries may
be separated by newlines or commas:

	{key: 'Hello, world!'}

Grammar:

	<document> := <entries> | '{' <members> '}' | '[' <elements> ']'
	<entries>  := { <entry> NEWLINE }
	<entry>    := <key> ':' <value> [ '#' comment ]
	<key>      := 'quoted' | "quoted" | bare { '.' bare }
	<value>    := 'quoted' | "quoted" | '{' <members> '}' | '[' <elements> ']' | literal

# Values

Quoted values are always strings. Quotes must close on the same line and
their contents are taken verbatim.

Unquoted values are typed:
  - true / false (any case): Bool
  - null / nil: Null
  - a JSON number: Int when integral and in range, Float otherwise
  - anything else: String, trimmed

At the top level an unquoted value runs to the end of the line, '#'
included, so `greeting: Hello, world!` is the string "Hello, world!". A
comment may follow a quoted value. Inside braces or brackets an unquoted
value stops at ',', '}', ']' or '#'.

A `\:` inside a bare key is a literal colon. A quoted key is one segment
even if it contains dots.

# Errors

Every failure is a *SyntaxError carrying the line and column. It wraps
ErrMalformedLine for grammar violations (a line without a colon, an empty
key, an unterminated string, trailing text) and ErrDuplicateKey when a
key repeats within one mapping:

	_, err := parser.CFG().Parse(strings.NewReader("just text"))
	errors.Is(err, parser.ErrMalformedLine) // true

A bracketed document root parses to a Sequence. It is valid syntax but not
a valid configuration document; the store rejects it.

# Format Notes

YAML: key order is preserved, `<<` merge keys are honored, explicit keys win
over merged ones, and documents with more than one `---` section fail.

JSON: key order is preserved and duplicate keys fail. Integers stay Int.

TOML: tables come back with sorted keys. Dates and times become strings.
*/
package parser
