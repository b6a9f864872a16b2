// Package fjson is a forgiving JSON parser. It accepts all of
// RFC 8259 plus a developer-friendly superset: comments, trailing
// commas, unquoted object keys, single-quoted strings, implicit
// top-level objects and arrays, newline separators, and extended
// numeric literals (leading signs, bare-dot decimals, hex/octal/binary
// prefixes, underscore separators).
//
// Parsing is strict about failure: the first grammar violation is
// returned as a *ParseError with a byte position, and no partial value
// is produced. The companion repair package turns a failed parse into
// ranked, confidence-scored fix suggestions.
package fjson

// Parse parses input with DefaultOptions (every forgiving extension
// enabled, MaxDepth 128).
func Parse(input string) (Value, error) {
	return ParseWithOptions(input, DefaultOptions())
}

// ParseWithOptions parses input under the given options. For a fixed
// (input, options) pair the result is deterministic. Separate parses
// are independent and may run concurrently.
func ParseWithOptions(input string, opts Options) (Value, error) {
	if opts.MaxDepth < 0 {
		return Value{}, errCustom("options: max depth must not be negative")
	}
	p := newParser(input, opts)
	v, err := p.parseDocument()
	if err != nil {
		return Value{}, err
	}
	return v, nil
}
