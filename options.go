package fjson

// Options controls which forgiving extensions the parser accepts.
// An Options value is read-only for the duration of a parse and is
// safe to share between concurrent parses.
type Options struct {
	// AllowComments accepts // and # line comments and /* */ block
	// comments anywhere whitespace is valid.
	AllowComments bool
	// AllowTrailingCommas accepts a separator immediately before a
	// closing '}' or ']'.
	AllowTrailingCommas bool
	// AllowUnquotedKeys accepts bare identifiers as object keys.
	AllowUnquotedKeys bool
	// AllowSingleQuotes accepts 'single-quoted' string literals.
	AllowSingleQuotes bool
	// ImplicitTopLevel wraps a bare key:value sequence in an implicit
	// object and a bare value sequence in an implicit array.
	ImplicitTopLevel bool
	// NewlineAsComma treats a raw newline as an element/pair separator
	// wherever a comma would be valid.
	NewlineAsComma bool
	// MaxDepth bounds object/array nesting. Exceeding it fails the
	// parse immediately with a depth limit error.
	MaxDepth int
}

// DefaultMaxDepth is the nesting limit used by DefaultOptions.
const DefaultMaxDepth = 128

// DefaultOptions enables every forgiving extension.
func DefaultOptions() Options {
	return Options{
		AllowComments:       true,
		AllowTrailingCommas: true,
		AllowUnquotedKeys:   true,
		AllowSingleQuotes:   true,
		ImplicitTopLevel:    true,
		NewlineAsComma:      true,
		MaxDepth:            DefaultMaxDepth,
	}
}

// StrictOptions disables every forgiving extension, accepting only
// RFC 8259 JSON.
func StrictOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}
