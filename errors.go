package fjson

import (
	"fmt"
	"strings"
)

// ErrorKind categorizes parse failures. The set is closed: the lexer
// and parser only ever produce these kinds.
type ErrorKind int

const (
	// KindUnexpectedChar reports a character that cannot start any token.
	KindUnexpectedChar ErrorKind = iota
	// KindUnexpectedEOF reports input that ended while more was required.
	KindUnexpectedEOF
	// KindInvalidNumber reports a malformed numeric literal.
	KindInvalidNumber
	// KindInvalidEscape reports an unknown backslash escape in a string.
	KindInvalidEscape
	// KindInvalidUnicode reports a malformed \uXXXX escape.
	KindInvalidUnicode
	// KindUnterminatedString reports a string with no closing quote.
	KindUnterminatedString
	// KindExpected reports a grammar-level mismatch between the token
	// the parser required and the token it found.
	KindExpected
	// KindDepthLimitExceeded reports nesting beyond Options.MaxDepth.
	KindDepthLimitExceeded
	// KindCustom covers configuration and other non-positional errors.
	KindCustom
)

// Code returns a stable string identifier for the kind.
func (k ErrorKind) Code() string {
	switch k {
	case KindUnexpectedChar:
		return "unexpected_char"
	case KindUnexpectedEOF:
		return "unexpected_eof"
	case KindInvalidNumber:
		return "invalid_number"
	case KindInvalidEscape:
		return "invalid_escape"
	case KindInvalidUnicode:
		return "invalid_unicode"
	case KindUnterminatedString:
		return "unterminated_string"
	case KindExpected:
		return "expected_token"
	case KindDepthLimitExceeded:
		return "depth_limit_exceeded"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Suggestions returns generic, human-readable hints for fixing errors
// of this kind. Used by the CLI diagnostic output; the repair package
// produces the precise, confidence-scored edits.
func (k ErrorKind) Suggestions() []string {
	switch k {
	case KindUnexpectedChar:
		return []string{
			"check for typos in the JSON syntax",
			"ensure strings are properly quoted",
			"verify bracket and brace matching",
		}
	case KindUnexpectedEOF:
		return []string{
			"check for unclosed strings, objects, or arrays",
			"add the missing closing characters",
		}
	case KindInvalidNumber:
		return []string{
			"ensure decimal numbers have digits on at least one side of the point",
			"verify exponent notation is complete (e.g. 1e10)",
		}
	case KindInvalidEscape:
		return []string{
			`use a valid escape: \" \\ \/ \b \f \n \r \t or \uXXXX`,
		}
	case KindInvalidUnicode:
		return []string{
			`use exactly 4 hex digits after \u`,
			"for characters above U+FFFF, use a surrogate pair",
		}
	case KindUnterminatedString:
		return []string{
			"add the closing quote to the string literal",
			"escape any raw newlines inside the string",
		}
	case KindExpected:
		return []string{
			"check for missing colons or commas",
			"verify the structure of objects and arrays",
		}
	case KindDepthLimitExceeded:
		return []string{
			"reduce the nesting depth of the document",
			"raise Options.MaxDepth if the input is trusted",
		}
	default:
		return nil
	}
}

// ParseError is the single error type produced by Parse and
// ParseWithOptions. It carries the failure kind and the byte position
// of the first grammar violation; no partial value is ever returned
// alongside it.
type ParseError struct {
	Kind ErrorKind
	// Pos is the byte offset of the violation. Negative for errors
	// with no meaningful position (KindCustom).
	Pos int
	// Char is set for KindUnexpectedChar.
	Char rune
	// Expected and Found are set for KindExpected.
	Expected string
	Found    string
	// Msg is set for KindCustom.
	Msg string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return e.Message()
}

// Message returns the human-readable description without positions
// being formatted separately; bindings surface Message and Position
// as distinct fields.
func (e *ParseError) Message() string {
	switch e.Kind {
	case KindUnexpectedChar:
		return fmt.Sprintf("unexpected character %q at position %d", e.Char, e.Pos)
	case KindUnexpectedEOF:
		return fmt.Sprintf("unexpected end of input at position %d", e.Pos)
	case KindInvalidNumber:
		return fmt.Sprintf("invalid number format at position %d", e.Pos)
	case KindInvalidEscape:
		return fmt.Sprintf("invalid string escape sequence at position %d", e.Pos)
	case KindInvalidUnicode:
		return fmt.Sprintf("invalid unicode escape at position %d", e.Pos)
	case KindUnterminatedString:
		return fmt.Sprintf("unterminated string starting at position %d", e.Pos)
	case KindExpected:
		return fmt.Sprintf("expected %s but found %s at position %d", e.Expected, e.Found, e.Pos)
	case KindDepthLimitExceeded:
		return fmt.Sprintf("depth limit exceeded at position %d", e.Pos)
	case KindCustom:
		return e.Msg
	default:
		return "unknown parse error"
	}
}

// Position returns the byte offset of the failure, or -1 when the
// error has no position.
func (e *ParseError) Position() int {
	if e.Kind == KindCustom {
		return -1
	}
	return e.Pos
}

// Is reports kind equality, so callers can match with errors.Is
// against a sentinel of the same kind.
func (e *ParseError) Is(target error) bool {
	t, ok := target.(*ParseError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// LineCol translates the error position into 1-based line/column
// coordinates within the original input.
func (e *ParseError) LineCol(input string) LineCol {
	pos := e.Position()
	if pos < 0 {
		pos = 0
	}
	return PositionToLineCol(input, pos)
}

// Diagnostic renders a multi-line report with the error message, the
// offending source line, a caret marker, and generic fix hints.
func (e *ParseError) Diagnostic(input string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "error[%s]: %s\n", e.Kind.Code(), e.Message())

	pos := e.Position()
	if pos >= 0 {
		lc := e.LineCol(input)
		fmt.Fprintf(&b, "  --> line %d, column %d\n", lc.Line, lc.Column)
		if line, ok := sourceLine(input, pos); ok {
			fmt.Fprintf(&b, "   | %s\n", line)
			fmt.Fprintf(&b, "   | %s^\n", strings.Repeat(" ", lc.Column-1))
		}
	}

	if hints := e.Kind.Suggestions(); len(hints) > 0 {
		b.WriteString("hints:\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "  - %s\n", h)
		}
	}
	return b.String()
}

// sourceLine returns the full source line containing pos, with any
// trailing carriage return removed.
func sourceLine(input string, pos int) (string, bool) {
	if pos > len(input) {
		pos = len(input)
	}
	start := strings.LastIndexByte(input[:pos], '\n') + 1
	end := strings.IndexByte(input[pos:], '\n')
	if end < 0 {
		end = len(input)
	} else {
		end += pos
	}
	line := strings.TrimSuffix(input[start:end], "\r")
	return line, true
}

// Error constructors. Keeping construction behind helpers mirrors the
// closed-taxonomy contract: call sites never assemble kinds by hand.

func errUnexpectedChar(ch rune, pos int) *ParseError {
	return &ParseError{Kind: KindUnexpectedChar, Char: ch, Pos: pos}
}

func errUnexpectedEOF(pos int) *ParseError {
	return &ParseError{Kind: KindUnexpectedEOF, Pos: pos}
}

func errInvalidNumber(pos int) *ParseError {
	return &ParseError{Kind: KindInvalidNumber, Pos: pos}
}

func errInvalidEscape(pos int) *ParseError {
	return &ParseError{Kind: KindInvalidEscape, Pos: pos}
}

func errInvalidUnicode(pos int) *ParseError {
	return &ParseError{Kind: KindInvalidUnicode, Pos: pos}
}

func errUnterminatedString(pos int) *ParseError {
	return &ParseError{Kind: KindUnterminatedString, Pos: pos}
}

func errExpected(expected, found string, pos int) *ParseError {
	return &ParseError{Kind: KindExpected, Expected: expected, Found: found, Pos: pos}
}

func errDepthLimit(pos int) *ParseError {
	return &ParseError{Kind: KindDepthLimitExceeded, Pos: pos}
}

func errCustom(msg string) *ParseError {
	return &ParseError{Kind: KindCustom, Msg: msg, Pos: -1}
}
