package fjson

import "fmt"

// TokenKind identifies the lexical class of a token.
type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenColon
	TokenComma
	TokenNewline
	TokenString
	TokenNumber
	TokenIdentifier
	TokenTrue
	TokenFalse
	TokenNull
	TokenLineComment
	TokenBlockComment
)

// String returns a short human-readable name for the token kind,
// used in "expected X but found Y" error messages.
func (k TokenKind) String() string {
	switch k {
	case TokenEOF:
		return "end of input"
	case TokenLBrace:
		return "'{'"
	case TokenRBrace:
		return "'}'"
	case TokenLBracket:
		return "'['"
	case TokenRBracket:
		return "']'"
	case TokenColon:
		return "':'"
	case TokenComma:
		return "','"
	case TokenNewline:
		return "newline"
	case TokenString:
		return "string"
	case TokenNumber:
		return "number"
	case TokenIdentifier:
		return "identifier"
	case TokenTrue:
		return "'true'"
	case TokenFalse:
		return "'false'"
	case TokenNull:
		return "'null'"
	case TokenLineComment:
		return "line comment"
	case TokenBlockComment:
		return "block comment"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexical unit together with its source location.
// For TokenString, Text holds the decoded string content (escapes
// resolved); for every other kind it holds the raw lexeme.
type Token struct {
	Kind TokenKind
	Text string
	Span Span
}

// Span is a half-open byte range [Start, End) into the source text.
type Span struct {
	Start int
	End   int
}

// NewSpan creates a span. End must be >= Start.
func NewSpan(start, end int) Span {
	return Span{Start: start, End: end}
}

// SingleSpan creates a one-byte span at pos.
func SingleSpan(pos int) Span {
	return Span{Start: pos, End: pos + 1}
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// IsEmpty reports whether the span covers no bytes.
func (s Span) IsEmpty() bool {
	return s.End <= s.Start
}

// Contains reports whether pos falls inside the span.
func (s Span) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// Overlaps reports whether the two spans share at least one byte.
// Empty spans overlap a span that contains their start position.
func (s Span) Overlaps(other Span) bool {
	if s.IsEmpty() && other.IsEmpty() {
		return s.Start == other.Start
	}
	if s.IsEmpty() {
		return other.Contains(s.Start)
	}
	if other.IsEmpty() {
		return s.Contains(other.Start)
	}
	return s.Start < other.End && other.Start < s.End
}

// Merge returns the smallest span covering both s and other.
func (s Span) Merge(other Span) Span {
	merged := s
	if other.Start < merged.Start {
		merged.Start = other.Start
	}
	if other.End > merged.End {
		merged.End = other.End
	}
	return merged
}

// Extract returns the source text covered by the span, clamped to the
// bounds of input.
func (s Span) Extract(input string) string {
	start := s.Start
	if start > len(input) {
		start = len(input)
	}
	end := s.End
	if end > len(input) {
		end = len(input)
	}
	if end < start {
		end = start
	}
	return input[start:end]
}

// LineCol holds 1-based line and column coordinates.
type LineCol struct {
	Line   int
	Column int
}

// PositionToLineCol translates a byte offset into line/column
// coordinates. A "\r\n" pair and a bare "\r" each count as a single
// logical newline.
func PositionToLineCol(input string, pos int) LineCol {
	if pos > len(input) {
		pos = len(input)
	}
	line, col := 1, 1
	for i := 0; i < pos; i++ {
		switch input[i] {
		case '\n':
			line++
			col = 1
		case '\r':
			// \r\n counts once, at the \n.
			if i+1 < len(input) && input[i+1] == '\n' {
				col++
				continue
			}
			line++
			col = 1
		default:
			col++
		}
	}
	return LineCol{Line: line, Column: col}
}

// LineCol returns the line/column of the span's start within input.
func (s Span) LineCol(input string) LineCol {
	return PositionToLineCol(input, s.Start)
}
