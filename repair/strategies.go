package repair

import (
	"fmt"
	"strings"

	fjson "github.com/mcncl/fjson"
)

// BracketMatching scans the whole input with a bracket stack, skipping
// string contents, and proposes removing unmatched closers, replacing
// mismatched closers, or appending the missing closers at the end of
// the input. Confidence drops as the imbalance grows less localized.
type BracketMatching struct{}

func (BracketMatching) Name() string { return "bracket_matching" }

func (BracketMatching) Propose(ctx *Context) []Suggestion {
	scan := scanBrackets(ctx.Input)
	var out []Suggestion

	for _, m := range scan.mismatched {
		want := matchingCloser(m.open)
		out = append(out, Suggestion{
			Span:        fjson.SingleSpan(m.pos),
			Replacement: string(want),
			Confidence:  0.75,
			Strategy:    "bracket_matching",
			Rationale:   fmt.Sprintf("closer %q does not match open %q", m.got, m.open),
		})
	}
	for _, pos := range scan.unmatchedClosers {
		out = append(out, Suggestion{
			Span:        fjson.SingleSpan(pos),
			Replacement: "",
			Confidence:  0.8,
			Strategy:    "bracket_matching",
			Rationale:   fmt.Sprintf("closer %q has no matching opener", ctx.Input[pos]),
		})
	}
	if n := len(scan.open); n > 0 {
		var closers strings.Builder
		for i := n - 1; i >= 0; i-- {
			closers.WriteByte(matchingCloser(scan.open[i].open))
		}
		conf := 0.9 - 0.1*float64(n-1)
		if conf < 0.3 {
			conf = 0.3
		}
		end := len(ctx.Input)
		out = append(out, Suggestion{
			Span:        fjson.SingleSpan(end),
			Replacement: closers.String(),
			Confidence:  conf,
			Strategy:    "bracket_matching",
			Rationale:   fmt.Sprintf("%d unclosed bracket(s)", n),
		})
	}
	return out
}

// QuoteInference counts unescaped quotes around the failure to detect
// odd parity and proposes inserting the missing quote at the most
// likely boundary, the end of the offending line or the end of input.
type QuoteInference struct{}

func (QuoteInference) Name() string { return "quote_inference" }

func (QuoteInference) Propose(ctx *Context) []Suggestion {
	var out []Suggestion

	switch ctx.Err.Kind {
	case fjson.KindUnterminatedString:
		quote := byte('"')
		if ctx.Pos < len(ctx.Input) && ctx.Input[ctx.Pos] == '\'' {
			quote = '\''
		}
		at := lineEndAfter(ctx.Input, ctx.Pos)
		out = append(out, Suggestion{
			Span:        fjson.SingleSpan(at),
			Replacement: string(quote),
			Confidence:  0.85,
			Strategy:    "quote_inference",
			Rationale:   "string opened here is never closed",
		})
	case fjson.KindUnexpectedEOF:
		if unescapedQuoteCount(ctx.Input)%2 == 1 {
			out = append(out, Suggestion{
				Span:        fjson.SingleSpan(len(ctx.Input)),
				Replacement: `"`,
				Confidence:  0.6,
				Strategy:    "quote_inference",
				Rationale:   "odd number of quotes in input",
			})
		}
	}
	return out
}

// CommaSuggestion detects two adjacent value tokens with no separator
// between them and proposes inserting a comma at the end of the first.
type CommaSuggestion struct{}

func (CommaSuggestion) Name() string { return "comma_insertion" }

func (CommaSuggestion) Propose(ctx *Context) []Suggestion {
	if ctx.Err.Kind != fjson.KindExpected {
		return nil
	}
	prev, cur, ok := tokensAround(ctx.Input, ctx.Pos)
	if !ok {
		return nil
	}
	if !endsValue(prev.Kind) || !startsValue(cur.Kind) {
		return nil
	}
	return []Suggestion{{
		Span:        fjson.SingleSpan(prev.Span.End),
		Replacement: ",",
		Confidence:  0.85,
		Strategy:    "comma_insertion",
		Rationale:   "two values with no separator between them",
	}}
}

// TypeCoercion handles a bare identifier appearing where a value was
// expected by proposing to quote it into a string.
type TypeCoercion struct{}

func (TypeCoercion) Name() string { return "type_coercion" }

func (TypeCoercion) Propose(ctx *Context) []Suggestion {
	if ctx.Err.Kind != fjson.KindExpected {
		return nil
	}
	word, span, ok := identifierAt(ctx.Input, ctx.Pos)
	if !ok {
		return nil
	}
	switch word {
	case "true", "false", "null":
		return nil
	}
	return []Suggestion{{
		Span:        span,
		Replacement: `"` + word + `"`,
		Confidence:  0.75,
		Strategy:    "type_coercion",
		Rationale:   fmt.Sprintf("bare word %q is not a value; quote it", word),
	}}
}

// StructuralRepair is the hail-mary composite: when the input shows
// both quote and bracket damage it rebuilds the whole text by closing
// the quote first and then the brackets. It proposes a single
// low-confidence full-span edit so the localized strategies always
// outrank it.
type StructuralRepair struct{}

func (StructuralRepair) Name() string { return "structural_repair" }

func (StructuralRepair) Propose(ctx *Context) []Suggestion {
	fixed := ctx.Input
	changed := false

	if unescapedQuoteCount(fixed)%2 == 1 {
		fixed += `"`
		changed = true
	}
	scan := scanBrackets(fixed)
	if len(scan.open) > 0 {
		for i := len(scan.open) - 1; i >= 0; i-- {
			fixed += string(matchingCloser(scan.open[i].open))
		}
		changed = true
	}
	if !changed {
		return nil
	}
	return []Suggestion{{
		Span:        fjson.NewSpan(0, len(ctx.Input)),
		Replacement: fixed,
		Confidence:  0.4,
		Strategy:    "structural_repair",
		Rationale:   "close open quote and brackets across the whole input",
	}}
}

type openBracket struct {
	open byte
	pos  int
}

type mismatch struct {
	open byte
	got  byte
	pos  int
}

type bracketScan struct {
	open             []openBracket
	unmatchedClosers []int
	mismatched       []mismatch
}

// scanBrackets walks the input tracking bracket nesting. String
// contents are skipped so brackets inside literals do not count; an
// unterminated string swallows the rest of its line.
func scanBrackets(input string) bracketScan {
	var scan bracketScan
	for i := 0; i < len(input); i++ {
		c := input[i]
		switch c {
		case '"', '\'':
			i = skipStringFrom(input, i)
		case '{', '[':
			scan.open = append(scan.open, openBracket{open: c, pos: i})
		case '}', ']':
			if len(scan.open) == 0 {
				scan.unmatchedClosers = append(scan.unmatchedClosers, i)
				continue
			}
			top := scan.open[len(scan.open)-1]
			scan.open = scan.open[:len(scan.open)-1]
			if matchingCloser(top.open) != c {
				scan.mismatched = append(scan.mismatched, mismatch{open: top.open, got: c, pos: i})
			}
		}
	}
	return scan
}

// skipStringFrom returns the index of the closing quote of the string
// starting at start, or the end of its line when it never closes.
func skipStringFrom(input string, start int) int {
	quote := input[start]
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case quote:
			return i
		case '\n':
			return i - 1
		}
	}
	return len(input) - 1
}

func matchingCloser(open byte) byte {
	if open == '{' {
		return '}'
	}
	return ']'
}

// unescapedQuoteCount counts double quotes not preceded by a
// backslash.
func unescapedQuoteCount(input string) int {
	n := 0
	for i := 0; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			n++
		}
	}
	return n
}

// lineEndAfter returns the index just before the newline that ends the
// line containing pos, or len(input) for the last line.
func lineEndAfter(input string, pos int) int {
	for i := pos; i < len(input); i++ {
		if input[i] == '\n' || input[i] == '\r' {
			return i
		}
	}
	return len(input)
}

// tokensAround lexes the input and returns the token ending before pos
// and the token covering pos. Lexing stops at the first lexer error.
func tokensAround(input string, pos int) (prev, cur fjson.Token, ok bool) {
	lex := fjson.NewLexer(input, fjson.DefaultOptions())
	var last fjson.Token
	haveLast := false
	for {
		tok, err := lex.Next()
		if err != nil || tok.Kind == fjson.TokenEOF {
			return fjson.Token{}, fjson.Token{}, false
		}
		if tok.Kind == fjson.TokenNewline || tok.Kind == fjson.TokenLineComment || tok.Kind == fjson.TokenBlockComment {
			continue
		}
		if tok.Span.Start <= pos && pos < tok.Span.End {
			if !haveLast {
				return fjson.Token{}, fjson.Token{}, false
			}
			return last, tok, true
		}
		if tok.Span.Start > pos {
			return fjson.Token{}, fjson.Token{}, false
		}
		last = tok
		haveLast = true
	}
}

func endsValue(k fjson.TokenKind) bool {
	switch k {
	case fjson.TokenString, fjson.TokenNumber, fjson.TokenTrue, fjson.TokenFalse,
		fjson.TokenNull, fjson.TokenRBrace, fjson.TokenRBracket:
		return true
	}
	return false
}

func startsValue(k fjson.TokenKind) bool {
	switch k {
	case fjson.TokenString, fjson.TokenNumber, fjson.TokenTrue, fjson.TokenFalse,
		fjson.TokenNull, fjson.TokenLBrace, fjson.TokenLBracket:
		return true
	}
	return false
}

// identifierAt extracts the identifier-shaped word starting at pos.
func identifierAt(input string, pos int) (string, fjson.Span, bool) {
	if pos >= len(input) {
		return "", fjson.Span{}, false
	}
	c := input[pos]
	if !isWordStart(c) {
		return "", fjson.Span{}, false
	}
	end := pos + 1
	for end < len(input) && isWordPart(input[end]) {
		end++
	}
	return input[pos:end], fjson.NewSpan(pos, end), true
}

func isWordStart(c byte) bool {
	return c == '_' || c == '$' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || ('0' <= c && c <= '9')
}
