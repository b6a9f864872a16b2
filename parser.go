package fjson

import (
	"strconv"
	"strings"
)

// colonLookaheadLimit bounds how many tokens the parser scans ahead to
// decide between an implicit top-level object and an implicit array.
// The colon must appear at the same nesting level within this window.
const colonLookaheadLimit = 64

// parser consumes the token stream and builds a Value. It owns all
// forgiving-grammar disambiguation; on the first violation it returns
// the error and stops, never producing a partial Value.
type parser struct {
	input string
	lex   *Lexer
	opts  Options
	tok   Token
	depth int
}

func newParser(input string, opts Options) *parser {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &parser{
		input: input,
		lex:   NewLexer(input, opts),
		opts:  opts,
	}
}

// next advances to the following significant token. Comment tokens are
// skipped when allowed and rejected at their first byte when not.
// Newline tokens are surfaced only when NewlineAsComma gives them
// grammatical meaning; otherwise they are plain whitespace.
func (p *parser) next() *ParseError {
	for {
		tok, err := p.lex.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case TokenLineComment, TokenBlockComment:
			if !p.opts.AllowComments {
				return errUnexpectedChar(rune(tok.Text[0]), tok.Span.Start)
			}
			continue
		case TokenNewline:
			if !p.opts.NewlineAsComma {
				continue
			}
		}
		p.tok = tok
		return nil
	}
}

// skipNewlines consumes newline tokens in positions where they carry
// no separator meaning (after a colon, before a value, around the
// document edges).
func (p *parser) skipNewlines() *ParseError {
	for p.tok.Kind == TokenNewline {
		if err := p.next(); err != nil {
			return err
		}
	}
	return nil
}

// isSeparator reports whether the current token separates elements or
// pairs: a comma always, a newline when NewlineAsComma is enabled.
func (p *parser) isSeparator() bool {
	return p.tok.Kind == TokenComma || p.tok.Kind == TokenNewline
}

// consumeSeparators consumes a run of separators, collapsing them into
// one logical separator. It reports whether any separator was seen and
// never synthesizes elements for the extra ones.
func (p *parser) consumeSeparators() (bool, *ParseError) {
	seen := false
	for p.isSeparator() {
		seen = true
		if err := p.next(); err != nil {
			return seen, err
		}
	}
	return seen, nil
}

func (p *parser) found() string {
	return p.tok.Kind.String()
}

// parseDocument is the top-level entry. Explicit objects and arrays
// parse normally and must consume the whole input; anything else goes
// through the implicit top-level disambiguation when that option is
// enabled.
func (p *parser) parseDocument() (Value, *ParseError) {
	if err := p.next(); err != nil {
		return Value{}, err
	}
	if err := p.skipNewlines(); err != nil {
		return Value{}, err
	}

	// Whitespace-only input parses as null.
	if p.tok.Kind == TokenEOF {
		return Null(), nil
	}

	if p.tok.Kind == TokenLBrace || p.tok.Kind == TokenLBracket || !p.opts.ImplicitTopLevel {
		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		if err := p.expectEnd(); err != nil {
			return Value{}, err
		}
		return v, nil
	}

	// Leading separators collapse away instead of creating elements.
	if _, err := p.consumeSeparators(); err != nil {
		return Value{}, err
	}
	if p.tok.Kind == TokenEOF {
		return Null(), nil
	}

	if p.colonAhead() {
		return p.parseImplicitObject()
	}
	return p.parseImplicitSequence()
}

// expectEnd requires that only insignificant trivia remains.
func (p *parser) expectEnd() *ParseError {
	if err := p.skipNewlines(); err != nil {
		return err
	}
	if p.tok.Kind != TokenEOF {
		return errExpected("end of input", p.found(), p.tok.Span.Start)
	}
	return nil
}

// colonAhead decides the implicit top-level shape. A key:value
// document starts with a potential key token followed by a colon at
// the same nesting level within the lookahead window; any same-level
// separator before the colon settles the question in favor of an
// array. This lookahead rule is deliberate and must stay stable: a
// colon buried inside a nested literal never triggers object mode.
func (p *parser) colonAhead() bool {
	switch p.tok.Kind {
	case TokenString, TokenIdentifier, TokenNumber:
	default:
		return false
	}

	lx := *p.lex // value copy gives an independent cursor
	depth := 0
	for i := 0; i < colonLookaheadLimit; i++ {
		tok, err := lx.Next()
		if err != nil {
			return false
		}
		switch tok.Kind {
		case TokenColon:
			if depth == 0 {
				return true
			}
		case TokenLBrace, TokenLBracket:
			depth++
		case TokenRBrace, TokenRBracket:
			depth--
			if depth < 0 {
				return false
			}
		case TokenComma:
			if depth == 0 {
				return false
			}
		case TokenNewline:
			if depth == 0 && p.opts.NewlineAsComma {
				return false
			}
		case TokenEOF:
			return false
		}
	}
	return false
}

// parseImplicitObject parses the rest of the input as key:value pairs
// wrapped in an implied object.
func (p *parser) parseImplicitObject() (Value, *ParseError) {
	obj := NewObject()
	for {
		if err := p.skipNewlines(); err != nil {
			return Value{}, err
		}
		if p.tok.Kind == TokenEOF {
			return ObjectValue(obj), nil
		}

		key, err := p.parseImplicitKey()
		if err != nil {
			return Value{}, err
		}
		if err := p.skipNewlines(); err != nil {
			return Value{}, err
		}
		if p.tok.Kind != TokenColon {
			return Value{}, errExpected("':'", p.found(), p.tok.Span.Start)
		}
		if err := p.next(); err != nil {
			return Value{}, err
		}

		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)

		sep, err := p.consumeSeparators()
		if err != nil {
			return Value{}, err
		}
		if p.tok.Kind == TokenEOF {
			return ObjectValue(obj), nil
		}
		if !sep {
			return Value{}, errExpected("',' or newline or end of input", p.found(), p.tok.Span.Start)
		}
	}
}

// parseImplicitKey accepts the key forms valid at the implicit top
// level: quoted strings, identifiers (when unquoted keys are enabled),
// and bare numbers, whose raw lexeme becomes the key text.
func (p *parser) parseImplicitKey() (string, *ParseError) {
	switch p.tok.Kind {
	case TokenString:
		key := p.tok.Text
		return key, p.next()
	case TokenIdentifier:
		if !p.opts.AllowUnquotedKeys {
			return "", errExpected("key", p.found(), p.tok.Span.Start)
		}
		key := p.tok.Text
		return key, p.next()
	case TokenNumber:
		key := p.tok.Text
		return key, p.next()
	default:
		return "", errExpected("key", p.found(), p.tok.Span.Start)
	}
}

// parseImplicitSequence parses bare values as an implied array. A
// single value with nothing after it stays a plain value rather than a
// one-element array.
func (p *parser) parseImplicitSequence() (Value, *ParseError) {
	first, err := p.parseValue()
	if err != nil {
		return Value{}, err
	}
	if p.tok.Kind == TokenEOF {
		return first, nil
	}

	elems := []Value{first}
	sawComma := false
	for {
		sep := false
		for p.isSeparator() {
			sep = true
			if p.tok.Kind == TokenComma {
				sawComma = true
			}
			if err := p.next(); err != nil {
				return Value{}, err
			}
		}
		if p.tok.Kind == TokenEOF {
			// Trailing newlines after a lone value do not promote it
			// to a one-element array; a comma does.
			if len(elems) == 1 && !sawComma {
				return first, nil
			}
			return Array(elems...), nil
		}
		if !sep {
			return Value{}, errExpected("',' or newline or end of input", p.found(), p.tok.Span.Start)
		}

		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)
	}
}

// parseValue parses a single value starting at the current token.
func (p *parser) parseValue() (Value, *ParseError) {
	if err := p.skipNewlines(); err != nil {
		return Value{}, err
	}

	switch p.tok.Kind {
	case TokenNull:
		return Null(), p.next()
	case TokenTrue:
		return Bool(true), p.next()
	case TokenFalse:
		return Bool(false), p.next()
	case TokenString:
		v := String(p.tok.Text)
		return v, p.next()
	case TokenNumber:
		v, err := parseNumberLiteral(p.tok.Text, p.tok.Span.Start)
		if err != nil {
			return Value{}, err
		}
		return v, p.next()
	case TokenLBrace:
		return p.parseObject()
	case TokenLBracket:
		return p.parseArray()
	case TokenEOF:
		return Value{}, errUnexpectedEOF(p.tok.Span.Start)
	default:
		return Value{}, errExpected("value", p.found(), p.tok.Span.Start)
	}
}

// parseObject parses an explicit { ... } object. Duplicate keys keep
// their first position but take the last value.
func (p *parser) parseObject() (Value, *ParseError) {
	if p.depth >= p.opts.MaxDepth {
		return Value{}, errDepthLimit(p.tok.Span.Start)
	}
	p.depth++
	defer func() { p.depth-- }()

	if err := p.next(); err != nil { // past '{'
		return Value{}, err
	}
	// Leading separators collapse away.
	if _, err := p.consumeSeparators(); err != nil {
		return Value{}, err
	}

	obj := NewObject()
	for {
		if p.tok.Kind == TokenRBrace {
			return ObjectValue(obj), p.next()
		}
		if p.tok.Kind == TokenEOF {
			return Value{}, errUnexpectedEOF(p.tok.Span.Start)
		}

		key, err := p.parseObjectKey()
		if err != nil {
			return Value{}, err
		}
		if err := p.skipNewlines(); err != nil {
			return Value{}, err
		}
		if p.tok.Kind != TokenColon {
			return Value{}, errExpected("':'", p.found(), p.tok.Span.Start)
		}
		if err := p.next(); err != nil {
			return Value{}, err
		}

		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		obj.Set(key, v)

		sep, err := p.consumeSeparators()
		if err != nil {
			return Value{}, err
		}
		switch {
		case p.tok.Kind == TokenRBrace:
			if sep && !p.opts.AllowTrailingCommas {
				return Value{}, errExpected("key", p.found(), p.tok.Span.Start)
			}
			return ObjectValue(obj), p.next()
		case p.tok.Kind == TokenEOF:
			return Value{}, errUnexpectedEOF(p.tok.Span.Start)
		case !sep:
			return Value{}, errExpected("',' or '}'", p.found(), p.tok.Span.Start)
		}
	}
}

// parseObjectKey accepts a quoted string, or an identifier when
// unquoted keys are enabled.
func (p *parser) parseObjectKey() (string, *ParseError) {
	switch p.tok.Kind {
	case TokenString:
		key := p.tok.Text
		return key, p.next()
	case TokenIdentifier:
		if !p.opts.AllowUnquotedKeys {
			return "", errExpected("key", p.found(), p.tok.Span.Start)
		}
		key := p.tok.Text
		return key, p.next()
	default:
		return "", errExpected("key", p.found(), p.tok.Span.Start)
	}
}

// parseArray parses an explicit [ ... ] array.
func (p *parser) parseArray() (Value, *ParseError) {
	if p.depth >= p.opts.MaxDepth {
		return Value{}, errDepthLimit(p.tok.Span.Start)
	}
	p.depth++
	defer func() { p.depth-- }()

	if err := p.next(); err != nil { // past '['
		return Value{}, err
	}
	if _, err := p.consumeSeparators(); err != nil {
		return Value{}, err
	}

	var elems []Value
	for {
		if p.tok.Kind == TokenRBracket {
			return Array(elems...), p.next()
		}
		if p.tok.Kind == TokenEOF {
			return Value{}, errUnexpectedEOF(p.tok.Span.Start)
		}

		v, err := p.parseValue()
		if err != nil {
			return Value{}, err
		}
		elems = append(elems, v)

		sep, err := p.consumeSeparators()
		if err != nil {
			return Value{}, err
		}
		switch {
		case p.tok.Kind == TokenRBracket:
			if sep && !p.opts.AllowTrailingCommas {
				return Value{}, errExpected("value", p.found(), p.tok.Span.Start)
			}
			return Array(elems...), p.next()
		case p.tok.Kind == TokenEOF:
			return Value{}, errUnexpectedEOF(p.tok.Span.Start)
		case !sep:
			return Value{}, errExpected("',' or ']'", p.found(), p.tok.Span.Start)
		}
	}
}

// parseNumberLiteral converts a lexed numeric literal into a Value.
// The literal is an integer unless it has fractional digits, an
// exponent, or overflows int64; a trailing point ("5.") still counts
// as an integer, and "-0" normalizes to integer zero.
func parseNumberLiteral(text string, pos int) (Value, *ParseError) {
	s := strings.ReplaceAll(text, "_", "")

	neg := false
	body := s
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		body = s[1:]
	case strings.HasPrefix(s, "+"):
		body = s[1:]
	}

	if len(body) >= 2 && body[0] == '0' {
		var base int
		switch body[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseInt(body[2:], base, 64)
			if err != nil {
				return Value{}, errInvalidNumber(pos)
			}
			if neg {
				n = -n
			}
			return Int(n), nil
		}
	}

	dot := strings.IndexByte(s, '.')
	hasExp := strings.ContainsAny(s, "eE")
	hasFracDigits := dot >= 0 && dot+1 < len(s) && isDigit(s[dot+1])

	if !hasExp && !hasFracDigits {
		intStr := s
		if dot >= 0 {
			intStr = s[:dot]
		}
		intStr = strings.TrimPrefix(intStr, "+")
		if n, err := strconv.ParseInt(intStr, 10, 64); err == nil {
			return Int(n), nil
		}
		// Overflows int64: fall through to float.
	}

	f, err := strconv.ParseFloat(strings.TrimPrefix(s, "+"), 64)
	if err != nil {
		return Value{}, errInvalidNumber(pos)
	}
	return Float(f), nil
}
