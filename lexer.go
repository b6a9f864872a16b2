package fjson

// Lexer converts source text into a stream of tokens. It keeps only a
// cursor between calls; copying a Lexer value yields an independent
// stream, which the parser uses for bounded lookahead.
type Lexer struct {
	input string
	pos   int
	opts  Options
}

// NewLexer creates a lexer over input. The options decide whether
// single-quoted strings are tokenized as strings and have no other
// lexical effect; comments and identifiers are always surfaced as
// tokens so the parser can reject them with a precise position.
func NewLexer(input string, opts Options) *Lexer {
	return &Lexer{input: input, opts: opts}
}

// Pos returns the current byte offset of the cursor.
func (l *Lexer) Pos() int {
	return l.pos
}

// Next scans and returns the next token. After the end of input it
// returns TokenEOF indefinitely.
func (l *Lexer) Next() (Token, *ParseError) {
	l.skipBlank()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: NewSpan(l.pos, l.pos)}, nil
	}

	start := l.pos
	switch c := l.input[l.pos]; c {
	case '{':
		l.pos++
		return l.punct(TokenLBrace, start), nil
	case '}':
		l.pos++
		return l.punct(TokenRBrace, start), nil
	case '[':
		l.pos++
		return l.punct(TokenLBracket, start), nil
	case ']':
		l.pos++
		return l.punct(TokenRBracket, start), nil
	case ':':
		l.pos++
		return l.punct(TokenColon, start), nil
	case ',':
		l.pos++
		return l.punct(TokenComma, start), nil
	case '\n':
		l.pos++
		return l.punct(TokenNewline, start), nil
	case '\r':
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '\n' {
			l.pos++
		}
		return Token{Kind: TokenNewline, Text: "\n", Span: NewSpan(start, l.pos)}, nil
	case '"':
		return l.scanString('"')
	case '\'':
		if !l.opts.AllowSingleQuotes {
			return Token{}, errUnexpectedChar('\'', start)
		}
		return l.scanString('\'')
	case '/':
		if l.pos+1 < len(l.input) {
			switch l.input[l.pos+1] {
			case '/':
				return l.scanLineComment(start, 2), nil
			case '*':
				return l.scanBlockComment(start)
			}
		}
		return Token{}, errUnexpectedChar('/', start)
	case '#':
		return l.scanLineComment(start, 1), nil
	default:
		if c == '+' || c == '-' || c == '.' || isDigit(c) {
			return l.scanNumber()
		}
		if isIdentStart(c) {
			return l.scanIdentifier(), nil
		}
		return Token{}, errUnexpectedChar(rune(c), start)
	}
}

func (l *Lexer) punct(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: l.input[start:l.pos], Span: NewSpan(start, l.pos)}
}

// skipBlank consumes spaces and tabs. Newlines are never skipped here;
// their significance depends on the grammar, so they are surfaced as
// tokens.
func (l *Lexer) skipBlank() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t':
			l.pos++
		default:
			return
		}
	}
}

// scanString consumes a quoted string literal and decodes its escapes.
// A raw newline before the closing quote terminates the scan with an
// unterminated-string error at the opening quote.
func (l *Lexer) scanString(quote byte) (Token, *ParseError) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		switch c := l.input[l.pos]; c {
		case '\\':
			l.pos++
			if l.pos < len(l.input) {
				l.pos++
			}
		case '\n', '\r':
			return Token{}, errUnterminatedString(start)
		case quote:
			l.pos++
			content := l.input[start+1 : l.pos-1]
			decoded, err := decodeStringLiteral(content, start+1)
			if err != nil {
				return Token{}, err
			}
			return Token{Kind: TokenString, Text: decoded, Span: NewSpan(start, l.pos)}, nil
		default:
			l.pos++
		}
	}
	return Token{}, errUnterminatedString(start)
}

// scanNumber consumes a numeric literal: optional sign, decimal digits
// with an optional fractional part (either side of the point may be
// empty, not both), optional exponent, or a radix-prefixed integer
// (0x, 0o, 0b). Underscore digit separators are accepted throughout.
// Only the extent is validated here; value conversion happens in the
// parser.
func (l *Lexer) scanNumber() (Token, *ParseError) {
	start := l.pos

	if c := l.input[l.pos]; c == '+' || c == '-' {
		l.pos++
	}

	if rest := l.input[l.pos:]; len(rest) >= 2 && rest[0] == '0' {
		switch rest[1] {
		case 'x', 'X':
			return l.scanRadixDigits(start, 2, isHexDigit)
		case 'o', 'O':
			return l.scanRadixDigits(start, 2, isOctalDigit)
		case 'b', 'B':
			return l.scanRadixDigits(start, 2, isBinaryDigit)
		}
	}

	intDigits := l.scanDigits()

	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		l.pos++
		if l.pos < len(l.input) && l.input[l.pos] == '.' {
			return Token{}, errInvalidNumber(start)
		}
		fracDigits := l.scanDigits()
		if intDigits == 0 && fracDigits == 0 {
			return Token{}, errInvalidNumber(start)
		}
	} else if intDigits == 0 {
		// A bare sign with no digits at all.
		return Token{}, errInvalidNumber(start)
	}

	if l.pos < len(l.input) && (l.input[l.pos] == 'e' || l.input[l.pos] == 'E') {
		l.pos++
		if l.pos < len(l.input) && (l.input[l.pos] == '+' || l.input[l.pos] == '-') {
			l.pos++
		}
		if l.scanDigits() == 0 {
			return Token{}, errInvalidNumber(start)
		}
	}

	return Token{Kind: TokenNumber, Text: l.input[start:l.pos], Span: NewSpan(start, l.pos)}, nil
}

// scanRadixDigits consumes a 0x/0o/0b literal after the sign. At least
// one digit of the base must follow the prefix.
func (l *Lexer) scanRadixDigits(start, prefixLen int, valid func(byte) bool) (Token, *ParseError) {
	l.pos += prefixLen
	n := 0
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if valid(c) {
			n++
			l.pos++
		} else if c == '_' {
			l.pos++
		} else {
			break
		}
	}
	if n == 0 {
		return Token{}, errInvalidNumber(start)
	}
	return Token{Kind: TokenNumber, Text: l.input[start:l.pos], Span: NewSpan(start, l.pos)}, nil
}

// scanDigits consumes decimal digits and underscore separators,
// returning the count of actual digits.
func (l *Lexer) scanDigits() int {
	n := 0
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if isDigit(c) {
			n++
			l.pos++
		} else if c == '_' {
			l.pos++
		} else {
			break
		}
	}
	return n
}

// scanIdentifier consumes an unquoted identifier and maps the literal
// keywords onto their own token kinds.
func (l *Lexer) scanIdentifier() Token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	text := l.input[start:l.pos]
	kind := TokenIdentifier
	switch text {
	case "true":
		kind = TokenTrue
	case "false":
		kind = TokenFalse
	case "null":
		kind = TokenNull
	}
	return Token{Kind: kind, Text: text, Span: NewSpan(start, l.pos)}
}

// scanLineComment consumes to the end of the line, leaving the newline
// for the next token.
func (l *Lexer) scanLineComment(start, markerLen int) Token {
	l.pos += markerLen
	for l.pos < len(l.input) && l.input[l.pos] != '\n' && l.input[l.pos] != '\r' {
		l.pos++
	}
	return Token{Kind: TokenLineComment, Text: l.input[start:l.pos], Span: NewSpan(start, l.pos)}
}

// scanBlockComment consumes a /* */ comment. Block comments do not
// nest; the first */ closes the comment.
func (l *Lexer) scanBlockComment(start int) (Token, *ParseError) {
	l.pos += 2
	for l.pos+1 < len(l.input) {
		if l.input[l.pos] == '*' && l.input[l.pos+1] == '/' {
			l.pos += 2
			return Token{Kind: TokenBlockComment, Text: l.input[start:l.pos], Span: NewSpan(start, l.pos)}, nil
		}
		l.pos++
	}
	l.pos = len(l.input)
	return Token{}, errUnexpectedEOF(start)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func isOctalDigit(c byte) bool {
	return c >= '0' && c <= '7'
}

func isBinaryDigit(c byte) bool {
	return c == '0' || c == '1'
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
