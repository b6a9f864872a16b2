package fjson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, input string, opts Options) []Token {
	t.Helper()
	lex := NewLexer(input, opts)
	var toks []Token
	for {
		tok, err := lex.Next()
		require.Nil(t, err, "input: %q", input)
		if tok.Kind == TokenEOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func lexKinds(t *testing.T, input string) []TokenKind {
	t.Helper()
	var kinds []TokenKind
	for _, tok := range lexAll(t, input, DefaultOptions()) {
		kinds = append(kinds, tok.Kind)
	}
	return kinds
}

func lexError(t *testing.T, input string, opts Options) *ParseError {
	t.Helper()
	lex := NewLexer(input, opts)
	for {
		tok, err := lex.Next()
		if err != nil {
			return err
		}
		require.NotEqual(t, TokenEOF, tok.Kind, "expected a lex error for %q", input)
	}
}

func TestLexer_TokenStream(t *testing.T) {
	kinds := lexKinds(t, "{\"a\": [1, true]\n}")
	assert.Equal(t, []TokenKind{
		TokenLBrace, TokenString, TokenColon, TokenLBracket, TokenNumber,
		TokenComma, TokenTrue, TokenRBracket, TokenNewline, TokenRBrace,
	}, kinds)
}

func TestLexer_Keywords(t *testing.T) {
	toks := lexAll(t, "true false null nullx", DefaultOptions())
	require.Len(t, toks, 4)
	assert.Equal(t, TokenTrue, toks[0].Kind)
	assert.Equal(t, TokenFalse, toks[1].Kind)
	assert.Equal(t, TokenNull, toks[2].Kind)
	// A longer identifier that merely starts with a keyword is not one.
	assert.Equal(t, TokenIdentifier, toks[3].Kind)
	assert.Equal(t, "nullx", toks[3].Text)
}

func TestLexer_StringDecoding(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `"hello"`, "hello"},
		{"escapes", `"a\nb\tc\\d\"e"`, "a\nb\tc\\d\"e"},
		{"forward slash", `"a\/b"`, "a/b"},
		{"unicode", `"Aé"`, "Aé"},
		{"surrogate pair", `"😀"`, "\U0001F600"},
		{"lone surrogate replaced", `"\ud800x"`, "�x"},
		{"single quoted", `'don\'t'`, "don't"},
		{"utf8 passthrough", `"héllo→"`, "héllo→"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lexAll(t, tt.input, DefaultOptions())
			require.Len(t, toks, 1)
			require.Equal(t, TokenString, toks[0].Kind)
			assert.Equal(t, tt.want, toks[0].Text)
		})
	}
}

func TestLexer_StringErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  ErrorKind
		pos   int
	}{
		{"unterminated", `"abc`, KindUnterminatedString, 0},
		{"raw newline", "\"ab\ncd\"", KindUnterminatedString, 0},
		{"bad escape", `"a\qb"`, KindInvalidEscape, 2},
		{"short unicode", `"\u12"`, KindInvalidUnicode, 1},
		{"bad hex digit", `"\u12ZZ"`, KindInvalidUnicode, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := lexError(t, tt.input, DefaultOptions())
			assert.Equal(t, tt.kind, err.Kind)
			assert.Equal(t, tt.pos, err.Position())
		})
	}
}

func TestLexer_SingleQuoteGating(t *testing.T) {
	err := lexError(t, `'a'`, StrictOptions())
	assert.Equal(t, KindUnexpectedChar, err.Kind)
	assert.Equal(t, 0, err.Position())
}

func TestLexer_Comments(t *testing.T) {
	kinds := lexKinds(t, "// line\n# hash\n/* block */ 1")
	assert.Equal(t, []TokenKind{
		TokenLineComment, TokenNewline, TokenLineComment, TokenNewline,
		TokenBlockComment, TokenNumber,
	}, kinds)

	// The comment text includes its marker.
	toks := lexAll(t, "// note", DefaultOptions())
	require.Len(t, toks, 1)
	assert.Equal(t, "// note", toks[0].Text)
}

func TestLexer_LoneSlashRejected(t *testing.T) {
	err := lexError(t, "/ 1", DefaultOptions())
	assert.Equal(t, KindUnexpectedChar, err.Kind)
}

func TestLexer_NumberExtents(t *testing.T) {
	inputs := []string{"0", "-12", "+5", "3.14", ".5", "5.", "1e10", "1E-2", "0x1F", "0o777", "0b1010", "1_000", "0xAB_CD"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			toks := lexAll(t, input, DefaultOptions())
			require.Len(t, toks, 1)
			assert.Equal(t, TokenNumber, toks[0].Kind)
			assert.Equal(t, input, toks[0].Text)
		})
	}
}

func TestLexer_NewlineForms(t *testing.T) {
	// \n, \r\n and bare \r each produce one newline token.
	kinds := lexKinds(t, "1\n2\r\n3\r4")
	assert.Equal(t, []TokenKind{
		TokenNumber, TokenNewline, TokenNumber, TokenNewline,
		TokenNumber, TokenNewline, TokenNumber,
	}, kinds)
}

func TestLexer_Spans(t *testing.T) {
	input := `{ "ab": 12 }`
	toks := lexAll(t, input, DefaultOptions())
	require.Len(t, toks, 5)

	str := toks[1]
	assert.Equal(t, NewSpan(2, 6), str.Span)
	assert.Equal(t, `"ab"`, str.Span.Extract(input))

	num := toks[3]
	assert.Equal(t, NewSpan(8, 10), num.Span)
	assert.Equal(t, "12", num.Text)
}

func TestLexer_CopyIsIndependent(t *testing.T) {
	lex := NewLexer("1 2 3", DefaultOptions())
	tok, err := lex.Next()
	require.Nil(t, err)
	require.Equal(t, "1", tok.Text)

	fork := *lex
	tok, err = fork.Next()
	require.Nil(t, err)
	assert.Equal(t, "2", tok.Text)

	// The original cursor is unaffected by the fork.
	tok, err = lex.Next()
	require.Nil(t, err)
	assert.Equal(t, "2", tok.Text)
}

func TestLexer_EOFIsSticky(t *testing.T) {
	lex := NewLexer("", DefaultOptions())
	for i := 0; i < 3; i++ {
		tok, err := lex.Next()
		require.Nil(t, err)
		assert.Equal(t, TokenEOF, tok.Kind)
	}
}
