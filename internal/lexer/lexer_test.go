package lexer

import (
	"testing"

	"github.com/funvibe/valang/internal/token"
)

func TestNextToken(t *testing.T) {
	input := `fn add(a: Int, b: Int) -> Int {
	val x = a + b; // sum
	x ^= 2;
	/* block */ match x { _ => x::y }
}`

	tests := []struct {
		expectedType   token.TokenType
		expectedLexeme string
	}{
		{token.FN, "fn"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "a"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.COMMA, ","},
		{token.IDENT, "b"},
		{token.COLON, ":"},
		{token.IDENT, "Int"},
		{token.RPAREN, ")"},
		{token.ARROW, "->"},
		{token.IDENT, "Int"},
		{token.LBRACE, "{"},
		{token.VAL, "val"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.IDENT, "a"},
		{token.PLUS, "+"},
		{token.IDENT, "b"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "x"},
		{token.CARET_ASSIGN, "^="},
		{token.INT, "2"},
		{token.SEMICOLON, ";"},
		{token.MATCH, "match"},
		{token.IDENT, "x"},
		{token.LBRACE, "{"},
		{token.UNDERSCORE, "_"},
		{token.FAT_ARROW, "=>"},
		{token.IDENT, "x"},
		{token.DOUBLE_COLON, "::"},
		{token.IDENT, "y"},
		{token.RBRACE, "}"},
		{token.RBRACE, "}"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)", i, tt.expectedType, tok.Type, tok.Lexeme)
		}
		if tok.Lexeme != tt.expectedLexeme {
			t.Fatalf("tests[%d] - lexeme wrong. expected=%q, got=%q", i, tt.expectedLexeme, tok.Lexeme)
		}
	}
}

func TestLiterals(t *testing.T) {
	tests := []struct {
		input   string
		typ     token.TokenType
		literal interface{}
	}{
		{"42", token.INT, int64(42)},
		{"1_000_000", token.INT, int64(1000000)},
		{"true", token.TRUE, true},
		{"false", token.FALSE, false},
		{`"a\tb\n"`, token.STRING, "a\tb\n"},
		{`"say \"hi\""`, token.STRING, `say "hi"`},
		{"_tmp", token.IDENT, "_tmp"},
		{"élan", token.IDENT, "élan"},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != tt.typ {
			t.Errorf("%q: type = %s, want %s", tt.input, tok.Type, tt.typ)
			continue
		}
		if tok.Literal != tt.literal {
			t.Errorf("%q: literal = %#v, want %#v", tt.input, tok.Literal, tt.literal)
		}
	}
}

func TestPositions(t *testing.T) {
	toks := Tokenize("val x = 1;\n  x")
	want := []struct{ line, col, offset, end int }{
		{1, 1, 0, 3},   // val
		{1, 5, 4, 5},   // x
		{1, 7, 6, 7},   // =
		{1, 9, 8, 9},   // 1
		{1, 10, 9, 10}, // ;
		{2, 3, 13, 14}, // x
	}
	for i, w := range want {
		tok := toks[i]
		if tok.Line != w.line || tok.Column != w.col || tok.Offset != w.offset || tok.End != w.end {
			t.Errorf("token %d (%q): got %d:%d [%d,%d), want %d:%d [%d,%d)",
				i, tok.Lexeme, tok.Line, tok.Column, tok.Offset, tok.End, w.line, w.col, w.offset, w.end)
		}
	}
	if last := toks[len(toks)-1]; last.Type != token.EOF {
		t.Errorf("last token = %s, want EOF", last.Type)
	}
}

func TestIllegalTokens(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"@", `invalid character '@'`},
		{"12abc", `invalid integer literal "12abc"`},
		{"99999999999999999999", "integer literal 99999999999999999999 overflows Int"},
		{`"open`, "unterminated string literal"},
		{`"bad \q"`, `invalid escape sequence \q`},
		{"/* never closed", "unterminated block comment"},
	}

	for _, tt := range tests {
		tok := New(tt.input).NextToken()
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: type = %s, want ILLEGAL", tt.input, tok.Type)
			continue
		}
		if tok.Literal != tt.msg {
			t.Errorf("%q: message = %q, want %q", tt.input, tok.Literal, tt.msg)
		}
	}
}

func TestLexingContinuesAfterError(t *testing.T) {
	toks := Tokenize("val a = 1 # 2;")
	var types []token.TokenType
	for _, tok := range toks {
		types = append(types, tok.Type)
	}
	want := []token.TokenType{token.VAL, token.IDENT, token.ASSIGN, token.INT, token.ILLEGAL, token.INT, token.SEMICOLON, token.EOF}
	if len(types) != len(want) {
		t.Fatalf("got %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("got %v, want %v", types, want)
		}
	}
}

func TestBufferedStreamPeek(t *testing.T) {
	s := NewBufferedStream(Tokenize("a b c"))
	if got := s.Peek(2).Lexeme; got != "b" {
		t.Errorf("Peek(2) = %q, want b", got)
	}
	if got := s.Next().Lexeme; got != "a" {
		t.Errorf("Next() = %q, want a", got)
	}
	for i := 0; i < 5; i++ {
		s.Next()
	}
	if got := s.Next().Type; got != token.EOF {
		t.Errorf("stream past end = %s, want EOF", got)
	}
}
