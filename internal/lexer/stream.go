package lexer

import (
	"github.com/funvibe/valang/internal/token"
)

// BufferedStream is a pre-scanned token stream with arbitrary lookahead.
type BufferedStream struct {
	tokens []token.Token
	pos    int
}

// NewBufferedStream wraps tokens. The slice must end with an EOF token;
// one is appended if missing.
func NewBufferedStream(tokens []token.Token) *BufferedStream {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		eof := token.Token{Type: token.EOF}
		if n := len(tokens); n > 0 {
			last := tokens[n-1]
			eof.Line, eof.Column = last.Line, last.Column
			eof.Offset, eof.End = last.End, last.End
		}
		tokens = append(tokens, eof)
	}
	return &BufferedStream{tokens: tokens}
}

func (s *BufferedStream) Next() token.Token {
	tok := s.tokens[s.pos]
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}
	return tok
}

func (s *BufferedStream) Peek(n int) token.Token {
	i := s.pos + n - 1
	if i < 0 {
		i = 0
	}
	if i >= len(s.tokens) {
		i = len(s.tokens) - 1
	}
	return s.tokens[i]
}

// Tokens returns every token including the final EOF.
func (s *BufferedStream) Tokens() []token.Token {
	return s.tokens
}

// Tokenize scans the whole input. ILLEGAL tokens are kept.
func Tokenize(input string) []token.Token {
	l := New(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}
