package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/valang/internal/token"
)

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int  // current line number
	column       int  // current column number

	// start of the token being scanned
	startOffset int
	startLine   int
	startColumn int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input) + 1
		l.column++
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

func (l *Lexer) atEOF() bool {
	return l.position >= len(l.input)
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func (l *Lexer) mark() {
	l.startOffset = l.position
	l.startLine = l.line
	l.startColumn = l.column
}

// emit builds a token spanning from the mark to the current position.
func (l *Lexer) emit(t token.TokenType, literal interface{}) token.Token {
	end := l.position
	if end > len(l.input) {
		end = len(l.input)
	}
	return token.Token{
		Type:    t,
		Lexeme:  l.input[l.startOffset:end],
		Literal: literal,
		Line:    l.startLine,
		Column:  l.startColumn,
		Offset:  l.startOffset,
		End:     end,
	}
}

func (l *Lexer) illegal(format string, args ...interface{}) token.Token {
	return l.emit(token.ILLEGAL, fmt.Sprintf(format, args...))
}

// NextToken scans one token. Lexical errors come back as ILLEGAL tokens whose
// Literal is the message; scanning always makes progress.
func (l *Lexer) NextToken() token.Token {
	if tok, ok := l.skipWhitespaceAndComments(); !ok {
		return tok
	}
	l.mark()

	if l.atEOF() {
		return l.emit(token.EOF, nil)
	}

	// two-character operators first
	if t, ok := twoCharOps[string([]rune{l.ch, l.peekChar()})]; ok && l.peekChar() != 0 {
		l.readChar()
		l.readChar()
		return l.emit(t, nil)
	}

	switch l.ch {
	case '"':
		return l.readString()
	case '_':
		if !isIdentPart(l.peekChar()) {
			l.readChar()
			return l.emit(token.UNDERSCORE, nil)
		}
		return l.readIdentifier()
	}

	if t, ok := singleCharOps[l.ch]; ok {
		l.readChar()
		return l.emit(t, nil)
	}

	if isLetter(l.ch) {
		return l.readIdentifier()
	}
	if isDigit(l.ch) {
		return l.readNumber()
	}

	ch := l.ch
	l.readChar()
	return l.illegal("invalid character %q", ch)
}

var twoCharOps = map[string]token.TokenType{
	"==": token.EQ,
	"!=": token.NOT_EQ,
	"<=": token.LTE,
	">=": token.GTE,
	"&&": token.AND,
	"||": token.OR,
	"->": token.ARROW,
	"=>": token.FAT_ARROW,
	"::": token.DOUBLE_COLON,
	"+=": token.PLUS_ASSIGN,
	"-=": token.MINUS_ASSIGN,
	"*=": token.ASTERISK_ASSIGN,
	"/=": token.SLASH_ASSIGN,
	"%=": token.PERCENT_ASSIGN,
	"^=": token.CARET_ASSIGN,
}

var singleCharOps = map[rune]token.TokenType{
	'=': token.ASSIGN,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.ASTERISK,
	'/': token.SLASH,
	'%': token.PERCENT,
	'^': token.CARET,
	'!': token.BANG,
	'<': token.LT,
	'>': token.GT,
	'.': token.DOT,
	',': token.COMMA,
	':': token.COLON,
	';': token.SEMICOLON,
	'(': token.LPAREN,
	')': token.RPAREN,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'[': token.LBRACKET,
	']': token.RBRACKET,
}

// skipWhitespaceAndComments returns ok=false with an ILLEGAL token when a
// block comment is left open; the lexer is then positioned at end of input.
func (l *Lexer) skipWhitespaceAndComments() (token.Token, bool) {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '/' && l.peekChar() == '/':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.mark()
			l.readChar()
			l.readChar()
			closed := false
			for !l.atEOF() {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					closed = true
					break
				}
				l.readChar()
			}
			if !closed {
				return l.illegal("unterminated block comment"), false
			}
		default:
			return token.Token{}, true
		}
	}
}

func (l *Lexer) readIdentifier() token.Token {
	for isIdentPart(l.ch) {
		l.readChar()
	}
	ident := l.input[l.startOffset:l.position]
	t := token.LookupIdent(ident)
	switch t {
	case token.TRUE:
		return l.emit(t, true)
	case token.FALSE:
		return l.emit(t, false)
	}
	return l.emit(t, ident)
}

func (l *Lexer) readNumber() token.Token {
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	// 12abc is one bad token, not INT followed by IDENT
	if isLetter(l.ch) {
		for isIdentPart(l.ch) {
			l.readChar()
		}
		return l.illegal("invalid integer literal %q", l.input[l.startOffset:l.position])
	}
	text := strings.ReplaceAll(l.input[l.startOffset:l.position], "_", "")
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return l.illegal("integer literal %s overflows Int", text)
	}
	return l.emit(token.INT, value)
}

// readString scans a double-quoted string. An unterminated string ends at the
// end of its line so scanning resumes on the next line.
func (l *Lexer) readString() token.Token {
	var out strings.Builder
	var bad []string
	l.readChar() // opening quote
	for {
		switch {
		case l.atEOF() || l.ch == '\n':
			return l.illegal("unterminated string literal")
		case l.ch == '"':
			l.readChar()
			if len(bad) > 0 {
				return l.illegal("invalid escape sequence %s", strings.Join(bad, ", "))
			}
			return l.emit(token.STRING, out.String())
		case l.ch == '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			case '0':
				out.WriteByte(0)
			default:
				if l.atEOF() || l.ch == '\n' {
					return l.illegal("unterminated string literal")
				}
				bad = append(bad, fmt.Sprintf(`\%c`, l.ch))
			}
			l.readChar()
		default:
			out.WriteRune(l.ch)
			l.readChar()
		}
	}
}

func isLetter(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentPart(ch rune) bool {
	return isLetter(ch) || unicode.IsDigit(ch)
}
