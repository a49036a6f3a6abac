package token

import "fmt"

type TokenType string

const (
	ILLEGAL TokenType = "ILLEGAL"
	EOF     TokenType = "EOF"

	// Identifiers + literals
	IDENT      TokenType = "IDENT"
	INT        TokenType = "INT"
	STRING     TokenType = "STRING"
	UNDERSCORE TokenType = "_"

	// Operators
	ASSIGN   TokenType = "="
	PLUS     TokenType = "+"
	MINUS    TokenType = "-"
	ASTERISK TokenType = "*"
	SLASH    TokenType = "/"
	PERCENT  TokenType = "%"
	CARET    TokenType = "^"
	BANG     TokenType = "!"

	PLUS_ASSIGN     TokenType = "+="
	MINUS_ASSIGN    TokenType = "-="
	ASTERISK_ASSIGN TokenType = "*="
	SLASH_ASSIGN    TokenType = "/="
	PERCENT_ASSIGN  TokenType = "%="
	CARET_ASSIGN    TokenType = "^="

	EQ     TokenType = "=="
	NOT_EQ TokenType = "!="
	LT     TokenType = "<"
	GT     TokenType = ">"
	LTE    TokenType = "<="
	GTE    TokenType = ">="
	AND    TokenType = "&&"
	OR     TokenType = "||"

	ARROW        TokenType = "->"
	FAT_ARROW    TokenType = "=>"
	DOUBLE_COLON TokenType = "::"
	DOT          TokenType = "."

	// Delimiters
	COMMA     TokenType = ","
	COLON     TokenType = ":"
	SEMICOLON TokenType = ";"
	LPAREN    TokenType = "("
	RPAREN    TokenType = ")"
	LBRACE    TokenType = "{"
	RBRACE    TokenType = "}"
	LBRACKET  TokenType = "["
	RBRACKET  TokenType = "]"

	// Keywords
	FN     TokenType = "FN"
	VAL    TokenType = "VAL"
	VAR    TokenType = "VAR"
	IF     TokenType = "IF"
	ELIF   TokenType = "ELIF"
	ELSE   TokenType = "ELSE"
	STRUCT TokenType = "STRUCT"
	ENUM   TokenType = "ENUM"
	MATCH  TokenType = "MATCH"
	RETURN TokenType = "RETURN"
	TRUE   TokenType = "TRUE"
	FALSE  TokenType = "FALSE"
)

// Token is a lexical unit. Literal carries the decoded payload: int64 for INT,
// bool for TRUE/FALSE, the unescaped text for STRING, and the error message for ILLEGAL.
type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
	Offset  int // byte offset of the first character
	End     int // byte offset one past the last character
}

// Span is a half-open byte range in the source.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int { return s.End - s.Start }

func (s Span) IsEmpty() bool { return s.Start == s.End }

func (s Span) String() string { return fmt.Sprintf("[%d..%d]", s.Start, s.End) }

func (t Token) Span() Span { return Span{Start: t.Offset, End: t.End} }

// Pos renders the 1-based line:column of the token.
func (t Token) Pos() string { return fmt.Sprintf("%d:%d", t.Line, t.Column) }

func (t Token) String() string {
	return fmt.Sprintf("%s %q %s", t.Type, t.Lexeme, t.Span())
}

var keywords = map[string]TokenType{
	"fn":     FN,
	"val":    VAL,
	"var":    VAR,
	"if":     IF,
	"elif":   ELIF,
	"else":   ELSE,
	"struct": STRUCT,
	"enum":   ENUM,
	"match":  MATCH,
	"return": RETURN,
	"true":   TRUE,
	"false":  FALSE,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsAssignment reports whether t is "=" or a compound assignment operator.
func IsAssignment(t TokenType) bool {
	switch t {
	case ASSIGN, PLUS_ASSIGN, MINUS_ASSIGN, ASTERISK_ASSIGN, SLASH_ASSIGN, PERCENT_ASSIGN, CARET_ASSIGN:
		return true
	}
	return false
}

// CompoundOperator maps a compound assignment operator to its binary operator.
// "x += y" checks and lowers as "x = x + y".
func CompoundOperator(t TokenType) (string, bool) {
	switch t {
	case PLUS_ASSIGN:
		return "+", true
	case MINUS_ASSIGN:
		return "-", true
	case ASTERISK_ASSIGN:
		return "*", true
	case SLASH_ASSIGN:
		return "/", true
	case PERCENT_ASSIGN:
		return "%", true
	case CARET_ASSIGN:
		return "^", true
	}
	return "", false
}

// IsItemKeyword reports whether t starts a top-level declaration.
func IsItemKeyword(t TokenType) bool {
	return t == FN || t == STRUCT || t == ENUM
}
