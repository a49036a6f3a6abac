package parser

import (
	"fmt"

	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/config"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/pipeline"
	"github.com/funvibe/valang/internal/token"
)

const (
	_ int = iota
	LOWEST
	OR          // ||
	AND         // &&
	EQUALS      // == !=
	LESSGREATER // > < >= <=
	SUM         // + -
	PRODUCT     // * / %
	POWER       // ^
	PREFIX      // -X or !X
	CALL        // myFunction(X), x.field
)

// MaxRecursionDepth bounds expression nesting.
var MaxRecursionDepth = config.MaxRecursionDepth

var precedences = map[token.TokenType]int{
	token.OR:       OR,
	token.AND:      AND,
	token.EQ:       EQUALS,
	token.NOT_EQ:   EQUALS,
	token.LT:       LESSGREATER,
	token.GT:       LESSGREATER,
	token.LTE:      LESSGREATER,
	token.GTE:      LESSGREATER,
	token.PLUS:     SUM,
	token.MINUS:    SUM,
	token.ASTERISK: PRODUCT,
	token.SLASH:    PRODUCT,
	token.PERCENT:  PRODUCT,
	token.CARET:    POWER,
	token.LPAREN:   CALL,
	token.DOT:      CALL,
}

type (
	prefixParseFn func() ast.Expression
	infixParseFn  func(ast.Expression) ast.Expression
)

type Parser struct {
	stream pipeline.TokenStream
	ctx    *pipeline.PipelineContext

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth               int
	inRecursionRecovery bool

	// noStructLiteral > 0 while parsing an if condition or match subject,
	// where `Name {` opens the body rather than a struct literal.
	noStructLiteral int

	// errLine/errCol suppress a second error at the same token.
	errLine, errCol int
}

func New(stream pipeline.TokenStream, ctx *pipeline.PipelineContext) *Parser {
	p := &Parser{stream: stream, ctx: ctx}

	p.prefixParseFns = make(map[token.TokenType]prefixParseFn)
	p.registerPrefix(token.IDENT, p.parseIdentifier)
	p.registerPrefix(token.INT, p.parseIntegerLiteral)
	p.registerPrefix(token.STRING, p.parseStringLiteral)
	p.registerPrefix(token.TRUE, p.parseBoolean)
	p.registerPrefix(token.FALSE, p.parseBoolean)
	p.registerPrefix(token.BANG, p.parsePrefixExpression)
	p.registerPrefix(token.MINUS, p.parsePrefixExpression)
	p.registerPrefix(token.LPAREN, p.parseGroupedExpression)
	p.registerPrefix(token.LBRACE, p.parseBlockAsExpression)
	p.registerPrefix(token.IF, p.parseIfExpression)
	p.registerPrefix(token.MATCH, p.parseMatchExpression)
	p.registerPrefix(token.FN, p.parseFunctionLiteral)

	p.infixParseFns = make(map[token.TokenType]infixParseFn)
	for _, t := range []token.TokenType{
		token.OR, token.AND, token.EQ, token.NOT_EQ,
		token.LT, token.GT, token.LTE, token.GTE,
		token.PLUS, token.MINUS, token.ASTERISK, token.SLASH, token.PERCENT, token.CARET,
	} {
		p.registerInfix(t, p.parseInfixExpression)
	}
	p.registerInfix(token.LPAREN, p.parseCallExpression)
	p.registerInfix(token.DOT, p.parseFieldAccessExpression)

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) registerPrefix(tokenType token.TokenType, fn prefixParseFn) {
	p.prefixParseFns[tokenType] = fn
}

func (p *Parser) registerInfix(tokenType token.TokenType, fn infixParseFn) {
	p.infixParseFns[tokenType] = fn
}

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.stream.Next()
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

// peekAhead returns the token n positions after peekToken.
func (p *Parser) peekAhead(n int) token.Token {
	return p.stream.Peek(n)
}

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekPrecedence() int {
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) addError(tok token.Token, msg string) {
	if tok.Line == p.errLine && tok.Column == p.errCol && tok.Line != 0 {
		return
	}
	p.errLine, p.errCol = tok.Line, tok.Column
	p.ctx.AddError(diagnostics.NewError(diagnostics.ErrP001, tok, msg))
}

func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) {
	p.addError(tok, fmt.Sprintf(format, args...))
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorf(p.peekToken, "expected %s, got %s", describe(t), describeToken(p.peekToken))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorf(tok, "expected expression, got %s", describeToken(tok))
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.INT:
		return "integer literal"
	case token.STRING:
		return "string literal"
	case token.EOF:
		return "end of input"
	}
	if len(t) > 0 && t[0] >= 'A' && t[0] <= 'Z' {
		return fmt.Sprintf("'%s'", lower(string(t)))
	}
	return fmt.Sprintf("'%s'", t)
}

func describeToken(tok token.Token) string {
	switch tok.Type {
	case token.EOF:
		return "end of input"
	case token.IDENT:
		return fmt.Sprintf("identifier %q", tok.Lexeme)
	case token.INT, token.STRING:
		return tok.Lexeme
	}
	return describe(tok.Type)
}

func lower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 'a' - 'A'
		}
	}
	return string(b)
}

// ParseProgram parses a whole compilation unit.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}

	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		item := p.parseItem()
		if item == nil {
			p.syncToItem()
			continue
		}
		program.Items = append(program.Items, item)
		// an unclosed body stops at the next item keyword
		if !p.atItemStart() {
			p.nextToken()
		}
	}

	return program
}

func (p *Parser) parseItem() ast.Statement {
	switch p.curToken.Type {
	case token.FN:
		if fn := p.parseFunctionStatement(); fn != nil {
			return fn
		}
	case token.STRUCT:
		if st := p.parseStructStatement(); st != nil {
			return st
		}
	case token.ENUM:
		if en := p.parseEnumStatement(); en != nil {
			return en
		}
	default:
		p.errorf(p.curToken, "expected item (fn, struct or enum), got %s", describeToken(p.curToken))
	}
	return nil
}

// syncToItem skips to the next top-level keyword, skipping nested braces as a unit.
// It always consumes at least one token.
func (p *Parser) syncToItem() {
	depth := 0
	for {
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		p.nextToken()
		if p.curTokenIs(token.EOF) {
			return
		}
		if depth == 0 && p.atItemStart() {
			return
		}
	}
}

// atItemStart reports whether curToken begins a top-level declaration.
// `fn` only counts when followed by a name, so closures are not mistaken for items.
func (p *Parser) atItemStart() bool {
	switch p.curToken.Type {
	case token.STRUCT, token.ENUM:
		return true
	case token.FN:
		return p.peekTokenIs(token.IDENT)
	}
	return false
}

func (p *Parser) peekAtItemStart() bool {
	switch p.peekToken.Type {
	case token.STRUCT, token.ENUM:
		return true
	case token.FN:
		return p.peekAhead(1).Type == token.IDENT
	}
	return false
}

// skipToStatementBoundary advances until curToken is ';' (which the caller then
// steps over) or an unmatched '}', or until the next token is the '}' closing the
// current block or a top-level keyword. Nested braces are skipped as a unit.
func (p *Parser) skipToStatementBoundary() {
	depth := 0
	for {
		if p.curTokenIs(token.EOF) {
			return
		}
		if depth == 0 && (p.curTokenIs(token.SEMICOLON) || p.curTokenIs(token.RBRACE)) {
			return
		}
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth > 0 {
				depth--
			}
		}
		if depth == 0 && (p.peekTokenIs(token.RBRACE) || p.peekTokenIs(token.EOF) || p.peekAtItemStart()) {
			return
		}
		p.nextToken()
	}
}

// recover resumes after a failed statement. When the error was reported at
// peekToken, that token is the offending one and is skipped first.
func (p *Parser) recover() {
	if p.peekToken.Line == p.errLine && p.peekToken.Column == p.errCol &&
		!p.peekTokenIs(token.RBRACE) && !p.peekTokenIs(token.EOF) {
		p.nextToken()
	}
	p.skipToStatementBoundary()
}
