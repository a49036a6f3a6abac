package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parsePattern parses one pattern starting at curToken and leaves curToken on
// its last token.
func (p *Parser) parsePattern() ast.Pattern {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > MaxRecursionDepth {
		p.errorf(p.curToken, "pattern too complex: recursion depth limit exceeded")
		return nil
	}

	switch p.curToken.Type {
	case token.UNDERSCORE:
		return &ast.WildcardPattern{Token: p.curToken}
	case token.INT:
		return &ast.LiteralPattern{Token: p.curToken, Value: p.curToken.Literal}
	case token.MINUS:
		tok := p.curToken
		if !p.expectPeek(token.INT) {
			return nil
		}
		n, _ := p.curToken.Literal.(int64)
		tok.Lexeme = "-" + p.curToken.Lexeme
		tok.End = p.curToken.End
		return &ast.LiteralPattern{Token: tok, Value: -n}
	case token.STRING:
		return &ast.LiteralPattern{Token: p.curToken, Value: p.curToken.Literal}
	case token.TRUE, token.FALSE:
		return &ast.LiteralPattern{Token: p.curToken, Value: p.curTokenIs(token.TRUE)}
	case token.IDENT:
		name := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		switch {
		case p.peekTokenIs(token.DOUBLE_COLON):
			return p.parseVariantPattern(name)
		case p.peekTokenIs(token.LBRACE):
			return p.parseStructPattern(name)
		}
		return &ast.BindingPattern{Token: p.curToken, Name: name}
	}

	p.errorf(p.curToken, "expected pattern, got %s", describeToken(p.curToken))
	return nil
}

// parseVariantPattern parses `Enum::Variant` or `Enum::Variant(p, ...)`.
func (p *Parser) parseVariantPattern(enum *ast.Identifier) ast.Pattern {
	pat := &ast.VariantPattern{Token: enum.Token, Enum: enum}
	p.nextToken() // ::
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	pat.Variant = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.peekTokenIs(token.LPAREN) {
		return pat
	}
	p.nextToken()
	pat.HasParens = true

	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		elem := p.parsePattern()
		if elem == nil {
			return nil
		}
		pat.Elements = append(pat.Elements, elem)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}
	return pat
}

// parseStructPattern parses `Name { field: pattern, field, ... }`.
func (p *Parser) parseStructPattern(name *ast.Identifier) ast.Pattern {
	pat := &ast.StructPattern{Token: name.Token, Name: name}
	p.nextToken() // {

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.FieldPattern{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			field.Pattern = p.parsePattern()
			if field.Pattern == nil {
				return nil
			}
		} else {
			// shorthand: `x` binds field x to x
			field.Pattern = &ast.BindingPattern{
				Token: p.curToken,
				Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
			}
		}
		pat.Fields = append(pat.Fields, field)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return pat
}
