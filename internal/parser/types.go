package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseType parses a type expression starting at curToken:
// a name (`Int`, `Point`) or a function type (`fn(Int, Int) -> Bool`).
func (p *Parser) parseType() ast.Type {
	switch p.curToken.Type {
	case token.IDENT:
		return &ast.NamedType{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
	case token.FN:
		return p.parseFunctionType()
	}
	p.errorf(p.curToken, "expected type, got %s", describeToken(p.curToken))
	return nil
}

func (p *Parser) parseFunctionType() ast.Type {
	ft := &ast.FunctionType{Token: p.curToken}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	for !p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		t := p.parseType()
		if t == nil {
			return nil
		}
		ft.Parameters = append(ft.Parameters, t)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RPAREN) {
		return nil
	}

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		ft.ReturnType = p.parseType()
		if ft.ReturnType == nil {
			return nil
		}
	}
	return ft
}
