package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

func (p *Parser) parseCallExpression(function ast.Expression) ast.Expression {
	exp := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	exp.Arguments = args
	return exp
}

// parseExpressionList parses comma-separated expressions up to end. It is
// entered on the opening delimiter and leaves curToken on end. A trailing
// comma is accepted.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Expression, bool) {
	list := []ast.Expression{}

	saved := p.noStructLiteral
	p.noStructLiteral = 0
	defer func() { p.noStructLiteral = saved }()

	for !p.peekTokenIs(end) {
		p.nextToken()
		exp := p.parseExpression(LOWEST)
		if exp == nil {
			return nil, false
		}
		list = append(list, exp)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}
