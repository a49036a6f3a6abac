package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseFunctionLiteral parses a closure: `fn(x: Int) -> Int { ... }`.
func (p *Parser) parseFunctionLiteral() ast.Expression {
	lit := &ast.FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(token.IDENT) {
		p.errorf(p.peekToken, "named functions are only allowed at top level")
		return nil
	}
	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	lit.Parameters = params

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		lit.ReturnType = p.parseType()
		if lit.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	lit.Body = p.parseBlockExpression()
	if !p.curTokenIs(token.RBRACE) {
		return nil
	}
	return lit
}
