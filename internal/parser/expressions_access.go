package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseFieldAccessExpression handles `left.field`.
func (p *Parser) parseFieldAccessExpression(left ast.Expression) ast.Expression {
	exp := &ast.FieldAccessExpression{Token: p.curToken, Left: left}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Field = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	return exp
}
