package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseVarStatement parses `val name [: Type] = value` or the `var` form.
func (p *Parser) parseVarStatement() *ast.VarStatement {
	stmt := &ast.VarStatement{Token: p.curToken, Mutable: p.curTokenIs(token.VAR)}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.COLON) {
		p.nextToken()
		p.nextToken()
		stmt.TypeAnnotation = p.parseType()
		if stmt.TypeAnnotation == nil {
			return nil
		}
	}

	if !p.expectPeek(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseReturnStatement parses `return [value]`.
func (p *Parser) parseReturnStatement() *ast.ReturnStatement {
	stmt := &ast.ReturnStatement{Token: p.curToken}

	if p.peekTokenIs(token.SEMICOLON) || p.peekTokenIs(token.RBRACE) {
		return stmt
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseAssignStatement is entered with curToken on the assignment operator.
func (p *Parser) parseAssignStatement(target ast.Expression) *ast.AssignStatement {
	stmt := &ast.AssignStatement{
		Token:    p.curToken,
		Target:   target,
		Operator: p.curToken.Lexeme,
	}
	p.nextToken()

	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if token.IsAssignment(p.peekToken.Type) {
		p.errorf(p.peekToken, "assignment is a statement and cannot be chained")
		return nil
	}
	return stmt
}
