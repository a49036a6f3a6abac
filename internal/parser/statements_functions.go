package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseFunctionStatement parses `fn name(params) [-> Type] { body }`.
func (p *Parser) parseFunctionStatement() *ast.FunctionStatement {
	fn := &ast.FunctionStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LPAREN) {
		return nil
	}
	params, ok := p.parseFunctionParameters()
	if !ok {
		return nil
	}
	fn.Parameters = params

	if p.peekTokenIs(token.ARROW) {
		p.nextToken()
		p.nextToken()
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlockExpression()
	return fn
}

// parseFunctionParameters is entered on '(' and leaves curToken on ')'.
func (p *Parser) parseFunctionParameters() ([]*ast.Parameter, bool) {
	params := []*ast.Parameter{}

	if p.peekTokenIs(token.RPAREN) {
		p.nextToken()
		return params, true
	}

	for {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		param := p.parseParameter()
		if param == nil {
			return nil, false
		}
		params = append(params, param)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		// trailing comma
		if p.peekTokenIs(token.RPAREN) {
			break
		}
	}

	if !p.expectPeek(token.RPAREN) {
		return nil, false
	}
	return params, true
}

// parseParameter parses `name: Type` with curToken on the name.
func (p *Parser) parseParameter() *ast.Parameter {
	param := &ast.Parameter{
		Token: p.curToken,
		Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
	}
	if !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	param.Type = p.parseType()
	if param.Type == nil {
		return nil
	}
	return param
}
