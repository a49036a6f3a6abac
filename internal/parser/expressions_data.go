package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseStructLiteral parses `Name { field: value, ... }` with curToken on Name.
func (p *Parser) parseStructLiteral(name *ast.Identifier) ast.Expression {
	lit := &ast.StructLiteral{Token: name.Token, Name: name}
	p.nextToken() // {

	saved := p.noStructLiteral
	p.noStructLiteral = 0
	defer func() { p.noStructLiteral = saved }()

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		field := &ast.FieldInit{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil
		}
		p.nextToken()
		field.Value = p.parseExpression(LOWEST)
		if field.Value == nil {
			return nil
		}
		lit.Fields = append(lit.Fields, field)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return lit
}

// parseVariantExpression parses `Enum::Variant` or `Enum::Variant(args)`.
func (p *Parser) parseVariantExpression(enum *ast.Identifier) ast.Expression {
	exp := &ast.VariantExpression{Token: enum.Token, Enum: enum}
	p.nextToken() // ::
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	exp.Variant = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		args, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		exp.Arguments = args
		exp.HasParens = true
	}
	return exp
}
