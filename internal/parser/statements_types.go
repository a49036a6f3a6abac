package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseStructStatement parses `struct Name { field: Type, ... }`.
func (p *Parser) parseStructStatement() *ast.StructStatement {
	stmt := &ast.StructStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fields, ok := p.parseFieldDecls(token.RBRACE)
	if !ok {
		return nil
	}
	stmt.Fields = fields
	return stmt
}

// parseEnumStatement parses `enum Name { A, B(f: Type), ... }`.
func (p *Parser) parseEnumStatement() *ast.EnumStatement {
	stmt := &ast.EnumStatement{Token: p.curToken}

	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		variant := &ast.VariantDecl{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if p.peekTokenIs(token.LPAREN) {
			p.nextToken()
			fields, ok := p.parseFieldDecls(token.RPAREN)
			if !ok {
				return nil
			}
			variant.Fields = fields
		}
		stmt.Variants = append(stmt.Variants, variant)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return stmt
}

// parseFieldDecls parses `name: Type` pairs separated by commas, up to end.
// It is entered on the opening delimiter and leaves curToken on end.
func (p *Parser) parseFieldDecls(end token.TokenType) ([]*ast.FieldDecl, bool) {
	fields := []*ast.FieldDecl{}

	for !p.peekTokenIs(end) {
		if !p.expectPeek(token.IDENT) {
			return nil, false
		}
		field := &ast.FieldDecl{
			Token: p.curToken,
			Name:  &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme},
		}
		if !p.expectPeek(token.COLON) {
			return nil, false
		}
		p.nextToken()
		field.Type = p.parseType()
		if field.Type == nil {
			return nil, false
		}
		fields = append(fields, field)

		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}

	if !p.expectPeek(end) {
		return nil, false
	}
	return fields, true
}
