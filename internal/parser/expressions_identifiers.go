package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseIdentifier handles plain names, `Enum::Variant` constructors and
// `Name { field: value }` struct literals.
func (p *Parser) parseIdentifier() ast.Expression {
	ident := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}

	if p.peekTokenIs(token.DOUBLE_COLON) {
		return p.parseVariantExpression(ident)
	}
	if p.peekTokenIs(token.LBRACE) && p.noStructLiteral == 0 && p.looksLikeStructLiteral() {
		return p.parseStructLiteral(ident)
	}
	return ident
}

// looksLikeStructLiteral is called with peekToken on '{'. A struct literal body
// is empty or starts with `name:`.
func (p *Parser) looksLikeStructLiteral() bool {
	first := p.peekAhead(1)
	if first.Type == token.RBRACE {
		return true
	}
	return first.Type == token.IDENT && p.peekAhead(2).Type == token.COLON
}
