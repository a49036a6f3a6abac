package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseBlockExpression parses `{ statements [tail] }`. curToken is '{' on entry
// and the closing '}' on exit, unless the block is left open at end of input
// or at the next top-level item.
func (p *Parser) parseBlockExpression() *ast.BlockExpression {
	block := &ast.BlockExpression{Token: p.curToken}

	saved := p.noStructLiteral
	p.noStructLiteral = 0
	defer func() { p.noStructLiteral = saved }()

	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) || p.atItemStart() {
			p.errorf(p.curToken, "expected '}' to close block opened at %s, got %s", block.Token.Pos(), describeToken(p.curToken))
			return block
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}

		if ok := p.parseBlockElement(block); !ok {
			p.recover()
			if p.curTokenIs(token.RBRACE) {
				continue
			}
		}
		p.nextToken()
	}

	block.RBraceToken = p.curToken
	return block
}

func (p *Parser) parseBlockAsExpression() ast.Expression {
	return p.parseBlockExpression()
}

// parseBlockElement parses one statement or the tail expression and appends it
// to block. On success curToken is the last token of the element.
func (p *Parser) parseBlockElement(block *ast.BlockExpression) bool {
	switch p.curToken.Type {
	case token.VAL, token.VAR:
		stmt := p.parseVarStatement()
		if stmt == nil {
			return false
		}
		block.Statements = append(block.Statements, stmt)
		return p.expectTerminator()
	case token.RETURN:
		stmt := p.parseReturnStatement()
		if stmt == nil {
			return false
		}
		block.Statements = append(block.Statements, stmt)
		return p.expectTerminator()
	}

	startTok := p.curToken
	var expr ast.Expression
	switch p.curToken.Type {
	case token.IF, token.MATCH, token.LBRACE:
		// A block-like expression at the start of a statement ends at its
		// closing brace: `if c { a } else { b } -1` is two statements.
		expr = p.parseBlockLikeStatement()
	default:
		expr = p.parseExpression(LOWEST)
	}
	if expr == nil {
		return false
	}

	if token.IsAssignment(p.peekToken.Type) {
		p.nextToken()
		stmt := p.parseAssignStatement(expr)
		if stmt == nil {
			return false
		}
		block.Statements = append(block.Statements, stmt)
		return p.expectTerminator()
	}

	switch {
	case p.peekTokenIs(token.SEMICOLON):
		p.nextToken()
		block.Statements = append(block.Statements, &ast.ExpressionStatement{Token: startTok, Expression: expr})
		return true
	case p.peekTokenIs(token.RBRACE):
		block.Tail = expr
		return true
	case ast.IsBlockLike(expr):
		block.Statements = append(block.Statements, &ast.ExpressionStatement{Token: startTok, Expression: expr})
		return true
	}

	p.errorf(p.peekToken, "expected ';' or '}' after expression, got %s", describeToken(p.peekToken))
	return false
}

// expectTerminator accepts ';' (consumed) or a following '}' (left in place).
func (p *Parser) expectTerminator() bool {
	if p.peekTokenIs(token.SEMICOLON) {
		p.nextToken()
		return true
	}
	if p.peekTokenIs(token.RBRACE) {
		return true
	}
	p.errorf(p.peekToken, "expected ';' after statement, got %s", describeToken(p.peekToken))
	return false
}

func (p *Parser) parseBlockLikeStatement() ast.Expression {
	p.depth++
	defer func() { p.depth-- }()
	return p.prefixParseFns[p.curToken.Type]()
}
