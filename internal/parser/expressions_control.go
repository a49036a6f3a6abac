package parser

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/token"
)

// parseIfExpression parses the whole `if c {..} elif c {..} else {..}` chain as one node.
func (p *Parser) parseIfExpression() ast.Expression {
	expr := &ast.IfExpression{Token: p.curToken}

	branch := p.parseIfBranch()
	if branch == nil {
		return nil
	}
	expr.Branches = append(expr.Branches, branch)

	for p.peekTokenIs(token.ELIF) {
		p.nextToken()
		branch := p.parseIfBranch()
		if branch == nil {
			return nil
		}
		expr.Branches = append(expr.Branches, branch)
	}

	if !p.peekTokenIs(token.ELSE) {
		p.errorf(p.peekToken, "if expression requires an else branch, got %s", describeToken(p.peekToken))
		return nil
	}
	p.nextToken()
	if p.peekTokenIs(token.IF) {
		p.errorf(p.peekToken, "use 'elif' instead of 'else if'")
		return nil
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expr.Else = p.parseBlockExpression()
	if !p.curTokenIs(token.RBRACE) {
		return nil
	}
	return expr
}

// parseIfBranch is entered on 'if' or 'elif'.
func (p *Parser) parseIfBranch() *ast.IfBranch {
	branch := &ast.IfBranch{Token: p.curToken}
	p.nextToken()

	p.noStructLiteral++
	branch.Condition = p.parseExpression(LOWEST)
	p.noStructLiteral--
	if branch.Condition == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	branch.Body = p.parseBlockExpression()
	if !p.curTokenIs(token.RBRACE) {
		return nil
	}
	return branch
}

// parseMatchExpression parses `match subject { pattern => { ... }, ... }`.
// An arm body may also be a single expression, which becomes the tail of a block.
func (p *Parser) parseMatchExpression() ast.Expression {
	expr := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()

	p.noStructLiteral++
	expr.Subject = p.parseExpression(LOWEST)
	p.noStructLiteral--
	if expr.Subject == nil {
		return nil
	}

	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	open := p.curToken
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorf(p.curToken, "expected '}' to close match opened at %s, got end of input", open.Pos())
			return nil
		}
		if arm := p.parseMatchArm(); arm != nil {
			expr.Arms = append(expr.Arms, arm)
		} else {
			p.skipToArmBoundary()
			if p.curTokenIs(token.RBRACE) || p.curTokenIs(token.EOF) {
				continue
			}
		}
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
		p.nextToken()
	}

	if len(expr.Arms) == 0 {
		p.errorf(expr.Token, "match expression must have at least one arm")
		return nil
	}
	return expr
}

func (p *Parser) parseMatchArm() *ast.MatchArm {
	arm := &ast.MatchArm{Token: p.curToken}

	arm.Pattern = p.parsePattern()
	if arm.Pattern == nil {
		return nil
	}
	if !p.expectPeek(token.FAT_ARROW) {
		return nil
	}
	p.nextToken()

	if p.curTokenIs(token.LBRACE) {
		arm.Body = p.parseBlockExpression()
		if !p.curTokenIs(token.RBRACE) {
			return nil
		}
		return arm
	}

	body := p.parseExpression(LOWEST)
	if body == nil {
		return nil
	}
	arm.Body = &ast.BlockExpression{Token: body.GetToken(), Tail: body, RBraceToken: body.GetToken()}
	return arm
}

// skipToArmBoundary leaves curToken on the ',' ending a broken arm, or just
// before the '}' closing the match.
func (p *Parser) skipToArmBoundary() {
	depth := 0
	for {
		if p.curTokenIs(token.EOF) {
			return
		}
		switch p.curToken.Type {
		case token.LBRACE:
			depth++
		case token.RBRACE:
			if depth == 0 {
				return
			}
			depth--
		case token.COMMA:
			if depth == 0 {
				return
			}
		}
		if depth == 0 && p.peekTokenIs(token.RBRACE) {
			return
		}
		p.nextToken()
	}
}
