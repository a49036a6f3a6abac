package analyzer

import (
	"github.com/funvibe/valang/internal/ast"
	"github.com/funvibe/valang/internal/diagnostics"
	"github.com/funvibe/valang/internal/typesystem"
)

// checkIfExpression types an if/elif/else chain. In value context every
// branch must unify to one type; as a statement the branches may differ and
// the chain is Unit unless every branch leaves the function.
func (a *Analyzer) checkIfExpression(n *ast.IfExpression, statement bool) typesystem.Type {
	result := typesystem.Never
	for _, br := range n.Branches {
		cond := a.checkExpression(br.Condition)
		if !typesystem.Compatible(typesystem.Bool, cond) {
			a.errorf(diagnostics.ErrT001, br.Condition.GetToken(), "type mismatch: condition must be Bool, got %s", cond)
		}
		result = a.joinBranch(result, a.checkBlock(br.Body), br.Body, "`if`", statement)
	}
	if n.Else != nil {
		result = a.joinBranch(result, a.checkBlock(n.Else), n.Else, "`if`", statement)
	}
	return a.record(n, result)
}

// checkMatchExpression types a match, its patterns and its arms, then checks
// exhaustiveness and reachability when the subject is well typed. An arm
// whose pattern is ill typed covers no value.
func (a *Analyzer) checkMatchExpression(n *ast.MatchExpression, statement bool) typesystem.Type {
	subject := a.checkExpression(n.Subject)

	wellTyped := make([]bool, len(n.Arms))
	result := typesystem.Never
	for i, arm := range n.Arms {
		wellTyped[i] = a.checkPattern(arm.Pattern, subject)
		result = a.joinBranch(result, a.checkBlock(arm.Body), arm.Body, "match arm", statement)
	}

	if !typesystem.IsError(subject) && !typesystem.IsNever(subject) {
		a.checkCoverage(n, subject, wellTyped)
	}
	return a.record(n, result)
}

// joinBranch folds one more branch type into result.
func (a *Analyzer) joinBranch(result, branch typesystem.Type, body *ast.BlockExpression, what string, statement bool) typesystem.Type {
	if statement {
		if typesystem.IsNever(result) && typesystem.IsNever(branch) {
			return typesystem.Never
		}
		return typesystem.Unit
	}
	joined, ok := typesystem.Unify(result, branch)
	if !ok {
		tok := body.Token
		if body.Tail != nil {
			tok = body.Tail.GetToken()
		}
		a.errorf(diagnostics.ErrT001, tok, "type mismatch: %s branches have incompatible types %s and %s", what, result, branch)
		return typesystem.Error
	}
	return joined
}
