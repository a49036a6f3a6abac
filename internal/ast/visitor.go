package ast

// Visitor is implemented by every AST pass.
type Visitor interface {
	VisitProgram(node *Program)

	// Items and statements
	VisitFunctionStatement(node *FunctionStatement)
	VisitStructStatement(node *StructStatement)
	VisitEnumStatement(node *EnumStatement)
	VisitVarStatement(node *VarStatement)
	VisitAssignStatement(node *AssignStatement)
	VisitReturnStatement(node *ReturnStatement)
	VisitExpressionStatement(node *ExpressionStatement)

	// Expressions
	VisitIdentifier(node *Identifier)
	VisitIntegerLiteral(node *IntegerLiteral)
	VisitBooleanLiteral(node *BooleanLiteral)
	VisitStringLiteral(node *StringLiteral)
	VisitUnitLiteral(node *UnitLiteral)
	VisitPrefixExpression(node *PrefixExpression)
	VisitInfixExpression(node *InfixExpression)
	VisitCallExpression(node *CallExpression)
	VisitFieldAccessExpression(node *FieldAccessExpression)
	VisitBlockExpression(node *BlockExpression)
	VisitIfExpression(node *IfExpression)
	VisitMatchExpression(node *MatchExpression)
	VisitFunctionLiteral(node *FunctionLiteral)
	VisitStructLiteral(node *StructLiteral)
	VisitVariantExpression(node *VariantExpression)

	// Types
	VisitNamedType(node *NamedType)
	VisitFunctionType(node *FunctionType)

	// Patterns
	VisitWildcardPattern(node *WildcardPattern)
	VisitLiteralPattern(node *LiteralPattern)
	VisitBindingPattern(node *BindingPattern)
	VisitStructPattern(node *StructPattern)
	VisitVariantPattern(node *VariantPattern)
}

// Children returns the direct child nodes of n in source order.
// Declared names (function, parameter, field and binding names) are not children,
// so every *Identifier reached through Children is a reference.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil {
			return
		}
		switch v := c.(type) {
		case Expression:
			if isNilExpr(v) {
				return
			}
		case Type:
			if isNilType(v) {
				return
			}
		}
		out = append(out, c)
	}
	addParams := func(params []*Parameter) {
		for _, p := range params {
			if p.Type != nil {
				add(p.Type)
			}
		}
	}

	switch node := n.(type) {
	case *Program:
		for _, it := range node.Items {
			add(it)
		}
	case *FunctionStatement:
		addParams(node.Parameters)
		if node.ReturnType != nil {
			add(node.ReturnType)
		}
		if node.Body != nil {
			add(node.Body)
		}
	case *StructStatement:
		for _, f := range node.Fields {
			add(f.Type)
		}
	case *EnumStatement:
		for _, vd := range node.Variants {
			for _, f := range vd.Fields {
				add(f.Type)
			}
		}
	case *VarStatement:
		if node.TypeAnnotation != nil {
			add(node.TypeAnnotation)
		}
		add(node.Value)
	case *AssignStatement:
		add(node.Target)
		add(node.Value)
	case *ReturnStatement:
		add(node.Value)
	case *ExpressionStatement:
		add(node.Expression)
	case *PrefixExpression:
		add(node.Right)
	case *InfixExpression:
		add(node.Left)
		add(node.Right)
	case *CallExpression:
		add(node.Function)
		for _, a := range node.Arguments {
			add(a)
		}
	case *FieldAccessExpression:
		add(node.Left)
	case *BlockExpression:
		for _, s := range node.Statements {
			add(s)
		}
		add(node.Tail)
	case *IfExpression:
		for _, br := range node.Branches {
			add(br.Condition)
			if br.Body != nil {
				add(br.Body)
			}
		}
		if node.Else != nil {
			add(node.Else)
		}
	case *MatchExpression:
		add(node.Subject)
		for _, arm := range node.Arms {
			if arm.Pattern != nil {
				add(arm.Pattern)
			}
			if arm.Body != nil {
				add(arm.Body)
			}
		}
	case *FunctionLiteral:
		addParams(node.Parameters)
		if node.ReturnType != nil {
			add(node.ReturnType)
		}
		if node.Body != nil {
			add(node.Body)
		}
	case *StructLiteral:
		for _, f := range node.Fields {
			add(f.Value)
		}
	case *VariantExpression:
		for _, a := range node.Arguments {
			add(a)
		}
	case *FunctionType:
		for _, p := range node.Parameters {
			add(p)
		}
		if node.ReturnType != nil {
			add(node.ReturnType)
		}
	case *StructPattern:
		for _, f := range node.Fields {
			add(f.Pattern)
		}
	case *VariantPattern:
		for _, e := range node.Elements {
			add(e)
		}
	}
	return out
}

// Inspect traverses the tree depth-first in source order, calling f for each node.
// If f returns false the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

func isNilExpr(e Expression) bool {
	switch v := e.(type) {
	case *Identifier:
		return v == nil
	case *BlockExpression:
		return v == nil
	case *FunctionLiteral:
		return v == nil
	}
	return e == nil
}

func isNilType(t Type) bool {
	switch v := t.(type) {
	case *NamedType:
		return v == nil
	case *FunctionType:
		return v == nil
	}
	return t == nil
}
