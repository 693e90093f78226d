package mir

import "fmt"

// Visitor observes lowered expressions and patterns; children first.
type Visitor interface {
	VisitExpr(id ExprID, expr Expr)
	VisitPattern(id PatternID, pattern Pattern)
}

// WalkExpr walks the expression tree rooted at id.
func WalkExpr(p *Program, id ExprID, v Visitor) {
	expr := p.Exprs.Get(id).Expr
	switch expr := expr.(type) {
	case *StaticFunctionCall:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *DynamicFunctionCall:
		WalkExpr(p, expr.Callee, v)
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *PartialFunctionCall:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *If:
		WalkExpr(p, expr.Cond, v)
		WalkExpr(p, expr.Then, v)
		WalkExpr(p, expr.Else, v)
	case *CaseOf:
		WalkExpr(p, expr.Body, v)
		for _, c := range expr.Cases {
			WalkExpr(p, c.Body, v)
			WalkPattern(p, c.Pattern, v)
		}
	case *Do:
		for _, item := range expr.Items {
			WalkExpr(p, item, v)
		}
	case *Bind:
		WalkExpr(p, expr.Rhs, v)
		WalkPattern(p, expr.Pattern, v)
	case *List:
		for _, item := range expr.Items {
			WalkExpr(p, item, v)
		}
	case *RecordInitialization:
		for _, field := range expr.Fields {
			WalkExpr(p, field.Expr, v)
		}
	case *VariantConstruction:
		for _, item := range expr.Items {
			WalkExpr(p, item.Expr, v)
		}
	case *RecordUpdate:
		WalkExpr(p, expr.Receiver, v)
		for _, field := range expr.Fields {
			WalkExpr(p, field.Expr, v)
		}
	case *FieldAccess:
		WalkExpr(p, expr.Receiver, v)
	case *Formatter:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *Clone:
		WalkExpr(p, expr.Inner, v)
	case *ArgRef, *ExprValue, *IntegerLiteral, *FloatLiteral, *StringLiteral, *CharLiteral, *BoolLiteral:
	default:
		panic(fmt.Sprintf("mir: walking unknown expr %T", expr))
	}
	v.VisitExpr(id, expr)
}

// WalkPattern walks the pattern tree rooted at id.
func WalkPattern(p *Program, id PatternID, v Visitor) {
	pattern := p.Patterns.Get(id).Pattern
	switch pattern := pattern.(type) {
	case *RecordPattern:
		for _, item := range pattern.Items {
			WalkPattern(p, item, v)
		}
	case *VariantPattern:
		for _, item := range pattern.Items {
			WalkPattern(p, item, v)
		}
	case *GuardedPattern:
		WalkPattern(p, pattern.Sub, v)
		WalkExpr(p, pattern.Guard, v)
	case *BindingPattern, *WildcardPattern, *IntegerPattern, *CharPattern, *StringPattern:
	default:
		panic(fmt.Sprintf("mir: walking unknown pattern %T", pattern))
	}
	v.VisitPattern(id, pattern)
}
