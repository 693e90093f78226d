package ir

import "fmt"

// Visitor observes expressions and patterns during a body walk. Children
// are visited before their parent.
type Visitor interface {
	VisitExpr(id ExprID, expr Expr)
	VisitPattern(id PatternID, pattern Pattern)
}

// WalkExpr walks the expression tree rooted at id, visiting every
// expression and pattern.
func WalkExpr(p *Program, id ExprID, v Visitor) {
	expr := p.Exprs.Get(id).Expr
	switch expr := expr.(type) {
	case *StaticCall:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *DynamicCall:
		WalkExpr(p, expr.Callee, v)
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *ClassCall:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *IfExpr:
		WalkExpr(p, expr.Cond, v)
		WalkExpr(p, expr.Then, v)
		WalkExpr(p, expr.Else, v)
	case *TupleExpr:
		for _, item := range expr.Items {
			WalkExpr(p, item, v)
		}
	case *ListExpr:
		for _, item := range expr.Items {
			WalkExpr(p, item, v)
		}
	case *Do:
		for _, item := range expr.Items {
			WalkExpr(p, item, v)
		}
	case *Bind:
		WalkExpr(p, expr.Rhs, v)
		WalkPattern(p, expr.Pattern, v)
	case *FieldAccess:
		WalkExpr(p, expr.Receiver, v)
	case *TupleFieldAccess:
		WalkExpr(p, expr.Receiver, v)
	case *Formatter:
		for _, arg := range expr.Args {
			WalkExpr(p, arg, v)
		}
	case *CaseOf:
		WalkExpr(p, expr.Body, v)
		for _, c := range expr.Cases {
			WalkExpr(p, c.Body, v)
			WalkPattern(p, c.Pattern, v)
		}
	case *RecordInit:
		for _, field := range expr.Fields {
			WalkExpr(p, field.Expr, v)
		}
	case *RecordUpdate:
		WalkExpr(p, expr.Receiver, v)
		visited := make(map[ExprID]bool)
		for _, candidate := range expr.Candidates {
			for _, item := range candidate.Items {
				if !visited[item.Expr] {
					visited[item.Expr] = true
					WalkExpr(p, item.Expr, v)
				}
			}
		}
	case *ExprArgRef, *ExprValue, *IntegerLiteral, *FloatLiteral, *CharLiteral, *StringLiteral, *BoolLiteral:
	default:
		panic(fmt.Sprintf("ir: walking unknown expr %T", expr))
	}
	v.VisitExpr(id, expr)
}

// WalkPattern walks the pattern tree rooted at id.
func WalkPattern(p *Program, id PatternID, v Visitor) {
	pattern := p.Patterns.Get(id).Pattern
	switch pattern := pattern.(type) {
	case *TuplePattern:
		for _, item := range pattern.Items {
			WalkPattern(p, item, v)
		}
	case *RecordPattern:
		for _, field := range pattern.Fields {
			WalkPattern(p, field, v)
		}
	case *VariantPattern:
		for _, item := range pattern.Items {
			WalkPattern(p, item, v)
		}
	case *GuardedPattern:
		WalkPattern(p, pattern.Sub, v)
		WalkExpr(p, pattern.Guard, v)
	case *TypedPattern:
		WalkPattern(p, pattern.Sub, v)
	case *BindingPattern, *WildcardPattern, *IntegerPattern, *CharPattern, *StringPattern:
	default:
		panic(fmt.Sprintf("ir: walking unknown pattern %T", pattern))
	}
	v.VisitPattern(id, pattern)
}
