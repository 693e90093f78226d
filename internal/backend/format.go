package backend

import (
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/types"
)

// formatVisitor wraps every formatter argument in an explicit show class
// call, so monomorphisation only ever sees string-typed formatter
// arguments.
type formatVisitor struct {
	prog *ir.Program
	show types.ClassMemberID
	str  types.Type
}

func (v *formatVisitor) VisitExpr(id ir.ExprID, expr ir.Expr) {
	formatter, ok := expr.(*ir.Formatter)
	if !ok {
		return
	}
	newArgs := make([]ir.ExprID, len(formatter.Args))
	for i, arg := range formatter.Args {
		if call, isCall := v.prog.Exprs.Get(arg).Expr.(*ir.ClassCall); isCall && call.Member == v.show {
			newArgs[i] = arg
			continue
		}
		loc := v.prog.ExprLocation(arg)
		callID := v.prog.AddExpr(&ir.ClassCall{Member: v.show, Args: []ir.ExprID{arg}}, loc)
		v.prog.ExprTypes[callID] = v.str
		newArgs[i] = callID
	}
	v.prog.UpdateExpr(id, &ir.Formatter{Fmt: formatter.Fmt, Args: newArgs})
}

func (v *formatVisitor) VisitPattern(id ir.PatternID, pattern ir.Pattern) {}

// rewriteFormatters runs the formatter pre-pass over every function body.
func rewriteFormatters(prog *ir.Program) {
	if _, ok := prog.ClassByName("Std.Ops.Show"); !ok {
		return
	}
	visitor := &formatVisitor{
		prog: prog,
		show: prog.ShowMember(),
		str:  prog.StringType(),
	}
	prog.Functions.Each(func(id ir.FunctionID, fn *ir.Function) {
		switch info := fn.Info.(type) {
		case *ir.NamedFunctionInfo:
			if info.Body != ir.NoExpr {
				ir.WalkExpr(prog, info.Body, visitor)
			}
		case *ir.LambdaInfo:
			ir.WalkExpr(prog, info.Body, visitor)
		}
	})
}
