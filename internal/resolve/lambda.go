package resolve

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/store"
)

// LambdaHelper tracks one lambda (or the hosting named function at the
// root) during body resolution. It assigns host-relative lambda indices
// from a counter shared by all helpers of one host and records the
// captures a lambda needs, rewriting outer references into captured
// argument references.
type LambdaHelper struct {
	captures []ir.Expr
	level    int
	hostName string
	counter  *store.Counter
	function ir.FunctionID
	host     ir.FunctionID
	parent   *LambdaHelper
}

// NewLambdaHelper creates a helper. The root helper of a named function
// has level 0, itself as function and host, and no parent.
func NewLambdaHelper(level int, hostName string, counter *store.Counter, function, host ir.FunctionID, parent *LambdaHelper) *LambdaHelper {
	return &LambdaHelper{
		level:    level,
		hostName: hostName,
		counter:  counter,
		function: function,
		host:     host,
		parent:   parent,
	}
}

// ProcessNamedRef converts an environment reference found at the given
// level into an expression valid inside this helper's function, capturing
// through every enclosing lambda in between.
func (h *LambdaHelper) ProcessNamedRef(ref NamedRef, level int) ir.Expr {
	var expr ir.Expr
	if h.parent != nil {
		expr = h.parent.ProcessNamedRef(ref, level)
	} else if ref.IsArg {
		expr = &ir.ExprArgRef{Ref: ref.Arg}
	} else {
		expr = &ir.ExprValue{Expr: ref.Expr, Pattern: ref.Pattern}
	}
	if level < h.level {
		index := len(h.captures)
		h.captures = append(h.captures, expr)
		return &ir.ExprArgRef{Ref: ir.ArgRef{
			Captured: true,
			Function: h.function,
			Index:    index,
		}}
	}
	return expr
}

// Captures returns the capture expressions in host terms, in capture
// order.
func (h *LambdaHelper) Captures() []ir.Expr {
	return h.captures
}

// HostName returns the display name of the hosting named function.
func (h *LambdaHelper) HostName() string {
	return h.hostName
}

// Host returns the hosting named function.
func (h *LambdaHelper) Host() ir.FunctionID {
	return h.host
}

// NextLambdaIndex issues the next host-relative lambda index.
func (h *LambdaHelper) NextLambdaIndex() int {
	return h.counter.Next()
}

// Counter exposes the shared per-host lambda counter.
func (h *LambdaHelper) Counter() *store.Counter {
	return h.counter
}

// lambdaArgShifter rewrites argument references inside a finished lambda
// body: captured references keep their index and lose the flag, user
// argument references shift past the capture prefix.
type lambdaArgShifter struct {
	program      *ir.Program
	lambda       ir.FunctionID
	captureCount int
}

func (s *lambdaArgShifter) VisitExpr(id ir.ExprID, expr ir.Expr) {
	ref, ok := expr.(*ir.ExprArgRef)
	if !ok || ref.Ref.Function != s.lambda {
		return
	}
	offset := ref.Ref.Index
	if !ref.Ref.Captured {
		offset += s.captureCount
	}
	s.program.UpdateExpr(id, &ir.ExprArgRef{Ref: ir.ArgRef{
		Function: s.lambda,
		Index:    offset,
	}})
}

func (s *lambdaArgShifter) VisitPattern(id ir.PatternID, pattern ir.Pattern) {}

// shiftLambdaArgs runs the shifter over a lambda body.
func shiftLambdaArgs(program *ir.Program, lambda ir.FunctionID, body ir.ExprID, captureCount int) {
	shifter := &lambdaArgShifter{program: program, lambda: lambda, captureCount: captureCount}
	ir.WalkExpr(program, body, shifter)
}

// hostDisplayName builds the display name of a lambda host.
func hostDisplayName(module, function string) string {
	return fmt.Sprintf("%s/%s", module, function)
}
