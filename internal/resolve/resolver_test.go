package resolve_test

import (
	"testing"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/parser"
	"github.com/sunholo/skiff/internal/resolve"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
)

func resolveSource(t *testing.T, inputs ...string) (*ir.Program, *diag.Bag) {
	t.Helper()
	program := syntax.NewProgram()
	errors := &diag.Bag{}
	locs := source.NewTable()
	for _, input := range inputs {
		parser.ParseFile("test.sk", input, program, locs, errors)
	}
	if errors.HasErrors() {
		t.Fatalf("unexpected parse errors:\n%s", errors.Summary())
	}
	return resolve.Resolve(program, errors), errors
}

func hasErrorKind(bag *diag.Bag, kind diag.Kind) bool {
	for _, err := range bag.Errors() {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

func TestResolveSimpleFunction(t *testing.T) {
	prog, errors := resolveSource(t, "module A where\n\nf x = g x\n\ng y = y\n")
	if errors.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", errors.Summary())
	}
	fnID, ok := prog.NamedFunctions["A.f"]
	if !ok {
		t.Fatal("A.f is not registered")
	}
	fn := prog.Functions.Get(fnID)
	info := fn.Info.(*ir.NamedFunctionInfo)
	if info.Body == ir.NoExpr {
		t.Fatal("A.f has no body")
	}
	call, ok := prog.Exprs.Get(info.Body).Expr.(*ir.StaticCall)
	if !ok {
		t.Fatalf("f body = %T, want StaticCall", prog.Exprs.Get(info.Body).Expr)
	}
	if call.Function != prog.NamedFunctions["A.g"] {
		t.Error("f body does not call g")
	}
	arg, ok := prog.Exprs.Get(call.Args[0]).Expr.(*ir.ExprArgRef)
	if !ok || arg.Ref.Index != 0 || arg.Ref.Captured {
		t.Errorf("call argument = %+v", prog.Exprs.Get(call.Args[0]).Expr)
	}
}

func TestResolveModuleConflict(t *testing.T) {
	_, errors := resolveSource(t, "module A where\n\nf = 1\n", "module A where\n\ng = 1\n")
	if !hasErrorKind(errors, diag.ModuleConflict) {
		t.Errorf("expected ModuleConflict, got:\n%s", errors.Summary())
	}
}

func TestResolveUnknownFunction(t *testing.T) {
	_, errors := resolveSource(t, "module A where\n\nf = missing 1\n")
	if !hasErrorKind(errors, diag.UnknownFunction) {
		t.Errorf("expected UnknownFunction, got:\n%s", errors.Summary())
	}
}

func TestResolveAmbiguousName(t *testing.T) {
	_, errors := resolveSource(t,
		"module A where\n\nshared = 1\n",
		"module B where\n\nshared = 2\n",
		"module C where\n\nimport A\nimport B\n\nf = shared\n")
	if !hasErrorKind(errors, diag.AmbiguousName) {
		t.Errorf("expected AmbiguousName, got:\n%s", errors.Summary())
	}
}

func TestResolveImportNoMatch(t *testing.T) {
	_, errors := resolveSource(t,
		"module A where\n\nf = 1\n",
		"module B where\n\nimport A (nothing)\n\ng = 1\n")
	if !hasErrorKind(errors, diag.ImportNoMatch) {
		t.Errorf("expected ImportNoMatch, got:\n%s", errors.Summary())
	}
}

func TestResolveExportNoMatch(t *testing.T) {
	_, errors := resolveSource(t, "module A (missing) where\n\nf = 1\n")
	if !hasErrorKind(errors, diag.ExportNoMatch) {
		t.Errorf("expected ExportNoMatch, got:\n%s", errors.Summary())
	}
}

func TestResolveArgumentConflict(t *testing.T) {
	_, errors := resolveSource(t, "module A where\n\nf x x = x\n")
	if !hasErrorKind(errors, diag.ArgumentConflict) {
		t.Errorf("expected ArgumentConflict, got:\n%s", errors.Summary())
	}
}

func TestResolveLambdaCapture(t *testing.T) {
	prog, errors := resolveSource(t, "module A where\n\npair x y = (x, y)\n\nf a = \\x -> pair a x\n")
	if errors.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", errors.Summary())
	}
	var lambda *ir.Function
	var lambdaID ir.FunctionID
	prog.Functions.Each(func(id ir.FunctionID, fn *ir.Function) {
		if _, ok := fn.Info.(*ir.LambdaInfo); ok {
			lambda = fn
			lambdaID = id
		}
	})
	if lambda == nil {
		t.Fatal("no lambda function was lifted")
	}
	if lambda.ImplicitArgCount != 1 {
		t.Errorf("capture count = %d, want 1", lambda.ImplicitArgCount)
	}
	if lambda.ArgCount() != 2 {
		t.Errorf("total arg count = %d, want 2", lambda.ArgCount())
	}
	info := lambda.Info.(*ir.LambdaInfo)
	if info.Index != 0 {
		t.Errorf("lambda index = %d, want 0", info.Index)
	}
	// The use site passes the captured value as the leading argument.
	fID := prog.NamedFunctions["A.f"]
	fInfo := prog.Functions.Get(fID).Info.(*ir.NamedFunctionInfo)
	call, ok := prog.Exprs.Get(fInfo.Body).Expr.(*ir.StaticCall)
	if !ok || call.Function != lambdaID {
		t.Fatalf("f body = %+v", prog.Exprs.Get(fInfo.Body).Expr)
	}
	if len(call.Args) != 1 {
		t.Fatalf("capture args = %d, want 1", len(call.Args))
	}
	capture, ok := prog.Exprs.Get(call.Args[0]).Expr.(*ir.ExprArgRef)
	if !ok || capture.Ref.Index != 0 || capture.Ref.Captured {
		t.Errorf("capture arg = %+v", prog.Exprs.Get(call.Args[0]).Expr)
	}
	// Inside the lambda body, the captured reference sits before the user
	// argument.
	body, ok := prog.Exprs.Get(info.Body).Expr.(*ir.StaticCall)
	if !ok {
		t.Fatalf("lambda body = %T", prog.Exprs.Get(info.Body).Expr)
	}
	first := prog.Exprs.Get(body.Args[0]).Expr.(*ir.ExprArgRef)
	second := prog.Exprs.Get(body.Args[1]).Expr.(*ir.ExprArgRef)
	if first.Ref.Index != 0 || second.Ref.Index != 1 {
		t.Errorf("lambda body arg indices = %d, %d; want 0, 1", first.Ref.Index, second.Ref.Index)
	}
}

func TestResolveVariantAndPattern(t *testing.T) {
	prog, errors := resolveSource(t, `module A where

data Color = Red | Green | Blue

f c = case c of
  Red -> 0
  Green -> 1
  _ -> 2
`)
	if errors.HasErrors() {
		t.Fatalf("unexpected errors:\n%s", errors.Summary())
	}
	fID := prog.NamedFunctions["A.f"]
	fInfo := prog.Functions.Get(fID).Info.(*ir.NamedFunctionInfo)
	caseOf, ok := prog.Exprs.Get(fInfo.Body).Expr.(*ir.CaseOf)
	if !ok || len(caseOf.Cases) != 3 {
		t.Fatalf("f body = %T", prog.Exprs.Get(fInfo.Body).Expr)
	}
	red, ok := prog.Patterns.Get(caseOf.Cases[0].Pattern).Pattern.(*ir.VariantPattern)
	if !ok || red.Index != 0 {
		t.Errorf("first arm = %+v", prog.Patterns.Get(caseOf.Cases[0].Pattern).Pattern)
	}
	if _, ok := prog.Patterns.Get(caseOf.Cases[2].Pattern).Pattern.(*ir.WildcardPattern); !ok {
		t.Error("third arm should be a wildcard")
	}
}

func TestResolveNotIrrefutableBind(t *testing.T) {
	_, errors := resolveSource(t, `module A where

data Color = Red | Green

f c = do
  Red <- c
  1
`)
	if !hasErrorKind(errors, diag.NotIrrefutablePattern) {
		t.Errorf("expected NotIrrefutablePattern, got:\n%s", errors.Summary())
	}
}
