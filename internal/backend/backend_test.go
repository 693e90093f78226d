package backend_test

import (
	"strings"
	"testing"

	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/pipeline"
)

func lower(t *testing.T, src string) *mir.Program {
	t.Helper()
	result := pipeline.Compile([]pipeline.Input{{Path: "main.sk", Content: src}}, pipeline.Options{})
	if !result.Ok() {
		t.Fatalf("unexpected errors:\n%s", result.Errors.Summary())
	}
	return result.Lowered
}

func countFunctions(prog *mir.Program, name string) int {
	count := 0
	prog.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		if strings.Contains(fn.Name, name) {
			count++
		}
	})
	return count
}

func TestMonomorphiserDeduplicatesEqualSpecialisations(t *testing.T) {
	prog := lower(t, `module Main where

ident x = x

main = println (show (ident 1 + ident 2))
`)
	if got := countFunctions(prog, "Main/ident"); got != 1 {
		t.Errorf("ident lowered %d times, want 1", got)
	}
}

func TestMonomorphiserSplitsDistinctSpecialisations(t *testing.T) {
	prog := lower(t, `module Main where

ident x = x

main = do
  println (show (ident 1))
  println (ident "s")
`)
	if got := countFunctions(prog, "Main/ident"); got != 2 {
		t.Errorf("ident lowered %d times, want 2", got)
	}
}

func TestMonomorphiserSkipsUnreachableFunctions(t *testing.T) {
	prog := lower(t, `module Main where

unreached x = x

main = println "ok"
`)
	if got := countFunctions(prog, "unreached"); got != 0 {
		t.Errorf("unreachable function lowered %d times, want 0", got)
	}
}

// staticArityChecker asserts the closure-conversion postcondition: every
// remaining static call is fully applied.
type staticArityChecker struct {
	t    *testing.T
	prog *mir.Program
}

func (c *staticArityChecker) VisitExpr(id mir.ExprID, expr mir.Expr) {
	call, ok := expr.(*mir.StaticFunctionCall)
	if !ok {
		return
	}
	fn := c.prog.Functions.Get(call.Function)
	if len(call.Args) != fn.ArgCount {
		c.t.Errorf("static call to %s has %d args, arity %d", fn.Name, len(call.Args), fn.ArgCount)
	}
}

func (c *staticArityChecker) VisitPattern(id mir.PatternID, pattern mir.Pattern) {}

func TestClosureConversionPostcondition(t *testing.T) {
	prog := lower(t, `module Main where

addThree a b c = a + b + c

main = do
  f <- addThree 1
  g <- f 2
  println (show (g 4))
`)
	checker := &staticArityChecker{t: t, prog: prog}
	prog.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		if normal, ok := fn.Info.(*mir.NormalFunction); ok {
			mir.WalkExpr(prog, normal.Body, checker)
		}
	})
	if prog.PartialCalls.Len() == 0 {
		t.Error("under-application produced no partial-call descriptors")
	}
}

func TestOverApplicationSplits(t *testing.T) {
	prog := lower(t, `module Main where

constFn x = \y -> y

main = println (show (constFn 1 2))
`)
	// constFn 1 2 over-applies a one-argument function: the lowered body
	// of main must contain a dynamic call whose callee is a static call.
	found := false
	prog.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		normal, ok := fn.Info.(*mir.NormalFunction)
		if !ok || !strings.Contains(fn.Name, "Main/main") {
			return
		}
		visitor := &dynamicOverStatic{prog: prog, found: &found}
		mir.WalkExpr(prog, normal.Body, visitor)
	})
	if !found {
		t.Error("over-application did not lower to a static call followed by a dynamic call")
	}
}

type dynamicOverStatic struct {
	prog  *mir.Program
	found *bool
}

func (v *dynamicOverStatic) VisitExpr(id mir.ExprID, expr mir.Expr) {
	call, ok := expr.(*mir.DynamicFunctionCall)
	if !ok {
		return
	}
	switch v.prog.Exprs.Get(call.Callee).Expr.(type) {
	case *mir.StaticFunctionCall, *mir.PartialFunctionCall:
		*v.found = true
	}
}

func (v *dynamicOverStatic) VisitPattern(id mir.PatternID, pattern mir.Pattern) {}

func TestTuplesLowerToRecords(t *testing.T) {
	prog := lower(t, `module Main where

main = println (show (1, 2).0)
`)
	foundTuple := false
	prog.TypeDefs.Each(func(id mir.TypeDefID, typedef mir.TypeDef) {
		record, ok := typedef.(*mir.Record)
		if ok && strings.HasPrefix(record.Name, "tuple#") && len(record.Fields) == 2 {
			foundTuple = true
		}
	})
	if !foundTuple {
		t.Error("tuple type did not lower to an anonymous record")
	}
}
