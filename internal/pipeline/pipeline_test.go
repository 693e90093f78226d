package pipeline_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sunholo/skiff/internal/interp"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/pipeline"
)

func compileOK(t *testing.T, src string) *pipeline.Result {
	t.Helper()
	result := pipeline.Compile([]pipeline.Input{{Path: "main.sk", Content: src}}, pipeline.Options{})
	if !result.Ok() {
		t.Fatalf("unexpected errors:\n%s", result.Errors.Summary())
	}
	return result
}

func run(t *testing.T, src string) string {
	t.Helper()
	result := compileOK(t, src)
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	return out.String()
}

func TestRunArithmetic(t *testing.T) {
	got := run(t, `module Main where

main = println (show (1 + 2 * 3))
`)
	if got != "7\n" {
		t.Errorf("output = %q, want %q", got, "7\n")
	}
}

func TestRunIdentityLambdaSpecialisation(t *testing.T) {
	result := compileOK(t, `module Main where

main = println (show ((\x -> x) 3))
`)
	lambdas := 0
	result.Lowered.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		if strings.Contains(fn.Name, "lambda#") {
			lambdas++
			ty := fn.Type.String()
			if !strings.HasPrefix(ty, "Int/") || !strings.Contains(ty, "-> Int/") {
				t.Errorf("lambda type = %s, want Int -> Int", fn.Type)
			}
		}
	})
	if lambdas != 1 {
		t.Errorf("lowered %d lambda functions, want 1", lambdas)
	}
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	if out.String() != "3\n" {
		t.Errorf("output = %q, want %q", out.String(), "3\n")
	}
}

func TestRunShowDerivation(t *testing.T) {
	got := run(t, `module Main where

data Tree a = Leaf | Node a (Tree a) (Tree a) deriving (Show)

main = println (show (Node 1 Leaf Leaf))
`)
	if got != "Node 1 Leaf Leaf\n" {
		t.Errorf("output = %q, want %q", got, "Node 1 Leaf Leaf\n")
	}
}

func TestRunClassDispatchBecomesStatic(t *testing.T) {
	result := compileOK(t, `module Main where

main = if 1 == 1 then print "y" else print "n"
`)
	dispatch := false
	result.Lowered.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		if strings.Contains(fn.Name, "PartialEq.opEq.Int") {
			dispatch = true
		}
	})
	if !dispatch {
		t.Error("lowered program has no static Int equality function")
	}
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	if out.String() != "y" {
		t.Errorf("output = %q, want %q", out.String(), "y")
	}
}

func TestRunPartialApplication(t *testing.T) {
	result := compileOK(t, `module Main where

add x y = x + y

main = do
  f <- add 1
  println (show (f 2))
`)
	if result.Lowered.PartialCalls.Len() != 1 {
		t.Fatalf("lowered %d partial calls, want 1", result.Lowered.PartialCalls.Len())
	}
	partial := result.Lowered.PartialCalls.Get(0)
	if len(partial.Fields) != 1 {
		t.Errorf("partial call stores %d fields, want 1", len(partial.Fields))
	}
	if len(partial.Traits) != 1 || !partial.Traits[0].IsRealCall {
		t.Errorf("partial call traits = %+v, want one real call", partial.Traits)
	}
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	if out.String() != "3\n" {
		t.Errorf("output = %q, want %q", out.String(), "3\n")
	}
}

func TestRunRecursiveAdtBoxing(t *testing.T) {
	result := compileOK(t, `module Main where

data L = N | C Int L

main = case C 1 N of
  C x _ -> println (show x)
  N -> println "empty"
`)
	boxed := false
	result.Lowered.TypeDefs.Each(func(id mir.TypeDefID, typedef mir.TypeDef) {
		adt, ok := typedef.(*mir.Adt)
		if !ok || adt.Name != "L" {
			return
		}
		if len(adt.Variants) != 2 {
			t.Fatalf("L has %d variants", len(adt.Variants))
		}
		if _, ok := adt.Variants[1].Items[1].(*mir.Boxed); ok {
			boxed = true
		}
	})
	if !boxed {
		t.Error("recursive position of C was not boxed")
	}
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	if out.String() != "1\n" {
		t.Errorf("output = %q, want %q", out.String(), "1\n")
	}
}

func TestRunCaseWithGuard(t *testing.T) {
	got := run(t, `module Main where

classify n = case n of
  x | x < 0 -> "negative"
  0 -> "zero"
  _ -> "positive"

main = do
  println (classify (0 - 4))
  println (classify 0)
  println (classify 9)
`)
	want := "negative\nzero\npositive\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunRecordsAndUpdates(t *testing.T) {
	got := run(t, `module Main where

data Point = { x :: Int, y :: Int }

main = do
  p <- { x = 1, y = 2 }
  q <- p { y = 5 }
  println (show (q.x + q.y))
`)
	if got != "6\n" {
		t.Errorf("output = %q, want %q", got, "6\n")
	}
}

func TestRunFormatter(t *testing.T) {
	got := run(t, `module Main where

main = println ("{} and {}" % (1, true))
`)
	if got != "1 and true\n" {
		t.Errorf("output = %q, want %q", got, "1 and true\n")
	}
}

func TestRunPipeOperator(t *testing.T) {
	got := run(t, `module Main where

double x = x * 2

main = println (show (5 |> double))
`)
	if got != "10\n" {
		t.Errorf("output = %q, want %q", got, "10\n")
	}
}

func TestRunDerivedOrdering(t *testing.T) {
	got := run(t, `module Main where

data Size = Small | Medium | Large deriving (PartialEq, Eq, PartialOrd, Ord, Show)

main = do
  println (show (Small < Large))
  println (show (cmp Large Medium))
`)
	want := "true\nGreater\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRunCopyInsertion(t *testing.T) {
	result := compileOK(t, `module Main where

dup x = (x, x)

main = println (show ((dup 3).0))
`)
	clones := 0
	result.Lowered.Functions.Each(func(id mir.FunctionID, fn *mir.LoweredFunction) {
		normal, ok := fn.Info.(*mir.NormalFunction)
		if !ok || !strings.Contains(fn.Name, "dup") {
			return
		}
		counter := &cloneCounter{prog: result.Lowered}
		mir.WalkExpr(result.Lowered, normal.Body, counter)
		clones = counter.count
	})
	if clones != 1 {
		t.Errorf("dup body has %d clones, want 1", clones)
	}
	var out bytes.Buffer
	interp.New(result.Lowered, &out).Run()
	if out.String() != "3\n" {
		t.Errorf("output = %q, want %q", out.String(), "3\n")
	}
}

type cloneCounter struct {
	prog  *mir.Program
	count int
}

func (c *cloneCounter) VisitExpr(id mir.ExprID, expr mir.Expr) {
	if _, ok := expr.(*mir.Clone); ok {
		c.count++
	}
}

func (c *cloneCounter) VisitPattern(id mir.PatternID, pattern mir.Pattern) {}

func TestRunListsAndShow(t *testing.T) {
	got := run(t, `module Main where

main = println (show [1, 2, 3])
`)
	if got != "[1, 2, 3]\n" {
		t.Errorf("output = %q, want %q", got, "[1, 2, 3]\n")
	}
}

func TestVerboseSummaries(t *testing.T) {
	var out bytes.Buffer
	result := pipeline.Compile([]pipeline.Input{{Path: "main.sk", Content: "module Main where\n\nmain = println \"ok\"\n"}},
		pipeline.Options{Verbose: true, Writer: &out})
	if !result.Ok() {
		t.Fatalf("unexpected errors:\n%s", result.Errors.Summary())
	}
	for _, phase := range []string{"parse:", "resolve:", "typecheck:", "lower:"} {
		if !strings.Contains(out.String(), phase) {
			t.Errorf("verbose output missing %q:\n%s", phase, out.String())
		}
	}
}
