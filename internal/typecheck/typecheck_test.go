package typecheck_test

import (
	"testing"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/pipeline"
)

func compile(t *testing.T, src string) *pipeline.Result {
	t.Helper()
	return pipeline.Compile([]pipeline.Input{{Path: "main.sk", Content: src}}, pipeline.Options{})
}

func hasErrorKind(bag *diag.Bag, kind diag.Kind) bool {
	for _, err := range bag.Errors() {
		if err.Kind == kind {
			return true
		}
	}
	return false
}

func TestCheckSimpleProgram(t *testing.T) {
	result := compile(t, `module Main where

main = println (show (1 + 2))
`)
	if !result.Ok() {
		t.Fatalf("unexpected errors:\n%s", result.Errors.Summary())
	}
	mainID, ok := result.IR.Main()
	if !ok {
		t.Fatal("Main.main missing after check")
	}
	ty := result.IR.FunctionType(mainID)
	if ty.String() != "()" {
		t.Errorf("main type = %s, want ()", ty)
	}
}

func TestCheckTypeMismatch(t *testing.T) {
	result := compile(t, `module Main where

main = if 1 then println "a" else println "b"
`)
	if !hasErrorKind(result.Errors, diag.TypeMismatch) {
		t.Errorf("expected TypeMismatch, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckBranchMismatch(t *testing.T) {
	result := compile(t, `module Main where

main = println (show (if true then 1 else "x"))
`)
	if !hasErrorKind(result.Errors, diag.TypeMismatch) {
		t.Errorf("expected TypeMismatch, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckMainNotFound(t *testing.T) {
	result := compile(t, `module Main where

helper x = x
`)
	if !hasErrorKind(result.Errors, diag.MainNotFound) {
		t.Errorf("expected MainNotFound, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckInvalidFormatString(t *testing.T) {
	result := compile(t, `module Main where

main = println ("{} and {}" % (1))
`)
	if !hasErrorKind(result.Errors, diag.InvalidFormatString) {
		t.Errorf("expected InvalidFormatString, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckUntypedExternFunction(t *testing.T) {
	result := compile(t, `module Main where

mystery x = extern

main = println "x"
`)
	if !hasErrorKind(result.Errors, diag.UntypedExternFunction) {
		t.Errorf("expected UntypedExternFunction, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckFunctionArgAndSignatureMismatch(t *testing.T) {
	result := compile(t, `module Main where

f :: Int -> Int
f x y = x

main = println "x"
`)
	if !hasErrorKind(result.Errors, diag.FunctionArgAndSignatureMismatch) {
		t.Errorf("expected FunctionArgAndSignatureMismatch, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckConflictingInstances(t *testing.T) {
	result := compile(t, `module Main where

data P = { value :: Int }

instance PartialEq P where
  opEq a b = true

instance PartialEq P where
  opEq a b = false

main = println "x"
`)
	count := 0
	for _, err := range result.Errors.Errors() {
		if err.Kind == diag.ConflictingInstances {
			count++
			if len(err.Locations) != 2 {
				t.Errorf("conflict carries %d locations, want 2", len(err.Locations))
			}
		}
	}
	if count != 1 {
		t.Errorf("got %d ConflictingInstances errors, want 1:\n%s", count, result.Errors.Summary())
	}
	if result.Lowered != nil {
		t.Error("lowering must not run after a failed phase")
	}
}

func TestCheckMissingInstance(t *testing.T) {
	result := compile(t, `module Main where

data P = { value :: Int }

check p q = p == q

main = do
  r <- check (P 1) (P 2)
  println (show r)
`)
	if !hasErrorKind(result.Errors, diag.MissingInstance) {
		t.Errorf("expected MissingInstance, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckDeriveFailureNoInstanceFound(t *testing.T) {
	result := compile(t, `module Main where

data Opaque = extern

data Holder = { inner :: Opaque } deriving (Show)

main = println "x"
`)
	if !hasErrorKind(result.Errors, diag.DeriveFailureNoInstanceFound) {
		t.Errorf("expected DeriveFailureNoInstanceFound, got:\n%s", result.Errors.Summary())
	}
}

func TestCheckRecursiveType(t *testing.T) {
	result := compile(t, `module Main where

selfApply f = f f

main = println "x"
`)
	if !hasErrorKind(result.Errors, diag.RecursiveType) {
		t.Errorf("expected RecursiveType, got:\n%s", result.Errors.Summary())
	}
}
