package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
)

func parse(t *testing.T, input string) (*syntax.Program, *diag.Bag) {
	t.Helper()
	program := syntax.NewProgram()
	errors := &diag.Bag{}
	locs := source.NewTable()
	ParseFile("test.sk", input, program, locs, errors)
	return program, errors
}

func parseOK(t *testing.T, input string) *syntax.Program {
	t.Helper()
	program, errors := parse(t, input)
	if errors.HasErrors() {
		t.Fatalf("unexpected parse errors:\n%s", errors.Summary())
	}
	return program
}

func TestParseModuleHeader(t *testing.T) {
	program := parseOK(t, "module Main where\n\nmain = 1\n")
	if len(program.Modules) != 1 {
		t.Fatalf("got %d modules", len(program.Modules))
	}
	module := program.Modules[0]
	if module.Name != "Main" {
		t.Errorf("module name = %q", module.Name)
	}
	if len(module.Funcs) != 1 || module.Funcs[0].Name != "main" {
		t.Fatalf("functions = %+v", module.Funcs)
	}
}

func TestParseExportList(t *testing.T) {
	program := parseOK(t, "module A (f, Tree(..), Pair(first, second)) where\n\nf = 1\n")
	export := program.Modules[0].Export
	if export.Kind != syntax.EIExplicit {
		t.Fatal("export list should be explicit")
	}
	names := make([]string, len(export.Items))
	groups := make([]bool, len(export.Items))
	for i, item := range export.Items {
		names[i] = item.Item.Name
		groups[i] = item.Item.Group
	}
	if diff := cmp.Diff([]string{"f", "Tree", "Pair"}, names); diff != "" {
		t.Errorf("export names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, true, true}, groups); diff != "" {
		t.Errorf("export groups mismatch (-want +got):\n%s", diff)
	}
	if !export.Items[1].Item.Members[0].All {
		t.Error("Tree(..) member should be the all selector")
	}
	if export.Items[2].Item.Members[1].Name != "second" {
		t.Errorf("Pair members = %+v", export.Items[2].Item.Members)
	}
}

func TestParseImports(t *testing.T) {
	program := parseOK(t, "module A where\n\nimport B\nimport C (g)\nimport D hiding (h)\nimport E as X\n\nf = 1\n")
	imports := program.Modules[0].Imports
	if len(imports) != 4 {
		t.Fatalf("got %d imports", len(imports))
	}
	if imports[1].List.Kind != syntax.EIExplicit {
		t.Error("import C should carry an explicit list")
	}
	if !imports[2].Hiding {
		t.Error("import D should be hiding")
	}
	if imports[3].Alias != "X" {
		t.Errorf("import E alias = %q", imports[3].Alias)
	}
}

func TestParseDataDeclarations(t *testing.T) {
	input := `module A where

data Tree a = Leaf | Node a (Tree a) (Tree a) deriving (Show)

data Pair = { first :: Int, second :: Int } deriving (PartialEq, Show)

data Int2 = extern
`
	program := parseOK(t, input)
	module := program.Modules[0]
	if len(module.Adts) != 1 {
		t.Fatalf("adts = %d", len(module.Adts))
	}
	adt := module.Adts[0]
	if adt.Name != "Tree" || len(adt.TypeArgs) != 1 || len(adt.Variants) != 2 {
		t.Errorf("adt = %+v", adt)
	}
	if len(adt.Variants[1].Items) != 3 {
		t.Errorf("Node has %d items, want 3", len(adt.Variants[1].Items))
	}
	if len(adt.Deriving) != 1 || adt.Deriving[0].Name != "Show" {
		t.Errorf("deriving = %+v", adt.Deriving)
	}
	if len(module.Records) != 2 {
		t.Fatalf("records = %d", len(module.Records))
	}
	record := module.Records[0]
	if record.Name != "Pair" || len(record.Fields) != 2 || record.Fields[1].Name != "second" {
		t.Errorf("record = %+v", record)
	}
	if !module.Records[1].External {
		t.Error("Int2 should be external")
	}
}

func TestParseClassAndInstance(t *testing.T) {
	input := `module A where

class Show2 a where
  show2 :: a -> String
  show2 x = "?"

instance Show2 Bool2 where
  show2 b = "b"

data Bool2 = extern

data String = extern
`
	program := parseOK(t, input)
	module := program.Modules[0]
	if len(module.Classes) != 1 {
		t.Fatalf("classes = %d", len(module.Classes))
	}
	class := module.Classes[0]
	if class.Name != "Show2" || class.Arg != "a" {
		t.Errorf("class = %+v", class)
	}
	if len(class.MemberSigs) != 1 || len(class.Defaults) != 1 {
		t.Errorf("members = %d sigs, %d defaults", len(class.MemberSigs), len(class.Defaults))
	}
	if len(module.Inst) != 1 {
		t.Fatalf("instances = %d", len(module.Inst))
	}
	instance := module.Inst[0]
	if instance.ClassPath != "Show2" || len(instance.Members) != 1 {
		t.Errorf("instance = %+v", instance)
	}
}

func TestParseExpressions(t *testing.T) {
	input := `module A where

f x y = if x == y then (x, [1, 2]) else (y, [])

g = do
  a <- f 1 2
  case a of
    (v, _) -> v

h = \x -> x |> g
`
	program := parseOK(t, input)
	module := program.Modules[0]
	if len(module.Funcs) != 3 {
		t.Fatalf("functions = %d", len(module.Funcs))
	}
	ifExpr, ok := program.Exprs.Get(module.Funcs[0].Body).Expr.(*syntax.If)
	if !ok {
		t.Fatalf("f body is %T, want If", program.Exprs.Get(module.Funcs[0].Body).Expr)
	}
	condCall, ok := program.Exprs.Get(ifExpr.Cond).Expr.(*syntax.FunctionCall)
	if !ok {
		t.Fatal("if condition should be an operator call")
	}
	callee, ok := program.Exprs.Get(condCall.Callee).Expr.(*syntax.BuiltinOp)
	if !ok || callee.Op != syntax.OpEq {
		t.Errorf("condition callee = %+v", callee)
	}
	doExpr, ok := program.Exprs.Get(module.Funcs[1].Body).Expr.(*syntax.Do)
	if !ok || len(doExpr.Items) != 2 {
		t.Fatalf("g body = %T with %d items", program.Exprs.Get(module.Funcs[1].Body).Expr, len(doExpr.Items))
	}
	if _, ok := program.Exprs.Get(doExpr.Items[0]).Expr.(*syntax.Bind); !ok {
		t.Error("first do item should be a bind")
	}
	if _, ok := program.Exprs.Get(doExpr.Items[1]).Expr.(*syntax.CaseOf); !ok {
		t.Error("second do item should be a case")
	}
	lambda, ok := program.Exprs.Get(module.Funcs[2].Body).Expr.(*syntax.Lambda)
	if !ok || len(lambda.Args) != 1 {
		t.Fatalf("h body = %T", program.Exprs.Get(module.Funcs[2].Body).Expr)
	}
}

func TestParseFormatter(t *testing.T) {
	program := parseOK(t, "module A where\n\nf x = \"value: {}\" % (x)\n")
	body := program.Exprs.Get(program.Modules[0].Funcs[0].Body).Expr
	formatter, ok := body.(*syntax.Formatter)
	if !ok {
		t.Fatalf("body = %T, want Formatter", body)
	}
	if formatter.Fmt != "value: {}" || len(formatter.Args) != 1 {
		t.Errorf("formatter = %+v", formatter)
	}
}

func TestParseRecordLiteralAndUpdate(t *testing.T) {
	program := parseOK(t, "module A where\n\nf p = { first = 1, second = 2 }\n\ng p = p { first = 3 }\n")
	module := program.Modules[0]
	init, ok := program.Exprs.Get(module.Funcs[0].Body).Expr.(*syntax.RecordInit)
	if !ok || len(init.Fields) != 2 {
		t.Fatalf("f body = %T", program.Exprs.Get(module.Funcs[0].Body).Expr)
	}
	update, ok := program.Exprs.Get(module.Funcs[1].Body).Expr.(*syntax.RecordUpdate)
	if !ok || len(update.Fields) != 1 {
		t.Fatalf("g body = %T", program.Exprs.Get(module.Funcs[1].Body).Expr)
	}
}

func TestParseSignatureWithConstraint(t *testing.T) {
	program := parseOK(t, "module A where\n\nf :: (Show2 a) => a -> a\nf x = x\n")
	module := program.Modules[0]
	if len(module.FuncSigs) != 1 {
		t.Fatalf("sigs = %d", len(module.FuncSigs))
	}
	sig := module.FuncSigs[0]
	if len(sig.Constraints) != 1 || sig.Constraints[0].ClassPath != "Show2" || sig.Constraints[0].Arg != "a" {
		t.Errorf("constraints = %+v", sig.Constraints)
	}
}

func TestParseErrorRecovery(t *testing.T) {
	_, errors := parse(t, "module A where\n\nf = )\n\ng = 1\n")
	if !errors.HasErrors() {
		t.Fatal("expected a parse error")
	}
	found := false
	for _, err := range errors.Errors() {
		if err.Kind == diag.ParseError {
			found = true
		}
	}
	if !found {
		t.Error("expected a ParseError kind")
	}
}
