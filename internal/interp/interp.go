package interp

import (
	"fmt"
	"io"

	"github.com/sunholo/skiff/internal/mir"
)

// Interp evaluates a lowered program.
type Interp struct {
	prog    *mir.Program
	out     io.Writer
	externs map[string]externFunc
}

// externFunc implements one extern prelude function. The expected result
// type lets constructors of prelude ADTs pick the right lowered typedef.
type externFunc func(i *Interp, args []Value, resultTy mir.Type) Value

// frame is one function activation.
type frame struct {
	args     []Value
	bindings map[mir.PatternID]Value
}

// New creates an interpreter over a lowered program, writing runtime
// output to out.
func New(prog *mir.Program, out io.Writer) *Interp {
	i := &Interp{prog: prog, out: out}
	i.externs = builtinExterns()
	return i
}

// Run evaluates the entry function.
func (i *Interp) Run() Value {
	return i.call(i.prog.Entry, nil)
}

func (i *Interp) call(id mir.FunctionID, args []Value) Value {
	function := i.prog.Functions.Get(id)
	switch info := function.Info.(type) {
	case *mir.ExternFunction:
		extern, ok := i.externs[info.Name]
		if !ok {
			panic(fmt.Sprintf("interp: extern %s.%s is not implemented", info.Module, info.Name))
		}
		_, result := mir.FuncArgs(function.Type)
		return extern(i, args, result)
	case *mir.NormalFunction:
		f := &frame{args: args, bindings: make(map[mir.PatternID]Value)}
		return i.eval(f, info.Body)
	}
	panic("interp: function without body")
}

// apply feeds one argument into a function value, calling through when
// the arity is reached.
func (i *Interp) apply(callee Value, arg Value) Value {
	closure, ok := callee.(*ClosureValue)
	if !ok {
		panic(fmt.Sprintf("interp: dynamic call of non-function value %T", callee))
	}
	applied := append(append([]Value{}, closure.Applied...), arg)
	if len(applied) == closure.Arity {
		return i.call(closure.Function, applied)
	}
	return &ClosureValue{Function: closure.Function, Arity: closure.Arity, Applied: applied}
}

func (i *Interp) eval(f *frame, id mir.ExprID) Value {
	switch expr := i.prog.Exprs.Get(id).Expr.(type) {
	case *mir.ArgRef:
		return f.args[expr.Index]
	case *mir.ExprValue:
		value, ok := f.bindings[expr.Pattern]
		if !ok {
			panic("interp: reference to unbound pattern")
		}
		return value
	case *mir.Bind:
		value := i.eval(f, expr.Rhs)
		if !i.match(f, expr.Pattern, value) {
			panic("interp: irrefutable binding did not match")
		}
		return &RecordValue{}
	case *mir.Do:
		var last Value = &RecordValue{}
		for _, item := range expr.Items {
			last = i.eval(f, item)
		}
		return last
	case *mir.StaticFunctionCall:
		args := make([]Value, len(expr.Args))
		for index, arg := range expr.Args {
			args[index] = i.eval(f, arg)
		}
		return i.call(expr.Function, args)
	case *mir.DynamicFunctionCall:
		callee := i.eval(f, expr.Callee)
		for _, arg := range expr.Args {
			callee = i.apply(callee, i.eval(f, arg))
		}
		return callee
	case *mir.PartialFunctionCall:
		partial := i.prog.PartialCalls.Get(expr.Call)
		function := i.prog.Functions.Get(partial.Function)
		args := make([]Value, len(expr.Args))
		for index, arg := range expr.Args {
			args[index] = i.eval(f, arg)
		}
		return &ClosureValue{
			Function: partial.Function,
			Arity:    function.ArgCount,
			Applied:  args,
		}
	case *mir.If:
		cond := i.eval(f, expr.Cond).(BoolValue)
		if cond.Value {
			return i.eval(f, expr.Then)
		}
		return i.eval(f, expr.Else)
	case *mir.CaseOf:
		scrutinee := i.eval(f, expr.Body)
		for _, arm := range expr.Cases {
			if i.match(f, arm.Pattern, scrutinee) {
				return i.eval(f, arm.Body)
			}
		}
		panic("interp: no case arm matched")
	case *mir.IntegerLiteral:
		return IntValue{Value: expr.Value}
	case *mir.FloatLiteral:
		return FloatValue{Value: expr.Value}
	case *mir.StringLiteral:
		return StringValue{Value: expr.Value}
	case *mir.CharLiteral:
		return CharValue{Value: expr.Value}
	case *mir.BoolLiteral:
		return BoolValue{Value: expr.Value}
	case *mir.List:
		items := make([]Value, len(expr.Items))
		for index, item := range expr.Items {
			items[index] = i.eval(f, item)
		}
		return &ListValue{Items: items}
	case *mir.RecordInitialization:
		fields := make([]Value, len(expr.Fields))
		for _, field := range expr.Fields {
			fields[field.Index] = i.eval(f, field.Expr)
		}
		return &RecordValue{TypeDef: expr.TypeDef, Fields: fields}
	case *mir.VariantConstruction:
		items := make([]Value, len(expr.Items))
		for _, item := range expr.Items {
			items[item.Index] = i.eval(f, item.Expr)
		}
		return &VariantValue{TypeDef: expr.TypeDef, Index: expr.Index, Items: items}
	case *mir.RecordUpdate:
		receiver := i.eval(f, expr.Receiver).(*RecordValue)
		fields := append([]Value{}, receiver.Fields...)
		for _, field := range expr.Fields {
			fields[field.Index] = i.eval(f, field.Expr)
		}
		return &RecordValue{TypeDef: receiver.TypeDef, Fields: fields}
	case *mir.FieldAccess:
		receiver := i.eval(f, expr.Receiver).(*RecordValue)
		return receiver.Fields[expr.Index]
	case *mir.Formatter:
		result := expr.Fmt
		for _, arg := range expr.Args {
			value := i.eval(f, arg).(StringValue)
			result = replaceFirstPlaceholder(result, value.Value)
		}
		return StringValue{Value: result}
	case *mir.Clone:
		return i.eval(f, expr.Inner)
	}
	panic(fmt.Sprintf("interp: unknown expression %T", i.prog.Exprs.Get(id).Expr))
}

func replaceFirstPlaceholder(format, value string) string {
	for index := 0; index+1 < len(format); index++ {
		if format[index] == '{' && format[index+1] == '}' {
			return format[:index] + value + format[index+2:]
		}
	}
	return format
}

func (i *Interp) match(f *frame, id mir.PatternID, value Value) bool {
	switch pattern := i.prog.Patterns.Get(id).Pattern.(type) {
	case *mir.BindingPattern:
		f.bindings[id] = value
		return true
	case *mir.WildcardPattern:
		return true
	case *mir.IntegerPattern:
		v, ok := value.(IntValue)
		return ok && v.Value == pattern.Value
	case *mir.CharPattern:
		v, ok := value.(CharValue)
		return ok && v.Value == pattern.Value
	case *mir.StringPattern:
		v, ok := value.(StringValue)
		return ok && v.Value == pattern.Value
	case *mir.RecordPattern:
		v, ok := value.(*RecordValue)
		if !ok || len(pattern.Items) != len(v.Fields) {
			return false
		}
		for index, item := range pattern.Items {
			if !i.match(f, item, v.Fields[index]) {
				return false
			}
		}
		return true
	case *mir.VariantPattern:
		v, ok := value.(*VariantValue)
		if !ok || v.Index != pattern.Index {
			return false
		}
		for index, item := range pattern.Items {
			if !i.match(f, item, v.Items[index]) {
				return false
			}
		}
		return true
	case *mir.GuardedPattern:
		if !i.match(f, pattern.Sub, value) {
			return false
		}
		guard := i.eval(f, pattern.Guard).(BoolValue)
		return guard.Value
	}
	panic("interp: unknown pattern")
}
