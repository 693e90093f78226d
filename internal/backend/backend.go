package backend

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/types"
)

// Backend is one lowering run.
type Backend struct {
	ir       *ir.Program
	mir      *mir.Program
	queue    *functionQueue
	typedefs *typeDefStore
}

// Compile lowers a fully typed program, starting from Main.main, and runs
// the post-lowering passes over the result.
func Compile(prog *ir.Program) *mir.Program {
	b := &Backend{
		ir:       prog,
		mir:      mir.NewProgram(),
		queue:    newFunctionQueue(),
		typedefs: newTypeDefStore(),
	}
	rewriteFormatters(prog)
	mainID, ok := prog.Main()
	if !ok {
		panic("backend: Main.main does not exist")
	}
	b.mir.Entry = b.queue.insert(b, queueItem{function: mainID, unifier: prog.Unifier()})
	b.queue.drain(b)
	checkRecursiveDataTypes(b.mir)
	processStaticCalls(b.mir)
	insertClones(b.mir)
	return b.mir
}

// processType lowers a concrete type.
func (b *Backend) processType(ty types.Type) mir.Type {
	switch ty := ty.(type) {
	case *types.Var, *types.FixedArg:
		panic(fmt.Sprintf("backend: type %s is not concrete", ty))
	case *types.Func:
		return &mir.Function{From: b.processType(ty.From), To: b.processType(ty.To)}
	case *types.Named:
		id := b.typedefs.addType(b, ty)
		return &mir.Named{Name: fmt.Sprintf("%s/%d", ty.Name, int(id)), ID: id}
	case *types.Tuple:
		items := make([]mir.Type, len(ty.Items))
		for i, item := range ty.Items {
			items[i] = b.processType(item)
		}
		name, id := b.typedefs.addTuple(b, ty, items)
		return &mir.Named{Name: name, ID: id}
	}
	panic(fmt.Sprintf("backend: unknown type %T", ty))
}

// getCallUnifier computes the specialisation of a callee from the
// concrete argument types and the expected result type: unify argument by
// argument, peeling one arrow each time, then unify the remaining result.
func (b *Backend) getCallUnifier(argTypes []types.Type, funcTy types.Type, expectedResult types.Type) *types.Unifier {
	for _, arg := range argTypes {
		if !types.IsConcrete(arg) {
			panic(fmt.Sprintf("backend: call argument type %s is not concrete", arg))
		}
	}
	u := b.ir.Unifier()
	current := funcTy
	for _, arg := range argTypes {
		args, _ := types.FuncArgs(current)
		if len(args) == 0 {
			panic(fmt.Sprintf("backend: call with too many arguments for %s", funcTy))
		}
		if err := u.Unify(arg, args[0]); err != nil {
			panic(fmt.Sprintf("backend: call unification failed: %s vs %s", arg, args[0]))
		}
		current = types.ResultType(u.Apply(current), 1)
	}
	if err := u.Unify(current, expectedResult); err != nil {
		panic(fmt.Sprintf("backend: result unification failed: %s vs %s", current, expectedResult))
	}
	return u
}

// processFunction lowers one function under a call specialisation.
func (b *Backend) processFunction(id ir.FunctionID, out mir.FunctionID, unifier *types.Unifier) {
	fnType := unifier.Apply(types.RemoveFixed(b.ir.FunctionType(id)))
	mirType := b.processType(fnType)
	fn := b.ir.Functions.Get(id)
	switch info := fn.Info.(type) {
	case *ir.NamedFunctionInfo:
		lowered := &mir.LoweredFunction{
			Name:     info.String(),
			Type:     mirType,
			ArgCount: fn.ArgCount(),
		}
		if info.Body != ir.NoExpr {
			lowered.Info = &mir.NormalFunction{Body: b.processExpr(info.Body, unifier)}
		} else {
			lowered.Info = &mir.ExternFunction{Module: info.Module, Name: info.Name}
		}
		b.mir.Functions.Set(out, lowered)
	case *ir.LambdaInfo:
		b.mir.Functions.Set(out, &mir.LoweredFunction{
			Name:     info.String(),
			Type:     mirType,
			ArgCount: fn.ArgCount(),
			Info:     &mir.NormalFunction{Body: b.processExpr(info.Body, unifier)},
		})
	case *ir.RecordCtorInfo:
		b.mir.Functions.Set(out, b.recordCtorFunction(info, fn, fnType, mirType, unifier))
	case *ir.VariantCtorInfo:
		b.mir.Functions.Set(out, b.variantCtorFunction(info, fn, fnType, mirType, unifier))
	}
}

// recordCtorFunction synthesises the body of a record constructor: a
// record initialisation from the argument references.
func (b *Backend) recordCtorFunction(info *ir.RecordCtorInfo, fn *ir.Function, fnType types.Type, mirType mir.Type, unifier *types.Unifier) *mir.LoweredFunction {
	args, result := types.FuncArgs(fnType)
	resultTy := b.processType(result)
	typedefID, ok := mir.TypedefIDOf(resultTy)
	if !ok {
		panic("backend: record constructor with non-record result")
	}
	fields := make([]mir.RecordInitField, len(args))
	for index, arg := range args {
		argExpr := b.mir.AddExpr(&mir.ArgRef{Index: index}, b.ir.TypeDefs.Get(info.TypeDef).DefLocation(), b.processType(arg))
		fields[index] = mir.RecordInitField{Expr: argExpr, Index: index}
	}
	loc := b.ir.TypeDefs.Get(info.TypeDef).DefLocation()
	body := b.mir.AddExpr(&mir.RecordInitialization{TypeDef: typedefID, Fields: fields}, loc, resultTy)
	record := b.ir.TypeDefs.Get(info.TypeDef).(*ir.Record)
	return &mir.LoweredFunction{
		Name:     fmt.Sprintf("%s/%s", record.Module, record.Name),
		Type:     mirType,
		ArgCount: len(args),
		Info:     &mir.NormalFunction{Body: body},
	}
}

// variantCtorFunction synthesises a variant constructor body from the
// argument references.
func (b *Backend) variantCtorFunction(info *ir.VariantCtorInfo, fn *ir.Function, fnType types.Type, mirType mir.Type, unifier *types.Unifier) *mir.LoweredFunction {
	args, result := types.FuncArgs(fnType)
	resultTy := b.processType(result)
	typedefID, ok := mir.TypedefIDOf(resultTy)
	if !ok {
		panic("backend: variant constructor with non-adt result")
	}
	adt := b.ir.TypeDefs.Get(info.TypeDef).(*ir.Adt)
	loc := adt.Variants[info.Index].Location
	fields := make([]mir.RecordInitField, len(args))
	for index, arg := range args {
		argExpr := b.mir.AddExpr(&mir.ArgRef{Index: index}, loc, b.processType(arg))
		fields[index] = mir.RecordInitField{Expr: argExpr, Index: index}
	}
	body := b.mir.AddExpr(&mir.VariantConstruction{
		TypeDef: typedefID,
		Index:   info.Index,
		Items:   fields,
	}, loc, resultTy)
	return &mir.LoweredFunction{
		Name:     fmt.Sprintf("%s/%s.%s", adt.Module, adt.Name, adt.Variants[info.Index].Name),
		Type:     mirType,
		ArgCount: len(args),
		Info:     &mir.NormalFunction{Body: body},
	}
}
