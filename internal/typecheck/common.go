// Package typecheck implements the constraint-based type checker: it
// assigns a type to every expression, pattern and function, discharges
// class constraints against the instance resolver, and registers the
// auto-derived instances planned by deriving lists.
package typecheck

import (
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// FunctionTypeInfo is the checker's working state for one function.
type FunctionTypeInfo struct {
	DisplayedName string
	Args          []types.Type
	Typed         bool
	Result        types.Type
	FunctionType  types.Type
	Body          ir.ExprID
	Location      source.LocationID
}

// Apply substitutes a unifier through the stored types, reporting whether
// anything changed.
func (info *FunctionTypeInfo) Apply(u *types.Unifier) bool {
	changed := false
	for i, arg := range info.Args {
		applied := u.Apply(arg)
		if !types.Equal(applied, arg) {
			info.Args[i] = applied
			changed = true
		}
	}
	applied := u.Apply(info.Result)
	if !types.Equal(applied, info.Result) {
		info.Result = applied
		changed = true
	}
	applied = u.Apply(info.FunctionType)
	if !types.Equal(applied, info.FunctionType) {
		info.FunctionType = applied
		changed = true
	}
	return changed
}

// generalFunctionType builds a fresh type a1 -> ... -> an -> b with all
// fresh variables, returning the argument types and the result.
func generalFunctionType(argCount int, gen *types.VarGen) (args []types.Type, result types.Type, full types.Type) {
	args = make([]types.Type, argCount)
	for i := range args {
		args[i] = gen.NewVar()
	}
	result = gen.NewVar()
	return args, result, types.MakeFunc(args, result)
}

// sigToType converts a resolved type signature into a type. When fixed is
// set, type arguments become rigid FixedArgs (polymorphic definitions);
// otherwise they become plain variables sharing their declared indices
// (data definitions and instance types).
func sigToType(prog *ir.Program, id ir.TypeSignatureID, fixed bool) types.Type {
	sig := prog.TypeSignatures.Get(id).Signature
	switch sig := sig.(type) {
	case *ir.SigWildcard:
		return prog.Gen.NewVar()
	case *ir.SigTypeArg:
		if fixed {
			return &types.FixedArg{Name: sig.Name, Index: sig.Index, Constraints: sig.Constraints}
		}
		return &types.Var{Index: sig.Index, Constraints: sig.Constraints}
	case *ir.SigTuple:
		items := make([]types.Type, len(sig.Items))
		for i, item := range sig.Items {
			items[i] = sigToType(prog, item, fixed)
		}
		return &types.Tuple{Items: items}
	case *ir.SigFunction:
		return &types.Func{
			From: sigToType(prog, sig.From, fixed),
			To:   sigToType(prog, sig.To, fixed),
		}
	case *ir.SigNamed:
		args := make([]types.Type, len(sig.Args))
		for i, arg := range sig.Args {
			args[i] = sigToType(prog, arg, fixed)
		}
		return &types.Named{Name: sig.Name, ID: sig.ID, Args: args}
	}
	panic("typecheck: unknown type signature")
}

// fixVars converts every variable in t into a rigid FixedArg with the same
// index and constraints, keeping inferred member types polymorphic.
func fixVars(t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Var:
		return &types.FixedArg{Name: "", Index: t.Index, Constraints: t.Constraints}
	case *types.FixedArg:
		return t
	case *types.Named:
		args := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = fixVars(a)
		}
		return &types.Named{Name: t.Name, ID: t.ID, Args: args}
	case *types.Tuple:
		items := make([]types.Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = fixVars(item)
		}
		return &types.Tuple{Items: items}
	case *types.Func:
		return &types.Func{From: fixVars(t.From), To: fixVars(t.To)}
	}
	panic("typecheck: unknown type")
}
