package resolve

import (
	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
)

// resolvePattern resolves one pattern. Bindings are added to env as
// expr-value references to definingExpr (the bound right-hand side or the
// case scrutinee).
func (r *Resolver) resolvePattern(id syntax.PatternID, module *Module, env *Environment, helper *LambdaHelper, definingExpr ir.ExprID) ir.PatternID {
	seen := make(map[string]source.LocationID)
	return r.resolvePatternInner(id, module, env, helper, definingExpr, seen)
}

func (r *Resolver) resolvePatternInner(id syntax.PatternID, module *Module, env *Environment, helper *LambdaHelper, definingExpr ir.ExprID, seen map[string]source.LocationID) ir.PatternID {
	info := r.src.Patterns.Get(id)
	loc := info.Location
	switch pattern := info.Pattern.(type) {
	case *syntax.PWildcard:
		return r.prog.AddPattern(&ir.WildcardPattern{}, loc)
	case *syntax.PIntLit:
		return r.prog.AddPattern(&ir.IntegerPattern{Value: pattern.Value}, loc)
	case *syntax.PCharLit:
		return r.prog.AddPattern(&ir.CharPattern{Value: pattern.Value}, loc)
	case *syntax.PStringLit:
		return r.prog.AddPattern(&ir.StringPattern{Value: pattern.Value}, loc)
	case *syntax.PBinding:
		if first, dup := seen[pattern.Name]; dup {
			r.err(diag.ArgumentConflict, []source.LocationID{first, loc},
				"pattern variable %s is bound multiple times", pattern.Name)
		}
		seen[pattern.Name] = loc
		patternID := r.prog.AddPattern(&ir.BindingPattern{Name: pattern.Name}, loc)
		env.AddExprValue(pattern.Name, definingExpr, patternID)
		return patternID
	case *syntax.PTuple:
		items := make([]ir.PatternID, len(pattern.Items))
		for i, item := range pattern.Items {
			items[i] = r.resolvePatternInner(item, module, env, helper, definingExpr, seen)
		}
		return r.prog.AddPattern(&ir.TuplePattern{Items: items}, loc)
	case *syntax.PConstructor:
		items := make([]ir.PatternID, len(pattern.Items))
		for i, item := range pattern.Items {
			items[i] = r.resolvePatternInner(item, module, env, helper, definingExpr, seen)
		}
		_, item, result := r.resolvePath(pattern.Path, module, NewEnvironment(), helper)
		switch result {
		case pathItem:
			switch item.Kind {
			case ItemVariant:
				return r.prog.AddPattern(&ir.VariantPattern{
					TypeDef: item.TypeDef,
					Index:   item.VariantIndex,
					Items:   items,
				}, loc)
			case ItemRecord:
				return r.prog.AddPattern(&ir.RecordPattern{
					TypeDef: item.TypeDef,
					Fields:  items,
				}, loc)
			}
			r.err(diag.UnknownFunction, []source.LocationID{loc},
				"%s is not a constructor", pattern.Path)
		case pathAmbiguous:
			r.err(diag.AmbiguousName, []source.LocationID{loc}, "ambiguous name %s", pattern.Path)
		default:
			r.err(diag.UnknownFunction, []source.LocationID{loc}, "unknown constructor %s", pattern.Path)
		}
		return r.prog.AddPattern(&ir.WildcardPattern{}, loc)
	case *syntax.PGuarded:
		sub := r.resolvePatternInner(pattern.Sub, module, env, helper, definingExpr, seen)
		guard := r.resolveExpr(pattern.Guard, module, env, helper)
		return r.prog.AddPattern(&ir.GuardedPattern{Sub: sub, Guard: guard}, loc)
	case *syntax.PTyped:
		sub := r.resolvePatternInner(pattern.Sub, module, env, helper, definingExpr, seen)
		sigResolver := newTypeArgResolver(false, r.prog.Gen)
		r.collectTypeArgs(pattern.Signature, sigResolver)
		sig := r.resolveTypeSignature(pattern.Signature, module, sigResolver)
		return r.prog.AddPattern(&ir.TypedPattern{Sub: sub, Signature: sig}, loc)
	}
	panic("resolve: unknown surface pattern")
}

// isIrrefutable reports whether a resolved pattern always matches.
func (r *Resolver) isIrrefutable(id ir.PatternID) bool {
	switch pattern := r.prog.Patterns.Get(id).Pattern.(type) {
	case *ir.BindingPattern, *ir.WildcardPattern:
		return true
	case *ir.TuplePattern:
		for _, item := range pattern.Items {
			if !r.isIrrefutable(item) {
				return false
			}
		}
		return true
	case *ir.RecordPattern:
		for _, field := range pattern.Fields {
			if !r.isIrrefutable(field) {
				return false
			}
		}
		return true
	case *ir.TypedPattern:
		return r.isIrrefutable(pattern.Sub)
	default:
		return false
	}
}
