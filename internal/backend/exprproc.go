package backend

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/types"
)

// bodyMaps carries the ir-to-mir pattern and expression mappings of one
// body walk so expr-value references resolve to the lowered binding pattern.
type bodyMaps struct {
	patterns map[ir.PatternID]mir.PatternID
	exprs    map[ir.ExprID]mir.ExprID
}

func (b *Backend) processExpr(id ir.ExprID, unifier *types.Unifier) mir.ExprID {
	maps := &bodyMaps{
		patterns: make(map[ir.PatternID]mir.PatternID),
		exprs:    make(map[ir.ExprID]mir.ExprID),
	}
	return b.processExprInner(id, unifier, maps)
}

func (b *Backend) processExprInner(id ir.ExprID, unifier *types.Unifier, maps *bodyMaps) mir.ExprID {
	info := b.ir.Exprs.Get(id)
	loc := info.Location
	exprTy := unifier.Apply(b.ir.ExprType(id))
	mirTy := b.processType(exprTy)
	walk := func(child ir.ExprID) mir.ExprID {
		return b.processExprInner(child, unifier, maps)
	}
	walkAll := func(children []ir.ExprID) []mir.ExprID {
		out := make([]mir.ExprID, len(children))
		for i, child := range children {
			out[i] = walk(child)
		}
		return out
	}
	var mirExpr mir.Expr
	switch expr := info.Expr.(type) {
	case *ir.ExprArgRef:
		if expr.Ref.Captured {
			panic("backend: captured argument reference survived resolution")
		}
		mirExpr = &mir.ArgRef{Index: expr.Ref.Index}
	case *ir.ExprValue:
		mirPattern, ok := maps.patterns[expr.Pattern]
		if !ok {
			panic("backend: expr value before its binding pattern")
		}
		mirDef, ok := maps.exprs[expr.Expr]
		if !ok {
			panic("backend: expr value before its defining expression")
		}
		mirExpr = &mir.ExprValue{Expr: mirDef, Pattern: mirPattern}
	case *ir.Bind:
		rhs := walk(expr.Rhs)
		pattern := b.processPattern(expr.Pattern, unifier, maps)
		mirExpr = &mir.Bind{Pattern: pattern, Rhs: rhs}
	case *ir.Do:
		mirExpr = &mir.Do{Items: walkAll(expr.Items)}
	case *ir.IfExpr:
		mirExpr = &mir.If{Cond: walk(expr.Cond), Then: walk(expr.Then), Else: walk(expr.Else)}
	case *ir.IntegerLiteral:
		mirExpr = &mir.IntegerLiteral{Value: expr.Value}
	case *ir.FloatLiteral:
		mirExpr = &mir.FloatLiteral{Value: expr.Value}
	case *ir.StringLiteral:
		mirExpr = &mir.StringLiteral{Value: expr.Value}
	case *ir.CharLiteral:
		mirExpr = &mir.CharLiteral{Value: expr.Value}
	case *ir.BoolLiteral:
		mirExpr = &mir.BoolLiteral{Value: expr.Value}
	case *ir.ListExpr:
		mirExpr = &mir.List{Items: walkAll(expr.Items)}
	case *ir.Formatter:
		mirExpr = &mir.Formatter{Fmt: expr.Fmt, Args: walkAll(expr.Args)}
	case *ir.CaseOf:
		body := walk(expr.Body)
		cases := make([]mir.Case, len(expr.Cases))
		for i, arm := range expr.Cases {
			pattern := b.processPattern(arm.Pattern, unifier, maps)
			cases[i] = mir.Case{Pattern: pattern, Body: walk(arm.Body)}
		}
		mirExpr = &mir.CaseOf{Body: body, Cases: cases}
	case *ir.TupleExpr:
		items := walkAll(expr.Items)
		typedefID, ok := mir.TypedefIDOf(mirTy)
		if !ok {
			panic(fmt.Sprintf("backend: tuple type %s did not lower to a record", mirTy))
		}
		fields := make([]mir.RecordInitField, len(items))
		for i, item := range items {
			fields[i] = mir.RecordInitField{Expr: item, Index: i}
		}
		mirExpr = &mir.RecordInitialization{TypeDef: typedefID, Fields: fields}
	case *ir.RecordInit:
		typedefID, ok := mir.TypedefIDOf(mirTy)
		if !ok {
			panic(fmt.Sprintf("backend: record type %s did not lower to a record", mirTy))
		}
		fields := make([]mir.RecordInitField, len(expr.Fields))
		for i, field := range expr.Fields {
			fields[i] = mir.RecordInitField{Expr: walk(field.Expr), Index: field.Index}
		}
		mirExpr = &mir.RecordInitialization{TypeDef: typedefID, Fields: fields}
	case *ir.RecordUpdate:
		if len(expr.Candidates) != 1 {
			panic("backend: record update was not narrowed to one record")
		}
		receiver := walk(expr.Receiver)
		fields := make([]mir.RecordInitField, len(expr.Candidates[0].Items))
		for i, item := range expr.Candidates[0].Items {
			fields[i] = mir.RecordInitField{Expr: walk(item.Expr), Index: item.Index}
		}
		mirExpr = &mir.RecordUpdate{Receiver: receiver, Fields: fields}
	case *ir.FieldAccess:
		if len(expr.Infos) != 1 {
			panic("backend: field access was not narrowed to one record")
		}
		mirExpr = &mir.FieldAccess{Index: expr.Infos[0].Index, Receiver: walk(expr.Receiver)}
	case *ir.TupleFieldAccess:
		mirExpr = &mir.FieldAccess{Index: expr.Index, Receiver: walk(expr.Receiver)}
	case *ir.DynamicCall:
		mirExpr = &mir.DynamicFunctionCall{Callee: walk(expr.Callee), Args: walkAll(expr.Args)}
	case *ir.StaticCall:
		argTypes := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			argTypes[i] = unifier.Apply(b.ir.ExprType(arg))
		}
		callUnifier := b.getCallUnifier(argTypes,
			types.RemoveFixed(b.ir.FunctionType(expr.Function)), exprTy)
		mirID := b.queue.insert(b, queueItem{function: expr.Function, unifier: callUnifier})
		mirExpr = &mir.StaticFunctionCall{Function: mirID, Args: walkAll(expr.Args)}
	case *ir.ClassCall:
		argTypes := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			argTypes[i] = unifier.Apply(b.ir.ExprType(arg))
		}
		mirID := b.processClassMemberCall(expr.Member, argTypes, exprTy)
		mirExpr = &mir.StaticFunctionCall{Function: mirID, Args: walkAll(expr.Args)}
	default:
		panic(fmt.Sprintf("backend: unknown expression %T", info.Expr))
	}
	mirID := b.mir.AddExpr(mirExpr, loc, mirTy)
	maps.exprs[id] = mirID
	return mirID
}

func (b *Backend) processPattern(id ir.PatternID, unifier *types.Unifier, maps *bodyMaps) mir.PatternID {
	info := b.ir.Patterns.Get(id)
	patternTy := unifier.Apply(b.ir.PatternType(id))
	mirTy := b.processType(patternTy)
	var mirPattern mir.Pattern
	switch pattern := info.Pattern.(type) {
	case *ir.BindingPattern:
		mirPattern = &mir.BindingPattern{Name: pattern.Name}
	case *ir.WildcardPattern:
		mirPattern = &mir.WildcardPattern{}
	case *ir.IntegerPattern:
		mirPattern = &mir.IntegerPattern{Value: pattern.Value}
	case *ir.CharPattern:
		mirPattern = &mir.CharPattern{Value: pattern.Value}
	case *ir.StringPattern:
		mirPattern = &mir.StringPattern{Value: pattern.Value}
	case *ir.TuplePattern:
		typedefID, ok := mir.TypedefIDOf(mirTy)
		if !ok {
			panic("backend: tuple pattern type did not lower to a record")
		}
		items := make([]mir.PatternID, len(pattern.Items))
		for i, item := range pattern.Items {
			items[i] = b.processPattern(item, unifier, maps)
		}
		mirPattern = &mir.RecordPattern{TypeDef: typedefID, Items: items}
	case *ir.RecordPattern:
		typedefID := b.typedefs.addType(b, patternTy)
		items := make([]mir.PatternID, len(pattern.Fields))
		for i, field := range pattern.Fields {
			items[i] = b.processPattern(field, unifier, maps)
		}
		mirPattern = &mir.RecordPattern{TypeDef: typedefID, Items: items}
	case *ir.VariantPattern:
		typedefID := b.typedefs.addType(b, patternTy)
		items := make([]mir.PatternID, len(pattern.Items))
		for i, item := range pattern.Items {
			items[i] = b.processPattern(item, unifier, maps)
		}
		mirPattern = &mir.VariantPattern{TypeDef: typedefID, Index: pattern.Index, Items: items}
	case *ir.GuardedPattern:
		sub := b.processPattern(pattern.Sub, unifier, maps)
		guard := b.processExprInner(pattern.Guard, unifier, maps)
		mirPattern = &mir.GuardedPattern{Sub: sub, Guard: guard}
	case *ir.TypedPattern:
		return b.processPattern(pattern.Sub, unifier, maps)
	default:
		panic(fmt.Sprintf("backend: unknown pattern %T", info.Pattern))
	}
	mirID := b.mir.AddPattern(mirPattern, info.Location, mirTy)
	maps.patterns[id] = mirID
	return mirID
}
