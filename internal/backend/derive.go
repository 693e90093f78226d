package backend

import (
	"fmt"
	"strings"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// generateDerivedMember emits the body of one auto-derived class member
// for a concrete type. Derivable classes are closed; anything else here
// is a planner bug.
func (b *Backend) generateDerivedMember(item queueItem, out mir.FunctionID) {
	class := b.ir.Classes.Get(item.class)
	switch class.Name {
	case "Show":
		b.genDerivedShow(item, out)
	case "PartialEq":
		b.genDerivedEq(item, out)
	case "PartialOrd":
		b.genDerivedPartialCmp(item, out)
	case "Ord":
		b.genDerivedCmp(item, out)
	default:
		panic(fmt.Sprintf("backend: cannot derive class %s", class.FullName()))
	}
}

// specializedVariants returns the ADT definition and the concrete item
// types of every variant under the derive type.
func (b *Backend) specializedVariants(ty types.Type) (*ir.Adt, [][]types.Type, bool) {
	named, ok := ty.(*types.Named)
	if !ok {
		return nil, nil, false
	}
	adt, ok := b.ir.TypeDefs.Get(named.ID).(*ir.Adt)
	if !ok {
		return nil, nil, false
	}
	info := b.ir.AdtTypeInfoMap[named.ID].Duplicate(b.ir.Gen)
	u := b.ir.Unifier()
	if err := u.Unify(info.AdtType, ty); err != nil {
		panic(fmt.Sprintf("backend: cannot specialise %s for derivation: %v", ty, err))
	}
	variants := make([][]types.Type, len(info.VariantTypes))
	for i, variant := range info.VariantTypes {
		items := make([]types.Type, len(variant.ItemTypes))
		for j, itemTy := range variant.ItemTypes {
			items[j] = u.Apply(itemTy.Ty)
		}
		variants[i] = items
	}
	return adt, variants, true
}

// specializedFields returns the record definition and the concrete field
// types under the derive type.
func (b *Backend) specializedFields(ty types.Type) (*ir.Record, []types.Type) {
	named := ty.(*types.Named)
	record := b.ir.TypeDefs.Get(named.ID).(*ir.Record)
	info := b.ir.RecordTypeInfoMap[named.ID].Duplicate(b.ir.Gen)
	u := b.ir.Unifier()
	if err := u.Unify(info.RecordType, ty); err != nil {
		panic(fmt.Sprintf("backend: cannot specialise %s for derivation: %v", ty, err))
	}
	fields := make([]types.Type, len(info.FieldTypes))
	for i, field := range info.FieldTypes {
		fields[i] = u.Apply(field.Ty)
	}
	return record, fields
}

func (b *Backend) deriveLocation(ty types.Type) source.LocationID {
	if named, ok := ty.(*types.Named); ok {
		return b.ir.TypeDefs.Get(named.ID).DefLocation()
	}
	return source.NoLocation
}

// bindItems creates binding patterns v0..vk for a variant's items and a
// matching variant pattern over the scrutinee type.
func (b *Backend) bindItems(typedefID mir.TypeDefID, variantIndex int, itemTys []mir.Type, scrutineeTy mir.Type, loc source.LocationID) (mir.PatternID, []mir.PatternID) {
	items := make([]mir.PatternID, len(itemTys))
	for i, itemTy := range itemTys {
		items[i] = b.mir.AddPattern(&mir.BindingPattern{Name: fmt.Sprintf("v%d", i)}, loc, itemTy)
	}
	pattern := b.mir.AddPattern(&mir.VariantPattern{
		TypeDef: typedefID,
		Index:   variantIndex,
		Items:   items,
	}, loc, scrutineeTy)
	return pattern, items
}

func (b *Backend) genDerivedShow(item queueItem, out mir.FunctionID) {
	ty := item.deriveTy
	loc := b.deriveLocation(ty)
	strIr := b.ir.StringType()
	strMir := b.processType(strIr)
	argMir := b.processType(ty)
	typedefID, _ := mir.TypedefIDOf(argMir)

	showCall := func(value mir.ExprID, itemTy types.Type) mir.ExprID {
		fnID := b.processClassMemberCall(item.member, []types.Type{itemTy}, strIr)
		return b.mir.AddExpr(&mir.StaticFunctionCall{Function: fnID, Args: []mir.ExprID{value}}, loc, strMir)
	}

	var body mir.ExprID
	if adt, variants, ok := b.specializedVariants(ty); ok {
		scrutinee := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
		cases := make([]mir.Case, len(variants))
		for index, itemTys := range variants {
			name := adt.Variants[index].Name
			itemMirTys := make([]mir.Type, len(itemTys))
			for i, itemTy := range itemTys {
				itemMirTys[i] = b.processType(itemTy)
			}
			pattern, bindings := b.bindItems(typedefID, index, itemMirTys, argMir, loc)
			var armBody mir.ExprID
			if len(itemTys) == 0 {
				armBody = b.mir.AddExpr(&mir.StringLiteral{Value: name}, loc, strMir)
			} else {
				args := make([]mir.ExprID, len(itemTys))
				for i, itemTy := range itemTys {
					value := b.mir.AddExpr(&mir.ExprValue{Expr: scrutinee, Pattern: bindings[i]}, loc, itemMirTys[i])
					args[i] = showCall(value, itemTy)
				}
				armBody = b.mir.AddExpr(&mir.Formatter{
					Fmt:  name + strings.Repeat(" {}", len(itemTys)),
					Args: args,
				}, loc, strMir)
			}
			cases[index] = mir.Case{Pattern: pattern, Body: armBody}
		}
		body = b.mir.AddExpr(&mir.CaseOf{Body: scrutinee, Cases: cases}, loc, strMir)
	} else {
		record, fieldTys := b.specializedFields(ty)
		args := make([]mir.ExprID, len(fieldTys))
		var parts []string
		for i, fieldTy := range fieldTys {
			receiver := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
			access := b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: receiver}, loc, b.processType(fieldTy))
			args[i] = showCall(access, fieldTy)
			parts = append(parts, fmt.Sprintf("%s = {}", record.Fields[i].Name))
		}
		format := record.Name + " { " + strings.Join(parts, ", ") + " }"
		body = b.mir.AddExpr(&mir.Formatter{Fmt: format, Args: args}, loc, strMir)
	}
	b.mir.Functions.Set(out, &mir.LoweredFunction{
		Name:     fmt.Sprintf("show/%s", argMir),
		Type:     &mir.Function{From: argMir, To: strMir},
		ArgCount: 1,
		Info:     &mir.NormalFunction{Body: body},
	})
}

func (b *Backend) genDerivedEq(item queueItem, out mir.FunctionID) {
	ty := item.deriveTy
	loc := b.deriveLocation(ty)
	boolIr := b.ir.BoolType()
	boolMir := b.processType(boolIr)
	argMir := b.processType(ty)
	typedefID, _ := mir.TypedefIDOf(argMir)

	boolLit := func(value bool) mir.ExprID {
		return b.mir.AddExpr(&mir.BoolLiteral{Value: value}, loc, boolMir)
	}
	eqCall := func(left, right mir.ExprID, itemTy types.Type) mir.ExprID {
		fnID := b.processClassMemberCall(item.member, []types.Type{itemTy, itemTy}, boolIr)
		return b.mir.AddExpr(&mir.StaticFunctionCall{Function: fnID, Args: []mir.ExprID{left, right}}, loc, boolMir)
	}
	// chain builds eq l1 r1 && eq l2 r2 && ... as nested conditionals.
	chain := func(lefts, rights []mir.ExprID, itemTys []types.Type) mir.ExprID {
		result := boolLit(true)
		for i := len(itemTys) - 1; i >= 0; i-- {
			result = b.mir.AddExpr(&mir.If{
				Cond: eqCall(lefts[i], rights[i], itemTys[i]),
				Then: result,
				Else: boolLit(false),
			}, loc, boolMir)
		}
		return result
	}

	var body mir.ExprID
	if _, variants, ok := b.specializedVariants(ty); ok {
		left := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
		right := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
		outerCases := make([]mir.Case, len(variants))
		for index, itemTys := range variants {
			itemMirTys := make([]mir.Type, len(itemTys))
			for i, itemTy := range itemTys {
				itemMirTys[i] = b.processType(itemTy)
			}
			leftPattern, leftBindings := b.bindItems(typedefID, index, itemMirTys, argMir, loc)
			rightPattern, rightBindings := b.bindItems(typedefID, index, itemMirTys, argMir, loc)
			lefts := make([]mir.ExprID, len(itemTys))
			rights := make([]mir.ExprID, len(itemTys))
			for i := range itemTys {
				lefts[i] = b.mir.AddExpr(&mir.ExprValue{Expr: left, Pattern: leftBindings[i]}, loc, itemMirTys[i])
				rights[i] = b.mir.AddExpr(&mir.ExprValue{Expr: right, Pattern: rightBindings[i]}, loc, itemMirTys[i])
			}
			innerCases := []mir.Case{{Pattern: rightPattern, Body: chain(lefts, rights, itemTys)}}
			if len(variants) > 1 {
				wildcard := b.mir.AddPattern(&mir.WildcardPattern{}, loc, argMir)
				innerCases = append(innerCases, mir.Case{Pattern: wildcard, Body: boolLit(false)})
			}
			inner := b.mir.AddExpr(&mir.CaseOf{Body: right, Cases: innerCases}, loc, boolMir)
			outerCases[index] = mir.Case{Pattern: leftPattern, Body: inner}
		}
		body = b.mir.AddExpr(&mir.CaseOf{Body: left, Cases: outerCases}, loc, boolMir)
	} else {
		_, fieldTys := b.specializedFields(ty)
		lefts := make([]mir.ExprID, len(fieldTys))
		rights := make([]mir.ExprID, len(fieldTys))
		for i, fieldTy := range fieldTys {
			leftRecv := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
			rightRecv := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
			fieldMir := b.processType(fieldTy)
			lefts[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: leftRecv}, loc, fieldMir)
			rights[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: rightRecv}, loc, fieldMir)
		}
		body = chain(lefts, rights, fieldTys)
	}
	b.mir.Functions.Set(out, &mir.LoweredFunction{
		Name:     fmt.Sprintf("opEq/%s", argMir),
		Type:     &mir.Function{From: argMir, To: &mir.Function{From: argMir, To: boolMir}},
		ArgCount: 2,
		Info:     &mir.NormalFunction{Body: body},
	})
}

// Ordering variant indices, fixed by the prelude declaration order.
const (
	orderingLess = iota
	orderingEqual
	orderingGreater
)

func (b *Backend) genDerivedCmp(item queueItem, out mir.FunctionID) {
	ty := item.deriveTy
	loc := b.deriveLocation(ty)
	ordIr := b.ir.OrderingType()
	ordMir := b.processType(ordIr)
	ordTypedefID, _ := mir.TypedefIDOf(ordMir)
	argMir := b.processType(ty)
	typedefID, _ := mir.TypedefIDOf(argMir)

	mkOrd := func(index int) mir.ExprID {
		return b.mir.AddExpr(&mir.VariantConstruction{TypeDef: ordTypedefID, Index: index}, loc, ordMir)
	}
	cmpCall := func(left, right mir.ExprID, itemTy types.Type) mir.ExprID {
		fnID := b.processClassMemberCall(item.member, []types.Type{itemTy, itemTy}, ordIr)
		return b.mir.AddExpr(&mir.StaticFunctionCall{Function: fnID, Args: []mir.ExprID{left, right}}, loc, ordMir)
	}
	// chain compares items left to right, stopping at the first non-equal
	// result.
	chain := func(lefts, rights []mir.ExprID, itemTys []types.Type) mir.ExprID {
		result := mkOrd(orderingEqual)
		for i := len(itemTys) - 1; i >= 0; i-- {
			call := cmpCall(lefts[i], rights[i], itemTys[i])
			equalPattern := b.mir.AddPattern(&mir.VariantPattern{TypeDef: ordTypedefID, Index: orderingEqual}, loc, ordMir)
			otherPattern := b.mir.AddPattern(&mir.BindingPattern{Name: "o"}, loc, ordMir)
			otherValue := b.mir.AddExpr(&mir.ExprValue{Expr: call, Pattern: otherPattern}, loc, ordMir)
			result = b.mir.AddExpr(&mir.CaseOf{Body: call, Cases: []mir.Case{
				{Pattern: equalPattern, Body: result},
				{Pattern: otherPattern, Body: otherValue},
			}}, loc, ordMir)
		}
		return result
	}

	var body mir.ExprID
	if _, variants, ok := b.specializedVariants(ty); ok {
		left := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
		right := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
		outerCases := make([]mir.Case, len(variants))
		for leftIndex, itemTys := range variants {
			itemMirTys := make([]mir.Type, len(itemTys))
			for i, itemTy := range itemTys {
				itemMirTys[i] = b.processType(itemTy)
			}
			leftPattern, leftBindings := b.bindItems(typedefID, leftIndex, itemMirTys, argMir, loc)
			innerCases := make([]mir.Case, len(variants))
			for rightIndex, rightItemTys := range variants {
				rightMirTys := make([]mir.Type, len(rightItemTys))
				for i, itemTy := range rightItemTys {
					rightMirTys[i] = b.processType(itemTy)
				}
				rightPattern, rightBindings := b.bindItems(typedefID, rightIndex, rightMirTys, argMir, loc)
				var armBody mir.ExprID
				switch {
				case rightIndex < leftIndex:
					armBody = mkOrd(orderingGreater)
				case rightIndex > leftIndex:
					armBody = mkOrd(orderingLess)
				default:
					lefts := make([]mir.ExprID, len(itemTys))
					rights := make([]mir.ExprID, len(itemTys))
					for i := range itemTys {
						lefts[i] = b.mir.AddExpr(&mir.ExprValue{Expr: left, Pattern: leftBindings[i]}, loc, itemMirTys[i])
						rights[i] = b.mir.AddExpr(&mir.ExprValue{Expr: right, Pattern: rightBindings[i]}, loc, itemMirTys[i])
					}
					armBody = chain(lefts, rights, itemTys)
				}
				innerCases[rightIndex] = mir.Case{Pattern: rightPattern, Body: armBody}
			}
			inner := b.mir.AddExpr(&mir.CaseOf{Body: right, Cases: innerCases}, loc, ordMir)
			outerCases[leftIndex] = mir.Case{Pattern: leftPattern, Body: inner}
		}
		body = b.mir.AddExpr(&mir.CaseOf{Body: left, Cases: outerCases}, loc, ordMir)
	} else {
		_, fieldTys := b.specializedFields(ty)
		lefts := make([]mir.ExprID, len(fieldTys))
		rights := make([]mir.ExprID, len(fieldTys))
		for i, fieldTy := range fieldTys {
			leftRecv := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
			rightRecv := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
			fieldMir := b.processType(fieldTy)
			lefts[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: leftRecv}, loc, fieldMir)
			rights[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: rightRecv}, loc, fieldMir)
		}
		body = chain(lefts, rights, fieldTys)
	}
	b.mir.Functions.Set(out, &mir.LoweredFunction{
		Name:     fmt.Sprintf("cmp/%s", argMir),
		Type:     &mir.Function{From: argMir, To: &mir.Function{From: argMir, To: ordMir}},
		ArgCount: 2,
		Info:     &mir.NormalFunction{Body: body},
	})
}

// Option variant indices, fixed by the prelude declaration order.
const (
	optionSome = iota
	optionNone
)

func (b *Backend) genDerivedPartialCmp(item queueItem, out mir.FunctionID) {
	ty := item.deriveTy
	loc := b.deriveLocation(ty)
	ordIr := b.ir.OrderingType()
	optID, ok := b.ir.NamedType("Option", "Option")
	if !ok {
		panic("backend: builtin type Option.Option is not registered")
	}
	optOrdIr := &types.Named{Name: "Option", ID: optID, Args: []types.Type{ordIr}}
	ordMir := b.processType(ordIr)
	optOrdMir := b.processType(optOrdIr)
	ordTypedefID, _ := mir.TypedefIDOf(ordMir)
	optTypedefID, _ := mir.TypedefIDOf(optOrdMir)
	argMir := b.processType(ty)
	typedefID, _ := mir.TypedefIDOf(argMir)

	mkSomeOrd := func(index int) mir.ExprID {
		ord := b.mir.AddExpr(&mir.VariantConstruction{TypeDef: ordTypedefID, Index: index}, loc, ordMir)
		return b.mir.AddExpr(&mir.VariantConstruction{
			TypeDef: optTypedefID,
			Index:   optionSome,
			Items:   []mir.RecordInitField{{Expr: ord, Index: 0}},
		}, loc, optOrdMir)
	}
	pcmpCall := func(left, right mir.ExprID, itemTy types.Type) mir.ExprID {
		fnID := b.processClassMemberCall(item.member, []types.Type{itemTy, itemTy}, optOrdIr)
		return b.mir.AddExpr(&mir.StaticFunctionCall{Function: fnID, Args: []mir.ExprID{left, right}}, loc, optOrdMir)
	}
	chain := func(lefts, rights []mir.ExprID, itemTys []types.Type) mir.ExprID {
		result := mkSomeOrd(orderingEqual)
		for i := len(itemTys) - 1; i >= 0; i-- {
			call := pcmpCall(lefts[i], rights[i], itemTys[i])
			equalInner := b.mir.AddPattern(&mir.VariantPattern{TypeDef: ordTypedefID, Index: orderingEqual}, loc, ordMir)
			someEqual := b.mir.AddPattern(&mir.VariantPattern{
				TypeDef: optTypedefID,
				Index:   optionSome,
				Items:   []mir.PatternID{equalInner},
			}, loc, optOrdMir)
			otherPattern := b.mir.AddPattern(&mir.BindingPattern{Name: "o"}, loc, optOrdMir)
			otherValue := b.mir.AddExpr(&mir.ExprValue{Expr: call, Pattern: otherPattern}, loc, optOrdMir)
			result = b.mir.AddExpr(&mir.CaseOf{Body: call, Cases: []mir.Case{
				{Pattern: someEqual, Body: result},
				{Pattern: otherPattern, Body: otherValue},
			}}, loc, optOrdMir)
		}
		return result
	}

	var body mir.ExprID
	if _, variants, ok := b.specializedVariants(ty); ok {
		left := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
		right := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
		outerCases := make([]mir.Case, len(variants))
		for leftIndex, itemTys := range variants {
			itemMirTys := make([]mir.Type, len(itemTys))
			for i, itemTy := range itemTys {
				itemMirTys[i] = b.processType(itemTy)
			}
			leftPattern, leftBindings := b.bindItems(typedefID, leftIndex, itemMirTys, argMir, loc)
			innerCases := make([]mir.Case, len(variants))
			for rightIndex, rightItemTys := range variants {
				rightMirTys := make([]mir.Type, len(rightItemTys))
				for i, itemTy := range rightItemTys {
					rightMirTys[i] = b.processType(itemTy)
				}
				rightPattern, rightBindings := b.bindItems(typedefID, rightIndex, rightMirTys, argMir, loc)
				var armBody mir.ExprID
				switch {
				case rightIndex < leftIndex:
					armBody = mkSomeOrd(orderingGreater)
				case rightIndex > leftIndex:
					armBody = mkSomeOrd(orderingLess)
				default:
					lefts := make([]mir.ExprID, len(itemTys))
					rights := make([]mir.ExprID, len(itemTys))
					for i := range itemTys {
						lefts[i] = b.mir.AddExpr(&mir.ExprValue{Expr: left, Pattern: leftBindings[i]}, loc, itemMirTys[i])
						rights[i] = b.mir.AddExpr(&mir.ExprValue{Expr: right, Pattern: rightBindings[i]}, loc, itemMirTys[i])
					}
					armBody = chain(lefts, rights, itemTys)
				}
				innerCases[rightIndex] = mir.Case{Pattern: rightPattern, Body: armBody}
			}
			inner := b.mir.AddExpr(&mir.CaseOf{Body: right, Cases: innerCases}, loc, optOrdMir)
			outerCases[leftIndex] = mir.Case{Pattern: leftPattern, Body: inner}
		}
		body = b.mir.AddExpr(&mir.CaseOf{Body: left, Cases: outerCases}, loc, optOrdMir)
	} else {
		_, fieldTys := b.specializedFields(ty)
		lefts := make([]mir.ExprID, len(fieldTys))
		rights := make([]mir.ExprID, len(fieldTys))
		for i, fieldTy := range fieldTys {
			leftRecv := b.mir.AddExpr(&mir.ArgRef{Index: 0}, loc, argMir)
			rightRecv := b.mir.AddExpr(&mir.ArgRef{Index: 1}, loc, argMir)
			fieldMir := b.processType(fieldTy)
			lefts[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: leftRecv}, loc, fieldMir)
			rights[i] = b.mir.AddExpr(&mir.FieldAccess{Index: i, Receiver: rightRecv}, loc, fieldMir)
		}
		body = chain(lefts, rights, fieldTys)
	}
	b.mir.Functions.Set(out, &mir.LoweredFunction{
		Name:     fmt.Sprintf("partialCmp/%s", argMir),
		Type:     &mir.Function{From: argMir, To: &mir.Function{From: argMir, To: optOrdMir}},
		ArgCount: 2,
		Info:     &mir.NormalFunction{Body: body},
	})
}
