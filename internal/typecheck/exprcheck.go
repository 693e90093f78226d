package typecheck

import (
	"strings"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// groupChecker infers the types of one dependency group of function
// bodies. The walk runs to a fixpoint (at most ten passes) with error
// reporting suppressed, then once more reporting everything that is still
// wrong.
type groupChecker struct {
	c        *Checker
	group    map[ir.FunctionID]bool
	exprs    []ir.ExprID
	patterns []ir.PatternID
	owner    map[ir.ExprID]ir.FunctionID
	report   bool
}

func (c *Checker) checkGroup(items []ir.FunctionID) {
	gc := &groupChecker{
		c:     c,
		group: make(map[ir.FunctionID]bool),
		owner: make(map[ir.ExprID]ir.FunctionID),
	}
	for _, id := range items {
		gc.group[id] = true
	}
	for _, id := range items {
		gc.allocate(id)
	}
	last := ""
	for iter := 0; iter < 10; iter++ {
		for _, id := range items {
			gc.checkBody(id)
		}
		snapshot := gc.snapshot()
		if snapshot == last {
			break
		}
		last = snapshot
	}
	gc.report = true
	for _, id := range items {
		gc.checkBody(id)
	}
	gc.checkAnnotationNeeded(items)
}

// allocate assigns a fresh type variable to every expression and pattern
// of a body.
type allocVisitor struct {
	gc *groupChecker
	fn ir.FunctionID
}

func (v *allocVisitor) VisitExpr(id ir.ExprID, expr ir.Expr) {
	if _, ok := v.gc.c.prog.ExprTypes[id]; !ok {
		v.gc.c.prog.ExprTypes[id] = v.gc.c.prog.Gen.NewVar()
		v.gc.exprs = append(v.gc.exprs, id)
		v.gc.owner[id] = v.fn
	}
}

func (v *allocVisitor) VisitPattern(id ir.PatternID, pattern ir.Pattern) {
	if _, ok := v.gc.c.prog.PatternTypes[id]; !ok {
		v.gc.c.prog.PatternTypes[id] = v.gc.c.prog.Gen.NewVar()
		v.gc.patterns = append(v.gc.patterns, id)
	}
}

func (gc *groupChecker) allocate(fn ir.FunctionID) {
	info := gc.c.infos[fn]
	ir.WalkExpr(gc.c.prog, info.Body, &allocVisitor{gc: gc, fn: fn})
}

func (gc *groupChecker) snapshot() string {
	var b strings.Builder
	for _, id := range gc.exprs {
		b.WriteString(types.Key(gc.c.prog.ExprTypes[id]))
		b.WriteByte('|')
	}
	for _, id := range gc.patterns {
		b.WriteString(types.Key(gc.c.prog.PatternTypes[id]))
		b.WriteByte('|')
	}
	return b.String()
}

func (gc *groupChecker) exprType(id ir.ExprID) types.Type {
	return gc.c.prog.ExprTypes[id]
}

func (gc *groupChecker) patternType(id ir.PatternID) types.Type {
	return gc.c.prog.PatternTypes[id]
}

// applyUnifier substitutes the unifier through all state touched by the
// group and discharges the class obligations it accumulated.
func (gc *groupChecker) applyUnifier(u *types.Unifier, loc source.LocationID) {
	prog := gc.c.prog
	for _, id := range gc.exprs {
		prog.ExprTypes[id] = u.Apply(prog.ExprTypes[id])
	}
	for _, id := range gc.patterns {
		prog.PatternTypes[id] = u.Apply(prog.PatternTypes[id])
	}
	for fn := range gc.group {
		gc.c.infos[fn].Apply(u)
	}
	for _, constraint := range u.Substitution().Constraints() {
		gc.checkConstraint(constraint.Class, u.Apply(constraint.Ty), loc)
	}
}

// checkConstraint discharges one class obligation.
func (gc *groupChecker) checkConstraint(class types.ClassID, ty types.Type, loc source.LocationID) {
	var pending []types.PendingUnifier
	ok := gc.c.prog.InstanceResolver.CheckInstance(class, ty, loc, &pending)
	for _, p := range pending {
		gc.applyUnifier(p.Unifier, p.Location)
	}
	if !ok && gc.report {
		classDecl := gc.c.prog.Classes.Get(class)
		gc.c.errAt(diag.MissingInstance, loc,
			"no instance of class %s for type %s", classDecl.FullName(), ty)
	}
}

// unifyWith merges two types into an ongoing unifier, reporting failures.
// Constructs that instantiate a typedef's type info must thread every
// related constraint through one unifier, or the instantiated variables
// would dangle once the unifier is applied.
func (gc *groupChecker) unifyWith(u *types.Unifier, t1, t2 types.Type, loc source.LocationID) bool {
	if err := u.Unify(t1, t2); err != nil {
		if gc.report {
			if err == types.ErrRecursive {
				gc.c.errAt(diag.RecursiveType, loc, "recursive type: %s and %s", u.Apply(t1), u.Apply(t2))
			} else {
				gc.c.errAt(diag.TypeMismatch, loc, "type mismatch: expected %s, found %s", u.Apply(t1), u.Apply(t2))
			}
		}
		return false
	}
	return true
}

// unify merges two types, applying the result to the group state. Returns
// false when unification failed.
func (gc *groupChecker) unify(t1, t2 types.Type, loc source.LocationID) bool {
	u := gc.c.prog.Unifier()
	if !gc.unifyWith(u, t1, t2, loc) {
		return false
	}
	gc.applyUnifier(u, loc)
	return true
}

func (gc *groupChecker) checkBody(fn ir.FunctionID) {
	info := gc.c.infos[fn]
	gc.checkExpr(info.Body)
	gc.unify(gc.exprType(info.Body), info.Result, gc.c.prog.ExprLocation(info.Body))
}

// functionTypeFor returns the type to unify a static call against: the
// shared working type for group members, a fresh instantiation otherwise.
func (gc *groupChecker) functionTypeFor(callee ir.FunctionID) types.Type {
	info, ok := gc.c.infos[callee]
	if !ok {
		panic("typecheck: call to function without type info")
	}
	if gc.group[callee] && !info.Typed {
		return info.FunctionType
	}
	argMap := make(map[int]int)
	return types.RemoveFixed(types.Duplicate(info.FunctionType, argMap, gc.c.prog.Gen))
}

func (gc *groupChecker) checkExpr(id ir.ExprID) {
	prog := gc.c.prog
	loc := prog.ExprLocation(id)
	whole := gc.exprType(id)
	switch expr := prog.Exprs.Get(id).Expr.(type) {
	case *ir.IntegerLiteral:
		gc.unify(whole, prog.IntType(), loc)
	case *ir.FloatLiteral:
		gc.unify(whole, prog.FloatType(), loc)
	case *ir.StringLiteral:
		gc.unify(whole, prog.StringType(), loc)
	case *ir.CharLiteral:
		gc.unify(whole, prog.CharType(), loc)
	case *ir.BoolLiteral:
		gc.unify(whole, prog.BoolType(), loc)
	case *ir.IfExpr:
		gc.checkExpr(expr.Cond)
		gc.checkExpr(expr.Then)
		gc.checkExpr(expr.Else)
		gc.unify(gc.exprType(expr.Cond), prog.BoolType(), prog.ExprLocation(expr.Cond))
		gc.unify(gc.exprType(expr.Then), gc.exprType(expr.Else), loc)
		gc.unify(whole, gc.exprType(expr.Then), loc)
	case *ir.TupleExpr:
		items := make([]types.Type, len(expr.Items))
		for i, item := range expr.Items {
			gc.checkExpr(item)
			items[i] = gc.exprType(item)
		}
		gc.unify(whole, &types.Tuple{Items: items}, loc)
	case *ir.ListExpr:
		elem := gc.c.prog.Gen.NewVar()
		for _, item := range expr.Items {
			gc.checkExpr(item)
		}
		u := prog.Unifier()
		gc.unifyWith(u, whole, prog.ListType(elem), loc)
		for _, item := range expr.Items {
			gc.unifyWith(u, gc.exprType(item), elem, prog.ExprLocation(item))
		}
		gc.applyUnifier(u, loc)
	case *ir.Do:
		var last ir.ExprID = ir.NoExpr
		for _, item := range expr.Items {
			gc.checkExpr(item)
			last = item
		}
		if last == ir.NoExpr {
			gc.unify(whole, &types.Tuple{}, loc)
		} else {
			gc.unify(whole, gc.exprType(last), loc)
		}
	case *ir.Bind:
		gc.checkExpr(expr.Rhs)
		gc.checkPattern(expr.Pattern)
		gc.unify(gc.patternType(expr.Pattern), gc.exprType(expr.Rhs), loc)
		gc.unify(whole, &types.Tuple{}, loc)
	case *ir.ExprValue:
		gc.unify(whole, gc.patternType(expr.Pattern), loc)
	case *ir.ExprArgRef:
		info, ok := gc.c.infos[expr.Ref.Function]
		if !ok {
			panic("typecheck: argument reference to unknown function")
		}
		gc.unify(whole, info.Args[expr.Ref.Index], loc)
	case *ir.StaticCall:
		argTypes := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			gc.checkExpr(arg)
			argTypes[i] = gc.exprType(arg)
		}
		calleeTy := gc.functionTypeFor(expr.Function)
		gc.unify(calleeTy, types.MakeFunc(argTypes, whole), loc)
	case *ir.DynamicCall:
		gc.checkExpr(expr.Callee)
		argTypes := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			gc.checkExpr(arg)
			argTypes[i] = gc.exprType(arg)
		}
		gc.unify(gc.exprType(expr.Callee), types.MakeFunc(argTypes, whole), loc)
	case *ir.ClassCall:
		argTypes := make([]types.Type, len(expr.Args))
		for i, arg := range expr.Args {
			gc.checkExpr(arg)
			argTypes[i] = gc.exprType(arg)
		}
		memberInfo := prog.ClassMemberTypes[expr.Member]
		argMap := make(map[int]int)
		memberTy := types.RemoveFixed(types.Duplicate(memberInfo.MemberType, argMap, prog.Gen))
		classArg := types.RemoveFixed(types.Duplicate(memberInfo.ClassArg, argMap, prog.Gen))
		u := prog.Unifier()
		if err := u.Unify(memberTy, types.MakeFunc(argTypes, whole)); err != nil {
			if gc.report {
				gc.c.errAt(diag.TypeMismatch, loc, "type mismatch: expected %s, found %s",
					u.Apply(memberTy), u.Apply(types.MakeFunc(argTypes, whole)))
			}
			return
		}
		selector := u.Apply(classArg)
		gc.applyUnifier(u, loc)
		member := prog.ClassMembers.Get(expr.Member)
		gc.checkConstraint(member.Class, selector, loc)
	case *ir.CaseOf:
		gc.checkExpr(expr.Body)
		for _, arm := range expr.Cases {
			gc.checkPattern(arm.Pattern)
			gc.unify(gc.patternType(arm.Pattern), gc.exprType(expr.Body), prog.PatternLocation(arm.Pattern))
			gc.checkExpr(arm.Body)
			gc.unify(gc.exprType(arm.Body), whole, prog.ExprLocation(arm.Body))
		}
	case *ir.Formatter:
		placeholders := strings.Count(expr.Fmt, "{}")
		if placeholders != len(expr.Args) && gc.report {
			gc.c.errAt(diag.InvalidFormatString, loc,
				"format string has %d placeholders but %d arguments", placeholders, len(expr.Args))
		}
		for _, arg := range expr.Args {
			gc.checkExpr(arg)
		}
		gc.unify(whole, prog.StringType(), loc)
		if showClass, ok := prog.ClassByName("Std.Ops.Show"); ok {
			for _, arg := range expr.Args {
				gc.checkConstraint(showClass, gc.exprType(arg), prog.ExprLocation(arg))
			}
		}
	case *ir.FieldAccess:
		gc.checkExpr(expr.Receiver)
		gc.checkFieldAccess(id, expr, whole, loc)
	case *ir.TupleFieldAccess:
		gc.checkExpr(expr.Receiver)
		receiver := gc.exprType(expr.Receiver)
		if tuple, ok := receiver.(*types.Tuple); ok {
			if expr.Index < len(tuple.Items) {
				gc.unify(whole, tuple.Items[expr.Index], loc)
			} else if gc.report {
				gc.c.errAt(diag.TypeMismatch, loc,
					"tuple %s has no item %d", receiver, expr.Index)
			}
		} else if gc.report {
			gc.c.errAt(diag.TypeMismatch, loc,
				"tuple field access on non-tuple type %s", receiver)
		}
	case *ir.RecordInit:
		info := prog.RecordTypeInfoMap[expr.TypeDef].Duplicate(prog.Gen)
		for _, field := range expr.Fields {
			gc.checkExpr(field.Expr)
		}
		u := prog.Unifier()
		gc.unifyWith(u, whole, info.RecordType, loc)
		for _, field := range expr.Fields {
			gc.unifyWith(u, gc.exprType(field.Expr), info.FieldTypes[field.Index].Ty, prog.ExprLocation(field.Expr))
		}
		gc.applyUnifier(u, loc)
	case *ir.RecordUpdate:
		gc.checkExpr(expr.Receiver)
		// Candidates share the same field expressions; check them once.
		if len(expr.Candidates) > 0 {
			for _, item := range expr.Candidates[0].Items {
				gc.checkExpr(item.Expr)
			}
		}
		gc.checkRecordUpdate(id, expr, whole, loc)
	default:
		panic("typecheck: unknown expression")
	}
}

// checkFieldAccess narrows the field-access candidates against the
// receiver type and types the whole expression.
func (gc *groupChecker) checkFieldAccess(id ir.ExprID, expr *ir.FieldAccess, whole types.Type, loc source.LocationID) {
	prog := gc.c.prog
	receiver := gc.exprType(expr.Receiver)
	type match struct {
		info   ir.FieldAccessInfo
		record ir.RecordTypeInfo
	}
	var matches []match
	for _, candidate := range expr.Infos {
		recordInfo := prog.RecordTypeInfoMap[candidate.Record].Duplicate(prog.Gen)
		trial := prog.Unifier()
		if trial.Unify(receiver, recordInfo.RecordType) == nil {
			matches = append(matches, match{info: candidate, record: recordInfo})
		}
	}
	switch len(matches) {
	case 0:
		if gc.report {
			gc.c.errAt(diag.TypeMismatch, loc,
				"no record with field %s matches type %s", expr.Infos[0].Name, receiver)
		}
	case 1:
		m := matches[0]
		if len(expr.Infos) > 1 {
			prog.UpdateExpr(id, &ir.FieldAccess{
				Infos:    []ir.FieldAccessInfo{m.info},
				Receiver: expr.Receiver,
			})
		}
		u := prog.Unifier()
		gc.unifyWith(u, receiver, m.record.RecordType, loc)
		gc.unifyWith(u, whole, m.record.FieldTypes[m.info.Index].Ty, loc)
		gc.applyUnifier(u, loc)
	default:
		if gc.report {
			gc.c.errAt(diag.AmbiguousFieldAccess, loc,
				"field access %s is ambiguous for type %s", expr.Infos[0].Name, receiver)
		}
	}
}

// checkRecordUpdate narrows the update candidates against the receiver
// type.
func (gc *groupChecker) checkRecordUpdate(id ir.ExprID, expr *ir.RecordUpdate, whole types.Type, loc source.LocationID) {
	prog := gc.c.prog
	receiver := gc.exprType(expr.Receiver)
	type match struct {
		candidate ir.RecordUpdateInfo
		record    ir.RecordTypeInfo
	}
	var matches []match
	for _, candidate := range expr.Candidates {
		recordInfo := prog.RecordTypeInfoMap[candidate.TypeDef].Duplicate(prog.Gen)
		trial := prog.Unifier()
		if trial.Unify(receiver, recordInfo.RecordType) == nil {
			matches = append(matches, match{candidate: candidate, record: recordInfo})
		}
	}
	switch len(matches) {
	case 0:
		if gc.report {
			gc.c.errAt(diag.TypeMismatch, loc, "no record matches update of type %s", receiver)
		}
	case 1:
		m := matches[0]
		if len(expr.Candidates) > 1 {
			prog.UpdateExpr(id, &ir.RecordUpdate{
				Receiver:   expr.Receiver,
				Candidates: []ir.RecordUpdateInfo{m.candidate},
			})
		}
		u := prog.Unifier()
		gc.unifyWith(u, receiver, m.record.RecordType, loc)
		for _, item := range m.candidate.Items {
			gc.unifyWith(u, gc.exprType(item.Expr), m.record.FieldTypes[item.Index].Ty, prog.ExprLocation(item.Expr))
		}
		gc.unifyWith(u, whole, receiver, loc)
		gc.applyUnifier(u, loc)
	default:
		if gc.report {
			gc.c.errAt(diag.AmbiguousFieldAccess, loc, "record update is ambiguous for type %s", receiver)
		}
	}
}

func (gc *groupChecker) checkPattern(id ir.PatternID) {
	prog := gc.c.prog
	loc := prog.PatternLocation(id)
	whole := gc.patternType(id)
	switch pattern := prog.Patterns.Get(id).Pattern.(type) {
	case *ir.BindingPattern, *ir.WildcardPattern:
	case *ir.IntegerPattern:
		gc.unify(whole, prog.IntType(), loc)
	case *ir.CharPattern:
		gc.unify(whole, prog.CharType(), loc)
	case *ir.StringPattern:
		gc.unify(whole, prog.StringType(), loc)
	case *ir.TuplePattern:
		items := make([]types.Type, len(pattern.Items))
		for i, item := range pattern.Items {
			gc.checkPattern(item)
			items[i] = gc.patternType(item)
		}
		gc.unify(whole, &types.Tuple{Items: items}, loc)
	case *ir.VariantPattern:
		info := prog.AdtTypeInfoMap[pattern.TypeDef].Duplicate(prog.Gen)
		variant := info.VariantTypes[pattern.Index]
		if len(variant.ItemTypes) != len(pattern.Items) {
			if gc.report {
				adt := prog.TypeDefs.Get(pattern.TypeDef).(*ir.Adt)
				gc.c.errAt(diag.InvalidVariantPattern, loc,
					"variant %s of %s expects %d items, found %d",
					adt.Variants[pattern.Index].Name, adt.Name, len(variant.ItemTypes), len(pattern.Items))
			}
			return
		}
		for _, item := range pattern.Items {
			gc.checkPattern(item)
		}
		u := prog.Unifier()
		gc.unifyWith(u, whole, info.AdtType, loc)
		for i, item := range pattern.Items {
			gc.unifyWith(u, gc.patternType(item), variant.ItemTypes[i].Ty, prog.PatternLocation(item))
		}
		gc.applyUnifier(u, loc)
	case *ir.RecordPattern:
		info := prog.RecordTypeInfoMap[pattern.TypeDef].Duplicate(prog.Gen)
		if len(info.FieldTypes) != len(pattern.Fields) {
			if gc.report {
				record := prog.TypeDefs.Get(pattern.TypeDef).(*ir.Record)
				gc.c.errAt(diag.InvalidRecordPattern, loc,
					"record %s has %d fields, pattern has %d",
					record.Name, len(info.FieldTypes), len(pattern.Fields))
			}
			return
		}
		for _, field := range pattern.Fields {
			gc.checkPattern(field)
		}
		u := prog.Unifier()
		gc.unifyWith(u, whole, info.RecordType, loc)
		for i, field := range pattern.Fields {
			gc.unifyWith(u, gc.patternType(field), info.FieldTypes[i].Ty, prog.PatternLocation(field))
		}
		gc.applyUnifier(u, loc)
	case *ir.GuardedPattern:
		gc.checkPattern(pattern.Sub)
		gc.unify(gc.patternType(pattern.Sub), whole, loc)
		gc.checkExpr(pattern.Guard)
		gc.unify(gc.exprType(pattern.Guard), prog.BoolType(), prog.ExprLocation(pattern.Guard))
	case *ir.TypedPattern:
		gc.checkPattern(pattern.Sub)
		gc.unify(gc.patternType(pattern.Sub), whole, loc)
		gc.unify(whole, sigToType(prog, pattern.Signature, false), loc)
	default:
		panic("typecheck: unknown pattern")
	}
}

// checkAnnotationNeeded reports expressions whose type stays a constrained
// variable that does not occur in the owning function's final type.
func (gc *groupChecker) checkAnnotationNeeded(items []ir.FunctionID) {
	for _, id := range gc.exprs {
		ty := gc.c.prog.ExprTypes[id]
		v, ok := ty.(*types.Var)
		if !ok || len(v.Constraints) == 0 {
			continue
		}
		owner := gc.owner[id]
		info := gc.c.infos[owner]
		if types.Contains(info.FunctionType, v.Index) {
			continue
		}
		gc.c.errAt(diag.TypeAnnotationNeeded, gc.c.prog.ExprLocation(id),
			"type annotation needed: cannot resolve constrained type %s", ty)
	}
}
