package resolve

import (
	"sort"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/store"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/types"
)

func (r *Resolver) resolveBodies() {
	for _, work := range r.pendingBodies {
		r.resolveBody(work)
	}
}

func (r *Resolver) resolveBody(work bodyWork) {
	info := work.info
	if info == nil {
		sigID := ir.NoTypeSignature
		if work.sigDecl != nil {
			sigResolver := newTypeArgResolver(false, r.prog.Gen)
			r.collectTypeArgs(work.sigDecl.Signature, sigResolver)
			r.resolveConstraintClasses(work.sigDecl.Constraints, work.module, sigResolver, diag.InvalidArgumentInTypeClassConstraint)
			sigID = r.resolveTypeSignature(work.sigDecl.Signature, work.module, sigResolver)
		}
		info = &ir.NamedFunctionInfo{
			Module:    work.module.Name,
			Name:      work.decl.Name,
			Body:      ir.NoExpr,
			Signature: sigID,
			Location:  work.decl.Location,
		}
	}
	env := NewEnvironment()
	argLocations := make([]source.LocationID, 0, len(work.decl.Args))
	seen := make(map[string]bool)
	var conflicts []string
	var conflictLocs []source.LocationID
	for index, arg := range work.decl.Args {
		if seen[arg.Name] {
			conflicts = append(conflicts, arg.Name)
			conflictLocs = append(conflictLocs, arg.Location)
		}
		seen[arg.Name] = true
		env.AddArg(arg.Name, work.function, index)
		argLocations = append(argLocations, arg.Location)
	}
	if len(conflicts) > 0 {
		r.err(diag.ArgumentConflict, conflictLocs, "conflicting function arguments: %v", conflicts)
	}
	if !work.decl.Extern && work.decl.Body != syntax.NoExpr {
		helper := NewLambdaHelper(0, hostDisplayName(work.module.Name, info.Name),
			&store.Counter{}, work.function, work.function, nil)
		info.Body = r.resolveExpr(work.decl.Body, work.module, env, helper)
	}
	r.prog.Functions.Set(work.function, &ir.Function{
		ArgLocations: argLocations,
		Info:         info,
	})
}

type pathResult int

const (
	pathVar pathResult = iota
	pathItem
	pathUnknown
	pathAmbiguous
)

// resolvePath resolves a dotted path: local environment first for plain
// names, then the imported-item map.
func (r *Resolver) resolvePath(path string, module *Module, env *Environment, helper *LambdaHelper) (ir.Expr, Item, pathResult) {
	if isTypeArgName(path) || !containsDot(path) {
		if ref, level, ok := env.Get(path); ok {
			return helper.ProcessNamedRef(ref, level), Item{}, pathVar
		}
	}
	entries := module.ImportedItems[path]
	switch len(entries) {
	case 0:
		return nil, Item{}, pathUnknown
	case 1:
		return nil, entries[0].Item, pathItem
	}
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = entry.Item
	}
	if variant, _, ok := isAdtVariantPair(items); ok {
		return nil, variant, pathItem
	}
	return nil, Item{}, pathAmbiguous
}

func containsDot(path string) bool {
	for _, r := range path {
		if r == '.' {
			return true
		}
	}
	return false
}

// itemCallExpr builds the call expression for a value-level item.
func (r *Resolver) itemCallExpr(item Item, args []ir.ExprID, path string, loc source.LocationID) (ir.Expr, bool) {
	switch item.Kind {
	case ItemFunction:
		return &ir.StaticCall{Function: item.Function, Args: args}, true
	case ItemVariant, ItemRecord:
		return &ir.StaticCall{Function: item.Function, Args: args}, true
	case ItemClassMember:
		return &ir.ClassCall{Member: item.ClassMember, Args: args}, true
	default:
		r.err(diag.UnknownFunction, []source.LocationID{loc}, "unknown function %s", path)
		return nil, false
	}
}

func (r *Resolver) errorExpr(loc source.LocationID) ir.ExprID {
	return r.prog.AddExpr(&ir.TupleExpr{}, loc)
}

func (r *Resolver) resolveExpr(id syntax.ExprID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	info := r.src.Exprs.Get(id)
	loc := info.Location
	switch expr := info.Expr.(type) {
	case *syntax.IntLit:
		return r.prog.AddExpr(&ir.IntegerLiteral{Value: expr.Value}, loc)
	case *syntax.FloatLit:
		return r.prog.AddExpr(&ir.FloatLiteral{Value: expr.Value}, loc)
	case *syntax.CharLit:
		return r.prog.AddExpr(&ir.CharLiteral{Value: expr.Value}, loc)
	case *syntax.StringLit:
		return r.prog.AddExpr(&ir.StringLiteral{Value: expr.Value}, loc)
	case *syntax.BoolLit:
		return r.prog.AddExpr(&ir.BoolLiteral{Value: expr.Value}, loc)
	case *syntax.If:
		cond := r.resolveExpr(expr.Cond, module, env, helper)
		then := r.resolveExpr(expr.Then, module, env, helper)
		els := r.resolveExpr(expr.Else, module, env, helper)
		return r.prog.AddExpr(&ir.IfExpr{Cond: cond, Then: then, Else: els}, loc)
	case *syntax.Tuple:
		items := make([]ir.ExprID, len(expr.Items))
		for i, item := range expr.Items {
			items[i] = r.resolveExpr(item, module, env, helper)
		}
		return r.prog.AddExpr(&ir.TupleExpr{Items: items}, loc)
	case *syntax.List:
		items := make([]ir.ExprID, len(expr.Items))
		for i, item := range expr.Items {
			items[i] = r.resolveExpr(item, module, env, helper)
		}
		return r.prog.AddExpr(&ir.ListExpr{Items: items}, loc)
	case *syntax.Do:
		blockEnv := env.Block()
		items := make([]ir.ExprID, len(expr.Items))
		for i, item := range expr.Items {
			items[i] = r.resolveExpr(item, module, blockEnv, helper)
		}
		return r.prog.AddExpr(&ir.Do{Items: items}, loc)
	case *syntax.Bind:
		rhs := r.resolveExpr(expr.Rhs, module, env, helper)
		pattern := r.resolvePattern(expr.Pattern, module, env, helper, rhs)
		if !r.isIrrefutable(pattern) {
			r.err(diag.NotIrrefutablePattern, []source.LocationID{r.prog.PatternLocation(pattern)},
				"pattern in a binding must be irrefutable")
		}
		return r.prog.AddExpr(&ir.Bind{Pattern: pattern, Rhs: rhs}, loc)
	case *syntax.Path:
		return r.resolvePathExpr(expr.Name, nil, id, loc, module, env, helper)
	case *syntax.FunctionCall:
		return r.resolveCall(expr, id, loc, module, env, helper)
	case *syntax.BuiltinOp:
		panic("resolve: bare operator expression")
	case *syntax.Lambda:
		return r.resolveLambda(expr, loc, module, env, helper)
	case *syntax.FieldAccess:
		receiver := r.resolveExpr(expr.Receiver, module, env, helper)
		members := module.ImportedMembers[expr.Name]
		var infos []ir.FieldAccessInfo
		seen := make(map[ir.FieldAccessInfo]bool)
		for _, member := range members {
			if !member.Member.IsField {
				continue
			}
			fa := ir.FieldAccessInfo{
				Record: member.Member.TypeDef,
				Index:  member.Member.Index,
				Name:   expr.Name,
			}
			if !seen[fa] {
				seen[fa] = true
				infos = append(infos, fa)
			}
		}
		if len(infos) == 0 {
			r.err(diag.UnknownFieldName, []source.LocationID{loc}, "unknown field name %s", expr.Name)
			return r.errorExpr(loc)
		}
		return r.prog.AddExpr(&ir.FieldAccess{Infos: infos, Receiver: receiver}, loc)
	case *syntax.TupleFieldAccess:
		receiver := r.resolveExpr(expr.Receiver, module, env, helper)
		return r.prog.AddExpr(&ir.TupleFieldAccess{Index: expr.Index, Receiver: receiver}, loc)
	case *syntax.Formatter:
		args := make([]ir.ExprID, len(expr.Args))
		for i, arg := range expr.Args {
			args[i] = r.resolveExpr(arg, module, env, helper)
		}
		return r.prog.AddExpr(&ir.Formatter{Fmt: expr.Fmt, Args: args}, loc)
	case *syntax.CaseOf:
		body := r.resolveExpr(expr.Body, module, env, helper)
		cases := make([]ir.Case, 0, len(expr.Cases))
		for _, arm := range expr.Cases {
			armEnv := env.Block()
			pattern := r.resolvePattern(arm.Pattern, module, armEnv, helper, body)
			armBody := r.resolveExpr(arm.Body, module, armEnv, helper)
			cases = append(cases, ir.Case{Pattern: pattern, Body: armBody})
		}
		return r.prog.AddExpr(&ir.CaseOf{Body: body, Cases: cases}, loc)
	case *syntax.RecordInit:
		return r.resolveRecordInit(expr, loc, module, env, helper)
	case *syntax.RecordUpdate:
		return r.resolveRecordUpdate(expr, loc, module, env, helper)
	}
	panic("resolve: unknown surface expression")
}

// resolvePathExpr resolves a path in expression position, with optional
// call arguments.
func (r *Resolver) resolvePathExpr(path string, args []ir.ExprID, astID syntax.ExprID, loc source.LocationID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	varExpr, item, result := r.resolvePath(path, module, env, helper)
	switch result {
	case pathVar:
		refID := r.prog.AddExpr(varExpr, loc)
		if len(args) == 0 {
			return refID
		}
		return r.prog.AddExpr(&ir.DynamicCall{Callee: refID, Args: args}, loc)
	case pathItem:
		callExpr, ok := r.itemCallExpr(item, args, path, loc)
		if !ok {
			return r.errorExpr(loc)
		}
		return r.prog.AddExpr(callExpr, loc)
	case pathAmbiguous:
		r.err(diag.AmbiguousName, []source.LocationID{loc}, "ambiguous name %s", path)
		return r.errorExpr(loc)
	default:
		r.err(diag.UnknownFunction, []source.LocationID{loc}, "unknown function %s", path)
		return r.errorExpr(loc)
	}
}

func (r *Resolver) resolveCall(call *syntax.FunctionCall, astID syntax.ExprID, loc source.LocationID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	args := make([]ir.ExprID, len(call.Args))
	for i, arg := range call.Args {
		args[i] = r.resolveExpr(arg, module, env, helper)
	}
	calleeInfo := r.src.Exprs.Get(call.Callee)
	switch callee := calleeInfo.Expr.(type) {
	case *syntax.Path:
		return r.resolvePathExpr(callee.Name, args, astID, loc, module, env, helper)
	case *syntax.BuiltinOp:
		if callee.Op == syntax.OpPipe {
			if len(args) != 2 {
				panic("resolve: pipe operator expects two operands")
			}
			return r.prog.AddExpr(&ir.DynamicCall{Callee: args[1], Args: []ir.ExprID{args[0]}}, loc)
		}
		opPath := callee.Op.FunctionName()
		_, item, result := r.resolvePath(opPath, module, env, helper)
		if result != pathItem || item.Kind != ItemFunction && item.Kind != ItemClassMember {
			r.err(diag.UnknownFunction, []source.LocationID{calleeInfo.Location},
				"unknown function %s", opPath)
			return r.errorExpr(loc)
		}
		callExpr, _ := r.itemCallExpr(item, args, opPath, calleeInfo.Location)
		return r.prog.AddExpr(callExpr, loc)
	default:
		calleeID := r.resolveExpr(call.Callee, module, env, helper)
		return r.prog.AddExpr(&ir.DynamicCall{Callee: calleeID, Args: args}, loc)
	}
}

func (r *Resolver) resolveLambda(lambda *syntax.Lambda, loc source.LocationID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	lambdaID := r.prog.Functions.Allocate()
	lambdaEnv := env.Child()
	seen := make(map[string]bool)
	var conflicts []string
	var conflictLocs []source.LocationID
	argLocations := make([]source.LocationID, 0, len(lambda.Args))
	for index, arg := range lambda.Args {
		if seen[arg.Name] {
			conflicts = append(conflicts, arg.Name)
			conflictLocs = append(conflictLocs, arg.Location)
		}
		seen[arg.Name] = true
		lambdaEnv.AddArg(arg.Name, lambdaID, index)
		argLocations = append(argLocations, arg.Location)
	}
	if len(conflicts) > 0 {
		r.err(diag.LambdaArgumentConflict, conflictLocs, "conflicting lambda arguments: %v", conflicts)
	}
	localHelper := NewLambdaHelper(lambdaEnv.Level(), helper.HostName(), helper.Counter(),
		lambdaID, helper.Host(), helper)
	body := r.resolveExpr(lambda.Body, module, lambdaEnv, localHelper)
	captures := localHelper.Captures()
	shiftLambdaArgs(r.prog, lambdaID, body, len(captures))
	r.prog.Functions.Set(lambdaID, &ir.Function{
		ArgLocations:     argLocations,
		ImplicitArgCount: len(captures),
		Info: &ir.LambdaInfo{
			Body:     body,
			HostName: helper.HostName(),
			Host:     helper.Host(),
			Index:    localHelper.NextLambdaIndex(),
			Location: loc,
		},
	})
	captureArgs := make([]ir.ExprID, len(captures))
	for i, capture := range captures {
		captureArgs[i] = r.prog.AddExpr(capture, loc)
	}
	return r.prog.AddExpr(&ir.StaticCall{Function: lambdaID, Args: captureArgs}, loc)
}

// recordFieldIndex returns the declaration index of a field, using the
// surface declaration registered for the typedef.
func (r *Resolver) recordFieldIndex(typedef *syntax.RecordDecl, name string) (int, bool) {
	for index, field := range typedef.Fields {
		if field.Name == name {
			return index, true
		}
	}
	return 0, false
}

func (r *Resolver) resolveRecordInit(init *syntax.RecordInit, loc source.LocationID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	if len(init.Fields) == 0 {
		r.err(diag.NoRecordFoundWithFields, []source.LocationID{loc}, "no record found with no fields")
		return r.errorExpr(loc)
	}
	if names, dup := duplicateFieldNames(init.Fields); dup {
		r.err(diag.FieldsInitializedMultipleTimes, []source.LocationID{loc},
			"fields initialized multiple times: %v", names)
		return r.errorExpr(loc)
	}
	given := make([]string, len(init.Fields))
	for i, field := range init.Fields {
		given[i] = field.Name
	}
	var exact, partial []*syntax.RecordDecl
	var exactIDs []types.TypeDefID
	for _, member := range module.ImportedMembers[init.Fields[0].Name] {
		if !member.Member.IsField {
			continue
		}
		decl, ok := r.recordDecls[member.Member.TypeDef]
		if !ok {
			continue
		}
		all := true
		for _, name := range given {
			if _, found := r.recordFieldIndex(decl, name); !found {
				all = false
				break
			}
		}
		if !all {
			continue
		}
		if len(decl.Fields) == len(given) {
			exact = append(exact, decl)
			exactIDs = append(exactIDs, member.Member.TypeDef)
		} else {
			partial = append(partial, decl)
		}
	}
	switch {
	case len(exact) == 1:
		decl := exact[0]
		id := exactIDs[0]
		fields := make([]ir.RecordInitField, len(init.Fields))
		for i, field := range init.Fields {
			index, _ := r.recordFieldIndex(decl, field.Name)
			fields[i] = ir.RecordInitField{
				Expr:  r.resolveExpr(field.Body, module, env, helper),
				Index: index,
			}
		}
		return r.prog.AddExpr(&ir.RecordInit{TypeDef: id, Fields: fields}, loc)
	case len(exact) > 1:
		r.err(diag.AmbiguousName, []source.LocationID{loc},
			"record literal with fields %v is ambiguous", given)
		return r.errorExpr(loc)
	case len(partial) > 0:
		decl := partial[0]
		var missing []string
		for _, field := range decl.Fields {
			found := false
			for _, name := range given {
				if name == field.Name {
					found = true
					break
				}
			}
			if !found {
				missing = append(missing, field.Name)
			}
		}
		r.err(diag.MissingFields, []source.LocationID{loc},
			"missing fields in record literal: %v", missing)
		return r.errorExpr(loc)
	default:
		r.err(diag.NoRecordFoundWithFields, []source.LocationID{loc},
			"no record found with fields %v", given)
		return r.errorExpr(loc)
	}
}

func (r *Resolver) resolveRecordUpdate(update *syntax.RecordUpdate, loc source.LocationID, module *Module, env *Environment, helper *LambdaHelper) ir.ExprID {
	receiver := r.resolveExpr(update.Receiver, module, env, helper)
	if len(update.Fields) == 0 {
		r.err(diag.NoRecordFoundWithFields, []source.LocationID{loc}, "no record found with no fields")
		return r.errorExpr(loc)
	}
	if names, dup := duplicateFieldNames(update.Fields); dup {
		r.err(diag.FieldsInitializedMultipleTimes, []source.LocationID{loc},
			"fields initialized multiple times: %v", names)
		return r.errorExpr(loc)
	}
	exprs := make([]ir.ExprID, len(update.Fields))
	for i, field := range update.Fields {
		exprs[i] = r.resolveExpr(field.Body, module, env, helper)
	}
	var candidates []ir.RecordUpdateInfo
	seen := make(map[int]bool)
	for _, member := range module.ImportedMembers[update.Fields[0].Name] {
		if !member.Member.IsField || seen[int(member.Member.TypeDef)] {
			continue
		}
		seen[int(member.Member.TypeDef)] = true
		decl, ok := r.recordDecls[member.Member.TypeDef]
		if !ok {
			continue
		}
		items := make([]ir.RecordInitField, 0, len(update.Fields))
		all := true
		for i, field := range update.Fields {
			index, found := r.recordFieldIndex(decl, field.Name)
			if !found {
				all = false
				break
			}
			items = append(items, ir.RecordInitField{Expr: exprs[i], Index: index})
		}
		if all {
			candidates = append(candidates, ir.RecordUpdateInfo{
				TypeDef: member.Member.TypeDef,
				Items:   items,
			})
		}
	}
	if len(candidates) == 0 {
		given := make([]string, len(update.Fields))
		for i, field := range update.Fields {
			given[i] = field.Name
		}
		r.err(diag.NoRecordFoundWithFields, []source.LocationID{loc},
			"no record found with fields %v", given)
		return r.errorExpr(loc)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].TypeDef < candidates[j].TypeDef })
	return r.prog.AddExpr(&ir.RecordUpdate{Receiver: receiver, Candidates: candidates}, loc)
}

func duplicateFieldNames(fields []syntax.FieldInit) ([]string, bool) {
	seen := make(map[string]bool)
	var dups []string
	for _, field := range fields {
		if seen[field.Name] {
			dups = append(dups, field.Name)
		}
		seen[field.Name] = true
	}
	return dups, len(dups) > 0
}

