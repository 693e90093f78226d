package typecheck

import (
	"fmt"

	"github.com/sunholo/skiff/internal/dep"
	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// Checker holds the working state of one type-checking run.
type Checker struct {
	prog   *ir.Program
	errors *diag.Bag
	infos  map[ir.FunctionID]*FunctionTypeInfo
}

// Check runs the type checker over a resolved program, annotating it in
// place. The annotations are only meaningful when the error bag stays
// empty.
func Check(prog *ir.Program, errors *diag.Bag) {
	c := &Checker{
		prog:   prog,
		errors: errors,
		infos:  make(map[ir.FunctionID]*FunctionTypeInfo),
	}
	c.checkClassDependencies()
	c.processDataTypes()
	c.registerInstances()
	c.checkDerivedInstances()
	c.processClassMembers()
	if errors.HasErrors() {
		return
	}
	c.createFunctionTypeInfos()
	if errors.HasErrors() {
		return
	}
	groups := c.functionGroups()
	for _, group := range groups {
		c.checkGroup(group.Items)
		if errors.HasErrors() {
			return
		}
	}
	c.bindFinalTypes()
	if _, ok := prog.Main(); !ok {
		c.errAt(diag.MainNotFound, source.NoLocation, "function Main.main does not exist")
		return
	}
	mainID, _ := prog.Main()
	main := prog.Functions.Get(mainID)
	if main.ArgCount() != 0 {
		c.errAt(diag.MainNotFound, main.Info.(*ir.NamedFunctionInfo).Location,
			"function Main.main must take no arguments")
	}
}

func (c *Checker) err(kind diag.Kind, locs []source.LocationID, format string, args ...interface{}) {
	c.errors.Add(diag.New(diag.PhaseTypecheck, kind, locs, format, args...))
}

func (c *Checker) errAt(kind diag.Kind, loc source.LocationID, format string, args ...interface{}) {
	c.err(kind, []source.LocationID{loc}, format, args...)
}

// processClassMembers converts every class member signature into its
// generic type, pairing it with the class argument type.
func (c *Checker) processClassMembers() {
	c.prog.ClassMembers.Each(func(id types.ClassMemberID, member *ir.ClassMember) {
		c.prog.ClassMemberTypes[id] = ir.ClassMemberTypeInfo{
			MemberType: sigToType(c.prog, member.Signature, true),
			ClassArg:   sigToType(c.prog, member.ClassSignature, true),
		}
	})
}

// memberFunctionType derives the expected type of an instance member
// function: the member's generic type with the class argument bound to the
// instance type, remaining variables frozen.
func (c *Checker) memberFunctionType(memberID types.ClassMemberID, instanceTy types.Type) types.Type {
	info := c.prog.ClassMemberTypes[memberID]
	argMap := make(map[int]int)
	memberTy := types.RemoveFixed(types.Duplicate(info.MemberType, argMap, c.prog.Gen))
	classArg := types.RemoveFixed(types.Duplicate(info.ClassArg, argMap, c.prog.Gen))
	instMap := make(map[int]int)
	instTy := types.Duplicate(instanceTy, instMap, c.prog.Gen)
	u := c.prog.Unifier()
	if err := u.Unify(classArg, instTy); err != nil {
		panic(fmt.Sprintf("typecheck: instance type does not match class argument: %v", err))
	}
	return fixVars(u.Apply(memberTy))
}

func (c *Checker) createFunctionTypeInfos() {
	instanceMemberTypes := make(map[ir.FunctionID]types.Type)
	c.prog.Instances.Each(func(id types.InstanceID, instance *ir.Instance) {
		instanceTy := sigToType(c.prog, instance.Signature, false)
		for _, member := range instance.Members {
			instanceMemberTypes[member.Function] = c.memberFunctionType(member.ClassMember, instanceTy)
		}
	})
	defaultMemberTypes := make(map[ir.FunctionID]types.Type)
	c.prog.ClassMembers.Each(func(id types.ClassMemberID, member *ir.ClassMember) {
		if member.DefaultImpl != ir.NoFunction {
			defaultMemberTypes[member.DefaultImpl] = c.prog.ClassMemberTypes[id].MemberType
		}
	})

	c.prog.Functions.Each(func(id ir.FunctionID, fn *ir.Function) {
		if fn == nil {
			panic(fmt.Sprintf("typecheck: function #%d has no payload", int(id)))
		}
		switch fnInfo := fn.Info.(type) {
		case *ir.NamedFunctionInfo:
			info := &FunctionTypeInfo{
				DisplayedName: fnInfo.String(),
				Body:          fnInfo.Body,
				Location:      fnInfo.Location,
			}
			ty, typed := instanceMemberTypes[id]
			if !typed {
				ty, typed = defaultMemberTypes[id]
			}
			if !typed && fnInfo.Signature != ir.NoTypeSignature {
				ty = sigToType(c.prog, fnInfo.Signature, true)
				typed = true
			}
			if typed {
				args, result := types.FuncArgs(ty)
				if len(args) < fn.ArgCount() {
					c.errAt(diag.FunctionArgAndSignatureMismatch, fnInfo.Location,
						"function %s has %d arguments but its type has %d", info.DisplayedName, fn.ArgCount(), len(args))
					return
				}
				info.Typed = true
				info.Args = args[:fn.ArgCount()]
				info.Result = types.MakeFunc(args[fn.ArgCount():], result)
				info.FunctionType = ty
			} else {
				if fnInfo.Body == ir.NoExpr {
					c.errAt(diag.UntypedExternFunction, fnInfo.Location,
						"external function %s has no type", info.DisplayedName)
					return
				}
				info.Args, info.Result, info.FunctionType = generalFunctionType(fn.ArgCount(), c.prog.Gen)
			}
			c.infos[id] = info
		case *ir.LambdaInfo:
			info := &FunctionTypeInfo{
				DisplayedName: fnInfo.String(),
				Body:          fnInfo.Body,
				Location:      fnInfo.Location,
			}
			info.Args, info.Result, info.FunctionType = generalFunctionType(fn.ArgCount(), c.prog.Gen)
			c.infos[id] = info
		case *ir.RecordCtorInfo:
			record := c.prog.RecordTypeInfoMap[fnInfo.TypeDef].Duplicate(c.prog.Gen)
			args := make([]types.Type, len(record.FieldTypes))
			for i, field := range record.FieldTypes {
				args[i] = field.Ty
			}
			c.infos[id] = &FunctionTypeInfo{
				DisplayedName: fn.Info.String(),
				Args:          args,
				Typed:         true,
				Result:        record.RecordType,
				FunctionType:  types.MakeFunc(args, record.RecordType),
				Body:          ir.NoExpr,
			}
		case *ir.VariantCtorInfo:
			adt := c.prog.AdtTypeInfoMap[fnInfo.TypeDef].Duplicate(c.prog.Gen)
			variant := adt.VariantTypes[fnInfo.Index]
			args := make([]types.Type, len(variant.ItemTypes))
			for i, item := range variant.ItemTypes {
				args[i] = item.Ty
			}
			c.infos[id] = &FunctionTypeInfo{
				DisplayedName: fn.Info.String(),
				Args:          args,
				Typed:         true,
				Result:        adt.AdtType,
				FunctionType:  types.MakeFunc(args, adt.AdtType),
				Body:          ir.NoExpr,
			}
		}
	})
}

// depCollector supplies the untyped dependencies of a function body plus
// the lambda host link.
type depCollector struct {
	checker *Checker
}

type callCollector struct {
	used map[ir.FunctionID]bool
}

func (v *callCollector) VisitExpr(id ir.ExprID, expr ir.Expr) {
	if call, ok := expr.(*ir.StaticCall); ok {
		v.used[call.Function] = true
	}
}

func (v *callCollector) VisitPattern(id ir.PatternID, pattern ir.Pattern) {}

func (d *depCollector) Collect(item ir.FunctionID) []ir.FunctionID {
	info := d.checker.infos[item]
	visitor := &callCollector{used: make(map[ir.FunctionID]bool)}
	if info.Body != ir.NoExpr {
		ir.WalkExpr(d.checker.prog, info.Body, visitor)
	}
	var deps []ir.FunctionID
	for used := range visitor.used {
		usedInfo, ok := d.checker.infos[used]
		if ok && !usedInfo.Typed {
			deps = append(deps, used)
		}
	}
	fn := d.checker.prog.Functions.Get(item)
	if host, ok := fn.LambdaHost(); ok {
		deps = append(deps, host)
	}
	return deps
}

// functionGroups orders every function with a body into dependency groups
// so that mutually recursive untyped functions infer together.
func (c *Checker) functionGroups() []dep.Group[ir.FunctionID] {
	var items []ir.FunctionID
	c.prog.Functions.Each(func(id ir.FunctionID, fn *ir.Function) {
		if info, ok := c.infos[id]; ok && info.Body != ir.NoExpr {
			items = append(items, id)
		}
	})
	processor := dep.NewProcessor(items)
	return processor.Process(&depCollector{checker: c})
}

// bindFinalTypes copies the inferred function types into the program.
func (c *Checker) bindFinalTypes() {
	c.prog.Functions.Each(func(id ir.FunctionID, fn *ir.Function) {
		if info, ok := c.infos[id]; ok {
			c.prog.FunctionTypes[id] = info.FunctionType
		}
	})
}
