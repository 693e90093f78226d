package typecheck

import (
	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// processDataTypes builds the type infos of every typedef and registers
// the auto-derived instances its deriving list plans.
func (c *Checker) processDataTypes() {
	c.prog.TypeDefs.Each(func(id types.TypeDefID, typedef ir.TypeDef) {
		switch typedef := typedef.(type) {
		case *ir.Adt:
			args := make([]types.Type, len(typedef.TypeArgs))
			for i, argIndex := range typedef.TypeArgs {
				args[i] = &types.Var{Index: argIndex}
			}
			info := &ir.AdtTypeInfo{
				AdtType: &types.Named{Name: typedef.Name, ID: id, Args: args},
			}
			for _, variant := range typedef.Variants {
				items := make([]ir.TypeWithLocation, len(variant.Items))
				for i, itemSig := range variant.Items {
					items[i] = ir.TypeWithLocation{
						Ty:       sigToType(c.prog, itemSig, false),
						Location: c.prog.TypeSignatures.Get(itemSig).Location,
					}
				}
				info.VariantTypes = append(info.VariantTypes, ir.VariantTypeInfo{ItemTypes: items})
			}
			for _, derived := range typedef.DerivedClasses {
				instanceTy := constrainedInstanceType(typedef.Name, id, typedef.TypeArgs, derived.Class, c.prog.Gen)
				index := c.prog.InstanceResolver.AddAutoDerived(derived.Class, instanceTy, derived.Location)
				info.DerivedClasses = append(info.DerivedClasses, ir.DeriveInfo{
					Class:         derived.Class,
					InstanceIndex: index,
					Location:      derived.Location,
				})
			}
			c.prog.AdtTypeInfoMap[id] = info
		case *ir.Record:
			args := make([]types.Type, len(typedef.TypeArgs))
			for i, argIndex := range typedef.TypeArgs {
				args[i] = &types.Var{Index: argIndex}
			}
			info := &ir.RecordTypeInfo{
				RecordType: &types.Named{Name: typedef.Name, ID: id, Args: args},
			}
			for _, field := range typedef.Fields {
				info.FieldTypes = append(info.FieldTypes, ir.TypeWithLocation{
					Ty:       sigToType(c.prog, field.Signature, false),
					Location: c.prog.TypeSignatures.Get(field.Signature).Location,
				})
			}
			for _, derived := range typedef.DerivedClasses {
				instanceTy := constrainedInstanceType(typedef.Name, id, typedef.TypeArgs, derived.Class, c.prog.Gen)
				index := c.prog.InstanceResolver.AddAutoDerived(derived.Class, instanceTy, derived.Location)
				info.DerivedClasses = append(info.DerivedClasses, ir.DeriveInfo{
					Class:         derived.Class,
					InstanceIndex: index,
					Location:      derived.Location,
				})
			}
			c.prog.RecordTypeInfoMap[id] = info
		}
	})
}

// constrainedInstanceType builds the fully generic instance type of an
// auto-derived instance: the typedef applied to fresh variables, each
// carrying the derived class as a constraint so matching a concrete type
// records the per-parameter obligations.
func constrainedInstanceType(name string, id types.TypeDefID, typeArgs []int, class types.ClassID, gen *types.VarGen) types.Type {
	args := make([]types.Type, len(typeArgs))
	for i := range typeArgs {
		args[i] = gen.NewVarWith([]types.ClassID{class})
	}
	return &types.Named{Name: name, ID: id, Args: args}
}

// registerInstances adds every user-defined instance to the resolver and
// reports overlaps among instances of the same class head.
func (c *Checker) registerInstances() {
	type instanceEntry struct {
		ty       types.Type
		location source.LocationID
	}
	byClass := make(map[types.ClassID][]instanceEntry)
	c.prog.Instances.Each(func(id types.InstanceID, instance *ir.Instance) {
		ty := sigToType(c.prog, instance.Signature, false)
		c.prog.InstanceResolver.AddUserDefined(instance.Class, ty, id, instance.Location)
		byClass[instance.Class] = append(byClass[instance.Class], instanceEntry{ty: ty, location: instance.Location})
	})
	// Auto-derived instances participate in overlap detection too.
	c.prog.TypeDefs.Each(func(id types.TypeDefID, typedef ir.TypeDef) {
		var infos []ir.DeriveInfo
		if info, ok := c.prog.AdtTypeInfoMap[id]; ok {
			infos = info.DerivedClasses
		} else if info, ok := c.prog.RecordTypeInfoMap[id]; ok {
			infos = info.DerivedClasses
		}
		for _, derived := range infos {
			inst := c.prog.InstanceResolver.AutoDerived(derived.InstanceIndex)
			byClass[derived.Class] = append(byClass[derived.Class], instanceEntry{ty: inst.Ty, location: derived.Location})
		}
	})
	for classID, entries := range byClass {
		class := c.prog.Classes.Get(classID)
		for i := 0; i < len(entries); i++ {
			for j := i + 1; j < len(entries); j++ {
				if types.BaseTypeOf(entries[i].ty) != types.BaseTypeOf(entries[j].ty) {
					continue
				}
				argMap1 := make(map[int]int)
				argMap2 := make(map[int]int)
				u := c.prog.Unifier()
				ty1 := types.Duplicate(entries[i].ty, argMap1, c.prog.Gen)
				ty2 := types.Duplicate(entries[j].ty, argMap2, c.prog.Gen)
				if u.Unify(ty1, ty2) == nil {
					c.err(diag.ConflictingInstances,
						[]source.LocationID{entries[i].location, entries[j].location},
						"conflicting instances of class %s", class.FullName())
				}
			}
		}
	}
}

// checkDerivedInstances verifies that every concrete item type of a
// derived typedef itself satisfies the derived class.
func (c *Checker) checkDerivedInstances() {
	c.prog.TypeDefs.Each(func(id types.TypeDefID, typedef ir.TypeDef) {
		check := func(class types.ClassID, ty types.Type, loc source.LocationID) {
			if !types.IsConcrete(ty) {
				return
			}
			var pending []types.PendingUnifier
			if !c.prog.InstanceResolver.CheckInstance(class, ty, loc, &pending) {
				class := c.prog.Classes.Get(class)
				c.err(diag.DeriveFailureNoInstanceFound, []source.LocationID{loc},
					"cannot derive %s: no instance for %s", class.Name, ty)
			}
		}
		if info, ok := c.prog.AdtTypeInfoMap[id]; ok {
			for _, derived := range info.DerivedClasses {
				for _, variant := range info.VariantTypes {
					for _, item := range variant.ItemTypes {
						check(derived.Class, item.Ty, item.Location)
					}
				}
			}
		}
		if info, ok := c.prog.RecordTypeInfoMap[id]; ok {
			for _, derived := range info.DerivedClasses {
				for _, field := range info.FieldTypes {
					check(derived.Class, field.Ty, field.Location)
				}
			}
		}
	})
}

// checkClassDependencies rejects cyclic superclass constraints.
func (c *Checker) checkClassDependencies() {
	superOf := make(map[types.ClassID][]types.ClassID)
	c.prog.Classes.Each(func(id types.ClassID, class *ir.Class) {
		if len(class.Members) == 0 {
			return
		}
		member := c.prog.ClassMembers.Get(class.Members[0])
		if sig, ok := c.prog.TypeSignatures.Get(member.ClassSignature).Signature.(*ir.SigTypeArg); ok {
			for _, constraint := range sig.Constraints {
				if constraint != id {
					superOf[id] = append(superOf[id], constraint)
				}
			}
		}
	})
	const (
		white = 0
		grey  = 1
		black = 2
	)
	state := make(map[types.ClassID]int)
	var visit func(id types.ClassID) bool
	visit = func(id types.ClassID) bool {
		switch state[id] {
		case grey:
			return false
		case black:
			return true
		}
		state[id] = grey
		for _, super := range superOf[id] {
			if !visit(super) {
				return false
			}
		}
		state[id] = black
		return true
	}
	c.prog.Classes.Each(func(id types.ClassID, class *ir.Class) {
		if !visit(id) {
			c.err(diag.CyclicClassDependencies, []source.LocationID{class.Location},
				"cyclic class dependencies involving %s", class.FullName())
		}
	})
}
