package resolve

import (
	"fmt"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/types"
)

// addExplicitTypeArgs registers a declared type-argument list, reporting
// duplicates.
func (r *Resolver) addExplicitTypeArgs(args []syntax.ArgInfo, resolver *typeArgResolver) {
	seen := make(map[string]bool)
	var conflicts []string
	var locs []source.LocationID
	for _, arg := range args {
		if seen[arg.Name] {
			conflicts = append(conflicts, arg.Name)
			locs = append(locs, arg.Location)
			continue
		}
		seen[arg.Name] = true
		resolver.add(arg.Name, nil, arg.Location)
	}
	if len(conflicts) > 0 {
		r.err(diag.TypeArgumentConflict, locs, "conflicting type arguments: %v", conflicts)
	}
}

func (r *Resolver) resolveDeriving(deriving []syntax.DerivingInfo, module *Module) []ir.DerivedClass {
	var out []ir.DerivedClass
	for _, entry := range deriving {
		derivable := false
		for _, name := range autoDerivableClasses {
			if entry.Name == name {
				derivable = true
				break
			}
		}
		classID, ok := r.lookupClass(module, entry.Name)
		if !ok || !derivable {
			r.err(diag.NotAClassName, []source.LocationID{entry.Location},
				"%s is not a derivable class", entry.Name)
			continue
		}
		out = append(out, ir.DerivedClass{Class: classID, Location: entry.Location})
	}
	return out
}

func (r *Resolver) typeArgIndices(resolver *typeArgResolver, args []syntax.ArgInfo) []int {
	indices := make([]int, 0, len(args))
	for _, arg := range args {
		if entry, ok := resolver.args[arg.Name]; ok {
			indices = append(indices, entry.index)
		}
	}
	return indices
}

func (r *Resolver) reportUnusedTypeArgs(resolver *typeArgResolver) {
	for _, name := range resolver.unused() {
		r.err(diag.UnusedTypeArgument, []source.LocationID{resolver.args[name].location},
			"type argument %s is not used", name)
	}
}

func (r *Resolver) resolveDataTypes(module *Module, decl *syntax.Module) {
	for _, record := range decl.Records {
		typedefID, _ := r.prog.NamedType(module.Name, record.Name)
		item := r.findItem(module, record.Name, ItemRecord)
		resolver := newTypeArgResolver(true, r.prog.Gen)
		r.addExplicitTypeArgs(record.TypeArgs, resolver)
		fields := make([]ir.RecordField, 0, len(record.Fields))
		argLocations := make([]source.LocationID, 0, len(record.Fields))
		for _, field := range record.Fields {
			sig := r.resolveTypeSignature(field.Signature, module, resolver)
			fields = append(fields, ir.RecordField{Name: field.Name, Signature: sig})
			argLocations = append(argLocations, field.Location)
		}
		if !record.External {
			r.reportUnusedTypeArgs(resolver)
		}
		r.prog.TypeDefs.Set(typedefID, &ir.Record{
			Module:         module.Name,
			Name:           record.Name,
			ID:             typedefID,
			TypeArgs:       r.typeArgIndices(resolver, record.TypeArgs),
			Fields:         fields,
			Constructor:    item.Function,
			External:       record.External,
			DerivedClasses: r.resolveDeriving(record.Deriving, module),
			Location:       record.Location,
		})
		r.prog.Functions.Set(item.Function, &ir.Function{
			ArgLocations: argLocations,
			Info:         &ir.RecordCtorInfo{TypeDef: typedefID},
		})
	}
	for _, adt := range decl.Adts {
		typedefID, _ := r.prog.NamedType(module.Name, adt.Name)
		resolver := newTypeArgResolver(true, r.prog.Gen)
		r.addExplicitTypeArgs(adt.TypeArgs, resolver)
		variants := make([]ir.Variant, 0, len(adt.Variants))
		for index, variant := range adt.Variants {
			items := make([]ir.TypeSignatureID, 0, len(variant.Items))
			argLocations := make([]source.LocationID, 0, len(variant.Items))
			for _, item := range variant.Items {
				argLocations = append(argLocations, r.src.TypeSignatures.Get(item).Location)
				items = append(items, r.resolveTypeSignature(item, module, resolver))
			}
			ctor := r.findVariantItem(module, adt.Name, variant.Name)
			variants = append(variants, ir.Variant{
				Name:        variant.Name,
				Items:       items,
				Constructor: ctor.Function,
				Location:    variant.Location,
			})
			r.prog.Functions.Set(ctor.Function, &ir.Function{
				ArgLocations: argLocations,
				Info:         &ir.VariantCtorInfo{TypeDef: typedefID, Index: index},
			})
		}
		r.reportUnusedTypeArgs(resolver)
		r.prog.TypeDefs.Set(typedefID, &ir.Adt{
			Module:         module.Name,
			Name:           adt.Name,
			ID:             typedefID,
			TypeArgs:       r.typeArgIndices(resolver, adt.TypeArgs),
			Variants:       variants,
			DerivedClasses: r.resolveDeriving(adt.Deriving, module),
			Location:       adt.Location,
		})
	}
}

func (r *Resolver) findItem(module *Module, name string, kind ItemKind) Item {
	for _, item := range module.Items[name] {
		if item.Kind == kind {
			return item
		}
	}
	panic(fmt.Sprintf("resolve: item %s of kind %d not registered in %s", name, kind, module.Name))
}

func (r *Resolver) findVariantItem(module *Module, adtName, variantName string) Item {
	for _, item := range module.Items[variantName] {
		if item.Kind == ItemVariant && r.groupNameOf(item) == adtName {
			return item
		}
	}
	panic(fmt.Sprintf("resolve: variant %s of %s not registered in %s", variantName, adtName, module.Name))
}

func (r *Resolver) resolveClasses(module *Module, decl *syntax.Module) {
	for _, class := range decl.Classes {
		classID := r.prog.ClassNames[module.Name+"."+class.Name]
		argResolver := newTypeArgResolver(true, r.prog.Gen)
		argResolver.add(class.Arg, []types.ClassID{classID}, class.Location)
		for _, constraint := range class.Constraints {
			superID, ok := r.lookupClass(module, constraint.ClassPath)
			if !ok {
				r.err(diag.NotAClassName, []source.LocationID{constraint.Location},
					"%s is not a class name", constraint.ClassPath)
				continue
			}
			if constraint.Arg != class.Arg {
				r.err(diag.InvalidArgumentInTypeClassConstraint, []source.LocationID{constraint.Location},
					"%s is not a valid argument in a type class constraint", constraint.Arg)
				continue
			}
			argResolver.addConstraint(class.Arg, superID)
		}
		classArgEntry := argResolver.args[class.Arg]
		classSig := r.prog.AddTypeSignature(&ir.SigTypeArg{
			Index:       classArgEntry.index,
			Name:        class.Arg,
			Constraints: classArgEntry.constraints,
		}, class.Location)

		defaults := make(map[string][]*syntax.FunctionDecl)
		for _, impl := range class.Defaults {
			defaults[impl.Name] = append(defaults[impl.Name], impl)
		}
		memberNames := make(map[string]bool)
		var members []types.ClassMemberID
		for _, sig := range class.MemberSigs {
			if memberNames[sig.Name] {
				continue
			}
			memberNames[sig.Name] = true
			memberID := r.findItemMember(module, class.Name, sig.Name)
			memberResolver := newTypeArgResolver(false, r.prog.Gen)
			memberResolver.args[class.Arg] = classArgEntry
			memberResolver.order = append(memberResolver.order, class.Arg)
			r.collectTypeArgs(sig.Signature, memberResolver)
			for _, constraint := range sig.Constraints {
				if constraint.Arg == class.Arg {
					r.err(diag.ExtraConstraintInClassMember, []source.LocationID{constraint.Location},
						"extra constraint on class argument %s in member %s", class.Arg, sig.Name)
					continue
				}
				extraID, ok := r.lookupClass(module, constraint.ClassPath)
				if !ok {
					r.err(diag.NotAClassName, []source.LocationID{constraint.Location},
						"%s is not a class name", constraint.ClassPath)
					continue
				}
				if !memberResolver.addConstraint(constraint.Arg, extraID) {
					r.err(diag.InvalidArgumentInTypeClassConstraint, []source.LocationID{constraint.Location},
						"%s is not a valid argument in a type class constraint", constraint.Arg)
				}
			}
			memberSig := r.resolveTypeSignature(sig.Signature, module, memberResolver)
			if !classArgEntry.used {
				r.err(diag.ClassMemberTypeArgMismatch, []source.LocationID{sig.Location},
					"member %s of class %s does not mention the class argument %s", sig.Name, class.Name, class.Arg)
			}
			classArgEntry.used = false

			defaultImpl := ir.NoFunction
			switch impls := defaults[sig.Name]; len(impls) {
			case 0:
			case 1:
				defaultImpl = r.addMemberFunction(module, impls[0], fmt.Sprintf("%s.%s", class.Name, sig.Name), memberSig)
			default:
				locs := make([]source.LocationID, len(impls))
				for i, impl := range impls {
					locs[i] = impl.Location
				}
				r.err(diag.ConflictingDefaultClassMember, locs,
					"conflicting default implementations for member %s of class %s", sig.Name, class.Name)
			}
			delete(defaults, sig.Name)

			r.prog.ClassMembers.Set(memberID, &ir.ClassMember{
				ID:             memberID,
				Class:          classID,
				Name:           sig.Name,
				ClassSignature: classSig,
				Signature:      memberSig,
				DefaultImpl:    defaultImpl,
				Location:       sig.Location,
			})
			members = append(members, memberID)
		}
		for _, impls := range defaults {
			for _, impl := range impls {
				r.err(diag.DefaultClassMemberWithoutType, []source.LocationID{impl.Location},
					"default class member %s of class %s has no type", impl.Name, class.Name)
			}
		}
		r.prog.Classes.Set(classID, &ir.Class{
			ID:       classID,
			Module:   module.Name,
			Name:     class.Name,
			Members:  members,
			Location: class.Location,
		})
	}
}

func (r *Resolver) findItemMember(module *Module, className, memberName string) types.ClassMemberID {
	for _, item := range module.Items[memberName] {
		if item.Kind == ItemClassMember {
			return item.ClassMember
		}
	}
	panic(fmt.Sprintf("resolve: class member %s of %s not registered", memberName, className))
}

// addMemberFunction creates the function carrying a default or instance
// member implementation and queues its body.
func (r *Resolver) addMemberFunction(module *Module, decl *syntax.FunctionDecl, displayName string, sig ir.TypeSignatureID) ir.FunctionID {
	fnID := r.prog.Functions.Allocate()
	info := &ir.NamedFunctionInfo{
		Module:    module.Name,
		Name:      displayName,
		Body:      ir.NoExpr,
		Signature: sig,
		IsMember:  true,
		Location:  decl.Location,
	}
	r.pendingBodies = append(r.pendingBodies, bodyWork{
		module:   module,
		function: fnID,
		decl:     decl,
		info:     info,
	})
	return fnID
}

// instanceTypeTag derives a stable short name for an instance type, used
// in the display names of its member functions.
func (r *Resolver) instanceTypeTag(id syntax.TypeSignatureID) string {
	switch sig := r.src.TypeSignatures.Get(id).Signature.(type) {
	case *syntax.TSNamed:
		return lastSegment(sig.Path)
	case *syntax.TSTuple:
		return "Tuple"
	case *syntax.TSFunction:
		return "Fn"
	default:
		return "_"
	}
}

func (r *Resolver) resolveInstances(module *Module, decl *syntax.Module) {
	for _, inst := range decl.Inst {
		classID, ok := r.lookupClass(module, inst.ClassPath)
		if !ok {
			r.err(diag.NotAClassName, []source.LocationID{inst.Location},
				"%s is not a class name", inst.ClassPath)
			continue
		}
		class := r.prog.Classes.Get(classID)
		argResolver := newTypeArgResolver(false, r.prog.Gen)
		r.collectTypeArgs(inst.Signature, argResolver)
		for _, constraint := range inst.Constraints {
			constraintClass, ok := r.lookupClass(module, constraint.ClassPath)
			if !ok {
				r.err(diag.NotAClassName, []source.LocationID{constraint.Location},
					"%s is not a class name", constraint.ClassPath)
				continue
			}
			if !argResolver.addConstraint(constraint.Arg, constraintClass) {
				r.err(diag.InvalidTypeArgInInstanceConstraint, []source.LocationID{constraint.Location},
					"%s is not a type argument of the instance type", constraint.Arg)
			}
		}
		sig := r.resolveTypeSignature(inst.Signature, module, argResolver)

		memberSigs := make(map[string]*syntax.FunctionSignatureDecl)
		for _, msig := range inst.MemberSigs {
			if existing, dup := memberSigs[msig.Name]; dup {
				r.err(diag.ConflictingFunctionTypesInInstance,
					[]source.LocationID{existing.Location, msig.Location},
					"member %s has multiple type declarations in instance", msig.Name)
				continue
			}
			memberSigs[msig.Name] = msig
		}

		instanceID := r.prog.Instances.Allocate()
		members := make(map[string]ir.InstanceMember)
		for _, memberFn := range inst.Members {
			memberID, ok := r.prog.MemberOf(classID, memberFn.Name)
			if !ok {
				r.err(diag.NotAClassMember, []source.LocationID{memberFn.Location},
					"%s is not a member of class %s", memberFn.Name, class.FullName())
				continue
			}
			if _, dup := members[memberFn.Name]; dup {
				r.err(diag.ConflictingInstanceMemberFunction, []source.LocationID{memberFn.Location},
					"member %s implemented multiple times in instance", memberFn.Name)
				continue
			}
			memberSig := ir.NoTypeSignature
			if msig, ok := memberSigs[memberFn.Name]; ok {
				sigResolver := newTypeArgResolver(false, r.prog.Gen)
				r.collectTypeArgs(msig.Signature, sigResolver)
				memberSig = r.resolveTypeSignature(msig.Signature, module, sigResolver)
				delete(memberSigs, memberFn.Name)
			}
			displayName := fmt.Sprintf("%s.%s.%s", class.Name, memberFn.Name, r.instanceTypeTag(inst.Signature))
			fnID := r.addMemberFunction(module, memberFn, displayName, memberSig)
			members[memberFn.Name] = ir.InstanceMember{ClassMember: memberID, Function: fnID}
		}
		for name, msig := range memberSigs {
			r.err(diag.InstanceMemberWithoutImplementation, []source.LocationID{msig.Location},
				"instance member %s has a type but no implementation", name)
		}
		for _, memberID := range class.Members {
			member := r.prog.ClassMembers.Get(memberID)
			if _, provided := members[member.Name]; !provided && member.DefaultImpl == ir.NoFunction {
				r.err(diag.MissingClassMemberInInstance, []source.LocationID{inst.Location},
					"member %s of class %s is missing from instance", member.Name, class.FullName())
			}
		}
		r.prog.Instances.Set(instanceID, &ir.Instance{
			ID:        instanceID,
			Class:     classID,
			Signature: sig,
			Members:   members,
			Location:  inst.Location,
		})
	}
}
