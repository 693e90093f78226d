package resolve

import (
	"sort"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/types"
)

// implicitModules are imported into every module without an import
// statement.
var implicitModules = []string{
	"Int", "Float", "String", "Bool", "Ordering", "Option", "Result",
	"List", "Iterator", "Std.Util.Basic", "Std.Ops",
}

// autoDerivableClasses is the closed set of classes a deriving list may
// name, in canonical order.
var autoDerivableClasses = []string{"PartialEq", "Eq", "PartialOrd", "Ord", "Show"}

// Resolver turns the parsed program into the resolved IR.
type Resolver struct {
	src    *syntax.Program
	prog   *ir.Program
	errors *diag.Bag

	modules     map[string]*Module
	moduleDecls map[string]*syntax.Module
	recordDecls map[types.TypeDefID]*syntax.RecordDecl
	adtDecls    map[types.TypeDefID]*syntax.AdtDecl

	pendingBodies []bodyWork
}

type bodyWork struct {
	module   *Module
	function ir.FunctionID
	decl     *syntax.FunctionDecl
	// info is pre-built for class default and instance member functions;
	// nil for plain module functions, whose signature comes from sigDecl.
	info    *ir.NamedFunctionInfo
	sigDecl *syntax.FunctionSignatureDecl
}

// Resolve runs name resolution over a parsed program. The returned
// program is only meaningful when the error bag stays empty.
func Resolve(src *syntax.Program, errors *diag.Bag) *ir.Program {
	r := &Resolver{
		src:         src,
		prog:        ir.NewProgram(),
		errors:      errors,
		modules:     make(map[string]*Module),
		moduleDecls: make(map[string]*syntax.Module),
		recordDecls: make(map[types.TypeDefID]*syntax.RecordDecl),
		adtDecls:    make(map[types.TypeDefID]*syntax.AdtDecl),
	}
	r.registerModules()
	if errors.HasErrors() {
		return r.prog
	}
	for _, name := range r.moduleNames() {
		r.registerItems(r.modules[name], r.moduleDecls[name])
	}
	for _, name := range r.moduleNames() {
		r.processExports(r.modules[name], r.moduleDecls[name])
	}
	for _, name := range r.moduleNames() {
		r.processImports(r.modules[name], r.moduleDecls[name])
	}
	for _, name := range r.moduleNames() {
		r.resolveDataTypes(r.modules[name], r.moduleDecls[name])
	}
	for _, name := range r.moduleNames() {
		r.resolveClasses(r.modules[name], r.moduleDecls[name])
	}
	for _, name := range r.moduleNames() {
		r.resolveInstances(r.modules[name], r.moduleDecls[name])
	}
	r.resolveBodies()
	return r.prog
}

func (r *Resolver) err(kind diag.Kind, locs []source.LocationID, format string, args ...interface{}) {
	r.errors.Add(diag.New(diag.PhaseResolve, kind, locs, format, args...))
}

func (r *Resolver) moduleNames() []string {
	names := make([]string, 0, len(r.modules))
	for name := range r.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Resolver) registerModules() {
	locations := make(map[string][]source.LocationID)
	for _, decl := range r.src.Modules {
		locations[decl.Name] = append(locations[decl.Name], decl.Location)
	}
	for _, decl := range r.src.Modules {
		if len(locations[decl.Name]) > 1 {
			continue
		}
		r.modules[decl.Name] = newModule(decl.ID, decl.Name, decl.Location)
		r.moduleDecls[decl.Name] = decl
	}
	names := make([]string, 0, len(locations))
	for name := range locations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if len(locations[name]) > 1 {
			r.err(diag.ModuleConflict, locations[name], "module %s is defined %d times", name, len(locations[name]))
		}
	}
}

// registerItems allocates identifiers for every item of a module and
// indexes them by name. Payloads are filled in by later phases once
// imports are available for signature resolution.
func (r *Resolver) registerItems(module *Module, decl *syntax.Module) {
	for _, record := range decl.Records {
		typedefID := r.prog.TypeDefs.Allocate()
		ctorID := r.prog.Functions.Allocate()
		r.recordDecls[typedefID] = record
		r.prog.RegisterNamedType(module.Name, record.Name, typedefID)
		module.addItem(record.Name, Item{Kind: ItemRecord, TypeDef: typedefID, Function: ctorID, Location: record.Location})
		seen := make(map[string]bool)
		for index, field := range record.Fields {
			if seen[field.Name] {
				r.err(diag.RecordFieldNotUnique, []source.LocationID{field.Location},
					"field %s of record %s is not unique", field.Name, record.Name)
				continue
			}
			seen[field.Name] = true
			module.addMember(field.Name, DataMember{
				IsField:    true,
				TypeDef:    typedefID,
				Index:      index,
				Name:       field.Name,
				GroupName:  record.Name,
				MemberName: field.Name,
			})
		}
	}
	for _, adt := range decl.Adts {
		typedefID := r.prog.TypeDefs.Allocate()
		r.adtDecls[typedefID] = adt
		r.prog.RegisterNamedType(module.Name, adt.Name, typedefID)
		module.addItem(adt.Name, Item{Kind: ItemAdt, TypeDef: typedefID, Location: adt.Location})
		seen := make(map[string]bool)
		for index, variant := range adt.Variants {
			if seen[variant.Name] {
				r.err(diag.VariantNotUnique, []source.LocationID{variant.Location},
					"variant %s of type %s is not unique", variant.Name, adt.Name)
				continue
			}
			seen[variant.Name] = true
			ctorID := r.prog.Functions.Allocate()
			module.addItem(variant.Name, Item{
				Kind:         ItemVariant,
				TypeDef:      typedefID,
				VariantIndex: index,
				Function:     ctorID,
				Location:     variant.Location,
			})
			module.addMember(variant.Name, DataMember{
				TypeDef:    typedefID,
				Index:      index,
				Name:       variant.Name,
				GroupName:  adt.Name,
				MemberName: variant.Name,
			})
		}
	}
	for _, class := range decl.Classes {
		classID := r.prog.Classes.Allocate()
		r.prog.ClassNames[module.Name+"."+class.Name] = classID
		module.addItem(class.Name, Item{Kind: ItemClass, Class: classID, Location: class.Location})
		memberSeen := make(map[string]source.LocationID)
		for _, sig := range class.MemberSigs {
			if _, dup := memberSeen[sig.Name]; dup {
				r.err(diag.InternalModuleConflicts, []source.LocationID{sig.Location},
					"class member %s of %s is declared multiple times", sig.Name, class.Name)
				continue
			}
			memberSeen[sig.Name] = sig.Location
			memberID := r.prog.ClassMembers.Allocate()
			module.addItem(sig.Name, Item{
				Kind:        ItemClassMember,
				Class:       classID,
				ClassMember: memberID,
				Location:    sig.Location,
			})
		}
	}
	// Function signatures and implementations pair by name.
	sigs := make(map[string]*syntax.FunctionSignatureDecl)
	for _, sig := range decl.FuncSigs {
		if existing, dup := sigs[sig.Name]; dup {
			r.err(diag.ConflictingFunctionTypesInModule,
				[]source.LocationID{existing.Location, sig.Location},
				"function %s of module %s has multiple type declarations", sig.Name, module.Name)
			continue
		}
		sigs[sig.Name] = sig
	}
	funcLocations := make(map[string][]source.LocationID)
	for _, fn := range decl.Funcs {
		funcLocations[fn.Name] = append(funcLocations[fn.Name], fn.Location)
	}
	seenFuncs := make(map[string]bool)
	for _, fn := range decl.Funcs {
		if seenFuncs[fn.Name] {
			continue
		}
		seenFuncs[fn.Name] = true
		if len(funcLocations[fn.Name]) > 1 {
			r.err(diag.InternalModuleConflicts, funcLocations[fn.Name],
				"item %s of module %s is defined %d times", fn.Name, module.Name, len(funcLocations[fn.Name]))
			continue
		}
		fnID := r.prog.Functions.Allocate()
		module.addItem(fn.Name, Item{Kind: ItemFunction, Function: fnID, Location: fn.Location})
		r.prog.NamedFunctions[module.Name+"."+fn.Name] = fnID
		r.pendingBodies = append(r.pendingBodies, bodyWork{
			module:   module,
			function: fnID,
			decl:     fn,
			sigDecl:  sigs[fn.Name],
		})
		delete(sigs, fn.Name)
	}
	sigNames := make([]string, 0, len(sigs))
	for name := range sigs {
		sigNames = append(sigNames, name)
	}
	sort.Strings(sigNames)
	for _, name := range sigNames {
		r.err(diag.FunctionTypeWithoutImplementationInModule,
			[]source.LocationID{sigs[name].Location},
			"function %s of module %s has a type but no implementation", name, module.Name)
	}
	// Cross-kind collisions inside the module.
	itemNames := make([]string, 0, len(module.Items))
	for name := range module.Items {
		itemNames = append(itemNames, name)
	}
	sort.Strings(itemNames)
	for _, name := range itemNames {
		items := module.Items[name]
		if len(items) < 2 {
			continue
		}
		if _, _, ok := isAdtVariantPair(items); ok {
			continue
		}
		locs := make([]source.LocationID, len(items))
		for i, item := range items {
			locs[i] = item.Location
		}
		r.err(diag.InternalModuleConflicts, locs,
			"item %s of module %s is defined %d times", name, module.Name, len(items))
	}
}

func (r *Resolver) groupNameOf(item Item) string {
	if adt, ok := r.adtDecls[item.TypeDef]; ok {
		return adt.Name
	}
	if record, ok := r.recordDecls[item.TypeDef]; ok {
		return record.Name
	}
	return ""
}

func (r *Resolver) processExports(module *Module, decl *syntax.Module) {
	itemPatterns, memberPatterns := processPatterns(decl.Export)
	matchedItems := make(map[string][]Item)
	matchedMembers := make(map[string][]DataMember)
	for _, name := range sortedItemNames(module.Items) {
		for _, item := range module.Items[name] {
			checkItem(itemPatterns, memberPatterns, name, item, r.groupNameOf, matchedItems)
		}
	}
	for _, name := range sortedMemberNames(module.Members) {
		for _, member := range module.Members[name] {
			checkMember(memberPatterns, name, member, matchedMembers)
		}
	}
	for _, pattern := range itemPatterns {
		if !pattern.implicit && !pattern.matched {
			r.err(diag.ExportNoMatch, []source.LocationID{pattern.location},
				"exported item %s of module %s does not match anything", pattern.name, module.Name)
		}
	}
	for _, pattern := range memberPatterns {
		if !pattern.implicit && !pattern.matched {
			name := pattern.name
			if pattern.all {
				name = ".."
			}
			r.err(diag.ExportNoMatch, []source.LocationID{pattern.location},
				"exported member %s of group %s in module %s does not match anything", name, pattern.groupName, module.Name)
		}
	}
	module.ExportedItems = matchedItems
	module.ExportedMembers = matchedMembers
}

func sortedItemNames(m map[string][]Item) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedMemberNames(m map[string][]DataMember) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sameItem(a, b Item) bool {
	return a.Kind == b.Kind && a.Function == b.Function && a.TypeDef == b.TypeDef &&
		a.VariantIndex == b.VariantIndex && a.Class == b.Class && a.ClassMember == b.ClassMember
}

func (r *Resolver) importItem(module *Module, name string, item Item, sourceModule string) {
	for _, existing := range module.ImportedItems[name] {
		if sameItem(existing.Item, item) {
			return
		}
	}
	module.ImportedItems[name] = append(module.ImportedItems[name], ImportedItem{Item: item, SourceModule: sourceModule})
}

func (r *Resolver) importMember(module *Module, name string, member DataMember, sourceModule string) {
	for _, existing := range module.ImportedMembers[name] {
		if existing.Member == member {
			return
		}
	}
	module.ImportedMembers[name] = append(module.ImportedMembers[name], ImportedMember{Member: member, SourceModule: sourceModule})
}

// importAll imports every exported item of src under its plain name and
// its qualified name.
func (r *Resolver) importAll(module *Module, src *Module, qualifier string) {
	for _, name := range sortedItemNames(src.ExportedItems) {
		for _, item := range src.ExportedItems[name] {
			r.importItem(module, name, item, src.Name)
			r.importItem(module, qualifier+"."+name, item, src.Name)
		}
	}
	for _, name := range sortedMemberNames(src.ExportedMembers) {
		for _, member := range src.ExportedMembers[name] {
			r.importMember(module, name, member, src.Name)
		}
	}
}

func (r *Resolver) processImports(module *Module, decl *syntax.Module) {
	// A module sees its own items, qualified and unqualified.
	for _, name := range sortedItemNames(module.Items) {
		for _, item := range module.Items[name] {
			r.importItem(module, name, item, module.Name)
			r.importItem(module, module.Name+"."+name, item, module.Name)
		}
	}
	for _, name := range sortedMemberNames(module.Members) {
		for _, member := range module.Members[name] {
			r.importMember(module, name, member, module.Name)
		}
	}
	for _, implicit := range implicitModules {
		if implicit == module.Name {
			continue
		}
		if src, ok := r.modules[implicit]; ok {
			r.importAll(module, src, implicit)
		}
	}
	for i := range decl.Imports {
		imp := &decl.Imports[i]
		src, ok := r.modules[imp.ModuleName]
		if !ok {
			r.err(diag.ImportedModuleNotFound, []source.LocationID{imp.Location},
				"imported module %s does not exist", imp.ModuleName)
			continue
		}
		qualifier := imp.ModuleName
		if imp.Alias != "" {
			qualifier = imp.Alias
		}
		itemPatterns, memberPatterns := processPatterns(imp.List)
		matchedItems := make(map[string][]Item)
		matchedMembers := make(map[string][]DataMember)
		for _, name := range sortedItemNames(src.ExportedItems) {
			for _, item := range src.ExportedItems[name] {
				checkItem(itemPatterns, memberPatterns, name, item, r.groupNameOf, matchedItems)
			}
		}
		for _, name := range sortedMemberNames(src.ExportedMembers) {
			for _, member := range src.ExportedMembers[name] {
				checkMember(memberPatterns, name, member, matchedMembers)
			}
		}
		if imp.Hiding {
			for _, pattern := range itemPatterns {
				if !pattern.implicit && !pattern.matched {
					r.err(diag.UnusedHiddenItem, []source.LocationID{pattern.location},
						"hidden item %s does not exist in module %s", pattern.name, imp.ModuleName)
				}
			}
			for _, name := range sortedItemNames(src.ExportedItems) {
				if _, hidden := matchedItems[name]; hidden {
					continue
				}
				for _, item := range src.ExportedItems[name] {
					r.importItem(module, name, item, src.Name)
					r.importItem(module, qualifier+"."+name, item, src.Name)
				}
			}
			for _, name := range sortedMemberNames(src.ExportedMembers) {
				for _, member := range src.ExportedMembers[name] {
					r.importMember(module, name, member, src.Name)
				}
			}
			continue
		}
		for _, pattern := range itemPatterns {
			if !pattern.implicit && !pattern.matched {
				r.err(diag.ImportNoMatch, []source.LocationID{pattern.location},
					"imported item %s does not match anything in module %s", pattern.name, imp.ModuleName)
			}
		}
		for _, pattern := range memberPatterns {
			if !pattern.implicit && !pattern.matched {
				name := pattern.name
				if pattern.all {
					name = ".."
				}
				r.err(diag.ImportNoMatch, []source.LocationID{pattern.location},
					"imported member %s of group %s does not match anything in module %s", name, pattern.groupName, imp.ModuleName)
			}
		}
		for _, name := range sortedItemNames(matchedItems) {
			for _, item := range matchedItems[name] {
				r.importItem(module, name, item, src.Name)
				r.importItem(module, qualifier+"."+name, item, src.Name)
			}
		}
		for _, name := range sortedMemberNames(matchedMembers) {
			for _, member := range matchedMembers[name] {
				r.importMember(module, name, member, src.Name)
			}
		}
	}
}
