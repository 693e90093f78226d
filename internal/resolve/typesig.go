package resolve

import (
	"sort"
	"strings"
	"unicode"

	"github.com/sunholo/skiff/internal/diag"
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/types"
)

// typeArgEntry is one known type argument during signature resolution.
type typeArgEntry struct {
	index       int
	constraints []types.ClassID
	used        bool
	location    source.LocationID
}

// typeArgResolver maps type-argument names to indices. In explicit mode
// (data definitions) only declared names resolve; in collecting mode
// (function and instance signatures) unknown lowercase names are added on
// first use.
type typeArgResolver struct {
	explicit bool
	args     map[string]*typeArgEntry
	order    []string
	gen      *types.VarGen
}

func newTypeArgResolver(explicit bool, gen *types.VarGen) *typeArgResolver {
	return &typeArgResolver{
		explicit: explicit,
		args:     make(map[string]*typeArgEntry),
		gen:      gen,
	}
}

func (t *typeArgResolver) add(name string, constraints []types.ClassID, loc source.LocationID) *typeArgEntry {
	entry := &typeArgEntry{
		index:       t.gen.NewIndex(),
		constraints: constraints,
		location:    loc,
	}
	t.args[name] = entry
	t.order = append(t.order, name)
	return entry
}

func (t *typeArgResolver) lookup(name string, loc source.LocationID) (*typeArgEntry, bool) {
	if entry, ok := t.args[name]; ok {
		entry.used = true
		return entry, true
	}
	if t.explicit {
		return nil, false
	}
	entry := t.add(name, nil, loc)
	entry.used = true
	return entry, true
}

// addConstraint attaches a class constraint to a named arg, reporting
// whether the arg exists.
func (t *typeArgResolver) addConstraint(name string, class types.ClassID) bool {
	entry, ok := t.args[name]
	if !ok {
		return false
	}
	entry.constraints = append(entry.constraints, class)
	sort.Slice(entry.constraints, func(i, j int) bool { return entry.constraints[i] < entry.constraints[j] })
	return true
}

func (t *typeArgResolver) unused() []string {
	var out []string
	for _, name := range t.order {
		if !t.args[name].used {
			out = append(out, name)
		}
	}
	return out
}

func lastSegment(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isTypeArgName(path string) bool {
	if strings.Contains(path, ".") {
		return false
	}
	for _, r := range path {
		return unicode.IsLower(r) || r == '_'
	}
	return false
}

// typeArgCount returns the declared type-argument count of a typedef.
func (r *Resolver) typeArgCount(id types.TypeDefID) int {
	if record, ok := r.recordDecls[id]; ok {
		return len(record.TypeArgs)
	}
	if adt, ok := r.adtDecls[id]; ok {
		return len(adt.TypeArgs)
	}
	return 0
}

// resolveTypeSignature resolves one surface signature against a module's
// imports and a type-arg resolver, interning the result.
func (r *Resolver) resolveTypeSignature(id syntax.TypeSignatureID, module *Module, args *typeArgResolver) ir.TypeSignatureID {
	info := r.src.TypeSignatures.Get(id)
	loc := info.Location
	switch sig := info.Signature.(type) {
	case *syntax.TSWildcard:
		return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
	case *syntax.TSTuple:
		items := make([]ir.TypeSignatureID, len(sig.Items))
		for i, item := range sig.Items {
			items[i] = r.resolveTypeSignature(item, module, args)
		}
		return r.prog.AddTypeSignature(&ir.SigTuple{Items: items}, loc)
	case *syntax.TSFunction:
		from := r.resolveTypeSignature(sig.From, module, args)
		to := r.resolveTypeSignature(sig.To, module, args)
		return r.prog.AddTypeSignature(&ir.SigFunction{From: from, To: to}, loc)
	case *syntax.TSNamed:
		if isTypeArgName(sig.Path) {
			if len(sig.Args) != 0 {
				r.err(diag.IncorrectTypeArgumentCount, []source.LocationID{loc},
					"type argument %s cannot take arguments", sig.Path)
				return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
			}
			entry, ok := args.lookup(sig.Path, loc)
			if !ok {
				r.err(diag.UnknownTypeArg, []source.LocationID{loc}, "unknown type argument %s", sig.Path)
				return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
			}
			return r.prog.AddTypeSignature(&ir.SigTypeArg{
				Index:       entry.index,
				Name:        sig.Path,
				Constraints: entry.constraints,
			}, loc)
		}
		item, ok := r.lookupTypeItem(module, sig.Path)
		if !ok {
			r.err(diag.UnknownTypeName, []source.LocationID{loc}, "unknown type name %s", sig.Path)
			return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
		}
		switch item.Kind {
		case ItemRecord, ItemAdt:
			expected := r.typeArgCount(item.TypeDef)
			if expected != len(sig.Args) {
				r.err(diag.IncorrectTypeArgumentCount, []source.LocationID{loc},
					"type %s expects %d type arguments, found %d", sig.Path, expected, len(sig.Args))
				return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
			}
			resolved := make([]ir.TypeSignatureID, len(sig.Args))
			for i, arg := range sig.Args {
				resolved[i] = r.resolveTypeSignature(arg, module, args)
			}
			return r.prog.AddTypeSignature(&ir.SigNamed{
				Name: r.typeDefName(item.TypeDef),
				ID:   item.TypeDef,
				Args: resolved,
			}, loc)
		default:
			r.err(diag.NameNotType, []source.LocationID{loc}, "%s is not a type", sig.Path)
			return r.prog.AddTypeSignature(&ir.SigWildcard{}, loc)
		}
	}
	panic("resolve: unknown surface type signature")
}

func (r *Resolver) typeDefName(id types.TypeDefID) string {
	if record, ok := r.recordDecls[id]; ok {
		return record.Name
	}
	if adt, ok := r.adtDecls[id]; ok {
		return adt.Name
	}
	return ""
}

// lookupTypeItem finds the type-level meaning of a path: records and
// ADTs; the ADT wins over a same-named variant.
func (r *Resolver) lookupTypeItem(module *Module, path string) (Item, bool) {
	entries := module.ImportedItems[path]
	if len(entries) == 0 {
		return Item{}, false
	}
	if len(entries) == 1 {
		return entries[0].Item, true
	}
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = entry.Item
	}
	if _, adt, ok := isAdtVariantPair(items); ok {
		return adt, true
	}
	return Item{}, false
}

// resolveConstraintClasses resolves a surface constraint list and applies
// each constraint to the named type argument.
func (r *Resolver) resolveConstraintClasses(constraints []syntax.ClassConstraint, module *Module, args *typeArgResolver, invalidArgKind diag.Kind) {
	for _, constraint := range constraints {
		classID, ok := r.lookupClass(module, constraint.ClassPath)
		if !ok {
			r.err(diag.NotAClassName, []source.LocationID{constraint.Location},
				"%s is not a class name", constraint.ClassPath)
			continue
		}
		if !args.addConstraint(constraint.Arg, classID) {
			r.err(invalidArgKind, []source.LocationID{constraint.Location},
				"%s is not a valid argument in a type class constraint", constraint.Arg)
		}
	}
}

// collectTypeArgs pre-registers every lowercase name of a surface
// signature so constraints can attach before resolution.
func (r *Resolver) collectTypeArgs(id syntax.TypeSignatureID, args *typeArgResolver) {
	info := r.src.TypeSignatures.Get(id)
	switch sig := info.Signature.(type) {
	case *syntax.TSNamed:
		if isTypeArgName(sig.Path) && len(sig.Args) == 0 {
			if _, ok := args.args[sig.Path]; !ok {
				args.add(sig.Path, nil, info.Location)
			}
			return
		}
		for _, arg := range sig.Args {
			r.collectTypeArgs(arg, args)
		}
	case *syntax.TSTuple:
		for _, item := range sig.Items {
			r.collectTypeArgs(item, args)
		}
	case *syntax.TSFunction:
		r.collectTypeArgs(sig.From, args)
		r.collectTypeArgs(sig.To, args)
	case *syntax.TSWildcard:
	}
}

func (r *Resolver) lookupClass(module *Module, path string) (types.ClassID, bool) {
	for _, entry := range module.ImportedItems[path] {
		if entry.Item.Kind == ItemClass {
			return entry.Item.Class, true
		}
	}
	return 0, false
}
