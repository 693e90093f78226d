package types

import (
	"fmt"

	"github.com/sunholo/skiff/internal/source"
)

// ResolutionKind says whether a probe hit a user-defined or an
// auto-derived instance.
type ResolutionKind int

const (
	ResolvedUserDefined ResolutionKind = iota
	ResolvedAutoDerived
)

// Resolution is the memoised outcome of resolving a concrete type against
// a class.
type Resolution struct {
	Kind     ResolutionKind
	Instance InstanceID
}

// AutoDerivedInstance is a synthetic instance registered by the derive
// planner. Its type must be fully generic over the typedef's parameters.
type AutoDerivedInstance struct {
	Ty       Type
	Location source.LocationID
}

// InstanceInfo is one entry of the instance index: either a user-defined
// instance or a slot into the auto-derived table.
type InstanceInfo struct {
	Auto      bool
	AutoIndex int
	Ty        Type
	Instance  InstanceID
	Location  source.LocationID
}

// PendingUnifier is a substitution produced while discharging a class
// constraint, to be applied back to the inference state, with the location
// responsible for it.
type PendingUnifier struct {
	Unifier  *Unifier
	Location source.LocationID
}

type cacheKey struct {
	class ClassID
	ty    string
}

// InstanceResolver indexes user and auto-derived instances by class and
// base-type head, resolves concrete types to the unique matching instance
// and memoises concrete resolutions.
type InstanceResolver struct {
	instanceMap map[ClassID]map[BaseType][]InstanceInfo
	autoDerived []AutoDerivedInstance
	cache       map[cacheKey]Resolution
	gen         *VarGen
}

// NewInstanceResolver creates an empty resolver sharing the program's
// variable generator.
func NewInstanceResolver(gen *VarGen) *InstanceResolver {
	return &InstanceResolver{
		instanceMap: make(map[ClassID]map[BaseType][]InstanceInfo),
		cache:       make(map[cacheKey]Resolution),
		gen:         gen,
	}
}

func (r *InstanceResolver) bucket(class ClassID, base BaseType) []InstanceInfo {
	if byBase, ok := r.instanceMap[class]; ok {
		return byBase[base]
	}
	return nil
}

func (r *InstanceResolver) addInfo(class ClassID, base BaseType, info InstanceInfo) {
	byBase, ok := r.instanceMap[class]
	if !ok {
		byBase = make(map[BaseType][]InstanceInfo)
		r.instanceMap[class] = byBase
	}
	byBase[base] = append(byBase[base], info)
}

// AddUserDefined registers a user instance under its base-type head.
func (r *InstanceResolver) AddUserDefined(class ClassID, instanceTy Type, instance InstanceID, loc source.LocationID) {
	r.addInfo(class, BaseTypeOf(instanceTy), InstanceInfo{
		Ty:       instanceTy,
		Instance: instance,
		Location: loc,
	})
}

// AddAutoDerived registers a synthetic instance and returns its slot.
func (r *InstanceResolver) AddAutoDerived(class ClassID, instanceTy Type, loc source.LocationID) int {
	index := len(r.autoDerived)
	r.autoDerived = append(r.autoDerived, AutoDerivedInstance{Ty: instanceTy, Location: loc})
	r.addInfo(class, BaseTypeOf(instanceTy), InstanceInfo{
		Auto:      true,
		AutoIndex: index,
		Location:  loc,
	})
	return index
}

// AutoDerived returns the synthetic instance at slot index.
func (r *InstanceResolver) AutoDerived(index int) AutoDerivedInstance {
	return r.autoDerived[index]
}

// UpdateAutoDerived replaces the synthetic instance at slot index.
func (r *InstanceResolver) UpdateAutoDerived(index int, inst AutoDerivedInstance) {
	r.autoDerived[index] = inst
}

// InstancesOf returns all entries of class bucketed under the base type.
func (r *InstanceResolver) InstancesOf(class ClassID, base BaseType) []InstanceInfo {
	return r.bucket(class, base)
}

// InfoType returns the instance type of an index entry.
func (r *InstanceResolver) InfoType(info InstanceInfo) Type {
	if info.Auto {
		return r.autoDerived[info.AutoIndex].Ty
	}
	return info.Ty
}

// InfoLocation returns the declaration location of an index entry.
func (r *InstanceResolver) InfoLocation(info InstanceInfo) source.LocationID {
	if info.Auto {
		return r.autoDerived[info.AutoIndex].Location
	}
	return info.Location
}

// HasInstance probes the index for an instance of class matching ty. On
// success it returns the unifier of ty against the instance type and
// memoises concrete resolutions.
func (r *InstanceResolver) HasInstance(ty Type, class ClassID) (*Unifier, bool) {
	for _, info := range r.bucket(class, BaseTypeOf(ty)) {
		unifier := NewUnifier(r.gen)
		if err := unifier.Unify(ty, r.InfoType(info)); err != nil {
			continue
		}
		if IsConcrete(ty) {
			result := Resolution{Kind: ResolvedUserDefined, Instance: info.Instance}
			if info.Auto {
				result = Resolution{Kind: ResolvedAutoDerived}
			}
			r.cache[cacheKey{class: class, ty: Key(ty)}] = result
		}
		return unifier, true
	}
	return nil, false
}

// CheckInstance verifies that ty can satisfy class. A type variable that
// does not yet carry the constraint is rebound to a fresh variable whose
// constraint set includes it; the rebinding is appended to pending so the
// caller can apply it back to the inference state. A concrete type is
// probed against the index, recursing into the secondary constraints the
// match produces.
func (r *InstanceResolver) CheckInstance(class ClassID, ty Type, loc source.LocationID, pending *[]PendingUnifier) bool {
	if fixed, ok := ty.(*FixedArg); ok {
		// Rigid args cannot gain constraints; the declared list decides.
		for _, c := range fixed.Constraints {
			if c == class {
				return true
			}
		}
		return false
	}
	if v, ok := ty.(*Var); ok {
		for _, c := range v.Constraints {
			if c == class {
				return true
			}
		}
		constrained := r.gen.NewVarWith(mergeConstraints(v.Constraints, []ClassID{class}))
		unifier := NewUnifier(r.gen)
		if err := unifier.Unify(ty, constrained); err != nil {
			panic(fmt.Sprintf("types: constraining a free variable failed: %v", err))
		}
		*pending = append(*pending, PendingUnifier{Unifier: unifier, Location: loc})
		return true
	}
	unifier, ok := r.HasInstance(ty, class)
	if !ok {
		return false
	}
	for _, constraint := range unifier.Substitution().Constraints() {
		if !r.CheckInstance(constraint.Class, constraint.Ty, loc, pending) {
			return false
		}
	}
	return true
}

// Get returns the memoised resolution for a concrete type, probing the
// index first if needed. It must only be called for types CheckInstance
// accepted.
func (r *InstanceResolver) Get(class ClassID, ty Type) Resolution {
	key := cacheKey{class: class, ty: Key(ty)}
	if result, ok := r.cache[key]; ok {
		return result
	}
	if _, ok := r.HasInstance(ty, class); !ok {
		panic(fmt.Sprintf("types: no instance of class #%d for %s", int(class), ty))
	}
	result, ok := r.cache[key]
	if !ok {
		panic(fmt.Sprintf("types: resolution of %s was not cached", ty))
	}
	return result
}
