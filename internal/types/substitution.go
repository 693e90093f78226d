package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Unification failures. ErrRecursive is raised by the occurs check; every
// other mismatch is ErrFail.
var (
	ErrFail      = errors.New("unification failed")
	ErrRecursive = errors.New("recursive type")
)

// Constraint is one accumulated class obligation: ty must have an instance
// of Class.
type Constraint struct {
	Class ClassID
	Ty    Type
}

// Substitution maps variable indices to types and accumulates the class
// obligations recorded while binding constrained variables.
type Substitution struct {
	varMap      map[int]Type
	constraints map[ClassID][]Type
}

// NewSubstitution creates an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{
		varMap:      make(map[int]Type),
		constraints: make(map[ClassID][]Type),
	}
}

// IsEmpty reports whether no variable has been bound.
func (s *Substitution) IsEmpty() bool {
	return len(s.varMap) == 0
}

// AddConstraint records a class obligation for ty.
func (s *Substitution) AddConstraint(class ClassID, ty Type) {
	s.constraints[class] = append(s.constraints[class], ty)
}

// Add binds a variable index to ty. The occurs check rejects self
// references; a second binding of the same index must equal the first.
func (s *Substitution) Add(index int, ty Type) error {
	if Contains(ty, index) {
		return ErrRecursive
	}
	if stored, ok := s.varMap[index]; ok {
		if Equal(stored, ty) {
			return nil
		}
		return ErrFail
	}
	s.varMap[index] = ty
	return nil
}

// Apply substitutes bound variables in ty, chasing chains until fixpoint.
func (s *Substitution) Apply(ty Type) Type {
	switch ty := ty.(type) {
	case *Var:
		if bound, ok := s.varMap[ty.Index]; ok {
			return s.Apply(bound)
		}
		return ty
	case *FixedArg:
		if bound, ok := s.varMap[ty.Index]; ok {
			return s.Apply(bound)
		}
		return ty
	case *Func:
		return &Func{From: s.Apply(ty.From), To: s.Apply(ty.To)}
	case *Tuple:
		items := make([]Type, len(ty.Items))
		for i, item := range ty.Items {
			items[i] = s.Apply(item)
		}
		return &Tuple{Items: items}
	case *Named:
		args := make([]Type, len(ty.Args))
		for i, a := range ty.Args {
			args[i] = s.Apply(a)
		}
		return &Named{Name: ty.Name, ID: ty.ID, Args: args}
	}
	panic(fmt.Sprintf("types: unknown type %T", ty))
}

// Constraints returns the accumulated obligations in deterministic order.
func (s *Substitution) Constraints() []Constraint {
	classes := make([]int, 0, len(s.constraints))
	for class := range s.constraints {
		classes = append(classes, int(class))
	}
	sort.Ints(classes)
	var out []Constraint
	for _, class := range classes {
		for _, ty := range s.constraints[ClassID(class)] {
			out = append(out, Constraint{Class: ClassID(class), Ty: ty})
		}
	}
	return out
}

// Bindings returns the bound indices in ascending order.
func (s *Substitution) Bindings() []int {
	indices := make([]int, 0, len(s.varMap))
	for index := range s.varMap {
		indices = append(indices, index)
	}
	sort.Ints(indices)
	return indices
}

// Lookup returns the direct binding of index, if any.
func (s *Substitution) Lookup(index int) (Type, bool) {
	ty, ok := s.varMap[index]
	return ty, ok
}

// Key renders a canonical form of the substitution. Two substitutions that
// bind the same variables to equal types produce the same key.
func (s *Substitution) Key() string {
	indices := s.Bindings()
	parts := make([]string, len(indices))
	for i, index := range indices {
		parts[i] = fmt.Sprintf("%d=%s", index, Key(s.Apply(&Var{Index: index})))
	}
	return strings.Join(parts, ";")
}
