// Package types holds the ground type algebra shared by the type checker
// and the monomorphiser: type variables with class-constraint lists, rigid
// type parameters, named typedefs, tuples and functions, plus the
// substitution machinery and the instance resolver built on top of it.
package types

import (
	"fmt"
	"sort"
	"strings"
)

// TypeDefID identifies a record or ADT definition in the resolved IR.
type TypeDefID int

// ClassID identifies a type class.
type ClassID int

// ClassMemberID identifies a member of a type class.
type ClassMemberID int

// InstanceID identifies a user-defined instance.
type InstanceID int

// Type is the type algebra. A value is one of *Var, *FixedArg, *Named,
// *Tuple or *Func.
type Type interface {
	typeNode()
	String() string
}

// Var is a unification variable carrying accumulated class constraints.
type Var struct {
	Index       int
	Constraints []ClassID
}

// FixedArg is a rigid type parameter of a polymorphic definition. Two
// distinct fixed args never unify unless their indices match; RemoveFixed
// turns them back into ordinary variables at instantiation sites.
type FixedArg struct {
	Name        string
	Index       int
	Constraints []ClassID
}

// Named is a reference to a typedef, fully applied to its arguments.
type Named struct {
	Name string
	ID   TypeDefID
	Args []Type
}

// Tuple is a structural tuple type.
type Tuple struct {
	Items []Type
}

// Func is a single-argument function type; multi-argument functions are
// right-nested chains.
type Func struct {
	From Type
	To   Type
}

func (*Var) typeNode()      {}
func (*FixedArg) typeNode() {}
func (*Named) typeNode()    {}
func (*Tuple) typeNode()    {}
func (*Func) typeNode()     {}

func constraintSuffix(constraints []ClassID) string {
	if len(constraints) == 0 {
		return ""
	}
	parts := make([]string, len(constraints))
	for i, c := range constraints {
		parts[i] = fmt.Sprintf("#%d", int(c))
	}
	return "/" + strings.Join(parts, ",")
}

func (t *Var) String() string {
	return fmt.Sprintf("$%d%s", t.Index, constraintSuffix(t.Constraints))
}

func (t *FixedArg) String() string {
	return fmt.Sprintf("f$%d%s", t.Index, constraintSuffix(t.Constraints))
}

func (t *Named) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s (%s)", t.Name, strings.Join(parts, " "))
}

func (t *Tuple) String() string {
	parts := make([]string, len(t.Items))
	for i, item := range t.Items {
		parts[i] = item.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

func (t *Func) String() string {
	return fmt.Sprintf("%s -> %s", t.From, t.To)
}

// Key returns a canonical rendering usable as a map key. Unlike String it
// includes typedef ids so that distinct types never collide.
func Key(t Type) string {
	switch t := t.(type) {
	case *Var:
		return fmt.Sprintf("$%d%s", t.Index, constraintSuffix(t.Constraints))
	case *FixedArg:
		return fmt.Sprintf("f$%d%s", t.Index, constraintSuffix(t.Constraints))
	case *Named:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = Key(a)
		}
		return fmt.Sprintf("N%d(%s)", int(t.ID), strings.Join(parts, ","))
	case *Tuple:
		parts := make([]string, len(t.Items))
		for i, item := range t.Items {
			parts[i] = Key(item)
		}
		return fmt.Sprintf("T(%s)", strings.Join(parts, ","))
	case *Func:
		return fmt.Sprintf("F(%s,%s)", Key(t.From), Key(t.To))
	}
	panic(fmt.Sprintf("types: unknown type %T", t))
}

// Equal reports structural equality, including constraint lists.
func Equal(t1, t2 Type) bool {
	return Key(t1) == Key(t2)
}

// Contains reports whether the variable (or fixed arg) index occurs in t.
func Contains(t Type, index int) bool {
	switch t := t.(type) {
	case *Var:
		return t.Index == index
	case *FixedArg:
		return t.Index == index
	case *Named:
		for _, a := range t.Args {
			if Contains(a, index) {
				return true
			}
		}
		return false
	case *Tuple:
		for _, item := range t.Items {
			if Contains(item, index) {
				return true
			}
		}
		return false
	case *Func:
		return Contains(t.From, index) || Contains(t.To, index)
	}
	return false
}

// IsConcrete reports whether t contains no variables or fixed args.
func IsConcrete(t Type) bool {
	switch t := t.(type) {
	case *Var, *FixedArg:
		return false
	case *Named:
		for _, a := range t.Args {
			if !IsConcrete(a) {
				return false
			}
		}
		return true
	case *Tuple:
		for _, item := range t.Items {
			if !IsConcrete(item) {
				return false
			}
		}
		return true
	case *Func:
		return IsConcrete(t.From) && IsConcrete(t.To)
	}
	return false
}

// RemoveFixed converts every FixedArg into an ordinary Var with the same
// index and constraints. Called when a polymorphic definition is
// instantiated at a use site.
func RemoveFixed(t Type) Type {
	switch t := t.(type) {
	case *Var:
		return t
	case *FixedArg:
		return &Var{Index: t.Index, Constraints: t.Constraints}
	case *Named:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = RemoveFixed(a)
		}
		return &Named{Name: t.Name, ID: t.ID, Args: args}
	case *Tuple:
		items := make([]Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = RemoveFixed(item)
		}
		return &Tuple{Items: items}
	case *Func:
		return &Func{From: RemoveFixed(t.From), To: RemoveFixed(t.To)}
	}
	panic(fmt.Sprintf("types: unknown type %T", t))
}

// Duplicate freshens every variable index in t, reusing argMap so that
// repeated indices stay shared. Fixed args stay fixed but get fresh
// indices too; pairing Duplicate with RemoveFixed yields a fresh
// instantiation of a polymorphic type.
func Duplicate(t Type, argMap map[int]int, gen *VarGen) Type {
	fresh := func(index int) int {
		if mapped, ok := argMap[index]; ok {
			return mapped
		}
		mapped := gen.NewIndex()
		argMap[index] = mapped
		return mapped
	}
	switch t := t.(type) {
	case *Var:
		return &Var{Index: fresh(t.Index), Constraints: t.Constraints}
	case *FixedArg:
		return &FixedArg{Name: t.Name, Index: fresh(t.Index), Constraints: t.Constraints}
	case *Named:
		args := make([]Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = Duplicate(a, argMap, gen)
		}
		return &Named{Name: t.Name, ID: t.ID, Args: args}
	case *Tuple:
		items := make([]Type, len(t.Items))
		for i, item := range t.Items {
			items[i] = Duplicate(item, argMap, gen)
		}
		return &Tuple{Items: items}
	case *Func:
		return &Func{From: Duplicate(t.From, argMap, gen), To: Duplicate(t.To, argMap, gen)}
	}
	panic(fmt.Sprintf("types: unknown type %T", t))
}

// AddConstraintsTo returns a copy of the variable or fixed arg with extra
// class constraints merged in. Panics on any other type.
func AddConstraintsTo(t Type, constraints []ClassID) Type {
	switch t := t.(type) {
	case *Var:
		return &Var{Index: t.Index, Constraints: mergeConstraints(t.Constraints, constraints)}
	case *FixedArg:
		return &FixedArg{Name: t.Name, Index: t.Index, Constraints: mergeConstraints(t.Constraints, constraints)}
	}
	panic(fmt.Sprintf("types: cannot constrain %T", t))
}

func mergeConstraints(base, extra []ClassID) []ClassID {
	merged := append([]ClassID{}, base...)
	for _, c := range extra {
		found := false
		for _, existing := range merged {
			if existing == c {
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, c)
		}
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i] < merged[j] })
	return merged
}

// FuncArgs flattens the argument chain of a function type and returns the
// final result type alongside.
func FuncArgs(t Type) (args []Type, result Type) {
	for {
		f, ok := t.(*Func)
		if !ok {
			return args, t
		}
		args = append(args, f.From)
		t = f.To
	}
}

// ResultType peels count arrows off a function type.
func ResultType(t Type, count int) Type {
	for i := 0; i < count; i++ {
		f, ok := t.(*Func)
		if !ok {
			panic(fmt.Sprintf("types: result type of non-function %s", t))
		}
		t = f.To
	}
	return t
}

// MakeFunc builds the right-nested function type args -> result.
func MakeFunc(args []Type, result Type) Type {
	t := result
	for i := len(args) - 1; i >= 0; i-- {
		t = &Func{From: args[i], To: t}
	}
	return t
}

// BaseKind classifies the outermost constructor of a type.
type BaseKind int

const (
	BaseTuple BaseKind = iota
	BaseNamed
	BaseFunction
	BaseGeneric
)

// BaseType is the instance-head bucket of a type: the outermost type
// constructor, with the typedef id for named types.
type BaseType struct {
	Kind BaseKind
	ID   TypeDefID
}

// BaseTypeOf returns the instance-head bucket for t.
func BaseTypeOf(t Type) BaseType {
	switch t := t.(type) {
	case *Tuple:
		return BaseType{Kind: BaseTuple}
	case *Named:
		return BaseType{Kind: BaseNamed, ID: t.ID}
	case *Func:
		return BaseType{Kind: BaseFunction}
	case *Var, *FixedArg:
		return BaseType{Kind: BaseGeneric}
	}
	panic(fmt.Sprintf("types: unknown type %T", t))
}
