package ir

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// DerivedClass marks one entry of a deriving list.
type DerivedClass struct {
	Class    types.ClassID
	Location source.LocationID
}

// RecordField is one declared record field.
type RecordField struct {
	Name      string
	Signature TypeSignatureID
}

// Record is a record type definition.
type Record struct {
	Module         string
	Name           string
	ID             types.TypeDefID
	TypeArgs       []int
	Fields         []RecordField
	Constructor    FunctionID
	External       bool
	DerivedClasses []DerivedClass
	Location       source.LocationID
}

// Variant is one constructor of an ADT.
type Variant struct {
	Name        string
	Items       []TypeSignatureID
	Constructor FunctionID
	Location    source.LocationID
}

// Adt is an algebraic data type definition.
type Adt struct {
	Module         string
	Name           string
	ID             types.TypeDefID
	TypeArgs       []int
	Variants       []Variant
	DerivedClasses []DerivedClass
	Location       source.LocationID
}

// VariantIndex returns the declaration index of the named variant.
func (a *Adt) VariantIndex(name string) (int, bool) {
	for index, variant := range a.Variants {
		if variant.Name == name {
			return index, true
		}
	}
	return 0, false
}

// TypeDef is either a *Record or an *Adt.
type TypeDef interface {
	typeDef()
	DefModule() string
	DefName() string
	Derived() []DerivedClass
	DefLocation() source.LocationID
}

func (*Record) typeDef() {}
func (*Adt) typeDef()    {}

func (r *Record) DefModule() string { return r.Module }
func (a *Adt) DefModule() string    { return a.Module }

func (r *Record) DefName() string { return r.Name }
func (a *Adt) DefName() string    { return a.Name }

func (r *Record) Derived() []DerivedClass { return r.DerivedClasses }
func (a *Adt) Derived() []DerivedClass    { return a.DerivedClasses }

func (r *Record) DefLocation() source.LocationID { return r.Location }
func (a *Adt) DefLocation() source.LocationID    { return a.Location }
