// Package resolve implements the name resolver: it registers modules,
// matches export and import patterns, resolves every path in every body to
// an identifier, and lifts lambdas to top-level functions with explicit
// capture lists. Its output is the resolved IR.
package resolve

import (
	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/syntax"
	"github.com/sunholo/skiff/internal/types"
)

// ItemKind distinguishes the kinds of module items.
type ItemKind int

const (
	ItemFunction ItemKind = iota
	ItemRecord
	ItemAdt
	ItemVariant
	ItemClass
	ItemClassMember
)

// Item is one named thing a module defines or imports.
type Item struct {
	Kind         ItemKind
	Function     ir.FunctionID
	TypeDef      types.TypeDefID
	VariantIndex int
	Class        types.ClassID
	ClassMember  types.ClassMemberID
	Location     source.LocationID
}

// DataMember is a record field or ADT variant, importable through group
// patterns.
type DataMember struct {
	IsField    bool
	TypeDef    types.TypeDefID
	Index      int
	Name       string
	GroupName  string
	MemberName string
}

// ImportedItem is an item together with the module it came from.
type ImportedItem struct {
	Item         Item
	SourceModule string
}

// ImportedMember is a data member together with the module it came from.
type ImportedMember struct {
	Member       DataMember
	SourceModule string
}

// Module is the resolver's view of one module.
type Module struct {
	ID              syntax.ModuleID
	Name            string
	Items           map[string][]Item
	Members         map[string][]DataMember
	ExportedItems   map[string][]Item
	ExportedMembers map[string][]DataMember
	ImportedItems   map[string][]ImportedItem
	ImportedMembers map[string][]ImportedMember
	Location        source.LocationID
}

func newModule(id syntax.ModuleID, name string, loc source.LocationID) *Module {
	return &Module{
		ID:              id,
		Name:            name,
		Items:           make(map[string][]Item),
		Members:         make(map[string][]DataMember),
		ExportedItems:   make(map[string][]Item),
		ExportedMembers: make(map[string][]DataMember),
		ImportedItems:   make(map[string][]ImportedItem),
		ImportedMembers: make(map[string][]ImportedMember),
		Location:        loc,
	}
}

func (m *Module) addItem(name string, item Item) {
	m.Items[name] = append(m.Items[name], item)
}

func (m *Module) addMember(name string, member DataMember) {
	m.Members[name] = append(m.Members[name], member)
}

// isAdtVariantPair reports whether exactly two entries are an ADT and one
// of that ADT's own variants, the allowed same-named pair, returning the
// variant (the value-level meaning) and the ADT (the type-level meaning).
// The ADT's number of variants is not checked.
func isAdtVariantPair(items []Item) (variant Item, adt Item, ok bool) {
	if len(items) != 2 {
		return Item{}, Item{}, false
	}
	var haveAdt, haveVariant bool
	for _, item := range items {
		switch item.Kind {
		case ItemAdt:
			adt = item
			haveAdt = true
		case ItemVariant:
			variant = item
			haveVariant = true
		}
	}
	if haveAdt && haveVariant && variant.TypeDef == adt.TypeDef {
		return variant, adt, true
	}
	return Item{}, Item{}, false
}
