package ir

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// DeriveInfo is one planned auto-derived instance of a typedef.
type DeriveInfo struct {
	Class         types.ClassID
	InstanceIndex int
	Location      source.LocationID
}

// TypeWithLocation pairs a type with the location it came from.
type TypeWithLocation struct {
	Ty       types.Type
	Location source.LocationID
}

// VariantTypeInfo holds the item types of one ADT variant.
type VariantTypeInfo struct {
	ItemTypes []TypeWithLocation
}

// AdtTypeInfo holds the instantiated type of an ADT together with the
// types of every variant item, sharing one set of variables.
type AdtTypeInfo struct {
	AdtType        types.Type
	VariantTypes   []VariantTypeInfo
	DerivedClasses []DeriveInfo
}

// RecordTypeInfo holds the instantiated type of a record together with its
// field types, sharing one set of variables.
type RecordTypeInfo struct {
	RecordType     types.Type
	FieldTypes     []TypeWithLocation
	DerivedClasses []DeriveInfo
}

// Apply substitutes u through the stored types, reporting changes.
func (info *AdtTypeInfo) Apply(u *types.Unifier) bool {
	changed := false
	for vi := range info.VariantTypes {
		for ii := range info.VariantTypes[vi].ItemTypes {
			item := &info.VariantTypes[vi].ItemTypes[ii]
			applied := u.Apply(item.Ty)
			if !types.Equal(applied, item.Ty) {
				item.Ty = applied
				changed = true
			}
		}
	}
	applied := u.Apply(info.AdtType)
	if !types.Equal(applied, info.AdtType) {
		info.AdtType = applied
		changed = true
	}
	return changed
}

// Duplicate freshens every variable in the info, keeping sharing intact.
func (info *AdtTypeInfo) Duplicate(gen *types.VarGen) AdtTypeInfo {
	argMap := make(map[int]int)
	out := AdtTypeInfo{
		AdtType:        types.Duplicate(info.AdtType, argMap, gen),
		DerivedClasses: info.DerivedClasses,
	}
	for _, variant := range info.VariantTypes {
		items := make([]TypeWithLocation, len(variant.ItemTypes))
		for i, item := range variant.ItemTypes {
			items[i] = TypeWithLocation{
				Ty:       types.Duplicate(item.Ty, argMap, gen),
				Location: item.Location,
			}
		}
		out.VariantTypes = append(out.VariantTypes, VariantTypeInfo{ItemTypes: items})
	}
	return out
}

// Apply substitutes u through the stored types, reporting changes.
func (info *RecordTypeInfo) Apply(u *types.Unifier) bool {
	changed := false
	for i := range info.FieldTypes {
		field := &info.FieldTypes[i]
		applied := u.Apply(field.Ty)
		if !types.Equal(applied, field.Ty) {
			field.Ty = applied
			changed = true
		}
	}
	applied := u.Apply(info.RecordType)
	if !types.Equal(applied, info.RecordType) {
		info.RecordType = applied
		changed = true
	}
	return changed
}

// Duplicate freshens every variable in the info, keeping sharing intact.
func (info *RecordTypeInfo) Duplicate(gen *types.VarGen) RecordTypeInfo {
	argMap := make(map[int]int)
	out := RecordTypeInfo{
		RecordType:     types.Duplicate(info.RecordType, argMap, gen),
		DerivedClasses: info.DerivedClasses,
	}
	out.FieldTypes = make([]TypeWithLocation, len(info.FieldTypes))
	for i, field := range info.FieldTypes {
		out.FieldTypes[i] = TypeWithLocation{
			Ty:       types.Duplicate(field.Ty, argMap, gen),
			Location: field.Location,
		}
	}
	return out
}
