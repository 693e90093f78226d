package backend

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/types"
)

// typeDefStore caches the lowered typedef of every concrete type image.
// The slot is reserved before field types are processed, so recursive
// typedefs terminate.
type typeDefStore struct {
	typedefs map[string]mir.TypeDefID
}

func newTypeDefStore() *typeDefStore {
	return &typeDefStore{typedefs: make(map[string]mir.TypeDefID)}
}

// addTuple creates (or reuses) the anonymous record standing in for a
// tuple type image.
func (s *typeDefStore) addTuple(b *Backend, ty types.Type, fieldTypes []mir.Type) (string, mir.TypeDefID) {
	key := types.Key(ty)
	if id, ok := s.typedefs[key]; ok {
		record := b.mir.TypeDefs.Get(id).(*mir.Record)
		return record.Name, id
	}
	id := b.mir.TypeDefs.Allocate()
	s.typedefs[key] = id
	name := fmt.Sprintf("tuple#%d", int(id))
	fields := make([]mir.RecordField, len(fieldTypes))
	for index, fieldTy := range fieldTypes {
		fields[index] = mir.RecordField{
			Name: fmt.Sprintf("field#%d", index),
			Ty:   fieldTy,
		}
	}
	b.mir.TypeDefs.Set(id, &mir.Record{
		Module: "<generated>",
		Name:   name,
		ID:     id,
		Fields: fields,
	})
	return name, id
}

// addType lowers a concrete named type, specialising the original
// typedef's variants or fields under the type's arguments.
func (s *typeDefStore) addType(b *Backend, ty types.Type) mir.TypeDefID {
	key := types.Key(ty)
	if id, ok := s.typedefs[key]; ok {
		return id
	}
	named, ok := ty.(*types.Named)
	if !ok {
		panic(fmt.Sprintf("backend: typedef for non-named type %s", ty))
	}
	id := b.mir.TypeDefs.Allocate()
	s.typedefs[key] = id
	switch typedef := b.ir.TypeDefs.Get(named.ID).(type) {
	case *ir.Adt:
		info := b.ir.AdtTypeInfoMap[named.ID].Duplicate(b.ir.Gen)
		u := b.ir.Unifier()
		if err := u.Unify(info.AdtType, ty); err != nil {
			panic(fmt.Sprintf("backend: cannot specialise %s to %s: %v", typedef.Name, ty, err))
		}
		variants := make([]mir.Variant, len(info.VariantTypes))
		for index, variant := range info.VariantTypes {
			items := make([]mir.Type, len(variant.ItemTypes))
			for i, item := range variant.ItemTypes {
				items[i] = b.processType(u.Apply(item.Ty))
			}
			variants[index] = mir.Variant{
				Name:  typedef.Variants[index].Name,
				Items: items,
			}
		}
		b.mir.TypeDefs.Set(id, &mir.Adt{
			Module:   typedef.Module,
			Name:     typedef.Name,
			ID:       id,
			Variants: variants,
		})
	case *ir.Record:
		info := b.ir.RecordTypeInfoMap[named.ID].Duplicate(b.ir.Gen)
		u := b.ir.Unifier()
		if err := u.Unify(info.RecordType, ty); err != nil {
			panic(fmt.Sprintf("backend: cannot specialise %s to %s: %v", typedef.Name, ty, err))
		}
		fields := make([]mir.RecordField, len(info.FieldTypes))
		for index, field := range info.FieldTypes {
			fields[index] = mir.RecordField{
				Name: typedef.Fields[index].Name,
				Ty:   b.processType(u.Apply(field.Ty)),
			}
		}
		b.mir.TypeDefs.Set(id, &mir.Record{
			Module:   typedef.Module,
			Name:     typedef.Name,
			ID:       id,
			Fields:   fields,
			External: typedef.External,
		})
	}
	return id
}
