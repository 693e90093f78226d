// Package interp is a tree-walking evaluator over the lowered IR, used by
// the run command, the REPL and the end-to-end tests. Extern prelude
// functions are implemented against a small runtime value algebra.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sunholo/skiff/internal/mir"
)

// Value is a runtime value. One of IntValue, FloatValue, StringValue,
// BoolValue, CharValue, *RecordValue, *VariantValue, *ListValue,
// *ClosureValue.
type Value interface {
	value()
}

type (
	IntValue    struct{ Value int64 }
	FloatValue  struct{ Value float64 }
	StringValue struct{ Value string }
	BoolValue   struct{ Value bool }
	CharValue   struct{ Value rune }
)

// RecordValue is a record (or lowered tuple) instance.
type RecordValue struct {
	TypeDef mir.TypeDefID
	Fields  []Value
}

// VariantValue is one ADT constructor instance.
type VariantValue struct {
	TypeDef mir.TypeDefID
	Index   int
	Items   []Value
}

// ListValue is a list instance.
type ListValue struct {
	Items []Value
}

// ClosureValue is a partially applied function.
type ClosureValue struct {
	Function mir.FunctionID
	Arity    int
	Applied  []Value
}

func (IntValue) value()      {}
func (FloatValue) value()    {}
func (StringValue) value()   {}
func (BoolValue) value()     {}
func (CharValue) value()     {}
func (*RecordValue) value()  {}
func (*VariantValue) value() {}
func (*ListValue) value()    {}
func (*ClosureValue) value() {}

// showValue renders a value the way the Show instances of the prelude
// do.
func (i *Interp) showValue(v Value) string {
	switch v := v.(type) {
	case IntValue:
		return strconv.FormatInt(v.Value, 10)
	case FloatValue:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case StringValue:
		return v.Value
	case BoolValue:
		if v.Value {
			return "true"
		}
		return "false"
	case CharValue:
		return string(v.Value)
	case *ListValue:
		parts := make([]string, len(v.Items))
		for index, item := range v.Items {
			parts[index] = i.showValue(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *RecordValue:
		record := i.prog.TypeDefs.Get(v.TypeDef).(*mir.Record)
		parts := make([]string, len(v.Fields))
		for index, field := range v.Fields {
			parts[index] = fmt.Sprintf("%s = %s", record.Fields[index].Name, i.showValue(field))
		}
		return record.Name + " { " + strings.Join(parts, ", ") + " }"
	case *VariantValue:
		adt := i.prog.TypeDefs.Get(v.TypeDef).(*mir.Adt)
		name := adt.Variants[v.Index].Name
		if len(v.Items) == 0 {
			return name
		}
		parts := make([]string, len(v.Items))
		for index, item := range v.Items {
			parts[index] = i.showValue(item)
		}
		return name + " " + strings.Join(parts, " ")
	case *ClosureValue:
		return "<closure>"
	}
	panic(fmt.Sprintf("interp: cannot show %T", v))
}

// equalValues is deep structural equality over runtime values.
func equalValues(a, b Value) bool {
	switch a := a.(type) {
	case IntValue:
		other, ok := b.(IntValue)
		return ok && a.Value == other.Value
	case FloatValue:
		other, ok := b.(FloatValue)
		return ok && a.Value == other.Value
	case StringValue:
		other, ok := b.(StringValue)
		return ok && a.Value == other.Value
	case BoolValue:
		other, ok := b.(BoolValue)
		return ok && a.Value == other.Value
	case CharValue:
		other, ok := b.(CharValue)
		return ok && a.Value == other.Value
	case *ListValue:
		other, ok := b.(*ListValue)
		if !ok || len(a.Items) != len(other.Items) {
			return false
		}
		for i := range a.Items {
			if !equalValues(a.Items[i], other.Items[i]) {
				return false
			}
		}
		return true
	case *RecordValue:
		other, ok := b.(*RecordValue)
		if !ok || len(a.Fields) != len(other.Fields) {
			return false
		}
		for i := range a.Fields {
			if !equalValues(a.Fields[i], other.Fields[i]) {
				return false
			}
		}
		return true
	case *VariantValue:
		other, ok := b.(*VariantValue)
		if !ok || a.Index != other.Index || len(a.Items) != len(other.Items) {
			return false
		}
		for i := range a.Items {
			if !equalValues(a.Items[i], other.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
