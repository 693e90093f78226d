package interp

import (
	"fmt"

	"github.com/sunholo/skiff/internal/mir"
)

// Ordering and Option variant indices, fixed by the prelude declarations.
const (
	orderingLess = iota
	orderingEqual
	orderingGreater
)

const (
	optionSome = iota
	optionNone
)

// ordering builds an Ordering value of the given lowered type.
func ordering(resultTy mir.Type, index int) Value {
	id, ok := mir.TypedefIDOf(resultTy)
	if !ok {
		panic("interp: ordering result is not a typedef")
	}
	return &VariantValue{TypeDef: id, Index: index}
}

func compareInts(a, b int64) int {
	switch {
	case a < b:
		return orderingLess
	case a > b:
		return orderingGreater
	default:
		return orderingEqual
	}
}

func compareFloats(a, b float64) int {
	switch {
	case a < b:
		return orderingLess
	case a > b:
		return orderingGreater
	default:
		return orderingEqual
	}
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return orderingLess
	case a > b:
		return orderingGreater
	default:
		return orderingEqual
	}
}

// builtinExterns is the extern-function table of the prelude, keyed by
// the extern function's name.
func builtinExterns() map[string]externFunc {
	return map[string]externFunc{
		// Std.Util.Basic
		"println": func(i *Interp, args []Value, resultTy mir.Type) Value {
			fmt.Fprintln(i.out, args[0].(StringValue).Value)
			return &RecordValue{}
		},
		"print": func(i *Interp, args []Value, resultTy mir.Type) Value {
			fmt.Fprint(i.out, args[0].(StringValue).Value)
			return &RecordValue{}
		},

		// Std.Ops booleans
		"opAnd": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(BoolValue).Value && args[1].(BoolValue).Value}
		},
		"opOr": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(BoolValue).Value || args[1].(BoolValue).Value}
		},
		"opNot": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: !args[0].(BoolValue).Value}
		},

		// Arithmetic instances
		"Add.opAdd.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return IntValue{Value: args[0].(IntValue).Value + args[1].(IntValue).Value}
		},
		"Sub.opSub.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return IntValue{Value: args[0].(IntValue).Value - args[1].(IntValue).Value}
		},
		"Mul.opMul.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return IntValue{Value: args[0].(IntValue).Value * args[1].(IntValue).Value}
		},
		"Div.opDiv.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return IntValue{Value: args[0].(IntValue).Value / args[1].(IntValue).Value}
		},
		"Add.opAdd.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return FloatValue{Value: args[0].(FloatValue).Value + args[1].(FloatValue).Value}
		},
		"Sub.opSub.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return FloatValue{Value: args[0].(FloatValue).Value - args[1].(FloatValue).Value}
		},
		"Mul.opMul.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return FloatValue{Value: args[0].(FloatValue).Value * args[1].(FloatValue).Value}
		},
		"Div.opDiv.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return FloatValue{Value: args[0].(FloatValue).Value / args[1].(FloatValue).Value}
		},
		"Add.opAdd.String": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: args[0].(StringValue).Value + args[1].(StringValue).Value}
		},

		// Equality instances
		"PartialEq.opEq.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(IntValue).Value == args[1].(IntValue).Value}
		},
		"PartialEq.opEq.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(FloatValue).Value == args[1].(FloatValue).Value}
		},
		"PartialEq.opEq.String": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(StringValue).Value == args[1].(StringValue).Value}
		},
		"PartialEq.opEq.Bool": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(BoolValue).Value == args[1].(BoolValue).Value}
		},
		"PartialEq.opEq.Char": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: args[0].(CharValue).Value == args[1].(CharValue).Value}
		},
		"PartialEq.opEq.List": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return BoolValue{Value: equalValues(args[0], args[1])}
		},

		// Ordering instances
		"Ord.cmp.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return ordering(resultTy, compareInts(args[0].(IntValue).Value, args[1].(IntValue).Value))
		},
		"Ord.cmp.String": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return ordering(resultTy, compareStrings(args[0].(StringValue).Value, args[1].(StringValue).Value))
		},
		"Ord.cmp.Char": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return ordering(resultTy, compareInts(int64(args[0].(CharValue).Value), int64(args[1].(CharValue).Value)))
		},
		"PartialOrd.partialCmp.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return i.someOrdering(resultTy, compareInts(args[0].(IntValue).Value, args[1].(IntValue).Value))
		},
		"PartialOrd.partialCmp.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return i.someOrdering(resultTy, compareFloats(args[0].(FloatValue).Value, args[1].(FloatValue).Value))
		},
		"PartialOrd.partialCmp.String": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return i.someOrdering(resultTy, compareStrings(args[0].(StringValue).Value, args[1].(StringValue).Value))
		},
		"PartialOrd.partialCmp.Char": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return i.someOrdering(resultTy, compareInts(int64(args[0].(CharValue).Value), int64(args[1].(CharValue).Value)))
		},

		// Show instances
		"Show.show.Int": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
		"Show.show.Float": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
		"Show.show.String": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
		"Show.show.Bool": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
		"Show.show.Char": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
		"Show.show.List": func(i *Interp, args []Value, resultTy mir.Type) Value {
			return StringValue{Value: i.showValue(args[0])}
		},
	}
}

// someOrdering builds Some(Ordering) for partialCmp externs. The Ordering
// typedef is found through the Some variant's item type.
func (i *Interp) someOrdering(optionTy mir.Type, index int) Value {
	optID, ok := mir.TypedefIDOf(optionTy)
	if !ok {
		panic("interp: option result is not a typedef")
	}
	adt := i.prog.TypeDefs.Get(optID).(*mir.Adt)
	itemTy := adt.Variants[optionSome].Items[0]
	ordID, ok := mir.TypedefIDOf(itemTy)
	if !ok {
		panic("interp: ordering item is not a typedef")
	}
	return &VariantValue{
		TypeDef: optID,
		Index:   optionSome,
		Items:   []Value{&VariantValue{TypeDef: ordID, Index: index}},
	}
}
