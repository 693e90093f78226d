package backend

import (
	"sort"

	"github.com/sunholo/skiff/internal/mir"
)

// checkRecursiveDataTypes boxes every variant item and record field whose
// typedef appears on its own ancestor chain, breaking the
// size-is-infinite problem of recursive definitions.
func checkRecursiveDataTypes(prog *mir.Program) {
	type rewrite struct {
		typedef mir.TypeDefID
		variant int // -1 for record fields
		index   int
	}
	rewrites := make(map[rewrite]bool)

	var checkType func(id mir.TypeDefID, checked []mir.TypeDefID)
	contains := func(checked []mir.TypeDefID, id mir.TypeDefID) bool {
		for _, c := range checked {
			if c == id {
				return true
			}
		}
		return false
	}
	checkType = func(id mir.TypeDefID, checked []mir.TypeDefID) {
		switch typedef := prog.TypeDefs.Get(id).(type) {
		case *mir.Adt:
			for variantIndex, variant := range typedef.Variants {
				for itemIndex, item := range variant.Items {
					itemID, ok := mir.TypedefIDOf(item)
					if !ok {
						continue
					}
					if contains(checked, itemID) {
						rewrites[rewrite{typedef: id, variant: variantIndex, index: itemIndex}] = true
					} else {
						checkType(itemID, append(checked, itemID))
					}
				}
			}
		case *mir.Record:
			for fieldIndex, field := range typedef.Fields {
				fieldID, ok := mir.TypedefIDOf(field.Ty)
				if !ok {
					continue
				}
				if contains(checked, fieldID) {
					rewrites[rewrite{typedef: id, variant: -1, index: fieldIndex}] = true
				} else {
					checkType(fieldID, append(checked, fieldID))
				}
			}
		}
	}
	prog.TypeDefs.Each(func(id mir.TypeDefID, typedef mir.TypeDef) {
		checkType(id, []mir.TypeDefID{id})
	})

	ordered := make([]rewrite, 0, len(rewrites))
	for r := range rewrites {
		ordered = append(ordered, r)
	}
	sort.Slice(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.typedef != b.typedef {
			return a.typedef < b.typedef
		}
		if a.variant != b.variant {
			return a.variant < b.variant
		}
		return a.index < b.index
	})
	for _, r := range ordered {
		switch typedef := prog.TypeDefs.Get(r.typedef).(type) {
		case *mir.Adt:
			item := typedef.Variants[r.variant].Items[r.index]
			if _, boxed := item.(*mir.Boxed); !boxed {
				typedef.Variants[r.variant].Items[r.index] = &mir.Boxed{Inner: item}
			}
		case *mir.Record:
			field := typedef.Fields[r.index].Ty
			if _, boxed := field.(*mir.Boxed); !boxed {
				typedef.Fields[r.index].Ty = &mir.Boxed{Inner: field}
			}
		}
	}
}

// staticCallProcessor converts under-applied static calls into
// partial-call allocations and over-applied ones into a full static call
// followed by a dynamic call.
type staticCallProcessor struct {
	prog *mir.Program
}

func (p *staticCallProcessor) VisitExpr(id mir.ExprID, expr mir.Expr) {
	call, ok := expr.(*mir.StaticFunctionCall)
	if !ok {
		return
	}
	location := p.prog.Exprs.Get(id).Location
	function := p.prog.Functions.Get(call.Function)
	argTypes, _ := mir.FuncArgs(function.Type)
	switch {
	case function.ArgCount > len(call.Args):
		var fields []mir.PartialCallField
		var traits []mir.DynamicCallTrait
		for index := 0; index < function.ArgCount; index++ {
			if index < function.ArgCount-1 {
				fields = append(fields, mir.PartialCallField{
					Ty:       argTypes[index],
					Deferred: index >= len(call.Args),
				})
			}
			if index >= len(call.Args) {
				resultTy := mir.ResultType(function.Type, index)
				fn := resultTy.(*mir.Function)
				if index == function.ArgCount-1 {
					traits = append(traits, mir.DynamicCallTrait{
						IsRealCall: true,
						From:       fn.From,
						To:         fn.To,
					})
				} else {
					traits = append(traits, mir.DynamicCallTrait{
						From:       fn.From,
						To:         fn.To,
						FieldIndex: index,
					})
				}
			}
		}
		partial := &mir.PartialCall{
			Function: call.Function,
			Fields:   fields,
			Traits:   traits,
		}
		partialID := p.prog.PartialCalls.Add(partial)
		partial.ID = partialID
		p.prog.UpdateExpr(id, &mir.PartialFunctionCall{Call: partialID, Args: call.Args})
	case function.ArgCount < len(call.Args):
		full := call.Args[:function.ArgCount]
		rest := call.Args[function.ArgCount:]
		resultTy := mir.ResultType(function.Type, function.ArgCount)
		staticID := p.prog.AddExpr(&mir.StaticFunctionCall{
			Function: call.Function,
			Args:     full,
		}, location, resultTy)
		p.prog.UpdateExpr(id, &mir.DynamicFunctionCall{Callee: staticID, Args: rest})
	}
}

func (p *staticCallProcessor) VisitPattern(id mir.PatternID, pattern mir.Pattern) {}

// processStaticCalls runs closure conversion over every function body.
func processStaticCalls(prog *mir.Program) {
	processor := &staticCallProcessor{prog: prog}
	var bodies []mir.ExprID
	prog.Functions.Each(func(id mir.FunctionID, function *mir.LoweredFunction) {
		if normal, ok := function.Info.(*mir.NormalFunction); ok {
			bodies = append(bodies, normal.Body)
		}
	})
	for _, body := range bodies {
		mir.WalkExpr(prog, body, processor)
	}
}

// cloneRef identifies either an argument slot or a bound value.
type cloneRef struct {
	isArg   bool
	arg     int
	pattern mir.PatternID
}

// refCollector gathers the use sites of every argument and bound value in
// walk order.
type refCollector struct {
	refs  map[cloneRef][]mir.ExprID
	order []cloneRef
}

func (c *refCollector) VisitExpr(id mir.ExprID, expr mir.Expr) {
	var key cloneRef
	switch expr := expr.(type) {
	case *mir.ArgRef:
		key = cloneRef{isArg: true, arg: expr.Index}
	case *mir.ExprValue:
		key = cloneRef{pattern: expr.Pattern}
	default:
		return
	}
	if _, seen := c.refs[key]; !seen {
		c.order = append(c.order, key)
	}
	c.refs[key] = append(c.refs[key], id)
}

func (c *refCollector) VisitPattern(id mir.PatternID, pattern mir.Pattern) {}

// insertClones wraps every non-first use of an argument or bound value in
// an explicit Clone, making ownership obligations visible to code
// generators.
func insertClones(prog *mir.Program) {
	var bodies []mir.ExprID
	prog.Functions.Each(func(id mir.FunctionID, function *mir.LoweredFunction) {
		if normal, ok := function.Info.(*mir.NormalFunction); ok {
			bodies = append(bodies, normal.Body)
		}
	})
	for _, body := range bodies {
		collector := &refCollector{refs: make(map[cloneRef][]mir.ExprID)}
		mir.WalkExpr(prog, body, collector)
		for _, key := range collector.order {
			uses := collector.refs[key]
			for _, use := range uses[1:] {
				info := prog.Exprs.Get(use)
				innerID := prog.AddExpr(info.Expr, info.Location, info.Ty)
				prog.UpdateExpr(use, &mir.Clone{Inner: innerID})
			}
		}
	}
}
