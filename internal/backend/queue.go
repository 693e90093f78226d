// Package backend lowers the typed resolved IR into the monomorphic IR:
// starting at Main.main it specialises every reachable function to the
// concrete types at its call sites, resolves class calls to static calls,
// emits auto-derived members, and runs the post-lowering passes.
package backend

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/types"
)

// queueItem is one unit of lowering work: a function under a call
// specialisation, or an auto-derived class member for a concrete type.
type queueItem struct {
	// Normal work.
	function ir.FunctionID
	unifier  *types.Unifier

	// Auto-derive work.
	autoDerive bool
	deriveTy   types.Type
	class      types.ClassID
	member     types.ClassMemberID
}

// key returns the canonical identity of the work item. Normal items are
// keyed by the fully-applied function type, so equal specialisations
// collide regardless of the variable indices inference happened to use.
func (item queueItem) key(b *Backend) string {
	if item.autoDerive {
		return fmt.Sprintf("A:%d:%d:%s", int(item.class), int(item.member), types.Key(item.deriveTy))
	}
	fnType := types.RemoveFixed(b.ir.FunctionType(item.function))
	return fmt.Sprintf("N:%d:%s", int(item.function), types.Key(item.unifier.Apply(fnType)))
}

// functionQueue deduplicates work items and assigns lowered function ids
// lazily.
type functionQueue struct {
	pending   []pendingItem
	processed map[string]mir.FunctionID
}

type pendingItem struct {
	item queueItem
	out  mir.FunctionID
}

func newFunctionQueue() *functionQueue {
	return &functionQueue{processed: make(map[string]mir.FunctionID)}
}

// insert returns the lowered id for the item, scheduling it on first
// sight.
func (q *functionQueue) insert(b *Backend, item queueItem) mir.FunctionID {
	key := item.key(b)
	if id, ok := q.processed[key]; ok {
		return id
	}
	id := b.mir.Functions.Allocate()
	q.processed[key] = id
	q.pending = append(q.pending, pendingItem{item: item, out: id})
	return id
}

// drain processes scheduled items until the queue is empty. Processing an
// item may schedule more.
func (q *functionQueue) drain(b *Backend) {
	for len(q.pending) > 0 {
		next := q.pending[len(q.pending)-1]
		q.pending = q.pending[:len(q.pending)-1]
		if next.item.autoDerive {
			b.generateDerivedMember(next.item, next.out)
		} else {
			b.processFunction(next.item.function, next.out, next.item.unifier)
		}
	}
}
