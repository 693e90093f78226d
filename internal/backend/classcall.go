package backend

import (
	"fmt"

	"github.com/sunholo/skiff/internal/ir"
	"github.com/sunholo/skiff/internal/mir"
	"github.com/sunholo/skiff/internal/types"
)

// processClassMemberCall resolves a class call at concrete argument types
// to the lowered function implementing it: the instance member (or the
// class default) for user instances, a generated member for auto-derived
// ones.
func (b *Backend) processClassMemberCall(memberID types.ClassMemberID, argTypes []types.Type, resultTy types.Type) mir.FunctionID {
	memberInfo, ok := b.ir.ClassMemberTypes[memberID]
	if !ok {
		panic("backend: class member without type info")
	}
	member := b.ir.ClassMembers.Get(memberID)
	callUnifier := b.getCallUnifier(argTypes, types.RemoveFixed(memberInfo.MemberType), resultTy)
	classArg := callUnifier.Apply(types.RemoveFixed(memberInfo.ClassArg))
	if !types.IsConcrete(classArg) {
		panic(fmt.Sprintf("backend: instance selector %s is not concrete", classArg))
	}
	resolution := b.ir.InstanceResolver.Get(member.Class, classArg)
	switch resolution.Kind {
	case types.ResolvedAutoDerived:
		return b.queue.insert(b, queueItem{
			autoDerive: true,
			deriveTy:   classArg,
			class:      member.Class,
			member:     memberID,
		})
	case types.ResolvedUserDefined:
		instance := b.ir.Instances.Get(resolution.Instance)
		fnID := member.DefaultImpl
		if instanceMember, ok := instance.Members[member.Name]; ok {
			fnID = instanceMember.Function
		}
		if fnID == ir.NoFunction {
			panic(fmt.Sprintf("backend: member %s has neither instance nor default implementation", member.Name))
		}
		fnUnifier := b.getCallUnifier(argTypes, types.RemoveFixed(b.ir.FunctionType(fnID)), resultTy)
		return b.queue.insert(b, queueItem{function: fnID, unifier: fnUnifier})
	}
	panic("backend: unknown resolution result")
}
