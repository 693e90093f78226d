package ir

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// Class is a type class declaration.
type Class struct {
	ID       types.ClassID
	Module   string
	Name     string
	Members  []types.ClassMemberID
	Location source.LocationID
}

// FullName returns the qualified class name.
func (c *Class) FullName() string {
	return c.Module + "." + c.Name
}

// ClassMember is one member of a type class. DefaultImpl is NoFunction
// when the class provides no default implementation.
type ClassMember struct {
	ID             types.ClassMemberID
	Class          types.ClassID
	Name           string
	ClassSignature TypeSignatureID
	Signature      TypeSignatureID
	DefaultImpl    FunctionID
	Location       source.LocationID
}

// InstanceMember ties a class member to the function implementing it in an
// instance.
type InstanceMember struct {
	ClassMember types.ClassMemberID
	Function    FunctionID
}

// Instance is a user-defined class instance.
type Instance struct {
	ID        types.InstanceID
	Class     types.ClassID
	Signature TypeSignatureID
	Members   map[string]InstanceMember
	Location  source.LocationID
}

// ClassMemberTypeInfo holds a member's generic type together with the type
// bound to the class parameter, both built by the type checker.
type ClassMemberTypeInfo struct {
	MemberType types.Type
	ClassArg   types.Type
}
