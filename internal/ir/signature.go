package ir

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// TypeSignature is a resolved type signature: surface type expressions
// with all names bound to typedef ids and type arguments numbered.
type TypeSignature interface {
	typeSignature()
}

// SigNamed references a typedef applied to arguments.
type SigNamed struct {
	Name string
	ID   types.TypeDefID
	Args []TypeSignatureID
}

// SigTuple is a tuple signature.
type SigTuple struct {
	Items []TypeSignatureID
}

// SigFunction is a function arrow.
type SigFunction struct {
	From TypeSignatureID
	To   TypeSignatureID
}

// SigTypeArg is a numbered type argument with its class constraints.
type SigTypeArg struct {
	Index       int
	Name        string
	Constraints []types.ClassID
}

// SigWildcard stands for a fresh type variable.
type SigWildcard struct{}

func (*SigNamed) typeSignature()    {}
func (*SigTuple) typeSignature()    {}
func (*SigFunction) typeSignature() {}
func (*SigTypeArg) typeSignature()  {}
func (*SigWildcard) typeSignature() {}

// TypeSignatureInfo pairs a signature with its location.
type TypeSignatureInfo struct {
	Signature TypeSignature
	Location  source.LocationID
}
