package syntax

import "github.com/sunholo/skiff/internal/source"

// TypeSignatureID identifies a surface type signature.
type TypeSignatureID int

// NoTypeSignature marks the absence of a signature.
const NoTypeSignature TypeSignatureID = -1

// TypeSignature is a surface type expression. Lowercase heads are type
// arguments; the resolver decides.
type TypeSignature interface {
	typeSignature()
}

// TSNamed is a (possibly dotted) name applied to arguments.
type TSNamed struct {
	Path string
	Args []TypeSignatureID
}

// TSTuple is a tuple signature.
type TSTuple struct {
	Items []TypeSignatureID
}

// TSFunction is a function arrow.
type TSFunction struct {
	From TypeSignatureID
	To   TypeSignatureID
}

// TSWildcard is `_`, a fresh inferred type.
type TSWildcard struct{}

func (*TSNamed) typeSignature()    {}
func (*TSTuple) typeSignature()    {}
func (*TSFunction) typeSignature() {}
func (*TSWildcard) typeSignature() {}

// TypeSignatureInfo pairs a signature with its location.
type TypeSignatureInfo struct {
	Signature TypeSignature
	Location  source.LocationID
}
