package ir

import (
	"fmt"

	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// FunctionID identifies a function in the program's function container.
type FunctionID int

// TypeSignatureID identifies a resolved type signature.
type TypeSignatureID int

// NoTypeSignature marks the absence of a signature.
const NoTypeSignature TypeSignatureID = -1

// NoFunction marks the absence of a function reference.
const NoFunction FunctionID = -1

// FunctionInfo describes what kind of function a Function is. A value is
// one of *NamedFunctionInfo, *LambdaInfo, *RecordCtorInfo or
// *VariantCtorInfo.
type FunctionInfo interface {
	functionInfo()
	String() string
}

// NamedFunctionInfo is a module-level function. Body is NoExpr for extern
// functions; Signature is NoTypeSignature for untyped ones.
type NamedFunctionInfo struct {
	Module    string
	Name      string
	Body      ExprID
	Signature TypeSignatureID
	IsMember  bool
	Location  source.LocationID
}

// LambdaInfo is a lifted lambda. Index is unique per host function; the
// argument list is (captures..., user args...).
type LambdaInfo struct {
	Body     ExprID
	HostName string
	Host     FunctionID
	Index    int
	Location source.LocationID
}

// RecordCtorInfo is the generated constructor of a record.
type RecordCtorInfo struct {
	TypeDef types.TypeDefID
}

// VariantCtorInfo is the generated constructor of one ADT variant.
type VariantCtorInfo struct {
	TypeDef types.TypeDefID
	Index   int
}

func (*NamedFunctionInfo) functionInfo() {}
func (*LambdaInfo) functionInfo()        {}
func (*RecordCtorInfo) functionInfo()    {}
func (*VariantCtorInfo) functionInfo()   {}

func (i *NamedFunctionInfo) String() string {
	return fmt.Sprintf("%s/%s", i.Module, i.Name)
}

func (i *LambdaInfo) String() string {
	return fmt.Sprintf("%s/lambda#%d", i.HostName, i.Index)
}

func (i *RecordCtorInfo) String() string {
	return fmt.Sprintf("ctor#%d", int(i.TypeDef))
}

func (i *VariantCtorInfo) String() string {
	return fmt.Sprintf("ctor#%d/%d", int(i.TypeDef), i.Index)
}

// Function is one function of the resolved program.
type Function struct {
	ArgLocations     []source.LocationID
	ImplicitArgCount int
	Info             FunctionInfo
}

// ArgCount returns the total number of arguments including captures.
func (f *Function) ArgCount() int {
	return len(f.ArgLocations) + f.ImplicitArgCount
}

// LambdaHost returns the host function for lambdas.
func (f *Function) LambdaHost() (FunctionID, bool) {
	if info, ok := f.Info.(*LambdaInfo); ok {
		return info.Host, true
	}
	return NoFunction, false
}
