package syntax

import "github.com/sunholo/skiff/internal/source"

// FunctionDecl is a function definition. Extern functions carry no body.
type FunctionDecl struct {
	Name     string
	Args     []ArgInfo
	Body     ExprID
	Extern   bool
	Location source.LocationID
}

// FunctionSignatureDecl is a standalone `name :: type` declaration.
type FunctionSignatureDecl struct {
	Name        string
	Signature   TypeSignatureID
	Constraints []ClassConstraint
	Location    source.LocationID
}

// ClassConstraint is one `Class arg` entry of a constraint list.
type ClassConstraint struct {
	ClassPath string
	Arg       string
	Location  source.LocationID
}

// RecordFieldDecl is one declared record field.
type RecordFieldDecl struct {
	Name      string
	Signature TypeSignatureID
	Location  source.LocationID
}

// DerivingInfo is one entry of a deriving list.
type DerivingInfo struct {
	Name     string
	Location source.LocationID
}

// RecordDecl is a record definition. External records have no fields.
type RecordDecl struct {
	Name     string
	TypeArgs []ArgInfo
	Fields   []RecordFieldDecl
	External bool
	Deriving []DerivingInfo
	Location source.LocationID
}

// VariantDecl is one constructor of a data declaration.
type VariantDecl struct {
	Name     string
	Items    []TypeSignatureID
	Location source.LocationID
}

// AdtDecl is an algebraic data type definition.
type AdtDecl struct {
	Name     string
	TypeArgs []ArgInfo
	Variants []VariantDecl
	Deriving []DerivingInfo
	Location source.LocationID
}

// ClassDecl is a type class declaration. Members are signature
// declarations; default implementations are function declarations sharing
// a member's name.
type ClassDecl struct {
	Name        string
	Arg         string
	Constraints []ClassConstraint
	MemberSigs  []*FunctionSignatureDecl
	Defaults    []*FunctionDecl
	Location    source.LocationID
}

// InstanceDecl is a class instance definition.
type InstanceDecl struct {
	ClassPath   string
	Signature   TypeSignatureID
	Constraints []ClassConstraint
	Members     []*FunctionDecl
	MemberSigs  []*FunctionSignatureDecl
	Location    source.LocationID
}
