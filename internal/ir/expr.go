// Package ir is the resolved intermediate representation: every name bound
// to an identifier, lambdas lifted to top-level functions with capture
// lists, operators desugared to calls. The type checker annotates it in
// place; the monomorphiser consumes it read-only.
package ir

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/types"
)

// ExprID identifies an expression in the program's expression container.
type ExprID int

// NoExpr marks the absence of an expression (body-less functions).
const NoExpr ExprID = -1

// ArgRef points at a positional argument of the owning function. Captured
// refs index the capture prefix of a lambda.
type ArgRef struct {
	Captured bool
	Function FunctionID
	Index    int
}

// Expr is an expression node. A value is one of the variant structs below.
type Expr interface {
	exprNode()
}

// ExprArgRef references a function argument.
type ExprArgRef struct {
	Ref ArgRef
}

// ExprValue references a previously bound value by its defining expression
// and binding pattern.
type ExprValue struct {
	Expr    ExprID
	Pattern PatternID
}

// Bind is an irrefutable binding inside a do sequence.
type Bind struct {
	Pattern PatternID
	Rhs     ExprID
}

// Do is a sequence; its value is the last item.
type Do struct {
	Items []ExprID
}

// StaticCall calls a known function.
type StaticCall struct {
	Function FunctionID
	Args     []ExprID
}

// DynamicCall calls the value of an expression.
type DynamicCall struct {
	Callee ExprID
	Args   []ExprID
}

// ClassCall calls a class member; instance selection happens after type
// checking.
type ClassCall struct {
	Member types.ClassMemberID
	Args   []ExprID
}

// Case is one arm of a CaseOf.
type Case struct {
	Pattern PatternID
	Body    ExprID
}

// CaseOf is a pattern match; arms are tried in order, first match wins.
type CaseOf struct {
	Body  ExprID
	Cases []Case
}

// Literal expressions.
type (
	IntegerLiteral struct{ Value int64 }
	FloatLiteral   struct{ Value float64 }
	CharLiteral    struct{ Value rune }
	StringLiteral  struct{ Value string }
	BoolLiteral    struct{ Value bool }
)

// TupleExpr builds a tuple value.
type TupleExpr struct {
	Items []ExprID
}

// ListExpr builds a list value.
type ListExpr struct {
	Items []ExprID
}

// RecordInitField is one field initialiser carrying its declaration index.
type RecordInitField struct {
	Expr  ExprID
	Index int
}

// RecordInit initialises every field of a record.
type RecordInit struct {
	TypeDef types.TypeDefID
	Fields  []RecordInitField
}

// RecordUpdate replaces some fields of a record value. Candidates lists
// one alternative per record type the field names could belong to; the
// type checker narrows it to exactly one.
type RecordUpdate struct {
	Receiver   ExprID
	Candidates []RecordUpdateInfo
}

// RecordUpdateInfo is the field set of one candidate record type.
type RecordUpdateInfo struct {
	TypeDef types.TypeDefID
	Items   []RecordInitField
}

// FieldAccessInfo is one candidate record for a field access by name.
type FieldAccessInfo struct {
	Record types.TypeDefID
	Index  int
	Name   string
}

// FieldAccess accesses a record field by name. The resolver records every
// record carrying the name; the type checker narrows Infos to one entry.
type FieldAccess struct {
	Infos    []FieldAccessInfo
	Receiver ExprID
}

// TupleFieldAccess accesses a tuple position.
type TupleFieldAccess struct {
	Index    int
	Receiver ExprID
}

// Formatter splices shown values into a literal format string; the number
// of "{}" placeholders equals the number of args.
type Formatter struct {
	Fmt  string
	Args []ExprID
}

func (*ExprArgRef) exprNode()       {}
func (*ExprValue) exprNode()        {}
func (*Bind) exprNode()             {}
func (*Do) exprNode()               {}
func (*StaticCall) exprNode()       {}
func (*DynamicCall) exprNode()      {}
func (*ClassCall) exprNode()        {}
func (*CaseOf) exprNode()           {}
func (*IfExpr) exprNode()           {}
func (*IntegerLiteral) exprNode()   {}
func (*FloatLiteral) exprNode()     {}
func (*CharLiteral) exprNode()      {}
func (*StringLiteral) exprNode()    {}
func (*BoolLiteral) exprNode()      {}
func (*TupleExpr) exprNode()        {}
func (*ListExpr) exprNode()         {}
func (*RecordInit) exprNode()       {}
func (*RecordUpdate) exprNode()     {}
func (*FieldAccess) exprNode()      {}
func (*TupleFieldAccess) exprNode() {}
func (*Formatter) exprNode()        {}

// IfExpr is a two-way conditional.
type IfExpr struct {
	Cond ExprID
	Then ExprID
	Else ExprID
}

// ExprInfo pairs an expression with its location.
type ExprInfo struct {
	Expr     Expr
	Location source.LocationID
}
