// Package syntax is the surface syntax tree produced by the parser. Names
// are unresolved paths; the resolver turns them into identifiers.
package syntax

import (
	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/store"
)

// ModuleID identifies a parsed module.
type ModuleID int

// Module is one parsed module.
type Module struct {
	ID       ModuleID
	Name     string
	Export   EIList
	Imports  []Import
	Records  []*RecordDecl
	Adts     []*AdtDecl
	Classes  []*ClassDecl
	Inst     []*InstanceDecl
	Funcs    []*FunctionDecl
	FuncSigs []*FunctionSignatureDecl
	Location source.LocationID
}

// Import brings another module's exports into scope. Hiding inverts the
// list: everything except the named items.
type Import struct {
	ModuleName string
	Alias      string
	Hiding     bool
	List       EIList
	Location   source.LocationID
}

// EIKind distinguishes the two export/import pattern shapes.
type EIKind int

const (
	EIImplicitAll EIKind = iota
	EIExplicit
)

// EIList is an export or import pattern list.
type EIList struct {
	Kind  EIKind
	Items []EIItemInfo
}

// EIItemInfo is one explicit pattern entry with its location.
type EIItemInfo struct {
	Item     EIItem
	Location source.LocationID
}

// EIItem is either a plain name or a group with member selectors.
type EIItem struct {
	Name    string
	Group   bool
	Members []EIMemberInfo
}

// EIMemberInfo is one member selector of a group pattern.
type EIMemberInfo struct {
	All      bool
	Name     string
	Location source.LocationID
}

// Program is the parsed program: all modules plus the containers their
// bodies intern into.
type Program struct {
	Modules        []*Module
	Exprs          *store.Container[ExprID, ExprInfo]
	Patterns       *store.Container[PatternID, PatternInfo]
	TypeSignatures *store.Container[TypeSignatureID, TypeSignatureInfo]
}

// NewProgram creates an empty parsed program.
func NewProgram() *Program {
	return &Program{
		Exprs:          store.New[ExprID, ExprInfo](),
		Patterns:       store.New[PatternID, PatternInfo](),
		TypeSignatures: store.New[TypeSignatureID, TypeSignatureInfo](),
	}
}

// AddModule appends a module and assigns its id.
func (p *Program) AddModule(m *Module) ModuleID {
	m.ID = ModuleID(len(p.Modules))
	p.Modules = append(p.Modules, m)
	return m.ID
}

// AddExpr interns an expression with its location.
func (p *Program) AddExpr(expr Expr, loc source.LocationID) ExprID {
	return p.Exprs.Add(ExprInfo{Expr: expr, Location: loc})
}

// AddPattern interns a pattern with its location.
func (p *Program) AddPattern(pattern Pattern, loc source.LocationID) PatternID {
	return p.Patterns.Add(PatternInfo{Pattern: pattern, Location: loc})
}

// AddTypeSignature interns a type signature with its location.
func (p *Program) AddTypeSignature(sig TypeSignature, loc source.LocationID) TypeSignatureID {
	return p.TypeSignatures.Add(TypeSignatureInfo{Signature: sig, Location: loc})
}

// ExprLocation returns the location of an expression.
func (p *Program) ExprLocation(id ExprID) source.LocationID {
	return p.Exprs.Get(id).Location
}

// PatternLocation returns the location of a pattern.
func (p *Program) PatternLocation(id PatternID) source.LocationID {
	return p.Patterns.Get(id).Location
}
