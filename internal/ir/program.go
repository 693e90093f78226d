package ir

import (
	"fmt"

	"github.com/sunholo/skiff/internal/source"
	"github.com/sunholo/skiff/internal/store"
	"github.com/sunholo/skiff/internal/types"
)

// Program is the resolved program: the containers populated by the name
// resolver plus the type annotations the checker fills in.
type Program struct {
	Exprs          *store.Container[ExprID, ExprInfo]
	Patterns       *store.Container[PatternID, PatternInfo]
	TypeSignatures *store.Container[TypeSignatureID, TypeSignatureInfo]
	Functions      *store.Container[FunctionID, *Function]
	TypeDefs       *store.Container[types.TypeDefID, TypeDef]
	Classes        *store.Container[types.ClassID, *Class]
	ClassMembers   *store.Container[types.ClassMemberID, *ClassMember]
	Instances      *store.Container[types.InstanceID, *Instance]

	// Filled by the type checker.
	ExprTypes         map[ExprID]types.Type
	PatternTypes      map[PatternID]types.Type
	FunctionTypes     map[FunctionID]types.Type
	ClassMemberTypes  map[types.ClassMemberID]ClassMemberTypeInfo
	AdtTypeInfoMap    map[types.TypeDefID]*AdtTypeInfo
	RecordTypeInfoMap map[types.TypeDefID]*RecordTypeInfo

	// Name indices registered by the resolver.
	NamedTypes     map[string]types.TypeDefID
	NamedFunctions map[string]FunctionID
	ClassNames     map[string]types.ClassID

	Gen              *types.VarGen
	InstanceResolver *types.InstanceResolver
}

// NewProgram creates an empty resolved program.
func NewProgram() *Program {
	gen := types.NewVarGen()
	return &Program{
		Exprs:             store.New[ExprID, ExprInfo](),
		Patterns:          store.New[PatternID, PatternInfo](),
		TypeSignatures:    store.New[TypeSignatureID, TypeSignatureInfo](),
		Functions:         store.New[FunctionID, *Function](),
		TypeDefs:          store.New[types.TypeDefID, TypeDef](),
		Classes:           store.New[types.ClassID, *Class](),
		ClassMembers:      store.New[types.ClassMemberID, *ClassMember](),
		Instances:         store.New[types.InstanceID, *Instance](),
		ExprTypes:         make(map[ExprID]types.Type),
		PatternTypes:      make(map[PatternID]types.Type),
		FunctionTypes:     make(map[FunctionID]types.Type),
		ClassMemberTypes:  make(map[types.ClassMemberID]ClassMemberTypeInfo),
		AdtTypeInfoMap:    make(map[types.TypeDefID]*AdtTypeInfo),
		RecordTypeInfoMap: make(map[types.TypeDefID]*RecordTypeInfo),
		NamedTypes:        make(map[string]types.TypeDefID),
		NamedFunctions:    make(map[string]FunctionID),
		ClassNames:        make(map[string]types.ClassID),
		Gen:               gen,
		InstanceResolver:  types.NewInstanceResolver(gen),
	}
}

// AddExpr interns an expression with its location.
func (p *Program) AddExpr(expr Expr, loc source.LocationID) ExprID {
	return p.Exprs.Add(ExprInfo{Expr: expr, Location: loc})
}

// UpdateExpr replaces the payload of an expression, keeping its location.
func (p *Program) UpdateExpr(id ExprID, expr Expr) {
	info := p.Exprs.Get(id)
	info.Expr = expr
	p.Exprs.Set(id, info)
}

// AddPattern interns a pattern with its location.
func (p *Program) AddPattern(pattern Pattern, loc source.LocationID) PatternID {
	return p.Patterns.Add(PatternInfo{Pattern: pattern, Location: loc})
}

// AddTypeSignature interns a resolved signature with its location.
func (p *Program) AddTypeSignature(sig TypeSignature, loc source.LocationID) TypeSignatureID {
	return p.TypeSignatures.Add(TypeSignatureInfo{Signature: sig, Location: loc})
}

// ExprLocation returns the location attached to an expression.
func (p *Program) ExprLocation(id ExprID) source.LocationID {
	return p.Exprs.Get(id).Location
}

// PatternLocation returns the location attached to a pattern.
func (p *Program) PatternLocation(id PatternID) source.LocationID {
	return p.Patterns.Get(id).Location
}

// ExprType returns the final type of an expression.
func (p *Program) ExprType(id ExprID) types.Type {
	ty, ok := p.ExprTypes[id]
	if !ok {
		panic(fmt.Sprintf("ir: expression #%d has no type", int(id)))
	}
	return ty
}

// PatternType returns the final type of a pattern.
func (p *Program) PatternType(id PatternID) types.Type {
	ty, ok := p.PatternTypes[id]
	if !ok {
		panic(fmt.Sprintf("ir: pattern #%d has no type", int(id)))
	}
	return ty
}

// FunctionType returns the final type of a function.
func (p *Program) FunctionType(id FunctionID) types.Type {
	ty, ok := p.FunctionTypes[id]
	if !ok {
		panic(fmt.Sprintf("ir: function #%d has no type", int(id)))
	}
	return ty
}

// Unifier creates a fresh unifier over the program's variable generator.
func (p *Program) Unifier() *types.Unifier {
	return types.NewUnifier(p.Gen)
}

// RegisterNamedType records a typedef under Module.Name.
func (p *Program) RegisterNamedType(module, name string, id types.TypeDefID) {
	p.NamedTypes[module+"."+name] = id
}

// NamedType looks up a typedef by Module.Name.
func (p *Program) NamedType(module, name string) (types.TypeDefID, bool) {
	id, ok := p.NamedTypes[module+"."+name]
	return id, ok
}

func (p *Program) namedGroundType(module, name string) types.Type {
	id, ok := p.NamedType(module, name)
	if !ok {
		panic(fmt.Sprintf("ir: builtin type %s.%s is not registered", module, name))
	}
	return &types.Named{Name: name, ID: id}
}

// Ground types of the implicit prelude modules.
func (p *Program) IntType() types.Type      { return p.namedGroundType("Int", "Int") }
func (p *Program) FloatType() types.Type    { return p.namedGroundType("Float", "Float") }
func (p *Program) StringType() types.Type   { return p.namedGroundType("String", "String") }
func (p *Program) BoolType() types.Type     { return p.namedGroundType("Bool", "Bool") }
func (p *Program) CharType() types.Type     { return p.namedGroundType("Char", "Char") }
func (p *Program) OrderingType() types.Type { return p.namedGroundType("Ordering", "Ordering") }

// ListType builds List elem.
func (p *Program) ListType(elem types.Type) types.Type {
	id, ok := p.NamedType("List", "List")
	if !ok {
		panic("ir: builtin type List.List is not registered")
	}
	return &types.Named{Name: "List", ID: id, Args: []types.Type{elem}}
}

// Main returns the entry function Main.main.
func (p *Program) Main() (FunctionID, bool) {
	id, ok := p.NamedFunctions["Main.main"]
	return id, ok
}

// ClassByName looks up a class by qualified name.
func (p *Program) ClassByName(fullName string) (types.ClassID, bool) {
	id, ok := p.ClassNames[fullName]
	return id, ok
}

// MemberOf finds the named member of a class.
func (p *Program) MemberOf(class types.ClassID, name string) (types.ClassMemberID, bool) {
	for _, memberID := range p.Classes.Get(class).Members {
		if p.ClassMembers.Get(memberID).Name == name {
			return memberID, true
		}
	}
	return 0, false
}

// ShowMember returns the show member of the Show class.
func (p *Program) ShowMember() types.ClassMemberID {
	class, ok := p.ClassByName("Std.Ops.Show")
	if !ok {
		panic("ir: class Std.Ops.Show is not registered")
	}
	member, ok := p.MemberOf(class, "show")
	if !ok {
		panic("ir: class Std.Ops.Show has no member show")
	}
	return member
}
