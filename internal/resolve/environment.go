package resolve

import "github.com/sunholo/skiff/internal/ir"

// NamedRef is what a local name resolves to: a function argument or a
// previously bound value.
type NamedRef struct {
	IsArg   bool
	Arg     ir.ArgRef
	Expr    ir.ExprID
	Pattern ir.PatternID
}

// Environment is one scope of local bindings, chained to its parent.
// Levels grow by one per lambda body; the level a name was found at
// decides whether a lambda has to capture it.
type Environment struct {
	variables map[string]NamedRef
	parent    *Environment
	level     int
}

// NewEnvironment creates the root scope of a function body.
func NewEnvironment() *Environment {
	return &Environment{variables: make(map[string]NamedRef)}
}

// Child creates a nested scope one level deeper.
func (e *Environment) Child() *Environment {
	return &Environment{
		variables: make(map[string]NamedRef),
		parent:    e,
		level:     e.level + 1,
	}
}

// Block creates a nested scope at the same level, used for do blocks and
// case arms where bindings shadow but nothing is captured.
func (e *Environment) Block() *Environment {
	return &Environment{
		variables: make(map[string]NamedRef),
		parent:    e,
		level:     e.level,
	}
}

// AddArg binds a name to a function argument.
func (e *Environment) AddArg(name string, function ir.FunctionID, index int) {
	e.variables[name] = NamedRef{
		IsArg: true,
		Arg:   ir.ArgRef{Function: function, Index: index},
	}
}

// AddExprValue binds a name to a bound value.
func (e *Environment) AddExprValue(name string, expr ir.ExprID, pattern ir.PatternID) {
	e.variables[name] = NamedRef{Expr: expr, Pattern: pattern}
}

// Get resolves a name, returning the binding and the level it lives at.
func (e *Environment) Get(name string) (NamedRef, int, bool) {
	if ref, ok := e.variables[name]; ok {
		return ref, e.level, true
	}
	if e.parent != nil {
		return e.parent.Get(name)
	}
	return NamedRef{}, 0, false
}

// Level returns the scope's lambda-nesting level.
func (e *Environment) Level() int {
	return e.level
}
