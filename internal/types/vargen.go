package types

import "github.com/sunholo/skiff/internal/store"

// VarGen issues fresh type-variable indices from a counter shared by every
// pass of the compilation.
type VarGen struct {
	counter *store.Counter
}

// NewVarGen creates a generator with its own counter.
func NewVarGen() *VarGen {
	return &VarGen{counter: &store.Counter{}}
}

// NewIndex returns a fresh variable index.
func (g *VarGen) NewIndex() int {
	return g.counter.Next()
}

// NewVar returns a fresh unconstrained type variable.
func (g *VarGen) NewVar() Type {
	return &Var{Index: g.counter.Next()}
}

// NewVarWith returns a fresh type variable carrying the given constraints.
func (g *VarGen) NewVarWith(constraints []ClassID) Type {
	return &Var{Index: g.counter.Next(), Constraints: constraints}
}
