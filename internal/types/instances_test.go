package types

import (
	"testing"

	"github.com/sunholo/skiff/internal/source"
)

const showClass ClassID = 1

func TestInstanceProbeAndCache(t *testing.T) {
	gen := NewVarGen()
	resolver := NewInstanceResolver(gen)
	resolver.AddUserDefined(showClass, intType(), 4, source.NoLocation)

	if _, ok := resolver.HasInstance(intType(), showClass); !ok {
		t.Fatal("expected instance for Int")
	}
	first := resolver.Get(showClass, intType())
	second := resolver.Get(showClass, intType())
	if first != second {
		t.Errorf("repeated probes disagree: %+v vs %+v", first, second)
	}
	if first.Kind != ResolvedUserDefined || first.Instance != 4 {
		t.Errorf("resolution = %+v", first)
	}
}

func TestInstanceParametricMatch(t *testing.T) {
	gen := NewVarGen()
	resolver := NewInstanceResolver(gen)
	// instance Show (List a/Show)
	arg := gen.NewVarWith([]ClassID{showClass})
	resolver.AddUserDefined(showClass, listOf(arg), 5, source.NoLocation)
	resolver.AddUserDefined(showClass, intType(), 6, source.NoLocation)

	var pending []PendingUnifier
	if !resolver.CheckInstance(showClass, listOf(intType()), source.NoLocation, &pending) {
		t.Fatal("List Int should satisfy Show through the parametric instance")
	}
	result := resolver.Get(showClass, listOf(intType()))
	if result.Kind != ResolvedUserDefined || result.Instance != 5 {
		t.Errorf("resolution = %+v", result)
	}
}

func TestCheckInstanceMissing(t *testing.T) {
	gen := NewVarGen()
	resolver := NewInstanceResolver(gen)
	var pending []PendingUnifier
	if resolver.CheckInstance(showClass, intType(), source.NoLocation, &pending) {
		t.Fatal("Int should not satisfy Show without an instance")
	}
}

func TestCheckInstanceConstrainsVariable(t *testing.T) {
	gen := NewVarGen()
	resolver := NewInstanceResolver(gen)
	v := gen.NewVar()
	var pending []PendingUnifier
	if !resolver.CheckInstance(showClass, v, source.NoLocation, &pending) {
		t.Fatal("a free variable always satisfies a class, gaining the constraint")
	}
	if len(pending) != 1 {
		t.Fatalf("got %d pending unifiers, want 1", len(pending))
	}
	rebound := pending[0].Unifier.Apply(v)
	reboundVar, ok := rebound.(*Var)
	if !ok {
		t.Fatalf("rebinding produced %s", rebound)
	}
	found := false
	for _, c := range reboundVar.Constraints {
		if c == showClass {
			found = true
		}
	}
	if !found {
		t.Errorf("rebound variable %s does not carry the class constraint", rebound)
	}
}

func TestAutoDerivedResolution(t *testing.T) {
	gen := NewVarGen()
	resolver := NewInstanceResolver(gen)
	arg := gen.NewVarWith([]ClassID{showClass})
	treeTy := &Named{Name: "Tree", ID: 9, Args: []Type{arg}}
	resolver.AddAutoDerived(showClass, treeTy, source.NoLocation)
	resolver.AddUserDefined(showClass, intType(), 2, source.NoLocation)

	concrete := &Named{Name: "Tree", ID: 9, Args: []Type{intType()}}
	var pending []PendingUnifier
	if !resolver.CheckInstance(showClass, concrete, source.NoLocation, &pending) {
		t.Fatal("Tree Int should resolve through the auto-derived instance")
	}
	result := resolver.Get(showClass, concrete)
	if result.Kind != ResolvedAutoDerived {
		t.Errorf("resolution kind = %d, want auto-derived", result.Kind)
	}
}
