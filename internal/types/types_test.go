package types

import "testing"

func intType() Type {
	return &Named{Name: "Int", ID: 1}
}

func listOf(elem Type) Type {
	return &Named{Name: "List", ID: 2, Args: []Type{elem}}
}

func TestUnifyNamed(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	v := gen.NewVar()
	if err := u.Unify(listOf(v), listOf(intType())); err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if got := u.Apply(v); !Equal(got, intType()) {
		t.Errorf("bound = %s, want Int", got)
	}
}

func TestUnifyNamedMismatch(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	if err := u.Unify(intType(), listOf(intType())); err != ErrFail {
		t.Errorf("err = %v, want ErrFail", err)
	}
}

func TestUnifyTupleArity(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	two := &Tuple{Items: []Type{intType(), intType()}}
	three := &Tuple{Items: []Type{intType(), intType(), intType()}}
	if err := u.Unify(two, three); err != ErrFail {
		t.Errorf("err = %v, want ErrFail", err)
	}
}

func TestUnifyFunction(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	a := gen.NewVar()
	b := gen.NewVar()
	from := &Func{From: a, To: b}
	to := &Func{From: intType(), To: listOf(intType())}
	if err := u.Unify(from, to); err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	if !Equal(u.Apply(a), intType()) {
		t.Error("argument variable not bound to Int")
	}
	if !Equal(u.Apply(b), listOf(intType())) {
		t.Error("result variable not bound to List Int")
	}
}

func TestOccursCheck(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	v := gen.NewVar()
	recursive := &Func{From: v, To: intType()}
	if err := u.Unify(v, recursive); err != ErrRecursive {
		t.Errorf("err = %v, want ErrRecursive", err)
	}
}

func TestFixedArgRigidity(t *testing.T) {
	gen := NewVarGen()
	a := &FixedArg{Name: "a", Index: gen.NewIndex()}
	b := &FixedArg{Name: "b", Index: gen.NewIndex()}
	u := NewUnifier(gen)
	if err := u.Unify(a, b); err != ErrFail {
		t.Errorf("distinct fixed args unified: %v", err)
	}
	u = NewUnifier(gen)
	if err := u.Unify(a, a); err != nil {
		t.Errorf("identical fixed args should unify: %v", err)
	}
}

func TestConstraintAccumulation(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	v := gen.NewVarWith([]ClassID{7})
	if err := u.Unify(v, intType()); err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	constraints := u.Substitution().Constraints()
	if len(constraints) != 1 {
		t.Fatalf("got %d constraints, want 1", len(constraints))
	}
	if constraints[0].Class != 7 || !Equal(constraints[0].Ty, intType()) {
		t.Errorf("constraint = %+v", constraints[0])
	}
}

func TestApplyIdempotent(t *testing.T) {
	gen := NewVarGen()
	u := NewUnifier(gen)
	v := gen.NewVar()
	if err := u.Unify(v, listOf(intType())); err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	ty := &Func{From: v, To: v}
	once := u.Apply(ty)
	twice := u.Apply(once)
	if !Equal(once, twice) {
		t.Errorf("apply not idempotent: %s vs %s", once, twice)
	}
}

func TestRemoveFixed(t *testing.T) {
	fixed := &Func{
		From: &FixedArg{Name: "a", Index: 3, Constraints: []ClassID{1}},
		To:   &FixedArg{Name: "a", Index: 3, Constraints: []ClassID{1}},
	}
	removed := RemoveFixed(fixed)
	fn := removed.(*Func)
	v, ok := fn.From.(*Var)
	if !ok || v.Index != 3 || len(v.Constraints) != 1 {
		t.Errorf("RemoveFixed = %s", removed)
	}
}

func TestDuplicateSharing(t *testing.T) {
	gen := NewVarGen()
	v := gen.NewVar().(*Var)
	ty := &Func{From: v, To: v}
	argMap := make(map[int]int)
	dup := Duplicate(ty, argMap, gen).(*Func)
	from := dup.From.(*Var)
	to := dup.To.(*Var)
	if from.Index != to.Index {
		t.Error("shared variable lost sharing during duplication")
	}
	if from.Index == v.Index {
		t.Error("duplication did not freshen the variable")
	}
}

func TestBaseTypeOf(t *testing.T) {
	gen := NewVarGen()
	tests := []struct {
		ty   Type
		want BaseKind
	}{
		{intType(), BaseNamed},
		{&Tuple{}, BaseTuple},
		{&Func{From: intType(), To: intType()}, BaseFunction},
		{gen.NewVar(), BaseGeneric},
	}
	for _, tt := range tests {
		if got := BaseTypeOf(tt.ty); got.Kind != tt.want {
			t.Errorf("BaseTypeOf(%s).Kind = %d, want %d", tt.ty, got.Kind, tt.want)
		}
	}
}
