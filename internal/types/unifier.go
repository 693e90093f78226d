package types

// Unifier computes most-general substitutions. It wraps a Substitution and
// accumulates class obligations while binding constrained variables.
type Unifier struct {
	sub *Substitution
	gen *VarGen
}

// NewUnifier creates an empty unifier sharing the program's variable
// generator.
func NewUnifier(gen *VarGen) *Unifier {
	return &Unifier{sub: NewSubstitution(), gen: gen}
}

// Unify computes the most general unifier of t1 and t2, extending the
// substitution in place. Named types must agree on typedef id and unify
// pointwise; tuple and function types unify structurally; a variable binds
// to anything passing the occurs check, recording its class constraints
// against the bound type. Fixed args are rigid: only the same index
// unifies.
func (u *Unifier) Unify(t1, t2 Type) error {
	t1 = u.sub.Apply(t1)
	t2 = u.sub.Apply(t2)
	switch a := t1.(type) {
	case *Named:
		if b, ok := t2.(*Named); ok {
			if a.ID != b.ID || len(a.Args) != len(b.Args) {
				return ErrFail
			}
			for i := range a.Args {
				if err := u.Unify(a.Args[i], b.Args[i]); err != nil {
					return err
				}
			}
			return nil
		}
	}
	if a, ok := t1.(*Var); ok {
		return u.bindVar(a, t2)
	}
	if b, ok := t2.(*Var); ok {
		return u.bindVar(b, t1)
	}
	switch a := t1.(type) {
	case *Tuple:
		if b, ok := t2.(*Tuple); ok {
			if len(a.Items) != len(b.Items) {
				return ErrFail
			}
			for i := range a.Items {
				if err := u.Unify(a.Items[i], b.Items[i]); err != nil {
					return err
				}
			}
			return nil
		}
	case *Func:
		if b, ok := t2.(*Func); ok {
			if err := u.Unify(a.From, b.From); err != nil {
				return err
			}
			return u.Unify(a.To, b.To)
		}
	case *FixedArg:
		if b, ok := t2.(*FixedArg); ok && a.Index == b.Index {
			return nil
		}
	}
	return ErrFail
}

func (u *Unifier) bindVar(v *Var, ty Type) error {
	if other, ok := ty.(*Var); ok && other.Index == v.Index {
		return nil
	}
	for _, c := range v.Constraints {
		u.sub.AddConstraint(c, ty)
	}
	return u.sub.Add(v.Index, ty)
}

// Apply substitutes the unifier's bindings in ty.
func (u *Unifier) Apply(ty Type) Type {
	return u.sub.Apply(ty)
}

// Substitution exposes the accumulated substitution.
func (u *Unifier) Substitution() *Substitution {
	return u.sub
}

// Gen exposes the shared variable generator.
func (u *Unifier) Gen() *VarGen {
	return u.gen
}

// Key renders a canonical form of the unifier's substitution.
func (u *Unifier) Key() string {
	return u.sub.Key()
}
