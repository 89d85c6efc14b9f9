package expr

import (
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
)

func v(name string) *Variable { return &Variable{Name: name} }
func c(name string) *Constant { return &Constant{Name: name} }
func atom(p string, args ...Term) *Atomic {
	return &Atomic{Predicate: p, Args: args}
}

func TestStringAndFormat(t *testing.T) {
	p, q := atom("P"), atom("Q")
	tests := []struct {
		node   Node
		str    string
		format string
	}{
		{Binary(OpCond, p, q), "(P → Q)", "P → Q"},
		{Not(Binary(OpAnd, p, q)), "∼(P ∧ Q)", "∼(P ∧ Q)"},
		{&Quantifier{Op: Forall, Var: v("x"), Body: atom("F", v("x"))}, "∀xFx", "∀xFx"},
		{
			&Quantifier{Op: Exists, Var: v("x"), Restriction: &Restriction{Relation: "≤", Bound: c("a")}, Body: atom("F", v("x"))},
			"(∃x ≤ a)Fx", "(∃x ≤ a)Fx",
		},
		{Not(&Equality{Left: v("x"), Right: &Function{Name: "S", Args: []Term{c("∅")}}}), "∼x = S∅", "∼x = S∅"},
		{&Function{Name: "+", Infix: true, Args: []Term{v("x"), v("y")}}, "(x + y)", "(x + y)"},
		{Bottom(), "⊥", "⊥"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.node.String(), tt.str)
		assert.Equal(t, Format(tt.node), tt.format)
	}
}

func TestEqualIgnoresIdentity(t *testing.T) {
	a := Binary(OpOr, atom("F", v("x")), Not(atom("G", c("a"))))
	b := Binary(OpOr, atom("F", v("x")), Not(atom("G", c("a"))))
	d := Binary(OpOr, atom("F", v("y")), Not(atom("G", c("a"))))

	assert.True(t, Equal(a, b), "structurally equal trees")
	assert.False(t, Equal(a, d), "different variable")
	assert.False(t, Equal(a, Binary(OpAnd, a.Args[0], a.Args[1])), "different connective")
	assert.False(t, Equal(&Meta{Name: "𝒜"}, &Meta{Name: "𝒜", Sort: SortTerm}), "different sorts")
}

func TestWalkAtAndSplice(t *testing.T) {
	root := Binary(OpCond, atom("P"), Not(atom("Q")))

	var paths []string
	Walk(root, func(p Path, _ Node) bool {
		paths = append(paths, p.String())
		return true
	})
	assert.DeepEqual(t, paths, []string{"ε", "0", "1", "1.0"})

	assert.True(t, Equal(At(root, Path{1, 0}), atom("Q")))
	assert.Nil(t, At(root, Path{3}))

	out, ok := Splice(root, Path{1, 0}, atom("R"))
	assert.True(t, ok)
	assert.Equal(t, Format(out), "P → ∼R")
	assert.Equal(t, Format(root), "P → ∼Q", "splice must not mutate the original")

	_, ok = Splice(root, Path{0}, v("x"))
	assert.False(t, ok, "a term cannot fill a formula slot")
}

func TestMetavariables(t *testing.T) {
	a := &Meta{Name: "𝒜"}
	x := &Meta{Name: "𝓍", Sort: SortVariable}
	schema := Binary(OpAnd, &Quantifier{Op: Forall, Var: x, Body: a}, a)

	ms := Metavariables(schema)
	assert.Len(t, ms, 2)
	assert.Equal(t, ms[0].Name, "𝓍")
	assert.True(t, IsFormula(a))
	assert.True(t, IsTerm(x))
}
