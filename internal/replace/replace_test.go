package replace

import (
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/parser"
)

func object(t *testing.T, text string) expr.Formula {
	t.Helper()
	f, err := parser.ParseFormula(text, language.Arithmetic())
	if err != nil {
		t.Fatalf("ParseFormula(%q): %v", text, err)
	}
	return f
}

func schema(text string) expr.Formula {
	return parser.MustParseSchema(text, language.Arithmetic())
}

func TestCheck(t *testing.T) {
	tests := []struct {
		left, right string
		in, out     string
		expected    bool
	}{
		{"∼∼𝒜", "𝒜", "∼∼P", "P", true},
		{"∼∼𝒜", "𝒜", "Q ∧ ∼∼P", "Q ∧ P", true},
		{"∼∼𝒜", "𝒜", "∼∼Q ∧ ∼∼P", "Q ∧ ∼∼P", true},
		{"∼∼𝒜", "𝒜", "∼∼Q ∧ ∼∼P", "∼∼Q ∧ P", true},
		{"∼∼𝒜", "𝒜", "∼∼Q ∧ ∼∼P", "Q ∧ P", false},
		{"∼∼𝒜", "𝒜", "Q ∧ ∼∼P", "R ∧ P", false},
		{"𝒜 ∧ 𝓑", "𝓑 ∧ 𝒜", "∼(P ∧ Q)", "∼(Q ∧ P)", true},
		{"𝒜 → 𝓑", "∼𝒜 ∨ 𝓑", "∀x(Fx → Gx)", "∀x(∼Fx ∨ Gx)", true},
		{"∼(𝒜 ∧ 𝓑)", "∼𝒜 ∨ ∼𝓑", "∼(P ∧ Q)", "∼P ∨ ∼R", false},
	}

	for i, tt := range tests {
		got := Check(schema(tt.left), schema(tt.right), object(t, tt.in), object(t, tt.out))
		if got != tt.expected {
			t.Errorf("tests[%d] - Check(%s ⇒ %s, %s, %s) = %v, want %v", i, tt.left, tt.right, tt.in, tt.out, got, tt.expected)
		}
	}
}

func TestCheckSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"∼∼𝒜", "𝒜"},
		{"𝒜 → 𝓑", "∼𝓑 → ∼𝒜"},
		{"∼∀𝓍𝒜", "∃𝓍∼𝒜"},
	}
	formulas := []string{
		"∼∼P → Q", "P → Q", "∼Q → ∼P", "∼∀xFx", "∃x∼Fx", "R ∨ ∼∀xFx", "R ∨ ∃x∼Fx",
	}

	for _, p := range pairs {
		l, r := schema(p[0]), schema(p[1])
		for _, a := range formulas {
			for _, b := range formulas {
				fa, fb := object(t, a), object(t, b)
				if Check(l, r, fa, fb) != Check(r, l, fb, fa) {
					t.Errorf("Check(%s, %s, %s, %s) is not symmetric", p[0], p[1], a, b)
				}
			}
		}
	}
}

func TestCheckFreshVariable(t *testing.T) {
	left, right := schema("𝓈 ≤ 𝓉"), schema("∃𝓋(𝓋 + 𝓈 = 𝓉)")
	guard := NotFree{Var: "𝓋", In: []expr.Node{schema("𝓈 = 𝓉")}}

	assert.True(t, Check(left, right, object(t, "a ≤ b"), object(t, "∃z(z + a = b)"), guard))
	assert.True(t, Check(right, left, object(t, "∃z(z + a = b)"), object(t, "a ≤ b"), guard))
	assert.False(t, Check(left, right, object(t, "a ≤ z"), object(t, "∃z(z + a = z)"), guard))
}

func TestCheckPairs(t *testing.T) {
	idem := []Pair{{Left: schema("𝒜 ∨ 𝒜"), Right: schema("𝒜")}}
	assert.True(t, CheckPairs(idem, object(t, "P ∨ P"), object(t, "P")))
	assert.True(t, CheckPairs(idem, object(t, "P"), object(t, "P ∨ P")))
	// idempotence grows any sub-formula, so the same shape appears inside
	assert.True(t, CheckPairs(idem, object(t, "Q → P"), object(t, "Q → (P ∨ P)")))
	assert.False(t, CheckPairs(idem, object(t, "P ∨ Q"), object(t, "P")))
}

func TestNotFreeGuard(t *testing.T) {
	pair := []Pair{{
		Left:   schema("∀𝓍(𝒜 ∧ 𝒞)"),
		Right:  schema("∀𝓍𝒜 ∧ 𝒞"),
		Guards: []Guard{NotFree{Var: "𝓍", In: []expr.Node{schema("𝒞")}}},
	}}
	assert.True(t, CheckPairs(pair, object(t, "∀x(Fx ∧ P)"), object(t, "∀xFx ∧ P")))
	assert.False(t, CheckPairs(pair, object(t, "∀x(Fx ∧ Gx)"), object(t, "∀xFx ∧ Gx")))
}

func TestReplaceSome(t *testing.T) {
	a, b := &expr.Constant{Name: "a"}, &expr.Constant{Name: "b"}
	x, y := &expr.Variable{Name: "x"}, &expr.Variable{Name: "y"}

	tests := []struct {
		from, to expr.Node
		in, out  string
		expected bool
	}{
		{a, b, "Raa", "Rba", true},
		{a, b, "Raa", "Rbb", true},
		{a, b, "Raa", "Raa", true},
		{a, b, "Raa", "Rbc", false},
		{x, a, "Fx ∧ ∀xGx", "Fa ∧ ∀xGx", true},
		{x, a, "Fx ∧ ∀xGx", "Fa ∧ ∀xGa", false},
		{x, y, "∀yRxy", "∀yRyy", false},
		{a, b, "Sa = a", "Sb = a", true},
	}

	for i, tt := range tests {
		got := ReplaceSome(tt.from, tt.to, object(t, tt.in), object(t, tt.out))
		if got != tt.expected {
			t.Errorf("tests[%d] - ReplaceSome(%s, %s, %s, %s) = %v, want %v", i, tt.from, tt.to, tt.in, tt.out, got, tt.expected)
		}
	}
}

func TestIdempotenceShape(t *testing.T) {
	left, right := schema("𝒜"), schema("(𝒜 ∧ 𝒜)")
	assert.True(t, Check(left, right, object(t, "P"), object(t, "(P ∧ P)")))
	assert.False(t, Check(left, right, object(t, "P"), object(t, "(P ∨ P)")))
}
