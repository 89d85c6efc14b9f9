package freevar

import (
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/parser"
)

func mustParse(t *testing.T, text string) expr.Formula {
	t.Helper()
	f, err := parser.ParseFormula(text, language.Arithmetic())
	if err != nil {
		t.Fatalf("ParseFormula(%q): %v", text, err)
	}
	return f
}

func TestOccursFree(t *testing.T) {
	tests := []struct {
		formula  string
		variable string
		expected bool
	}{
		{"Fx", "x", true},
		{"∀xFx", "x", false},
		{"∀xFx ∧ Gx", "x", true},
		{"∀yFx", "x", true},
		{"∃x(Fx ∧ ∀xGx)", "x", false},
		{"(∀x ≤ x)Fx", "x", false},
		{"(∀y ≤ x)Fy", "x", true},
		{"x = a", "y", false},
	}

	for i, tt := range tests {
		got := OccursFree(tt.variable, mustParse(t, tt.formula))
		if got != tt.expected {
			t.Errorf("tests[%d] - OccursFree(%s, %s) = %v, want %v", i, tt.variable, tt.formula, got, tt.expected)
		}
	}
}

func TestFreeVariables(t *testing.T) {
	got := FreeVariables(mustParse(t, "∀x(Rxy → ∃zRzw) ∨ Fy"))
	assert.DeepEqual(t, got, []string{"y", "w"})
}

func TestFreeFor(t *testing.T) {
	tests := []struct {
		term     string
		formula  string
		expected bool
	}{
		{"a", "∀yRxy", true},
		{"y", "∀yRxy", false},
		{"z", "∀yRxy", true},
		{"y", "∀xRxy", true},
		{"y", "Fx ∧ ∀yGy", true},
		{"Sy", "(∃y < a)x = y", false},
	}

	for i, tt := range tests {
		term := mustParse(t, tt.term+" = a").(*expr.Equality).Left
		got := FreeFor(term, "x", mustParse(t, tt.formula))
		if got != tt.expected {
			t.Errorf("tests[%d] - FreeFor(%s, x, %s) = %v, want %v", i, tt.term, tt.formula, got, tt.expected)
		}
	}
}

func TestSubstitute(t *testing.T) {
	f := mustParse(t, "Fx ∧ ∀xGx")
	got := Substitute(f, "x", &expr.Constant{Name: "a"})
	assert.Equal(t, expr.Format(got), "Fa ∧ ∀xGx")

	g := mustParse(t, "∀y(x = y)")
	got = Substitute(g, "x", &expr.Function{Name: "S", Args: []expr.Term{&expr.Variable{Name: "z"}}})
	assert.Equal(t, expr.Format(got), "∀ySz = y")
}
