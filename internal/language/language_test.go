package language

import "testing"

func TestNormalizeRewritesAliases(t *testing.T) {
	l := Sentential()

	tests := []struct {
		in   string
		want string
	}{
		{"~P -> Q", "∼P → Q"},
		{"P <-> Q", "P ↔ Q"},
		{"(P & Q) \\/ R", "(P ∧ Q) ∨ R"},
		{"P ⊃ Q", "P → Q"},
		{"¬#", "∼⊥"},
		{"1-3->I", "1-3→I"},
	}

	for _, tt := range tests {
		if got := l.Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArithmeticVocabulary(t *testing.T) {
	l := Arithmetic()
	if !l.Quantifiers || !l.Equality || !l.Arithmetic {
		t.Fatalf("arithmetic flags not set: %+v", l)
	}
	if !l.IsRestrictionRelation(Le) || !l.IsRestrictionRelation(Lt) || l.IsRestrictionRelation(Eq) {
		t.Errorf("unexpected restriction relations %v", l.RestrictionRelations)
	}
	if got := l.Normalize("x <= y"); got != "x ≤ y" {
		t.Errorf("Normalize(x <= y) = %q", got)
	}
}

func TestMetaCompanion(t *testing.T) {
	obj := Quantificational()
	meta := obj.Meta()

	if meta.Grammar != GrammarMeta || obj.Grammar != GrammarObject {
		t.Fatalf("grammar mismatch: obj=%v meta=%v", obj.Grammar, meta.Grammar)
	}
	if meta.Meta() != meta {
		t.Errorf("Meta() of a meta language should return itself")
	}
	if close, ok := meta.ClosingFor("["); !ok || close != "]" {
		t.Errorf("ClosingFor([) = %q, %v", close, ok)
	}
	if obj.String() != "lm.quantificational@1.0.0" {
		t.Errorf("String() = %q", obj.String())
	}
}
