package rules

import (
	"regexp"
	"strings"

	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/parser"
	"github.com/orizon-lang/derivcheck/internal/replace"
)

// Every template is written in the richest vocabulary
var templates = language.Arithmetic().Meta()

func schema(text string) expr.Node {
	return parser.MustParseSchema(text, templates)
}

func schemas(texts ...string) []expr.Node {
	out := make([]expr.Node, len(texts))
	for i, t := range texts {
		out[i] = schema(t)
	}
	return out
}

// term builds a bare term or variable metavariable, which the parser only
// accepts inside a formula
func term(name string, sort expr.Sort) expr.Node {
	return &expr.Meta{Name: name, Sort: sort}
}

func pair(left, right string, guards ...replace.Guard) replace.Pair {
	return replace.Pair{Left: schema(left), Right: schema(right), Guards: guards}
}

// Citation shapes
const (
	citeNone      = ""
	citeOne       = `\d+`
	citeTwo       = `\d+,\d+`
	citeOneOrTwo  = `\d+(?:,\d+)?`
	citeRange     = `\d+-\d+`
	citeTwoRanges = `\d+-\d+,\d+-\d+`
	citeOrElim    = `\d+,\d+-\d+,\d+-\d+`
	citeLineRange = `\d+,\d+-\d+`
)

func alternation(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// justification builds the pattern for a rule cited as "1,2 →E" or
// "→E 1,2"; the citations land in group pre or post
func justification(citation string, names ...string) *regexp.Regexp {
	n := alternation(names)
	if citation == citeNone {
		return regexp.MustCompile("^" + n + "$")
	}
	return regexp.MustCompile(`^(?:(?P<pre>` + citation + `)` + n + `|` + n + `(?P<post>` + citation + `))$`)
}

const assumptionWord = `(?:A|Ass|Assumption)`

// exit matches an assumption annotated with an exit strategy for one of
// the named rules, such as "A(g,→I)" or "A(g,2∨E)"
func exit(strategy string, names ...string) *regexp.Regexp {
	return regexp.MustCompile(`^` + assumptionWord + `\(` + strategy + `,\d*` + alternation(names) + `\)$`)
}

var (
	premisePattern        = regexp.MustCompile(`^(?:P|PR|Prem|Premise)$`)
	anyAssumptionPattern  = regexp.MustCompile(`^` + assumptionWord + `(?:\(.*\))?$`)
	annotatedAssumption   = regexp.MustCompile(`^` + assumptionWord + `\([gc],[^()]+\)$`)
	bareAssumptionPattern = regexp.MustCompile(`^` + assumptionWord + `$`)
)

func rule(kind RuleKind, citation string, ruleNames []string, family Family) *Rule {
	return &Rule{Kind: kind, Name: ruleNames[0], Pattern: justification(citation, ruleNames...), Family: family}
}

func simple(forms ...Form) *Simple { return &Simple{Forms: forms} }

func names(n ...string) []string { return n }

// Primitive rules

func premiseRule() *Rule {
	return &Rule{Kind: KindPremise, Name: "P", Pattern: premisePattern, Family: &Structural{Premise: true}}
}

func assumptionRule() *Rule {
	return &Rule{Kind: KindAssumption, Name: "A", Pattern: annotatedAssumption, Family: &Structural{}}
}

func reiteration() *Rule {
	return rule(KindReiteration, citeOne, names("R", "Reit"), simple(
		Form{Target: schema("𝒜"), Cites: schemas("𝒜")},
	))
}

func andIntro() *Rule {
	return rule(KindAndIntro, citeTwo, names("∧I"), simple(
		Form{Target: schema("𝒜 ∧ 𝓑"), Cites: schemas("𝒜", "𝓑")},
	))
}

func andElim() *Rule {
	return rule(KindAndElim, citeOne, names("∧E"), simple(
		Form{Target: schema("𝒜"), Cites: schemas("𝒜 ∧ 𝓑")},
		Form{Target: schema("𝓑"), Cites: schemas("𝒜 ∧ 𝓑")},
	))
}

func orIntro() *Rule {
	return rule(KindOrIntro, citeOne, names("∨I"), simple(
		Form{Target: schema("𝒜 ∨ 𝓑"), Cites: schemas("𝒜")},
		Form{Target: schema("𝒜 ∨ 𝓑"), Cites: schemas("𝓑")},
	))
}

func condElim(kind RuleKind, ruleNames ...string) *Rule {
	return rule(kind, citeTwo, ruleNames, simple(
		Form{Target: schema("𝓑"), Cites: schemas("𝒜 → 𝓑", "𝒜")},
	))
}

func bicondElim() *Rule {
	return rule(KindBicondElim, citeTwo, names("↔E"), simple(
		Form{Target: schema("𝓑"), Cites: schemas("𝒜 ↔ 𝓑", "𝒜")},
		Form{Target: schema("𝒜"), Cites: schemas("𝒜 ↔ 𝓑", "𝓑")},
	))
}

func falsumIntro() *Rule {
	return rule(KindFalsumIntro, citeTwo, names("⊥I"), simple(
		Form{Target: schema("⊥"), Cites: schemas("𝒜", "∼𝒜")},
	))
}

func forallElim() *Rule {
	return rule(KindForallElim, citeOneOrTwo, names("∀E"), simple(
		Form{Target: schema("𝒜⟨𝓍,𝓉⟩"), Cites: schemas("∀𝓍𝒜")},
		Form{Target: schema("𝒜⟨𝓍,𝓈⟩"), Cites: schemas("(∀𝓍 ≤ 𝓉)𝒜", "𝓈 ≤ 𝓉")},
		Form{Target: schema("𝒜⟨𝓍,𝓈⟩"), Cites: schemas("(∀𝓍 < 𝓉)𝒜", "𝓈 < 𝓉")},
	))
}

func existsIntro() *Rule {
	return rule(KindExistsIntro, citeOneOrTwo, names("∃I"), simple(
		Form{Target: schema("∃𝓍𝒜"), Cites: schemas("𝒜⟨𝓍,𝓉⟩"), TargetFirst: true},
		Form{Target: schema("(∃𝓍 ≤ 𝓉)𝒜"), Cites: schemas("𝒜⟨𝓍,𝓈⟩", "𝓈 ≤ 𝓉"), TargetFirst: true},
		Form{Target: schema("(∃𝓍 < 𝓉)𝒜"), Cites: schemas("𝒜⟨𝓍,𝓈⟩", "𝓈 < 𝓉"), TargetFirst: true},
	))
}

func forallIntro() *Rule {
	return rule(KindForallIntro, citeOne, names("∀I"), simple(
		Form{
			Target:      schema("∀𝓍𝒜"),
			Cites:       schemas("𝒜⟨𝓍,𝓋⟩"),
			TargetFirst: true,
			Conditions: []Condition{
				Fresh{Var: "𝓋", In: schemas("∀𝓍𝒜")},
				FreshInOpen{Var: "𝓋"},
			},
		},
	))
}

func equalityIntro() *Rule {
	return rule(KindEqualityIntro, citeNone, names("=I"), simple(
		Form{Target: schema("𝓉 = 𝓉")},
	))
}

func equalityElim() *Rule {
	return rule(KindEqualityElim, citeTwo, names("=E"), simple(
		Form{Target: schema(rewriteOut), Cites: schemas(rewriteLeft+" = "+rewriteRight, rewriteIn), Rewrite: true},
	))
}

var contradictions = []string{"⊥", "𝓑 ∧ ∼𝓑", "∼𝓑 ∧ 𝓑"}

func condIntro() *Rule {
	return rule(KindCondIntro, citeRange, names("→I"), &Discharge{Forms: []DischargeForm{{
		Ranges: []Range{{Top: schema("𝒜"), Bottoms: schemas("𝓑"), Assumption: exit("g", "→I")}},
		Target: schema("𝒜 → 𝓑"),
	}}})
}

func negIntro() *Rule {
	return rule(KindNegIntro, citeRange, names("∼I"), &Discharge{Forms: []DischargeForm{{
		Ranges: []Range{{Top: schema("𝒜"), Bottoms: schemas(contradictions...), Assumption: exit("c", "∼I")}},
		Target: schema("∼𝒜"),
	}}})
}

func negElim() *Rule {
	return rule(KindNegElim, citeRange, names("∼E"), &Discharge{Forms: []DischargeForm{{
		Ranges: []Range{{Top: schema("∼𝒜"), Bottoms: schemas(contradictions...), Assumption: exit("c", "∼E")}},
		Target: schema("𝒜"),
	}}})
}

func bicondIntro() *Rule {
	a := exit("g", "↔I")
	return rule(KindBicondIntro, citeTwoRanges, names("↔I"), &Discharge{Forms: []DischargeForm{{
		Ranges: []Range{
			{Top: schema("𝒜"), Bottoms: schemas("𝓑"), Assumption: a},
			{Top: schema("𝓑"), Bottoms: schemas("𝒜"), Assumption: a},
		},
		Target: schema("𝒜 ↔ 𝓑"),
	}}})
}

func orElim() *Rule {
	a := exit("g", "∨E")
	return rule(KindOrElim, citeOrElim, names("∨E"), &Discharge{Forms: []DischargeForm{{
		Singles: schemas("𝒜 ∨ 𝓑"),
		Ranges: []Range{
			{Top: schema("𝒜"), Bottoms: schemas("𝒞"), Assumption: a},
			{Top: schema("𝓑"), Bottoms: schemas("𝒞"), Assumption: a},
		},
		Target: schema("𝒞"),
	}}})
}

func existsElim() *Rule {
	return rule(KindExistsElim, citeLineRange, names("∃E"), &Discharge{Forms: []DischargeForm{{
		Singles: schemas("∃𝓍𝒜"),
		Ranges:  []Range{{Top: schema("𝒜⟨𝓍,𝓋⟩"), Bottoms: schemas("𝓑"), Assumption: exit("g", "∃E")}},
		Target:  schema("𝓑"),
		Conditions: []Condition{
			Fresh{Var: "𝓋", In: schemas("∃𝓍𝒜", "𝓑")},
			FreshInOpen{Var: "𝓋"},
		},
	}}})
}

func restrictedForallIntro() *Rule {
	form := func(rel string) DischargeForm {
		target := "(∀𝓍 " + rel + " 𝓉)𝒜"
		return DischargeForm{
			Ranges:      []Range{{Top: schema("𝓋 " + rel + " 𝓉"), Bottoms: schemas("𝒜⟨𝓍,𝓋⟩"), Assumption: exit("g", "∀I")}},
			Target:      schema(target),
			TargetFirst: true,
			Conditions: []Condition{
				Fresh{Var: "𝓋", In: schemas(target)},
				FreshInOpen{Var: "𝓋"},
			},
		}
	}
	return rule(KindRestrictedForallIntro, citeRange, names("∀I"), &Discharge{Forms: []DischargeForm{
		form(language.Le), form(language.Lt),
	}})
}

// Derived rules

func modusTollens() *Rule {
	return rule(KindModusTollens, citeTwo, names("MT"), simple(
		Form{Target: schema("∼𝒜"), Cites: schemas("𝒜 → 𝓑", "∼𝓑")},
	))
}

func negatedBiconditional() *Rule {
	return rule(KindNegatedBiconditional, citeTwo, names("NB"), simple(
		Form{Target: schema("∼𝓑"), Cites: schemas("𝒜 ↔ 𝓑", "∼𝒜")},
		Form{Target: schema("∼𝒜"), Cites: schemas("𝒜 ↔ 𝓑", "∼𝓑")},
	))
}

func disjunctiveSyllogism() *Rule {
	return rule(KindDisjunctiveSyllogism, citeTwo, names("DS"), simple(
		Form{Target: schema("𝓑"), Cites: schemas("𝒜 ∨ 𝓑", "∼𝒜")},
		Form{Target: schema("𝒜"), Cites: schemas("𝒜 ∨ 𝓑", "∼𝓑")},
	))
}

func hypotheticalSyllogism() *Rule {
	return rule(KindHypotheticalSyllogism, citeTwo, names("HS"), simple(
		Form{Target: schema("𝒜 → 𝒞"), Cites: schemas("𝒜 → 𝓑", "𝓑 → 𝒞")},
	))
}

// Replacement rules

func equivalence(kind RuleKind, ruleNames []string, pairs ...replace.Pair) *Rule {
	return rule(kind, citeOne, ruleNames, &Equivalence{Pairs: pairs})
}

func replacementRules() []*Rule {
	xNotIn := func(s string) replace.Guard {
		return replace.NotFree{Var: "𝓍", In: schemas(s)}
	}
	return []*Rule{
		equivalence(KindDoubleNegation, names("DN"),
			pair("∼∼𝒜", "𝒜")),
		equivalence(KindIdempotence, names("Idem"),
			pair("𝒜 ∧ 𝒜", "𝒜"),
			pair("𝒜 ∨ 𝒜", "𝒜")),
		equivalence(KindCommutation, names("Com", "Comm"),
			pair("𝒜 ∧ 𝓑", "𝓑 ∧ 𝒜"),
			pair("𝒜 ∨ 𝓑", "𝓑 ∨ 𝒜"),
			pair("𝒜 ↔ 𝓑", "𝓑 ↔ 𝒜")),
		equivalence(KindAssociation, names("Assoc"),
			pair("(𝒜 ∧ 𝓑) ∧ 𝒞", "𝒜 ∧ (𝓑 ∧ 𝒞)"),
			pair("(𝒜 ∨ 𝓑) ∨ 𝒞", "𝒜 ∨ (𝓑 ∨ 𝒞)")),
		equivalence(KindExportation, names("Exp"),
			pair("(𝒜 ∧ 𝓑) → 𝒞", "𝒜 → (𝓑 → 𝒞)")),
		equivalence(KindTransposition, names("Trans"),
			pair("𝒜 → 𝓑", "∼𝓑 → ∼𝒜")),
		equivalence(KindDeMorgan, names("DeM"),
			pair("∼(𝒜 ∧ 𝓑)", "∼𝒜 ∨ ∼𝓑"),
			pair("∼(𝒜 ∨ 𝓑)", "∼𝒜 ∧ ∼𝓑")),
		equivalence(KindImplication, names("Impl"),
			pair("𝒜 → 𝓑", "∼𝒜 ∨ 𝓑"),
			pair("𝒜 ∨ 𝓑", "∼𝒜 → 𝓑")),
		equivalence(KindDistribution, names("Dist"),
			pair("𝒜 ∧ (𝓑 ∨ 𝒞)", "(𝒜 ∧ 𝓑) ∨ (𝒜 ∧ 𝒞)"),
			pair("𝒜 ∨ (𝓑 ∧ 𝒞)", "(𝒜 ∨ 𝓑) ∧ (𝒜 ∨ 𝒞)"),
			pair("(𝓑 ∨ 𝒞) ∧ 𝒜", "(𝓑 ∧ 𝒜) ∨ (𝒞 ∧ 𝒜)"),
			pair("(𝓑 ∧ 𝒞) ∨ 𝒜", "(𝓑 ∨ 𝒜) ∧ (𝒞 ∨ 𝒜)")),
		equivalence(KindEquivalence, names("Equiv"),
			pair("𝒜 ↔ 𝓑", "(𝒜 → 𝓑) ∧ (𝓑 → 𝒜)"),
			pair("𝒜 ↔ 𝓑", "(𝒜 ∧ 𝓑) ∨ (∼𝒜 ∧ ∼𝓑)")),
		equivalence(KindQuantifierNegation, names("QN"),
			pair("∼∀𝓍𝒜", "∃𝓍∼𝒜"),
			pair("∼∃𝓍𝒜", "∀𝓍∼𝒜"),
			pair("∀𝓍𝒜", "∼∃𝓍∼𝒜"),
			pair("∃𝓍𝒜", "∼∀𝓍∼𝒜"),
			pair("∼(∀𝓍 ≤ 𝓉)𝒜", "(∃𝓍 ≤ 𝓉)∼𝒜"),
			pair("∼(∃𝓍 ≤ 𝓉)𝒜", "(∀𝓍 ≤ 𝓉)∼𝒜"),
			pair("∼(∀𝓍 < 𝓉)𝒜", "(∃𝓍 < 𝓉)∼𝒜"),
			pair("∼(∃𝓍 < 𝓉)𝒜", "(∀𝓍 < 𝓉)∼𝒜"),
			pair("(∀𝓍 ≤ 𝓉)𝒜", "∼(∃𝓍 ≤ 𝓉)∼𝒜")),
		equivalence(KindQuantifierDistribution, names("QD"),
			pair("∀𝓍(𝒜 ∧ 𝓑)", "∀𝓍𝒜 ∧ ∀𝓍𝓑"),
			pair("∃𝓍(𝒜 ∨ 𝓑)", "∃𝓍𝒜 ∨ ∃𝓍𝓑")),
		equivalence(KindQuantifierPlacement, names("QP"),
			pair("∀𝓍(𝒜 ∧ 𝒞)", "∀𝓍𝒜 ∧ 𝒞", xNotIn("𝒞")),
			pair("∀𝓍(𝒜 ∨ 𝒞)", "∀𝓍𝒜 ∨ 𝒞", xNotIn("𝒞")),
			pair("∃𝓍(𝒜 ∧ 𝒞)", "∃𝓍𝒜 ∧ 𝒞", xNotIn("𝒞")),
			pair("∃𝓍(𝒜 ∨ 𝒞)", "∃𝓍𝒜 ∨ 𝒞", xNotIn("𝒞")),
			pair("∀𝓍(𝒞 → 𝒜)", "𝒞 → ∀𝓍𝒜", xNotIn("𝒞")),
			pair("∃𝓍(𝒞 → 𝒜)", "𝒞 → ∃𝓍𝒜", xNotIn("𝒞")),
			pair("∀𝓍(𝒜 → 𝒞)", "∃𝓍𝒜 → 𝒞", xNotIn("𝒞")),
			pair("∃𝓍(𝒜 → 𝒞)", "∀𝓍𝒜 → 𝒞", xNotIn("𝒞"))),
	}
}

// abbreviation lists the definitions behind the derived notation,
// including the three interchangeable spellings of each restricted
// quantifier
func abbreviation() *Rule {
	s, t, x := term("𝓈", expr.SortTerm), term("𝓉", expr.SortTerm), term("𝓍", expr.SortVariable)
	fresh := replace.NotFree{Var: "𝓋", In: []expr.Node{s, t}}
	pairs := []replace.Pair{
		pair("𝒜 ∨ 𝓑", "∼𝒜 → 𝓑"),
		pair("𝒜 ∧ 𝓑", "∼(𝒜 → ∼𝓑)"),
		pair("𝒜 ↔ 𝓑", "∼((𝒜 → 𝓑) → ∼(𝓑 → 𝒜))"),
		pair("∃𝓍𝒜", "∼∀𝓍∼𝒜"),
		pair("𝓈 ≠ 𝓉", "∼𝓈 = 𝓉"),
		pair("𝓈 ≤ 𝓉", "∃𝓋(𝓋 + 𝓈 = 𝓉)", fresh),
		pair("𝓈 < 𝓉", "∃𝓋(S𝓋 + 𝓈 = 𝓉)", fresh),
	}

	restricted := []struct {
		quant, rel, conn, bound string
	}{
		{"∀", language.Le, "→", "∃𝓋(𝓋 + 𝓍 = 𝓉)"},
		{"∀", language.Lt, "→", "∃𝓋(S𝓋 + 𝓍 = 𝓉)"},
		{"∃", language.Le, "∧", "∃𝓋(𝓋 + 𝓍 = 𝓉)"},
		{"∃", language.Lt, "∧", "∃𝓋(S𝓋 + 𝓍 = 𝓉)"},
	}
	guards := []replace.Guard{
		replace.NotFree{Var: "𝓍", In: []expr.Node{t}},
		replace.NotFree{Var: "𝓋", In: []expr.Node{x, t}},
	}
	for _, r := range restricted {
		notations := []string{
			"(" + r.quant + "𝓍 " + r.rel + " 𝓉)𝒜",
			r.quant + "𝓍(𝓍 " + r.rel + " 𝓉 " + r.conn + " 𝒜)",
			r.quant + "𝓍(" + r.bound + " " + r.conn + " 𝒜)",
		}
		for i := 0; i < len(notations); i++ {
			for j := i + 1; j < len(notations); j++ {
				pairs = append(pairs, pair(notations[i], notations[j], guards...))
			}
		}
	}

	return rule(KindAbbreviation, citeOne, names("abv", "Abv", "Def"), &Abbreviation{Equivalence{Pairs: pairs}})
}

// Axiomatic rules

func axiom(kind RuleKind, name, text string, conditions ...Condition) *Rule {
	return rule(kind, citeNone, names(name), simple(
		Form{Target: schema(text), Conditions: conditions},
	))
}

func axioms() []*Rule {
	return []*Rule{
		axiom(KindAxiom1, "A1", "𝒜 → (𝓑 → 𝒜)"),
		axiom(KindAxiom2, "A2", "(𝒜 → (𝓑 → 𝒞)) → ((𝒜 → 𝓑) → (𝒜 → 𝒞))"),
		axiom(KindAxiom3, "A3", "(∼𝓑 → ∼𝒜) → ((∼𝓑 → 𝒜) → 𝓑)"),
		axiom(KindAxiom4, "A4", "∀𝓍𝒜 → 𝒜⟨𝓍,𝓉⟩"),
		axiom(KindAxiom5, "A5", "∀𝓍(𝒜 → 𝓑) → (𝒜 → ∀𝓍𝓑)",
			Fresh{Var: "𝓍", In: schemas("𝒜")}),
	}
}

func generalization() *Rule {
	return rule(KindGeneralization, citeOne, names("Gen"), simple(
		Form{
			Target:      schema("∀𝓍𝒜"),
			Cites:       schemas("𝒜"),
			TargetFirst: true,
			Conditions:  []Condition{FreshInOpen{Var: "𝓍"}},
		},
	))
}
