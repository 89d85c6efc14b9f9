package rules

import (
	"regexp"
	"sync"

	"github.com/orizon-lang/derivcheck/internal/language"
)

// Names of the built-in rulesets
const (
	NaturalDeductionName = "lm.nd"
	AxiomaticName        = "lm.ad"
)

var allLanguages = []string{
	language.SententialName,
	language.QuantificationalName,
	language.ArithmeticName,
}

func dummy(pattern, text string) Dummy {
	return Dummy{Pattern: regexp.MustCompile(pattern), Text: text}
}

var naturalDeductionDummies = []Dummy{
	dummy(`^\d+-\d+→E$`, "→E cites two lines, a conditional and its antecedent, not a subderivation."),
	dummy(`^\d+→E$`, "→E cites two lines: a conditional and its antecedent."),
	dummy(`^\d+(?:,\d+)*→I$`, "→I cites a subderivation as a range of lines, as in 2-5 →I."),
	dummy(`^\d+(?:,\d+)*∼I$`, "∼I cites a subderivation as a range of lines, as in 2-5 ∼I."),
	dummy(`^\d+(?:,\d+)*∼E$`, "∼E cites a subderivation as a range of lines, as in 2-5 ∼E."),
	dummy(`^[\d,-]+↔I$`, "↔I cites two subderivations, as in 2-4,5-7 ↔I."),
	dummy(`^[\d,-]+∨E$`, "∨E cites a disjunction and two subderivations, as in 1,2-4,5-7 ∨E."),
	dummy(`^[\d,-]+∃E$`, "∃E cites an existential line and a subderivation, as in 1,2-5 ∃E."),
	dummy(`^\d+∧I$`, "∧I cites two lines, one for each conjunct."),
	dummy(`^\d+,\d+(?:∧E|∨I)$`, "∧E and ∨I cite a single line."),
	dummy(`^[\d,-]+(?:=I|P|Premise)$`, "This rule cites no lines."),
	dummy(`^`+assumptionWord+`$`, "An assumption needs an exit strategy, such as A(g,→I) or A(c,∼I)."),
	dummy(`^`+assumptionWord+`\(.*\)$`, "An exit strategy is written (g,rule) when aiming at a goal or (c,rule) when aiming at a contradiction."),
}

var axiomaticDummies = []Dummy{
	dummy(`^`+assumptionWord+`(?:\(.*\))?$`, "An axiomatic derivation has no assumptions; use premises and axioms."),
	dummy(`^A(?:0|[6-9]|\d\d+)$`, "The axioms are A1 to A5."),
	dummy(`^[\d,-]+(?:→I|∼I|∨E|∃E|↔I)$`, "An axiomatic derivation has no subderivations to discharge."),
}

func primitiveRules() []*Rule {
	return []*Rule{
		premiseRule(),
		assumptionRule(),
		reiteration(),
		andIntro(),
		andElim(),
		orIntro(),
		orElim(),
		condIntro(),
		condElim(KindCondElim, "→E"),
		bicondIntro(),
		bicondElim(),
		negIntro(),
		negElim(),
		falsumIntro(),
		forallIntro(),
		restrictedForallIntro(),
		forallElim(),
		existsIntro(),
		existsElim(),
		equalityIntro(),
		equalityElim(),
	}
}

// NaturalDeduction returns the primitive natural deduction ruleset,
// lm.nd 1.0.0
var NaturalDeduction = sync.OnceValue(func() *Ruleset {
	return &Ruleset{
		Name:                 NaturalDeductionName,
		Version:              "1.0.0",
		Languages:            allLanguages,
		Rules:                primitiveRules(),
		Dummies:              naturalDeductionDummies,
		Premise:              premisePattern,
		Assumption:           anyAssumptionPattern,
		RequirePremisesAtTop: true,
		PermitSubderivations: true,
	}
})

// NaturalDeductionDerived returns lm.nd 2.0.0: the primitive rules plus
// derived rules, replacement rules and abbreviations
var NaturalDeductionDerived = sync.OnceValue(func() *Ruleset {
	rs := primitiveRules()
	rs = append(rs,
		modusTollens(),
		negatedBiconditional(),
		disjunctiveSyllogism(),
		hypotheticalSyllogism(),
	)
	rs = append(rs, replacementRules()...)
	rs = append(rs, abbreviation())
	return &Ruleset{
		Name:                 NaturalDeductionName,
		Version:              "2.0.0",
		Languages:            allLanguages,
		Rules:                rs,
		Dummies:              naturalDeductionDummies,
		Premise:              premisePattern,
		Assumption:           anyAssumptionPattern,
		RequirePremisesAtTop: true,
		PermitSubderivations: true,
	}
})

// Axiomatic returns the axiomatic ruleset lm.ad 1.0.0. It has no
// subderivations; modus ponens and generalization are its only rules of
// inference.
var Axiomatic = sync.OnceValue(func() *Ruleset {
	rs := []*Rule{premiseRule()}
	rs = append(rs, axioms()...)
	rs = append(rs, condElim(KindModusPonens, "MP", "→E"), generalization(), abbreviation())
	return &Ruleset{
		Name:                 AxiomaticName,
		Version:              "1.0.0",
		Languages:            allLanguages,
		Rules:                rs,
		Dummies:              axiomaticDummies,
		Premise:              premisePattern,
		Assumption:           anyAssumptionPattern,
		RequirePremisesAtTop: true,
		PermitSubderivations: false,
	}
})

// Builtins lists every built-in ruleset
func Builtins() []*Ruleset {
	return []*Ruleset{NaturalDeduction(), NaturalDeductionDerived(), Axiomatic()}
}
