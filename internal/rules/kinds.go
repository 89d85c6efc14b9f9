package rules

// RuleKind identifies a rule independently of the ruleset it appears in
type RuleKind int

const (
	KindPremise RuleKind = iota
	KindAssumption
	KindReiteration
	KindAndIntro
	KindAndElim
	KindOrIntro
	KindOrElim
	KindCondIntro
	KindCondElim
	KindBicondIntro
	KindBicondElim
	KindNegIntro
	KindNegElim
	KindFalsumIntro
	KindForallIntro
	KindForallElim
	KindExistsIntro
	KindExistsElim
	KindRestrictedForallIntro
	KindEqualityIntro
	KindEqualityElim
	KindModusTollens
	KindNegatedBiconditional
	KindDisjunctiveSyllogism
	KindHypotheticalSyllogism
	KindDoubleNegation
	KindIdempotence
	KindCommutation
	KindAssociation
	KindExportation
	KindTransposition
	KindDeMorgan
	KindImplication
	KindDistribution
	KindEquivalence
	KindQuantifierNegation
	KindQuantifierDistribution
	KindQuantifierPlacement
	KindAbbreviation
	KindAxiom1
	KindAxiom2
	KindAxiom3
	KindAxiom4
	KindAxiom5
	KindModusPonens
	KindGeneralization
)

var kindNames = map[RuleKind]string{
	KindPremise:                "premise",
	KindAssumption:             "assumption",
	KindReiteration:            "reiteration",
	KindAndIntro:               "conjunction introduction",
	KindAndElim:                "conjunction elimination",
	KindOrIntro:                "disjunction introduction",
	KindOrElim:                 "disjunction elimination",
	KindCondIntro:              "conditional introduction",
	KindCondElim:               "conditional elimination",
	KindBicondIntro:            "biconditional introduction",
	KindBicondElim:             "biconditional elimination",
	KindNegIntro:               "negation introduction",
	KindNegElim:                "negation elimination",
	KindFalsumIntro:            "absurdity introduction",
	KindForallIntro:            "universal introduction",
	KindForallElim:             "universal elimination",
	KindExistsIntro:            "existential introduction",
	KindExistsElim:             "existential elimination",
	KindRestrictedForallIntro:  "restricted universal introduction",
	KindEqualityIntro:          "identity introduction",
	KindEqualityElim:           "identity elimination",
	KindModusTollens:           "modus tollens",
	KindNegatedBiconditional:   "negated biconditional",
	KindDisjunctiveSyllogism:   "disjunctive syllogism",
	KindHypotheticalSyllogism:  "hypothetical syllogism",
	KindDoubleNegation:         "double negation",
	KindIdempotence:            "idempotence",
	KindCommutation:            "commutation",
	KindAssociation:            "association",
	KindExportation:            "exportation",
	KindTransposition:          "transposition",
	KindDeMorgan:               "De Morgan",
	KindImplication:            "implication",
	KindDistribution:           "distribution",
	KindEquivalence:            "equivalence",
	KindQuantifierNegation:     "quantifier negation",
	KindQuantifierDistribution: "quantifier distribution",
	KindQuantifierPlacement:    "quantifier placement",
	KindAbbreviation:           "abbreviation",
	KindAxiom1:                 "axiom 1",
	KindAxiom2:                 "axiom 2",
	KindAxiom3:                 "axiom 3",
	KindAxiom4:                 "axiom 4",
	KindAxiom5:                 "axiom 5",
	KindModusPonens:            "modus ponens",
	KindGeneralization:         "generalization",
}

func (k RuleKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}
