package rules

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/samber/lo"
)

// Dummy matches a common malformed justification and explains it
type Dummy struct {
	Pattern *regexp.Regexp
	Text    string
}

// Ruleset is an immutable rule catalog plus the structural policy that
// goes with it
type Ruleset struct {
	Name    string
	Version string
	// Languages names the languages the ruleset can check
	Languages []string
	Rules     []*Rule
	Dummies   []Dummy
	// Premise recognises premise justifications
	Premise *regexp.Regexp
	// Assumption recognises any assumption justification, annotated or not
	Assumption           *regexp.Regexp
	RequirePremisesAtTop bool
	PermitSubderivations bool
}

func (rs *Ruleset) String() string { return rs.Name + "@" + rs.Version }

// Dispatch returns the first rule whose pattern matches the normalised
// justification, with the citation part of it
func (rs *Ruleset) Dispatch(justification string) (*Rule, string, bool) {
	for _, r := range rs.Rules {
		if cites, ok := r.Citations(justification); ok {
			return r, cites, true
		}
	}
	return nil, "", false
}

// Explain returns the text of the first dummy rule matching justification
func (rs *Ruleset) Explain(justification string) (string, bool) {
	for _, d := range rs.Dummies {
		if d.Pattern.MatchString(justification) {
			return d.Text, true
		}
	}
	return "", false
}

// IsPremise reports whether justification marks a premise
func (rs *Ruleset) IsPremise(justification string) bool {
	return rs.Premise != nil && rs.Premise.MatchString(justification)
}

// IsAssumption reports whether justification marks an assumption
func (rs *Ruleset) IsAssumption(justification string) bool {
	return rs.Assumption != nil && rs.Assumption.MatchString(justification)
}

// Supports reports whether the ruleset can check derivations in the named
// language
func (rs *Ruleset) Supports(languageName string) bool {
	return lo.Contains(rs.Languages, languageName)
}

// Names lists the distinct rule names in catalog order
func (rs *Ruleset) Names() []string {
	return lo.Uniq(lo.Map(rs.Rules, func(r *Rule, _ int) string { return r.Name }))
}

// StripSpace removes all white space from a justification
func StripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Citation is one unresolved reference: a label, or a range of labels
type Citation struct {
	From string
	To   string
}

// IsRange reports whether c cites a subderivation
func (c Citation) IsRange() bool { return c.To != "" }

func (c Citation) String() string {
	if c.IsRange() {
		return c.From + "-" + c.To
	}
	return c.From
}

// ParseCitations splits the citation part of a justification, such as
// "1", "1,2" or "3,4-6,7-9"
func ParseCitations(s string) ([]Citation, error) {
	if s == "" {
		return nil, nil
	}
	var out []Citation
	for _, part := range strings.Split(s, ",") {
		from, to, isRange := strings.Cut(part, "-")
		if from == "" || (isRange && to == "") {
			return nil, fmt.Errorf("malformed citation %q", part)
		}
		out = append(out, Citation{From: from, To: to})
	}
	return out, nil
}
