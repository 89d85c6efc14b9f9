// Package rules holds the derivation rule catalog.
//
// Rules are data. Each one is a RuleKind, a justification pattern and a
// parameterised algorithm family; most rules differ only in the schema
// literals they hand to their family. The derivation checker owns line
// records and scoping and exposes them to rules through Context.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
)

// Context is the checker state a rule may consult. Line arguments are
// indices into the derivation being checked.
type Context interface {
	Language() *language.Language
	Ruleset() *Ruleset
	Label(i int) string
	Depth(i int) int
	// Justification returns the normalised justification of line i
	Justification(i int) string
	// Formula returns the parsed content of line i, or an EMPTY_CITATION
	// or MALFORMED_EXPRESSION error
	Formula(i int) (expr.Formula, error)
	// Accessible returns an INACCESSIBLE_CITATION error unless line cited
	// can be used by line target
	Accessible(cited, target int) error
	// Subderivation returns a MALFORMED_SUBDERIVATION error unless lines
	// from to to form a closed subderivation target can discharge
	Subderivation(from, to, target int) error
	// OpenAssumptions lists the premises and assumptions in force at target
	OpenAssumptions(target int) []int
	// OpensScope reports whether line i begins a new subderivation
	OpensScope(i int) bool
	// ContentBefore lists the content lines above line i
	ContentBefore(i int) []int
}

// Ref is a resolved citation: one line, or the range of a subderivation
type Ref struct {
	Label string
	From  int
	To    int
	Range bool
}

func (r Ref) String() string { return r.Label }

// Verdict is the outcome of checking one line
type Verdict struct {
	OK          bool                     `json:"ok"`
	Diagnostics []*diagnostic.Diagnostic `json:"diagnostics,omitempty"`
}

// Pass is the successful verdict
func Pass() Verdict { return Verdict{OK: true} }

// Fail builds a failed verdict
func Fail(diags ...*diagnostic.Diagnostic) Verdict {
	return Verdict{OK: false, Diagnostics: diags}
}

// FailErr converts err into a failed verdict for line
func FailErr(line string, err error) Verdict {
	return Fail(diagnostic.FromError(line, err))
}

// Family is one of the algorithm families a rule can be an instance of
type Family interface {
	Name() string
	apply(r *Rule, ctx Context, target int, refs []Ref) Verdict
}

// Rule is one catalog entry
type Rule struct {
	Kind    RuleKind
	Name    string
	Pattern *regexp.Regexp
	Family  Family
}

// Citations reports whether justification selects r and returns the
// citation part of it
func (r *Rule) Citations(justification string) (string, bool) {
	m := r.Pattern.FindStringSubmatch(justification)
	if m == nil {
		return "", false
	}
	for i, name := range r.Pattern.SubexpNames() {
		if (name == "pre" || name == "post") && m[i] != "" {
			return m[i], true
		}
	}
	return "", true
}

// Apply checks line target against the cited refs
func (r *Rule) Apply(ctx Context, target int, refs []Ref) Verdict {
	return r.Family.apply(r, ctx, target, refs)
}

func (r *Rule) String() string {
	return fmt.Sprintf("%s (%s)", r.Name, r.Family.Name())
}

// describeRefs renders citations as "(1)", "(1) and (2)" or
// "(1), (2-4) and (5-7)"
func describeRefs(refs []Ref) string {
	parts := make([]string, len(refs))
	for i, r := range refs {
		parts[i] = "(" + r.Label + ")"
	}
	switch len(parts) {
	case 0:
		return "nothing"
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + " and " + parts[len(parts)-1]
	}
}

// permutations returns every ordering of 0..n-1, identity first
func permutations(n int) [][]int {
	if n == 0 {
		return [][]int{{}}
	}
	var out [][]int
	for _, p := range permutations(n - 1) {
		for pos := len(p); pos >= 0; pos-- {
			next := make([]int, 0, n)
			next = append(next, p[:pos]...)
			next = append(next, n-1)
			next = append(next, p[pos:]...)
			out = append(out, next)
		}
	}
	return out
}
