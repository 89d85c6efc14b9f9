package derivation

import (
	"regexp"
	"strings"
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

func lines(t *testing.T, text string) []Line {
	t.Helper()
	doc, err := ParseText(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	return doc.Lines
}

func verdict(t *testing.T, r *Report, label string) LineVerdict {
	t.Helper()
	v, ok := r.Verdict(label)
	if !ok {
		t.Fatalf("no verdict for line %s", label)
	}
	return v
}

func firstCode(v LineVerdict) derrors.Code {
	if len(v.Diagnostics) == 0 {
		return ""
	}
	return v.Diagnostics[0].Code
}

func firstMessage(v LineVerdict) string {
	if len(v.Diagnostics) == 0 {
		return ""
	}
	return v.Diagnostics[0].Message
}

func sentential() *Checker {
	return NewChecker(language.Sentential(), rules.NaturalDeduction())
}

func TestConditionalEliminationEndToEnd(t *testing.T) {
	ok := lines(t, `
1. P → Q :: P
2. P :: P
3. Q :: 1,2 →E
`)
	report := sentential().Check(ok)
	assert.True(t, report.FullyChecked)
	assert.Len(t, report.Verdicts, 3)
	assert.True(t, verdict(t, report, "3").OK)

	bad := lines(t, `
1. P → Q :: P
2. P :: P
3. P :: 1,2 →E
`)
	report = sentential().Check(bad)
	assert.False(t, report.FullyChecked)
	v := verdict(t, report, "3")
	assert.False(t, v.OK)
	assert.Equal(t, firstCode(v), derrors.CodeNoApplicableForm)
	assert.Contains(t, firstMessage(v), "does not result from (1) and (2)")
}

func TestCheckLineMatchesCheck(t *testing.T) {
	ls := lines(t, `
1. P → Q :: P
2. P :: P
3. Q :: 2,1 ->E
`)
	c := sentential()
	for i := range ls {
		assert.True(t, c.CheckLine(ls, i).OK, ls[i].String())
	}
	assert.False(t, c.CheckLine(ls, 7).OK)
}

func TestClosedSubderivationIsInaccessible(t *testing.T) {
	ls := lines(t, `
1. P :: P
2. | Q :: A(g,→I)
3. | P :: 1 R
4. Q → P :: 2-3 →I
5. Q :: 2 R
6. Q → P :: 2-3 →I
`)
	report := sentential().Check(ls)
	for _, label := range []string{"1", "2", "3", "4", "6"} {
		v := verdict(t, report, label)
		assert.True(t, v.OK, label, firstMessage(v))
	}
	v := verdict(t, report, "5")
	assert.False(t, v.OK)
	assert.Equal(t, firstCode(v), derrors.CodeInaccessibleCitation)
	assert.Contains(t, firstMessage(v), "not accessible from line 5")
}

func TestSiblingSubderivations(t *testing.T) {
	ls := lines(t, `
1. P ∨ Q :: P
2. | P :: A(g,∨E)
3. | Q ∨ P :: 2 ∨I
4. | Q :: A(g,∨E)
5. | Q ∨ P :: 4 ∨I
6. Q ∨ P :: 1,2-3,4-5 ∨E
7. Q ∨ P :: 3 R
`)
	report := sentential().Check(ls)
	for _, label := range []string{"1", "2", "3", "4", "5", "6"} {
		v := verdict(t, report, label)
		assert.True(t, v.OK, label, firstMessage(v))
	}
	assert.Equal(t, firstCode(verdict(t, report, "7")), derrors.CodeInaccessibleCitation)
}

func TestSubderivationRangeChecks(t *testing.T) {
	ls := lines(t, `
1. P :: P
2. | Q :: A(g,→I)
3. | Q :: 2 R
4. | | R :: A(g,→I)
5. Q → R :: 2-4 →I
6. Q → Q :: 3-3 →I
7. Q → Q :: 2-3 →I
`)
	report := sentential().Check(ls)

	v := verdict(t, report, "5")
	assert.Equal(t, firstCode(v), derrors.CodeMalformedSubderivation)
	assert.Contains(t, firstMessage(v), "not the last line")

	v = verdict(t, report, "6")
	assert.Equal(t, firstCode(v), derrors.CodeMalformedSubderivation)
	assert.Contains(t, firstMessage(v), "does not open a subderivation")

	assert.False(t, verdict(t, report, "7").OK, "line 4 is still inside 2-3")
}

func TestUniversalIntroductionCapture(t *testing.T) {
	c := NewChecker(language.Quantificational(), rules.NaturalDeduction())

	report := c.Check(lines(t, `
1. ∀xFx :: P
2. Fy :: 1 ∀E
3. ∀yFy :: 2 ∀I
`))
	assert.True(t, report.FullyChecked, report.Failed())

	report = c.Check(lines(t, `
1. | Fx :: A(g,→I)
2. | ∀xFx :: 1 ∀I
3. Fx → ∀xFx :: 1-2 →I
`))
	assert.False(t, report.FullyChecked)
	v := verdict(t, report, "2")
	assert.Equal(t, firstCode(v), derrors.CodeCaptureViolation)
	assert.Contains(t, firstMessage(v), "Variable x is free in Fx")
	assert.True(t, verdict(t, report, "1").OK)
	assert.True(t, verdict(t, report, "3").OK)
}

func TestDispatchFailures(t *testing.T) {
	ls := lines(t, `
1. P → Q :: P
2. P :: P
3. Q :: 1-2 →E
4. Q :: frobnicate
5. Q :: 1,12 →E
6. Q
7. P →
8. ...
9. Q :: 8 R
`)
	report := sentential().Check(ls)
	assert.Len(t, report.Verdicts, 8)

	tests := []struct {
		label string
		code  derrors.Code
		text  string
	}{
		{"3", derrors.CodeUnrecognizedJustification, "not a subderivation"},
		{"4", derrors.CodeUnrecognizedJustification, "is not recognized"},
		{"5", derrors.CodeNoSuchLine, "no such line"},
		{"6", derrors.CodeUnrecognizedJustification, "has no justification"},
		{"7", derrors.CodeMalformedExpression, "not well formed"},
		{"9", derrors.CodeEmptyCitation, "cites an empty line (8)"},
	}
	for _, tt := range tests {
		v := verdict(t, report, tt.label)
		assert.False(t, v.OK, tt.label)
		assert.Equal(t, firstCode(v), tt.code, tt.label)
		assert.Contains(t, firstMessage(v), tt.text, tt.label)
	}
}

func TestMarkersAreInert(t *testing.T) {
	ls := lines(t, `
1. P :: P
2. | Q :: A(g,→I)
3. ...
4. | P :: 1 R
5. ---
6. Q → P :: 2-4 →I
`)
	assert.Equal(t, ls[2].Kind, KindGapMarker)
	assert.Equal(t, ls[4].Kind, KindShelfMarker)

	report := sentential().Check(ls)
	assert.Len(t, report.Verdicts, 4)
	assert.True(t, report.FullyChecked, report.Failed())
}

func TestStructuralPolicy(t *testing.T) {
	report := sentential().Check(lines(t, `
1. P :: P
2. P ∨ Q :: 1 ∨I
3. Q :: P
4. | R :: 2 ∨I
`))
	v := verdict(t, report, "3")
	assert.Equal(t, firstCode(v), derrors.CodePremiseOrder)
	assert.Contains(t, firstMessage(v), "premises must all appear at the top")

	v = verdict(t, report, "4")
	assert.Equal(t, firstCode(v), derrors.CodeMalformedSubderivation)
	assert.Contains(t, firstMessage(v), "must be an assumption")

	ad := NewChecker(language.Sentential(), rules.Axiomatic())
	report = ad.Check(lines(t, `
1. P → (Q → P) :: A1
2. | P :: A(g,→I)
`))
	assert.True(t, verdict(t, report, "1").OK)
	v = verdict(t, report, "2")
	assert.Equal(t, firstCode(v), derrors.CodeMalformedSubderivation)
	assert.Contains(t, firstMessage(v), "has no subderivations")
}

func TestKindInference(t *testing.T) {
	s := newSnapshot(language.Sentential(), rules.NaturalDeduction(), []Line{
		{Label: "1", Depth: 1, Formula: "P", Justification: "Premise"},
		{Label: "2", Depth: 2, Formula: "Q", Justification: "A (c, ~I)"},
		{Label: "3", Depth: 2, Formula: "Q", Justification: "2 R"},
		{Label: "4", Depth: 1, Formula: "P", Justification: "1 R", Kind: KindConclusion},
	})
	assert.DeepEqual(t, s.kinds, []LineKind{KindPremise, KindAssumption, KindPlain, KindConclusion})
	assert.Equal(t, s.Justification(1), "A(c,∼I)")
	assert.DeepEqual(t, s.OpenAssumptions(2), []int{0, 1})
	assert.DeepEqual(t, s.OpenAssumptions(3), []int{0})
	assert.DeepEqual(t, s.ContentBefore(3), []int{0, 1, 2})
}

func TestReportDiagnostics(t *testing.T) {
	report := sentential().Check(lines(t, `
1. P → Q :: P
2. P :: P
3. P :: 1,2 →E
4. Q :: nonsense
`))
	assert.Len(t, report.Failed(), 2)

	engine := report.Diagnostics(diagnostic.DiagnosticConfig{})
	if assert.Len(t, engine.ForLine("3"), 1) {
		assert.Equal(t, engine.ForLine("3")[0].Code, derrors.CodeNoApplicableForm)
	}
	assert.Len(t, engine.ForLine("4"), 1)

	v, _ := report.Verdict("3")
	assert.Equal(t, v.Formula, "P")

	engine = report.Diagnostics(diagnostic.DiagnosticConfig{IgnoreCodes: []derrors.Code{derrors.CodeUnrecognizedJustification}})
	assert.Len(t, engine.GetDiagnostics(), 1)
}

func TestRulePanicIsIsolated(t *testing.T) {
	rs := *rules.NaturalDeduction()
	broken := &rules.Rule{Name: "X", Pattern: regexp.MustCompile(`^X$`)}
	rs.Rules = append([]*rules.Rule{broken}, rs.Rules...)
	c := NewChecker(language.Sentential(), &rs)

	report := c.Check(lines(t, `
1. P :: P
2. Q :: X
3. P ∨ Q :: 1 ∨I
4. P ∧ Q :: 1,2 ∧I
`))
	assert.False(t, report.FullyChecked)
	assert.Len(t, report.Verdicts, 4)
	assert.Len(t, report.Failed(), 1)

	v := verdict(t, report, "2")
	assert.Equal(t, firstCode(v), derrors.CodeNoApplicableForm)
	assert.Contains(t, firstMessage(v), "Line 2 could not be checked")
	assert.True(t, verdict(t, report, "3").OK)
	assert.True(t, verdict(t, report, "4").OK)

	single := c.CheckLine(lines(t, "1. Q :: X"), 0)
	assert.False(t, single.OK)
}
