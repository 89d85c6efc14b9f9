package derivation

import (
	"fmt"

	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

// Logger receives debug traces of dispatch decisions. *cli.Logger
// satisfies it.
type Logger interface {
	Debug(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}

// Checker checks derivations written in one language against one ruleset.
// It holds no per-derivation state and is safe for concurrent use.
type Checker struct {
	lang    *language.Language
	ruleset *rules.Ruleset
	logger  Logger
}

// Option configures a Checker
type Option func(*Checker)

// WithLogger routes dispatch traces to logger
func WithLogger(logger Logger) Option {
	return func(c *Checker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChecker returns a checker for lang and rs
func NewChecker(lang *language.Language, rs *rules.Ruleset, opts ...Option) *Checker {
	c := &Checker{lang: lang, ruleset: rs, logger: nopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Language returns the object language lines are parsed in
func (c *Checker) Language() *language.Language { return c.lang }

// Ruleset returns the ruleset justifications are dispatched against
func (c *Checker) Ruleset() *rules.Ruleset { return c.ruleset }

// CheckLine checks line i of lines. Lines without content pass trivially.
func (c *Checker) CheckLine(lines []Line, i int) rules.Verdict {
	if i < 0 || i >= len(lines) {
		return rules.FailErr("", derrors.NoSuchLine("?", fmt.Sprint(i+1)))
	}
	return c.checkLine(newSnapshot(c.lang, c.ruleset, lines), i)
}

// Check checks every content line and aggregates the verdicts
func (c *Checker) Check(lines []Line) *Report {
	s := newSnapshot(c.lang, c.ruleset, lines)
	report := &Report{
		Language:     c.lang.String(),
		Ruleset:      c.ruleset.String(),
		FullyChecked: true,
	}
	for i := range lines {
		if !s.content(i) {
			continue
		}
		v := c.checkLine(s, i)
		report.Verdicts = append(report.Verdicts, LineVerdict{Label: lines[i].Label, Formula: lines[i].Formula, Verdict: v})
		if !v.OK {
			report.FullyChecked = false
		}
	}
	c.logger.Debug("checked %d lines against %s: fully checked %t",
		len(report.Verdicts), c.ruleset, report.FullyChecked)
	return report
}

func (c *Checker) checkLine(s *snapshot, i int) (verdict rules.Verdict) {
	if !s.content(i) {
		return rules.Pass()
	}
	label := s.Label(i)
	s.current = i

	defer func() {
		if r := recover(); r != nil {
			c.logger.Debug("line %s: recovered from %v", label, r)
			verdict = rules.Fail(diagnostic.NewDiagnostic().Error().
				Code(derrors.CodeNoApplicableForm).Line(label).
				Messagef("Line %s could not be checked: %v", label, r).Build())
		}
	}()

	if d := c.structure(s, i); d != nil {
		return rules.Fail(d)
	}
	if _, err := s.Formula(i); err != nil {
		return rules.FailErr(label, err)
	}

	just := s.Justification(i)
	if just == "" {
		return rules.Fail(diagnostic.NewDiagnostic().Error().
			Code(derrors.CodeUnrecognizedJustification).Line(label).
			Messagef("Line %s has no justification.", label).Build())
	}

	rule, citePart, ok := c.ruleset.Dispatch(just)
	if !ok {
		if text, ok := c.ruleset.Explain(just); ok {
			c.logger.Debug("line %s: %q matched a dummy rule", label, just)
			return rules.Fail(diagnostic.NewDiagnostic().Error().
				Code(derrors.CodeUnrecognizedJustification).Line(label).
				Messagef("Line %s: %s", label, text).Build())
		}
		return rules.FailErr(label, derrors.UnrecognizedJustification(label, s.lines[i].Justification))
	}
	c.logger.Debug("line %s: %q dispatched to %s", label, just, rule)

	cites, err := rules.ParseCitations(citePart)
	if err != nil {
		return rules.FailErr(label, derrors.UnrecognizedJustification(label, s.lines[i].Justification))
	}
	refs, err := resolve(s, i, cites)
	if err != nil {
		return rules.FailErr(label, err)
	}
	return rule.Apply(s, i, refs)
}

// structure reports depth problems that no rule could repair
func (c *Checker) structure(s *snapshot, i int) *diagnostic.Diagnostic {
	label, depth := s.Label(i), s.Depth(i)
	b := diagnostic.NewDiagnostic().Error().Code(derrors.CodeMalformedSubderivation).Line(label)
	switch {
	case depth < 1:
		return b.Messagef("Line %s has depth %d, but depths start at 1.", label, depth).Build()
	case depth > 1 && !c.ruleset.PermitSubderivations:
		return b.Messagef("Line %s is inside a subderivation, but %s has no subderivations.", label, c.ruleset).Build()
	case depth > s.previousDepth(i) && s.kinds[i] != KindAssumption:
		return b.Messagef("Line %s begins a subderivation, so it must be an assumption.", label).Build()
	}
	return nil
}

// resolve turns citation labels into line indices
func resolve(s *snapshot, target int, cites []rules.Citation) ([]rules.Ref, error) {
	refs := make([]rules.Ref, 0, len(cites))
	label := s.Label(target)
	for _, ct := range cites {
		from, ok := s.labels[ct.From]
		if !ok {
			return nil, derrors.NoSuchLine(label, ct.From)
		}
		ref := rules.Ref{Label: ct.String(), From: from, To: from}
		if ct.IsRange() {
			to, ok := s.labels[ct.To]
			if !ok {
				return nil, derrors.NoSuchLine(label, ct.To)
			}
			ref.To, ref.Range = to, true
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
