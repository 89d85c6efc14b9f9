package rules

import (
	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
)

// Structural covers the rules that cite nothing and constrain where a line
// may stand: premises and assumptions
type Structural struct {
	Premise bool
}

func (s *Structural) Name() string {
	if s.Premise {
		return "premise"
	}
	return "assumption"
}

func (s *Structural) apply(r *Rule, ctx Context, target int, refs []Ref) Verdict {
	label := ctx.Label(target)
	if _, err := ctx.Formula(target); err != nil {
		return FailErr(label, err)
	}
	if len(refs) > 0 {
		return Fail(citationShape(ctx, target, r.Name, "no lines"))
	}
	if s.Premise {
		return premise(ctx, target)
	}
	return assumption(ctx, target)
}

func premise(ctx Context, target int) Verdict {
	label := ctx.Label(target)
	if ctx.Depth(target) > 1 {
		return Fail(diagnostic.NewDiagnostic().
			Error().
			Code(derrors.CodePremiseOrder).
			Line(label).
			Messagef("Line %s is a premise, so it cannot appear inside a subderivation.", label).
			Build())
	}
	rs := ctx.Ruleset()
	if rs == nil || !rs.RequirePremisesAtTop {
		return Pass()
	}
	for _, i := range ctx.ContentBefore(target) {
		if !rs.IsPremise(ctx.Justification(i)) {
			return Fail(diagnostic.NewDiagnostic().
				Error().
				Code(derrors.CodePremiseOrder).
				Line(label).
				Messagef("Line %s is a premise, but premises must all appear at the top.", label).
				Related(ctx.Label(i), "", "not a premise").
				Build())
		}
	}
	return Pass()
}

func assumption(ctx Context, target int) Verdict {
	label := ctx.Label(target)
	if rs := ctx.Ruleset(); rs != nil && !rs.PermitSubderivations {
		return Fail(diagnostic.NewDiagnostic().
			Error().
			Code(derrors.CodeMalformedSubderivation).
			Line(label).
			Messagef("Line %s is an assumption, but %s has no subderivations.", label, rs).
			Build())
	}
	if !ctx.OpensScope(target) {
		return Fail(diagnostic.NewDiagnostic().
			Error().
			Code(derrors.CodeMalformedSubderivation).
			Line(label).
			Messagef("Line %s is an assumption, so it must begin a new subderivation.", label).
			Build())
	}
	return Pass()
}
