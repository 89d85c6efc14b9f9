package rules

import (
	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/match"
	"github.com/orizon-lang/derivcheck/internal/replace"
)

// Form is one way a simple rule can apply: the target matches Target and
// the cited lines, in some order, match Cites.
type Form struct {
	Target expr.Node
	Cites  []expr.Node
	// TargetFirst matches the target before the cited lines, for forms
	// whose cited lines are instances of the target
	TargetFirst bool
	Conditions  []Condition
	// Rewrite marks identity elimination: Cites are 𝓈 = 𝓉 and 𝒜, Target
	// is 𝓑, and 𝓑 must be 𝒜 with some occurrences of one side of the
	// equation put for the other
	Rewrite bool
}

// Simple rules cite single lines and check fixed schemas against them
type Simple struct {
	Forms []Form
}

func (*Simple) Name() string { return "simple" }

func (s *Simple) apply(r *Rule, ctx Context, target int, refs []Ref) Verdict {
	label := ctx.Label(target)
	tf, err := ctx.Formula(target)
	if err != nil {
		return FailErr(label, err)
	}
	for _, ref := range refs {
		if ref.Range {
			return Fail(citationShape(ctx, target, r.Name, "single lines, not a subderivation"))
		}
	}
	cited, failed := lineFormulas(ctx, target, refs)
	if failed != nil {
		return *failed
	}

	var (
		shapeSchema expr.Node
		shapeOK     bool
		capture     *diagnostic.Diagnostic
	)
	for _, form := range s.Forms {
		if len(form.Cites) != len(cited) {
			continue
		}
		if checkable(form.Target) {
			if shapeSchema == nil {
				shapeSchema = form.Target
			}
			if !match.Match(form.Target, tf).OK() {
				continue
			}
			shapeOK = true
		}
		for _, perm := range permutations(len(cited)) {
			steps := make([]step, 0, len(cited)+1)
			for i, c := range form.Cites {
				steps = append(steps, step{alts: []expr.Node{c}, cand: cited[perm[i]]})
			}
			targetStep := step{alts: []expr.Node{form.Target}, cand: tf}
			if form.TargetFirst {
				steps = append([]step{targetStep}, steps...)
			} else {
				steps = append(steps, targetStep)
			}

			ok := solve(steps, match.Env{}, func(env match.Env) bool {
				if form.Rewrite && !rewrites(env) {
					return false
				}
				for _, c := range form.Conditions {
					if v, f, bad := c.violation(ctx, target, env); bad {
						capture = captured(ctx, target, v, f, r.Name)
						return false
					}
				}
				return true
			})
			if ok {
				return Pass()
			}
		}
	}

	switch {
	case capture != nil:
		return Fail(capture)
	case shapeSchema != nil && !shapeOK:
		return Fail(wrongShape(ctx, target, shapeSchema, r.Name))
	case len(refs) == 0 && len(s.Forms) > 0:
		return Fail(wrongShape(ctx, target, s.Forms[0].Target, r.Name))
	default:
		return Fail(noResult(ctx, target, refs, r.Name))
	}
}

// Metavariable names used by rewrite forms
const (
	rewriteLeft  = "𝓈"
	rewriteRight = "𝓉"
	rewriteIn    = "𝒜"
	rewriteOut   = "𝓑"
)

func rewrites(env match.Env) bool {
	s, ok1 := env.Lookup(rewriteLeft)
	t, ok2 := env.Lookup(rewriteRight)
	in, ok3 := env.Lookup(rewriteIn)
	out, ok4 := env.Lookup(rewriteOut)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return false
	}
	return replace.ReplaceSome(s, t, in, out) || replace.ReplaceSome(t, s, in, out)
}
