package rules

import (
	"regexp"

	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/match"
)

// Range describes a cited subderivation: its assumption matches Top, its
// last line matches one of Bottoms, and the assumption's justification
// matches Assumption.
type Range struct {
	Top        expr.Node
	Bottoms    []expr.Node
	Assumption *regexp.Regexp
}

// DischargeForm is one way a discharge rule can apply
type DischargeForm struct {
	Singles     []expr.Node
	Ranges      []Range
	Target      expr.Node
	TargetFirst bool
	Conditions  []Condition
}

// Discharge rules close one or more subderivations
type Discharge struct {
	Forms []DischargeForm
}

func (*Discharge) Name() string { return "discharge" }

type rangeLines struct {
	ref         Ref
	top, bottom expr.Node
}

func (d *Discharge) apply(r *Rule, ctx Context, target int, refs []Ref) Verdict {
	label := ctx.Label(target)
	tf, err := ctx.Formula(target)
	if err != nil {
		return FailErr(label, err)
	}

	singleRefs, rangeRefs := splitRefs(refs)
	singles, failed := lineFormulas(ctx, target, singleRefs)
	if failed != nil {
		return *failed
	}
	ranges := make([]rangeLines, len(rangeRefs))
	for i, ref := range rangeRefs {
		if err := ctx.Subderivation(ref.From, ref.To, target); err != nil {
			return FailErr(label, err)
		}
		top, err := ctx.Formula(ref.From)
		if err != nil {
			return FailErr(label, err)
		}
		bottom, err := ctx.Formula(ref.To)
		if err != nil {
			return FailErr(label, err)
		}
		ranges[i] = rangeLines{ref: ref, top: top, bottom: bottom}
	}

	var (
		shapeSchema expr.Node
		shapeOK     bool
		capture     *diagnostic.Diagnostic
		assumption  *diagnostic.Diagnostic
	)
	for _, form := range d.Forms {
		if len(form.Singles) != len(singles) || len(form.Ranges) != len(ranges) {
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

		for _, sp := range permutations(len(singles)) {
		orders:
			for _, rp := range permutations(len(ranges)) {
				steps := make([]step, 0, len(singles)+2*len(ranges)+1)
				for i, s := range form.Singles {
					steps = append(steps, step{alts: []expr.Node{s}, cand: singles[sp[i]]})
				}
				for i, spec := range form.Ranges {
					rl := ranges[rp[i]]
					if spec.Assumption != nil && !spec.Assumption.MatchString(ctx.Justification(rl.ref.From)) {
						if assumption == nil {
							assumption = notAssumptionFor(ctx, target, rl.ref, r.Name)
						}
						continue orders
					}
					steps = append(steps,
						step{alts: []expr.Node{spec.Top}, cand: rl.top},
						step{alts: spec.Bottoms, cand: rl.bottom})
				}
				targetStep := step{alts: []expr.Node{form.Target}, cand: tf}
				if form.TargetFirst {
					steps = append([]step{targetStep}, steps...)
				} else {
					steps = append(steps, targetStep)
				}

				ok := solve(steps, match.Env{}, func(env match.Env) bool {
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
	}

	switch {
	case capture != nil:
		return Fail(capture)
	case shapeSchema != nil && !shapeOK:
		return Fail(wrongShape(ctx, target, shapeSchema, r.Name))
	case assumption != nil:
		return Fail(assumption, noResult(ctx, target, refs, r.Name))
	default:
		return Fail(noResult(ctx, target, refs, r.Name))
	}
}
