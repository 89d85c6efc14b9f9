package rules

import (
	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/expr"
)

func wrongShape(ctx Context, target int, schema expr.Node, rule string) *diagnostic.Diagnostic {
	label := ctx.Label(target)
	return diagnostic.NewDiagnostic().
		Error().
		Code(derrors.CodeSchemaMismatch).
		Line(label).
		Messagef("Line %s does not have the form %s, so cannot result by %s.", label, expr.Format(schema), rule).
		Build()
}

func noResult(ctx Context, target int, refs []Ref, rule string) *diagnostic.Diagnostic {
	label := ctx.Label(target)
	b := diagnostic.NewDiagnostic().
		Error().
		Code(derrors.CodeNoApplicableForm).
		Line(label).
		Messagef("Line %s does not result from %s by %s.", label, describeRefs(refs), rule)
	for _, r := range refs {
		if r.Range {
			continue
		}
		if f, err := ctx.Formula(r.From); err == nil {
			b.Related(r.Label, expr.Format(f), "")
		}
	}
	return b.Build()
}

func captured(ctx Context, target int, variable, formula, rule string) *diagnostic.Diagnostic {
	return diagnostic.FromError(ctx.Label(target), derrors.CaptureViolation(variable, formula, rule))
}

func notAssumptionFor(ctx Context, target int, ref Ref, rule string) *diagnostic.Diagnostic {
	label := ctx.Label(target)
	return diagnostic.NewDiagnostic().
		Error().
		Code(derrors.CodeMalformedSubderivation).
		Line(label).
		Messagef("Line %s opens the subderivation %s cited by line %s, but it is not an assumption for %s.",
			ctx.Label(ref.From), ref.Label, label, rule).
		Build()
}

func citationShape(ctx Context, target int, rule, want string) *diagnostic.Diagnostic {
	label := ctx.Label(target)
	return diagnostic.NewDiagnostic().
		Error().
		Code(derrors.CodeNoApplicableForm).
		Line(label).
		Messagef("Line %s: %s cites %s.", label, rule, want).
		Build()
}

// lineFormulas resolves single-line citations, checking each is accessible
// and has content
func lineFormulas(ctx Context, target int, refs []Ref) ([]expr.Node, *Verdict) {
	out := make([]expr.Node, len(refs))
	for i, r := range refs {
		if err := ctx.Accessible(r.From, target); err != nil {
			v := FailErr(ctx.Label(target), err)
			return nil, &v
		}
		f, err := ctx.Formula(r.From)
		if err != nil {
			v := FailErr(ctx.Label(target), err)
			return nil, &v
		}
		out[i] = f
	}
	return out, nil
}

func splitRefs(refs []Ref) (singles, ranges []Ref) {
	for _, r := range refs {
		if r.Range {
			ranges = append(ranges, r)
		} else {
			singles = append(singles, r)
		}
	}
	return singles, ranges
}

// checkable reports whether a target schema can be matched on its own,
// which fails for bare metavariables and instance schemas
func checkable(schema expr.Node) bool {
	if _, ok := schema.(*expr.Meta); ok {
		return false
	}
	ok := true
	expr.Walk(schema, func(_ expr.Path, n expr.Node) bool {
		if _, isInst := n.(*expr.Instance); isInst {
			ok = false
		}
		return ok
	})
	return ok
}
