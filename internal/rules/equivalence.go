package rules

import (
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/match"
	"github.com/orizon-lang/derivcheck/internal/replace"
)

// Equivalence rules replace one sub-formula of the cited line by an
// equivalent one, using any of Pairs in either direction
type Equivalence struct {
	Pairs []replace.Pair
}

func (*Equivalence) Name() string { return "equivalence" }

func (e *Equivalence) apply(r *Rule, ctx Context, target int, refs []Ref) Verdict {
	tf, cited, failed := oneCitation(r, ctx, target, refs)
	if failed != nil {
		return *failed
	}
	if replace.CheckPairs(e.Pairs, cited, tf) {
		return Pass()
	}
	return Fail(noResult(ctx, target, refs, r.Name))
}

// Abbreviation rules are equivalences between a defined notation and its
// definition. Their pairs carry freshness guards; a replacement that only
// fails a guard is reported as a capture.
type Abbreviation struct {
	Equivalence
}

func (*Abbreviation) Name() string { return "abbreviation" }

func (a *Abbreviation) apply(r *Rule, ctx Context, target int, refs []Ref) Verdict {
	tf, cited, failed := oneCitation(r, ctx, target, refs)
	if failed != nil {
		return *failed
	}
	if replace.CheckPairs(a.Pairs, cited, tf) {
		return Pass()
	}
	for _, p := range a.Pairs {
		if len(p.Guards) == 0 {
			continue
		}
		if v, f, ok := guardFailure(p, cited, tf); ok {
			return Fail(captured(ctx, target, v, f, r.Name))
		}
	}
	return Fail(noResult(ctx, target, refs, r.Name))
}

// guardFailure finds a replacement by p that holds apart from a guard and
// names the variable and formula that break it
func guardFailure(p replace.Pair, in, out expr.Node) (string, string, bool) {
	for _, dir := range [][2]expr.Node{{p.Left, p.Right}, {p.Right, p.Left}} {
		if !replace.Check(dir[0], dir[1], in, out) {
			continue
		}
		for _, site := range match.MatchAtAnyPosition(dir[0], in, match.Env{}) {
			replaced := expr.At(out, site.Path)
			if replaced == nil {
				continue
			}
			res := match.MatchWith(dir[1], replaced, site.Env)
			if !res.OK() {
				continue
			}
			for _, g := range p.Guards {
				nf, ok := g.(replace.NotFree)
				if !ok || nf.Holds(res.Env) {
					continue
				}
				return describeNotFree(nf, res.Env)
			}
		}
	}
	return "", "", false
}

func describeNotFree(g replace.NotFree, env match.Env) (string, string, bool) {
	c := Fresh{Var: g.Var, In: g.In}
	v, f, bad := c.violation(nil, 0, env)
	return v, f, bad
}

func oneCitation(r *Rule, ctx Context, target int, refs []Ref) (expr.Node, expr.Node, *Verdict) {
	tf, err := ctx.Formula(target)
	if err != nil {
		v := FailErr(ctx.Label(target), err)
		return nil, nil, &v
	}
	if len(refs) != 1 || refs[0].Range {
		v := Fail(citationShape(ctx, target, r.Name, "exactly one line"))
		return nil, nil, &v
	}
	cited, failed := lineFormulas(ctx, target, refs)
	if failed != nil {
		return nil, nil, failed
	}
	return tf, cited[0], nil
}
