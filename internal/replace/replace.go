// Package replace decides whether one expression results from another by
// replacing a single sub-expression according to a schema pair.
package replace

import (
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/freevar"
	"github.com/orizon-lang/derivcheck/internal/match"
)

// Guard is a side condition evaluated on the environment of a successful
// replacement
type Guard interface {
	Holds(env match.Env) bool
	String() string
}

// NotFree requires the variable bound to Var to have no free occurrence in
// any of the In schemas. It holds vacuously while Var is unbound.
type NotFree struct {
	Var string
	In  []expr.Node
}

// Holds implements Guard
func (g NotFree) Holds(env match.Env) bool {
	v, ok := env.Lookup(g.Var)
	if !ok {
		return true
	}
	name, ok := freevar.Name(v)
	if !ok {
		return false
	}
	for _, s := range g.In {
		n, ok := match.Substitute(s, env)
		if !ok {
			return false
		}
		if freevar.OccursFree(name, n) {
			return false
		}
	}
	return true
}

func (g NotFree) String() string {
	s := g.Var + " not free in"
	for i, n := range g.In {
		if i > 0 {
			s += ","
		}
		s += " " + expr.Format(n)
	}
	return s
}

// Pair is an interchangeable pair of schemas
type Pair struct {
	Left, Right expr.Node
	Guards      []Guard
}

// Check reports whether out results from in by replacing one sub-expression
// matching left with the corresponding instance of right. For each site
// where left matches in, out must agree with in everywhere off the site and
// the sub-expression of out at the site must match right under the site's
// bindings. Check(l, r, a, b) == Check(r, l, b, a).
func Check(left, right, in, out expr.Node, guards ...Guard) bool {
	for _, site := range match.MatchAtAnyPosition(left, in, match.Env{}) {
		replaced := expr.At(out, site.Path)
		if replaced == nil {
			continue
		}
		restored, ok := expr.Splice(out, site.Path, expr.At(in, site.Path))
		if !ok || !expr.Equal(restored, in) {
			continue
		}
		r := match.MatchWith(right, replaced, site.Env)
		if !r.OK() {
			continue
		}
		if holds(guards, r.Env) {
			return true
		}
	}
	return false
}

func holds(guards []Guard, env match.Env) bool {
	for _, g := range guards {
		if !g.Holds(env) {
			return false
		}
	}
	return true
}

// CheckPairs reports whether out results from in by one replacement using
// any pair, in either direction
func CheckPairs(pairs []Pair, in, out expr.Node) bool {
	for _, p := range pairs {
		if Check(p.Left, p.Right, in, out, p.Guards...) || Check(p.Right, p.Left, in, out, p.Guards...) {
			return true
		}
	}
	return false
}

// ReplaceSome reports whether out is in with some, possibly no, free
// occurrences of the term from replaced by the term to. A replacement that
// would bind a variable of to is refused.
func ReplaceSome(from, to, in, out expr.Node) bool {
	return replaceSome(from, to, in, out, in, out, nil)
}

func replaceSome(from, to, in, out, inRoot, outRoot expr.Node, path expr.Path) bool {
	if expr.Equal(in, out) {
		return true
	}
	if expr.Equal(in, from) && expr.Equal(out, to) &&
		freevar.FreeAt(inRoot, path, from) && freevar.FreeAt(outRoot, path, to) {
		return true
	}
	if !expr.SameHead(in, out) {
		return false
	}
	ic, oc := in.Children(), out.Children()
	if len(ic) != len(oc) {
		return false
	}
	_, isQ := in.(*expr.Quantifier)
	for i := range ic {
		if isQ && i == 0 {
			if !expr.Equal(ic[0], oc[0]) {
				return false
			}
			continue
		}
		if !replaceSome(from, to, ic[i], oc[i], inRoot, outRoot, path.Extend(i)) {
			return false
		}
	}
	return true
}
