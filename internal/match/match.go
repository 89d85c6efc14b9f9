// Package match matches schemas against object-language expressions.
//
// A schema is an expression that may contain metavariables and instance
// schemas. Matching walks schema and candidate in parallel and records what
// every metavariable captured; a metavariable seen twice must capture
// structurally equal expressions both times.
package match

import (
	"fmt"

	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/freevar"
)

// Mismatch locates the first point where a schema failed to match
type Mismatch struct {
	Path      expr.Path
	Schema    expr.Node
	Candidate expr.Node
	Reason    string
}

func (m *Mismatch) String() string {
	return fmt.Sprintf("at %s: %s does not match %s (%s)",
		m.Path, expr.Format(m.Candidate), expr.Format(m.Schema), m.Reason)
}

// Result is the outcome of a match. Mismatch is nil on success.
type Result struct {
	Env      Env
	Mismatch *Mismatch
}

// OK reports whether the match succeeded
func (r Result) OK() bool { return r.Mismatch == nil }

// FullyBound reports whether every metavariable of the companion schemas
// has a binding in r.Env
func (r Result) FullyBound(companions ...expr.Node) bool {
	for _, c := range companions {
		for _, m := range expr.Metavariables(c) {
			if !r.Env.Bound(m.Name) {
				return false
			}
		}
	}
	return true
}

// Match matches schema against candidate starting from an empty environment
func Match(schema, candidate expr.Node) Result {
	return MatchWith(schema, candidate, Env{})
}

// MatchWith matches schema against candidate, extending env
func MatchWith(schema, candidate expr.Node, env Env) Result {
	out, mm := match(schema, candidate, env, nil)
	if mm != nil {
		return Result{Env: env, Mismatch: mm}
	}
	return Result{Env: out}
}

func mismatch(path expr.Path, schema, candidate expr.Node, reason string) *Mismatch {
	return &Mismatch{Path: path, Schema: schema, Candidate: candidate, Reason: reason}
}

func match(schema, cand expr.Node, env Env, path expr.Path) (Env, *Mismatch) {
	if schema == nil || cand == nil {
		if schema == nil && cand == nil {
			return env, nil
		}
		return env, mismatch(path, schema, cand, "missing sub-expression")
	}

	switch s := schema.(type) {
	case *expr.Meta:
		return bindMeta(s, cand, env, path)
	case *expr.Instance:
		return matchInstance(s, cand, env, path)
	}

	if !expr.SameHead(schema, cand) {
		return env, mismatch(path, schema, cand, "different shape")
	}
	sc, cc := schema.Children(), cand.Children()
	if len(sc) != len(cc) {
		return env, mismatch(path, schema, cand, "different arity")
	}
	for i := range sc {
		var mm *Mismatch
		env, mm = match(sc[i], cc[i], env, path.Extend(i))
		if mm != nil {
			return env, mm
		}
	}
	return env, nil
}

func sortAccepts(sort expr.Sort, n expr.Node) bool {
	switch sort {
	case expr.SortFormula:
		return expr.IsFormula(n)
	case expr.SortVariable:
		_, ok := freevar.Name(n)
		return ok
	default:
		return expr.IsTerm(n)
	}
}

func bindMeta(m *expr.Meta, cand expr.Node, env Env, path expr.Path) (Env, *Mismatch) {
	if !sortAccepts(m.Sort, cand) {
		return env, mismatch(path, m, cand, "not a "+m.Sort.String())
	}
	if prev, ok := env.Lookup(m.Name); ok {
		if !expr.Equal(prev, cand) {
			return env, mismatch(path, m, cand, fmt.Sprintf("%s is already %s", m.Name, expr.Format(prev)))
		}
		return env, nil
	}
	return env.Bind(m.Name, cand), nil
}

// matchInstance matches 𝒜⟨𝓍,𝓉⟩. The base and the variable must already be
// bound; the candidate must be the base with a single term put for every
// free occurrence of the variable, and that term must be free for it.
func matchInstance(inst *expr.Instance, cand expr.Node, env Env, path expr.Path) (Env, *Mismatch) {
	if !expr.IsFormula(cand) {
		return env, mismatch(path, inst, cand, "not a formula")
	}
	base, ok := Substitute(inst.Base, env)
	if !ok {
		return env, mismatch(path, inst, cand, "instance base is not bound yet")
	}
	varNode, ok := Substitute(inst.Var, env)
	if !ok {
		return env, mismatch(path, inst, cand, "instance variable is not bound yet")
	}
	x, ok := freevar.Name(varNode)
	if !ok {
		return env, mismatch(path, inst, cand, "instance variable is not a variable")
	}

	w := &instanceWalk{x: x}
	if !w.walk(base, cand, 0) {
		return env, mismatch(path, inst, cand, w.reason)
	}
	if w.term == nil {
		// x is not free in the base: any replacement gives the base back
		return env, nil
	}
	if !freevar.FreeFor(w.term, x, base) {
		return env, mismatch(path, inst, cand,
			fmt.Sprintf("%s is not free for %s in %s", expr.Format(w.term), x, expr.Format(base)))
	}
	return match(inst.Replacement, w.term, env, path.Extend(2))
}

type instanceWalk struct {
	x      string
	term   expr.Node
	reason string
}

// walk compares base and cand; bound counts enclosing quantifiers on x
func (w *instanceWalk) walk(base, cand expr.Node, bound int) bool {
	if name, ok := freevar.Name(base); ok && name == w.x && bound == 0 {
		if !expr.IsTerm(cand) {
			w.reason = "expected a term for " + w.x
			return false
		}
		if w.term == nil {
			w.term = cand
			return true
		}
		if !expr.Equal(w.term, cand) {
			w.reason = fmt.Sprintf("%s is replaced by both %s and %s", w.x, expr.Format(w.term), expr.Format(cand))
			return false
		}
		return true
	}
	if !expr.SameHead(base, cand) {
		w.reason = "different shape"
		return false
	}
	bc, cc := base.Children(), cand.Children()
	if len(bc) != len(cc) {
		w.reason = "different arity"
		return false
	}
	q, isQ := base.(*expr.Quantifier)
	binds := false
	if isQ {
		name, _ := freevar.Name(q.Var)
		binds = name == w.x
	}
	for i := range bc {
		inner := bound
		if isQ && i == 0 {
			if !expr.Equal(bc[0], cc[0]) {
				w.reason = "different bound variable"
				return false
			}
			continue
		}
		if binds {
			inner++
		}
		if !w.walk(bc[i], cc[i], inner) {
			return false
		}
	}
	return true
}

// Substitute replaces the metavariables of schema by their bindings. It
// fails when a metavariable is unbound, except an instance replacement
// whose variable has no free occurrence in the base.
func Substitute(schema expr.Node, env Env) (expr.Node, bool) {
	switch s := schema.(type) {
	case *expr.Meta:
		return env.Lookup(s.Name)
	case *expr.Instance:
		base, ok := Substitute(s.Base, env)
		if !ok {
			return nil, false
		}
		v, ok := Substitute(s.Var, env)
		if !ok {
			return nil, false
		}
		x, ok := freevar.Name(v)
		if !ok {
			return nil, false
		}
		if !freevar.OccursFree(x, base) {
			return base, true
		}
		r, ok := Substitute(s.Replacement, env)
		if !ok {
			return nil, false
		}
		t, ok := r.(expr.Term)
		if !ok || !freevar.FreeFor(t, x, base) {
			return nil, false
		}
		return freevar.Substitute(base, x, t), true
	}

	cs := schema.Children()
	if len(cs) == 0 {
		return schema, true
	}
	next := make([]expr.Node, len(cs))
	for i, c := range cs {
		n, ok := Substitute(c, env)
		if !ok {
			return nil, false
		}
		next[i] = n
	}
	return schema.WithChildren(next)
}

// Site is one place where a schema matched inside a host expression
type Site struct {
	Path expr.Path
	Env  Env
}

// MatchAtAnyPosition matches schema against every sub-expression of host in
// pre-order and returns the sites that matched. Quantifier binding
// positions are skipped.
func MatchAtAnyPosition(schema, host expr.Node, env Env) []Site {
	var sites []Site
	var visit func(n expr.Node, path expr.Path)
	visit = func(n expr.Node, path expr.Path) {
		if r := MatchWith(schema, n, env); r.OK() {
			sites = append(sites, Site{Path: path, Env: r.Env})
		}
		_, isQ := n.(*expr.Quantifier)
		for i, c := range n.Children() {
			if isQ && i == 0 {
				continue
			}
			visit(c, path.Extend(i))
		}
	}
	visit(host, expr.Path{})
	return sites
}
