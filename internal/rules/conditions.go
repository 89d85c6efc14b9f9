package rules

import (
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/freevar"
	"github.com/orizon-lang/derivcheck/internal/match"
)

// Condition is a side condition on the bindings of a successful match
type Condition interface {
	// violation names the variable and the formula it wrongly occurs in
	violation(ctx Context, target int, env match.Env) (variable, formula string, violated bool)
}

// Fresh requires the variable bound to Var not to be free in any of In.
// It holds vacuously while Var is unbound.
type Fresh struct {
	Var string
	In  []expr.Node
}

func (c Fresh) violation(_ Context, _ int, env match.Env) (string, string, bool) {
	name, ok := boundVariable(env, c.Var)
	if !ok {
		return "", "", false
	}
	for _, s := range c.In {
		n, ok := match.Substitute(s, env)
		if !ok {
			continue
		}
		if freevar.OccursFree(name, n) {
			return name, expr.Format(n), true
		}
	}
	return "", "", false
}

// FreshInOpen requires the variable bound to Var not to be free in any
// premise or undischarged assumption at the target line
type FreshInOpen struct {
	Var string
}

func (c FreshInOpen) violation(ctx Context, target int, env match.Env) (string, string, bool) {
	name, ok := boundVariable(env, c.Var)
	if !ok {
		return "", "", false
	}
	for _, i := range ctx.OpenAssumptions(target) {
		f, err := ctx.Formula(i)
		if err != nil {
			continue
		}
		if freevar.OccursFree(name, f) {
			return name, expr.Format(f), true
		}
	}
	return "", "", false
}

func boundVariable(env match.Env, meta string) (string, bool) {
	n, ok := env.Lookup(meta)
	if !ok {
		return "", false
	}
	return freevar.Name(n)
}

// step pairs alternative schemas with the expression they must match
type step struct {
	alts []expr.Node
	cand expr.Node
}

// solve matches the steps in order, trying each alternative, and calls
// accept on every complete environment until accept returns true
func solve(steps []step, env match.Env, accept func(match.Env) bool) bool {
	if len(steps) == 0 {
		return accept(env)
	}
	for _, alt := range steps[0].alts {
		r := match.MatchWith(alt, steps[0].cand, env)
		if r.OK() && solve(steps[1:], r.Env, accept) {
			return true
		}
	}
	return false
}
