// Package freevar answers free-variable and capture questions about
// expressions. A variable-sort metavariable is treated as a variable named
// by its metavariable name, so the same checks run on templates.
package freevar

import (
	"github.com/orizon-lang/derivcheck/internal/expr"
)

// Name returns the variable name of a *Variable or variable-sort *Meta
func Name(t expr.Node) (string, bool) {
	switch v := t.(type) {
	case *expr.Variable:
		return v.Name, true
	case *expr.Meta:
		if v.Sort == expr.SortVariable {
			return v.Name, true
		}
	}
	return "", false
}

// binder returns the variable a quantifier binds
func binder(q *expr.Quantifier) string {
	name, _ := Name(q.Var)
	return name
}

// OccursFree reports whether variable x has an occurrence in n that is not
// bound by an enclosing quantifier on x. Occurrences in a restricted
// quantifier's bound term count as bound by that quantifier.
func OccursFree(x string, n expr.Node) bool {
	found := false
	visitFree(n, nil, func(name string, _ expr.Path, _ map[string]int) {
		if name == x {
			found = true
		}
	})
	return found
}

// FreeVariables lists the free variables of n in order of first occurrence
func FreeVariables(n expr.Node) []string {
	var out []string
	seen := make(map[string]bool)
	visitFree(n, nil, func(name string, _ expr.Path, _ map[string]int) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	})
	return out
}

// visitFree calls fn for every free variable occurrence with the path and
// the set of variables bound at that point
func visitFree(n expr.Node, path expr.Path, fn func(name string, path expr.Path, bound map[string]int)) {
	bound := make(map[string]int)
	var rec func(n expr.Node, path expr.Path)
	rec = func(n expr.Node, path expr.Path) {
		if name, ok := Name(n); ok {
			if bound[name] == 0 {
				fn(name, path, bound)
			}
			return
		}
		q, isQ := n.(*expr.Quantifier)
		if isQ {
			bound[binder(q)]++
		}
		for i, c := range n.Children() {
			if isQ && i == 0 {
				continue
			}
			rec(c, path.Extend(i))
		}
		if isQ {
			bound[binder(q)]--
		}
	}
	rec(n, path)
}

// BoundAt returns the variables bound by quantifiers enclosing path
func BoundAt(root expr.Node, path expr.Path) map[string]bool {
	out := make(map[string]bool)
	n := root
	for _, i := range path {
		if q, ok := n.(*expr.Quantifier); ok && i > 0 {
			out[binder(q)] = true
		}
		cs := n.Children()
		if i < 0 || i >= len(cs) {
			break
		}
		n = cs[i]
	}
	return out
}

// FreeFor reports whether t is free for x in n: substituting t for the free
// occurrences of x captures none of t's variables.
func FreeFor(t expr.Node, x string, n expr.Node) bool {
	tvars := FreeVariables(t)
	if len(tvars) == 0 {
		return true
	}
	ok := true
	visitFree(n, nil, func(name string, _ expr.Path, bound map[string]int) {
		if name != x {
			return
		}
		for _, v := range tvars {
			if bound[v] > 0 {
				ok = false
			}
		}
	})
	return ok
}

// Substitute replaces the free occurrences of x in n by t. It does not
// check capture; callers use FreeFor first.
func Substitute(n expr.Node, x string, t expr.Term) expr.Node {
	if name, ok := Name(n); ok {
		if name == x {
			return t
		}
		return n
	}
	if q, ok := n.(*expr.Quantifier); ok && binder(q) == x {
		return n
	}
	cs := n.Children()
	if len(cs) == 0 {
		return n
	}
	next := make([]expr.Node, len(cs))
	for i, c := range cs {
		next[i] = Substitute(c, x, t)
	}
	out, ok := n.WithChildren(next)
	if !ok {
		return n
	}
	return out
}

// FreeAt reports whether the occurrence of t at path is free in root
func FreeAt(root expr.Node, path expr.Path, t expr.Node) bool {
	bound := BoundAt(root, path)
	for _, v := range FreeVariables(t) {
		if bound[v] {
			return false
		}
	}
	return true
}
