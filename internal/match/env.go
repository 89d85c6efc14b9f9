package match

import (
	"sort"
	"strings"

	"github.com/orizon-lang/derivcheck/internal/expr"
)

// Env binds metavariable names to the expressions they captured. It is
// persistent: Bind returns a new Env and never changes the receiver, so a
// failed branch of a search can simply drop its copy.
type Env struct {
	bindings map[string]expr.Node
}

// Lookup returns the expression bound to name
func (e Env) Lookup(name string) (expr.Node, bool) {
	n, ok := e.bindings[name]
	return n, ok
}

// Bound reports whether name has a binding
func (e Env) Bound(name string) bool {
	_, ok := e.bindings[name]
	return ok
}

// Bind returns a copy of e with name bound to n
func (e Env) Bind(name string, n expr.Node) Env {
	next := make(map[string]expr.Node, len(e.bindings)+1)
	for k, v := range e.bindings {
		next[k] = v
	}
	next[name] = n
	return Env{bindings: next}
}

// Len returns the number of bindings
func (e Env) Len() int { return len(e.bindings) }

// Names returns the bound names in sorted order
func (e Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for k := range e.bindings {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (e Env) String() string {
	parts := make([]string, 0, len(e.bindings))
	for _, k := range e.Names() {
		parts = append(parts, k+"↦"+expr.Format(e.bindings[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
