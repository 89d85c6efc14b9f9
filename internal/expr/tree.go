package expr

import "strconv"

// Equal reports structural equality. Which bracket or alias spelling was
// used in the source text is not part of the tree, so it never matters.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !sameHead(a, b) {
		return false
	}
	ac, bc := a.Children(), b.Children()
	if len(ac) != len(bc) {
		return false
	}
	for i := range ac {
		if !Equal(ac[i], bc[i]) {
			return false
		}
	}
	return true
}

// sameHead compares the node labels, ignoring children
func sameHead(a, b Node) bool {
	switch x := a.(type) {
	case *Atomic:
		y, ok := b.(*Atomic)
		return ok && x.Predicate == y.Predicate && x.Infix == y.Infix && len(x.Args) == len(y.Args)
	case *Connective:
		y, ok := b.(*Connective)
		return ok && x.Op == y.Op
	case *Quantifier:
		y, ok := b.(*Quantifier)
		if !ok || x.Op != y.Op || (x.Restriction == nil) != (y.Restriction == nil) {
			return false
		}
		return x.Restriction == nil || x.Restriction.Relation == y.Restriction.Relation
	case *Equality:
		_, ok := b.(*Equality)
		return ok
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *Constant:
		y, ok := b.(*Constant)
		return ok && x.Name == y.Name
	case *Function:
		y, ok := b.(*Function)
		return ok && x.Name == y.Name && x.Infix == y.Infix && len(x.Args) == len(y.Args)
	case *Meta:
		y, ok := b.(*Meta)
		return ok && x.Name == y.Name && x.Sort == y.Sort
	case *Instance:
		_, ok := b.(*Instance)
		return ok
	default:
		return false
	}
}

// SameHead reports whether a and b agree on everything but their children
func SameHead(a, b Node) bool { return sameHead(a, b) }

// Path addresses a sub-node by child indices from the root
type Path []int

// String renders the path as dotted indices, "ε" for the root
func (p Path) String() string {
	if len(p) == 0 {
		return "ε"
	}
	s := ""
	for i, n := range p {
		if i > 0 {
			s += "."
		}
		s += strconv.Itoa(n)
	}
	return s
}

// Extend returns p with one more index, never aliasing p's backing array
func (p Path) Extend(i int) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Walk visits every node in pre-order; returning false skips the children
func Walk(root Node, fn func(path Path, n Node) bool) {
	walk(root, nil, fn)
}

func walk(n Node, path Path, fn func(Path, Node) bool) {
	if n == nil || !fn(path, n) {
		return
	}
	for i, c := range n.Children() {
		walk(c, path.Extend(i), fn)
	}
}

// At returns the node at path, or nil when the path leaves the tree
func At(root Node, path Path) Node {
	n := root
	for _, i := range path {
		if n == nil {
			return nil
		}
		cs := n.Children()
		if i < 0 || i >= len(cs) {
			return nil
		}
		n = cs[i]
	}
	return n
}

// Splice returns root with the node at path replaced by repl
func Splice(root Node, path Path, repl Node) (Node, bool) {
	if len(path) == 0 {
		return repl, true
	}
	cs := root.Children()
	i := path[0]
	if i < 0 || i >= len(cs) {
		return nil, false
	}
	child, ok := Splice(cs[i], path[1:], repl)
	if !ok {
		return nil, false
	}
	next := append([]Node(nil), cs...)
	next[i] = child
	return root.WithChildren(next)
}

// Metavariables lists the metavariables of n in order of first occurrence
func Metavariables(n Node) []*Meta {
	var out []*Meta
	seen := make(map[string]bool)
	Walk(n, func(_ Path, x Node) bool {
		if m, ok := x.(*Meta); ok && !seen[m.Name] {
			seen[m.Name] = true
			out = append(out, m)
		}
		return true
	})
	return out
}

// IsFormula reports whether n sits in formula position
func IsFormula(n Node) bool {
	if m, ok := n.(*Meta); ok {
		return m.Sort == SortFormula
	}
	_, ok := n.(Formula)
	return ok
}

// IsTerm reports whether n sits in term position
func IsTerm(n Node) bool {
	if m, ok := n.(*Meta); ok {
		return m.Sort != SortFormula
	}
	_, ok := n.(Term)
	return ok
}
