// Package expr is the expression model shared by the parser, the schema
// matcher and the rule catalog.
//
// Expressions are immutable trees. Formulas and terms share the Node
// interface; Meta and Instance nodes only occur in expressions built from
// rule templates.
package expr

import (
	"strings"

	"github.com/samber/lo"
)

// Sort is the syntactic category a metavariable stands for
type Sort int

const (
	SortFormula Sort = iota
	SortTerm
	SortVariable
)

func (s Sort) String() string {
	switch s {
	case SortFormula:
		return "formula"
	case SortTerm:
		return "term"
	case SortVariable:
		return "variable"
	default:
		return "unknown"
	}
}

// Node is any expression node
type Node interface {
	// String renders the node; binary connectives carry their brackets
	String() string
	// Children returns the direct sub-nodes in a fixed order
	Children() []Node
	// WithChildren rebuilds the node from replacement children; ok is false
	// when a child has the wrong category for its slot
	WithChildren(children []Node) (Node, bool)
}

// Formula is a node standing for a sentence or open formula
type Formula interface {
	Node
	formula()
}

// Term is a node standing for an object
type Term interface {
	Node
	term()
}

// Op is a sentential connective
type Op int

const (
	OpNot Op = iota
	OpAnd
	OpOr
	OpCond
	OpBicond
	OpFalsum
)

var opSymbols = map[Op]string{
	OpNot:    "∼",
	OpAnd:    "∧",
	OpOr:     "∨",
	OpCond:   "→",
	OpBicond: "↔",
	OpFalsum: "⊥",
}

// Symbol returns the canonical symbol of the connective
func (o Op) Symbol() string { return opSymbols[o] }

// Arity returns how many operands the connective takes
func (o Op) Arity() int {
	switch o {
	case OpFalsum:
		return 0
	case OpNot:
		return 1
	default:
		return 2
	}
}

// QuantOp is a quantifier
type QuantOp int

const (
	Forall QuantOp = iota
	Exists
)

// Symbol returns ∀ or ∃
func (q QuantOp) Symbol() string {
	if q == Exists {
		return "∃"
	}
	return "∀"
}

// Atomic is a sentence letter, a predicate application or an infix relation
type Atomic struct {
	Predicate string
	Args      []Term
	Infix     bool
}

// Connective applies a sentential operator
type Connective struct {
	Op   Op
	Args []Formula
}

// Restriction is the bounding comparison of a restricted quantifier
type Restriction struct {
	Relation string
	Bound    Term
}

// Quantifier binds Var in Body; Var is a *Variable or a variable-sort *Meta
type Quantifier struct {
	Op          QuantOp
	Var         Term
	Restriction *Restriction
	Body        Formula
}

// Equality is t = s
type Equality struct {
	Left  Term
	Right Term
}

// Variable is an individual variable
type Variable struct{ Name string }

// Constant is an individual constant
type Constant struct{ Name string }

// Function applies a function symbol; Infix marks + and ×
type Function struct {
	Name  string
	Args  []Term
	Infix bool
}

// Meta is a schema metavariable
type Meta struct {
	Name string
	Sort Sort
}

// Instance is the schema 𝒜⟨𝓍,𝓉⟩: Base with Replacement put for the free
// occurrences of Var
type Instance struct {
	Base        Formula
	Var         Term
	Replacement Term
}

func (*Atomic) formula()     {}
func (*Connective) formula() {}
func (*Quantifier) formula() {}
func (*Equality) formula()   {}
func (*Instance) formula()   {}
func (*Meta) formula()       {}

func (*Variable) term() {}
func (*Constant) term() {}
func (*Function) term() {}
func (*Meta) term()     {}

// Not builds ∼f
func Not(f Formula) *Connective { return &Connective{Op: OpNot, Args: []Formula{f}} }

// Binary builds a binary connective
func Binary(op Op, l, r Formula) *Connective {
	return &Connective{Op: op, Args: []Formula{l, r}}
}

// Bottom builds ⊥
func Bottom() *Connective { return &Connective{Op: OpFalsum} }

// Children

func (a *Atomic) Children() []Node { return termsToNodes(a.Args) }
func (c *Connective) Children() []Node {
	return lo.Map(c.Args, func(f Formula, _ int) Node { return f })
}
func (q *Quantifier) Children() []Node {
	if q.Restriction != nil {
		return []Node{q.Var, q.Restriction.Bound, q.Body}
	}
	return []Node{q.Var, q.Body}
}
func (e *Equality) Children() []Node { return []Node{e.Left, e.Right} }
func (*Variable) Children() []Node   { return nil }
func (*Constant) Children() []Node   { return nil }
func (f *Function) Children() []Node { return termsToNodes(f.Args) }
func (*Meta) Children() []Node       { return nil }
func (i *Instance) Children() []Node { return []Node{i.Base, i.Var, i.Replacement} }

func termsToNodes(ts []Term) []Node {
	return lo.Map(ts, func(t Term, _ int) Node { return t })
}

func nodesToTerms(ns []Node) ([]Term, bool) {
	out := make([]Term, len(ns))
	for i, n := range ns {
		t, ok := n.(Term)
		if !ok {
			return nil, false
		}
		out[i] = t
	}
	return out, true
}

// WithChildren

func (a *Atomic) WithChildren(children []Node) (Node, bool) {
	args, ok := nodesToTerms(children)
	if !ok || len(args) != len(a.Args) {
		return nil, false
	}
	return &Atomic{Predicate: a.Predicate, Args: args, Infix: a.Infix}, true
}

func (c *Connective) WithChildren(children []Node) (Node, bool) {
	if len(children) != len(c.Args) {
		return nil, false
	}
	args := make([]Formula, len(children))
	for i, n := range children {
		f, ok := n.(Formula)
		if !ok {
			return nil, false
		}
		args[i] = f
	}
	return &Connective{Op: c.Op, Args: args}, true
}

func (q *Quantifier) WithChildren(children []Node) (Node, bool) {
	want := 2
	if q.Restriction != nil {
		want = 3
	}
	if len(children) != want {
		return nil, false
	}
	v, ok := children[0].(Term)
	if !ok {
		return nil, false
	}
	body, ok := children[len(children)-1].(Formula)
	if !ok {
		return nil, false
	}
	out := &Quantifier{Op: q.Op, Var: v, Body: body}
	if q.Restriction != nil {
		bound, ok := children[1].(Term)
		if !ok {
			return nil, false
		}
		out.Restriction = &Restriction{Relation: q.Restriction.Relation, Bound: bound}
	}
	return out, true
}

func (e *Equality) WithChildren(children []Node) (Node, bool) {
	ts, ok := nodesToTerms(children)
	if !ok || len(ts) != 2 {
		return nil, false
	}
	return &Equality{Left: ts[0], Right: ts[1]}, true
}

func (v *Variable) WithChildren(children []Node) (Node, bool) { return v, len(children) == 0 }
func (c *Constant) WithChildren(children []Node) (Node, bool) { return c, len(children) == 0 }
func (m *Meta) WithChildren(children []Node) (Node, bool)     { return m, len(children) == 0 }

func (f *Function) WithChildren(children []Node) (Node, bool) {
	args, ok := nodesToTerms(children)
	if !ok || len(args) != len(f.Args) {
		return nil, false
	}
	return &Function{Name: f.Name, Args: args, Infix: f.Infix}, true
}

func (i *Instance) WithChildren(children []Node) (Node, bool) {
	if len(children) != 3 {
		return nil, false
	}
	base, ok1 := children[0].(Formula)
	v, ok2 := children[1].(Term)
	r, ok3 := children[2].(Term)
	if !ok1 || !ok2 || !ok3 {
		return nil, false
	}
	return &Instance{Base: base, Var: v, Replacement: r}, true
}

// String

func (a *Atomic) String() string {
	if a.Infix && len(a.Args) == 2 {
		return a.Args[0].String() + " " + a.Predicate + " " + a.Args[1].String()
	}
	return a.Predicate + strings.Join(lo.Map(a.Args, func(t Term, _ int) string { return t.String() }), "")
}

func (c *Connective) String() string {
	switch c.Op.Arity() {
	case 0:
		return c.Op.Symbol()
	case 1:
		return c.Op.Symbol() + c.Args[0].String()
	default:
		return "(" + c.Args[0].String() + " " + c.Op.Symbol() + " " + c.Args[1].String() + ")"
	}
}

func (q *Quantifier) String() string {
	if q.Restriction != nil {
		return "(" + q.Op.Symbol() + q.Var.String() + " " + q.Restriction.Relation + " " +
			q.Restriction.Bound.String() + ")" + q.Body.String()
	}
	return q.Op.Symbol() + q.Var.String() + q.Body.String()
}

func (e *Equality) String() string { return e.Left.String() + " = " + e.Right.String() }
func (v *Variable) String() string { return v.Name }
func (c *Constant) String() string { return c.Name }
func (m *Meta) String() string     { return m.Name }

func (f *Function) String() string {
	switch {
	case f.Infix && len(f.Args) == 2:
		return "(" + f.Args[0].String() + " " + f.Name + " " + f.Args[1].String() + ")"
	case f.Name == "S" && len(f.Args) == 1:
		return "S" + f.Args[0].String()
	default:
		return f.Name + "(" + strings.Join(lo.Map(f.Args, func(t Term, _ int) string { return t.String() }), ",") + ")"
	}
}

func (i *Instance) String() string {
	return i.Base.String() + "⟨" + i.Var.String() + "," + i.Replacement.String() + "⟩"
}

// Format renders n for display, dropping the outermost brackets
func Format(n Node) string {
	if n == nil {
		return ""
	}
	s := n.String()
	if c, ok := n.(*Connective); ok && c.Op.Arity() == 2 {
		return s[1 : len(s)-1]
	}
	return s
}
