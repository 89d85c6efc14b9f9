// Package language defines the symbol tables formulas are written in.
//
// A Language is immutable configuration. The object language is what proof
// lines are written in; its meta companion additionally admits schema
// metavariables and instance brackets, and is what rule templates are
// written in.
package language

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical symbols. Aliases are rewritten to these before lexing.
const (
	Not    = "∼"
	And    = "∧"
	Or     = "∨"
	Cond   = "→"
	Bicond = "↔"
	Falsum = "⊥"
	Forall = "∀"
	Exists = "∃"
	Eq     = "="
	Neq    = "≠"
	Lt     = "<"
	Le     = "≤"
	Plus   = "+"
	Times  = "×"
	Zero   = "∅"
	Succ   = "S"
)

// Grammar selects the parser variant
type Grammar int

const (
	// GrammarObject admits only concrete symbols
	GrammarObject Grammar = iota
	// GrammarMeta admits metavariables and instance brackets as well
	GrammarMeta
)

func (g Grammar) String() string {
	if g == GrammarMeta {
		return "meta"
	}
	return "object"
}

// BracketPair is an opening and closing bracket
type BracketPair struct {
	Open  string
	Close string
}

// Alias rewrites an alternative spelling to a canonical symbol
type Alias struct {
	From string
	To   string
}

// Language is an immutable symbol table
type Language struct {
	Name    string
	Version string
	Grammar Grammar

	Brackets []BracketPair
	Comma    string
	// InstanceBrackets delimit 𝒜⟨𝓍,𝓉⟩ in the meta grammar
	InstanceBrackets BracketPair
	// RestrictionRelations are the comparisons allowed in (∀x ≤ t)
	RestrictionRelations []string

	Quantifiers bool
	Equality    bool
	Arithmetic  bool

	aliases []Alias
}

// Aliases returns the alias table, longest spelling first
func (l *Language) Aliases() []Alias {
	return append([]Alias(nil), l.aliases...)
}

// Normalize rewrites every alias in text to its canonical symbol
func (l *Language) Normalize(text string) string {
	if len(l.aliases) == 0 {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); {
		replaced := false
		for _, a := range l.aliases {
			if strings.HasPrefix(text[i:], a.From) {
				b.WriteString(a.To)
				i += len(a.From)
				replaced = true
				break
			}
		}
		if !replaced {
			b.WriteByte(text[i])
			i++
		}
	}
	return b.String()
}

// ClosingFor returns the closing bracket for open, if open is an opening bracket
func (l *Language) ClosingFor(open string) (string, bool) {
	for _, p := range l.Brackets {
		if p.Open == open {
			return p.Close, true
		}
	}
	return "", false
}

// IsClosing reports whether s closes some bracket pair
func (l *Language) IsClosing(s string) bool {
	for _, p := range l.Brackets {
		if p.Close == s {
			return true
		}
	}
	return false
}

// IsRestrictionRelation reports whether rel may restrict a quantifier
func (l *Language) IsRestrictionRelation(rel string) bool {
	for _, r := range l.RestrictionRelations {
		if r == rel {
			return true
		}
	}
	return false
}

// Meta returns the meta-language companion of l
func (l *Language) Meta() *Language {
	if l.Grammar == GrammarMeta {
		return l
	}
	m := *l
	m.Name = l.Name + " (meta)"
	m.Grammar = GrammarMeta
	m.aliases = l.Aliases()
	return &m
}

// String returns name and version
func (l *Language) String() string {
	return fmt.Sprintf("%s@%s", l.Name, l.Version)
}

var defaultAliases = []Alias{
	{"<->", Bicond},
	{"<=>", Bicond},
	{"≡", Bicond},
	{"->", Cond},
	{"⊃", Cond},
	{"=>", Cond},
	{"<=", Le},
	{"!=", Neq},
	{"~", Not},
	{"¬", Not},
	{"&", And},
	{"·", And},
	{"\\/", Or},
	{"#", Falsum},
	{"*", Times},
	{"⋅", Times},
}

// New builds a language; aliases are sorted longest first so that "<->"
// wins over "<" and "->".
func New(name, version string, opts ...Option) *Language {
	l := &Language{
		Name:    name,
		Version: version,
		Brackets: []BracketPair{
			{"(", ")"}, {"[", "]"}, {"{", "}"},
		},
		Comma:            ",",
		InstanceBrackets: BracketPair{"⟨", "⟩"},
		aliases:          append([]Alias(nil), defaultAliases...),
	}
	for _, opt := range opts {
		opt(l)
	}
	sort.SliceStable(l.aliases, func(i, j int) bool {
		return len(l.aliases[i].From) > len(l.aliases[j].From)
	})
	return l
}

// Option configures a Language under construction
type Option func(*Language)

// WithQuantifiers enables predicates, terms and quantifiers
func WithQuantifiers() Option {
	return func(l *Language) { l.Quantifiers = true }
}

// WithEquality enables = and ≠
func WithEquality() Option {
	return func(l *Language) { l.Equality = true }
}

// WithArithmetic enables ∅, S, +, ×, <, ≤ and restricted quantifiers
func WithArithmetic() Option {
	return func(l *Language) {
		l.Quantifiers = true
		l.Equality = true
		l.Arithmetic = true
		l.RestrictionRelations = []string{Le, Lt}
	}
}

// WithAlias adds an alias
func WithAlias(from, to string) Option {
	return func(l *Language) { l.aliases = append(l.aliases, Alias{from, to}) }
}

// Names of the built-in languages
const (
	SententialName       = "lm.sentential"
	QuantificationalName = "lm.quantificational"
	ArithmeticName       = "lm.arithmetic"
)

// Sentential is sentence letters, connectives and ⊥
func Sentential() *Language {
	return New(SententialName, "1.0.0")
}

// Quantificational adds predicates, function symbols, quantifiers and equality
func Quantificational() *Language {
	return New(QuantificationalName, "1.0.0", WithQuantifiers(), WithEquality())
}

// Arithmetic is the language of arithmetic with restricted quantifiers
func Arithmetic() *Language {
	return New(ArithmeticName, "1.0.0", WithArithmetic())
}

// Builtins returns every built-in language
func Builtins() []*Language {
	return []*Language{Sentential(), Quantificational(), Arithmetic()}
}
