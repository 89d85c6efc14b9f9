// Package parser implements the recursive descent parser for formulas and
// rule templates.
//
// The grammar has no precedence between binary connectives: a bracket level
// holds at most one binary connective, so "P ∧ Q → R" is rejected while
// "(P ∧ Q) → R" is accepted. Outermost brackets may be dropped.
package parser

import (
	"fmt"

	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/lexer"
	"github.com/orizon-lang/derivcheck/internal/position"
)

// Parser represents the recursive descent parser
type Parser struct {
	text   string
	lang   *language.Language
	tokens []lexer.Token
	pos    int

	current lexer.Token
	peek    lexer.Token
}

// ParseError is returned for malformed input; it unwraps to the taxonomy
// error so callers can test errors.Is(err, errors.ErrMalformedExpression)
type ParseError struct {
	Span    position.Span
	Message string
	err     *derrors.StandardError
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: %s", e.Span.Start, e.Message)
}

func (e *ParseError) Unwrap() error { return e.err }

// bail aborts the current parse; Parse recovers it into a ParseError
type bail struct{ err *ParseError }

// Parse parses text into one or more comma-separated expressions
func Parse(text string, lang *language.Language) (nodes []expr.Node, err error) {
	toks, lexErr := lexer.Tokenize(text, lang)
	p := &Parser{text: text, lang: lang, tokens: toks}
	if lexErr != nil {
		last := toks[len(toks)-1]
		return nil, p.newError(last.Span, fmt.Sprintf("unknown symbol %q", last.Literal))
	}

	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			nodes, err = nil, b.err
		}
	}()

	p.reset(0)
	if p.currentIs(lexer.TokenEOF) {
		p.fail(p.current.Span, "empty expression")
	}
	for {
		nodes = append(nodes, p.parseFormula())
		if p.currentIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.currentIs(lexer.TokenEOF) {
		p.fail(p.current.Span, fmt.Sprintf("unexpected %q", p.current.Literal))
	}
	return nodes, nil
}

// ParseFormula parses text that must hold exactly one formula
func ParseFormula(text string, lang *language.Language) (expr.Formula, error) {
	nodes, err := Parse(text, lang)
	if err != nil {
		return nil, err
	}
	if len(nodes) != 1 {
		return nil, (&Parser{text: text}).newError(position.Span{}, fmt.Sprintf("expected one formula, found %d", len(nodes)))
	}
	f, ok := nodes[0].(expr.Formula)
	if !ok || !expr.IsFormula(nodes[0]) {
		return nil, (&Parser{text: text}).newError(position.Span{}, "expected a formula, found a term")
	}
	return f, nil
}

// MustParseSchema parses a rule template in the meta companion of lang and
// panics on failure. Templates are compiled-in data, so a failure is a bug.
func MustParseSchema(text string, lang *language.Language) expr.Formula {
	f, err := ParseFormula(text, lang.Meta())
	if err != nil {
		panic(fmt.Sprintf("bad schema %q: %v", text, err))
	}
	return f
}

func (p *Parser) newError(span position.Span, msg string) *ParseError {
	return &ParseError{
		Span:    span,
		Message: msg,
		err:     derrors.MalformedExpression(p.text, span, msg),
	}
}

func (p *Parser) fail(span position.Span, msg string) {
	panic(bail{p.newError(span, msg)})
}

// reset moves the cursor to token index i
func (p *Parser) reset(i int) {
	p.pos = i
	p.current = p.tokens[min(i, len(p.tokens)-1)]
	p.peek = p.tokens[min(i+1, len(p.tokens)-1)]
}

// nextToken advances the parser to the next token
func (p *Parser) nextToken() {
	p.reset(p.pos + 1)
}

// currentIs checks if the current token is of the given type
func (p *Parser) currentIs(tt lexer.TokenType) bool {
	return p.current.Type == tt
}

func (p *Parser) lookahead(n int) lexer.Token {
	return p.tokens[min(p.pos+n, len(p.tokens)-1)]
}

var binaryOps = map[lexer.TokenType]expr.Op{
	lexer.TokenAnd:    expr.OpAnd,
	lexer.TokenOr:     expr.OpOr,
	lexer.TokenCond:   expr.OpCond,
	lexer.TokenBicond: expr.OpBicond,
}

// parseFormula parses a unit optionally joined to a second unit by one
// binary connective
func (p *Parser) parseFormula() expr.Formula {
	left := p.parseUnit()
	op, ok := binaryOps[p.current.Type]
	if !ok {
		return left
	}
	opTok := p.current
	p.nextToken()
	right := p.parseUnit()
	if _, again := binaryOps[p.current.Type]; again {
		p.fail(opTok.Span.Union(p.current.Span),
			fmt.Sprintf("%s and %s need brackets to show which applies first", opTok.Literal, p.current.Literal))
	}
	return expr.Binary(op, left, right)
}

// parseUnit parses a formula with no unbracketed binary connective
func (p *Parser) parseUnit() expr.Formula {
	switch p.current.Type {
	case lexer.TokenNot:
		p.nextToken()
		return expr.Not(p.parseUnit())
	case lexer.TokenFalsum:
		p.nextToken()
		return expr.Bottom()
	case lexer.TokenForall, lexer.TokenExists:
		if !p.lang.Quantifiers && p.lang.Grammar != language.GrammarMeta {
			p.fail(p.current.Span, "quantifiers are not part of "+p.lang.Name)
		}
		op := quantOp(p.current.Type)
		p.nextToken()
		v := p.parseBoundVariable()
		return &expr.Quantifier{Op: op, Var: v, Body: p.parseUnit()}
	case lexer.TokenOpen:
		return p.parseBracketed()
	case lexer.TokenUpper:
		if p.isSuccessor(p.current) {
			return p.parseRelation()
		}
		return p.parseAtomic()
	case lexer.TokenMetaFormula:
		return p.parseMetaFormula()
	case lexer.TokenLower, lexer.TokenZero, lexer.TokenMetaTerm, lexer.TokenMetaVariable:
		return p.parseRelation()
	case lexer.TokenEOF:
		p.fail(p.current.Span, "formula ends too soon")
	default:
		p.fail(p.current.Span, fmt.Sprintf("unexpected %q", p.current.Literal))
	}
	return nil
}

func quantOp(tt lexer.TokenType) expr.QuantOp {
	if tt == lexer.TokenExists {
		return expr.Exists
	}
	return expr.Forall
}

// parseBracketed handles "(∀x)", "(∀x ≤ t)", bracketed formulas and
// relations whose left term starts with a bracket
func (p *Parser) parseBracketed() expr.Formula {
	q := p.lookahead(1)
	if q.Type == lexer.TokenForall || q.Type == lexer.TokenExists {
		after := p.lookahead(3)
		if after.Type == lexer.TokenClose || p.isRelationToken(after.Type) {
			return p.parseQuantifierPrefix()
		}
	}

	start := p.pos
	f, ferr := p.try(func() expr.Formula {
		closer := p.expectOpen()
		f := p.parseFormula()
		p.expectClose(closer)
		return f
	})
	if ferr == nil {
		return f
	}

	p.reset(start)
	r, rerr := p.try(p.parseRelation)
	if rerr == nil {
		return r
	}
	panic(bail{ferr})
}

// try runs fn and converts a bail into a returned error
func (p *Parser) try(fn func() expr.Formula) (f expr.Formula, err *ParseError) {
	defer func() {
		if r := recover(); r != nil {
			b, ok := r.(bail)
			if !ok {
				panic(r)
			}
			f, err = nil, b.err
		}
	}()
	return fn(), nil
}

func (p *Parser) parseQuantifierPrefix() expr.Formula {
	closer := p.expectOpen()
	op := quantOp(p.current.Type)
	p.nextToken()
	v := p.parseBoundVariable()

	q := &expr.Quantifier{Op: op, Var: v}
	if p.isRelationToken(p.current.Type) {
		rel := p.current
		if !p.lang.IsRestrictionRelation(rel.Literal) {
			p.fail(rel.Span, fmt.Sprintf("%q cannot restrict a quantifier in %s", rel.Literal, p.lang.Name))
		}
		p.nextToken()
		q.Restriction = &expr.Restriction{Relation: rel.Literal, Bound: p.parseTerm()}
	}
	p.expectClose(closer)
	q.Body = p.parseUnit()
	return q
}

func (p *Parser) expectOpen() string {
	closer, ok := p.lang.ClosingFor(p.current.Literal)
	if !p.currentIs(lexer.TokenOpen) || !ok {
		p.fail(p.current.Span, fmt.Sprintf("expected an opening bracket, found %q", p.current.Literal))
	}
	p.nextToken()
	return closer
}

func (p *Parser) expectClose(closer string) {
	if !p.currentIs(lexer.TokenClose) {
		p.fail(p.current.Span, fmt.Sprintf("expected %q, found %q", closer, p.current.Literal))
	}
	if p.current.Literal != closer {
		p.fail(p.current.Span, fmt.Sprintf("bracket mismatch: expected %q, found %q", closer, p.current.Literal))
	}
	p.nextToken()
}

func (p *Parser) parseBoundVariable() expr.Term {
	tok := p.current
	switch {
	case tok.Type == lexer.TokenLower && isVariableName(tok.Literal):
		p.nextToken()
		return &expr.Variable{Name: tok.Literal}
	case tok.Type == lexer.TokenMetaVariable:
		p.nextToken()
		return &expr.Meta{Name: tok.Literal, Sort: expr.SortVariable}
	default:
		p.fail(tok.Span, fmt.Sprintf("expected a variable after the quantifier, found %q", tok.Literal))
	}
	return nil
}

func (p *Parser) parseAtomic() expr.Formula {
	tok := p.current
	p.nextToken()
	a := &expr.Atomic{Predicate: tok.Literal}
	for p.startsPrimaryTerm() {
		if !p.lang.Quantifiers && p.lang.Grammar != language.GrammarMeta {
			p.fail(p.current.Span, "sentence letters take no arguments in "+p.lang.Name)
		}
		a.Args = append(a.Args, p.parsePrimaryTerm())
	}
	return a
}

func (p *Parser) parseMetaFormula() expr.Formula {
	tok := p.current
	p.nextToken()
	m := &expr.Meta{Name: tok.Literal, Sort: expr.SortFormula}
	if !p.currentIs(lexer.TokenInstanceOpen) {
		return m
	}
	p.nextToken()
	v := p.parseBoundVariable()
	if !p.currentIs(lexer.TokenComma) {
		p.fail(p.current.Span, fmt.Sprintf("expected %q in instance schema", p.lang.Comma))
	}
	p.nextToken()
	r := p.parseTerm()
	if !p.currentIs(lexer.TokenInstanceClose) {
		p.fail(p.current.Span, "expected ⟩ to close instance schema")
	}
	p.nextToken()
	return &expr.Instance{Base: m, Var: v, Replacement: r}
}

func (p *Parser) isRelationToken(tt lexer.TokenType) bool {
	switch tt {
	case lexer.TokenEq, lexer.TokenNeq, lexer.TokenLt, lexer.TokenLe:
		return true
	}
	return false
}

// parseRelation parses "t = s", "t ≠ s", "t < s" or "t ≤ s"
func (p *Parser) parseRelation() expr.Formula {
	left := p.parseTerm()
	rel := p.current
	if !p.isRelationToken(rel.Type) {
		p.fail(rel.Span, fmt.Sprintf("expected a relation after %s, found %q", left, rel.Literal))
	}
	meta := p.lang.Grammar == language.GrammarMeta
	switch rel.Type {
	case lexer.TokenEq, lexer.TokenNeq:
		if !p.lang.Equality && !meta {
			p.fail(rel.Span, "equality is not part of "+p.lang.Name)
		}
	default:
		if !p.lang.Arithmetic && !meta {
			p.fail(rel.Span, fmt.Sprintf("%q is not part of %s", rel.Literal, p.lang.Name))
		}
	}
	p.nextToken()
	right := p.parseTerm()
	if rel.Type == lexer.TokenEq {
		return &expr.Equality{Left: left, Right: right}
	}
	return &expr.Atomic{Predicate: rel.Literal, Args: []expr.Term{left, right}, Infix: true}
}

var infixTerms = map[lexer.TokenType]string{
	lexer.TokenPlus:  language.Plus,
	lexer.TokenTimes: language.Times,
}

// parseTerm parses a primary term optionally joined to another by + or ×
func (p *Parser) parseTerm() expr.Term {
	left := p.parsePrimaryTerm()
	name, ok := infixTerms[p.current.Type]
	if !ok {
		return left
	}
	opTok := p.current
	p.nextToken()
	right := p.parsePrimaryTerm()
	if _, again := infixTerms[p.current.Type]; again {
		p.fail(opTok.Span.Union(p.current.Span), "arithmetic operators need brackets to show which applies first")
	}
	return &expr.Function{Name: name, Args: []expr.Term{left, right}, Infix: true}
}

func (p *Parser) startsPrimaryTerm() bool {
	switch p.current.Type {
	case lexer.TokenLower, lexer.TokenZero, lexer.TokenMetaTerm, lexer.TokenMetaVariable:
		return true
	case lexer.TokenUpper:
		return p.isSuccessor(p.current)
	}
	return false
}

func (p *Parser) isSuccessor(tok lexer.Token) bool {
	return tok.Type == lexer.TokenUpper && tok.Literal == language.Succ && p.lang.Arithmetic
}

func (p *Parser) parsePrimaryTerm() expr.Term {
	tok := p.current
	switch tok.Type {
	case lexer.TokenLower:
		p.nextToken()
		if p.currentIs(lexer.TokenOpen) {
			return p.parseFunctionArgs(tok.Literal)
		}
		if isVariableName(tok.Literal) {
			return &expr.Variable{Name: tok.Literal}
		}
		return &expr.Constant{Name: tok.Literal}
	case lexer.TokenZero:
		if !p.lang.Arithmetic && p.lang.Grammar != language.GrammarMeta {
			p.fail(tok.Span, "∅ is not part of "+p.lang.Name)
		}
		p.nextToken()
		return &expr.Constant{Name: language.Zero}
	case lexer.TokenUpper:
		if !p.isSuccessor(tok) {
			break
		}
		p.nextToken()
		return &expr.Function{Name: language.Succ, Args: []expr.Term{p.parsePrimaryTerm()}}
	case lexer.TokenMetaTerm:
		p.nextToken()
		return &expr.Meta{Name: tok.Literal, Sort: expr.SortTerm}
	case lexer.TokenMetaVariable:
		p.nextToken()
		return &expr.Meta{Name: tok.Literal, Sort: expr.SortVariable}
	case lexer.TokenOpen:
		closer := p.expectOpen()
		t := p.parseTerm()
		p.expectClose(closer)
		return t
	}
	p.fail(tok.Span, fmt.Sprintf("expected a term, found %q", tok.Literal))
	return nil
}

func (p *Parser) parseFunctionArgs(name string) expr.Term {
	closer := p.expectOpen()
	f := &expr.Function{Name: name}
	for {
		f.Args = append(f.Args, p.parseTerm())
		if p.currentIs(lexer.TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	p.expectClose(closer)
	return f
}

// isVariableName reports whether a lower-case symbol is a variable: i–z
// are variables, a–h are constants
func isVariableName(name string) bool {
	return len(name) > 0 && name[0] >= 'i' && name[0] <= 'z'
}
