// Package lexer implements the tokenizer for formula and rule-template text.
package lexer

import (
	"fmt"
	"unicode"

	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/position"
)

// TokenType represents the type of a token
type TokenType int

// String returns a string representation of the token type
func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(tt))
}

// Token types
const (
	TokenEOF TokenType = iota
	TokenError

	// letters
	TokenUpper // sentence letter, predicate letter or S
	TokenLower // variable, constant or function symbol

	// connectives and quantifiers
	TokenNot
	TokenAnd
	TokenOr
	TokenCond
	TokenBicond
	TokenFalsum
	TokenForall
	TokenExists

	// relations
	TokenEq
	TokenNeq
	TokenLt
	TokenLe

	// arithmetic
	TokenZero
	TokenPlus
	TokenTimes

	// punctuation
	TokenOpen
	TokenClose
	TokenComma

	// meta grammar only
	TokenMetaFormula
	TokenMetaTerm
	TokenMetaVariable
	TokenInstanceOpen
	TokenInstanceClose
)

var tokenNames = map[TokenType]string{
	TokenEOF:           "EOF",
	TokenError:         "ERROR",
	TokenUpper:         "UPPER",
	TokenLower:         "LOWER",
	TokenNot:           "NOT",
	TokenAnd:           "AND",
	TokenOr:            "OR",
	TokenCond:          "COND",
	TokenBicond:        "BICOND",
	TokenFalsum:        "FALSUM",
	TokenForall:        "FORALL",
	TokenExists:        "EXISTS",
	TokenEq:            "EQ",
	TokenNeq:           "NEQ",
	TokenLt:            "LT",
	TokenLe:            "LE",
	TokenZero:          "ZERO",
	TokenPlus:          "PLUS",
	TokenTimes:         "TIMES",
	TokenOpen:          "OPEN",
	TokenClose:         "CLOSE",
	TokenComma:         "COMMA",
	TokenMetaFormula:   "META_FORMULA",
	TokenMetaTerm:      "META_TERM",
	TokenMetaVariable:  "META_VARIABLE",
	TokenInstanceOpen:  "INSTANCE_OPEN",
	TokenInstanceClose: "INSTANCE_CLOSE",
}

// Token represents a lexical token with position information
type Token struct {
	Type    TokenType
	Literal string
	Span    position.Span
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("{Type: %s, Literal: %q, Col: %d}", t.Type, t.Literal, t.Span.Start.Column)
}

var symbols = map[rune]TokenType{
	'∼': TokenNot,
	'∧': TokenAnd,
	'∨': TokenOr,
	'→': TokenCond,
	'↔': TokenBicond,
	'⊥': TokenFalsum,
	'∀': TokenForall,
	'∃': TokenExists,
	'=': TokenEq,
	'≠': TokenNeq,
	'<': TokenLt,
	'≤': TokenLe,
	'∅': TokenZero,
	'+': TokenPlus,
	'×': TokenTimes,
}

// Lexer turns normalized text into tokens for one language
type Lexer struct {
	input  []rune
	lang   *language.Language
	pos    int // index into input
	offset int // byte offset of input[pos]
}

// New creates a lexer; aliases are rewritten before scanning
func New(text string, lang *language.Language) *Lexer {
	return &Lexer{input: []rune(lang.Normalize(text)), lang: lang}
}

// Tokenize scans the whole input. The returned slice always ends with EOF;
// the first TokenError, if any, is reported as an error.
func Tokenize(text string, lang *language.Language) ([]Token, error) {
	l := New(text, lang)
	var out []Token
	for {
		tok := l.NextToken()
		out = append(out, tok)
		switch tok.Type {
		case TokenEOF:
			return out, nil
		case TokenError:
			return out, fmt.Errorf("unexpected %q at column %d", tok.Literal, tok.Span.Start.Column)
		}
	}
}

func (l *Lexer) here() position.Position {
	return position.Position{Column: l.pos + 1, Offset: l.offset}
}

func (l *Lexer) advance() rune {
	r := l.input[l.pos]
	l.pos++
	l.offset += len(string(r))
	return r
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

// NextToken returns the next token
func (l *Lexer) NextToken() Token {
	for l.pos < len(l.input) && unicode.IsSpace(l.peek()) {
		l.advance()
	}
	start := l.here()
	if l.pos >= len(l.input) {
		return Token{Type: TokenEOF, Span: position.Span{Start: start, End: start}}
	}

	r := l.advance()
	tok := Token{Literal: string(r)}

	switch {
	case symbols[r] != 0:
		tok.Type = symbols[r]
	case r == '0':
		tok.Type = TokenZero
		tok.Literal = language.Zero
	case r == ',':
		tok.Type = TokenComma
	case l.isOpen(string(r)):
		tok.Type = TokenOpen
	case l.lang.IsClosing(string(r)):
		tok.Type = TokenClose
	case r >= 'A' && r <= 'Z':
		tok.Type = TokenUpper
		if r != 'S' || !l.lang.Arithmetic {
			tok.Literal += l.subscript()
		}
	case r >= 'a' && r <= 'z':
		tok.Type = TokenLower
		tok.Literal += l.subscript()
	case r == '⟨' || r == '⟩' || isScript(r):
		tok = l.metaToken(r)
	default:
		tok.Type = TokenError
	}

	tok.Span = position.Span{Start: start, End: l.here()}
	return tok
}

func (l *Lexer) isOpen(s string) bool {
	_, ok := l.lang.ClosingFor(s)
	return ok
}

// subscript consumes digit, subscript-digit and prime decorations
func (l *Lexer) subscript() string {
	var out []rune
	for l.pos < len(l.input) {
		r := l.peek()
		if (r >= '0' && r <= '9') || (r >= '₀' && r <= '₉') || r == '\'' || r == '′' {
			out = append(out, l.advance())
			continue
		}
		break
	}
	return string(out)
}

func (l *Lexer) metaToken(r rune) Token {
	tok := Token{Literal: string(r)}
	if l.lang.Grammar != language.GrammarMeta {
		tok.Type = TokenError
		return tok
	}
	switch {
	case r == '⟨':
		tok.Type = TokenInstanceOpen
	case r == '⟩':
		tok.Type = TokenInstanceClose
	default:
		letter, upper, _ := scriptLetter(r)
		tok.Literal += l.subscript()
		switch {
		case upper:
			tok.Type = TokenMetaFormula
		case letter >= 'u' && letter <= 'z':
			tok.Type = TokenMetaVariable
		default:
			tok.Type = TokenMetaTerm
		}
	}
	return tok
}
