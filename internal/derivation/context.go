package derivation

import (
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/expr"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/parser"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

type parsed struct {
	formula expr.Formula
	err     error
	done    bool
}

// snapshot is the read-only view of one derivation the rules consult.
// It caches parsed formulas, so it must not be shared between goroutines.
type snapshot struct {
	lang    *language.Language
	ruleset *rules.Ruleset

	lines   []Line
	kinds   []LineKind
	just    []string
	labels  map[string]int
	formula []parsed

	// current is the line being checked, for citation diagnostics
	current int
}

var _ rules.Context = (*snapshot)(nil)

func newSnapshot(lang *language.Language, rs *rules.Ruleset, lines []Line) *snapshot {
	s := &snapshot{
		lang:    lang,
		ruleset: rs,
		lines:   lines,
		kinds:   make([]LineKind, len(lines)),
		just:    make([]string, len(lines)),
		labels:  make(map[string]int, len(lines)),
		formula: make([]parsed, len(lines)),
	}
	for i, l := range lines {
		s.just[i] = rules.StripSpace(lang.Normalize(l.Justification))
		s.kinds[i] = l.Kind
		if l.Kind == KindUnset {
			s.kinds[i] = s.inferKind(i)
		}
		if _, dup := s.labels[l.Label]; !dup && l.Label != "" {
			s.labels[l.Label] = i
		}
	}
	return s
}

func (s *snapshot) inferKind(i int) LineKind {
	switch {
	case s.ruleset.IsPremise(s.just[i]):
		return KindPremise
	case s.ruleset.IsAssumption(s.just[i]):
		return KindAssumption
	default:
		return KindPlain
	}
}

func (s *snapshot) Language() *language.Language { return s.lang }
func (s *snapshot) Ruleset() *rules.Ruleset      { return s.ruleset }
func (s *snapshot) Label(i int) string           { return s.lines[i].Label }
func (s *snapshot) Depth(i int) int              { return s.lines[i].Depth }
func (s *snapshot) Justification(i int) string   { return s.just[i] }

// content reports whether line i takes part in scoping and checking
func (s *snapshot) content(i int) bool {
	return i >= 0 && i < len(s.lines) && s.lines[i].HasContent()
}

func (s *snapshot) Formula(i int) (expr.Formula, error) {
	if !s.content(i) {
		return nil, derrors.EmptyCitation(s.Label(s.current), s.Label(i))
	}
	p := &s.formula[i]
	if !p.done {
		p.formula, p.err = parser.ParseFormula(s.lines[i].Formula, s.lang)
		p.done = true
	}
	return p.formula, p.err
}

// previousDepth is the depth of the nearest content line above i, or 1
func (s *snapshot) previousDepth(i int) int {
	for m := i - 1; m >= 0; m-- {
		if s.content(m) {
			return s.Depth(m)
		}
	}
	return 1
}

// closes reports whether content line m ends the scope a line at depth d
// lives in: it is shallower, or it is a new assumption at the same depth
func (s *snapshot) closes(m, d int) bool {
	return s.Depth(m) < d || (s.Depth(m) == d && s.kinds[m] == KindAssumption)
}

// visible reports whether a line at depth d sitting at position from is
// still in scope at target
func (s *snapshot) visible(from, d, target int) bool {
	for m := from + 1; m <= target; m++ {
		if s.content(m) && s.closes(m, d) {
			return false
		}
	}
	return true
}

func (s *snapshot) Accessible(cited, target int) error {
	if cited >= target || !s.content(target) {
		return derrors.InaccessibleCitation(s.Label(target), s.Label(cited))
	}
	if !s.content(cited) {
		return derrors.EmptyCitation(s.Label(target), s.Label(cited))
	}
	if !s.visible(cited, s.Depth(cited), target) {
		return derrors.InaccessibleCitation(s.Label(target), s.Label(cited))
	}
	return nil
}

func (s *snapshot) OpensScope(i int) bool {
	d := s.Depth(i)
	return s.content(i) && d >= 2 && d <= s.previousDepth(i)+1
}

func (s *snapshot) Subderivation(from, to, target int) error {
	bad := func(details string) error {
		return derrors.MalformedSubderivation(s.Label(target), s.Label(from), s.Label(to), details)
	}
	switch {
	case from > to:
		return bad("the range runs backwards")
	case to >= target:
		return bad("the range does not end above the citing line")
	case !s.content(from) || !s.content(to):
		return derrors.EmptyCitation(s.Label(target), s.Label(from)+"-"+s.Label(to))
	case s.kinds[from] != KindAssumption || !s.OpensScope(from):
		return bad("line " + s.Label(from) + " does not open a subderivation")
	}

	d := s.Depth(from)
	for m := from + 1; m <= to; m++ {
		if s.content(m) && s.closes(m, d) {
			return bad("the subderivation ends before line " + s.Label(to))
		}
	}
	if s.Depth(to) != d {
		return bad("line " + s.Label(to) + " is not the last line of the subderivation")
	}
	for m := to + 1; m <= target; m++ {
		if !s.content(m) {
			continue
		}
		if !s.closes(m, d) {
			return bad("line " + s.Label(to) + " is not the last line of the subderivation")
		}
		break
	}
	// the discharged subderivation counts as a line of its parent scope
	if !s.visible(to, d-1, target) {
		return derrors.InaccessibleCitation(s.Label(target), s.Label(from)+"-"+s.Label(to))
	}
	return nil
}

func (s *snapshot) OpenAssumptions(target int) []int {
	var open []int
	for i := 0; i < target; i++ {
		if !s.content(i) {
			continue
		}
		if k := s.kinds[i]; k != KindPremise && k != KindAssumption {
			continue
		}
		if s.visible(i, s.Depth(i), target) {
			open = append(open, i)
		}
	}
	return open
}

func (s *snapshot) ContentBefore(i int) []int {
	var out []int
	for m := 0; m < i; m++ {
		if s.content(m) {
			out = append(out, m)
		}
	}
	return out
}
