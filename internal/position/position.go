// Package position tracks locations inside formula and justification text.
// Proof lines are short, so a position is a rune column plus byte offset
// within a single line of text; the proof-line label supplies the rest.
package position

import "fmt"

// Position represents a single point in a line of text
type Position struct {
	Label  string // Proof-line label, empty when unknown
	Column int    // 1-based rune column
	Offset int    // 0-based byte offset
}

// IsValid returns true if the position is valid
func (p Position) IsValid() bool {
	return p.Column > 0 && p.Offset >= 0
}

// String returns a string representation of the position
func (p Position) String() string {
	if p.Label != "" {
		return fmt.Sprintf("line %s:%d", p.Label, p.Column)
	}
	return fmt.Sprintf("col %d", p.Column)
}

// Before returns true if this position comes before other
func (p Position) Before(other Position) bool {
	return p.Offset < other.Offset
}

// Span represents a range of text between two positions
type Span struct {
	Start Position // Starting position (inclusive)
	End   Position // Ending position (exclusive)
}

// IsValid returns true if the span is valid
func (s Span) IsValid() bool {
	return s.Start.IsValid() && s.End.IsValid() && s.Start.Offset <= s.End.Offset
}

// String returns a string representation of the span
func (s Span) String() string {
	if s.Start.Label != "" {
		return fmt.Sprintf("line %s:%d-%d", s.Start.Label, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("col %d-%d", s.Start.Column, s.End.Column)
}

// Contains returns true if the span contains the given offset
func (s Span) Contains(offset int) bool {
	return s.Start.Offset <= offset && offset < s.End.Offset
}

// Union returns the smallest span covering both spans
func (s Span) Union(other Span) Span {
	out := s
	if other.Start.Offset < out.Start.Offset {
		out.Start = other.Start
	}
	if other.End.Offset > out.End.Offset {
		out.End = other.End
	}
	return out
}

// WithLabel returns a copy of the span attributed to a proof line
func (s Span) WithLabel(label string) Span {
	s.Start.Label = label
	s.End.Label = label
	return s
}
