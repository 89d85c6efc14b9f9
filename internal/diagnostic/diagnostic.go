// Diagnostics attached to derivation line verdicts.
// A diagnostic names the line it is about, the taxonomy code and the
// user-facing text; related entries point at the cited lines.

package diagnostic

import (
	"errors"
	"fmt"

	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/position"
)

// DiagnosticLevel represents the severity level of a diagnostic message.
type DiagnosticLevel int

const (
	DiagnosticError DiagnosticLevel = iota
	DiagnosticWarning
	DiagnosticInfo
	DiagnosticHint
)

func (dl DiagnosticLevel) String() string {
	switch dl {
	case DiagnosticError:
		return "error"
	case DiagnosticWarning:
		return "warning"
	case DiagnosticInfo:
		return "info"
	case DiagnosticHint:
		return "hint"
	default:
		return "unknown"
	}
}

// MarshalText renders the level by name in JSON and YAML output
func (dl DiagnosticLevel) MarshalText() ([]byte, error) {
	return []byte(dl.String()), nil
}

// Diagnostic represents a single diagnostic message.
type Diagnostic struct {
	Code     derrors.Code          `json:"code"`
	Category derrors.ErrorCategory `json:"category"`
	Level    DiagnosticLevel       `json:"level"`
	Line     string                `json:"line,omitempty"`
	Message  string                `json:"message"`
	Related  []RelatedInformation  `json:"related,omitempty"`
	Span     position.Span         `json:"-"`
}

// RelatedInformation points at a line or sub-expression that bears on a
// diagnostic.
type RelatedInformation struct {
	Line    string `json:"line"`
	Formula string `json:"formula,omitempty"`
	Message string `json:"message,omitempty"`
}

func (d *Diagnostic) String() string {
	if d.Line == "" {
		return fmt.Sprintf("%s[%s]: %s", d.Level, d.Code, d.Message)
	}
	return fmt.Sprintf("line %s: %s[%s]: %s", d.Line, d.Level, d.Code, d.Message)
}

// DiagnosticBuilder helps construct diagnostic messages with fluent API.
type DiagnosticBuilder struct {
	diagnostic *Diagnostic
}

// NewDiagnostic creates a new diagnostic builder.
func NewDiagnostic() *DiagnosticBuilder {
	return &DiagnosticBuilder{diagnostic: &Diagnostic{}}
}

func (db *DiagnosticBuilder) Error() *DiagnosticBuilder {
	db.diagnostic.Level = DiagnosticError

	return db
}

// Code sets the taxonomy code and the category that goes with it
func (db *DiagnosticBuilder) Code(code derrors.Code) *DiagnosticBuilder {
	db.diagnostic.Code = code
	db.diagnostic.Category = code.Category()

	return db
}

func (db *DiagnosticBuilder) Line(label string) *DiagnosticBuilder {
	db.diagnostic.Line = label

	return db
}

func (db *DiagnosticBuilder) Message(message string) *DiagnosticBuilder {
	db.diagnostic.Message = message

	return db
}

func (db *DiagnosticBuilder) Messagef(format string, args ...any) *DiagnosticBuilder {
	db.diagnostic.Message = fmt.Sprintf(format, args...)

	return db
}

func (db *DiagnosticBuilder) Span(span position.Span) *DiagnosticBuilder {
	db.diagnostic.Span = span

	return db
}

func (db *DiagnosticBuilder) Related(line, formula, message string) *DiagnosticBuilder {
	db.diagnostic.Related = append(db.diagnostic.Related, RelatedInformation{
		Line:    line,
		Formula: formula,
		Message: message,
	})

	return db
}

func (db *DiagnosticBuilder) Build() *Diagnostic {
	return db.diagnostic
}

// FromError converts a taxonomy error into an error-level diagnostic for
// line. Errors from outside the taxonomy keep their text and get no code.
func FromError(line string, err error) *Diagnostic {
	b := NewDiagnostic().Error().Line(line).Message(err.Error())
	var se *derrors.StandardError
	if errors.As(err, &se) {
		b.Code(se.Code).Message(se.Message).Span(se.Span)
	}
	return b.Build()
}

// DiagnosticEngine collects the diagnostics of one report, dropping
// ignored codes and anything past the error limit.
type DiagnosticEngine struct {
	diagnostics []Diagnostic
	config      DiagnosticConfig
	omitted     int
}

// DiagnosticConfig controls diagnostic behavior.
type DiagnosticConfig struct {
	IgnoreCodes     []derrors.Code
	MaxErrors       int // 0 means no limit
	ShowRelatedInfo bool
}

// NewDiagnosticEngine creates a new diagnostic engine.
func NewDiagnosticEngine(config DiagnosticConfig) *DiagnosticEngine {
	return &DiagnosticEngine{
		diagnostics: make([]Diagnostic, 0),
		config:      config,
	}
}

// AddDiagnostic adds a diagnostic to the engine. Ignored codes vanish;
// diagnostics past MaxErrors are counted by Omitted.
func (de *DiagnosticEngine) AddDiagnostic(diagnostic *Diagnostic) {
	if de.shouldIgnore(diagnostic) {
		return
	}
	if de.config.MaxErrors > 0 && len(de.diagnostics) >= de.config.MaxErrors {
		de.omitted++
		return
	}

	d := *diagnostic
	if !de.config.ShowRelatedInfo {
		d.Related = nil
	}

	de.diagnostics = append(de.diagnostics, d)
}

func (de *DiagnosticEngine) shouldIgnore(diagnostic *Diagnostic) bool {
	for _, code := range de.config.IgnoreCodes {
		if diagnostic.Code == code {
			return true
		}
	}

	return false
}

// GetDiagnostics returns the kept diagnostics in the order they were added.
func (de *DiagnosticEngine) GetDiagnostics() []Diagnostic {
	return de.diagnostics
}

// ForLine returns the kept diagnostics about one line.
func (de *DiagnosticEngine) ForLine(label string) []Diagnostic {
	var out []Diagnostic
	for _, diag := range de.diagnostics {
		if diag.Line == label {
			out = append(out, diag)
		}
	}

	return out
}

// Omitted is the number of diagnostics dropped by MaxErrors.
func (de *DiagnosticEngine) Omitted() int {
	return de.omitted
}
