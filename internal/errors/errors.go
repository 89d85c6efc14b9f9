// Package errors provides standardized error values for the derivation checker.
//
// Every failure the engine can report has a Code. Matcher and replacement
// mismatches are ordinary outcomes and are never turned into errors; the codes
// SCHEMA_MISMATCH and NO_APPLICABLE_FORM exist so that rules can label the
// diagnostics they build from those outcomes.
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"

	"github.com/orizon-lang/derivcheck/internal/position"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategorySyntax    ErrorCategory = "SYNTAX"
	CategoryMatch     ErrorCategory = "MATCH"
	CategoryCitation  ErrorCategory = "CITATION"
	CategoryScope     ErrorCategory = "SCOPE"
	CategoryDispatch  ErrorCategory = "DISPATCH"
	CategoryStructure ErrorCategory = "STRUCTURE"
)

// Code identifies one entry of the error taxonomy
type Code string

const (
	CodeMalformedExpression       Code = "MALFORMED_EXPRESSION"
	CodeSchemaMismatch            Code = "SCHEMA_MISMATCH"
	CodeNoApplicableForm          Code = "NO_APPLICABLE_FORM"
	CodeEmptyCitation             Code = "EMPTY_CITATION"
	CodeNoSuchLine                Code = "NO_SUCH_LINE"
	CodeInaccessibleCitation      Code = "INACCESSIBLE_CITATION"
	CodeMalformedSubderivation    Code = "MALFORMED_SUBDERIVATION"
	CodeCaptureViolation          Code = "CAPTURE_VIOLATION"
	CodeUnrecognizedJustification Code = "UNRECOGNIZED_JUSTIFICATION"
	CodePremiseOrder              Code = "PREMISE_ORDER"
)

var categories = map[Code]ErrorCategory{
	CodeMalformedExpression:       CategorySyntax,
	CodeSchemaMismatch:            CategoryMatch,
	CodeNoApplicableForm:          CategoryMatch,
	CodeEmptyCitation:             CategoryCitation,
	CodeNoSuchLine:                CategoryCitation,
	CodeInaccessibleCitation:      CategoryScope,
	CodeMalformedSubderivation:    CategoryScope,
	CodeCaptureViolation:          CategoryScope,
	CodeUnrecognizedJustification: CategoryDispatch,
	CodePremiseOrder:              CategoryStructure,
}

// Known reports whether c is part of the taxonomy
func (c Code) Known() bool {
	_, ok := categories[c]
	return ok
}

// Category returns the category a code belongs to
func (c Code) Category() ErrorCategory {
	if cat, ok := categories[c]; ok {
		return cat
	}
	return CategoryStructure
}

// StandardError provides a consistent error format
type StandardError struct {
	Category ErrorCategory
	Code     Code
	Message  string
	Span     position.Span
	Context  map[string]interface{}
	Caller   string
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Is reports whether target carries the same code, so that
// errors.Is(err, errors.ErrMalformedExpression) works for any instance.
func (e *StandardError) Is(target error) bool {
	var other *StandardError
	if !stderrors.As(target, &other) {
		return false
	}
	return other.Code == e.Code
}

// NewStandardError creates a new standardized error
func NewStandardError(code Code, message string, context map[string]interface{}) *StandardError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}

	return &StandardError{
		Category: code.Category(),
		Code:     code,
		Message:  message,
		Context:  context,
		Caller:   caller,
	}
}

// Sentinels for errors.Is comparisons
var (
	ErrMalformedExpression       = &StandardError{Code: CodeMalformedExpression}
	ErrEmptyCitation             = &StandardError{Code: CodeEmptyCitation}
	ErrNoSuchLine                = &StandardError{Code: CodeNoSuchLine}
	ErrInaccessibleCitation      = &StandardError{Code: CodeInaccessibleCitation}
	ErrMalformedSubderivation    = &StandardError{Code: CodeMalformedSubderivation}
	ErrCaptureViolation          = &StandardError{Code: CodeCaptureViolation}
	ErrUnrecognizedJustification = &StandardError{Code: CodeUnrecognizedJustification}
)

// CodeOf extracts the taxonomy code from err, or "" when err is not a StandardError
func CodeOf(err error) Code {
	var se *StandardError
	if stderrors.As(err, &se) {
		return se.Code
	}
	return ""
}

// Common error constructors
func MalformedExpression(text string, span position.Span, details string) *StandardError {
	e := NewStandardError(CodeMalformedExpression,
		fmt.Sprintf("%q is not well formed: %s", text, details),
		map[string]interface{}{"text": text, "details": details})
	e.Span = span
	return e
}

func EmptyCitation(target, cited string) *StandardError {
	return NewStandardError(CodeEmptyCitation,
		fmt.Sprintf("Line %s cites an empty line (%s).", target, cited),
		map[string]interface{}{"target": target, "cited": cited})
}

func NoSuchLine(target, cited string) *StandardError {
	return NewStandardError(CodeNoSuchLine,
		fmt.Sprintf("Line %s cites line %s, but there is no such line.", target, cited),
		map[string]interface{}{"target": target, "cited": cited})
}

func InaccessibleCitation(target, cited string) *StandardError {
	return NewStandardError(CodeInaccessibleCitation,
		fmt.Sprintf("Line %s cites line %s, which is not accessible from line %s.", target, cited, target),
		map[string]interface{}{"target": target, "cited": cited})
}

func MalformedSubderivation(target, from, to, details string) *StandardError {
	return NewStandardError(CodeMalformedSubderivation,
		fmt.Sprintf("Lines %s-%s cited by line %s are not an accessible subderivation: %s.", from, to, target, details),
		map[string]interface{}{"target": target, "from": from, "to": to})
}

func CaptureViolation(variable, formula, rule string) *StandardError {
	return NewStandardError(CodeCaptureViolation,
		fmt.Sprintf("Variable %s is free in %s, so %s cannot apply.", variable, formula, rule),
		map[string]interface{}{"variable": variable, "formula": formula, "rule": rule})
}

func UnrecognizedJustification(target, justification string) *StandardError {
	return NewStandardError(CodeUnrecognizedJustification,
		fmt.Sprintf("Line %s: justification %q is not recognized.", target, justification),
		map[string]interface{}{"target": target, "justification": justification})
}
