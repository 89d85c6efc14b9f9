package diagnostic

import (
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
)

func TestBuilder(t *testing.T) {
	d := NewDiagnostic().
		Error().
		Code(derrors.CodeNoApplicableForm).
		Line("3").
		Message("Line 3 does not result from (1) and (2) by →E.").
		Related("1", "P → Q", "").
		Build()

	assert.Equal(t, d.Category, derrors.CategoryMatch)
	assert.Equal(t, d.String(), "line 3: error[NO_APPLICABLE_FORM]: Line 3 does not result from (1) and (2) by →E.")
	assert.Len(t, d.Related, 1)
}

func TestFromError(t *testing.T) {
	d := FromError("4", derrors.EmptyCitation("4", "2"))
	assert.Equal(t, d.Code, derrors.CodeEmptyCitation)
	assert.Equal(t, d.Level, DiagnosticError)
	assert.Contains(t, d.Message, "cites an empty line")
}

func TestEngine(t *testing.T) {
	engine := NewDiagnosticEngine(DiagnosticConfig{
		IgnoreCodes: []derrors.Code{derrors.CodePremiseOrder},
	})

	engine.AddDiagnostic(NewDiagnostic().Error().Code(derrors.CodeNoSuchLine).Line("10").Message("b").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(derrors.CodeSchemaMismatch).Line("2").Message("a").
		Related("1", "P", "").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(derrors.CodePremiseOrder).Line("1").Message("ignored").Build())

	assert.Len(t, engine.GetDiagnostics(), 2)
	assert.Equal(t, engine.GetDiagnostics()[0].Line, "10")
	assert.Len(t, engine.ForLine("1"), 0)
	if assert.Len(t, engine.ForLine("2"), 1) {
		assert.Len(t, engine.ForLine("2")[0].Related, 0)
	}
	assert.Equal(t, engine.Omitted(), 0)
}

func TestEngineMaxErrors(t *testing.T) {
	engine := NewDiagnosticEngine(DiagnosticConfig{MaxErrors: 1, ShowRelatedInfo: true})
	first := NewDiagnostic().Error().Code(derrors.CodeNoSuchLine).Line("3").Message("e").Related("1", "P", "").Build()
	engine.AddDiagnostic(first)
	engine.AddDiagnostic(NewDiagnostic().Error().Code(derrors.CodeNoSuchLine).Line("4").Message("f").Build())
	engine.AddDiagnostic(NewDiagnostic().Error().Code(derrors.CodeNoSuchLine).Line("5").Message("g").Build())

	assert.Len(t, engine.GetDiagnostics(), 1)
	assert.Len(t, engine.GetDiagnostics()[0].Related, 1)
	assert.Equal(t, engine.Omitted(), 2)

	engine.GetDiagnostics()[0].Message = "changed"
	assert.Equal(t, first.Message, "e")
}
