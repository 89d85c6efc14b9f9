package derivation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
)

func TestParseText(t *testing.T) {
	doc, err := ParseText(strings.NewReader(`
% language: lm.quantificational
% ruleset: lm.nd@^1
% a comment
1. ∀xFx :: P
2a. | Fa :: A(g,→I)
   | | ∃xFx :: 2a ∃I
...
`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, doc.Language, "lm.quantificational")
	assert.Equal(t, doc.Ruleset, "lm.nd@^1")
	if !assert.Len(t, doc.Lines, 4) {
		return
	}

	tests := []struct {
		label, formula, justification string
		depth                         int
		kind                          LineKind
	}{
		{"1", "∀xFx", "P", 1, KindUnset},
		{"2a", "Fa", "A(g,→I)", 2, KindUnset},
		{"3", "∃xFx", "2a ∃I", 3, KindUnset},
		{"4", "", "", 1, KindGapMarker},
	}
	for i, tt := range tests {
		l := doc.Lines[i]
		assert.Equal(t, l.Label, tt.label)
		assert.Equal(t, l.Formula, tt.formula)
		assert.Equal(t, l.Justification, tt.justification)
		assert.Equal(t, l.Depth, tt.depth)
		assert.Equal(t, l.Kind, tt.kind)
	}
}

func TestTextRoundTrip(t *testing.T) {
	src := `% language: lm.sentential
1. P :: P
2. | Q :: A(g,→I)
3. | P :: 1 R
4. ---
5. Q → P :: 2-3 →I
`
	doc, err := ParseText(strings.NewReader(src))
	assert.NoError(t, err)
	assert.Equal(t, doc.Text(), src)
}

func TestDecodeYAML(t *testing.T) {
	doc, err := DecodeYAML([]byte(`
language: lm.sentential
ruleset: lm.nd
lines:
  - {label: "1", formula: "P → Q", justification: P}
  - {formula: P, justification: P, kind: premise}
  - {label: "3", depth: 1, formula: Q, justification: "1,2 →E"}
  - {kind: shelf}
`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, doc.Ruleset, "lm.nd")
	assert.Len(t, doc.Lines, 4)
	assert.Equal(t, doc.Lines[1].Label, "2")
	assert.Equal(t, doc.Lines[1].Depth, 1)
	assert.Equal(t, doc.Lines[1].Kind, KindPremise)
	assert.Equal(t, doc.Lines[3].Kind, KindShelfMarker)
	assert.False(t, doc.Lines[3].HasContent())

	report := sentential().Check(doc.Lines)
	assert.True(t, report.FullyChecked, report.Failed())

	_, err = DecodeYAML([]byte("lines:\n  - {kind: sideways}\n"))
	assert.Error(t, err)
}

func TestDecodeJSON(t *testing.T) {
	doc, err := DecodeJSON([]byte(`{"lines":[{"formula":"P","justification":"P","kind":"assumption"}]}`))
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, doc.Lines[0].Label, "1")
	assert.Equal(t, doc.Lines[0].Kind, KindAssumption)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "mp.proof")
	yml := filepath.Join(dir, "mp.yaml")
	assert.NoError(t, os.WriteFile(text, []byte("1. P :: P\n"), 0o644))
	assert.NoError(t, os.WriteFile(yml, []byte("lines:\n  - {formula: P, justification: P}\n"), 0o644))

	for _, path := range []string{text, yml} {
		doc, err := LoadFile(path)
		if assert.NoError(t, err, path) {
			assert.Len(t, doc.Lines, 1, path)
		}
	}

	_, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read derivation file")
}
