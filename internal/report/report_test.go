package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/orizon-lang/derivcheck/internal/assert"
	"github.com/orizon-lang/derivcheck/internal/derivation"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/language"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

func check(t *testing.T, file, text string) *derivation.Report {
	t.Helper()
	doc, err := derivation.ParseText(strings.NewReader(text))
	if err != nil {
		t.Fatalf("ParseText: %v", err)
	}
	r := derivation.NewChecker(language.Sentential(), rules.NaturalDeduction()).Check(doc.Lines)
	r.File = file
	return r
}

const good = `
1. P → Q :: P
2. P :: P
3. Q :: 1,2 →E
`

const bad = `
1. P → Q :: P
2. P :: P
3. P :: 1,2 →E
`

func TestTextFailuresOnly(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Text(&buf, Options{Related: true}, check(t, "bad.proof", bad)))
	out := buf.String()

	assert.Contains(t, out, "bad.proof (lm.nd@1.0.0, lm.sentential@1.0.0)")
	assert.Contains(t, out, "fail\t3\t[NO_APPLICABLE_FORM] Line 3 does not result from (1) and (2) by →E.")
	assert.Contains(t, out, "line 1: P → Q")
	assert.Contains(t, out, "1 of 3 lines failed")
	assert.NotContains(t, out, "ok\t1")
	assert.NotContains(t, out, "\x1b[")
	assert.NotContains(t, out, "SUMMARY")
}

func TestTextAllWithColor(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Text(&buf, Options{Color: true, All: true},
		check(t, "good.proof", good), check(t, "bad.proof", bad)))
	out := buf.String()

	assert.Contains(t, out, "\x1b[32mok\x1b[0m\t1")
	assert.Contains(t, out, "\x1b[32mfully checked\x1b[0m")
	assert.Contains(t, out, "2 files, 6 lines")
}

func TestTextMalformedFormula(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, Text(&buf, Options{}, check(t, "typo.proof", `
1. P → → Q :: P
2. P :: P
`)))
	out := buf.String()

	assert.Contains(t, out, "fail\t1\t[MALFORMED_EXPRESSION]")
	assert.Contains(t, out, "  \t\tP → → Q\n  \t\t    ^\n")
}

func TestTextIgnoreCodesAndMaxErrors(t *testing.T) {
	const messy = `
1. P → Q :: P
2. P :: P
3. P :: 1,2 →E
4. Q :: nonsense
5. R :: 9 R
`
	var buf bytes.Buffer
	assert.NoError(t, Text(&buf, Options{
		IgnoreCodes: []derrors.Code{derrors.CodeUnrecognizedJustification},
	}, check(t, "messy.proof", messy)))
	out := buf.String()
	assert.Contains(t, out, "[NO_APPLICABLE_FORM]")
	assert.NotContains(t, out, "[UNRECOGNIZED_JUSTIFICATION]")
	assert.Contains(t, out, "3 of 5 lines failed")

	buf.Reset()
	assert.NoError(t, Text(&buf, Options{MaxErrors: 1}, check(t, "messy.proof", messy)))
	out = buf.String()
	assert.Contains(t, out, "fail\t3\t")
	assert.NotContains(t, out, "fail\t4\t")
	assert.Contains(t, out, "2 more diagnostics not shown")
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, JSON(&buf, check(t, "good.proof", good), check(t, "bad.proof", bad)))

	var got struct {
		Reports []struct {
			File         string `json:"file"`
			FullyChecked bool   `json:"fully_checked"`
			Verdicts     []struct {
				Label       string `json:"label"`
				OK          bool   `json:"ok"`
				Diagnostics []struct {
					Code    string `json:"code"`
					Level   string `json:"level"`
					Message string `json:"message"`
				} `json:"diagnostics"`
			} `json:"verdicts"`
		} `json:"reports"`
		Summary Summary `json:"summary"`
	}
	if !assert.NoError(t, json.Unmarshal(buf.Bytes(), &got)) {
		return
	}
	assert.Equal(t, got.Summary, Summary{Files: 2, Lines: 6, Passed: 5, Failed: 1})
	assert.True(t, got.Reports[0].FullyChecked)
	failed := got.Reports[1].Verdicts[2]
	assert.Equal(t, failed.Label, "3")
	assert.False(t, failed.OK)
	assert.Equal(t, failed.Diagnostics[0].Code, "NO_APPLICABLE_FORM")
	assert.Equal(t, failed.Diagnostics[0].Level, "error")
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.NoError(t, JSON(&buf))
	assert.Contains(t, buf.String(), `"reports": []`)
}
