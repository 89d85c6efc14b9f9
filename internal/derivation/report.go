package derivation

import (
	"github.com/samber/lo"

	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	"github.com/orizon-lang/derivcheck/internal/rules"
)

// LineVerdict is the verdict for one content line
type LineVerdict struct {
	Label   string `json:"label"`
	Formula string `json:"formula,omitempty"`
	rules.Verdict
}

// Report aggregates the verdicts of a whole derivation
type Report struct {
	File         string        `json:"file,omitempty"`
	Language     string        `json:"language"`
	Ruleset      string        `json:"ruleset"`
	Verdicts     []LineVerdict `json:"verdicts"`
	FullyChecked bool          `json:"fully_checked"`
}

// Failed returns the verdicts that did not pass
func (r *Report) Failed() []LineVerdict {
	return lo.Filter(r.Verdicts, func(v LineVerdict, _ int) bool { return !v.OK })
}

// Verdict returns the verdict for label
func (r *Report) Verdict(label string) (LineVerdict, bool) {
	return lo.Find(r.Verdicts, func(v LineVerdict) bool { return v.Label == label })
}

// Diagnostics collects every diagnostic of the report into an engine, in
// line order. Diagnostics without a line are attributed to their verdict's.
func (r *Report) Diagnostics(config diagnostic.DiagnosticConfig) *diagnostic.DiagnosticEngine {
	engine := diagnostic.NewDiagnosticEngine(config)
	for _, v := range r.Verdicts {
		for _, d := range v.Diagnostics {
			if d.Line == "" {
				c := *d
				c.Line = v.Label
				d = &c
			}
			engine.AddDiagnostic(d)
		}
	}
	return engine
}
