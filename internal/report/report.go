// Package report renders derivation reports for people and for programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/orizon-lang/derivcheck/internal/derivation"
	"github.com/orizon-lang/derivcheck/internal/diagnostic"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/position"
)

// Options controls text rendering
type Options struct {
	// Color wraps statuses in ANSI colour codes
	Color bool
	// All lists passing lines too, not just failures
	All bool
	// Related prints the cited lines under each diagnostic
	Related bool
	// IgnoreCodes hides diagnostics with these codes
	IgnoreCodes []derrors.Code
	// MaxErrors caps the diagnostics printed per report; 0 prints all
	MaxErrors int
}

// Summary counts lines across one or more reports
type Summary struct {
	Files  int `json:"files"`
	Lines  int `json:"lines"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// Summarize counts the verdicts of reports
func Summarize(reports ...*derivation.Report) Summary {
	s := Summary{Files: len(reports)}
	for _, r := range reports {
		engine := r.Diagnostics(diagnostic.DiagnosticConfig{
			IgnoreCodes:     opts.IgnoreCodes,
			MaxErrors:       opts.MaxErrors,
			ShowRelatedInfo: opts.Related,
		})
		for _, v := range r.Verdicts {
			if v.OK {
				if opts.All {
					fmt.Fprintf(&b, "  %s\t%s\n", p.green("ok"), v.Label)
				}
				continue
			}
			for i, d := range engine.ForLine(v.Label) {
				mark := "  \t"
				if i == 0 {
					mark = "  " + p.red("fail") + "\t" + v.Label
				}
				fmt.Fprintf(&b, "%s\t%s %s\n", mark, p.yellow("["+string(d.Code)+"]"), d.Message)
				if d.Code == derrors.CodeMalformedExpression && d.Span.IsValid() && v.Formula != "" {
					for _, line := range strings.Split(position.Highlight(v.Formula, d.Span), "\n") {
						b.WriteString("  \t\t" + line + "\n")
					}
				}
				for _, rel := range d.Related {
					line := fmt.Sprintf("  \t\tline %s: %s", rel.Line, rel.Formula)
					if rel.Message != "" {
						line += " (" + rel.Message + ")"
					}
					b.WriteString(p.dim(line) + "\n")
				}
			}
		}
		if n := engine.Omitted(); n > 0 {
			fmt.Fprintf(&b, "  \t%s\n", p.dim(fmt.Sprintf("%d more diagnostics not shown", n)))
		}
		fmt.Fprintf(&b, "  %s\n", status)
	}

	if len(reports) > 1 {
		s := Summarize(reports...)
		fmt.Fprintf(&b, "\n%s %d files, %d lines, %s %d, %s %d\n",
			p.bold("SUMMARY:"), s.Files, s.Lines,
			p.green("passed:"), s.Passed,
			p.red("failed:"), s.Failed)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// document is the JSON shape written by JSON
type document struct {
	Reports []*derivation.Report `json:"reports"`
	Summary Summary              `json:"summary"`
}

// JSON writes the reports and their summary as one indented JSON document
func JSON(w io.Writer, reports ...*derivation.Report) error {
	if reports == nil {
		reports = []*derivation.Report{}
	}
	data, err := json.MarshalIndent(document{Reports: reports, Summary: Summarize(reports...)}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
