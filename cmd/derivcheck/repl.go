package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/derivation"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/position"
	"github.com/orizon-lang/derivcheck/internal/report"
)

const (
	historyFile = ".derivcheck_history"
	prompt      = "derivcheck> "
)

var replInfo = cli.CommandInfo{
	Name:        "repl",
	Usage:       "derivcheck repl [OPTIONS]",
	Description: "Build a derivation line by line, checking each line as it is entered",
	Flags: []cli.FlagInfo{
		{Name: "language", Usage: "language reference"},
		{Name: "ruleset", Usage: "ruleset reference"},
		{Name: "load", Usage: "derivation file to start from"},
	},
}

const replHelp = `Enter rows as in a derivation file, for example
    1. P → Q :: P
    2. | P :: A(g,→I)
Each row is checked against the rows before it.

Commands:
    :check            check every row and print the report
    :list             print the derivation
    :undo             remove the last row
    :clear            remove every row
    :language <ref>   switch language
    :ruleset <ref>    switch ruleset
    :rules            list the rules of the current ruleset
    :load <file>      replace the rows with a file's
    :save <file>      write the rows to a file
    :help             show this text
    :quit             exit
`

// session holds the rows entered so far
type session struct {
	env      *env
	language string
	ruleset  string
	rows     []string
}

func newSession(e *env, language, ruleset string) *session {
	return &session{
		env:      e,
		language: firstNonEmpty(language, e.cfg.Language),
		ruleset:  firstNonEmpty(ruleset, e.cfg.Ruleset),
	}
}

// document parses the rows entered so far
func (s *session) document() (*derivation.Document, error) {
	return derivation.ParseText(strings.NewReader(strings.Join(s.rows, "\n")))
}

// checker resolves the session's language and ruleset, letting directives
// in the rows take precedence
func (s *session) checker(doc *derivation.Document) (*derivation.Checker, error) {
	lang, rs, err := s.env.reg.Resolve(firstNonEmpty(doc.Language, s.language), firstNonEmpty(doc.Ruleset, s.ruleset))
	if err != nil {
		return nil, err
	}
	return derivation.NewChecker(lang, rs, derivation.WithLogger(s.env.logger)), nil
}

// exec runs one line of input and reports whether the session should end
func (s *session) exec(input string, w io.Writer) bool {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if strings.HasPrefix(input, ":") {
		cmd, arg, _ := strings.Cut(input[1:], " ")
		return s.command(cmd, strings.TrimSpace(arg), w)
	}

	s.rows = append(s.rows, input)
	doc, err := s.document()
	if err != nil {
		s.rows = s.rows[:len(s.rows)-1]
		fmt.Fprintf(w, "error: %v\n", err)
		return false
	}
	if strings.HasPrefix(input, "%") || len(doc.Lines) == 0 {
		return false
	}
	c, err := s.checker(doc)
	if err != nil {
		fmt.Fprintf(w, "error: %v\n", err)
		return false
	}
	last := len(doc.Lines) - 1
	if !doc.Lines[last].HasContent() {
		return false
	}
	v := c.CheckLine(doc.Lines, last)
	if v.OK {
		fmt.Fprintf(w, "ok %s\n", doc.Lines[last].Label)
		return false
	}
	for _, d := range v.Diagnostics {
		fmt.Fprintf(w, "fail %s [%s] %s\n", doc.Lines[last].Label, d.Code, d.Message)
		if d.Code == derrors.CodeMalformedExpression && d.Span.IsValid() {
			for _, line := range strings.Split(position.Highlight(doc.Lines[last].Formula, d.Span), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
	return false
}

func (s *session) command(cmd, arg string, w io.Writer) bool {
	switch cmd {
	case "q", "quit", "exit":
		return true
	case "h", "help":
		fmt.Fprint(w, replHelp)
	case "check":
		doc, err := s.document()
		if err == nil {
			var c *derivation.Checker
			if c, err = s.checker(doc); err == nil {
				err = report.Text(w, report.Options{All: true, Related: true}, c.Check(doc.Lines))
			}
		}
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	case "list":
		for _, row := range s.rows {
			fmt.Fprintln(w, row)
		}
	case "undo":
		if len(s.rows) > 0 {
			s.rows = s.rows[:len(s.rows)-1]
		}
	case "clear":
		s.rows = nil
	case "language":
		if _, err := s.env.reg.Language(arg); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		s.language = arg
	case "ruleset":
		if _, err := s.env.reg.Ruleset(arg); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		s.ruleset = arg
	case "rules":
		rs, err := s.env.reg.Ruleset(s.ruleset)
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
			return false
		}
		fmt.Fprintf(w, "%s: %s\n", rs, strings.Join(rs.Names(), " "))
	case "load":
		if err := s.load(arg); err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	case "save":
		doc, err := s.document()
		if err == nil {
			err = os.WriteFile(arg, []byte(doc.Text()), 0o644)
		}
		if err != nil {
			fmt.Fprintf(w, "error: %v\n", err)
		}
	default:
		fmt.Fprintf(w, "unknown command :%s, try :help\n", cmd)
	}
	return false
}

// load replaces the rows with those of a derivation file
func (s *session) load(path string) error {
	if path == "" {
		return errors.New("usage: :load <file>")
	}
	doc, err := derivation.LoadFile(path)
	if err != nil {
		return err
	}
	s.rows = strings.Split(strings.TrimRight(doc.Text(), "\n"), "\n")
	return nil
}

func (a *app) repl(args []string) int {
	var g globalFlags
	fs := a.flagSet(replInfo)
	g.register(fs)
	language := fs.String("language", "", "language reference")
	ruleset := fs.String("ruleset", "", "ruleset reference")
	load := fs.String("load", "", "derivation file to start from")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	e, err := g.load(a)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}

	s := newSession(e, *language, *ruleset)
	if *load != "" {
		if err := s.load(*load); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
			return 2
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	fmt.Fprintf(a.stdout, "%s %s. Type :help for commands, Ctrl+D exits.\n", toolName, cli.Version)
	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.logger.Error("%v", err)
			}
			fmt.Fprintln(a.stdout)
			return 0
		}
		if strings.TrimSpace(line) != "" {
			ln.AppendHistory(line)
		}
		if s.exec(line, a.stdout) {
			return 0
		}
	}
}
