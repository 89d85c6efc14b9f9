package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/orizon-lang/derivcheck/internal/cli"
)

var rulesInfo = cli.CommandInfo{
	Name:        "rules",
	Usage:       "derivcheck rules [ruleset]",
	Description: "List rulesets and languages, or the rules of one ruleset",
	Examples: []string{
		"derivcheck rules",
		"derivcheck rules lm.nd@^2",
	},
}

var initInfo = cli.CommandInfo{
	Name:        "init",
	Usage:       "derivcheck init [file]",
	Description: "Write a configuration file with the default settings",
}

func (a *app) rules(args []string) int {
	var g globalFlags
	fs := a.flagSet(rulesInfo)
	g.register(fs)
	if code, ok := parse(fs, args); !ok {
		return code
	}
	e, err := g.load(a)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(a.stdout, "RULESETS:")
		for _, rs := range e.reg.Rulesets() {
			fmt.Fprintf(a.stdout, "    %-16s %s\n", rs, strings.Join(rs.Languages, ", "))
		}
		fmt.Fprintln(a.stdout, "LANGUAGES:")
		for _, l := range e.reg.Languages() {
			fmt.Fprintf(a.stdout, "    %s\n", l)
		}
		return 0
	}

	rs, err := e.reg.Ruleset(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintf(a.stdout, "%s\n", rs)
	for _, name := range rs.Names() {
		fmt.Fprintf(a.stdout, "    %s\n", name)
	}
	return 0
}

func (a *app) initConfig(args []string) int {
	fs := a.flagSet(initInfo)
	if code, ok := parse(fs, args); !ok {
		return code
	}
	path := cli.DefaultConfigFile
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(a.stderr, "Error: %s already exists\n", path)
		return 2
	} else if !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}
	if err := cli.DefaultConfig().SaveConfig(path); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}
	fmt.Fprintf(a.stdout, "wrote %s\n", path)
	return 0
}
