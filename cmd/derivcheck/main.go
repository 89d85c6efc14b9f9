// Package main provides the derivcheck command: it checks derivation files,
// re-checks them on change, runs an interactive session and serves the
// checker over HTTP/3.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/registry"
)

const toolName = "derivcheck"

// command is one subcommand of the tool
type command struct {
	info cli.CommandInfo
	run  func(a *app, args []string) int
}

// app carries the output streams shared by every subcommand
type app struct {
	stdout io.Writer
	stderr io.Writer
}

// env is the state built from the global flags
type env struct {
	cfg    *cli.Config
	logger *cli.Logger
	reg    *registry.Registry
}

// globalFlags registers the flags every subcommand accepts
type globalFlags struct {
	config  string
	verbose bool
	debug   bool
}

func (g *globalFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&g.config, "config", cli.DefaultConfigFile, "configuration file")
	fs.BoolVar(&g.verbose, "verbose", false, "log progress")
	fs.BoolVar(&g.debug, "debug", false, "log dispatch decisions")
}

// load reads the configuration and builds the logger and registry
func (g *globalFlags) load(a *app) (*env, error) {
	cfg, err := cli.LoadConfig(g.config)
	if err != nil {
		return nil, err
	}
	logger := cli.NewLogger(cfg.Verbose || g.verbose, cfg.Debug || g.debug)
	logger.Out = a.stderr
	return &env{cfg: cfg, logger: logger, reg: registry.Default()}, nil
}

func commands() []command {
	return []command{
		{checkInfo, (*app).check},
		{watchInfo, (*app).watch},
		{replInfo, (*app).repl},
		{serveInfo, (*app).serve},
		{rulesInfo, (*app).rules},
		{initInfo, (*app).initConfig},
		{cli.CommandInfo{Name: "version", Usage: "derivcheck version [--json]", Description: "Print version information"}, (*app).version},
		{cli.CommandInfo{Name: "help", Usage: "derivcheck help [command]", Description: "Show help"}, (*app).help},
	}
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code:
// 0 when everything checked, 1 when a line failed, 2 on usage or input errors
func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}
	if len(args) == 0 {
		a.usage(stderr)
		return 2
	}

	sub := args[0]
	switch sub {
	case "-h", "--help":
		sub = "help"
	case "-v", "--version":
		sub = "version"
	}
	for _, c := range commands() {
		if c.info.Name == sub {
			return c.run(a, args[1:])
		}
	}
	fmt.Fprintf(stderr, "unknown command: %s\n", sub)
	a.usage(stderr)
	return 2
}

func (a *app) usage(w io.Writer) {
	infos := make([]cli.CommandInfo, 0)
	for _, c := range commands() {
		infos = append(infos, c.info)
	}
	cli.PrintUsage(w, toolName, infos)
}

// flagSet returns a flag set that reports errors instead of exiting
func (a *app) flagSet(info cli.CommandInfo) *flag.FlagSet {
	fs := flag.NewFlagSet(info.Name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	fs.Usage = func() {
		cli.PrintCommandUsage(a.stderr, toolName, info)
	}
	return fs
}

// parse parses args, mapping -h to exit code 0 and other errors to 2
func parse(fs *flag.FlagSet, args []string) (int, bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func (a *app) version(args []string) int {
	fs := a.flagSet(cli.CommandInfo{Name: "version"})
	jsonOutput := fs.Bool("json", false, "output version in JSON format")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	cli.PrintVersion(a.stdout, toolName, *jsonOutput)
	return 0
}

func (a *app) help(args []string) int {
	if len(args) == 0 {
		a.usage(a.stdout)
		return 0
	}
	for _, c := range commands() {
		if c.info.Name == args[0] {
			cli.PrintCommandUsage(a.stdout, toolName, c.info)
			return 0
		}
	}
	fmt.Fprintf(a.stderr, "unknown command: %s\n", args[0])
	return 2
}

// concurrency bounds how many files are checked at once
func concurrency() int {
	if v := os.Getenv("DERIVCHECK_MAX_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.GOMAXPROCS(0)
}
