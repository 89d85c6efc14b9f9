package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/orizon-lang/derivcheck/internal/cli"
	"github.com/orizon-lang/derivcheck/internal/derivation"
	derrors "github.com/orizon-lang/derivcheck/internal/errors"
	"github.com/orizon-lang/derivcheck/internal/report"
	"github.com/orizon-lang/derivcheck/internal/watch"
)

var checkInfo = cli.CommandInfo{
	Name:        "check",
	Usage:       "derivcheck check [OPTIONS] <file>...",
	Description: "Check derivation files",
	Examples: []string{
		"derivcheck check proofs/mp.proof",
		"derivcheck check --ruleset lm.nd@^2 --json proofs/*.yaml",
	},
	Flags: []cli.FlagInfo{
		{Name: "language", Usage: "language reference, overriding the file and configuration"},
		{Name: "ruleset", Usage: "ruleset reference, overriding the file and configuration"},
		{Name: "json", Usage: "write the reports as JSON"},
		{Name: "all", Usage: "list passing lines too"},
		{Name: "related", Usage: "print cited lines under each diagnostic", Default: "true"},
		{Name: "color", Usage: "auto, always or never", Default: "auto"},
		{Name: "max-errors", Usage: "diagnostics printed per file, 0 for all", Default: "configuration or 0"},
	},
}

var watchInfo = cli.CommandInfo{
	Name:        "watch",
	Usage:       "derivcheck watch [OPTIONS] <file>...",
	Description: "Re-check derivation files whenever they change",
	Flags: []cli.FlagInfo{
		{Name: "language", Usage: "language reference"},
		{Name: "ruleset", Usage: "ruleset reference"},
		{Name: "debounce", Usage: "quiet period before re-checking", Default: "configuration or 200ms"},
	},
}

// checkOptions are the flags shared by check and watch
type checkOptions struct {
	globalFlags
	language  string
	ruleset   string
	json      bool
	all       bool
	related   bool
	color     string
	maxErrors int
}

func (o *checkOptions) register(a *app, info cli.CommandInfo) *flag.FlagSet {
	fs := a.flagSet(info)
	o.globalFlags.register(fs)
	fs.StringVar(&o.language, "language", "", "language reference")
	fs.StringVar(&o.ruleset, "ruleset", "", "ruleset reference")
	fs.BoolVar(&o.json, "json", false, "write JSON")
	fs.BoolVar(&o.all, "all", false, "list passing lines too")
	fs.BoolVar(&o.related, "related", true, "print cited lines")
	fs.StringVar(&o.color, "color", "", "auto, always or never")
	fs.IntVar(&o.maxErrors, "max-errors", -1, "diagnostics printed per file")
	return fs
}

// refs picks the language and ruleset for doc: flags first, then the
// document's own directives, then the configuration
func (o *checkOptions) refs(e *env, doc *derivation.Document) (string, string) {
	lang := firstNonEmpty(o.language, doc.Language, e.cfg.Language)
	rs := firstNonEmpty(o.ruleset, doc.Ruleset, e.cfg.Ruleset)
	return lang, rs
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// checkFiles loads and checks paths concurrently. Reports come back in
// the order of paths.
func (o *checkOptions) checkFiles(ctx context.Context, e *env, paths []string) ([]*derivation.Report, error) {
	reports := make([]*derivation.Report, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency())
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			doc, err := derivation.LoadFile(path)
			if err != nil {
				return err
			}
			langRef, rsRef := o.refs(e, doc)
			lang, rs, err := e.reg.Resolve(langRef, rsRef)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			e.logger.Info("checking %s with %s", path, rs)
			r := derivation.NewChecker(lang, rs, derivation.WithLogger(e.logger)).Check(doc.Lines)
			r.File = path
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// write renders reports to w
func (o *checkOptions) write(w io.Writer, e *env, reports []*derivation.Report) error {
	if o.json {
		return report.JSON(w, reports...)
	}
	mode := e.cfg.Color
	if o.color != "" {
		mode = cli.ColorMode(o.color)
	}
	maxErrors := e.cfg.Report.MaxErrors
	if o.maxErrors >= 0 {
		maxErrors = o.maxErrors
	}
	f, _ := w.(*os.File)
	return report.Text(w, report.Options{
		Color:       cli.UseColor(mode, f),
		All:         o.all,
		Related:     o.related,
		IgnoreCodes: lo.Map(e.cfg.Report.IgnoreCodes, func(c string, _ int) derrors.Code { return derrors.Code(c) }),
		MaxErrors:   maxErrors,
	}, reports...)
}

func (a *app) check(args []string) int {
	var o checkOptions
	fs := o.register(a, checkInfo)
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if err := cli.ValidateArgs(fs.Args(), 1, checkInfo.Usage); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 2
	}
	e, err := o.load(a)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}

	reports, err := o.checkFiles(context.Background(), e, fs.Args())
	if err != nil {
		e.logger.Error("%v", err)
		return 2
	}
	if err := o.write(a.stdout, e, reports); err != nil {
		e.logger.Error("%v", err)
		return 2
	}
	for _, r := range reports {
		if !r.FullyChecked {
			return 1
		}
	}
	return 0
}

func (a *app) watch(args []string) int {
	var o checkOptions
	fs := o.register(a, watchInfo)
	debounce := fs.Duration("debounce", 0, "quiet period before re-checking")
	if code, ok := parse(fs, args); !ok {
		return code
	}
	if err := cli.ValidateArgs(fs.Args(), 1, watchInfo.Usage); err != nil {
		fmt.Fprintln(a.stderr, err)
		return 2
	}
	e, err := o.load(a)
	if err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
		return 2
	}
	if *debounce <= 0 {
		*debounce = e.cfg.Watch.Debounce
	}
	if *debounce <= 0 {
		*debounce = 200 * time.Millisecond
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := o.watchFiles(ctx, a.stdout, e, *debounce, fs.Args()); err != nil {
		e.logger.Error("%v", err)
		return 2
	}
	return 0
}

// watchFiles checks paths once, then again each time some of them change,
// until ctx is cancelled. Errors loading a file are reported and watching
// continues.
func (o *checkOptions) watchFiles(ctx context.Context, w io.Writer, e *env, debounce time.Duration, paths []string) error {
	recheck := func(changed []string) {
		reports, err := o.checkFiles(ctx, e, changed)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				e.logger.Error("%v", err)
			}
			return
		}
		if err := o.write(w, e, reports); err != nil {
			e.logger.Error("%v", err)
		}
	}

	watcher, err := watch.New(debounce, paths...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	recheck(watcher.Files())
	e.logger.Info("watching %d files", len(paths))
	return watcher.Run(ctx, recheck)
}
