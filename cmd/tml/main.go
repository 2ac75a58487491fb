// Command tml is a line-oriented calculator.
//
// With arguments, tml executes them as one line. With --file, or when stdin is
// not a terminal, it executes each line of the input in one session. Otherwise
// it starts an interactive session.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/zephyrtronium/tml"
	"github.com/zephyrtronium/tml/highlight"
)

func main() {
	app := kingpin.New("tml", "A line-oriented calculator.")
	var cfg config
	cfg.register(app)
	kingpin.MustParse(app.Parse(os.Args[1:]))

	logger := newLogger(os.Stderr, cfg.logLevel)
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	colors := cfg.Color == "always" || cfg.Color == "auto" && term.IsTerminal(int(os.Stdout.Fd())) && os.Getenv("NO_COLOR") == ""
	os.Exit(run(&cfg, logger, os.Stdin, os.Stdout, os.Stderr, interactive, colors))
}

func newLogger(w io.Writer, lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = log.With(logger, "ts", log.DefaultTimestampUTC)
	var allow level.Option
	switch lvl {
	case "debug":
		allow = level.AllowDebug()
	case "info":
		allow = level.AllowInfo()
	case "error":
		allow = level.AllowError()
	default:
		allow = level.AllowWarn()
	}
	return level.NewFilter(logger, allow)
}

// run executes the session described by cfg and returns the exit status.
func run(cfg *config, logger log.Logger, stdin io.Reader, stdout, stderr io.Writer, interactive, colors bool) int {
	if err := cfg.load(); err != nil {
		level.Error(logger).Log("msg", "failed to load config", "err", err)
		return 2
	}
	// Color choice may come from the config file.
	switch cfg.Color {
	case "always":
		colors = true
	case "never":
		colors = false
	}
	ctx, err := cfg.context()
	if err != nil {
		level.Error(logger).Log("msg", "failed to set variables", "err", err)
		return 2
	}
	p := &printer{
		out:    stdout,
		errs:   stderr,
		term:   highlight.NewTerminal(colors),
		html:   cfg.html,
		format: cfg.format,
		style:  cfg.Style,
		logger: logger,
	}
	level.Debug(logger).Log("msg", "session ready", "prec", ctx.Prec(), "vars", len(ctx.Names()), "color", colors)

	switch {
	case len(cfg.args) > 0:
		line := strings.Join(cfg.args, " ")
		res, err := ctx.Exec(line)
		if err != nil {
			p.fail(err)
			return 1
		}
		p.result(res)
		return 0
	case cfg.file != "" || !interactive:
		in := stdin
		name := "stdin"
		if cfg.file != "" && cfg.file != "-" {
			f, err := os.Open(cfg.file)
			if err != nil {
				level.Error(logger).Log("msg", "failed to open input", "err", errors.Wrap(err, "opening input"))
				return 2
			}
			defer f.Close()
			in, name = f, cfg.file
		}
		return batch(ctx, p, in, name)
	default:
		return repl(ctx, p, cfg.History)
	}
}

// batch executes every line of in and reports the outcomes in order. The
// status is 1 if any line failed.
func batch(ctx *tml.Context, p *printer, in io.Reader, name string) int {
	src, err := io.ReadAll(in)
	if err != nil {
		level.Error(p.logger).Log("msg", "failed to read input", "input", name, "err", errors.Wrapf(err, "reading %s", name))
		return 2
	}
	status := 0
	for i, o := range ctx.ExecAll(string(src)) {
		if o.Err != nil {
			level.Debug(p.logger).Log("msg", "line failed", "input", name, "line", i+1, "err", o.Err)
			p.fail(o.Err)
			status = 1
			continue
		}
		p.result(o.Result)
	}
	return status
}

// printer writes results and errors in the configured rendering.
type printer struct {
	out    io.Writer
	errs   io.Writer
	term   *highlight.Terminal
	html   bool
	format string
	style  string
	logger log.Logger
}

// result prints a result. Comments and empty lines print nothing.
func (p *printer) result(r tml.Result) {
	if r.Kind == tml.ResultNone {
		return
	}
	s := r.String()
	switch {
	case p.format != "":
		if err := highlight.Format(p.out, s, p.format, p.style); err != nil {
			level.Warn(p.logger).Log("msg", "formatter failed", "formatter", p.format, "err", err)
			fmt.Fprint(p.out, s)
		}
		fmt.Fprintln(p.out)
	case p.html:
		fmt.Fprintln(p.out, highlight.HTML(s))
	default:
		fmt.Fprintln(p.out, p.term.Line(s))
	}
}

// fail prints an error.
func (p *printer) fail(err error) {
	switch {
	case p.format != "":
		if ferr := highlight.FormatError(p.errs, err, p.format, p.style); ferr != nil {
			level.Warn(p.logger).Log("msg", "formatter failed", "formatter", p.format, "err", ferr)
			fmt.Fprint(p.errs, err)
		}
		fmt.Fprintln(p.errs)
	case p.html:
		fmt.Fprintln(p.errs, highlight.ErrorHTML(err))
	default:
		fmt.Fprintln(p.errs, p.term.Error(err))
	}
}
