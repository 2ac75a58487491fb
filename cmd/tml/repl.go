package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/peterh/liner"

	"github.com/zephyrtronium/tml"
)

const historyFile = ".tml_history"

const replHelp = `Commands:
  :help   show this help
  :vars   list variables
  :funcs  list functions
  :quit   exit (also Ctrl+D)`

// repl runs an interactive session until EOF or :quit.
func repl(ctx *tml.Context, p *printer, hist string) int {
	if hist == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			level.Warn(p.logger).Log("msg", "no home directory for history", "err", err)
		} else {
			hist = filepath.Join(home, historyFile)
		}
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			if _, err := ln.ReadHistory(f); err != nil {
				level.Warn(p.logger).Log("msg", "failed to read history", "file", hist, "err", err)
			}
			f.Close()
		}
	}

	for {
		line, err := ln.Prompt("> ")
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				level.Error(p.logger).Log("msg", "failed to read line", "err", err)
			}
			fmt.Fprintln(p.out)
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if strings.HasPrefix(strings.TrimSpace(line), ":") {
			if command(ctx, p, strings.TrimSpace(line)) {
				break
			}
			continue
		}
		res, err := ctx.Exec(line)
		if err != nil {
			p.fail(err)
			continue
		}
		p.result(res)
	}

	if hist != "" {
		f, err := os.Create(hist)
		if err != nil {
			level.Warn(p.logger).Log("msg", "failed to save history", "file", hist, "err", err)
			return 0
		}
		if _, err := ln.WriteHistory(f); err != nil {
			level.Warn(p.logger).Log("msg", "failed to save history", "file", hist, "err", err)
		}
		f.Close()
	}
	return 0
}

// command handles a REPL command and reports whether the session should end.
func command(ctx *tml.Context, p *printer, line string) bool {
	switch line {
	case ":q", ":quit", ":exit":
		return true
	case ":h", ":help":
		fmt.Fprintln(p.out, replHelp)
	case ":vars":
		for _, name := range ctx.Names() {
			v, _ := ctx.Lookup(name)
			s := tml.FormatFloat(v)
			if b := ctx.LookupBig(name); b != nil {
				s = tml.FormatBig(b)
			}
			fmt.Fprintln(p.out, p.term.Line(name+" = "+s))
		}
	case ":funcs":
		fmt.Fprintln(p.out, strings.Join(tml.Funcs(), " "))
	default:
		fmt.Fprintf(p.errs, "unknown command %s; try :help\n", line)
	}
	return false
}
