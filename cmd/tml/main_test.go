package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kingpin/v2"
	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/tml/highlight"
)

func parse(t *testing.T, args ...string) *config {
	t.Helper()
	app := kingpin.New("tml", "")
	var cfg config
	cfg.register(app)
	_, err := app.Parse(args)
	require.NoError(t, err)
	return &cfg
}

func TestValidName(t *testing.T) {
	for _, s := range []string{"x", "_", "long_name", "π", "x1"} {
		assert.True(t, validName(s), "%q", s)
	}
	for _, s := range []string{"", "1", "x y", "x=1", "f(", "$", `"x"`} {
		assert.False(t, validName(s), "%q", s)
	}
}

func TestGivenFlag(t *testing.T) {
	cfg := parse(t, "--given", "x = 2", "--given=y=x^2", "1")
	assert.Equal(t, givens{{"x", "2"}, {"y", "x^2"}}, cfg.given)
	assert.Equal(t, []string{"1"}, cfg.args)

	app := kingpin.New("tml", "")
	var bad config
	bad.register(app)
	_, err := app.Parse([]string{"--given", "nope"})
	assert.Error(t, err)
	_, err = app.Parse([]string{"--given", "1=2"})
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	cfg := parse(t, "--given", "b=a*2", "--given", "c=b+1")
	cfg.Vars = map[string]string{"a": "PI", "z": "1"}
	ctx, err := cfg.context()
	require.NoError(t, err)
	c, ok := ctx.Lookup("c")
	require.True(t, ok)
	assert.InDelta(t, 7.283185307179586, c, 1e-12)

	cfg = parse(t, "--given", "b=nope")
	_, err = cfg.context()
	assert.ErrorContains(t, err, "setting b")
}

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "tml.yaml")
	require.NoError(t, os.WriteFile(p, []byte(text), 0o600))
	return p
}

func TestLoadConfig(t *testing.T) {
	p := writeConfig(t, "prec: 128\ncolor: never\nstyle: dracula\nhistory: /tmp/h\nvars:\n  r: \"2\"\n")
	cfg := parse(t, "--config", p, "--style", "monokai")
	require.NoError(t, cfg.load())
	assert.Equal(t, uint(128), cfg.Prec)
	assert.Equal(t, "never", cfg.Color)
	assert.Equal(t, "monokai", cfg.Style, "flags override the file")
	assert.Equal(t, "/tmp/h", cfg.History)
	assert.Equal(t, map[string]string{"r": "2"}, cfg.Vars)

	cfg = parse(t, "--config", p, "-p", "0")
	require.NoError(t, cfg.load())
	assert.Equal(t, uint(0), cfg.Prec)

	cfg = parse(t, "--config", writeConfig(t, ""))
	assert.NoError(t, cfg.load())

	cfg = parse(t, "--config", writeConfig(t, "precision: 1\n"))
	assert.Error(t, cfg.load(), "unknown fields are rejected")

	cfg = parse(t, "--config", writeConfig(t, "color: sometimes\n"))
	assert.Error(t, cfg.load())

	cfg = parse(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, cfg.load(), "opening config")
}

func TestRun(t *testing.T) {
	cases := []struct {
		name   string
		args   []string
		stdin  string
		status int
		out    string
		errs   []string
	}{
		{
			name: "one-shot",
			args: []string{"2", "*", "3"},
			out:  "6\n",
		},
		{
			name:   "one-shot-error",
			args:   []string{"(1"},
			status: 1,
			errs:   []string{"missing block end"},
		},
		{
			name:  "batch",
			stdin: "# setup\nx = 2\n\n\"x^10 is \" x^10\n",
			out:   "x = 2\nx^10 is 1024\n",
		},
		{
			name:   "batch-errors",
			stdin:  "y\nx = 1\nx + 1\n1 +",
			status: 1,
			out:    "x = 1\n2\n",
			errs:   []string{`unknown variable "y"`, "incomplete expression"},
		},
		{
			name: "given",
			args: []string{"--given", "r=3", `"area " PI*r^2`},
			out:  "area 28.274333882308138\n",
		},
		{
			name: "precise",
			args: []string{"-p", "100", "1/3*3"},
			out:  "1\n",
		},
		{
			name: "html",
			args: []string{"--html", "x = 1"},
			out:  `<span class="variable">x</span> <span class="operator">=</span> <span class="number">1</span>` + "\n",
		},
		{
			name:   "html-error",
			args:   []string{"--html", "x"},
			status: 1,
			errs:   []string{`<span class="error">unknown variable &#34;x&#34;`},
		},
		{
			name: "format",
			args: []string{"--format", "noop", "1+1"},
			out:  "2\n",
		},
		{
			name:   "bad-given",
			args:   []string{"--given", "x=)", "1"},
			status: 2,
			errs:   []string{"failed to set variables"},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := parse(t, c.args...)
			var out, errs bytes.Buffer
			logger := newLogger(&errs, "warn")
			status := run(cfg, logger, strings.NewReader(c.stdin), &out, &errs, false, false)
			assert.Equal(t, c.status, status)
			assert.Equal(t, c.out, out.String())
			for _, e := range c.errs {
				assert.Contains(t, errs.String(), e)
			}
			if c.errs == nil {
				assert.Empty(t, errs.String())
			}
		})
	}
}

func TestRunFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "session.tml")
	require.NoError(t, os.WriteFile(p, []byte("a = 4\r\nsqrt(a)\r\n"), 0o600))
	cfg := parse(t, "--file", p)
	var out, errs bytes.Buffer
	status := run(cfg, log.NewNopLogger(), strings.NewReader(""), &out, &errs, true, false)
	assert.Equal(t, 0, status)
	assert.Equal(t, "a = 4\n2\n", out.String())

	cfg = parse(t, "--file", filepath.Join(t.TempDir(), "missing"))
	status = run(cfg, log.NewNopLogger(), strings.NewReader(""), &out, &errs, true, false)
	assert.Equal(t, 2, status)
}

func TestCommand(t *testing.T) {
	cfg := parse(t, "--given", "x=1")
	ctx, err := cfg.context()
	require.NoError(t, err)
	var out, errs bytes.Buffer
	p := &printer{out: &out, errs: &errs, term: highlight.NewTerminal(false), logger: log.NewNopLogger()}

	assert.False(t, command(ctx, p, ":vars"))
	assert.Equal(t, "x = 1\n", out.String())
	out.Reset()
	assert.False(t, command(ctx, p, ":funcs"))
	assert.Contains(t, out.String(), "sqrt")
	assert.False(t, command(ctx, p, ":what"))
	assert.Contains(t, errs.String(), "unknown command")
	assert.True(t, command(ctx, p, ":quit"))
}
