package main

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/zephyrtronium/tml"
)

// config holds the settings from flags and the optional config file.
type config struct {
	Prec    uint              `yaml:"prec"`
	Color   string            `yaml:"color"`
	Style   string            `yaml:"style"`
	History string            `yaml:"history"`
	Vars    map[string]string `yaml:"vars"`

	configFile string
	file       string
	format     string
	html       bool
	given      givens
	logLevel   string
	args       []string

	// set records flags given on the command line or environment, which
	// take precedence over the config file.
	set struct {
		prec, color, style, history bool
	}
}

func (c *config) register(app *kingpin.Application) {
	app.Flag("config", "YAML file with prec, color, style, history, and vars.").Envar("TML_CONFIG").StringVar(&c.configFile)
	app.Flag("prec", "Precision of calculations in bits. 0 uses float64.").Short('p').Envar("TML_PREC").Default("0").IsSetByUser(&c.set.prec).UintVar(&c.Prec)
	app.Flag("given", "name=value variable definition (any number of times).").PlaceHolder("NAME=VALUE").SetValue(&c.given)
	app.Flag("file", "Execute the lines of a file. - reads stdin.").Short('f').StringVar(&c.file)
	app.Flag("color", "Colorize output: auto, always, or never.").Envar("TML_COLOR").Default("auto").IsSetByUser(&c.set.color).EnumVar(&c.Color, "auto", "always", "never")
	app.Flag("format", "Render results through a chroma formatter, e.g. terminal256.").Envar("TML_FORMAT").StringVar(&c.format)
	app.Flag("style", "Chroma style to use with --format.").Envar("TML_STYLE").Default("monokai").IsSetByUser(&c.set.style).StringVar(&c.Style)
	app.Flag("html", "Render results and errors as HTML.").BoolVar(&c.html)
	app.Flag("history", "REPL history file. Defaults to ~/.tml_history.").Envar("TML_HISTORY").IsSetByUser(&c.set.history).StringVar(&c.History)
	app.Flag("log.level", "Only log messages with the given severity or above.").Envar("TML_LOG_LEVEL").Default("warn").EnumVar(&c.logLevel, "debug", "info", "warn", "error")
	app.Arg("line", "Line to execute. Multiple arguments are joined with spaces.").StringsVar(&c.args)
}

// givens is a repeatable name=value flag.
type givens [][2]string

func (g *givens) Set(s string) error {
	d := strings.SplitN(s, "=", 2)
	if len(d) != 2 {
		return errors.Errorf(`variable definitions must be "name=value", not %q`, s)
	}
	name := strings.TrimSpace(d[0])
	if !validName(name) {
		return errors.Errorf("%q is not a variable name", name)
	}
	*g = append(*g, [2]string{name, strings.TrimSpace(d[1])})
	return nil
}

func (g *givens) String() string {
	s := make([]string, len(*g))
	for i, d := range *g {
		s[i] = d[0] + "=" + d[1]
	}
	return strings.Join(s, " ")
}

func (g *givens) IsCumulative() bool {
	return true
}

// validName reports whether s lexes as exactly one identifier.
func validName(s string) bool {
	n := 0
	for tok := range tml.Tokens(s) {
		switch tok.Kind {
		case tml.TokenEOF:
		case tml.TokenIdent:
			n++
		default:
			return false
		}
	}
	return n == 1
}

// load merges the config file into c. Settings given on the command line are
// kept.
func (c *config) load() error {
	if c.configFile == "" {
		return nil
	}
	f, err := os.Open(c.configFile)
	if err != nil {
		return errors.Wrap(err, "opening config")
	}
	defer f.Close()
	var file config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && err != io.EOF {
		return errors.Wrapf(err, "parsing config %s", c.configFile)
	}
	if !c.set.prec && file.Prec != 0 {
		c.Prec = file.Prec
	}
	if !c.set.color && file.Color != "" {
		switch file.Color {
		case "auto", "always", "never":
			c.Color = file.Color
		default:
			return errors.Errorf("config %s: color must be auto, always, or never, not %q", c.configFile, file.Color)
		}
	}
	if !c.set.style && file.Style != "" {
		c.Style = file.Style
	}
	if !c.set.history && file.History != "" {
		c.History = file.History
	}
	c.Vars = file.Vars
	return nil
}

// context creates the session context with the configured precision and
// variables. Config file variables are set in name order before --given
// definitions, and each definition may use the ones before it.
func (c *config) context() (*tml.Context, error) {
	ctx := tml.NewContext(tml.Prec(c.Prec))
	names := make([]string, 0, len(c.Vars))
	for k := range c.Vars {
		names = append(names, k)
	}
	sort.Strings(names)
	defs := make([][2]string, 0, len(names)+len(c.given))
	for _, k := range names {
		if !validName(k) {
			return nil, errors.Errorf("config %s: %q is not a variable name", c.configFile, k)
		}
		defs = append(defs, [2]string{k, c.Vars[k]})
	}
	defs = append(defs, c.given...)
	for _, d := range defs {
		if _, err := ctx.Exec(d[0] + " = " + d[1]); err != nil {
			return nil, errors.Wrapf(err, "setting %s", d[0])
		}
	}
	return ctx, nil
}
