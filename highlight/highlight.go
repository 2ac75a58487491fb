// Package highlight renders calculator lines and results with syntax
// coloring, as HTML, ANSI terminal text, or through chroma formatters.
package highlight

import (
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/fatih/color"

	"github.com/zephyrtronium/tml"
)

// Class is the syntactic class of a piece of a line.
type Class int8

const (
	// Plain is whitespace, brackets, and unrecognized text.
	Plain Class = iota
	Number
	Operator
	// Function is a name followed by an opening bracket.
	Function
	Variable
	String
	// Comment is an entire comment line.
	Comment

	numClasses
)

var classNames = [numClasses]string{
	Plain:    "plain",
	Number:   "number",
	Operator: "operator",
	Function: "function",
	Variable: "variable",
	String:   "string",
	Comment:  "comment",
}

// String returns the name of the class, which is also its HTML class.
func (c Class) String() string {
	if c < 0 || c >= numClasses {
		return "Class(" + strconv.Itoa(int(c)) + ")"
	}
	return classNames[c]
}

// Span is a classified range of bytes of a line.
type Span struct {
	tml.Span
	Class Class
}

// Classify divides a line into classified spans. Every byte of the line is in
// exactly one span, and the spans are in order. Adjacent plain text is merged
// into one span.
func Classify(line string) []Span {
	scan := tml.Load(line)
	first := scan.Peek()
	switch {
	case first.Kind == tml.TokenEOF:
		if line == "" {
			return nil
		}
		return []Span{{tml.Span{Start: 0, End: len(line)}, Plain}}
	case first.Kind == tml.TokenSeparator && first.Sep == tml.SepComment:
		return []Span{{tml.Span{Start: 0, End: len(line)}, Comment}}
	}
	var r []Span
	add := func(s tml.Span, c Class) {
		if s.Len() == 0 {
			return
		}
		if n := len(r); n > 0 && c == Plain && r[n-1].Class == Plain {
			r[n-1].End = s.End
			return
		}
		r = append(r, Span{s, c})
	}
	c := 0
	for {
		tok := scan.Next()
		add(tml.Span{Start: c, End: tok.Start}, Plain)
		c = tok.End
		switch tok.Kind {
		case tml.TokenEOF:
			return r
		case tml.TokenNumber:
			add(tok.Span, Number)
		case tml.TokenOperator:
			add(tok.Span, Operator)
		case tml.TokenIdent:
			if p := scan.Peek(); p.Kind == tml.TokenSeparator && p.Sep == tml.SepOpen {
				add(tok.Span, Function)
			} else {
				add(tok.Span, Variable)
			}
		case tml.TokenString:
			add(tok.Span, String)
		default:
			add(tok.Span, Plain)
		}
	}
}

// HTML renders a line as HTML with each classified piece except plain text
// wrapped in a span element whose class is the class name.
func HTML(line string) string {
	var b strings.Builder
	for _, s := range Classify(line) {
		text := html.EscapeString(line[s.Start:s.End])
		if s.Class == Plain {
			b.WriteString(text)
			continue
		}
		b.WriteString(`<span class="`)
		b.WriteString(s.Class.String())
		b.WriteString(`">`)
		b.WriteString(text)
		b.WriteString(`</span>`)
	}
	return b.String()
}

// ErrorHTML renders an error, including its source and caret lines, as an
// HTML span with class error.
func ErrorHTML(err error) string {
	return `<span class="error">` + html.EscapeString(err.Error()) + `</span>`
}

// Exec executes a line in ctx and renders the highlighted result or the error
// as HTML. Comments and empty lines render as the empty string.
func Exec(ctx *tml.Context, line string) string {
	res, err := ctx.Exec(line)
	if err != nil {
		return ErrorHTML(err)
	}
	return HTML(res.String())
}

// ExecAll executes each line of src in ctx and renders each result as HTML.
func ExecAll(ctx *tml.Context, src string) []string {
	out := ctx.ExecAll(src)
	r := make([]string, len(out))
	for i, o := range out {
		if o.Err != nil {
			r[i] = ErrorHTML(o.Err)
			continue
		}
		r[i] = HTML(o.Result.String())
	}
	return r
}

// Terminal renders lines with ANSI colors.
type Terminal struct {
	colors [numClasses]*color.Color
	err    *color.Color
}

// NewTerminal creates a terminal renderer. If enable is false, rendering
// produces plain text. The choice overrides color's own terminal detection.
func NewTerminal(enable bool) *Terminal {
	t := &Terminal{
		colors: [numClasses]*color.Color{
			Number:   color.New(color.FgCyan),
			Operator: color.New(color.FgYellow),
			Function: color.New(color.FgBlue, color.Bold),
			Variable: color.New(color.FgMagenta),
			String:   color.New(color.FgGreen),
			Comment:  color.New(color.FgHiBlack, color.Italic),
		},
		err: color.New(color.FgRed),
	}
	for _, c := range append(t.colors[:], t.err) {
		switch {
		case c == nil:
		case enable:
			c.EnableColor()
		default:
			c.DisableColor()
		}
	}
	return t
}

// Line renders a line with colors.
func (t *Terminal) Line(line string) string {
	var b strings.Builder
	for _, s := range Classify(line) {
		text := line[s.Start:s.End]
		if c := t.colors[s.Class]; c != nil {
			text = c.Sprint(text)
		}
		b.WriteString(text)
	}
	return b.String()
}

// Error renders an error in red.
func (t *Terminal) Error(err error) string {
	return t.err.Sprint(err.Error())
}

var chromaTypes = [numClasses]chroma.TokenType{
	Plain:    chroma.Text,
	Number:   chroma.LiteralNumber,
	Operator: chroma.Operator,
	Function: chroma.NameFunction,
	Variable: chroma.NameVariable,
	String:   chroma.LiteralString,
	Comment:  chroma.Comment,
}

// Tokens converts a line to chroma tokens.
func Tokens(line string) []chroma.Token {
	spans := Classify(line)
	r := make([]chroma.Token, len(spans))
	for i, s := range spans {
		r[i] = chroma.Token{Type: chromaTypes[s.Class], Value: line[s.Start:s.End]}
	}
	return r
}

// Format writes a line through the named chroma formatter and style, e.g.
// "terminal256" and "monokai". Unknown names use chroma's fallbacks.
func Format(w io.Writer, line, formatter, style string) error {
	f := formatters.Get(formatter)
	return f.Format(w, styles.Get(style), chroma.Literator(Tokens(line)...))
}

// FormatError writes an error through the named chroma formatter and style.
func FormatError(w io.Writer, err error, formatter, style string) error {
	f := formatters.Get(formatter)
	tok := chroma.Token{Type: chroma.Error, Value: err.Error()}
	return f.Format(w, styles.Get(style), chroma.Literator(tok))
}
