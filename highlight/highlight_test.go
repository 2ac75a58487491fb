package highlight_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zephyrtronium/tml"
	"github.com/zephyrtronium/tml/highlight"
)

func TestClassify(t *testing.T) {
	type cs struct {
		text  string
		class highlight.Class
	}
	P, N, O, F, V, S, C := highlight.Plain, highlight.Number, highlight.Operator, highlight.Function, highlight.Variable, highlight.String, highlight.Comment
	cases := []struct {
		name string
		line string
		want []cs
	}{
		{"empty", "", nil},
		{"blank", "   ", []cs{{"   ", P}}},
		{"comment", "# x = 1", []cs{{"# x = 1", C}}},
		{"indented-comment", "  # note", []cs{{"  # note", C}}},
		{"number", "12.5", []cs{{"12.5", N}}},
		{"assign", "x = 2", []cs{{"x", V}, {" ", P}, {"=", O}, {" ", P}, {"2", N}}},
		{"call", "cos(PI)", []cs{{"cos", F}, {"(", P}, {"PI", V}, {")", P}}},
		{"call-space", "cos (1)", []cs{{"cos", F}, {" (", P}, {"1", N}, {")", P}}},
		{"print", `"a" b`, []cs{{`"a"`, S}, {" ", P}, {"b", V}}},
		{"unclosed", `"a`, []cs{{`"a`, S}}},
		{"error", "1 + $x", []cs{{"1", N}, {" ", P}, {"+", O}, {" $x", P}}},
		{"trailing", " -x ", []cs{{" ", P}, {"-", O}, {"x", V}, {" ", P}}},
		{"late-comment", "1 # c", []cs{{"1", N}, {" # ", P}, {"c", V}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var got []cs
			end := 0
			for _, s := range highlight.Classify(c.line) {
				require.Equal(t, end, s.Start, "gap or overlap before %v", s)
				end = s.End
				got = append(got, cs{c.line[s.Start:s.End], s.Class})
			}
			assert.Equal(t, len(c.line), end)
			if diff := cmp.Diff(c.want, got, cmp.AllowUnexported(cs{})); diff != "" {
				t.Errorf("wrong classes for %q (-want +got):\n%s", c.line, diff)
			}
		})
	}
}

func TestHTML(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"", ""},
		{"# a < b", `<span class="comment"># a &lt; b</span>`},
		{"x = 2", `<span class="variable">x</span> <span class="operator">=</span> <span class="number">2</span>`},
		{"sqrt(2)", `<span class="function">sqrt</span>(<span class="number">2</span>)`},
		{`"<b>" 1`, `<span class="string">&#34;&lt;b&gt;&#34;</span> <span class="number">1</span>`},
		{"1 & 2", `<span class="number">1</span> &amp; 2`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, highlight.HTML(c.line), "%q", c.line)
	}
}

func TestExecHTML(t *testing.T) {
	ctx := tml.NewContext()
	assert.Equal(t, `<span class="variable">x</span> <span class="operator">=</span> <span class="number">5</span>`, highlight.Exec(ctx, "x = 5"))
	assert.Equal(t, `<span class="number">10</span>`, highlight.Exec(ctx, "x * 2"))
	assert.Equal(t, "", highlight.Exec(ctx, "# nothing"))
	e := highlight.Exec(ctx, "y")
	assert.True(t, strings.HasPrefix(e, `<span class="error">unknown variable &#34;y&#34;`), "%s", e)

	r := highlight.ExecAll(tml.NewContext(), "a = 1\n(a\na")
	require.Len(t, r, 3)
	assert.Contains(t, r[0], `<span class="variable">a</span>`)
	assert.Contains(t, r[1], `class="error"`)
	assert.Equal(t, `<span class="number">1</span>`, r[2])
}

func TestErrorHTML(t *testing.T) {
	assert.Equal(t, `<span class="error">a &lt; b</span>`, highlight.ErrorHTML(errors.New("a < b")))
}

func TestTerminal(t *testing.T) {
	line := `x = cos(2) "s"`
	plain := highlight.NewTerminal(false)
	assert.Equal(t, line, plain.Line(line))
	assert.Equal(t, "oops", plain.Error(errors.New("oops")))

	colored := highlight.NewTerminal(true)
	s := colored.Line(line)
	assert.Contains(t, s, "\x1b[")
	for _, w := range []string{"x", "=", "cos", "2", `"s"`} {
		assert.Contains(t, s, w)
	}
	assert.Contains(t, colored.Error(errors.New("oops")), "\x1b[31m")
}

func TestTokens(t *testing.T) {
	toks := highlight.Tokens("f(x)+1")
	want := []chroma.Token{
		{Type: chroma.NameFunction, Value: "f"},
		{Type: chroma.Text, Value: "("},
		{Type: chroma.NameVariable, Value: "x"},
		{Type: chroma.Text, Value: ")"},
		{Type: chroma.Operator, Value: "+"},
		{Type: chroma.LiteralNumber, Value: "1"},
	}
	assert.Equal(t, want, toks)
}

func TestFormat(t *testing.T) {
	var b strings.Builder
	require.NoError(t, highlight.Format(&b, "x = 1 + 2", "noop", "monokai"))
	assert.Equal(t, "x = 1 + 2", b.String())

	b.Reset()
	require.NoError(t, highlight.Format(&b, "x = 1 + 2", "html", "monokai"))
	assert.Contains(t, b.String(), "<pre")

	b.Reset()
	require.NoError(t, highlight.Format(&b, "y", "terminal256", "no-such-style"))
	assert.Contains(t, b.String(), "y")

	b.Reset()
	require.NoError(t, highlight.FormatError(&b, errors.New("bad"), "noop", ""))
	assert.Equal(t, "bad", b.String())
}

func FuzzClassify(f *testing.F) {
	for _, s := range []string{"", "# c", "x = cos(2)", `"a`, "1 + $", "2+٣", "\xff"} {
		f.Add(s)
	}
	f.Fuzz(func(t *testing.T, s string) {
		end := 0
		for _, sp := range highlight.Classify(s) {
			if sp.Start != end || sp.End <= sp.Start {
				t.Fatalf("%q: bad span %+v after %d", s, sp, end)
			}
			end = sp.End
		}
		if end != len(s) {
			t.Fatalf("%q: spans end at %d", s, end)
		}
		highlight.HTML(s)
	})
}
