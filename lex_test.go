package tml

import (
	"testing"
)

type lexed struct {
	kind  TokenKind
	text  string
	start int
	op    Op
	sep   Sep
}

func TestLex(t *testing.T) {
	num := func(s string, p int) lexed { return lexed{kind: TokenNumber, text: s, start: p} }
	id := func(s string, p int) lexed { return lexed{kind: TokenIdent, text: s, start: p} }
	op := func(o Op, p int) lexed { return lexed{kind: TokenOperator, text: o.String(), start: p, op: o} }
	sep := func(s Sep, p int) lexed { return lexed{kind: TokenSeparator, text: s.String(), start: p, sep: s} }
	str := func(s string, p int) lexed { return lexed{kind: TokenString, text: s, start: p} }
	bad := func(s string, p int) lexed { return lexed{kind: TokenError, text: s, start: p} }
	cases := []struct {
		name   string
		src    string
		tokens []lexed
	}{
		// spaces
		{"empty", "", nil},
		{"spaces", " \t \r\n ", nil},
		// numbers
		{"zero", "0", []lexed{num("0", 0)}},
		{"digits", "9876543210", []lexed{num("9876543210", 0)}},
		{"two", "1 0", []lexed{num("1", 0), num("0", 2)}},
		{"frac", "1.5", []lexed{num("1.5", 0)}},
		{"trailing-dot", "1.", []lexed{num("1.", 0)}},
		{"second-dot", "3.4.5", []lexed{num("3.4", 0), bad(".5", 3)}},
		{"leading-dot", ".5", []lexed{bad(".5", 0)}},
		{"neg", "-1", []lexed{op(OpSub, 0), num("1", 1)}},
		{"exp-is-ident", "1e1", []lexed{num("1", 0), id("e1", 1)}},
		// identifiers
		{"e", "e", []lexed{id("e", 0)}},
		{"digits-after", "x1", []lexed{id("x1", 0)}},
		{"underscore", "_1234_", []lexed{id("_1234_", 0)}},
		{"unicode", "πr", []lexed{id("πr", 0)}},
		{"call", "cos(", []lexed{id("cos", 0), sep(SepOpen, 3)}},
		// operators
		{"ops", "+-*/%^=", []lexed{op(OpAdd, 0), op(OpSub, 1), op(OpMul, 2), op(OpDiv, 3), op(OpMod, 4), op(OpPow, 5), op(OpAssign, 6)}},
		{"assign", "x = 2", []lexed{id("x", 0), op(OpAssign, 2), num("2", 4)}},
		// separators
		{"parens", "()", []lexed{sep(SepOpen, 0), sep(SepClose, 1)}},
		{"comment", " # note", []lexed{sep(SepComment, 1), id("note", 3)}},
		// strings
		{"string", `"abc"`, []lexed{str(`"abc"`, 0)}},
		{"strings", `"a""b"`, []lexed{str(`"a"`, 0), str(`"b"`, 3)}},
		{"unclosed", `"abc`, []lexed{str(`"abc`, 0)}},
		{"quote", `"`, []lexed{str(`"`, 0)}},
		{"string-num", `"A"3"B"`, []lexed{str(`"A"`, 0), num("3", 3), str(`"B"`, 4)}},
		// erroneous symbols
		{"dollar", "$", []lexed{bad("$", 0)}},
		{"dollar-rest", "a$ b", []lexed{id("a", 0), bad("$ b", 1)}},
		{"mixed-script", "2+٣", []lexed{num("2", 0), op(OpAdd, 1), bad("٣", 2)}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			scan := Load(c.src)
			for _, want := range c.tokens {
				got := scan.Next()
				if got.Kind == TokenEOF {
					t.Fatalf("scanning %q: expected token %v but got EOF", c.src, want)
				}
				if got.Kind != want.kind || got.Splice() != want.text || got.Start != want.start || got.Op != want.op || got.Sep != want.sep {
					t.Errorf("scanning %q: want %+v, got %v", c.src, want, got)
				}
			}
			end := scan.Next()
			if end.Kind != TokenEOF {
				t.Errorf("scanning %q: extra token %v", c.src, end)
			}
			if end.Start != len(c.src) || end.End != len(c.src) {
				t.Errorf("scanning %q: EOF at %v, want empty span at %d", c.src, end.Span, len(c.src))
			}
			if again := scan.Next(); again.Kind != TokenEOF {
				t.Errorf("scanning %q: %v after EOF", c.src, again)
			}
		})
	}
}

func TestLexPeek(t *testing.T) {
	scan := Load("a + 1")
	p := scan.Peek()
	if p.Kind != TokenIdent || p.Splice() != "a" {
		t.Fatalf("wrong peek: %v", p)
	}
	if q := scan.Peek(); q.Splice() != "a" {
		t.Errorf("second peek moved: %v", q)
	}
	if n := scan.Next(); n.Splice() != "a" {
		t.Errorf("next after peek gave %v", n)
	}
	if n := scan.Next(); n.Op != OpAdd {
		t.Errorf("wrong second token %v", n)
	}
	if p := scan.Peek(); p.Splice() != "1" {
		t.Errorf("wrong third peek %v", p)
	}
}

func TestTokensSpans(t *testing.T) {
	srcs := []string{
		"",
		"x = 2*(3+4)^5 % 6",
		`"A""B"42"C"log2(345)+(5/9)*19-2"Chocolate"`,
		"  # comment",
		"1.2.3.4..5",
		"héllo wörld 日本",
		"\xff\xfe",
	}
	for _, src := range srcs {
		prev := 0
		n := 0
		var last Token
		for tok := range Tokens(src) {
			if tok.Start < prev || tok.End < tok.Start {
				t.Errorf("%q: token %v overlaps previous end %d", src, tok, prev)
			}
			prev = tok.End
			last = tok
			n++
		}
		if last.Kind != TokenEOF || last.Start != len(src) || last.Len() != 0 {
			t.Errorf("%q: last token is %v", src, last)
		}
		// Restartable.
		m := 0
		for range Tokens(src) {
			m++
		}
		if m != n {
			t.Errorf("%q: %d tokens then %d tokens", src, n, m)
		}
	}
}

func TestTokensStop(t *testing.T) {
	n := 0
	for tok := range Tokens("1 2 3 4") {
		n++
		if tok.Splice() == "2" {
			break
		}
	}
	if n != 2 {
		t.Errorf("iterated %d tokens, want 2", n)
	}
}

func BenchmarkLex(b *testing.B) {
	const src = `"A""B"42"C"log2(345)+(5/9)*19-2"Chocolate"`
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		scan := Lexer{src: src}
		for scan.Next().Kind != TokenEOF {
		}
	}
}

func TestKindStrings(t *testing.T) {
	cases := []struct {
		k    interface{ String() string }
		want string
	}{
		{TokenNumber, "Number"},
		{TokenEOF, "EOF"},
		{TokenKind(42), "TokenKind(42)"},
		{nodeNone, "None"},
		{nodePow, "Pow"},
		{nodeKind(-1), "nodeKind(-1)"},
	}
	for _, c := range cases {
		if got := c.k.String(); got != c.want {
			t.Errorf("%#v: got %q, want %q", c.k, got, c.want)
		}
	}
	tok := Token{src: "x1", Kind: TokenIdent, Span: Span{0, 2}}
	if got := tok.String(); got != "Ident:x1@0" {
		t.Errorf("token string %q", got)
	}
}
