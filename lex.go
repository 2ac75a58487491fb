package tml

import (
	"iter"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// TokenKind is the kind of a lexed token.
type TokenKind int8

const (
	tokenNone TokenKind = iota
	// TokenNumber is a decimal number like 12 or 1.5.
	TokenNumber
	// TokenOperator is one of the runes in Operators. The token's Op field
	// tells which.
	TokenOperator
	// TokenIdent is a variable or function name.
	TokenIdent
	// TokenString is a double-quoted string, possibly missing its closing
	// quote.
	TokenString
	// TokenSeparator is a bracket or the comment marker. The token's Sep
	// field tells which.
	TokenSeparator
	// TokenError is an unrecognized rune and everything after it.
	TokenError
	// TokenEOF indicates the end of the input.
	TokenEOF
)

//go:generate go mod edit -require=golang.org/x/tools@v0.1.0
//go:generate go mod download
//go:generate go run golang.org/x/tools/cmd/stringer -type=TokenKind -trimprefix=Token
//go:generate go mod tidy

// Op is an operator.
type Op int8

const (
	OpNone Op = iota
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	// OpAssign is only meaningful directly after the name at the start of a
	// line.
	OpAssign
)

// Operators contains the runes which are lexed as operators, in the order of
// the Op constants following OpNone.
const Operators = "+-*/%^="

func (op Op) String() string {
	if op <= OpNone || int(op) > len(Operators) {
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
	return Operators[op-1 : op]
}

// Sep is a separator.
type Sep int8

const (
	SepNone Sep = iota
	SepOpen
	SepClose
	SepComment
)

// Separators contains the runes which are lexed as separators, in the order
// of the Sep constants following SepNone.
const Separators = "()#"

func (s Sep) String() string {
	if s <= SepNone || int(s) > len(Separators) {
		return "Sep(" + strconv.Itoa(int(s)) + ")"
	}
	return Separators[s-1 : s]
}

// Span is a half-open range of byte offsets into a source line.
type Span struct {
	Start, End int
}

// Len returns the number of bytes in the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Token is a lexed token. It refers to its source line instead of holding a
// copy of its text.
type Token struct {
	src  string
	Kind TokenKind
	// Op is the operator when Kind is TokenOperator.
	Op Op
	// Sep is the separator when Kind is TokenSeparator.
	Sep Sep
	Span
}

// Splice returns the token's text.
func (t Token) Splice() string {
	return t.src[t.Start:t.End]
}

// Source returns the line the token was lexed from.
func (t Token) Source() string {
	return t.src
}

func (t Token) String() string {
	return t.Kind.String() + ":" + t.Splice() + "@" + strconv.Itoa(t.Start)
}

// after returns a one-byte span just past the end of the token.
func (t Token) after() Span {
	return Span{t.End, t.End + 1}
}

// closed reports whether a string token ends with its closing quote.
func (t Token) closed() bool {
	return t.Len() >= 2 && t.src[t.End-1] == '"'
}

// Lexer is a pull-based tokenizer over a single line with one token of
// lookahead. The zero value is a lexer over the empty line.
type Lexer struct {
	src string
	pos int
	p   Token
}

// Load creates a lexer over a line of source.
func Load(src string) *Lexer {
	return &Lexer{src: src}
}

// Source returns the line being lexed.
func (l *Lexer) Source() string {
	return l.src
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() *Token {
	if l.p.Kind == tokenNone {
		l.p = l.scan()
	}
	return &l.p
}

// Next consumes and returns the next token. Once the input is exhausted, Next
// returns EOF tokens forever.
func (l *Lexer) Next() Token {
	if l.p.Kind != tokenNone {
		tok := l.p
		l.p = Token{}
		return tok
	}
	return l.scan()
}

// scan lexes the token starting at the current position.
func (l *Lexer) scan() Token {
	src := l.src
	i := l.pos
	for i < len(src) {
		r, sz := utf8.DecodeRuneInString(src[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += sz
	}
	if i >= len(src) {
		l.pos = len(src)
		return Token{src: src, Kind: TokenEOF, Span: Span{len(src), len(src)}}
	}
	r, sz := utf8.DecodeRuneInString(src[i:])
	tok := Token{src: src, Span: Span{i, i + sz}}
	switch {
	case r == '"':
		tok.Kind = TokenString
		if k := strings.IndexByte(src[i+1:], '"'); k >= 0 {
			tok.End = i + 1 + k + 1
		} else {
			tok.End = len(src)
		}
	case isDigit(r):
		tok.Kind = TokenNumber
		j := digits(src, i)
		if j < len(src) && src[j] == '.' {
			// Only one fraction part. A second dot ends the number.
			j = digits(src, j+1)
		}
		tok.End = j
	case r == '_', unicode.IsLetter(r):
		tok.Kind = TokenIdent
		j := i + sz
		for j < len(src) {
			r, sz := utf8.DecodeRuneInString(src[j:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			j += sz
		}
		tok.End = j
	default:
		if k := strings.IndexRune(Operators, r); k >= 0 {
			tok.Kind = TokenOperator
			tok.Op = Op(k + 1)
			break
		}
		if k := strings.IndexRune(Separators, r); k >= 0 {
			tok.Kind = TokenSeparator
			tok.Sep = Sep(k + 1)
			break
		}
		tok.Kind = TokenError
		tok.End = len(src)
	}
	l.pos = tok.End
	return tok
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// digits returns the index of the first non-digit byte in src at or after i.
func digits(src string, i int) int {
	for i < len(src) && '0' <= src[i] && src[i] <= '9' {
		i++
	}
	return i
}

// Tokens lazily lexes a line. The sequence always ends with an EOF token.
// Each iteration starts over from the beginning of the line.
func Tokens(src string) iter.Seq[Token] {
	return func(yield func(Token) bool) {
		l := Load(src)
		for {
			tok := l.Next()
			if !yield(tok) || tok.Kind == TokenEOF {
				return
			}
		}
	}
}
