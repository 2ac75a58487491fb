package tml

import (
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

// caret locates an error within its source line.
type caret struct {
	src  string
	span Span
}

func at(src string, span Span) caret {
	return caret{src: src, span: span}
}

// Pos returns the byte offset of the start of the offending span.
func (c caret) Pos() int {
	return c.span.Start
}

// Span returns the offending span. It may extend one byte past the end of the
// source when the error is a missing character at the end of the line.
func (c caret) Span() Span {
	return c.span
}

// Source returns the line containing the error.
func (c caret) Source() string {
	return c.src
}

// render formats msg, the source line, and a line of carets under the
// offending span. Columns count runes, and the caret line is at least one
// caret wide.
func (c caret) render(msg string) string {
	start, end := c.span.Start, c.span.End
	col := utf8.RuneCountInString(c.src[:min(start, len(c.src))])
	if start > len(c.src) {
		col += start - len(c.src)
	}
	width := 0
	if start < len(c.src) {
		width = utf8.RuneCountInString(c.src[start:min(end, len(c.src))])
	}
	width = max(width, 1)
	var b strings.Builder
	b.Grow(len(msg) + len(c.src) + col + width + 2)
	b.WriteString(msg)
	b.WriteByte('\n')
	b.WriteString(c.src)
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(" ", col))
	b.WriteString(strings.Repeat("^", width))
	return b.String()
}

// NumberError is an error indicating a number token that is not a valid
// number. It implements InputError.
type NumberError struct {
	// Text is the number token.
	Text string
	caret
}

func (err *NumberError) Message() string {
	return "invalid number " + strconv.Quote(err.Text)
}

func (err *NumberError) Error() string {
	return err.render(err.Message())
}

// BracketError is an error indicating an open bracket with no matching close
// bracket. It implements InputError. The span is the token found where the
// close bracket should be.
type BracketError struct {
	// Call is whether the bracket opened a function's argument.
	Call bool
	caret
}

func (err *BracketError) Message() string {
	if err.Call {
		return "missing function invocation end, a ')' is missing"
	}
	return "missing block end, a ')' is missing"
}

func (err *BracketError) Error() string {
	return err.render(err.Message())
}

// StringError is an error indicating a string with no closing quote. It
// implements InputError. The span is just past the end of the line.
type StringError struct {
	caret
}

func (err *StringError) Message() string {
	return `missing string end, a '"' is missing`
}

func (err *StringError) Error() string {
	return err.render(err.Message())
}

// ExpressionError is an error indicating a token that cannot start or
// continue an expression, including the end of a line where an operand is
// still needed. It implements InputError.
type ExpressionError struct {
	// Token is the offending token's text. It is empty at the end of input.
	Token string
	caret
}

func (err *ExpressionError) Message() string {
	if err.Token == "" {
		return "incomplete expression"
	}
	return "incomplete expression, unexpected " + strconv.Quote(err.Token)
}

func (err *ExpressionError) Error() string {
	return err.render(err.Message())
}

// NameError is an error from a lookup for a variable that is missing from the
// evaluation context. It implements InputError.
type NameError struct {
	// Name is the name that was missing.
	Name string
	caret
}

func (err *NameError) Message() string {
	return "unknown variable " + strconv.Quote(err.Name)
}

func (err *NameError) Error() string {
	return err.render(err.Message())
}

// FuncError is an error from a call to a function that the evaluation context
// does not define. It implements InputError.
type FuncError struct {
	// Name is the function name.
	Name string
	caret
}

func (err *FuncError) Message() string {
	return "unknown function " + strconv.Quote(err.Name)
}

func (err *FuncError) Error() string {
	return err.render(err.Message())
}

// DomainError is an error returned when arbitrary-precision evaluation has no
// real result, e.g. a function called outside its domain. It implements
// InputError and unwraps to big.ErrNaN.
type DomainError struct {
	// X is the out-of-domain argument, if there is one.
	X *big.Float
	// Func is a name identifying the function or operator.
	Func string
	caret
}

func (err *DomainError) Message() string {
	r := "no real result"
	if err.X != nil {
		r = err.X.String() + " outside domain"
	}
	if err.Func != "" {
		r += " of " + err.Func
	}
	return r
}

func (err *DomainError) Error() string {
	return err.render(err.Message())
}

func (err *DomainError) Unwrap() error {
	return big.ErrNaN{}
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the byte offset of the start of the token that caused the
	// error.
	Pos() int
	// Span returns the byte span of the token that caused the error. Error
	// places its carets by rune, so for non-ASCII lines the caret columns
	// differ from the offsets in Span; slice Source with Span, not the
	// rendered text.
	Span() Span
	// Source returns the line containing the error.
	Source() string
	// Message returns the error message without the source and caret lines.
	Message() string
}

var (
	_ InputError = (*NumberError)(nil)
	_ InputError = (*BracketError)(nil)
	_ InputError = (*StringError)(nil)
	_ InputError = (*ExpressionError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*FuncError)(nil)
	_ InputError = (*DomainError)(nil)
)
