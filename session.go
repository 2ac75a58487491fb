package tml

import "strings"

// Exec parses and evaluates one line of source.
func (ctx *Context) Exec(line string) (Result, error) {
	l, err := ParseString(line)
	if err != nil {
		return Result{}, err
	}
	return ctx.Eval(l)
}

// Outcome is the result of executing one line of a batch.
type Outcome struct {
	// Line is the source line.
	Line   string
	Result Result
	// Err is the parse or evaluation error, if any. When Err is non-nil, the
	// line had no effect on the context.
	Err error
}

// ExecAll executes each line of src in order against ctx. Errors do not stop
// the batch; later lines see the variables assigned by earlier ones that
// succeeded. Lines end with "\n" or "\r\n", and a final line terminator does
// not start another line.
func (ctx *Context) ExecAll(src string) []Outcome {
	if src == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(src, "\n"), "\n")
	r := make([]Outcome, len(lines))
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		res, err := ctx.Exec(line)
		r[i] = Outcome{Line: line, Result: res, Err: err}
	}
	return r
}

// EvalString is a shortcut to evaluate a single line in a new context.
func EvalString(src string, opts ...ContextOption) (Result, error) {
	return NewContext(opts...).Exec(src)
}
