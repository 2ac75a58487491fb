package tml

import (
	"math"
	"math/big"
	"strings"
)

// Accumulator is the variable which receives the value of every line that is
// a bare arithmetic expression.
const Accumulator = "_"

// Context is a context for evaluating lines: the variables assigned so far,
// the functions available, and the arithmetic precision. The zero value is a
// float64 context with no variables and no functions. It is not safe to use a
// Context concurrently; use one per session.
type Context struct {
	vars  map[string]float64
	funcs map[string]Func

	// Arbitrary precision state. prec is 0 for float64 arithmetic.
	prec  uint
	bigs  map[string]*big.Float
	nums  map[string]*big.Float
	stack []*big.Float
}

// ContextOption is an option used when creating a context.
type ContextOption interface {
	ctxOption()
}

type (
	varopt struct {
		name string
		val  float64
	}
	varsopt  map[string]float64
	funcopt  struct {
		name string
		fn   Func
	}
	funcsopt map[string]Func
	precopt  uint
)

func (varopt) ctxOption()   {}
func (varsopt) ctxOption()  {}
func (funcopt) ctxOption()  {}
func (funcsopt) ctxOption() {}
func (precopt) ctxOption()  {}

// SetVar sets the value of a variable in the context.
func SetVar(name string, val float64) ContextOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the context.
func SetVars(vars map[string]float64) ContextOption {
	return varsopt(vars)
}

// SetFunc adds a function to the context. To remove a function, pass nil for
// fn.
func SetFunc(name string, fn Func) ContextOption {
	return funcopt{name, fn}
}

// SetFuncs sets a group of functions. To remove any function, set it to nil.
func SetFuncs(fns map[string]Func) ContextOption {
	return funcsopt(fns)
}

// Prec sets the precision of calculations in bits. A precision of 0, the
// default, uses float64 arithmetic. Any other precision evaluates with
// big.Float, in which operations without a real result are errors instead
// of NaN.
func Prec(prec uint) ContextOption {
	return precopt(prec)
}

// NewContext creates a new evaluation context with the built-in functions and
// no variables.
func NewContext(opts ...ContextOption) *Context {
	ctx := Context{funcs: globalfuncs}
	return ctx.Clone(opts...)
}

// Clone creates a copy of a context and applies options to it. Changes to
// either context do not affect the other.
func (ctx *Context) Clone(opts ...ContextOption) *Context {
	n := Context{
		vars:  make(map[string]float64, len(ctx.vars)),
		funcs: make(map[string]Func, len(ctx.funcs)),
		prec:  ctx.prec,
	}
	// First, check for a precision setting. Loop backward so we apply the last
	// precision.
	for i := len(opts) - 1; i >= 0; i-- {
		if p, ok := opts[i].(precopt); ok {
			n.prec = uint(p)
			break
		}
	}
	for k, v := range ctx.vars {
		n.vars[k] = v
	}
	for k, v := range ctx.funcs {
		n.funcs[k] = v
	}
	if n.prec != 0 {
		n.bigs = make(map[string]*big.Float, len(ctx.vars))
		n.nums = make(map[string]*big.Float)
		// Variables set in a float64 context have no big value. The values
		// of variables set at the old precision are rounded to the new one.
		for k, v := range ctx.bigs {
			n.bigs[k] = new(big.Float).SetPrec(n.prec).Set(v)
		}
		if n.prec <= ctx.prec {
			for k, v := range ctx.nums {
				n.nums[k] = new(big.Float).SetPrec(n.prec).Set(v)
			}
		}
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			n.Set(opt.name, opt.val)
		case varsopt:
			for k, v := range opt {
				n.Set(k, v)
			}
		case funcopt:
			n.setfunc(opt.name, opt.fn)
		case funcsopt:
			for k, v := range opt {
				n.setfunc(k, v)
			}
		case precopt:
			// Already done. Do nothing.
		default:
			panic("tml: unknown option type")
		}
	}
	return &n
}

func (ctx *Context) setfunc(name string, fn Func) {
	if fn == nil {
		delete(ctx.funcs, name)
		return
	}
	ctx.funcs[name] = fn
}

// Set sets the value of a variable. Returns ctx for chaining.
func (ctx *Context) Set(name string, value float64) *Context {
	if ctx.vars == nil {
		ctx.vars = make(map[string]float64)
	}
	ctx.vars[name] = value
	if ctx.bigs != nil {
		delete(ctx.bigs, name)
	}
	return ctx
}

// Lookup returns the value of a variable and whether it is defined. Reserved
// constants are not variables.
func (ctx *Context) Lookup(name string) (float64, bool) {
	v, ok := ctx.vars[name]
	return v, ok
}

// LookupBig returns a copy of the arbitrary precision value of a variable. If
// the variable does not exist, or the context is not using arbitrary
// precision, the result is nil.
func (ctx *Context) LookupBig(name string) *big.Float {
	v := ctx.bigs[name]
	if v == nil {
		return nil
	}
	return new(big.Float).Copy(v)
}

// Names returns the sorted names of the variables defined in the context.
func (ctx *Context) Names() []string {
	r := make([]string, 0, len(ctx.vars))
	for k := range ctx.vars {
		r = append(r, k)
	}
	sortstrs(r)
	return r
}

// Prec returns the precision to which values are computed in the context, or
// 0 for float64 arithmetic.
func (ctx *Context) Prec() uint {
	return ctx.prec
}

// store commits a value computed by evaluating a line.
func (ctx *Context) store(name string, v float64, b *big.Float) {
	if ctx.vars == nil {
		ctx.vars = make(map[string]float64)
	}
	ctx.vars[name] = v
	if b != nil {
		ctx.bigs[name] = new(big.Float).Copy(b)
	}
}

// ResultKind is the kind of value a line evaluates to.
type ResultKind int8

const (
	// ResultNone is the result of comments and empty lines.
	ResultNone ResultKind = iota
	// ResultNumber is the result of a bare arithmetic expression.
	ResultNumber
	// ResultAssign is the result of an assignment.
	ResultAssign
	// ResultText is the result of a print expression.
	ResultText
)

// Result is the result of evaluating a line.
type Result struct {
	Kind ResultKind
	// Name is the variable that was assigned: the assignment target, or
	// Accumulator for a bare expression.
	Name string
	// Value is the number computed by a bare expression or an assignment.
	Value float64
	// Big is the arbitrary precision value of Value, if the context uses
	// arbitrary precision.
	Big  *big.Float
	text string
}

// String formats the result for display: the number, "name = number", or the
// printed text. The result of a comment or an empty line is empty.
func (r Result) String() string {
	return r.text
}

// Eval evaluates a parsed line. Assignments and bare expressions update the
// context only if evaluation succeeds.
func (ctx *Context) Eval(l *Line) (Result, error) {
	if l.Kind != LineExpr {
		return Result{}, nil
	}
	e := l.Expr
	switch e.Kind {
	case ExprLiteral, ExprAssign:
		v, b, err := ctx.value(l.src, e.n)
		if err != nil {
			return Result{}, err
		}
		r := Result{Kind: ResultNumber, Name: Accumulator, Value: v, Big: b, text: format(v, b)}
		if e.Kind == ExprAssign {
			r.Kind = ResultAssign
			r.Name = e.Name
			r.text = e.Name + " = " + r.text
		}
		ctx.store(r.Name, v, b)
		return r, nil
	case ExprPrint:
		var s strings.Builder
		for _, p := range e.parts {
			if p.n == nil {
				s.WriteString(p.text)
				continue
			}
			v, b, err := ctx.value(l.src, p.n)
			if err != nil {
				return Result{}, err
			}
			s.WriteString(format(v, b))
		}
		return Result{Kind: ResultText, text: s.String()}, nil
	default:
		panic("tml: invalid expression kind " + e.Kind.String())
	}
}

// value evaluates an arithmetic tree. The big result is nil unless the context
// uses arbitrary precision.
func (ctx *Context) value(src string, n *node) (float64, *big.Float, error) {
	if ctx.prec == 0 {
		v, err := n.eval(ctx, src)
		return v, nil, err
	}
	b, err := ctx.evalBig(src, n)
	if err != nil {
		return 0, nil, err
	}
	v, _ := b.Float64()
	return v, b, nil
}

// eval computes the node's value in float64 arithmetic. It has no side
// effects.
func (n *node) eval(ctx *Context, src string) (float64, error) {
	switch n.kind {
	case nodeNum:
		return n.num, nil
	case nodeName:
		if c, ok := constants[n.name]; ok {
			return c.f, nil
		}
		v, ok := ctx.vars[n.name]
		if !ok {
			return 0, &NameError{Name: n.name, caret: at(src, n.span)}
		}
		return v, nil
	case nodeCall:
		x, err := n.left.eval(ctx, src)
		if err != nil {
			return 0, err
		}
		fn := ctx.funcs[n.name]
		if fn == nil {
			return 0, &FuncError{Name: n.name, caret: at(src, n.span)}
		}
		return fn.Call(x), nil
	case nodeNeg:
		x, err := n.left.eval(ctx, src)
		return -x, err
	case nodeNop:
		return n.left.eval(ctx, src)
	}
	l, err := n.left.eval(ctx, src)
	if err != nil {
		return 0, err
	}
	r, err := n.right.eval(ctx, src)
	if err != nil {
		return 0, err
	}
	switch n.kind {
	case nodeAdd:
		return l + r, nil
	case nodeSub:
		return l - r, nil
	case nodeMul:
		return l * r, nil
	case nodeDiv:
		return l / r, nil
	case nodeMod:
		return math.Mod(l, r), nil
	case nodePow:
		return math.Pow(l, r), nil
	default:
		panic("tml: invalid AST node " + n.kind.String())
	}
}
