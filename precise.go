package tml

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// evalBig evaluates an arithmetic tree with big.Float. The result is a fresh
// value owned by the caller.
func (ctx *Context) evalBig(src string, n *node) (*big.Float, error) {
	ctx.stack = ctx.stack[:0]
	if err := n.evalBig(ctx, src); err != nil {
		ctx.stack = ctx.stack[:0]
		return nil, err
	}
	if len(ctx.stack) != 1 {
		panic("tml: inconsistent stack: " + strconv.Itoa(len(ctx.stack)) + " items (bad AST?)")
	}
	return new(big.Float).Copy(ctx.pop()), nil
}

// push ensures a settable value on the stack.
func (ctx *Context) push() *big.Float {
	if len(ctx.stack) < cap(ctx.stack) {
		ctx.stack = ctx.stack[:len(ctx.stack)+1]
		if ctx.stack[len(ctx.stack)-1] == nil {
			ctx.stack[len(ctx.stack)-1] = new(big.Float)
		}
	} else {
		ctx.stack = append(ctx.stack, new(big.Float))
	}
	return ctx.stack[len(ctx.stack)-1].SetPrec(ctx.prec)
}

// pop removes the top from the stack and returns it. The returned value may be
// modified by future node evaluations.
func (ctx *Context) pop() *big.Float {
	r := ctx.stack[len(ctx.stack)-1]
	ctx.stack = ctx.stack[:len(ctx.stack)-1]
	return r
}

// top is a shortcut to get the top element of the stack.
func (ctx *Context) top() *big.Float {
	return ctx.stack[len(ctx.stack)-1]
}

// num gets a possibly cached number from its text.
func (ctx *Context) num(n *node) *big.Float {
	if r := ctx.nums[n.name]; r != nil {
		return r
	}
	r, _, err := new(big.Float).SetPrec(ctx.prec).Parse(n.name, 10)
	if err != nil {
		// The lexer only produces decimal numbers, so this shouldn't
		// happen, but the float64 parse is a fine answer if it does.
		r = new(big.Float).SetPrec(ctx.prec).SetFloat64(n.num)
	}
	ctx.nums[n.name] = r
	return r
}

// evalBig pushes the node's value to the context's stack.
func (n *node) evalBig(ctx *Context, src string) error {
	switch n.kind {
	case nodeNum:
		ctx.push().Set(ctx.num(n))
	case nodeName:
		if c, ok := constants[n.name]; ok {
			x := ctx.push()
			x.Set(c.b(x))
			break
		}
		if v := ctx.bigs[n.name]; v != nil {
			ctx.push().Set(v)
			break
		}
		v, ok := ctx.vars[n.name]
		if !ok {
			return &NameError{Name: n.name, caret: at(src, n.span)}
		}
		if math.IsNaN(v) {
			return &DomainError{Func: n.name, caret: at(src, n.span)}
		}
		ctx.push().SetFloat64(v)
	case nodeCall:
		if err := n.left.evalBig(ctx, src); err != nil {
			return err
		}
		fn := ctx.funcs[n.name]
		if fn == nil {
			return &FuncError{Name: n.name, caret: at(src, n.span)}
		}
		x := ctx.top()
		r := new(big.Float).SetPrec(ctx.prec)
		if err := fn.CallBig(r, x); err != nil {
			return &DomainError{X: new(big.Float).Copy(x), Func: n.name, caret: at(src, n.span)}
		}
		x.Set(r)
	case nodeNeg:
		if err := n.left.evalBig(ctx, src); err != nil {
			return err
		}
		v := ctx.top()
		v.Neg(v)
	case nodeNop:
		if err := n.left.evalBig(ctx, src); err != nil {
			return err
		}
	case nodeAdd, nodeSub, nodeMul, nodeDiv, nodeMod, nodePow:
		if err := n.left.evalBig(ctx, src); err != nil {
			return err
		}
		if err := n.right.evalBig(ctx, src); err != nil {
			return err
		}
		r := ctx.pop()
		l := ctx.top()
		return n.guard(src, func() {
			switch n.kind {
			case nodeAdd:
				l.Add(l, r)
			case nodeSub:
				l.Sub(l, r)
			case nodeMul:
				l.Mul(l, r)
			case nodeDiv:
				l.Quo(l, r)
			case nodeMod:
				bigMod(l, l, r)
			case nodePow:
				l.Set(bigPow(l, l, r))
			}
		})
	default:
		panic("tml: invalid AST node " + n.kind.String())
	}
	return nil
}

// guard converts a big.ErrNaN panic from an arithmetic operation, e.g. 0/0 or
// inf-inf, into a DomainError.
func (n *node) guard(src string, f func()) (err error) {
	defer func() {
		p := recover()
		if p == nil {
			return
		}
		if _, ok := p.(big.ErrNaN); !ok {
			panic(p)
		}
		err = &DomainError{Func: strings.TrimSpace(binops[n.kind]), caret: at(src, n.span)}
	}()
	f()
	return nil
}
